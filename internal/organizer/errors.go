package organizer

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrConfiguration = errors.New("configuration error")
	ErrValidation    = errors.New("validation error")
	ErrFilesystem    = errors.New("filesystem error")
	ErrTransient     = errors.New("transient failure")

	// ErrBusy is returned when a pass is started while another is running on the same Sorter.
	ErrBusy = errors.New("sort pass already running")
)

// wrap tags err with marker and an operation-scoped detail string so callers
// can classify failures with errors.Is.
func wrap(marker error, operation, message string, err error) error {
	if marker == nil {
		marker = ErrTransient
	}
	detail := buildDetail(operation, message)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(operation, message string) string {
	parts := make([]string, 0, 2)
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "organizer failure"
	}
	return strings.Join(parts, ": ")
}
