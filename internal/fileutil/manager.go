package fileutil

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"sortmedown/internal/logging"
)

// Outcome describes what happened to one file of a group.
type Outcome int

const (
	Moved Outcome = iota
	AlreadyInPlace
	SkippedDuplicate
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Moved:
		return "moved"
	case AlreadyInPlace:
		return "already in place"
	case SkippedDuplicate:
		return "skipped duplicate"
	default:
		return "failed"
	}
}

// FileResult is the outcome for one path.
type FileResult struct {
	Source      string
	Destination string
	Outcome     Outcome
	Err         error
}

// GroupResult collects the per-file outcomes of MoveGroup. Files[0] is the primary.
type GroupResult struct {
	Files []FileResult
}

// OK reports whether the primary file ended up at (or already was at) the destination,
// or was left alone because an identically named file was already there.
func (r GroupResult) OK() bool {
	return len(r.Files) > 0 && r.Files[0].Outcome != Failed
}

// Moved returns the results for files that were (or in dry-run would be) moved.
func (r GroupResult) Moved() []FileResult {
	var out []FileResult
	for _, f := range r.Files {
		if f.Outcome == Moved {
			out = append(out, f)
		}
	}
	return out
}

// Manager performs grouped file operations, honouring dry-run.
type Manager struct {
	dryRun      bool
	sidecarExts map[string]struct{}
	logger      *slog.Logger
}

// NewManager builds a Manager. Sidecar extensions are matched case-insensitively.
func NewManager(dryRun bool, sidecarExts []string, logger *slog.Logger) *Manager {
	exts := make(map[string]struct{}, len(sidecarExts))
	for _, ext := range sidecarExts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts[ext] = struct{}{}
	}
	return &Manager{
		dryRun:      dryRun,
		sidecarExts: exts,
		logger:      logging.NewComponentLogger(logger, "files"),
	}
}

// DryRun reports whether mutations are simulated.
func (m *Manager) DryRun() bool { return m.dryRun }

// IsSidecar reports whether path has a sidecar extension.
func (m *Manager) IsSidecar(path string) bool {
	_, ok := m.sidecarExts[strings.ToLower(filepath.Ext(path))]
	return ok
}

// FindSidecars lists files next to primary that share its stem and carry a sidecar extension.
func (m *Manager) FindSidecars(primary string) ([]string, error) {
	dir := filepath.Dir(primary)
	stem := stemOf(primary)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", dir, err)
	}
	var sidecars []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if name == filepath.Base(primary) || stemOf(name) != stem || !m.IsSidecar(name) {
			continue
		}
		sidecars = append(sidecars, filepath.Join(dir, name))
	}
	sort.Strings(sidecars)
	return sidecars, nil
}

// Group returns primary followed by its sidecars. A sidecar scan failure yields
// the primary alone.
func (m *Manager) Group(ctx context.Context, primary string) []string {
	sidecars, err := m.FindSidecars(primary)
	if err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, m.logger), "sidecar scan failed",
			"sidecar_scan_failed",
			logging.String("path", primary),
			logging.Error(err),
			logging.String(logging.FieldImpact, "primary file moves without its sidecars"),
		)
		return []string{primary}
	}
	return append([]string{primary}, sidecars...)
}

// EnsureDir creates path and its parents. Under dry-run it only logs.
func (m *Manager) EnsureDir(ctx context.Context, path string) error {
	if info, err := os.Stat(path); err == nil {
		if !info.IsDir() {
			return fmt.Errorf("%s exists and is not a directory", path)
		}
		return nil
	}
	logger := logging.WithContext(ctx, m.logger)
	if m.dryRun {
		logger.Info("would create directory", logging.String("path", path), logging.Bool(logging.FieldDryRun, true))
		return nil
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", path, err)
	}
	logger.Debug("created directory", logging.String("path", path))
	return nil
}

// MoveGroup moves every file into destDir, primary first. A file already in
// destDir is left alone; an existing same-named file at the destination is
// skipped without failing the rest of the group. The returned error is set only
// when destDir could not be created, in which case nothing moved.
func (m *Manager) MoveGroup(ctx context.Context, files []string, destDir string) (GroupResult, error) {
	var result GroupResult
	if len(files) == 0 {
		return result, errors.New("empty file group")
	}
	if err := m.EnsureDir(ctx, destDir); err != nil {
		for _, src := range files {
			result.Files = append(result.Files, FileResult{Source: src, Outcome: Failed, Err: err})
		}
		return result, err
	}

	logger := logging.WithContext(ctx, m.logger)
	for _, src := range files {
		dst := filepath.Join(destDir, filepath.Base(src))
		fr := FileResult{Source: src, Destination: dst}
		switch {
		case samePath(src, dst):
			fr.Outcome = AlreadyInPlace
			logger.Debug("file already at destination", logging.String("path", src))
		case exists(dst):
			fr.Outcome = SkippedDuplicate
			logging.WarnWithContext(logger, "destination file exists; skipping",
				"duplicate_skipped",
				logging.String("source", src),
				logging.String("destination", dst),
				logging.String(logging.FieldErrorHint, "compare both copies and delete the one you do not want"),
				logging.String(logging.FieldImpact, "file left in place"),
			)
		case m.dryRun:
			fr.Outcome = Moved
			logger.Info("would move file",
				logging.String("source", src),
				logging.String("destination", dst),
				logging.Bool(logging.FieldDryRun, true),
			)
		default:
			if err := Move(src, dst); err != nil {
				fr.Outcome = Failed
				fr.Err = err
				logging.ErrorWithContext(logger, "move failed",
					"move_failed",
					logging.String("source", src),
					logging.String("destination", dst),
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "check permissions and free space on the destination"),
				)
			} else {
				fr.Outcome = Moved
				logger.Info("moved file",
					logging.String("source", src),
					logging.String("destination", dst),
				)
			}
		}
		result.Files = append(result.Files, fr)
	}
	return result, nil
}

// RenameGroup renames every file of the group in place so each keeps its
// extension but takes newStem. Existing targets are skipped.
func (m *Manager) RenameGroup(ctx context.Context, files []string, newStem string) (GroupResult, error) {
	var result GroupResult
	if len(files) == 0 {
		return result, errors.New("empty file group")
	}
	logger := logging.WithContext(ctx, m.logger)
	for _, src := range files {
		dst := filepath.Join(filepath.Dir(src), newStem+filepath.Ext(src))
		fr := FileResult{Source: src, Destination: dst}
		switch {
		case src == dst:
			fr.Outcome = AlreadyInPlace
		case exists(dst):
			fr.Outcome = SkippedDuplicate
			logger.Warn("rename target exists; skipping",
				logging.String("source", src),
				logging.String("destination", dst),
				logging.String(logging.FieldEventType, "rename_skipped"),
			)
		case m.dryRun:
			fr.Outcome = Moved
			logger.Info("would rename file", logging.String("source", src), logging.String("destination", dst), logging.Bool(logging.FieldDryRun, true))
		default:
			if err := os.Rename(src, dst); err != nil {
				fr.Outcome = Failed
				fr.Err = err
				logger.Error("rename failed", logging.String("source", src), logging.Error(err), logging.String(logging.FieldEventType, "rename_failed"))
			} else {
				fr.Outcome = Moved
				logger.Info("renamed file", logging.String("source", src), logging.String("destination", dst))
			}
		}
		result.Files = append(result.Files, fr)
	}
	return result, nil
}

// DeleteGroup removes every file in the group. Under dry-run it only logs.
func (m *Manager) DeleteGroup(ctx context.Context, files []string) error {
	logger := logging.WithContext(ctx, m.logger)
	var errs []error
	for _, path := range files {
		if m.dryRun {
			logger.Info("would delete file", logging.String("path", path), logging.Bool(logging.FieldDryRun, true))
			continue
		}
		if err := os.Remove(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			errs = append(errs, fmt.Errorf("delete %s: %w", path, err))
			continue
		}
		logger.Info("deleted file", logging.String("path", path))
	}
	return errors.Join(errs...)
}

func stemOf(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA == nil && errB == nil && absA == absB {
		return true
	}
	infoA, errA := os.Stat(a)
	infoB, errB := os.Stat(b)
	return errA == nil && errB == nil && os.SameFile(infoA, infoB)
}
