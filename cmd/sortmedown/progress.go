package main

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"sortmedown/internal/organizer"
)

func isTerminalWriter(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// progressReporter draws a bar on terminals. Elsewhere it reports nothing so
// piped output stays clean.
type progressReporter struct {
	bar *progressbar.ProgressBar
	out io.Writer
}

func newProgressReporter(out io.Writer, description string) *progressReporter {
	if !isTerminalWriter(out) {
		return &progressReporter{}
	}
	return &progressReporter{out: out, bar: progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(out),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)}
}

// Option returns the organizer progress hook.
func (p *progressReporter) Option() organizer.Option {
	return organizer.WithProgress(p.update)
}

func (p *progressReporter) update(current, total int) {
	if p.bar == nil {
		return
	}
	if current == 0 {
		p.bar.Reset()
		p.bar.ChangeMax(total)
	}
	_ = p.bar.Set(current)
}

func (p *progressReporter) Finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
	}
}
