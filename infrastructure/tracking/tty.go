package tracking

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v2"
	"golang.org/x/term"

	"github.com/corvus-index/corvus/domain/task"
)

var _ Reporter = (*TTYReporter)(nil)

var (
	completedColor = color.New(color.FgGreen)
	failedColor    = color.New(color.FgRed)
	skippedColor   = color.New(color.FgYellow)
)

// TTYReporter renders live progress bars for in-flight operations on a
// terminal. Each status ID gets its own bar, created on first sight and
// finished (and replaced by a single colored summary line) once the
// operation reaches a terminal state. It no-ops entirely when the
// configured writer is not a terminal, so piping server output to a log
// file or running headless in CI never sees bar escape codes.
type TTYReporter struct {
	writer   io.Writer
	enabled  bool
	mu       sync.Mutex
	bars     map[string]*progressbar.ProgressBar
	lastSeen map[string]int
}

// NewTTYReporter creates a TTYReporter writing to w. Progress rendering is
// disabled automatically when w is not backed by a terminal.
func NewTTYReporter(w io.Writer) *TTYReporter {
	enabled := false
	if f, ok := w.(*os.File); ok {
		enabled = term.IsTerminal(int(f.Fd()))
	}
	return &TTYReporter{
		writer:   w,
		enabled:  enabled,
		bars:     make(map[string]*progressbar.ProgressBar),
		lastSeen: make(map[string]int),
	}
}

// OnChange renders the status as a progress bar, or a colored one-line
// summary once the operation has finished.
func (r *TTYReporter) OnChange(_ context.Context, status task.Status) error {
	if !r.enabled {
		return nil
	}

	id := status.ID()

	r.mu.Lock()
	defer r.mu.Unlock()

	if status.State().IsTerminal() {
		if bar, ok := r.bars[id]; ok {
			_ = bar.Finish()
			delete(r.bars, id)
		}
		delete(r.lastSeen, id)
		r.printSummary(status)
		return nil
	}

	bar, ok := r.bars[id]
	if !ok {
		bar = progressbar.NewOptions(
			status.Total(),
			progressbar.OptionSetWriter(r.writer),
			progressbar.OptionSetDescription(status.Operation().String()),
			progressbar.OptionClearOnFinish(),
		)
		r.bars[id] = bar
	}

	delta := status.Current() - r.lastSeen[id]
	if delta > 0 {
		_ = bar.Add(delta)
	}
	r.lastSeen[id] = status.Current()

	return nil
}

func (r *TTYReporter) printSummary(status task.Status) {
	label := status.Operation().String()
	switch status.State() {
	case task.ReportingStateCompleted:
		fmt.Fprintln(r.writer, completedColor.Sprintf("✓ %s", label))
	case task.ReportingStateFailed:
		fmt.Fprintln(r.writer, failedColor.Sprintf("✗ %s: %s", label, status.Error()))
	case task.ReportingStateSkipped:
		fmt.Fprintln(r.writer, skippedColor.Sprintf("⊘ %s: %s", label, status.Message()))
	}
}
