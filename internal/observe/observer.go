// Package observe provides the reporting collaborator used by all
// long-running operations. Components never write to the console
// directly; they notify an injected Observer instead.
package observe

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
)

// Level classifies a notification.
type Level int

const (
	// LevelInfo is routine progress information.
	LevelInfo Level = iota
	// LevelSuccess marks a completed operation.
	LevelSuccess
	// LevelWarn marks a recoverable problem; the operation continues.
	LevelWarn
	// LevelError marks a failed operation.
	LevelError
)

// Observer receives notifications from the catalog, the orchestrator and
// the installer. Implementations must be safe to call from a single
// goroutine; runs are strictly sequential.
type Observer interface {
	// Notify emits a formatted message at the given level.
	Notify(level Level, format string, args ...any)

	// Progress reports position within a multi-step operation.
	Progress(step, total int, message string)
}

var (
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	ruleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
)

// ConsoleObserver renders notifications to stderr with lipgloss styling.
type ConsoleObserver struct{}

// NewConsoleObserver creates the default console-based observer.
func NewConsoleObserver() *ConsoleObserver {
	return &ConsoleObserver{}
}

// Notify implements Observer.
func (o *ConsoleObserver) Notify(level Level, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	var styled string
	switch level {
	case LevelSuccess:
		styled = successStyle.Render(msg)
	case LevelWarn:
		styled = warnStyle.Render(msg)
	case LevelError:
		styled = errorStyle.Render(msg)
	default:
		styled = infoStyle.Render(msg)
	}
	fmt.Fprintln(os.Stderr, styled)
}

// Progress implements Observer.
func (o *ConsoleObserver) Progress(step, total int, message string) {
	header := fmt.Sprintf("── Step %d of %d: %s", step, total, message)
	fmt.Fprintln(os.Stderr, ruleStyle.Render(header))
}

// Recorder is an Observer that captures notifications for inspection in
// tests.
type Recorder struct {
	Entries    []RecordedEntry
	Progressed []string
}

// RecordedEntry is one captured notification.
type RecordedEntry struct {
	Level   Level
	Message string
}

// Notify implements Observer.
func (r *Recorder) Notify(level Level, format string, args ...any) {
	r.Entries = append(r.Entries, RecordedEntry{Level: level, Message: fmt.Sprintf(format, args...)})
}

// Progress implements Observer.
func (r *Recorder) Progress(step, total int, message string) {
	r.Progressed = append(r.Progressed, fmt.Sprintf("%d/%d %s", step, total, message))
}

// Messages returns all captured messages at the given level.
func (r *Recorder) Messages(level Level) []string {
	var out []string
	for _, e := range r.Entries {
		if e.Level == level {
			out = append(out, e.Message)
		}
	}
	return out
}
