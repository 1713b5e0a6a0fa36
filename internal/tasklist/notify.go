package tasklist

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"
)

// LogNotifier reports outcomes as log entries at Level. The zero Level is
// info.
type LogNotifier struct {
	Logger *log.Logger
	Level  log.Level
}

func (n LogNotifier) ShowSuccess(message string) {
	n.Logger.Log(n.Level, message)
}

func (n LogNotifier) ShowError(title, message string) {
	n.Logger.Log(n.Level, message, "title", title, "ok", false)
}

// ConsoleNotifier prints successes to Out and errors to Err.
type ConsoleNotifier struct {
	Out io.Writer
	Err io.Writer
}

func (n ConsoleNotifier) ShowSuccess(message string) {
	fmt.Fprintln(n.Out, message)
}

func (n ConsoleNotifier) ShowError(title, message string) {
	fmt.Fprintf(n.Err, "%s: %s\n", title, message)
}

// MultiNotifier fans each notice out to every notifier.
type MultiNotifier []Notifier

func (m MultiNotifier) ShowSuccess(message string) {
	for _, n := range m {
		n.ShowSuccess(message)
	}
}

func (m MultiNotifier) ShowError(title, message string) {
	for _, n := range m {
		n.ShowError(title, message)
	}
}
