package ui

import (
	"fmt"
	"io"
	"time"

	"github.com/ahrav/go-langrank/internal/ports"
)

// WritePlainEvents drains events until the channel closes, writing one line
// per finished task. It is the progress fall-back when the spinner UI is
// disabled or the output is not an interactive terminal.
func WritePlainEvents(w io.Writer, events <-chan ports.Event) {
	for ev := range events {
		if line := plainLine(ev); line != "" {
			fmt.Fprintln(w, line)
		}
	}
}

// plainLine renders one event, or "" for the queued and working transitions
// the plain output skips.
func plainLine(ev ports.Event) string {
	if ev.Status != ports.StatusDone && ev.Status != ports.StatusError {
		return ""
	}
	task := string(ev.Stage)
	if ev.Source != "" {
		task = fmt.Sprintf("%s %s", ev.Stage, ev.Source)
	}
	if ev.Status == ports.StatusError {
		if ev.Err != nil {
			return fmt.Sprintf("%s: error: %v", task, ev.Err)
		}
		return fmt.Sprintf("%s: error", task)
	}
	if ev.Source != "" {
		return fmt.Sprintf("%s: done (%s)", task, sourceDetail(ev))
	}
	return fmt.Sprintf("%s: done (%s)", task, ev.Elapsed.Round(time.Millisecond))
}
