package console

import (
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"

	"github.com/flowctl/flowctl/pkg/tty"
)

// SpinnerWrapper renders a terminal spinner for a long-running operation
// (spec §5 "bulk commands ... aggregate results preserving input order"
// wants the user to see per-item progress while that aggregation runs).
// It is automatically disabled outside a TTY or when ACCESSIBLE is set, so
// piped/--json output never carries spinner control characters.
type SpinnerWrapper struct {
	s       *spinner.Spinner
	enabled bool
}

// NewSpinner creates a spinner with the given message using the dot
// character set, writing to stderr so it never interleaves with a
// command's stdout envelope.
func NewSpinner(message string) *SpinnerWrapper {
	enabled := tty.IsStderrTerminal() && os.Getenv("ACCESSIBLE") == ""
	w := &SpinnerWrapper{enabled: enabled}
	if enabled {
		w.s = spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
		w.s.Suffix = " " + message
	}
	return w
}

// Start begins the spinner animation. A no-op when disabled.
func (w *SpinnerWrapper) Start() {
	if w.enabled {
		w.s.Start()
	}
}

// Stop stops the spinner and clears the line.
func (w *SpinnerWrapper) Stop() {
	if w.enabled {
		w.s.Stop()
	}
}

// StopWithMessage stops the spinner, leaving msg on the cleared line.
func (w *SpinnerWrapper) StopWithMessage(msg string) {
	if w.enabled {
		w.s.FinalMSG = msg + "\n"
		w.s.Stop()
	}
}

// UpdateMessage replaces the spinner's suffix text in place.
func (w *SpinnerWrapper) UpdateMessage(message string) {
	if w.enabled {
		w.s.Suffix = " " + message
	}
}

// IsEnabled reports whether the spinner will actually animate.
func (w *SpinnerWrapper) IsEnabled() bool { return w.enabled }

// BulkProgressMessage formats the suffix RunBulk feeds to UpdateMessage as
// each item in a bulk command completes.
func BulkProgressMessage(label string, done, total int) string {
	return fmt.Sprintf("%s %d/%d", label, done, total)
}
