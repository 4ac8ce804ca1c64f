package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/flowctl/flowctl/pkg/console"
	"golang.org/x/term"
)

// ApplyFlags carries the three ways a mutating command can move past its
// dry-run preview (spec §4.H "--apply, --force/--yes, or confirmation
// prompt in TTY").
type ApplyFlags struct {
	Apply bool
	Force bool
	Yes   bool
}

func (f ApplyFlags) explicit() bool {
	return f.Apply || f.Force || f.Yes
}

// isInteractive reports whether stdin is a TTY, the signal that a
// confirmation prompt can actually be shown instead of silently refusing.
func isInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// Confirm resolves whether a mutating command should proceed past its
// dry-run preview: an explicit flag always proceeds; otherwise, in a TTY,
// the user is prompted; non-interactively with no explicit flag, the
// command stays a dry run.
func Confirm(flags ApplyFlags, prompt string) (bool, error) {
	if flags.explicit() {
		return true, nil
	}
	if !isInteractive() {
		return false, nil
	}
	return console.ConfirmAction(prompt, "Apply", "Cancel")
}

// ConfirmBulkDelete resolves whether a bulk-delete should proceed. Small
// bulk deletes (<= 10 targets, not --all) follow the ordinary Confirm path;
// larger ones (> 10 targets, or --all) require typing the literal phrase
// "DELETE <count>" in interactive mode, per spec §4.H — a flag alone is not
// enough to skip the phrase once the --all/over-10 threshold is crossed,
// since a mistyped id list is exactly the scenario this guards against.
func ConfirmBulkDelete(count int, all bool, flags ApplyFlags) (bool, error) {
	large := all || count > 10
	if !large {
		return Confirm(flags, fmt.Sprintf("Delete %d item(s)?", count))
	}
	if !isInteractive() {
		return flags.explicit(), nil
	}
	phrase := fmt.Sprintf("DELETE %d", count)
	fmt.Fprintf(os.Stderr, "This will delete %d item(s). Type %q to confirm: ", count, phrase)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(line) == phrase, nil
}
