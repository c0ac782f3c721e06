package cli

import (
	"os"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"
	"gitlab.com/tozd/go/errors"
)

// ErrConfirmationRequired is returned when a destructive command would
// need to ask but there is no terminal to ask on.
var ErrConfirmationRequired = errors.Base("confirmation required, pass --yes")

// ErrAborted is returned when the user declines a confirmation.
var ErrAborted = errors.Base("aborted")

// ConfirmFunc prompts the user for confirmation and returns true if confirmed.
type ConfirmFunc func(prompt string) (bool, error)

// NewConfirmFunc creates a ConfirmFunc using huh's interactive confirm component.
func NewConfirmFunc() ConfirmFunc {
	return func(prompt string) (bool, error) {
		var result bool
		err := huh.NewConfirm().
			Title(prompt).
			Value(&result).
			Run()
		return result, err
	}
}

// AlwaysYes returns a ConfirmFunc that always confirms.
func AlwaysYes() ConfirmFunc {
	return func(_ string) (bool, error) {
		return true, nil
	}
}

func refuseWithoutTTY() ConfirmFunc {
	return func(_ string) (bool, error) {
		return false, errors.WithStack(ErrConfirmationRequired)
	}
}

func isTerminal() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// ResolveConfirmFunc picks how a command asks for confirmation: not at all
// with --yes, interactively on a terminal, and never otherwise.
func ResolveConfirmFunc(yes bool) ConfirmFunc {
	switch {
	case yes:
		return AlwaysYes()
	case isTerminal():
		return NewConfirmFunc()
	default:
		return refuseWithoutTTY()
	}
}

// confirmOrAbort runs confirm and turns a "no" into ErrAborted.
func confirmOrAbort(confirm ConfirmFunc, prompt string) error {
	ok, err := confirm(prompt)
	if err != nil {
		return err
	}
	if !ok {
		return errors.WithStack(ErrAborted)
	}
	return nil
}
