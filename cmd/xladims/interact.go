package main

import (
	"flag"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/gomlx/xladims/pkg/xlaproto"
	"github.com/pkg/errors"
)

// ErrUserAborted is returned by Interact if the user cancels the form.
var ErrUserAborted = errors.New("user aborted")

// Interact asks the user for the kind of message and the input file, and sets the corresponding flags.
func Interact(kindFlag, inFlag *flag.Flag) error {
	kind := kindFlag.Value.String()
	path := inFlag.Value.String()
	if path == "-" {
		// stdin is the terminal, so the message must come from a file.
		path = ""
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Kind of XLA message").
				Options(huh.NewOptions(xlaproto.KindNames()...)...).
				Value(&kind),
			huh.NewInput().
				Title("File with the serialized message").
				Value(&path).
				Validate(validateInputPath),
		),
	).WithProgramOptions(tea.WithOutput(os.Stderr))
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return ErrUserAborted
		}
		return errors.Wrap(err, "interactive form failed")
	}

	if err := kindFlag.Value.Set(kind); err != nil {
		return errors.Wrapf(err, "failed to set -%s", kindFlag.Name)
	}
	if err := inFlag.Value.Set(path); err != nil {
		return errors.Wrapf(err, "failed to set -%s", inFlag.Name)
	}
	return nil
}

func validateInputPath(path string) error {
	if path == "" {
		return errors.New("a file is required")
	}
	info, err := os.Stat(path)
	if err != nil {
		return errors.Wrapf(err, "cannot read %q", path)
	}
	if info.IsDir() {
		return errors.Errorf("%q is a directory", path)
	}
	return nil
}
