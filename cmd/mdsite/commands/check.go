package commands

import (
	"context"
	"fmt"

	"git.home.luguber.info/inful/mdsite/internal/foundation/errors"
)

// CheckCmd implements the 'check' command.
type CheckCmd struct{}

func (CheckCmd) Run(g *Global, root *CLI) error {
	st, err := root.loadSite(nil)
	if err != nil {
		return err
	}
	broken, err := st.CheckLinks(context.Background())
	if err != nil {
		return err
	}
	for _, b := range broken {
		if _, err := fmt.Fprintf(g.Stdout, "%s: %s link %q does not resolve\n", b.Source, b.Kind, b.Destination); err != nil {
			return err
		}
	}
	if len(broken) > 0 {
		return errors.ValidationError("broken links found").WithContext("count", len(broken)).Build()
	}
	_, err = fmt.Fprintln(g.Stdout, "No broken links")
	return err
}
