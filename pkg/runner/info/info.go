package info

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"

	"github.com/rejonpardenilla/minderal/pkg/config"
)

// Info prints where the config came from and how a database id resolves.
type Info struct {
	Config     *config.File
	DatabaseID string
	Out        io.Writer
}

func (n *Info) Do(ctx context.Context) error {
	out := n.Out
	if out == nil {
		out = color.Output
	}

	if override := os.Getenv(config.EnvConfigPath); override != "" {
		_, _ = fmt.Fprintln(out, config.EnvConfigPath, "found on env, using", override)
	} else {
		_, _ = fmt.Fprintln(out, config.EnvConfigPath, "env var not set")
	}

	if n.Config == nil {
		return errors.New("failed to load config")
	}

	source := n.Config.Source
	if source == "" {
		source = "none, using defaults"
	}
	_, _ = fmt.Fprintln(out, "Config file:", source)
	_, _ = fmt.Fprintln(out, "Config.path:", n.Config.BasePath)

	_, _ = fmt.Fprintf(out, "Databases:\n")
	ids := n.Config.IDs()
	for _, id := range ids {
		_, _ = fmt.Fprintf(out, "  %s\n", id)
	}
	if len(ids) == 0 {
		_, _ = fmt.Fprintf(out, "  %s\n", "none configured")
	}

	ci, err := n.Config.ConnectionInfo(ctx, n.DatabaseID)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "Database %q:\n", ci.ID)
	_, _ = fmt.Fprintf(out, "  url: %s\n", ci.Options.URL)
	if ci.Options.Username != "" {
		_, _ = fmt.Fprintf(out, "  username: %s\n", ci.Options.Username)
	}
	if ci.Options.Password != "" {
		_, _ = fmt.Fprintf(out, "  password: %s\n", "********")
	}
	return nil
}
