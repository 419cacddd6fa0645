package configcmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dpotapov/go-wikidom/internal/config"
)

// NewCmdInit creates the config init command.
func NewCmdInit() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a configuration file with default values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			noColor, _ := cmd.Flags().GetBool("no-color")
			path, _ := cmd.Flags().GetString("config")
			if path == "" {
				path = config.DefaultConfigPath()
			}
			return runInit(cmd.OutOrStdout(), path, force, noColor)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	return cmd
}

func runInit(w io.Writer, path string, force, noColor bool) error {
	if noColor {
		color.NoColor = true
	}

	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists, use --force to overwrite", path)
		} else if !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}

	cfg := &config.Config{
		Addr:     config.DefaultAddr,
		LogLevel: "info",
	}
	if err := cfg.Save(path); err != nil {
		return err
	}

	green := color.New(color.FgGreen)
	_, _ = green.Fprintf(w, "Configuration written to %s\n", path)
	return nil
}
