package configcmd

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dpotapov/go-wikidom/internal/cmd/cmdutil"
	"github.com/dpotapov/go-wikidom/internal/config"
)

// NewCmdShow creates the config show command.
func NewCmdShow() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Display current configuration",
		Long:  `Display the effective configuration, after environment overrides, as YAML.`,
		Example: `  # Show current config
  wikidom config show`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			noColor, _ := cmd.Flags().GetBool("no-color")
			cfg, path, err := cmdutil.LoadConfig(cmd)
			if err != nil {
				return err
			}
			return runShow(cmd.OutOrStdout(), cfg, path, noColor)
		},
	}

	return cmd
}

func runShow(w io.Writer, cfg *config.Config, path string, noColor bool) error {
	if noColor {
		color.NoColor = true
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return err
	}

	dim := color.New(color.Faint)
	_, _ = dim.Fprintf(w, "# config file: %s\n", path)
	_, _ = dim.Fprintf(w, "# listen address: %s\n", cfg.ListenAddr())
	return nil
}
