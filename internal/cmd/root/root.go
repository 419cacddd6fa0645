// Package root provides the root command for the wikidom CLI.
package root

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dpotapov/go-wikidom/internal/cmd/build"
	"github.com/dpotapov/go-wikidom/internal/cmd/configcmd"
	"github.com/dpotapov/go-wikidom/internal/cmd/convert"
	"github.com/dpotapov/go-wikidom/internal/cmd/serve"
)

// NewCmdRoot creates the root command for wikidom.
func NewCmdRoot() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wikidom",
		Short: "Build annotated HTML5 documents from wikitext token streams",
		Long: `wikidom runs a wikitext token stream through HTML5 tree construction and
annotates the resulting document with shadow markers, so a serializer can
recover the original markup.

Token streams are JSON arrays or XML fixtures.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// .env is optional
			if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().StringP("config", "c", "", "config file (default: ~/.config/wikidom/config.yml)")
	cmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	cmd.PersistentFlags().Bool("no-color", false, "disable colored output")

	// Subcommands
	cmd.AddCommand(build.NewCmdBuild())
	cmd.AddCommand(convert.NewCmdConvert())
	cmd.AddCommand(serve.NewCmdServe())
	cmd.AddCommand(configcmd.NewCmdConfig())

	return cmd
}
