// Package convert provides the convert command.
package convert

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dpotapov/go-wikidom/internal/cmd/cmdutil"
	"github.com/dpotapov/go-wikidom/token"
	"github.com/dpotapov/go-wikidom/tokenxml"
)

type convertOptions struct {
	format string
	to     string
}

// NewCmdConvert creates the convert command.
func NewCmdConvert() *cobra.Command {
	opts := &convertOptions{}

	cmd := &cobra.Command{
		Use:   "convert [file]",
		Short: "Convert a token stream between JSON and XML",
		Long: `Convert a token stream read from a file or standard input.

The input format is taken from the file extension unless --format is given.
Without --to, JSON becomes XML and XML becomes JSON.`,
		Example: `  # Turn a captured JSON stream into an XML fixture
  wikidom convert page.json > page.xml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			name := ""
			if len(args) == 1 {
				name = args[0]
				f, err := os.Open(name)
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			return runConvert(name, in, cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "input format: json, xml")
	cmd.Flags().StringVarP(&opts.to, "to", "t", "", "output format: json, xml")

	return cmd
}

func runConvert(name string, in io.Reader, out io.Writer, opts *convertOptions) error {
	format := cmdutil.StreamFormat(name, opts.format)
	toks, err := cmdutil.DecodeTokens(in, format)
	if err != nil {
		return err
	}

	to := opts.to
	if to == "" {
		to = "xml"
		if format == "xml" {
			to = "json"
		}
	}

	switch to {
	case "json":
		b, err := token.Marshal(toks)
		if err != nil {
			return fmt.Errorf("encode tokens: %w", err)
		}
		_, err = fmt.Fprintln(out, string(b))
		return err
	case "xml":
		if err := tokenxml.Encode(out, toks); err != nil {
			return fmt.Errorf("encode tokens: %w", err)
		}
		_, err := io.WriteString(out, "\n")
		return err
	default:
		return fmt.Errorf("unknown output format %q", to)
	}
}
