// Package build provides the build command.
package build

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/net/html"

	"github.com/dpotapov/go-wikidom"
	"github.com/dpotapov/go-wikidom/internal/cmd/cmdutil"
	"github.com/dpotapov/go-wikidom/internal/config"
	"github.com/dpotapov/go-wikidom/internal/treedump"
	"github.com/dpotapov/go-wikidom/token"
)

type buildOptions struct {
	format      string
	output      string
	page        string
	source      string
	hideShadows bool
	strict      bool
	noColor     bool
}

// NewCmdBuild creates the build command.
func NewCmdBuild() *cobra.Command {
	opts := &buildOptions{}

	cmd := &cobra.Command{
		Use:   "build [file]",
		Short: "Build a document from a token stream",
		Long: `Build a document from a token stream read from a file or standard input.

The stream format is taken from the file extension (.json or .xml) unless
--format is given. Standard input defaults to JSON.`,
		Example: `  # Render a JSON token stream as HTML
  wikidom build page.json

  # Show the annotated tree
  wikidom build fixture.xml --output dump`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.noColor, _ = cmd.Flags().GetBool("no-color")

			cfg, _, err := cmdutil.LoadConfig(cmd)
			if err != nil {
				return err
			}

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
			return runBuild(name, in, cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "token stream format: json, xml")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "html", "output: html, dump, markdown")
	cmd.Flags().StringVar(&opts.page, "page", "", "page id used in log records")
	cmd.Flags().StringVar(&opts.source, "source", "", "wikitext the stream was produced from, used to locate warnings")
	cmd.Flags().BoolVar(&opts.hideShadows, "hide-shadows", false, "omit shadow comments from the dump")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "fail if the build reports warnings")

	return cmd
}

func runBuild(name string, in io.Reader, out, errOut io.Writer, cfg *config.Config, opts *buildOptions) error {
	if opts.noColor {
		color.NoColor = true
	}

	toks, err := cmdutil.DecodeTokens(in, cmdutil.StreamFormat(name, opts.format))
	if err != nil {
		return err
	}

	policy, err := cfg.Policy()
	if err != nil {
		return err
	}

	ad := wikidom.NewAdapter(nil, &wikidom.Options{
		Logger: cfg.Logger(errOut),
		Policy: policy,
		Trace:  cfg.Trace,
	})
	ad.ResetPage(opts.page)
	for _, tok := range toks {
		ad.ProcessToken(tok)
	}
	doc, buildErr := ad.Finish()

	if err := writeDoc(out, doc, opts); err != nil {
		return err
	}

	if buildErr != nil {
		var src string
		if opts.source != "" {
			b, err := os.ReadFile(opts.source)
			if err != nil {
				return fmt.Errorf("read source: %w", err)
			}
			src = string(b)
		}
		printWarnings(errOut, buildErr, src)
		if opts.strict {
			return fmt.Errorf("build of page %s reported warnings", ad.Page())
		}
	}
	return nil
}

func writeDoc(out io.Writer, doc *html.Node, opts *buildOptions) error {
	switch opts.output {
	case "html":
		if err := html.Render(out, doc); err != nil {
			return fmt.Errorf("render HTML: %w", err)
		}
		_, err := io.WriteString(out, "\n")
		return err
	case "dump":
		p := treedump.NewPrinter(opts.noColor)
		p.Shadows = !opts.hideShadows
		return p.Fprint(out, doc)
	case "markdown":
		md, err := htmltomarkdown.ConvertNode(doc)
		if err != nil {
			return fmt.Errorf("convert to markdown: %w", err)
		}
		_, err = fmt.Fprintln(out, strings.TrimSpace(string(md)))
		return err
	default:
		return fmt.Errorf("unknown output %q", opts.output)
	}
}

// printWarnings writes one line per error. Errors tied to a token with a source range are
// followed by the wikitext line they point at when src is not empty.
func printWarnings(w io.Writer, err error, src string) {
	yellow := color.New(color.FgYellow)
	dim := color.New(color.Faint)

	for _, e := range wikidom.Errors(err) {
		var te *wikidom.TokenError
		if src == "" || !errors.As(e, &te) {
			_, _ = yellow.Fprintf(w, "warning: %v\n", e)
			continue
		}
		m := token.MetaOf(te.Token)
		if m == nil || m.SourceRange == nil {
			_, _ = yellow.Fprintf(w, "warning: %v\n", e)
			continue
		}

		sp := token.Locate(src, *m.SourceRange)
		_, _ = yellow.Fprintf(w, "warning: %s: %v\n", sp, e)
		_, _ = dim.Fprintf(w, "  %s\n  %s^\n", sp.SourceLine(src), strings.Repeat(" ", sp.Column-1))
	}
}
