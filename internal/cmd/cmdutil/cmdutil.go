// Package cmdutil holds helpers shared by the wikidom commands.
package cmdutil

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dpotapov/go-wikidom/internal/config"
	"github.com/dpotapov/go-wikidom/token"
	"github.com/dpotapov/go-wikidom/tokenxml"
)

// LoadConfig loads the configuration named by the --config flag (or the default path),
// applies environment overrides and the --log-level flag, and validates the result.
func LoadConfig(cmd *cobra.Command) (*config.Config, string, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = config.DefaultConfigPath()
	}

	cfg, err := config.LoadWithEnv(path)
	if err != nil {
		return nil, path, err
	}

	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.LogLevel = lvl
	}

	if err := cfg.Validate(); err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

// StreamFormat returns format, or the extension of name without the dot when format is empty.
func StreamFormat(name, format string) string {
	if format != "" {
		return format
	}
	return strings.TrimPrefix(filepath.Ext(name), ".")
}

// DecodeTokens reads a token stream in the given format. An empty format means JSON.
func DecodeTokens(in io.Reader, format string) ([]token.Token, error) {
	var (
		toks []token.Token
		err  error
	)
	switch format {
	case "", "json":
		toks, err = token.Decode(in)
	case "xml":
		toks, err = tokenxml.Decode(in)
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("decode tokens: %w", err)
	}
	return toks, nil
}
