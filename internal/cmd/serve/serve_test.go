package serve

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpotapov/go-wikidom/internal/config"
)

func TestRunServe_Shutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var logs bytes.Buffer
	err := runServe(ctx, &config.Config{Addr: "127.0.0.1:0"}, slog.New(slog.NewTextHandler(&logs, nil)))
	require.NoError(t, err)
	assert.Contains(t, logs.String(), "Server stopped")
}

func TestRunServe_ListenError(t *testing.T) {
	err := runServe(context.Background(), &config.Config{Addr: "127.0.0.1:-1"}, slog.New(slog.DiscardHandler))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listen")
}

func TestRunServe_BadPolicy(t *testing.T) {
	err := runServe(context.Background(), &config.Config{MetaRules: []string{"typeof +"}}, slog.New(slog.DiscardHandler))
	assert.Error(t, err)
}
