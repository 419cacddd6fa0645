package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpotapov/go-wikidom/token"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "empty", cfg: Config{}},
		{name: "full", cfg: Config{LogLevel: "debug", LogFormat: "json", MetaRules: []string{`typeof == "mw:X"`}}},
		{name: "bad level", cfg: Config{LogLevel: "loud"}, wantErr: `invalid log_level "loud"`},
		{name: "bad format", cfg: Config{LogFormat: "xml"}, wantErr: "log_format must be text or json"},
		{name: "bad rule", cfg: Config{MetaRules: []string{"typeof +"}}, wantErr: "compile meta rule"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("WIKIDOM_ADDR", ":9090")
	t.Setenv("WIKIDOM_LOG_LEVEL", "warn")
	t.Setenv("WIKIDOM_LOG_FORMAT", "json")
	t.Setenv("WIKIDOM_TRACE", "true")
	t.Setenv("WIKIDOM_META_RULES", `attrs["about"] in ["#a", "#b"]; ;typeof == "mw:X"`)

	cfg := &Config{Addr: ":1", LogLevel: "debug"}
	cfg.LoadFromEnv()

	assert.Equal(t, &Config{
		Addr:      ":9090",
		LogLevel:  "warn",
		LogFormat: "json",
		Trace:     true,
		MetaRules: []string{`attrs["about"] in ["#a", "#b"]`, `typeof == "mw:X"`},
	}, cfg)
}

func TestLoadFromEnv_Unset(t *testing.T) {
	for _, k := range []string{"WIKIDOM_ADDR", "WIKIDOM_LOG_LEVEL", "WIKIDOM_LOG_FORMAT", "WIKIDOM_TRACE", "WIKIDOM_META_RULES"} {
		t.Setenv(k, "")
	}

	cfg := &Config{Addr: ":1", MetaRules: []string{"true"}}
	cfg.LoadFromEnv()
	assert.Equal(t, &Config{Addr: ":1", MetaRules: []string{"true"}}, cfg)
}

func TestListenAddr(t *testing.T) {
	assert.Equal(t, DefaultAddr, (&Config{}).ListenAddr())
	assert.Equal(t, "127.0.0.1:1", (&Config{Addr: "127.0.0.1:1"}).ListenAddr())
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	(&Config{LogLevel: "warn", LogFormat: "json"}).Logger(&buf).Info("hidden")
	assert.Empty(t, buf.String())

	(&Config{LogLevel: "warn", LogFormat: "json"}).Logger(&buf).Warn("shown")
	assert.Contains(t, buf.String(), `"msg":"shown"`)

	l, err := (&Config{}).SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, l)
}

func TestPolicy(t *testing.T) {
	cfg := &Config{
		KeepTypeOf:   []string{"mw:Annotation/"},
		KeepProperty: []string{"dc:"},
		MetaRules:    []string{`attrs["about"] == "#keep"`},
	}
	p, err := cfg.Policy()
	require.NoError(t, err)

	for _, tt := range []struct {
		attrs token.Attrs
		want  bool
	}{
		{token.Attrs{{Key: "typeof", Val: "mw:Extension/ref/Marker"}}, true},
		{token.Attrs{{Key: "typeof", Val: "mw:Annotation/translate"}}, true},
		{token.Attrs{{Key: "property", Val: "dc:"}}, true},
		{token.Attrs{{Key: "typeof", Val: "mw:Placeholder"}, {Key: "about", Val: "#keep"}}, true},
		{token.Attrs{{Key: "typeof", Val: "mw:Placeholder"}}, false},
	} {
		got, err := p.Keep(tt.attrs)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.attrs.String())
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yml")
	cfg := &Config{Addr: ":7000", LogFormat: "json", KeepTypeOf: []string{"mw:A"}, MetaRules: []string{"true"}}
	require.NoError(t, cfg.Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "7000")
	assert.NotContains(t, string(data), "log_level")

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.yml"))
	assert.ErrorContains(t, err, "failed to read config file")

	bad := filepath.Join(dir, "bad.yml")
	require.NoError(t, os.WriteFile(bad, []byte("addr: [\n"), 0644))
	_, err = Load(bad)
	assert.ErrorContains(t, err, "failed to parse config file")

	_, err = LoadWithEnv(bad)
	assert.Error(t, err)
}

func TestLoadWithEnv(t *testing.T) {
	t.Setenv("WIKIDOM_ADDR", ":9999")
	t.Setenv("WIKIDOM_LOG_LEVEL", "")

	cfg, err := LoadWithEnv(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.Addr)

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, (&Config{Addr: ":1", LogLevel: "debug"}).Save(path))
	cfg, err = LoadWithEnv(path)
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.Addr)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestDefaultConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	assert.Equal(t, filepath.Join("/xdg", "wikidom", "config.yml"), DefaultConfigPath())
}
