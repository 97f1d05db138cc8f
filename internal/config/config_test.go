package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hostset/internal/registry"
)

func newTestFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	Flags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func load(t *testing.T, args ...string) (Config, error) {
	t.Helper()
	v, err := NewViper(newTestFlags(t, args...))
	require.NoError(t, err)
	return Load(v)
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(t, "--source", "https://example.com/ads.txt")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, ":9090", cfg.GRPCAddr)
	assert.Equal(t, 6*time.Hour, cfg.UpdateInterval)
	assert.Equal(t, 30*time.Second, cfg.InitialBackoff)
	assert.Equal(t, 30*time.Minute, cfg.MaxBackoff)
	assert.Equal(t, 48*time.Hour, cfg.ReadyMaxAge)
	assert.Equal(t, "dist", cfg.OutputDir)
	assert.Equal(t, []registry.Source{{
		Name: "ads", URL: "https://example.com/ads.txt", Format: registry.FormatDomainset, Kind: registry.KindBlock,
	}}, cfg.Sources)
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("HOSTSET_HTTP_ADDR", ":18080")
	t.Setenv("HOSTSET_UPDATE_INTERVAL", "12h")
	t.Setenv("HOSTSET_UPDATE_MAX_BACKOFF", "1h")

	cfg, err := load(t, "--source", "ads=https://example.com/a.txt")
	require.NoError(t, err)
	assert.Equal(t, ":18080", cfg.HTTPAddr)
	assert.Equal(t, 12*time.Hour, cfg.UpdateInterval)
	assert.Equal(t, time.Hour, cfg.MaxBackoff)
}

func TestLoad_Interval(t *testing.T) {
	for _, tt := range []struct {
		interval string
		wantErr  bool
	}{
		{"30m", true},
		{"1h", false},
		{"48h", false},
		{"49h", true},
	} {
		_, err := load(t, "--update.interval", tt.interval, "--source", "x=https://example.com/x")
		if tt.wantErr {
			assert.Error(t, err, tt.interval)
		} else {
			assert.NoError(t, err, tt.interval)
		}
	}
}

func TestLoad_Backoff(t *testing.T) {
	_, err := load(t, "--update.initial-backoff", "10m", "--update.max-backoff", "1m", "--source", "x=https://example.com/x")
	assert.ErrorContains(t, err, "invalid backoff")
}

func TestLoad_Sources(t *testing.T) {
	cfgFile := filepath.Join(t.TempDir(), "hostset.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte(`
sources:
  - name: ads
    url: https://example.com/ads.json
    mirrors:
      - https://mirror.example.com/ads.json
    format: json
    allow-empty: true
  - name: local
    url: /etc/hostset/local.conf
    kind: allow
`), 0o644))

	v, err := NewViper(newTestFlags(t, "--source", "https://example.com/malware.conf", "--allow", "ok=/tmp/ok.txt"))
	require.NoError(t, err)
	v.SetConfigFile(cfgFile)
	require.NoError(t, v.ReadInConfig())

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, []registry.Source{
		{
			Name: "ads", URL: "https://example.com/ads.json", Mirrors: []string{"https://mirror.example.com/ads.json"},
			Format: registry.FormatJSON, Kind: registry.KindBlock, AllowEmpty: true,
		},
		{Name: "local", URL: "/etc/hostset/local.conf", Format: registry.FormatDomainset, Kind: registry.KindAllow},
		{Name: "malware", URL: "https://example.com/malware.conf", Format: registry.FormatDomainset, Kind: registry.KindBlock},
		{Name: "ok", URL: "/tmp/ok.txt", Format: registry.FormatDomainset, Kind: registry.KindAllow},
	}, cfg.Sources)
}

func TestLoad_SourceErrors(t *testing.T) {
	_, err := load(t)
	assert.ErrorContains(t, err, "no sources configured")

	_, err = load(t, "--source", "a=https://example.com/1", "--source", "a=https://example.com/2")
	assert.ErrorContains(t, err, "duplicate name")
}
