package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hostset/internal/config"
	"hostset/internal/registry"
)

func TestDumpConfig(t *testing.T) {
	cfg := config.Config{
		HTTPAddr:       ":8080",
		UpdateInterval: time.Hour,
		Sources:        []registry.Source{{Name: "ads", URL: "https://example.com/ads.txt", Format: registry.FormatDomainset, Kind: registry.KindBlock}},
	}
	var buf bytes.Buffer
	require.NoError(t, dumpConfig(&buf, &cfg))

	out := buf.String()
	assert.Contains(t, out, `"httpAddr": ":8080"`)
	assert.Contains(t, out, `"updateInterval": 3600000000000`)
	assert.Contains(t, out, `"name": "ads"`)
}

func TestRootCommands(t *testing.T) {
	initFlags()
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "build", "config", "metrics-doc"} {
		assert.True(t, names[want], want)
	}
	for _, flag := range []string{"config", "log-level", config.KeyHTTPAddr, config.KeySource, config.KeyOutputDir} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(flag), flag)
	}
}
