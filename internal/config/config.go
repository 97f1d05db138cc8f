package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"hostset/internal/registry"
)

// EnvPrefix is prepended to every environment variable, with dots and
// dashes in the key turned into underscores: HOSTSET_HTTP_ADDR.
const EnvPrefix = "HOSTSET"

// Configuration keys.
const (
	KeyHTTPAddr       = "http.addr"
	KeyGRPCAddr       = "grpc.addr"
	KeyInterval       = "update.interval"
	KeyInitialBackoff = "update.initial-backoff"
	KeyMaxBackoff     = "update.max-backoff"
	KeyReadyMaxAge    = "ready.max-age"
	KeySources        = "sources"
	KeySource         = "source"
	KeyAllow          = "allow"
	KeyOutputDir      = "output.dir"
	KeyOutputTitle    = "output.title"
)

type Config struct {
	HTTPAddr       string            `json:"httpAddr"`
	GRPCAddr       string            `json:"grpcAddr"`
	UpdateInterval time.Duration     `json:"updateInterval"`
	InitialBackoff time.Duration     `json:"initialBackoff"`
	MaxBackoff     time.Duration     `json:"maxBackoff"`
	ReadyMaxAge    time.Duration     `json:"readyMaxAge"`
	Sources        []registry.Source `json:"sources"`
	OutputDir      string            `json:"outputDir"`
	OutputTitle    string            `json:"outputTitle"`
}

// Flags registers the command line form of every key on fs.
func Flags(fs *pflag.FlagSet) {
	fs.String(KeyHTTPAddr, ":8080", "HTTP listen address")
	fs.String(KeyGRPCAddr, ":9090", "gRPC listen address")
	fs.Duration(KeyInterval, 6*time.Hour, "registry update interval (1h..48h)")
	fs.Duration(KeyInitialBackoff, 30*time.Second, "first retry delay after a failed update")
	fs.Duration(KeyMaxBackoff, 30*time.Minute, "maximum retry delay")
	fs.Duration(KeyReadyMaxAge, 48*time.Hour, "registry age after which /readyz fails (0 disables)")
	fs.StringArray(KeySource, nil, `block list as "name=url" or "url" (repeatable)`)
	fs.StringArray(KeyAllow, nil, `allow list as "name=url" or "url" (repeatable)`)
	fs.String(KeyOutputDir, "dist", "directory the build command writes lists to")
	fs.String(KeyOutputTitle, "hostset", "list title written into the banner")
}

// NewViper returns a viper instance that reads HOSTSET_* environment
// variables and falls back to the flag defaults of fs.
func NewViper(fs *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	if fs != nil {
		if err := v.BindPFlags(fs); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// Load reads and validates the configuration held by v.
func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		HTTPAddr:       v.GetString(KeyHTTPAddr),
		GRPCAddr:       v.GetString(KeyGRPCAddr),
		UpdateInterval: v.GetDuration(KeyInterval),
		InitialBackoff: v.GetDuration(KeyInitialBackoff),
		MaxBackoff:     v.GetDuration(KeyMaxBackoff),
		ReadyMaxAge:    v.GetDuration(KeyReadyMaxAge),
		OutputDir:      v.GetString(KeyOutputDir),
		OutputTitle:    v.GetString(KeyOutputTitle),
	}

	d := cfg.UpdateInterval
	if d < time.Hour {
		return Config{}, fmt.Errorf("%s too small (%s), must be >=1h", KeyInterval, d)
	}
	if d > 48*time.Hour {
		return Config{}, fmt.Errorf("%s too large (%s), must be <=48h", KeyInterval, d)
	}
	if cfg.InitialBackoff <= 0 || cfg.MaxBackoff < cfg.InitialBackoff {
		return Config{}, fmt.Errorf("invalid backoff: initial %s, max %s", cfg.InitialBackoff, cfg.MaxBackoff)
	}
	if cfg.ReadyMaxAge < 0 {
		return Config{}, fmt.Errorf("%s must not be negative", KeyReadyMaxAge)
	}

	sources, err := loadSources(v)
	if err != nil {
		return Config{}, err
	}
	cfg.Sources = sources
	return cfg, nil
}

// loadSources merges the "sources" list of the config file with the
// --source and --allow flags, file entries first.
func loadSources(v *viper.Viper) ([]registry.Source, error) {
	var sources []registry.Source
	if err := v.UnmarshalKey(KeySources, &sources); err != nil {
		return nil, fmt.Errorf("decode %s: %w", KeySources, err)
	}

	for _, f := range []struct {
		key  string
		kind registry.Kind
	}{{KeySource, registry.KindBlock}, {KeyAllow, registry.KindAllow}} {
		for _, raw := range v.GetStringSlice(f.key) {
			src, err := registry.ParseSource(raw, f.kind)
			if err != nil {
				return nil, err
			}
			sources = append(sources, src)
		}
	}

	sources, err := registry.Normalize(sources)
	if err != nil {
		return nil, err
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("no sources configured")
	}
	return sources, nil
}
