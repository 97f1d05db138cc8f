package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	jsoniter "github.com/json-iterator/go"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"hostset/internal/app"
	"hostset/internal/config"
	"hostset/internal/metrics"
)

var (
	buildVersion       = "unknown"
	buildDate          = "unknown"
	cfgFile            string
	logLevel           string
	defaultCfgFileName = ".hostset"
	v                  *viper.Viper
)

// rootCmd represents the root command
var rootCmd = &cobra.Command{
	Use:          "hostset",
	Short:        "Build, compact and serve domain lists",
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Keep the registry up to date and serve it over gRPC and HTTP",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(v)
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		log.WithFields(log.Fields{"version": buildVersion, "date": buildDate}).Info("starting hostset")
		return app.Run(cmd.Context(), cfg)
	},
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Fetch every source once and write the lists to the output directory",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(v)
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		paths, err := app.Build(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		for _, p := range paths {
			fmt.Fprintln(cmd.OutOrStdout(), p)
		}
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(v)
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		return dumpConfig(cmd.OutOrStdout(), &cfg)
	},
}

var metricsDocCmd = &cobra.Command{
	Use:   "metrics-doc",
	Short: "Print the exported metrics as a markdown table",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprint(cmd.OutOrStdout(), metrics.Documentation())
	},
}

// initConfig use config file and ENV variables if set.
func initConfig() {
	var err error
	v, err = config.NewViper(rootCmd.PersistentFlags())
	if err != nil {
		log.Fatal(err)
	}

	if cfgFile != "" {
		// Use config file from the flag.
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			// Search config in home directory with name ".hostset" (without extension).
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigName(defaultCfgFileName)
	}

	// If a config file is found, read it in.
	cfgErr := v.ReadInConfig()

	initLogger()
	var notFound viper.ConfigFileNotFoundError
	if cfgErr != nil && !errors.As(cfgErr, &notFound) {
		log.Errorf("Read config error: %v", cfgErr)
	}
}

func dumpConfig(w io.Writer, cfg *config.Config) error {
	var jsonNew = jsoniter.ConfigCompatibleWithStandardLibrary
	configAsJSON, err := jsonNew.MarshalIndent(cfg, "", "    ")
	if err != nil {
		return fmt.Errorf("error dumping config: %w", err)
	}
	_, err = fmt.Fprintf(w, "%s\n", configAsJSON)
	return err
}

func initLogger() {
	ll, err := log.ParseLevel(logLevel)
	if err != nil {
		ll = log.InfoLevel
	}
	log.SetLevel(ll)
	log.SetFormatter(&log.TextFormatter{DisableColors: false, FullTimestamp: true, PadLevelText: true, DisableQuote: true})
}

func initFlags() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", fmt.Sprintf("config file (default is $HOME/%s.yaml)", defaultCfgFileName))
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warning, error")
	config.Flags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(serveCmd, buildCmd, configCmd, metricsDocCmd)
}

func main() {
	// Initialize flags (command line parameters)
	initFlags()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
