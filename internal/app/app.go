package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"hostset/internal/config"
	"hostset/internal/output"
	"hostset/internal/registry"
	"hostset/internal/transport/grpc"
	httpgw "hostset/internal/transport/http"
)

var log = logrus.WithField("component", "app")

// Run serves the registry over gRPC and HTTP and keeps it up to date until
// ctx is canceled.
func Run(ctx context.Context, cfg config.Config) error {
	holder := registry.NewHolder()
	builder := registry.NewBuilder(registry.NewClient(), cfg.Sources)

	clk := clock.New()

	updCfg := registry.Config{
		Interval:       cfg.UpdateInterval,
		InitialBackoff: cfg.InitialBackoff,
		MaxBackoff:     cfg.MaxBackoff,
		Clock:          clk,
	}

	handler, err := httpgw.NewHandler(holder, httpgw.Options{MaxAge: cfg.ReadyMaxAge, Title: cfg.OutputTitle, Clock: clk})
	if err != nil {
		return fmt.Errorf("http handler: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return registry.Start(ctx, updCfg, builder, holder)
	})

	g.Go(func() error {
		return grpc.RunGRPCServer(ctx, cfg.GRPCAddr, holder)
	})

	g.Go(func() error {
		return httpgw.RunHTTPServer(ctx, cfg.HTTPAddr, handler)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Error("servers stopped with error")
		return err
	}

	log.Info("servers stopped gracefully")
	return nil
}

// Build fetches every source once and writes the resulting list in every
// output format under cfg.OutputDir. It returns the written paths.
func Build(ctx context.Context, cfg config.Config) ([]string, error) {
	builder := registry.NewBuilder(registry.NewClient(), cfg.Sources)
	return build(ctx, cfg, builder, time.Now())
}

func build(ctx context.Context, cfg config.Config, src registry.Fetcher, now time.Time) ([]string, error) {
	reg, err := src.FetchRegistry(ctx)
	if err != nil {
		return nil, err
	}

	banner := output.Banner{
		Title:       cfg.OutputTitle,
		Description: describe(cfg.Sources),
		Date:        now,
	}
	name := fileName(cfg.OutputTitle)

	paths := make([]string, len(output.Formats))
	g := new(errgroup.Group)
	for i, f := range output.Formats {
		paths[i] = f.Path(cfg.OutputDir, name)
		g.Go(func() error {
			return output.WriteFile(paths[i], banner, output.Render(reg.Domains, f))
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"dir":     cfg.OutputDir,
		"entries": reg.Domains.Len(),
	}).Info("lists written")
	return paths, nil
}

func describe(sources []registry.Source) []string {
	lines := []string{"Built from:"}
	for _, s := range sources {
		lines = append(lines, fmt.Sprintf(" - %s (%s) %s", s.Name, s.Kind, s.URL))
	}
	return lines
}

// fileName turns a list title into a file name: "Ad Hosts" -> "ad_hosts".
func fileName(title string) string {
	name := strings.Join(strings.Fields(strings.ToLower(title)), "_")
	if name == "" {
		return "hostset"
	}
	return name
}
