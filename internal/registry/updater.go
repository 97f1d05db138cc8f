package registry

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/sirupsen/logrus"

	"hostset/internal/domain"
	"hostset/internal/metrics"
)

type Fetcher interface {
	FetchRegistry(ctx context.Context) (*domain.Registry, error)
}

type Config struct {
	Interval       time.Duration // base update interval
	InitialBackoff time.Duration // initial backoff delay
	MaxBackoff     time.Duration // maximum backoff delay
	UpdateTimeout  time.Duration // deadline for a single update
	Clock          clock.Clock   // defaults to the wall clock
}

func (cfg Config) withDefaults() Config {
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = 30 * time.Second
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 30 * time.Minute
	}
	if cfg.UpdateTimeout <= 0 {
		cfg.UpdateTimeout = 5 * time.Minute
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}
	return cfg
}

// Start runs background registry updates until the context stops.
func Start(ctx context.Context, cfg Config, src Fetcher, holder *Holder) error {
	if cfg.Interval <= 0 {
		return nil // config should already be validated
	}
	cfg = cfg.withDefaults()
	clk := cfg.Clock

	// Perform the first update immediately on startup
	if err := updateOnce(ctx, cfg, src, holder); err != nil {
		log.WithError(err).Error("initial update failed")
	} else {
		log.Info("initial update succeeded")
	}

	ticker := clk.Ticker(cfg.Interval)
	defer ticker.Stop()

	var consecutiveFailures int

	for {
		select {
		case <-ctx.Done():
			log.WithError(ctx.Err()).Info("updater stopped")
			return ctx.Err()

		case <-ticker.C:
			if err := updateOnce(ctx, cfg, src, holder); err != nil {
				consecutiveFailures++
				backoff := calcBackoff(cfg.InitialBackoff, cfg.MaxBackoff, consecutiveFailures)

				log.WithError(err).WithFields(logrus.Fields{
					"attempt": consecutiveFailures,
					"backoff": backoff,
				}).Warn("update failed")

				timer := clk.Timer(backoff)
				select {
				case <-ctx.Done():
					timer.Stop()
					log.WithError(ctx.Err()).Info("updater stopped during backoff")
					return ctx.Err()
				case <-timer.C:
				}
				continue
			}

			if consecutiveFailures > 0 {
				log.WithField("failures", consecutiveFailures).Info("update recovered")
			}
			consecutiveFailures = 0
		}
	}
}

func calcBackoff(initial, max time.Duration, failures int) time.Duration {
	pow := math.Pow(2, float64(failures-1))
	backoff := time.Duration(float64(initial) * pow)
	if backoff > max {
		backoff = max
	}

	// Add jitter to avoid synchronized retries
	jitterFrac := 0.2
	jitter := time.Duration(rand.Float64()*2*jitterFrac*float64(backoff)) -
		time.Duration(jitterFrac*float64(backoff))

	return backoff + jitter
}

// updateOnce builds a registry, stamps it and publishes it.
func updateOnce(ctx context.Context, cfg Config, src Fetcher, holder *Holder) error {
	ctx, cancel := context.WithTimeout(ctx, cfg.UpdateTimeout)
	defer cancel()

	reg, err := src.FetchRegistry(ctx)
	if err != nil {
		metrics.Updates.WithLabelValues("failure").Inc()
		return err
	}

	now := cfg.Clock.Now()
	reg.Version = holder.Get().Version + 1
	reg.UpdatedAt = now
	holder.Set(reg)

	metrics.Updates.WithLabelValues("success").Inc()
	metrics.Entries.Set(float64(reg.Domains.Len()))
	metrics.LastUpdate.Set(float64(now.Unix()))
	return nil
}
