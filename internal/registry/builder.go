package registry

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"hostset/internal/domain"
	"hostset/internal/metrics"
)

const maxParallelFetches = 4

// SourceFetcher reads a single source.
type SourceFetcher interface {
	Fetch(ctx context.Context, src Source) (*Batch, error)
}

// Builder turns a list of sources into a fresh registry. Block sources are
// added first, in configuration order, then allow sources are whitelisted.
type Builder struct {
	client  SourceFetcher
	sources []Source
}

func NewBuilder(client SourceFetcher, sources []Source) *Builder {
	return &Builder{client: client, sources: sources}
}

// FetchRegistry implements the Fetcher interface. Any failing source fails
// the whole build so a partial list is never published.
func (b *Builder) FetchRegistry(ctx context.Context) (*domain.Registry, error) {
	batches := make([]*Batch, len(b.sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelFetches)
	for i, src := range b.sources {
		g.Go(func() error {
			batch, err := b.client.Fetch(gctx, src)
			if err != nil {
				return fmt.Errorf("source %s: %w", src.Name, err)
			}
			batches[i] = batch
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	reg := domain.NewRegistry()
	for _, batch := range batches {
		if batch.Source.Kind == KindBlock {
			b.apply(reg, batch)
		}
	}
	for _, batch := range batches {
		if batch.Source.Kind == KindAllow {
			b.apply(reg, batch)
		}
	}

	log.WithField("entries", reg.Domains.Len()).Info("registry built")
	return reg, nil
}

func (b *Builder) apply(reg *domain.Registry, batch *Batch) {
	src := batch.Source
	removed := 0
	for _, e := range batch.Entries {
		var err error
		if src.Kind == KindAllow {
			var ok bool
			ok, err = reg.Domains.Whitelist(e)
			if ok {
				removed++
			}
		} else {
			err = reg.Domains.Add(e, e[0] == '.', src.Name)
		}
		if err != nil {
			batch.skip(skipFormat)
		}
	}

	for reason, n := range batch.Skipped {
		metrics.SkippedLines.WithLabelValues(src.Name, reason).Add(float64(n))
	}

	fields := logrus.Fields{
		"source":  src.Name,
		"kind":    src.Kind,
		"entries": len(batch.Entries),
		"skipped": batch.SkippedTotal(),
	}
	if src.Kind == KindAllow {
		fields["removed"] = removed
	}
	log.WithFields(fields).Info("source applied")
}
