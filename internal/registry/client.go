package registry

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("component", "registry")

const maxLineSize = 1 << 20

type Client struct {
	http    *http.Client
	timeout time.Duration
}

func NewClient() *Client {
	return &Client{
		http:    &http.Client{Timeout: 30 * time.Second},
		timeout: 60 * time.Second,
	}
}

// ErrEmptySource is returned for a block source that produced neither
// entries nor skipped lines.
var ErrEmptySource = errors.New("empty source")

// Fetch reads one source and returns its normalized entries. The primary
// URL is tried first, then every mirror in order; the first location that
// reads cleanly wins.
func (c *Client) Fetch(ctx context.Context, src Source) (*Batch, error) {
	// Hard timeout for the whole operation, just to be safe.
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var lastErr error
	for i, location := range append([]string{src.URL}, src.Mirrors...) {
		b, err := c.fetchFrom(ctx, src, location)
		if err == nil {
			log.WithFields(logrus.Fields{
				"source":   src.Name,
				"location": location,
				"entries":  len(b.Entries),
				"skipped":  b.SkippedTotal(),
			}).Debug("source fetched")
			return b, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
		if i < len(src.Mirrors) {
			log.WithError(err).WithFields(logrus.Fields{
				"source":   src.Name,
				"location": location,
			}).Warn("source location failed, trying next mirror")
		}
	}
	return nil, lastErr
}

func (c *Client) fetchFrom(ctx context.Context, src Source, location string) (*Batch, error) {
	body, err := c.open(ctx, location)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	b := newBatch(src)
	switch src.Format {
	case FormatJSON:
		err = readJSON(body, b)
	default:
		err = readLines(body, b)
	}
	if err != nil {
		return nil, err
	}

	if src.Kind != KindAllow && !src.AllowEmpty && len(b.Entries) == 0 && b.SkippedTotal() == 0 {
		return nil, fmt.Errorf("%s: %w", location, ErrEmptySource)
	}
	return b, nil
}

func (c *Client) open(ctx context.Context, location string) (io.ReadCloser, error) {
	if !strings.HasPrefix(location, "http://") && !strings.HasPrefix(location, "https://") {
		f, err := os.Open(strings.TrimPrefix(location, "file://"))
		if err != nil {
			return nil, fmt.Errorf("open source: %w", err)
		}
		return f, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status: %s", resp.Status)
	}
	return resp.Body, nil
}

func readLines(r io.Reader, b *Batch) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for sc.Scan() {
		b.addLine(sc.Text())
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read lines: %w", err)
	}
	return nil
}

// readJSON streams an array like ["example.com", ".foo.bar", ...].
func readJSON(r io.Reader, b *Batch) error {
	it := jsoniter.Parse(jsoniter.ConfigFastest, r, 64*1024)
	if it.WhatIsNext() != jsoniter.ArrayValue {
		return fmt.Errorf("expected JSON array")
	}
	it.ReadArrayCB(func(it *jsoniter.Iterator) bool {
		if it.WhatIsNext() != jsoniter.StringValue {
			it.Skip()
			b.skip(skipNotString)
			return true
		}
		b.addEntry(it.ReadString())
		return true
	})
	if it.Error != nil && it.Error != io.EOF {
		return fmt.Errorf("decode domains: %w", it.Error)
	}
	return nil
}
