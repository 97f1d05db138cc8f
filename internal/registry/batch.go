package registry

import (
	"errors"
	"strings"

	"hostset/internal/domain"
)

// Skip reasons reported per source.
const (
	skipUnderscore = "underscore"
	skipIP         = "ip"
	skipPattern    = "pattern"
	skipNormalize  = "normalize"
	skipFormat     = "format"
	skipNotString  = "not_string"
)

// Batch holds the entries read from one source. Wildcard entries keep
// their leading dot.
type Batch struct {
	Source  Source
	Entries []string
	Skipped map[string]int
}

func newBatch(src Source) *Batch {
	return &Batch{Source: src, Skipped: make(map[string]int)}
}

func (b *Batch) skip(reason string) {
	b.Skipped[reason]++
}

// SkippedTotal sums Skipped over all reasons.
func (b *Batch) SkippedTotal() int {
	n := 0
	for _, v := range b.Skipped {
		n += v
	}
	return n
}

// addLine handles one raw line of a domainset source.
func (b *Batch) addLine(line string) {
	if entry := processLine(line); entry != "" {
		b.addEntry(entry)
	}
}

// addEntry normalizes one entry and keeps it if it is a usable domain.
func (b *Batch) addEntry(raw string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return
	}
	if strings.Contains(raw, "_") {
		b.skip(skipUnderscore)
		return
	}

	name, _, err := domain.NormalizeEntry(raw)
	switch {
	case errors.Is(err, domain.ErrIPLiteral):
		b.skip(skipIP)
	case errors.Is(err, domain.ErrBadPattern):
		b.skip(skipPattern)
	case err != nil:
		b.skip(skipNormalize)
	default:
		b.Entries = append(b.Entries, name)
	}
}

// processLine strips comments and blanks. It returns "" for lines that
// carry no entry.
func processLine(line string) string {
	line = strings.TrimSpace(line)
	if line == "" {
		return ""
	}
	switch line[0] {
	case '#', '!':
		return ""
	}
	if strings.HasPrefix(line, "//") {
		return ""
	}
	if i := strings.Index(line, " #"); i >= 0 {
		line = strings.TrimSpace(line[:i])
	}
	return line
}
