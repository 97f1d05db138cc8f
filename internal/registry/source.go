package registry

import (
	"fmt"
	"path"
	"strings"
)

// Format is the on-the-wire shape of a source.
type Format string

const (
	FormatDomainset Format = "domainset" // one entry per line, comments allowed
	FormatJSON      Format = "json"      // a JSON array of strings
)

// Kind tells whether a source adds entries or takes them out.
type Kind string

const (
	KindBlock Kind = "block"
	KindAllow Kind = "allow"
)

// Source is one list the registry is built from. URL is either an
// http(s) URL or a local file path. Mirrors are tried in order when URL
// fails. A block source that yields nothing is an error unless AllowEmpty
// is set.
type Source struct {
	Name       string   `mapstructure:"name" json:"name"`
	URL        string   `mapstructure:"url" json:"url"`
	Mirrors    []string `mapstructure:"mirrors" json:"mirrors,omitempty"`
	Format     Format   `mapstructure:"format" json:"format"`
	Kind       Kind     `mapstructure:"kind" json:"kind"`
	AllowEmpty bool     `mapstructure:"allow-empty" json:"allowEmpty,omitempty"`
}

// ParseSource parses the command line form "name=url" or just "url". The
// name defaults to the last path element and the format to json for
// ".json" URLs, domainset otherwise.
func ParseSource(raw string, kind Kind) (Source, error) {
	raw = strings.TrimSpace(raw)
	src := Source{URL: raw, Kind: kind}
	if name, u, ok := strings.Cut(raw, "="); ok && !strings.Contains(name, "/") {
		src.Name, src.URL = name, u
	}
	if src.URL == "" {
		return Source{}, fmt.Errorf("source %q: empty url", raw)
	}
	if src.Name == "" {
		src.Name = strings.TrimSuffix(path.Base(src.URL), path.Ext(src.URL))
	}
	if strings.EqualFold(path.Ext(src.URL), ".json") {
		src.Format = FormatJSON
	}
	src = src.withDefaults()
	if err := src.Validate(); err != nil {
		return Source{}, err
	}
	return src, nil
}

func (s Source) withDefaults() Source {
	if s.Format == "" {
		s.Format = FormatDomainset
	}
	if s.Kind == "" {
		s.Kind = KindBlock
	}
	return s
}

// Validate checks a source after defaults were applied.
func (s Source) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("source %q: name must not be empty", s.URL)
	}
	if s.URL == "" {
		return fmt.Errorf("source %s: url must not be empty", s.Name)
	}
	for _, m := range s.Mirrors {
		if m == "" {
			return fmt.Errorf("source %s: mirror url must not be empty", s.Name)
		}
	}
	switch s.Format {
	case FormatDomainset, FormatJSON:
	default:
		return fmt.Errorf("source %s: unknown format %q", s.Name, s.Format)
	}
	switch s.Kind {
	case KindBlock, KindAllow:
	default:
		return fmt.Errorf("source %s: unknown kind %q", s.Name, s.Kind)
	}
	return nil
}

// Normalize applies defaults and validates every source.
func Normalize(sources []Source) ([]Source, error) {
	out := make([]Source, 0, len(sources))
	seen := make(map[string]struct{}, len(sources))
	for _, s := range sources {
		s = s.withDefaults()
		if err := s.Validate(); err != nil {
			return nil, err
		}
		if _, dup := seen[s.Name]; dup {
			return nil, fmt.Errorf("source %s: duplicate name", s.Name)
		}
		seen[s.Name] = struct{}{}
		out = append(out, s)
	}
	return out, nil
}
