package output

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Format is the syntax a list is rendered in.
type Format string

const (
	// FormatDomainset writes ".example.com" for wildcard entries and
	// "example.com" for exact ones.
	FormatDomainset Format = "domainset"
	// FormatRuleset writes "DOMAIN-SUFFIX,example.com" and
	// "DOMAIN,example.com".
	FormatRuleset Format = "ruleset"
	// FormatClash writes "+.example.com" and "example.com".
	FormatClash Format = "clash"
)

// Formats lists every supported format.
var Formats = []Format{FormatDomainset, FormatRuleset, FormatClash}

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatDomainset, nil
	case FormatDomainset, FormatRuleset, FormatClash:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q", s)
	}
}

// Line renders one entry. domain never carries a leading dot.
func (f Format) Line(domain string, wildcard bool) string {
	switch f {
	case FormatRuleset:
		if wildcard {
			return "DOMAIN-SUFFIX," + domain
		}
		return "DOMAIN," + domain
	case FormatClash:
		if wildcard {
			return "+." + domain
		}
		return domain
	default:
		if wildcard {
			return "." + domain
		}
		return domain
	}
}

func (f Format) Ext() string {
	if f == FormatClash {
		return ".txt"
	}
	return ".conf"
}

// Path is where a list called name is written under dir.
func (f Format) Path(dir, name string) string {
	return filepath.Join(dir, string(f), name+f.Ext())
}

// Dumper is the part of a trie Render needs.
type Dumper interface {
	DumpWithoutDot(sorted bool, fn func(domain string, wildcard bool))
}

// Render dumps set in sorted order, one line per entry.
func Render(set Dumper, f Format) []string {
	var lines []string
	set.DumpWithoutDot(true, func(domain string, wildcard bool) {
		lines = append(lines, f.Line(domain, wildcard))
	})
	return lines
}
