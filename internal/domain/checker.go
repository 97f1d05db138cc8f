package domain

import (
	"net"
	"strings"
)

// IsBlocked reports whether the host of n is covered by reg.
func IsBlocked(reg *Registry, n NormalizedURL) bool {
	_, ok := Lookup(reg, n.Host)
	return ok
}

// Lookup finds the entry covering host: an entry for host itself, or a
// wildcard entry on host or any of its parent domains. The trie only
// answers for exact nodes, so the parents are probed one by one from the
// most specific.
func Lookup(reg *Registry, host string) (Match, bool) {
	if reg == nil || reg.Domains == nil || host == "" {
		return Match{}, false
	}
	// IP literals are never listed.
	if net.ParseIP(host) != nil {
		return Match{}, false
	}

	if src, ok := reg.Domains.Get(host); ok {
		return Match{Rule: ruleName(reg, host), Source: src}, true
	}

	suffix := host
	for {
		j := strings.IndexByte(suffix, '.')
		if j == -1 {
			break
		}
		suffix = suffix[j+1:]
		if src, ok := reg.Domains.Get("." + suffix); ok {
			return Match{Rule: "." + suffix, Source: src}, true
		}
	}
	return Match{}, false
}

func ruleName(reg *Registry, host string) string {
	if reg.Domains.Has("." + host) {
		return "." + host
	}
	return host
}
