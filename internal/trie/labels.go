package trie

import (
	"cmp"
	"strings"
)

// walkSignal tells walkLabels what to do after a label has been handled.
type walkSignal uint8

const (
	walkNext    walkSignal = iota // continue with the next label to the left
	walkStop                      // an ancestor already covers the rest
	walkMissing                   // the path does not exist
)

// fromIndex returns 1 when domain carries the leading-dot wildcard marker.
func fromIndex(domain string) int {
	if len(domain) > 0 && domain[0] == '.' {
		return 1
	}
	return 0
}

// validate rejects any empty label at or after byte offset from.
func validate(domain string, from int) error {
	start, label := from, 0
	for i := from; i <= len(domain); i++ {
		if i < len(domain) && domain[i] != '.' {
			continue
		}
		if i == start {
			return &FormatError{Domain: domain, Label: label}
		}
		start = i + 1
		label++
	}
	return nil
}

// tokenize splits domain into labels, left to right, starting at from.
func tokenize(domain string, from int) ([]string, error) {
	if err := validate(domain, from); err != nil {
		return nil, err
	}
	return strings.Split(domain[from:], "."), nil
}

// walkLabels calls fn for each label of domain from the rightmost to the
// leftmost one. The whole domain is validated before fn is called for the
// first time. The returned signal is walkNext when every label was
// consumed, otherwise the signal that ended the walk.
func walkLabels(domain string, from int, fn func(label string) walkSignal) (walkSignal, error) {
	if err := validate(domain, from); err != nil {
		return walkMissing, err
	}

	end := len(domain)
	for end > from {
		start := from
		if i := strings.LastIndexByte(domain[from:end], '.'); i >= 0 {
			start = from + i + 1
		}
		if sig := fn(domain[start:end]); sig != walkNext {
			return sig, nil
		}
		end = start - 1
	}
	return walkNext, nil
}

// compareLabels orders labels by length first, then byte-wise.
func compareLabels(a, b string) int {
	if c := cmp.Compare(len(a), len(b)); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}

// joinLabels renders a root-first label path as a domain.
func joinLabels(b *strings.Builder, path []string) string {
	b.Reset()
	for i := len(path) - 1; i >= 0; i-- {
		b.WriteString(path[i])
		if i > 0 {
			b.WriteByte('.')
		}
	}
	return b.String()
}
