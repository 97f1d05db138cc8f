package trie

import (
	"unicode/utf8"

	"golang.org/x/net/idna"
)

// Entry is a domain exported together with its metadata.
type Entry[M any] struct {
	Domain string
	Meta   M
}

// toASCII converts non-ASCII labels to punycode. Stored labels are kept as
// given; only exported names are converted. A name idna cannot encode is
// returned unchanged.
func toASCII(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			a, err := idna.ToASCII(s)
			if err != nil {
				return s
			}
			return a
		}
	}
	return s
}

// exportName renders a terminal as ".label.label" or "label.label".
func exportName(domain string, wildcard bool) string {
	d := toASCII(domain)
	if wildcard {
		return "." + d
	}
	return d
}

// Dump returns every entry as an exported name. With sorted unset the order
// follows map iteration and differs between runs; callers that need a
// stable order pass sorted.
func (t *tree[M]) Dump(sorted bool) []string {
	var out []string
	t.DumpFunc(sorted, func(d string) { out = append(out, d) })
	return out
}

// DumpFunc streams every entry to fn in walk order without materializing
// the whole list. The unsorted order is unspecified. fn must not modify
// the trie.
func (t *tree[M]) DumpFunc(sorted bool, fn func(domain string)) {
	t.walk(rootID, sorted, func(d string, wildcard bool, _ M) {
		fn(exportName(d, wildcard))
	})
}

// DumpWithoutDot streams entries without the leading dot and reports the
// wildcard flag separately.
func (t *tree[M]) DumpWithoutDot(sorted bool, fn func(domain string, wildcard bool)) {
	t.walk(rootID, sorted, func(d string, wildcard bool, _ M) {
		fn(toASCII(d), wildcard)
	})
}

// DumpMeta returns the metadata of every entry in walk order.
func (t *tree[M]) DumpMeta(sorted bool) []M {
	var out []M
	t.DumpMetaFunc(sorted, func(meta M) { out = append(out, meta) })
	return out
}

// DumpMetaFunc streams the metadata of every entry to fn.
func (t *tree[M]) DumpMetaFunc(sorted bool, fn func(meta M)) {
	t.walk(rootID, sorted, func(_ string, _ bool, meta M) {
		fn(meta)
	})
}

// DumpWithMeta returns every entry paired with its metadata.
func (t *tree[M]) DumpWithMeta(sorted bool) []Entry[M] {
	var out []Entry[M]
	t.DumpWithMetaFunc(sorted, func(d string, meta M) {
		out = append(out, Entry[M]{Domain: d, Meta: meta})
	})
	return out
}

// DumpWithMetaFunc streams every entry and its metadata to fn.
func (t *tree[M]) DumpWithMetaFunc(sorted bool, fn func(domain string, meta M)) {
	t.walk(rootID, sorted, func(d string, wildcard bool, meta M) {
		fn(exportName(d, wildcard), meta)
	})
}
