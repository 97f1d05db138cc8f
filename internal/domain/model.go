package domain

import (
	"time"

	"hostset/internal/trie"
)

// Registry is one published snapshot of the curated list. Domains maps
// each entry to the name of the source it came from. A Registry is never
// mutated after it has been handed to a Holder.
type Registry struct {
	Domains   *trie.Compact[string]
	Version   uint64
	UpdatedAt time.Time
}

// NewRegistry returns an empty, unversioned registry.
func NewRegistry() *Registry {
	return &Registry{Domains: trie.NewCompact[string]()}
}

// NormalizedURL is the result of Normalize.
type NormalizedURL struct {
	Scheme string // "http" or "https"
	Host   string // example.com
}

// Match describes the entry that covers a host.
type Match struct {
	Rule   string // ".example.com" or "example.com"
	Source string
}
