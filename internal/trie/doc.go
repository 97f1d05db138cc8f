// Package trie implements a hostname-suffix trie.
//
// Domains are stored label by label, most general label nearest the root,
// so "a.example.com" lives on the path com -> example -> a. An entry is
// either exact ("example.com") or a wildcard suffix (".example.com"), the
// latter covering the label sequence itself and every subdomain below it.
//
// Two variants share one traversal and pruning engine and differ only in
// their insertion policy:
//
//   - Compact collapses entries made redundant by a wildcard entry and is
//     meant for producing a minimal covering list. It does not track
//     cardinality.
//   - Counted keeps every distinct entry, rejects duplicates and tracks an
//     exact Size.
//
// Nodes live in an arena and refer to each other through handles. Children
// are owned by their parent's map; the parent handle is only used to walk
// upward while pruning. All traversals are iterative, so adversarially deep
// label chains cannot exhaust the call stack.
//
// A trie is not safe for concurrent use. Mutations must be serialized by
// the caller, typically by building a trie and then publishing it as an
// immutable snapshot.
package trie
