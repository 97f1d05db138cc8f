package trie

// Counted is a trie that keeps every distinct entry, wildcard or not,
// regardless of covering wildcard entries above it, and tracks their
// number exactly.
type Counted[M any] struct {
	tree[M]
}

// NewCounted returns an empty Counted trie.
func NewCounted[M any]() *Counted[M] {
	c := &Counted[M]{}
	c.init(countedPolicy[M]{})
	return c
}

type countedPolicy[M any] struct{}

func (countedPolicy[M]) stopAt(*node[M]) bool { return false }

func (countedPolicy[M]) land(t *tree[M], id nodeID, wildcard bool, meta M) {
	n := t.nodes.at(id)
	if n.terminal() {
		return
	}
	t.size++

	n.flags |= flagTerminal
	if wildcard {
		n.flags |= flagWildcard
	} else {
		n.flags &^= flagWildcard
	}
	n.meta = meta
}

// Size returns the number of entries.
func (c *Counted[M]) Size() int { return c.size }

// Remove deletes the entry for domain and prunes the emptied branch. With
// a leading dot only a wildcard entry matches. It reports whether an entry
// was removed.
func (c *Counted[M]) Remove(domain string) bool {
	id, ok := c.lookup(domain)
	if !ok {
		return false
	}
	n := c.nodes.at(id)
	if !n.terminal() || (fromIndex(domain) == 1 && !n.wildcard()) {
		return false
	}

	c.size--
	n.clearEntry()
	c.prune(id)
	return true
}
