package trie

// Compact is a trie that keeps only a minimal covering set: an entry below
// a wildcard entry is never stored, and adding a wildcard entry discards
// everything below it.
//
// Compact does not track how many entries were added; Len walks the trie.
// Use Counted when exact cardinality matters.
type Compact[M any] struct {
	tree[M]
}

// NewCompact returns an empty Compact trie.
func NewCompact[M any]() *Compact[M] {
	c := &Compact[M]{}
	c.init(compactPolicy[M]{})
	return c
}

type compactPolicy[M any] struct{}

func (compactPolicy[M]) stopAt(n *node[M]) bool { return n.wildcard() }

func (compactPolicy[M]) land(t *tree[M], id nodeID, wildcard bool, meta M) {
	if wildcard {
		t.nodes.releaseChildren(id)
	} else if t.nodes.at(id).wildcard() {
		return
	}

	n := t.nodes.at(id)
	n.flags |= flagTerminal
	if wildcard {
		n.flags |= flagWildcard
	} else {
		n.flags &^= flagWildcard
	}
	n.meta = meta
}

// Whitelist takes domain out of the set. With a leading dot the entry, its
// wildcard coverage and everything below it are removed; otherwise only a
// registered entry for exactly domain is removed. Emptied branches are
// pruned. It reports whether anything was removed; a path that does not
// exist is not an error.
func (c *Compact[M]) Whitelist(domain string) (bool, error) {
	from := fromIndex(domain)
	if err := validate(domain, from); err != nil {
		return false, err
	}
	id, ok := c.lookup(domain)
	if !ok {
		return false, nil
	}

	n := c.nodes.at(id)
	removed := false
	if from == 1 {
		removed = n.flags != 0 || len(n.children) > 0
		c.nodes.releaseChildren(id)
		n.clearEntry()
	} else if n.terminal() {
		removed = true
		n.clearEntry()
	}

	c.prune(id)
	return removed, nil
}

// Len counts the entries by walking the trie.
func (c *Compact[M]) Len() int {
	n := 0
	c.walk(rootID, false, func(string, bool, M) { n++ })
	return n
}
