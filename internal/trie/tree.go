package trie

import (
	"slices"
	"strings"
)

// visitFunc receives a terminal entry: the domain without its leading dot,
// the wildcard flag and the stored metadata.
type visitFunc[M any] func(domain string, wildcard bool, meta M)

// policy decides what an insertion does at and below its landing node.
type policy[M any] interface {
	// stopAt reports whether descent may end at an existing node because
	// the new entry is already covered by it.
	stopAt(n *node[M]) bool
	// land records the entry on the landing node id.
	land(t *tree[M], id nodeID, wildcard bool, meta M)
}

// tree is the engine shared by Compact and Counted.
type tree[M any] struct {
	nodes  arena[M]
	policy policy[M]
	size   int
}

func (t *tree[M]) init(p policy[M]) {
	t.nodes = newArena[M]()
	t.policy = p
}

func (t *tree[M]) base() *tree[M] { return t }

// descend walks domain right to left from the root and returns the landing
// node and its parent. With ensure set, missing children are created,
// otherwise the walk ends with walkMissing. stop, when non-nil, is asked
// about every pre-existing node on the path and ends the walk with
// walkStop.
func (t *tree[M]) descend(domain string, ensure bool, stop func(*node[M]) bool) (id, parent nodeID, sig walkSignal, err error) {
	id, parent = rootID, rootID
	sig, err = walkLabels(domain, fromIndex(domain), func(label string) walkSignal {
		parent = id
		if c, ok := t.nodes.child(id, label); ok {
			id = c
			if stop != nil && stop(t.nodes.at(id)) {
				return walkStop
			}
			return walkNext
		}
		if !ensure {
			return walkMissing
		}
		// Labels are substrings of the caller's input; clone so a long
		// source buffer is not kept alive by the trie.
		id = t.nodes.alloc(id, strings.Clone(label))
		return walkNext
	})
	return id, parent, sig, err
}

// lookup finds the exact node for domain without creating anything.
func (t *tree[M]) lookup(domain string) (nodeID, bool) {
	id, _, sig, err := t.descend(domain, false, nil)
	if err != nil || sig != walkNext {
		return rootID, false
	}
	return id, true
}

// walk runs an iterative pre-order DFS below from and calls visit for
// every terminal node. With sorted set, children are pushed in
// compareLabels order and therefore popped in reverse of it; callers
// rely on exactly this order, so results are never re-sorted.
func (t *tree[M]) walk(from nodeID, sorted bool, visit visitFunc[M]) {
	type frame struct {
		id    nodeID
		depth int // path length before this node's label
	}

	path := t.nodes.pathTo(from)
	stack := []frame{{id: from, depth: len(path)}}

	var (
		keys []string
		b    strings.Builder
	)
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n := t.nodes.at(f.id)
		path = path[:f.depth]
		if f.id != from {
			path = append(path, n.label)
		}

		if sorted {
			keys = keys[:0]
			for k := range n.children {
				keys = append(keys, k)
			}
			slices.SortFunc(keys, compareLabels)
			for _, k := range keys {
				stack = append(stack, frame{id: n.children[k], depth: len(path)})
			}
		} else {
			for _, c := range n.children {
				stack = append(stack, frame{id: c, depth: len(path)})
			}
		}

		if n.terminal() {
			visit(joinLabels(&b, path), n.wildcard(), n.meta)
		}
	}
}

// prune detaches dead nodes from id upward and stops at the first node
// that still carries a flag or children. The root is never detached.
func (t *tree[M]) prune(id nodeID) {
	for id != rootID {
		n := t.nodes.at(id)
		if !n.dead() {
			return
		}
		parent := n.parent
		t.nodes.detach(id)
		id = parent
	}
}

// Add inserts domain. A leading dot only marks where the labels start;
// whether the entry covers subdomains is decided by wildcard. What happens
// to existing entries depends on the variant.
func (t *tree[M]) Add(domain string, wildcard bool, meta M) error {
	id, _, sig, err := t.descend(domain, true, t.policy.stopAt)
	if err != nil {
		return err
	}
	if sig == walkStop {
		return nil
	}
	t.policy.land(t, id, wildcard, meta)
	return nil
}

// AddAll adds every domain with zero metadata, treating a leading dot as
// a wildcard entry. It stops at the first malformed domain; the domains
// before it stay added.
func (t *tree[M]) AddAll(domains ...string) error {
	var zero M
	for _, d := range domains {
		if err := t.Add(d, fromIndex(d) == 1, zero); err != nil {
			return err
		}
	}
	return nil
}

// Contains reports whether the exact node for query exists. A query with
// a leading dot asks for a wildcard entry instead. Wildcard entries on
// ancestors are not consulted.
func (t *tree[M]) Contains(query string) bool {
	return t.ContainsMode(query, fromIndex(query) == 1)
}

// ContainsMode is Contains with an explicit wildcard mode. In wildcard mode
// the node must carry the wildcard flag; otherwise any node on a stored
// path matches, registered or not.
func (t *tree[M]) ContainsMode(query string, wildcard bool) bool {
	id, ok := t.lookup(query)
	if !ok {
		return false
	}
	if wildcard {
		return t.nodes.at(id).wildcard()
	}
	return true
}

// Has reports whether domain is a registered entry. With a leading dot the
// entry must also be a wildcard entry.
func (t *tree[M]) Has(domain string) bool {
	_, ok := t.Get(domain)
	return ok
}

// Get returns the metadata of the registered entry for domain.
func (t *tree[M]) Get(domain string) (M, bool) {
	var zero M
	id, ok := t.lookup(domain)
	if !ok {
		return zero, false
	}
	n := t.nodes.at(id)
	if !n.terminal() || (fromIndex(domain) == 1 && !n.wildcard()) {
		return zero, false
	}
	return n.meta, true
}

// Find returns every registered entry equal to or below prefix, in sorted
// walk order. With a leading dot on prefix an exact entry for prefix
// itself is left out.
func (t *tree[M]) Find(prefix string) []string {
	id, ok := t.lookup(prefix)
	if !ok {
		return nil
	}
	from := fromIndex(prefix)
	self := prefix[from:]

	var out []string
	t.walk(id, true, func(d string, wildcard bool, _ M) {
		if from == 1 && !wildcard && d == self {
			return
		}
		out = append(out, exportName(d, wildcard))
	})
	return out
}

// Source is anything Merge can read entries from. Both *Compact and
// *Counted are sources.
type Source[M any] interface {
	base() *tree[M]
}

// Merge re-adds every entry of src through the receiver's own insertion
// policy, so the result compacts the way the receiver does. It is not
// atomic: on error the entries merged so far stay.
func (t *tree[M]) Merge(src Source[M]) error {
	s := src.base()
	if s == t {
		return nil
	}
	var err error
	s.walk(rootID, false, func(d string, wildcard bool, meta M) {
		if err == nil {
			err = t.Add(d, wildcard, meta)
		}
	})
	return err
}
