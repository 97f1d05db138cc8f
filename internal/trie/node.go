package trie

import (
	"fmt"
	"math"
)

// nodeID is a handle into the arena. The root is always rootID.
type nodeID uint32

const rootID nodeID = 0

type flags uint8

const (
	flagTerminal flags = 1 << iota // an explicitly registered domain ends here
	flagWildcard                   // the entry also covers every subdomain
)

type node[M any] struct {
	flags    flags
	parent   nodeID // lookup only, never owns
	label    string
	children map[string]nodeID
	meta     M // meaningful only with flagTerminal
}

func (n *node[M]) terminal() bool { return n.flags&flagTerminal != 0 }
func (n *node[M]) wildcard() bool { return n.flags&flagWildcard != 0 }

// dead reports a node that must not outlive the current mutation.
func (n *node[M]) dead() bool { return n.flags == 0 && len(n.children) == 0 }

// clearEntry drops both flags and the metadata.
func (n *node[M]) clearEntry() {
	var zero M
	n.flags = 0
	n.meta = zero
}

// arena owns every node. Slots released by pruning or compaction are
// recycled through the free list.
type arena[M any] struct {
	nodes []node[M]
	free  []nodeID
}

func newArena[M any]() arena[M] {
	return arena[M]{nodes: make([]node[M], 1, 64)}
}

// at returns the node for id. The pointer is invalidated by alloc.
func (a *arena[M]) at(id nodeID) *node[M] {
	return &a.nodes[id]
}

func (a *arena[M]) child(id nodeID, label string) (nodeID, bool) {
	c, ok := a.nodes[id].children[label]
	return c, ok
}

// alloc creates a child of parent under label and links it.
func (a *arena[M]) alloc(parent nodeID, label string) nodeID {
	var id nodeID
	if n := len(a.free); n > 0 {
		id = a.free[n-1]
		a.free = a.free[:n-1]
		a.nodes[id] = node[M]{parent: parent, label: label}
	} else {
		if uint64(len(a.nodes)) > math.MaxUint32 {
			panic("trie: arena exhausted")
		}
		id = nodeID(len(a.nodes))
		a.nodes = append(a.nodes, node[M]{parent: parent, label: label})
	}

	p := &a.nodes[parent]
	if p.children == nil {
		p.children = make(map[string]nodeID, 1)
	}
	p.children[label] = id
	return id
}

// releaseChildren frees the whole subtree below id, leaving id itself
// in place without children.
func (a *arena[M]) releaseChildren(id nodeID) {
	kids := a.nodes[id].children
	if len(kids) == 0 {
		return
	}
	a.nodes[id].children = nil

	stack := make([]nodeID, 0, len(kids))
	for _, c := range kids {
		stack = append(stack, c)
	}
	for len(stack) > 0 {
		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, g := range a.nodes[c].children {
			stack = append(stack, g)
		}
		a.nodes[c] = node[M]{}
		a.free = append(a.free, c)
	}
}

// detach unlinks a childless node from its parent and frees its slot.
func (a *arena[M]) detach(id nodeID) {
	if id == rootID {
		panic("trie: detach of root")
	}
	n := &a.nodes[id]
	p := &a.nodes[n.parent]
	if got, ok := p.children[n.label]; !ok || got != id {
		panic(fmt.Sprintf("trie: node %d (%q) is not linked from its parent %d", id, n.label, n.parent))
	}
	if len(n.children) != 0 {
		panic(fmt.Sprintf("trie: detach of node %d (%q) with %d children", id, n.label, len(n.children)))
	}
	delete(p.children, n.label)
	if len(p.children) == 0 {
		p.children = nil
	}
	a.nodes[id] = node[M]{}
	a.free = append(a.free, id)
}

// live returns the number of nodes reachable from the root, root included.
func (a *arena[M]) live() int {
	return len(a.nodes) - len(a.free)
}

// pathTo returns the labels from the root down to id, root first.
func (a *arena[M]) pathTo(id nodeID) []string {
	var path []string
	for id != rootID {
		n := &a.nodes[id]
		path = append(path, n.label)
		id = n.parent
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
