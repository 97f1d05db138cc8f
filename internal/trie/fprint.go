package trie

import (
	"fmt"
	"io"
	"slices"
	"strings"
)

// Fprint writes the node structure to w, one node per line, indented by
// depth. Siblings are printed in label order (shorter first, then
// byte-wise), which is the reverse of the sorted Dump order. Useful during
// debugging and testing.
func (t *tree[M]) Fprint(w io.Writer) error {
	type frame struct {
		id    nodeID
		depth int
	}

	if _, err := fmt.Fprintf(w, "### nodes(%d) free(%d)\n", t.nodes.live(), len(t.nodes.free)); err != nil {
		return err
	}

	stack := []frame{{id: rootID}}
	var keys []string
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := t.nodes.at(f.id)

		label := n.label
		if f.id == rootID {
			label = "<root>"
		}
		line := strings.Repeat(".", f.depth) + label
		switch {
		case n.terminal() && n.wildcard():
			line += fmt.Sprintf(" [terminal wildcard] meta=%v", n.meta)
		case n.terminal():
			line += fmt.Sprintf(" [terminal] meta=%v", n.meta)
		case n.wildcard():
			line += " [wildcard]"
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}

		keys = keys[:0]
		for k := range n.children {
			keys = append(keys, k)
		}
		slices.SortFunc(keys, compareLabels)
		for i := len(keys) - 1; i >= 0; i-- {
			stack = append(stack, frame{id: n.children[keys[i]], depth: f.depth + 1})
		}
	}
	return nil
}
