package trie

import (
	"errors"
	"fmt"
)

// ErrFormat is matched by every *FormatError.
var ErrFormat = errors.New("malformed domain")

// FormatError reports a domain with an empty label. Operations that return
// it have not modified the trie.
type FormatError struct {
	Domain string
	Label  int // index of the empty label, counted from the left
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("trie: malformed domain %q: empty label at index %d", e.Domain, e.Label)
}

func (e *FormatError) Unwrap() error { return ErrFormat }
