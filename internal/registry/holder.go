package registry

import (
	"sync/atomic"

	"hostset/internal/domain"
)

// Holder publishes registry snapshots. A published registry is read-only;
// updates build a new one and swap it in.
type Holder struct {
	value atomic.Pointer[domain.Registry]
}

func NewHolder() *Holder {
	h := &Holder{}
	h.value.Store(domain.NewRegistry())
	return h
}

func (h *Holder) Get() *domain.Registry {
	return h.value.Load()
}

func (h *Holder) Set(reg *domain.Registry) {
	h.value.Store(reg)
}

// Ready reports whether at least one update has been published.
func (h *Holder) Ready() bool {
	return h.Get().Version > 0
}
