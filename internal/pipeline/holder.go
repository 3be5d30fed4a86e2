package pipeline

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/couchcryptid/argo-float-etl/internal/index"
)

// Holder owns the index being served. Readers always see a complete index:
// a rebuild replaces it whole.
type Holder struct {
	current atomic.Pointer[index.Index]
}

// Current returns the serving index, or an empty one before the first build.
func (h *Holder) Current() *index.Index {
	if idx := h.current.Load(); idx != nil {
		return idx
	}
	return index.Empty()
}

// Swap installs idx and returns the index it replaced, if any.
func (h *Holder) Swap(idx *index.Index) *index.Index {
	return h.current.Swap(idx)
}

// CheckReadiness returns nil once an index has been built.
func (h *Holder) CheckReadiness(_ context.Context) error {
	if h.current.Load() == nil {
		return errors.New("index has not been built yet")
	}
	return nil
}
