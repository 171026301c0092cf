// Package dynany is an in-memory reflection provider. It builds values for
// any descriptor, hands out write-through cursors over them, and keeps a
// small interface hierarchy for object reference is-a queries.
package dynany

import (
	"sync"

	"github.com/wippyai/anycodec/reflection"
	"github.com/wippyai/anycodec/typecode"
)

// Option configures a Provider.
type Option func(*Provider)

// WithWideCharWidth sets the width of wide characters in bits. Only 16
// and 32 are meaningful; anything else keeps the default of 32.
func WithWideCharWidth(bits int) Option {
	return func(p *Provider) {
		if bits == 16 || bits == 32 {
			p.width = bits
		}
	}
}

// WithHierarchy shares an interface hierarchy with the provider.
func WithHierarchy(h *Hierarchy) Option {
	return func(p *Provider) {
		if h != nil {
			p.hier = h
		}
	}
}

// Provider implements reflection.Provider.
type Provider struct {
	width int
	hier  *Hierarchy
}

var _ reflection.Provider = (*Provider)(nil)

func New(opts ...Option) *Provider {
	p := &Provider{width: 32, hier: NewHierarchy()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Provider) WideCharWidth() int { return p.width }

// Hierarchy returns the interface hierarchy used by objects of this
// provider.
func (p *Provider) Hierarchy() *Hierarchy { return p.hier }

// CreateCursor returns a cursor over a default value of tc, or over a copy
// of existing when it is given. existing must have been produced by a
// dynany provider and its type must equal tc.
func (p *Provider) CreateCursor(tc *typecode.TypeCode, existing *reflection.Any) (reflection.Cursor, error) {
	if tc == nil {
		return nil, fail("nil type descriptor")
	}
	if existing == nil {
		n, err := newNode(tc, typecode.NewArena(tc))
		if err != nil {
			return nil, err
		}
		return &cursor{p: p, n: n}, nil
	}

	n, err := p.adopt(tc, *existing)
	if err != nil {
		return nil, err
	}
	return &cursor{p: p, n: n}, nil
}

// adopt checks v against tc and returns a private copy of its value.
func (p *Provider) adopt(tc *typecode.TypeCode, v reflection.Any) (*node, error) {
	if !typecode.Equal(tc, v.Type) {
		return nil, fail("value of type %s does not match %s",
			typecode.Describe(v.Type), typecode.Describe(tc))
	}
	src, ok := v.Value.(*node)
	if !ok {
		if v.Value != nil {
			return nil, fail("value of type %s was not built by this provider", typecode.Describe(v.Type))
		}
		return newNode(tc, typecode.NewArena(tc))
	}
	return copyNode(src), nil
}

// Hierarchy records which interfaces derive from which. Every interface
// derives from the universal object type.
type Hierarchy struct {
	mu    sync.RWMutex
	bases map[string][]string
}

var _ reflection.TypeOracle = (*Hierarchy)(nil)

func NewHierarchy() *Hierarchy {
	return &Hierarchy{bases: make(map[string][]string)}
}

// Declare records the direct bases of id.
func (h *Hierarchy) Declare(id string, bases ...string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.bases[id] = append(h.bases[id], bases...)
}

// IsA reports whether typeID is baseID or derives from it.
func (h *Hierarchy) IsA(typeID, baseID string) bool {
	if typeID == baseID || baseID == typecode.ObjectID {
		return true
	}
	h.mu.RLock()
	defer h.mu.RUnlock()

	seen := map[string]bool{typeID: true}
	queue := []string{typeID}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, b := range h.bases[id] {
			if b == baseID {
				return true
			}
			if !seen[b] {
				seen[b] = true
				queue = append(queue, b)
			}
		}
	}
	return false
}

// NewObject returns a reference to an object whose most derived interface
// is id.
func (h *Hierarchy) NewObject(id string) *Object {
	return &Object{id: id, hier: h}
}

// Object is an in-memory object reference.
type Object struct {
	id   string
	hier *Hierarchy
}

var _ reflection.ObjectRef = (*Object)(nil)

func (o *Object) RepositoryID() string { return o.id }

func (o *Object) IsA(id string) bool { return o.hier.IsA(o.id, id) }
