package typecode

import (
	"github.com/wippyai/anycodec/errors"
)

// Arena indexes the structs, unions and valuetypes reachable from a set of
// root descriptors by identity, so that recursive placeholders can be
// looked up instead of followed through back-pointers.
type Arena struct {
	nodes map[string]*TypeCode
}

// NewArena returns an arena holding every identity-bearing descriptor
// reachable from roots.
func NewArena(roots ...*TypeCode) *Arena {
	a := &Arena{nodes: make(map[string]*TypeCode)}
	for _, r := range roots {
		a.Add(r)
	}
	return a
}

// Add registers tc and its descendants. The first descriptor seen for an
// identity wins.
func (a *Arena) Add(tc *TypeCode) {
	a.walk(tc, make(map[*TypeCode]bool))
}

func (a *Arena) walk(tc *TypeCode, seen map[*TypeCode]bool) {
	if tc == nil || seen[tc] {
		return
	}
	seen[tc] = true
	if tc.Kind.guarded() && tc.ID != "" {
		if _, ok := a.nodes[tc.ID]; !ok {
			a.nodes[tc.ID] = tc
		}
	}
	a.walk(tc.Content, seen)
	a.walk(tc.Discriminator, seen)
	a.walk(tc.Base, seen)
	for _, m := range tc.Members {
		a.walk(m.Type, seen)
	}
}

// Lookup returns the descriptor registered for id.
func (a *Arena) Lookup(id string) (*TypeCode, bool) {
	tc, ok := a.nodes[id]
	return tc, ok
}

// Len returns the number of registered identities.
func (a *Arena) Len() int {
	return len(a.nodes)
}

// Resolve strips aliases and replaces a recursive placeholder with the
// descriptor registered for its identity.
func (a *Arena) Resolve(tc *TypeCode) (*TypeCode, error) {
	tc = tc.Unalias()
	if tc == nil {
		return nil, errors.InvalidInput(errors.PhaseResolve, "nil type descriptor")
	}
	if tc.Kind != KindRecursive {
		return tc, nil
	}
	target, ok := a.nodes[tc.ID]
	if !ok {
		return nil, errors.NotFound(errors.PhaseResolve, "recursive type", tc.ID)
	}
	return target, nil
}
