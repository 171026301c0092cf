package handle

import (
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wippyai/anycodec/errors"
	"github.com/wippyai/anycodec/external"
	"github.com/wippyai/anycodec/reflection"
)

// Registry maps object references to external handles and back. Handle
// names carry a per-registry namespace, so a handle minted by one registry
// never resolves in another. Registry is safe for concurrent use.
type Registry struct {
	backend   *LocalBackend
	oracle    reflection.TypeOracle
	prefix    string
	observers []Observer
	obsMu     sync.RWMutex
	closed    bool
	closeMu   sync.RWMutex
}

// NewRegistry returns an empty registry. oracle answers is-a questions for
// Refine; when nil, a known type is only kept if it equals the new one.
func NewRegistry(oracle reflection.TypeOracle) *Registry {
	return &Registry{
		backend: NewLocalBackend(),
		oracle:  oracle,
		prefix:  "_obj_" + uuid.NewString()[:8] + "_",
	}
}

func (r *Registry) name(slot Slot) external.Handle {
	return external.Handle(r.prefix + strconv.FormatUint(uint64(slot), 10))
}

func (r *Registry) slot(h string) (Slot, bool) {
	rest, ok := strings.CutPrefix(h, r.prefix)
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseUint(rest, 10, 32)
	if err != nil || n == 0 {
		return 0, false
	}
	return Slot(n), true
}

// Mint stores ref and returns a new handle for it. The handle's known type
// starts as the reference's own repository id.
func (r *Registry) Mint(ref reflection.ObjectRef) (external.Handle, error) {
	r.closeMu.RLock()
	closed := r.closed
	r.closeMu.RUnlock()
	if closed || ref == nil {
		return "", errors.HandleResolution(errors.PhaseExtract, "", "cannot mint a handle")
	}

	typeID := ref.RepositoryID()
	slot, err := r.backend.Create(typeID, ref)
	if err != nil {
		return "", errors.Wrap(errors.PhaseExtract, errors.KindHandleResolution, err, "cannot mint a handle")
	}
	h := r.name(slot)
	Logger().Debug("handle minted", zap.String("handle", string(h)), zap.String("type", typeID))

	r.notify(Event{Type: EventMinted, Handle: h, TypeID: typeID, Ref: ref})
	return h, nil
}

// Resolve returns the reference behind an external handle.
func (r *Registry) Resolve(v external.Value) (reflection.ObjectRef, error) {
	text := ""
	if v != nil {
		text = v.String()
	}
	if slot, ok := r.slot(text); ok {
		if ref, ok := r.backend.Get(slot); ok {
			return ref, nil
		}
	}
	return nil, errors.HandleResolution(errors.PhasePack, text, "no such object: "+text)
}

// Type returns the most derived type known for a handle.
func (r *Registry) Type(h external.Handle) (string, bool) {
	slot, ok := r.slot(string(h))
	if !ok {
		return "", false
	}
	return r.backend.TypeID(slot)
}

// Refine records that the object behind h is known to be of type id. The
// known type is upgraded, never downgraded: an empty id or an id the known
// type already derives from leaves it unchanged. Refine reports whether
// the known type changed.
func (r *Registry) Refine(h external.Handle, id string) bool {
	if id == "" {
		return false
	}
	slot, ok := r.slot(string(h))
	if !ok {
		return false
	}
	known, ok := r.backend.TypeID(slot)
	if !ok || known == id {
		return false
	}
	if known != "" && r.oracle != nil && r.oracle.IsA(known, id) {
		return false
	}
	if !r.backend.SetTypeID(slot, id) {
		return false
	}
	Logger().Debug("handle refined",
		zap.String("handle", string(h)), zap.String("from", known), zap.String("to", id))

	ref, _ := r.backend.Get(slot)
	r.notify(Event{Type: EventRefined, Handle: h, TypeID: id, Ref: ref})
	return true
}

// Release forgets a handle. A reference implementing Releaser is released.
func (r *Registry) Release(h external.Handle) bool {
	slot, ok := r.slot(string(h))
	if !ok {
		return false
	}
	typeID, _ := r.backend.TypeID(slot)
	ref, ok := r.backend.Drop(slot)
	if !ok {
		return false
	}
	if rel, ok := ref.(Releaser); ok {
		rel.Release()
	}
	Logger().Debug("handle released", zap.String("handle", string(h)))

	r.notify(Event{Type: EventReleased, Handle: h, TypeID: typeID, Ref: ref})
	return true
}

func (r *Registry) Subscribe(o Observer) {
	r.obsMu.Lock()
	defer r.obsMu.Unlock()
	r.observers = append(r.observers, o)
}

func (r *Registry) Unsubscribe(o Observer) {
	r.obsMu.Lock()
	defer r.obsMu.Unlock()
	for i, obs := range r.observers {
		if obs == o {
			r.observers = append(r.observers[:i], r.observers[i+1:]...)
			return
		}
	}
}

// Len returns the number of live handles.
func (r *Registry) Len() int {
	return r.backend.Len()
}

// Clear releases every handle.
func (r *Registry) Clear() {
	var slots []Slot
	r.backend.Each(func(s Slot, _ string, _ reflection.ObjectRef) bool {
		slots = append(slots, s)
		return true
	})
	for _, s := range slots {
		r.Release(r.name(s))
	}
}

// Close releases every handle and stops minting new ones.
func (r *Registry) Close() error {
	r.closeMu.Lock()
	r.closed = true
	r.closeMu.Unlock()

	return r.backend.Close()
}

func (r *Registry) notify(e Event) {
	r.obsMu.RLock()
	defer r.obsMu.RUnlock()
	for _, o := range r.observers {
		o.OnHandleEvent(e)
	}
}
