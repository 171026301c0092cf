package handle

import (
	stderrors "errors"
	"sync"

	"github.com/wippyai/anycodec/reflection"
)

var ErrClosed = stderrors.New("handle backend closed")

// LocalBackend is an in-memory Backend that reuses freed slots.
type LocalBackend struct {
	entries  []entry
	freeList []Slot
	mu       sync.RWMutex
	closed   bool
}

type entry struct {
	ref    reflection.ObjectRef
	typeID string
	valid  bool
}

func NewLocalBackend() *LocalBackend {
	return &LocalBackend{
		entries:  make([]entry, 0, 64),
		freeList: make([]Slot, 0, 16),
	}
}

func (b *LocalBackend) Create(typeID string, ref reflection.ObjectRef) (Slot, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return 0, ErrClosed
	}

	e := entry{ref: ref, typeID: typeID, valid: true}

	if len(b.freeList) > 0 {
		slot := b.freeList[len(b.freeList)-1]
		b.freeList = b.freeList[:len(b.freeList)-1]
		b.entries[slot-1] = e
		return slot, nil
	}

	b.entries = append(b.entries, e)
	return Slot(len(b.entries)), nil
}

// lookup returns the live entry for slot. Callers hold b.mu.
func (b *LocalBackend) lookup(slot Slot) (*entry, bool) {
	if slot == 0 || int(slot-1) >= len(b.entries) {
		return nil, false
	}
	e := &b.entries[slot-1]
	if !e.valid {
		return nil, false
	}
	return e, true
}

func (b *LocalBackend) Get(slot Slot) (reflection.ObjectRef, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	e, ok := b.lookup(slot)
	if !ok {
		return nil, false
	}
	return e.ref, true
}

func (b *LocalBackend) Drop(slot Slot) (reflection.ObjectRef, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	e, ok := b.lookup(slot)
	if !ok {
		return nil, false
	}
	ref := e.ref
	*e = entry{}
	b.freeList = append(b.freeList, slot)
	return ref, true
}

// TypeID returns the most derived type known for a slot.
func (b *LocalBackend) TypeID(slot Slot) (string, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	e, ok := b.lookup(slot)
	if !ok {
		return "", false
	}
	return e.typeID, true
}

// SetTypeID replaces the known type of a slot.
func (b *LocalBackend) SetTypeID(slot Slot, typeID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	e, ok := b.lookup(slot)
	if !ok {
		return false
	}
	e.typeID = typeID
	return true
}

func (b *LocalBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	for i := range b.entries {
		if b.entries[i].valid {
			if r, ok := b.entries[i].ref.(Releaser); ok {
				r.Release()
			}
		}
	}

	b.entries = nil
	b.freeList = nil
	return nil
}

// Len returns the number of live slots.
func (b *LocalBackend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	count := 0
	for _, e := range b.entries {
		if e.valid {
			count++
		}
	}
	return count
}

// Each calls fn for every live slot until fn returns false.
func (b *LocalBackend) Each(fn func(Slot, string, reflection.ObjectRef) bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for i, e := range b.entries {
		if e.valid && !fn(Slot(i+1), e.typeID, e.ref) {
			break
		}
	}
}
