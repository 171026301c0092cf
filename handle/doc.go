// Package handle turns object references into external handles and back.
//
// A Registry stores references in a slot table and names each slot with a
// handle string carrying a per-registry namespace:
//
//	reg := handle.NewRegistry(hierarchy)
//
//	h, err := reg.Mint(ref)      // "_obj_1f3a9c2e_1"
//	ref, err = reg.Resolve(h)    // the same reference
//	reg.Release(h)
//
// # Type refinement
//
// Each handle remembers the most derived interface known for its object.
// Refine upgrades that knowledge but never downgrades it: if the known type
// already derives from the new one, nothing changes.
//
//	reg.Refine(h, "IDL:Account:1.0")
//
// # Observers
//
// Observers receive EventMinted, EventRefined and EventReleased:
//
//	type audit struct{}
//
//	func (audit) OnHandleEvent(e handle.Event) {
//	    log.Printf("%s %s", e.Type, e.Handle)
//	}
//
//	reg.Subscribe(audit{})
//
// Handles are not garbage collected. Release them explicitly, or Close the
// registry to drop all of them.
package handle
