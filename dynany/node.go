package dynany

import (
	"reflect"

	"github.com/wippyai/anycodec/errors"
	"github.com/wippyai/anycodec/internal/numeric"
	"github.com/wippyai/anycodec/reflection"
	"github.com/wippyai/anycodec/typecode"
)

// node is one value in a tree. Aggregate components are created lazily:
// a nil entry in comps holds the default value of its type.
type node struct {
	tc    *typecode.TypeCode
	arena *typecode.Arena
	prim  any
	comps []*node
	disc  *node
	arm   int
	null  bool
}

func fail(format string, args ...any) error {
	return errors.New("", errors.KindReflection).Detail(format, args...).Build()
}

// resolve replaces a recursive placeholder with its target.
func resolve(tc *typecode.TypeCode, arena *typecode.Arena) (*typecode.TypeCode, error) {
	if tc == nil {
		return nil, fail("nil type descriptor")
	}
	if tc.Unalias().Kind != typecode.KindRecursive {
		return tc, nil
	}
	return arena.Resolve(tc)
}

func (n *node) kind() typecode.Kind {
	return n.tc.Unalias().Kind
}

func (n *node) rt() *typecode.TypeCode {
	return n.tc.Unalias()
}

// newNode returns the default value of tc.
func newNode(tc *typecode.TypeCode, arena *typecode.Arena) (*node, error) {
	tc, err := resolve(tc, arena)
	if err != nil {
		return nil, err
	}
	n := &node{tc: tc, arena: arena, arm: -1}
	rt := tc.Unalias()

	switch rt.Kind {
	case typecode.KindBoolean:
		n.prim = false
	case typecode.KindOctet, typecode.KindChar:
		n.prim = byte(0)
	case typecode.KindWChar:
		n.prim = uint32(0)
	case typecode.KindShort:
		n.prim = int16(0)
	case typecode.KindUShort:
		n.prim = uint16(0)
	case typecode.KindLong:
		n.prim = int32(0)
	case typecode.KindULong, typecode.KindEnum:
		n.prim = uint32(0)
	case typecode.KindLongLong:
		n.prim = int64(0)
	case typecode.KindULongLong:
		n.prim = uint64(0)
	case typecode.KindFloat:
		n.prim = float32(0)
	case typecode.KindDouble, typecode.KindLongDouble:
		n.prim = float64(0)
	case typecode.KindString:
		n.prim = ""
	case typecode.KindWString:
		n.prim = []uint32{}
	case typecode.KindFixed:
		v, err := numeric.ParseFixed("0", rt.Digits, rt.Scale)
		if err != nil {
			v = "0"
		}
		n.prim = v
	case typecode.KindTypeCode:
		n.prim = typecode.Primitive(typecode.KindNull)
	case typecode.KindAny:
		n.prim = reflection.Any{Type: typecode.Primitive(typecode.KindNull)}
	case typecode.KindObjref:
		n.prim = reflection.ObjectRef(nil)
	case typecode.KindStruct, typecode.KindException:
		n.comps = make([]*node, len(rt.Members))
	case typecode.KindArray:
		n.comps = make([]*node, rt.Length)
	case typecode.KindSequence:
		n.comps = []*node{}
	case typecode.KindUnion:
		if err := n.initUnion(); err != nil {
			return nil, err
		}
	case typecode.KindValue, typecode.KindValueBox:
		n.null = true
	}
	return n, nil
}

func (n *node) initUnion() error {
	rt := n.rt()
	if !typecode.ValidDiscriminator(rt.Discriminator) {
		return fail("illegal union discriminator type %s", typecode.Describe(rt.Discriminator))
	}
	disc, err := newNode(rt.Discriminator, n.arena)
	if err != nil {
		return err
	}
	n.disc = disc
	switch {
	case rt.DefaultIndex == 0:
		return n.setDefaultMember()
	case len(rt.Members) > 0:
		setRaw(disc, rt.Members[0].Label)
	}
	n.arm = rt.SelectArm(rawOf(disc))
	return nil
}

// valueMembers flattens a valuetype's chain, base members first.
func valueMembers(tc *typecode.TypeCode) []typecode.Member {
	chain := tc.Chain()
	var out []typecode.Member
	for i := len(chain) - 1; i >= 0; i-- {
		out = append(out, chain[i].Members...)
	}
	return out
}

// rawOf returns the label bits of a discriminator value.
func rawOf(n *node) uint64 {
	switch v := n.prim.(type) {
	case bool:
		if v {
			return 1
		}
		return 0
	case byte:
		return uint64(v)
	case int16:
		return uint64(int64(v))
	case uint16:
		return uint64(v)
	case int32:
		return uint64(int64(v))
	case uint32:
		return uint64(v)
	case int64:
		return uint64(v)
	case uint64:
		return v
	}
	return 0
}

// setRaw stores label bits into a discriminator value.
func setRaw(n *node, raw uint64) {
	switch n.prim.(type) {
	case bool:
		n.prim = raw != 0
	case byte:
		n.prim = byte(raw)
	case int16:
		n.prim = int16(raw)
	case uint16:
		n.prim = uint16(raw)
	case int32:
		n.prim = int32(raw)
	case uint32:
		n.prim = uint32(raw)
	case int64:
		n.prim = int64(raw)
	case uint64:
		n.prim = raw
	}
}

// discRange is the number of distinct discriminator values worth probing
// when looking for one that selects the default member.
func discRange(tc *typecode.TypeCode) uint64 {
	switch tc.Kind {
	case typecode.KindBoolean:
		return 2
	case typecode.KindChar:
		return 256
	case typecode.KindEnum:
		return uint64(len(tc.Members))
	}
	return 1 << 16
}

func (n *node) setDefaultMember() error {
	rt := n.rt()
	if rt.DefaultIndex < 0 {
		return fail("union %s has no default member", rt.DisplayName())
	}
	used := make(map[uint64]bool, len(rt.Members))
	for i, m := range rt.Members {
		if i != rt.DefaultIndex {
			used[m.Label] = true
		}
	}
	limit := discRange(rt.Discriminator.Unalias())
	for raw := uint64(0); raw < limit; raw++ {
		if !used[raw] {
			setRaw(n.disc, raw)
			n.syncArm()
			return nil
		}
	}
	return fail("union %s has no discriminator value left for its default member", rt.DisplayName())
}

// syncArm resets the member when the discriminator selects another arm.
func (n *node) syncArm() {
	arm := n.rt().SelectArm(rawOf(n.disc))
	if arm != n.arm {
		n.arm = arm
		n.comps = nil
	}
}

// component returns component i, creating it on first access.
func (n *node) component(i int) (*node, error) {
	switch n.kind() {
	case typecode.KindUnion:
		n.syncArm()
		if i == 0 {
			return n.disc, nil
		}
		if n.arm < 0 {
			return nil, fail("union %s has no active member", n.rt().DisplayName())
		}
		if n.comps == nil {
			m, err := newNode(n.rt().Members[n.arm].Type, n.arena)
			if err != nil {
				return nil, err
			}
			n.comps = []*node{m}
		}
		return n.comps[0], nil
	}

	if i < 0 || i >= len(n.comps) {
		return nil, fail("component %d out of range", i)
	}
	if n.comps[i] == nil {
		c, err := newNode(n.componentType(i), n.arena)
		if err != nil {
			return nil, err
		}
		n.comps[i] = c
	}
	return n.comps[i], nil
}

func (n *node) componentType(i int) *typecode.TypeCode {
	rt := n.rt()
	switch rt.Kind {
	case typecode.KindStruct, typecode.KindException:
		return rt.Members[i].Type
	case typecode.KindValue:
		return valueMembers(rt)[i].Type
	}
	return rt.Content
}

func (n *node) componentCount() int {
	switch n.kind() {
	case typecode.KindUnion:
		n.syncArm()
		if n.arm < 0 {
			return 1
		}
		return 2
	case typecode.KindValue, typecode.KindValueBox:
		if n.null {
			return 0
		}
	}
	return len(n.comps)
}

func copyNode(n *node) *node {
	if n == nil {
		return nil
	}
	out := &node{tc: n.tc, arena: n.arena, prim: n.prim, arm: n.arm, null: n.null}
	if w, ok := n.prim.([]uint32); ok {
		out.prim = append([]uint32(nil), w...)
	}
	if n.comps != nil {
		out.comps = make([]*node, len(n.comps))
		for i, c := range n.comps {
			out.comps[i] = copyNode(c)
		}
	}
	out.disc = copyNode(n.disc)
	return out
}

// Equal reports whether two values have equal types and contents.
func Equal(a, b reflection.Any) bool {
	if !typecode.Equal(a.Type, b.Type) {
		return false
	}
	an, aok := a.Value.(*node)
	bn, bok := b.Value.(*node)
	if !aok || !bok {
		return a.Value == nil && b.Value == nil
	}
	return equalNodes(an, bn)
}

func equalNodes(a, b *node) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		ref := a
		if ref == nil {
			ref = b
		}
		def, err := newNode(ref.tc, ref.arena)
		if err != nil {
			return false
		}
		if a == nil {
			a = def
		} else {
			b = def
		}
	}

	switch a.kind() {
	case typecode.KindUnion:
		a.syncArm()
		b.syncArm()
		if a.arm != b.arm || rawOf(a.disc) != rawOf(b.disc) {
			return false
		}
		if a.arm < 0 {
			return true
		}
		am, err1 := a.component(1)
		bm, err2 := b.component(1)
		return err1 == nil && err2 == nil && equalNodes(am, bm)
	case typecode.KindValue, typecode.KindValueBox:
		if a.null != b.null {
			return false
		}
	case typecode.KindTypeCode:
		return typecode.Equal(a.prim.(*typecode.TypeCode), b.prim.(*typecode.TypeCode))
	case typecode.KindAny:
		return Equal(a.prim.(reflection.Any), b.prim.(reflection.Any))
	case typecode.KindObjref:
		return a.prim == b.prim
	}

	if len(a.comps) != len(b.comps) {
		return false
	}
	for i := range a.comps {
		if !equalNodes(a.comps[i], b.comps[i]) {
			return false
		}
	}
	return reflect.DeepEqual(a.prim, b.prim)
}
