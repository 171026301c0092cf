// Package typecode defines runtime type descriptors: a closed set of kinds
// with kind-specific shape, structural equality, an identity-keyed arena
// for self-referential descriptors, and a printer/parser pair for their
// external form.
//
// Descriptors are immutable once constructed. Self-reference is expressed
// with a recursive placeholder naming the identity of an enclosing struct,
// union or valuetype; Arena resolves placeholders by identity.
package typecode

import (
	"fmt"
)

// ObjectID is the identity of the universal base object type.
const ObjectID = "IDL:omg.org/CORBA/Object:1.0"

// Modifier is a valuetype modifier.
type Modifier uint8

const (
	ModNone Modifier = iota
	ModCustom
	ModAbstract
	ModTruncatable
)

var modifierNames = [...]string{
	ModNone:        "",
	ModCustom:      "custom",
	ModAbstract:    "abstract",
	ModTruncatable: "truncatable",
}

func (m Modifier) String() string {
	if int(m) < len(modifierNames) {
		return modifierNames[m]
	}
	return ""
}

// Visibility is a valuetype member's visibility.
type Visibility uint8

const (
	Private Visibility = iota
	Public
)

func (v Visibility) String() string {
	if v == Private {
		return "private"
	}
	return "public"
}

// Member is one member of a struct, exception, union, enum or valuetype.
// Enum members carry only a name. Union members carry a label encoded as
// raw bits of the discriminator value.
type Member struct {
	Name       string
	Type       *TypeCode
	Label      uint64
	Visibility Visibility
}

// TypeCode is a type descriptor node. Only the fields relevant to Kind
// are set.
type TypeCode struct {
	Kind          Kind
	ID            string
	Name          string
	Content       *TypeCode
	Length        uint32
	Members       []Member
	Discriminator *TypeCode
	DefaultIndex  int
	Base          *TypeCode
	Modifier      Modifier
	Digits        uint16
	Scale         int16
}

var primitives = newPrimitives()

var (
	// String is the unbounded string descriptor.
	String = &TypeCode{Kind: KindString, DefaultIndex: -1}
	// WString is the unbounded wide string descriptor.
	WString = &TypeCode{Kind: KindWString, DefaultIndex: -1}
	// Object is the universal object reference descriptor.
	Object = &TypeCode{Kind: KindObjref, ID: ObjectID, Name: "Object", DefaultIndex: -1}
)

func newPrimitives() (p [KindWChar + 1]*TypeCode) {
	for k := KindNull; k <= KindWChar; k++ {
		p[k] = &TypeCode{Kind: k, DefaultIndex: -1}
	}
	return p
}

// Primitive returns the shared descriptor for a primitive kind.
func Primitive(k Kind) *TypeCode {
	if !k.IsPrimitive() {
		panic(fmt.Sprintf("typecode: %s is not a primitive kind", k))
	}
	return primitives[k]
}

// NewString returns a string descriptor; bound 0 means unbounded.
func NewString(bound uint32) *TypeCode {
	if bound == 0 {
		return String
	}
	return &TypeCode{Kind: KindString, Length: bound, DefaultIndex: -1}
}

// NewWString returns a wide string descriptor; bound 0 means unbounded.
func NewWString(bound uint32) *TypeCode {
	if bound == 0 {
		return WString
	}
	return &TypeCode{Kind: KindWString, Length: bound, DefaultIndex: -1}
}

func NewFixed(digits uint16, scale int16) *TypeCode {
	return &TypeCode{Kind: KindFixed, Digits: digits, Scale: scale, DefaultIndex: -1}
}

// NewSequence returns a sequence descriptor; bound 0 means unbounded.
func NewSequence(elem *TypeCode, bound uint32) *TypeCode {
	return &TypeCode{Kind: KindSequence, Content: elem, Length: bound, DefaultIndex: -1}
}

func NewArray(elem *TypeCode, length uint32) *TypeCode {
	return &TypeCode{Kind: KindArray, Content: elem, Length: length, DefaultIndex: -1}
}

func NewAlias(id, name string, content *TypeCode) *TypeCode {
	return &TypeCode{Kind: KindAlias, ID: id, Name: name, Content: content, DefaultIndex: -1}
}

func NewStruct(id, name string, members []Member) *TypeCode {
	return &TypeCode{Kind: KindStruct, ID: id, Name: name, Members: members, DefaultIndex: -1}
}

func NewException(id, name string, members []Member) *TypeCode {
	return &TypeCode{Kind: KindException, ID: id, Name: name, Members: members, DefaultIndex: -1}
}

// NewUnion returns a union descriptor. defaultIndex names the default
// member, or -1 when there is none; the default member's label is unused.
func NewUnion(id, name string, disc *TypeCode, members []Member, defaultIndex int) *TypeCode {
	return &TypeCode{
		Kind:          KindUnion,
		ID:            id,
		Name:          name,
		Discriminator: disc,
		Members:       members,
		DefaultIndex:  defaultIndex,
	}
}

func NewEnum(id, name string, names []string) *TypeCode {
	members := make([]Member, len(names))
	for i, n := range names {
		members[i] = Member{Name: n}
	}
	return &TypeCode{Kind: KindEnum, ID: id, Name: name, Members: members, DefaultIndex: -1}
}

// NewObjref returns an object reference descriptor. An empty id or the
// base object id yields the universal Object descriptor.
func NewObjref(id, name string) *TypeCode {
	if id == "" || (id == ObjectID && (name == "" || name == "Object")) {
		return Object
	}
	return &TypeCode{Kind: KindObjref, ID: id, Name: name, DefaultIndex: -1}
}

// NewValue returns a valuetype descriptor. base may be nil.
func NewValue(id, name string, modifier Modifier, base *TypeCode, members []Member) *TypeCode {
	return &TypeCode{
		Kind:         KindValue,
		ID:           id,
		Name:         name,
		Modifier:     modifier,
		Base:         base,
		Members:      members,
		DefaultIndex: -1,
	}
}

func NewValueBox(id, name string, content *TypeCode) *TypeCode {
	return &TypeCode{Kind: KindValueBox, ID: id, Name: name, Content: content, DefaultIndex: -1}
}

// NewRecursive returns a placeholder for the enclosing descriptor with the
// given identity.
func NewRecursive(id string) *TypeCode {
	return &TypeCode{Kind: KindRecursive, ID: id, DefaultIndex: -1}
}

// Unalias strips alias wrappers.
func (tc *TypeCode) Unalias() *TypeCode {
	for tc != nil && tc.Kind == KindAlias {
		tc = tc.Content
	}
	return tc
}

// DisplayName is the descriptor's name, or its identity when unnamed.
func (tc *TypeCode) DisplayName() string {
	if tc.Name != "" {
		return tc.Name
	}
	return tc.ID
}

func (tc *TypeCode) MemberCount() int { return len(tc.Members) }

func (tc *TypeCode) MemberName(i int) string { return tc.Members[i].Name }

func (tc *TypeCode) MemberType(i int) *TypeCode { return tc.Members[i].Type }

func (tc *TypeCode) MemberLabel(i int) uint64 { return tc.Members[i].Label }

func (tc *TypeCode) MemberVisibility(i int) Visibility { return tc.Members[i].Visibility }

func (tc *TypeCode) ContentType() *TypeCode { return tc.Content }

// Bound is the length limit of a string, sequence or array; 0 means
// unbounded for strings and sequences.
func (tc *TypeCode) Bound() uint32 { return tc.Length }

func (tc *TypeCode) BaseType() *TypeCode { return tc.Base }

func (tc *TypeCode) DiscriminatorType() *TypeCode { return tc.Discriminator }

// MemberIndex returns the index of the member called name, or -1.
func (tc *TypeCode) MemberIndex(name string) int {
	for i := range tc.Members {
		if tc.Members[i].Name == name {
			return i
		}
	}
	return -1
}

// Arm maps a union label to a member.
type Arm struct {
	Label   uint64
	Index   int
	Default bool
}

// Arms lists the union's labels in declaration order. The default member,
// if any, appears with Default set.
func (tc *TypeCode) Arms() []Arm {
	arms := make([]Arm, len(tc.Members))
	for i, m := range tc.Members {
		arms[i] = Arm{Label: m.Label, Index: i, Default: i == tc.DefaultIndex}
	}
	return arms
}

// SelectArm returns the member selected by a discriminator value, or -1
// when no member is active.
func (tc *TypeCode) SelectArm(label uint64) int {
	for i, m := range tc.Members {
		if i != tc.DefaultIndex && m.Label == label {
			return i
		}
	}
	return tc.DefaultIndex
}

// Chain returns the valuetype inheritance chain, most derived first.
func (tc *TypeCode) Chain() []*TypeCode {
	var chain []*TypeCode
	seen := make(map[*TypeCode]bool)
	for t := tc.Unalias(); t != nil && t.Kind == KindValue && !seen[t]; t = t.Base.Unalias() {
		seen[t] = true
		chain = append(chain, t)
	}
	return chain
}

// ContainsObjref reports whether values of tc can hold object references.
func (tc *TypeCode) ContainsObjref() bool {
	return containsObjref(tc, make(map[*TypeCode]bool))
}

func containsObjref(tc *TypeCode, seen map[*TypeCode]bool) bool {
	if tc == nil || seen[tc] {
		return false
	}
	seen[tc] = true
	switch tc.Kind {
	case KindObjref:
		return true
	case KindAlias, KindSequence, KindArray, KindValueBox:
		return containsObjref(tc.Content, seen)
	case KindStruct, KindException, KindUnion, KindValue:
		for _, m := range tc.Members {
			if containsObjref(m.Type, seen) {
				return true
			}
		}
		return containsObjref(tc.Base, seen)
	}
	return false
}

func (tc *TypeCode) String() string {
	return Describe(tc)
}
