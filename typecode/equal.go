package typecode

type pair struct{ a, b *TypeCode }

// Equal reports whether a and b describe the same structure. Aliases are
// looked through and type names ignored. Identities are compared only when
// both sides carry one. A recursive placeholder equals any descriptor with
// its identity.
func Equal(a, b *TypeCode) bool {
	return equal(a, b, make(map[pair]bool))
}

func equal(a, b *TypeCode, seen map[pair]bool) bool {
	a, b = a.Unalias(), b.Unalias()
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	if a.Kind == KindRecursive || b.Kind == KindRecursive {
		return a.ID == b.ID
	}
	if a.Kind != b.Kind {
		return false
	}
	p := pair{a, b}
	if seen[p] {
		return true
	}
	seen[p] = true

	if a.ID != "" && b.ID != "" && a.ID != b.ID {
		return false
	}

	switch a.Kind {
	case KindString, KindWString:
		return a.Length == b.Length
	case KindFixed:
		return a.Digits == b.Digits && a.Scale == b.Scale
	case KindSequence, KindArray:
		return a.Length == b.Length && equal(a.Content, b.Content, seen)
	case KindValueBox:
		return equal(a.Content, b.Content, seen)
	case KindStruct, KindException, KindEnum:
		return membersEqual(a, b, seen)
	case KindUnion:
		if a.DefaultIndex != b.DefaultIndex || !equal(a.Discriminator, b.Discriminator, seen) {
			return false
		}
		if len(a.Members) != len(b.Members) {
			return false
		}
		for i := range a.Members {
			if i != a.DefaultIndex && a.Members[i].Label != b.Members[i].Label {
				return false
			}
			if !equal(a.Members[i].Type, b.Members[i].Type, seen) {
				return false
			}
		}
		return true
	case KindValue:
		if a.Modifier != b.Modifier || !membersEqual(a, b, seen) {
			return false
		}
		for i := range a.Members {
			if a.Members[i].Visibility != b.Members[i].Visibility {
				return false
			}
		}
		if (a.Base == nil) != (b.Base == nil) {
			return false
		}
		return a.Base == nil || equal(a.Base, b.Base, seen)
	}
	return true
}

func membersEqual(a, b *TypeCode, seen map[pair]bool) bool {
	if len(a.Members) != len(b.Members) {
		return false
	}
	for i := range a.Members {
		if a.Members[i].Name != b.Members[i].Name {
			return false
		}
		if !equal(a.Members[i].Type, b.Members[i].Type, seen) {
			return false
		}
	}
	return true
}
