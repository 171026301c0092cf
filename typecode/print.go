package typecode

import (
	"strconv"

	"github.com/wippyai/anycodec/external"
)

// guard holds the identities of the structs, unions and valuetypes being
// printed by one call.
type guard map[string]struct{}

// Print renders tc in its external form. Each call uses a fresh recursion
// guard, so a self-referential descriptor prints a recursive token where it
// refers back to itself.
func Print(tc *TypeCode) external.Value {
	return emit(tc, make(guard))
}

// Describe returns the printed text of tc.
func Describe(tc *TypeCode) string {
	if tc == nil {
		return ""
	}
	return Print(tc).String()
}

func emit(tc *TypeCode, g guard) external.Value {
	tc = tc.Unalias()
	if tc == nil {
		return external.Scalar("void")
	}
	if tc.Kind.IsPrimitive() {
		return external.Scalar(primitiveNames[tc.Kind])
	}

	if tc.Kind.guarded() && tc.ID != "" {
		if _, busy := g[tc.ID]; busy {
			return external.List{external.Scalar("recursive"), external.Scalar(tc.ID)}
		}
		g[tc.ID] = struct{}{}
		defer delete(g, tc.ID)
	}

	switch tc.Kind {
	case KindString, KindWString:
		name := external.Scalar(tc.Kind.String())
		if tc.Length == 0 {
			return name
		}
		return external.List{name, external.Uint(uint64(tc.Length))}

	case KindObjref:
		if tc.ID == ObjectID || tc.ID == "" {
			return external.Scalar("Object")
		}
		return external.List{external.Scalar("Object"), external.Scalar(tc.ID)}

	case KindSequence:
		out := external.List{external.Scalar("sequence"), emit(tc.Content, g)}
		if tc.Length != 0 {
			out = append(out, external.Uint(uint64(tc.Length)))
		}
		return out

	case KindArray:
		return external.List{
			external.Scalar("array"),
			emit(tc.Content, g),
			external.Uint(uint64(tc.Length)),
		}

	case KindFixed:
		return external.List{
			external.Scalar("fixed"),
			external.Uint(uint64(tc.Digits)),
			external.Int(int64(tc.Scale)),
		}

	case KindStruct, KindException:
		members := make(external.List, 0, 2*len(tc.Members))
		for _, m := range tc.Members {
			members = append(members, external.Scalar(m.Name), emit(m.Type, g))
		}
		return external.List{external.Scalar(tc.Kind.String()), external.Scalar(tc.ID), members}

	case KindUnion:
		arms := make(external.List, 0, 2*len(tc.Members))
		for i, m := range tc.Members {
			label := "(default)"
			if i != tc.DefaultIndex {
				label = FormatLabel(tc.Discriminator, m.Label)
			}
			arms = append(arms, external.Scalar(label), emit(m.Type, g))
		}
		return external.List{
			external.Scalar("union"),
			external.Scalar(tc.ID),
			emit(tc.Discriminator, g),
			arms,
		}

	case KindEnum:
		names := make(external.List, len(tc.Members))
		for i, m := range tc.Members {
			names[i] = external.Scalar(m.Name)
		}
		return external.List{external.Scalar("enum"), names}

	case KindValue:
		members := make(external.List, 0, 3*len(tc.Members))
		for _, m := range tc.Members {
			members = append(members,
				external.Scalar(m.Visibility.String()),
				external.Scalar(m.Name),
				emit(m.Type, g))
		}
		var base external.Value = external.Scalar("0")
		if tc.Base != nil {
			base = emit(tc.Base, g)
		}
		return external.List{
			external.Scalar("valuetype"),
			external.Scalar(tc.ID),
			members,
			base,
			external.Scalar(tc.Modifier.String()),
		}

	case KindValueBox:
		return external.List{external.Scalar("valuebox"), external.Scalar(tc.ID), emit(tc.Content, g)}

	case KindRecursive:
		return external.List{external.Scalar("recursive"), external.Scalar(tc.ID)}
	}
	return external.Scalar("unknown:" + strconv.Itoa(int(tc.Kind)))
}
