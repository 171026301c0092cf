package typecode

// Kind is the closed set of descriptor kinds.
type Kind uint8

const (
	KindNull Kind = iota
	KindVoid
	KindShort
	KindLong
	KindUShort
	KindULong
	KindFloat
	KindDouble
	KindBoolean
	KindChar
	KindOctet
	KindAny
	KindTypeCode
	KindLongLong
	KindULongLong
	KindLongDouble
	KindWChar
	KindString
	KindWString
	KindFixed
	KindObjref
	KindSequence
	KindArray
	KindAlias
	KindStruct
	KindException
	KindUnion
	KindEnum
	KindValue
	KindValueBox
	KindRecursive

	// NumKinds sizes per-kind dispatch tables.
	NumKinds
)

var kindNames = [...]string{
	KindNull:       "null",
	KindVoid:       "void",
	KindShort:      "short",
	KindLong:       "long",
	KindUShort:     "ushort",
	KindULong:      "ulong",
	KindFloat:      "float",
	KindDouble:     "double",
	KindBoolean:    "boolean",
	KindChar:       "char",
	KindOctet:      "octet",
	KindAny:        "any",
	KindTypeCode:   "TypeCode",
	KindLongLong:   "longlong",
	KindULongLong:  "ulonglong",
	KindLongDouble: "longdouble",
	KindWChar:      "wchar",
	KindString:     "string",
	KindWString:    "wstring",
	KindFixed:      "fixed",
	KindObjref:     "objref",
	KindSequence:   "sequence",
	KindArray:      "array",
	KindAlias:      "alias",
	KindStruct:     "struct",
	KindException:  "exception",
	KindUnion:      "union",
	KindEnum:       "enum",
	KindValue:      "value",
	KindValueBox:   "valuebox",
	KindRecursive:  "recursive",
}

// primitiveNames are the printed forms of kinds that need no parameters.
var primitiveNames = [...]string{
	KindNull:       "null",
	KindVoid:       "void",
	KindShort:      "short",
	KindLong:       "long",
	KindUShort:     "unsigned short",
	KindULong:      "unsigned long",
	KindFloat:      "float",
	KindDouble:     "double",
	KindBoolean:    "boolean",
	KindChar:       "char",
	KindOctet:      "octet",
	KindAny:        "any",
	KindTypeCode:   "TypeCode",
	KindLongLong:   "long long",
	KindULongLong:  "unsigned long long",
	KindLongDouble: "long double",
	KindWChar:      "wchar",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// IsPrimitive reports whether k is fully described by its kind.
func (k Kind) IsPrimitive() bool {
	return k <= KindWChar
}

// IsInteger reports whether k is one of the integer kinds.
func (k Kind) IsInteger() bool {
	switch k {
	case KindShort, KindLong, KindUShort, KindULong, KindLongLong, KindULongLong:
		return true
	}
	return false
}

// IsSigned reports whether k is a signed integer kind.
func (k Kind) IsSigned() bool {
	return k == KindShort || k == KindLong || k == KindLongLong
}

// guarded kinds can refer to themselves through a recursive placeholder.
func (k Kind) guarded() bool {
	return k == KindStruct || k == KindUnion || k == KindValue
}
