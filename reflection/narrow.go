package reflection

import (
	"github.com/wippyai/anycodec/errors"
	"github.com/wippyai/anycodec/typecode"
)

func kindOf(c Cursor) typecode.Kind {
	return c.Type().Unalias().Kind
}

func narrowError(c Cursor, view string) error {
	return errors.New("", errors.KindReflection).
		Detail("cursor for %s does not provide %s", typecode.Describe(c.Type()), view).
		Build()
}

// AsStruct narrows c to a StructView.
func AsStruct(c Cursor) (StructView, error) {
	if k := kindOf(c); k == typecode.KindStruct || k == typecode.KindException {
		if v, ok := c.(StructView); ok {
			return v, nil
		}
	}
	return nil, narrowError(c, "a struct view")
}

// AsUnion narrows c to a UnionView.
func AsUnion(c Cursor) (UnionView, error) {
	if kindOf(c) == typecode.KindUnion {
		if v, ok := c.(UnionView); ok {
			return v, nil
		}
	}
	return nil, narrowError(c, "a union view")
}

// AsSequence narrows c to a SequenceView.
func AsSequence(c Cursor) (SequenceView, error) {
	if kindOf(c) == typecode.KindSequence {
		if v, ok := c.(SequenceView); ok {
			return v, nil
		}
	}
	return nil, narrowError(c, "a sequence view")
}

// AsEnum narrows c to an EnumView.
func AsEnum(c Cursor) (EnumView, error) {
	if kindOf(c) == typecode.KindEnum {
		if v, ok := c.(EnumView); ok {
			return v, nil
		}
	}
	return nil, narrowError(c, "an enum view")
}

// AsValue narrows c to a ValueView.
func AsValue(c Cursor) (ValueView, error) {
	if kindOf(c) == typecode.KindValue {
		if v, ok := c.(ValueView); ok {
			return v, nil
		}
	}
	return nil, narrowError(c, "a value view")
}

// AsBox narrows c to a BoxView.
func AsBox(c Cursor) (BoxView, error) {
	if kindOf(c) == typecode.KindValueBox {
		if v, ok := c.(BoxView); ok {
			return v, nil
		}
	}
	return nil, narrowError(c, "a value box view")
}

// AsFixed narrows c to a FixedView.
func AsFixed(c Cursor) (FixedView, error) {
	if kindOf(c) == typecode.KindFixed {
		if v, ok := c.(FixedView); ok {
			return v, nil
		}
	}
	return nil, narrowError(c, "a fixed view")
}

// AsByteBlock returns the byte block of c when the provider offers one.
func AsByteBlock(c Cursor) (ByteBlock, bool) {
	b, ok := c.(ByteBlock)
	return b, ok
}
