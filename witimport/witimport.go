// Package witimport converts WebAssembly Interface Type definitions into
// type descriptors, so that values described by a WIT package can be
// packed and extracted by the codec.
//
//	record point { x: s32, y: s32 }   ->  struct IDL:wit/point:1.0 {x long y long}
//	variant shape { none, circle(f64) } -> union on unsigned long
//	option<T>, result<T, E>           ->  unions on boolean
//	flags perms { read, write }       ->  struct of booleans
//	own<file>, borrow<file>           ->  object reference IDL:wit/file:1.0
package witimport

import (
	"strconv"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/anycodec/errors"
	"github.com/wippyai/anycodec/typecode"
)

// Converter maps WIT types to descriptors. Named type definitions are
// converted once and shared.
type Converter struct {
	cache map[*wit.TypeDef]*typecode.TypeCode
}

func New() *Converter {
	return &Converter{cache: make(map[*wit.TypeDef]*typecode.TypeCode)}
}

// RepositoryID returns the identity given to a named WIT type.
func RepositoryID(name string) string {
	return "IDL:wit/" + name + ":1.0"
}

// Convert returns the descriptor for t.
func (c *Converter) Convert(t wit.Type) (*typecode.TypeCode, error) {
	return c.convert(t, nil)
}

func (c *Converter) convert(t wit.Type, path []string) (*typecode.TypeCode, error) {
	switch t := t.(type) {
	case nil:
		return typecode.Primitive(typecode.KindVoid), nil
	case wit.Bool:
		return typecode.Primitive(typecode.KindBoolean), nil
	case wit.U8:
		return typecode.Primitive(typecode.KindOctet), nil
	case wit.S8, wit.S16:
		return typecode.Primitive(typecode.KindShort), nil
	case wit.U16:
		return typecode.Primitive(typecode.KindUShort), nil
	case wit.S32:
		return typecode.Primitive(typecode.KindLong), nil
	case wit.U32:
		return typecode.Primitive(typecode.KindULong), nil
	case wit.S64:
		return typecode.Primitive(typecode.KindLongLong), nil
	case wit.U64:
		return typecode.Primitive(typecode.KindULongLong), nil
	case wit.F32:
		return typecode.Primitive(typecode.KindFloat), nil
	case wit.F64:
		return typecode.Primitive(typecode.KindDouble), nil
	case wit.Char:
		return typecode.Primitive(typecode.KindWChar), nil
	case wit.String:
		return typecode.String, nil
	case *wit.TypeDef:
		return c.convertTypeDef(t, path)
	}
	return nil, errors.New(errors.PhaseLoad, errors.KindUnsupported).
		Path(path...).
		Detail("unsupported WIT type: %T", t).
		Build()
}

func typeDefName(td *wit.TypeDef) string {
	if td.Name == nil {
		return ""
	}
	return *td.Name
}

func (c *Converter) convertTypeDef(td *wit.TypeDef, path []string) (*typecode.TypeCode, error) {
	if tc, ok := c.cache[td]; ok {
		return tc, nil
	}

	name := typeDefName(td)
	id := ""
	if name != "" {
		id = RepositoryID(name)
		path = append(append([]string{}, path...), name)
	}

	tc, err := c.convertKind(td.Kind, id, name, path)
	if err != nil {
		return nil, err
	}
	c.cache[td] = tc
	return tc, nil
}

func (c *Converter) convertKind(kind wit.TypeDefKind, id, name string, path []string) (*typecode.TypeCode, error) {
	switch k := kind.(type) {
	case *wit.Record:
		members := make([]typecode.Member, len(k.Fields))
		for i, f := range k.Fields {
			ft, err := c.convert(f.Type, append(path, f.Name))
			if err != nil {
				return nil, err
			}
			members[i] = typecode.Member{Name: f.Name, Type: ft}
		}
		return typecode.NewStruct(id, name, members), nil

	case *wit.Tuple:
		members := make([]typecode.Member, len(k.Types))
		for i, et := range k.Types {
			field := strconv.Itoa(i)
			ft, err := c.convert(et, append(path, field))
			if err != nil {
				return nil, err
			}
			members[i] = typecode.Member{Name: field, Type: ft}
		}
		return typecode.NewStruct(id, name, members), nil

	case *wit.Flags:
		members := make([]typecode.Member, len(k.Flags))
		for i, f := range k.Flags {
			members[i] = typecode.Member{Name: f.Name, Type: typecode.Primitive(typecode.KindBoolean)}
		}
		return typecode.NewStruct(id, name, members), nil

	case *wit.Enum:
		names := make([]string, len(k.Cases))
		for i, ec := range k.Cases {
			names[i] = ec.Name
		}
		return typecode.NewEnum(id, name, names), nil

	case *wit.Variant:
		members := make([]typecode.Member, len(k.Cases))
		for i, vc := range k.Cases {
			ct, err := c.convert(vc.Type, append(path, vc.Name))
			if err != nil {
				return nil, err
			}
			members[i] = typecode.Member{Name: vc.Name, Type: ct, Label: uint64(i)}
		}
		return typecode.NewUnion(id, name, typecode.Primitive(typecode.KindULong), members, -1), nil

	case *wit.Option:
		some, err := c.convert(k.Type, append(path, "some"))
		if err != nil {
			return nil, err
		}
		return typecode.NewUnion(id, name, typecode.Primitive(typecode.KindBoolean), []typecode.Member{
			{Name: "some", Type: some, Label: 1},
			{Name: "none", Type: typecode.Primitive(typecode.KindVoid), Label: 0},
		}, -1), nil

	case *wit.Result:
		ok, err := c.convert(k.OK, append(path, "ok"))
		if err != nil {
			return nil, err
		}
		fail, err := c.convert(k.Err, append(path, "err"))
		if err != nil {
			return nil, err
		}
		return typecode.NewUnion(id, name, typecode.Primitive(typecode.KindBoolean), []typecode.Member{
			{Name: "ok", Type: ok, Label: 1},
			{Name: "err", Type: fail, Label: 0},
		}, -1), nil

	case *wit.List:
		et, err := c.convert(k.Type, append(path, "item"))
		if err != nil {
			return nil, err
		}
		return typecode.NewSequence(et, 0), nil

	case *wit.Resource:
		return typecode.NewObjref(id, name), nil

	case *wit.Own:
		return resourceRef(k.Type), nil

	case *wit.Borrow:
		return resourceRef(k.Type), nil

	case wit.Type:
		content, err := c.convert(k, path)
		if err != nil {
			return nil, err
		}
		if id == "" {
			return content, nil
		}
		return typecode.NewAlias(id, name, content), nil
	}

	return nil, errors.New(errors.PhaseLoad, errors.KindUnsupported).
		Path(path...).
		Detail("unsupported WIT type definition: %T", kind).
		Build()
}

// resourceRef returns the object reference descriptor for a handle to
// resource td. Anonymous resources map to the universal object type.
func resourceRef(td *wit.TypeDef) *typecode.TypeCode {
	if td == nil {
		return typecode.Object
	}
	name := typeDefName(td)
	if name == "" {
		return typecode.Object
	}
	return typecode.NewObjref(RepositoryID(name), name)
}

// ParseType converts a WIT primitive type name such as "u16" or "string".
func ParseType(text string) (*typecode.TypeCode, error) {
	t, err := wit.ParseType(text)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseLoad, errors.KindInvalidInput, err, "parse WIT type "+strconv.Quote(text))
	}
	return New().Convert(t)
}
