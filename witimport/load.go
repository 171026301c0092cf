package witimport

import (
	"go.bytecodealliance.org/wit"

	"github.com/wippyai/anycodec/errors"
	"github.com/wippyai/anycodec/typecode"
)

// Types converts every named type definition of a resolved WIT package
// set. Names defined more than once keep their first definition.
func (c *Converter) Types(res *wit.Resolve) (map[string]*typecode.TypeCode, error) {
	out := make(map[string]*typecode.TypeCode)
	for _, td := range res.TypeDefs {
		name := typeDefName(td)
		if name == "" {
			continue
		}
		if _, dup := out[name]; dup {
			continue
		}
		tc, err := c.Convert(td)
		if err != nil {
			return nil, err
		}
		out[name] = tc
	}
	return out, nil
}

// LoadFile reads a WIT package set in its JSON form, as written by
// wasm-tools component wit --json, and converts its named types.
func LoadFile(path string) (map[string]*typecode.TypeCode, error) {
	res, err := wit.LoadJSON(path)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseLoad, errors.KindInvalidData, err, "load WIT from "+path)
	}
	return New().Types(res)
}
