package codec

import (
	"go.uber.org/zap"

	"github.com/wippyai/anycodec/errors"
	"github.com/wippyai/anycodec/external"
	"github.com/wippyai/anycodec/reflection"
	"github.com/wippyai/anycodec/typecode"
)

// Handles turns object references into external handles and back.
type Handles interface {
	Mint(ref reflection.ObjectRef) (external.Handle, error)
	Resolve(v external.Value) (reflection.ObjectRef, error)
	Refine(h external.Handle, id string) bool
}

// Codec converts between self-describing values and external values.
// A Codec holds no per-call state; concurrent use is safe when the provider
// and the handle registry are.
type Codec struct {
	provider reflection.Provider
	handles  Handles
}

func New(provider reflection.Provider, handles Handles) *Codec {
	return &Codec{provider: provider, handles: handles}
}

// Extract converts v into an external value. With recurse false, nested
// aggregates are returned as tokens that unroll on demand.
func (c *Codec) Extract(v reflection.Any, recurse bool) (external.Value, error) {
	if v.Type == nil {
		return nil, errors.InvalidInput(errors.PhaseExtract, "value without a type descriptor")
	}
	Logger().Debug("extract",
		zap.String("type", typecode.Describe(v.Type)), zap.Bool("recurse", recurse))

	x := &extractor{c: c, recurse: recurse}
	return x.extractAny(v)
}

// Pack builds a value of type tc from v. A token whose attached value has a
// structurally equal type is adopted as is.
func (c *Codec) Pack(v external.Value, tc *typecode.TypeCode) (reflection.Any, error) {
	if tc == nil {
		return reflection.Any{}, errors.InvalidInput(errors.PhasePack, "nil type descriptor")
	}
	if v == nil {
		v = external.List{}
	}
	if a, ok := attached(v, tc); ok {
		Logger().Debug("pack shortcut", zap.String("type", typecode.Describe(tc)))
		return a, nil
	}
	Logger().Debug("pack", zap.String("type", typecode.Describe(tc)))

	cur, err := c.provider.CreateCursor(tc, nil)
	if err != nil {
		return reflection.Any{}, errors.Reflection(errors.PhasePack, err, "cannot create a value of type "+typecode.Describe(tc))
	}
	defer cur.Destroy()

	p := &packer{c: c}
	if err := p.pack(v, tc, cur); err != nil {
		return reflection.Any{}, err
	}
	return cur.ToAny()
}

// PackText parses a descriptor and packs text against it.
func (c *Codec) PackText(text, typeText string) (reflection.Any, error) {
	tc, err := typecode.ParseText(typeText)
	if err != nil {
		return reflection.Any{}, err
	}
	return c.Pack(external.Scalar(text), tc)
}
