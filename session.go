package anycodec

import (
	"github.com/wippyai/anycodec/codec"
	"github.com/wippyai/anycodec/config"
	"github.com/wippyai/anycodec/dynany"
	"github.com/wippyai/anycodec/external"
	"github.com/wippyai/anycodec/handle"
	"github.com/wippyai/anycodec/reflection"
	"github.com/wippyai/anycodec/typecode"
)

// Session wires the in-memory provider, a handle registry and a codec
// according to a configuration.
type Session struct {
	cfg      *config.Config
	provider *dynany.Provider
	registry *handle.Registry
	codec    *codec.Codec
}

// New returns a session for cfg. A nil cfg uses the defaults.
func New(cfg *config.Config) (*Session, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	provider := dynany.New(dynany.WithWideCharWidth(cfg.Codec.WideCharWidth))
	registry := handle.NewRegistry(provider.Hierarchy())
	return &Session{
		cfg:      cfg,
		provider: provider,
		registry: registry,
		codec:    codec.New(provider, registry),
	}, nil
}

// Close releases every handle minted during the session.
func (s *Session) Close() error {
	return s.registry.Close()
}

func (s *Session) Config() *config.Config { return s.cfg }

func (s *Session) Codec() *codec.Codec { return s.codec }

func (s *Session) Provider() *dynany.Provider { return s.provider }

func (s *Session) Registry() *handle.Registry { return s.registry }

// Type resolves a descriptor given either as the name of a configured type
// or in printed form.
func (s *Session) Type(text string) (*typecode.TypeCode, error) {
	if _, ok := s.cfg.Types[text]; ok {
		return s.cfg.Descriptor(text)
	}
	return typecode.ParseText(text)
}

// Print parses a descriptor and returns its printed form.
func (s *Session) Print(typeText string) (string, error) {
	tc, err := s.Type(typeText)
	if err != nil {
		return "", err
	}
	return typecode.Describe(tc), nil
}

// PackText packs value text against a descriptor.
func (s *Session) PackText(value, typeText string) (reflection.Any, error) {
	tc, err := s.Type(typeText)
	if err != nil {
		return reflection.Any{}, err
	}
	return s.codec.Pack(external.Scalar(value), tc)
}

// Extract converts v using the configured extraction mode.
func (s *Session) Extract(v reflection.Any) (external.Value, error) {
	return s.codec.Extract(v, s.cfg.Codec.Recurse)
}

// ExtractText returns the printed form of v. Tokens print fully unrolled,
// so the text is the same in either extraction mode.
func (s *Session) ExtractText(v reflection.Any) (string, error) {
	out, err := s.Extract(v)
	if err != nil {
		return "", err
	}
	if tok, ok := out.(*external.Token); ok {
		return tok.Text()
	}
	return out.String(), nil
}

// Roundtrip packs value against a descriptor and returns the canonical
// text of the result.
func (s *Session) Roundtrip(value, typeText string) (string, error) {
	v, err := s.PackText(value, typeText)
	if err != nil {
		return "", err
	}
	out, err := s.codec.Extract(v, true)
	if err != nil {
		return "", err
	}
	return out.String(), nil
}
