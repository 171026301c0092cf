package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhasePack    Phase = "pack"    // external to typed value
	PhaseExtract Phase = "extract" // typed value to external
	PhasePrint   Phase = "print"   // descriptor to external
	PhaseParse   Phase = "parse"   // external to descriptor
	PhaseResolve Phase = "resolve" // handle registry lookups
	PhaseConfig  Phase = "config"  // configuration validation
	PhaseLoad    Phase = "load"    // file and WIT loading
)

// Kind categorizes the error
type Kind string

const (
	KindShapeMismatch    Kind = "shape_mismatch"
	KindRange            Kind = "range"
	KindUnknownMember    Kind = "unknown_member"
	KindHandleResolution Kind = "handle_resolution"
	KindReflection       Kind = "reflection"
	KindUnsupported      Kind = "unsupported"
	KindInvalidData      Kind = "invalid_data"
	KindInvalidInput     Kind = "invalid_input"
	KindNotFound         Kind = "not_found"
)

// Sentinels for errors.Is matching on kind alone.
var (
	ErrShapeMismatch    = &Error{Kind: KindShapeMismatch}
	ErrRange            = &Error{Kind: KindRange}
	ErrUnknownMember    = &Error{Kind: KindUnknownMember}
	ErrHandleResolution = &Error{Kind: KindHandleResolution}
	ErrReflection       = &Error{Kind: KindReflection}
)

// Error is the structured error type used throughout the codec.
//
// Text holds the offending external text and Expected the printed shape it
// was checked against. Trail collects context lines, innermost first.
type Error struct {
	Value    any
	Cause    error
	Phase    Phase
	Kind     Kind
	Text     string
	Expected string
	Detail   string
	Path     []string
	Trail    []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	if e.Phase != "" {
		b.WriteByte('[')
		b.WriteString(string(e.Phase))
		b.WriteString("] ")
	}
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	for _, line := range e.Trail {
		b.WriteString("\n  ")
		b.WriteString(line)
	}

	return b.String()
}

// Message returns the detail followed by the trail, one line each, in the
// form shown to script users.
func (e *Error) Message() string {
	lines := make([]string, 0, len(e.Trail)+1)
	if e.Detail != "" {
		lines = append(lines, e.Detail)
	} else if e.Cause != nil {
		lines = append(lines, e.Cause.Error())
	}
	lines = append(lines, e.Trail...)
	return strings.Join(lines, "\n")
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error. A target without a phase
// matches on kind alone.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Phase == "" {
		return e.Kind == t.Kind
	}
	return e.Phase == t.Phase && e.Kind == t.Kind
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the member path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Text sets the offending external text
func (b *Builder) Text(s string) *Builder {
	b.err.Text = s
	return b
}

// Expected sets the printed shape the text was checked against
func (b *Builder) Expected(s string) *Builder {
	b.err.Expected = s
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// ShapeMismatch reports text that does not have the structure expected.
func ShapeMismatch(phase Phase, text, expected, detail string) *Error {
	return &Error{
		Phase:    phase,
		Kind:     KindShapeMismatch,
		Text:     text,
		Expected: expected,
		Detail:   detail,
	}
}

// Mismatch is ShapeMismatch with the canonical `"X" does not match "T"` detail.
func Mismatch(phase Phase, text, expected string) *Error {
	return ShapeMismatch(phase, text, expected,
		fmt.Sprintf("%q does not match %q", text, expected))
}

// Range reports numeric text that parses but does not fit the target.
func Range(phase Phase, text, expected string) *Error {
	return &Error{
		Phase:    phase,
		Kind:     KindRange,
		Text:     text,
		Expected: expected,
		Detail:   fmt.Sprintf("%q does not fit %q", text, expected),
	}
}

// UnknownMember reports an external member name absent from the descriptor.
func UnknownMember(phase Phase, name, owner string) *Error {
	return &Error{
		Phase:    phase,
		Kind:     KindUnknownMember,
		Text:     name,
		Expected: owner,
		Detail:   fmt.Sprintf("%q is not a member of %q", name, owner),
	}
}

// DuplicateMember reports an external member name given more than once.
func DuplicateMember(phase Phase, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnknownMember,
		Text:   name,
		Detail: fmt.Sprintf("member %q appears twice", name),
	}
}

// HandleResolution reports a handle that could not be resolved or has the
// wrong type.
func HandleResolution(phase Phase, text, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindHandleResolution,
		Text:   text,
		Detail: detail,
	}
}

// Reflection wraps a failure reported by the reflection provider.
func Reflection(phase Phase, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindReflection,
		Detail: detail,
		Cause:  cause,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Path:   path,
		Detail: detail,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// Within appends one line of context to err's trail and returns it.
// Errors not produced by this package are wrapped as reflection errors.
// A nil err stays nil.
func Within(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	line := format
	if len(args) > 0 {
		line = fmt.Sprintf(format, args...)
	}
	var e *Error
	if !stderrors.As(err, &e) {
		e = &Error{Kind: KindReflection, Detail: err.Error(), Cause: err}
	}
	e.Trail = append(e.Trail, line)
	return e
}

// At prepends a path segment to err when it is an *Error.
func At(err error, segment string) error {
	var e *Error
	if stderrors.As(err, &e) {
		e.Path = append([]string{segment}, e.Path...)
	}
	return err
}

// KindOf returns the kind of err, or "" when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}
