// Package errors provides structured error types for the anycodec library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the offending external text, the expected shape, a member
// path, a cause chain and a trail of context lines added by enclosing callers.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhasePack, errors.KindShapeMismatch).
//		Text("1 2 3").
//		Expected("struct Point").
//		Detail("%q is not a structure", "1 2 3").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.Range(errors.PhasePack, "65536", "unsigned short")
//	err := errors.UnknownMember(errors.PhasePack, "z", "struct Point")
//
// Recursive callers add context with Within, innermost first:
//
//	return errors.Within(err, "while packing member %q of %q", name, owner)
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
