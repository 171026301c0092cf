// Package codec converts between self-describing typed values and the
// dynamically typed values of a host scripting runtime.
//
// # Extraction
//
// Extract walks a value depth first and dispatches on the kind of each
// descriptor:
//
//	struct Point {x long y long}   ->  {x 1 y 2}
//	union with active member       ->  {discriminator member}
//	union on its default member    ->  {(default) member}
//	sequence<octet>                ->  one byte string
//	valuetype                      ->  {base... derived... _tc_ descriptor}
//	object reference               ->  handle, or 0 for none
//
// With recurse false, nested aggregates come back as tokens. A token prints
// as its fully unrolled value and can be packed again without conversion.
//
// # Packing
//
// Pack validates the external value against a target descriptor and builds
// the typed value. Record members may appear in any order; duplicate or
// unknown names fail before any member is stored. Integers accept decimal,
// hex and octal literals and fail with a range error when they do not fit:
//
//	c.Pack(external.Scalar("65535"), typecode.Primitive(typecode.KindUShort)) // ok
//	c.Pack(external.Scalar("65536"), typecode.Primitive(typecode.KindUShort)) // range error
//
// Errors carry a trail of context lines, innermost first:
//
//	"65536" does not fit "unsigned short"
//	while packing "unsigned short" from "65536"
//	while packing member "port" of "struct Endpoint"
//	while packing "struct IDL:Endpoint:1.0 {host string port {unsigned short}}" from "host h port 65536"
//
// # Object references
//
// References are exchanged through a Handles implementation, normally a
// handle.Registry. Extraction mints a handle and refines its recorded type
// to the descriptor's identity; packing resolves the handle and checks that
// the object is a kind of the target interface.
package codec
