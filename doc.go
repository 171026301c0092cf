// Package anycodec converts values between a host scripting runtime's
// dynamically typed representation and self-describing typed values whose
// shape is given by a runtime type descriptor.
//
// # Architecture Overview
//
//	anycodec/          Session: provider, handle registry and codec wired from config
//	├── codec/         Extractor and packer, one handler per descriptor kind
//	├── typecode/      Type descriptors, structural equality, printer and parser
//	├── external/      Host values: scalars, byte strings, lists, handles, tokens
//	├── reflection/    Interfaces the codec consumes from a reflection provider
//	├── dynany/        In-memory reflection provider
//	├── handle/        Object handle registry
//	├── witimport/     WIT type definitions to descriptors
//	├── config/        YAML configuration
//	├── errors/        Structured errors with context trails
//	└── cmd/anycodec/  Command line tool and interactive shell
//
// # Quick Start
//
//	s, err := anycodec.New(nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer s.Close()
//
//	v, err := s.PackText("y 2 x 1", "struct IDL:Point:1.0 {x long y long}")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	text, _ := s.ExtractText(v) // "x 1 y 2"
//
// # Error Handling
//
// Errors are *errors.Error values. A packing error names the offending text
// and the shape it was checked against, followed by one context line per
// enclosing value:
//
//	"65536" does not fit "unsigned short"
//	while packing "unsigned short" from "65536"
//	while packing member "port" of "struct Endpoint"
package anycodec
