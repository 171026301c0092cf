package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:  PhasePack,
				Kind:   KindShapeMismatch,
				Path:   []string{"order", "items", "[2]"},
				Detail: `"x" does not match "short"`,
				Trail:  []string{`while packing item # 2 of "sequence short"`},
			},
			contains: []string{"[pack]", "shape_mismatch", "order.items.[2]", `"x" does not match`, "\n  while packing item # 2"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseExtract,
				Kind:  KindReflection,
			},
			contains: []string{"[extract]", "reflection"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseResolve,
				Kind:   KindHandleResolution,
				Detail: "no such object: _obj_x_1",
				Cause:  errors.New("registry closed"),
			},
			contains: []string{"[resolve]", "handle_resolution", "no such object", "caused by", "registry closed"},
		},
		{
			name:     "no phase",
			err:      &Error{Kind: KindRange, Detail: "too big"},
			contains: []string{"range: too big"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Message(t *testing.T) {
	err := Range(PhasePack, "65536", "unsigned short")
	err.Trail = append(err.Trail, `while packing member "port" of "struct Addr"`)

	want := "\"65536\" does not fit \"unsigned short\"\nwhile packing member \"port\" of \"struct Addr\""
	if got := err.Message(); got != want {
		t.Errorf("Message() = %q, want %q", got, want)
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhasePack,
		Kind:  KindInvalidData,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}

	// Test with errors.Unwrap
	if !errors.Is(errors.Unwrap(err), cause) {
		t.Error("errors.Unwrap did not return cause")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase: PhasePack,
		Kind:  KindShapeMismatch,
		Path:  []string{"foo"},
	}

	// Same phase and kind
	if !err.Is(&Error{Phase: PhasePack, Kind: KindShapeMismatch}) {
		t.Error("Is should match same phase and kind")
	}

	// Different phase
	if err.Is(&Error{Phase: PhaseParse, Kind: KindShapeMismatch}) {
		t.Error("Is should not match different phase")
	}

	// Different kind
	if err.Is(&Error{Phase: PhasePack, Kind: KindRange}) {
		t.Error("Is should not match different kind")
	}

	// Sentinels match on kind alone
	if !errors.Is(err, ErrShapeMismatch) {
		t.Error("errors.Is should match the kind sentinel")
	}
	if errors.Is(err, ErrRange) {
		t.Error("errors.Is should not match another kind sentinel")
	}

	wrapped := fmt.Errorf("outer: %w", err)
	if !errors.Is(wrapped, ErrShapeMismatch) {
		t.Error("errors.Is should see through fmt wrapping")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhasePack, KindShapeMismatch).
		Path("user", "name").
		Text("1 2").
		Expected("struct User").
		Value(42).
		Cause(cause).
		Detail("%q is not a structure, was expecting %q", "1 2", "struct User").
		Build()

	if err.Phase != PhasePack {
		t.Errorf("Phase = %v, want %v", err.Phase, PhasePack)
	}
	if err.Kind != KindShapeMismatch {
		t.Errorf("Kind = %v, want %v", err.Kind, KindShapeMismatch)
	}
	if len(err.Path) != 2 || err.Path[0] != "user" || err.Path[1] != "name" {
		t.Errorf("Path = %v, want [user name]", err.Path)
	}
	if err.Text != "1 2" || err.Expected != "struct User" {
		t.Errorf("Text=%q Expected=%q", err.Text, err.Expected)
	}
	if err.Value != 42 {
		t.Errorf("Value = %v, want 42", err.Value)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Detail != `"1 2" is not a structure, was expecting "struct User"` {
		t.Errorf("Detail = %v", err.Detail)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	t.Run("Mismatch", func(t *testing.T) {
		err := Mismatch(PhasePack, "abc", "short")
		if err.Kind != KindShapeMismatch {
			t.Errorf("Kind = %v, want %v", err.Kind, KindShapeMismatch)
		}
		if err.Detail != `"abc" does not match "short"` {
			t.Errorf("Detail = %q", err.Detail)
		}
	})

	t.Run("Range", func(t *testing.T) {
		err := Range(PhasePack, "65536", "unsigned short")
		if err.Kind != KindRange {
			t.Errorf("Kind = %v, want %v", err.Kind, KindRange)
		}
		if err.Detail != `"65536" does not fit "unsigned short"` {
			t.Errorf("Detail = %q", err.Detail)
		}
	})

	t.Run("UnknownMember", func(t *testing.T) {
		err := UnknownMember(PhasePack, "z", "struct Point")
		if err.Kind != KindUnknownMember {
			t.Errorf("Kind = %v, want %v", err.Kind, KindUnknownMember)
		}
	})

	t.Run("DuplicateMember", func(t *testing.T) {
		err := DuplicateMember(PhasePack, "x")
		if err.Kind != KindUnknownMember {
			t.Errorf("Kind = %v, want %v", err.Kind, KindUnknownMember)
		}
		if !strings.Contains(err.Detail, "appears twice") {
			t.Errorf("Detail = %q", err.Detail)
		}
	})

	t.Run("HandleResolution", func(t *testing.T) {
		err := HandleResolution(PhasePack, "_obj_1", "no such object: _obj_1")
		if !errors.Is(err, ErrHandleResolution) {
			t.Error("expected handle resolution kind")
		}
	})

	t.Run("Reflection", func(t *testing.T) {
		cause := errors.New("boom")
		err := Reflection(PhaseExtract, cause, "create cursor")
		if !errors.Is(err, cause) {
			t.Error("cause should be reachable")
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		err := NotFound(PhaseConfig, "type", "Point")
		if err.Detail != `type "Point" not found` {
			t.Errorf("Detail = %q", err.Detail)
		}
	})
}

func TestWithin(t *testing.T) {
	t.Run("appends innermost first", func(t *testing.T) {
		var err error = Mismatch(PhasePack, "x", "short")
		err = Within(err, "while packing member %q of %q", "a", "struct Inner")
		err = Within(err, "while packing member %q of %q", "inner", "struct Outer")

		var e *Error
		if !errors.As(err, &e) {
			t.Fatal("expected *Error")
		}
		if len(e.Trail) != 2 {
			t.Fatalf("Trail = %v", e.Trail)
		}
		if !strings.Contains(e.Trail[0], "struct Inner") || !strings.Contains(e.Trail[1], "struct Outer") {
			t.Errorf("Trail order = %v", e.Trail)
		}
	})

	t.Run("wraps foreign errors", func(t *testing.T) {
		cause := errors.New("provider failed")
		err := Within(cause, "while packing TypeCode")
		if !errors.Is(err, ErrReflection) {
			t.Error("foreign error should become a reflection error")
		}
		if !errors.Is(err, cause) {
			t.Error("cause should be preserved")
		}
	})

	t.Run("nil stays nil", func(t *testing.T) {
		if Within(nil, "while packing") != nil {
			t.Error("Within(nil) should be nil")
		}
	})
}

func TestAt(t *testing.T) {
	var err error = Mismatch(PhasePack, "x", "short")
	err = At(err, "y")
	err = At(err, "point")

	var e *Error
	if !errors.As(err, &e) {
		t.Fatal("expected *Error")
	}
	if strings.Join(e.Path, ".") != "point.y" {
		t.Errorf("Path = %v", e.Path)
	}
	if KindOf(err) != KindShapeMismatch {
		t.Errorf("KindOf = %v", KindOf(err))
	}
	if KindOf(errors.New("plain")) != "" {
		t.Error("KindOf(plain) should be empty")
	}
}
