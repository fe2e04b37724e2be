// Package translate maps C declarations onto destination FFI declarations.
//
// The two entry points are Translator, which lowers one front-end type
// descriptor to a destination type expression, and Collector, which walks a
// translation unit and assembles one declaration per exported C function.
package translate

import "fmt"

// TypeExpr is a destination-side type expression. Values are immutable once
// produced and owned by the declaration that references them.
type TypeExpr interface {
	fmt.Stringer
	typeExpr()
}

// IntWidth is the width class of an integer type expression. The exact
// classes carry a bit width; the category classes name a C integer category
// whose width is platform-dependent and must stay symbolic in the output.
type IntWidth int

const (
	Width8 IntWidth = iota
	Width16
	Width32
	Width64
	WidthShort
	WidthInt
	WidthLong
	WidthLongLong
)

// Void is the unit return type. Declarations returning Void render without a
// return arrow.
type Void struct{}

// Bool is the destination boolean.
type Bool struct{}

// Int is an integer type expression.
type Int struct {
	Width  IntWidth
	Signed bool
}

// Float is a floating-point type expression of 32, 64 or 128 bits.
type Float struct {
	Bits int
}

// Named refers to a record or enum by its bare identifier. The definition is
// never emitted; callers are expected to have the named type available.
type Named struct {
	Name string
}

// Pointer is a single-level pointer. Mutable is false when the pointee is
// const-qualified in the source.
type Pointer struct {
	Mutable bool
	Pointee TypeExpr
}

// Array is a fixed-size array.
type Array struct {
	Elem TypeExpr
	Len  int64
}

// Unsupported is the opaque placeholder substituted for function prototype
// types. It renders as a single-byte pointer; callers must not dereference
// it.
type Unsupported struct{}

func (Void) typeExpr()        {}
func (Bool) typeExpr()        {}
func (Int) typeExpr()         {}
func (Float) typeExpr()       {}
func (Named) typeExpr()       {}
func (Pointer) typeExpr()     {}
func (Array) typeExpr()       {}
func (Unsupported) typeExpr() {}

func (Void) String() string { return "void" }

func (Bool) String() string { return "bool" }

func (i Int) String() string {
	switch i.Width {
	case Width8:
		if i.Signed {
			return "i8"
		}
		return "u8"
	case Width16:
		if i.Signed {
			return "i16"
		}
		return "u16"
	case Width32:
		if i.Signed {
			return "i32"
		}
		return "u32"
	case Width64:
		if i.Signed {
			return "i64"
		}
		return "u64"
	case WidthShort:
		if i.Signed {
			return "c_short"
		}
		return "c_ushort"
	case WidthInt:
		if i.Signed {
			return "c_int"
		}
		return "c_uint"
	case WidthLong:
		if i.Signed {
			return "c_long"
		}
		return "c_ulong"
	case WidthLongLong:
		if i.Signed {
			return "c_longlong"
		}
		return "c_ulonglong"
	}
	return fmt.Sprintf("IntWidth(%d)", int(i.Width))
}

func (f Float) String() string {
	return fmt.Sprintf("f%d", f.Bits)
}

func (n Named) String() string { return n.Name }

func (p Pointer) String() string {
	if p.Mutable {
		return "*mut " + p.Pointee.String()
	}
	return "*const " + p.Pointee.String()
}

func (a Array) String() string {
	return fmt.Sprintf("[%s; %d]", a.Elem, a.Len)
}

func (Unsupported) String() string { return "*const u8" }

// Param is one function parameter. Name is empty only when the source omits
// it.
type Param struct {
	Name string
	Type TypeExpr
}

// Decl is one collected function declaration.
type Decl struct {
	Name   string
	Return TypeExpr
	Params []Param
}
