package translate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardanlabs/ffi-declgen/parser"
)

// paramType parses a single declaration using ctype as a parameter type and
// returns that parameter's descriptor.
func paramType(t *testing.T, ctype string) *parser.Type {
	t.Helper()
	return paramTypeIn(t, "void f("+ctype+" x);")
}

func paramTypeIn(t *testing.T, src string) *parser.Type {
	t.Helper()
	tu, err := parser.Parse("test.h", src, nil)
	require.NoError(t, err)
	require.Empty(t, tu.Diagnostics())

	var fn *parser.Cursor
	parser.VisitChildren(tu.Cursor(), func(c, parent *parser.Cursor) parser.VisitResult {
		if c.Kind() == parser.CursorFunctionDecl {
			fn = c
			return parser.VisitBreak
		}
		return parser.VisitRecurse
	})
	require.NotNil(t, fn)
	require.Equal(t, 1, fn.Type().NumArgs())
	return fn.Type().Arg(0)
}

func translateType(t *testing.T, ty *parser.Type) TypeExpr {
	t.Helper()
	expr, err := Translator{}.Translate(ty, parser.Location{File: "test.h", Line: 1, Column: 1})
	require.NoError(t, err)
	return expr
}

func TestPrimitiveTypes(t *testing.T) {
	tests := []struct {
		ctype string
		want  string
	}{
		{"_Bool", "bool"},
		{"char", "u8"},
		{"unsigned char", "u8"},
		{"signed char", "i8"},
		{"short", "c_short"},
		{"unsigned short", "c_ushort"},
		{"int", "c_int"},
		{"unsigned int", "c_uint"},
		{"long", "c_long"},
		{"unsigned long", "c_ulong"},
		{"long long", "c_longlong"},
		{"unsigned long long", "c_ulonglong"},
		{"float", "f32"},
		{"double", "f64"},
		{"long double", "f128"},
	}
	for _, tt := range tests {
		expr := translateType(t, paramType(t, tt.ctype))
		assert.Equal(t, tt.want, expr.String(), tt.ctype)
	}
}

func TestVoidReturn(t *testing.T) {
	tu, err := parser.Parse("test.h", "void f(int x);", nil)
	require.NoError(t, err)

	var fn *parser.Cursor
	parser.VisitChildren(tu.Cursor(), func(c, parent *parser.Cursor) parser.VisitResult {
		fn = c
		return parser.VisitBreak
	})
	require.NotNil(t, fn)

	expr := translateType(t, fn.Type().Result())
	assert.Equal(t, Void{}, expr)
}

func TestFixedWidthAliases(t *testing.T) {
	tests := []struct {
		ctype string
		want  Int
	}{
		{"int8_t", Int{Width: Width8, Signed: true}},
		{"uint8_t", Int{Width: Width8}},
		{"int16_t", Int{Width: Width16, Signed: true}},
		{"uint16_t", Int{Width: Width16}},
		{"int32_t", Int{Width: Width32, Signed: true}},
		{"uint32_t", Int{Width: Width32}},
		{"int64_t", Int{Width: Width64, Signed: true}},
		{"uint64_t", Int{Width: Width64}},
	}
	for _, tt := range tests {
		expr := translateType(t, paramType(t, tt.ctype))
		assert.Equal(t, tt.want, expr, tt.ctype)
	}
}

// The fixed-width names win by name even when a header re-declares them over
// an odd underlying type, so output widths never drift with the platform.
func TestFixedWidthAliasMatchedBeforeUnderlying(t *testing.T) {
	ty := paramTypeIn(t, `
typedef unsigned long uint32_t;
void f(uint32_t x);
`)
	expr := translateType(t, ty)
	assert.Equal(t, Int{Width: Width32}, expr)
}

func TestOtherTypedefsResolveUnderlying(t *testing.T) {
	tests := []struct {
		ctype string
		want  string
	}{
		{"size_t", "c_ulong"},
		{"ssize_t", "c_long"},
		{"intptr_t", "c_long"},
	}
	for _, tt := range tests {
		expr := translateType(t, paramType(t, tt.ctype))
		assert.Equal(t, tt.want, expr.String(), tt.ctype)
	}
}

func TestChainedTypedef(t *testing.T) {
	ty := paramTypeIn(t, `
typedef unsigned int flags_t;
typedef flags_t open_flags_t;
void f(open_flags_t x);
`)
	expr := translateType(t, ty)
	assert.Equal(t, "c_uint", expr.String())
}

func TestPointers(t *testing.T) {
	tests := []struct {
		ctype string
		want  string
	}{
		{"char *", "*mut u8"},
		{"const char *", "*const u8"},
		{"int *", "*mut c_int"},
		{"const double *", "*const f64"},
		{"const char **", "*mut *const u8"},
	}
	for _, tt := range tests {
		expr := translateType(t, paramType(t, tt.ctype))
		assert.Equal(t, tt.want, expr.String(), tt.ctype)
	}
}

func TestConstStructPointer(t *testing.T) {
	ty := paramTypeIn(t, `
struct vec3 { float x; float y; float z; };
void f(const struct vec3 *v);
`)
	expr := translateType(t, ty)

	ptr, ok := expr.(Pointer)
	require.True(t, ok)
	assert.False(t, ptr.Mutable)
	assert.Equal(t, Named{Name: "vec3"}, ptr.Pointee)
	assert.Equal(t, "*const vec3", expr.String())
}

func TestEnumByName(t *testing.T) {
	ty := paramTypeIn(t, `
enum color { RED, GREEN, BLUE };
void f(enum color c);
`)
	expr := translateType(t, ty)
	assert.Equal(t, Named{Name: "color"}, expr)
}

func TestTypedefStructByName(t *testing.T) {
	ty := paramTypeIn(t, `
typedef struct { int fd; } handle_t;
void f(handle_t h);
`)
	expr := translateType(t, ty)
	assert.Equal(t, Named{Name: "handle_t"}, expr)
}

func TestArrays(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"void f(char (*buf)[16]);", "*mut [u8; 16]"},
		{"void f(float m[4][4]);", "*mut [f32; 4]"},
		{"void f(const int *rows[8]);", "*mut *const c_int"},
	}
	for _, tt := range tests {
		expr := translateType(t, paramTypeIn(t, tt.src))
		assert.Equal(t, tt.want, expr.String(), tt.src)
	}
}

// Array parameters decay to element pointers, so the signature never asks the
// caller to pass an aggregate by value.
func TestArrayParametersDecayToPointers(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"unsigned long checksum(unsigned char buf[16]);", "*mut u8"},
		{"void f(int values[]);", "*mut c_int"},
		{"void f(const double weights[3]);", "*const f64"},
	}
	for _, tt := range tests {
		expr := translateType(t, paramTypeIn(t, tt.src))
		assert.Equal(t, tt.want, expr.String(), tt.src)
	}
}

func TestFunctionPointerPlaceholder(t *testing.T) {
	expr := translateType(t, paramTypeIn(t, "void f(int (*cb)(int));"))

	ptr, ok := expr.(Pointer)
	require.True(t, ok)
	assert.Equal(t, Unsupported{}, ptr.Pointee)
	assert.Equal(t, "*mut *const u8", expr.String())
}

func TestUnsupportedKinds(t *testing.T) {
	tests := []struct {
		ctype string
		kind  parser.TypeKind
	}{
		{"__int128", parser.KindInt128},
		{"unsigned __int128", parser.KindUInt128},
		{"double _Complex", parser.KindComplex},
		{"wchar_t", parser.KindWChar},
		{"char16_t", parser.KindChar16},
		{"char32_t", parser.KindChar32},
	}
	for _, tt := range tests {
		_, err := Translator{}.Translate(paramType(t, tt.ctype), parser.Location{File: "test.h"})
		require.Error(t, err, tt.ctype)

		var ute *UnsupportedTypeError
		require.ErrorAs(t, err, &ute, tt.ctype)
		assert.Equal(t, tt.kind, ute.Kind, tt.ctype)
	}
}

func TestUnsupportedTypeErrorMessage(t *testing.T) {
	err := &UnsupportedTypeError{
		Kind:     parser.KindComplex,
		Spelling: "_Complex",
		Loc:      parser.Location{File: "x.h", Line: 9, Column: 5},
	}
	assert.Equal(t, `x.h line 9, column 5: unsupported C type "_Complex" (kind Complex)`, err.Error())
}

func TestUnsupportedPropagatesThroughPointer(t *testing.T) {
	_, err := Translator{}.Translate(paramType(t, "wchar_t *"), parser.Location{})
	var ute *UnsupportedTypeError
	require.ErrorAs(t, err, &ute)
	assert.Equal(t, parser.KindWChar, ute.Kind)
}

func TestStripPrefixes(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"struct Foo", "Foo"},
		{"enum color", "color"},
		{"const struct Foo", "Foo"},
		{"handle_t", "handle_t"},
		{"union U", "union U"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, stripPrefixes(tt.in), tt.in)
	}
}

func TestErrorsAreNotInvariant(t *testing.T) {
	_, err := Translator{}.Translate(paramType(t, "__int128"), parser.Location{})
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrInvariant))
}
