package parser

import (
	"fmt"
	"strings"
)

// TypeKind classifies a type descriptor. The set mirrors what the
// declaration grammar can produce; consumers are expected to switch
// exhaustively over it.
type TypeKind int

const (
	KindInvalid TypeKind = iota
	KindUnexposed
	KindVoid
	KindBool
	KindCharS // plain char, signed on the default target
	KindCharU // plain char on unsigned-char targets
	KindSChar
	KindUChar
	KindWChar
	KindChar16
	KindChar32
	KindShort
	KindUShort
	KindInt
	KindUInt
	KindLong
	KindULong
	KindLongLong
	KindULongLong
	KindInt128
	KindUInt128
	KindFloat
	KindDouble
	KindLongDouble
	KindComplex
	KindVector
	KindBlockPointer
	KindPointer
	KindRecord
	KindEnum
	KindTypedef
	KindFunctionProto
	KindFunctionNoProto
	KindConstantArray
	KindIncompleteArray
	KindVariableArray
)

var kindNames = map[TypeKind]string{
	KindInvalid:         "Invalid",
	KindUnexposed:       "Unexposed",
	KindVoid:            "Void",
	KindBool:            "Bool",
	KindCharS:           "Char_S",
	KindCharU:           "Char_U",
	KindSChar:           "SChar",
	KindUChar:           "UChar",
	KindWChar:           "WChar",
	KindChar16:          "Char16",
	KindChar32:          "Char32",
	KindShort:           "Short",
	KindUShort:          "UShort",
	KindInt:             "Int",
	KindUInt:            "UInt",
	KindLong:            "Long",
	KindULong:           "ULong",
	KindLongLong:        "LongLong",
	KindULongLong:       "ULongLong",
	KindInt128:          "Int128",
	KindUInt128:         "UInt128",
	KindFloat:           "Float",
	KindDouble:          "Double",
	KindLongDouble:      "LongDouble",
	KindComplex:         "Complex",
	KindVector:          "Vector",
	KindBlockPointer:    "BlockPointer",
	KindPointer:         "Pointer",
	KindRecord:          "Record",
	KindEnum:            "Enum",
	KindTypedef:         "Typedef",
	KindFunctionProto:   "FunctionProto",
	KindFunctionNoProto: "FunctionNoProto",
	KindConstantArray:   "ConstantArray",
	KindIncompleteArray: "IncompleteArray",
	KindVariableArray:   "VariableArray",
}

func (k TypeKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("TypeKind(%d)", int(k))
}

// CallingConv is the ABI argument-passing contract of a function type.
type CallingConv int

const (
	CallC CallingConv = iota
	CallStdcall
	CallFastcall
)

func (c CallingConv) String() string {
	switch c {
	case CallC:
		return "cdecl"
	case CallStdcall:
		return "stdcall"
	case CallFastcall:
		return "fastcall"
	}
	return fmt.Sprintf("CallingConv(%d)", int(c))
}

// StorageClass is the linkage classification of a declaration.
type StorageClass int

const (
	StorageNone StorageClass = iota
	StorageExtern
	StorageStatic
	StorageAuto
	StorageRegister
)

// Type is one node of a type descriptor tree. Descriptors are built by the
// parser and never mutated afterwards.
type Type struct {
	kind      TypeKind
	qualConst bool

	tag  string // "struct" or "union" for records
	name string // record/enum tag or typedef name

	pointee    *Type // pointers
	elem       *Type // arrays
	size       int64 // constant arrays
	underlying *Type // typedefs, unexposed wrappers

	result   *Type // function types
	params   []*Type
	variadic bool
	conv     CallingConv
}

// Kind reports the type's kind.
func (t *Type) Kind() TypeKind { return t.kind }

// IsConstQualified reports whether the type carries a top-level const.
func (t *Type) IsConstQualified() bool { return t.qualConst }

// Canonical resolves typedef and unexposed indirection down to the most
// concrete descriptor.
func (t *Type) Canonical() *Type {
	switch t.kind {
	case KindTypedef, KindUnexposed:
		if t.underlying != nil {
			return t.underlying.Canonical()
		}
	}
	return t
}

// Pointee returns the pointed-to type of a pointer, or nil.
func (t *Type) Pointee() *Type { return t.pointee }

// Elem returns the element type of an array, or nil.
func (t *Type) Elem() *Type { return t.elem }

// ArraySize returns the element count of a constant array.
func (t *Type) ArraySize() int64 { return t.size }

// Underlying returns the declared underlying type of a typedef, or nil.
func (t *Type) Underlying() *Type { return t.underlying }

// Result returns the return type of a function type, or nil.
func (t *Type) Result() *Type { return t.result }

// IsVariadic reports whether a function type takes trailing variadic
// arguments.
func (t *Type) IsVariadic() bool { return t.variadic }

// CallingConv returns the calling convention of a function type.
func (t *Type) CallingConv() CallingConv { return t.conv }

// NumArgs returns the declared parameter count of a function type.
func (t *Type) NumArgs() int { return len(t.params) }

// Arg returns the i'th declared parameter type of a function type.
func (t *Type) Arg(i int) *Type { return t.params[i] }

var builtinSpellings = map[TypeKind]string{
	KindVoid:       "void",
	KindBool:       "bool",
	KindCharS:      "char",
	KindCharU:      "char",
	KindSChar:      "signed char",
	KindUChar:      "unsigned char",
	KindWChar:      "wchar_t",
	KindChar16:     "char16_t",
	KindChar32:     "char32_t",
	KindShort:      "short",
	KindUShort:     "unsigned short",
	KindInt:        "int",
	KindUInt:       "unsigned int",
	KindLong:       "long",
	KindULong:      "unsigned long",
	KindLongLong:   "long long",
	KindULongLong:  "unsigned long long",
	KindInt128:     "__int128",
	KindUInt128:    "unsigned __int128",
	KindFloat:      "float",
	KindDouble:     "double",
	KindLongDouble: "long double",
	KindComplex:    "_Complex",
}

// Spelling returns a human-readable rendering of the type, with the same
// `const `/`struct `/`enum ` prefixes a compiler front-end would print.
func (t *Type) Spelling() string {
	s := t.bareSpelling()
	if t.qualConst {
		return "const " + s
	}
	return s
}

func (t *Type) bareSpelling() string {
	switch t.kind {
	case KindRecord:
		tag := t.tag
		if tag == "" {
			tag = "struct"
		}
		if t.name == "" {
			return tag
		}
		return tag + " " + t.name
	case KindEnum:
		if t.name == "" {
			return "enum"
		}
		return "enum " + t.name
	case KindTypedef:
		return t.name
	case KindPointer:
		return t.pointee.Spelling() + " *"
	case KindConstantArray:
		return fmt.Sprintf("%s[%d]", t.elem.Spelling(), t.size)
	case KindIncompleteArray:
		return t.elem.Spelling() + "[]"
	case KindFunctionProto, KindFunctionNoProto:
		args := make([]string, len(t.params))
		for i, p := range t.params {
			args[i] = p.Spelling()
		}
		if t.variadic {
			args = append(args, "...")
		}
		return fmt.Sprintf("%s (%s)", t.result.Spelling(), strings.Join(args, ", "))
	}
	if s, ok := builtinSpellings[t.kind]; ok {
		return s
	}
	return t.kind.String()
}

func builtin(kind TypeKind) *Type {
	return &Type{kind: kind}
}

// qualified returns a const-qualified shallow copy of t.
func qualified(t *Type) *Type {
	if t.qualConst {
		return t
	}
	q := *t
	q.qualConst = true
	return &q
}

func pointerTo(pointee *Type, constPtr bool) *Type {
	return &Type{kind: KindPointer, pointee: pointee, qualConst: constPtr}
}

// adjustParam applies C's parameter adjustments: a parameter of array type
// decays to a pointer to its element, and a parameter of function type to a
// pointer to the function. Typedef indirection is looked through.
func adjustParam(t *Type) *Type {
	switch canon := t.Canonical(); canon.kind {
	case KindFunctionProto, KindFunctionNoProto:
		return pointerTo(t, false)
	case KindConstantArray, KindIncompleteArray, KindVariableArray:
		return pointerTo(canon.elem, false)
	}
	return t
}

// stdintTypedefs seeds the typedef table with the <stdint.h> and <stddef.h>
// aliases so headers that include them resolve without running the
// preprocessor. Underlying types follow the LP64 convention; the translator
// special-cases the fixed-width names so these underlyings only matter for
// the remaining aliases.
func stdintTypedefs() map[string]*Type {
	m := map[string]TypeKind{
		"int8_t":    KindSChar,
		"uint8_t":   KindUChar,
		"int16_t":   KindShort,
		"uint16_t":  KindUShort,
		"int32_t":   KindInt,
		"uint32_t":  KindUInt,
		"int64_t":   KindLong,
		"uint64_t":  KindULong,
		"size_t":    KindULong,
		"ssize_t":   KindLong,
		"ptrdiff_t": KindLong,
		"intptr_t":  KindLong,
		"uintptr_t": KindULong,
	}
	out := make(map[string]*Type, len(m))
	for name, kind := range m {
		out[name] = &Type{kind: KindTypedef, name: name, underlying: builtin(kind)}
	}
	return out
}
