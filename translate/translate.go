package translate

import (
	"strings"

	"github.com/tliron/commonlog"

	"github.com/ardanlabs/ffi-declgen/parser"
)

var log = commonlog.GetLogger("declgen.translate")

// fixedWidthAliases maps the <stdint.h> typedef names directly onto exact
// integer widths. The match is by name, before resolving the underlying
// type, so the output width is right no matter how the alias is spelled on a
// given platform.
var fixedWidthAliases = map[string]Int{
	"int8_t":   {Width: Width8, Signed: true},
	"uint8_t":  {Width: Width8},
	"int16_t":  {Width: Width16, Signed: true},
	"uint16_t": {Width: Width16},
	"int32_t":  {Width: Width32, Signed: true},
	"uint32_t": {Width: Width32},
	"int64_t":  {Width: Width64, Signed: true},
	"uint64_t": {Width: Width64},
}

// namePrefixes are stripped, repeatedly, from record/enum/typedef spellings
// before they are used as destination identifiers.
var namePrefixes = []string{"struct ", "enum ", "const "}

// Translator lowers front-end type descriptors to destination type
// expressions. It holds no state beyond recursion; one value can serve any
// number of translations.
type Translator struct{}

// Translate maps ty onto an equivalent destination type expression. loc is
// the declaration being translated, used for warnings and errors. All
// unsupported kinds return *UnsupportedTypeError; the only soft degradation
// is function prototype types, which produce the Unsupported placeholder and
// a warning.
func (tr Translator) Translate(ty *parser.Type, loc parser.Location) (TypeExpr, error) {
	if ty.Kind() == parser.KindUnexposed {
		canonical := ty.Canonical()
		if canonical.Kind() == parser.KindUnexposed {
			return nil, &UnsupportedTypeError{Kind: ty.Kind(), Spelling: ty.Spelling(), Loc: loc}
		}
		return tr.Translate(canonical, loc)
	}

	switch ty.Kind() {
	case parser.KindVoid:
		return Void{}, nil

	case parser.KindBool:
		return Bool{}, nil

	case parser.KindSChar:
		return Int{Width: Width8, Signed: true}, nil

	case parser.KindCharS, parser.KindCharU, parser.KindUChar:
		return Int{Width: Width8}, nil

	case parser.KindUShort:
		return Int{Width: WidthShort}, nil
	case parser.KindUInt:
		return Int{Width: WidthInt}, nil
	case parser.KindULong:
		return Int{Width: WidthLong}, nil
	case parser.KindULongLong:
		return Int{Width: WidthLongLong}, nil

	case parser.KindShort:
		return Int{Width: WidthShort, Signed: true}, nil
	case parser.KindInt:
		return Int{Width: WidthInt, Signed: true}, nil
	case parser.KindLong:
		return Int{Width: WidthLong, Signed: true}, nil
	case parser.KindLongLong:
		return Int{Width: WidthLongLong, Signed: true}, nil

	case parser.KindFloat:
		return Float{Bits: 32}, nil
	case parser.KindDouble:
		return Float{Bits: 64}, nil
	case parser.KindLongDouble:
		return Float{Bits: 128}, nil

	case parser.KindPointer:
		return tr.pointer(ty.Pointee(), loc)

	case parser.KindIncompleteArray:
		// An incomplete array parameter decays to a pointer at the ABI
		// level.
		return tr.pointer(ty.Elem(), loc)

	case parser.KindConstantArray:
		elem, err := tr.Translate(ty.Elem(), loc)
		if err != nil {
			return nil, err
		}
		return Array{Elem: elem, Len: ty.ArraySize()}, nil

	case parser.KindRecord, parser.KindEnum:
		return Named{Name: stripPrefixes(ty.Spelling())}, nil

	case parser.KindTypedef:
		name := stripPrefixes(ty.Spelling())
		if fixed, ok := fixedWidthAliases[name]; ok {
			return fixed, nil
		}
		return tr.Translate(ty.Underlying(), loc)

	case parser.KindFunctionProto:
		log.Warningf("substituting opaque pointer for function prototype type (%s)", loc)
		return Unsupported{}, nil

	case parser.KindInvalid, parser.KindUnexposed,
		parser.KindWChar, parser.KindChar16, parser.KindChar32,
		parser.KindInt128, parser.KindUInt128,
		parser.KindComplex, parser.KindVector, parser.KindBlockPointer,
		parser.KindFunctionNoProto, parser.KindVariableArray:
		return nil, &UnsupportedTypeError{Kind: ty.Kind(), Spelling: ty.Spelling(), Loc: loc}
	}

	// A front-end kind added without a case above lands here instead of
	// silently passing through.
	return nil, &UnsupportedTypeError{Kind: ty.Kind(), Spelling: ty.Spelling(), Loc: loc}
}

func (tr Translator) pointer(pointee *parser.Type, loc parser.Location) (TypeExpr, error) {
	inner, err := tr.Translate(pointee, loc)
	if err != nil {
		return nil, err
	}
	return Pointer{Mutable: !pointee.IsConstQualified(), Pointee: inner}, nil
}

func stripPrefixes(name string) string {
	for {
		stripped := false
		for _, prefix := range namePrefixes {
			if strings.HasPrefix(name, prefix) {
				name = name[len(prefix):]
				stripped = true
			}
		}
		if !stripped {
			return name
		}
	}
}
