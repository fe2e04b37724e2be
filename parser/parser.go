package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("declgen.parser")

// Parse parses C header source into a translation unit. The flag list is
// accepted verbatim and carried on the unit without being interpreted.
// Parse errors are reported through the unit's Diagnostics; the error return
// covers only failure to construct a unit at all.
func Parse(file, src string, flags []string) (*TranslationUnit, error) {
	p := &cparser{
		file:     file,
		typedefs: stdintTypedefs(),
	}

	lx := newLexer(src)
	for {
		t := lx.next()
		p.toks = append(p.toks, t)
		if t.kind == tokEOF {
			break
		}
	}

	root := &Cursor{kind: CursorTranslationUnit, spelling: file}
	for !p.at(tokEOF) {
		p.parseTopLevel(root)
	}

	return &TranslationUnit{cursor: root, diags: p.diags, flags: flags}, nil
}

type cparser struct {
	file     string
	toks     []token
	pos      int
	typedefs map[string]*Type
	diags    []Diagnostic
}

type paramInfo struct {
	name string
	loc  Location
}

type declSpec struct {
	typ       *Type
	storage   StorageClass
	conv      CallingConv
	isTypedef bool
	attrs     []*Cursor
}

func (p *cparser) peek() token { return p.toks[p.pos] }

func (p *cparser) peekAt(n int) token {
	i := p.pos + n
	if i >= len(p.toks) {
		i = len(p.toks) - 1
	}
	return p.toks[i]
}

func (p *cparser) next() token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *cparser) at(k tokenKind) bool { return p.peek().kind == k }

func (p *cparser) atIdent(s string) bool {
	t := p.peek()
	return t.kind == tokIdent && t.text == s
}

func (p *cparser) accept(k tokenKind) bool {
	if p.at(k) {
		p.next()
		return true
	}
	return false
}

func (p *cparser) expect(k tokenKind, what string) {
	if !p.accept(k) {
		p.errorf(p.loc(p.peek()), "expected %s", what)
	}
}

func (p *cparser) loc(t token) Location {
	return Location{File: p.file, Line: t.line, Column: t.col}
}

func (p *cparser) errorf(loc Location, format string, args ...any) {
	p.diags = append(p.diags, Diagnostic{Loc: loc, Message: fmt.Sprintf(format, args...)})
}

// sync skips ahead to a likely declaration boundary after a parse error.
func (p *cparser) sync() {
	for !p.at(tokEOF) {
		t := p.next()
		switch t.kind {
		case tokSemi, tokRBrace:
			return
		case tokLBrace:
			depth := 1
			for depth > 0 && !p.at(tokEOF) {
				switch p.next().kind {
				case tokLBrace:
					depth++
				case tokRBrace:
					depth--
				}
			}
			return
		}
	}
}

func (p *cparser) parseTopLevel(parent *Cursor) {
	start := p.pos

	switch {
	case p.at(tokSemi):
		p.next()
		return
	case p.atIdent("extern") && p.peekAt(1).kind == tokString:
		p.parseLinkageSpec(parent)
		return
	}

	p.parseDeclaration(parent)

	if p.pos == start && !p.at(tokEOF) {
		p.errorf(p.loc(p.peek()), "unexpected token %q", p.peek().text)
		p.next()
	}
}

// parseLinkageSpec handles `extern "C"` blocks, which wrap ordinary
// declarations without changing how they are collected.
func (p *cparser) parseLinkageSpec(parent *Cursor) {
	ext := p.next() // extern
	lang := p.next()

	ls := &Cursor{kind: CursorLinkageSpec, spelling: lang.text, loc: p.loc(ext)}
	if p.accept(tokLBrace) {
		for !p.at(tokRBrace) && !p.at(tokEOF) {
			p.parseTopLevel(ls)
		}
		p.expect(tokRBrace, "'}' closing linkage block")
	} else {
		p.parseTopLevel(ls)
	}
	parent.children = append(parent.children, ls)
}

func (p *cparser) parseDeclaration(parent *Cursor) {
	ds := p.parseDeclSpecs(parent)
	if ds.typ == nil {
		p.errorf(p.loc(p.peek()), "expected declaration")
		p.sync()
		return
	}

	// A bare `struct Foo {...};` or `enum Color {...};` has no declarator.
	if p.accept(tokSemi) {
		return
	}

	for {
		name, nameLoc, wrap, fnParams := p.parseDeclarator(&ds)
		// Trailing attributes can still change the calling convention, so
		// they are parsed before the declarator wrap is applied.
		for p.atIdent("__attribute__") || p.atIdent("__attribute") {
			p.next()
			p.parseAttribute(&ds)
		}
		typ := wrap(ds.typ)

		switch {
		case ds.isTypedef:
			p.declareTypedef(parent, name, nameLoc, typ)

		case typ.kind == KindFunctionProto || typ.kind == KindFunctionNoProto:
			fc := &Cursor{
				kind:     CursorFunctionDecl,
				spelling: name,
				typ:      typ,
				storage:  ds.storage,
				loc:      nameLoc,
			}
			for i, pt := range typ.params {
				pc := &Cursor{kind: CursorParmDecl, typ: pt, loc: nameLoc}
				if i < len(fnParams) {
					pc.spelling = fnParams[i].name
					if fnParams[i].name != "" {
						pc.loc = fnParams[i].loc
					}
				}
				fc.children = append(fc.children, pc)
			}
			fc.children = append(fc.children, ds.attrs...)
			parent.children = append(parent.children, fc)

			// Function definitions carry a body we never look inside.
			if p.at(tokLBrace) {
				log.Debugf("skipping body of function %s", name)
				body := p.loc(p.peek())
				p.skipBraces()
				fc.children = append(fc.children, &Cursor{kind: CursorCompoundStmt, loc: body})
				return
			}

		default:
			parent.children = append(parent.children, &Cursor{
				kind:     CursorVarDecl,
				spelling: name,
				typ:      typ,
				storage:  ds.storage,
				loc:      nameLoc,
			})
			if p.peek().kind == tokOther && p.peek().text == "=" {
				p.next()
				p.skipInitializer()
			}
		}

		if p.accept(tokComma) {
			continue
		}
		p.expect(tokSemi, "';' after declaration")
		return
	}
}

func (p *cparser) declareTypedef(parent *Cursor, name string, loc Location, typ *Type) {
	if name == "" {
		p.errorf(loc, "typedef requires a name")
		return
	}

	// Anonymous records adopt the typedef name, matching how compiler
	// front-ends spell them.
	if (typ.kind == KindRecord || typ.kind == KindEnum) && typ.name == "" {
		typ.name = name
	}

	if _, exists := p.typedefs[name]; exists {
		log.Debugf("typedef %s redeclared, keeping latest", name)
	}
	td := &Type{kind: KindTypedef, name: name, underlying: typ}
	p.typedefs[name] = td
	parent.children = append(parent.children, &Cursor{
		kind:     CursorTypedefDecl,
		spelling: name,
		typ:      td,
		loc:      loc,
	})
}

func (p *cparser) parseDeclSpecs(parent *Cursor) declSpec {
	var ds declSpec
	var (
		typ         *Type
		base        string
		sign        int
		longs       int
		shortSeen   bool
		constSeen   bool
		complexSeen bool
	)
	start := p.peek()

loop:
	for {
		t := p.peek()
		if t.kind != tokIdent {
			break
		}
		switch t.text {
		case "typedef":
			ds.isTypedef = true
		case "extern":
			ds.storage = StorageExtern
		case "static":
			ds.storage = StorageStatic
		case "auto":
			ds.storage = StorageAuto
		case "register":
			ds.storage = StorageRegister
		case "const":
			constSeen = true
		case "volatile", "restrict", "__restrict", "__restrict__",
			"inline", "__inline", "__inline__", "_Noreturn":
			// accepted and ignored
		case "__cdecl":
			ds.conv = CallC
		case "__stdcall":
			ds.conv = CallStdcall
		case "__fastcall":
			ds.conv = CallFastcall
		case "__attribute__", "__attribute":
			p.next()
			p.parseAttribute(&ds)
			continue
		case "signed":
			sign = 1
		case "unsigned":
			sign = -1
		case "short":
			shortSeen = true
		case "long":
			longs++
		case "_Complex", "__complex__":
			complexSeen = true
		case "void", "char", "int", "float", "double", "_Bool", "bool",
			"__int128", "wchar_t", "char16_t", "char32_t":
			if base != "" {
				p.errorf(p.loc(t), "unexpected %q in type specifier", t.text)
			}
			base = t.text
		case "struct", "union":
			typ = p.parseRecord(parent)
			continue
		case "enum":
			typ = p.parseEnum(parent)
			continue
		default:
			ut, ok := p.typedefs[t.text]
			if ok && typ == nil && base == "" && sign == 0 && longs == 0 && !shortSeen && !complexSeen {
				typ = ut
				p.next()
				continue
			}
			break loop
		}
		p.next()
	}

	if typ != nil {
		if base != "" || sign != 0 || longs > 0 || shortSeen || complexSeen {
			p.errorf(p.loc(start), "invalid type specifier combination")
		}
		ds.typ = typ
	} else {
		ds.typ = p.resolveBuiltin(base, sign, longs, shortSeen, complexSeen)
	}
	if constSeen && ds.typ != nil {
		ds.typ = qualified(ds.typ)
	}
	return ds
}

func (p *cparser) resolveBuiltin(base string, sign, longs int, shortSeen, complexSeen bool) *Type {
	if complexSeen {
		return builtin(KindComplex)
	}
	unsigned := sign < 0

	switch base {
	case "void":
		return builtin(KindVoid)
	case "_Bool", "bool":
		return builtin(KindBool)
	case "wchar_t":
		return builtin(KindWChar)
	case "char16_t":
		return builtin(KindChar16)
	case "char32_t":
		return builtin(KindChar32)
	case "float":
		return builtin(KindFloat)
	case "double":
		if longs > 0 {
			return builtin(KindLongDouble)
		}
		return builtin(KindDouble)
	case "char":
		switch {
		case sign > 0:
			return builtin(KindSChar)
		case sign < 0:
			return builtin(KindUChar)
		}
		return builtin(KindCharS)
	case "__int128":
		if unsigned {
			return builtin(KindUInt128)
		}
		return builtin(KindInt128)
	case "int", "":
		if base == "" && sign == 0 && longs == 0 && !shortSeen {
			return nil
		}
		switch {
		case shortSeen && unsigned:
			return builtin(KindUShort)
		case shortSeen:
			return builtin(KindShort)
		case longs >= 2 && unsigned:
			return builtin(KindULongLong)
		case longs >= 2:
			return builtin(KindLongLong)
		case longs == 1 && unsigned:
			return builtin(KindULong)
		case longs == 1:
			return builtin(KindLong)
		case unsigned:
			return builtin(KindUInt)
		}
		return builtin(KindInt)
	}
	return nil
}

func (p *cparser) parseRecord(parent *Cursor) *Type {
	kw := p.next() // struct or union
	var name string
	nameTok := kw
	if p.at(tokIdent) {
		nameTok = p.next()
		name = nameTok.text
	}

	typ := &Type{kind: KindRecord, tag: kw.text, name: name}
	if p.accept(tokLBrace) {
		sc := &Cursor{kind: CursorStructDecl, spelling: name, typ: typ, loc: p.loc(nameTok)}
		p.parseFields(sc)
		if parent != nil {
			parent.children = append(parent.children, sc)
		}
	}
	return typ
}

func (p *cparser) parseFields(sc *Cursor) {
	for !p.at(tokRBrace) && !p.at(tokEOF) {
		ds := p.parseDeclSpecs(sc)
		if ds.typ == nil {
			p.errorf(p.loc(p.peek()), "expected field type")
			p.sync()
			continue
		}
		for {
			name, nameLoc, wrap, _ := p.parseDeclarator(&ds)
			ft := wrap(ds.typ)
			if p.accept(tokColon) {
				// bit-field width
				if p.at(tokNumber) {
					p.next()
				} else {
					p.errorf(p.loc(p.peek()), "expected bit-field width")
				}
			}
			sc.children = append(sc.children, &Cursor{
				kind:     CursorFieldDecl,
				spelling: name,
				typ:      ft,
				loc:      nameLoc,
			})
			if !p.accept(tokComma) {
				break
			}
		}
		p.expect(tokSemi, "';' after struct field")
	}
	p.expect(tokRBrace, "'}' closing struct body")
}

func (p *cparser) parseEnum(parent *Cursor) *Type {
	kw := p.next()
	var name string
	nameTok := kw
	if p.at(tokIdent) {
		nameTok = p.next()
		name = nameTok.text
	}

	typ := &Type{kind: KindEnum, name: name}
	if p.accept(tokLBrace) {
		ec := &Cursor{kind: CursorEnumDecl, spelling: name, typ: typ, loc: p.loc(nameTok)}
		for !p.at(tokRBrace) && !p.at(tokEOF) {
			if p.at(tokIdent) {
				ct := p.next()
				ec.children = append(ec.children, &Cursor{
					kind:     CursorEnumConstantDecl,
					spelling: ct.text,
					loc:      p.loc(ct),
				})
			} else {
				p.errorf(p.loc(p.peek()), "expected enumerator name")
			}
			p.skipEnumValue()
			if !p.accept(tokComma) {
				break
			}
		}
		p.expect(tokRBrace, "'}' closing enum body")
		if parent != nil {
			parent.children = append(parent.children, ec)
		}
	}
	return typ
}

// skipEnumValue consumes an optional `= expr` without evaluating it.
func (p *cparser) skipEnumValue() {
	depth := 0
	for !p.at(tokEOF) {
		t := p.peek()
		switch t.kind {
		case tokLParen:
			depth++
		case tokRParen:
			if depth == 0 {
				return
			}
			depth--
		case tokComma, tokRBrace:
			if depth == 0 {
				return
			}
		}
		p.next()
	}
}

func (p *cparser) parseAttribute(ds *declSpec) {
	start := p.peek()
	if !p.accept(tokLParen) {
		p.errorf(p.loc(start), "malformed attribute")
		return
	}
	depth := 1
	var words []string
	for depth > 0 && !p.at(tokEOF) {
		t := p.next()
		switch t.kind {
		case tokLParen:
			depth++
		case tokRParen:
			depth--
		case tokIdent:
			words = append(words, t.text)
		}
	}
	for _, w := range words {
		switch strings.Trim(w, "_") {
		case "cdecl":
			ds.conv = CallC
		case "stdcall":
			ds.conv = CallStdcall
		case "fastcall":
			ds.conv = CallFastcall
		}
	}
	ds.attrs = append(ds.attrs, &Cursor{
		kind:     CursorUnexposedAttr,
		spelling: strings.Join(words, " "),
		loc:      p.loc(start),
	})
}

// parseDeclarator parses one (possibly abstract) declarator. It returns the
// declared name and a wrap function that builds the declared type from the
// declaration-specifier base type. When the declarator's own suffix is a
// parameter list, fnParams carries the parameter names in declaration order.
func (p *cparser) parseDeclarator(ds *declSpec) (name string, nameLoc Location, wrap func(*Type) *Type, fnParams []paramInfo) {
	nameLoc = p.loc(p.peek())

	// Microsoft-style conventions may be spelled inside the declarator, as
	// in `int (__stdcall *cb)(int)`.
	for {
		switch p.peek().text {
		case "__cdecl":
			ds.conv = CallC
		case "__stdcall":
			ds.conv = CallStdcall
		case "__fastcall":
			ds.conv = CallFastcall
		default:
			goto convDone
		}
		p.next()
	}
convDone:

	var ptrs []bool
	for p.at(tokStar) {
		p.next()
		constPtr := false
		for p.at(tokIdent) {
			switch w := p.peek().text; {
			case w == "const":
				constPtr = true
			case w == "volatile" || w == "restrict" || strings.HasPrefix(w, "__restrict"):
				// ignored qualifiers
			default:
				goto qualsDone
			}
			p.next()
		}
	qualsDone:
		ptrs = append(ptrs, constPtr)
	}

	var innerWrap func(*Type) *Type
	if p.at(tokLParen) && p.groupedDeclaratorAhead() {
		p.next()
		name, nameLoc, innerWrap, _ = p.parseDeclarator(ds)
		p.expect(tokRParen, "')' closing declarator group")
	} else if p.at(tokIdent) {
		t := p.next()
		name = t.text
		nameLoc = p.loc(t)
	}

	var suffixes []func(*Type) *Type
	for {
		if p.accept(tokLBracket) {
			if p.accept(tokRBracket) {
				suffixes = append(suffixes, func(t *Type) *Type {
					return &Type{kind: KindIncompleteArray, elem: t}
				})
				continue
			}
			sizeTok := p.next()
			size, ok := parseArraySize(sizeTok.text)
			if sizeTok.kind != tokNumber || !ok {
				p.errorf(p.loc(sizeTok), "array size must be an integer literal")
			}
			for !p.at(tokRBracket) && !p.at(tokEOF) {
				p.next()
			}
			p.expect(tokRBracket, "']' closing array size")
			sz := size
			suffixes = append(suffixes, func(t *Type) *Type {
				return &Type{kind: KindConstantArray, elem: t, size: sz}
			})
			continue
		}
		if p.accept(tokLParen) {
			types, infos, variadic, proto := p.parseParams()
			fnParams = infos
			suffixes = append(suffixes, func(t *Type) *Type {
				kind := KindFunctionProto
				if !proto {
					kind = KindFunctionNoProto
				}
				return &Type{kind: kind, result: t, params: types, variadic: variadic, conv: ds.conv}
			})
			continue
		}
		break
	}

	wrap = func(t *Type) *Type {
		for _, constPtr := range ptrs {
			t = pointerTo(t, constPtr)
		}
		for i := len(suffixes) - 1; i >= 0; i-- {
			t = suffixes[i](t)
		}
		if innerWrap != nil {
			t = innerWrap(t)
		}
		return t
	}
	return name, nameLoc, wrap, fnParams
}

// groupedDeclaratorAhead distinguishes `(*name)` declarator grouping from a
// parameter list following an omitted name.
func (p *cparser) groupedDeclaratorAhead() bool {
	t := p.peekAt(1)
	if t.kind == tokStar {
		return true
	}
	if t.kind == tokIdent {
		switch t.text {
		case "__cdecl", "__stdcall", "__fastcall":
			return p.peekAt(2).kind == tokStar
		}
	}
	return false
}

func (p *cparser) parseParams() (types []*Type, infos []paramInfo, variadic bool, proto bool) {
	if p.accept(tokRParen) {
		// `()` declares an unprototyped function.
		return nil, nil, false, false
	}
	if p.atIdent("void") && p.peekAt(1).kind == tokRParen {
		p.next()
		p.next()
		return nil, nil, false, true
	}

	proto = true
	for {
		if p.at(tokEllipsis) {
			p.next()
			variadic = true
			break
		}

		ds := p.parseDeclSpecs(nil)
		if ds.typ == nil {
			p.errorf(p.loc(p.peek()), "expected parameter type")
			for !p.at(tokComma) && !p.at(tokRParen) && !p.at(tokEOF) {
				p.next()
			}
		} else {
			name, nameLoc, wrap, _ := p.parseDeclarator(&ds)
			pt := adjustParam(wrap(ds.typ))
			types = append(types, pt)
			infos = append(infos, paramInfo{name: name, loc: nameLoc})
		}

		if !p.accept(tokComma) {
			break
		}
	}
	p.expect(tokRParen, "')' closing parameter list")
	return types, infos, variadic, proto
}

func (p *cparser) skipBraces() {
	if !p.accept(tokLBrace) {
		return
	}
	depth := 1
	for depth > 0 && !p.at(tokEOF) {
		switch p.next().kind {
		case tokLBrace:
			depth++
		case tokRBrace:
			depth--
		}
	}
}

func (p *cparser) skipInitializer() {
	depth := 0
	for !p.at(tokEOF) {
		t := p.peek()
		switch t.kind {
		case tokLParen, tokLBrace, tokLBracket:
			depth++
		case tokRParen, tokRBrace, tokRBracket:
			if depth == 0 {
				return
			}
			depth--
		case tokComma, tokSemi:
			if depth == 0 {
				return
			}
		}
		p.next()
	}
}

func parseArraySize(text string) (int64, bool) {
	s := strings.TrimRight(text, "uUlL")
	n, err := strconv.ParseInt(s, 0, 64)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
