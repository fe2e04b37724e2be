package translate

import (
	"fmt"

	"github.com/ardanlabs/ffi-declgen/parser"
)

// Collector walks a translation unit in source order and assembles one Decl
// per exported, non-variadic, C-calling-convention function. A Collector is
// single-use; create a new one per translation unit.
type Collector struct {
	tr Translator

	decls      []*Decl
	cur        *Decl
	paramIndex int
	err        error
}

// NewCollector returns a Collector ready to walk one translation unit.
func NewCollector() *Collector {
	return &Collector{}
}

// Collect traverses tu's declarations and returns the eligible function
// declarations in first-encountered order. Any unsupported type or
// structural fault aborts the traversal and is returned.
func (c *Collector) Collect(tu *parser.TranslationUnit) ([]*Decl, error) {
	parser.VisitChildren(tu.Cursor(), c.visit)
	if c.err != nil {
		return nil, c.err
	}
	// The last function in the unit has no later declaration to commit it.
	if err := c.commit(); err != nil {
		return nil, err
	}
	return c.decls, nil
}

func (c *Collector) visit(cursor, parent *parser.Cursor) parser.VisitResult {
	switch cursor.Kind() {
	case parser.CursorFunctionDecl:
		return c.beginFunction(cursor)

	case parser.CursorParmDecl:
		return c.bindParam(cursor)

	case parser.CursorUnexposedAttr, parser.CursorCompoundStmt,
		parser.CursorFieldDecl, parser.CursorTypedefDecl:
		// Nothing of interest below these, and bodies can be arbitrarily
		// large.
		return parser.VisitContinue

	default:
		// Functions can hide inside constructs we don't special-case, such
		// as linkage blocks.
		return parser.VisitRecurse
	}
}

func (c *Collector) beginFunction(cursor *parser.Cursor) parser.VisitResult {
	loc := cursor.Location()

	if !exportedStorage(cursor.StorageClass()) {
		log.Infof("skipping non-exported function %s (%s)", cursor.Spelling(), loc)
		return parser.VisitContinue
	}

	fnType := cursor.Type()
	if fnType.IsVariadic() {
		log.Warningf("skipping variadic function %s, not yet supported (%s)", cursor.Spelling(), loc)
		return parser.VisitContinue
	}
	if fnType.CallingConv() != parser.CallC {
		log.Warningf("skipping non c calling convention function %s, not yet supported (%s)", cursor.Spelling(), loc)
		return parser.VisitContinue
	}

	if err := c.commit(); err != nil {
		return c.fail(err)
	}

	ret, err := c.tr.Translate(fnType.Result(), loc)
	if err != nil {
		return c.fail(err)
	}

	decl := &Decl{
		Name:   cursor.Spelling(),
		Return: ret,
		Params: make([]Param, fnType.NumArgs()),
	}
	// Parameter types come eagerly from the function type; only the names
	// are picked up from child cursors.
	for i := range decl.Params {
		pt, err := c.tr.Translate(fnType.Arg(i), loc)
		if err != nil {
			return c.fail(err)
		}
		decl.Params[i].Type = pt
	}

	c.cur = decl
	c.paramIndex = 0
	return parser.VisitRecurse
}

func (c *Collector) bindParam(cursor *parser.Cursor) parser.VisitResult {
	if c.cur == nil {
		return c.fail(fmt.Errorf("%s: parameter outside function: %w", cursor.Location(), ErrInvariant))
	}
	if c.paramIndex >= len(c.cur.Params) {
		return c.fail(fmt.Errorf("%s: function %s: %w", cursor.Location(), c.cur.Name, ErrInvariant))
	}
	c.cur.Params[c.paramIndex].Name = cursor.Spelling()
	c.paramIndex++
	return parser.VisitContinue
}

// commit appends the in-progress declaration, if any, to the result list.
func (c *Collector) commit() error {
	if c.cur == nil {
		return nil
	}
	if c.paramIndex != len(c.cur.Params) {
		return fmt.Errorf("function %s: bound %d of %d parameters: %w",
			c.cur.Name, c.paramIndex, len(c.cur.Params), ErrInvariant)
	}
	c.decls = append(c.decls, c.cur)
	c.cur = nil
	return nil
}

func (c *Collector) fail(err error) parser.VisitResult {
	c.err = err
	return parser.VisitBreak
}

func exportedStorage(sc parser.StorageClass) bool {
	switch sc {
	case parser.StorageNone, parser.StorageExtern, parser.StorageAuto:
		return true
	}
	return false
}
