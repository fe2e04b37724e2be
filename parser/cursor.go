package parser

import "fmt"

// Location is a position in a header file.
type Location struct {
	File   string
	Line   int
	Column int
}

func (l Location) String() string {
	return fmt.Sprintf("%s line %d, column %d", l.File, l.Line, l.Column)
}

// CursorKind classifies one node of the declaration tree.
type CursorKind int

const (
	CursorTranslationUnit CursorKind = iota
	CursorFunctionDecl
	CursorParmDecl
	CursorTypedefDecl
	CursorStructDecl
	CursorFieldDecl
	CursorEnumDecl
	CursorEnumConstantDecl
	CursorVarDecl
	CursorUnexposedAttr
	CursorCompoundStmt
	CursorLinkageSpec
)

var cursorKindNames = map[CursorKind]string{
	CursorTranslationUnit:  "TranslationUnit",
	CursorFunctionDecl:     "FunctionDecl",
	CursorParmDecl:         "ParmDecl",
	CursorTypedefDecl:      "TypedefDecl",
	CursorStructDecl:       "StructDecl",
	CursorFieldDecl:        "FieldDecl",
	CursorEnumDecl:         "EnumDecl",
	CursorEnumConstantDecl: "EnumConstantDecl",
	CursorVarDecl:          "VarDecl",
	CursorUnexposedAttr:    "UnexposedAttr",
	CursorCompoundStmt:     "CompoundStmt",
	CursorLinkageSpec:      "LinkageSpec",
}

func (k CursorKind) String() string {
	if s, ok := cursorKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("CursorKind(%d)", int(k))
}

// Cursor is a handle to one syntactic element of a parsed header.
type Cursor struct {
	kind     CursorKind
	spelling string
	typ      *Type
	storage  StorageClass
	loc      Location
	children []*Cursor
}

// Kind reports the cursor's kind.
func (c *Cursor) Kind() CursorKind { return c.kind }

// Spelling returns the declared name, or "" when the source omits one.
func (c *Cursor) Spelling() string { return c.spelling }

// Type returns the cursor's type descriptor, or nil for non-declarations.
func (c *Cursor) Type() *Type { return c.typ }

// StorageClass returns the declaration's storage class.
func (c *Cursor) StorageClass() StorageClass { return c.storage }

// Location returns where the declaration starts.
func (c *Cursor) Location() Location { return c.loc }

// VisitResult directs the traversal after each visited node.
type VisitResult int

const (
	// VisitContinue moves to the next sibling without descending.
	VisitContinue VisitResult = iota
	// VisitRecurse descends into the node's children first.
	VisitRecurse
	// VisitBreak aborts the whole traversal.
	VisitBreak
)

// Visitor is invoked once per visited cursor.
type Visitor func(cursor, parent *Cursor) VisitResult

// VisitChildren walks root's children depth-first, calling visit for each
// node. Each callback runs to completion before the next sibling or child is
// visited. Reports whether the traversal was aborted by VisitBreak.
func VisitChildren(root *Cursor, visit Visitor) bool {
	for _, child := range root.children {
		switch visit(child, root) {
		case VisitBreak:
			return true
		case VisitRecurse:
			if VisitChildren(child, visit) {
				return true
			}
		}
	}
	return false
}

// Diagnostic is one structured parse error.
type Diagnostic struct {
	Loc     Location
	Message string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s", d.Loc, d.Message)
}

// TranslationUnit is the parsed representation of one header file.
type TranslationUnit struct {
	cursor *Cursor
	diags  []Diagnostic
	flags  []string
}

// Cursor returns the root cursor covering the whole unit.
func (tu *TranslationUnit) Cursor() *Cursor { return tu.cursor }

// Diagnostics returns the parse errors, in source order.
func (tu *TranslationUnit) Diagnostics() []Diagnostic { return tu.diags }

// Flags returns the flag list the unit was parsed with. Flags are carried
// verbatim; the parser does not interpret them.
func (tu *TranslationUnit) Flags() []string { return tu.flags }
