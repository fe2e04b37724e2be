// Package generator renders collected declarations as a single extern block
// in the destination FFI syntax.
package generator

import (
	"bytes"
	"fmt"

	"github.com/ardanlabs/ffi-declgen/translate"
)

const indent = "    "

// Generator renders one translation unit's declarations.
type Generator struct {
	decls []*translate.Decl
}

// New returns a Generator over decls, which are rendered in order.
func New(decls []*translate.Decl) *Generator {
	return &Generator{decls: decls}
}

// Generate returns the extern block as text, or the empty string when there
// is nothing to declare.
func (g *Generator) Generate() string {
	if len(g.decls) == 0 {
		return ""
	}

	var buf bytes.Buffer
	buf.WriteString("extern {\n")
	for _, d := range g.decls {
		fmt.Fprintf(&buf, "%sfn %s(", indent, d.Name)
		for i, p := range d.Params {
			if i > 0 {
				buf.WriteString(", ")
			}
			fmt.Fprintf(&buf, "%s: %s", p.Name, p.Type)
		}
		buf.WriteString(")")
		if _, isVoid := d.Return.(translate.Void); !isVoid {
			fmt.Fprintf(&buf, " -> %s", d.Return)
		}
		buf.WriteString(";\n")
	}
	buf.WriteString("}\n")
	return buf.String()
}
