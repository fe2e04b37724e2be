package translate

import (
	"errors"
	"fmt"

	"github.com/ardanlabs/ffi-declgen/parser"
)

// ErrInvariant reports that the traversal produced more (or fewer) parameter
// nodes than a function's type signature declares. It indicates inconsistent
// front-end data, not a malformed header.
var ErrInvariant = errors.New("parameter nodes out of sync with function type")

// UnsupportedTypeError is returned for type kinds that have no destination
// mapping. Emitting a guessed signature would cause undefined behavior at
// the call boundary, so the whole run stops instead.
type UnsupportedTypeError struct {
	Kind     parser.TypeKind
	Spelling string
	Loc      parser.Location
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("%s: unsupported C type %q (kind %s)", e.Loc, e.Spelling, e.Kind)
}
