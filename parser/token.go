package parser

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokNumber
	tokString
	tokStar
	tokLParen
	tokRParen
	tokLBracket
	tokRBracket
	tokLBrace
	tokRBrace
	tokComma
	tokSemi
	tokColon
	tokEllipsis
	tokOther
)

type token struct {
	kind tokenKind
	text string
	line int
	col  int
}

// lexer is a hand-written scanner over one header's source text.
// Preprocessor lines are skipped wholesale; declgen does not expand macros.
type lexer struct {
	src  string
	pos  int
	line int
	col  int
	bol  bool // at beginning of a line (only whitespace seen so far)
}

func newLexer(src string) *lexer {
	return &lexer{src: src, line: 1, col: 1, bol: true}
}

func (l *lexer) next() token {
	for {
		l.skipSpace()
		if l.pos >= len(l.src) {
			return token{kind: tokEOF, line: l.line, col: l.col}
		}

		c := l.src[l.pos]

		// Comments.
		if c == '/' && l.pos+1 < len(l.src) {
			if l.src[l.pos+1] == '/' {
				l.skipLine()
				continue
			}
			if l.src[l.pos+1] == '*' {
				l.skipBlockComment()
				continue
			}
		}

		// Preprocessor directives are line-oriented; a '#' anywhere before
		// the first real token of a line starts one.
		if c == '#' && l.bol {
			l.skipDirective()
			continue
		}

		break
	}

	line, col := l.line, l.col
	l.bol = false
	c := l.src[l.pos]

	switch {
	case isIdentStart(c):
		start := l.pos
		for l.pos < len(l.src) && isIdentPart(l.src[l.pos]) {
			l.advance()
		}
		return token{kind: tokIdent, text: l.src[start:l.pos], line: line, col: col}

	case c >= '0' && c <= '9':
		start := l.pos
		for l.pos < len(l.src) && isNumberPart(l.src[l.pos]) {
			l.advance()
		}
		return token{kind: tokNumber, text: l.src[start:l.pos], line: line, col: col}

	case c == '"':
		l.advance()
		start := l.pos
		for l.pos < len(l.src) && l.src[l.pos] != '"' {
			if l.src[l.pos] == '\\' {
				l.advance()
			}
			l.advance()
		}
		text := l.src[start:l.pos]
		if l.pos < len(l.src) {
			l.advance()
		}
		return token{kind: tokString, text: text, line: line, col: col}
	}

	l.advance()
	switch c {
	case '*':
		return token{kind: tokStar, text: "*", line: line, col: col}
	case '(':
		return token{kind: tokLParen, text: "(", line: line, col: col}
	case ')':
		return token{kind: tokRParen, text: ")", line: line, col: col}
	case '[':
		return token{kind: tokLBracket, text: "[", line: line, col: col}
	case ']':
		return token{kind: tokRBracket, text: "]", line: line, col: col}
	case '{':
		return token{kind: tokLBrace, text: "{", line: line, col: col}
	case '}':
		return token{kind: tokRBrace, text: "}", line: line, col: col}
	case ',':
		return token{kind: tokComma, text: ",", line: line, col: col}
	case ';':
		return token{kind: tokSemi, text: ";", line: line, col: col}
	case ':':
		return token{kind: tokColon, text: ":", line: line, col: col}
	case '.':
		if l.pos+1 < len(l.src) && l.src[l.pos] == '.' && l.src[l.pos+1] == '.' {
			l.advance()
			l.advance()
			return token{kind: tokEllipsis, text: "...", line: line, col: col}
		}
		return token{kind: tokOther, text: ".", line: line, col: col}
	}
	return token{kind: tokOther, text: string(c), line: line, col: col}
}

func (l *lexer) advance() {
	if l.pos < len(l.src) {
		if l.src[l.pos] == '\n' {
			l.line++
			l.col = 1
			l.bol = true
		} else {
			l.col++
		}
		l.pos++
	}
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.src) {
		switch l.src[l.pos] {
		case ' ', '\t', '\r', '\n', '\v', '\f':
			l.advance()
		default:
			return
		}
	}
}

func (l *lexer) skipLine() {
	for l.pos < len(l.src) && l.src[l.pos] != '\n' {
		l.advance()
	}
}

// skipDirective consumes a preprocessor line, honoring backslash
// continuations.
func (l *lexer) skipDirective() {
	for l.pos < len(l.src) {
		if l.src[l.pos] == '\\' {
			l.advance()
			if l.pos < len(l.src) && l.src[l.pos] == '\r' {
				l.advance()
			}
			if l.pos < len(l.src) && l.src[l.pos] == '\n' {
				l.advance()
			}
			continue
		}
		if l.src[l.pos] == '\n' {
			l.advance()
			return
		}
		l.advance()
	}
}

func (l *lexer) skipBlockComment() {
	l.advance() // '/'
	l.advance() // '*'
	for l.pos < len(l.src) {
		if l.src[l.pos] == '*' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '/' {
			l.advance()
			l.advance()
			return
		}
		l.advance()
	}
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func isNumberPart(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F') ||
		c == 'x' || c == 'X' || c == 'u' || c == 'U' || c == 'l' || c == 'L' || c == '.'
}
