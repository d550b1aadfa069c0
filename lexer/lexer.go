// Package lexer converts a source buffer into a ribbon.Ribbon while
// preserving every byte, using a character-at-a-time state machine
// generalized from a comma-insertion scan to Nodable's
// prefix/suffix-attachment rule.
package lexer

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/nodable-lang/nodable/lang"
	"github.com/nodable-lang/nodable/ribbon"
	"github.com/nodable-lang/nodable/token"
)

// Error reports a LexError: an unrecognized byte at a position. Lexing
// halts immediately on error; no partial ribbon is returned.
type Error struct {
	Offset int
	Byte   byte
}

func (e *Error) Error() string {
	return fmt.Sprintf("lexer: illegal character %q at byte %d", e.Byte, e.Offset)
}

type lexer struct {
	lang *lang.Language
	src  []byte
	buf  *token.Buffer
	rib  *ribbon.Ribbon

	rdOffset int // offset of the next unread byte
	offset   int // offset of lx.ch
	ch       rune

	ignoreStart int // -1 if no ignore bytes are pending
	ignoreEnd   int
}

// Lex tokenizes src under the given language and returns a ribbon.Ribbon
// that preserves every byte as prefix/suffix attached to real tokens.
func Lex(l *lang.Language, name string, src []byte) (*ribbon.Ribbon, error) {
	buf := token.NewBuffer(name, src)
	lx := &lexer{lang: l, src: src, buf: buf, rib: ribbon.New(buf), ignoreStart: -1}
	lx.next()
	if err := lx.run(); err != nil {
		return nil, err
	}
	lx.flushTrailingIgnore()
	return lx.rib, nil
}

func (lx *lexer) next() {
	if lx.rdOffset < len(lx.src) {
		lx.offset = lx.rdOffset
		r, w := rune(lx.src[lx.rdOffset]), 1
		if r >= utf8.RuneSelf {
			r, w = utf8.DecodeRune(lx.src[lx.rdOffset:])
		}
		lx.rdOffset += w
		lx.ch = r
	} else {
		lx.offset = len(lx.src)
		lx.ch = -1
	}
}

func (lx *lexer) run() error {
	for lx.ch != -1 {
		start := lx.offset
		switch {
		case lx.ch == ' ' || lx.ch == '\t' || lx.ch == '\n' || lx.ch == '\r':
			for lx.ch == ' ' || lx.ch == '\t' || lx.ch == '\n' || lx.ch == '\r' {
				lx.next()
			}
			lx.recordIgnore(start, lx.offset)

		case lx.ch == '/' && lx.peekByte() == '/':
			lx.next()
			lx.next()
			for lx.ch != '\n' && lx.ch != -1 {
				lx.next()
			}
			if lx.ch == '\n' {
				lx.next()
			}
			lx.recordIgnore(start, lx.offset)

		case lx.ch == '/' && lx.peekByte() == '*':
			lx.next()
			lx.next()
			terminated := false
			for lx.ch != -1 {
				prev := lx.ch
				lx.next()
				if prev == '*' && lx.ch == '/' {
					lx.next()
					terminated = true
					break
				}
			}
			if !terminated {
				return &Error{Offset: start, Byte: '/'}
			}
			lx.recordIgnore(start, lx.offset)

		case isIdentStart(lx.ch):
			lx.next()
			for isIdentPart(lx.ch) {
				lx.next()
			}
			lexeme := string(lx.src[start:lx.offset])
			kind, ok := lx.lang.Lookup(lexeme)
			if !ok {
				kind = token.IDENT
			}
			lx.emit(kind, start, lx.offset)

		case isDigit(lx.ch):
			kind := lx.scanNumber()
			lx.emit(kind, start, lx.offset)

		case lx.ch == '"':
			if err := lx.scanString(); err != nil {
				return err
			}
			lx.emit(token.LITERAL_STRING, start, lx.offset)

		case lx.ch == '(':
			lx.next()
			lx.emit(token.PARENTHESIS_OPEN, start, lx.offset)
		case lx.ch == ')':
			lx.next()
			lx.emit(token.PARENTHESIS_CLOSE, start, lx.offset)
		case lx.ch == '{':
			lx.next()
			lx.emit(token.SCOPE_BEGIN, start, lx.offset)
		case lx.ch == '}':
			lx.next()
			lx.emit(token.SCOPE_END, start, lx.offset)
		case lx.ch == ';':
			lx.next()
			lx.emit(token.END_OF_INSTRUCTION, start, lx.offset)
		case lx.ch == ',':
			lx.next()
			lx.emit(token.LIST_SEPARATOR, start, lx.offset)

		default:
			if lx.scanOperator() {
				lx.emit(token.OPERATOR, start, lx.offset)
				break
			}
			return &Error{Offset: start, Byte: lx.src[start]}
		}
	}
	return nil
}

func (lx *lexer) peekByte() rune {
	if lx.rdOffset >= len(lx.src) {
		return -1
	}
	return rune(lx.src[lx.rdOffset])
}

// recordIgnore extends the pending ignore-byte range with a freshly
// scanned run of whitespace or comment bytes. Because nothing but more
// ignored bytes can separate two such runs, the pending range is always
// contiguous.
func (lx *lexer) recordIgnore(start, end int) {
	if lx.ignoreStart == -1 {
		lx.ignoreStart = start
	}
	lx.ignoreEnd = end
}

func (lx *lexer) takePendingIgnore() (token.Range, bool) {
	if lx.ignoreStart == -1 {
		return token.Range{}, false
	}
	r := token.Range{Start: lx.ignoreStart, End: lx.ignoreEnd}
	lx.ignoreStart, lx.ignoreEnd = -1, 0
	return r, true
}

// emit produces a real token, applying the lexer's ignored-byte attachment
// policy:
//  1. if the ribbon is still empty, pending ignore bytes become the
//     ribbon's leading prefix;
//  2. otherwise, if the previous real token's kind accepts a suffix, the
//     pending bytes become that token's suffix;
//  3. otherwise the pending bytes become this new token's prefix.
func (lx *lexer) emit(kind token.Kind, start, end int) {
	var prefix token.Range
	if pending, ok := lx.takePendingIgnore(); ok {
		switch {
		case lx.rib.Len() == 0:
			lx.rib.SetGlobalPrefix(pending)
		case lx.lastToken().Kind().AcceptsSuffix():
			lx.rib.SetLastSuffix(pending)
		default:
			prefix = pending
		}
	}
	idx := lx.rib.Len()
	t := token.New(lx.buf, kind, prefix, token.Range{Start: start, End: end}, token.Range{}, idx)
	lx.rib.Append(t)
}

// flushTrailingIgnore attaches bytes left pending after the last real
// token to the ribbon's global suffix, unless the
// ribbon never produced a single token, in which case the whole source was
// ignored bytes and they belong to the leading prefix instead.
func (lx *lexer) flushTrailingIgnore() {
	pending, ok := lx.takePendingIgnore()
	if !ok {
		return
	}
	if lx.rib.Len() == 0 {
		lx.rib.SetGlobalPrefix(pending)
		return
	}
	lx.rib.SetGlobalSuffix(pending)
}

func (lx *lexer) lastToken() token.Token {
	toks := lx.rib.Tokens()
	return toks[len(toks)-1]
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || isDigit(r)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func (lx *lexer) scanNumber() token.Kind {
	for isDigit(lx.ch) {
		lx.next()
	}
	if lx.ch == '.' && isDigit(lx.peekByte()) {
		lx.next()
		for isDigit(lx.ch) {
			lx.next()
		}
		return token.LITERAL_DOUBLE
	}
	return token.LITERAL_INT
}

func (lx *lexer) scanString() error {
	start := lx.offset
	lx.next() // consume opening quote
	for {
		if lx.ch == -1 || lx.ch == '\n' {
			return &Error{Offset: start, Byte: '"'}
		}
		if lx.ch == '\\' {
			lx.next()
			if lx.ch == -1 {
				return &Error{Offset: start, Byte: '"'}
			}
			lx.next()
			continue
		}
		if lx.ch == '"' {
			lx.next()
			return nil
		}
		lx.next()
	}
}

// scanOperator performs the longest-match scan over lx.lang's operators.
func (lx *lexer) scanOperator() bool {
	rest := lx.src[lx.offset:]
	for _, sym := range lx.lang.OperatorSymbols() {
		if len(sym) <= len(rest) && string(rest[:len(sym)]) == sym {
			for range sym {
				lx.next()
			}
			return true
		}
	}
	return false
}
