package token

// Token is a single lexical unit plus the ignored bytes immediately
// surrounding it in the source. Concatenating, in ribbon order, every
// token's (Prefix ++ Body ++ Suffix) together with the ribbon's global
// prefix/suffix reproduces the source exactly.
//
// Token is a value type: copying a Token (e.g. when a literal's token is
// attached to a Property) duplicates the byte-range bookkeeping but not
// the underlying bytes, which live in the shared Buffer.
type Token struct {
	buf    *Buffer
	kind   Kind
	prefix Range
	body   Range
	suffix Range
	index  int // position within its origin Ribbon, -1 if synthesized
}

// Null is the zero Token, returned by Ribbon.EatIf on a kind mismatch and
// carried by synthesized nodes that have no corresponding source text.
var Null = Token{kind: NONE, index: -1}

// New constructs a Token. It panics if any range has negative length
// (prefix.End == body.Start == ... is not required here; callers assemble
// ranges that are contiguous by construction in the lexer).
func New(buf *Buffer, kind Kind, prefix, body, suffix Range, index int) Token {
	_ = newRange(prefix.Start, prefix.End)
	_ = newRange(body.Start, body.End)
	_ = newRange(suffix.Start, suffix.End)
	return Token{buf: buf, kind: kind, prefix: prefix, body: body, suffix: suffix, index: index}
}

// Synthesize builds a Token carrying only a body lexeme and no buffer
// backing, used by the parser/compiler to attach a literal value that has
// no corresponding source bytes (e.g. nodes not produced through parsing).
func Synthesize(kind Kind, lexeme string) Token {
	buf := NewBuffer("", []byte(lexeme))
	r := Range{0, len(lexeme)}
	return Token{buf: buf, kind: kind, body: r, index: -1}
}

// IsNull reports whether t is the Null sentinel.
func (t Token) IsNull() bool { return t.kind == NONE && t.buf == nil }

// Kind returns the token's kind.
func (t Token) Kind() Kind { return t.kind }

// Index returns the token's position within the ribbon it was produced by,
// or -1 if it was synthesized outside of lexing.
func (t Token) Index() int { return t.index }

// Buffer returns the source buffer the token's bytes are sliced from.
func (t Token) Buffer() *Buffer { return t.buf }

// Offset returns the absolute byte offset of the token's body (excluding
// its prefix) within its Buffer, or -1 if the token has no buffer backing.
func (t Token) Offset() int {
	if t.buf == nil {
		return -1
	}
	return t.body.Start
}

// Body returns the token's lexeme bytes, excluding prefix/suffix.
func (t Token) Body() string {
	if t.buf == nil {
		return ""
	}
	return string(t.buf.Slice(t.body.Start, t.body.End))
}

// Prefix returns the ignored bytes preceding the lexeme.
func (t Token) Prefix() string {
	if t.buf == nil {
		return ""
	}
	return string(t.buf.Slice(t.prefix.Start, t.prefix.End))
}

// Suffix returns the ignored bytes following the lexeme.
func (t Token) Suffix() string {
	if t.buf == nil {
		return ""
	}
	return string(t.buf.Slice(t.suffix.Start, t.suffix.End))
}

// WithSuffix returns a copy of t with its suffix range replaced, used by
// the lexer to attach accumulated ignored bytes to the previous real
// token.
func (t Token) WithSuffix(s Range) Token {
	t.suffix = s
	return t
}

// WithPrefix returns a copy of t with its prefix range replaced.
func (t Token) WithPrefix(p Range) Token {
	t.prefix = p
	return t
}

// Bytes returns prefix++body++suffix verbatim, i.e. the full span of source
// text this token accounts for.
func (t Token) Bytes() string {
	return t.Prefix() + t.Body() + t.Suffix()
}

// String returns the token's body for debugging/diagnostics messages.
func (t Token) String() string {
	if t.IsNull() {
		return "<null>"
	}
	return t.Body()
}
