// Package ribbon implements the TokenRibbon: an ordered sequence of tokens
// with a cursor and a stack of saved cursor positions for transactional
// backtracking.
package ribbon

import (
	"github.com/nodable-lang/nodable/token"
)

// Ribbon is the ordered token sequence the lexer produces and the parser
// consumes. It owns the "global token" bytes that precede the first real
// token or follow the last.
type Ribbon struct {
	buf    *token.Buffer
	tokens []token.Token

	globalPrefix token.Range
	globalSuffix token.Range

	cursor int
	saved  []int
}

// New returns an empty Ribbon backed by buf.
func New(buf *token.Buffer) *Ribbon {
	return &Ribbon{buf: buf}
}

// Buffer returns the source buffer this ribbon's tokens were lexed from.
func (r *Ribbon) Buffer() *token.Buffer { return r.buf }

// Append adds a token to the end of the ribbon. Used by the lexer only.
func (r *Ribbon) Append(t token.Token) {
	r.tokens = append(r.tokens, t)
}

// SetLastSuffix overwrites the suffix range of the most recently appended
// token. It exists for the lexer's ignored-byte attachment policy, which
// needs to retroactively attach trailing ignored bytes to the token it
// just emitted.
func (r *Ribbon) SetLastSuffix(suf token.Range) {
	if len(r.tokens) == 0 {
		panic("ribbon: SetLastSuffix on an empty ribbon")
	}
	r.tokens[len(r.tokens)-1] = r.tokens[len(r.tokens)-1].WithSuffix(suf)
}

// SetGlobalPrefix records the ignored bytes preceding the first real token.
func (r *Ribbon) SetGlobalPrefix(rng token.Range) { r.globalPrefix = rng }

// SetGlobalSuffix records the ignored bytes following the last real token.
func (r *Ribbon) SetGlobalSuffix(rng token.Range) { r.globalSuffix = rng }

// GlobalPrefix returns the bytes preceding the first real token.
func (r *Ribbon) GlobalPrefix() string {
	if r.buf == nil {
		return ""
	}
	return string(r.buf.Slice(r.globalPrefix.Start, r.globalPrefix.End))
}

// GlobalSuffix returns the bytes following the last real token.
func (r *Ribbon) GlobalSuffix() string {
	if r.buf == nil {
		return ""
	}
	return string(r.buf.Slice(r.globalSuffix.Start, r.globalSuffix.End))
}

// Len returns the number of tokens in the ribbon.
func (r *Ribbon) Len() int { return len(r.tokens) }

// Tokens returns every token in ribbon order, for diagnostics/testing.
func (r *Ribbon) Tokens() []token.Token {
	return append([]token.Token(nil), r.tokens...)
}

// Cursor returns the index of the next token Eat would return.
func (r *Ribbon) Cursor() int { return r.cursor }

// AtEnd reports whether the cursor has consumed every token.
func (r *Ribbon) AtEnd() bool { return r.cursor >= len(r.tokens) }

// Peek returns, without consuming, the next token. It returns token.Null
// if the ribbon is exhausted.
func (r *Ribbon) Peek() token.Token {
	if r.AtEnd() {
		return token.Null
	}
	return r.tokens[r.cursor]
}

// PeekAt returns, without consuming, the token `ahead` positions past the
// cursor (PeekAt(0) == Peek()).
func (r *Ribbon) PeekAt(ahead int) token.Token {
	i := r.cursor + ahead
	if i < 0 || i >= len(r.tokens) {
		return token.Null
	}
	return r.tokens[i]
}

// PeekKind returns the next token only if its kind matches; otherwise it
// returns token.Null.
func (r *Ribbon) PeekKind(k token.Kind) token.Token {
	t := r.Peek()
	if t.IsNull() || t.Kind() != k {
		return token.Null
	}
	return t
}

// Eat consumes and returns the next token, advancing the cursor. Eating
// past the end of the ribbon returns token.Null and does not move the
// cursor further.
func (r *Ribbon) Eat() token.Token {
	if r.AtEnd() {
		return token.Null
	}
	t := r.tokens[r.cursor]
	r.cursor++
	return t
}

// EatIf consumes and returns the next token only if its kind matches k;
// otherwise it returns token.Null and leaves the cursor untouched.
func (r *Ribbon) EatIf(k token.Kind) token.Token {
	if r.PeekKind(k).IsNull() {
		return token.Null
	}
	return r.Eat()
}

// StartTransaction pushes the current cursor onto the save stack. Every
// StartTransaction must be paired with exactly one Commit or Rollback.
// Prefer the Transaction helper, which enforces this via a defer-based
// guard.
func (r *Ribbon) StartTransaction() {
	r.saved = append(r.saved, r.cursor)
}

// Commit pops the save stack, keeping the current cursor position.
func (r *Ribbon) Commit() {
	if len(r.saved) == 0 {
		panic("ribbon: Commit without a matching StartTransaction")
	}
	r.saved = r.saved[:len(r.saved)-1]
}

// Rollback pops the save stack and restores the cursor to the popped
// value, undoing every Eat/EatIf performed since the matching
// StartTransaction.
func (r *Ribbon) Rollback() {
	if len(r.saved) == 0 {
		panic("ribbon: Rollback without a matching StartTransaction")
	}
	n := len(r.saved) - 1
	r.cursor = r.saved[n]
	r.saved = r.saved[:n]
}

// Depth returns the current transaction nesting depth, for assertions in
// tests.
func (r *Ribbon) Depth() int { return len(r.saved) }

// SourceBytes reconstructs the exact source bytes this ribbon was lexed
// from: the global prefix, every token's prefix++body++suffix in ribbon
// order, and the global suffix.
func (r *Ribbon) SourceBytes() string {
	var out []byte
	out = append(out, r.GlobalPrefix()...)
	for _, t := range r.tokens {
		out = append(out, t.Bytes()...)
	}
	out = append(out, r.GlobalSuffix()...)
	return string(out)
}
