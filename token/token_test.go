package token_test

import (
	"testing"

	"github.com/nodable-lang/nodable/token"
)

func TestNewAndBodyPrefixSuffix(t *testing.T) {
	buf := token.NewBuffer("test", []byte("  x  "))
	tok := token.New(buf, token.IDENT, token.Range{Start: 0, End: 2}, token.Range{Start: 2, End: 3}, token.Range{Start: 3, End: 5}, 0)
	if tok.Prefix() != "  " {
		t.Errorf("Prefix() = %q, want %q", tok.Prefix(), "  ")
	}
	if tok.Body() != "x" {
		t.Errorf("Body() = %q, want %q", tok.Body(), "x")
	}
	if tok.Suffix() != "  " {
		t.Errorf("Suffix() = %q, want %q", tok.Suffix(), "  ")
	}
	if tok.Bytes() != "  x  " {
		t.Errorf("Bytes() = %q, want %q", tok.Bytes(), "  x  ")
	}
}

func TestNullToken(t *testing.T) {
	if !token.Null.IsNull() {
		t.Error("token.Null.IsNull() should be true")
	}
	if token.Null.Body() != "" {
		t.Errorf("Null.Body() = %q, want empty", token.Null.Body())
	}
	if token.Null.String() != "<null>" {
		t.Errorf("Null.String() = %q, want %q", token.Null.String(), "<null>")
	}
}

func TestSynthesize(t *testing.T) {
	tok := token.Synthesize(token.LITERAL_INT, "42")
	if tok.IsNull() {
		t.Fatal("a synthesized token should not be Null")
	}
	if tok.Body() != "42" {
		t.Errorf("Body() = %q, want %q", tok.Body(), "42")
	}
	if tok.Index() != -1 {
		t.Errorf("Index() = %d, want -1 for a synthesized token", tok.Index())
	}
	if tok.Prefix() != "" || tok.Suffix() != "" {
		t.Error("a synthesized token should carry no prefix/suffix")
	}
}

func TestWithSuffixAndWithPrefix(t *testing.T) {
	buf := token.NewBuffer("test", []byte("xyz"))
	tok := token.New(buf, token.IDENT, token.Range{}, token.Range{Start: 0, End: 1}, token.Range{}, 0)
	withSuf := tok.WithSuffix(token.Range{Start: 1, End: 3})
	if withSuf.Suffix() != "yz" {
		t.Errorf("WithSuffix: Suffix() = %q, want %q", withSuf.Suffix(), "yz")
	}
	if tok.Suffix() != "" {
		t.Error("WithSuffix must not mutate the receiver")
	}
}

func TestKindStringKnownAndUnknown(t *testing.T) {
	if token.KEYWORD_IF.String() != "keyword_if" {
		t.Errorf("KEYWORD_IF.String() = %q, want %q", token.KEYWORD_IF.String(), "keyword_if")
	}
	unknown := token.Kind(9999)
	if unknown.String() != "Kind(9999)" {
		t.Errorf("unknown Kind.String() = %q, want %q", unknown.String(), "Kind(9999)")
	}
}

func TestIsKeywordType(t *testing.T) {
	if !token.KEYWORD_INT.IsKeywordType() {
		t.Error("KEYWORD_INT.IsKeywordType() should be true")
	}
	if token.KEYWORD_IF.IsKeywordType() {
		t.Error("KEYWORD_IF.IsKeywordType() should be false")
	}
}

func TestIsLiteral(t *testing.T) {
	if !token.LITERAL_STRING.IsLiteral() {
		t.Error("LITERAL_STRING.IsLiteral() should be true")
	}
	if token.IDENT.IsLiteral() {
		t.Error("IDENT.IsLiteral() should be false")
	}
}

func TestAcceptsSuffix(t *testing.T) {
	if token.IDENT.AcceptsSuffix() {
		t.Error("IDENT.AcceptsSuffix() should be false")
	}
	if token.PARENTHESIS_OPEN.AcceptsSuffix() {
		t.Error("PARENTHESIS_OPEN.AcceptsSuffix() should be false")
	}
	if !token.OPERATOR.AcceptsSuffix() {
		t.Error("OPERATOR.AcceptsSuffix() should be true")
	}
}

func TestBufferSliceBounds(t *testing.T) {
	buf := token.NewBuffer("test", []byte("hello"))
	if got := string(buf.Slice(1, 4)); got != "ell" {
		t.Errorf("Slice(1,4) = %q, want %q", got, "ell")
	}
	defer func() {
		if recover() == nil {
			t.Error("expected a panic for an out-of-bounds slice")
		}
	}()
	buf.Slice(0, 100)
}

func TestBufferNilReceiverIsSafe(t *testing.T) {
	var buf *token.Buffer
	if buf.Name() != "" {
		t.Error("nil Buffer.Name() should be empty")
	}
	if buf.Len() != 0 {
		t.Error("nil Buffer.Len() should be 0")
	}
	if buf.Bytes() != nil {
		t.Error("nil Buffer.Bytes() should be nil")
	}
}
