package lexer_test

import (
	"testing"

	"github.com/nodable-lang/nodable/lang"
	"github.com/nodable-lang/nodable/lexer"
	"github.com/nodable-lang/nodable/token"
)

func lexKinds(t *testing.T, src string) []token.Kind {
	t.Helper()
	rib, err := lexer.Lex(lang.Default(), "test", []byte(src))
	if err != nil {
		t.Fatalf("Lex(%q) failed: %v", src, err)
	}
	var kinds []token.Kind
	for _, tok := range rib.Tokens() {
		kinds = append(kinds, tok.Kind())
	}
	return kinds
}

func TestLexKeywordsAndIdents(t *testing.T) {
	kinds := lexKinds(t, "if foo else")
	want := []token.Kind{token.KEYWORD_IF, token.IDENT, token.KEYWORD_ELSE}
	if len(kinds) != len(want) {
		t.Fatalf("got %v kinds, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("kind[%d] = %v, want %v", i, kinds[i], want[i])
		}
	}
}

func TestLexNumberKinds(t *testing.T) {
	rib, err := lexer.Lex(lang.Default(), "test", []byte("12 3.5"))
	if err != nil {
		t.Fatalf("Lex failed: %v", err)
	}
	toks := rib.Tokens()
	if len(toks) != 2 {
		t.Fatalf("got %d tokens, want 2", len(toks))
	}
	if toks[0].Kind() != token.LITERAL_INT {
		t.Errorf("toks[0].Kind() = %v, want LITERAL_INT", toks[0].Kind())
	}
	if toks[1].Kind() != token.LITERAL_DOUBLE {
		t.Errorf("toks[1].Kind() = %v, want LITERAL_DOUBLE", toks[1].Kind())
	}
}

func TestLexOperatorLongestMatch(t *testing.T) {
	kinds := lexKinds(t, "<=> <= ==")
	for i, k := range kinds {
		if k != token.OPERATOR {
			t.Errorf("kind[%d] = %v, want OPERATOR", i, k)
		}
	}
	rib, err := lexer.Lex(lang.Default(), "test", []byte("<=>"))
	if err != nil {
		t.Fatalf("Lex failed: %v", err)
	}
	toks := rib.Tokens()
	if len(toks) != 1 {
		t.Fatalf("\"<=>\" lexed as %d tokens, want 1 (longest match)", len(toks))
	}
	if toks[0].Body() != "<=>" {
		t.Errorf("token body = %q, want %q", toks[0].Body(), "<=>")
	}
}

func TestLexStringLiteral(t *testing.T) {
	rib, err := lexer.Lex(lang.Default(), "test", []byte(`"hello \"world\""`))
	if err != nil {
		t.Fatalf("Lex failed: %v", err)
	}
	toks := rib.Tokens()
	if len(toks) != 1 || toks[0].Kind() != token.LITERAL_STRING {
		t.Fatalf("got %v, want a single LITERAL_STRING token", toks)
	}
}

func TestLexUnterminatedStringIsError(t *testing.T) {
	_, err := lexer.Lex(lang.Default(), "test", []byte(`"unterminated`))
	if err == nil {
		t.Fatal("expected an error for an unterminated string literal")
	}
}

func TestLexIllegalByte(t *testing.T) {
	_, err := lexer.Lex(lang.Default(), "test", []byte("int x = #;"))
	if err == nil {
		t.Fatal("expected an error for an illegal byte")
	}
	var lexErr *lexer.Error
	if le, ok := err.(*lexer.Error); ok {
		lexErr = le
	} else {
		t.Fatalf("expected *lexer.Error, got %T", err)
	}
	if lexErr.Byte != '#' {
		t.Errorf("Error.Byte = %q, want %q", lexErr.Byte, '#')
	}
}

func TestLexPreservesSourceExactly(t *testing.T) {
	srcs := []string{
		"  int x = 5 ;  ",
		"if(a){b=1;}else{b=2;}",
		"// a comment\nx = 1",
		"/* block */ x = 1 /* trailing */",
		"\t\tx=1\n",
	}
	for _, src := range srcs {
		rib, err := lexer.Lex(lang.Default(), "test", []byte(src))
		if err != nil {
			t.Fatalf("Lex(%q) failed: %v", src, err)
		}
		if got := rib.SourceBytes(); got != src {
			t.Errorf("SourceBytes() = %q, want %q", got, src)
		}
	}
}

func TestLexEmptySource(t *testing.T) {
	rib, err := lexer.Lex(lang.Default(), "test", []byte("   "))
	if err != nil {
		t.Fatalf("Lex failed: %v", err)
	}
	if rib.Len() != 0 {
		t.Errorf("rib.Len() = %d, want 0 for an all-whitespace source", rib.Len())
	}
	if got := rib.SourceBytes(); got != "   " {
		t.Errorf("SourceBytes() = %q, want %q", got, "   ")
	}
}

func TestLexPunctuation(t *testing.T) {
	kinds := lexKinds(t, "(){};,")
	want := []token.Kind{
		token.PARENTHESIS_OPEN,
		token.PARENTHESIS_CLOSE,
		token.SCOPE_BEGIN,
		token.SCOPE_END,
		token.END_OF_INSTRUCTION,
		token.LIST_SEPARATOR,
	}
	if len(kinds) != len(want) {
		t.Fatalf("got %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("kind[%d] = %v, want %v", i, kinds[i], want[i])
		}
	}
}
