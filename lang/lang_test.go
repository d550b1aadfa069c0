package lang_test

import (
	"testing"

	"github.com/nodable-lang/nodable/lang"
	"github.com/nodable-lang/nodable/token"
)

func TestDefaultKeywords(t *testing.T) {
	l := lang.Default()
	cases := []struct {
		lexeme string
		want   token.Kind
	}{
		{"if", token.KEYWORD_IF},
		{"else", token.KEYWORD_ELSE},
		{"for", token.KEYWORD_FOR},
		{"while", token.KEYWORD_WHILE},
		{"operator", token.KEYWORD_OPERATOR},
		{"bool", token.KEYWORD_BOOL},
		{"int", token.KEYWORD_INT},
		{"i16", token.KEYWORD_I16},
		{"double", token.KEYWORD_DOUBLE},
		{"string", token.KEYWORD_STRING},
		{"any", token.KEYWORD_ANY},
		{"true", token.LITERAL_BOOL},
		{"false", token.LITERAL_BOOL},
	}
	for _, c := range cases {
		got, ok := l.Lookup(c.lexeme)
		if !ok {
			t.Errorf("Lookup(%q) not found", c.lexeme)
			continue
		}
		if got != c.want {
			t.Errorf("Lookup(%q) = %v, want %v", c.lexeme, got, c.want)
		}
	}
}

func TestLookupUnreservedIsNotFound(t *testing.T) {
	l := lang.Default()
	if _, ok := l.Lookup("foo"); ok {
		t.Error("Lookup(\"foo\") should not be reserved")
	}
}

func TestTypeOf(t *testing.T) {
	l := lang.Default()
	pt, ok := l.TypeOf(token.KEYWORD_DOUBLE)
	if !ok || pt != lang.TypeDouble {
		t.Errorf("TypeOf(KEYWORD_DOUBLE) = (%v, %v), want (TypeDouble, true)", pt, ok)
	}
	if _, ok := l.TypeOf(token.KEYWORD_IF); ok {
		t.Error("TypeOf(KEYWORD_IF) should not resolve to a PropertyType")
	}
}

func TestOperatorPrecedence(t *testing.T) {
	l := lang.Default()
	plus, ok := l.Operator("+")
	if !ok {
		t.Fatal("Operator(\"+\") not found")
	}
	star, ok := l.Operator("*")
	if !ok {
		t.Fatal("Operator(\"*\") not found")
	}
	if star.Precedence <= plus.Precedence {
		t.Errorf("* precedence %d should be higher than + precedence %d", star.Precedence, plus.Precedence)
	}
	eq, ok := l.Operator("==")
	if !ok {
		t.Fatal("Operator(\"==\") not found")
	}
	if eq.Precedence != plus.Precedence {
		t.Errorf("== precedence %d should equal + precedence %d", eq.Precedence, plus.Precedence)
	}
	assign, ok := l.Operator("=")
	if !ok {
		t.Fatal("Operator(\"=\") not found")
	}
	if assign.Precedence >= plus.Precedence {
		t.Errorf("= precedence %d should be lower than + precedence %d", assign.Precedence, plus.Precedence)
	}
}

func TestUnaryOperator(t *testing.T) {
	l := lang.Default()
	minus, ok := l.UnaryOperator("-")
	if !ok {
		t.Fatal("UnaryOperator(\"-\") not found")
	}
	if minus.Arity != 1 {
		t.Errorf("unary - arity = %d, want 1", minus.Arity)
	}
	if _, ok := l.UnaryOperator("*"); ok {
		t.Error("UnaryOperator(\"*\") should not exist")
	}
}

func TestOperatorsLongestMatchOrdering(t *testing.T) {
	// <=> must precede <= and == in the scan list, since the lexer tries
	// each symbol in order and takes the first that matches a prefix of
	// the remaining source.
	l := lang.Default()
	idx := map[string]int{}
	for i, sym := range l.OperatorSymbols() {
		idx[sym] = i
	}
	if idx["<=>"] > idx["<="] {
		t.Error("<=> must come before <= in OperatorSymbols")
	}
	if idx["<=>"] > idx["=="] {
		t.Error("<=> must come before == in OperatorSymbols")
	}
	if idx["=="] > idx["="] {
		t.Error("== must come before = in OperatorSymbols")
	}
}

func TestLoadedOperatorIsPickedUpByOperatorSymbols(t *testing.T) {
	l, err := lang.Load([]byte("operators:\n  - symbol: \"**\"\n    precedence: 25\n    arity: 2\n"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	found := false
	for _, sym := range l.OperatorSymbols() {
		if sym == "**" {
			found = true
			break
		}
	}
	if !found {
		t.Error("operator added via Load should appear in OperatorSymbols")
	}
}

func TestPropertyTypeString(t *testing.T) {
	cases := []struct {
		t    lang.PropertyType
		want string
	}{
		{lang.TypeVoid, "void"},
		{lang.TypeBool, "bool"},
		{lang.TypeInt, "int"},
		{lang.TypeDouble, "double"},
		{lang.TypeNodeRef, "node-reference"},
	}
	for _, c := range cases {
		if got := c.t.String(); got != c.want {
			t.Errorf("PropertyType(%d).String() = %q, want %q", c.t, got, c.want)
		}
	}
}

func TestLoadOverlaysOnDefault(t *testing.T) {
	yamlSrc := []byte(`
keywords:
  if: whenever
types:
  num: double
operators:
  - symbol: "**"
    precedence: 30
    arity: 2
`)
	l, err := lang.Load(yamlSrc)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if _, ok := l.Lookup("if"); ok {
		t.Error("renamed keyword \"if\" should no longer be reserved")
	}
	if k, ok := l.Lookup("whenever"); !ok || k != token.KEYWORD_IF {
		t.Errorf("Lookup(\"whenever\") = (%v, %v), want (KEYWORD_IF, true)", k, ok)
	}
	// untouched keywords survive the overlay.
	if _, ok := l.Lookup("while"); !ok {
		t.Error("Lookup(\"while\") should still be reserved after a partial overlay")
	}
	op, ok := l.Operator("**")
	if !ok || op.Precedence != 30 {
		t.Errorf("Operator(\"**\") = (%v, %v), want precedence 30", op, ok)
	}
}

func TestLoadRejectsUnknownType(t *testing.T) {
	yamlSrc := []byte(`
types:
  num: decimal128
`)
	if _, err := lang.Load(yamlSrc); err == nil {
		t.Fatal("expected an error for an unknown base type")
	}
}
