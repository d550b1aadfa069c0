// Package lang defines the source language surface: keywords, operators
// (with precedence and arity) and type keywords, as a single explicit
// value constructed once and passed to the lexer, parser, serializer and
// compiler instead of a global language-registry singleton.
package lang

import (
	"fmt"
	"sort"

	"github.com/nodable-lang/nodable/token"
)

// Associativity describes how a binary operator of equal precedence to its
// neighbor groups.
type Associativity int

const (
	LeftAssoc Associativity = iota
	RightAssoc
)

// Operator describes one entry of the operator table: its textual symbol,
// its precedence level, arity, and associativity.
type Operator struct {
	Symbol        string
	Precedence    int
	Arity         int // 1 = unary, 2 = binary
	Associativity Associativity
}

// Language is the complete, explicit configuration of the source language
// surface. It has no mutable global state; every lexer/parser/serializer/
// compiler call takes a *Language explicitly instead of reaching for a
// package-level singleton.
type Language struct {
	keywords      map[string]token.Kind
	typeKeywords  map[token.Kind]PropertyType
	operators     map[string]Operator
	// unaryOperators holds the subset of operators valid as a unary prefix.
	unaryOperators map[string]Operator
}

// PropertyType is the declared type of a Property: bool, int,
// double, string, any, node-reference, or void.
type PropertyType int

const (
	TypeVoid PropertyType = iota
	TypeBool
	TypeInt
	TypeI16
	TypeDouble
	TypeString
	TypeAny
	TypeNodeRef
)

func (t PropertyType) String() string {
	switch t {
	case TypeVoid:
		return "void"
	case TypeBool:
		return "bool"
	case TypeInt:
		return "int"
	case TypeI16:
		return "i16"
	case TypeDouble:
		return "double"
	case TypeString:
		return "string"
	case TypeAny:
		return "any"
	case TypeNodeRef:
		return "node-reference"
	}
	return fmt.Sprintf("PropertyType(%d)", int(t))
}

// Default returns the standard language: keywords
// `if else for while operator bool int i16 double string any true false`,
// the full operator set, and punctuation.
func Default() *Language {
	l := &Language{
		keywords:       map[string]token.Kind{},
		typeKeywords:   map[token.Kind]PropertyType{},
		operators:      map[string]Operator{},
		unaryOperators: map[string]Operator{},
	}

	l.addKeyword("if", token.KEYWORD_IF)
	l.addKeyword("else", token.KEYWORD_ELSE)
	l.addKeyword("for", token.KEYWORD_FOR)
	l.addKeyword("while", token.KEYWORD_WHILE)
	l.addKeyword("operator", token.KEYWORD_OPERATOR)
	l.addTypeKeyword("bool", token.KEYWORD_BOOL, TypeBool)
	l.addTypeKeyword("int", token.KEYWORD_INT, TypeInt)
	l.addTypeKeyword("i16", token.KEYWORD_I16, TypeI16)
	l.addTypeKeyword("double", token.KEYWORD_DOUBLE, TypeDouble)
	l.addTypeKeyword("string", token.KEYWORD_STRING, TypeString)
	l.addTypeKeyword("any", token.KEYWORD_ANY, TypeAny)
	// true/false lex as literal_bool, not a distinct keyword kind (no
	// keyword_true/keyword_false entry).
	l.keywords["true"] = token.LITERAL_BOOL
	l.keywords["false"] = token.LITERAL_BOOL

	// Binary operator precedence, per the decision recorded in DESIGN.md:
	// comparison and additive are both 10, intentionally, reproducing
	// left-associative chaining across the two categories.
	l.addBinary("=", 0, LeftAssoc)
	l.addBinary("==", 10, LeftAssoc)
	l.addBinary("!=", 10, LeftAssoc)
	l.addBinary(">", 10, LeftAssoc)
	l.addBinary("<", 10, LeftAssoc)
	l.addBinary(">=", 10, LeftAssoc)
	l.addBinary("<=", 10, LeftAssoc)
	l.addBinary("<=>", 10, LeftAssoc)
	l.addBinary("=>", 10, LeftAssoc)
	l.addBinary("+", 10, LeftAssoc)
	l.addBinary("-", 10, LeftAssoc)
	l.addBinary("+=", 10, LeftAssoc)
	l.addBinary("-=", 10, LeftAssoc)
	l.addBinary("*", 20, LeftAssoc)
	l.addBinary("/", 20, LeftAssoc)
	l.addBinary("*=", 20, LeftAssoc)
	l.addBinary("/=", 20, LeftAssoc)

	// Unary operators: precedence 5.
	for _, sym := range []string{"-", "!"} {
		l.unaryOperators[sym] = Operator{Symbol: sym, Precedence: 5, Arity: 1}
	}

	return l
}

func (l *Language) addKeyword(lexeme string, k token.Kind) {
	l.keywords[lexeme] = k
}

func (l *Language) addTypeKeyword(lexeme string, k token.Kind, t PropertyType) {
	l.keywords[lexeme] = k
	l.typeKeywords[k] = t
}

func (l *Language) addBinary(symbol string, precedence int, assoc Associativity) {
	l.operators[symbol] = Operator{Symbol: symbol, Precedence: precedence, Arity: 2, Associativity: assoc}
}

// Lookup hashes lexeme against the keyword table and returns the keyword
// Kind and true, or the zero Kind and false if lexeme is not reserved.
func (l *Language) Lookup(lexeme string) (token.Kind, bool) {
	k, ok := l.keywords[lexeme]
	return k, ok
}

// TypeOf returns the PropertyType a type keyword Kind denotes.
func (l *Language) TypeOf(k token.Kind) (PropertyType, bool) {
	t, ok := l.typeKeywords[k]
	return t, ok
}

// Operator returns the binary operator descriptor for symbol, if any.
func (l *Language) Operator(symbol string) (Operator, bool) {
	op, ok := l.operators[symbol]
	return op, ok
}

// UnaryOperator returns the unary operator descriptor for symbol, if any.
func (l *Language) UnaryOperator(symbol string) (Operator, bool) {
	op, ok := l.unaryOperators[symbol]
	return op, ok
}

// OperatorSymbols returns every recognized operator symbol (binary and
// unary), longest first, as required by the lexer's longest-match scan
// rule — so "<=>" is tried before "<=" and "==", and "==" before "=".
// It is derived from l's own tables, so an operator a host adds through
// Load is picked up automatically instead of going stale behind a
// package-level table.
func (l *Language) OperatorSymbols() []string {
	seen := make(map[string]bool, len(l.operators)+len(l.unaryOperators))
	syms := make([]string, 0, len(l.operators)+len(l.unaryOperators))
	for sym := range l.operators {
		if !seen[sym] {
			seen[sym] = true
			syms = append(syms, sym)
		}
	}
	for sym := range l.unaryOperators {
		if !seen[sym] {
			seen[sym] = true
			syms = append(syms, sym)
		}
	}
	sort.Slice(syms, func(i, j int) bool {
		if len(syms[i]) != len(syms[j]) {
			return len(syms[i]) > len(syms[j])
		}
		return syms[i] < syms[j]
	})
	return syms
}
