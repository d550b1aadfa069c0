// Package token defines the token kinds, byte-exact token representation,
// and source buffer used by the lexer, parser and serializer.
//
// A Token never discards bytes. Every token carries, in addition to its
// lexeme ("body"), the ignored bytes that surrounded it in the source
// ("prefix" and "suffix") so that the serializer can reconstruct the
// original source exactly.
package token

import "fmt"

// Kind identifies the lexical category of a Token.
type Kind int

const (
	NONE Kind = iota

	IDENT

	LITERAL_BOOL
	LITERAL_INT
	LITERAL_DOUBLE
	LITERAL_STRING
	LITERAL_ANY
	LITERAL_UNKNOWN

	OPERATOR

	KEYWORD_IF
	KEYWORD_ELSE
	KEYWORD_FOR
	KEYWORD_WHILE
	KEYWORD_OPERATOR
	KEYWORD_BOOL
	KEYWORD_INT
	KEYWORD_I16
	KEYWORD_DOUBLE
	KEYWORD_STRING
	KEYWORD_ANY

	PARENTHESIS_OPEN
	PARENTHESIS_CLOSE
	SCOPE_BEGIN
	SCOPE_END
	END_OF_INSTRUCTION
	END_OF_LINE
	LIST_SEPARATOR

	IGNORE
)

var kindNames = map[Kind]string{
	NONE:                "none",
	IDENT:                "identifier",
	LITERAL_BOOL:         "literal_bool",
	LITERAL_INT:          "literal_int",
	LITERAL_DOUBLE:       "literal_double",
	LITERAL_STRING:       "literal_string",
	LITERAL_ANY:          "literal_any",
	LITERAL_UNKNOWN:      "literal_unknown",
	OPERATOR:             "operator",
	KEYWORD_IF:           "keyword_if",
	KEYWORD_ELSE:         "keyword_else",
	KEYWORD_FOR:          "keyword_for",
	KEYWORD_WHILE:        "keyword_while",
	KEYWORD_OPERATOR:     "keyword_operator",
	KEYWORD_BOOL:         "keyword_bool",
	KEYWORD_INT:          "keyword_int",
	KEYWORD_I16:          "keyword_i16",
	KEYWORD_DOUBLE:       "keyword_double",
	KEYWORD_STRING:       "keyword_string",
	KEYWORD_ANY:          "keyword_any",
	PARENTHESIS_OPEN:     "parenthesis_open",
	PARENTHESIS_CLOSE:    "parenthesis_close",
	SCOPE_BEGIN:          "scope_begin",
	SCOPE_END:            "scope_end",
	END_OF_INSTRUCTION:   "end_of_instruction",
	END_OF_LINE:          "end_of_line",
	LIST_SEPARATOR:       "list_separator",
	IGNORE:               "ignore",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// IsKeywordType reports whether k is one of the type keywords (bool, int,
// i16, double, string, any) that can start a var_decl production.
func (k Kind) IsKeywordType() bool {
	switch k {
	case KEYWORD_BOOL, KEYWORD_INT, KEYWORD_I16, KEYWORD_DOUBLE, KEYWORD_STRING, KEYWORD_ANY:
		return true
	}
	return false
}

// IsLiteral reports whether k denotes a literal token kind.
func (k Kind) IsLiteral() bool {
	switch k {
	case LITERAL_BOOL, LITERAL_INT, LITERAL_DOUBLE, LITERAL_STRING, LITERAL_ANY, LITERAL_UNKNOWN:
		return true
	}
	return false
}

// AcceptsSuffix reports whether a real token of kind k is eligible to
// absorb trailing ignored bytes as its own suffix: every kind
// except identifiers and parentheses accepts a suffix.
func (k Kind) AcceptsSuffix() bool {
	switch k {
	case IDENT, PARENTHESIS_OPEN, PARENTHESIS_CLOSE:
		return false
	default:
		return true
	}
}
