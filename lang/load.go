package lang

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/nodable-lang/nodable/token"
)

// Descriptor is the YAML-serializable shape of a Language, so a host can
// extend or rename keywords/operators without recompiling.
type Descriptor struct {
	Keywords struct {
		If       string `yaml:"if"`
		Else     string `yaml:"else"`
		For      string `yaml:"for"`
		While    string `yaml:"while"`
		Operator string `yaml:"operator"`
	} `yaml:"keywords"`
	Types map[string]string `yaml:"types"` // lexeme -> "bool"|"int"|"i16"|"double"|"string"|"any"
	Operators []struct {
		Symbol     string `yaml:"symbol"`
		Precedence int    `yaml:"precedence"`
		Arity      int    `yaml:"arity"`
		RightAssoc bool   `yaml:"right_assoc"`
	} `yaml:"operators"`
}

var typeKindBySpelling = map[string]token.Kind{
	"bool":   token.KEYWORD_BOOL,
	"int":    token.KEYWORD_INT,
	"i16":    token.KEYWORD_I16,
	"double": token.KEYWORD_DOUBLE,
	"string": token.KEYWORD_STRING,
	"any":    token.KEYWORD_ANY,
}

var propertyTypeBySpelling = map[string]PropertyType{
	"bool":   TypeBool,
	"int":    TypeInt,
	"i16":    TypeI16,
	"double": TypeDouble,
	"string": TypeString,
	"any":    TypeAny,
}

// Load decodes a YAML language descriptor and overlays it on top of
// Default(), so a descriptor only needs to mention what it changes.
func Load(yamlBytes []byte) (*Language, error) {
	var d Descriptor
	if err := yaml.Unmarshal(yamlBytes, &d); err != nil {
		return nil, fmt.Errorf("lang: decoding language descriptor: %w", err)
	}
	l := Default()

	if d.Keywords.If != "" {
		delete(l.keywords, "if")
		l.addKeyword(d.Keywords.If, token.KEYWORD_IF)
	}
	if d.Keywords.Else != "" {
		delete(l.keywords, "else")
		l.addKeyword(d.Keywords.Else, token.KEYWORD_ELSE)
	}
	if d.Keywords.For != "" {
		delete(l.keywords, "for")
		l.addKeyword(d.Keywords.For, token.KEYWORD_FOR)
	}
	if d.Keywords.While != "" {
		delete(l.keywords, "while")
		l.addKeyword(d.Keywords.While, token.KEYWORD_WHILE)
	}
	if d.Keywords.Operator != "" {
		delete(l.keywords, "operator")
		l.addKeyword(d.Keywords.Operator, token.KEYWORD_OPERATOR)
	}

	for lexeme, spelling := range d.Types {
		k, ok := typeKindBySpelling[spelling]
		if !ok {
			return nil, fmt.Errorf("lang: unknown base type %q for keyword %q", spelling, lexeme)
		}
		l.addTypeKeyword(lexeme, k, propertyTypeBySpelling[spelling])
	}

	for _, o := range d.Operators {
		assoc := LeftAssoc
		if o.RightAssoc {
			assoc = RightAssoc
		}
		if o.Arity == 1 {
			l.unaryOperators[o.Symbol] = Operator{Symbol: o.Symbol, Precedence: o.Precedence, Arity: 1, Associativity: assoc}
		} else {
			l.operators[o.Symbol] = Operator{Symbol: o.Symbol, Precedence: o.Precedence, Arity: 2, Associativity: assoc}
		}
	}

	return l, nil
}
