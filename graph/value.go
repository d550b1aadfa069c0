package graph

import (
	"fmt"
	"strconv"

	"github.com/cockroachdb/apd/v3"

	"github.com/nodable-lang/nodable/lang"
)

// Value is a typed literal or last-known-constant value held by a
// Property. double values are backed by apd.Decimal (shared with the VM's
// register words, domain stack) instead of float64, so
// mixed int/double arithmetic ("-1+2*5-3/6" scenario) doesn't
// drift under binary floating point.
type Value struct {
	Type    lang.PropertyType
	Bool    bool
	Int     int64
	Double  *apd.Decimal
	Str     string
	NodeRef NodeID
}

// Void is the empty value, used for void-typed properties (e.g. an
// empty_instruction's placeholder) and as the zero value.
var Void = Value{Type: lang.TypeVoid}

func BoolValue(b bool) Value     { return Value{Type: lang.TypeBool, Bool: b} }
func IntValue(i int64) Value     { return Value{Type: lang.TypeInt, Int: i} }
func StringValue(s string) Value { return Value{Type: lang.TypeString, Str: s} }
func AnyValue() Value            { return Value{Type: lang.TypeAny} }
func NodeRefValue(id NodeID) Value { return Value{Type: lang.TypeNodeRef, NodeRef: id} }

func DoubleValue(d *apd.Decimal) Value { return Value{Type: lang.TypeDouble, Double: d} }

// ParseIntLiteral parses a literal_int token body into a Value.
func ParseIntLiteral(lexeme string) (Value, error) {
	n, err := strconv.ParseInt(lexeme, 10, 64)
	if err != nil {
		return Value{}, fmt.Errorf("graph: invalid int literal %q: %w", lexeme, err)
	}
	return IntValue(n), nil
}

// ParseDoubleLiteral parses a literal_double token body into a Value.
func ParseDoubleLiteral(lexeme string) (Value, error) {
	d, _, err := apd.NewFromString(lexeme)
	if err != nil {
		return Value{}, fmt.Errorf("graph: invalid double literal %q: %w", lexeme, err)
	}
	return DoubleValue(d), nil
}

// ParseStringLiteral strips the surrounding quotes and resolves \" escapes
// from a literal_string token body.
func ParseStringLiteral(lexeme string) (Value, error) {
	if len(lexeme) < 2 || lexeme[0] != '"' || lexeme[len(lexeme)-1] != '"' {
		return Value{}, fmt.Errorf("graph: malformed string literal %q", lexeme)
	}
	inner := lexeme[1 : len(lexeme)-1]
	out := make([]byte, 0, len(inner))
	for i := 0; i < len(inner); i++ {
		if inner[i] == '\\' && i+1 < len(inner) && inner[i+1] == '"' {
			out = append(out, '"')
			i++
			continue
		}
		out = append(out, inner[i])
	}
	return StringValue(string(out)), nil
}

func (v Value) String() string {
	switch v.Type {
	case lang.TypeBool:
		return strconv.FormatBool(v.Bool)
	case lang.TypeInt:
		return strconv.FormatInt(v.Int, 10)
	case lang.TypeDouble:
		if v.Double == nil {
			return "0"
		}
		return v.Double.String()
	case lang.TypeString:
		return v.Str
	case lang.TypeNodeRef:
		return fmt.Sprintf("node#%d", v.NodeRef.h.index)
	default:
		return "<void>"
	}
}
