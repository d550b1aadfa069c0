package compile

import (
	"fmt"
	"io"
	"os"

	"github.com/cockroachdb/apd/v3"

	"github.com/nodable-lang/nodable/bytecode"
)

// Stdout is where the "print" built-in writes. Tests redirect it to a
// buffer; cmd/nodablec's run command points it at the command's own
// output writer.
var Stdout io.Writer = os.Stdout

// decimalCtx is the shared arithmetic context for double operands,
// matching graph.Value's use of apd.Decimal for exact base-10 arithmetic
// instead of float64 (mixed int/double scenario).
var decimalCtx = apd.BaseContext.WithPrecision(34)

// Invokable is one entry of the table compile resolves operator and
// function_call nodes against.
type Invokable struct {
	ID     bytecode.FunctionID
	Name   string
	Arity  int
	Native func(args []bytecode.Value) (bytecode.Value, error)
}

type invokableKey struct {
	name  string
	arity int
}

// InvokableTable maps (name, arity) to a registered Invokable, seeded with
// the language's arithmetic/comparison operators and a small built-in
// function set (print, min, max) — enough for a compiled program to do
// observable work without a host.
type InvokableTable struct {
	byKey map[invokableKey]Invokable
	descs []bytecode.FunctionDesc
}

// DefaultInvokables builds the table every Compile call resolves against.
func DefaultInvokables() *InvokableTable {
	t := &InvokableTable{byKey: map[invokableKey]Invokable{}}

	t.register("+", 2, addValues)
	t.register("-", 2, subValues)
	t.register("*", 2, mulValues)
	t.register("/", 2, divValues)
	t.register("==", 2, eqValues)
	t.register("!=", 2, neValues)
	t.register(">", 2, gtValues)
	t.register("<", 2, ltValues)
	t.register(">=", 2, geValues)
	t.register("<=", 2, leValues)
	t.register("<=>", 2, spaceshipValues)
	t.register("=>", 2, impliesValues)
	t.register("-", 1, negValue)
	t.register("!", 1, notValue)

	t.register("print", 1, printValue)
	t.register("min", 2, minValues)
	t.register("max", 2, maxValues)

	return t
}

func (t *InvokableTable) register(name string, arity int, native func([]bytecode.Value) (bytecode.Value, error)) {
	id := bytecode.FunctionID(len(t.descs))
	t.descs = append(t.descs, bytecode.FunctionDesc{Name: name, Arity: arity, Native: native})
	t.byKey[invokableKey{name: name, arity: arity}] = Invokable{ID: id, Name: name, Arity: arity, Native: native}
}

// Resolve looks up an invokable by exact (name, arity) match. Since every
// native here already coerces int/double operands itself, exact match on
// name+arity is sufficient and no separate fallback table is needed.
func (t *InvokableTable) Resolve(name string, arity int) (Invokable, bool) {
	inv, ok := t.byKey[invokableKey{name: name, arity: arity}]
	return inv, ok
}

// Descriptors returns every registered invokable's bytecode.FunctionDesc,
// indexed by FunctionID, for embedding into a compiled Bytecode.
func (t *InvokableTable) Descriptors() []bytecode.FunctionDesc {
	return append([]bytecode.FunctionDesc(nil), t.descs...)
}

func isDouble(v bytecode.Value) bool { return v.Kind == bytecode.KindDouble }

func toDecimal(v bytecode.Value) *apd.Decimal {
	if v.Kind == bytecode.KindDouble && v.Double != nil {
		return v.Double
	}
	d := new(apd.Decimal)
	switch v.Kind {
	case bytecode.KindInt:
		d.SetInt64(v.Int)
	case bytecode.KindUint:
		d.SetInt64(int64(v.Uint))
	case bytecode.KindBool:
		if v.Bool {
			d.SetInt64(1)
		}
	}
	return d
}

// arith routes both operands through apd.Decimal regardless of their
// original int/double kind, so mixed arithmetic never drifts through
// float64; the result demotes back to int only if neither operand was a
// double.
func arith(a, b bytecode.Value, op func(*apd.Decimal, *apd.Decimal, *apd.Decimal) (apd.Condition, error)) (bytecode.Value, error) {
	result := new(apd.Decimal)
	if _, err := op(result, toDecimal(a), toDecimal(b)); err != nil {
		return bytecode.Value{}, err
	}
	if !isDouble(a) && !isDouble(b) {
		i, err := result.Int64()
		if err == nil {
			return bytecode.IntValue(i), nil
		}
	}
	return bytecode.DoubleValue(result), nil
}

func addValues(args []bytecode.Value) (bytecode.Value, error) {
	return arith(args[0], args[1], decimalCtx.Add)
}

func subValues(args []bytecode.Value) (bytecode.Value, error) {
	return arith(args[0], args[1], decimalCtx.Sub)
}

func mulValues(args []bytecode.Value) (bytecode.Value, error) {
	return arith(args[0], args[1], decimalCtx.Mul)
}

func divValues(args []bytecode.Value) (bytecode.Value, error) {
	if toDecimal(args[1]).IsZero() {
		return bytecode.Value{}, fmt.Errorf("division by zero")
	}
	return arith(args[0], args[1], decimalCtx.Quo)
}

func compareValues(args []bytecode.Value) (int, error) {
	a, b := toDecimal(args[0]), toDecimal(args[1])
	return a.Cmp(b), nil
}

func eqValues(args []bytecode.Value) (bytecode.Value, error) {
	c, err := compareValues(args)
	return bytecode.BoolValue(c == 0), err
}

func neValues(args []bytecode.Value) (bytecode.Value, error) {
	c, err := compareValues(args)
	return bytecode.BoolValue(c != 0), err
}

func gtValues(args []bytecode.Value) (bytecode.Value, error) {
	c, err := compareValues(args)
	return bytecode.BoolValue(c > 0), err
}

func ltValues(args []bytecode.Value) (bytecode.Value, error) {
	c, err := compareValues(args)
	return bytecode.BoolValue(c < 0), err
}

func geValues(args []bytecode.Value) (bytecode.Value, error) {
	c, err := compareValues(args)
	return bytecode.BoolValue(c >= 0), err
}

func leValues(args []bytecode.Value) (bytecode.Value, error) {
	c, err := compareValues(args)
	return bytecode.BoolValue(c <= 0), err
}

// spaceshipValues implements `<=>`: -1, 0 or 1 according to comparison.
func spaceshipValues(args []bytecode.Value) (bytecode.Value, error) {
	c, err := compareValues(args)
	return bytecode.IntValue(int64(c)), err
}

// impliesValues implements `=>` as logical implication (!a || b), the
// reading lists it under operators without further definition.
func impliesValues(args []bytecode.Value) (bytecode.Value, error) {
	return bytecode.BoolValue(!args[0].Truthy() || args[1].Truthy()), nil
}

func negValue(args []bytecode.Value) (bytecode.Value, error) {
	v := args[0]
	if isDouble(v) {
		neg := new(apd.Decimal).Neg(toDecimal(v))
		return bytecode.DoubleValue(neg), nil
	}
	return bytecode.IntValue(-v.Int), nil
}

func notValue(args []bytecode.Value) (bytecode.Value, error) {
	return bytecode.BoolValue(!args[0].Truthy()), nil
}

func minValues(args []bytecode.Value) (bytecode.Value, error) {
	c, err := compareValues(args)
	if err != nil {
		return bytecode.Value{}, err
	}
	if c <= 0 {
		return args[0], nil
	}
	return args[1], nil
}

func maxValues(args []bytecode.Value) (bytecode.Value, error) {
	c, err := compareValues(args)
	if err != nil {
		return bytecode.Value{}, err
	}
	if c >= 0 {
		return args[0], nil
	}
	return args[1], nil
}

// printValue is a built-in observable side effect for hostless compiled
// programs. It writes to the package-level Stdout hook so the vm can
// capture it during tests and cmd/nodablec can stream it to the real
// console.
func printValue(args []bytecode.Value) (bytecode.Value, error) {
	fmt.Fprintln(Stdout, args[0].String())
	return args[0], nil
}
