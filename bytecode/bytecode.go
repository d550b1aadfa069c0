// Package bytecode defines the instruction and operand format the compile
// package emits and the vm package interprets. It is factored out of both
// so neither imports the other.
package bytecode

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/apd/v3"
)

// Register names one of the VM's four logical registers.
type Register int

const (
	RAX Register = iota // accumulator / last evaluated value
	RDX                 // scratch
	ESP                 // stack pointer
	EBP                 // base pointer
)

func (r Register) String() string {
	switch r {
	case RAX:
		return "rax"
	case RDX:
		return "rdx"
	case ESP:
		return "esp"
	case EBP:
		return "ebp"
	default:
		return fmt.Sprintf("reg(%d)", int(r))
	}
}

// Opcode is one member of the VM's opcode set.
type Opcode int

const (
	PushStackFrame Opcode = iota
	PopStackFrame
	PushVar
	PopVar
	Mov
	Cmp
	Jmp
	Jne
	Jeq
	Call
	Ret
)

func (op Opcode) String() string {
	switch op {
	case PushStackFrame:
		return "push_stack_frame"
	case PopStackFrame:
		return "pop_stack_frame"
	case PushVar:
		return "push_var"
	case PopVar:
		return "pop_var"
	case Mov:
		return "mov"
	case Cmp:
		return "cmp"
	case Jmp:
		return "jmp"
	case Jne:
		return "jne"
	case Jeq:
		return "jeq"
	case Call:
		return "call"
	case Ret:
		return "ret"
	default:
		return fmt.Sprintf("opcode(%d)", int(op))
	}
}

// ScopeID, VariableID and FunctionID are the compiler's opaque handles for
// stack frame layout and invokable resolution, carried from compile
// through to the vm without either package needing the graph package.
type ScopeID int
type VariableID int
type FunctionID int

// ValueKind tags the 64-bit operand union: bool, i64, u64,
// f64, pointer, register_id, function_id, scope_id, variable_id,
// jump_offset. Pointer, function_id, scope_id and jump_offset collapse
// onto Go int fields here since the VM never needs raw memory addresses;
// register_id and variable_id get their own typed fields for clarity at
// call sites.
type ValueKind int

const (
	KindVoid ValueKind = iota
	KindBool
	KindInt
	KindUint
	KindDouble
	KindRegister
	KindVariable
)

func (k ValueKind) String() string {
	switch k {
	case KindVoid:
		return "void"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindUint:
		return "uint"
	case KindDouble:
		return "double"
	case KindRegister:
		return "register"
	case KindVariable:
		return "variable"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is a 64-bit-word operand: either an immediate (bool/int/uint/
// double), a register reference a mov/cmp should read through, or a
// variable slot reference a mov should read from the current frame.
type Value struct {
	Kind     ValueKind
	Bool     bool
	Int      int64
	Uint     uint64
	Double   *apd.Decimal
	Register Register
	Variable VariableID
}

func VoidValue() Value                 { return Value{Kind: KindVoid} }
func BoolValue(b bool) Value           { return Value{Kind: KindBool, Bool: b} }
func IntValue(i int64) Value           { return Value{Kind: KindInt, Int: i} }
func UintValue(u uint64) Value         { return Value{Kind: KindUint, Uint: u} }
func DoubleValue(d *apd.Decimal) Value { return Value{Kind: KindDouble, Double: d} }
func RegisterValue(r Register) Value   { return Value{Kind: KindRegister, Register: r} }
func VariableValue(v VariableID) Value { return Value{Kind: KindVariable, Variable: v} }

// Truthy reports v's boolean interpretation for condition-instruction
// results ("mov rdx <- true; cmp rax, rdx").
func (v Value) Truthy() bool {
	switch v.Kind {
	case KindBool:
		return v.Bool
	case KindInt:
		return v.Int != 0
	case KindUint:
		return v.Uint != 0
	case KindDouble:
		return v.Double != nil && !v.Double.IsZero()
	default:
		return false
	}
}

func (v Value) String() string {
	switch v.Kind {
	case KindBool:
		return fmt.Sprintf("%t", v.Bool)
	case KindInt:
		return fmt.Sprintf("%d", v.Int)
	case KindUint:
		return fmt.Sprintf("%d", v.Uint)
	case KindDouble:
		if v.Double == nil {
			return "0"
		}
		return v.Double.String()
	case KindRegister:
		return v.Register.String()
	case KindVariable:
		return fmt.Sprintf("var#%d", v.Variable)
	default:
		return "<void>"
	}
}

// TargetKind tags a Mov's destination: either of the VM's registers, or a
// variable slot in the current stack frame.
type TargetKind int

const (
	TargetRegister TargetKind = iota
	TargetVariable
)

// Target is a Mov instruction's destination operand.
type Target struct {
	Kind     TargetKind
	Register Register
	Variable VariableID
}

func RegisterTarget(r Register) Target   { return Target{Kind: TargetRegister, Register: r} }
func VariableTarget(v VariableID) Target { return Target{Kind: TargetVariable, Variable: v} }

func (t Target) String() string {
	if t.Kind == TargetVariable {
		return fmt.Sprintf("var#%d", t.Variable)
	}
	return t.Register.String()
}

// Instruction is one tagged-union entry of the instruction set. Only the
// fields relevant to Op are meaningful; this favors a flat struct with a
// discriminant over a Rust-style enum, since Go has no sum type.
type Instruction struct {
	Op Opcode

	Scope    ScopeID    // push_stack_frame / pop_stack_frame
	Variable VariableID // push_var / pop_var
	Dst      Target     // mov's destination
	Src      Value      // mov's source operand
	CmpA     Register   // cmp's left-hand register
	CmpB     Register   // cmp's right-hand register
	Offset   int        // jmp/jne/jeq: absolute target instruction index
	Function FunctionID // call
	Args     []Register // call: registers holding arguments, in order
}

// FunctionDesc is one entry of the invokable table a Bytecode carries so
// the vm's call opcode can resolve a FunctionID without importing the
// compile package.
type FunctionDesc struct {
	Name   string
	Arity  int
	Native func(args []Value) (Value, error)
}

// Bytecode is the compiler's output: a flat instruction vector plus the
// invokable table its call instructions index into.
type Bytecode struct {
	Instructions []Instruction
	Functions    []FunctionDesc
	// Variables maps each VariableID to a display name, for diagnostics
	// and disassembly only; the vm never needs it to run.
	Variables []string
}

// Disassemble renders b as one instruction per line, in the style
// cmd/nodablec's "compile" subcommand prints for inspection — an
// index-prefixed mnemonic listing, not a format the vm reads back.
func (b *Bytecode) Disassemble() string {
	var out strings.Builder
	for i, instr := range b.Instructions {
		fmt.Fprintf(&out, "%4d  %s\n", i, instr.String())
	}
	return out.String()
}

func (i Instruction) String() string {
	switch i.Op {
	case PushStackFrame, PopStackFrame:
		return fmt.Sprintf("%s scope#%d", i.Op, i.Scope)
	case PushVar, PopVar:
		return fmt.Sprintf("%s var#%d", i.Op, i.Variable)
	case Mov:
		return fmt.Sprintf("mov %s, %s", i.Dst, i.Src)
	case Cmp:
		return fmt.Sprintf("cmp %s, %s", i.CmpA, i.CmpB)
	case Jmp, Jne, Jeq:
		return fmt.Sprintf("%s %d", i.Op, i.Offset)
	case Call:
		args := make([]string, len(i.Args))
		for j, r := range i.Args {
			args[j] = r.String()
		}
		return fmt.Sprintf("call fn#%d(%s)", i.Function, strings.Join(args, ", "))
	case Ret:
		return "ret"
	default:
		return i.Op.String()
	}
}
