package bytecode_test

import (
	"strings"
	"testing"

	"github.com/cockroachdb/apd/v3"
	"github.com/google/go-cmp/cmp"

	"github.com/nodable-lang/nodable/bytecode"
)

func TestValueTruthy(t *testing.T) {
	cases := []struct {
		name string
		v    bytecode.Value
		want bool
	}{
		{"bool true", bytecode.BoolValue(true), true},
		{"bool false", bytecode.BoolValue(false), false},
		{"nonzero int", bytecode.IntValue(3), true},
		{"zero int", bytecode.IntValue(0), false},
		{"nonzero uint", bytecode.UintValue(1), true},
		{"zero uint", bytecode.UintValue(0), false},
		{"void", bytecode.VoidValue(), false},
	}
	for _, c := range cases {
		if got := c.v.Truthy(); got != c.want {
			t.Errorf("%s: Truthy() = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestValueTruthyDouble(t *testing.T) {
	zero, _, err := apd.NewFromString("0")
	if err != nil {
		t.Fatal(err)
	}
	nonzero, _, err := apd.NewFromString("0.5")
	if err != nil {
		t.Fatal(err)
	}
	if bytecode.DoubleValue(zero).Truthy() {
		t.Error("0.0 should not be truthy")
	}
	if !bytecode.DoubleValue(nonzero).Truthy() {
		t.Error("0.5 should be truthy")
	}
}

func TestTargetString(t *testing.T) {
	if got := bytecode.RegisterTarget(bytecode.RAX).String(); got != "rax" {
		t.Errorf("RegisterTarget(RAX).String() = %q, want %q", got, "rax")
	}
	if got := bytecode.VariableTarget(bytecode.VariableID(7)).String(); got != "var#7" {
		t.Errorf("VariableTarget(7).String() = %q, want %q", got, "var#7")
	}
}

func TestInstructionString(t *testing.T) {
	cases := []struct {
		name  string
		instr bytecode.Instruction
		want  string
	}{
		{
			"push_stack_frame",
			bytecode.Instruction{Op: bytecode.PushStackFrame, Scope: bytecode.ScopeID(2)},
			"push_stack_frame scope#2",
		},
		{
			"push_var",
			bytecode.Instruction{Op: bytecode.PushVar, Variable: bytecode.VariableID(1)},
			"push_var var#1",
		},
		{
			"mov reg<-int",
			bytecode.Instruction{Op: bytecode.Mov, Dst: bytecode.RegisterTarget(bytecode.RAX), Src: bytecode.IntValue(5)},
			"mov rax, 5",
		},
		{
			"cmp",
			bytecode.Instruction{Op: bytecode.Cmp, CmpA: bytecode.RAX, CmpB: bytecode.RDX},
			"cmp rax, rdx",
		},
		{
			"jmp",
			bytecode.Instruction{Op: bytecode.Jmp, Offset: 10},
			"jmp 10",
		},
		{
			"ret",
			bytecode.Instruction{Op: bytecode.Ret},
			"ret",
		},
	}
	for _, c := range cases {
		if got := c.instr.String(); got != c.want {
			t.Errorf("%s: String() = %q, want %q", c.name, got, c.want)
		}
	}
}

func TestInstructionStringCall(t *testing.T) {
	instr := bytecode.Instruction{Op: bytecode.Call, Function: bytecode.FunctionID(3), Args: []bytecode.Register{bytecode.RDX, bytecode.RAX}}
	got := instr.String()
	if !strings.HasPrefix(got, "call fn#3(") {
		t.Errorf("Call.String() = %q, want prefix %q", got, "call fn#3(")
	}
	if !strings.Contains(got, "rdx, rax") {
		t.Errorf("Call.String() = %q, want args in order rdx, rax", got)
	}
}

func TestDisassembleNumbersEachInstruction(t *testing.T) {
	code := &bytecode.Bytecode{
		Instructions: []bytecode.Instruction{
			{Op: bytecode.Mov, Dst: bytecode.RegisterTarget(bytecode.RAX), Src: bytecode.IntValue(2)},
			{Op: bytecode.Ret},
		},
	}
	out := code.Disassemble()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("Disassemble() produced %d lines, want 2:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[0], "mov rax, 2") {
		t.Errorf("line 0 = %q, want to contain %q", lines[0], "mov rax, 2")
	}
	if !strings.Contains(lines[1], "ret") {
		t.Errorf("line 1 = %q, want to contain %q", lines[1], "ret")
	}
}

// TestInstructionStructuralEquality uses cmp.Diff rather than == so a
// future field addition to Instruction fails loudly here instead of
// silently comparing unequal-looking structs as equal.
func TestInstructionStructuralEquality(t *testing.T) {
	a := bytecode.Instruction{
		Op:       bytecode.Call,
		Function: bytecode.FunctionID(2),
		Args:     []bytecode.Register{bytecode.RAX, bytecode.RDX},
	}
	b := bytecode.Instruction{
		Op:       bytecode.Call,
		Function: bytecode.FunctionID(2),
		Args:     []bytecode.Register{bytecode.RAX, bytecode.RDX},
	}
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("identical instructions compared unequal (-a +b):\n%s", diff)
	}

	c := b
	c.Args = []bytecode.Register{bytecode.RDX, bytecode.RAX}
	if diff := cmp.Diff(a, c); diff == "" {
		t.Error("expected a diff for reordered call arguments, got none")
	}
}
