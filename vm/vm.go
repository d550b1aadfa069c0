// Package vm implements the minimal register/stack interpreter used to
// execute a compile.Compile result and observe rax as the program's result.
package vm

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/nodable-lang/nodable/bytecode"
)

// RuntimeError covers the vm's two runtime failure modes: division by
// zero (surfaced by an invokable's Native returning an error) and stack
// overflow (too many nested push_stack_frame without a matching
// pop_stack_frame).
type RuntimeError struct {
	Message string
	PC      int
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("runtime error at instruction %d: %s", e.PC, e.Message)
}

// MaxFrameDepth bounds the frame stack; exceeding it is a RuntimeError
// stack overflow rather than an unbounded Go-stack crash.
const MaxFrameDepth = 4096

// frame is one activation record: a scope's push_stack_frame through its
// matching pop_stack_frame, holding the variable slots push_var declared.
type frame struct {
	scope bytecode.ScopeID
	vars  map[bytecode.VariableID]bytecode.Value
}

// ProgramResult is run's output: the last value placed in rax, plus the
// run's correlation id for host-side log correlation.
type ProgramResult struct {
	Value bytecode.Value
	RunID uuid.UUID
}

// Run interprets code to completion and returns its result, or a
// RuntimeError if division by zero or frame-stack overflow occurs.
func Run(code *bytecode.Bytecode) (ProgramResult, error) {
	m := &machine{code: code}
	return m.run()
}

type machine struct {
	code      *bytecode.Bytecode
	pc        int
	registers [4]bytecode.Value
	zeroFlag  bool
	frames    []*frame
}

func (m *machine) run() (ProgramResult, error) {
	runID := uuid.New()
	for m.pc < len(m.code.Instructions) {
		instr := m.code.Instructions[m.pc]
		next, err := m.step(instr)
		if err != nil {
			return ProgramResult{}, err
		}
		if instr.Op == bytecode.Ret && len(m.frames) == 0 {
			return ProgramResult{Value: m.reg(bytecode.RAX), RunID: runID}, nil
		}
		m.pc = next
	}
	return ProgramResult{Value: m.reg(bytecode.RAX), RunID: runID}, nil
}

func (m *machine) reg(r bytecode.Register) bytecode.Value { return m.registers[r] }
func (m *machine) setReg(r bytecode.Register, v bytecode.Value) { m.registers[r] = v }

func (m *machine) currentFrame() *frame {
	if len(m.frames) == 0 {
		return nil
	}
	return m.frames[len(m.frames)-1]
}

// resolveVariable walks the frame stack from innermost to outermost,
// mirroring the graph's lexical-scope-parent lookup at compile time.
func (m *machine) resolveVariable(v bytecode.VariableID) bytecode.Value {
	for i := len(m.frames) - 1; i >= 0; i-- {
		if val, ok := m.frames[i].vars[v]; ok {
			return val
		}
	}
	return bytecode.VoidValue()
}

func (m *machine) storeVariable(v bytecode.VariableID, val bytecode.Value) {
	for i := len(m.frames) - 1; i >= 0; i-- {
		if _, ok := m.frames[i].vars[v]; ok {
			m.frames[i].vars[v] = val
			return
		}
	}
	if f := m.currentFrame(); f != nil {
		f.vars[v] = val
	}
}

func (m *machine) resolveOperand(v bytecode.Value) bytecode.Value {
	switch v.Kind {
	case bytecode.KindRegister:
		return m.reg(v.Register)
	case bytecode.KindVariable:
		return m.resolveVariable(v.Variable)
	default:
		return v
	}
}

// step executes one instruction and returns the next pc, or a
// RuntimeError on division-by-zero (propagated from an invokable) or
// stack overflow.
func (m *machine) step(instr bytecode.Instruction) (int, error) {
	switch instr.Op {
	case bytecode.PushStackFrame:
		if len(m.frames) >= MaxFrameDepth {
			return 0, &RuntimeError{Message: "stack overflow", PC: m.pc}
		}
		m.frames = append(m.frames, &frame{scope: instr.Scope, vars: map[bytecode.VariableID]bytecode.Value{}})

	case bytecode.PopStackFrame:
		if len(m.frames) > 0 {
			m.frames = m.frames[:len(m.frames)-1]
		}

	case bytecode.PushVar:
		if f := m.currentFrame(); f != nil {
			f.vars[instr.Variable] = bytecode.VoidValue()
		}

	case bytecode.PopVar:
		if f := m.currentFrame(); f != nil {
			delete(f.vars, instr.Variable)
		}

	case bytecode.Mov:
		val := m.resolveOperand(instr.Src)
		switch instr.Dst.Kind {
		case bytecode.TargetRegister:
			m.setReg(instr.Dst.Register, val)
		case bytecode.TargetVariable:
			m.storeVariable(instr.Dst.Variable, val)
		}

	case bytecode.Cmp:
		a, b := m.reg(instr.CmpA), m.reg(instr.CmpB)
		m.zeroFlag = valuesEqual(a, b)

	case bytecode.Jmp:
		return instr.Offset, nil

	case bytecode.Jeq:
		if m.zeroFlag {
			return instr.Offset, nil
		}

	case bytecode.Jne:
		if !m.zeroFlag {
			return instr.Offset, nil
		}

	case bytecode.Call:
		if int(instr.Function) < 0 || int(instr.Function) >= len(m.code.Functions) {
			return 0, &RuntimeError{Message: "call to unresolved function id", PC: m.pc}
		}
		fn := m.code.Functions[instr.Function]
		args := make([]bytecode.Value, len(instr.Args))
		for i, r := range instr.Args {
			args[i] = m.reg(r)
		}
		result, err := fn.Native(args)
		if err != nil {
			return 0, &RuntimeError{Message: err.Error(), PC: m.pc}
		}
		m.setReg(bytecode.RAX, result)

	case bytecode.Ret:
		// handled by run's loop once the frame stack is empty; a nested
		// ret (not emitted by compile today, reserved for future call
		// frames with their own instruction ranges) just falls through.
	}

	return m.pc + 1, nil
}

// valuesEqual backs the vm's cmp opcode: condition-
// instruction always compares rax against a literal `true` moved into
// rdx, so this only needs bool/int/uint/double/register equality, not a
// general ordering.
func valuesEqual(a, b bytecode.Value) bool {
	if a.Kind != b.Kind {
		return a.Truthy() == b.Truthy()
	}
	switch a.Kind {
	case bytecode.KindBool:
		return a.Bool == b.Bool
	case bytecode.KindInt:
		return a.Int == b.Int
	case bytecode.KindUint:
		return a.Uint == b.Uint
	case bytecode.KindDouble:
		if a.Double == nil || b.Double == nil {
			return a.Double == b.Double
		}
		return a.Double.Cmp(b.Double) == 0
	default:
		return a.Truthy() == b.Truthy()
	}
}
