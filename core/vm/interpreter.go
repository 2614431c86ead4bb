// Copyright 2015 The go-probeum Authors
// This file is part of the go-probeum library.
//
// The go-probeum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-probeum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-probeum library. If not, see <http://www.gnu.org/licenses/>.

package vm

// Machine is the pure bytecode interpreter core: code, calldata, stack,
// memory, and a program counter, with no awareness of gas, accounts, or
// any host. It never calls out for CALL/CREATE/SLOAD/SSTORE/LOG/env reads:
// those opcodes suspend the loop by returning a Trap, which the caller
// (a Runtime, wired to a Handler) resolves and then resumes the Machine
// with Step/Run again.
type Machine struct {
	data  []byte
	code  []byte
	pc    int
	done  *ExitReason

	returnOffset int
	returnLen    int

	valids Valids
	memory *Memory
	stack  *Stack
}

// NewMachine constructs a Machine over code with the given calldata, stack
// limit, and memory byte limit.
func NewMachine(code, data []byte, stackLimit int, memoryLimit uint64) *Machine {
	return &Machine{
		data:   data,
		code:   code,
		pc:     0,
		valids: CachedValids(code),
		memory: NewMemory(memoryLimit),
		stack:  NewStack(stackLimit),
	}
}

// Stack returns the machine's operand stack.
func (m *Machine) Stack() *Stack { return m.stack }

// Memory returns the machine's memory.
func (m *Machine) Memory() *Memory { return m.memory }

// Code returns the machine's code.
func (m *Machine) Code() []byte { return m.code }

// Data returns the machine's calldata.
func (m *Machine) Data() []byte { return m.data }

// PC returns the current program counter.
func (m *Machine) PC() int { return m.pc }

// Exit forces the machine into a terminal state; any further Step/Run call
// returns the same reason without executing anything.
func (m *Machine) Exit(reason ExitReason) {
	r := reason
	m.done = &r
}

// Inspect returns the next opcode to execute and the current stack,
// without executing anything, or ok=false if the machine has exited.
func (m *Machine) Inspect() (op OpCode, stack *Stack, ok bool) {
	if m.done != nil {
		return 0, nil, false
	}
	if m.pc >= len(m.code) {
		return 0, nil, false
	}
	return OpCode(m.code[m.pc]), m.stack, true
}

// ReturnValueLen returns the length of the RETURN/REVERT output range.
func (m *Machine) ReturnValueLen() int { return m.returnLen }

// ReturnValue copies out the RETURN/REVERT output range from memory. A
// range that somehow exceeds the memory limit (it should already have been
// rejected by the quadratic memory-expansion cost before RETURN ever ran)
// comes back empty rather than panicking.
func (m *Machine) ReturnValue() []byte {
	out, fatal := m.memory.Get(uint64(m.returnOffset), uint64(m.returnLen))
	if fatal != nil {
		return nil
	}
	return out
}

// CaptureKind discriminates the two ways a Run/Step call can suspend.
type CaptureKind int

const (
	CaptureExit CaptureKind = iota
	CaptureTrap
)

// Capture is the outcome of Run or Step: either the machine reached a
// terminal ExitReason, or it suspended on a Trap opcode awaiting the host.
type Capture struct {
	Kind   CaptureKind
	Exit   ExitReason
	TrapOp OpCode
}

// PreValidate is called before every opcode executes; returning a non-nil
// error aborts the step with that error as an ExitError.
type PreValidate func(op OpCode, stack *Stack) *ExitError

// Run executes opcodes until the machine halts, traps, or maxSteps is
// exhausted. It returns the number of steps actually taken and a Capture
// describing why it stopped. A step-limited machine remains resumable by
// calling Run or Step again.
func (m *Machine) Run(maxSteps uint64, preValidate PreValidate) (uint64, Capture) {
	for step := uint64(0); step < maxSteps; step++ {
		if m.done != nil {
			return step, Capture{Kind: CaptureExit, Exit: *m.done}
		}

		if m.pc >= len(m.code) {
			reason := ExitStopped
			m.Exit(reason)
			return step, Capture{Kind: CaptureExit, Exit: reason}
		}
		op := OpCode(m.code[m.pc])

		if preValidate != nil {
			if err := preValidate(op, m.stack); err != nil {
				reason := FromError(err)
				m.Exit(reason)
				return step, Capture{Kind: CaptureExit, Exit: reason}
			}
		}

		ctl := eval(m, op, m.pc)
		switch ctl.kind {
		case ctlContinue:
			m.pc += ctl.delta
		case ctlJump:
			m.pc = ctl.dest
		case ctlExit:
			m.Exit(ctl.reason)
			return step + 1, Capture{Kind: CaptureExit, Exit: ctl.reason}
		case ctlTrap:
			m.pc++
			return step + 1, Capture{Kind: CaptureTrap, TrapOp: op}
		}
	}
	return maxSteps, Capture{Kind: CaptureExit, Exit: ExitStepLimitReached}
}

// Step executes exactly one opcode.
func (m *Machine) Step() Capture {
	if m.done != nil {
		return Capture{Kind: CaptureExit, Exit: *m.done}
	}
	if m.pc >= len(m.code) {
		reason := ExitStopped
		m.Exit(reason)
		return Capture{Kind: CaptureExit, Exit: reason}
	}
	op := OpCode(m.code[m.pc])
	ctl := eval(m, op, m.pc)
	switch ctl.kind {
	case ctlContinue:
		m.pc += ctl.delta
		return Capture{}
	case ctlJump:
		m.pc = ctl.dest
		return Capture{}
	case ctlExit:
		m.Exit(ctl.reason)
		return Capture{Kind: CaptureExit, Exit: ctl.reason}
	case ctlTrap:
		m.pc++
		return Capture{Kind: CaptureTrap, TrapOp: op}
	}
	return Capture{}
}
