package chip8

import "errors"

var (
	// ErrROMTooLarge is returned by LoadROM for programs that do not fit
	// between ProgramStart and the end of memory.
	ErrROMTooLarge = errors.New("rom too large for program memory")

	// ErrStackOverflow is the fault raised by a CALL at full stack depth.
	ErrStackOverflow = errors.New("stack overflow")

	// ErrStackUnderflow is the fault raised by a RET on an empty stack.
	ErrStackUnderflow = errors.New("stack underflow")

	// ErrIllegalInstruction is the fault raised for opcode patterns the
	// machine does not define.
	ErrIllegalInstruction = errors.New("illegal instruction")

	// ErrInvalidOperand is the fault raised when an operand value is outside
	// its architectural range, such as a font digit above 0xF.
	ErrInvalidOperand = errors.New("invalid operand")
)
