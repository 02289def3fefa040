package vm

import (
	"errors"
	"fmt"
)

var (
	// ErrDecode is returned for instruction words that match no known instruction.
	ErrDecode = errors.New("unknown instruction")
	// ErrStackOverflow is returned when a call is made with a full call stack.
	ErrStackOverflow = errors.New("call stack overflow")
	// ErrStackUnderflow is returned when a return is made with an empty call stack.
	ErrStackUnderflow = errors.New("call stack underflow")
	// ErrProgramTooLarge is returned when a program image does not fit into the program space.
	ErrProgramTooLarge = errors.New("program too large")
	// ErrOutOfRange is returned when an instruction would access memory past MaxAddress.
	ErrOutOfRange = errors.New("memory access out of range")
	// ErrInvalidKey is returned for key indexes outside of 0x0-0xF.
	ErrInvalidKey = errors.New("invalid key index")
)

// Fault describes a fatal condition raised while executing an instruction.
// It unwraps to one of the package sentinel errors.
type Fault struct {
	Err     error  // sentinel error describing the fault kind
	PC      uint16 // address of the faulting instruction
	Opcode  uint16 // instruction word, 0 if the fetch itself failed
	Address uint16 // attempted target or memory address, if applicable
}

func (f *Fault) Error() string {
	switch {
	case errors.Is(f.Err, ErrDecode):
		return fmt.Sprintf("%s $%04X at $%03X", f.Err, f.Opcode, f.PC)
	case errors.Is(f.Err, ErrOutOfRange) && f.Opcode == 0:
		return fmt.Sprintf("%s: fetching instruction at $%04X", f.Err, f.PC)
	default:
		return fmt.Sprintf("%s: instruction $%04X at $%03X, address $%04X", f.Err, f.Opcode, f.PC, f.Address)
	}
}

// Unwrap returns the sentinel error of the fault.
func (f *Fault) Unwrap() error {
	return f.Err
}
