// Package vm implements a CHIP-8 virtual machine.
//
// # Machine Model
//
// A Machine owns all emulated state:
//   - 4KB of memory, with the hexadecimal font at FontAddress and programs at ProgramStart
//   - 16 general-purpose 8-bit registers V0-VF, VF doubles as carry, borrow and collision flag
//   - the 16-bit index register I, the program counter and a 16 entry call stack
//   - a 64x32 monochrome display, the delay and sound timers and 16 key states
//
// # Execution
//
// Cycle fetches the big endian instruction word at the program counter, advances
// the program counter by 2, decodes the word into an Instruction and executes it.
// Skips advance the program counter by another 2, wait-key (Fx0A) moves it back
// by 2 while no key is pressed so that it executes again on the next cycle.
//
// Timers are not decremented by Cycle. The host calls TickTimers at 60 Hz and
// decides how many cycles to execute per second.
//
// # Flags
//
//   - 8xy4 sets VF to 1 on an 8-bit overflow
//   - 8xy5 and 8xy7 set VF to 1 if no borrow occurred
//   - 8xy6 and 8xyE set VF to the bit shifted out
//   - Dxyn sets VF to 1 if a lit pixel was turned off
//
// The flag is written after the result, an instruction that targets VF ends up
// with the flag value in VF.
//
// # Errors
//
// Fatal conditions are returned by Cycle as *Fault values that wrap one of the
// sentinel errors ErrDecode, ErrStackOverflow, ErrStackUnderflow or
// ErrOutOfRange. Instructions check their memory accesses before changing any
// state. A faulted machine returns the same fault from every following Cycle
// call until Reset is called.
//
// # Usage Example
//
//	m := vm.New()
//	if err := m.LoadProgram(rom); err != nil {
//		return fmt.Errorf("loading program: %w", err)
//	}
//	for {
//		if err := m.Cycle(); err != nil {
//			return fmt.Errorf("executing program: %w", err)
//		}
//	}
package vm
