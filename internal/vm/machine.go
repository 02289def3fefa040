package vm

import (
	"fmt"
	"math/rand/v2"
)

// Quirks selects historical variants of instructions that CHIP-8 interpreters
// disagree on. The zero value selects the behavior most programs expect.
type Quirks struct {
	ShiftUsesVY              bool // 8xy6/8xyE shift Vy and store the result in Vx
	LoadStoreIncrementsIndex bool // Fx55/Fx65 leave I pointing past the last transferred register
	JumpOffsetUsesVX         bool // Bxnn jumps to xnn + Vx instead of nnn + V0
	LogicResetsFlag          bool // 8xy1/8xy2/8xy3 set VF to 0
}

// Option configures a Machine.
type Option func(*Machine)

// WithQuirks sets the instruction variants to emulate.
func WithQuirks(quirks Quirks) Option {
	return func(m *Machine) {
		m.quirks = quirks
	}
}

// WithSeed seeds the random number generator used by the rnd instruction,
// making the generated sequence reproducible.
func WithSeed(seed uint64) Option {
	return func(m *Machine) {
		m.rng = rand.New(rand.NewPCG(seed, seed))
	}
}

// Machine is a CHIP-8 virtual machine. It is not safe for concurrent use,
// all calls have to be serialized by the caller.
type Machine struct {
	pc    uint16
	index uint16
	sp    uint8
	stack [StackSize]uint16

	v      [RegisterCount]uint8
	memory [MemorySize]byte

	display Display
	redraw  bool

	delayTimer uint8
	soundTimer uint8

	keys [KeyCount]bool

	fault  error
	quirks Quirks
	rng    *rand.Rand
}

// New returns a new machine with the font loaded and the program counter at ProgramStart.
func New(options ...Option) *Machine {
	m := &Machine{}
	for _, option := range options {
		option(m)
	}
	if m.rng == nil {
		m.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	m.Reset()
	return m
}

// Reset restores the initial machine state in place. Loaded programs are
// cleared, the configured quirks and random generator are kept.
func (m *Machine) Reset() {
	m.pc = ProgramStart
	m.index = 0
	m.sp = 0
	m.stack = [StackSize]uint16{}
	m.v = [RegisterCount]uint8{}
	m.memory = [MemorySize]byte{}
	m.display = Display{}
	m.redraw = false
	m.delayTimer = 0
	m.soundTimer = 0
	m.keys = [KeyCount]bool{}
	m.fault = nil

	copy(m.memory[FontAddress:], font[:])
}

// LoadProgram copies a program image into memory at ProgramStart.
func (m *Machine) LoadProgram(program []byte) error {
	if len(program) > MaxProgramSize {
		return fmt.Errorf("%w: %d bytes exceed the maximum of %d bytes", ErrProgramTooLarge, len(program), MaxProgramSize)
	}
	copy(m.memory[ProgramStart:], program)
	return nil
}

// SetKey sets the pressed state of the key with the given index 0x0-0xF.
func (m *Machine) SetKey(index int, pressed bool) error {
	if index < 0 || index >= KeyCount {
		return fmt.Errorf("%w: %d", ErrInvalidKey, index)
	}
	m.keys[index] = pressed
	return nil
}

// KeyPressed reports whether the key is pressed. Invalid indexes report false.
func (m *Machine) KeyPressed(index int) bool {
	return index >= 0 && index < KeyCount && m.keys[index]
}

// Display returns a copy of the current display content.
func (m *Machine) Display() Display {
	return m.display
}

// Redraw reports whether the display changed since the last call.
func (m *Machine) Redraw() bool {
	redraw := m.redraw
	m.redraw = false
	return redraw
}

// TickTimers decrements the delay and sound timers, stopping at 0.
// It is expected to be called at 60 Hz independent of the instruction rate.
func (m *Machine) TickTimers() {
	if m.delayTimer > 0 {
		m.delayTimer--
	}
	if m.soundTimer > 0 {
		m.soundTimer--
	}
}

// SoundActive returns whether the sound timer is running and a tone should be played.
func (m *Machine) SoundActive() bool {
	return m.soundTimer > 0
}

// Fault returns the fatal error that halted the machine, or nil.
func (m *Machine) Fault() error {
	return m.fault
}

// Peek returns the big endian instruction word at the given address without executing it.
func (m *Machine) Peek(address uint16) (uint16, error) {
	if address > MaxAddress-1 {
		return 0, fmt.Errorf("%w: reading word at $%04X", ErrOutOfRange, address)
	}
	return uint16(m.memory[address])<<8 | uint16(m.memory[address+1]), nil
}

// State is a snapshot of the machine registers for diagnostics.
type State struct {
	PC         uint16
	I          uint16
	SP         uint8
	Stack      []uint16 // return addresses in use, oldest first
	V          [RegisterCount]uint8
	DelayTimer uint8
	SoundTimer uint8
}

// State returns a snapshot of the current register state.
func (m *Machine) State() State {
	stack := make([]uint16, m.sp)
	copy(stack, m.stack[:m.sp])

	return State{
		PC:         m.pc,
		I:          m.index,
		SP:         m.sp,
		Stack:      stack,
		V:          m.v,
		DelayTimer: m.delayTimer,
		SoundTimer: m.soundTimer,
	}
}
