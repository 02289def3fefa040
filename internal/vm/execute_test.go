package vm

import (
	"errors"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

// exec decodes and executes a single instruction word without fetching it from memory.
func exec(t *testing.T, m *Machine, word uint16) {
	t.Helper()

	ins, err := Decode(word)
	assert.NoError(t, err)
	assert.NoError(t, m.execute(ins))
}

func TestLoadImmediate(t *testing.T) {
	m := New()
	for x := range uint16(RegisterCount) {
		for n := range uint16(256) {
			exec(t, m, 0x6000|x<<8|n)
			assert.Equal(t, uint8(n), m.v[x])
		}
	}
}

func TestAddImmediate(t *testing.T) {
	m := New()
	m.v[0] = 0xFF
	m.v[flagRegister] = 0x55

	exec(t, m, 0x7002)
	assert.Equal(t, uint8(0x01), m.v[0])
	assert.Equal(t, uint8(0x55), m.v[flagRegister])
}

func TestAddRegisterCarry(t *testing.T) {
	m := New()
	for a := range 256 {
		for b := range 256 {
			m.v[1] = uint8(a)
			m.v[2] = uint8(b)
			exec(t, m, 0x8124)

			assert.Equal(t, uint8((a+b)%256), m.v[1])
			assert.Equal(t, boolToByte(a+b > 255), m.v[flagRegister])
		}
	}
}

func TestSubRegisterBorrow(t *testing.T) {
	m := New()
	for a := range 256 {
		for b := range 256 {
			m.v[1] = uint8(a)
			m.v[2] = uint8(b)
			exec(t, m, 0x8125)

			assert.Equal(t, uint8((a-b+256)%256), m.v[1])
			assert.Equal(t, boolToByte(a >= b), m.v[flagRegister])
		}
	}
}

func TestSubReversedBorrow(t *testing.T) {
	m := New()
	for a := range 256 {
		for b := range 256 {
			m.v[1] = uint8(a)
			m.v[2] = uint8(b)
			exec(t, m, 0x8127)

			assert.Equal(t, uint8((b-a+256)%256), m.v[1])
			assert.Equal(t, boolToByte(b >= a), m.v[flagRegister])
		}
	}
}

func TestShift(t *testing.T) {
	m := New()

	m.v[1] = 0b00000011
	exec(t, m, 0x8106)
	assert.Equal(t, uint8(0b00000001), m.v[1])
	assert.Equal(t, uint8(1), m.v[flagRegister])

	m.v[1] = 0b00000010
	exec(t, m, 0x8106)
	assert.Equal(t, uint8(0b00000001), m.v[1])
	assert.Equal(t, uint8(0), m.v[flagRegister])

	m.v[1] = 0b10000001
	exec(t, m, 0x810E)
	assert.Equal(t, uint8(0b00000010), m.v[1])
	assert.Equal(t, uint8(1), m.v[flagRegister])

	m.v[1] = 0b01000000
	exec(t, m, 0x810E)
	assert.Equal(t, uint8(0b10000000), m.v[1])
	assert.Equal(t, uint8(0), m.v[flagRegister])
}

func TestFlagRegisterAsTarget(t *testing.T) {
	m := New()

	m.v[flagRegister] = 0xFF
	m.v[1] = 0x01
	exec(t, m, 0x8F14)
	assert.Equal(t, uint8(1), m.v[flagRegister])

	m.v[flagRegister] = 0x01
	m.v[1] = 0x02
	exec(t, m, 0x8F15)
	assert.Equal(t, uint8(0), m.v[flagRegister])
}

func TestLogicOperations(t *testing.T) {
	tests := []struct {
		name     string
		word     uint16
		expected uint8
	}{
		{"copy", 0x8120, 0b0101},
		{"or", 0x8121, 0b1111},
		{"and", 0x8122, 0b0000},
		{"xor", 0x8123, 0b1111},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New()
			m.v[1] = 0b1010
			m.v[2] = 0b0101
			m.v[flagRegister] = 0x55

			exec(t, m, tt.word)
			assert.Equal(t, tt.expected, m.v[1])
			assert.Equal(t, uint8(0x55), m.v[flagRegister])
		})
	}
}

//nolint:funlen // test functions can be long
func TestSkips(t *testing.T) {
	tests := []struct {
		name  string
		word  uint16
		setup func(m *Machine)
		skip  bool
	}{
		{"se imm equal", 0x3142, func(m *Machine) { m.v[1] = 0x42 }, true},
		{"se imm not equal", 0x3142, func(m *Machine) { m.v[1] = 0x41 }, false},
		{"sne imm equal", 0x4142, func(m *Machine) { m.v[1] = 0x42 }, false},
		{"sne imm not equal", 0x4142, func(m *Machine) { m.v[1] = 0x41 }, true},
		{"se reg equal", 0x5120, func(m *Machine) { m.v[1], m.v[2] = 7, 7 }, true},
		{"se reg not equal", 0x5120, func(m *Machine) { m.v[1], m.v[2] = 7, 8 }, false},
		{"sne reg equal", 0x9120, func(m *Machine) { m.v[1], m.v[2] = 7, 7 }, false},
		{"sne reg not equal", 0x9120, func(m *Machine) { m.v[1], m.v[2] = 7, 8 }, true},
		{"skp pressed", 0xE19E, func(m *Machine) { m.v[1] = 0xA; m.keys[0xA] = true }, true},
		{"skp released", 0xE19E, func(m *Machine) { m.v[1] = 0xA }, false},
		{"sknp pressed", 0xE1A1, func(m *Machine) { m.v[1] = 0xA; m.keys[0xA] = true }, false},
		{"sknp released", 0xE1A1, func(m *Machine) { m.v[1] = 0xA }, true},
		{"skp uses low nibble", 0xE19E, func(m *Machine) { m.v[1] = 0x1A; m.keys[0xA] = true }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestMachine(t, tt.word)
			tt.setup(m)
			runCycles(t, m, 1)

			expected := uint16(ProgramStart + 2)
			if tt.skip {
				expected += 2
			}
			assert.Equal(t, expected, m.State().PC)
		})
	}
}

func TestJumps(t *testing.T) {
	m := newTestMachine(t, 0x1456)
	runCycles(t, m, 1)
	assert.Equal(t, uint16(0x456), m.State().PC)

	m = newTestMachine(t, 0x6010, 0xB300)
	runCycles(t, m, 2)
	assert.Equal(t, uint16(0x310), m.State().PC)
}

func TestCallReturn(t *testing.T) {
	m := newTestMachine(t, 0x2300)
	m.memory[0x300] = 0x00
	m.memory[0x301] = 0xEE

	runCycles(t, m, 1)
	state := m.State()
	assert.Equal(t, uint16(0x300), state.PC)
	assert.Equal(t, uint8(1), state.SP)
	assert.Equal(t, []uint16{0x202}, state.Stack)

	runCycles(t, m, 1)
	state = m.State()
	assert.Equal(t, uint16(0x202), state.PC)
	assert.Equal(t, uint8(0), state.SP)
	assert.Empty(t, state.Stack)
}

func TestStackOverflow(t *testing.T) {
	m := newTestMachine(t, 0x2200) // calls itself
	runCycles(t, m, StackSize)
	assert.Equal(t, uint8(StackSize), m.State().SP)

	err := m.Cycle()
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrStackOverflow))

	var fault *Fault
	assert.True(t, errors.As(err, &fault))
	assert.Equal(t, uint16(0x200), fault.PC)
	assert.Equal(t, uint16(0x2200), fault.Opcode)
	assert.Equal(t, uint16(0x200), fault.Address)

	state := m.State()
	assert.Equal(t, uint16(0x200), state.PC)
	assert.Equal(t, uint8(StackSize), state.SP)

	// the machine stays halted until reset
	assert.Equal(t, err, m.Cycle())
	assert.Equal(t, err, m.Fault())

	m.Reset()
	assert.Nil(t, m.Fault())
}

func TestStackUnderflow(t *testing.T) {
	m := newTestMachine(t, 0x00EE)

	err := m.Cycle()
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrStackUnderflow))
	assert.Equal(t, uint16(ProgramStart), m.State().PC)
}

func TestDecodeFault(t *testing.T) {
	m := newTestMachine(t, 0x6001, 0xFFFF)
	runCycles(t, m, 1)

	err := m.Cycle()
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrDecode))
	assert.Contains(t, err.Error(), "$FFFF")
	assert.Contains(t, err.Error(), "$202")

	var fault *Fault
	assert.True(t, errors.As(err, &fault))
	assert.Equal(t, uint16(0x202), fault.PC)
	assert.Equal(t, uint16(0xFFFF), fault.Opcode)
	assert.Equal(t, uint16(0x202), m.State().PC)
}

//nolint:funlen // test functions can be long
func TestOutOfRange(t *testing.T) {
	tests := []struct {
		name  string
		words []uint16
		setup func(m *Machine)
	}{
		{"bcd past end", []uint16{0xAFFE, 0xF033}, nil},
		{"store registers past end", []uint16{0xAFF1, 0xFF55}, nil},
		{"load registers past end", []uint16{0xAFFF, 0xF165}, nil},
		{"sprite past end", []uint16{0xAFFE, 0xD003}, nil},
		{"index wrapped past end", []uint16{0xF01E, 0xF033}, func(m *Machine) {
			m.index = 0xFFF0
			m.v[0] = 0x0F
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestMachine(t, tt.words...)
			if tt.setup != nil {
				tt.setup(m)
			}
			memory := m.memory
			registers := m.v
			runCycles(t, m, 1)

			err := m.Cycle()
			assert.Error(t, err)
			assert.True(t, errors.Is(err, ErrOutOfRange))
			assert.Equal(t, memory, m.memory)
			assert.Equal(t, registers, m.v)
			display := m.Display()
			assert.Equal(t, 0, display.Lit())
		})
	}
}

func TestDrawOutOfRange(t *testing.T) {
	m := newTestMachine(t, 0xAFFE, 0xD013)
	m.v[flagRegister] = 0x7
	runCycles(t, m, 1)

	err := m.Cycle()
	assert.True(t, errors.Is(err, ErrOutOfRange))

	var fault *Fault
	assert.True(t, errors.As(err, &fault))
	assert.Equal(t, uint16(0xD013), fault.Opcode)
	assert.Equal(t, uint16(0x202), fault.PC)
	assert.Equal(t, uint16(0xFFE), fault.Address)
	assert.Equal(t, uint8(0x7), m.v[flagRegister])
	assert.False(t, m.Redraw())

	// two rows still fit
	m = newTestMachine(t, 0xAFFE, 0xD012)
	runCycles(t, m, 2)
	assert.True(t, m.Redraw())
}

func TestRegisterBlockFitsExactly(t *testing.T) {
	m := newTestMachine(t, 0xAFF0, 0xFF55, 0xAFF0, 0xFF65)
	for i := range RegisterCount {
		m.v[i] = uint8(i + 1)
	}

	runCycles(t, m, 4)
	assert.Equal(t, byte(16), m.memory[0xFFF])
	assert.Equal(t, uint8(16), m.v[0xF])
}

func TestFetchOutOfRange(t *testing.T) {
	m := newTestMachine(t, 0x1FFF)
	runCycles(t, m, 1)

	err := m.Cycle()
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrOutOfRange))

	var fault *Fault
	assert.True(t, errors.As(err, &fault))
	assert.Equal(t, uint16(0xFFF), fault.PC)
	assert.True(t, strings.Contains(err.Error(), "fetching instruction"))

	m = newTestMachine(t, 0x60FF, 0xBFFF)
	runCycles(t, m, 2)
	assert.Equal(t, uint16(0x10FE), m.State().PC)
	assert.True(t, errors.Is(m.Cycle(), ErrOutOfRange))
}

func TestDrawIsSelfInverse(t *testing.T) {
	m := newTestMachine(t,
		0x600A, // ld V0, $0A
		0x6105, // ld V1, $05
		0xA000, // ld I, glyph 0
		0xD015, // drw V0, V1, $5
		0xD015, // drw V0, V1, $5
	)
	runCycles(t, m, 4)
	assert.Equal(t, uint8(0), m.v[flagRegister])
	display := m.Display()
	assert.Equal(t, 14, display.Lit())
	assert.True(t, display.Pixel(10, 5))
	assert.True(t, display.Pixel(13, 5))
	assert.False(t, display.Pixel(11, 6))

	runCycles(t, m, 1)
	assert.Equal(t, uint8(1), m.v[flagRegister])
	display = m.Display()
	assert.Equal(t, 0, display.Lit())
}

func TestDrawCollisionPartial(t *testing.T) {
	m := newTestMachine(t, 0xD011, 0x6002, 0xD011)
	m.index = 0x300
	m.memory[0x300] = 0xF0

	runCycles(t, m, 1)
	assert.Equal(t, uint8(0), m.v[flagRegister])

	runCycles(t, m, 2)
	assert.Equal(t, uint8(1), m.v[flagRegister])
	display := m.Display()
	assert.Equal(t, 4, display.Lit())
	assert.True(t, display.Pixel(0, 0))
	assert.False(t, display.Pixel(2, 0))
	assert.False(t, display.Pixel(3, 0))
	assert.True(t, display.Pixel(5, 0))
}

func TestDrawWraparound(t *testing.T) {
	m := newTestMachine(t,
		0x603F, // ld V0, 63
		0x611F, // ld V1, 31
		0xA300, // ld I, $300
		0xD012, // drw V0, V1, $2
	)
	m.memory[0x300] = 0xFF
	m.memory[0x301] = 0x80

	runCycles(t, m, 4)
	display := m.Display()
	assert.Equal(t, 9, display.Lit())
	assert.True(t, display.Pixel(63, 31))
	for x := range 7 {
		assert.True(t, display.Pixel(x, 31))
	}
	assert.False(t, display.Pixel(7, 31))
	assert.True(t, display.Pixel(63, 0))
	assert.False(t, display.Pixel(0, 0))
	assert.Equal(t, uint8(0), m.v[flagRegister])
}

func TestDrawStartPositionWraps(t *testing.T) {
	m := newTestMachine(t, 0x6043, 0x6122, 0xA300, 0xD011)
	m.memory[0x300] = 0x80

	runCycles(t, m, 4)
	display := m.Display()
	assert.Equal(t, 1, display.Lit())
	assert.True(t, display.Pixel(3, 2))
}

func TestClearScreen(t *testing.T) {
	m := newTestMachine(t, 0xA000, 0xD005, 0x00E0)
	runCycles(t, m, 2)
	display := m.Display()
	assert.True(t, display.Lit() > 0)

	runCycles(t, m, 1)
	display = m.Display()
	assert.Equal(t, 0, display.Lit())
}

func TestScenarioAddition(t *testing.T) {
	m := newTestMachine(t, 0x00E0, 0x6005, 0x6103, 0x8014)
	runCycles(t, m, 4)

	state := m.State()
	assert.Equal(t, uint8(8), state.V[0])
	assert.Equal(t, uint8(0), state.V[flagRegister])
	assert.Equal(t, uint16(0x208), state.PC)
	display := m.Display()
	assert.Equal(t, 0, display.Lit())
}

func TestWaitKey(t *testing.T) {
	m := newTestMachine(t, 0xF30A)

	for range 3 {
		runCycles(t, m, 1)
		assert.Equal(t, uint16(ProgramStart), m.State().PC)
	}

	assert.NoError(t, m.SetKey(9, true))
	assert.NoError(t, m.SetKey(5, true))
	runCycles(t, m, 1)
	assert.Equal(t, uint16(ProgramStart+2), m.State().PC)
	assert.Equal(t, uint8(5), m.v[3])
}

func TestTimerRegisters(t *testing.T) {
	m := newTestMachine(t, 0x6009, 0xF015, 0xF118, 0xF207)
	m.v[1] = 3

	runCycles(t, m, 3)
	m.TickTimers()
	runCycles(t, m, 1)

	assert.Equal(t, uint8(8), m.v[2])
	assert.Equal(t, uint8(2), m.State().SoundTimer)
}

func TestIndexInstructions(t *testing.T) {
	m := New()

	exec(t, m, 0xA123)
	assert.Equal(t, uint16(0x123), m.index)

	m.v[0] = 0x10
	exec(t, m, 0xF01E)
	assert.Equal(t, uint16(0x133), m.index)

	m.index = 0xFFFF
	m.v[0] = 2
	exec(t, m, 0xF01E)
	assert.Equal(t, uint16(0x0001), m.index)

	m.v[0] = 0x1A
	exec(t, m, 0xF029)
	assert.Equal(t, uint16(FontAddress+5*0xA), m.index)
}

func TestBCD(t *testing.T) {
	tests := []struct {
		value    uint8
		expected [3]byte
	}{
		{0, [3]byte{0, 0, 0}},
		{7, [3]byte{0, 0, 7}},
		{42, [3]byte{0, 4, 2}},
		{254, [3]byte{2, 5, 4}},
		{255, [3]byte{2, 5, 5}},
	}

	for _, tt := range tests {
		m := New()
		m.index = 0x300
		m.v[4] = tt.value
		exec(t, m, 0xF433)
		assert.Equal(t, tt.expected, [3]byte(m.memory[0x300:0x303]))
		assert.Equal(t, uint16(0x300), m.index)
	}
}

func TestRegisterBlockTransfer(t *testing.T) {
	m := New()
	m.index = 0x300
	m.v = [RegisterCount]uint8{1, 2, 3, 4, 5}

	exec(t, m, 0xF355)
	assert.Equal(t, []byte{1, 2, 3, 4, 0}, m.memory[0x300:0x305])
	assert.Equal(t, uint16(0x300), m.index)

	m.v = [RegisterCount]uint8{}
	m.v[4] = 9
	exec(t, m, 0xF365)
	assert.Equal(t, [RegisterCount]uint8{1, 2, 3, 4, 9}, m.v)
	assert.Equal(t, uint16(0x300), m.index)
}

func TestRandom(t *testing.T) {
	m := New(WithSeed(42))
	for range 100 {
		exec(t, m, 0xC000)
		assert.Equal(t, uint8(0), m.v[0])

		exec(t, m, 0xC00F)
		assert.Equal(t, uint8(0), m.v[0]&0xF0)
	}

	m = New(WithSeed(7))
	expected := rand.New(rand.NewPCG(7, 7))
	for range 10 {
		exec(t, m, 0xC1FF)
		assert.Equal(t, uint8(expected.UintN(256)), m.v[1])
	}
}

func TestNop(t *testing.T) {
	m := newTestMachine(t, 0x0000)
	before := m.State()

	runCycles(t, m, 1)
	after := m.State()
	assert.Equal(t, before.PC+2, after.PC)
	before.PC = after.PC
	assert.Equal(t, before, after)
}

//nolint:funlen // test functions can be long
func TestQuirks(t *testing.T) {
	t.Run("shift uses vy", func(t *testing.T) {
		m := New(WithQuirks(Quirks{ShiftUsesVY: true}))
		m.v[1] = 0xFF
		m.v[2] = 0b00000110
		exec(t, m, 0x8126)
		assert.Equal(t, uint8(0b00000011), m.v[1])
		assert.Equal(t, uint8(0), m.v[flagRegister])

		m.v[2] = 0b10000000
		exec(t, m, 0x812E)
		assert.Equal(t, uint8(0), m.v[1])
		assert.Equal(t, uint8(1), m.v[flagRegister])
	})

	t.Run("load store increments index", func(t *testing.T) {
		m := New(WithQuirks(Quirks{LoadStoreIncrementsIndex: true}))
		m.index = 0x300
		exec(t, m, 0xF255)
		assert.Equal(t, uint16(0x303), m.index)
		exec(t, m, 0xF065)
		assert.Equal(t, uint16(0x304), m.index)
	})

	t.Run("jump offset uses vx", func(t *testing.T) {
		m := New(WithQuirks(Quirks{JumpOffsetUsesVX: true}))
		m.v[0] = 0x01
		m.v[3] = 0x10
		exec(t, m, 0xB300)
		assert.Equal(t, uint16(0x310), m.pc)
	})

	t.Run("logic resets flag", func(t *testing.T) {
		m := New(WithQuirks(Quirks{LogicResetsFlag: true}))
		for _, word := range []uint16{0x8121, 0x8122, 0x8123} {
			m.v[flagRegister] = 1
			exec(t, m, word)
			assert.Equal(t, uint8(0), m.v[flagRegister])
		}
	})

	t.Run("reset keeps quirks", func(t *testing.T) {
		m := New(WithQuirks(Quirks{LogicResetsFlag: true}))
		m.Reset()
		assert.True(t, m.quirks.LogicResetsFlag)
	})
}

func TestFaultError(t *testing.T) {
	fault := &Fault{Err: ErrStackOverflow, PC: 0x204, Opcode: 0x2300, Address: 0x300}
	assert.Equal(t, "call stack overflow: instruction $2300 at $204, address $0300", fault.Error())
	assert.True(t, errors.Is(fault, ErrStackOverflow))
}
