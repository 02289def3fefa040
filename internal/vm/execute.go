package vm

import "errors"

// Cycle fetches, decodes and executes one instruction.
// A returned error is a *Fault; the machine stays halted on it until Reset.
func (m *Machine) Cycle() error {
	if m.fault != nil {
		return m.fault
	}

	pc := m.pc
	word, err := m.Peek(pc)
	if err != nil {
		return m.halt(&Fault{Err: ErrOutOfRange, PC: pc, Address: pc})
	}
	m.pc += opcodeSize

	ins, err := Decode(word)
	if err != nil {
		m.pc = pc
		return m.halt(&Fault{Err: ErrDecode, PC: pc, Opcode: word})
	}

	if err := m.execute(ins); err != nil {
		var fault *Fault
		if !errors.As(err, &fault) {
			fault = &Fault{Err: err}
		}
		fault.PC = pc
		fault.Opcode = word
		m.pc = pc
		return m.halt(fault)
	}
	return nil
}

func (m *Machine) halt(fault *Fault) error {
	m.fault = fault
	return fault
}

// execute applies the semantics of a decoded instruction. The program counter
// already points to the following instruction.
//
//nolint:funlen // one case per instruction shape
func (m *Machine) execute(ins Instruction) error {
	x, y := ins.X, ins.Y

	switch ins.Op {
	case OpNop:

	case OpCls:
		m.display = Display{}
		m.redraw = true

	case OpRet:
		return m.ret()

	case OpJp:
		m.pc = ins.NNN

	case OpCall:
		return m.call(ins.NNN)

	case OpSeImm:
		m.skipIf(m.v[x] == ins.NN)

	case OpSneImm:
		m.skipIf(m.v[x] != ins.NN)

	case OpSeReg:
		m.skipIf(m.v[x] == m.v[y])

	case OpSneReg:
		m.skipIf(m.v[x] != m.v[y])

	case OpLdImm:
		m.v[x] = ins.NN

	case OpAddImm:
		m.v[x] += ins.NN

	case OpLdReg:
		m.v[x] = m.v[y]

	case OpOr:
		m.v[x] |= m.v[y]
		m.resetFlagQuirk()

	case OpAnd:
		m.v[x] &= m.v[y]
		m.resetFlagQuirk()

	case OpXor:
		m.v[x] ^= m.v[y]
		m.resetFlagQuirk()

	case OpAddReg:
		sum := uint16(m.v[x]) + uint16(m.v[y])
		m.v[x] = uint8(sum)
		m.v[flagRegister] = boolToByte(sum > 0xFF)

	case OpSub:
		vx, vy := m.v[x], m.v[y]
		m.v[x] = vx - vy
		m.v[flagRegister] = boolToByte(vx >= vy)

	case OpSubn:
		vx, vy := m.v[x], m.v[y]
		m.v[x] = vy - vx
		m.v[flagRegister] = boolToByte(vy >= vx)

	case OpShr:
		src := m.shiftSource(ins)
		m.v[x] = src >> 1
		m.v[flagRegister] = src & 0x01

	case OpShl:
		src := m.shiftSource(ins)
		m.v[x] = src << 1
		m.v[flagRegister] = src >> 7

	case OpLdIndex:
		m.index = ins.NNN

	case OpJpOffset:
		offset := m.v[0]
		if m.quirks.JumpOffsetUsesVX {
			offset = m.v[x]
		}
		m.pc = ins.NNN + uint16(offset)

	case OpRnd:
		m.v[x] = uint8(m.rng.UintN(256)) & ins.NN

	case OpDrw:
		return m.draw(m.v[x], m.v[y], ins.N)

	case OpSkp:
		m.skipIf(m.keys[m.v[x]&0xF])

	case OpSknp:
		m.skipIf(!m.keys[m.v[x]&0xF])

	case OpLdDelay:
		m.v[x] = m.delayTimer

	case OpWaitKey:
		m.waitKey(x)

	case OpStoreDelay:
		m.delayTimer = m.v[x]

	case OpStoreSound:
		m.soundTimer = m.v[x]

	case OpAddIndex:
		m.index += uint16(m.v[x])

	case OpLdFont:
		m.index = FontAddress + FontGlyphSize*uint16(m.v[x]&0xF)

	case OpBcd:
		return m.storeBCD(m.v[x])

	case OpStoreRegs:
		return m.storeRegisters(x)

	case OpLoadRegs:
		return m.loadRegisters(x)

	default:
		return ErrDecode
	}
	return nil
}

func (m *Machine) call(address uint16) error {
	if int(m.sp) >= StackSize {
		return &Fault{Err: ErrStackOverflow, Address: address}
	}
	m.stack[m.sp] = m.pc
	m.sp++
	m.pc = address
	return nil
}

func (m *Machine) ret() error {
	if m.sp == 0 {
		return &Fault{Err: ErrStackUnderflow, Address: m.pc}
	}
	m.sp--
	m.pc = m.stack[m.sp]
	return nil
}

func (m *Machine) skipIf(condition bool) {
	if condition {
		m.pc += opcodeSize
	}
}

func (m *Machine) shiftSource(ins Instruction) uint8 {
	if m.quirks.ShiftUsesVY {
		return m.v[ins.Y]
	}
	return m.v[ins.X]
}

func (m *Machine) resetFlagQuirk() {
	if m.quirks.LogicResetsFlag {
		m.v[flagRegister] = 0
	}
}

// waitKey stores the lowest pressed key in Vx. Without a pressed key the
// program counter is moved back so that the instruction executes again.
func (m *Machine) waitKey(x uint8) {
	for key, pressed := range m.keys {
		if pressed {
			m.v[x] = uint8(key)
			return
		}
	}
	m.pc -= opcodeSize
}

// draw XORs an 8 pixel wide sprite of the given height read from I onto the
// display. Pixels wrap around both display edges. VF is set to 1 if a lit
// pixel was turned off. Sprite rows past MaxAddress fault with ErrOutOfRange
// before any pixel or VF changes, memory does not wrap.
func (m *Machine) draw(vx, vy, height uint8) error {
	if err := m.checkRange(m.index, int(height)); err != nil {
		return err
	}

	x0 := int(vx) % DisplayWidth
	y0 := int(vy) % DisplayHeight
	var collision bool

	for row := range int(height) {
		bits := m.memory[int(m.index)+row]
		y := (y0 + row) % DisplayHeight

		for col := range 8 {
			if bits&(0x80>>col) == 0 {
				continue
			}
			x := (x0 + col) % DisplayWidth
			if m.display.xorPixel(x, y) {
				collision = true
			}
		}
	}

	m.v[flagRegister] = boolToByte(collision)
	m.redraw = true
	return nil
}

// storeBCD writes the hundreds, tens and ones digits of value to I, I+1 and I+2.
func (m *Machine) storeBCD(value uint8) error {
	if err := m.checkRange(m.index, 3); err != nil {
		return err
	}
	m.memory[m.index] = value / 100
	m.memory[m.index+1] = value / 10 % 10
	m.memory[m.index+2] = value % 10
	return nil
}

func (m *Machine) storeRegisters(x uint8) error {
	count := int(x) + 1
	if err := m.checkRange(m.index, count); err != nil {
		return err
	}
	copy(m.memory[m.index:], m.v[:count])
	if m.quirks.LoadStoreIncrementsIndex {
		m.index += uint16(count)
	}
	return nil
}

func (m *Machine) loadRegisters(x uint8) error {
	count := int(x) + 1
	if err := m.checkRange(m.index, count); err != nil {
		return err
	}
	copy(m.v[:count], m.memory[m.index:])
	if m.quirks.LoadStoreIncrementsIndex {
		m.index += uint16(count)
	}
	return nil
}

// checkRange returns a fault if length bytes starting at address do not fit into memory.
func (m *Machine) checkRange(address uint16, length int) error {
	if length > 0 && int(address)+length > MemorySize {
		return &Fault{Err: ErrOutOfRange, Address: address}
	}
	return nil
}

func boolToByte(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
