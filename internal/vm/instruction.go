package vm

import (
	"fmt"

	"github.com/retroenv/retrogolib/arch/cpu/chip8"
)

// Op identifies the shape of a decoded instruction.
type Op uint8

// Instruction shapes. The zero value OpInvalid is never returned by a successful decode.
const (
	OpInvalid    Op = iota
	OpNop           // 0000
	OpCls           // 00E0
	OpRet           // 00EE
	OpJp            // 1nnn
	OpCall          // 2nnn
	OpSeImm         // 3xnn
	OpSneImm        // 4xnn
	OpSeReg         // 5xy0
	OpLdImm         // 6xnn
	OpAddImm        // 7xnn
	OpLdReg         // 8xy0
	OpOr            // 8xy1
	OpAnd           // 8xy2
	OpXor           // 8xy3
	OpAddReg        // 8xy4
	OpSub           // 8xy5
	OpShr           // 8xy6
	OpSubn          // 8xy7
	OpShl           // 8xyE
	OpSneReg        // 9xy0
	OpLdIndex       // Annn
	OpJpOffset      // Bnnn
	OpRnd           // Cxnn
	OpDrw           // Dxyn
	OpSkp           // Ex9E
	OpSknp          // ExA1
	OpLdDelay       // Fx07
	OpWaitKey       // Fx0A
	OpStoreDelay    // Fx15
	OpStoreSound    // Fx18
	OpAddIndex      // Fx1E
	OpLdFont        // Fx29
	OpBcd           // Fx33
	OpStoreRegs     // Fx55
	OpLoadRegs      // Fx65
)

const nopName = "nop"

// mnemonics maps the instruction shapes to the CHIP-8 instruction set definitions.
// Several shapes share a mnemonic and only differ in their operands.
var mnemonics = map[Op]*chip8.Instruction{
	OpCls:        chip8.Cls,
	OpRet:        chip8.Ret,
	OpJp:         chip8.Jp,
	OpCall:       chip8.Call,
	OpSeImm:      chip8.Se,
	OpSneImm:     chip8.Sne,
	OpSeReg:      chip8.Se,
	OpLdImm:      chip8.Ld,
	OpAddImm:     chip8.Add,
	OpLdReg:      chip8.Ld,
	OpOr:         chip8.Or,
	OpAnd:        chip8.And,
	OpXor:        chip8.Xor,
	OpAddReg:     chip8.Add,
	OpSub:        chip8.Sub,
	OpShr:        chip8.Shr,
	OpSubn:       chip8.Subn,
	OpShl:        chip8.Shl,
	OpSneReg:     chip8.Sne,
	OpLdIndex:    chip8.Ld,
	OpJpOffset:   chip8.Jp,
	OpRnd:        chip8.Rnd,
	OpDrw:        chip8.Drw,
	OpSkp:        chip8.Skp,
	OpSknp:       chip8.Sknp,
	OpLdDelay:    chip8.Ld,
	OpWaitKey:    chip8.Ld,
	OpStoreDelay: chip8.Ld,
	OpStoreSound: chip8.Ld,
	OpAddIndex:   chip8.Add,
	OpLdFont:     chip8.Ld,
	OpBcd:        chip8.Ld,
	OpStoreRegs:  chip8.Ld,
	OpLoadRegs:   chip8.Ld,
}

// Instruction is a decoded instruction word with its operand fields extracted.
// Fields that the shape does not use are still filled from the word.
type Instruction struct {
	Op     Op
	Opcode uint16 // raw instruction word
	X      uint8  // register index from the second nibble
	Y      uint8  // register index from the third nibble
	N      uint8  // lowest nibble
	NN     uint8  // lowest byte
	NNN    uint16 // lowest 12 bits
}

// Decode classifies an instruction word into one instruction shape.
// It returns an error wrapping ErrDecode for words that match no known shape.
func Decode(word uint16) (Instruction, error) {
	ins := Instruction{
		Opcode: word,
		X:      uint8(word>>8) & 0xF,
		Y:      uint8(word>>4) & 0xF,
		N:      uint8(word) & 0xF,
		NN:     uint8(word),
		NNN:    word & 0x0FFF,
	}
	ins.Op = decodeOp(word, ins.N, ins.NN)
	if ins.Op == OpInvalid {
		return ins, fmt.Errorf("%w $%04X", ErrDecode, word)
	}
	return ins, nil
}

func decodeOp(word uint16, n, nn uint8) Op {
	switch word >> 12 {
	case 0x0:
		switch word {
		case 0x0000:
			return OpNop
		case 0x00E0:
			return OpCls
		case 0x00EE:
			return OpRet
		}
	case 0x1:
		return OpJp
	case 0x2:
		return OpCall
	case 0x3:
		return OpSeImm
	case 0x4:
		return OpSneImm
	case 0x5:
		if n == 0 {
			return OpSeReg
		}
	case 0x6:
		return OpLdImm
	case 0x7:
		return OpAddImm
	case 0x8:
		return decodeArithmetic(n)
	case 0x9:
		if n == 0 {
			return OpSneReg
		}
	case 0xA:
		return OpLdIndex
	case 0xB:
		return OpJpOffset
	case 0xC:
		return OpRnd
	case 0xD:
		return OpDrw
	case 0xE:
		switch nn {
		case 0x9E:
			return OpSkp
		case 0xA1:
			return OpSknp
		}
	case 0xF:
		return decodeMisc(nn)
	}
	return OpInvalid
}

func decodeArithmetic(n uint8) Op {
	switch n {
	case 0x0:
		return OpLdReg
	case 0x1:
		return OpOr
	case 0x2:
		return OpAnd
	case 0x3:
		return OpXor
	case 0x4:
		return OpAddReg
	case 0x5:
		return OpSub
	case 0x6:
		return OpShr
	case 0x7:
		return OpSubn
	case 0xE:
		return OpShl
	default:
		return OpInvalid
	}
}

func decodeMisc(nn uint8) Op {
	switch nn {
	case 0x07:
		return OpLdDelay
	case 0x0A:
		return OpWaitKey
	case 0x15:
		return OpStoreDelay
	case 0x18:
		return OpStoreSound
	case 0x1E:
		return OpAddIndex
	case 0x29:
		return OpLdFont
	case 0x33:
		return OpBcd
	case 0x55:
		return OpStoreRegs
	case 0x65:
		return OpLoadRegs
	default:
		return OpInvalid
	}
}

// Name returns the mnemonic of the instruction.
func (i Instruction) Name() string {
	if i.Op == OpNop {
		return nopName
	}
	ins, ok := mnemonics[i.Op]
	if !ok {
		return ""
	}
	return ins.Name
}

// String returns the instruction in assembler syntax, for example "ld V0, $05".
func (i Instruction) String() string {
	name := i.Name()
	if name == "" {
		return fmt.Sprintf("$%04X", i.Opcode)
	}
	if params := i.params(); params != "" {
		return fmt.Sprintf("%s %s", name, params)
	}
	return name
}

func (i Instruction) params() string {
	switch i.Op {
	case OpJp, OpCall:
		return fmt.Sprintf("$%03X", i.NNN)
	case OpJpOffset:
		return fmt.Sprintf("V0, $%03X", i.NNN)
	case OpSeImm, OpSneImm, OpLdImm, OpAddImm, OpRnd:
		return fmt.Sprintf("V%X, $%02X", i.X, i.NN)
	case OpSeReg, OpSneReg, OpLdReg, OpOr, OpAnd, OpXor, OpAddReg, OpSub, OpSubn:
		return fmt.Sprintf("V%X, V%X", i.X, i.Y)
	case OpShr, OpShl, OpSkp, OpSknp:
		return fmt.Sprintf("V%X", i.X)
	case OpLdIndex:
		return fmt.Sprintf("I, $%03X", i.NNN)
	case OpDrw:
		return fmt.Sprintf("V%X, V%X, $%X", i.X, i.Y, i.N)
	case OpLdDelay:
		return fmt.Sprintf("V%X, DT", i.X)
	case OpWaitKey:
		return fmt.Sprintf("V%X, K", i.X)
	case OpStoreDelay:
		return fmt.Sprintf("DT, V%X", i.X)
	case OpStoreSound:
		return fmt.Sprintf("ST, V%X", i.X)
	case OpAddIndex:
		return fmt.Sprintf("I, V%X", i.X)
	case OpLdFont:
		return fmt.Sprintf("F, V%X", i.X)
	case OpBcd:
		return fmt.Sprintf("B, V%X", i.X)
	case OpStoreRegs:
		return fmt.Sprintf("[I], V%X", i.X)
	case OpLoadRegs:
		return fmt.Sprintf("V%X, [I]", i.X)
	default:
		return ""
	}
}

// IsJump returns true for unconditional jumps with a static target.
func (i Instruction) IsJump() bool {
	return i.Op == OpJp
}

// IsIndirectJump returns true for jumps whose target depends on a register.
func (i Instruction) IsIndirectJump() bool {
	return i.Op == OpJpOffset
}

// IsCall returns true if the instruction calls a subroutine.
func (i Instruction) IsCall() bool {
	return i.Op == OpCall
}

// IsReturn returns true if the instruction returns from a subroutine.
func (i Instruction) IsReturn() bool {
	return i.Op == OpRet
}

// IsSkip returns true if the instruction conditionally skips the next instruction.
func (i Instruction) IsSkip() bool {
	switch i.Op {
	case OpSeImm, OpSneImm, OpSeReg, OpSneReg, OpSkp, OpSknp:
		return true
	default:
		return false
	}
}

// IsDataReference returns true if the instruction loads a memory address into I.
func (i Instruction) IsDataReference() bool {
	return i.Op == OpLdIndex
}

// Target returns the address operand of jump, call and index load instructions.
func (i Instruction) Target() (uint16, bool) {
	switch i.Op {
	case OpJp, OpCall, OpLdIndex, OpJpOffset:
		return i.NNN, true
	default:
		return 0, false
	}
}
