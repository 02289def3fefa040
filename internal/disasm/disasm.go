// Package disasm implements a control flow tracing CHIP-8 disassembler.
package disasm

import (
	"context"
	"fmt"
	"io"

	"github.com/retroenv/retrochip8/internal/symbols"
	"github.com/retroenv/retrochip8/internal/vm"
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/retrogolib/set"
)

// OffsetType describes the content of a program byte.
type OffsetType uint8

// Offset types.
const (
	DataOffset  OffsetType = iota // not reached by tracing
	CodeOffset                    // first byte of a traced instruction
	CodeOperand                   // second byte of a traced instruction
)

// Options of the disassembler.
type Options struct {
	HexComments    bool // output the instruction word as comment
	OffsetComments bool // output the address as comment
}

// NewOptions returns the default options.
func NewOptions() Options {
	return Options{
		HexComments:    true,
		OffsetComments: true,
	}
}

// Offset contains the disassembly result of a program byte.
type Offset struct {
	Address     uint16
	Type        OffsetType
	Instruction vm.Instruction // valid for CodeOffset
}

// Disasm traces the control flow of a program loaded at vm.ProgramStart.
type Disasm struct {
	logger  *log.Logger
	options Options

	program []byte
	offsets []Offset
	labels  *symbols.Manager[label]

	offsetsToParse      []uint16
	offsetsToParseAdded set.Set[uint16]
}

// New creates a new disassembler for the program image.
func New(logger *log.Logger, program []byte, options Options) *Disasm {
	dis := &Disasm{
		logger:              logger,
		options:             options,
		program:             program,
		offsets:             make([]Offset, len(program)),
		labels:              symbols.New[label](),
		offsetsToParseAdded: set.New[uint16](),
	}
	for i := range dis.offsets {
		dis.offsets[i].Address = vm.ProgramStart + uint16(i)
	}
	return dis
}

// Process traces the program and writes the disassembly to the writer.
func (dis *Disasm) Process(ctx context.Context, writer io.Writer) error {
	if err := dis.trace(ctx); err != nil {
		return err
	}
	dis.nameLabels()

	w := newWriter(dis, writer)
	if err := w.write(); err != nil {
		return fmt.Errorf("writing disassembly: %w", err)
	}
	return nil
}

// Offsets returns the traced program offsets, index 0 is vm.ProgramStart.
func (dis *Disasm) Offsets() []Offset {
	return dis.offsets
}

// inProgram returns whether a complete instruction at address lies inside the program.
func (dis *Disasm) inProgram(address uint16) bool {
	return address >= vm.ProgramStart && int(address-vm.ProgramStart)+1 < len(dis.program)
}

func (dis *Disasm) offsetInfo(address uint16) *Offset {
	return &dis.offsets[address-vm.ProgramStart]
}

// trace decodes all instructions reachable from vm.ProgramStart.
func (dis *Disasm) trace(ctx context.Context) error {
	dis.labels.Set(vm.ProgramStart, label{kind: entryLabel})
	dis.addAddressToParse(vm.ProgramStart)

	for len(dis.offsetsToParse) > 0 {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("tracing program: %w", err)
		}

		address := dis.offsetsToParse[0]
		dis.offsetsToParse = dis.offsetsToParse[1:]
		dis.processOffset(address)
	}
	return nil
}

func (dis *Disasm) addAddressToParse(address uint16) {
	if !dis.inProgram(address) || dis.offsetsToParseAdded.Contains(address) {
		return
	}
	dis.offsetsToParseAdded.Add(address)
	dis.offsetsToParse = append(dis.offsetsToParse, address)
}

func (dis *Disasm) processOffset(address uint16) {
	offsetInfo := dis.offsetInfo(address)
	if offsetInfo.Type != DataOffset {
		return // already decoded or inside an instruction
	}
	next := dis.offsetInfo(address + 1)
	if next.Type != DataOffset {
		dis.logger.Debug("Instruction overlaps decoded code", log.Hex("address", address))
		return
	}

	i := int(address - vm.ProgramStart)
	word := uint16(dis.program[i])<<8 | uint16(dis.program[i+1])
	ins, err := vm.Decode(word)
	if err != nil {
		dis.logger.Debug("Unknown instruction reached", log.Hex("address", address), log.Hex("opcode", word))
		return
	}

	offsetInfo.Type = CodeOffset
	offsetInfo.Instruction = ins
	next.Type = CodeOperand
	dis.labels.MarkUsed(address)

	dis.handleControlFlow(address, ins)
}
