package disasm

import (
	"fmt"

	"github.com/retroenv/retrochip8/internal/vm"
)

const (
	funcNaming  = "_func_%03x"
	labelNaming = "_label_%03x"
	dataNaming  = "_data_%03x"
	entryName   = "start"
)

type labelKind uint8

const (
	dataLabel labelKind = iota
	jumpLabel
	callLabel
	entryLabel
)

type label struct {
	kind labelKind
	name string
}

// handleControlFlow queues the successors of a decoded instruction.
func (dis *Disasm) handleControlFlow(address uint16, ins vm.Instruction) {
	next := address + 2

	switch {
	case ins.IsJump():
		target, _ := ins.Target()
		dis.addLabel(target, jumpLabel)
		dis.addAddressToParse(target)

	case ins.IsIndirectJump(), ins.IsReturn():
		// the path ends, an indirect target depends on register values

	case ins.IsCall():
		target, _ := ins.Target()
		dis.addLabel(target, callLabel)
		dis.addAddressToParse(target)
		dis.addAddressToParse(next)

	case ins.IsSkip():
		dis.addAddressToParse(next)
		dis.addAddressToParse(next + 2)

	case ins.IsDataReference():
		target, _ := ins.Target()
		dis.addLabel(target, dataLabel)
		dis.addAddressToParse(next)

	default:
		dis.addAddressToParse(next)
	}
}

// addLabel adds a label for a referenced address inside the program. A stronger
// kind replaces a weaker one: calls over jumps and jumps over data.
func (dis *Disasm) addLabel(address uint16, kind labelKind) {
	if address < vm.ProgramStart || int(address-vm.ProgramStart) >= len(dis.program) {
		return
	}
	if existing, ok := dis.labels.Get(address); ok && existing.kind >= kind {
		return
	}
	dis.labels.Set(address, label{kind: kind})
}

// nameLabels assigns the final names to all labels.
func (dis *Disasm) nameLabels() {
	for _, address := range dis.labels.Addresses() {
		l, _ := dis.labels.Get(address)
		switch l.kind {
		case entryLabel:
			l.name = entryName
		case callLabel:
			l.name = fmt.Sprintf(funcNaming, address)
		case dataLabel:
			l.name = fmt.Sprintf(dataNaming, address)
		default:
			l.name = fmt.Sprintf(labelNaming, address)
		}
		dis.labels.Set(address, l)
	}
}

// code returns the assembly text of an instruction, using label names for
// referenced addresses.
func (dis *Disasm) code(ins vm.Instruction) string {
	target, ok := ins.Target()
	if !ok {
		return ins.String()
	}
	l, ok := dis.labels.Get(target)
	if !ok {
		return ins.String()
	}

	switch ins.Op {
	case vm.OpLdIndex:
		return fmt.Sprintf("%s I, %s", ins.Name(), l.name)
	case vm.OpJpOffset:
		return fmt.Sprintf("%s V0, %s", ins.Name(), l.name)
	default:
		return fmt.Sprintf("%s %s", ins.Name(), l.name)
	}
}
