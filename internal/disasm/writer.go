package disasm

import (
	"fmt"
	"io"
	"strings"

	"github.com/retroenv/retrochip8/internal/vm"
)

const dataBytesPerLine = 8

// writer outputs the traced program as assembly listing.
type writer struct {
	dis    *Disasm
	writer io.Writer
}

func newWriter(dis *Disasm, w io.Writer) *writer {
	return &writer{
		dis:    dis,
		writer: w,
	}
}

func (w *writer) write() error {
	if _, err := fmt.Fprintf(w.writer, "; Program size: %d bytes\n; Code base address: $%04X\n", len(w.dis.program), vm.ProgramStart); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	if err := w.writeAliases(); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w.writer); err != nil {
		return fmt.Errorf("writing line: %w", err)
	}

	offsets := w.dis.offsets
	var previousLineWasCode bool

	for i := 0; i < len(offsets); {
		offset := offsets[i]
		labelWritten, err := w.writeLabel(i, offset.Address)
		if err != nil {
			return err
		}

		isCode := w.dis.labels.IsUsed(offset.Address)
		// print an empty line in case of data after code and vice versa
		if i > 0 && !labelWritten && isCode != previousLineWasCode {
			if _, err := fmt.Fprintln(w.writer); err != nil {
				return fmt.Errorf("writing line: %w", err)
			}
		}
		previousLineWasCode = isCode

		if isCode {
			if err := w.writeCodeLine(offset); err != nil {
				return err
			}
			i += 2
			continue
		}

		count, err := w.writeDataLine(i)
		if err != nil {
			return err
		}
		i += count
	}
	return nil
}

// writeAliases outputs labels that point into the middle of an instruction.
func (w *writer) writeAliases() error {
	for _, address := range w.dis.labels.Addresses() {
		if w.dis.offsetInfo(address).Type != CodeOperand {
			continue
		}
		l, _ := w.dis.labels.Get(address)
		if _, err := fmt.Fprintf(w.writer, "%s = $%04X\n", l.name, address); err != nil {
			return fmt.Errorf("writing alias: %w", err)
		}
	}
	return nil
}

// writeLabel writes the label of the address, if any, and returns whether one was written.
func (w *writer) writeLabel(index int, address uint16) (bool, error) {
	l, ok := w.dis.labels.Get(address)
	if !ok {
		return false, nil
	}

	if index > 0 {
		if _, err := fmt.Fprintln(w.writer); err != nil {
			return false, fmt.Errorf("writing line: %w", err)
		}
	}
	if _, err := fmt.Fprintf(w.writer, "%s:\n", l.name); err != nil {
		return false, fmt.Errorf("writing label: %w", err)
	}
	return true, nil
}

func (w *writer) writeCodeLine(offset Offset) error {
	code := w.dis.code(offset.Instruction)
	comment := w.comment(offset.Address, fmt.Sprintf("%04X", offset.Instruction.Opcode))

	var err error
	if comment == "" {
		_, err = fmt.Fprintf(w.writer, "  %s\n", code)
	} else {
		_, err = fmt.Fprintf(w.writer, "  %-30s ; %s\n", code, comment)
	}
	if err != nil {
		return fmt.Errorf("writing code line: %w", err)
	}
	return nil
}

// writeDataLine bundles up to dataBytesPerLine data bytes starting at index
// into one line and returns the number of bytes written. A line ends early
// at the next label or instruction.
func (w *writer) writeDataLine(index int) (int, error) {
	offsets := w.dis.offsets
	data := []byte{w.dis.program[index]}
	for i := index + 1; i < len(offsets) && len(data) < dataBytesPerLine; i++ {
		if offsets[i].Type == CodeOffset || w.dis.labels.Has(offsets[i].Address) {
			break
		}
		data = append(data, w.dis.program[i])
	}

	buf := &strings.Builder{}
	buf.WriteString("db ")
	hex := &strings.Builder{}
	for i, b := range data {
		if i > 0 {
			buf.WriteString(", ")
		}
		fmt.Fprintf(buf, "$%02X", b)
		fmt.Fprintf(hex, "%02X", b)
	}

	line := buf.String()
	comment := w.comment(offsets[index].Address, hex.String())

	var err error
	if comment == "" {
		_, err = fmt.Fprintf(w.writer, "  %s\n", line)
	} else {
		_, err = fmt.Fprintf(w.writer, "  %-30s ; %s\n", line, comment)
	}
	if err != nil {
		return 0, fmt.Errorf("writing data line: %w", err)
	}
	return len(data), nil
}

// comment returns the address and hex comment for a line as enabled by the options.
func (w *writer) comment(address uint16, hex string) string {
	var parts []string
	if w.dis.options.OffsetComments {
		parts = append(parts, fmt.Sprintf("$%04X", address))
	}
	if w.dis.options.HexComments {
		parts = append(parts, hex)
	}
	return strings.Join(parts, " ")
}
