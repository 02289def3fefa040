package frontend

import (
	"fmt"

	"github.com/retroenv/retrochip8/internal/vm"
)

// keyHoldFrames is the number of frames that a key stays pressed after its
// last key event. Terminals only report key presses and repeats.
const keyHoldFrames = 6

// heldKeys emulates key releases for inputs that do not report them.
type heldKeys struct {
	frames [vm.KeyCount]int
}

// press marks the key as pressed for the next keyHoldFrames frames.
func (h *heldKeys) press(m *vm.Machine, key int) error {
	if err := m.SetKey(key, true); err != nil {
		return fmt.Errorf("pressing key: %w", err)
	}
	h.frames[key] = keyHoldFrames
	return nil
}

// tick counts down all held keys and releases the expired ones.
func (h *heldKeys) tick(m *vm.Machine) {
	for key, frames := range h.frames {
		if frames == 0 {
			continue
		}
		h.frames[key]--
		if h.frames[key] == 0 {
			_ = m.SetKey(key, false)
		}
	}
}
