package frontend

import "github.com/retroenv/retrochip8/internal/audio"

// recordingBeeper remembers the last requested tone state.
type recordingBeeper struct {
	audio.Silent
	active bool
}

func (b *recordingBeeper) SetActive(active bool) {
	b.active = active
}
