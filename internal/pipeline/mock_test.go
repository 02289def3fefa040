package pipeline

import "github.com/retroenv/retrochip8/internal/audio"

// fakeBeeper stands in for an audio device.
type fakeBeeper struct {
	audio.Silent
}
