// Package audio plays the CHIP-8 buzzer sound.
package audio

import (
	"encoding/binary"
	"sync/atomic"
)

// Output format of the generated tone, signed 16 bit little endian mono samples.
const (
	SampleRate     = 44100
	ChannelCount   = 1
	BytesPerSample = 2

	// Frequency of the buzzer tone in Hz.
	Frequency = 440

	amplitude = 0x1000
)

// Beeper switches the buzzer tone on and off.
type Beeper interface {
	SetActive(active bool)
	Close() error
}

// Silent is a beeper that never produces sound.
type Silent struct{}

// SetActive does nothing.
func (Silent) SetActive(bool) {}

// Close does nothing.
func (Silent) Close() error { return nil }

// tone is an endless reader of square wave samples that produces silence
// while inactive. It is read from the audio thread and switched from the
// emulation thread.
type tone struct {
	active   atomic.Bool
	position int
}

func (t *tone) Read(p []byte) (int, error) {
	n := len(p) - len(p)%BytesPerSample
	t.position = fillSquareWave(p[:n], t.position, t.active.Load())
	return n, nil
}

// fillSquareWave writes samples into buf starting at the given sample position
// of the wave and returns the position following the last written sample.
func fillSquareWave(buf []byte, position int, active bool) int {
	const period = SampleRate / Frequency

	for i := 0; i+BytesPerSample <= len(buf); i += BytesPerSample {
		var sample int16
		if active {
			sample = amplitude
			if position%period >= period/2 {
				sample = -amplitude
			}
		}
		binary.LittleEndian.PutUint16(buf[i:], uint16(sample))
		position = (position + 1) % period
	}
	return position
}
