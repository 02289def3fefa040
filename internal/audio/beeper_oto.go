//go:build !headless

package audio

import (
	"fmt"
	"time"

	"github.com/ebitengine/oto/v3"
)

const bufferDuration = 50 * time.Millisecond

// otoBeeper streams the tone through the system audio device.
type otoBeeper struct {
	player *oto.Player
	tone   *tone
}

// New opens the audio device and returns a beeper that plays through it.
// Only one beeper can be created per process.
func New() (Beeper, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   SampleRate,
		ChannelCount: ChannelCount,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   bufferDuration,
	})
	if err != nil {
		return nil, fmt.Errorf("creating audio context: %w", err)
	}
	<-ready

	t := &tone{}
	player := ctx.NewPlayer(t)
	player.Play()

	return &otoBeeper{
		player: player,
		tone:   t,
	}, nil
}

func (b *otoBeeper) SetActive(active bool) {
	b.tone.active.Store(active)
}

func (b *otoBeeper) Close() error {
	if err := b.player.Close(); err != nil {
		return fmt.Errorf("closing audio player: %w", err)
	}
	return nil
}
