package frontend

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nsf/termbox-go"
	"github.com/retroenv/retrochip8/internal/audio"
	"github.com/retroenv/retrochip8/internal/keymap"
	"github.com/retroenv/retrochip8/internal/runner"
	"github.com/retroenv/retrochip8/internal/vm"
	"github.com/retroenv/retrogolib/log"
)

// cellsPerPixel is the number of terminal columns per display pixel,
// terminal cells are roughly twice as high as wide.
const cellsPerPixel = 2

// Terminal renders the display into the terminal using termbox and reads the
// keypad from the keyboard. Esc or Ctrl+C quit.
type Terminal struct {
	logger *log.Logger
	beeper audio.Beeper
	keys   heldKeys
}

// NewTerminal returns a terminal frontend.
func NewTerminal(logger *log.Logger, beeper audio.Beeper) *Terminal {
	return &Terminal{
		logger: logger,
		beeper: beeper,
	}
}

// Run executes the frames due every 60th of a second until the user quits.
func (t *Terminal) Run(ctx context.Context, r *runner.Runner) error {
	if err := termbox.Init(); err != nil {
		return fmt.Errorf("initializing terminal: %w", err)
	}
	defer termbox.Close()
	termbox.SetInputMode(termbox.InputEsc)

	events := make(chan termbox.Event)
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		pollEvents(events, done)
	}()
	defer func() {
		close(done)
		termbox.Interrupt()
		wg.Wait()
	}()

	ticker := time.NewTicker(runner.FrameDuration)
	defer ticker.Stop()
	defer t.beeper.SetActive(false)

	m := r.Machine()
	render(m.Display())
	last := time.Now()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("running terminal: %w", ctx.Err())

		case ev := <-events:
			quit, err := t.handleEvent(m, ev)
			if err != nil || quit {
				return err
			}

		case now := <-ticker.C:
			err := t.advance(r, now.Sub(last))
			last = now
			if err != nil {
				if errors.Is(err, runner.ErrCycleLimit) {
					return nil
				}
				return err
			}
			if m.Redraw() {
				render(m.Display())
			}
		}
	}
}

// advance runs all frames that are due after the elapsed host time, a slow
// loop catches up on missed ticks. Held keys count down once per frame.
func (t *Terminal) advance(r *runner.Runner, elapsed time.Duration) error {
	m := r.Machine()
	frames := r.Frames()

	err := r.Advance(elapsed)
	for range r.Frames() - frames {
		t.keys.tick(m)
	}
	t.beeper.SetActive(m.SoundActive())

	if err != nil {
		return fmt.Errorf("running frames: %w", err)
	}
	return nil
}

// handleEvent processes a terminal event and reports whether the user quit.
func (t *Terminal) handleEvent(m *vm.Machine, ev termbox.Event) (bool, error) {
	switch ev.Type {
	case termbox.EventError:
		return false, fmt.Errorf("reading terminal events: %w", ev.Err)

	case termbox.EventKey:
		if ev.Key == termbox.KeyEsc || ev.Key == termbox.KeyCtrlC {
			return true, nil
		}
		key, ok := keymap.Index(ev.Ch)
		if !ok {
			return false, nil
		}
		if !m.KeyPressed(key) {
			t.logger.Debug("Key pressed", log.String("key", string(ev.Ch)), log.Int("keypad", key))
		}
		return false, t.keys.press(m, key)

	case termbox.EventResize:
		render(m.Display())
	}
	return false, nil
}

// pollEvents forwards terminal events until termbox is interrupted. Events
// arriving after done is closed are dropped, the loop keeps polling so that
// termbox.Interrupt never blocks.
func pollEvents(events chan<- termbox.Event, done <-chan struct{}) {
	for {
		ev := termbox.PollEvent()
		if ev.Type == termbox.EventInterrupt {
			return
		}

		select {
		case events <- ev:
		case <-done:
		}
	}
}

func render(display vm.Display) {
	_ = termbox.Clear(termbox.ColorDefault, termbox.ColorDefault)

	for y := range vm.DisplayHeight {
		for x := range vm.DisplayWidth {
			bg := cellColor(display.Pixel(x, y))
			for i := range cellsPerPixel {
				termbox.SetCell(x*cellsPerPixel+i, y, ' ', termbox.ColorDefault, bg)
			}
		}
	}
	_ = termbox.Flush()
}

func cellColor(lit bool) termbox.Attribute {
	if lit {
		return termbox.ColorWhite
	}
	return termbox.ColorDefault
}
