//go:build !headless

package frontend

import (
	"context"
	"errors"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/retroenv/retrochip8/internal/audio"
	"github.com/retroenv/retrochip8/internal/runner"
	"github.com/retroenv/retrochip8/internal/vm"
	"github.com/retroenv/retrogolib/log"
)

// windowKeys maps the keypad to ebiten keys, in keypad order.
var windowKeys = [vm.KeyCount]ebiten.Key{
	ebiten.KeyX, ebiten.KeyDigit1, ebiten.KeyDigit2, ebiten.KeyDigit3,
	ebiten.KeyQ, ebiten.KeyW, ebiten.KeyE, ebiten.KeyA,
	ebiten.KeyS, ebiten.KeyD, ebiten.KeyZ, ebiten.KeyC,
	ebiten.KeyDigit4, ebiten.KeyR, ebiten.KeyF, ebiten.KeyV,
}

// Window shows the display in a desktop window. Ebiten calls Update 60 times
// per second, every update runs one frame.
type Window struct {
	logger *log.Logger
	beeper audio.Beeper
	scale  int
	title  string
}

func newWindow(logger *log.Logger, cfg Config) (Frontend, error) {
	return &Window{
		logger: logger,
		beeper: cfg.Beeper,
		scale:  cfg.Scale,
		title:  cfg.Title,
	}, nil
}

// Run opens the window and blocks until it is closed.
func (w *Window) Run(ctx context.Context, r *runner.Runner) error {
	ebiten.SetWindowSize(vm.DisplayWidth*w.scale, vm.DisplayHeight*w.scale)
	ebiten.SetWindowTitle(w.title)
	ebiten.SetTPS(runner.TimerFrequency)

	w.logger.Debug("Opening window", log.Int("scale", w.scale))

	g := &game{
		ctx:    ctx,
		runner: r,
		beeper: w.beeper,
		screen: ebiten.NewImage(vm.DisplayWidth, vm.DisplayHeight),
		pixels: make([]byte, vm.DisplaySize*bytesPerPixel),
		dirty:  true,
	}
	defer w.beeper.SetActive(false)

	if err := ebiten.RunGame(g); err != nil {
		return fmt.Errorf("running window: %w", err)
	}
	return g.err
}

// game implements ebiten.Game.
type game struct {
	ctx    context.Context
	runner *runner.Runner
	beeper audio.Beeper

	screen *ebiten.Image
	pixels []byte
	dirty  bool
	err    error
}

func (g *game) Update() error {
	if err := g.ctx.Err(); err != nil {
		g.err = fmt.Errorf("running window: %w", err)
		return ebiten.Termination
	}
	if ebiten.IsKeyPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	m := g.runner.Machine()
	for key, hostKey := range windowKeys {
		_ = m.SetKey(key, ebiten.IsKeyPressed(hostKey))
	}

	if err := g.runner.Frame(); err != nil {
		if !errors.Is(err, runner.ErrCycleLimit) {
			g.err = fmt.Errorf("running frame: %w", err)
		}
		return ebiten.Termination
	}

	g.beeper.SetActive(m.SoundActive())
	if m.Redraw() {
		g.dirty = true
	}
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	if g.dirty {
		display := g.runner.Machine().Display()
		fillPixels(g.pixels, &display)
		g.screen.WritePixels(g.pixels)
		g.dirty = false
	}
	screen.DrawImage(g.screen, nil)
}

func (g *game) Layout(_, _ int) (int, int) {
	return vm.DisplayWidth, vm.DisplayHeight
}
