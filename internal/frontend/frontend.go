// Package frontend connects a running machine to the host: display output,
// keyboard input and sound.
package frontend

import (
	"context"
	"fmt"
	"io"

	"github.com/retroenv/retrochip8/internal/audio"
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrochip8/internal/runner"
	"github.com/retroenv/retrogolib/log"
)

// Frontend runs a machine until the user quits, the context is cancelled,
// the cycle limit is reached or the program faults.
type Frontend interface {
	Run(ctx context.Context, r *runner.Runner) error
}

// Config contains the settings shared by all frontends.
type Config struct {
	Writer io.Writer    // destination of the headless frame dump
	Beeper audio.Beeper // buzzer, nil for no sound
	Scale  int          // window pixel scale
	Title  string       // window title
}

// New returns the frontend with the given name.
func New(logger *log.Logger, name string, cfg Config) (Frontend, error) {
	if cfg.Beeper == nil {
		cfg.Beeper = audio.Silent{}
	}

	switch name {
	case options.Headless:
		return NewHeadless(cfg.Writer), nil
	case options.Terminal:
		return NewTerminal(logger, cfg.Beeper), nil
	case options.Window:
		return newWindow(logger, cfg)
	default:
		return nil, fmt.Errorf("unsupported frontend '%s'", name)
	}
}
