// Package pipeline orchestrates the stages of running a ROM.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/retroenv/retrochip8/internal/audio"
	"github.com/retroenv/retrochip8/internal/config"
	"github.com/retroenv/retrochip8/internal/detector"
	"github.com/retroenv/retrochip8/internal/frontend"
	"github.com/retroenv/retrochip8/internal/loader"
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrochip8/internal/runner"
	"github.com/retroenv/retrochip8/internal/verification"
	"github.com/retroenv/retrochip8/internal/vm"
	"github.com/retroenv/retrogolib/log"
)

// Pipeline orchestrates the complete run workflow.
type Pipeline struct {
	logger    *log.Logger
	detector  *detector.Detector
	loader    *loader.Loader
	newBeeper func() (audio.Beeper, error)
}

// New creates a new run pipeline.
func New(logger *log.Logger) *Pipeline {
	return &Pipeline{
		logger:    logger,
		detector:  detector.New(logger),
		loader:    loader.New(),
		newBeeper: audio.New,
	}
}

// Execute loads the ROM of the options, runs it in the selected frontend and
// verifies the final frame if an expected frame dump is given.
func (p *Pipeline) Execute(ctx context.Context, opts options.Program, writer io.Writer) error {
	frontendName := p.detector.Detect(opts)

	program, err := p.loader.Load(opts.Input)
	if err != nil {
		return fmt.Errorf("loading ROM: %w", err)
	}

	machine, err := p.createMachine(opts, program)
	if err != nil {
		return err
	}

	p.printInfo(opts, program, frontendName)

	r := runner.New(p.logger, machine, runnerConfig(opts, frontendName))

	beeper := p.createBeeper(opts, frontendName)
	defer func() { _ = beeper.Close() }()

	front, err := frontend.New(p.logger, frontendName, frontend.Config{
		Writer: writer,
		Beeper: beeper,
		Scale:  opts.Scale,
		Title:  "retrochip8 - " + filepath.Base(opts.Input),
	})
	if err != nil {
		return fmt.Errorf("creating frontend: %w", err)
	}

	if err := front.Run(ctx, r); err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	display := machine.Display()
	p.logger.Debug("Program stopped",
		log.Int("cycles", r.Cycles()),
		log.Int("frames", r.Frames()),
		log.Int("lit_pixels", display.Lit()))

	if opts.Expect != "" {
		if err := verification.VerifyFrame(p.logger, opts.Expect, display); err != nil {
			return fmt.Errorf("verification failed: %w", err)
		}
		p.logger.Info("Verification successful")
	}
	return nil
}

// createMachine creates a machine configured by the options with the program loaded.
func (p *Pipeline) createMachine(opts options.Program, program []byte) (*vm.Machine, error) {
	machineOptions, err := config.MachineOptions(opts)
	if err != nil {
		return nil, fmt.Errorf("configuring machine: %w", err)
	}

	machine := vm.New(machineOptions...)
	if err := machine.LoadProgram(program); err != nil {
		return nil, fmt.Errorf("loading program: %w", err)
	}
	return machine, nil
}

// createBeeper opens the audio device for interactive frontends. A missing
// audio device is not fatal, the program runs without sound.
func (p *Pipeline) createBeeper(opts options.Program, frontendName string) audio.Beeper {
	if opts.Mute || frontendName == options.Headless {
		return audio.Silent{}
	}

	beeper, err := p.newBeeper()
	if err != nil {
		p.logger.Warn("Sound is disabled", log.Err(err))
		return audio.Silent{}
	}
	return beeper
}

// runnerConfig returns the execution speed settings, headless runs are
// always limited to make them terminate.
func runnerConfig(opts options.Program, frontendName string) runner.Config {
	cfg := runner.Config{
		InstructionsPerSecond: opts.InstructionsPerSecond,
		MaxCycles:             opts.MaxCycles,
		Trace:                 opts.Trace,
	}
	if cfg.InstructionsPerSecond <= 0 {
		cfg.InstructionsPerSecond = options.DefaultInstructionsPerSecond
	}
	if frontendName == options.Headless && cfg.MaxCycles == 0 {
		cfg.MaxCycles = options.DefaultHeadlessCycles
	}
	return cfg
}

// printInfo prints information about the ROM being run.
func (p *Pipeline) printInfo(opts options.Program, program []byte, frontendName string) {
	if opts.Quiet {
		return
	}

	p.logger.Info("Running Chip-8 ROM",
		log.String("file", opts.Input),
		log.Int("size", len(program)),
		log.String("frontend", frontendName),
	)
	if opts.Quirks != "" {
		p.logger.Info("Quirks enabled", log.String("quirks", opts.Quirks))
	}
}
