// Package runner drives a virtual machine at a fixed instruction rate with 60 Hz timers.
package runner

import (
	"errors"
	"fmt"
	"time"

	"github.com/retroenv/retrochip8/internal/vm"
	"github.com/retroenv/retrogolib/log"
)

// TimerFrequency is the rate in Hz that the delay and sound timers count down with.
const TimerFrequency = 60

// FrameDuration is the host time of one timer frame.
const FrameDuration = time.Second / TimerFrequency

// ErrCycleLimit is returned once the configured number of cycles has been executed.
var ErrCycleLimit = errors.New("cycle limit reached")

// Config controls the execution speed.
type Config struct {
	InstructionsPerSecond int
	MaxCycles             int // 0 means unlimited
	Trace                 bool
}

// Runner executes machine cycles and timer ticks in the ratio given by the
// configured instruction rate.
type Runner struct {
	logger  *log.Logger
	machine *vm.Machine
	cfg     Config

	cycles     int
	frames     int
	cycleCarry int   // instructions owed to the next frame, in 1/60 units
	frameCarry int64 // elapsed host time not yet converted to frames, in 1/60 ns units
}

// New returns a runner for the given machine.
func New(logger *log.Logger, machine *vm.Machine, cfg Config) *Runner {
	return &Runner{
		logger:  logger,
		machine: machine,
		cfg:     cfg,
	}
}

// Machine returns the driven machine.
func (r *Runner) Machine() *vm.Machine {
	return r.machine
}

// Cycles returns the number of executed instructions.
func (r *Runner) Cycles() int {
	return r.cycles
}

// Frames returns the number of completed frames.
func (r *Runner) Frames() int {
	return r.frames
}

// Advance runs all frames that fit into the elapsed host time. Time that does
// not add up to a full frame is carried over to the next call.
func (r *Runner) Advance(elapsed time.Duration) error {
	r.frameCarry += int64(elapsed) * TimerFrequency
	frames := r.frameCarry / int64(time.Second)
	r.frameCarry %= int64(time.Second)

	for range frames {
		if err := r.Frame(); err != nil {
			return err
		}
	}
	return nil
}

// Frame executes the instructions of one 60 Hz frame followed by one timer tick.
func (r *Runner) Frame() error {
	r.cycleCarry += r.cfg.InstructionsPerSecond
	count := r.cycleCarry / TimerFrequency
	r.cycleCarry %= TimerFrequency

	for range count {
		if err := r.step(); err != nil {
			return err
		}
	}

	r.machine.TickTimers()
	r.frames++
	return nil
}

func (r *Runner) step() error {
	if r.cfg.MaxCycles > 0 && r.cycles >= r.cfg.MaxCycles {
		return ErrCycleLimit
	}
	if r.cfg.Trace {
		r.trace()
	}

	if err := r.machine.Cycle(); err != nil {
		return fmt.Errorf("program halted after %d cycles: %w", r.cycles, err)
	}

	r.cycles++
	return nil
}

func (r *Runner) trace() {
	state := r.machine.State()
	word, err := r.machine.Peek(state.PC)
	if err != nil {
		return
	}

	ins, _ := vm.Decode(word)
	r.logger.Debug("Executing",
		log.Hex("pc", state.PC),
		log.Hex("opcode", word),
		log.String("instruction", ins.String()),
		log.Hex("i", state.I))
}
