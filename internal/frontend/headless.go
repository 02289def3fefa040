package frontend

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/retroenv/retrochip8/internal/runner"
)

// Headless runs a machine without any input or output as fast as possible and
// writes the final frame as text dump.
type Headless struct {
	writer io.Writer
}

// NewHeadless returns a headless frontend writing the final frame to writer.
func NewHeadless(writer io.Writer) *Headless {
	return &Headless{writer: writer}
}

// Run executes frames until the cycle limit is reached. A fault stops the run
// as well, the frame dump is written in both cases.
func (h *Headless) Run(ctx context.Context, r *runner.Runner) error {
	var runErr error
	for runErr == nil {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("running headless: %w", err)
		}
		runErr = r.Frame()
	}
	if errors.Is(runErr, runner.ErrCycleLimit) {
		runErr = nil
	}

	display := r.Machine().Display()
	if _, err := io.WriteString(h.writer, display.String()); err != nil {
		return fmt.Errorf("writing frame dump: %w", err)
	}
	return runErr
}
