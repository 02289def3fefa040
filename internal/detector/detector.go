// Package detector handles frontend detection.
package detector

import (
	"os"

	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrogolib/log"
	"golang.org/x/term"
)

// Detector selects the frontend from options or the environment.
type Detector struct {
	logger     *log.Logger
	isTerminal func() bool
}

// New creates a new frontend detector.
func New(logger *log.Logger) *Detector {
	return &Detector{
		logger: logger,
		isTerminal: func() bool {
			return term.IsTerminal(int(os.Stdout.Fd()))
		},
	}
}

// Detect determines the frontend to use. An explicitly selected frontend wins,
// batch runs are always headless. Otherwise the terminal frontend is used when
// standard output is a terminal and the headless frontend when it is not.
func (d *Detector) Detect(opts options.Program) string {
	switch {
	case opts.Batch != "":
		return options.Headless
	case opts.Frontend != "":
		return opts.Frontend
	}

	frontend := options.Headless
	if d.isTerminal() {
		frontend = options.Terminal
	}
	d.logger.Debug("Auto-detected frontend",
		log.String("frontend", frontend),
		log.String("file", opts.Input))
	return frontend
}
