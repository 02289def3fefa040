// Package cli handles command line interface logic
package cli

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/retroenv/retrochip8/internal/options"
)

// ParseFlags parses command line flags and returns the program options
func ParseFlags() (options.Program, error) {
	return parseArgs(os.Args)
}

func parseArgs(osArgs []string) (options.Program, error) {
	flags := flag.NewFlagSet(osArgs[0], flag.ContinueOnError)
	var opts options.Program
	readOptionFlags(flags, &opts)

	err := flags.Parse(osArgs[1:])
	args := flags.Args()
	if err != nil || (len(args) == 0 && opts.Input == "" && opts.Batch == "") {
		return opts, &UsageError{flags: flags}
	}

	if err := validateArgs(args); err != nil {
		return opts, err
	}

	if err := normalizeOptions(&opts); err != nil {
		return opts, err
	}

	if opts.Batch == "" && len(args) > 0 {
		opts.Input = args[0]
	}

	return opts, nil
}

// UsageError represents an error that should show usage information
type UsageError struct {
	flags *flag.FlagSet
	msg   string
}

func (e *UsageError) Error() string {
	return e.msg
}

func (e *UsageError) ShowUsage() {
	fmt.Printf("usage: retrochip8 [options] <ROM file to run>\n\n")
	if e.flags != nil {
		e.flags.PrintDefaults()
	}
	fmt.Println()
}

// validateArgs checks if arguments are in correct order
func validateArgs(args []string) error {
	for i, arg := range args {
		if i > 0 && arg != "" && arg[0] == '-' {
			return &UsageError{
				msg: fmt.Sprintf("Potential argument %s found after ROM file, please pass the ROM file as last argument", arg),
			}
		}
	}
	return nil
}

// normalizeOptions normalizes and validates option values
func normalizeOptions(opts *options.Program) error {
	opts.Frontend = strings.ToLower(opts.Frontend)
	opts.Quirks = strings.ToLower(opts.Quirks)

	switch {
	case opts.InstructionsPerSecond <= 0:
		return fmt.Errorf("instructions per second must be positive, got %d", opts.InstructionsPerSecond)
	case opts.MaxCycles < 0:
		return fmt.Errorf("cycle limit must not be negative, got %d", opts.MaxCycles)
	case opts.Scale <= 0:
		return fmt.Errorf("window scale must be positive, got %d", opts.Scale)
	}

	validFrontends := []string{"", options.Window, options.Terminal, options.Headless}
	for _, valid := range validFrontends {
		if opts.Frontend == valid {
			return nil
		}
	}

	return fmt.Errorf("unsupported frontend: %s. Valid options: %s",
		opts.Frontend, strings.Join(validFrontends[1:], ", "))
}

func readOptionFlags(flags *flag.FlagSet, opts *options.Program) {
	flags.StringVar(&opts.Input, "i", "", "name of the input ROM file")
	flags.StringVar(&opts.Output, "o", "", "name of the output file for the final frame dump, printed on console if no name given")
	flags.StringVar(&opts.Expect, "expect", "", "name of a frame dump file that the final frame has to match")
	flags.StringVar(&opts.Batch, "batch", "", "run a batch of given path and file mask headless with automatic .txt file naming, for example *.ch8")
	flags.StringVar(&opts.Frontend, "f", "", "frontend to use (window/terminal/headless), auto-detected if not given")
	flags.StringVar(&opts.Quirks, "quirks", "", "comma separated list of instruction quirks to enable (shift/loadstore/jump/vfreset)")
	flags.Uint64Var(&opts.Seed, "seed", 0, "seed of the random number generator, random if 0")
	flags.IntVar(&opts.InstructionsPerSecond, "ips", options.DefaultInstructionsPerSecond, "instructions to execute per second")
	flags.IntVar(&opts.MaxCycles, "cycles", 0, "stop after executing this many instructions, unlimited if 0 (headless default 100000)")
	flags.IntVar(&opts.Scale, "scale", options.DefaultScale, "pixel scale of the window frontend")
	flags.BoolVar(&opts.Mute, "mute", false, "disable the sound output")
	flags.BoolVar(&opts.Trace, "trace", false, "log every executed instruction, implies debug logging")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debugging options for extended logging")
	flags.BoolVar(&opts.Quiet, "q", false, "perform operations quietly")
}
