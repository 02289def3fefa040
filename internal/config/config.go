// Package config handles application configuration and setup
package config

import (
	"fmt"
	"strings"

	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrochip8/internal/vm"
	"github.com/retroenv/retrogolib/log"
)

// Quirk names accepted by ParseQuirks.
const (
	QuirkShift     = "shift"
	QuirkLoadStore = "loadstore"
	QuirkJump      = "jump"
	QuirkVFReset   = "vfreset"
)

// CreateLogger creates a logger with appropriate settings
func CreateLogger(debug, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	if debug {
		cfg.Level = log.DebugLevel
	} else if quiet {
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}

// ParseQuirks converts a comma separated list of quirk names into the machine quirks.
func ParseQuirks(list string) (vm.Quirks, error) {
	var quirks vm.Quirks

	for name := range strings.SplitSeq(list, ",") {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "":
		case QuirkShift:
			quirks.ShiftUsesVY = true
		case QuirkLoadStore:
			quirks.LoadStoreIncrementsIndex = true
		case QuirkJump:
			quirks.JumpOffsetUsesVX = true
		case QuirkVFReset:
			quirks.LogicResetsFlag = true
		default:
			return vm.Quirks{}, fmt.Errorf("unsupported quirk: %s. Valid options: %s",
				name, strings.Join([]string{QuirkShift, QuirkLoadStore, QuirkJump, QuirkVFReset}, ", "))
		}
	}

	return quirks, nil
}

// MachineOptions returns the virtual machine options for the program options.
func MachineOptions(opts options.Program) ([]vm.Option, error) {
	quirks, err := ParseQuirks(opts.Quirks)
	if err != nil {
		return nil, fmt.Errorf("parsing quirks: %w", err)
	}

	machineOptions := []vm.Option{vm.WithQuirks(quirks)}
	if opts.Seed != 0 {
		machineOptions = append(machineOptions, vm.WithSeed(opts.Seed))
	}
	return machineOptions, nil
}
