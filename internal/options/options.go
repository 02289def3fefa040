// Package options contains the program options.
package options

// Frontend names.
const (
	Headless = "headless"
	Terminal = "terminal"
	Window   = "window"
)

// DefaultInstructionsPerSecond is the execution speed most programs are written for.
const DefaultInstructionsPerSecond = 700

// DefaultHeadlessCycles limits headless runs when no cycle limit is given.
const DefaultHeadlessCycles = 100000

// DefaultScale is the window pixel scale.
const DefaultScale = 10

// Parameters contains file path options.
type Parameters struct {
	Input  string `flag:"i" usage:"input ROM file"`
	Output string `flag:"o" usage:"output file for the final frame dump (default: stdout)"`
	Expect string `flag:"expect" usage:"expected frame dump to verify the final frame against"`
	Batch  string `flag:"batch" usage:"batch run files matching pattern headless (e.g. *.ch8)"`
}

// Flags contains behavior options.
type Flags struct {
	Frontend string `flag:"f" usage:"frontend: window, terminal, headless (default: auto-detect)"`
	Quirks   string `flag:"quirks" usage:"comma separated quirks: shift, loadstore, jump, vfreset"`
	Seed     uint64 `flag:"seed" usage:"random number generator seed (0: random)"`
	Mute     bool   `flag:"mute" usage:"disable sound"`
	Trace    bool   `flag:"trace" usage:"log every executed instruction"`
	Debug    bool   `flag:"debug" usage:"enable debug logging"`
	Quiet    bool   `flag:"q" usage:"quiet mode"`
}

// Timing contains execution speed options.
type Timing struct {
	InstructionsPerSecond int `flag:"ips" usage:"instructions executed per second" default:"700"`
	MaxCycles             int `flag:"cycles" usage:"stop after this many instructions (0: unlimited)"`
	Scale                 int `flag:"scale" usage:"window pixel scale" default:"10"`
}

// Program options of the interpreter.
type Program struct {
	Parameters
	Flags
	Timing
}
