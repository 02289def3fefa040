// Package verification verifies that the final frame of a run matches an expected frame dump.
package verification

import (
	"fmt"
	"os"
	"strings"

	"github.com/retroenv/retrochip8/internal/vm"
	"github.com/retroenv/retrogolib/log"
)

// maxLoggedMismatches limits the number of logged pixel differences.
const maxLoggedMismatches = 10

// VerifyFrame compares the frame against the frame dump stored in the expected file.
func VerifyFrame(logger *log.Logger, expectedPath string, frame vm.Display) error {
	data, err := os.ReadFile(expectedPath)
	if err != nil {
		return fmt.Errorf("reading expected frame: %w", err)
	}

	expected, err := ParseFrame(string(data))
	if err != nil {
		return fmt.Errorf("parsing expected frame %s: %w", expectedPath, err)
	}

	return checkFrameEqual(logger, &expected, &frame)
}

// ParseFrame parses a frame dump as written by vm.Display.String.
func ParseFrame(dump string) (vm.Display, error) {
	var frame vm.Display

	dump = strings.ReplaceAll(dump, "\r\n", "\n")
	lines := strings.Split(strings.TrimSuffix(dump, "\n"), "\n")
	if len(lines) != vm.DisplayHeight {
		return frame, fmt.Errorf("expected %d lines but got %d", vm.DisplayHeight, len(lines))
	}

	for y, line := range lines {
		if len(line) != vm.DisplayWidth {
			return frame, fmt.Errorf("line %d: expected %d pixels but got %d", y+1, vm.DisplayWidth, len(line))
		}

		for x, c := range []byte(line) {
			switch c {
			case vm.PixelOn:
				frame[y*vm.DisplayWidth+x] = true
			case vm.PixelOff:
			default:
				return frame, fmt.Errorf("line %d: invalid pixel character '%c'", y+1, c)
			}
		}
	}
	return frame, nil
}

func checkFrameEqual(logger *log.Logger, expected, got *vm.Display) error {
	var diffs int
	for y := range vm.DisplayHeight {
		for x := range vm.DisplayWidth {
			if expected.Pixel(x, y) == got.Pixel(x, y) {
				continue
			}

			diffs++
			if diffs <= maxLoggedMismatches {
				logger.Warn("Pixel mismatch",
					log.Int("x", x),
					log.Int("y", y),
					log.String("expected", pixelName(expected.Pixel(x, y))),
					log.String("got", pixelName(got.Pixel(x, y))))
			}
		}
	}
	if diffs == 0 {
		return nil
	}
	return fmt.Errorf("%d pixel mismatches", diffs)
}

func pixelName(lit bool) string {
	if lit {
		return "on"
	}
	return "off"
}
