//go:build headless

package audio

// New returns a silent beeper, builds without audio support have no device to play on.
func New() (Beeper, error) {
	return Silent{}, nil
}
