package vm

import "strings"

// Characters used by the text rendering of a display.
const (
	PixelOn  = '#'
	PixelOff = '.'
)

// Display is the 64x32 monochrome frame buffer, stored row-major.
type Display [DisplaySize]bool

// Pixel returns whether the pixel at the given position is lit.
// Positions outside of the display are reported as unlit.
func (d *Display) Pixel(x, y int) bool {
	if x < 0 || x >= DisplayWidth || y < 0 || y >= DisplayHeight {
		return false
	}
	return d[x+y*DisplayWidth]
}

// Lit returns the number of lit pixels.
func (d *Display) Lit() int {
	var count int
	for _, on := range d {
		if on {
			count++
		}
	}
	return count
}

// String renders the display as DisplayHeight lines of DisplayWidth characters.
func (d *Display) String() string {
	var sb strings.Builder
	sb.Grow(DisplaySize + DisplayHeight)

	for y := range DisplayHeight {
		for x := range DisplayWidth {
			if d[x+y*DisplayWidth] {
				sb.WriteByte(PixelOn)
			} else {
				sb.WriteByte(PixelOff)
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// xorPixel toggles the pixel at the given position and returns whether it was lit before.
func (d *Display) xorPixel(x, y int) bool {
	i := x + y*DisplayWidth
	lit := d[i]
	d[i] = !lit
	return lit
}
