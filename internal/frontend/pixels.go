package frontend

import (
	"image/color"

	"github.com/retroenv/retrochip8/internal/vm"
)

const bytesPerPixel = 4

var (
	litColor   = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	unlitColor = color.RGBA{A: 0xFF}
)

// fillPixels converts the display into RGBA pixel data in row major order.
func fillPixels(pixels []byte, display *vm.Display) {
	for i, lit := range display {
		c := unlitColor
		if lit {
			c = litColor
		}
		offset := i * bytesPerPixel
		pixels[offset] = c.R
		pixels[offset+1] = c.G
		pixels[offset+2] = c.B
		pixels[offset+3] = c.A
	}
}
