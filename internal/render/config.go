package render

import "image/color"

// Global render configuration for colors and the panel canvas.
var (
	Foreground = color.RGBA{R: 0x00, G: 0x00, B: 0x00, A: 0xFF}
	Background = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}

	// Logical canvas size; scaled to the framebuffer when it differs.
	CanvasWidth  = 240
	CanvasHeight = 240
)

const (
	RowPitch      = 30
	SeparatorY    = 180
	ListFontSize  = 16
	LargeFontSize = 60

	DefaultDevice   = "/dev/fb1"
	DefaultFontPath = "/usr/share/fonts/truetype/dejavu/DejaVuSansMono.ttf"
)
