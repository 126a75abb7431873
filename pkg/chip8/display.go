package chip8

import (
	"image"
	"image/png"
	"os"

	"gochip8/pkg/grid"
)

const (
	// DisplayWidth is the framebuffer width in pixels.
	DisplayWidth = 64
	// DisplayHeight is the framebuffer height in pixels.
	DisplayHeight = 32
)

// Display is the 64x32 monochrome framebuffer. Pixels are only ever mutated
// by XOR composition in Draw; Clear resets them all to false.
type Display struct {
	Screen [DisplayHeight][DisplayWidth]bool
}

// Clear turns every pixel off.
func (d *Display) Clear() {
	d.Screen = [DisplayHeight][DisplayWidth]bool{}
}

// Draw XORs a sprite onto the framebuffer with its top-left corner at (x, y).
// Each sprite byte is one 8-pixel row, most significant bit leftmost.
// Coordinates wrap modulo the screen dimensions. The return value reports
// whether any lit pixel was turned off by the sprite (a collision).
func (d *Display) Draw(x, y byte, sprite []byte) bool {
	collision := false
	for row, b := range sprite {
		py := (int(y) + row) % DisplayHeight
		for col := 0; col < 8; col++ {
			bit := (b>>(7-col))&0x01 != 0
			if !bit {
				continue
			}
			px := (int(x) + col) % DisplayWidth
			if d.Screen[py][px] {
				collision = true
			}
			d.Screen[py][px] = !d.Screen[py][px]
		}
	}
	return collision
}

// Pixel colors used by the RGBA encoders. The background is the same dark
// blue-gray the reference frontend clears its canvas to.
var (
	pixelOn  = [4]byte{0xFF, 0xF1, 0xE8, 0xFF}
	pixelOff = [4]byte{0x19, 0x19, 0x26, 0xFF}
)

// FramebufferRGBA encodes the framebuffer as a 64x32 RGBA8888 byte slice
// (length 64*32*4), suitable for ebiten's WritePixels.
func (d *Display) FramebufferRGBA() []byte {
	pixels := make([]byte, DisplayWidth*DisplayHeight*4)
	for i := 0; i < DisplayWidth*DisplayHeight; i++ {
		x, y := grid.GetGridCoords(i, DisplayWidth)
		c := pixelOff
		if d.Screen[y][x] {
			c = pixelOn
		}
		copy(pixels[i*4:], c[:])
	}
	return pixels
}

// Image returns the framebuffer as an *image.RGBA.
func (d *Display) Image() *image.RGBA {
	return &image.RGBA{
		Pix:    d.FramebufferRGBA(),
		Stride: DisplayWidth * 4,
		Rect:   image.Rect(0, 0, DisplayWidth, DisplayHeight),
	}
}

// SaveScreenshot encodes the framebuffer as a PNG and writes it to filename.
func (d *Display) SaveScreenshot(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, d.Image())
}
