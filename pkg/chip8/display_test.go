package chip8

import (
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestDisplayClear(t *testing.T) {
	var d Display
	d.Screen[3][7] = true
	d.Screen[31][63] = true

	d.Clear()

	for y := 0; y < DisplayHeight; y++ {
		for x := 0; x < DisplayWidth; x++ {
			assert.False(t, d.Screen[y][x])
		}
	}
}

func TestDrawSprite(t *testing.T) {
	var d Display
	collision := d.Draw(4, 2, []byte{0b10100000})

	assert.False(t, collision)
	assert.True(t, d.Screen[2][4])
	assert.False(t, d.Screen[2][5])
	assert.True(t, d.Screen[2][6])
}

func TestDrawDoubleXORRestoresScreen(t *testing.T) {
	var d Display
	sprite := fontset[0:GlyphSize] // the "0" glyph

	first := d.Draw(10, 5, sprite)
	assert.False(t, first)

	// Drawing the same sprite again erases it and reports a collision on
	// every pixel the first draw set.
	second := d.Draw(10, 5, sprite)
	assert.True(t, second)

	for y := 0; y < DisplayHeight; y++ {
		for x := 0; x < DisplayWidth; x++ {
			assert.False(t, d.Screen[y][x])
		}
	}
}

func TestDrawCollisionOnlyOnOverlap(t *testing.T) {
	var d Display
	assert.False(t, d.Draw(0, 0, []byte{0b11110000}))
	// Adjacent sprite, no shared pixels.
	assert.False(t, d.Draw(4, 0, []byte{0b11110000}))
	// Overlapping sprite.
	assert.True(t, d.Draw(2, 0, []byte{0b11110000}))
}

func TestDrawWrapsAtEdges(t *testing.T) {
	var d Display
	// 2x2 block at the bottom-right corner wraps to all four corners.
	d.Draw(63, 31, []byte{0b11000000, 0b11000000})

	assert.True(t, d.Screen[31][63])
	assert.True(t, d.Screen[31][0])
	assert.True(t, d.Screen[0][63])
	assert.True(t, d.Screen[0][0])
}

func TestDrawWrapsLargeCoordinates(t *testing.T) {
	var d Display
	// Coordinates beyond the screen bounds reduce modulo width/height.
	d.Draw(64+3, 32+2, []byte{0b10000000})

	assert.True(t, d.Screen[2][3])
}

func TestDrawInstructionSetsCollisionFlag(t *testing.T) {
	c := newTestCPU()
	c.I = FontAddress(0x0)
	c.V[0x0] = 8
	c.V[0x1] = 8
	loadProgram(c,
		0xD015, // DRW V0, V1, 5
		0xD015, // same sprite again: full overlap
	)

	step(t, c)
	assert.Equal(t, 0, int(c.V[0xF]))

	step(t, c)
	assert.Equal(t, 1, int(c.V[0xF]))
	// Second draw restored the pre-draw framebuffer.
	for y := 0; y < DisplayHeight; y++ {
		for x := 0; x < DisplayWidth; x++ {
			assert.False(t, c.Display.Screen[y][x])
		}
	}
}

func TestClsInstruction(t *testing.T) {
	c := newTestCPU()
	c.Display.Screen[4][4] = true
	loadProgram(c, 0x00E0)
	step(t, c)

	assert.False(t, c.Display.Screen[4][4])
}

func TestFramebufferRGBA(t *testing.T) {
	var d Display
	d.Screen[0][1] = true

	pixels := d.FramebufferRGBA()
	assert.Equal(t, DisplayWidth*DisplayHeight*4, len(pixels))

	// Pixel (1, 0) is lit, pixel (0, 0) is background.
	assert.Equal(t, pixelOn[:], pixels[4:8])
	assert.Equal(t, pixelOff[:], pixels[0:4])
	// Alpha is opaque everywhere.
	for i := 3; i < len(pixels); i += 4 {
		assert.Equal(t, 0xFF, int(pixels[i]))
	}
}

func TestImageDimensions(t *testing.T) {
	var d Display
	img := d.Image()

	assert.Equal(t, DisplayWidth, img.Rect.Dx())
	assert.Equal(t, DisplayHeight, img.Rect.Dy())
}
