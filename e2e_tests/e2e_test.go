package main

import (
	"io"
	"testing"

	"github.com/retroenv/retrogolib/assert"

	"gochip8/pkg/chip8"
)

// TestRomDrawsFontSprite drives the public API only: load a hand-assembled
// ROM that draws the built-in "7" glyph and starts the delay timer, then
// check the framebuffer and the 60 Hz timer drain.
func TestRomDrawsFontSprite(t *testing.T) {
	rom := []byte{
		0x60, 0x05, // LD V0, 5
		0x61, 0x03, // LD V1, 3
		0x62, 0x07, // LD V2, 7
		0xF2, 0x29, // LD F, V2
		0xD0, 0x15, // DRW V0, V1, 5
		0x66, 0x3C, // LD V6, 60
		0xF6, 0x15, // LD DT, V6
		0x12, 0x0E, // JP 0x20E (spin)
	}

	vm := chip8.NewCPU(600)
	vm.Output = io.Discard
	assert.NoError(t, vm.LoadROM(rom))

	for i := 0; i < 8; i++ {
		assert.NoError(t, vm.Tick())
	}

	// Glyph "7" top row is 0xF0: four lit pixels from (5, 3).
	for x := 5; x <= 8; x++ {
		assert.True(t, vm.Display.Screen[3][x])
	}
	// Second row is 0x10: only the fourth column is lit.
	assert.False(t, vm.Display.Screen[4][5])
	assert.True(t, vm.Display.Screen[4][8])
	// Nothing collided.
	assert.Equal(t, 0, int(vm.V[0xF]))

	// One emulated second drains the delay timer from 60 to 0.
	for i := 8; i < 600; i++ {
		assert.NoError(t, vm.Tick())
	}
	assert.Equal(t, 0, int(vm.DT))
}

func TestRomKeyWaitRoundTrip(t *testing.T) {
	rom := []byte{
		0xF3, 0x0A, // LD V3, K
		0x64, 0x01, // LD V4, 1
	}

	vm := chip8.NewCPU(600)
	vm.Output = io.Discard
	assert.NoError(t, vm.LoadROM(rom))

	for i := 0; i < 3; i++ {
		assert.NoError(t, vm.Tick())
	}
	assert.True(t, vm.Waiting())

	vm.PressedKeys[0xB] = true
	assert.NoError(t, vm.Tick())
	vm.PressedKeys[0xB] = false

	assert.Equal(t, 0xB, int(vm.V[0x3]))
	assert.NoError(t, vm.Tick())
	assert.Equal(t, 1, int(vm.V[0x4]))
}

func TestRomRestartCycle(t *testing.T) {
	rom := []byte{
		0x6A, 0xFF, // LD VA, 0xFF
		0x12, 0x00, // JP 0x200
	}

	vm := chip8.NewCPU(600)
	vm.Output = io.Discard
	assert.NoError(t, vm.LoadROM(rom))
	for i := 0; i < 10; i++ {
		assert.NoError(t, vm.Tick())
	}
	assert.Equal(t, 0xFF, int(vm.V[0xA]))

	// Restart the way the frontends do: reset, then reload.
	vm.Reset()
	assert.Equal(t, 0, int(vm.V[0xA]))
	assert.NoError(t, vm.LoadROM(rom))
	assert.NoError(t, vm.Tick())
	assert.Equal(t, 0xFF, int(vm.V[0xA]))
}
