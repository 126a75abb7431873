package chip8

import (
	"bytes"
	"errors"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestRAMResetSeedsFontTable(t *testing.T) {
	var r RAM
	r.Data[0x000] = 0xAB
	r.Data[0x300] = 0xCD
	r.Reset()

	assert.Equal(t, fontset[:], r.Data[:len(fontset)])
	assert.Equal(t, 0, int(r.Data[0x300]))
}

func TestLoadROM(t *testing.T) {
	rom := []byte{0x12, 0x00, 0xAB}

	c := NewCPU(500)
	assert.NoError(t, c.LoadROM(rom))
	assert.True(t, bytes.Equal(rom, c.RAM.Data[ProgramStart:ProgramStart+len(rom)]))
	// The reserved region stays intact.
	assert.Equal(t, fontset[:], c.RAM.Data[:len(fontset)])
}

func TestLoadROMMaxSize(t *testing.T) {
	c := NewCPU(500)
	assert.NoError(t, c.LoadROM(make([]byte, MaxROMSize)))
}

func TestLoadROMTooLarge(t *testing.T) {
	c := NewCPU(500)
	err := c.LoadROM(make([]byte, MaxROMSize+1))

	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrROMTooLarge))
	// A rejected load must not corrupt memory.
	for addr := ProgramStart; addr < RAMSize; addr++ {
		assert.Equal(t, 0, int(c.RAM.Data[addr]))
	}
}

func TestFontAddress(t *testing.T) {
	assert.Equal(t, 0x00, int(FontAddress(0x0)))
	assert.Equal(t, 0x05, int(FontAddress(0x1)))
	assert.Equal(t, 0x4B, int(FontAddress(0xF)))
}
