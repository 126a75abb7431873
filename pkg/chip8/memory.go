package chip8

import "fmt"

const (
	// RAMSize is the full addressable memory of the machine, 4 kB.
	RAMSize = 4096

	// ProgramStart is the address programs are loaded at and start executing from.
	// Addresses below it are reserved for the interpreter and the font table.
	ProgramStart = 0x200

	// MaxROMSize is the largest program that fits between ProgramStart and the
	// end of memory.
	MaxROMSize = RAMSize - ProgramStart

	// GlyphSize is the height in bytes of one built-in hexadecimal digit sprite.
	GlyphSize = 5
)

// fontset holds the 16 built-in digit sprites (0-F), 5 bytes each.
// The sprite for digit d lives at address 5*d.
var fontset = [16 * GlyphSize]byte{
	0xF0, 0x90, 0x90, 0x90, 0xF0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xF0, 0x10, 0xF0, 0x80, 0xF0, // 2
	0xF0, 0x10, 0xF0, 0x10, 0xF0, // 3
	0x90, 0x90, 0xF0, 0x10, 0x10, // 4
	0xF0, 0x80, 0xF0, 0x10, 0xF0, // 5
	0xF0, 0x80, 0xF0, 0x90, 0xF0, // 6
	0xF0, 0x10, 0x10, 0x10, 0x10, // 7
	0xF0, 0x90, 0xF0, 0x90, 0xF0, // 8
	0xF0, 0x90, 0xF0, 0x10, 0xF0, // 9
	0xF0, 0x90, 0xF0, 0x90, 0x90, // A
	0xE0, 0x90, 0xE0, 0x90, 0xE0, // B
	0xF0, 0x80, 0x80, 0x80, 0xF0, // C
	0xE0, 0x90, 0x90, 0x90, 0xE0, // D
	0xF0, 0x80, 0xF0, 0x80, 0xF0, // E
	0xF0, 0x80, 0xF0, 0x80, 0x80, // F
}

// RAM is the flat 4 kB address space of the machine.
type RAM struct {
	Data [RAMSize]byte
}

// Reset zeroes all memory and re-seeds the font table at address 0.
func (r *RAM) Reset() {
	r.Data = [RAMSize]byte{}
	copy(r.Data[:], fontset[:])
}

// Load copies a program into memory starting at ProgramStart. Programs larger
// than the available space are rejected without touching memory.
func (r *RAM) Load(rom []byte) error {
	if len(rom) > MaxROMSize {
		return fmt.Errorf("%w: %d bytes > %d bytes", ErrROMTooLarge, len(rom), MaxROMSize)
	}
	copy(r.Data[ProgramStart:], rom)
	return nil
}

// FontAddress returns the memory address of the built-in sprite for digit.
// Callers must validate digit <= 0xF.
func FontAddress(digit byte) uint16 {
	return uint16(digit) * GlyphSize
}
