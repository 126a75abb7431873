package chip8

import (
	"fmt"
	"io"
	"os"
)

func (c *CPU) outputSink() io.Writer {
	if c.Output != nil {
		return c.Output
	}
	return os.Stdout
}

// DumpRegisters writes a textual rendering of the register file, timers and
// cycle counter. Debug output only, no stable schema.
func (c *CPU) DumpRegisters(w io.Writer) {
	fmt.Fprintf(w, "Registers:\n")
	fmt.Fprintf(w, "\tPC: 0x%04X  I: 0x%04X  SP: %d\n", c.PC, c.I, c.SP)
	fmt.Fprintf(w, "\tDT: 0x%02X  ST: 0x%02X  cycle: %d\n", c.DT, c.ST, c.Cycle)
	for row := 0; row < 4; row++ {
		fmt.Fprintf(w, "\tV%X: 0x%02X  V%X: 0x%02X  V%X: 0x%02X  V%X: 0x%02X\n",
			row*4, c.V[row*4],
			row*4+1, c.V[row*4+1],
			row*4+2, c.V[row*4+2],
			row*4+3, c.V[row*4+3],
		)
	}
}

// DumpStack writes the call stack contents and stack pointer.
func (c *CPU) DumpStack(w io.Writer) {
	fmt.Fprintf(w, "Stack:\n")
	fmt.Fprintf(w, "\tStack Pointer: %d\n", c.SP)
	fmt.Fprintf(w, "\tData:\n")
	for row := 0; row < 4; row++ {
		fmt.Fprintf(w, "\t\t0x%04X, 0x%04X, 0x%04X, 0x%04X\n",
			c.Stack[row*4],
			c.Stack[row*4+1],
			c.Stack[row*4+2],
			c.Stack[row*4+3],
		)
	}
}

// DumpRAM writes the full memory contents, eight bytes per line.
func (c *CPU) DumpRAM(w io.Writer) {
	fmt.Fprintf(w, "RAM:\n")
	for addr := 0; addr < RAMSize; addr += 8 {
		row := c.RAM.Data[addr : addr+8]
		fmt.Fprintf(w, "\t0x%03X: %02X %02X %02X %02X %02X %02X %02X %02X\n",
			addr, row[0], row[1], row[2], row[3], row[4], row[5], row[6], row[7])
	}
}

// dumpState writes the full diagnostic snapshot emitted on a fatal fault.
func (c *CPU) dumpState(cause error) {
	w := c.outputSink()
	fmt.Fprintf(w, "=== fatal fault: %v ===\n", cause)
	c.DumpRegisters(w)
	c.DumpStack(w)
	c.DumpRAM(w)
}
