// Package chip8 implements the CHIP-8 virtual machine core: memory, registers,
// timers, framebuffer and the instruction engine that drives them. The host is
// expected to own a single CPU, write key state into PressedKeys, and call
// Tick once per emulated cycle at its configured clock rate.
package chip8

import (
	"fmt"
	"io"
	"math/rand"
	"time"
)

// timerRate is the fixed logical rate of the delay and sound timers in Hz,
// independent of the configured instruction clock.
const timerRate = 60

// StackDepth is the number of return addresses the call stack can hold.
const StackDepth = 16

type CPU struct {
	// V holds the general purpose registers V0-VF. VF doubles as the
	// carry/borrow/collision flag and is overwritten as a side effect of
	// every instruction that defines a flag semantic.
	V [16]byte
	// I is the index register; only the low 12 bits are meaningful.
	I uint16
	// PC points at the next two-byte instruction to fetch.
	PC uint16
	// SP counts the return addresses currently on the stack.
	SP byte
	// Stack holds the call stack, Stack[SP-1] being the most recent entry.
	Stack [StackDepth]uint16

	// DT and ST are the delay and sound timers, decremented at 60 Hz.
	DT byte
	ST byte

	RAM     RAM
	Display Display

	// PressedKeys reflects the currently held keypad keys 0-F. It is
	// written by the host's input layer and only read by the engine.
	PressedKeys [16]bool

	// Cycle counts executed emulated cycles. The 60 Hz timer boundary is
	// derived from it.
	Cycle uint64

	// ClockHz is the configured instruction clock rate. Change it through
	// SetClockRate so the timer coupling stays consistent.
	ClockHz uint

	// Hold pauses execution entirely when set via SetHoldMode. Unlike the
	// key-wait stall, a held CPU advances neither cycles nor timers.
	Hold bool

	// Rand is the source for the RND instruction. Tests may replace it
	// with a seeded source for determinism.
	Rand *rand.Rand

	// Output is where diagnostic dumps are written on a fatal fault.
	// If nil, os.Stdout is used.
	Output io.Writer

	cyclesPerTick uint64

	// Key-wait stall state: waiting is set by Fx0A when no key is held,
	// waitReg names the destination register of the stalled instruction.
	waiting bool
	waitReg byte

	// fault latches the first execution fault. Once set the CPU never
	// executes again.
	fault error

	// inst holds the instruction word currently being executed.
	inst uint16
}

// NewCPU returns a machine with zeroed registers, the font table seeded and
// the program counter at ProgramStart, ticking at clockHz instructions per
// second.
func NewCPU(clockHz uint) *CPU {
	c := &CPU{
		Rand: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	c.SetClockRate(clockHz)
	c.Reset()
	return c
}

// Reset re-zeroes all machine state and re-seeds the font table. The clock
// rate, RNG and output sink survive a reset. Reset must be called before
// loading a new ROM into a machine that has already run.
func (c *CPU) Reset() {
	c.V = [16]byte{}
	c.I = 0
	c.PC = ProgramStart
	c.SP = 0
	c.Stack = [StackDepth]uint16{}
	c.DT = 0
	c.ST = 0
	c.RAM.Reset()
	c.Display.Clear()
	c.PressedKeys = [16]bool{}
	c.Cycle = 0
	c.Hold = false
	c.waiting = false
	c.waitReg = 0
	c.fault = nil
	c.inst = 0
}

// LoadROM copies a program into memory starting at ProgramStart. Oversized
// programs are rejected with ErrROMTooLarge and leave the machine untouched.
func (c *CPU) LoadROM(rom []byte) error {
	if err := c.RAM.Load(rom); err != nil {
		return fmt.Errorf("loading rom: %w", err)
	}
	return nil
}

// SetClockRate changes the instruction clock without resetting other state.
// The 60 Hz timer coupling is recomputed from the new rate.
func (c *CPU) SetClockRate(clockHz uint) {
	if clockHz == 0 {
		clockHz = 1
	}
	c.ClockHz = clockHz
	c.cyclesPerTick = uint64(clockHz / timerRate)
	if c.cyclesPerTick == 0 {
		c.cyclesPerTick = 1
	}
}

// SetHoldMode pauses or resumes the machine. This is the host's manual pause,
// distinct from the key-wait stall.
func (c *CPU) SetHoldMode(hold bool) {
	c.Hold = hold
}

// Waiting reports whether the machine is stalled on a wait-for-key
// instruction.
func (c *CPU) Waiting() bool {
	return c.waiting
}

// Fault returns the latched execution fault, or nil while the machine is
// healthy.
func (c *CPU) Fault() error {
	return c.fault
}

// Tick executes one emulated cycle: fetch the instruction word at PC, decode
// it by nibble, execute its effects and advance PC per the instruction's
// category. Every cyclesPerTick executed cycles the delay and sound timers
// are decremented once, which keeps them at their fixed 60 Hz rate no matter
// the configured clock.
//
// Execution faults (illegal opcodes, stack misuse, invalid operands) are
// fatal: a diagnostic dump is written to Output, the fault is latched and
// returned, and every later Tick returns the same fault without executing.
func (c *CPU) Tick() error {
	if c.fault != nil {
		return c.fault
	}
	if c.Hold {
		return nil
	}
	if c.waiting {
		if key, ok := c.heldKey(); ok {
			c.V[c.waitReg] = key
			c.PC += 2
			c.waiting = false
		}
		c.endCycle()
		return nil
	}

	opAddr := c.PC
	if int(opAddr)+1 >= RAMSize {
		return c.fail(opAddr, fmt.Errorf("%w: fetch at 0x%04X out of range", ErrIllegalInstruction, opAddr))
	}
	c.inst = uint16(c.RAM.Data[opAddr])<<8 | uint16(c.RAM.Data[opAddr+1])
	c.PC += 2

	if err := c.execute(); err != nil {
		return c.fail(opAddr, err)
	}
	c.endCycle()
	return nil
}

// execute runs the instruction word in c.inst. PC has already been advanced
// past it, so skips add 2 more and Fx0A rolls it back while stalling.
func (c *CPU) execute() error {
	inst := c.inst
	x := byte(inst >> 8 & 0x0F)
	y := byte(inst >> 4 & 0x0F)
	n := byte(inst & 0x000F)
	kk := byte(inst)
	nnn := inst & 0x0FFF

	switch inst >> 12 {
	case 0x0:
		switch kk {
		case 0xE0: // CLS
			c.Display.Clear()
		case 0xEE: // RET
			addr, err := c.stackPop()
			if err != nil {
				return err
			}
			c.PC = addr
		default:
			// 0nnn SYS jumps into native RCA 1802 routines, which no
			// modern interpreter carries.
			return fmt.Errorf("%w: SYS 0x%03X", ErrIllegalInstruction, nnn)
		}

	case 0x1: // JP nnn
		c.PC = nnn

	case 0x2: // CALL nnn
		if err := c.stackPush(c.PC); err != nil {
			return err
		}
		c.PC = nnn

	case 0x3: // SE Vx, kk
		c.skipIf(c.V[x] == kk)

	case 0x4: // SNE Vx, kk
		c.skipIf(c.V[x] != kk)

	case 0x5: // SE Vx, Vy
		if n != 0 {
			return fmt.Errorf("%w: 0x%04X", ErrIllegalInstruction, inst)
		}
		c.skipIf(c.V[x] == c.V[y])

	case 0x6: // LD Vx, kk
		c.V[x] = kk

	case 0x7: // ADD Vx, kk (no flag)
		c.V[x] += kk

	case 0x8:
		return c.executeALU(x, y, n)

	case 0x9: // SNE Vx, Vy
		if n != 0 {
			return fmt.Errorf("%w: 0x%04X", ErrIllegalInstruction, inst)
		}
		c.skipIf(c.V[x] != c.V[y])

	case 0xA: // LD I, nnn
		c.I = nnn

	case 0xB: // JP V0, nnn
		c.PC = nnn + uint16(c.V[0x0])

	case 0xC: // RND Vx, kk
		c.V[x] = byte(c.Rand.Intn(256)) & kk

	case 0xD: // DRW Vx, Vy, n
		return c.draw(x, y, n)

	case 0xE:
		switch kk {
		case 0x9E: // SKP Vx
			c.skipIf(c.keyHeld(c.V[x]))
		case 0xA1: // SKNP Vx
			c.skipIf(!c.keyHeld(c.V[x]))
		default:
			return fmt.Errorf("%w: 0x%04X", ErrIllegalInstruction, inst)
		}

	case 0xF:
		return c.executeMisc(x, kk)
	}
	return nil
}

// executeALU runs the 8xyn register arithmetic and shift family.
func (c *CPU) executeALU(x, y, n byte) error {
	switch n {
	case 0x0: // LD Vx, Vy
		c.V[x] = c.V[y]
	case 0x1: // OR
		c.V[x] |= c.V[y]
	case 0x2: // AND
		c.V[x] &= c.V[y]
	case 0x3: // XOR
		c.V[x] ^= c.V[y]
	case 0x4: // ADD with carry
		sum := uint16(c.V[x]) + uint16(c.V[y])
		c.V[x] = byte(sum)
		c.setFlag(sum > 0xFF)
	case 0x5: // SUB: Vx -= Vy, VF = no borrow
		noBorrow := c.V[x] >= c.V[y]
		c.V[x] -= c.V[y]
		c.setFlag(noBorrow)
	case 0x6: // SHR: VF = pre-shift LSB
		lsb := c.V[x] & 0x01
		c.V[x] >>= 1
		c.V[0xF] = lsb
	case 0x7: // SUBN: Vx = Vy - Vx, VF = no borrow
		noBorrow := c.V[y] >= c.V[x]
		c.V[x] = c.V[y] - c.V[x]
		c.setFlag(noBorrow)
	case 0xE: // SHL: VF = pre-shift MSB
		msb := c.V[x] >> 7
		c.V[x] <<= 1
		c.V[0xF] = msb
	default:
		return fmt.Errorf("%w: 0x%04X", ErrIllegalInstruction, c.inst)
	}
	return nil
}

// executeMisc runs the Fxkk family: timers, key wait, index arithmetic, font
// addressing, BCD and register block transfers.
func (c *CPU) executeMisc(x, kk byte) error {
	switch kk {
	case 0x07: // LD Vx, DT
		c.V[x] = c.DT
	case 0x0A: // LD Vx, K: stall until a key is held
		if key, ok := c.heldKey(); ok {
			c.V[x] = key
		} else {
			c.waiting = true
			c.waitReg = x
			c.PC -= 2
		}
	case 0x15: // LD DT, Vx
		c.DT = c.V[x]
	case 0x18: // LD ST, Vx
		c.ST = c.V[x]
	case 0x1E: // ADD I, Vx
		c.I += uint16(c.V[x])
	case 0x29: // LD F, Vx: I = address of digit sprite
		if c.V[x] > 0xF {
			return fmt.Errorf("%w: no sprite for digit 0x%02X", ErrInvalidOperand, c.V[x])
		}
		c.I = FontAddress(c.V[x])
	case 0x33: // LD B, Vx: BCD digits to I, I+1, I+2
		if int(c.I)+2 >= RAMSize {
			return fmt.Errorf("%w: BCD store at 0x%04X out of range", ErrInvalidOperand, c.I)
		}
		v := c.V[x]
		c.RAM.Data[c.I] = v / 100
		c.RAM.Data[c.I+1] = v / 10 % 10
		c.RAM.Data[c.I+2] = v % 10
	case 0x55: // LD [I], Vx: store V0..Vx
		if int(c.I)+int(x) >= RAMSize {
			return fmt.Errorf("%w: register store at 0x%04X out of range", ErrInvalidOperand, c.I)
		}
		copy(c.RAM.Data[c.I:], c.V[:x+1])
	case 0x65: // LD Vx, [I]: load V0..Vx
		if int(c.I)+int(x) >= RAMSize {
			return fmt.Errorf("%w: register load at 0x%04X out of range", ErrInvalidOperand, c.I)
		}
		copy(c.V[:x+1], c.RAM.Data[c.I:])
	default:
		return fmt.Errorf("%w: 0x%04X", ErrIllegalInstruction, c.inst)
	}
	return nil
}

// draw XORs the n-row sprite at memory address I onto the framebuffer at
// (Vx, Vy) and sets VF to 1 if any lit pixel was turned off.
func (c *CPU) draw(x, y, n byte) error {
	if n > 15 {
		// Unreachable: n is a 4-bit field. Kept as an invariant assertion.
		return fmt.Errorf("%w: sprite height %d exceeds 15", ErrInvalidOperand, n)
	}
	end := int(c.I) + int(n)
	if end > RAMSize {
		return fmt.Errorf("%w: sprite read at 0x%04X out of range", ErrInvalidOperand, c.I)
	}
	collision := c.Display.Draw(c.V[x], c.V[y], c.RAM.Data[c.I:end])
	c.setFlag(collision)
	return nil
}

// skipIf advances PC past the next instruction when cond holds. PC has
// already moved past the current instruction, so a satisfied skip nets +4.
func (c *CPU) skipIf(cond bool) {
	if cond {
		c.PC += 2
	}
}

// setFlag writes a boolean flag outcome into VF.
func (c *CPU) setFlag(set bool) {
	if set {
		c.V[0xF] = 1
	} else {
		c.V[0xF] = 0
	}
}

// stackPush records a return address. Pushing at full depth is a fatal fault.
func (c *CPU) stackPush(addr uint16) error {
	if c.SP == StackDepth {
		return ErrStackOverflow
	}
	c.Stack[c.SP] = addr
	c.SP++
	return nil
}

// stackPop returns the most recent return address. Popping an empty stack is
// a fatal fault.
func (c *CPU) stackPop() (uint16, error) {
	if c.SP == 0 {
		return 0, ErrStackUnderflow
	}
	c.SP--
	return c.Stack[c.SP], nil
}

// heldKey returns the lowest-numbered currently held key, if any.
func (c *CPU) heldKey() (byte, bool) {
	for i, held := range c.PressedKeys {
		if held {
			return byte(i), true
		}
	}
	return 0, false
}

// keyHeld reports whether the key named by the low nibble of v is held.
func (c *CPU) keyHeld(v byte) bool {
	return c.PressedKeys[v&0x0F]
}

// endCycle advances the cycle counter and decrements the timers whenever the
// counter crosses a 60 Hz boundary of the configured clock.
func (c *CPU) endCycle() {
	c.Cycle++
	if c.Cycle%c.cyclesPerTick == 0 {
		c.tickTimers()
	}
}

// tickTimers decrements both timers by one, saturating at zero.
func (c *CPU) tickTimers() {
	if c.DT > 0 {
		c.DT--
	}
	if c.ST > 0 {
		c.ST--
	}
}

// fail writes a diagnostic snapshot to the output sink, latches the fault and
// returns it.
func (c *CPU) fail(addr uint16, err error) error {
	err = fmt.Errorf("fault at 0x%04X (opcode 0x%04X): %w", addr, c.inst, err)
	c.fault = err
	c.dumpState(err)
	return err
}
