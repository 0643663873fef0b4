// Package cpu implements the Sharp SM83 instruction set: registers, ALU
// operations, the opcode and CB-prefixed opcode tables, and interrupt
// dispatch.
package cpu

import "github.com/corvee-dev/gbcore/gb/addr"

// CPU holds the Sharp SM83 register file and the interrupt/halt state
// machine sitting in front of the opcode fetch loop.
type CPU struct {
	a, f uint8
	b, c uint8
	d, e uint8
	h, l uint8
	sp   uint16
	pc   uint16

	bus Bus

	ime     bool
	halted  bool
	stopped bool

	// interruptEnableRequested implements EI's one-instruction delay: EI
	// doesn't set ime directly, it arms this flag, which is consumed at
	// the end of the *next* Step.
	interruptEnableRequested bool

	// freezePC implements the HALT bug: leaving HALT with IME disabled
	// while an interrupt is pending skips the PC increment on the next
	// opcode fetch, causing the following byte to be read twice.
	freezePC bool
}

// New returns a CPU wired to bus, powered on at the post-boot-ROM state.
func New(bus Bus) *CPU {
	c := &CPU{bus: bus}
	c.a, c.f = 0x01, 0xB0
	c.b, c.c = 0x00, 0x13
	c.d, c.e = 0x00, 0xD8
	c.h, c.l = 0x01, 0x4D
	c.sp = 0xFFFE
	c.pc = 0x0100
	return c
}

// Step runs exactly one instruction (or one halted/stopped cycle, or one
// interrupt dispatch) and returns its declared t-cycle cost. The bus is
// ticked as the instruction runs, not afterward: every Read/Write call
// below drives one machine cycle by itself, and execute ticks the bus
// directly for the handful of cycles an opcode spends with no memory
// access.
func (c *CPU) Step() int {
	imeBefore := c.ime
	c.handleInterrupts()
	if imeBefore && !c.ime {
		// an interrupt was dispatched: this step is spent jumping to its
		// vector, and the handler's first opcode runs on the next Step
		return 20
	}

	if c.stopped {
		c.bus.Tick(4)
		return 4
	}

	if c.halted {
		c.bus.Tick(4)
		return 4
	}

	goingToEnableInterrupts := c.interruptEnableRequested
	c.interruptEnableRequested = false

	opcode := c.fetch()

	if c.freezePC {
		c.freezePC = false
		c.pc--
	}

	cycles := c.execute(opcode)

	if goingToEnableInterrupts {
		c.ime = true
	}

	return cycles
}

// Stopped reports whether STOP has halted the clock target; only a
// joypad press (handled by the orchestrator) resumes it.
func (c *CPU) Stopped() bool {
	return c.stopped
}

// Resume clears the STOP state, as real hardware does on a joypad
// button press.
func (c *CPU) Resume() {
	c.stopped = false
}

// PC exposes the program counter for debugging/disassembly hosts.
func (c *CPU) PC() uint16 {
	return c.pc
}

func (c *CPU) fetch() uint8 {
	value := c.bus.Read(c.pc)
	c.pc++
	return value
}

func (c *CPU) fetchWord() uint16 {
	low := c.fetch()
	high := c.fetch()
	return uint16(high)<<8 | uint16(low)
}

// handleInterrupts wakes the CPU out of HALT and, when IME is enabled,
// dispatches the highest-priority pending interrupt. It still runs while
// halted with IME disabled, since an enabled-but-masked interrupt is what
// wakes the CPU from HALT in the first place.
func (c *CPU) handleInterrupts() {
	if !c.ime && !c.halted {
		return
	}

	ie := c.bus.Peek(addr.IE)
	ifr := c.bus.Peek(addr.IF)
	pending := ie & ifr

	for _, interrupt := range addr.Priority {
		if pending&uint8(interrupt) != 0 {
			c.dispatchInterrupt(interrupt, ifr)
			return
		}
	}
}

func (c *CPU) dispatchInterrupt(interrupt addr.Interrupt, ifr uint8) {
	if c.halted && !c.ime {
		// The HALT state is left no matter the IME state, but when IME
		// is disabled the PC increment on the next fetch is skipped.
		c.halted = false
		c.freezePC = true
		return
	}

	c.ime = false
	c.bus.Poke(addr.IF, ifr&^uint8(interrupt))
	c.halted = false

	// Dispatch costs 5 machine cycles: two wait states, then push's own
	// two writes tick themselves, then one more to load the vector.
	c.bus.Tick(4)
	c.bus.Tick(4)
	c.push(c.pc)
	c.pc = interrupt.Vector()
	c.bus.Tick(4)
}
