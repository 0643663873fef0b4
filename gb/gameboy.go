// Package gb is the root orchestrator: it owns every component, wires
// them onto one address space, and drives the machine-cycle heartbeat
// that keeps the CPU, PPU, APU, timer, serial port, and OAM DMA engine
// in lockstep (spec.md §4.1).
package gb

import (
	"github.com/corvee-dev/gbcore/gb/addr"
	"github.com/corvee-dev/gbcore/gb/audio"
	"github.com/corvee-dev/gbcore/gb/cartridge"
	"github.com/corvee-dev/gbcore/gb/cpu"
	"github.com/corvee-dev/gbcore/gb/joypad"
	"github.com/corvee-dev/gbcore/gb/serial"
	"github.com/corvee-dev/gbcore/gb/timer"
	"github.com/corvee-dev/gbcore/gb/video"
)

const cyclesPerSecond = 4194304

// GameBoy owns every component and is the only thing the host touches.
type GameBoy struct {
	cpu  *cpu.CPU
	ppu  *video.PPU
	apu  *audio.APU
	tmr  *timer.Timer
	ser  *serial.Port
	joy  *joypad.Joypad
	cart *cartridge.Cartridge
	dma  *video.DMA

	wram [0x2000]uint8
	hram [0x7F]uint8
	ifr  uint8
	ie   uint8

	pendingJoypad joypad.State

	totalCycles  uint64
	targetCycles uint64
}

// New returns a GameBoy with cart loaded and every component powered on.
func New(cart *cartridge.Cartridge) *GameBoy {
	gb := &GameBoy{
		apu:  audio.New(),
		tmr:  timer.New(),
		ser:  serial.New(),
		joy:  joypad.New(),
		cart: cart,
		ifr:  0xE1,
	}
	gb.ppu = video.New(gb.requestInterrupt)
	gb.dma = video.NewDMA(gb.ppu, dmaBus{gb})
	gb.cpu = cpu.New(cpuBus{gb})
	return gb
}

// cpuBus adapts GameBoy to cpu.Bus under distinct method names for the
// t-cycle-counted Tick and the non-ticking Peek/Poke: GameBoy's own
// Tick(dt float64) is the host-facing clock-seconds API (spec.md §4.1),
// which can't share a method name with the CPU package's Bus.Tick.
type cpuBus struct{ gb *GameBoy }

func (b cpuBus) Read(a uint16) uint8     { return b.gb.Read(a) }
func (b cpuBus) Write(a uint16, v uint8) { b.gb.Write(a, v) }
func (b cpuBus) Tick(tCycles int)        { b.gb.tickCycles(tCycles) }
func (b cpuBus) Peek(a uint16) uint8     { return b.gb.readDirect(a) }
func (b cpuBus) Poke(a uint16, v uint8)  { b.gb.writeDirect(a, v) }

// dmaBus is the non-ticking BusReader the DMA engine reads through: its
// Step runs from inside machineCycle itself, so routing it through the
// ticking Read would recursively re-enter the heartbeat it's already
// part of.
type dmaBus struct{ gb *GameBoy }

func (b dmaBus) Read(a uint16) uint8 { return b.gb.readDirect(a) }

// CPU exposes the CPU for hosts that want register/PC introspection
// (debuggers, disassembler front ends).
func (gb *GameBoy) CPU() *cpu.CPU { return gb.cpu }

// Framebuffer returns the PPU's double-buffered, 2-bit-palette-index
// output.
func (gb *GameBoy) Framebuffer() *video.DoubleBuffer { return gb.ppu.Framebuffer() }

// Audio exposes the host-facing sample/debug surface (gb/audio.Provider).
func (gb *GameBoy) Audio() audio.Provider { return gb.apu }

// SetAudioSampleRate configures the APU's downsample target; hosts should
// call this once, matching whatever rate their output device was opened
// at, before pulling samples.
func (gb *GameBoy) SetAudioSampleRate(rate int) {
	gb.apu.SetHostSampleRate(rate)
}

// Tick advances the simulation by dt seconds of wall-clock time, running
// whole CPU instructions until the cycle target is met (spec.md §4.1).
func (gb *GameBoy) Tick(dt float64) {
	gb.targetCycles += uint64(dt*cyclesPerSecond + 0.5)

	for gb.totalCycles < gb.targetCycles {
		if gb.cpu.Stopped() {
			gb.totalCycles = gb.targetCycles
			break
		}
		gb.cpu.Step()
	}
}

// SetJoypadState records which buttons are held for the next
// machine_cycle to observe (spec.md §4.1 setJoypadState).
func (gb *GameBoy) SetJoypadState(s joypad.State) {
	gb.pendingJoypad = s
}

// SetSerialCallback installs the function invoked when an
// internal-clock serial transfer completes (spec.md §6).
func (gb *GameBoy) SetSerialCallback(fn func(uint8) uint8) {
	gb.ser.SetCallback(fn)
}

func (gb *GameBoy) requestInterrupt(interrupt addr.Interrupt) {
	gb.ifr |= uint8(interrupt)
}

// Read implements the CPU-facing bus read primitive (spec.md §4.1/§4.2):
// machine_cycle runs once, then the address is decoded exactly like
// readDirect. Every Read the CPU issues therefore drives exactly one
// machine cycle, matching spec.md §8's "for every bus read/write
// performed by the CPU, exactly one machine_cycle occurred" invariant.
func (gb *GameBoy) Read(a uint16) uint8 {
	gb.machineCycle()
	return gb.readDirect(a)
}

// Write is Read's write-side twin.
func (gb *GameBoy) Write(a uint16, value uint8) {
	gb.machineCycle()
	gb.writeDirect(a, value)
}

// tickCycles implements cpu.Bus's Tick: the t-cycles an instruction
// spends without touching the bus at all (internal register shuffling,
// wait states, a taken branch's extra cycle) still have to drive the
// same heartbeat a bus access would.
func (gb *GameBoy) tickCycles(tCycles int) {
	for range tCycles / 4 {
		gb.machineCycle()
	}
}

// machineCycle is the heartbeat: spec.md §4.1 lists six steps, extended
// here with a DMA byte transfer and the cartridge's RTC tick, both of
// which this core also drives once per machine cycle rather than in the
// coarser units spec.md's literal wording assumes for them.
func (gb *GameBoy) machineCycle() {
	gb.totalCycles += 4

	gb.dma.Advance()
	if gb.dma.Active() {
		gb.dma.Step()
	}

	if gb.joy.Apply(gb.pendingJoypad) {
		gb.requestInterrupt(addr.Joypad)
		gb.cpu.Resume()
	}

	if gb.tmr.Step() {
		gb.requestInterrupt(addr.Timer)
	}

	if gb.ser.Tick() {
		gb.requestInterrupt(addr.Serial)
	}

	gb.ppu.Step()
	gb.apu.Step()
	gb.cart.Tick()
}
