package cpu

// Bus is everything the CPU needs from the rest of the machine.
//
// Read and Write are what real hardware interleaves a PPU/APU/timer/DMA
// step into: each call advances every other bus-attached component by
// one machine cycle before the access completes, so an instruction that
// issues N bus accesses drives exactly N machine cycles that way. Tick
// covers the remaining machine cycles an instruction burns without
// touching the bus at all - register-only ALU work, wait states, taken
// branches' extra cycle. Peek and Poke reach the interrupt enable/flag
// registers without costing a machine cycle, since checking for a
// pending interrupt and clearing one are internal CPU bookkeeping, not
// bus traffic.
type Bus interface {
	Read(addr uint16) uint8
	Write(addr uint16, value uint8)
	Tick(tCycles int)
	Peek(addr uint16) uint8
	Poke(addr uint16, value uint8)
}
