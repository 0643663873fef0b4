package gb

import "github.com/corvee-dev/gbcore/gb/addr"

// readDirect decodes addr into the component that owns it and returns
// its value, without advancing the machine-cycle heartbeat.
// Invalid/unmapped addresses read back 0xFF, matching real hardware's
// floating-bus behavior and spec.md §4.8's "all bus operations succeed
// by construction" invariant.
//
// This is the non-ticking half of the bus: DMA's byte-at-a-time copy
// runs from inside machineCycle and must not recursively trigger
// another one, and the CPU's own interrupt-pending check peeks IE/IF
// without that being a real bus access (see Peek).
func (gb *GameBoy) readDirect(a uint16) uint8 {
	switch {
	case a <= addr.ROMBankNEnd:
		return gb.cart.Read(a)
	case a >= addr.VRAMStart && a <= addr.VRAMEnd:
		return gb.ppu.ReadVRAM(a - addr.VRAMStart)
	case a >= addr.ExtRAMStart && a <= addr.ExtRAMEnd:
		return gb.cart.Read(a)
	case a >= addr.WRAM0Start && a <= addr.WRAM1End:
		return gb.wram[a-addr.WRAM0Start]
	case a >= addr.EchoStart && a <= addr.EchoEnd:
		return gb.wram[a-addr.EchoStart]
	case a >= addr.OAMStart && a <= addr.OAMEnd:
		return gb.ppu.ReadOAM(a - addr.OAMStart)
	case a >= addr.UnusableStart && a <= addr.UnusableEnd:
		return 0xFF
	case a == addr.P1:
		return gb.joy.Read()
	case a == addr.SB:
		return gb.ser.ReadSB()
	case a == addr.SC:
		return gb.ser.ReadSC()
	case a == addr.DIV:
		return gb.tmr.DIV()
	case a == addr.TIMA:
		return gb.tmr.TIMA()
	case a == addr.TMA:
		return gb.tmr.TMA()
	case a == addr.TAC:
		return gb.tmr.TAC()
	case a == addr.IF:
		return gb.ifr | 0xE0
	case a >= addr.AudioStart && a <= addr.AudioEnd:
		return gb.apu.ReadRegister(a)
	case a >= addr.LCDC && a <= addr.WX:
		return gb.ppu.ReadRegister(a)
	case a >= addr.HRAMStart && a <= addr.HRAMEnd:
		return gb.hram[a-addr.HRAMStart]
	case a == addr.IE:
		return gb.ie
	default:
		return 0xFF
	}
}

// writeDirect decodes addr into the component that owns it and stores
// value, without advancing the machine-cycle heartbeat; see readDirect.
// Includes the three documented special cases around DIV/TIMA/IF and
// the OAM DMA trigger (spec.md §4.1).
func (gb *GameBoy) writeDirect(a uint16, value uint8) {
	switch {
	case a <= addr.ROMBankNEnd:
		gb.cart.Write(a, value)
	case a >= addr.VRAMStart && a <= addr.VRAMEnd:
		gb.ppu.WriteVRAM(a-addr.VRAMStart, value)
	case a >= addr.ExtRAMStart && a <= addr.ExtRAMEnd:
		gb.cart.Write(a, value)
	case a >= addr.WRAM0Start && a <= addr.WRAM1End:
		gb.wram[a-addr.WRAM0Start] = value
	case a >= addr.EchoStart && a <= addr.EchoEnd:
		gb.wram[a-addr.EchoStart] = value
	case a >= addr.OAMStart && a <= addr.OAMEnd:
		gb.ppu.WriteOAM(a-addr.OAMStart, value)
	case a >= addr.UnusableStart && a <= addr.UnusableEnd:
		// writes ignored
	case a == addr.P1:
		gb.joy.WriteSelect(value)
	case a == addr.SB:
		gb.ser.WriteSB(value)
	case a == addr.SC:
		gb.ser.WriteSC(value)
	case a == addr.DIV:
		gb.tmr.WriteDIV()
	case a == addr.TIMA:
		gb.tmr.WriteTIMA(value)
	case a == addr.TMA:
		gb.tmr.WriteTMA(value)
	case a == addr.TAC:
		gb.tmr.WriteTAC(value)
	case a == addr.IF:
		gb.ifr = value & 0x1F
	case a == addr.DMA:
		gb.dma.Start(value)
	case a >= addr.AudioStart && a <= addr.AudioEnd:
		gb.apu.WriteRegister(a, value)
	case a >= addr.LCDC && a <= addr.WX:
		gb.ppu.WriteRegister(a, value)
	case a >= addr.HRAMStart && a <= addr.HRAMEnd:
		gb.hram[a-addr.HRAMStart] = value
	case a == addr.IE:
		gb.ie = value & 0x1F
	default:
		// unmapped I/O: write ignored
	}
}
