// Package video implements the DMG PPU: the SearchOAM/DataTransfer/HBlank/
// VBlank mode state machine, scanline-based background/window/sprite
// rasterization, and OAM DMA (spec.md §2, §4.5).
package video

import "github.com/corvee-dev/gbcore/gb/addr"

// Mode is the PPU's current rendering stage; the numeric values match
// STAT bits 1-0.
type Mode uint8

const (
	ModeHBlank Mode = 0
	ModeVBlank Mode = 1
	ModeOAM    Mode = 2
	ModeData   Mode = 3
)

const (
	oamDots    = 80
	dataDots   = 172
	hblankDots = 204
	lineDots   = oamDots + dataDots + hblankDots // 456
	vblankDots = lineDots * 10                   // 4560, 10 extra scanlines
)

// PPU owns VRAM, OAM, its LCD registers, and the double-buffered output
// framebuffer. It is driven one machine cycle (4 dots) at a time, matching
// every other bus-attached component (spec.md §4.1).
type PPU struct {
	vram [0x2000]byte
	oam  [0xA0]byte

	lcdc, stat      uint8
	scy, scx        uint8
	ly, lyc         uint8
	wy, wx          uint8
	bgp, obp0, obp1 uint8

	mode Mode
	dot  int

	windowLine int
	bgIndex    [FramebufferWidth]uint8
	priority   spritePriorityBuffer

	buffers *DoubleBuffer

	requestInterrupt func(addr.Interrupt)

	// oamLocked is true while an OAM DMA transfer owns the bus; CPU OAM
	// reads during this window return 0xFF (spec.md §4.3). The PPU
	// itself is exempt, since it addresses OAM directly.
	oamLocked bool
}

// New returns a PPU powered on as if just after the boot ROM handed off
// control, with LY already at 0 and mode OAM.
func New(requestInterrupt func(addr.Interrupt)) *PPU {
	return &PPU{
		buffers:          &DoubleBuffer{},
		requestInterrupt: requestInterrupt,
		mode:             ModeOAM,
		lcdc:             0x91,
		bgp:              0xFC,
	}
}

// Framebuffer returns the double-buffered output; callers read Current()
// for the most recently completed frame.
func (p *PPU) Framebuffer() *DoubleBuffer {
	return p.buffers
}

// SetOAMLocked is called by the DMA engine while a transfer is active.
func (p *PPU) SetOAMLocked(locked bool) {
	p.oamLocked = locked
}

// ReadVRAM and WriteVRAM address VRAM (0x8000-0x9FFF) directly; the bus
// subtracts 0x8000 before calling in.
func (p *PPU) ReadVRAM(offset uint16) uint8     { return p.vram[offset] }
func (p *PPU) WriteVRAM(offset uint16, v uint8) { p.vram[offset] = v }

// ReadOAM and WriteOAM address OAM (0xFE00-0xFE9F) directly; the bus
// subtracts 0xFE00 before calling in. ReadOAM is for CPU-initiated bus
// reads, which see 0xFF while a DMA transfer is in flight; DMA itself
// writes through WriteOAM, and the PPU's own scanline scan reads the
// backing array without going through this gate.
func (p *PPU) ReadOAM(offset uint16) uint8 {
	if p.oamLocked {
		return 0xFF
	}
	return p.oam[offset]
}

func (p *PPU) WriteOAM(offset uint16, v uint8) { p.oam[offset] = v }

// ReadRegister and WriteRegister handle LCDC/STAT/SCY/SCX/LY/LYC/BGP/OBP0/
// OBP1/WY/WX (0xFF40-0xFF4B, excluding DMA which the bus owns directly).
func (p *PPU) ReadRegister(a uint16) uint8 {
	switch a {
	case addr.LCDC:
		return p.lcdc
	case addr.STAT:
		return p.stat | 0x80
	case addr.SCY:
		return p.scy
	case addr.SCX:
		return p.scx
	case addr.LY:
		return p.ly
	case addr.LYC:
		return p.lyc
	case addr.BGP:
		return p.bgp
	case addr.OBP0:
		return p.obp0
	case addr.OBP1:
		return p.obp1
	case addr.WY:
		return p.wy
	case addr.WX:
		return p.wx
	default:
		return 0xFF
	}
}

func (p *PPU) WriteRegister(a uint16, v uint8) {
	switch a {
	case addr.LCDC:
		wasEnabled := p.lcdc&0x80 != 0
		p.lcdc = v
		if wasEnabled && v&0x80 == 0 {
			p.disable()
		}
	case addr.STAT:
		p.stat = (p.stat & 0x07) | (v & 0x78)
	case addr.SCY:
		p.scy = v
	case addr.SCX:
		p.scx = v
	case addr.LY:
		// read-only on real hardware
	case addr.LYC:
		p.lyc = v
		p.compareLYC()
	case addr.BGP:
		p.bgp = v
	case addr.OBP0:
		p.obp0 = v
	case addr.OBP1:
		p.obp1 = v
	case addr.WY:
		p.wy = v
	case addr.WX:
		p.wx = v
	}
}

func (p *PPU) disable() {
	p.mode = ModeHBlank
	p.dot = 0
	p.ly = 0
	p.windowLine = 0
	p.setMode(ModeHBlank)
}

func (p *PPU) lcdEnabled() bool { return p.lcdc&0x80 != 0 }

// Step advances the PPU by exactly one machine cycle (4 dots).
func (p *PPU) Step() {
	if !p.lcdEnabled() {
		return
	}

	p.dot += 4

	switch p.mode {
	case ModeOAM:
		if p.dot >= oamDots {
			p.dot -= oamDots
			p.setMode(ModeData)
		}
	case ModeData:
		if p.dot >= dataDots {
			p.dot -= dataDots
			p.drawScanline()
			p.setMode(ModeHBlank)
			p.statInterruptIfEnabled(3)
		}
	case ModeHBlank:
		if p.dot >= hblankDots {
			p.dot -= hblankDots
			p.setLY(p.ly + 1)
			if p.ly == 144 {
				p.setMode(ModeVBlank)
				p.windowLine = 0
				p.requestInterrupt(addr.VBlank)
				p.statInterruptIfEnabled(4)
			} else {
				p.setMode(ModeOAM)
				p.statInterruptIfEnabled(5)
			}
		}
	case ModeVBlank:
		if p.dot >= lineDots {
			p.dot -= lineDots
			if p.ly < 153 {
				p.setLY(p.ly + 1)
			} else {
				p.setLY(0)
				p.buffers.Swap()
				p.setMode(ModeOAM)
				p.statInterruptIfEnabled(5)
			}
		}
	}
}

// statInterruptIfEnabled requests LCDStat if the given STAT source bit
// (3=HBlank, 4=VBlank, 5=OAM) is enabled.
func (p *PPU) statInterruptIfEnabled(bit uint8) {
	if p.stat&(1<<bit) != 0 {
		p.requestInterrupt(addr.LCDStat)
	}
}

func (p *PPU) setMode(mode Mode) {
	p.mode = mode
	p.stat = (p.stat &^ 0x03) | uint8(mode)
}

func (p *PPU) setLY(line uint8) {
	p.ly = line
	p.compareLYC()
}

func (p *PPU) compareLYC() {
	if p.ly == p.lyc {
		p.stat |= 0x04
		if p.stat&0x40 != 0 {
			p.requestInterrupt(addr.LCDStat)
		}
	} else {
		p.stat &^= 0x04
	}
}
