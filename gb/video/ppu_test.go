package video

import (
	"testing"

	"github.com/corvee-dev/gbcore/gb/addr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPPU() (*PPU, *[]addr.Interrupt) {
	requested := &[]addr.Interrupt{}
	p := New(func(i addr.Interrupt) {
		*requested = append(*requested, i)
	})
	return p, requested
}

func stepCycles(p *PPU, cycles int) {
	for i := 0; i < cycles; i++ {
		p.Step()
	}
}

func TestFramebufferPixelsAreAlwaysTwoBit(t *testing.T) {
	p, _ := newTestPPU()
	p.WriteRegister(addr.LCDC, 0x91)

	// fill VRAM tile 0 and map entry (0,0) with tile 0, arbitrary bits
	p.WriteVRAM(0, 0xFF)
	p.WriteVRAM(1, 0x00)

	stepCycles(p, lineDots*FramebufferHeight/4+1000)

	fb := p.Framebuffer().Current()
	for _, v := range fb.Pixels() {
		assert.LessOrEqual(t, v, uint8(3))
	}
}

func TestModeCyclesThroughOAMDataHBlankPerLine(t *testing.T) {
	p, _ := newTestPPU()
	p.WriteRegister(addr.LCDC, 0x80)

	assert.Equal(t, ModeOAM, p.mode)
	stepCycles(p, oamDots/4)
	assert.Equal(t, ModeData, p.mode)
	stepCycles(p, dataDots/4)
	assert.Equal(t, ModeHBlank, p.mode)
	stepCycles(p, hblankDots/4)
	assert.Equal(t, ModeOAM, p.mode)
	assert.Equal(t, uint8(1), p.ly)
}

func TestVBlankInterruptFiresAtLine144(t *testing.T) {
	p, requested := newTestPPU()
	p.WriteRegister(addr.LCDC, 0x80)

	stepCycles(p, lineDots/4*144)
	assert.Equal(t, ModeVBlank, p.mode)

	found := false
	for _, i := range *requested {
		if i == addr.VBlank {
			found = true
		}
	}
	assert.True(t, found)
}

func TestLYCCoincidenceRaisesStatWhenEnabled(t *testing.T) {
	p, requested := newTestPPU()
	p.WriteRegister(addr.STAT, 0x40)
	p.WriteRegister(addr.LYC, 5)
	p.WriteRegister(addr.LCDC, 0x80)

	stepCycles(p, lineDots/4*5)

	assert.Equal(t, uint8(5), p.ly)
	assert.NotZero(t, p.stat&0x04)

	found := false
	for _, i := range *requested {
		if i == addr.LCDStat {
			found = true
		}
	}
	assert.True(t, found)
}

func TestFrameCounterIncrementsOnceAtEndOfFrame(t *testing.T) {
	p, _ := newTestPPU()
	p.WriteRegister(addr.LCDC, 0x80)

	require.Equal(t, uint64(0), p.Framebuffer().Frame)
	stepCycles(p, (lineDots/4)*154)
	assert.Equal(t, uint64(1), p.Framebuffer().Frame)
}

func TestOAMReadsReturnFFWhileDMAActive(t *testing.T) {
	p, _ := newTestPPU()
	p.WriteOAM(0, 0x42)
	assert.Equal(t, uint8(0x42), p.ReadOAM(0))

	p.SetOAMLocked(true)
	assert.Equal(t, uint8(0xFF), p.ReadOAM(0))

	p.SetOAMLocked(false)
	assert.Equal(t, uint8(0x42), p.ReadOAM(0))
}

func TestSpritePriorityLowerXWinsTies(t *testing.T) {
	var buf spritePriorityBuffer
	buf.clear()

	assert.True(t, buf.tryClaim(10, 3, 20))
	assert.Equal(t, 3, buf.owner(10))

	// sprite with a lower screen X should steal the pixel
	assert.True(t, buf.tryClaim(10, 7, 15))
	assert.Equal(t, 7, buf.owner(10))

	// a later sprite at the same X but a higher OAM index must not win
	assert.False(t, buf.tryClaim(10, 9, 15))
	assert.Equal(t, 7, buf.owner(10))

	// a lower OAM index at the same X wins over the current owner
	assert.True(t, buf.tryClaim(10, 2, 15))
	assert.Equal(t, 2, buf.owner(10))
}
