package gb

import (
	"testing"

	"github.com/corvee-dev/gbcore/gb/cartridge"
	"github.com/corvee-dev/gbcore/gb/joypad"
	"github.com/stretchr/testify/assert"
)

// minimalROM builds a 32 KiB ROM-only cartridge with a valid header
// checksum, just large enough to boot the core for orchestration tests.
func minimalROM() []byte {
	data := make([]byte, 0x8000)
	copy(data[0x134:], []byte("TEST"))
	data[0x147] = 0x00 // ROM only
	data[0x148] = 0x00 // 32 KiB
	data[0x149] = 0x00 // no RAM

	var x uint8
	for i := 0x134; i <= 0x14C; i++ {
		x = x - data[i] - 1
	}
	data[0x14D] = x
	return data
}

func newTestGameBoy(t *testing.T) *GameBoy {
	t.Helper()
	cart, err := cartridge.Load(minimalROM())
	assert.NoError(t, err)
	return New(cart)
}

func TestTickAdvancesCyclesAndExecutesInstructions(t *testing.T) {
	gb := newTestGameBoy(t)
	startPC := gb.cpu.PC()

	gb.Tick(1.0 / 60.0)

	assert.NotEqual(t, startPC, gb.cpu.PC())
	assert.Greater(t, gb.totalCycles, uint64(0))
}

func TestOAMReadsAreBlockedDuringDMA(t *testing.T) {
	gb := newTestGameBoy(t)
	gb.wram[0] = 0xAB // source byte at 0xC000, copied to OAM offset 0

	gb.writeDirect(0xFF46, 0xC0) // DMA source = 0xC000; only requests the transfer
	assert.NotEqual(t, uint8(0xFF), gb.readDirect(0xFE00), "OAM isn't locked on the triggering cycle itself")

	for range 159 {
		gb.machineCycle() // one cycle later the request is promoted to active and OAM locks
		assert.Equal(t, uint8(0xFF), gb.readDirect(0xFE00))
	}

	gb.machineCycle() // 160th cycle of the transfer: the last byte lands and OAM unlocks
	assert.Equal(t, uint8(0xAB), gb.readDirect(0xFE00))
}

func TestDIVWriteResetsInternalCounter(t *testing.T) {
	gb := newTestGameBoy(t)
	gb.tickCycles(400)
	before := gb.Read(0xFF04)

	gb.Write(0xFF04, 0x00)

	assert.NotEqual(t, before, gb.Read(0xFF04))
	assert.Equal(t, uint8(0), gb.Read(0xFF04))
}

func TestJoypadTransitionRaisesInterrupt(t *testing.T) {
	gb := newTestGameBoy(t)
	gb.machineCycle()

	gb.SetJoypadState(joypad.State{A: true})
	gb.machineCycle()

	assert.NotEqual(t, uint8(0), gb.ifr&0x10)
}

func TestHRAMRoundTrips(t *testing.T) {
	gb := newTestGameBoy(t)
	gb.Write(0xFF90, 0x7E)
	assert.Equal(t, uint8(0x7E), gb.Read(0xFF90))
}
