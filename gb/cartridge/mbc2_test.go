package cartridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMBC2RAMIsNibbleWide(t *testing.T) {
	m := newMBC2(makeROM(2))
	m.Write(0x0000, 0x0A) // enable RAM (address bit 8 clear)

	m.Write(0xA000, 0xFF)
	assert.Equal(t, uint8(0xFF), m.Read(0xA000))

	m.Write(0xA000, 0x03)
	assert.Equal(t, uint8(0xF3), m.Read(0xA000), "upper nibble always reads as 1s")
}

func TestMBC2RAMEnableRequiresAddressBit8Clear(t *testing.T) {
	m := newMBC2(makeROM(2))
	m.Write(0x0100, 0x0A) // bit 8 set -> this is a ROM bank write, not RAM enable

	m.Write(0xA000, 0x05)
	assert.Equal(t, uint8(0xFF), m.Read(0xA000), "RAM should still be disabled")
}

func TestMBC2ROMBankSelectRequiresAddressBit8Set(t *testing.T) {
	m := newMBC2(makeROM(4))
	m.Write(0x2100, 0x03)

	assert.Equal(t, uint8(3), m.Read(0x4000))
}

func TestMBC2RAMOutsideA1FFIsUnmapped(t *testing.T) {
	m := newMBC2(makeROM(2))
	m.Write(0x0000, 0x0A)
	assert.Equal(t, uint8(0xFF), m.Read(0xA200))
}
