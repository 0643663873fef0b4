package cartridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMBC5BankZeroIsAddressable(t *testing.T) {
	m := newMBC5(makeROM(4), 0)
	m.Write(0x2000, 0x00)

	assert.Equal(t, uint8(0), m.Read(0x4000), "unlike MBC1/3, bank 0 is not remapped to bank 1")
}

func TestMBC5NineBitBankSelect(t *testing.T) {
	rom := make([]byte, 260*0x4000)
	rom[256*0x4000] = 0xAB
	m := newMBC5(rom, 0)

	m.Write(0x2000, 0x00) // low 8 bits
	m.Write(0x3000, 0x01) // bit 8

	assert.Equal(t, uint8(0xAB), m.Read(0x4000))
}

func TestMBC5RAMBankSelect(t *testing.T) {
	m := newMBC5(makeROM(2), 4)
	m.Write(0x0000, 0x0A)

	m.Write(0x4000, 0x03)
	m.Write(0xA000, 0x42)

	m.Write(0x4000, 0x00)
	assert.NotEqual(t, uint8(0x42), m.Read(0xA000))

	m.Write(0x4000, 0x03)
	assert.Equal(t, uint8(0x42), m.Read(0xA000))
}
