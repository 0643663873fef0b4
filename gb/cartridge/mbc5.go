package cartridge

import "github.com/corvee-dev/gbcore/gb/archive"

// mbc5 drops MBC1's banking quirks: a full 9-bit ROM bank register (so bank
// 0 is addressable at 0x4000-0x7FFF, unlike every earlier variant) and a
// plain 4-bit RAM bank register. The rumble motor, when present, is driven
// by ramBank's top bit on real hardware; this core has no haptic output so
// the bit is accepted and ignored (spec.md §6, Non-goals).
type mbc5 struct {
	rom []byte
	ram [][]byte

	ramEnabled bool
	romBank    uint16
	ramBank    uint8
}

func newMBC5(rom []byte, ramBanks int) *mbc5 {
	banks := make([][]byte, max(ramBanks, 1))
	for i := range banks {
		banks[i] = make([]byte, 0x2000)
	}
	return &mbc5{rom: rom, ram: banks, romBank: 1}
}

func (m *mbc5) Read(addr uint16) uint8 {
	switch {
	case addr <= 0x3FFF:
		return m.rom[addr]
	case addr <= 0x7FFF:
		offset := int(m.romBank)*0x4000 + int(addr-0x4000)
		if offset >= len(m.rom) {
			offset %= len(m.rom)
		}
		return m.rom[offset]
	case addr >= 0xA000 && addr <= 0xBFFF:
		if !m.ramEnabled {
			return 0xFF
		}
		return m.ram[int(m.ramBank)%len(m.ram)][addr-0xA000]
	default:
		return 0xFF
	}
}

func (m *mbc5) Write(addr uint16, value uint8) {
	switch {
	case addr <= 0x1FFF:
		m.ramEnabled = value&0x0F == 0x0A
	case addr <= 0x2FFF:
		m.romBank = (m.romBank & 0x100) | uint16(value)
	case addr <= 0x3FFF:
		m.romBank = uint16(value&0x01)<<8 | (m.romBank & 0x00FF)
	case addr <= 0x5FFF:
		m.ramBank = value & 0x0F
	case addr >= 0xA000 && addr <= 0xBFFF:
		if m.ramEnabled {
			m.ram[int(m.ramBank)%len(m.ram)][addr-0xA000] = value
		}
	}
}

func (m *mbc5) Tick() {}

func (m *mbc5) SaveRAM(now int64) []byte {
	return newArchiveWriter(m.ram).Bytes()
}

func (m *mbc5) LoadRAM(data []byte, now int64) error {
	return loadBanks(archive.NewReader(data), m.ram)
}
