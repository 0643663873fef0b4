package cartridge

import "github.com/corvee-dev/gbcore/gb/archive"

// mbc2 has built-in 512x4-bit RAM (no external RAM chip) and a simpler ROM
// banking scheme than MBC1: bit 8 of the address, not the value written,
// decides whether a write targets RAM-enable or the ROM bank register
// (spec.md §6).
type mbc2 struct {
	rom []byte
	ram []byte // 512 nibbles, stored one per byte with the upper nibble set

	ramEnabled bool
	romBank    uint8
}

func newMBC2(rom []byte) *mbc2 {
	ram := make([]byte, 0x200)
	for i := range ram {
		ram[i] = 0xF0
	}
	return &mbc2{rom: rom, ram: ram, romBank: 1}
}

func (m *mbc2) Read(addr uint16) uint8 {
	switch {
	case addr <= 0x3FFF:
		return m.rom[addr]
	case addr <= 0x7FFF:
		offset := int(m.romBank)*0x4000 + int(addr-0x4000)
		if offset >= len(m.rom) {
			offset %= len(m.rom)
		}
		return m.rom[offset]
	case addr >= 0xA000 && addr <= 0xA1FF:
		if !m.ramEnabled {
			return 0xFF
		}
		return m.ram[addr-0xA000] | 0xF0
	default:
		return 0xFF
	}
}

func (m *mbc2) Write(addr uint16, value uint8) {
	switch {
	case addr <= 0x3FFF:
		if addr&0x0100 == 0 {
			m.ramEnabled = value&0x0F == 0x0A
		} else {
			bank := value & 0x0F
			if bank == 0 {
				bank = 1
			}
			m.romBank = bank
		}
	case addr >= 0xA000 && addr <= 0xA1FF:
		if m.ramEnabled {
			m.ram[addr-0xA000] = 0xF0 | (value & 0x0F)
		}
	}
}

func (m *mbc2) Tick() {}

func (m *mbc2) SaveRAM(now int64) []byte {
	w := archive.NewWriter(len(m.ram))
	w.WriteBytes(m.ram)
	return w.Bytes()
}

func (m *mbc2) LoadRAM(data []byte, now int64) error {
	r := archive.NewReader(data)
	raw, err := r.ReadBytes(len(m.ram))
	if err != nil {
		return err
	}
	copy(m.ram, raw)
	return nil
}
