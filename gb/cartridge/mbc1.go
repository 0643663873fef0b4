package cartridge

import "github.com/corvee-dev/gbcore/gb/archive"

// bankingMode selects what the 0x4000-0x5FFF register means on MBC1.
type bankingMode uint8

const (
	romBankingMode bankingMode = 0
	ramBankingMode bankingMode = 1
)

// mbc1 implements the most common controller: up to 125 switchable 16KB ROM
// banks and up to four 8KB RAM banks, with a banking-mode select that trades
// off full ROM access against full RAM access (spec.md §6).
type mbc1 struct {
	rom []byte
	ram [][]byte // up to 4 banks of 0x2000 bytes

	ramEnabled bool
	romBank    uint8
	ramBank    uint8
	mode       bankingMode
}

func newMBC1(rom []byte, ramBanks int) *mbc1 {
	banks := make([][]byte, max(ramBanks, 1))
	for i := range banks {
		banks[i] = make([]byte, 0x2000)
	}
	return &mbc1{rom: rom, ram: banks, romBank: 1}
}

func (m *mbc1) Read(addr uint16) uint8 {
	switch {
	case addr <= 0x3FFF:
		return m.romAt(0, addr)
	case addr <= 0x7FFF:
		return m.romAt(m.effectiveROMBank(), addr-0x4000)
	case addr >= 0xA000 && addr <= 0xBFFF:
		if !m.ramEnabled {
			return 0xFF
		}
		return m.ram[m.effectiveRAMBank()][addr-0xA000]
	default:
		return 0xFF
	}
}

func (m *mbc1) effectiveROMBank() int {
	bank := int(m.romBank)
	if m.mode == ramBankingMode {
		bank &= 0x1F
	}
	return bank
}

func (m *mbc1) effectiveRAMBank() int {
	if m.mode != ramBankingMode {
		return 0
	}
	return int(m.ramBank) % len(m.ram)
}

func (m *mbc1) romAt(bank int, offset uint16) uint8 {
	addr := bank*0x4000 + int(offset)
	if addr >= len(m.rom) {
		addr %= len(m.rom)
	}
	return m.rom[addr]
}

func (m *mbc1) Write(addr uint16, value uint8) {
	switch {
	case addr <= 0x1FFF:
		m.ramEnabled = value&0x0F == 0x0A
	case addr <= 0x3FFF:
		bank := value & 0x1F
		if bank == 0 {
			bank = 1
		}
		m.romBank = (m.romBank & 0x60) | bank
	case addr <= 0x5FFF:
		bits := value & 0x03
		if m.mode == romBankingMode {
			m.romBank = (m.romBank & 0x1F) | (bits << 5)
		} else {
			m.ramBank = bits
		}
	case addr <= 0x7FFF:
		if value&0x01 == 0 {
			m.mode = romBankingMode
		} else {
			m.mode = ramBankingMode
			m.romBank &= 0x1F
		}
	case addr >= 0xA000 && addr <= 0xBFFF:
		if m.ramEnabled {
			m.ram[m.effectiveRAMBank()][addr-0xA000] = value
		}
	}
}

func (m *mbc1) Tick() {}

func (m *mbc1) SaveRAM(now int64) []byte {
	return newArchiveWriter(m.ram).Bytes()
}

func (m *mbc1) LoadRAM(data []byte, now int64) error {
	return loadBanks(archive.NewReader(data), m.ram)
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
