package cartridge

import (
	"fmt"
	"log/slog"
)

// Cartridge owns the parsed header and the MBC instance the rest of the
// bus dispatches ROM/RAM-window reads and writes to (spec.md §2, §6).
type Cartridge struct {
	Header Header
	mbc    MBC
}

// Load parses a ROM image, validates its header checksum, and constructs
// the MBC variant its cartridge-type byte selects. A failed header
// checksum is treated as a corrupt dump and rejected outright, matching
// hardware's refusal to boot; a failed global checksum is only logged,
// since real hardware ignores it too.
func Load(data []byte) (*Cartridge, error) {
	if len(data) < headerEnd {
		return nil, fmt.Errorf("cartridge: data too short (%d bytes)", len(data))
	}

	if !verifyHeaderChecksum(data) {
		return nil, fmt.Errorf("cartridge: header checksum mismatch")
	}
	if !verifyGlobalChecksum(data) {
		slog.Warn("cartridge global checksum mismatch", "title", cleanTitle(data[titleAddress:titleAddress+titleLength]))
	}

	header, err := parseHeader(data)
	if err != nil {
		return nil, err
	}

	rom := make([]byte, len(data))
	copy(rom, data)

	mbc, err := newMBC(header, rom)
	if err != nil {
		return nil, err
	}

	slog.Info("cartridge loaded", "title", header.Title, "type", fmt.Sprintf("0x%02X", uint8(header.Type)), "romBanks", header.ROMBankCount, "ramBanks", header.RAMBankCount)

	return &Cartridge{Header: header, mbc: mbc}, nil
}

func newMBC(h Header, rom []byte) (MBC, error) {
	switch h.Variant {
	case VariantNone:
		return newNoMBC(rom), nil
	case VariantMBC1:
		return newMBC1(rom, h.RAMBankCount), nil
	case VariantMBC2:
		return newMBC2(rom), nil
	case VariantMBC3:
		return newMBC3(rom, h.RAMBankCount), nil
	case VariantMBC5:
		return newMBC5(rom, h.RAMBankCount), nil
	default:
		return nil, fmt.Errorf("cartridge: unsupported cartridge type 0x%02X", uint8(h.Type))
	}
}

// Read dispatches a ROM or external-RAM bus read to the underlying MBC.
func (c *Cartridge) Read(addr uint16) uint8 {
	return c.mbc.Read(addr)
}

// Write dispatches a ROM-window (banking control) or external-RAM bus
// write to the underlying MBC.
func (c *Cartridge) Write(addr uint16, value uint8) {
	c.mbc.Write(addr, value)
}

// Tick advances any time-dependent MBC state (MBC3's RTC); called once per
// machine cycle alongside every other bus-attached component.
func (c *Cartridge) Tick() {
	c.mbc.Tick()
}

// HasBattery reports whether this cartridge's RAM should be persisted
// across sessions.
func (c *Cartridge) HasBattery() bool {
	return c.Header.HasBattery
}

// SaveRAM serializes battery-backed external RAM (and RTC state, for
// MBC3+RTC cartridges) for the host to persist. now is a Unix timestamp
// recorded so a later LoadRAM can fast-forward the RTC by the elapsed
// wall-clock time (spec.md §9: synchronous save, no threaded I/O).
func (c *Cartridge) SaveRAM(now int64) []byte {
	return c.mbc.SaveRAM(now)
}

// LoadRAM restores state previously produced by SaveRAM.
func (c *Cartridge) LoadRAM(data []byte, now int64) error {
	if data == nil {
		return nil
	}
	return c.mbc.LoadRAM(data, now)
}
