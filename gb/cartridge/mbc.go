package cartridge

import "github.com/corvee-dev/gbcore/gb/archive"

// MBC is the interface every memory bank controller variant implements. A
// GameBoy owns exactly one MBC, selected at load time from the cartridge's
// header type byte; Read/Write handle both ROM (0x0000-0x7FFF) and external
// RAM (0xA000-0xBFFF) bus windows, and Tick is driven once per machine cycle
// so MBC3's RTC can advance (spec.md §9 Design Notes: one boxed
// implementation per variant behind a closed interface, no variant/union
// dispatch).
type MBC interface {
	Read(addr uint16) uint8
	Write(addr uint16, value uint8)

	// Tick advances any time-dependent state (only MBC3's RTC cares); it is
	// a no-op for every other variant.
	Tick()

	// SaveRAM serializes external RAM (and RTC state, for MBC3) for
	// battery-backed persistence. now is the current wall-clock time as a
	// Unix timestamp, recorded so a later LoadRAM can advance the RTC by
	// the real time elapsed while the cartridge was unloaded. The no-MBC
	// variant returns nil; every other variant serializes its RAM whether
	// or not the header declares a battery.
	SaveRAM(now int64) []byte

	// LoadRAM restores state previously produced by SaveRAM. now is the
	// current wall-clock time as a Unix timestamp, used by MBC3 to advance
	// its RTC by the elapsed time since the save was written.
	LoadRAM(data []byte, now int64) error
}

func newArchiveWriter(banks [][]byte) *archive.Writer {
	size := 0
	for _, b := range banks {
		size += len(b)
	}
	w := archive.NewWriter(size)
	for _, b := range banks {
		w.WriteBytes(b)
	}
	return w
}

func loadBanks(r *archive.Reader, banks [][]byte) error {
	for _, b := range banks {
		data, err := r.ReadBytes(len(b))
		if err != nil {
			return err
		}
		copy(b, data)
	}
	return nil
}
