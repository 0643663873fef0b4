package cartridge

import "github.com/corvee-dev/gbcore/gb/archive"

// rtcRegisterSelect identifies what the 0xA000-0xBFFF window maps to when
// bankRegister is >= 0x08: one of the five RTC registers rather than a RAM
// bank (spec.md §6 MBC3+RTC).
type rtcRegisterSelect uint8

const (
	rtcBankZero  rtcRegisterSelect = 0x00
	rtcBankOne   rtcRegisterSelect = 0x01
	rtcBankTwo   rtcRegisterSelect = 0x02
	rtcBankThree rtcRegisterSelect = 0x03
	rtcSeconds   rtcRegisterSelect = 0x08
	rtcMinutes   rtcRegisterSelect = 0x09
	rtcHours     rtcRegisterSelect = 0x0A
	rtcDaysLow   rtcRegisterSelect = 0x0B
	rtcDaysHigh  rtcRegisterSelect = 0x0C
)

// rtc holds the five real-time-clock registers. daysHigh packs bit 0 (the
// 9th bit of the day counter), bit 6 (halt) and bit 7 (day counter carry).
type rtc struct {
	seconds, minutes, hours uint8
	daysLow, daysHigh       uint8
}

func (r rtc) halted() bool { return r.daysHigh&0x40 != 0 }

// cyclesPerSecond is the DMG machine-cycle rate (4.194304 MHz / 4).
const cyclesPerSecond = 1048576

// mbc3 implements ROM banking nearly identical to MBC1 (but with a full
// 7-bit bank register and no banking-mode quirk) plus four RAM banks and an
// RTC addressed through the same bank-select register (spec.md §6).
type mbc3 struct {
	rom []byte
	ram [][]byte

	enabled      bool
	romBank      uint8
	bankRegister rtcRegisterSelect

	rtc          rtc
	latched      rtc
	isLatched    bool
	lastLatchVal uint8

	cycleAccumulator int
}

func newMBC3(rom []byte, ramBanks int) *mbc3 {
	banks := make([][]byte, max(ramBanks, 1))
	for i := range banks {
		banks[i] = make([]byte, 0x2000)
	}
	return &mbc3{rom: rom, ram: banks, romBank: 1, lastLatchVal: 0xFF}
}

func (m *mbc3) Read(addr uint16) uint8 {
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
		if !m.enabled {
			return 0xFF
		}
		src := m.rtc
		if m.isLatched {
			src = m.latched
		}
		switch m.bankRegister {
		case rtcBankZero, rtcBankOne, rtcBankTwo, rtcBankThree:
			return m.ram[int(m.bankRegister)%len(m.ram)][addr-0xA000]
		case rtcSeconds:
			return src.seconds
		case rtcMinutes:
			return src.minutes
		case rtcHours:
			return src.hours
		case rtcDaysLow:
			return src.daysLow
		case rtcDaysHigh:
			return src.daysHigh
		default:
			return 0xFF
		}
	default:
		return 0xFF
	}
}

func (m *mbc3) Write(addr uint16, value uint8) {
	switch {
	case addr <= 0x1FFF:
		m.enabled = value&0x0F == 0x0A
	case addr <= 0x3FFF:
		bank := value & 0x7F
		if bank == 0 {
			bank = 1
		}
		m.romBank = bank
	case addr <= 0x5FFF:
		m.bankRegister = rtcRegisterSelect(value)
	case addr <= 0x7FFF:
		if m.lastLatchVal == 0x00 && value == 0x01 {
			m.isLatched = !m.isLatched
			if m.isLatched {
				m.latched = m.rtc
			}
		}
		m.lastLatchVal = value
	case addr >= 0xA000 && addr <= 0xBFFF:
		if !m.enabled {
			return
		}
		switch m.bankRegister {
		case rtcBankZero, rtcBankOne, rtcBankTwo, rtcBankThree:
			m.ram[int(m.bankRegister)%len(m.ram)][addr-0xA000] = value
		case rtcSeconds:
			m.rtc.seconds = value
		case rtcMinutes:
			m.rtc.minutes = value
		case rtcHours:
			m.rtc.hours = value
		case rtcDaysLow:
			m.rtc.daysLow = value
		case rtcDaysHigh:
			m.rtc.daysHigh = value & 0xC1
		}
	}
}

// Tick accumulates machine cycles and advances the live RTC by whole
// seconds once enough have elapsed (spec.md §6 MBC3 RTC).
func (m *mbc3) Tick() {
	if m.rtc.halted() {
		return
	}
	m.cycleAccumulator++
	if m.cycleAccumulator >= cyclesPerSecond {
		m.cycleAccumulator -= cyclesPerSecond
		m.advanceSeconds(1)
	}
}

func (m *mbc3) advanceSeconds(delta int64) {
	seconds := int64(m.rtc.seconds) + delta
	minutes := int64(m.rtc.minutes) + seconds/60
	seconds %= 60

	hours := int64(m.rtc.hours) + minutes/60
	minutes %= 60

	daysMsb := int64(m.rtc.daysHigh & 0x01)
	days := int64(m.rtc.daysLow) + daysMsb*0x100 + hours/24
	hours %= 24

	m.rtc.seconds = uint8(seconds)
	m.rtc.minutes = uint8(minutes)
	m.rtc.hours = uint8(hours)
	m.rtc.daysLow = uint8(days % 0x100)

	newMsb := (days / 0x100) % 2
	carry := m.rtc.daysHigh&0x80 != 0 || (days/0x100) > 1
	m.rtc.daysHigh = uint8(newMsb) | (m.rtc.daysHigh & 0x40)
	if carry {
		m.rtc.daysHigh |= 0x80
	}
}

func (m *mbc3) SaveRAM(now int64) []byte {
	w := newArchiveWriter(m.ram)
	w.WriteByte(m.rtc.seconds)
	w.WriteByte(m.rtc.minutes)
	w.WriteByte(m.rtc.hours)
	w.WriteByte(m.rtc.daysLow)
	w.WriteByte(m.rtc.daysHigh)
	w.WriteInt64(now)
	return w.Bytes()
}

func (m *mbc3) LoadRAM(data []byte, now int64) error {
	r := archive.NewReader(data)
	if err := loadBanks(r, m.ram); err != nil {
		return err
	}

	var err error
	if m.rtc.seconds, err = r.ReadByte(); err != nil {
		return err
	}
	if m.rtc.minutes, err = r.ReadByte(); err != nil {
		return err
	}
	if m.rtc.hours, err = r.ReadByte(); err != nil {
		return err
	}
	if m.rtc.daysLow, err = r.ReadByte(); err != nil {
		return err
	}
	if m.rtc.daysHigh, err = r.ReadByte(); err != nil {
		return err
	}

	savedAt, err := r.ReadInt64()
	if err != nil {
		return err
	}

	if elapsed := now - savedAt; elapsed > 0 {
		m.advanceSeconds(elapsed)
	}
	return nil
}
