package cartridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func selectRAMBank(m *mbc3, bank uint8) {
	m.Write(0x4000, bank)
}

func TestMBC3RAMBankSwitching(t *testing.T) {
	m := newMBC3(makeROM(2), 4)
	m.Write(0x0000, 0x0A)

	selectRAMBank(m, 1)
	m.Write(0xA000, 0x11)
	selectRAMBank(m, 2)
	m.Write(0xA000, 0x22)

	selectRAMBank(m, 1)
	assert.Equal(t, uint8(0x11), m.Read(0xA000))
	selectRAMBank(m, 2)
	assert.Equal(t, uint8(0x22), m.Read(0xA000))
}

func TestMBC3RTCRegistersReadWrite(t *testing.T) {
	m := newMBC3(makeROM(2), 1)
	m.Write(0x0000, 0x0A)

	m.Write(0x4000, uint8(rtcSeconds))
	m.Write(0xA000, 30)
	assert.Equal(t, uint8(30), m.Read(0xA000))

	m.Write(0x4000, uint8(rtcHours))
	m.Write(0xA000, 5)
	assert.Equal(t, uint8(5), m.Read(0xA000))
}

func TestMBC3LatchFreezesRTCUntilNextToggle(t *testing.T) {
	m := newMBC3(makeROM(2), 1)
	m.Write(0x0000, 0x0A)
	m.rtc.seconds = 10

	m.Write(0x6000, 0x00)
	m.Write(0x6000, 0x01) // latch

	m.rtc.seconds = 50 // live RTC keeps advancing

	m.Write(0x4000, uint8(rtcSeconds))
	assert.Equal(t, uint8(10), m.Read(0xA000), "latched snapshot should not see the live update")

	m.Write(0x6000, 0x00)
	m.Write(0x6000, 0x01) // second latch toggles latching off: reads see the live RTC
	assert.Equal(t, uint8(50), m.Read(0xA000))
}

func TestMBC3TicksOneSecondPerCyclesPerSecond(t *testing.T) {
	m := newMBC3(makeROM(2), 1)

	for i := 0; i < cyclesPerSecond; i++ {
		m.Tick()
	}

	assert.Equal(t, uint8(1), m.rtc.seconds)
}

func TestMBC3HaltStopsTheClock(t *testing.T) {
	m := newMBC3(makeROM(2), 1)
	m.rtc.daysHigh = 0x40 // halt bit

	for i := 0; i < cyclesPerSecond*2; i++ {
		m.Tick()
	}

	assert.Equal(t, uint8(0), m.rtc.seconds)
}

func TestMBC3SaveLoadAdvancesRTCByElapsedWallClock(t *testing.T) {
	m := newMBC3(makeROM(2), 1)
	m.rtc.seconds = 0
	m.rtc.minutes = 0

	saved := m.SaveRAM(1000)

	m2 := newMBC3(makeROM(2), 1)
	err := m2.LoadRAM(saved, 1000+125)
	require.NoError(t, err)

	assert.Equal(t, uint8(2), m2.rtc.minutes)
	assert.Equal(t, uint8(5), m2.rtc.seconds)
}
