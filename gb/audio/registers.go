package audio

import "github.com/corvee-dev/gbcore/gb/bit"

// mapRegistersToState recomputes every channel's derived fields from the
// raw NRxx registers after a write. Mirrors real hardware's "registers
// are write targets, state is derived" split rather than caching
// computed values separately from the bytes a ROM can read back.
func (a *APU) mapRegistersToState() {
	a.enabled = bit.IsSet(7, a.NR52)
	if !a.enabled {
		a.powerOff()
	}

	for i := range a.ch {
		a.ch[i].right = bit.IsSet(uint8(i), a.NR51)
		a.ch[i].left = bit.IsSet(uint8(i+4), a.NR51)
	}

	a.vinLeft, a.vinRight = bit.IsSet(7, a.NR50), bit.IsSet(3, a.NR50)
	a.volLeft, a.volRight = bit.ExtractBits(a.NR50, 6, 4), bit.ExtractBits(a.NR50, 2, 0)

	a.mapSquare1()
	a.mapSquare2()
	a.mapWave()
	a.mapNoise()

	for i := range a.ch {
		if !a.ch[i].dacPowered {
			a.ch[i].enabled = false
		}
	}
}

// powerOff implements NR52 bit 7 clearing: every register resets to
// zero except NR52 itself, length counters, and wave RAM.
func (a *APU) powerOff() {
	a.NR10, a.NR11, a.NR12, a.NR13, a.NR14 = 0, 0, 0, 0, 0
	a.NR21, a.NR22, a.NR23, a.NR24 = 0, 0, 0, 0
	a.NR30, a.NR31, a.NR32, a.NR33, a.NR34 = 0, 0, 0, 0, 0
	a.NR41, a.NR42, a.NR43, a.NR44 = 0, 0, 0, 0
	a.NR50, a.NR51 = 0, 0
	for i := range a.ch {
		a.ch[i].enabled = false
	}
}

func (a *APU) mapSquare1() {
	ch := &a.ch[0]

	prevNegate := ch.sweep.negate
	ch.sweep.period = bit.ExtractBits(a.NR10, 6, 4)
	ch.sweep.negate = bit.IsSet(3, a.NR10)
	ch.sweep.shift = bit.ExtractBits(a.NR10, 2, 0)
	if !ch.sweep.negate && prevNegate && ch.sweep.negateUsed && (ch.sweep.period > 0 || ch.sweep.shift > 0) {
		// switching subtract->add after a subtract calc disables CH1
		ch.enabled = false
	}

	ch.duty.index = bit.ExtractBits(a.NR11, 7, 6)
	ch.length.counterLoad = bit.ExtractBits(a.NR11, 5, 0)
	ch.length.maxCounter = 64
	ch.length.counter = 64 - uint16(ch.length.counterLoad)

	ch.envelope.volumeLoad = bit.ExtractBits(a.NR12, 7, 4)
	ch.envelope.addMode = bit.IsSet(3, a.NR12)
	ch.envelope.period = bit.ExtractBits(a.NR12, 2, 0)
	ch.dacPowered = ch.envelope.volumeLoad > 0 || ch.envelope.addMode
	ch.envelope.dacPowered = ch.dacPowered

	ch.period = bit.Combine(a.NR14&0b111, a.NR13)

	prevLenEnable := ch.length.enabled
	lengthBefore := ch.length.counter
	triggered := bit.IsSet(7, a.NR14)
	ch.length.enabled = bit.IsSet(6, a.NR14)
	if triggered {
		if ch.dacPowered {
			ch.enabled = true
		}
		ch.envelope.trigger()
		ch.duty.counter = 0
		ch.duty.refreshHigh()
		ch.freqTimer = a.squarePeriodCycles(ch)
		ch.sweep.trigger(ch)
		a.NR14 = bit.Reset(7, a.NR14)
	}
	a.handleLengthEnableTransition(prevLenEnable, lengthBefore, triggered, 64, 0)
}

func (a *APU) mapSquare2() {
	ch := &a.ch[1]

	ch.duty.index = bit.ExtractBits(a.NR21, 7, 6)
	ch.length.counterLoad = bit.ExtractBits(a.NR21, 5, 0)
	ch.length.maxCounter = 64
	ch.length.counter = 64 - uint16(ch.length.counterLoad)

	ch.envelope.volumeLoad = bit.ExtractBits(a.NR22, 7, 4)
	ch.envelope.addMode = bit.IsSet(3, a.NR22)
	ch.envelope.period = bit.ExtractBits(a.NR22, 2, 0)
	ch.dacPowered = ch.envelope.volumeLoad > 0 || ch.envelope.addMode
	ch.envelope.dacPowered = ch.dacPowered

	ch.period = bit.Combine(a.NR24&0b111, a.NR23)

	prevLenEnable := ch.length.enabled
	lengthBefore := ch.length.counter
	triggered := bit.IsSet(7, a.NR24)
	ch.length.enabled = bit.IsSet(6, a.NR24)
	if triggered {
		if ch.dacPowered {
			ch.enabled = true
		}
		ch.envelope.trigger()
		ch.duty.counter = 0
		ch.duty.refreshHigh()
		ch.freqTimer = a.squarePeriodCycles(ch)
		a.NR24 = bit.Reset(7, a.NR24)
	}
	a.handleLengthEnableTransition(prevLenEnable, lengthBefore, triggered, 64, 1)
}

func (a *APU) mapWave() {
	ch := &a.ch[2]

	ch.wave.dacPowered = bit.IsSet(7, a.NR30)
	ch.dacPowered = ch.wave.dacPowered

	ch.length.counterLoad = a.NR31
	ch.length.maxCounter = 256
	ch.length.counter = 256 - uint16(a.NR31)

	ch.wave.volumeCode = bit.ExtractBits(a.NR32, 6, 5)

	ch.period = bit.Combine(a.NR34&0b111, a.NR33)

	prevLenEnable := ch.length.enabled
	lengthBefore := ch.length.counter
	triggered := bit.IsSet(7, a.NR34)
	ch.length.enabled = bit.IsSet(6, a.NR34)
	if triggered {
		if ch.dacPowered {
			ch.enabled = true
		}
		ch.freqTimer = a.wavePeriodCycles(ch)
		ch.wave.position = 0
		ch.wave.sample = ch.wave.waveTable[0]
		a.NR34 = bit.Reset(7, a.NR34)
	}
	a.handleLengthEnableTransition(prevLenEnable, lengthBefore, triggered, 256, 2)
}

func (a *APU) mapNoise() {
	ch := &a.ch[3]

	ch.length.counterLoad = bit.ExtractBits(a.NR41, 5, 0)
	ch.length.maxCounter = 64
	ch.length.counter = 64 - uint16(ch.length.counterLoad)

	ch.envelope.volumeLoad = bit.ExtractBits(a.NR42, 7, 4)
	ch.envelope.addMode = bit.IsSet(3, a.NR42)
	ch.envelope.period = bit.ExtractBits(a.NR42, 2, 0)
	ch.dacPowered = ch.envelope.volumeLoad > 0 || ch.envelope.addMode
	ch.envelope.dacPowered = ch.dacPowered

	ch.lfsr.clockShift = bit.ExtractBits(a.NR43, 7, 4)
	ch.lfsr.widthMode = bit.IsSet(3, a.NR43)
	ch.lfsr.divisorCode = bit.ExtractBits(a.NR43, 2, 0)

	prevLenEnable := ch.length.enabled
	lengthBefore := ch.length.counter
	triggered := bit.IsSet(7, a.NR44)
	ch.length.enabled = bit.IsSet(6, a.NR44)
	if triggered {
		if ch.dacPowered {
			ch.enabled = true
		}
		ch.envelope.trigger()
		ch.lfsr.trigger()
		ch.noiseTimer = ch.lfsr.period()
		a.NR44 = bit.Reset(7, a.NR44)
	}
	a.handleLengthEnableTransition(prevLenEnable, lengthBefore, triggered, 64, 3)
}

// handleLengthEnableTransition centralizes the frame-sequencer "extra
// clock" oddities around enabling length and triggering channels:
//   - enabling length in the second half of a sequencer period clocks
//     once immediately
//   - a trigger that finds the counter at zero reloads it to max before
//     that clock
//
// Reference behavior: https://gbdev.io/pandocs/Audio_details.html#obscure-behavior
func (a *APU) handleLengthEnableTransition(prevEnabled bool, lengthBefore uint16, triggered bool, maxLength uint16, chIdx int) {
	ch := &a.ch[chIdx]
	lengthWasZero := lengthBefore == 0
	clockOnEnable := !prevEnabled && ch.length.enabled && a.step%2 == 1 && lengthBefore > 0

	if triggered && (lengthWasZero || (clockOnEnable && lengthBefore == 1)) {
		ch.length.counter = maxLength
	}

	if !ch.length.enabled {
		return
	}

	forceClock := lengthWasZero && triggered && ch.length.counter > 0
	if !forceClock && prevEnabled {
		return
	}

	if a.step%2 == 1 && ch.length.counter > 0 {
		ch.length.counter--
		if ch.length.counter == 0 {
			ch.enabled = false
		}
	}
}
