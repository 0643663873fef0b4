// Package audio implements the DMG APU: four sound-generating channels
// driven by a shared 512 Hz frame sequencer, a stereo mixer, and a
// downsampler to the host's output sample rate.
package audio

import (
	"github.com/corvee-dev/gbcore/gb/addr"
	"github.com/corvee-dev/gbcore/gb/bit"
)

// cyclesPerStep is the number of t-cycles between frame sequencer ticks:
// the sequencer runs at 512 Hz, and the core clock is 4194304 Hz.
const cyclesPerStep = 8192

// cpuFrequency is the DMG's T-cycle clock rate.
const cpuFrequency = 4194304

// APU is the Audio Processing Unit: four channels mixed to stereo PCM.
type APU struct {
	enabled bool
	ch      [4]Channel

	vinLeft, vinRight bool
	volLeft, volRight uint8
	vinSample         int16

	mixLeftAcc     int64
	mixRightAcc    int64
	mixAccumCycles int
	pcmBuffer      []int16
	pcmCursor      int
	pcmCycleAcc    float64
	pcmPerSample   float64
	hostSampleRate int

	step   int // frame sequencer step, 0..7
	cycles int // t-cycles since last sequencer tick

	NR10, NR11, NR12, NR13, NR14 uint8
	NR21, NR22, NR23, NR24       uint8
	NR30, NR31, NR32, NR33, NR34 uint8
	NR41, NR42, NR43, NR44       uint8
	NR50, NR51, NR52             uint8
}

// New returns a powered-off APU set to downsample at 44.1kHz.
func New() *APU {
	a := &APU{hostSampleRate: 44100}
	a.pcmPerSample = float64(cpuFrequency) / float64(a.hostSampleRate)
	return a
}

// SetHostSampleRate changes the downsample target; callers must do this
// before generation begins to avoid a discontinuity in the PCM stream.
func (a *APU) SetHostSampleRate(rate int) {
	if rate <= 0 {
		return
	}
	a.hostSampleRate = rate
	a.pcmPerSample = float64(cpuFrequency) / float64(rate)
}

// Step advances the APU by one machine cycle (4 dots), matching every
// other bus-attached component's per-cycle stepping contract.
func (a *APU) Step() {
	if !a.enabled {
		return
	}

	const cycles = 4

	a.tickGenerators(cycles)
	a.cycles += cycles
	for a.cycles >= cyclesPerStep {
		a.cycles -= cyclesPerStep
		a.tickSequence()
	}
}

func (a *APU) tickGenerators(cycles int) {
	var leftLevel, rightLevel int64

	for i := range a.ch {
		ch := &a.ch[i]
		if !ch.enabled || !ch.dacPowered || ch.muted {
			continue
		}

		var level int64
		switch i {
		case 0, 1:
			level = a.stepSquare(ch, cycles)
		case 2:
			level = a.stepWave(ch, cycles)
		case 3:
			level = a.stepNoise(ch, cycles)
		}
		if level == 0 {
			continue
		}

		if ch.left {
			leftLevel += level
		}
		if ch.right {
			rightLevel += level
		}
	}

	if a.vinLeft {
		leftLevel += int64(a.vinSample)
	}
	if a.vinRight {
		rightLevel += int64(a.vinSample)
	}

	a.mixLeftAcc += leftLevel * int64(cycles)
	a.mixRightAcc += rightLevel * int64(cycles)
	a.mixAccumCycles += cycles
	a.flushMix(cycles)
}

func (a *APU) flushMix(cycles int) {
	if a.hostSampleRate <= 0 || a.pcmPerSample == 0 {
		return
	}

	a.pcmCycleAcc += float64(cycles)
	if a.pcmCycleAcc < a.pcmPerSample {
		return
	}
	a.pcmCycleAcc -= a.pcmPerSample

	left, right := a.exportMixedSample()
	a.pcmBuffer = append(a.pcmBuffer, left, right)
}

func (a *APU) exportMixedSample() (int16, int16) {
	if a.mixAccumCycles == 0 {
		return 0, 0
	}

	leftAvg := float64(a.mixLeftAcc) / float64(a.mixAccumCycles)
	rightAvg := float64(a.mixRightAcc) / float64(a.mixAccumCycles)
	left, right := scaleToPCM(leftAvg, a.volLeft), scaleToPCM(rightAvg, a.volRight)

	a.mixLeftAcc, a.mixRightAcc, a.mixAccumCycles = 0, 0, 0
	return left, right
}

const sampleScale = 32767.0 / 15.0

func scaleToPCM(avg float64, masterVol uint8) int16 {
	gain := float64(masterVol+1) / 8.0
	value := avg * gain * sampleScale
	if value > 32767 {
		value = 32767
	} else if value < -32768 {
		value = -32768
	}
	return int16(value)
}

func (a *APU) squarePeriodCycles(ch *Channel) int {
	period := 2048 - int(ch.period&0x7FF)
	if period <= 0 {
		return 0
	}
	return period * 4
}

func (a *APU) wavePeriodCycles(ch *Channel) int {
	period := 2048 - int(ch.period&0x7FF)
	if period <= 0 {
		return 0
	}
	return period * 2
}

func (a *APU) stepSquare(ch *Channel, cycles int) int64 {
	period := a.squarePeriodCycles(ch)
	if period == 0 {
		return 0
	}
	if ch.freqTimer <= 0 {
		ch.freqTimer = period
	}

	ch.freqTimer -= cycles
	for ch.freqTimer <= 0 {
		ch.freqTimer += period
		ch.duty.advance()
	}

	if ch.envelope.volume == 0 {
		return 0
	}
	level := int64(ch.envelope.volume)
	if ch.duty.sample() == 0 {
		// mirror the level so the resulting waveform stays DC-free
		return -level
	}
	return level
}

func (a *APU) stepWave(ch *Channel, cycles int) int64 {
	period := a.wavePeriodCycles(ch)
	if period == 0 {
		return 0
	}
	if ch.freqTimer <= 0 {
		ch.freqTimer = period
	}

	ch.freqTimer -= cycles
	for ch.freqTimer <= 0 {
		ch.freqTimer += period
		ch.wave.advance()
	}

	sample := int64(ch.wave.readSample(ch.wave.position)) - 8
	switch ch.wave.volumeCode & 0b11 {
	case 0:
		return 0
	case 1:
		return sample
	case 2:
		return sample / 2
	case 3:
		return sample / 4
	default:
		return sample
	}
}

func (a *APU) stepNoise(ch *Channel, cycles int) int64 {
	period := ch.lfsr.period()
	if period <= 0 {
		return 0
	}
	if ch.noiseTimer <= 0 {
		ch.noiseTimer = period
	}

	ch.noiseTimer -= cycles
	for ch.noiseTimer <= 0 {
		ch.noiseTimer += period
		ch.lfsr.advance()
	}

	if ch.envelope.volume == 0 {
		return 0
	}
	level := int64(ch.envelope.volume)
	if bit.IsSet(0, uint8(ch.lfsr.lfsr)) {
		// noise output is inverted before reaching the DAC
		return -level
	}
	return level
}

// tickSequence advances the frame sequencer one step (512 Hz):
//
//	Step | Length (256Hz) | Sweep (128Hz) | Envelope (64Hz)
//	0    | yes            | -             | -
//	1    | -              | -             | -
//	2    | yes            | yes           | -
//	3    | -              | -             | -
//	4    | yes            | -             | -
//	5    | -              | -             | -
//	6    | yes            | yes           | -
//	7    | -              | -             | yes
func (a *APU) tickSequence() {
	switch a.step {
	case 0, 4:
		a.tickLength()
	case 2, 6:
		a.tickLength()
		a.ch[0].sweep.tick(&a.ch[0])
	case 7:
		for i := range a.ch {
			a.ch[i].envelope.tick()
		}
	}

	a.step = (a.step + 1) % 8
}

func (a *APU) tickLength() {
	for i := range a.ch {
		a.ch[i].length.tick(&a.ch[i])
	}
}

// ReadRegister returns masked register values; write-only and unused
// bits always read as 1.
func (a *APU) ReadRegister(address uint16) uint8 {
	switch address {
	case addr.NR10:
		return a.NR10 | 0b1000_0000
	case addr.NR11:
		return a.NR11 | 0b0011_1111
	case addr.NR12:
		return a.NR12
	case addr.NR13:
		return 0xFF
	case addr.NR14:
		return a.NR14 | 0b1011_1111
	case addr.NR21:
		return a.NR21 | 0b0011_1111
	case addr.NR22:
		return a.NR22
	case addr.NR23:
		return 0xFF
	case addr.NR24:
		return a.NR24 | 0b1011_1111
	case addr.NR30:
		return a.NR30 | 0b0111_1111
	case addr.NR31:
		return 0xFF
	case addr.NR32:
		return a.NR32 | 0b1001_1111
	case addr.NR33:
		return 0xFF
	case addr.NR34:
		return a.NR34 | 0b1011_1111
	case addr.NR41:
		return 0xFF
	case addr.NR42:
		return a.NR42
	case addr.NR43:
		return a.NR43
	case addr.NR44:
		return a.NR44 | 0b1011_1111
	case addr.NR50:
		return a.NR50
	case addr.NR51:
		return a.NR51
	case addr.NR52:
		status := uint8(0b0111_0000)
		if a.enabled {
			status = bit.Set(7, status)
		}
		for i := range a.ch {
			if a.ch[i].enabled {
				status = bit.Set(uint8(i), status)
			}
		}
		return status
	}

	if address >= addr.WaveRAMStart && address <= addr.WaveRAMEnd {
		if a.waveRAMLocked() {
			return a.ch[2].wave.sample
		}
		return a.ch[2].wave.waveTable[address-addr.WaveRAMStart]
	}

	return 0xFF
}

// waveRAMLocked reports whether CH3 currently owns the wave RAM bus
// (active with its DAC powered), in which case CPU access sees the
// currently-buffered sample rather than the table itself.
func (a *APU) waveRAMLocked() bool {
	return a.enabled && a.ch[2].enabled && a.ch[2].dacPowered
}

// WriteRegister stores a register write and recomputes derived state.
func (a *APU) WriteRegister(address uint16, value uint8) {
	isWaveRAM := address >= addr.WaveRAMStart && address <= addr.WaveRAMEnd

	if !a.enabled && address != addr.NR52 && !isWaveRAM {
		return
	}

	switch address {
	case addr.NR10:
		a.NR10 = value
	case addr.NR11:
		a.NR11 = value
	case addr.NR12:
		a.NR12 = value
	case addr.NR13:
		a.NR13 = value
	case addr.NR14:
		a.NR14 = value
	case addr.NR21:
		a.NR21 = value
	case addr.NR22:
		a.NR22 = value
	case addr.NR23:
		a.NR23 = value
	case addr.NR24:
		a.NR24 = value
	case addr.NR30:
		a.NR30 = value
	case addr.NR31:
		a.NR31 = value
	case addr.NR32:
		a.NR32 = value
	case addr.NR33:
		a.NR33 = value
	case addr.NR34:
		a.NR34 = value
	case addr.NR41:
		a.NR41 = value
	case addr.NR42:
		a.NR42 = value
	case addr.NR43:
		a.NR43 = value
	case addr.NR44:
		a.NR44 = value
	case addr.NR50:
		a.NR50 = value
	case addr.NR51:
		a.NR51 = value
	case addr.NR52:
		a.NR52 = value
	}

	if isWaveRAM {
		offset := address - addr.WaveRAMStart
		if a.waveRAMLocked() {
			idx := a.ch[2].wave.position >> 1
			a.ch[2].wave.waveTable[idx] = value
			a.ch[2].wave.sample = value
		} else {
			a.ch[2].wave.waveTable[offset] = value
		}
	}

	a.mapRegistersToState()
}

// GetSamples returns up to count interleaved stereo samples, zero-filling
// if fewer are available.
func (a *APU) GetSamples(count int) []int16 {
	if count <= 0 {
		return nil
	}

	needed := count * 2
	available := len(a.pcmBuffer) - a.pcmCursor
	if available <= 0 {
		return make([]int16, needed)
	}

	out := make([]int16, needed)
	toCopy := available
	if needed < toCopy {
		toCopy = needed
	}
	copy(out, a.pcmBuffer[a.pcmCursor:a.pcmCursor+toCopy])
	a.pcmCursor += toCopy

	if a.pcmCursor >= len(a.pcmBuffer) {
		a.pcmBuffer = a.pcmBuffer[:0]
		a.pcmCursor = 0
	}

	return out
}

// ToggleChannel flips a channel's debug mute flag.
func (a *APU) ToggleChannel(idx int) {
	if idx < 0 || idx >= 4 {
		return
	}
	a.ch[idx].muted = !a.ch[idx].muted
}

// SoloChannel isolates one channel, or clears all solos if it is already
// the only unmuted one.
func (a *APU) SoloChannel(channel int) {
	if channel < 0 || channel >= 4 {
		return
	}

	onlyUnmuted := !a.ch[channel].muted
	for i := range a.ch {
		if i != channel && !a.ch[i].muted {
			onlyUnmuted = false
		}
	}
	if onlyUnmuted {
		for i := range a.ch {
			a.ch[i].muted = false
		}
		return
	}

	for i := range a.ch {
		a.ch[i].muted = i != channel
	}
}

// GetChannelStatus reports whether each channel is currently producing
// sound (not whether it's debug-muted).
func (a *APU) GetChannelStatus() (bool, bool, bool, bool) {
	return a.ch[0].enabled, a.ch[1].enabled, a.ch[2].enabled, a.ch[3].enabled
}
