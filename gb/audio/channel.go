package audio

// Channel is one of the APU's four sound generators. Every channel
// shares `enabled` and a frequency timer {counter, period}; which of the
// unit fields below is meaningful depends on which channel this is
// (square 1 uses length/envelope/sweep/duty, square 2 length/envelope/
// duty, wave length/wave, noise length/envelope/lfsr).
type Channel struct {
	enabled bool

	left, right bool // panning from NR51; silent on a side if both false

	period    uint16 // 11-bit frequency period register (NRx3/NRx4)
	freqTimer int    // counter, counts down to 0 then reloads from `period`-derived period

	length   LengthUnit
	envelope EnvelopeUnit
	sweep    SweepUnit
	duty     DutyUnit
	wave     WaveUnit
	lfsr     LFSRUnit

	noiseTimer int

	dacPowered bool // authoritative DAC-enable flag, independent of which unit computed it
	muted      bool // debug-only mute, independent of enabled/DAC
}
