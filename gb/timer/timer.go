// Package timer implements the DIV/TIMA/TMA/TAC subsystem, including the
// one-cycle TIMA-overflow reload delay (spec.md §3, §4.4).
package timer

import "github.com/corvee-dev/gbcore/gb/bit"

var tacBit = [4]uint8{9, 3, 5, 7}

// Timer owns the 16-bit internal counter (DIV is its upper byte) and the
// TIMA overflow-delay state machine.
type Timer struct {
	counter uint16

	tima uint8
	tma  uint8
	tac  uint8

	lastEdgeBit bool

	// overflowed is true for exactly one machine cycle after TIMA wraps
	// from 0xFF to 0x00, during which TIMA reads 0x00 and no interrupt
	// has been requested yet. It is cleared, and the reload+interrupt
	// take effect, on the following machine cycle.
	overflowed bool
}

// New returns a Timer seeded the way the DMG boot ROM leaves it.
func New() *Timer {
	return &Timer{counter: 0xABCC}
}

// DIV returns the upper 8 bits of the internal counter.
func (t *Timer) DIV() uint8 {
	return bit.High(t.counter)
}

// TIMA returns the current timer counter value, honoring the one-cycle
// window where it reads 0x00 during an overflow.
func (t *Timer) TIMA() uint8 {
	return t.tima
}

func (t *Timer) TMA() uint8 { return t.tma }
func (t *Timer) TAC() uint8 { return t.tac | 0xF8 }

// WriteDIV resets the internal counter. A falling edge on the
// TAC-selected bit produced by this reset can itself increment TIMA
// (spec.md §4.1).
func (t *Timer) WriteDIV() {
	t.counter = 0
	t.checkEdge()
}

// WriteTIMA writes TIMA directly. During the one-cycle overflow-delay
// window this cancels both the pending TMA reload and the pending Timer
// interrupt (spec.md §3, §4.4 invariant (a)).
func (t *Timer) WriteTIMA(value uint8) {
	t.tima = value
	t.overflowed = false
}

// WriteTMA writes TMA; during the overflow-delay window this also writes
// TIMA (spec.md §4.4 invariant (b)).
func (t *Timer) WriteTMA(value uint8) {
	t.tma = value
	if t.overflowed {
		t.tima = value
	}
}

// WriteTAC updates the enable bit and clock-select bits. A falling edge
// produced purely by disabling the timer or changing its clock select can
// itself increment TIMA, matching the "multiplexer glitch" DMG quirk.
func (t *Timer) WriteTAC(value uint8) {
	t.tac = value & 0x07
	t.checkEdge()
}

func (t *Timer) selectedBit() bool {
	if !bit.IsSet(2, t.tac) {
		return false
	}
	return bit.IsSet16(tacBit[t.tac&0x03], t.counter)
}

// checkEdge re-samples the TAC-selected counter bit against the last
// sampled value, incrementing TIMA on a high-to-low transition. Used after
// anything other than the normal 4-clock Step loop changes the selected
// bit out from under it: a DIV reset or a TAC write.
func (t *Timer) checkEdge() {
	newBit := t.selectedBit()
	if t.lastEdgeBit && !newBit {
		t.incrementTIMA()
	}
	t.lastEdgeBit = newBit
}

// Step advances the timer by exactly one machine cycle (4 clocks). It
// returns true on the cycle the Timer interrupt should be requested: the
// machine cycle immediately following the one where TIMA overflowed.
func (t *Timer) Step() (interruptRequested bool) {
	if t.overflowed {
		t.tima = t.tma
		t.overflowed = false
		interruptRequested = true
	}

	for range 4 {
		t.counter++
		newBit := t.selectedBit()
		if t.lastEdgeBit && !newBit {
			t.incrementTIMA()
		}
		t.lastEdgeBit = newBit
	}

	return interruptRequested
}

func (t *Timer) incrementTIMA() {
	if t.tima == 0xFF {
		t.tima = 0x00
		t.overflowed = true
		return
	}
	t.tima++
}
