// Package joypad implements the DMG 4x2 button matrix multiplexed through
// the single P1 register (spec.md §2, §4.1).
package joypad

import "github.com/corvee-dev/gbcore/gb/bit"

// Key identifies one of the eight physical inputs.
type Key uint8

const (
	Right Key = iota
	Left
	Up
	Down
	A
	B
	Select
	Start
)

// State is a full snapshot of which buttons are currently held, as handed
// to the core by the host and applied on every machine cycle (spec.md
// §4.1 setJoypadState).
type State struct {
	Right, Left, Up, Down bool
	A, B, Select, Start   bool
}

// Joypad tracks button state and the P1 selection bits, and reports
// high-to-low transitions so the bus can raise the Joypad interrupt.
type Joypad struct {
	buttons uint8 // bits 0-3: A,B,Select,Start; 1 = released
	dpad    uint8 // bits 0-3: Right,Left,Up,Down; 1 = released
	select_ uint8 // P1 bits 4-5 as last written
}

// New returns a Joypad with nothing pressed.
func New() *Joypad {
	return &Joypad{buttons: 0x0F, dpad: 0x0F}
}

// WriteSelect updates the P1 selection bits (4-5); only those bits are
// writable on real hardware.
func (j *Joypad) WriteSelect(value uint8) {
	j.select_ = value & 0x30
}

// Read reconstructs the P1 register as the CPU would observe it: bits 6-7
// always read 1, bits 4-5 echo the last write, and bits 0-3 reflect
// whichever button group(s) are selected (0 = pressed, matching hardware
// active-low wiring).
func (j *Joypad) Read() uint8 {
	result := uint8(0xC0) | j.select_

	selectDpad := !bit.IsSet(4, j.select_)
	selectButtons := !bit.IsSet(5, j.select_)

	switch {
	case selectButtons && selectDpad:
		result |= j.buttons & j.dpad & 0x0F
	case selectButtons:
		result |= j.buttons & 0x0F
	case selectDpad:
		result |= j.dpad & 0x0F
	default:
		result |= 0x0F
	}

	return result
}

// Apply updates button state from a full snapshot and reports whether any
// selected line underwent a high-to-low transition (i.e. whether the
// Joypad interrupt should be raised).
func (j *Joypad) Apply(s State) bool {
	oldButtons, oldDpad := j.buttons, j.dpad

	j.dpad = packBits(!s.Right, !s.Left, !s.Up, !s.Down)
	j.buttons = packBits(!s.A, !s.B, !s.Select, !s.Start)

	var fall uint8
	if !bit.IsSet(5, j.select_) {
		fall |= oldButtons &^ j.buttons
	}
	if !bit.IsSet(4, j.select_) {
		fall |= oldDpad &^ j.dpad
	}
	return fall != 0
}

func packBits(bit0, bit1, bit2, bit3 bool) uint8 {
	var v uint8
	v = bit.SetTo(0, v, bit0)
	v = bit.SetTo(1, v, bit1)
	v = bit.SetTo(2, v, bit2)
	v = bit.SetTo(3, v, bit3)
	return v
}
