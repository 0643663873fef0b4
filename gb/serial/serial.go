// Package serial implements the DMG's 8-bit serial shift register (SB/SC),
// driven by the bus's internal clock and a host-supplied byte-exchange
// callback (spec.md §2, §4.1, §6 set_serial_callback).
package serial

import "github.com/corvee-dev/gbcore/gb/bit"

// cyclesPerByte is the length of one internal-clock transfer in clocks:
// 8192 Hz against a 4.194304 MHz system clock, i.e. one bit shifts every
// 512 clocks, so a full 8-bit transfer takes 8*512 = 4096 clocks (1024
// machine cycles of 4 clocks each).
const cyclesPerByte = 4096

// Port implements the SB/SC registers and the internal-clock transfer
// state machine. A transfer started with the external clock source never
// completes on its own; it waits for a peer (not modeled here, matching
// spec.md's non-goal of link-cable networking beyond a single
// synchronous transfer-byte hook).
type Port struct {
	sb, sc    uint8
	active    bool
	remaining int

	// callback is invoked with the outgoing byte when an internal-clock
	// transfer completes; it returns the byte received from the peer.
	// A nil callback behaves like an unplugged link cable (0xFF back).
	callback func(uint8) uint8
}

// New returns a Port with no transfer in progress.
func New() *Port {
	return &Port{sb: 0x00, sc: 0x7E}
}

// SetCallback installs the function invoked when an internal-clock
// transfer completes.
func (p *Port) SetCallback(fn func(uint8) uint8) {
	p.callback = fn
}

// ReadSB returns the current shift register contents.
func (p *Port) ReadSB() uint8 {
	return p.sb
}

// WriteSB loads the shift register with the byte to transmit.
func (p *Port) WriteSB(value uint8) {
	p.sb = value
}

// ReadSC returns the transfer control register. Bits 1-6 always read 1 on
// DMG hardware.
func (p *Port) ReadSC() uint8 {
	return p.sc | 0x7E
}

// WriteSC writes the transfer control register and starts a transfer if
// bit 7 (start) and bit 0 (internal clock) are both set.
func (p *Port) WriteSC(value uint8) {
	p.sc = value & 0x81
	if bit.IsSet(7, p.sc) && bit.IsSet(0, p.sc) && !p.active {
		p.active = true
		p.remaining = cyclesPerByte
	}
}

// Tick advances the in-progress transfer, if any, by one machine cycle
// (spec.md §4.1 machine_cycle step 4: "step one byte of serial shifting").
func (p *Port) Tick() (interruptRequested bool) {
	if !p.active {
		return false
	}

	p.remaining -= 4
	if p.remaining > 0 {
		return false
	}

	rx := uint8(0xFF)
	if p.callback != nil {
		rx = p.callback(p.sb)
	}
	p.sb = rx
	p.sc = bit.Reset(7, p.sc)
	p.active = false
	return true
}
