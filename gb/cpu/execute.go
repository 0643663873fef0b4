package cpu

// execute fetches no further bytes itself beyond what individual opcode
// bodies need (immediates), decodes opcode, and returns its cycle cost in
// t-states. Every one of the 256 possible byte values lands somewhere:
// the unassigned slots on real hardware (0xD3, 0xDB, 0xDD, 0xE3, 0xE4,
// 0xEB, 0xEC, 0xED, 0xF4, 0xFC, 0xFD) lock up the real CPU; this core
// treats them as a 4-cycle no-op instead of panicking mid-emulation.
func (c *CPU) execute(opcode uint8) int {
	switch {
	case opcode == 0xCB:
		return c.executeCB(c.fetch())

	// --- block 0x00-0x3F: misc, 16-bit loads/inc/dec, rotates, jr ---
	case opcode == 0x00: // NOP
		return 4
	case opcode == 0x10: // STOP
		c.fetch() // STOP is followed by a padding byte, fetched like any immediate
		c.stopped = true
		return 8
	case opcode&0xCF == 0x01: // LD rr,d16
		c.setRP(opcode>>4, c.fetchWord())
		return 12
	case opcode&0xCF == 0x03: // INC rr
		c.setRP(opcode>>4, c.getRP(opcode>>4)+1)
		c.bus.Tick(4)
		return 8
	case opcode&0xCF == 0x0B: // DEC rr
		c.setRP(opcode>>4, c.getRP(opcode>>4)-1)
		c.bus.Tick(4)
		return 8
	case opcode&0xCF == 0x09: // ADD HL,rr
		c.addToHL(c.getRP(opcode >> 4))
		c.bus.Tick(4)
		return 8
	case opcode == 0x02: // LD (BC),A
		c.bus.Write(c.getBC(), c.a)
		return 8
	case opcode == 0x12: // LD (DE),A
		c.bus.Write(c.getDE(), c.a)
		return 8
	case opcode == 0x0A: // LD A,(BC)
		c.a = c.bus.Read(c.getBC())
		return 8
	case opcode == 0x1A: // LD A,(DE)
		c.a = c.bus.Read(c.getDE())
		return 8
	case opcode == 0x22: // LD (HL+),A
		c.bus.Write(c.getHL(), c.a)
		c.setHL(c.getHL() + 1)
		return 8
	case opcode == 0x32: // LD (HL-),A
		c.bus.Write(c.getHL(), c.a)
		c.setHL(c.getHL() - 1)
		return 8
	case opcode == 0x2A: // LD A,(HL+)
		c.a = c.bus.Read(c.getHL())
		c.setHL(c.getHL() + 1)
		return 8
	case opcode == 0x3A: // LD A,(HL-)
		c.a = c.bus.Read(c.getHL())
		c.setHL(c.getHL() - 1)
		return 8
	case opcode == 0x08: // LD (a16),SP
		addr16 := c.fetchWord()
		c.bus.Write(addr16, uint8(c.sp))
		c.bus.Write(addr16+1, uint8(c.sp>>8))
		return 20
	case opcode&0xC7 == 0x04: // INC r
		r := opcode >> 3 & 0x7
		v := c.readR8(r)
		c.inc(&v)
		c.writeR8(r, v)
		if r8CostsExtra(r) {
			return 12
		}
		return 4
	case opcode&0xC7 == 0x05: // DEC r
		r := opcode >> 3 & 0x7
		v := c.readR8(r)
		c.dec(&v)
		c.writeR8(r, v)
		if r8CostsExtra(r) {
			return 12
		}
		return 4
	case opcode&0xC7 == 0x06: // LD r,d8
		r := opcode >> 3 & 0x7
		c.writeR8(r, c.fetch())
		if r8CostsExtra(r) {
			return 12
		}
		return 8
	case opcode == 0x07: // RLCA
		c.rlc(&c.a)
		c.resetFlag(zeroFlag)
		return 4
	case opcode == 0x17: // RLA
		c.rl(&c.a)
		c.resetFlag(zeroFlag)
		return 4
	case opcode == 0x0F: // RRCA
		c.rrc(&c.a)
		c.resetFlag(zeroFlag)
		return 4
	case opcode == 0x1F: // RRA
		c.rr(&c.a)
		c.resetFlag(zeroFlag)
		return 4
	case opcode == 0x27: // DAA
		c.daa()
		return 4
	case opcode == 0x2F: // CPL
		c.cpl()
		return 4
	case opcode == 0x37: // SCF
		c.scf()
		return 4
	case opcode == 0x3F: // CCF
		c.ccf()
		return 4
	case opcode == 0x18: // JR r8
		c.jr()
		return 12
	case opcode&0xE7 == 0x20: // JR cc,r8
		if c.condition(opcode >> 3) {
			c.jr()
			return 12
		}
		c.fetch()
		return 8

	// --- block 0x40-0xBF: LD r,r' and the ALU A,r block ---
	case opcode == 0x76: // HALT
		c.halt()
		return 4
	case opcode&0xC0 == 0x40: // LD r,r'
		c.writeR8(opcode>>3, c.readR8(opcode))
		if r8CostsExtra(opcode>>3) || r8CostsExtra(opcode) {
			return 8
		}
		return 4
	case opcode&0xC0 == 0x80: // ALU A,r
		v := c.readR8(opcode)
		c.aluOp(opcode>>3&0x7, v)
		if r8CostsExtra(opcode) {
			return 8
		}
		return 4

	// --- block 0xC0-0xFF: control flow, stack, immediate ALU, misc I/O ---
	case opcode&0xE7 == 0xC0: // RET cc
		c.bus.Tick(4) // condition check
		if c.condition(opcode >> 3) {
			c.pc = c.pop()
			c.bus.Tick(4)
			return 20
		}
		return 8
	case opcode == 0xC9: // RET
		c.pc = c.pop()
		c.bus.Tick(4)
		return 16
	case opcode == 0xD9: // RETI
		c.pc = c.pop()
		c.bus.Tick(4)
		c.ime = true
		c.interruptEnableRequested = false
		return 16
	case opcode&0xCF == 0xC1: // POP rr
		c.setStackRP(opcode>>4, c.pop())
		return 12
	case opcode&0xCF == 0xC5: // PUSH rr
		c.bus.Tick(4) // SP decrement before the two pushed writes
		c.push(c.getStackRP(opcode >> 4))
		return 16
	case opcode&0xE7 == 0xC2: // JP cc,a16
		target := c.fetchWord()
		if c.condition(opcode >> 3) {
			c.pc = target
			c.bus.Tick(4)
			return 16
		}
		return 12
	case opcode == 0xC3: // JP a16
		c.pc = c.fetchWord()
		c.bus.Tick(4)
		return 16
	case opcode == 0xE9: // JP (HL)
		c.pc = c.getHL()
		return 4
	case opcode&0xE7 == 0xC4: // CALL cc,a16
		target := c.fetchWord()
		if c.condition(opcode >> 3) {
			c.bus.Tick(4)
			c.push(c.pc)
			c.pc = target
			return 24
		}
		return 12
	case opcode == 0xCD: // CALL a16
		target := c.fetchWord()
		c.bus.Tick(4)
		c.push(c.pc)
		c.pc = target
		return 24
	case opcode&0xC7 == 0xC7: // RST n
		c.bus.Tick(4)
		c.push(c.pc)
		c.pc = uint16(opcode & 0x38)
		return 16
	case opcode&0xC7 == 0xC6: // ALU A,d8
		c.aluOp(opcode>>3&0x7, c.fetch())
		return 8
	case opcode == 0xE0: // LDH (a8),A
		c.bus.Write(0xFF00+uint16(c.fetch()), c.a)
		return 12
	case opcode == 0xF0: // LDH A,(a8)
		c.a = c.bus.Read(0xFF00 + uint16(c.fetch()))
		return 12
	case opcode == 0xE2: // LD (C),A
		c.bus.Write(0xFF00+uint16(c.c), c.a)
		return 8
	case opcode == 0xF2: // LD A,(C)
		c.a = c.bus.Read(0xFF00 + uint16(c.c))
		return 8
	case opcode == 0xEA: // LD (a16),A
		c.bus.Write(c.fetchWord(), c.a)
		return 16
	case opcode == 0xFA: // LD A,(a16)
		c.a = c.bus.Read(c.fetchWord())
		return 16
	case opcode == 0xE8: // ADD SP,r8
		c.sp = c.addToSP(int8(c.fetch()))
		c.bus.Tick(4)
		c.bus.Tick(4)
		return 16
	case opcode == 0xF8: // LD HL,SP+r8
		c.setHL(c.addToSP(int8(c.fetch())))
		c.bus.Tick(4)
		return 12
	case opcode == 0xF9: // LD SP,HL
		c.sp = c.getHL()
		c.bus.Tick(4)
		return 8
	case opcode == 0xF3: // DI
		c.ime = false
		c.interruptEnableRequested = false
		return 4
	case opcode == 0xFB: // EI
		c.interruptEnableRequested = true
		return 4
	default: // unassigned opcode: locks up real hardware, no-op here
		return 4
	}
}

// aluOp dispatches the 8-entry ALU block shared by the 0x80-0xBF and
// 0xC6-0xFE opcode rows: ADD, ADC, SUB, SBC, AND, XOR, OR, CP.
func (c *CPU) aluOp(op uint8, value uint8) {
	switch op & 0x7 {
	case 0:
		c.addToA(value, false)
	case 1:
		c.addToA(value, true)
	case 2:
		c.sub(value, false, true)
	case 3:
		c.sub(value, true, true)
	case 4:
		c.and(value)
	case 5:
		c.xor(value)
	case 6:
		c.or(value)
	default:
		c.sub(value, false, false)
	}
}

// jr applies the signed displacement following the opcode to PC. The
// extra machine cycle here is PC actually being recomputed; callers
// that don't take the jump skip straight past it.
func (c *CPU) jr() {
	offset := int8(c.fetch())
	c.pc = uint16(int32(c.pc) + int32(offset))
	c.bus.Tick(4)
}

// halt enters the low-power wait state; an interrupt (even one masked by
// IME) is what wakes it, handled in dispatchInterrupt.
func (c *CPU) halt() {
	c.halted = true
}
