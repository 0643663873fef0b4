package video

// spritePriorityBuffer resolves, per pixel, which sprite (by OAM index)
// draws there when several sprites overlap: lower X wins, ties broken by
// lower OAM index (spec.md §4.5, §8 sprite-priority scenario).
//
// Rather than sorting the scanline's sprites before drawing, each
// candidate sprite claims the pixels it covers during a single pass; a
// later claim (a higher OAM index, since sprites are evaluated in
// ascending OAM order) only succeeds if it strictly outranks the current
// owner, i.e. sits at a lower X.
type spritePriorityBuffer struct {
	ownerIndex [FramebufferWidth]int
	ownerX     [FramebufferWidth]int
}

func (s *spritePriorityBuffer) clear() {
	for i := range s.ownerIndex {
		s.ownerIndex[i] = -1
		s.ownerX[i] = 0xFF
	}
}

// tryClaim attempts to give pixelX to spriteIndex (at screen X spriteX).
// Returns true if the claim succeeded.
func (s *spritePriorityBuffer) tryClaim(pixelX, spriteIndex, spriteX int) bool {
	if pixelX < 0 || pixelX >= FramebufferWidth {
		return false
	}

	owner := s.ownerIndex[pixelX]
	if owner == -1 {
		s.ownerIndex[pixelX] = spriteIndex
		s.ownerX[pixelX] = spriteX
		return true
	}

	ownerX := s.ownerX[pixelX]
	if spriteX < ownerX || (spriteX == ownerX && spriteIndex < owner) {
		s.ownerIndex[pixelX] = spriteIndex
		s.ownerX[pixelX] = spriteX
		return true
	}

	return false
}

func (s *spritePriorityBuffer) owner(pixelX int) int {
	if pixelX < 0 || pixelX >= FramebufferWidth {
		return -1
	}
	return s.ownerIndex[pixelX]
}
