package video

// SpritePriorityBuffer resolves which sprite supplies each pixel of a
// scanline, see https://gbdev.io/pandocs/OAM.html#drawing-priority.
//
// On monochrome hardware:
//   - sprites with lower X coordinates have priority
//   - when X coordinates match, the one earlier in OAM wins.
//
// In color mode only the OAM position counts.
//
// Example: overlap with different X coordinates
//
//	Pixels:     0  1  2  3  4  5  6  7  8  9 10 11 12 13 14 15 16 17
//	Sprite 0:                  [-----A-----]                    (X=5, OAM=0)
//	Sprite 1:                           [-----B-----]           (X=10, OAM=1)
//	Result:                    [-----A-----]--B-----]
//
// Rather than sorting the line's sprites, every opaque sprite pixel tries
// to claim its screen position and keeps it only against lower priority
// claims. Transparent pixels never claim, so a lower priority sprite shows
// through the holes of a higher priority one.
type SpritePriorityBuffer struct {
	// owner is the slot of the winning sprite in the scanline list, -1 if none
	owner [FramebufferWidth]int
	// ownerX is the winning sprite's X, compared on monochrome hardware
	ownerX [FramebufferWidth]int
	// color is the winning sprite's color index at that pixel
	color [FramebufferWidth]uint8
}

// Clear resets the buffer for a new scanline.
func (s *SpritePriorityBuffer) Clear() {
	for i := 0; i < FramebufferWidth; i++ {
		s.owner[i] = -1
		s.ownerX[i] = 0
		s.color[i] = 0
	}
}

// TryClaimPixel attempts to claim a pixel for the sprite in slot. Slots
// follow OAM order. spriteX is the sprite position for monochrome
// priority; pass the same value for every sprite to rank by OAM only.
// Returns true if the sprite takes the pixel.
func (s *SpritePriorityBuffer) TryClaimPixel(pixelX, slot, spriteX int, color uint8) bool {
	if pixelX < 0 || pixelX >= FramebufferWidth || color == 0 {
		return false
	}

	current := s.owner[pixelX]
	switch {
	case current == -1,
		spriteX < s.ownerX[pixelX],
		spriteX == s.ownerX[pixelX] && slot < current:
	default:
		return false
	}

	s.owner[pixelX] = slot
	s.ownerX[pixelX] = spriteX
	s.color[pixelX] = color
	return true
}

// Owner returns the slot owning a pixel and its color index, or -1.
func (s *SpritePriorityBuffer) Owner(pixelX int) (int, uint8) {
	if pixelX < 0 || pixelX >= FramebufferWidth {
		return -1, 0
	}
	return s.owner[pixelX], s.color[pixelX]
}
