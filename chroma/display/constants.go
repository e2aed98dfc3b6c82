package display

// Pixels are packed as 0xRRGGBBAA.
const (
	RGBABytesPerPixel = 4
	RGBARShift        = 24
	RGBAGShift        = 16
	RGBABShift        = 8
	RGBAColorMask     = 0xFF
)

// DefaultPixelScale is how many host pixels a Game Boy pixel covers in
// windowed backends.
const DefaultPixelScale = 4
