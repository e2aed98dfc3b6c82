package video

import "github.com/valerio/go-chroma/chroma/display"

const (
	FramebufferWidth  = 160
	FramebufferHeight = 144
)

// GBColor is a packed RGBA pixel, red in the most significant byte.
type GBColor uint32

// The four shades used for monochrome output.
const (
	WhiteColor     GBColor = 0xFFFFFFFF
	LightGreyColor GBColor = 0x989898FF
	DarkGreyColor  GBColor = 0x4C4C4CFF
	BlackColor     GBColor = 0x000000FF
)

var dmgShades = [4]GBColor{WhiteColor, LightGreyColor, DarkGreyColor, BlackColor}

// FrameBuffer holds one 160x144 picture.
type FrameBuffer struct {
	buffer []uint32
}

// NewFrameBuffer returns a frame buffer cleared to white.
func NewFrameBuffer() *FrameBuffer {
	fb := &FrameBuffer{buffer: make([]uint32, FramebufferWidth*FramebufferHeight)}
	fb.Fill(WhiteColor)
	return fb
}

func (fb *FrameBuffer) GetPixel(x, y int) uint32 {
	return fb.buffer[y*FramebufferWidth+x]
}

func (fb *FrameBuffer) SetPixel(x, y int, color GBColor) {
	fb.buffer[y*FramebufferWidth+x] = uint32(color)
}

// Fill sets every pixel to color.
func (fb *FrameBuffer) Fill(color GBColor) {
	for i := range fb.buffer {
		fb.buffer[i] = uint32(color)
	}
}

// ToSlice exposes the pixels in row major order. The slice is shared.
func (fb *FrameBuffer) ToSlice() []uint32 {
	return fb.buffer
}

// Clone returns an independent copy.
func (fb *FrameBuffer) Clone() *FrameBuffer {
	clone := &FrameBuffer{buffer: make([]uint32, len(fb.buffer))}
	copy(clone.buffer, fb.buffer)
	return clone
}

// RGBA splits a packed pixel into its components.
func RGBA(pixel uint32) (r, g, b, a uint8) {
	return uint8(pixel >> display.RGBARShift), uint8(pixel >> display.RGBAGShift),
		uint8(pixel >> display.RGBABShift), uint8(pixel)
}

// ColorFromBGR555 converts a CGB palette entry to a packed RGBA pixel.
// Each 5 bit channel is widened to 8 bits by repeating its top bits.
func ColorFromBGR555(value uint16) GBColor {
	r := uint32(value & 0x1F)
	g := uint32(value>>5) & 0x1F
	b := uint32(value>>10) & 0x1F

	r = r<<3 | r>>2
	g = g<<3 | g>>2
	b = b<<3 | b>>2

	return GBColor(r<<display.RGBARShift | g<<display.RGBAGShift | b<<display.RGBABShift | display.RGBAColorMask)
}

// shade applies a monochrome palette register (BGP, OBP0, OBP1) to a
// color index, returning the shade number 0-3.
func shade(palette, colorIndex uint8) uint8 {
	return (palette >> (colorIndex * 2)) & 0x03
}
