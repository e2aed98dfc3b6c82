package render

// HalfBlock packs two vertically stacked pixels into one terminal cell:
// the upper half block takes the top pixel as foreground and the bottom
// pixel as background. Identical pixels use a full block so terminals
// without background colour support still show them.
func HalfBlock(top, bottom uint32) (ch rune, fg, bg uint32) {
	if top == bottom {
		return '█', top, bottom
	}
	return '▀', top, bottom
}

// RGB splits an RGBA pixel into its colour channels.
func RGB(pixel uint32) (r, g, b int32) {
	return int32(uint8(pixel >> 24)), int32(uint8(pixel >> 16)), int32(uint8(pixel >> 8))
}

// Truncate cuts s to width runes, marking the cut with an ellipsis when
// there is room for one.
func Truncate(s string, width int) string {
	runes := []rune(s)
	if width <= 0 {
		return ""
	}
	if len(runes) <= width {
		return s
	}
	if width > 3 {
		return string(runes[:width-3]) + "..."
	}
	return string(runes[:width])
}
