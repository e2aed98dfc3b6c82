package memory

import (
	"strings"
	"unicode"
)

const headerChecksumAddress = 0x14D

// headerTitle turns the raw header title into something printable. The
// CGB flag shares the last title byte, so the title stops at the first NUL
// or high bit byte.
func headerTitle(raw []byte) string {
	var sb strings.Builder
	for _, b := range raw {
		if b == 0 || b >= 0x80 {
			break
		}
		if r := rune(b); unicode.IsPrint(r) {
			sb.WriteRune(r)
		} else {
			sb.WriteByte('?')
		}
	}

	if title := strings.TrimSpace(sb.String()); title != "" {
		return title
	}
	return "(Untitled)"
}

// headerChecksum computes the byte the boot ROM checks at 0x14D over the
// header range 0x134-0x14C.
func headerChecksum(rom []byte) uint8 {
	var sum uint8
	for _, b := range rom[titleAddress:headerChecksumAddress] {
		sum = sum - b - 1
	}
	return sum
}
