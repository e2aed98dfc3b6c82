package memory

import (
	"errors"
	"fmt"
	"log/slog"
)

const (
	titleAddress         = 0x134
	titleLength          = 16
	cgbFlagAddress       = 0x143
	cartridgeTypeAddress = 0x147
	romSizeAddress       = 0x148
	ramSizeAddress       = 0x149
	headerEnd            = 0x150

	romBankSize = 0x4000
	ramBankSize = 0x2000
)

var (
	// ErrROMTooSmall is returned for images that do not even contain a full header.
	ErrROMTooSmall = errors.New("rom image is smaller than the cartridge header")
	// ErrUnsupportedCartridge is returned for cartridge type bytes with no known controller.
	ErrUnsupportedCartridge = errors.New("unsupported cartridge type")
)

// MBCKind identifies which bank controller family a cartridge uses.
type MBCKind uint8

const (
	KindNone MBCKind = iota
	KindMBC1
	KindMBC2
	KindMBC3
	KindMBC5
)

func (k MBCKind) String() string {
	switch k {
	case KindMBC1:
		return "MBC1"
	case KindMBC2:
		return "MBC2"
	case KindMBC3:
		return "MBC3"
	case KindMBC5:
		return "MBC5"
	default:
		return "ROM"
	}
}

// Cartridge holds a ROM image together with the header fields needed to map it.
type Cartridge struct {
	data     []byte
	title    string
	cgbFlag  uint8
	cartType uint8

	kind       MBCKind
	romBanks   int
	ramBanks   int
	hasBattery bool
	hasRTC     bool
	hasRumble  bool

	checksumOK bool
}

// NewCartridge creates an empty 32KB cartridge with no controller, useful for tests.
func NewCartridge() *Cartridge {
	return &Cartridge{
		data:     make([]byte, 2*romBankSize),
		title:    "(Untitled)",
		kind:     KindNone,
		romBanks: 2,
	}
}

// NewCartridgeWithData parses the header of a ROM image and sizes its banks.
func NewCartridgeWithData(rom []byte) (*Cartridge, error) {
	if len(rom) < headerEnd {
		return nil, fmt.Errorf("%w: %d bytes", ErrROMTooSmall, len(rom))
	}

	cart := &Cartridge{
		title:      headerTitle(rom[titleAddress : titleAddress+titleLength]),
		cgbFlag:    rom[cgbFlagAddress],
		cartType:   rom[cartridgeTypeAddress],
		checksumOK: headerChecksum(rom) == rom[headerChecksumAddress],
	}
	// the boot ROM would lock up here, emulation carries on
	if !cart.checksumOK {
		slog.Warn("Cartridge header checksum mismatch",
			"title", cart.title,
			"want", headerChecksum(rom),
			"got", rom[headerChecksumAddress])
	}

	if err := cart.decodeType(); err != nil {
		return nil, err
	}

	cart.romBanks = romBankCount(rom[romSizeAddress])
	if actual := (len(rom) + romBankSize - 1) / romBankSize; actual > cart.romBanks {
		cart.romBanks = actual
	}
	cart.ramBanks = ramBankCount(rom[ramSizeAddress])
	if cart.kind == KindMBC2 {
		cart.ramBanks = 1
	}

	// pad short images so every bank index below romBanks is addressable
	cart.data = make([]byte, cart.romBanks*romBankSize)
	for i := copy(cart.data, rom); i < len(cart.data); i++ {
		cart.data[i] = 0xFF
	}

	return cart, nil
}

// decodeType maps the cartridge type byte to a controller and its extras.
func (c *Cartridge) decodeType() error {
	switch c.cartType {
	case 0x00, 0x08:
		c.kind = KindNone
	case 0x09:
		c.kind, c.hasBattery = KindNone, true
	case 0x01, 0x02:
		c.kind = KindMBC1
	case 0x03:
		c.kind, c.hasBattery = KindMBC1, true
	case 0x05:
		c.kind = KindMBC2
	case 0x06:
		c.kind, c.hasBattery = KindMBC2, true
	case 0x0F, 0x10:
		c.kind, c.hasBattery, c.hasRTC = KindMBC3, true, true
	case 0x11, 0x12:
		c.kind = KindMBC3
	case 0x13:
		c.kind, c.hasBattery = KindMBC3, true
	case 0x19, 0x1A:
		c.kind = KindMBC5
	case 0x1B:
		c.kind, c.hasBattery = KindMBC5, true
	case 0x1C, 0x1D:
		c.kind, c.hasRumble = KindMBC5, true
	case 0x1E:
		c.kind, c.hasBattery, c.hasRumble = KindMBC5, true, true
	default:
		return fmt.Errorf("%w: 0x%02X", ErrUnsupportedCartridge, c.cartType)
	}
	return nil
}

// romBankCount maps the ROM size header code to a number of 16KB banks.
func romBankCount(code uint8) int {
	switch {
	case code <= 0x08:
		return 2 << code
	case code == 0x52:
		return 72
	case code == 0x53:
		return 80
	case code == 0x54:
		return 96
	default:
		return 2
	}
}

// ramBankCount maps the RAM size header code to a number of 8KB banks.
func ramBankCount(code uint8) int {
	switch code {
	case 0x01, 0x02:
		return 1
	case 0x03:
		return 4
	case 0x04:
		return 16
	case 0x05:
		return 8
	default:
		return 0
	}
}

// Title returns the cleaned-up cartridge title.
func (c *Cartridge) Title() string { return c.title }

// SupportsColor reports whether the header advertises CGB support.
func (c *Cartridge) SupportsColor() bool { return c.cgbFlag&0x80 != 0 }

// Kind returns the bank controller family.
func (c *Cartridge) Kind() MBCKind { return c.kind }

// ROMBanks returns the number of 16KB ROM banks.
func (c *Cartridge) ROMBanks() int { return c.romBanks }

// RAMBanks returns the number of 8KB RAM banks.
func (c *Cartridge) RAMBanks() int { return c.ramBanks }

// HasBattery reports whether cartridge RAM survives power off.
func (c *Cartridge) HasBattery() bool { return c.hasBattery }

// HasRTC reports whether the cartridge carries an MBC3 real time clock.
func (c *Cartridge) HasRTC() bool { return c.hasRTC }

// HasRumble reports whether the cartridge carries an MBC5 rumble motor.
func (c *Cartridge) HasRumble() bool { return c.hasRumble }

// ChecksumValid reports whether the header checksum at 0x14D matches.
func (c *Cartridge) ChecksumValid() bool { return c.checksumOK }
