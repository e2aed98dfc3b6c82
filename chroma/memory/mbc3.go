package memory

// MBC3 supports up to 2MB ROM (7 bit bank number, 0 reads as 1), 32KB RAM
// and, on some cartridges, a real time clock. Writing 0x08-0x0C to the RAM
// bank register maps one of the clock registers into 0xA000-0xBFFF instead
// of a RAM bank.
type MBC3 struct {
	rom        []uint8
	romBanks   int
	ram        cartRAM
	ramEnabled bool
	romBank    uint8
	ramSelect  uint8
	rtc        *RTC
}

// NewMBC3 creates a new MBC3 controller
func NewMBC3(rom []uint8, romBanks, ramBanks int, hasRTC bool) *MBC3 {
	m := &MBC3{
		rom:      rom,
		romBanks: romBanks,
		ram:      newCartRAM(ramBanks),
		romBank:  1,
	}
	if hasRTC {
		m.rtc = &RTC{}
	}
	return m
}

func (m *MBC3) Read(address uint16) uint8 {
	switch {
	case address < 0x4000:
		return m.rom[address]
	case address < 0x8000:
		return m.rom[romOffset(int(m.romBank), m.romBanks, address)]
	case isExternalRAM(address):
		if !m.ramEnabled {
			return 0xFF
		}
		if m.ramSelect <= 0x03 {
			return m.ram.read(int(m.ramSelect), address)
		}
		if m.rtc != nil && m.ramSelect >= 0x08 && m.ramSelect <= 0x0C {
			return m.rtc.Read(int(m.ramSelect - 0x08))
		}
	}
	return 0xFF
}

func (m *MBC3) Write(address uint16, value uint8) {
	switch {
	case address < 0x2000:
		m.ramEnabled = value&0x0F == 0x0A
	case address < 0x4000:
		m.romBank = value & 0x7F
		if m.romBank == 0 {
			m.romBank = 1
		}
	case address < 0x6000:
		m.ramSelect = value & 0x0F
	case address < 0x8000:
		if m.rtc != nil {
			m.rtc.Latch(value)
		}
	case isExternalRAM(address):
		if !m.ramEnabled {
			return
		}
		if m.ramSelect <= 0x03 {
			m.ram.write(int(m.ramSelect), address, value)
			return
		}
		if m.rtc != nil && m.ramSelect >= 0x08 && m.ramSelect <= 0x0C {
			m.rtc.Write(int(m.ramSelect-0x08), value)
		}
	}
}

func (m *MBC3) Tick(cycles int) {
	if m.rtc != nil {
		m.rtc.Tick(cycles)
	}
}

// RTC returns the clock peripheral, nil when the cartridge has none.
func (m *MBC3) RTC() *RTC { return m.rtc }

func (m *MBC3) RAM() []byte   { return m.ram.data }
func (m *MBC3) kind() MBCKind { return KindMBC3 }
