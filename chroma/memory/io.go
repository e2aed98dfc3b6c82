package memory

import (
	"github.com/valerio/go-chroma/chroma/addr"
)

const (
	// serialTransferCycles is the time an internally clocked transfer
	// takes: 8 bits at 8192Hz.
	serialTransferCycles = 4096
	// serialReplyPatience is how long an internally clocked transfer waits
	// past its end for a connected peer's reply, one second of emulated
	// time.
	serialReplyPatience = 4194304
)

// serialTransfer is an armed SC. internal transfers end on their own
// clock, external ones when the peer's byte arrives.
type serialTransfer struct {
	active    bool
	internal  bool
	remaining int
}

func (m *MMU) readIO(address uint16) uint8 {
	offset := address - addr.IOStart

	switch address {
	case addr.P1:
		return m.joypad.Read()
	case addr.SB:
		return m.io[offset]
	case addr.SC:
		return m.io[offset] | 0x7E
	case addr.DIV, addr.TIMA, addr.TMA, addr.TAC:
		return m.timer.Read(address)
	case addr.IF:
		return m.io[offset] | 0xE0
	case addr.STAT:
		return m.io[offset] | 0x80
	case addr.LCDC, addr.SCY, addr.SCX, addr.LY, addr.LYC, addr.DMA,
		addr.BGP, addr.OBP0, addr.OBP1, addr.WY, addr.WX:
		return m.io[offset]
	}

	if address >= addr.AudioStart && address <= addr.AudioEnd {
		if m.audio == nil {
			return 0xFF
		}
		value := m.audio.ReadRegister(address)
		if address == addr.NR52 {
			value |= m.audio.ChannelsActive() & 0x0F
		}
		return value
	}

	if !m.cgbRegisters() {
		return 0xFF
	}

	switch address {
	case addr.KEY1:
		value := m.io[offset]&0x01 | 0x7E
		if m.doubleSpeed {
			value |= 0x80
		}
		return value
	case addr.VBK:
		return m.vramBank | 0xFE
	case addr.HDMA5:
		return m.hdmaStatus()
	case addr.BCPS:
		return m.bgPalette.ReadIndex()
	case addr.BCPD:
		return m.bgPalette.ReadData()
	case addr.OCPS:
		return m.objPalette.ReadIndex()
	case addr.OCPD:
		return m.objPalette.ReadData()
	case addr.OPRI:
		return m.io[offset] | 0xFE
	case addr.SVBK:
		return m.wramBank | 0xF8
	}

	return 0xFF
}

func (m *MMU) writeIO(address uint16, value uint8) {
	offset := address - addr.IOStart

	switch address {
	case addr.P1:
		m.joypad.Write(value)
		return
	case addr.SB:
		m.io[offset] = value
		return
	case addr.SC:
		m.writeSerialControl(value)
		return
	case addr.DIV, addr.TIMA, addr.TMA, addr.TAC:
		m.timer.Write(address, value)
		return
	case addr.IF:
		m.io[offset] = value & addr.InterruptMask
		return
	case addr.STAT:
		// mode and coincidence bits belong to the display
		m.io[offset] = value&0x78 | m.io[offset]&0x07
		return
	case addr.LY:
		return
	case addr.LCDC, addr.SCY, addr.SCX, addr.LYC, addr.BGP,
		addr.OBP0, addr.OBP1, addr.WY, addr.WX:
		m.io[offset] = value
		return
	case addr.DMA:
		m.io[offset] = value
		m.startOAMDMA(value)
		return
	case addr.BOOT:
		if m.bootEnabled && value&0x01 != 0 {
			m.bootEnabled = false
			m.io[offset] = value
		}
		return
	case addr.KEY0:
		if m.bootEnabled && m.model == ModelCGB {
			m.io[offset] = value
			m.compat = value&0x04 != 0
		}
		return
	}

	if address >= addr.AudioStart && address <= addr.AudioEnd {
		if m.audio != nil {
			m.audio.WriteRegister(address, value)
		}
		return
	}

	if !m.cgbRegisters() {
		return
	}

	switch address {
	case addr.KEY1:
		m.io[offset] = value & 0x01
	case addr.VBK:
		m.vramBank = value & 0x01
	case addr.HDMA1, addr.HDMA2, addr.HDMA3, addr.HDMA4:
		m.io[offset] = value
	case addr.HDMA5:
		m.writeHDMA5(value)
	case addr.BCPS:
		m.bgPalette.WriteIndex(value)
	case addr.BCPD:
		m.bgPalette.WriteData(value)
	case addr.OCPS:
		m.objPalette.WriteIndex(value)
	case addr.OCPD:
		m.objPalette.WriteData(value)
	case addr.OPRI:
		m.io[offset] = value & 0x01
	case addr.SVBK:
		bank := value & 0x07
		if bank == 0 {
			bank = 1
		}
		m.wramBank = bank
	}
}

// writeSerialControl arms a transfer when bit 7 is set. The byte in SB
// goes out right away whichever side clocks it: with the internal clock
// the transfer completes after eight bit times, with an external clock
// when the peer's byte arrives.
func (m *MMU) writeSerialControl(value uint8) {
	sc := addr.SC - addr.IOStart
	m.io[sc] = value & 0x81
	if value&0x80 == 0 {
		m.link = serialTransfer{}
		return
	}
	m.link = serialTransfer{active: true}
	if value&0x01 != 0 {
		m.link.internal = true
		m.link.remaining = serialTransferCycles
	}
	if m.serial != nil {
		m.serial.Send(m.io[addr.SB-addr.IOStart])
	}
}

func (m *MMU) completeSerial(received uint8) {
	m.io[addr.SB-addr.IOStart] = received
	m.io[addr.SC-addr.IOStart] &^= 0x80
	m.link = serialTransfer{}
	m.RequestInterrupt(addr.SerialInterrupt)
}

// advanceSerial runs the internal transfer clock and drains at most one
// byte coming from the peer. Bytes are only taken while a transfer is
// armed; an idle port keeps them queued for the next one.
func (m *MMU) advanceSerial(cycles int) {
	if m.link.active && m.link.internal {
		m.link.remaining -= cycles
	}

	if m.serial != nil && m.lateReplies > 0 {
		// replies to transfers that already timed out are dropped
		if _, ok := m.serial.Receive(); ok {
			m.lateReplies--
			return
		}
	}

	switch {
	case !m.link.active:
	case !m.link.internal:
		if m.serial == nil {
			return
		}
		if b, ok := m.serial.Receive(); ok {
			m.completeSerial(b)
		}
	case m.link.remaining <= 0:
		m.finishInternal()
	}
}

// finishInternal ends an internally clocked transfer with the peer's reply.
// A connected peer gets extra time to answer. Without a reply the line
// reads high, and the reply is dropped if it turns up later. A port that
// knows it has no peer owes no reply.
func (m *MMU) finishInternal() {
	if m.serial == nil {
		m.completeSerial(0xFF)
		return
	}
	if b, ok := m.serial.Receive(); ok {
		m.completeSerial(b)
		return
	}

	peer, known := m.serial.(connectedPort)
	connected := !known || peer.Connected()
	if known && connected && m.link.remaining > -serialReplyPatience {
		return
	}
	if connected {
		m.lateReplies++
	}
	m.completeSerial(0xFF)
}
