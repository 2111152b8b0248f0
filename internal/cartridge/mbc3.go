package cartridge

// memoryBankController3 supports up to 2MB ROM, 32KB RAM and
// a real time clock.
//
//	0x0000 - 0x1FFF RAM and timer enable
//	0x2000 - 0x3FFF ROM bank number (7 bits)
//	0x4000 - 0x5FFF RAM bank number (0x00 - 0x03) or RTC register select (0x08 - 0x0C)
//	0x6000 - 0x7FFF latch clock data
//
// The clock registers can be selected, but are not emulated:
// while one is mapped the external RAM window reads 0xFF and
// drops writes.
type memoryBankController3 struct {
	b Banker
}

func (m *memoryBankController3) Write(address uint16, value uint8) {
	switch {
	case address < 0x2000:
		m.b.EnableRAM(ramEnableValue(value))
	case address < 0x4000:
		bank := int(value & 0x7F)
		if bank == 0 {
			bank = 1
		}
		m.b.SetROMBank(bank)
	case address < 0x6000:
		switch {
		case value <= 0x03:
			m.b.MapRTC(0)
			m.b.SetRAMBank(int(value))
		case value >= 0x08 && value <= 0x0C:
			m.b.MapRTC(value)
		}
	case address < 0x8000:
		// latching is meaningless without a running clock
	}
}
