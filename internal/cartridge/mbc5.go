package cartridge

// memoryBankController5 supports up to 8MB ROM and 128KB RAM.
//
//	0x0000 - 0x1FFF RAM enable
//	0x2000 - 0x2FFF ROM bank number (lower 8 bits)
//	0x3000 - 0x3FFF ROM bank number (bit 8)
//	0x4000 - 0x5FFF RAM bank number
//
// Unlike MBC1 and MBC3, bank 0 may be mapped into the
// switchable ROM area.
type memoryBankController5 struct {
	b Banker
}

func (m *memoryBankController5) Write(address uint16, value uint8) {
	switch {
	case address < 0x2000:
		m.b.EnableRAM(ramEnableValue(value))
	case address < 0x3000:
		m.b.SetROMBank(m.b.ROMBank()&0x100 | int(value))
	case address < 0x4000:
		m.b.SetROMBank(m.b.ROMBank()&0xFF | int(value&0x01)<<8)
	case address < 0x6000:
		m.b.SetRAMBank(int(value & 0x0F))
	}
}
