package cartridge

// memoryBankController1 supports up to 2MB ROM and 32KB RAM.
//
//	0x0000 - 0x1FFF RAM enable
//	0x2000 - 0x3FFF ROM bank number (lower 5 bits)
//	0x4000 - 0x5FFF RAM bank number
//	0x6000 - 0x7FFF banking mode select
//
// Only the simple banking mode is implemented: the upper
// register always selects the RAM bank, and the mode select
// register is ignored.
type memoryBankController1 struct {
	b Banker
}

// Write attempts to switch the ROM or RAM bank.
func (m *memoryBankController1) Write(address uint16, value uint8) {
	switch {
	case address < 0x2000:
		m.b.EnableRAM(ramEnableValue(value))
	case address < 0x4000:
		bank := int(value & 0x1F)
		if bank == 0 {
			bank = 1
		}
		m.b.SetROMBank(bank)
	case address < 0x6000:
		m.b.SetRAMBank(int(value & 0x03))
	case address < 0x8000:
		// advanced banking mode not implemented
	}
}
