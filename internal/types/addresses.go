package types

// HardwareAddress represents the address of a hardware
// register. The hardware registers are mapped to memory
// addresses 0xFF00 - 0xFF7F & 0xFFFF, and live in the
// io.Bus alongside high RAM.
type HardwareAddress = uint16

const (
	// P1 is the address of the P1 hardware register. The P1
	// hardware register is used to select the input keys to
	// be read by the CPU, and to read the state of the joypad.
	P1 HardwareAddress = 0xFF00
	// SB is the address of the SB hardware register. The SB
	// hardware register holds the byte to be transferred
	// over the serial port.
	SB HardwareAddress = 0xFF01
	// SC is the address of the SC hardware register. The SC
	// hardware register is used to control the serial port.
	SC HardwareAddress = 0xFF02
	// DIV is the address of the DIV hardware register. The DIV
	// hardware register is the upper byte of a free running
	// cycle counter, and is reset to 0 when written to.
	DIV HardwareAddress = 0xFF04
	// TIMA is the address of the TIMA hardware register. The TIMA
	// hardware register is incremented at a rate specified by the TAC
	// hardware register. When TIMA overflows, it is reset to the value
	// specified by the TMA hardware register, and a timer interrupt is
	// requested.
	TIMA HardwareAddress = 0xFF05
	// TMA is the address of the TMA hardware register. The TMA
	// hardware register is loaded into TIMA when it overflows.
	TMA HardwareAddress = 0xFF06
	// TAC is the address of the TAC hardware register. The TAC
	// hardware register is used to control the timer.
	//
	//  Bit 2: Timer Enable
	//  Bits 1-0: Input Clock Select
	//             00: CPU Clock / 1024
	//             01: CPU Clock / 16
	//             10: CPU Clock / 64
	//             11: CPU Clock / 256
	TAC HardwareAddress = 0xFF07
	// IF is the address of the IF hardware register. The IF
	// hardware register is used to request interrupts. Writing a 1
	// to a bit in IF requests an interrupt, and writing a 0 clears
	// the request.
	//
	//  Bit 0: V-Blank Interrupt Request (INT 40h)  (1=Request)
	//  Bit 1: LCD STAT Interrupt Request (INT 48h) (1=Request)
	//  Bit 2: Timer Interrupt Request (INT 50h)    (1=Request)
	//  Bit 3: Serial Interrupt Request (INT 58h)   (1=Request)
	//  Bit 4: Joypad Interrupt Request (INT 60h)   (1=Request)
	IF HardwareAddress = 0xFF0F

	// NR10 is the first sound register. Every register from
	// NR10 up to the end of wave RAM is forwarded to the audio
	// engine.
	NR10 HardwareAddress = 0xFF10
	NR11 HardwareAddress = 0xFF11
	NR12 HardwareAddress = 0xFF12
	NR13 HardwareAddress = 0xFF13
	NR14 HardwareAddress = 0xFF14
	NR21 HardwareAddress = 0xFF16
	NR22 HardwareAddress = 0xFF17
	NR23 HardwareAddress = 0xFF18
	NR24 HardwareAddress = 0xFF19
	NR30 HardwareAddress = 0xFF1A
	NR31 HardwareAddress = 0xFF1B
	NR32 HardwareAddress = 0xFF1C
	NR33 HardwareAddress = 0xFF1D
	NR34 HardwareAddress = 0xFF1E
	NR41 HardwareAddress = 0xFF20
	NR42 HardwareAddress = 0xFF21
	NR43 HardwareAddress = 0xFF22
	NR44 HardwareAddress = 0xFF23
	NR50 HardwareAddress = 0xFF24
	NR51 HardwareAddress = 0xFF25
	NR52 HardwareAddress = 0xFF26
	// WaveRAM is the start of the 16 byte wave pattern RAM.
	WaveRAM HardwareAddress = 0xFF30
	// WaveRAMEnd is the last byte of wave pattern RAM, and
	// the last address forwarded to the audio engine.
	WaveRAMEnd HardwareAddress = 0xFF3F

	// LCDC is the address of the LCDC hardware register. The LCDC
	// hardware register is used to control the LCD.
	//
	//  Bit 7: LCD Display Enable
	//  Bit 6: Window Tile Map Display Select (0=9800-9BFF, 1=9C00-9FFF)
	//  Bit 5: Window Display Enable
	//  Bit 4: BG & Window Tile Data Select   (0=8800-97FF, 1=8000-8FFF)
	//  Bit 3: BG Tile Map Display Select     (0=9800-9BFF, 1=9C00-9FFF)
	//  Bit 2: OBJ (Sprite) Size              (0=8x8, 1=8x16)
	//  Bit 1: OBJ (Sprite) Display Enable
	//  Bit 0: BG Display
	LCDC HardwareAddress = 0xFF40
	// STAT is the address of the STAT hardware register. The STAT
	// hardware register contains the status of the LCD.
	//
	//  Bit 6: LYC=LY Coincidence Interrupt
	//  Bit 5: Mode 2 OAM Interrupt
	//  Bit 4: Mode 1 V-Blank Interrupt
	//  Bit 3: Mode 0 H-Blank Interrupt
	//  Bit 2: Coincidence Flag (Read Only)
	//  Bit 1-0: Mode Flag (Read Only)
	STAT HardwareAddress = 0xFF41
	// SCY is the address of the SCY hardware register. The SCY
	// hardware register is the Y position of the background.
	SCY HardwareAddress = 0xFF42
	// SCX is the address of the SCX hardware register. The SCX
	// hardware register is the X position of the background.
	SCX HardwareAddress = 0xFF43
	// LY is the address of the LY hardware register. The LY
	// hardware register holds the line currently being processed,
	// and is read only.
	LY HardwareAddress = 0xFF44
	// LYC is the address of the LYC hardware register. LY is
	// compared against it every time LY changes.
	LYC HardwareAddress = 0xFF45
	// DMA is the address of the DMA hardware register. Writing
	// to it copies 160 bytes from value<<8 into OAM.
	DMA HardwareAddress = 0xFF46
	// BGP is the address of the BGP hardware register. It maps
	// the 4 background colour indices onto shades.
	BGP HardwareAddress = 0xFF47
	// OBP0 is the first object palette. Colour index 0 is
	// transparent and never looked up.
	OBP0 HardwareAddress = 0xFF48
	// OBP1 is the second object palette.
	OBP1 HardwareAddress = 0xFF49
	// WY is the top edge of the window.
	WY HardwareAddress = 0xFF4A
	// WX is the left edge of the window, offset by 7.
	WX HardwareAddress = 0xFF4B
	// KEY1 is the address of the KEY1 hardware register. It is
	// used to prepare a speed switch, which takes effect on
	// the next STOP instruction.
	//
	//  Bit 7: Current Speed (0=Normal, 1=Double) (Read Only)
	//  Bit 0: Prepare Speed Switch (0=No, 1=Prepare)
	KEY1 HardwareAddress = 0xFF4D
	// VBK selects the VRAM bank visible at 0x8000-0x9FFF.
	VBK HardwareAddress = 0xFF4F
	// SVBK selects the WRAM bank visible at 0xD000-0xDFFF.
	SVBK HardwareAddress = 0xFF70
	// IE is the address of the IE hardware register. The IE
	// hardware register is used to enable interrupts, with
	// the same bit layout as IF.
	IE HardwareAddress = 0xFFFF
)
