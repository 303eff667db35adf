package cartridge

// Cartridge is a loaded Game Boy cartridge image.
type Cartridge interface {
	// Read reads a byte from the cartridge address space (0x0000-0x7FFF for ROM, 0xA000-0xBFFF for RAM)
	Read(addr uint16) uint8

	// Write writes a byte to the cartridge address space
	Write(addr uint16, value uint8)

	// Header returns the parsed cartridge header
	Header() *Header

	// HasBattery returns true if the cartridge has battery-backed RAM
	HasBattery() bool
}

// New constructs a cartridge from rom. It never rejects its input: rom may
// be any length, declare any cartridge type, or fail to look like a real
// Game Boy image at all. The minimal core has no MBC, so every cartridge
// is handled as a flat ROM region with reads past len(rom) clamped to 0xFF
// (see ROMOnly.Read) rather than erroring on a bad size or an unrecognized
// header byte.
func New(rom []byte) *ROMOnly {
	return newROMOnly(rom, ParseHeader(rom))
}
