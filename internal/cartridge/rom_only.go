package cartridge

// ROMOnly represents a flat, unbanked cartridge image: ROM at 0x0000-0x7FFF
// and, for cartridge types that declare it, external RAM at 0xA000-0xBFFF.
// This is the only cartridge implementation the minimal core has: there is
// no MBC, so reads past the end of the image fall back to open-bus 0xFF
// instead of bank-switching.
type ROMOnly struct {
	header *Header
	rom    []byte
	ram    []byte
}

// newROMOnly constructs a ROM-only cartridge. It never fails: rom may be
// shorter or longer than the header declares, and out-of-range reads are
// clamped to 0xFF rather than rejected at construction time.
func newROMOnly(rom []byte, header *Header) *ROMOnly {
	cart := &ROMOnly{
		header: header,
		rom:    rom,
	}

	if CartridgeType(header.CartridgeType).HasRAM() {
		if ramSize := header.GetRAMSizeBytes(); ramSize > 0 {
			cart.ram = make([]byte, ramSize)
		}
	}

	return cart
}

// Read reads a byte from the cartridge.
func (c *ROMOnly) Read(addr uint16) uint8 {
	switch {
	// ROM: 0x0000-0x7FFF
	case addr < 0x8000:
		if int(addr) < len(c.rom) {
			return c.rom[addr]
		}
		return 0xFF

	// External RAM: 0xA000-0xBFFF
	case addr >= 0xA000 && addr < 0xC000:
		if c.ram != nil {
			ramAddr := addr - 0xA000
			if int(ramAddr) < len(c.ram) {
				return c.ram[ramAddr]
			}
		}
		return 0xFF

	default:
		return 0xFF
	}
}

// Write writes a byte to the cartridge (only RAM is writable).
func (c *ROMOnly) Write(addr uint16, value uint8) {
	switch {
	// ROM: 0x0000-0x7FFF (read-only, writes ignored)
	case addr < 0x8000:
		// Writes to ROM are ignored

	// External RAM: 0xA000-0xBFFF
	case addr >= 0xA000 && addr < 0xC000:
		if c.ram != nil {
			ramAddr := addr - 0xA000
			if int(ramAddr) < len(c.ram) {
				c.ram[ramAddr] = value
			}
		}
	}
}

// Header returns the cartridge header.
func (c *ROMOnly) Header() *Header {
	return c.header
}

// HasBattery returns true if the cartridge has battery-backed RAM.
func (c *ROMOnly) HasBattery() bool {
	return CartridgeType(c.header.CartridgeType).HasBattery()
}
