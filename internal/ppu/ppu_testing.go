package ppu

// SetModeForTesting sets the PPU mode and STAT mode bits directly, without
// waiting for the state machine to reach that mode naturally.
func (p *PPU) SetModeForTesting(mode uint8) {
	p.mode = mode
	p.stat = (p.stat &^ STATModeMask) | (mode & STATModeMask)
}
