package ppu

import (
	"testing"
)

// stepMany ticks the PPU by the given number of T-cycles (handles any value).
func stepMany(p *PPU, cycles int) {
	for cycles > 0 {
		step := 200
		if cycles < 200 {
			step = cycles
		}
		p.Tick(uint8(step)) //nolint:gosec // Test helper, values are controlled
		cycles -= step
	}
}

// TestPPUInitialization tests PPU creation and initial state.
func TestPPUInitialization(t *testing.T) {
	ppu := New(nil)

	if ppu == nil {
		t.Fatal("New() returned nil")
	}

	if ppu.lcdc != 0x91 {
		t.Errorf("LCDC initial value = 0x%02X, want 0x91", ppu.lcdc)
	}

	if ppu.stat != 0x00 {
		t.Errorf("STAT initial value = 0x%02X, want 0x00", ppu.stat)
	}

	if ppu.bgp != 0xFC {
		t.Errorf("BGP initial value = 0x%02X, want 0xFC", ppu.bgp)
	}

	if ppu.obp0 != 0xFF {
		t.Errorf("OBP0 initial value = 0x%02X, want 0xFF", ppu.obp0)
	}

	if ppu.obp1 != 0xFF {
		t.Errorf("OBP1 initial value = 0x%02X, want 0xFF", ppu.obp1)
	}

	if ppu.mode != ModeOAMScan {
		t.Errorf("Initial mode = %d, want %d (OAM Scan)", ppu.mode, ModeOAMScan)
	}

	if ppu.ly != 0 {
		t.Errorf("Initial LY = %d, want 0", ppu.ly)
	}

	if ppu.dots != 0 {
		t.Errorf("Initial dots = %d, want 0", ppu.dots)
	}
}

// TestPPUModeTransitions tests the PPU mode state machine.
func TestPPUModeTransitions(t *testing.T) {
	ppu := New(nil)

	if ppu.mode != ModeOAMScan {
		t.Fatalf("Expected initial mode OAM Scan, got %d", ppu.mode)
	}

	ppu.Tick(DotsOAMScan)
	if ppu.mode != ModeDrawing {
		t.Errorf("After %d dots, mode = %d, want %d (Drawing)", DotsOAMScan, ppu.mode, ModeDrawing)
	}

	ppu.Tick(DotsDrawing)
	if ppu.mode != ModeHBlank {
		t.Errorf("After drawing, mode = %d, want %d (H-Blank)", ppu.mode, ModeHBlank)
	}

	stepMany(ppu, DotsHBlank)
	if ppu.mode != ModeOAMScan {
		t.Errorf("After H-Blank, mode = %d, want %d (OAM Scan)", ppu.mode, ModeOAMScan)
	}

	if ppu.ly != 1 {
		t.Errorf("After first scanline, LY = %d, want 1", ppu.ly)
	}
}

// TestPPUVBlank tests the V-Blank transition and interrupt.
func TestPPUVBlank(t *testing.T) {
	interruptTriggered := false
	interruptType := uint8(0xFF)

	ppu := New(func(interrupt uint8) {
		interruptTriggered = true
		interruptType = interrupt
	})

	for i := 0; i < ScanlinesVisible; i++ {
		stepMany(ppu, DotsPerScanline)
	}

	if ppu.mode != ModeVBlank {
		t.Errorf("After %d scanlines, mode = %d, want %d (V-Blank)", ScanlinesVisible, ppu.mode, ModeVBlank)
	}

	if ppu.ly != ScanlinesVisible {
		t.Errorf("At V-Blank start, LY = %d, want %d", ppu.ly, ScanlinesVisible)
	}

	if !interruptTriggered {
		t.Error("V-Blank interrupt was not triggered")
	}

	if interruptType != InterruptVBlank {
		t.Errorf("Interrupt type = %d, want %d (V-Blank)", interruptType, InterruptVBlank)
	}
}

// TestPPUFrameTiming tests complete frame timing and the front/back buffer
// swap at the LY 153->0 rollover.
func TestPPUFrameTiming(t *testing.T) {
	ppu := New(nil)
	// With empty VRAM and BGP=0xFC, scanline 0 renders shade 0 into back[0]
	// during the frame; the front buffer starts zeroed.

	for i := 0; i < ScanlinesTotal; i++ {
		stepMany(ppu, DotsPerScanline)
	}

	if ppu.ly != 0 {
		t.Errorf("After one frame, LY = %d, want 0", ppu.ly)
	}

	if ppu.mode != ModeOAMScan {
		t.Errorf("After one frame, mode = %d, want %d (OAM Scan)", ppu.mode, ModeOAMScan)
	}

	if ppu.front[0] != palette[0][0] {
		t.Error("front buffer was not swapped in at the LY 153->0 rollover")
	}
}

// TestPPURegisterReadWrite tests PPU register access.
func TestPPURegisterReadWrite(t *testing.T) {
	ppu := New(nil)

	tests := []struct {
		addr  uint16
		value uint8
		name  string
	}{
		{0xFF40, 0x80, "LCDC"},
		{0xFF42, 0x12, "SCY"},
		{0xFF43, 0x34, "SCX"},
		{0xFF45, 0x90, "LYC"},
		{0xFF47, 0xE4, "BGP"},
		{0xFF48, 0xD2, "OBP0"},
		{0xFF49, 0xA0, "OBP1"},
		{0xFF4A, 0x50, "WY"},
		{0xFF4B, 0x07, "WX"},
	}

	for _, tt := range tests {
		ppu.WriteRegister(tt.addr, tt.value)
		got := ppu.ReadRegister(tt.addr)

		if tt.addr == 0xFF41 {
			want := tt.value & 0x78
			if got&0x78 != want {
				t.Errorf("Register %s (0x%04X) writable bits = 0x%02X, want 0x%02X", tt.name, tt.addr, got&0x78, want)
			}
		} else if tt.addr != 0xFF44 {
			if got != tt.value {
				t.Errorf("Register %s (0x%04X) = 0x%02X, want 0x%02X", tt.name, tt.addr, got, tt.value)
			}
		}
	}
}

// TestPPULYReadOnly tests that LY register is read-only (writes from the
// CPU are ignored rather than resetting it).
func TestPPULYReadOnly(t *testing.T) {
	ppu := New(nil)

	for i := 0; i < 10; i++ {
		stepMany(ppu, DotsPerScanline)
	}

	if ppu.ly != 10 {
		t.Fatalf("Setup failed: LY = %d, want 10", ppu.ly)
	}

	ppu.WriteRegister(0xFF44, 0xFF)

	if ppu.ly != 10 {
		t.Errorf("After write to LY, LY = %d, want unchanged 10", ppu.ly)
	}
}

// TestPPUVRAMAccess tests that VRAM read/write round-trips regardless of
// PPU mode.
func TestPPUVRAMAccess(t *testing.T) {
	ppu := New(nil)

	for _, mode := range []uint8{ModeHBlank, ModeVBlank, ModeOAMScan, ModeDrawing} {
		ppu.mode = mode
		ppu.WriteVRAM(0x0010, uint8(0x40+mode))
		if got := ppu.ReadVRAM(0x0010); got != uint8(0x40+mode) {
			t.Errorf("VRAM round-trip in mode %d = 0x%02X, want 0x%02X", mode, got, 0x40+mode)
		}
	}
}

// TestPPUOAMAccess tests that OAM read/write round-trips regardless of PPU
// mode.
func TestPPUOAMAccess(t *testing.T) {
	ppu := New(nil)

	for _, mode := range []uint8{ModeHBlank, ModeVBlank, ModeOAMScan, ModeDrawing} {
		ppu.mode = mode
		ppu.WriteOAM(0x00, uint8(0x10+mode))
		if got := ppu.ReadOAM(0x00); got != uint8(0x10+mode) {
			t.Errorf("OAM round-trip in mode %d = 0x%02X, want 0x%02X", mode, got, 0x10+mode)
		}
	}
}

// TestPPULYCFlag tests the LYC=LY flag and interrupt.
func TestPPULYCFlag(t *testing.T) {
	interruptCount := 0

	ppu := New(func(interrupt uint8) {
		if interrupt == InterruptSTAT {
			interruptCount++
		}
	})

	ppu.stat |= STATLYCInterrupt

	ppu.WriteRegister(0xFF45, 5)

	if ppu.stat&STATLYCFlag != 0 {
		t.Error("LYC flag set before LY=LYC")
	}

	for i := 0; i < 5; i++ {
		stepMany(ppu, DotsPerScanline)
	}

	if ppu.stat&STATLYCFlag == 0 {
		t.Error("LYC flag not set when LY=LYC")
	}

	if interruptCount == 0 {
		t.Error("LYC interrupt not triggered when LY=LYC")
	}

	stepMany(ppu, DotsPerScanline)

	if ppu.stat&STATLYCFlag != 0 {
		t.Error("LYC flag still set after LY!=LYC")
	}
}

// TestPPUReset tests PPU reset functionality.
func TestPPUReset(t *testing.T) {
	ppu := New(nil)

	ppu.WriteVRAM(0x0000, 0x42)
	ppu.WriteOAM(0x00, 0x12)
	ppu.WriteRegister(0xFF42, 0x50)   // SCY
	stepMany(ppu, DotsPerScanline*10) // Advance 10 scanlines

	ppu.Reset()

	if got := ppu.ReadVRAM(0x0000); got != 0x00 {
		t.Errorf("After reset, VRAM[0x0000] = 0x%02X, want 0x00", got)
	}

	if got := ppu.ReadOAM(0x00); got != 0x00 {
		t.Errorf("After reset, OAM[0x00] = 0x%02X, want 0x00", got)
	}

	if ppu.scy != 0 {
		t.Errorf("After reset, SCY = 0x%02X, want 0x00", ppu.scy)
	}

	if ppu.ly != 0 {
		t.Errorf("After reset, LY = %d, want 0", ppu.ly)
	}

	if ppu.mode != ModeOAMScan {
		t.Errorf("After reset, mode = %d, want %d (OAM Scan)", ppu.mode, ModeOAMScan)
	}

	if ppu.dots != 0 {
		t.Errorf("After reset, dots = %d, want 0", ppu.dots)
	}
}

// TestGetTilePixel tests tile pixel decoding.
func TestGetTilePixel(t *testing.T) {
	ppu := New(nil)

	ppu.vram[0x0000] = 0xAA // 10101010
	ppu.vram[0x0001] = 0xAA // -> pixels: 3,0,3,0,3,0,3,0

	ppu.vram[0x0002] = 0x55 // 01010101
	ppu.vram[0x0003] = 0x55 // -> pixels: 0,3,0,3,0,3,0,3

	tests := []struct {
		x    uint16
		want uint8
	}{
		{0, 3}, {1, 0}, {2, 3}, {3, 0}, {4, 3}, {5, 0}, {6, 3}, {7, 0},
	}

	for _, tt := range tests {
		got := ppu.getTilePixel(0, tt.x, 0)
		if got != tt.want {
			t.Errorf("getTilePixel(0, %d, 0) = %d, want %d", tt.x, got, tt.want)
		}
	}

	tests2 := []struct {
		x    uint16
		want uint8
	}{
		{0, 0}, {1, 3}, {2, 0}, {3, 3}, {4, 0}, {5, 3}, {6, 0}, {7, 3},
	}

	for _, tt := range tests2 {
		got := ppu.getTilePixel(0, tt.x, 1)
		if got != tt.want {
			t.Errorf("getTilePixel(0, %d, 1) = %d, want %d", tt.x, got, tt.want)
		}
	}
}

// TestApplyPalette tests palette register decoding (color index -> shade).
func TestApplyPalette(t *testing.T) {
	ppu := New(nil)

	pal := uint8(0xE4) // 11 10 01 00
	tests := []struct {
		colorIndex uint8
		want       uint8
	}{
		{0, 0},
		{1, 1},
		{2, 2},
		{3, 3},
	}

	for _, tt := range tests {
		got := ppu.applyPalette(tt.colorIndex, pal)
		if got != tt.want {
			t.Errorf("applyPalette(%d, 0xE4) = %d, want %d", tt.colorIndex, got, tt.want)
		}
	}

	pal = 0x1B // 00 01 10 11
	tests2 := []struct {
		colorIndex uint8
		want       uint8
	}{
		{0, 3},
		{1, 2},
		{2, 1},
		{3, 0},
	}

	for _, tt := range tests2 {
		got := ppu.applyPalette(tt.colorIndex, pal)
		if got != tt.want {
			t.Errorf("applyPalette(%d, 0x1B) = %d, want %d", tt.colorIndex, got, tt.want)
		}
	}
}

// TestGetFramebuffer tests framebuffer access: RGBA8, front buffer zeroed
// until the first frame swap.
func TestGetFramebuffer(t *testing.T) {
	ppu := New(nil)

	fb := ppu.GetFramebuffer()

	if fb == nil {
		t.Fatal("GetFramebuffer() returned nil")
	}

	if len(fb) != ScreenWidth*ScreenHeight*4 {
		t.Errorf("Framebuffer size = %d, want %d", len(fb), ScreenWidth*ScreenHeight*4)
	}

	for i, b := range fb {
		if b != 0 {
			t.Errorf("Framebuffer[%d] = %d, want 0", i, b)
			break
		}
	}
}

// TestBackgroundWindowRendering exercises a full scanline render and checks
// that the fixed RGBA8 palette is applied to the back buffer.
func TestBackgroundWindowRendering(t *testing.T) {
	ppu := New(nil)
	ppu.SetModeForTesting(ModeHBlank)

	// Tile 0: all pixels color index 3 (bgp maps 3 -> shade 3).
	ppu.vram[0] = 0xFF
	ppu.vram[1] = 0xFF
	ppu.bgp = 0xE4 // identity mapping

	ppu.renderScanline()

	offset := 0
	want := palette[3]
	for i := 0; i < 4; i++ {
		if ppu.back[offset+i] != want[i] {
			t.Errorf("back[%d] = 0x%02X, want 0x%02X", offset+i, ppu.back[offset+i], want[i])
		}
	}
}

// TestWindowLineCounterPersistence verifies the window-line counter only
// advances on scanlines where the window was actually sampled; the reset
// when LY returns to 0 is not exercised here.
func TestWindowLineCounterPersistence(t *testing.T) {
	ppu := New(nil)
	ppu.SetModeForTesting(ModeHBlank)
	ppu.lcdc |= LCDCWindowEnable
	ppu.wy = 0
	ppu.wx = 7 // window starts at column 0

	ppu.ly = 0
	ppu.renderScanline()
	if ppu.windowLine != 1 {
		t.Errorf("windowLine after active scanline = %d, want 1", ppu.windowLine)
	}

	ppu.lcdc &^= LCDCWindowEnable
	ppu.ly = 1
	ppu.renderScanline()
	if ppu.windowLine != 1 {
		t.Errorf("windowLine after inactive scanline = %d, want unchanged 1", ppu.windowLine)
	}
}
