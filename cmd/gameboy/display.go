package main

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/duskforge/gbcore/internal/console"
	"github.com/duskforge/gbcore/internal/input"
	"github.com/duskforge/gbcore/internal/ppu"
)

// Display implements the Ebiten game interface for the Game Boy console.
type Display struct {
	console *console.Console
	screen  *ebiten.Image
	pixels  []byte // Pre-allocated pixel buffer to avoid GC pressure
}

// NewDisplay creates a new display for the given console.
func NewDisplay(gb *console.Console) *Display {
	return &Display{
		console: gb,
		screen:  ebiten.NewImage(ppu.ScreenWidth, ppu.ScreenHeight),
		pixels:  make([]byte, ppu.ScreenWidth*ppu.ScreenHeight*4),
	}
}

// Update updates the game logic (runs one frame worth of cycles).
// This is called 60 times per second by Ebiten.
func (d *Display) Update() error {
	d.handleInput()
	d.console.ExecuteFrame()
	return nil
}

// handleInput processes keyboard input and updates joypad state.
func (d *Display) handleInput() {
	keyMap := map[ebiten.Key]input.GbKey{
		ebiten.KeyArrowUp:    input.KeyUp,
		ebiten.KeyArrowDown:  input.KeyDown,
		ebiten.KeyArrowLeft:  input.KeyLeft,
		ebiten.KeyArrowRight: input.KeyRight,
		ebiten.KeyZ:          input.KeyA,
		ebiten.KeyX:          input.KeyB,
		ebiten.KeyEnter:      input.KeyStart,
		ebiten.KeyShift:      input.KeySelect,
	}

	for key, button := range keyMap {
		if ebiten.IsKeyPressed(key) {
			d.console.KeyDown(button)
		} else {
			d.console.KeyUp(button)
		}
	}
}

// Draw draws the game screen. This is called after Update.
func (d *Display) Draw(screen *ebiten.Image) {
	framebuffer := d.console.GetFramebuffer()
	copy(d.pixels, framebuffer[:])

	d.screen.WritePixels(d.pixels)
	screen.DrawImage(d.screen, nil)
}

// Layout returns the game screen size.
func (d *Display) Layout(_, _ int) (int, int) {
	return ppu.ScreenWidth, ppu.ScreenHeight
}
