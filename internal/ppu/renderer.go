package ppu

// renderScanline renders the current scanline into the back framebuffer.
// Called during the Drawing->HBlank transition, after LCDC is known enabled
// (Tick only reaches this point while the LCD is on).
func (p *PPU) renderScanline() {
	p.windowActiveLine = false

	if p.lcdc&LCDCBGWindowEnable != 0 {
		p.renderBackgroundAndWindow()
	} else {
		p.clearScanline()
	}

	if p.lcdc&LCDCOBJEnable != 0 {
		p.renderSprites()
	}

	if p.windowActiveLine {
		p.windowLine++
	}
}

// clearScanline fills the current scanline with shade 0 (white).
func (p *PPU) clearScanline() {
	row := int(p.ly) * ScreenWidth * 4
	color := palette[0]
	for x := 0; x < ScreenWidth; x++ {
		copy(p.back[row+x*4:row+x*4+4], color[:])
	}
}

// renderBackgroundAndWindow renders one scanline, column by column, picking
// between the background map and the window map per column exactly as
// real hardware mixes the two layers mid-line.
func (p *PPU) renderBackgroundAndWindow() {
	bgUseSigned := p.lcdc&LCDCBGTileData == 0
	bgTileDataBase := uint16(0x0000)
	if bgUseSigned {
		bgTileDataBase = 0x0800
	}

	bgTileMapBase := uint16(0x1800)
	if p.lcdc&LCDCBGTileMap != 0 {
		bgTileMapBase = 0x1C00
	}

	winTileMapBase := uint16(0x1800)
	if p.lcdc&LCDCWindowTileMap != 0 {
		winTileMapBase = 0x1C00
	}

	windowEnabled := p.lcdc&LCDCWindowEnable != 0

	for x := uint16(0); x < ScreenWidth; x++ {
		var mapBase, mapX, mapY uint16

		if windowEnabled && p.wy <= p.ly && uint16(p.wx) <= x+7 {
			mapBase = winTileMapBase
			mapX = x + 7 - uint16(p.wx)
			mapY = p.windowLine
			p.windowActiveLine = true
		} else {
			mapBase = bgTileMapBase
			mapX = (x + uint16(p.scx)) % 256
			mapY = (uint16(p.ly) + uint16(p.scy)) % 256
		}

		tileRow := (mapY / 8) % 32
		tileCol := (mapX / 8) % 32
		tileMapAddr := mapBase + (tileRow << 5 | tileCol)
		tileIndex := p.vram[tileMapAddr%VRAMSize]

		tileAddr := p.getTileDataAddr(tileIndex, bgUseSigned, bgTileDataBase)
		colorIndex := p.getTilePixel(tileAddr, mapX%8, mapY%8)
		shade := p.applyPalette(colorIndex, p.bgp)

		p.writePixel(x, shade)
	}
}

// renderSprites renders sprites (objects) over the current scanline's
// background/window pixels.
func (p *PPU) renderSprites() {
	spriteHeight := uint16(8)
	if p.lcdc&LCDCOBJSize != 0 {
		spriteHeight = 16
	}

	p.sprites = p.sprites[:0]

	for i := 0; i < 40; i++ {
		oamAddr := i * 4

		y := int16(p.oam[oamAddr]) - 16
		x := int16(p.oam[oamAddr+1]) - 8
		tileIndex := p.oam[oamAddr+2]
		attrs := p.oam[oamAddr+3]

		scanline := int16(p.ly)
		if scanline >= y && scanline < y+int16(spriteHeight) { //nolint:gosec // Intentional conversion
			p.sprites = append(p.sprites, sprite{
				x:         x,
				y:         y,
				tileIndex: tileIndex,
				attrs:     attrs,
				oamIndex:  i,
			})

			if len(p.sprites) >= 10 {
				break
			}
		}
	}

	// Sort descending by X, ties broken by descending OAM index, then draw
	// forward overwriting: this makes the lowest-X (and, on equal X, the
	// lowest OAM index) sprite the last one drawn, so it wins visibly.
	for i := 1; i < len(p.sprites); i++ {
		for j := i; j > 0 && spriteLess(p.sprites[j], p.sprites[j-1]); j-- {
			p.sprites[j], p.sprites[j-1] = p.sprites[j-1], p.sprites[j]
		}
	}

	for i := 0; i < len(p.sprites); i++ {
		spr := p.sprites[i]
		p.renderSprite(spr, spriteHeight)
	}
}

// spriteLess orders sprites descending by X, ties broken descending by OAM
// index, so a forward draw over this order ends with the lowest-X /
// lowest-OAM-index sprite drawn last (and thus visible).
func spriteLess(a, b sprite) bool {
	if a.x != b.x {
		return a.x > b.x
	}
	return a.oamIndex > b.oamIndex
}

func (p *PPU) renderSprite(spr sprite, spriteHeight uint16) {
	spriteLine := uint16(int16(p.ly) - spr.y) //nolint:gosec // Intentional conversion

	if spr.attrs&SpriteAttrYFlip != 0 {
		spriteLine = spriteHeight - 1 - spriteLine
	}

	tileIndex := uint16(spr.tileIndex)
	if spriteHeight == 16 {
		tileIndex &= 0xFE
		if spriteLine >= 8 {
			tileIndex++
			spriteLine -= 8
		}
	}

	tileAddr := tileIndex * 16

	for x := uint16(0); x < 8; x++ {
		pixelX := spr.x + int16(x)
		if pixelX < 0 || pixelX >= ScreenWidth {
			continue
		}

		tileX := x
		if spr.attrs&SpriteAttrXFlip != 0 {
			tileX = 7 - x
		}

		colorIndex := p.getTilePixel(tileAddr, tileX, spriteLine)
		if colorIndex == 0 {
			continue
		}

		if spr.attrs&SpriteAttrPriority != 0 && !p.pixelIsShade0(uint16(pixelX)) { //nolint:gosec // Intentional conversion
			continue
		}

		palNum := p.obp0
		if spr.attrs&SpriteAttrPalette != 0 {
			palNum = p.obp1
		}
		shade := p.applyPalette(colorIndex, palNum)
		p.writePixel(uint16(pixelX), shade) //nolint:gosec // Intentional conversion
	}
}

// writePixel resolves a shade (0-3) through the fixed RGBA8 palette and
// writes it into the back framebuffer at (x, ly).
func (p *PPU) writePixel(x uint16, shade uint8) {
	offset := (int(p.ly)*ScreenWidth + int(x)) * 4
	color := palette[shade&0x03]
	copy(p.back[offset:offset+4], color[:])
}

// pixelIsShade0 reports whether the back-buffer pixel at (x, ly) currently
// holds the palette-0 RGBA value, used for sprite background-priority.
func (p *PPU) pixelIsShade0(x uint16) bool {
	offset := (int(p.ly)*ScreenWidth + int(x)) * 4
	want := palette[0]
	return p.back[offset] == want[0] && p.back[offset+1] == want[1] &&
		p.back[offset+2] == want[2] && p.back[offset+3] == want[3]
}

// getTileDataAddr calculates the address of tile data.
func (p *PPU) getTileDataAddr(tileIndex uint8, useSigned bool, base uint16) uint16 {
	if useSigned {
		// Signed addressing around 0x9000 (VRAM offset 0x1000: the 0x0800
		// base plus another 0x0800)
		signedIndex := int16(int8(tileIndex))                              //nolint:gosec // Intentional signed conversion
		return uint16(int32(base) + int32(0x0800) + int32(signedIndex)*16) //nolint:gosec // Intentional conversion
	}
	// Unsigned addressing: base at 0x8000 (0x0000 in VRAM)
	return base + uint16(tileIndex)*16
}

// getTilePixel gets a pixel from a tile.
// Tiles are 8x8 pixels, 2 bits per pixel, stored as 16 bytes.
func (p *PPU) getTilePixel(tileAddr, x, y uint16) uint8 {
	// Each row is 2 bytes
	lineAddr := tileAddr + (y * 2)

	// Get the two bytes for this line
	byte1 := p.vram[lineAddr]
	byte2 := p.vram[lineAddr+1]

	// Extract the bit for this pixel (bit 7 is pixel 0, bit 0 is pixel 7)
	bitPos := 7 - x
	bit1 := (byte1 >> bitPos) & 1
	bit2 := (byte2 >> bitPos) & 1

	// Combine to get color index (0-3)
	return (bit2 << 1) | bit1
}

// applyPalette applies a palette register to convert a color index (0-3)
// into a shade (0-3).
func (p *PPU) applyPalette(colorIndex, palette uint8) uint8 {
	shift := colorIndex * 2
	return (palette >> shift) & 0x03
}
