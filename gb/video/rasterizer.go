package video

import "github.com/corvee-dev/gbcore/gb/addr"

const (
	lcdcBGEnable       = 1 << 0
	lcdcSpritesEnable  = 1 << 1
	lcdcSpriteSize     = 1 << 2
	lcdcBGTileMap      = 1 << 3
	lcdcTileDataSelect = 1 << 4
	lcdcWindowEnable   = 1 << 5
	lcdcWindowTileMap  = 1 << 6
)

// drawScanline renders the current LY into the PPU's write buffer,
// background and window first, then sprites, matching the draw order
// real hardware composites in (spec.md §4.5).
func (p *PPU) drawScanline() {
	if p.ly >= FramebufferHeight {
		return
	}

	for i := range p.bgIndex {
		p.bgIndex[i] = 0
	}

	if p.lcdc&lcdcBGEnable != 0 {
		p.drawBackground()
	}
	if p.lcdc&lcdcWindowEnable != 0 {
		p.drawWindow()
	}
	if p.lcdc&lcdcSpritesEnable != 0 {
		p.drawSprites()
	}
}

// tileDataAddr resolves a tile index to its data address, honoring
// LCDC bit 4's signed/unsigned addressing mode switch.
func (p *PPU) tileDataAddr(tileIndex uint8) uint16 {
	if p.lcdc&lcdcTileDataSelect != 0 {
		return addr.TileDataUnsigned + uint16(tileIndex)*16
	}
	return uint16(int32(addr.TileDataSigned) + int32(int8(tileIndex))*16)
}

func (p *PPU) vramRead(a uint16) uint8 {
	return p.vram[a-addr.VRAMStart]
}

// tileRowPixels decodes the two bitplane bytes for one 8-pixel tile row
// into palette indices 0-3, MSB (x=0) first.
func tileRowPixels(lo, hi uint8) [8]uint8 {
	var row [8]uint8
	for x := 0; x < 8; x++ {
		bit := uint(7 - x)
		lowBit := (lo >> bit) & 1
		highBit := (hi >> bit) & 1
		row[x] = (highBit << 1) | lowBit
	}
	return row
}

func applyPalette(palette uint8, index uint8) uint8 {
	return (palette >> (index * 2)) & 0x03
}

func (p *PPU) drawBackground() {
	tileMapBase := uint16(addr.TileMap0)
	if p.lcdc&lcdcBGTileMap != 0 {
		tileMapBase = addr.TileMap1
	}

	y := (uint16(p.ly) + uint16(p.scy)) & 0xFF
	tileRow := y / 8
	rowInTile := y % 8

	for screenX := 0; screenX < FramebufferWidth; screenX++ {
		x := (uint16(screenX) + uint16(p.scx)) & 0xFF
		tileCol := x / 8
		colInTile := x % 8

		tileIndex := p.vramRead(tileMapBase + tileRow*32 + tileCol)
		dataAddr := p.tileDataAddr(tileIndex) + rowInTile*2
		lo := p.vramRead(dataAddr)
		hi := p.vramRead(dataAddr + 1)
		row := tileRowPixels(lo, hi)

		colorIndex := row[colInTile]
		p.bgIndex[screenX] = colorIndex
		p.buffers.write().set(screenX, int(p.ly), applyPalette(p.bgp, colorIndex))
	}
}

func (p *PPU) drawWindow() {
	wx := int(p.wx) - 7
	if int(p.ly) < int(p.wy) {
		return
	}
	if wx >= FramebufferWidth {
		return
	}

	tileMapBase := uint16(addr.TileMap0)
	if p.lcdc&lcdcWindowTileMap != 0 {
		tileMapBase = addr.TileMap1
	}

	y := uint16(p.windowLine)
	tileRow := y / 8
	rowInTile := y % 8

	drew := false
	for screenX := 0; screenX < FramebufferWidth; screenX++ {
		x := screenX - wx
		if x < 0 {
			continue
		}
		drew = true

		tileCol := uint16(x) / 8
		colInTile := uint16(x) % 8

		tileIndex := p.vramRead(tileMapBase + tileRow*32 + tileCol)
		dataAddr := p.tileDataAddr(tileIndex) + rowInTile*2
		lo := p.vramRead(dataAddr)
		hi := p.vramRead(dataAddr + 1)
		row := tileRowPixels(lo, hi)

		colorIndex := row[colInTile]
		p.bgIndex[screenX] = colorIndex
		p.buffers.write().set(screenX, int(p.ly), applyPalette(p.bgp, colorIndex))
	}

	if drew {
		p.windowLine++
	}
}

// spriteAttributes mirrors one 4-byte OAM entry.
type spriteAttributes struct {
	y, x, tile, flags uint8
}

const (
	spriteFlagPalette  = 1 << 4
	spriteFlagFlipX    = 1 << 5
	spriteFlagFlipY    = 1 << 6
	spriteFlagBehindBG = 1 << 7
)

func (p *PPU) spriteAt(index int) spriteAttributes {
	base := index * 4
	return spriteAttributes{
		y:     p.oam[base],
		x:     p.oam[base+1],
		tile:  p.oam[base+2],
		flags: p.oam[base+3],
	}
}

// drawSprites scans all 40 OAM entries for ones intersecting the current
// line, keeps the first 10 in OAM order (the real hardware per-scanline
// cap), and composites them in that same OAM order with the priority
// buffer resolving overlaps (spec.md §4.5, §8).
func (p *PPU) drawSprites() {
	height := 8
	if p.lcdc&lcdcSpriteSize != 0 {
		height = 16
	}

	p.priority.clear()

	visible := make([]int, 0, 10)
	for i := 0; i < 40; i++ {
		s := p.spriteAt(i)
		top := int(s.y) - 16
		if int(p.ly) < top || int(p.ly) >= top+height {
			continue
		}
		visible = append(visible, i)
		if len(visible) == 10 {
			break
		}
	}

	for _, i := range visible {
		s := p.spriteAt(i)
		left := int(s.x) - 8
		top := int(s.y) - 16

		tile := s.tile
		if height == 16 {
			tile &^= 0x01
		}

		rowInSprite := int(p.ly) - top
		if s.flags&spriteFlagFlipY != 0 {
			rowInSprite = height - 1 - rowInSprite
		}

		tileIndex := tile
		if height == 16 && rowInSprite >= 8 {
			tileIndex++
			rowInSprite -= 8
		}

		dataAddr := addr.TileDataUnsigned + uint16(tileIndex)*16 + uint16(rowInSprite)*2
		lo := p.vramRead(dataAddr)
		hi := p.vramRead(dataAddr + 1)
		row := tileRowPixels(lo, hi)

		for col := 0; col < 8; col++ {
			screenX := left + col
			if screenX < 0 || screenX >= FramebufferWidth {
				continue
			}

			srcCol := col
			if s.flags&spriteFlagFlipX != 0 {
				srcCol = 7 - col
			}
			colorIndex := row[srcCol]
			if colorIndex == 0 {
				continue
			}

			if s.flags&spriteFlagBehindBG != 0 && p.bgIndex[screenX] != 0 {
				continue
			}

			if !p.priority.tryClaim(screenX, i, int(s.x)) {
				continue
			}

			palette := p.obp0
			if s.flags&spriteFlagPalette != 0 {
				palette = p.obp1
			}
			p.buffers.write().set(screenX, int(p.ly), applyPalette(palette, colorIndex))
		}
	}
}
