package video

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpritePriorityBuffer(t *testing.T) {
	var buf SpritePriorityBuffer
	buf.Clear()

	owner, _ := buf.Owner(10)
	assert.Equal(t, -1, owner)

	assert.False(t, buf.TryClaimPixel(10, 0, 10, 0), "transparent pixels never claim")
	assert.True(t, buf.TryClaimPixel(10, 1, 10, 2))
	assert.True(t, buf.TryClaimPixel(10, 2, 5, 3), "lower X wins")
	assert.False(t, buf.TryClaimPixel(10, 3, 5, 1), "same X, later slot loses")
	assert.True(t, buf.TryClaimPixel(10, 0, 5, 1), "same X, earlier slot wins")

	owner, color := buf.Owner(10)
	assert.Equal(t, 0, owner)
	assert.Equal(t, uint8(1), color)

	assert.False(t, buf.TryClaimPixel(-1, 0, 0, 3))
	assert.False(t, buf.TryClaimPixel(FramebufferWidth, 0, 0, 3))
}

func TestScanSpritesKeepsOAMOrder(t *testing.T) {
	mmu := newColorMMU(t)
	putSprite(mmu, 5, 50, 0, 0, 0)
	putSprite(mmu, 2, 90, 0, 0, 0)
	putSprite(mmu, 7, 10, 20, 0, 0)

	sprites := scanSprites(mmu, 0, spriteHeightNormal, nil)

	if assert.Len(t, sprites, 2) {
		assert.Equal(t, 2, sprites[0].OAMIndex)
		assert.Equal(t, 5, sprites[1].OAMIndex)
		assert.Equal(t, 90, sprites[0].X)
	}
}

func TestSpriteFlags(t *testing.T) {
	s := Sprite{Flags: 0xFB}
	s.parseFlags()

	assert.Equal(t, uint8(3), s.ColorPalette)
	assert.Equal(t, uint8(1), s.Bank)
	assert.True(t, s.PaletteOBP1)
	assert.True(t, s.FlipX)
	assert.True(t, s.FlipY)
	assert.True(t, s.BehindBG)
}
