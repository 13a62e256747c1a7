package core

import (
	"fmt"
	"image"
	"image/draw"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// TextVertex feeds the HUD text pipeline: clip-space position, atlas UV,
// premultipliable color. 32 bytes, matching the vertex layout declared by
// the renderer.
type TextVertex struct {
	Pos   [2]float32
	UV    [2]float32
	Color [4]float32
}

type glyph struct {
	uvMin [2]float32
	uvMax [2]float32
	size  [2]float32
	off   [2]float32
	adv   float32
}

// TextAtlas rasterizes the printable ASCII range of a TTF font into a single
// alpha image and builds clip-space quads for HUD lines from it.
type TextAtlas struct {
	Image  *image.Alpha
	glyphs map[rune]glyph
	face   font.Face
}

const atlasSize = 512

func NewTextAtlas(fontPath string, fontSize float64) (*TextAtlas, error) {
	fontBytes, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, fmt.Errorf("reading font: %w", err)
	}

	f, err := opentype.Parse(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("parsing font: %w", err)
	}

	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    fontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("creating face: %w", err)
	}

	a := &TextAtlas{
		Image:  image.NewAlpha(image.Rect(0, 0, atlasSize, atlasSize)),
		glyphs: make(map[rune]glyph),
		face:   face,
	}

	x, y := 2, 2
	rowHeight := 0
	for r := rune(32); r < 127; r++ {
		bounds, mask, _, adv, ok := face.Glyph(fixed.Point26_6{}, r)
		if !ok {
			continue
		}

		w := mask.Bounds().Dx()
		h := mask.Bounds().Dy()

		if x+w >= atlasSize {
			x = 2
			y += rowHeight + 4
			rowHeight = 0
		}
		if y+h >= atlasSize {
			return nil, fmt.Errorf("font size %.0f overflows the %dpx atlas", fontSize, atlasSize)
		}

		draw.Draw(a.Image, image.Rect(x, y, x+w, y+h), mask, mask.Bounds().Min, draw.Src)

		a.glyphs[r] = glyph{
			uvMin: [2]float32{float32(x) / atlasSize, float32(y) / atlasSize},
			uvMax: [2]float32{float32(x+w) / atlasSize, float32(y+h) / atlasSize},
			size:  [2]float32{float32(w), float32(h)},
			off:   [2]float32{float32(bounds.Min.X), float32(bounds.Min.Y)},
			adv:   float32(adv) / 64.0, // fixed 26.6
		}

		x += w + 4
		if h > rowHeight {
			rowHeight = h
		}
	}

	return a, nil
}

// Line appends the quads for one line of text anchored at pixel (x, y) of a
// screenW x screenH framebuffer and returns the extended slice. Runes
// outside the atlas are skipped.
func (a *TextAtlas) Line(dst []TextVertex, text string, x, y, scale float32, color [4]float32, screenW, screenH int) []TextVertex {
	sw := float32(screenW)
	sh := float32(screenH)
	if sw <= 0 || sh <= 0 {
		return dst
	}

	ascent := float32(a.face.Metrics().Ascent.Ceil())
	posX := x
	posY := y + ascent*scale

	for _, r := range text {
		g, ok := a.glyphs[r]
		if !ok {
			continue
		}

		x0 := (posX+g.off[0]*scale)/sw*2.0 - 1.0
		y0 := 1.0 - (posY+g.off[1]*scale)/sh*2.0
		x1 := (posX+(g.off[0]+g.size[0])*scale)/sw*2.0 - 1.0
		y1 := 1.0 - (posY+(g.off[1]+g.size[1])*scale)/sh*2.0

		dst = append(dst,
			TextVertex{Pos: [2]float32{x0, y0}, UV: [2]float32{g.uvMin[0], g.uvMin[1]}, Color: color},
			TextVertex{Pos: [2]float32{x1, y0}, UV: [2]float32{g.uvMax[0], g.uvMin[1]}, Color: color},
			TextVertex{Pos: [2]float32{x0, y1}, UV: [2]float32{g.uvMin[0], g.uvMax[1]}, Color: color},
			TextVertex{Pos: [2]float32{x1, y0}, UV: [2]float32{g.uvMax[0], g.uvMin[1]}, Color: color},
			TextVertex{Pos: [2]float32{x1, y1}, UV: [2]float32{g.uvMax[0], g.uvMax[1]}, Color: color},
			TextVertex{Pos: [2]float32{x0, y1}, UV: [2]float32{g.uvMin[0], g.uvMax[1]}, Color: color},
		)

		posX += g.adv * scale
	}

	return dst
}
