package canvas

import (
	"math"
	"math/rand/v2"
)

const (
	// maxPlacementAttempts bounds the random tries for a single token.
	maxPlacementAttempts = 100
	// randomLayouts is how many full random layouts are tried before
	// falling back to the grid.
	randomLayouts = 3
)

// placeImages adds one image token per payload, ids and z-indexes counting
// from 1. Positions are uniformly random inside the viewport and never overlap
// another token. If a random layout jams, the images are laid out on a grid
// instead.
func (c *Canvas) placeImages(payloads []string, rng *rand.Rand) {
	if len(payloads) == 0 {
		return
	}
	w, h := c.viewport.ImageSize()
	fixed := c.tokens

	images := make([]Token, len(payloads))
	for i, p := range payloads {
		images[i] = Token{ID: i + 1, Width: w, Height: h, ZIndex: i + 1, Kind: KindImage, Payload: p}
	}

	for range randomLayouts {
		if c.randomLayout(images, fixed, rng) {
			c.tokens = append(fixed, images...)
			return
		}
	}
	c.gridLayout(images, fixed)
	c.tokens = append(fixed, images...)
}

func (c *Canvas) randomLayout(images, fixed []Token, rng *rand.Rand) bool {
	maxX := math.Max(0, c.viewport.Width-images[0].Width)
	maxY := math.Max(0, c.viewport.Height-images[0].Height)

	placed := append([]Token(nil), fixed...)
	for i := range images {
		t := &images[i]
		ok := false
		for range maxPlacementAttempts {
			t.X = math.Floor(rng.Float64() * maxX)
			t.Y = math.Floor(rng.Float64() * maxY)
			if !overlapsAny(*t, placed) {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
		placed = append(placed, *t)
	}
	return true
}

// gridLayout puts images into the free cells of a grid of token-sized cells,
// left to right and top to bottom. Cells are spread over the viewport when
// enough of them stay clear of the fixed tokens, and packed into the top-left
// corner otherwise. On a viewport too small to hold every image the cells are
// reused, so tokens overlap but stay on screen.
func (c *Canvas) gridLayout(images, fixed []Token) {
	w, h := images[0].Width, images[0].Height
	cells := freeCells(c.viewport, w, h, fixed, true)
	if len(cells) < len(images) {
		if packed := freeCells(c.viewport, w, h, fixed, false); len(packed) > len(cells) {
			cells = packed
		}
	}
	if len(cells) == 0 {
		cells = []Token{{Width: w, Height: h}}
	}

	for i := range images {
		cell := cells[i%len(cells)]
		images[i].X, images[i].Y = cell.X, cell.Y
	}
}

func freeCells(v Viewport, w, h float64, fixed []Token, spread bool) []Token {
	cols := int(v.Width / w)
	rows := int(v.Height / h)
	if cols < 1 || rows < 1 {
		return nil
	}

	cellW, cellH := w, h
	if spread {
		cellW, cellH = v.Width/float64(cols), v.Height/float64(rows)
	}

	var cells []Token
	for r := range rows {
		for col := range cols {
			t := Token{
				X:      math.Floor(float64(col)*cellW + (cellW-w)/2),
				Y:      math.Floor(float64(r)*cellH + (cellH-h)/2),
				Width:  w,
				Height: h,
			}
			if !overlapsAny(t, fixed) {
				cells = append(cells, t)
			}
		}
	}
	return cells
}

func overlapsAny(t Token, others []Token) bool {
	for _, o := range others {
		if t.overlaps(o) {
			return true
		}
	}
	return false
}
