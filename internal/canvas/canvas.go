// Package canvas implements the playground: a freeform board of image and
// text tokens that can be dragged, resized and restacked.
package canvas

import (
	"fmt"
	"math/rand/v2"
)

// Breakpoint is the viewport width below which the narrow layout is used.
const Breakpoint = 768

// Image token sizes. Resizing never goes below 23/40 of the default,
// 51.75x69 on narrow screens and 77.625x103.5 on wide ones.
const (
	WideImageWidth    = 135.0
	WideImageHeight   = 180.0
	NarrowImageWidth  = 90.0
	NarrowImageHeight = 120.0

	minScaleNum = 23
	minScaleDen = 40
)

// DemoImages is the number of image tokens on the demo board.
const DemoImages = 10

// Kind tells image tokens from text tokens.
type Kind string

const (
	KindImage = Kind("image")
	KindText  = Kind("text")
)

// Mode is the interaction state of a canvas.
type Mode string

const (
	ModeIdle     = Mode("idle")
	ModeDragging = Mode("dragging")
	ModeResizing = Mode("resizing")
)

// Token is one movable element on the board. Payload is an image URL or the
// text content.
type Token struct {
	ID      int     `json:"id"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	ZIndex  int     `json:"zIndex"`
	Kind    Kind    `json:"kind"`
	Payload string  `json:"payload"`
}

func (t Token) overlaps(o Token) bool {
	return t.X < o.X+o.Width && o.X < t.X+t.Width &&
		t.Y < o.Y+o.Height && o.Y < t.Y+t.Height
}

// Viewport is the visible board area in CSS pixels.
type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Narrow reports whether the viewport uses the mobile layout.
func (v Viewport) Narrow() bool {
	return v.Width < Breakpoint
}

// ImageSize returns the default image token size for the viewport.
func (v Viewport) ImageSize() (w, h float64) {
	if v.Narrow() {
		return NarrowImageWidth, NarrowImageHeight
	}
	return WideImageWidth, WideImageHeight
}

// State is the externally visible snapshot of a canvas.
type State struct {
	Viewport Viewport `json:"viewport"`
	Tokens   []Token  `json:"tokens"`
	Selected *int     `json:"selected"`
	Mode     Mode     `json:"mode"`
}

// Canvas holds the tokens and the pointer interaction state. It assumes a
// single active pointer and is not safe for concurrent use.
type Canvas struct {
	viewport Viewport
	tokens   []Token
	selected *int
	mode     Mode
	minW     float64
	minH     float64

	// Touch drags keep the grab offset so the token does not jump.
	offsetX, offsetY float64

	// Resizes grow from the size at pointer-down by the total pointer travel.
	baseW, baseH     float64
	startX, startY   float64
	travelX, travelY float64
}

// New builds the demo board: four text tokens at fixed positions and
// DemoImages image tokens placed randomly without overlap.
func New(v Viewport, rng *rand.Rand) *Canvas {
	payloads := make([]string, DemoImages)
	for i := range payloads {
		payloads[i] = fmt.Sprintf("/static/playground/item%d.png", i+1)
	}
	c := newCanvas(v)
	c.tokens = textTokens(v)
	c.placeImages(payloads, rng)
	return c
}

// NewWithImages builds a board of image tokens only, one per payload.
func NewWithImages(v Viewport, rng *rand.Rand, payloads []string) *Canvas {
	c := newCanvas(v)
	c.placeImages(payloads, rng)
	return c
}

func newCanvas(v Viewport) *Canvas {
	w, h := v.ImageSize()
	return &Canvas{
		viewport: v,
		mode:     ModeIdle,
		minW:     w * minScaleNum / minScaleDen,
		minH:     h * minScaleNum / minScaleDen,
	}
}

// textTokens lays out the brand and navigation labels: top corners on wide
// screens, bottom corners on narrow ones.
func textTokens(v Viewport) []Token {
	type label struct {
		id               int
		text             string
		x, y             float64
		narrowX, narrowY float64
	}
	labels := []label{
		{11, "worn", 30, 20, 30, v.Height - 80},
		{12, "fashion for you", 30, 40, 30, v.Height - 60},
		{13, "login", v.Width - 70, 20, v.Width - 80, v.Height - 80},
		{14, "join", v.Width - 62, 40, v.Width - 72, v.Height - 60},
	}

	tokens := make([]Token, 0, len(labels))
	for _, l := range labels {
		x, y := l.x, l.y
		if v.Narrow() {
			x, y = l.narrowX, l.narrowY
		}
		tokens = append(tokens, Token{
			ID:      l.id,
			X:       x,
			Y:       y,
			Width:   textWidth(l.text),
			Height:  textHeight,
			ZIndex:  l.id,
			Kind:    KindText,
			Payload: l.text,
		})
	}
	return tokens
}

// Approximate label box at the board's font size.
const (
	textHeight    = 20.0
	textCharWidth = 8.0
)

func textWidth(s string) float64 {
	return float64(len(s)) * textCharWidth
}

// State returns a copy of the current state.
func (c *Canvas) State() State {
	s := State{
		Viewport: c.viewport,
		Tokens:   append([]Token(nil), c.tokens...),
		Mode:     c.mode,
	}
	if c.selected != nil {
		id := *c.selected
		s.Selected = &id
	}
	return s
}

// Token returns the token with the given id.
func (c *Canvas) Token(id int) (Token, bool) {
	if i := c.index(id); i >= 0 {
		return c.tokens[i], true
	}
	return Token{}, false
}

// Mode returns the interaction mode.
func (c *Canvas) Mode() Mode {
	return c.mode
}

// Selected returns the selected token id, if any.
func (c *Canvas) Selected() (int, bool) {
	if c.selected == nil {
		return 0, false
	}
	return *c.selected, true
}

// MinSize is the smallest size an image token can be resized to.
func (c *Canvas) MinSize() (w, h float64) {
	return c.minW, c.minH
}

func (c *Canvas) index(id int) int {
	for i, t := range c.tokens {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (c *Canvas) selectToken(id int) {
	c.selected = &id
}
