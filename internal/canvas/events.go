package canvas

import (
	"fmt"
	"math"
)

// PointerKind tells mouse input from touch input.
type PointerKind string

const (
	PointerMouse = PointerKind("mouse")
	PointerTouch = PointerKind("touch")
)

// Pointer is one pointer sample. X and Y are the client position; DX and DY
// the movement since the previous sample, reported by mice only.
type Pointer struct {
	Kind PointerKind `json:"kind"`
	X    float64     `json:"x"`
	Y    float64     `json:"y"`
	DX   float64     `json:"dx"`
	DY   float64     `json:"dy"`
}

// PointerDown starts dragging a token and selects it, deselecting any other.
func (c *Canvas) PointerDown(id int, p Pointer) bool {
	i := c.index(id)
	if i < 0 {
		return false
	}
	c.selectToken(id)
	c.mode = ModeDragging
	c.offsetX = p.X - c.tokens[i].X
	c.offsetY = p.Y - c.tokens[i].Y
	return true
}

// ResizeDown starts resizing an image token from its current size.
func (c *Canvas) ResizeDown(id int, p Pointer) bool {
	i := c.index(id)
	if i < 0 || c.tokens[i].Kind != KindImage {
		return false
	}
	c.selectToken(id)
	c.mode = ModeResizing
	c.baseW, c.baseH = c.tokens[i].Width, c.tokens[i].Height
	c.startX, c.startY = p.X, p.Y
	c.travelX, c.travelY = 0, 0
	return true
}

// PointerMove moves or resizes the selected token. Nothing else changes.
func (c *Canvas) PointerMove(p Pointer) {
	if c.mode == ModeIdle || c.selected == nil {
		return
	}
	i := c.index(*c.selected)
	if i < 0 {
		return
	}
	t := &c.tokens[i]

	switch c.mode {
	case ModeDragging:
		if p.Kind == PointerTouch {
			t.X, t.Y = p.X-c.offsetX, p.Y-c.offsetY
		} else {
			t.X, t.Y = t.X+p.DX, t.Y+p.DY
		}
	case ModeResizing:
		if p.Kind == PointerTouch {
			c.travelX, c.travelY = p.X-c.startX, p.Y-c.startY
		} else {
			c.travelX += p.DX
			c.travelY += p.DY
		}
		t.Width = math.Max(c.minW, c.baseW+c.travelX)
		t.Height = math.Max(c.minH, c.baseH+c.travelY)
	}
}

// PointerUp ends a drag or resize. The selection is kept.
func (c *Canvas) PointerUp() {
	c.mode = ModeIdle
}

// PointerLeave behaves like PointerUp.
func (c *Canvas) PointerLeave() {
	c.mode = ModeIdle
}

// ClickEmpty clears the selection.
func (c *Canvas) ClickEmpty() {
	c.selected = nil
	c.mode = ModeIdle
}

// BringToFront raises a token one step, swapping with the token directly
// above it if there is one.
func (c *Canvas) BringToFront(id int) bool {
	return c.shift(id, 1)
}

// SendToBack lowers a token one step, swapping with the token directly below
// it if there is one.
func (c *Canvas) SendToBack(id int) bool {
	return c.shift(id, -1)
}

func (c *Canvas) shift(id, step int) bool {
	i := c.index(id)
	if i < 0 {
		return false
	}
	target := c.tokens[i].ZIndex + step
	for j := range c.tokens {
		if j != i && c.tokens[j].ZIndex == target {
			c.tokens[j].ZIndex -= step
		}
	}
	c.tokens[i].ZIndex = target
	return true
}

// EventType names an input event.
type EventType string

const (
	EventPointerDown  = EventType("pointerDown")
	EventResizeDown   = EventType("resizeDown")
	EventPointerMove  = EventType("pointerMove")
	EventPointerUp    = EventType("pointerUp")
	EventPointerLeave = EventType("pointerLeave")
	EventClickEmpty   = EventType("clickEmpty")
)

// Event is one input event as sent by the browser.
type Event struct {
	Type    EventType `json:"type"`
	Token   int       `json:"token,omitempty"`
	Pointer Pointer   `json:"pointer"`
}

// Dispatch applies an event. Events naming unknown tokens are ignored; only
// an unknown event type is an error.
func (c *Canvas) Dispatch(e Event) error {
	switch e.Type {
	case EventPointerDown:
		c.PointerDown(e.Token, e.Pointer)
	case EventResizeDown:
		c.ResizeDown(e.Token, e.Pointer)
	case EventPointerMove:
		c.PointerMove(e.Pointer)
	case EventPointerUp:
		c.PointerUp()
	case EventPointerLeave:
		c.PointerLeave()
	case EventClickEmpty:
		c.ClickEmpty()
	default:
		return fmt.Errorf("unknown event type %q", e.Type)
	}
	return nil
}
