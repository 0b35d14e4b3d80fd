package overlay

import (
	"github.com/itnnovator/annota-backend/internal/review/anchor"
	"github.com/itnnovator/annota-backend/internal/review/dom"
)

// Confidence reports how a pin's position was derived on the last
// reposition pass.
type Confidence string

const (
	// Anchored: the stored selector resolved and the position was
	// recomputed from the live element.
	Anchored Confidence = "anchored"
	// Detached: the selector no longer resolves; the pin fell back to its
	// recorded absolute coordinates and renders with a reduced-opacity cue.
	Detached Confidence = "detached"
	// Absolute: the pin never had an anchor and always renders at its
	// recorded document coordinates.
	Absolute Confidence = "absolute"
)

// VisibleMargin is how far outside the viewport a pin may sit and still be
// rendered as a DOM node.
const VisibleMargin = 48.0

// Pin is one comment's positional payload.
type Pin struct {
	ID      string
	Number  int
	Status  string
	Message string
	Active  bool

	// Document-space coordinates recorded at creation time. Authoritative
	// only for pins without an anchor; otherwise a fallback.
	DocX float64
	DocY float64

	Anchor *anchor.Descriptor
}

// Placement is a pin with its resolved document-space position.
type Placement struct {
	Pin        Pin
	X          float64
	Y          float64
	Confidence Confidence
}

// Reposition recomputes every pin's document-space position against the
// current DOM. sessionStartWidth is the embedded page width recorded when
// the review session began; a nonzero delta shifts non-anchored pins by half
// of it, approximating a centered-layout reflow. Anchors are authoritative
// and never drift-compensated.
func Reposition(doc *dom.Document, pins []Pin, sessionStartWidth float64) []Placement {
	drift := 0.0
	if sessionStartWidth > 0 && doc.Width != sessionStartWidth {
		drift = (doc.Width - sessionStartWidth) / 2
	}

	out := make([]Placement, 0, len(pins))
	for _, pin := range pins {
		if pin.Anchor != nil {
			if pt, ok := anchor.DocumentPosition(doc, pin.Anchor); ok {
				out = append(out, Placement{Pin: pin, X: pt.X, Y: pt.Y, Confidence: Anchored})
				continue
			}
			out = append(out, Placement{Pin: pin, X: pin.DocX, Y: pin.DocY, Confidence: Detached})
			continue
		}
		out = append(out, Placement{Pin: pin, X: pin.DocX + drift, Y: pin.DocY, Confidence: Absolute})
	}
	return out
}

// LayerHeight is the height the injected overlay layer must be sized to:
// the full document scroll height, never the viewport, so document-space
// pins need no transformation on scroll.
func LayerHeight(doc *dom.Document) float64 {
	return doc.Height
}

// Viewport is the most recent scroll/dimension report from the embedded page.
type Viewport struct {
	ScrollX      float64 `json:"scrollX"`
	ScrollY      float64 `json:"scrollY"`
	InnerWidth   float64 `json:"innerWidth"`
	InnerHeight  float64 `json:"innerHeight"`
	ScrollWidth  float64 `json:"scrollWidth"`
	ScrollHeight float64 `json:"scrollHeight"`
}

// ToViewport converts a document-space point into viewport space.
func (v Viewport) ToViewport(docX, docY float64) (float64, float64) {
	return docX - v.ScrollX, docY - v.ScrollY
}

// Visible reports whether a document-space point falls inside the viewport
// extended by margin on every side.
func (v Viewport) Visible(docX, docY, margin float64) bool {
	x, y := v.ToViewport(docX, docY)
	return x >= -margin && x <= v.InnerWidth+margin &&
		y >= -margin && y <= v.InnerHeight+margin
}

// VisiblePlacements filters placements down to those worth rendering as DOM
// nodes. Out-of-viewport pins stay in the data model, they just do not get
// a node.
func VisiblePlacements(v Viewport, placements []Placement, margin float64) []Placement {
	out := make([]Placement, 0, len(placements))
	for _, p := range placements {
		if v.Visible(p.X, p.Y, margin) {
			out = append(out, p)
		}
	}
	return out
}

// FrameThrottle coalesces reposition triggers to at most one callback per
// animation frame. It is a trailing-edge throttle, not a debounce: the first
// request in a frame schedules work, later requests in the same frame are
// dropped, and the pending flag clears when the frame fires so continuous
// scrolling keeps producing timely updates.
type FrameThrottle struct {
	pending bool
	fn      func()
}

// Request schedules fn for the next frame. Returns false if a callback is
// already pending for this frame.
func (t *FrameThrottle) Request(fn func()) bool {
	if t.pending {
		return false
	}
	t.pending = true
	t.fn = fn
	return true
}

// Frame fires the pending callback, if any. The host environment calls this
// once per animation frame.
func (t *FrameThrottle) Frame() {
	if !t.pending {
		return
	}
	fn := t.fn
	t.pending = false
	t.fn = nil
	if fn != nil {
		fn()
	}
}

// Pending reports whether a callback is scheduled for the next frame.
func (t *FrameThrottle) Pending() bool { return t.pending }
