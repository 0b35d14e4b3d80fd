package bridge

import (
	"github.com/itnnovator/annota-backend/internal/review/anchor"
	"github.com/itnnovator/annota-backend/internal/review/dom"
	"github.com/itnnovator/annota-backend/internal/review/overlay"
)

// Agent is the embedded side of the protocol: the logic the injected script
// runs inside the reviewed page. It owns no comment state beyond the last
// render-pins frame and talks to the host exclusively through messages
// (fire-and-forget; an anchor request is answered by an independent later
// anchor-found frame).
type Agent struct {
	doc          *dom.Document
	href         string
	path         string
	parentOrigin string

	// Per-document init guard: a second injection of the script must be an
	// idempotent no-op.
	initialized bool

	lastPath   string
	pins       []RenderPin
	placements []overlay.Placement
	scroll     overlay.FrameThrottle
}

// NewAgent binds an agent to a laid-out document. parentOrigin is taken
// from the data attribute on the injected script element; empty means the
// development wildcard.
func NewAgent(doc *dom.Document, href, path, parentOrigin string) *Agent {
	if parentOrigin == "" {
		parentOrigin = "*"
	}
	return &Agent{
		doc:          doc,
		href:         href,
		path:         path,
		lastPath:     path,
		parentOrigin: parentOrigin,
	}
}

func (a *Agent) ParentOrigin() string { return a.parentOrigin }
func (a *Agent) Initialized() bool    { return a.initialized }

// Init announces the script to the host. Re-entry returns nothing: the
// double-injection guard makes initialization idempotent.
func (a *Agent) Init() []Message {
	if a.initialized {
		return nil
	}
	a.initialized = true
	return []Message{
		&Handshake{Href: a.href, Path: a.path},
		a.scrollUpdate(),
	}
}

// Navigate records an in-page navigation. SPA routers do not reliably fire
// standard events, so the path is polled: the change is only reported on
// the next Tick.
func (a *Agent) Navigate(path string) {
	a.path = path
}

// Tick is the fixed-interval path poll. Emits a path-update when the
// logical path changed since the last tick.
func (a *Agent) Tick() []Message {
	if a.path == a.lastPath {
		return nil
	}
	a.lastPath = a.path
	return []Message{&PathUpdate{Path: a.path}}
}

// OnScroll coalesces scroll/resize bursts: the first call in a frame
// schedules a report, the rest are dropped until Frame fires.
func (a *Agent) OnScroll() {
	a.scroll.Request(func() {})
}

// Frame delivers at most one scroll-update per animation frame and re-snaps
// anchored pins against the live DOM.
func (a *Agent) Frame() []Message {
	if !a.scroll.Pending() {
		return nil
	}
	a.scroll.Frame()
	a.reposition()
	return []Message{a.scrollUpdate()}
}

// Handle processes a host→embedded message.
func (a *Agent) Handle(m Message) []Message {
	switch msg := m.(type) {
	case *RenderPins:
		// Full replacement, never incremental.
		a.pins = msg.Pins
		a.reposition()
		return nil
	case *RequestAnchor:
		desc := anchor.Resolve(a.doc, msg.X, msg.Y)
		return []Message{&AnchorFound{Anchor: desc, X: msg.X, Y: msg.Y}}
	default:
		// Own or foreign chatter reflected back; ignore.
		return nil
	}
}

// ClickPin reports a pin selection so the host can focus the matching
// comment in its sidebar.
func (a *Agent) ClickPin(commentID string) Message {
	return &PinClicked{CommentID: commentID}
}

// Placements exposes the last computed pin positions (document space).
func (a *Agent) Placements() []overlay.Placement {
	return a.placements
}

// LayerHeight is the height the overlay layer is currently sized to.
func (a *Agent) LayerHeight() float64 {
	return overlay.LayerHeight(a.doc)
}

func (a *Agent) reposition() {
	pins := make([]overlay.Pin, 0, len(a.pins))
	for _, p := range a.pins {
		pins = append(pins, overlay.Pin{
			ID:      p.ID,
			Number:  p.Number,
			Status:  p.Status,
			Message: p.Message,
			Active:  p.Active,
			DocX:    p.X,
			DocY:    p.Y,
			Anchor:  p.Anchor,
		})
	}
	// Width drift is the host's job for the frames it sends; inside the
	// page the anchors are authoritative.
	a.placements = overlay.Reposition(a.doc, pins, 0)
}

func (a *Agent) scrollUpdate() *ScrollUpdate {
	return &ScrollUpdate{
		ScrollX:      a.doc.ScrollX,
		ScrollY:      a.doc.ScrollY,
		InnerWidth:   a.doc.ViewportWidth,
		InnerHeight:  a.doc.ViewportHeight,
		ScrollWidth:  a.doc.Width,
		ScrollHeight: a.doc.Height,
	}
}
