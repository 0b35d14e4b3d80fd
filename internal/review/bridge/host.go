package bridge

import (
	"errors"
	"strings"
	"time"

	"github.com/itnnovator/annota-backend/internal/review/overlay"
)

// DetectGracePeriod is how long the host waits for an embed handshake (or
// iframe load) before declaring the preview unavailable and falling back to
// manual path entry.
const DetectGracePeriod = 4 * time.Second

var (
	ErrInvalidPath    = errors.New("bridge: page path must start with /")
	ErrAutoDetected   = errors.New("bridge: automatic page detection active, manual path entry disabled")
	ErrWrongDirection = errors.New("bridge: host received a host-originated message")
)

// Session is the host side of the cross-frame protocol for one review
// window: it tracks whether the embed script announced itself, the current
// logical page path, and the latest viewport report. It never assumes the
// embed script is present.
type Session struct {
	ID            string `json:"id"`
	FeedbackToken string `json:"feedbackToken"`

	// EmbedDetected flips on the first handshake or path-update and never
	// flips back; manual path entry is disabled for the rest of the session.
	EmbedDetected bool `json:"embedDetected"`
	ManualMode    bool `json:"manualMode"`

	// PreviewUnavailable is set when neither a handshake nor a load arrived
	// within the detection grace period.
	PreviewUnavailable bool `json:"previewUnavailable"`

	CurrentPath string `json:"currentPath"`

	// InitialWidth is the embedded page's document width (scrollWidth) at
	// session start, used for width-drift compensation of legacy
	// non-anchored pins. It is compared against Viewport.ScrollWidth, so
	// clients must supply the same measure.
	InitialWidth float64          `json:"initialWidth"`
	Viewport     overlay.Viewport `json:"viewport"`
	HasViewport  bool             `json:"hasViewport"`

	StartedAt time.Time `json:"startedAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func NewSession(id, feedbackToken string, initialWidth float64, now time.Time) *Session {
	return &Session{
		ID:            id,
		FeedbackToken: feedbackToken,
		ManualMode:    true,
		CurrentPath:   "/",
		InitialWidth:  initialWidth,
		StartedAt:     now,
		UpdatedAt:     now,
	}
}

// Update is what a processed embed message asks the hosting UI to do.
type Update struct {
	PathChanged    bool
	FocusCommentID string
	Anchor         *AnchorFound
}

// Apply feeds one embedded→host message through the session state machine.
func (s *Session) Apply(m Message, now time.Time) (Update, error) {
	var up Update
	s.UpdatedAt = now

	switch msg := m.(type) {
	case *Handshake:
		up.PathChanged = s.detectPath(msg.Path)
	case *PathUpdate:
		up.PathChanged = s.detectPath(msg.Path)
	case *ScrollUpdate:
		s.Viewport = overlay.Viewport{
			ScrollX:      msg.ScrollX,
			ScrollY:      msg.ScrollY,
			InnerWidth:   msg.InnerWidth,
			InnerHeight:  msg.InnerHeight,
			ScrollWidth:  msg.ScrollWidth,
			ScrollHeight: msg.ScrollHeight,
		}
		s.HasViewport = true
		if s.InitialWidth == 0 {
			s.InitialWidth = msg.ScrollWidth
		}
	case *AnchorFound:
		up.Anchor = msg
	case *PinClicked:
		up.FocusCommentID = msg.CommentID
	case *RenderPins, *RequestAnchor:
		return up, ErrWrongDirection
	default:
		return up, ErrUnknownType
	}
	return up, nil
}

// detectPath handles the one-way transition into automatic page detection.
func (s *Session) detectPath(path string) bool {
	if !s.EmbedDetected {
		s.EmbedDetected = true
		s.ManualMode = false
		s.PreviewUnavailable = false
	}
	if path == "" {
		path = "/"
	}
	if path != s.CurrentPath {
		s.CurrentPath = path
		return true
	}
	return false
}

// SetManualPath changes the logical path by hand. Only valid while the
// session is still in manual mode; once the embed script announced itself
// the transition is monotonic and manual entry stays disabled.
func (s *Session) SetManualPath(path string) error {
	if s.EmbedDetected {
		return ErrAutoDetected
	}
	if !strings.HasPrefix(path, "/") {
		return ErrInvalidPath
	}
	s.CurrentPath = path
	return nil
}

// CheckEmbedTimeout marks the preview unavailable when the grace period
// elapsed without a handshake. Harmless to call repeatedly.
func (s *Session) CheckEmbedTimeout(now time.Time) {
	if s.EmbedDetected || s.PreviewUnavailable {
		return
	}
	if now.Sub(s.StartedAt) > DetectGracePeriod {
		s.PreviewUnavailable = true
		s.ManualMode = true
	}
}

// ViewportPlacements converts repositioned document-space placements into
// the viewport positions the hosting UI actually renders, dropping pins
// outside the visible window (plus margin). Requires at least one
// scroll-update; without one the host renders nothing rather than guessing.
func (s *Session) ViewportPlacements(placements []overlay.Placement) []overlay.Placement {
	if !s.HasViewport {
		return nil
	}
	visible := overlay.VisiblePlacements(s.Viewport, placements, overlay.VisibleMargin)
	out := make([]overlay.Placement, 0, len(visible))
	for _, p := range visible {
		x, y := s.Viewport.ToViewport(p.X, p.Y)
		p.X, p.Y = x, y
		out = append(out, p)
	}
	return out
}

// RenderFrame builds the full-replacement render-pins message for the
// embedded layer. Coordinates stay in document space with width drift
// applied to anchor-less pins; the embed side snaps anchored pins to their
// live elements itself.
func (s *Session) RenderFrame(pins []overlay.Pin) *RenderPins {
	drift := 0.0
	if s.HasViewport && s.InitialWidth > 0 && s.Viewport.ScrollWidth != s.InitialWidth {
		drift = (s.Viewport.ScrollWidth - s.InitialWidth) / 2
	}

	frame := &RenderPins{Pins: make([]RenderPin, 0, len(pins))}
	for _, p := range pins {
		x := p.DocX
		if p.Anchor == nil {
			x += drift
		}
		frame.Pins = append(frame.Pins, RenderPin{
			ID:      p.ID,
			X:       x,
			Y:       p.DocY,
			Number:  p.Number,
			Status:  p.Status,
			Message: p.Message,
			Active:  p.Active,
			Anchor:  p.Anchor,
		})
	}
	return frame
}
