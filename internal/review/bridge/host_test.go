package bridge

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itnnovator/annota-backend/internal/review/anchor"
	"github.com/itnnovator/annota-backend/internal/review/overlay"
)

var t0 = time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

func newTestSession() *Session {
	return NewSession("sess-1", "tok-1", 1280, t0)
}

func TestSessionStartsManual(t *testing.T) {
	s := newTestSession()
	assert.True(t, s.ManualMode)
	assert.False(t, s.EmbedDetected)
	assert.Equal(t, "/", s.CurrentPath)
}

func TestHandshakeFlipsToAutoDetection(t *testing.T) {
	s := newTestSession()

	up, err := s.Apply(&Handshake{Href: "https://x.test/pricing", Path: "/pricing"}, t0.Add(time.Second))
	require.NoError(t, err)
	assert.True(t, up.PathChanged)
	assert.True(t, s.EmbedDetected)
	assert.False(t, s.ManualMode)
	assert.Equal(t, "/pricing", s.CurrentPath)

	// Detection is one-way: manual entry is now refused.
	assert.ErrorIs(t, s.SetManualPath("/other"), ErrAutoDetected)
}

func TestPathUpdate(t *testing.T) {
	s := newTestSession()
	_, err := s.Apply(&Handshake{Path: "/"}, t0)
	require.NoError(t, err)

	up, err := s.Apply(&PathUpdate{Path: "/about"}, t0.Add(time.Second))
	require.NoError(t, err)
	assert.True(t, up.PathChanged)
	assert.Equal(t, "/about", s.CurrentPath)

	// Same path again: no change signal.
	up, err = s.Apply(&PathUpdate{Path: "/about"}, t0.Add(2*time.Second))
	require.NoError(t, err)
	assert.False(t, up.PathChanged)
}

func TestSetManualPath(t *testing.T) {
	s := newTestSession()

	require.NoError(t, s.SetManualPath("/contact"))
	assert.Equal(t, "/contact", s.CurrentPath)

	assert.ErrorIs(t, s.SetManualPath("contact"), ErrInvalidPath)
}

func TestScrollUpdateRecordsViewport(t *testing.T) {
	s := newTestSession()

	_, err := s.Apply(&ScrollUpdate{ScrollY: 300, InnerWidth: 1280, InnerHeight: 720, ScrollWidth: 1280, ScrollHeight: 4000}, t0)
	require.NoError(t, err)
	assert.True(t, s.HasViewport)
	assert.InDelta(t, 300.0, s.Viewport.ScrollY, 0.001)

	// A scroll-update alone does not count as embed detection.
	assert.False(t, s.EmbedDetected)
}

func TestScrollUpdateBackfillsInitialWidth(t *testing.T) {
	s := NewSession("sess-2", "tok-1", 0, t0)

	// The document is wider than the viewport; the backfill must record the
	// document width, the same measure drift is computed against.
	_, err := s.Apply(&ScrollUpdate{InnerWidth: 1000, ScrollWidth: 1400, InnerHeight: 900, ScrollHeight: 3000}, t0)
	require.NoError(t, err)
	assert.InDelta(t, 1400.0, s.InitialWidth, 0.001)
}

func TestRenderFrameNoDriftOnFirstReport(t *testing.T) {
	s := NewSession("sess-3", "tok-1", 0, t0)

	_, err := s.Apply(&ScrollUpdate{InnerWidth: 1000, ScrollWidth: 1400, InnerHeight: 720, ScrollHeight: 4000}, t0)
	require.NoError(t, err)

	frame := s.RenderFrame([]overlay.Pin{{ID: "plain", DocX: 500, DocY: 50}})
	require.Len(t, frame.Pins, 1)
	assert.InDelta(t, 500.0, frame.Pins[0].X, 0.001, "no resize happened, pins stay put")
}

func TestApplyRejectsHostOriginatedTypes(t *testing.T) {
	s := newTestSession()
	_, err := s.Apply(&RenderPins{}, t0)
	assert.ErrorIs(t, err, ErrWrongDirection)
	_, err = s.Apply(&RequestAnchor{}, t0)
	assert.ErrorIs(t, err, ErrWrongDirection)
}

func TestApplyRoutesFocusAndAnchor(t *testing.T) {
	s := newTestSession()

	up, err := s.Apply(&PinClicked{CommentID: "c-9"}, t0)
	require.NoError(t, err)
	assert.Equal(t, "c-9", up.FocusCommentID)

	found := &AnchorFound{Anchor: &anchor.Descriptor{Selector: "#x"}, X: 1, Y: 2}
	up, err = s.Apply(found, t0)
	require.NoError(t, err)
	assert.Same(t, found, up.Anchor)
}

func TestEmbedTimeout(t *testing.T) {
	t.Run("times out after grace period", func(t *testing.T) {
		s := newTestSession()
		s.CheckEmbedTimeout(t0.Add(DetectGracePeriod + time.Second))
		assert.True(t, s.PreviewUnavailable)
		assert.True(t, s.ManualMode)
	})

	t.Run("within grace period", func(t *testing.T) {
		s := newTestSession()
		s.CheckEmbedTimeout(t0.Add(time.Second))
		assert.False(t, s.PreviewUnavailable)
	})

	t.Run("handshake wins over late check", func(t *testing.T) {
		s := newTestSession()
		_, err := s.Apply(&Handshake{Path: "/"}, t0.Add(time.Second))
		require.NoError(t, err)
		s.CheckEmbedTimeout(t0.Add(time.Minute))
		assert.False(t, s.PreviewUnavailable)
	})

	t.Run("handshake clears earlier timeout", func(t *testing.T) {
		s := newTestSession()
		s.CheckEmbedTimeout(t0.Add(time.Minute))
		require.True(t, s.PreviewUnavailable)

		_, err := s.Apply(&Handshake{Path: "/"}, t0.Add(2*time.Minute))
		require.NoError(t, err)
		assert.False(t, s.PreviewUnavailable)
		assert.False(t, s.ManualMode)
	})
}

func TestViewportPlacements(t *testing.T) {
	s := newTestSession()

	placements := []overlay.Placement{
		{Pin: overlay.Pin{ID: "visible"}, X: 500, Y: 800, Confidence: overlay.Anchored},
		{Pin: overlay.Pin{ID: "below-fold"}, X: 500, Y: 3000, Confidence: overlay.Anchored},
	}

	t.Run("nothing without a viewport report", func(t *testing.T) {
		assert.Nil(t, s.ViewportPlacements(placements))
	})

	t.Run("culls and converts", func(t *testing.T) {
		_, err := s.Apply(&ScrollUpdate{ScrollY: 500, InnerWidth: 1280, InnerHeight: 720, ScrollWidth: 1280, ScrollHeight: 4000}, t0)
		require.NoError(t, err)

		got := s.ViewportPlacements(placements)
		require.Len(t, got, 1)
		assert.Equal(t, "visible", got[0].Pin.ID)
		assert.InDelta(t, 300.0, got[0].Y, 0.001) // 800 - scrollY 500
	})
}

func TestRenderFrameDrift(t *testing.T) {
	s := newTestSession() // initial width 1280

	_, err := s.Apply(&ScrollUpdate{InnerWidth: 1480, InnerHeight: 720, ScrollWidth: 1480, ScrollHeight: 4000}, t0)
	require.NoError(t, err)

	pins := []overlay.Pin{
		{ID: "plain", DocX: 100, DocY: 50},
		{ID: "anchored", DocX: 100, DocY: 50, Anchor: &anchor.Descriptor{Selector: "#x"}},
	}
	frame := s.RenderFrame(pins)
	require.Len(t, frame.Pins, 2)
	assert.InDelta(t, 200.0, frame.Pins[0].X, 0.001) // 100 + (1480-1280)/2
	assert.InDelta(t, 100.0, frame.Pins[1].X, 0.001) // anchored pins never drift
}
