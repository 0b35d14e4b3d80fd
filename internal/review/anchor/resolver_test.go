package anchor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itnnovator/annota-backend/internal/review/dom"
)

// landingPage builds a small marketing-style page: hero with a CTA button,
// a feature grid, and the injected overlay layer.
func landingPage() (*dom.Document, *dom.Element) {
	doc := dom.NewDocument(1200, 2400)
	body := doc.Body()

	hero := dom.NewElement("section")
	hero.Classes = []string{"hero", "flex", "bg-gray-100"}
	hero.Box = dom.Rect{X: 0, Y: 0, W: 1200, H: 600}
	body.AppendChild(hero)

	cta := dom.NewElement("button")
	cta.ID = "hero-cta"
	cta.Classes = []string{"btn-primary", "hover:shadow"}
	cta.Box = dom.Rect{X: 500, Y: 400, W: 200, H: 50}
	hero.AppendChild(cta)

	grid := dom.NewElement("div")
	grid.Classes = []string{"features", "grid", "gap-4"}
	grid.Box = dom.Rect{X: 0, Y: 600, W: 1200, H: 900}
	body.AppendChild(grid)

	for i := 0; i < 3; i++ {
		card := dom.NewElement("article")
		card.Classes = []string{"feature-card"}
		card.Box = dom.Rect{X: float64(50 + i*400), Y: 700, W: 300, H: 400}
		grid.AppendChild(card)
	}

	layer := dom.NewElement("div")
	layer.ID = OverlayLayerID
	layer.Box = dom.Rect{X: 0, Y: 0, W: 1200, H: 2400}
	body.AppendChild(layer)

	return doc, cta
}

func TestResolveSelectorTiers(t *testing.T) {
	doc, _ := landingPage()

	t.Run("id wins", func(t *testing.T) {
		d := Resolve(doc, 550, 420)
		require.NotNil(t, d)
		assert.Equal(t, "#hero-cta", d.Selector)
		assert.Equal(t, "BUTTON", d.TagName)
	})

	t.Run("stable attribute beats classes", func(t *testing.T) {
		el := doc.QuerySelector("#hero-cta")
		el.ID = ""
		el.SetAttr("data-testid", "hero-cta")
		defer func() {
			el.ID = "hero-cta"
			delete(el.Attrs, "data-testid")
		}()

		d := Resolve(doc, 550, 420)
		require.NotNil(t, d)
		assert.Equal(t, `button[data-testid="hero-cta"]`, d.Selector)
	})

	t.Run("content classes, utilities filtered", func(t *testing.T) {
		el := doc.QuerySelector("#hero-cta")
		el.ID = ""
		defer func() { el.ID = "hero-cta" }()

		d := Resolve(doc, 550, 420)
		require.NotNil(t, d)
		assert.Equal(t, "button.btn-primary", d.Selector)
	})

	t.Run("structural fallback disambiguates siblings", func(t *testing.T) {
		// Middle feature card: no id, no stable attrs, class shared by all
		// three cards, so only the nth-child chain is unique.
		d := Resolve(doc, 500, 800)
		require.NotNil(t, d)
		assert.Equal(t, "div:nth-child(2) > article:nth-child(2)", d.Selector)
		assert.Equal(t, "ARTICLE", d.TagName)
	})
}

func TestResolveSkipsOverlayLayer(t *testing.T) {
	doc, _ := landingPage()

	// The overlay layer covers the whole document and paints on top; the hit
	// test must see through it to the page content.
	d := Resolve(doc, 550, 420)
	require.NotNil(t, d)
	assert.Equal(t, "#hero-cta", d.Selector)
}

func TestResolveOffsets(t *testing.T) {
	doc, cta := landingPage()

	// Click dead center of the 200x50 button at (500,400).
	d := Resolve(doc, 600, 425)
	require.NotNil(t, d)
	assert.InDelta(t, 0.5, d.OffsetXPct, 0.001)
	assert.InDelta(t, 0.5, d.OffsetYPct, 0.001)

	pt, ok := DocumentPosition(doc, d)
	require.True(t, ok)
	assert.InDelta(t, cta.Box.X+cta.Box.W/2, pt.X, 0.001)
	assert.InDelta(t, cta.Box.Y+cta.Box.H/2, pt.Y, 0.001)
}

func TestResolveUnderScroll(t *testing.T) {
	doc, _ := landingPage()
	doc.ScrollY = 300

	// Viewport (550, 120) is document (550, 420): still the CTA.
	d := Resolve(doc, 550, 120)
	require.NotNil(t, d)
	assert.Equal(t, "#hero-cta", d.Selector)
	assert.InDelta(t, 0.4, d.OffsetYPct, 0.001)
}

func TestDocumentPositionSurvivesReflow(t *testing.T) {
	doc, cta := landingPage()

	d := Resolve(doc, 600, 425)
	require.NotNil(t, d)

	// Responsive reflow: the button moves and grows. The percentage offset
	// keeps pointing at the same relative spot.
	cta.Box = dom.Rect{X: 100, Y: 900, W: 400, H: 60}

	pt, ok := DocumentPosition(doc, d)
	require.True(t, ok)
	assert.InDelta(t, 300.0, pt.X, 0.001)
	assert.InDelta(t, 930.0, pt.Y, 0.001)
}

func TestDocumentPositionDetaches(t *testing.T) {
	doc, cta := landingPage()

	d := Resolve(doc, 600, 425)
	require.NotNil(t, d)

	t.Run("element removed", func(t *testing.T) {
		parent := cta.Parent()
		parent.RemoveChild(cta)
		defer parent.AppendChild(cta)

		_, ok := DocumentPosition(doc, d)
		assert.False(t, ok)
	})

	t.Run("element collapsed", func(t *testing.T) {
		saved := cta.Box
		cta.Box = dom.Rect{}
		defer func() { cta.Box = saved }()

		_, ok := DocumentPosition(doc, d)
		assert.False(t, ok)
	})

	t.Run("nil descriptor", func(t *testing.T) {
		_, ok := DocumentPosition(doc, nil)
		assert.False(t, ok)
	})
}

func TestResolveNothingUsable(t *testing.T) {
	doc, _ := landingPage()

	t.Run("no element under point", func(t *testing.T) {
		assert.Nil(t, Resolve(doc, 5000, 5000))
	})

	t.Run("body is not anchorable", func(t *testing.T) {
		// Between hero and grid there is only body.
		assert.Nil(t, Resolve(doc, 600, 1800))
	})
}
