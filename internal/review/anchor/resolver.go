package anchor

import (
	"fmt"
	"strings"

	"github.com/itnnovator/annota-backend/internal/review/dom"
)

// OverlayLayerID is the id of the injected pin layer. Hit tests must never
// anchor a comment to the tool's own overlay.
const OverlayLayerID = "annota-layer"

// Descriptor is a resilient reference to an element on the reviewed page:
// a selector plus an offset expressed as a percentage of the element's
// bounding box, which survives responsive reflow where raw pixels do not.
type Descriptor struct {
	Selector   string  `json:"selector"`
	OffsetXPct float64 `json:"offsetXPct"`
	OffsetYPct float64 `json:"offsetYPct"`
	TagName    string  `json:"tagName"`
}

// Attributes considered stable enough to identify an element across
// deployments, in priority order.
var stableAttrs = []string{"data-testid", "data-test-id", "data-test", "aria-label", "name", "role"}

// Resolve hit-tests the topmost element at a viewport point and derives a
// descriptor for it. Returns nil when nothing usable is under the point:
// no element, the overlay layer itself, or an element for which no globally
// unique selector can be synthesized.
func Resolve(doc *dom.Document, viewportX, viewportY float64) *Descriptor {
	el := doc.ElementFromPoint(viewportX, viewportY, func(e *dom.Element) bool {
		return e.ID == OverlayLayerID
	})
	if el == nil || el.Box.Empty() {
		return nil
	}

	sel := selectorFor(doc, el)
	if sel == "" {
		return nil
	}

	docX := viewportX + doc.ScrollX
	docY := viewportY + doc.ScrollY

	return &Descriptor{
		Selector:   sel,
		OffsetXPct: clamp01((docX - el.Box.X) / el.Box.W),
		OffsetYPct: clamp01((docY - el.Box.Y) / el.Box.H),
		TagName:    strings.ToUpper(el.Tag),
	}
}

// DocumentPosition re-derives the document-space point a descriptor refers
// to against the current DOM. The boolean is false when the selector no
// longer resolves or the element has collapsed to a zero-size box; callers
// then fall back to the pin's stored absolute coordinates.
func DocumentPosition(doc *dom.Document, d *Descriptor) (dom.Point, bool) {
	if d == nil || d.Selector == "" {
		return dom.Point{}, false
	}
	el := doc.QuerySelector(d.Selector)
	if el == nil || el.Box.Empty() {
		return dom.Point{}, false
	}
	return dom.Point{
		X: el.Box.X + el.Box.W*d.OffsetXPct,
		Y: el.Box.Y + el.Box.H*d.OffsetYPct,
	}, true
}

// selectorFor synthesizes a selector for el, trying tiers in order and
// accepting the first one that resolves to exactly one element. Returns ""
// when every tier fails.
func selectorFor(doc *dom.Document, el *dom.Element) string {
	if el.Tag == "body" || el.Tag == "html" {
		return ""
	}

	// 1. id
	if el.ID != "" {
		if sel := "#" + el.ID; unique(doc, sel, el) {
			return sel
		}
	}

	// 2. stable semantic attributes
	tag := strings.ToLower(el.Tag)
	for _, attr := range stableAttrs {
		if v := el.Attr(attr); v != "" {
			if sel := fmt.Sprintf(`%s[%s="%s"]`, tag, attr, v); unique(doc, sel, el) {
				return sel
			}
		}
	}

	// 3. classes: tag plus every non-utility class, then tag plus each
	// single class until one is unique.
	classes := contentClasses(el.Classes)
	if len(classes) > 0 {
		if sel := tag + "." + strings.Join(classes, "."); unique(doc, sel, el) {
			return sel
		}
		for _, c := range classes {
			if sel := tag + "." + c; unique(doc, sel, el) {
				return sel
			}
		}
	}

	// 4. structural fallback: ancestor chain up to (but excluding) body,
	// with :nth-child only where same-tag siblings need disambiguation.
	if sel := structuralPath(el); sel != "" && unique(doc, sel, el) {
		return sel
	}
	return ""
}

func structuralPath(el *dom.Element) string {
	var parts []string
	for cur := el; cur != nil && cur.Tag != "body" && cur.Tag != "html"; cur = cur.Parent() {
		parts = append([]string{stepFor(cur)}, parts...)
	}
	return strings.Join(parts, " > ")
}

func stepFor(e *dom.Element) string {
	sel := strings.ToLower(e.Tag)
	parent := e.Parent()
	if parent == nil {
		return sel
	}
	sameTag := 0
	for _, sib := range parent.Children() {
		if strings.EqualFold(sib.Tag, e.Tag) {
			sameTag++
		}
	}
	if sameTag > 1 {
		sel += fmt.Sprintf(":nth-child(%d)", e.ChildIndex())
	}
	return sel
}

func unique(doc *dom.Document, sel string, el *dom.Element) bool {
	matches := doc.QuerySelectorAll(sel)
	return len(matches) == 1 && matches[0] == el
}

// contentClasses drops state and layout-utility classes that churn across
// builds and say nothing about the element's identity.
func contentClasses(classes []string) []string {
	var out []string
	for _, c := range classes {
		if c == "" || isUtilityClass(c) {
			continue
		}
		out = append(out, c)
	}
	return out
}

var utilityExact = map[string]bool{
	"flex": true, "grid": true, "block": true, "inline": true, "hidden": true,
	"relative": true, "absolute": true, "fixed": true, "sticky": true,
	"container": true,
}

var utilityPrefixes = []string{
	"hover:", "focus:", "active:", "w-", "h-", "p-", "m-", "px-", "py-",
	"pt-", "pb-", "pl-", "pr-", "mx-", "my-", "mt-", "mb-", "ml-", "mr-",
	"gap-", "text-", "bg-", "border-", "rounded-",
}

func isUtilityClass(c string) bool {
	if utilityExact[c] {
		return true
	}
	if strings.Contains(c, "hover") || strings.Contains(c, "active") {
		return true
	}
	for _, p := range utilityPrefixes {
		if strings.HasPrefix(c, p) {
			return true
		}
	}
	return false
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
