package dom

// Package dom models the reviewed page as the embedded script sees it: an
// element tree with document-space layout boxes, plus the small selector
// query subset the anchoring protocol emits. Boxes are measured in document
// space (scroll-independent); viewport conversions live in the overlay
// package.

// Rect is an element bounding box in document space.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// Point is a position in document space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Element struct {
	Tag     string
	ID      string
	Classes []string
	Attrs   map[string]string
	Box     Rect

	parent   *Element
	children []*Element
}

func NewElement(tag string) *Element {
	return &Element{Tag: tag, Attrs: map[string]string{}}
}

func (e *Element) AppendChild(c *Element) *Element {
	c.parent = e
	e.children = append(e.children, c)
	return c
}

// RemoveChild detaches c from e. Used by tests to simulate the page
// structure changing under a stored anchor.
func (e *Element) RemoveChild(c *Element) {
	for i, ch := range e.children {
		if ch == c {
			e.children = append(e.children[:i], e.children[i+1:]...)
			c.parent = nil
			return
		}
	}
}

func (e *Element) Parent() *Element     { return e.parent }
func (e *Element) Children() []*Element { return e.children }

func (e *Element) HasClass(name string) bool {
	for _, c := range e.Classes {
		if c == name {
			return true
		}
	}
	return false
}

func (e *Element) Attr(name string) string {
	if e.Attrs == nil {
		return ""
	}
	return e.Attrs[name]
}

func (e *Element) SetAttr(name, value string) *Element {
	if e.Attrs == nil {
		e.Attrs = map[string]string{}
	}
	e.Attrs[name] = value
	return e
}

// ChildIndex is the 1-based position of e among its parent's children,
// matching CSS :nth-child numbering. Root elements report 1.
func (e *Element) ChildIndex() int {
	if e.parent == nil {
		return 1
	}
	for i, c := range e.parent.children {
		if c == e {
			return i + 1
		}
	}
	return 1
}

// Document is a laid-out page. Width/Height are the scrollable document
// dimensions; the Scroll/Viewport fields mirror what the embedded script
// reports in scroll-update messages.
type Document struct {
	Width  float64
	Height float64

	ScrollX        float64
	ScrollY        float64
	ViewportWidth  float64
	ViewportHeight float64

	root *Element
	body *Element
}

func NewDocument(width, height float64) *Document {
	root := NewElement("html")
	body := NewElement("body")
	root.AppendChild(body)
	root.Box = Rect{W: width, H: height}
	body.Box = Rect{W: width, H: height}
	return &Document{
		Width:          width,
		Height:         height,
		ViewportWidth:  width,
		ViewportHeight: height,
		root:           root,
		body:           body,
	}
}

func (d *Document) Root() *Element { return d.root }
func (d *Document) Body() *Element { return d.body }

// Walk visits every element in tree order (parents before children).
func (d *Document) Walk(fn func(*Element)) {
	var rec func(e *Element)
	rec = func(e *Element) {
		fn(e)
		for _, c := range e.children {
			rec(c)
		}
	}
	rec(d.root)
}

// ElementFromPoint hit-tests the topmost element at a viewport coordinate.
// Later siblings paint above earlier ones and children above parents, so the
// deepest last-containing element wins. Elements for which skip returns true
// are ignored together with their subtrees.
func (d *Document) ElementFromPoint(viewportX, viewportY float64, skip func(*Element) bool) *Element {
	docX := viewportX + d.ScrollX
	docY := viewportY + d.ScrollY

	var hit func(e *Element) *Element
	hit = func(e *Element) *Element {
		if skip != nil && skip(e) {
			return nil
		}
		if !e.Box.Contains(docX, docY) {
			return nil
		}
		// last containing child is on top
		for i := len(e.children) - 1; i >= 0; i-- {
			if found := hit(e.children[i]); found != nil {
				return found
			}
		}
		return e
	}

	found := hit(d.root)
	if found == d.root {
		return nil
	}
	return found
}
