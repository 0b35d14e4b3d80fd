package dom

import (
	"fmt"
	"strconv"
	"strings"
)

// Selector support covers exactly what anchor synthesis emits:
//
//	#id
//	tag
//	.cls / tag.cls1.cls2
//	[attr="v"] / tag[attr="v"]
//	step > step > step         (direct-child chains)
//	step:nth-child(n)
//
// Anything else is a parse error.

type step struct {
	tag     string
	id      string
	classes []string
	attrKey string
	attrVal string
	nth     int // 0 = unqualified
}

func parseSelector(sel string) ([]step, error) {
	sel = strings.TrimSpace(sel)
	if sel == "" {
		return nil, fmt.Errorf("empty selector")
	}

	parts := strings.Split(sel, ">")
	steps := make([]step, 0, len(parts))
	for _, p := range parts {
		s, err := parseStep(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		steps = append(steps, s)
	}
	return steps, nil
}

func parseStep(raw string) (step, error) {
	var s step
	if raw == "" {
		return s, fmt.Errorf("empty selector step")
	}

	if i := strings.Index(raw, ":nth-child("); i >= 0 {
		rest := raw[i+len(":nth-child("):]
		j := strings.Index(rest, ")")
		if j < 0 {
			return s, fmt.Errorf("unterminated :nth-child in %q", raw)
		}
		n, err := strconv.Atoi(rest[:j])
		if err != nil || n < 1 {
			return s, fmt.Errorf("bad :nth-child index in %q", raw)
		}
		s.nth = n
		raw = raw[:i]
	}

	if i := strings.IndexByte(raw, '['); i >= 0 {
		if !strings.HasSuffix(raw, "]") {
			return s, fmt.Errorf("unterminated attribute selector in %q", raw)
		}
		body := raw[i+1 : len(raw)-1]
		eq := strings.Index(body, "=")
		if eq < 0 {
			return s, fmt.Errorf("attribute selector without value in %q", raw)
		}
		s.attrKey = body[:eq]
		s.attrVal = strings.Trim(body[eq+1:], `"'`)
		raw = raw[:i]
	}

	if strings.HasPrefix(raw, "#") {
		s.id = raw[1:]
		return s, nil
	}

	segs := strings.Split(raw, ".")
	s.tag = strings.ToLower(segs[0])
	for _, c := range segs[1:] {
		if c != "" {
			s.classes = append(s.classes, c)
		}
	}
	return s, nil
}

func (s step) matches(e *Element) bool {
	if s.id != "" && e.ID != s.id {
		return false
	}
	if s.tag != "" && !strings.EqualFold(e.Tag, s.tag) {
		return false
	}
	for _, c := range s.classes {
		if !e.HasClass(c) {
			return false
		}
	}
	if s.attrKey != "" && e.Attr(s.attrKey) != s.attrVal {
		return false
	}
	if s.nth != 0 && e.ChildIndex() != s.nth {
		return false
	}
	return true
}

// QuerySelectorAll returns every element matching sel in tree order. A parse
// failure yields no matches, mirroring how a stale or malformed stored
// selector simply fails to resolve.
func (d *Document) QuerySelectorAll(sel string) []*Element {
	steps, err := parseSelector(sel)
	if err != nil {
		return nil
	}

	var out []*Element
	d.Walk(func(e *Element) {
		if matchesChain(e, steps) {
			out = append(out, e)
		}
	})
	return out
}

// QuerySelector returns the first match in tree order, or nil.
func (d *Document) QuerySelector(sel string) *Element {
	if all := d.QuerySelectorAll(sel); len(all) > 0 {
		return all[0]
	}
	return nil
}

func matchesChain(e *Element, steps []step) bool {
	last := len(steps) - 1
	if !steps[last].matches(e) {
		return false
	}
	cur := e.Parent()
	for i := last - 1; i >= 0; i-- {
		if cur == nil || !steps[i].matches(cur) {
			return false
		}
		cur = cur.Parent()
	}
	return true
}
