package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/itnnovator/annota-backend/internal/review/anchor"
)

type Status string

const (
	StatusOpen     Status = "OPEN"
	StatusResolved Status = "RESOLVED"
)

var (
	ErrNotFound           = errors.New("comment not found")
	ErrInvalidStatus      = errors.New("invalid comment status")
	ErrMessageRequired    = errors.New("comment message is required")
	ErrInvalidPageURL     = errors.New("pageUrl must start with /")
	ErrInvalidCoordinates = errors.New("coordinates must be non-negative")
	ErrInvalidAnchor      = errors.New("anchor offsets must be within [0,1]")
	ErrReopenDenied       = errors.New("clients may not reopen a resolved comment")
)

// Comment is a pin: click coordinates are document space of the target page
// at creation time, scoped to exactly one pageUrl. When an anchor is
// present the position is re-derived from the live DOM and the coordinates
// become a fallback.
type Comment struct {
	ID            string             `json:"id"`
	ProjectID     string             `json:"projectId"`
	PageURL       string             `json:"pageUrl"`
	ClickX        float64            `json:"clickX"`
	ClickY        float64            `json:"clickY"`
	Message       string             `json:"message"`
	Status        Status             `json:"status"`
	ScreenshotURL *string            `json:"screenshotUrl,omitempty"`
	Anchor        *anchor.Descriptor `json:"anchor,omitempty"`
	CreatedAt     time.Time          `json:"createdAt"`
}

func ValidStatus(s Status) bool {
	return s == StatusOpen || s == StatusResolved
}

// ValidateNew checks a prospective comment. (0,0) is a legal position.
func ValidateNew(pageURL string, clickX, clickY float64, message string, a *anchor.Descriptor) error {
	if !strings.HasPrefix(pageURL, "/") {
		return ErrInvalidPageURL
	}
	if clickX < 0 || clickY < 0 {
		return ErrInvalidCoordinates
	}
	if strings.TrimSpace(message) == "" {
		return ErrMessageRequired
	}
	if a != nil {
		if strings.TrimSpace(a.Selector) == "" {
			return ErrInvalidAnchor
		}
		if a.OffsetXPct < 0 || a.OffsetXPct > 1 || a.OffsetYPct < 0 || a.OffsetYPct > 1 {
			return ErrInvalidAnchor
		}
	}
	return nil
}

// ClientTransitionAllowed enforces the public-link rule: a client may
// resolve an open comment but never reopen a resolved one.
func ClientTransitionAllowed(from, to Status) bool {
	return from == StatusOpen && to == StatusResolved
}
