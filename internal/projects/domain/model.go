package domain

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

type Status string

const (
	// StatusInReview is the initial state; comments may be created.
	StatusInReview Status = "IN_REVIEW"
	// StatusApproved is terminal. The transition is monotonic: there is no
	// automatic un-approval, and comment creation is locked from then on.
	StatusApproved Status = "APPROVED"
)

var (
	ErrNotFound        = errors.New("project not found")
	ErrAlreadyApproved = errors.New("project is already approved")
	ErrInvalidBaseURL  = errors.New("base url must be an absolute http(s) url")
	ErrNameRequired    = errors.New("project name is required")
)

type Project struct {
	ID         string     `json:"id"`
	OwnerID    string     `json:"-"`
	Name       string     `json:"name"`
	BaseURL    string     `json:"baseUrl"`
	Status     Status     `json:"status"`
	ApprovedAt *time.Time `json:"approvedAt,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

func (p *Project) Approved() bool {
	return p.Status == StatusApproved
}

// NormalizeBaseURL canonicalizes a staging-site URL: scheme and host are
// lowercased, the trailing slash is stripped, path case is preserved. Only
// http and https are accepted.
func NormalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrInvalidBaseURL
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidBaseURL, err)
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", ErrInvalidBaseURL
	}
	if u.Host == "" {
		return "", ErrInvalidBaseURL
	}

	u.Scheme = scheme
	u.Host = strings.ToLower(u.Host)
	u.Path = strings.TrimSuffix(u.Path, "/")
	u.Fragment = ""

	return u.String(), nil
}
