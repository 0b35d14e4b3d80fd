package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeBaseURL(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases scheme and host", "HTTP://Example.com/Path/", "http://example.com/Path"},
		{"strips trailing slash", "https://staging.example.com/", "https://staging.example.com"},
		{"preserves path case", "https://x.test/Pricing", "https://x.test/Pricing"},
		{"drops fragment", "https://x.test/page#section", "https://x.test/page"},
		{"keeps query", "https://x.test/page?preview=1", "https://x.test/page?preview=1"},
		{"keeps port", "http://localhost:3000/", "http://localhost:3000"},
		{"trims whitespace", "  https://x.test  ", "https://x.test"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NormalizeBaseURL(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	t.Run("rejects bad input", func(t *testing.T) {
		for _, in := range []string{"", "   ", "ftp://x.test", "javascript:alert(1)", "example.com", "/relative"} {
			_, err := NormalizeBaseURL(in)
			assert.ErrorIs(t, err, ErrInvalidBaseURL, "input %q", in)
		}
	})
}

func TestApproved(t *testing.T) {
	p := Project{Status: StatusInReview}
	assert.False(t, p.Approved())

	at := time.Now()
	p.Status = StatusApproved
	p.ApprovedAt = &at
	assert.True(t, p.Approved())
}
