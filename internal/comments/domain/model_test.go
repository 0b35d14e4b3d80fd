package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/itnnovator/annota-backend/internal/review/anchor"
)

func TestValidateNew(t *testing.T) {
	valid := &anchor.Descriptor{Selector: "#cta", OffsetXPct: 0.5, OffsetYPct: 0.5}

	t.Run("accepts minimal comment", func(t *testing.T) {
		assert.NoError(t, ValidateNew("/", 0, 0, "looks off", nil))
	})

	t.Run("accepts anchored comment", func(t *testing.T) {
		assert.NoError(t, ValidateNew("/pricing", 120.5, 340.25, "move this up", valid))
	})

	t.Run("origin click is legal", func(t *testing.T) {
		assert.NoError(t, ValidateNew("/", 0, 0, "top left corner", nil))
	})

	t.Run("page url must be a path", func(t *testing.T) {
		assert.ErrorIs(t, ValidateNew("pricing", 1, 1, "m", nil), ErrInvalidPageURL)
		assert.ErrorIs(t, ValidateNew("", 1, 1, "m", nil), ErrInvalidPageURL)
		assert.ErrorIs(t, ValidateNew("https://x.test/p", 1, 1, "m", nil), ErrInvalidPageURL)
	})

	t.Run("negative coordinates rejected", func(t *testing.T) {
		assert.ErrorIs(t, ValidateNew("/", -1, 10, "m", nil), ErrInvalidCoordinates)
		assert.ErrorIs(t, ValidateNew("/", 10, -0.5, "m", nil), ErrInvalidCoordinates)
	})

	t.Run("blank message rejected", func(t *testing.T) {
		assert.ErrorIs(t, ValidateNew("/", 1, 1, "", nil), ErrMessageRequired)
		assert.ErrorIs(t, ValidateNew("/", 1, 1, "   \t", nil), ErrMessageRequired)
	})

	t.Run("anchor offsets out of range", func(t *testing.T) {
		assert.ErrorIs(t, ValidateNew("/", 1, 1, "m",
			&anchor.Descriptor{Selector: "#x", OffsetXPct: 1.5}), ErrInvalidAnchor)
		assert.ErrorIs(t, ValidateNew("/", 1, 1, "m",
			&anchor.Descriptor{Selector: "#x", OffsetYPct: -0.1}), ErrInvalidAnchor)
	})

	t.Run("anchor without selector", func(t *testing.T) {
		assert.ErrorIs(t, ValidateNew("/", 1, 1, "m",
			&anchor.Descriptor{OffsetXPct: 0.5}), ErrInvalidAnchor)
	})
}

func TestClientTransitionAllowed(t *testing.T) {
	assert.True(t, ClientTransitionAllowed(StatusOpen, StatusResolved))
	assert.False(t, ClientTransitionAllowed(StatusResolved, StatusOpen))
	assert.False(t, ClientTransitionAllowed(StatusResolved, StatusResolved))
	assert.False(t, ClientTransitionAllowed(StatusOpen, StatusOpen))
}

func TestValidStatus(t *testing.T) {
	assert.True(t, ValidStatus(StatusOpen))
	assert.True(t, ValidStatus(StatusResolved))
	assert.False(t, ValidStatus("CLOSED"))
	assert.False(t, ValidStatus(""))
}
