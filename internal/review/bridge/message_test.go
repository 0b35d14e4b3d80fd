package bridge

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itnnovator/annota-backend/internal/review/anchor"
)

func TestEncodeEnvelope(t *testing.T) {
	data, err := Encode(&Handshake{Href: "https://staging.example.com/pricing", Path: "/pricing"})
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, "annota-embed", m["source"])
	assert.Equal(t, "handshake", m["type"])
	assert.Equal(t, "/pricing", m["path"])
	assert.Equal(t, "https://staging.example.com/pricing", m["href"])
}

func TestDecodeRoundTrip(t *testing.T) {
	msgs := []Message{
		&Handshake{Href: "https://x.test/a", Path: "/a"},
		&PathUpdate{Path: "/b"},
		&ScrollUpdate{ScrollY: 120, InnerWidth: 1280, InnerHeight: 720, ScrollWidth: 1280, ScrollHeight: 4000},
		&AnchorFound{Anchor: &anchor.Descriptor{Selector: "#cta", OffsetXPct: 0.25, OffsetYPct: 0.75, TagName: "BUTTON"}, X: 10, Y: 20},
		&PinClicked{CommentID: "c-1"},
		&RenderPins{Pins: []RenderPin{{ID: "c-1", X: 100, Y: 200, Number: 1, Status: "OPEN", Message: "fix this"}}},
		&RequestAnchor{X: 33, Y: 44},
	}

	for _, want := range msgs {
		t.Run(string(want.MessageType()), func(t *testing.T) {
			data, err := Encode(want)
			require.NoError(t, err)

			got, err := Decode(data)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestDecodeForeignSource(t *testing.T) {
	t.Run("other tool", func(t *testing.T) {
		_, err := Decode([]byte(`{"source":"react-devtools","type":"handshake"}`))
		assert.ErrorIs(t, err, ErrForeignMessage)
	})

	t.Run("no source at all", func(t *testing.T) {
		_, err := Decode([]byte(`{"type":"handshake","path":"/"}`))
		assert.ErrorIs(t, err, ErrForeignMessage)
	})
}

func TestDecodeUnknownType(t *testing.T) {
	_, err := Decode([]byte(`{"source":"annota-embed","type":"teleport"}`))
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestDecodeMalformed(t *testing.T) {
	_, err := Decode([]byte(`{not json`))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrForeignMessage)
}

func TestAnchorFoundNilAnchorOnWire(t *testing.T) {
	// A failed anchor synthesis still answers the request, with a null
	// anchor, so the host can store absolute coordinates only.
	data, err := Encode(&AnchorFound{X: 5, Y: 6})
	require.NoError(t, err)

	got, err := Decode(data)
	require.NoError(t, err)
	af, ok := got.(*AnchorFound)
	require.True(t, ok)
	assert.Nil(t, af.Anchor)
}
