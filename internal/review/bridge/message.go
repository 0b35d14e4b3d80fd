package bridge

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/itnnovator/annota-backend/internal/review/anchor"
)

// Source tags every message on the wire so each side can discard unrelated
// cross-origin traffic. The value is shared with independently-versioned
// embed scripts and must never change.
const Source = "annota-embed"

type Type string

// Embedded → host.
const (
	TypeHandshake    Type = "handshake"
	TypePathUpdate   Type = "path-update"
	TypeScrollUpdate Type = "scroll-update"
	TypeAnchorFound  Type = "anchor-found"
	TypePinClicked   Type = "pin-clicked"
)

// Host → embedded.
const (
	TypeRenderPins    Type = "render-pins"
	TypeRequestAnchor Type = "request-anchor"
)

var (
	// ErrForeignMessage marks traffic without our source discriminator.
	// Receivers drop it silently.
	ErrForeignMessage = errors.New("bridge: message from foreign source")
	ErrUnknownType    = errors.New("bridge: unknown message type")
)

// Message is one protocol frame. The concrete types below are the bit-exact
// wire contract with the distributed embed script: field names must not
// change.
type Message interface {
	MessageType() Type
}

type Handshake struct {
	Href string `json:"href"`
	Path string `json:"path"`
}

func (Handshake) MessageType() Type { return TypeHandshake }

type PathUpdate struct {
	Path string `json:"path"`
}

func (PathUpdate) MessageType() Type { return TypePathUpdate }

type ScrollUpdate struct {
	ScrollX      float64 `json:"scrollX"`
	ScrollY      float64 `json:"scrollY"`
	InnerWidth   float64 `json:"innerWidth"`
	InnerHeight  float64 `json:"innerHeight"`
	ScrollWidth  float64 `json:"scrollWidth"`
	ScrollHeight float64 `json:"scrollHeight"`
}

func (ScrollUpdate) MessageType() Type { return TypeScrollUpdate }

type AnchorFound struct {
	Anchor *anchor.Descriptor `json:"anchor"`
	X      float64            `json:"x"`
	Y      float64            `json:"y"`
}

func (AnchorFound) MessageType() Type { return TypeAnchorFound }

type PinClicked struct {
	CommentID string `json:"commentId"`
}

func (PinClicked) MessageType() Type { return TypePinClicked }

// RenderPin is one entry of a render-pins frame. Coordinates are document
// space; the embed layer sits at the document origin.
type RenderPin struct {
	ID      string             `json:"id"`
	X       float64            `json:"x"`
	Y       float64            `json:"y"`
	Number  int                `json:"number"`
	Status  string             `json:"status"`
	Message string             `json:"message"`
	Active  bool               `json:"active"`
	Anchor  *anchor.Descriptor `json:"anchor,omitempty"`
}

// RenderPins is always a full replacement of the rendered set; the embed
// layer holds no comment state beyond the last received frame, which makes
// the message idempotent.
type RenderPins struct {
	Pins []RenderPin `json:"pins"`
}

func (RenderPins) MessageType() Type { return TypeRenderPins }

type RequestAnchor struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (RequestAnchor) MessageType() Type { return TypeRequestAnchor }

// Encode wraps a message into its wire envelope: the payload fields
// flattened alongside "source" and "type".
func Encode(m Message) ([]byte, error) {
	payload, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("bridge encode: %w", err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payload, &fields); err != nil {
		return nil, fmt.Errorf("bridge encode: %w", err)
	}
	if fields == nil {
		fields = map[string]json.RawMessage{}
	}
	fields["source"], _ = json.Marshal(Source)
	fields["type"], _ = json.Marshal(m.MessageType())
	return json.Marshal(fields)
}

// Decode parses a wire frame into its concrete message. Frames from another
// source return ErrForeignMessage so the dispatch point can drop them
// without logging noise.
func Decode(data []byte) (Message, error) {
	var probe struct {
		Source string `json:"source"`
		Type   Type   `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("bridge decode: %w", err)
	}
	if probe.Source != Source {
		return nil, ErrForeignMessage
	}

	var m Message
	switch probe.Type {
	case TypeHandshake:
		m = &Handshake{}
	case TypePathUpdate:
		m = &PathUpdate{}
	case TypeScrollUpdate:
		m = &ScrollUpdate{}
	case TypeAnchorFound:
		m = &AnchorFound{}
	case TypePinClicked:
		m = &PinClicked{}
	case TypeRenderPins:
		m = &RenderPins{}
	case TypeRequestAnchor:
		m = &RequestAnchor{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, probe.Type)
	}

	if err := json.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("bridge decode %s: %w", probe.Type, err)
	}
	return m, nil
}
