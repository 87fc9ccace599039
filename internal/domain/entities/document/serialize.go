package document

import (
	"encoding/json"
	"fmt"
	"time"
)

// Payload is the persisted and exported form of a document.
type Payload struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Device   Device    `json:"device"`
	Sections []*Node   `json:"sections"`
	Created  time.Time `json:"created"`
	Changed  time.Time `json:"changed"`
}

// Payload returns a detached copy of the document for serialization.
func (d *Document) Payload() *Payload {
	sections := d.Snapshot()
	if sections == nil {
		sections = []*Node{}
	}
	return &Payload{
		ID:       d.ID,
		Title:    d.Title,
		Device:   d.Device,
		Sections: sections,
		Created:  d.Created,
		Changed:  d.Changed,
	}
}

// Encode serializes the document.
func (d *Document) Encode() ([]byte, error) {
	return MarshalPayload(d.Payload())
}

// MarshalPayload serializes a payload. A nil section list encodes as [].
func MarshalPayload(p *Payload) ([]byte, error) {
	out := *p
	if out.Sections == nil {
		out.Sections = []*Node{}
	}
	data, err := json.Marshal(&out)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document %s: %w", p.ID, err)
	}
	return data, nil
}

// DecodePayload parses serialized sections. Numeric prop values are
// normalised to strings so props only ever hold strings and bools.
func DecodePayload(data []byte) (*Payload, error) {
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to decode document payload: %w", err)
	}
	WalkForest(p.Sections, func(n, _ *Node) bool {
		normalizeProps(n)
		return true
	})
	return &p, nil
}

// FromPayload builds a document from a decoded payload. The loaded forest
// becomes the first history entry.
func FromPayload(p *Payload, opts ...Option) *Document {
	all := append([]Option{WithSections(p.Sections), WithTitle(p.Title), WithDevice(p.Device)}, opts...)
	d := New(p.ID, all...)
	if !p.Created.IsZero() {
		d.Created = p.Created
	}
	if !p.Changed.IsZero() {
		d.Changed = p.Changed
	}
	return d
}

// Decode parses a serialized document.
func Decode(data []byte, opts ...Option) (*Document, error) {
	p, err := DecodePayload(data)
	if err != nil {
		return nil, err
	}
	return FromPayload(p, opts...), nil
}

func normalizeProps(n *Node) {
	if n.Props == nil {
		n.Props = make(map[string]any)
		return
	}
	for k, v := range n.Props {
		n.Props[k] = normalizeValue(v)
	}
}
