// Package json provides a JSON codec implementation.
package json

import (
	"encoding/json"

	"github.com/zoobzio/tabula"
)

// jsonCodec implements tabula.TreeCodec for JSON.
type jsonCodec struct{}

// New returns a JSON codec.
func New() tabula.TreeCodec {
	return &jsonCodec{}
}

// ContentType returns the MIME type for JSON.
func (c *jsonCodec) ContentType() string {
	return "application/json"
}

// Marshal encodes v as JSON.
func (c *jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

// Unmarshal decodes JSON data into v.
func (c *jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// ToTree parses JSON into a tree. Object members keep document order and
// numbers keep their literal text.
func (c *jsonCodec) ToTree(data []byte) (tabula.Value, error) {
	return tabula.ParseJSON(data)
}

// FromTree encodes a tree as JSON.
func (c *jsonCodec) FromTree(v tabula.Value) ([]byte, error) {
	return v.MarshalJSON()
}
