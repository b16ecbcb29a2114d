package tabula

// Codec provides content-type aware marshaling.
type Codec interface {
	// ContentType returns the MIME type for this codec (e.g., "application/json").
	ContentType() string

	// Marshal encodes v into bytes.
	Marshal(v any) ([]byte, error)

	// Unmarshal decodes data into v.
	Unmarshal(data []byte, v any) error
}

// TreeCodec is a Codec that can also translate its encoded form to and from
// the generic value tree. Writers use it to turn typed values into trees
// before flattening; the tree decode mode uses it to bind an unflattened
// tree back into a typed value.
type TreeCodec interface {
	Codec

	// ToTree parses encoded data into a tree, keeping member order.
	ToTree(data []byte) (Value, error)

	// FromTree encodes a tree in this codec's format.
	FromTree(v Value) ([]byte, error)
}

// EncodeTree converts v to a tree through c.
func EncodeTree(c TreeCodec, v any) (Value, error) {
	data, err := c.Marshal(v)
	if err != nil {
		return Value{}, newCodecError(ErrMarshal, err)
	}
	tree, err := c.ToTree(data)
	if err != nil {
		return Value{}, newCodecError(ErrUnmarshal, err)
	}
	return tree, nil
}

// DecodeTree binds tree onto v through c.
func DecodeTree(c TreeCodec, tree Value, v any) error {
	data, err := c.FromTree(tree)
	if err != nil {
		return newCodecError(ErrMarshal, err)
	}
	if err := c.Unmarshal(data, v); err != nil {
		return newCodecError(ErrUnmarshal, err)
	}
	return nil
}

// Encode flattens v through c.
func Encode(c TreeCodec, v any) (*Flat, error) {
	tree, err := EncodeTree(c, v)
	if err != nil {
		return nil, err
	}
	return Flatten(tree), nil
}
