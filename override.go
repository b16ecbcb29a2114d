package tabula

// Override interfaces allow types to bypass reflection-based decoding.
// When a type implements one of these interfaces, the decoder calls the
// interface method instead of walking a compiled plan for the type.
//
// These interfaces are designed for codegen: a code generator can implement
// these methods from struct definitions.

// Unmarshaler decodes a value from a flat record.
type Unmarshaler interface {
	// UnmarshalFlat decodes the receiver from d, which is positioned at the
	// value's prefix. Use d.Field and d.Index to descend, and d.Enum for
	// externally tagged variants.
	UnmarshalFlat(d *Decoder) error
}
