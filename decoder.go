package tabula

import (
	"encoding/base64"
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"unicode/utf8"
)

// Decoder reads typed values from a text record at one key prefix. Child
// decoders share the record and options; nothing is copied when descending.
type Decoder struct {
	rec    *Text
	cfg    *config
	prefix string
}

// NewDecoder returns a decoder positioned at the root of rec.
func NewDecoder(rec *Text, opts ...Option) *Decoder {
	return newDecoder(rec, newConfig(opts))
}

func newDecoder(rec *Text, cfg *config) *Decoder {
	if rec == nil {
		rec = NewRecord[string](0)
	}
	return &Decoder{rec: rec, cfg: cfg}
}

// Unmarshal decodes rec into v, which must be a non-nil pointer to an
// object-shaped type: a struct, a map, an interface or an Unmarshaler.
func Unmarshal(rec *Text, v any, opts ...Option) error {
	return NewDecoder(rec, opts...).decodeRoot(v)
}

// Decode decodes rec into a new T.
func Decode[T any](rec *Text, opts ...Option) (T, error) {
	var out T
	err := Unmarshal(rec, &out, opts...)
	return out, err
}

func (d *Decoder) decodeRoot(v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return newPathError(ErrUnsupportedType, "", fmt.Sprintf("decode target must be a non-nil pointer, got %T", v))
	}
	sh := shapeFor(rv.Type().Elem(), d.cfg.tagName)
	if !topLevelShape(sh) {
		return &TopLevelError{Found: sh.kind.String() + " " + sh.typ.String()}
	}
	if d.hasIndexChild() {
		return &TopLevelError{Found: "array record"}
	}
	return d.bind(sh, rv.Elem())
}

// Prefix returns the encoded key prefix the decoder is positioned at.
func (d *Decoder) Prefix() string { return d.prefix }

// Field returns a decoder for the named child.
func (d *Decoder) Field(name string) *Decoder {
	return &Decoder{rec: d.rec, cfg: d.cfg, prefix: joinKey(d.prefix, name)}
}

// Index returns a decoder for the i-th element.
func (d *Decoder) Index(i int) *Decoder {
	return d.Field(Index(i).Token())
}

// Leaf returns the text stored exactly at the prefix. The root never has a leaf.
func (d *Decoder) Leaf() (string, bool) {
	if d.prefix == "" {
		return "", false
	}
	return d.rec.Get(d.prefix)
}

// Present reports whether any key at or below the prefix holds non-empty text.
func (d *Decoder) Present() bool {
	for key, text := range d.rec.All() {
		if text != "" && isDescendant(d.prefix, key) {
			return true
		}
	}
	return false
}

// children returns the distinct child tokens below the prefix in first-seen order.
func (d *Decoder) children() []string {
	var tokens []string
	seen := make(map[string]struct{})
	for key := range d.rec.All() {
		tok, ok := childToken(d.prefix, key)
		if !ok {
			continue
		}
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		tokens = append(tokens, tok)
	}
	return tokens
}

func (d *Decoder) hasIndexChild() bool {
	for _, tok := range d.children() {
		if ParseSegment(tok).IsIndex() {
			return true
		}
	}
	return false
}

// Fields returns the field-named children in first-seen order.
func (d *Decoder) Fields() []string {
	var names []string
	for _, tok := range d.children() {
		if !ParseSegment(tok).IsIndex() {
			names = append(names, tok)
		}
	}
	return names
}

// Indices returns the index children in ascending order. The indices must
// run contiguously from zero; with WithStrictKeyOrder they must also appear
// in ascending order.
func (d *Decoder) Indices() ([]int, error) {
	var indices []int
	for _, tok := range d.children() {
		if seg := ParseSegment(tok); seg.IsIndex() {
			indices = append(indices, seg.Index())
		}
	}
	if d.cfg.strictOrder && !slices.IsSorted(indices) {
		return nil, newPathError(ErrUnsortedKeys, d.prefix, fmt.Sprintf("indices appear as %v", indices))
	}
	slices.Sort(indices)
	for i, n := range indices {
		if n != i {
			return nil, newPathError(ErrInvalidArrayIndex, d.prefix,
				"expected index "+strconv.Itoa(i)+", found "+strconv.Itoa(n))
		}
	}
	return indices, nil
}

// Text returns the raw text at the prefix.
func (d *Decoder) Text() (string, error) {
	text, ok := d.Leaf()
	if !ok {
		return "", newPathError(ErrMissingField, d.prefix, "")
	}
	return text, nil
}

// Bool parses the leaf as exactly "true" or "false".
func (d *Decoder) Bool() (bool, error) {
	text, err := d.Text()
	if err != nil {
		return false, err
	}
	b, ok := parseBool(text)
	if !ok {
		return false, &ParseError{Path: d.prefix, Kind: "bool", Text: text}
	}
	return b, nil
}

// Int parses the leaf as a signed integer that fits in bitSize bits.
func (d *Decoder) Int(bitSize int) (int64, error) {
	text, err := d.Text()
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(text, 10, bitSize)
	if err != nil {
		return 0, &ParseError{Path: d.prefix, Kind: "int" + strconv.Itoa(bitSize), Text: text, Cause: numError(err)}
	}
	return n, nil
}

// Uint parses the leaf as an unsigned integer that fits in bitSize bits.
func (d *Decoder) Uint(bitSize int) (uint64, error) {
	text, err := d.Text()
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseUint(text, 10, bitSize)
	if err != nil {
		return 0, &ParseError{Path: d.prefix, Kind: "uint" + strconv.Itoa(bitSize), Text: text, Cause: numError(err)}
	}
	return n, nil
}

// Float parses the leaf as a float of bitSize precision.
func (d *Decoder) Float(bitSize int) (float64, error) {
	text, err := d.Text()
	if err != nil {
		return 0, err
	}
	f, err := parseFloat(text, bitSize)
	if err != nil {
		return 0, &ParseError{Path: d.prefix, Kind: "float" + strconv.Itoa(bitSize), Text: text, Cause: numError(err)}
	}
	return f, nil
}

// Char returns the leaf as a single character.
func (d *Decoder) Char() (rune, error) {
	text, err := d.Text()
	if err != nil {
		return 0, err
	}
	if utf8.RuneCountInString(text) != 1 {
		return 0, &ParseError{Path: d.prefix, Kind: "char", Text: text}
	}
	r, _ := utf8.DecodeRuneInString(text)
	return r, nil
}

// Bytes decodes the leaf as standard base64.
func (d *Decoder) Bytes() ([]byte, error) {
	text, err := d.Text()
	if err != nil {
		return nil, err
	}
	b, err := base64.StdEncoding.DecodeString(text)
	if err != nil {
		return nil, &ParseError{Path: d.prefix, Kind: "base64", Text: text, Cause: err}
	}
	return b, nil
}

// Any decodes whatever is at the prefix without a target type. A leaf is
// inferred with InferScalar; index children give []any, field children give
// map[string]any; nothing at all gives nil.
func (d *Decoder) Any() (any, error) {
	if text, ok := d.Leaf(); ok {
		return InferScalar(text), nil
	}
	tokens := d.children()
	if len(tokens) == 0 {
		return nil, nil
	}
	for _, tok := range tokens {
		if ParseSegment(tok).IsIndex() {
			return d.anySequence()
		}
	}
	out := make(map[string]any, len(tokens))
	for _, tok := range tokens {
		v, err := d.Field(tok).Any()
		if err != nil {
			return nil, err
		}
		out[tok] = v
	}
	return out, nil
}

func (d *Decoder) anySequence() ([]any, error) {
	indices, err := d.Indices()
	if err != nil {
		return nil, err
	}
	out := make([]any, len(indices))
	for i := range indices {
		v, err := d.Index(i).Any()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Enum decodes an externally tagged variant. A leaf at the prefix is a unit
// variant named by its text, with a nil payload. Otherwise exactly one child
// must exist: its token is the variant tag and the payload decoder sits below it.
func (d *Decoder) Enum() (string, *Decoder, error) {
	if text, ok := d.Leaf(); ok {
		return text, nil, nil
	}
	tokens := d.children()
	if len(tokens) != 1 {
		return "", nil, &EnumError{Prefix: d.prefix, FieldCount: len(tokens)}
	}
	return tokens[0], d.Field(tokens[0]), nil
}

// Decode decodes the value at the prefix into v, which must be a non-nil pointer.
func (d *Decoder) Decode(v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return newPathError(ErrUnsupportedType, d.prefix, fmt.Sprintf("decode target must be a non-nil pointer, got %T", v))
	}
	return d.bind(shapeFor(rv.Type().Elem(), d.cfg.tagName), rv.Elem())
}
