// Package msgpack provides a MessagePack codec implementation.
//
// Struct fields without a msgpack tag fall back to their json tag, so the
// names written match the names the structural decoder looks up by default.
package msgpack

import (
	"bytes"
	"encoding/base64"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/zoobzio/tabula"
)

// msgpackCodec implements tabula.TreeCodec for MessagePack.
type msgpackCodec struct{}

// New returns a MessagePack codec.
func New() tabula.TreeCodec {
	return &msgpackCodec{}
}

// ContentType returns the MIME type for MessagePack.
func (c *msgpackCodec) ContentType() string {
	return "application/msgpack"
}

// Marshal encodes v as MessagePack.
func (c *msgpackCodec) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes MessagePack data into v.
func (c *msgpackCodec) Unmarshal(data []byte, v any) error {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.SetCustomStructTag("json")
	return dec.Decode(v)
}

// ToTree decodes MessagePack into a tree. Maps keep their encoded order and
// binary strings become standard base64 text.
func (c *msgpackCodec) ToTree(data []byte) (tabula.Value, error) {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.SetMapDecoder(decodeOrderedMap)
	raw, err := dec.DecodeInterface()
	if err != nil {
		return tabula.Value{}, err
	}
	return toValue(raw)
}

// decodeOrderedMap replaces the default map[string]any decoding so member
// order survives.
func decodeOrderedMap(d *msgpack.Decoder) (any, error) {
	n, err := d.DecodeMapLen()
	if err != nil {
		return nil, err
	}
	if n == -1 {
		return nil, nil
	}
	obj := tabula.NewObject()
	for i := 0; i < n; i++ {
		key, err := d.DecodeInterface()
		if err != nil {
			return nil, err
		}
		raw, err := d.DecodeInterface()
		if err != nil {
			return nil, err
		}
		v, err := toValue(raw)
		if err != nil {
			return nil, err
		}
		obj.Set(keyString(key), v)
	}
	return tabula.Obj(obj), nil
}

func keyString(key any) string {
	switch k := key.(type) {
	case string:
		return k
	case []byte:
		return string(k)
	default:
		return fmt.Sprint(k)
	}
}

func toValue(raw any) (tabula.Value, error) {
	switch x := raw.(type) {
	case nil:
		return tabula.Null(), nil
	case tabula.Value:
		return x, nil
	case bool:
		return tabula.Bool(x), nil
	case int8:
		return tabula.Int(int64(x)), nil
	case int16:
		return tabula.Int(int64(x)), nil
	case int32:
		return tabula.Int(int64(x)), nil
	case int64:
		return tabula.Int(x), nil
	case uint8:
		return tabula.Uint(uint64(x)), nil
	case uint16:
		return tabula.Uint(uint64(x)), nil
	case uint32:
		return tabula.Uint(uint64(x)), nil
	case uint64:
		return tabula.Uint(x), nil
	case float32:
		return tabula.Float(float64(x)), nil
	case float64:
		return tabula.Float(x), nil
	case string:
		return tabula.String(x), nil
	case []byte:
		return tabula.String(base64.StdEncoding.EncodeToString(x)), nil
	case []any:
		elems := make([]tabula.Value, len(x))
		for i, e := range x {
			v, err := toValue(e)
			if err != nil {
				return tabula.Value{}, err
			}
			elems[i] = v
		}
		return tabula.Array(elems...), nil
	}
	return tabula.Value{}, fmt.Errorf("unsupported msgpack value %T", raw)
}

// FromTree encodes a tree as MessagePack.
func (c *msgpackCodec) FromTree(v tabula.Value) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	if err := encodeValue(enc, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeValue(enc *msgpack.Encoder, v tabula.Value) error {
	switch v.Kind() {
	case tabula.NullKind:
		return enc.EncodeNil()
	case tabula.BoolKind:
		return enc.EncodeBool(v.Bool())
	case tabula.NumberKind:
		n := v.Number()
		if i, err := n.Int64(); err == nil {
			return enc.EncodeInt(i)
		}
		if u, err := n.Uint64(); err == nil {
			return enc.EncodeUint(u)
		}
		f, err := n.Float64()
		if err != nil {
			return err
		}
		return enc.EncodeFloat64(f)
	case tabula.StringKind:
		return enc.EncodeString(v.Text())
	case tabula.ArrayKind:
		elems := v.Elems()
		if err := enc.EncodeArrayLen(len(elems)); err != nil {
			return err
		}
		for _, e := range elems {
			if err := encodeValue(enc, e); err != nil {
				return err
			}
		}
		return nil
	case tabula.ObjectKind:
		obj := v.Object()
		if err := enc.EncodeMapLen(obj.Len()); err != nil {
			return err
		}
		for name, member := range obj.All() {
			if err := enc.EncodeString(name); err != nil {
				return err
			}
			if err := encodeValue(enc, member); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("unknown value kind %s", v.Kind())
}
