// Package bson provides a BSON codec implementation.
package bson

import (
	"encoding/base64"
	"fmt"

	"github.com/zoobzio/tabula"
	"go.mongodb.org/mongo-driver/bson"
)

// bsonCodec implements tabula.TreeCodec for BSON.
type bsonCodec struct{}

// New returns a BSON codec.
func New() tabula.TreeCodec {
	return &bsonCodec{}
}

// ContentType returns the MIME type for BSON.
func (c *bsonCodec) ContentType() string {
	return "application/bson"
}

// Marshal encodes v as BSON.
func (c *bsonCodec) Marshal(v any) ([]byte, error) {
	return bson.Marshal(v)
}

// Unmarshal decodes BSON data into v.
func (c *bsonCodec) Unmarshal(data []byte, v any) error {
	return bson.Unmarshal(data, v)
}

// ToTree walks a BSON document into a tree, keeping element order.
// Binary data becomes standard base64 text, object IDs their hex form and
// datetimes milliseconds since the Unix epoch.
func (c *bsonCodec) ToTree(data []byte) (tabula.Value, error) {
	raw := bson.Raw(data)
	if err := raw.Validate(); err != nil {
		return tabula.Value{}, err
	}
	return fromDocument(raw)
}

func fromDocument(doc bson.Raw) (tabula.Value, error) {
	elems, err := doc.Elements()
	if err != nil {
		return tabula.Value{}, err
	}
	obj := tabula.NewObject()
	for _, e := range elems {
		v, err := fromRaw(e.Value())
		if err != nil {
			return tabula.Value{}, fmt.Errorf("%s: %w", e.Key(), err)
		}
		obj.Set(e.Key(), v)
	}
	return tabula.Obj(obj), nil
}

func fromRaw(rv bson.RawValue) (tabula.Value, error) {
	switch rv.Type {
	case bson.TypeNull, bson.TypeUndefined:
		return tabula.Null(), nil
	case bson.TypeBoolean:
		return tabula.Bool(rv.Boolean()), nil
	case bson.TypeInt32:
		return tabula.Int(int64(rv.Int32())), nil
	case bson.TypeInt64:
		return tabula.Int(rv.Int64()), nil
	case bson.TypeDouble:
		return tabula.Float(rv.Double()), nil
	case bson.TypeDecimal128:
		return tabula.String(rv.Decimal128().String()), nil
	case bson.TypeString:
		return tabula.String(rv.StringValue()), nil
	case bson.TypeObjectID:
		return tabula.String(rv.ObjectID().Hex()), nil
	case bson.TypeDateTime:
		return tabula.Int(rv.DateTime()), nil
	case bson.TypeBinary:
		_, data := rv.Binary()
		return tabula.String(base64.StdEncoding.EncodeToString(data)), nil
	case bson.TypeEmbeddedDocument:
		return fromDocument(rv.Document())
	case bson.TypeArray:
		values, err := rv.Array().Values()
		if err != nil {
			return tabula.Value{}, err
		}
		elems := make([]tabula.Value, len(values))
		for i, ev := range values {
			v, err := fromRaw(ev)
			if err != nil {
				return tabula.Value{}, err
			}
			elems[i] = v
		}
		return tabula.Array(elems...), nil
	}
	return tabula.Value{}, fmt.Errorf("unsupported bson type %s", rv.Type)
}

// FromTree encodes an object tree as a BSON document.
func (c *bsonCodec) FromTree(v tabula.Value) ([]byte, error) {
	if v.Kind() != tabula.ObjectKind {
		return nil, &tabula.TopLevelError{Found: v.Kind().String()}
	}
	return bson.Marshal(toBSON(v))
}

func toBSON(v tabula.Value) any {
	switch v.Kind() {
	case tabula.BoolKind:
		return v.Bool()
	case tabula.NumberKind:
		n := v.Number()
		if i, err := n.Int64(); err == nil {
			return i
		}
		f, _ := n.Float64()
		return f
	case tabula.StringKind:
		return v.Text()
	case tabula.ArrayKind:
		elems := v.Elems()
		out := make(bson.A, len(elems))
		for i, e := range elems {
			out[i] = toBSON(e)
		}
		return out
	case tabula.ObjectKind:
		obj := v.Object()
		out := make(bson.D, 0, obj.Len())
		for name, member := range obj.All() {
			out = append(out, bson.E{Key: name, Value: toBSON(member)})
		}
		return out
	default:
		return nil
	}
}
