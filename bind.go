package tabula

import (
	"encoding"
	"fmt"
	"reflect"
)

// bind fills the addressable value rv following plan sh.
func (d *Decoder) bind(sh *shape, rv reflect.Value) error {
	switch sh.kind {
	case shapeCustom:
		return rv.Addr().Interface().(Unmarshaler).UnmarshalFlat(d)

	case shapeTextual:
		text, err := d.Text()
		if err != nil {
			return err
		}
		if err := rv.Addr().Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(text)); err != nil {
			return &ParseError{Path: d.prefix, Kind: sh.typ.String(), Text: text, Cause: err}
		}
		return nil

	case shapeScalar:
		text, err := d.Text()
		if err != nil {
			return err
		}
		return setScalar(rv, d.prefix, text)

	case shapeBytes:
		b, err := d.Bytes()
		if err != nil {
			return err
		}
		rv.SetBytes(b)
		return nil

	case shapeAny:
		x, err := d.Any()
		if err != nil {
			return err
		}
		if x == nil {
			rv.SetZero()
			return nil
		}
		rv.Set(reflect.ValueOf(x))
		return nil

	case shapeOptional:
		if !d.Present() {
			rv.SetZero()
			return nil
		}
		elem := reflect.New(sh.typ.Elem())
		if err := d.bind(sh.elem, elem.Elem()); err != nil {
			return err
		}
		rv.Set(elem)
		return nil

	case shapeSequence:
		indices, err := d.Indices()
		if err != nil {
			return err
		}
		if len(indices) == 0 {
			rv.SetZero()
			return nil
		}
		s := reflect.MakeSlice(sh.typ, len(indices), len(indices))
		for i := range indices {
			if err := d.Index(i).bind(sh.elem, s.Index(i)); err != nil {
				return err
			}
		}
		rv.Set(s)
		return nil

	case shapeArray:
		indices, err := d.Indices()
		if err != nil {
			return err
		}
		if len(indices) != rv.Len() {
			return newPathError(ErrInvalidArrayIndex, d.prefix,
				fmt.Sprintf("expected %d elements, found %d", rv.Len(), len(indices)))
		}
		for i := range indices {
			if err := d.Index(i).bind(sh.elem, rv.Index(i)); err != nil {
				return err
			}
		}
		return nil

	case shapeMap:
		return d.bindMap(sh, rv)

	case shapeStruct:
		return d.bindStruct(sh, rv)
	}
	return newPathError(ErrUnsupportedType, d.prefix, sh.typ.String())
}

func (d *Decoder) bindMap(sh *shape, rv reflect.Value) error {
	if d.hasIndexChild() {
		return &ConflictError{Path: d.prefix, At: d.prefix, Want: ObjectKind, Found: ArrayKind}
	}
	names := d.Fields()
	if len(names) == 0 {
		rv.SetZero()
		return nil
	}
	m := reflect.MakeMapWithSize(sh.typ, len(names))
	keyType := sh.typ.Key()
	for _, name := range names {
		key := reflect.New(keyType).Elem()
		if err := setScalar(key, joinKey(d.prefix, name), name); err != nil {
			return err
		}
		val := reflect.New(sh.elem.typ).Elem()
		if err := d.Field(name).bind(sh.elem, val); err != nil {
			return err
		}
		m.SetMapIndex(key, val)
	}
	rv.Set(m)
	return nil
}

// bindStruct visits the record's children in first-seen order, then decodes
// every field that did not appear so missing required fields are reported.
func (d *Decoder) bindStruct(sh *shape, rv reflect.Value) error {
	done := make([]bool, len(sh.fields))
	for _, name := range d.Fields() {
		i, ok := sh.byName[name]
		if !ok {
			continue
		}
		done[i] = true
		f := sh.fields[i]
		if err := d.Field(name).bind(f.shape, fieldByIndex(rv, f.index)); err != nil {
			return err
		}
	}
	for i, f := range sh.fields {
		if done[i] {
			continue
		}
		if err := d.Field(f.name).bind(f.shape, fieldByIndex(rv, f.index)); err != nil {
			return err
		}
	}
	return nil
}

func fieldByIndex(rv reflect.Value, index []int) reflect.Value {
	for _, i := range index {
		rv = rv.Field(i)
	}
	return rv
}
