package tabula

import (
	"encoding"
	"reflect"
	"strings"

	"github.com/zoobzio/sentinel"
)

func init() {
	// Register field naming tags with sentinel
	sentinel.Tag("json")
	sentinel.Tag("tabula")
}

// shapeKind is the decoding strategy selected for a Go type.
type shapeKind uint8

const (
	shapeUnsupported shapeKind = iota
	shapeCustom                // implements Unmarshaler
	shapeTextual               // implements encoding.TextUnmarshaler
	shapeScalar                // bool, integers, floats, strings
	shapeBytes                 // []byte, standard base64 text
	shapeAny                   // empty interface, inferred
	shapeOptional              // pointer, nil when nothing is present
	shapeSequence              // slice
	shapeArray                 // fixed-length array
	shapeMap                   // map with string or integer keys
	shapeStruct                // named fields
)

var shapeNames = [...]string{
	shapeUnsupported: "unsupported",
	shapeCustom:      "custom",
	shapeTextual:     "text",
	shapeScalar:      "scalar",
	shapeBytes:       "bytes",
	shapeAny:         "any",
	shapeOptional:    "optional",
	shapeSequence:    "sequence",
	shapeArray:       "array",
	shapeMap:         "map",
	shapeStruct:      "struct",
}

func (k shapeKind) String() string {
	if int(k) < len(shapeNames) {
		return shapeNames[k]
	}
	return "unknown"
}

// shape is the compiled decode plan for one Go type. Plans reference each
// other by pointer, so recursive types compile to cyclic plans.
type shape struct {
	kind   shapeKind
	typ    reflect.Type
	elem   *shape       // optional, sequence, array and map values
	fields []fieldShape // struct fields in declaration order
	byName map[string]int
}

// fieldShape is one named struct field, possibly promoted from an embedded struct.
type fieldShape struct {
	name  string
	index []int
	shape *shape
}

var (
	unmarshalerType     = reflect.TypeFor[Unmarshaler]()
	textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()
)

// compiler builds plans for one tag name, tracking types in progress.
type compiler struct {
	tagName string
	seen    map[reflect.Type]*shape
}

func compileShape(t reflect.Type, tagName string) *shape {
	c := &compiler{tagName: tagName, seen: make(map[reflect.Type]*shape)}
	return c.compile(t)
}

func (c *compiler) compile(t reflect.Type) *shape {
	if sh, ok := c.seen[t]; ok {
		return sh
	}
	sh := &shape{typ: t}
	c.seen[t] = sh

	switch {
	case reflect.PointerTo(t).Implements(unmarshalerType):
		sh.kind = shapeCustom
		return sh
	case reflect.PointerTo(t).Implements(textUnmarshalerType):
		sh.kind = shapeTextual
		return sh
	}

	switch t.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		sh.kind = shapeScalar
	case reflect.Interface:
		if t.NumMethod() == 0 {
			sh.kind = shapeAny
		}
	case reflect.Pointer:
		sh.kind = shapeOptional
		sh.elem = c.compile(t.Elem())
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			sh.kind = shapeBytes
			break
		}
		sh.kind = shapeSequence
		sh.elem = c.compile(t.Elem())
	case reflect.Array:
		sh.kind = shapeArray
		sh.elem = c.compile(t.Elem())
	case reflect.Map:
		if mapKeyKind(t.Key()) {
			sh.kind = shapeMap
			sh.elem = c.compile(t.Elem())
		}
	case reflect.Struct:
		sh.kind = shapeStruct
		c.compileFields(sh, t, nil, 0, make(map[string]int))
		sh.byName = make(map[string]int, len(sh.fields))
		for i, f := range sh.fields {
			sh.byName[f.name] = i
		}
	}
	return sh
}

func mapKeyKind(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}

// compileFields appends the named fields of t to sh. Untagged embedded
// structs are inlined; a shallower field wins over a promoted one with the
// same name.
func (c *compiler) compileFields(sh *shape, t reflect.Type, parent []int, depth int, depths map[string]int) {
	meta := structMetadata(t)
	for _, fm := range meta.Fields {
		sf := t.Field(fm.Index[0])
		tag := sf.Tag.Get(c.tagName)
		if tag == "-" {
			continue
		}
		name, _, _ := strings.Cut(tag, ",")

		index := make([]int, len(parent), len(parent)+1)
		copy(index, parent)
		index = append(index, fm.Index[0])

		if sf.Anonymous && name == "" && fm.Kind == sentinel.KindStruct {
			c.compileFields(sh, fm.ReflectType, index, depth+1, depths)
			continue
		}
		if name == "" {
			name = fm.Name
		}

		if d, ok := depths[name]; ok {
			if d <= depth {
				continue
			}
			for i := range sh.fields {
				if sh.fields[i].name == name {
					sh.fields[i] = fieldShape{name: name, index: index, shape: c.compile(fm.ReflectType)}
				}
			}
			depths[name] = depth
			continue
		}
		depths[name] = depth
		sh.fields = append(sh.fields, fieldShape{name: name, index: index, shape: c.compile(fm.ReflectType)})
	}
}

// structMetadata returns the exported fields of a struct type, preferring
// metadata sentinel has already scanned.
func structMetadata(rt reflect.Type) sentinel.Metadata {
	if meta, ok := sentinel.Lookup(rt.String()); ok && metadataMatches(meta, rt) {
		return meta
	}

	meta := sentinel.Metadata{
		TypeName:    rt.Name(),
		PackageName: rt.PkgPath(),
		Fields:      make([]sentinel.FieldMetadata, 0, rt.NumField()),
	}

	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}

		fm := sentinel.FieldMetadata{
			Name:        sf.Name,
			Type:        sf.Type.String(),
			ReflectType: sf.Type,
			Index:       sf.Index,
			Tags:        make(map[string]string),
		}
		for _, key := range []string{"json", "tabula"} {
			if v, ok := sf.Tag.Lookup(key); ok {
				fm.Tags[key] = v
			}
		}

		switch sf.Type.Kind() {
		case reflect.Struct:
			fm.Kind = sentinel.KindStruct
		case reflect.Ptr:
			fm.Kind = sentinel.KindPointer
		case reflect.Slice, reflect.Array:
			fm.Kind = sentinel.KindSlice
		case reflect.Map:
			fm.Kind = sentinel.KindMap
		case reflect.Interface:
			fm.Kind = sentinel.KindInterface
		default:
			fm.Kind = sentinel.KindScalar
		}

		meta.Fields = append(meta.Fields, fm)
	}

	return meta
}

// metadataMatches guards against registry entries for a different type with
// the same printed name, such as function-local types.
func metadataMatches(meta sentinel.Metadata, rt reflect.Type) bool {
	if rt.Kind() != reflect.Struct || meta.TypeName != rt.Name() || meta.PackageName != rt.PkgPath() {
		return false
	}
	exported := 0
	for i := 0; i < rt.NumField(); i++ {
		if rt.Field(i).IsExported() {
			exported++
		}
	}
	if exported != len(meta.Fields) {
		return false
	}
	for _, fm := range meta.Fields {
		if len(fm.Index) != 1 || fm.Index[0] >= rt.NumField() {
			return false
		}
		sf := rt.Field(fm.Index[0])
		if sf.Name != fm.Name || sf.Type != fm.ReflectType {
			return false
		}
	}
	return true
}

// topLevelShape reports whether a plan decodes from an object-shaped record.
func topLevelShape(sh *shape) bool {
	for sh.kind == shapeOptional {
		sh = sh.elem
	}
	switch sh.kind {
	case shapeStruct, shapeMap, shapeAny, shapeCustom:
		return true
	}
	return false
}
