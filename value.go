package tabula

import (
	"iter"
	"math"
	"strconv"
)

// Kind identifies the variant held by a Value.
type Kind uint8

// Value kinds.
const (
	NullKind Kind = iota
	BoolKind
	NumberKind
	StringKind
	ArrayKind
	ObjectKind
)

var kindNames = [...]string{
	NullKind:   "null",
	BoolKind:   "bool",
	NumberKind: "number",
	StringKind: "string",
	ArrayKind:  "array",
	ObjectKind: "object",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Scalar reports whether values of this kind are leaves.
func (k Kind) Scalar() bool { return k <= StringKind }

// Number is the canonical decimal literal of a numeric value.
type Number string

// Int64 parses the literal as a signed integer.
func (n Number) Int64() (int64, error) { return strconv.ParseInt(string(n), 10, 64) }

// Uint64 parses the literal as an unsigned integer.
func (n Number) Uint64() (uint64, error) { return strconv.ParseUint(string(n), 10, 64) }

// Float64 parses the literal as a float.
func (n Number) Float64() (float64, error) { return strconv.ParseFloat(string(n), 64) }

func (n Number) String() string { return string(n) }

// Value is the generic tree: null, bool, number, string, array or object.
// The zero Value is null. Arrays and objects share their backing storage
// when a Value is copied.
type Value struct {
	kind Kind
	b    bool
	s    string
	arr  []Value
	obj  *Object
}

// Null returns the null value.
func Null() Value { return Value{} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: BoolKind, b: b} }

// String returns a string value.
func String(s string) Value { return Value{kind: StringKind, s: s} }

// Num returns a number value from its literal.
func Num(n Number) Value { return Value{kind: NumberKind, s: string(n)} }

// Int returns a number value holding i.
func Int(i int64) Value { return Num(Number(strconv.FormatInt(i, 10))) }

// Uint returns a number value holding u.
func Uint(u uint64) Value { return Num(Number(strconv.FormatUint(u, 10))) }

// Float returns a number value holding f. NaN and infinities have no
// decimal literal and become null.
func Float(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Null()
	}
	return Num(Number(strconv.FormatFloat(f, 'g', -1, 64)))
}

// Array returns an array value holding elems.
func Array(elems ...Value) Value {
	if elems == nil {
		elems = []Value{}
	}
	return Value{kind: ArrayKind, arr: elems}
}

// Obj returns an object value wrapping o. A nil o becomes an empty object.
func Obj(o *Object) Value {
	if o == nil {
		o = NewObject()
	}
	return Value{kind: ObjectKind, obj: o}
}

// Kind returns the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == NullKind }

// IsScalar reports whether v is a leaf.
func (v Value) IsScalar() bool { return v.kind.Scalar() }

// Bool returns the boolean held by v.
func (v Value) Bool() bool { return v.kind == BoolKind && v.b }

// Text returns the string held by v.
func (v Value) Text() string {
	if v.kind != StringKind {
		return ""
	}
	return v.s
}

// Number returns the literal held by v.
func (v Value) Number() Number {
	if v.kind != NumberKind {
		return ""
	}
	return Number(v.s)
}

// Elems returns the elements of an array value.
func (v Value) Elems() []Value {
	if v.kind != ArrayKind {
		return nil
	}
	return v.arr
}

// Object returns the members of an object value.
func (v Value) Object() *Object {
	if v.kind != ObjectKind {
		return nil
	}
	return v.obj
}

// CanonicalText is the textual form used in flat rows: null is empty, bools
// and numbers use their canonical literal, strings are themselves.
// Composite values have no canonical text and report false.
func (v Value) CanonicalText() (string, bool) {
	switch v.kind {
	case NullKind:
		return "", true
	case BoolKind:
		return strconv.FormatBool(v.b), true
	case NumberKind, StringKind:
		return v.s, true
	default:
		return "", false
	}
}

// Equal reports structural equality. Object member order is significant.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case NullKind:
		return true
	case BoolKind:
		return v.b == o.b
	case NumberKind, StringKind:
		return v.s == o.s
	case ArrayKind:
		if len(v.arr) != len(o.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(o.arr[i]) {
				return false
			}
		}
		return true
	case ObjectKind:
		return v.obj.Equal(o.obj)
	}
	return false
}

// Member is one name/value entry of an object.
type Member struct {
	Name  string
	Value Value
}

// Object is an insertion-ordered mapping of names to values.
type Object struct {
	members []Member
	index   map[string]int
}

// NewObject returns an empty object.
func NewObject() *Object {
	return &Object{index: make(map[string]int)}
}

// Len returns the number of members.
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.members)
}

// Get returns the value stored under name.
func (o *Object) Get(name string) (Value, bool) {
	if o == nil {
		return Value{}, false
	}
	i, ok := o.index[name]
	if !ok {
		return Value{}, false
	}
	return o.members[i].Value, true
}

// Set stores v under name. An existing member keeps its position.
func (o *Object) Set(name string, v Value) *Object {
	*o.slot(name) = v
	return o
}

// slot returns the storage for name, appending a null member if absent.
// The pointer stays valid until the next insertion into o.
func (o *Object) slot(name string) *Value {
	if o.index == nil {
		o.index = make(map[string]int)
	}
	i, ok := o.index[name]
	if !ok {
		i = len(o.members)
		o.members = append(o.members, Member{Name: name})
		o.index[name] = i
	}
	return &o.members[i].Value
}

// Names returns the member names in insertion order.
func (o *Object) Names() []string {
	if o == nil {
		return nil
	}
	names := make([]string, len(o.members))
	for i, m := range o.members {
		names[i] = m.Name
	}
	return names
}

// All iterates members in insertion order.
func (o *Object) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		if o == nil {
			return
		}
		for _, m := range o.members {
			if !yield(m.Name, m.Value) {
				return
			}
		}
	}
}

// Equal reports whether both objects hold equal members in the same order.
func (o *Object) Equal(p *Object) bool {
	if o.Len() != p.Len() {
		return false
	}
	for i := 0; i < o.Len(); i++ {
		a, b := o.members[i], p.members[i]
		if a.Name != b.Name || !a.Value.Equal(b.Value) {
			return false
		}
	}
	return true
}
