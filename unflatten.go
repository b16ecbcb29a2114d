package tabula

import "strconv"

// UnflattenValue rebuilds a tree from a flat object value. The top level must
// be an object whose members are all scalars.
func UnflattenValue(v Value) (Value, error) {
	if v.kind != ObjectKind {
		return Value{}, &TopLevelError{Found: v.kind.String()}
	}
	flat := NewRecord[Value](v.obj.Len())
	for name, member := range v.obj.All() {
		if !member.IsScalar() {
			return Value{}, &LeafShapeError{Key: name, Kind: member.kind}
		}
		flat.Set(name, member)
	}
	return Unflatten(flat)
}

// Unflatten rebuilds a tree from flat entries. Each key is split into
// segments and walked from the root: null nodes become arrays for index
// segments and objects for field segments. A node that already holds the
// other kind is a type conflict. Array slots must be filled in order; an index
// past the current length is rejected.
func Unflatten(f *Flat) (Value, error) {
	var root Value
	for key, leaf := range f.All() {
		if !leaf.IsScalar() {
			return Value{}, &LeafShapeError{Key: key, Kind: leaf.kind}
		}
		if err := assign(&root, key, ParsePath(key), leaf); err != nil {
			return Value{}, err
		}
	}
	return root, nil
}

// assign walks path from node, holding one mutable handle at a time.
func assign(node *Value, key string, path Path, leaf Value) error {
	for depth, seg := range path {
		at := path[:depth].String()
		if seg.IsIndex() {
			if err := materialize(node, ArrayKind, key, at); err != nil {
				return err
			}
			i := seg.Index()
			switch {
			case i == len(node.arr):
				node.arr = append(node.arr, Value{})
			case i > len(node.arr):
				return newPathError(ErrInvalidArrayIndex, key,
					"index "+strconv.Itoa(i)+" skips past length "+strconv.Itoa(len(node.arr)))
			}
			node = &node.arr[i]
			continue
		}
		if err := materialize(node, ObjectKind, key, at); err != nil {
			return err
		}
		node = node.obj.slot(seg.Name())
	}
	if !node.IsScalar() {
		return &ConflictError{Path: key, At: key, Want: leaf.kind, Found: node.kind}
	}
	*node = leaf
	return nil
}

// materialize turns a null node into an empty container of kind, or checks
// that an existing node already has that kind.
func materialize(node *Value, kind Kind, key, at string) error {
	switch node.kind {
	case kind:
		return nil
	case NullKind:
		if kind == ArrayKind {
			*node = Array()
		} else {
			*node = Obj(nil)
		}
		return nil
	default:
		return &ConflictError{Path: key, At: at, Want: kind, Found: node.kind}
	}
}
