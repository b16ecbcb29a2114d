package tabula

// Flatten walks v depth-first and returns one entry per scalar leaf, keyed by
// its encoded path. Arrays contribute index segments, objects contribute
// field segments in member order. Empty arrays and objects produce nothing.
//
// The key order is the first-seen depth-first order, which writers use as the
// header order.
func Flatten(v Value) *Flat {
	out := NewRecord[Value](estimateLeaves(v))
	flattenInto(out, "", v)
	return out
}

func flattenInto(out *Flat, prefix string, v Value) {
	switch v.kind {
	case ArrayKind:
		for i, elem := range v.arr {
			flattenInto(out, joinKey(prefix, Index(i).Token()), elem)
		}
	case ObjectKind:
		for _, m := range v.obj.members {
			flattenInto(out, joinKey(prefix, m.Name), m.Value)
		}
	default:
		out.Set(prefix, v)
	}
}

func estimateLeaves(v Value) int {
	switch v.kind {
	case ArrayKind:
		n := 0
		for _, e := range v.arr {
			n += estimateLeaves(e)
		}
		return n
	case ObjectKind:
		n := 0
		for _, m := range v.obj.members {
			n += estimateLeaves(m.Value)
		}
		return n
	default:
		return 1
	}
}
