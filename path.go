package tabula

import (
	"strconv"
	"strings"
)

// Path encoding tokens.
const (
	// Separator joins segment tokens into a flat key.
	Separator = "__"

	// IndexPrefix marks a token as an array index, e.g. "idx-3".
	IndexPrefix = "idx-"
)

// Segment is one step of a path: an array index or a field name.
// The zero value is the field named "".
type Segment struct {
	name  string
	index int
	isIdx bool
}

// Index returns an index segment. Negative indices panic.
func Index(i int) Segment {
	if i < 0 {
		panic("tabula: negative array index")
	}
	return Segment{index: i, isIdx: true}
}

// Field returns a field segment.
func Field(name string) Segment {
	return Segment{name: name}
}

// IsIndex reports whether the segment addresses an array element.
func (s Segment) IsIndex() bool { return s.isIdx }

// Index returns the array position of an index segment, or -1 for a field.
func (s Segment) Index() int {
	if !s.isIdx {
		return -1
	}
	return s.index
}

// Name returns the field name of a field segment, or "" for an index.
func (s Segment) Name() string { return s.name }

// Token encodes the segment as it appears inside a flat key.
func (s Segment) Token() string {
	if s.isIdx {
		return IndexPrefix + strconv.Itoa(s.index)
	}
	return s.name
}

// String implements fmt.Stringer.
func (s Segment) String() string { return s.Token() }

// ParseSegment decodes a single token. A token made of IndexPrefix followed by
// decimal digits is an index; every other token is a field name.
// A field literally named like an index token reads back as an index.
func ParseSegment(token string) Segment {
	if i, ok := parseIndexToken(token); ok {
		return Index(i)
	}
	return Field(token)
}

func parseIndexToken(token string) (int, bool) {
	digits, ok := strings.CutPrefix(token, IndexPrefix)
	if !ok || digits == "" {
		return 0, false
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		// overflow
		return 0, false
	}
	return n, true
}

// Path is a root-to-leaf sequence of segments. The empty path is the root.
type Path []Segment

// ParsePath splits a flat key into its segments. It never fails; the empty
// key is the root path.
func ParsePath(key string) Path {
	if key == "" {
		return nil
	}
	tokens := strings.Split(key, Separator)
	path := make(Path, len(tokens))
	for i, tok := range tokens {
		path[i] = ParseSegment(tok)
	}
	return path
}

// Append returns a new path extended by seg. The receiver is never modified.
func (p Path) Append(seg Segment) Path {
	next := make(Path, len(p), len(p)+1)
	copy(next, p)
	return append(next, seg)
}

// String joins the segment tokens with Separator.
func (p Path) String() string {
	switch len(p) {
	case 0:
		return ""
	case 1:
		return p[0].Token()
	}
	var b strings.Builder
	for i, seg := range p {
		if i > 0 {
			b.WriteString(Separator)
		}
		b.WriteString(seg.Token())
	}
	return b.String()
}

// Equal reports whether two paths have the same segments.
func (p Path) Equal(o Path) bool {
	if len(p) != len(o) {
		return false
	}
	for i := range p {
		if p[i] != o[i] {
			return false
		}
	}
	return true
}

// joinKey appends a token to an encoded prefix.
func joinKey(prefix, token string) string {
	if prefix == "" {
		return token
	}
	return prefix + Separator + token
}

// childToken returns the first token of key below prefix, if key is a strict
// descendant of prefix.
func childToken(prefix, key string) (string, bool) {
	rest := key
	if prefix != "" {
		after, ok := strings.CutPrefix(key, prefix)
		if !ok {
			return "", false
		}
		rest, ok = strings.CutPrefix(after, Separator)
		if !ok {
			return "", false
		}
	}
	if i := strings.Index(rest, Separator); i >= 0 {
		rest = rest[:i]
	}
	if rest == "" {
		return "", false
	}
	return rest, true
}

// isDescendant reports whether key equals prefix or lies below it.
func isDescendant(prefix, key string) bool {
	if prefix == "" {
		return true
	}
	after, ok := strings.CutPrefix(key, prefix)
	if !ok {
		return false
	}
	return after == "" || strings.HasPrefix(after, Separator)
}
