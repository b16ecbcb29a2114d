package yaml

import (
	"testing"

	"github.com/zoobzio/tabula"
)

func TestContentType(t *testing.T) {
	if got := New().ContentType(); got != "application/yaml" {
		t.Errorf("ContentType() = %q, want %q", got, "application/yaml")
	}
}

func TestMarshalUnmarshal(t *testing.T) {
	c := New()

	type row struct {
		Name  string `yaml:"name"`
		Value int    `yaml:"value"`
	}

	data, err := c.Marshal(row{Name: "test", Value: 42})
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}

	var restored row
	if err := c.Unmarshal(data, &restored); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if restored != (row{Name: "test", Value: 42}) {
		t.Errorf("round-trip failed: got %+v", restored)
	}
}

func TestToTree_Scalars(t *testing.T) {
	input := `int: 12
big: 18446744073709551615
float: 1.5
bool: true
null: ~
quoted: "123"
plain: hello
`
	tree, err := New().ToTree([]byte(input))
	if err != nil {
		t.Fatalf("ToTree() error: %v", err)
	}

	tests := []struct {
		name string
		kind tabula.Kind
		text string
	}{
		{"int", tabula.NumberKind, "12"},
		{"big", tabula.NumberKind, "18446744073709551615"},
		{"float", tabula.NumberKind, "1.5"},
		{"bool", tabula.BoolKind, "true"},
		{"null", tabula.NullKind, ""},
		{"quoted", tabula.StringKind, "123"},
		{"plain", tabula.StringKind, "hello"},
	}

	names := tree.Object().Names()
	for i, tt := range tests {
		if names[i] != tt.name {
			t.Errorf("Names()[%d] = %q, want %q", i, names[i], tt.name)
		}
		v, _ := tree.Object().Get(tt.name)
		if v.Kind() != tt.kind {
			t.Errorf("%s: Kind() = %s, want %s", tt.name, v.Kind(), tt.kind)
		}
		if text, _ := v.CanonicalText(); text != tt.text {
			t.Errorf("%s: text = %q, want %q", tt.name, text, tt.text)
		}
	}
}

func TestToTree_Anchors(t *testing.T) {
	input := `default: &default
  timeout: 30
  retries: 3
production:
  <<: *default
  timeout: 60
copy: *default
`
	tree, err := New().ToTree([]byte(input))
	if err != nil {
		t.Fatalf("ToTree() error: %v", err)
	}

	prod, _ := tree.Object().Get("production")
	timeout, _ := prod.Object().Get("timeout")
	retries, _ := prod.Object().Get("retries")
	if timeout.Number() != "60" || retries.Number() != "3" {
		t.Errorf("production = timeout %s, retries %s; want 60, 3", timeout.Number(), retries.Number())
	}
	if names := prod.Object().Names(); len(names) != 2 {
		t.Errorf("production names = %v, want merged keys only once", names)
	}

	def, _ := tree.Object().Get("default")
	cp, _ := tree.Object().Get("copy")
	if !cp.Equal(def) {
		t.Error("alias should expand to the anchored mapping")
	}
}

func TestToTree_Empty(t *testing.T) {
	tree, err := New().ToTree(nil)
	if err != nil {
		t.Fatalf("ToTree() error: %v", err)
	}
	if !tree.IsNull() {
		t.Errorf("ToTree(empty) = %s, want null", tree.Kind())
	}
}

func TestToTree_Invalid(t *testing.T) {
	if _, err := New().ToTree([]byte("name: [invalid")); err == nil {
		t.Error("ToTree(invalid) should return error")
	}
}

func TestFromTree_RoundTrip(t *testing.T) {
	tree := tabula.Obj(tabula.NewObject().
		Set("n", tabula.Int(1)).
		Set("f", tabula.Float(2.5)).
		Set("numeric text", tabula.String("123")).
		Set("bool text", tabula.String("true")).
		Set("empty", tabula.String("")).
		Set("nothing", tabula.Null()).
		Set("list", tabula.Array(tabula.String("a"), tabula.Bool(false))).
		Set("nested", tabula.Obj(tabula.NewObject().Set("k", tabula.String("v")))))

	c := New()
	data, err := c.FromTree(tree)
	if err != nil {
		t.Fatalf("FromTree() error: %v", err)
	}
	back, err := c.ToTree(data)
	if err != nil {
		t.Fatalf("ToTree() error: %v", err)
	}
	if !back.Equal(tree) {
		t.Errorf("round trip mismatch:\n%s", data)
	}
}
