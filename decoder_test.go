package tabula_test

import (
	"errors"
	"math"
	"net/netip"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/zoobzio/tabula"
	tabulatest "github.com/zoobzio/tabula/testing"
)

type decAddress struct {
	City string `json:"city"`
	Zip  string `json:"zip"`
}

type decUser struct {
	Name    string            `json:"name"`
	Age     uint8             `json:"age"`
	Code    string            `json:"code"`
	Tags    []string          `json:"tags"`
	Address *decAddress       `json:"address"`
	Extra   map[string]string `json:"extra"`
	Ignored string            `json:"-"`
	secret  string
}

func TestDecode_Struct(t *testing.T) {
	rec := tabulatest.Text(
		"name", "Ada",
		"age", "36",
		"code", "00123",
		"tags__idx-0", "x",
		"tags__idx-1", "y",
		"address__city", "London",
		"address__zip", "N1",
		"extra__k", "v",
		"unknown", "ignored",
	)

	got, err := tabula.Decode[decUser](rec)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}

	want := decUser{
		Name:    "Ada",
		Age:     36,
		Code:    "00123",
		Tags:    []string{"x", "y"},
		Address: &decAddress{City: "London", Zip: "N1"},
		Extra:   map[string]string{"k": "v"},
	}
	if diff := cmp.Diff(want, got, cmp.AllowUnexported(decUser{})); diff != "" {
		t.Errorf("Decode() mismatch (-want +got):\n%s", diff)
	}
}

func TestDecode_OptionalAbsent(t *testing.T) {
	tests := []struct {
		name string
		rec  *tabula.Text
	}{
		{"no keys", tabulatest.Text("name", "a", "age", "1", "code", "c")},
		{"empty cells", tabulatest.Text("name", "a", "age", "1", "code", "c", "address__city", "", "address__zip", "")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tabula.Decode[decUser](tt.rec)
			if err != nil {
				t.Fatalf("Decode() error: %v", err)
			}
			if got.Address != nil {
				t.Errorf("Address = %+v, want nil", got.Address)
			}
			if got.Tags != nil {
				t.Errorf("Tags = %v, want nil", got.Tags)
			}
			if got.Extra != nil {
				t.Errorf("Extra = %v, want nil", got.Extra)
			}
		})
	}
}

func TestDecode_OptionalPresentWithPartialData(t *testing.T) {
	type Inner struct {
		A *int `json:"a"`
		B *int `json:"b"`
	}
	type Outer struct {
		In *Inner `json:"in"`
	}

	got, err := tabula.Decode[Outer](tabulatest.Text("in__a", "1", "in__b", ""))
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if got.In == nil || got.In.A == nil || *got.In.A != 1 || got.In.B != nil {
		t.Errorf("Decode() = %+v, want in.a=1 and in.b=nil", got.In)
	}
}

func TestDecode_MissingField(t *testing.T) {
	_, err := tabula.Decode[decUser](tabulatest.Text("name", "a", "code", "c"))
	if !errors.Is(err, tabula.ErrMissingField) {
		t.Fatalf("Decode() error = %v, want ErrMissingField", err)
	}
	var pathErr *tabula.PathError
	if !errors.As(err, &pathErr) || pathErr.Path != "age" {
		t.Errorf("error = %v, want path %q", err, "age")
	}
}

func TestDecode_ScalarParseFailures(t *testing.T) {
	type Row struct {
		B   bool    `json:"b"`
		I8  int8    `json:"i8"`
		U   uint    `json:"u"`
		F32 float32 `json:"f32"`
	}
	valid := map[string]string{"b": "true", "i8": "-128", "u": "7", "f32": "1.5"}

	tests := []struct {
		key, text, kind string
	}{
		{"b", "yes", "bool"},
		{"b", "1", "bool"},
		{"i8", "128", "int8"},
		{"u", "-1", "uint"},
		{"f32", "abc", "float32"},
		{"f32", "0x1p4", "float32"},
		{"f32", "1_0", "float32"},
		{"i8", "1_0", "int8"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.text, func(t *testing.T) {
			kv := []string{}
			for _, k := range []string{"b", "i8", "u", "f32"} {
				v := valid[k]
				if k == tt.key {
					v = tt.text
				}
				kv = append(kv, k, v)
			}
			_, err := tabula.Decode[Row](tabulatest.Text(kv...))
			var parseErr *tabula.ParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("Decode() error = %v, want ParseError", err)
			}
			if parseErr.Kind != tt.kind || parseErr.Text != tt.text || parseErr.Path != tt.key {
				t.Errorf("ParseError = %+v, want kind %q text %q path %q", parseErr, tt.kind, tt.text, tt.key)
			}
		})
	}
}

func TestDecode_SequencePolicy(t *testing.T) {
	type Row struct {
		Items []int `json:"items"`
	}

	tests := []struct {
		name    string
		rec     *tabula.Text
		opts    []tabula.Option
		want    []int
		wantErr error
	}{
		{
			name: "sorted",
			rec:  tabulatest.Text("items__idx-0", "1", "items__idx-1", "2"),
			want: []int{1, 2},
		},
		{
			name: "unsorted is reordered",
			rec:  tabulatest.Text("items__idx-1", "2", "items__idx-0", "1"),
			want: []int{1, 2},
		},
		{
			name:    "unsorted strict",
			rec:     tabulatest.Text("items__idx-1", "2", "items__idx-0", "1"),
			opts:    []tabula.Option{tabula.WithStrictKeyOrder()},
			wantErr: tabula.ErrUnsortedKeys,
		},
		{
			name:    "gap",
			rec:     tabulatest.Text("items__idx-0", "1", "items__idx-2", "3"),
			wantErr: tabula.ErrInvalidArrayIndex,
		},
		{
			name:    "not from zero",
			rec:     tabulatest.Text("items__idx-1", "1"),
			wantErr: tabula.ErrInvalidArrayIndex,
		},
		{
			name: "field children are not elements",
			rec:  tabulatest.Text("items__idx-0", "5", "items__len", "1"),
			want: []int{5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tabula.Decode[Row](tt.rec, tt.opts...)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Decode() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Decode() error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got.Items); diff != "" {
				t.Errorf("Items mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecode_FixedArray(t *testing.T) {
	type Row struct {
		P [2]float64 `json:"p"`
	}

	got, err := tabula.Decode[Row](tabulatest.Text("p__idx-0", "1.5", "p__idx-1", "-2"))
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if got.P != [2]float64{1.5, -2} {
		t.Errorf("P = %v, want [1.5 -2]", got.P)
	}

	_, err = tabula.Decode[Row](tabulatest.Text("p__idx-0", "1"))
	if !errors.Is(err, tabula.ErrInvalidArrayIndex) {
		t.Errorf("short array error = %v, want ErrInvalidArrayIndex", err)
	}
}

func TestDecode_NestedSequences(t *testing.T) {
	type Cell struct {
		V string `json:"v"`
	}
	type Grid struct {
		Rows [][]Cell `json:"rows"`
	}

	rec := tabulatest.Text(
		"rows__idx-0__idx-0__v", "a",
		"rows__idx-0__idx-1__v", "b",
		"rows__idx-1__idx-0__v", "c",
	)
	got, err := tabula.Decode[Grid](rec)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	want := Grid{Rows: [][]Cell{{{V: "a"}, {V: "b"}}, {{V: "c"}}}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Decode() mismatch (-want +got):\n%s", diff)
	}
}

func TestDecode_Any(t *testing.T) {
	rec := tabulatest.Text(
		"b", "true",
		"i", "-3",
		"u", "18446744073709551615",
		"f", "2.5",
		"s", "hello",
		"e", "",
		"list__idx-0", "1",
		"list__idx-1", "x",
		"obj__k", "false",
	)

	got, err := tabula.Decode[map[string]any](rec)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}

	want := map[string]any{
		"b":    true,
		"i":    int64(-3),
		"u":    uint64(math.MaxUint64),
		"f":    2.5,
		"s":    "hello",
		"e":    "",
		"list": []any{int64(1), "x"},
		"obj":  map[string]any{"k": false},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Decode() mismatch (-want +got):\n%s", diff)
	}
}

func TestDecode_AnyField(t *testing.T) {
	type Row struct {
		V any `json:"v"`
		W any `json:"w"`
	}

	got, err := tabula.Decode[Row](tabulatest.Text("v", "42"))
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if got.V != int64(42) {
		t.Errorf("V = %#v, want int64(42)", got.V)
	}
	if got.W != nil {
		t.Errorf("W = %#v, want nil", got.W)
	}
}

func TestDecode_IntegerMapKeys(t *testing.T) {
	got, err := tabula.Decode[map[int]string](tabulatest.Text("1", "a", "20", "b"))
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if diff := cmp.Diff(map[int]string{1: "a", 20: "b"}, got); diff != "" {
		t.Errorf("Decode() mismatch (-want +got):\n%s", diff)
	}

	_, err = tabula.Decode[map[int]string](tabulatest.Text("x", "a"))
	if !errors.Is(err, tabula.ErrScalarParse) {
		t.Errorf("bad key error = %v, want ErrScalarParse", err)
	}
}

func TestDecode_BytesAndText(t *testing.T) {
	type Row struct {
		Data []byte     `json:"data"`
		Addr netip.Addr `json:"addr"`
	}

	got, err := tabula.Decode[Row](tabulatest.Text("data", "aGk=", "addr", "10.0.0.1"))
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if string(got.Data) != "hi" {
		t.Errorf("Data = %q, want %q", got.Data, "hi")
	}
	if got.Addr != netip.MustParseAddr("10.0.0.1") {
		t.Errorf("Addr = %v, want 10.0.0.1", got.Addr)
	}

	_, err = tabula.Decode[Row](tabulatest.Text("data", "!!", "addr", "10.0.0.1"))
	if !errors.Is(err, tabula.ErrScalarParse) {
		t.Errorf("bad base64 error = %v, want ErrScalarParse", err)
	}

	_, err = tabula.Decode[Row](tabulatest.Text("data", "aGk=", "addr", "nope"))
	if !errors.Is(err, tabula.ErrScalarParse) {
		t.Errorf("bad addr error = %v, want ErrScalarParse", err)
	}
}

type Base struct {
	ID   int    `json:"id"`
	Kind string `json:"kind"`
}

func TestDecode_EmbeddedPromotion(t *testing.T) {
	type Item struct {
		Base
		Kind  string `json:"kind"`
		Label string
	}

	got, err := tabula.Decode[Item](tabulatest.Text("id", "7", "kind", "outer", "Label", "l"))
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if got.ID != 7 || got.Kind != "outer" || got.Base.Kind != "" || got.Label != "l" {
		t.Errorf("Decode() = %+v", got)
	}
}

func TestDecode_TagName(t *testing.T) {
	type Row struct {
		Name string `json:"name" db:"full_name"`
	}

	got, err := tabula.Decode[Row](tabulatest.Text("full_name", "Ada"), tabula.WithTagName("db"))
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if got.Name != "Ada" {
		t.Errorf("Name = %q, want %q", got.Name, "Ada")
	}
}

type treeNode struct {
	Name     string      `json:"name"`
	Children []*treeNode `json:"children"`
}

func TestDecode_RecursiveType(t *testing.T) {
	rec := tabulatest.Text(
		"name", "root",
		"children__idx-0__name", "a",
		"children__idx-1__name", "b",
		"children__idx-1__children__idx-0__name", "c",
	)

	got, err := tabula.Decode[treeNode](rec)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	want := treeNode{Name: "root", Children: []*treeNode{
		{Name: "a"},
		{Name: "b", Children: []*treeNode{{Name: "c"}}},
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Decode() mismatch (-want +got):\n%s", diff)
	}
}

func TestDecode_TopLevelShape(t *testing.T) {
	rec := tabulatest.Text("a", "1")

	if _, err := tabula.Decode[int](rec); !errors.Is(err, tabula.ErrUnsupportedTopLevelShape) {
		t.Errorf("Decode[int] error = %v, want ErrUnsupportedTopLevelShape", err)
	}
	if _, err := tabula.Decode[[]string](rec); !errors.Is(err, tabula.ErrUnsupportedTopLevelShape) {
		t.Errorf("Decode[[]string] error = %v, want ErrUnsupportedTopLevelShape", err)
	}

	got, err := tabula.Decode[*map[string]int](rec)
	if err != nil {
		t.Fatalf("Decode[*map] error: %v", err)
	}
	if got == nil || (*got)["a"] != 1 {
		t.Errorf("Decode[*map] = %v", got)
	}
}

func TestDecode_ArrayRecordAtRoot(t *testing.T) {
	rec := tabulatest.Text("idx-0", "a", "idx-1", "b")

	if got, err := tabula.Decode[any](rec); !errors.Is(err, tabula.ErrUnsupportedTopLevelShape) {
		t.Errorf("Decode[any] = %#v, %v; want ErrUnsupportedTopLevelShape", got, err)
	}
	if got, err := tabula.Decode[map[string]string](rec); !errors.Is(err, tabula.ErrUnsupportedTopLevelShape) {
		t.Errorf("Decode[map] = %#v, %v; want ErrUnsupportedTopLevelShape", got, err)
	}
}

func TestDecoder_FloatRejectsLiteralSyntax(t *testing.T) {
	d := tabula.NewDecoder(tabulatest.Text("hex", "0x1p4", "under", "1_0", "ok", "2.5e1"))

	for _, name := range []string{"hex", "under"} {
		if f, err := d.Field(name).Float(64); !errors.Is(err, tabula.ErrScalarParse) {
			t.Errorf("Field(%q).Float() = %v, %v; want ErrScalarParse", name, f, err)
		}
	}
	if f, err := d.Field("ok").Float(64); err != nil || f != 25 {
		t.Errorf("Field(ok).Float() = %v, %v; want 25", f, err)
	}
}

func TestDecode_MapWithIndexChildren(t *testing.T) {
	type Row struct {
		M map[string]string `json:"m"`
	}

	_, err := tabula.Decode[Row](tabulatest.Text("m__idx-0", "a", "m__k", "b"))
	var conflict *tabula.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("Decode() error = %v, want ConflictError", err)
	}
	if conflict.At != "m" || conflict.Found != tabula.ArrayKind {
		t.Errorf("ConflictError = %+v", conflict)
	}
}

func TestUnmarshal_InvalidTarget(t *testing.T) {
	var m map[string]string
	if err := tabula.Unmarshal(tabulatest.Text("a", "1"), m); !errors.Is(err, tabula.ErrUnsupportedType) {
		t.Errorf("Unmarshal(non-pointer) error = %v, want ErrUnsupportedType", err)
	}
}

func TestDecode_UnsupportedFieldType(t *testing.T) {
	type Row struct {
		C chan int `json:"c"`
	}
	if _, err := tabula.Decode[Row](tabulatest.Text("c", "1")); !errors.Is(err, tabula.ErrUnsupportedType) {
		t.Errorf("Decode() error = %v, want ErrUnsupportedType", err)
	}
}

// shape is an externally tagged enum decoded through Unmarshaler.
type shape struct {
	Kind   string
	Radius float64
	W, H   float64
}

func (s *shape) UnmarshalFlat(d *tabula.Decoder) error {
	tag, payload, err := d.Enum()
	if err != nil {
		return err
	}
	s.Kind = tag
	switch tag {
	case "point":
		return nil
	case "circle":
		s.Radius, err = payload.Field("r").Float(64)
		return err
	case "rect":
		if s.W, err = payload.Index(0).Float(64); err != nil {
			return err
		}
		s.H, err = payload.Index(1).Float(64)
		return err
	}
	return errors.New("unknown shape " + tag)
}

func TestDecode_EnumViaUnmarshaler(t *testing.T) {
	type Drawing struct {
		Shape shape `json:"shape"`
	}

	tests := []struct {
		name string
		rec  *tabula.Text
		want shape
	}{
		{"unit", tabulatest.Text("shape", "point"), shape{Kind: "point"}},
		{"struct payload", tabulatest.Text("shape__circle__r", "2.5"), shape{Kind: "circle", Radius: 2.5}},
		{"tuple payload", tabulatest.Text("shape__rect__idx-0", "3", "shape__rect__idx-1", "4"), shape{Kind: "rect", W: 3, H: 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tabula.Decode[Drawing](tt.rec)
			if err != nil {
				t.Fatalf("Decode() error: %v", err)
			}
			if got.Shape != tt.want {
				t.Errorf("Shape = %+v, want %+v", got.Shape, tt.want)
			}
		})
	}
}

func TestDecoder_EnumAmbiguous(t *testing.T) {
	tests := []struct {
		name  string
		rec   *tabula.Text
		count int
	}{
		{"nothing", tabulatest.Text("other", "x"), 0},
		{"two variants", tabulatest.Text("e__a", "1", "e__b", "2"), 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := tabula.NewDecoder(tt.rec).Field("e").Enum()
			var enumErr *tabula.EnumError
			if !errors.As(err, &enumErr) {
				t.Fatalf("Enum() error = %v, want EnumError", err)
			}
			if enumErr.FieldCount != tt.count || enumErr.Prefix != "e" {
				t.Errorf("EnumError = %+v, want prefix e count %d", enumErr, tt.count)
			}
		})
	}
}

func TestDecoder_Handle(t *testing.T) {
	rec := tabulatest.Text(
		"c", "é",
		"n", "-9",
		"list__idx-0", "a",
		"list__idx-1", "b",
		"obj__x", "1",
		"obj__y", "",
	)
	d := tabula.NewDecoder(rec)

	if r, err := d.Field("c").Char(); err != nil || r != 'é' {
		t.Errorf("Char() = %q, %v", r, err)
	}
	if _, err := d.Field("n").Char(); !errors.Is(err, tabula.ErrScalarParse) {
		t.Errorf("Char() on two runes error = %v, want ErrScalarParse", err)
	}
	if n, err := d.Field("n").Int(8); err != nil || n != -9 {
		t.Errorf("Int(8) = %d, %v", n, err)
	}
	if _, err := d.Field("n").Uint(64); !errors.Is(err, tabula.ErrScalarParse) {
		t.Errorf("Uint() on negative error = %v, want ErrScalarParse", err)
	}
	if idx, err := d.Field("list").Indices(); err != nil || len(idx) != 2 {
		t.Errorf("Indices() = %v, %v", idx, err)
	}
	if diff := cmp.Diff([]string{"x", "y"}, d.Field("obj").Fields()); diff != "" {
		t.Errorf("Fields() mismatch (-want +got):\n%s", diff)
	}
	if !d.Field("obj").Present() || d.Field("obj").Field("y").Present() || d.Field("missing").Present() {
		t.Error("Present() reports the wrong presence")
	}
	if d.Field("list").Index(1).Prefix() != "list__idx-1" {
		t.Errorf("Prefix() = %q", d.Field("list").Index(1).Prefix())
	}
	if _, ok := d.Leaf(); ok {
		t.Error("root should have no leaf")
	}

	var list []string
	if err := d.Field("list").Decode(&list); err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if diff := cmp.Diff([]string{"a", "b"}, list); diff != "" {
		t.Errorf("Decode() mismatch (-want +got):\n%s", diff)
	}
}

func TestDecode_NoStateAcrossRecords(t *testing.T) {
	type Row struct {
		Tags []string `json:"tags"`
	}

	first, err := tabula.Decode[Row](tabulatest.Text("tags__idx-0", "a", "tags__idx-1", "b"))
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	second, err := tabula.Decode[Row](tabulatest.Text("tags__idx-0", "c"))
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if len(first.Tags) != 2 || len(second.Tags) != 1 {
		t.Errorf("first=%v second=%v", first.Tags, second.Tags)
	}
}

func TestInferScalar(t *testing.T) {
	tests := []struct {
		text string
		want any
	}{
		{"true", true},
		{"false", false},
		{"True", "True"},
		{"0", int64(0)},
		{"-12", int64(-12)},
		{"9223372036854775808", uint64(9223372036854775808)},
		{"1e3", float64(1000)},
		{"0.25", 0.25},
		{"abc", "abc"},
		{"", ""},
		{"00123", int64(123)},
		{"1_0", "1_0"},
		{"0x1p4", "0x1p4"},
		{"-0X10", "-0X10"},
		{"1_000.5", "1_000.5"},
	}

	for _, tt := range tests {
		if got := tabula.InferScalar(tt.text); got != tt.want {
			t.Errorf("InferScalar(%q) = %#v, want %#v", tt.text, got, tt.want)
		}
	}
}
