// Package testing provides test utilities for tabula.
package testing

import (
	"github.com/zoobzio/tabula"
)

// Address is a nested fixture type.
type Address struct {
	Street string `json:"street" yaml:"street" bson:"street"`
	City   string `json:"city" yaml:"city" bson:"city"`
}

// User is a fixture type exercising scalars, a sequence and an optional
// nested struct. Tags are set for every codec so all of them write the
// same flat keys.
type User struct {
	ID      int64    `json:"id" yaml:"id" bson:"id"`
	Name    string   `json:"name" yaml:"name" bson:"name"`
	Active  bool     `json:"active" yaml:"active" bson:"active"`
	Score   float64  `json:"score" yaml:"score" bson:"score"`
	Tags    []string `json:"tags" yaml:"tags" bson:"tags"`
	Address *Address `json:"address" yaml:"address" bson:"address"`
}

// UserHeaders is the header row written for User values.
var UserHeaders = []string{
	"id", "name", "active", "score",
	"tags__idx-0", "tags__idx-1",
	"address__street", "address__city",
}

// Users returns records that share one flat shape, so they survive a
// delimited-text round trip unchanged.
func Users() []User {
	return []User{
		{
			ID: 1, Name: "Alice", Active: true, Score: 9.5,
			Tags:    []string{"admin", "ops"},
			Address: &Address{Street: "1 Main St", City: "Oslo"},
		},
		{
			ID: 2, Name: "Bob", Active: false, Score: 7.25,
			Tags:    []string{"dev", "qa"},
			Address: &Address{Street: "2 High St", City: "Bergen"},
		},
		{
			ID: 3, Name: "Carol", Active: true, Score: 10,
			Tags:    []string{"dev", "lead"},
			Address: &Address{Street: "3 Low Rd", City: "Tromso"},
		},
	}
}

// Text builds a text record from alternating keys and values.
func Text(kv ...string) *tabula.Text {
	if len(kv)%2 != 0 {
		panic("tabulatest.Text: odd number of arguments")
	}
	rec := tabula.NewRecord[string](len(kv) / 2)
	for i := 0; i < len(kv); i += 2 {
		rec.Set(kv[i], kv[i+1])
	}
	return rec
}

// Member is one name/value pair for Object.
type Member struct {
	Name  string
	Value tabula.Value
}

// M is shorthand for a Member.
func M(name string, v tabula.Value) Member {
	return Member{Name: name, Value: v}
}

// Object builds an object value with members in the given order.
func Object(members ...Member) tabula.Value {
	obj := tabula.NewObject()
	for _, m := range members {
		obj.Set(m.Name, m.Value)
	}
	return tabula.Obj(obj)
}

// UserTree is the tree the json codec produces for Users()[0].
func UserTree() tabula.Value {
	return Object(
		M("id", tabula.Int(1)),
		M("name", tabula.String("Alice")),
		M("active", tabula.Bool(true)),
		M("score", tabula.Num("9.5")),
		M("tags", tabula.Array(tabula.String("admin"), tabula.String("ops"))),
		M("address", Object(
			M("street", tabula.String("1 Main St")),
			M("city", tabula.String("Oslo")),
		)),
	)
}
