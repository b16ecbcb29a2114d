// Package tabula converts between hierarchical data and flat, single-level
// records suited to row and column formats such as delimited text and SQL rows.
//
// The package offers a generic value tree with lossless flatten and unflatten
// operations, a structural decoder that binds flat text records directly into
// typed Go values, and Reader/Writer adapters over encoding/csv.
//
// # Path Encoding
//
// Every scalar leaf of a tree is keyed by its path from the root. Segments are
// joined with a double underscore; array positions are written as idx-N:
//
//	{"user": {"address": {"city": "Oslo"}}}   -> user__address__city = Oslo
//	{"tags": ["a", "b", "c"]}                  -> tags__idx-0 = a
//	                                              tags__idx-1 = b
//	                                              tags__idx-2 = c
//
// A field literally named like an index token (for example "idx-3") reads back
// as an array index.
//
// # Flatten and Unflatten
//
//	flat := tabula.Flatten(tree)          // ordered key/value leaves
//	tree, err := tabula.Unflatten(flat)   // rebuilds the tree
//
// Empty arrays and objects have no leaves, so they vanish through a round
// trip. Unflatten reports conflicting container kinds at a prefix, array
// indices that skip ahead, and composite values where a scalar is required.
//
// # Structural Decoding
//
// Decode binds a text record straight into a typed value without building a
// tree. The target type drives interpretation, so "00123" stays text for a
// string field and parses as 123 for an integer field:
//
//	type User struct {
//	    Name    string   `json:"name"`
//	    Age     int      `json:"age"`
//	    Tags    []string `json:"tags"`
//	    Address *Address `json:"address"`
//	}
//
//	rec := tabula.NewText(headers, cells)
//	user, err := tabula.Decode[User](rec)
//
// Pointers are nil when no key at or below their prefix has text. Slices
// collect idx-N children, which must run contiguously from zero. Interface
// values infer bool, integer, float or string from the text.
//
// # Reader and Writer
//
//	w := tabula.NewWriter[User](out, json.New())
//	_ = w.Write(ctx, user)    // first record fixes the header row
//	_ = w.Flush()
//
//	r, _ := tabula.NewReader[User](in)
//	for user, err := range r.All(ctx) {
//	    ...
//	}
//
// Writers turn values into trees through a TreeCodec. The tree decode mode of
// the Reader (WithTreeDecode) infers scalar types per cell, unflattens the
// record and binds the tree through the codec instead.
//
// # Override Interfaces
//
// Types can bypass reflection by implementing Unmarshaler, which receives a
// Decoder positioned at the value's prefix.
//
// # Codec Providers
//
// The following codec implementations are available as subpackages:
//
//   - json - JSON encoding (application/json)
//   - yaml - YAML encoding (application/yaml)
//   - msgpack - MessagePack encoding (application/msgpack)
//   - bson - BSON encoding (application/bson)
//
// Package sqlrow stores flat records as rows of a SQL table.
package tabula
