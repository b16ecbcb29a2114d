package tabula

// Option configures readers, writers and decoders.
type Option func(*config)

type config struct {
	comma       rune
	tagName     string
	strictOrder bool
	codec       TreeCodec
	treeDecode  bool
}

func newConfig(opts []Option) *config {
	cfg := &config{
		comma:   ',',
		tagName: "json",
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// WithComma sets the field delimiter of delimited-text readers and writers.
func WithComma(r rune) Option {
	return func(c *config) { c.comma = r }
}

// WithTagName selects the struct tag used to name fields when decoding.
// The default is "json", matching the names the json codec writes.
func WithTagName(name string) Option {
	return func(c *config) { c.tagName = name }
}

// WithStrictKeyOrder requires the index children of every sequence to appear
// in ascending order in the record, failing with ErrUnsortedKeys otherwise.
func WithStrictKeyOrder() Option {
	return func(c *config) { c.strictOrder = true }
}

// WithCodec sets the codec used by the tree decode mode.
func WithCodec(tc TreeCodec) Option {
	return func(c *config) { c.codec = tc }
}

// WithTreeDecode makes readers infer scalar types from text, unflatten each
// record into a tree and bind it through the configured codec instead of
// decoding directly. Text that looks numeric becomes a number in this mode,
// so string fields holding digits fail to bind.
func WithTreeDecode() Option {
	return func(c *config) { c.treeDecode = true }
}
