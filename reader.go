package tabula

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"iter"
	"reflect"
	"time"
)

// Reader decodes typed values from delimited text with a header row.
// A Reader is not safe for concurrent use.
type Reader[T any] struct {
	csv      *csv.Reader
	cfg      *config
	headers  []string
	record   int
	typeName string
}

// NewReader reads the header row from r and returns a Reader positioned at
// the first data record.
func NewReader[T any](r io.Reader, opts ...Option) (*Reader[T], error) {
	cfg := newConfig(opts)
	cr := csv.NewReader(r)
	cr.Comma = cfg.comma
	return newReader[T](cr, cfg)
}

// WrapReader is NewReader for an already configured csv.Reader. The comma
// option is ignored; the csv.Reader's own settings apply.
func WrapReader[T any](cr *csv.Reader, opts ...Option) (*Reader[T], error) {
	return newReader[T](cr, newConfig(opts))
}

func newReader[T any](cr *csv.Reader, cfg *config) (*Reader[T], error) {
	if cfg.treeDecode && cfg.codec == nil {
		return nil, ErrNoCodec
	}
	cr.FieldsPerRecord = -1

	headers, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoHeaders
	}
	if err != nil {
		return nil, err
	}

	r := &Reader[T]{
		csv:      cr,
		cfg:      cfg,
		headers:  headers,
		typeName: reflect.TypeFor[T]().String(),
	}

	mode := "direct"
	if cfg.treeDecode {
		mode = "tree:" + cfg.codec.ContentType()
	}
	emitReaderCreated(context.Background(), r.typeName, mode, len(headers))
	return r, nil
}

// Headers returns a copy of the header row.
func (r *Reader[T]) Headers() []string {
	return append([]string(nil), r.headers...)
}

// Count returns the number of records read successfully.
func (r *Reader[T]) Count() int { return r.record }

// ReadText reads the next row as a text record keyed by header. It returns
// io.EOF when the input is exhausted.
func (r *Reader[T]) ReadText(ctx context.Context) (*Text, error) {
	rec, err := r.next(ctx)
	if err != nil {
		return nil, err
	}
	r.record++
	return rec, nil
}

func (r *Reader[T]) next(ctx context.Context) (*Text, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cells, err := r.csv.Read()
	if err != nil {
		return nil, err
	}
	if len(cells) < len(r.headers) {
		i := len(cells)
		return nil, &ColumnError{Index: i, Name: r.headers[i], Record: r.record}
	}
	return NewText(r.headers, cells), nil
}

// Read decodes the next record. It returns io.EOF when the input is exhausted.
func (r *Reader[T]) Read(ctx context.Context) (T, error) {
	var zero T

	rec, err := r.next(ctx)
	if err != nil {
		return zero, err
	}

	start := time.Now()
	var out T
	err = r.decode(ctx, rec, &out)
	emitReadComplete(ctx, r.typeName, r.record, time.Since(start), err)
	if err != nil {
		return zero, &RecordError{Record: r.record, Err: err}
	}

	r.record++
	return out, nil
}

// All iterates the remaining records. Per-record failures are yielded and
// iteration continues; read failures of the underlying input end it.
func (r *Reader[T]) All(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for {
			v, err := r.Read(ctx)
			if errors.Is(err, io.EOF) {
				return
			}
			if !yield(v, err) {
				return
			}
			if err != nil && !recordScoped(err) {
				return
			}
		}
	}
}

func recordScoped(err error) bool {
	var recErr *RecordError
	var colErr *ColumnError
	var parseErr *csv.ParseError
	return errors.As(err, &recErr) || errors.As(err, &colErr) || errors.As(err, &parseErr)
}

func (r *Reader[T]) decode(ctx context.Context, rec *Text, out *T) error {
	start := time.Now()
	var err error
	if r.cfg.treeDecode {
		err = r.decodeTree(rec, out)
	} else {
		err = newDecoder(rec, r.cfg).decodeRoot(out)
	}
	emitDecodeComplete(ctx, r.typeName, rec.Len(), time.Since(start), err)
	return err
}

// decodeTree infers a scalar per cell, rebuilds the tree and binds it
// through the configured codec.
func (r *Reader[T]) decodeTree(rec *Text, out *T) error {
	flat := NewRecord[Value](rec.Len())
	for key, text := range rec.All() {
		flat.Set(key, InferValue(text))
	}
	tree, err := Unflatten(flat)
	if err != nil {
		return err
	}
	if tree.IsNull() {
		tree = Obj(nil)
	}
	return DecodeTree(r.cfg.codec, tree, out)
}
