package tabula

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"reflect"
	"time"
)

// Writer flattens typed values into delimited text. The first record fixes
// the header row; later records are laid out against it. A Writer is not
// safe for concurrent use.
type Writer[T any] struct {
	csv      *csv.Writer
	codec    TreeCodec
	headers  []string
	columns  map[string]struct{}
	count    int
	typeName string
}

// NewWriter returns a Writer that encodes values through codec.
func NewWriter[T any](w io.Writer, codec TreeCodec, opts ...Option) *Writer[T] {
	cfg := newConfig(opts)
	cw := csv.NewWriter(w)
	cw.Comma = cfg.comma
	return newWriter[T](cw, codec)
}

// WrapWriter is NewWriter for an already configured csv.Writer.
func WrapWriter[T any](cw *csv.Writer, codec TreeCodec) *Writer[T] {
	return newWriter[T](cw, codec)
}

func newWriter[T any](cw *csv.Writer, codec TreeCodec) *Writer[T] {
	w := &Writer[T]{
		csv:      cw,
		codec:    codec,
		typeName: reflect.TypeFor[T]().String(),
	}
	emitWriterCreated(context.Background(), w.contentType(), w.typeName)
	return w
}

func (w *Writer[T]) contentType() string {
	if w.codec == nil {
		return ""
	}
	return w.codec.ContentType()
}

// Headers returns a copy of the header row, or nil before the first record.
func (w *Writer[T]) Headers() []string {
	return append([]string(nil), w.headers...)
}

// Count returns the number of records written.
func (w *Writer[T]) Count() int { return w.count }

// Write encodes v to a tree, flattens it and writes one row.
func (w *Writer[T]) Write(ctx context.Context, v T) error {
	start := time.Now()
	err := w.write(v)
	emitWriteComplete(ctx, w.contentType(), w.typeName, w.count, time.Since(start), err)
	if err != nil {
		return &RecordError{Record: w.count, Err: err}
	}
	w.count++
	return nil
}

func (w *Writer[T]) write(v T) error {
	if w.codec == nil {
		return ErrNoCodec
	}
	tree, err := EncodeTree(w.codec, v)
	if err != nil {
		return err
	}
	return w.writeFlat(Flatten(tree))
}

// WriteFlat writes an already flattened record.
func (w *Writer[T]) WriteFlat(ctx context.Context, f *Flat) error {
	start := time.Now()
	err := w.writeFlat(f)
	emitWriteComplete(ctx, w.contentType(), w.typeName, w.count, time.Since(start), err)
	if err != nil {
		return &RecordError{Record: w.count, Err: err}
	}
	w.count++
	return nil
}

func (w *Writer[T]) writeFlat(f *Flat) error {
	for key, v := range f.All() {
		if !v.IsScalar() {
			return &LeafShapeError{Key: key, Kind: v.Kind()}
		}
	}

	if w.headers == nil {
		keys := f.Keys()
		if len(keys) == 0 {
			return fmt.Errorf("%w: first record has no fields", ErrNoHeaders)
		}
		w.headers = keys
		w.columns = make(map[string]struct{}, len(w.headers))
		for _, h := range w.headers {
			w.columns[h] = struct{}{}
		}
		if err := w.csv.Write(w.headers); err != nil {
			return err
		}
		emitHeaderWritten(context.Background(), w.typeName, len(w.headers))
	}

	var extra []string
	for key := range f.All() {
		if _, ok := w.columns[key]; !ok {
			extra = append(extra, key)
		}
	}
	if len(extra) > 0 {
		return &ExtraFieldsError{Keys: extra}
	}

	row := make([]string, len(w.headers))
	for i, h := range w.headers {
		if v, ok := f.Get(h); ok {
			row[i], _ = v.CanonicalText()
		}
	}
	return w.csv.Write(row)
}

// Flush writes buffered rows to the underlying writer.
func (w *Writer[T]) Flush() error {
	w.csv.Flush()
	return w.csv.Error()
}

// WriteAll writes items to out and flushes, returning the number of records written.
func WriteAll[T any](out io.Writer, codec TreeCodec, items []T, opts ...Option) (int, error) {
	w := NewWriter[T](out, codec, opts...)
	ctx := context.Background()
	for _, item := range items {
		if err := w.Write(ctx, item); err != nil {
			return w.Count(), err
		}
	}
	if err := w.Flush(); err != nil {
		return w.Count(), err
	}
	return w.Count(), nil
}
