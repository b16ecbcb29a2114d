// Package sqlrow stores flat records as rows of a SQL table.
//
// Every flattened key becomes a TEXT column named by the key. The first
// record written creates the table; later records must fit its columns.
// Null leaves are stored as NULL and read back as empty text.
package sqlrow

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/zoobzio/tabula"
)

// Writer inserts flattened values into one table.
// A Writer is not safe for concurrent use.
type Writer[T any] struct {
	db      *sql.DB
	table   string
	codec   tabula.TreeCodec
	headers []string
	columns map[string]struct{}
	insert  string
	count   int
}

// NewWriter returns a Writer for table. The table is created on the first write.
func NewWriter[T any](db *sql.DB, table string, codec tabula.TreeCodec) *Writer[T] {
	return &Writer[T]{db: db, table: table, codec: codec}
}

// Headers returns the table's columns, or nil before the first record.
func (w *Writer[T]) Headers() []string {
	return append([]string(nil), w.headers...)
}

// Count returns the number of rows inserted.
func (w *Writer[T]) Count() int { return w.count }

// Write encodes v and inserts it as one row.
func (w *Writer[T]) Write(ctx context.Context, v T) error {
	if w.codec == nil {
		return &tabula.RecordError{Record: w.count, Err: tabula.ErrNoCodec}
	}
	flat, err := tabula.Encode(w.codec, v)
	if err != nil {
		return &tabula.RecordError{Record: w.count, Err: err}
	}
	return w.WriteFlat(ctx, flat)
}

// WriteFlat inserts an already flattened record.
func (w *Writer[T]) WriteFlat(ctx context.Context, f *tabula.Flat) error {
	if err := w.writeFlat(ctx, f); err != nil {
		return &tabula.RecordError{Record: w.count, Err: err}
	}
	w.count++
	return nil
}

func (w *Writer[T]) writeFlat(ctx context.Context, f *tabula.Flat) error {
	for key, v := range f.All() {
		if !v.IsScalar() {
			return &tabula.LeafShapeError{Key: key, Kind: v.Kind()}
		}
	}

	if w.headers == nil {
		if err := w.createTable(ctx, f.Keys()); err != nil {
			return err
		}
	}

	var extra []string
	for key := range f.All() {
		if _, ok := w.columns[key]; !ok {
			extra = append(extra, key)
		}
	}
	if len(extra) > 0 {
		return &tabula.ExtraFieldsError{Keys: extra}
	}

	args := make([]any, len(w.headers))
	for i, h := range w.headers {
		v, ok := f.Get(h)
		if !ok || v.IsNull() {
			continue
		}
		args[i], _ = v.CanonicalText()
	}
	if _, err := w.db.ExecContext(ctx, w.insert, args...); err != nil {
		return fmt.Errorf("insert into %s: %w", w.table, err)
	}
	return nil
}

func (w *Writer[T]) createTable(ctx context.Context, headers []string) error {
	if len(headers) == 0 {
		return fmt.Errorf("%w: first record has no fields", tabula.ErrNoHeaders)
	}

	cols := make([]string, len(headers))
	marks := make([]string, len(headers))
	for i, h := range headers {
		cols[i] = quoteIdent(h)
		marks[i] = "?"
	}

	var ddl strings.Builder
	ddl.WriteString("CREATE TABLE IF NOT EXISTS ")
	ddl.WriteString(quoteIdent(w.table))
	ddl.WriteString(" (")
	for i, c := range cols {
		if i > 0 {
			ddl.WriteString(", ")
		}
		ddl.WriteString(c)
		ddl.WriteString(" TEXT")
	}
	ddl.WriteString(")")

	if _, err := w.db.ExecContext(ctx, ddl.String()); err != nil {
		return fmt.Errorf("create table %s: %w", w.table, err)
	}

	w.headers = headers
	w.columns = make(map[string]struct{}, len(headers))
	for _, h := range headers {
		w.columns[h] = struct{}{}
	}
	w.insert = fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(w.table), strings.Join(cols, ", "), strings.Join(marks, ", "))
	return nil
}

// quoteIdent quotes a SQL identifier, doubling embedded quotes.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// Reader decodes typed values from query results. Column names are the
// flattened keys.
type Reader[T any] struct {
	rows    *sql.Rows
	headers []string
	opts    []tabula.Option
	record  int
}

// NewReader wraps rows. The caller keeps ownership of rows and closes them,
// directly or through Reader.Close.
func NewReader[T any](rows *sql.Rows, opts ...tabula.Option) (*Reader[T], error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}
	if len(cols) == 0 {
		return nil, tabula.ErrNoHeaders
	}
	return &Reader[T]{rows: rows, headers: cols, opts: opts}, nil
}

// Headers returns a copy of the column names.
func (r *Reader[T]) Headers() []string {
	return append([]string(nil), r.headers...)
}

// Count returns the number of rows decoded successfully.
func (r *Reader[T]) Count() int { return r.record }

// ReadText reads the next row as a text record. It returns io.EOF after the last row.
func (r *Reader[T]) ReadText(ctx context.Context) (*tabula.Text, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !r.rows.Next() {
		if err := r.rows.Err(); err != nil {
			return nil, fmt.Errorf("iterate: %w", err)
		}
		return nil, io.EOF
	}

	cells := make([]sql.NullString, len(r.headers))
	ptrs := make([]any, len(cells))
	for i := range cells {
		ptrs[i] = &cells[i]
	}
	if err := r.rows.Scan(ptrs...); err != nil {
		return nil, fmt.Errorf("scan row: %w", err)
	}

	text := make([]string, len(cells))
	for i, c := range cells {
		text[i] = c.String
	}
	return tabula.NewText(r.headers, text), nil
}

// Read decodes the next row. It returns io.EOF after the last row.
func (r *Reader[T]) Read(ctx context.Context) (T, error) {
	var zero T
	rec, err := r.ReadText(ctx)
	if err != nil {
		return zero, err
	}
	v, err := tabula.Decode[T](rec, r.opts...)
	if err != nil {
		return zero, &tabula.RecordError{Record: r.record, Err: err}
	}
	r.record++
	return v, nil
}

// All iterates the remaining rows. Decode failures are yielded and
// iteration continues; scan and driver failures end it.
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
			var recErr *tabula.RecordError
			if err != nil && !errors.As(err, &recErr) {
				return
			}
		}
	}
}

// Close closes the underlying rows.
func (r *Reader[T]) Close() error {
	return r.rows.Close()
}

// ReadTable decodes every row of table.
func ReadTable[T any](ctx context.Context, db *sql.DB, table string, opts ...tabula.Option) ([]T, error) {
	rows, err := db.QueryContext(ctx, "SELECT * FROM "+quoteIdent(table))
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	r, err := NewReader[T](rows, opts...)
	if err != nil {
		rows.Close()
		return nil, err
	}
	defer r.Close()

	var out []T
	for v, err := range r.All(ctx) {
		if err != nil {
			return out, err
		}
		out = append(out, v)
	}
	return out, nil
}
