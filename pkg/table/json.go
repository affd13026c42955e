package table

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// FromJSON reads a table from a JSON object of the form
// {"col": [v, ...], ...}. Column order follows key order in the document.
// Array element types must be homogeneous per column: bools, numbers
// (integers become int columns, otherwise float), or strings.
func FromJSON(r io.Reader) (*Table, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("read json: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("expected a json object, got %v", tok)
	}

	var cols []Column
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("read json: %w", err)
		}
		name, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected a column name, got %v", tok)
		}
		var raw []any
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("column %q: %w", name, err)
		}
		col, err := inferColumn(name, raw)
		if err != nil {
			return nil, err
		}
		cols = append(cols, col)
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("read json: %w", err)
	}
	return New(cols...)
}

func inferColumn(name string, raw []any) (Column, error) {
	if len(raw) == 0 {
		return Strings(name, nil), nil
	}
	switch raw[0].(type) {
	case bool:
		out := make([]bool, len(raw))
		for i, v := range raw {
			b, ok := v.(bool)
			if !ok {
				return Column{}, mixedErr(name, i, v)
			}
			out[i] = b
		}
		return Bools(name, out), nil
	case string:
		out := make([]string, len(raw))
		for i, v := range raw {
			s, ok := v.(string)
			if !ok {
				return Column{}, mixedErr(name, i, v)
			}
			out[i] = s
		}
		return Strings(name, out), nil
	case json.Number:
		integral := true
		nums := make([]json.Number, len(raw))
		for i, v := range raw {
			n, ok := v.(json.Number)
			if !ok {
				return Column{}, mixedErr(name, i, v)
			}
			nums[i] = n
			if _, err := n.Int64(); err != nil {
				integral = false
			}
		}
		if integral {
			out := make([]int64, len(nums))
			for i, n := range nums {
				out[i], _ = n.Int64()
			}
			return Ints(name, out), nil
		}
		out := make([]float64, len(nums))
		for i, n := range nums {
			f, err := n.Float64()
			if err != nil {
				return Column{}, fmt.Errorf("column %q row %d: %w", name, i, err)
			}
			out[i] = f
		}
		return Floats(name, out), nil
	}
	return Column{}, fmt.Errorf("column %q: unsupported value %v", name, raw[0])
}

func mixedErr(name string, i int, v any) error {
	return fmt.Errorf("column %q row %d: mixed value types (%T)", name, i, v)
}

// WriteJSON renders the table as a JSON object of column arrays, keeping
// column order. Timestamps are rendered as RFC 3339 strings.
func (t *Table) WriteJSON(w io.Writer) error {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for ci, c := range t.cols {
		if ci > 0 {
			buf.WriteByte(',')
		}
		nameJSON, err := json.Marshal(c.Name)
		if err != nil {
			return err
		}
		buf.Write(nameJSON)
		buf.WriteByte(':')
		buf.WriteByte('[')
		for i := 0; i < c.Len(); i++ {
			if i > 0 {
				buf.WriteByte(',')
			}
			var v any = c.Value(i)
			if ts, ok := v.(time.Time); ok {
				v = ts.UTC().Format(time.RFC3339Nano)
			}
			cell, err := json.Marshal(v)
			if err != nil {
				return err
			}
			buf.Write(cell)
		}
		buf.WriteByte(']')
	}
	buf.WriteByte('}')
	buf.WriteByte('\n')
	_, err := w.Write(buf.Bytes())
	return err
}
