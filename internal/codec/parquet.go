// Package codec serializes tables to and from compressed Parquet blobs.
package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	writerfile "github.com/xitongsys/parquet-go-source/writerfile"
	"github.com/xitongsys/parquet-go/common"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/reader"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/workbench/tablestore/pkg/table"
)

const (
	rootName    = "parquet_go_root"
	parallelism = 4
)

// ErrNoColumns is returned when encoding a table without columns; there is
// no schema to serialize.
var ErrNoColumns = errors.New("table has no columns")

// Encode writes the table as a snappy-compressed Parquet blob. Column
// names, order, and values survive a round trip through Decode exactly
// (timestamps at millisecond precision).
func Encode(t *table.Table) ([]byte, error) {
	if t == nil || t.IsEmpty() {
		return nil, ErrNoColumns
	}

	buf := &bytes.Buffer{}
	pfw := writerfile.NewWriterFile(buf)
	pw, err := writer.NewJSONWriter(buildSchema(t), pfw, parallelism)
	if err != nil {
		return nil, fmt.Errorf("create parquet writer: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for i := 0; i < t.NumRows(); i++ {
		row := make(map[string]any, t.NumCols())
		for _, c := range t.Cols() {
			row[c.Name] = cell(c, i)
		}
		rowJSON, err := json.Marshal(row)
		if err != nil {
			_ = pw.WriteStop()
			_ = pfw.Close()
			return nil, fmt.Errorf("marshal row %d: %w", i, err)
		}
		if err := pw.Write(string(rowJSON)); err != nil {
			_ = pw.WriteStop()
			_ = pfw.Close()
			return nil, fmt.Errorf("write row %d: %w", i, err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		_ = pfw.Close()
		return nil, fmt.Errorf("finalize parquet: %w", err)
	}
	if err := pfw.Close(); err != nil {
		return nil, fmt.Errorf("close parquet writer: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode reads a Parquet blob back into a table. Column order follows the
// file footer, so it matches the encoded order.
func Decode(data []byte) (*table.Table, error) {
	pr, err := reader.NewParquetColumnReader(newByteFile(data), parallelism)
	if err != nil {
		return nil, fmt.Errorf("open parquet blob: %w", err)
	}
	defer pr.ReadStop()

	numRows := pr.GetNumRows()
	elems := pr.Footer.GetSchema()
	if len(elems) == 0 {
		return nil, fmt.Errorf("parquet blob has no schema")
	}

	var cols []table.Column
	for _, el := range elems[1:] {
		if el.GetNumChildren() > 0 {
			return nil, fmt.Errorf("nested column %q is not supported", el.GetName())
		}
		col, err := readColumn(pr, el, numRows)
		if err != nil {
			return nil, err
		}
		cols = append(cols, col)
	}
	return table.New(cols...)
}

func readColumn(pr *reader.ParquetReader, el *parquet.SchemaElement, numRows int64) (table.Column, error) {
	name := el.GetName()
	var vals []any
	if numRows > 0 {
		path := common.ReformPathStr(rootName + "." + name)
		read, _, _, err := pr.ReadColumnByPath(path, numRows)
		if err != nil {
			return table.Column{}, fmt.Errorf("read column %q: %w", name, err)
		}
		vals = read
	}

	switch el.GetType() {
	case parquet.Type_BOOLEAN:
		out := make([]bool, 0, len(vals))
		for i, v := range vals {
			b, ok := v.(bool)
			if !ok {
				return table.Column{}, cellTypeErr(name, i, v)
			}
			out = append(out, b)
		}
		return table.Bools(name, out), nil
	case parquet.Type_INT64:
		if el.GetConvertedType() == parquet.ConvertedType_TIMESTAMP_MILLIS {
			out := make([]time.Time, 0, len(vals))
			for i, v := range vals {
				ms, ok := v.(int64)
				if !ok {
					return table.Column{}, cellTypeErr(name, i, v)
				}
				out = append(out, time.UnixMilli(ms).UTC())
			}
			return table.Times(name, out), nil
		}
		out := make([]int64, 0, len(vals))
		for i, v := range vals {
			n, ok := v.(int64)
			if !ok {
				return table.Column{}, cellTypeErr(name, i, v)
			}
			out = append(out, n)
		}
		return table.Ints(name, out), nil
	case parquet.Type_DOUBLE:
		out := make([]float64, 0, len(vals))
		for i, v := range vals {
			f, ok := v.(float64)
			if !ok {
				return table.Column{}, cellTypeErr(name, i, v)
			}
			out = append(out, f)
		}
		return table.Floats(name, out), nil
	case parquet.Type_BYTE_ARRAY:
		out := make([]string, 0, len(vals))
		for i, v := range vals {
			s, ok := v.(string)
			if !ok {
				return table.Column{}, cellTypeErr(name, i, v)
			}
			out = append(out, s)
		}
		return table.Strings(name, out), nil
	}
	return table.Column{}, fmt.Errorf("column %q has unsupported parquet type %v", name, el.GetType())
}

func cellTypeErr(name string, i int, v any) error {
	return fmt.Errorf("column %q row %d: unexpected value type %T", name, i, v)
}

func cell(c table.Column, i int) any {
	if c.Kind() == table.Time {
		return c.TimeAt(i).UnixMilli()
	}
	return c.Value(i)
}

// buildSchema renders the parquet-go JSON schema for the table. All fields
// are REQUIRED: table cells are always set.
func buildSchema(t *table.Table) string {
	fields := make([]map[string]string, 0, t.NumCols())
	for _, c := range t.Cols() {
		fields = append(fields, map[string]string{
			"Tag": fmt.Sprintf("name=%s, %s, repetitiontype=REQUIRED", c.Name, fieldType(c.Kind())),
		})
	}
	out := map[string]any{
		"Tag":    fmt.Sprintf("name=%s, repetitiontype=REQUIRED", rootName),
		"Fields": fields,
	}
	b, _ := json.Marshal(out)
	return string(b)
}

func fieldType(k table.Kind) string {
	switch k {
	case table.Bool:
		return "type=BOOLEAN"
	case table.Int:
		return "type=INT64"
	case table.Float:
		return "type=DOUBLE"
	case table.Time:
		return "type=INT64, convertedtype=TIMESTAMP_MILLIS"
	default:
		return "type=BYTE_ARRAY, convertedtype=UTF8"
	}
}
