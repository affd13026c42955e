package codec

import (
	"bytes"
	"errors"

	"github.com/xitongsys/parquet-go/source"
)

// byteFile adapts an in-memory blob to the parquet source interface for
// reading, the counterpart of writerfile on the write side.
type byteFile struct {
	data []byte
	r    *bytes.Reader
}

var _ source.ParquetFile = (*byteFile)(nil)

var errReadOnly = errors.New("parquet byte source is read-only")

func newByteFile(data []byte) *byteFile {
	return &byteFile{data: data, r: bytes.NewReader(data)}
}

func (f *byteFile) Read(p []byte) (int, error) {
	return f.r.Read(p)
}

func (f *byteFile) Seek(offset int64, whence int) (int64, error) {
	return f.r.Seek(offset, whence)
}

func (f *byteFile) Write(p []byte) (int, error) {
	return 0, errReadOnly
}

func (f *byteFile) Close() error { return nil }

func (f *byteFile) Open(name string) (source.ParquetFile, error) {
	return newByteFile(f.data), nil
}

func (f *byteFile) Create(name string) (source.ParquetFile, error) {
	return nil, errReadOnly
}
