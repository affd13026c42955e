package dataset

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// defaultPrefix is the namespace under which all managed objects live.
	// It matches the layout of existing stored data; changing it orphans
	// previously written tables.
	defaultPrefix = "df_store/"
	defaultExt    = ".parquet"
)

var (
	// ErrInvalidName rejects logical names that would collide with the
	// key layout or fail to round-trip through Decode.
	ErrInvalidName = errors.New("invalid dataset name")

	// ErrMalformedKey marks a key under the namespace that was not
	// written by this store. Enumeration skips such keys.
	ErrMalformedKey = errors.New("malformed storage key")
)

// NameCodec maps logical dataset names to storage keys and back. Encode
// and Decode are inverses over the legal name alphabet.
type NameCodec struct {
	Prefix string
	Ext    string
}

func defaultNameCodec() NameCodec {
	return NameCodec{Prefix: defaultPrefix, Ext: defaultExt}
}

// Encode maps a logical name to its storage key: prefix + name + ext with
// repeated separators collapsed.
func (nc NameCodec) Encode(name string) (string, error) {
	if err := nc.checkName(name); err != nil {
		return "", err
	}
	return collapseSlashes(nc.Prefix + name + nc.Ext), nil
}

// Decode recovers the logical name from a storage key. Keys that lack the
// namespace prefix or the extension belong to foreign objects and yield
// ErrMalformedKey.
func (nc NameCodec) Decode(key string) (string, error) {
	if !strings.HasPrefix(key, nc.Prefix) {
		return "", fmt.Errorf("%w: %q lacks prefix %q", ErrMalformedKey, key, nc.Prefix)
	}
	rest := strings.TrimPrefix(key, nc.Prefix)
	if !strings.HasSuffix(rest, nc.Ext) {
		return "", fmt.Errorf("%w: %q lacks extension %q", ErrMalformedKey, key, nc.Ext)
	}
	name := strings.TrimSuffix(rest, nc.Ext)
	if name == "" {
		return "", fmt.Errorf("%w: %q has an empty name", ErrMalformedKey, key)
	}
	return name, nil
}

// URI renders the display form of a stored object.
func (nc NameCodec) URI(bucket, key string) string {
	return "s3://" + bucket + "/" + key
}

// checkName enforces the legal name alphabet. Leading or doubled
// separators are rejected rather than normalized so that Encode stays
// injective; extension or prefix lookalikes are rejected because Decode
// could not tell them apart from the layout's own markers.
func (nc NameCodec) checkName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: empty name", ErrInvalidName)
	case strings.HasPrefix(name, "/"):
		return fmt.Errorf("%w: %q has a leading separator", ErrInvalidName, name)
	case strings.Contains(name, "//"):
		return fmt.Errorf("%w: %q has doubled separators", ErrInvalidName, name)
	case strings.HasSuffix(name, nc.Ext):
		return fmt.Errorf("%w: %q carries the reserved extension %q", ErrInvalidName, name, nc.Ext)
	case strings.Contains(name, nc.Prefix):
		return fmt.Errorf("%w: %q contains the namespace prefix %q", ErrInvalidName, name, nc.Prefix)
	}
	for _, r := range name {
		if r < 0x20 || r == 0x7f {
			return fmt.Errorf("%w: %q contains control characters", ErrInvalidName, name)
		}
	}
	return nil
}

func collapseSlashes(p string) string {
	for strings.Contains(p, "//") {
		p = strings.ReplaceAll(p, "//", "/")
	}
	return p
}
