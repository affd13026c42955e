package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNameCodecEncodeDecodeInverse(t *testing.T) {
	nc := defaultNameCodec()

	for _, name := range []string{"abc", "abc_features", "models/abc", "a/b/c", "trailing/"} {
		key, err := nc.Encode(name)
		require.NoError(t, err, "encode %q", name)

		got, err := nc.Decode(key)
		require.NoError(t, err, "decode %q", key)
		assert.Equal(t, name, got)
	}
}

func TestNameCodecEncodeLayout(t *testing.T) {
	nc := defaultNameCodec()

	key, err := nc.Encode("abc_features")
	require.NoError(t, err)
	assert.Equal(t, "df_store/abc_features.parquet", key)

	assert.Equal(t, "s3://my-bucket/df_store/abc_features.parquet",
		nc.URI("my-bucket", key))
}

func TestNameCodecRejectsIllegalNames(t *testing.T) {
	nc := defaultNameCodec()

	for _, name := range []string{
		"",
		"/leading",
		"a//b",
		"already.parquet",
		"nested/df_store/evil",
		"ctrl\x01char",
	} {
		_, err := nc.Encode(name)
		assert.ErrorIs(t, err, ErrInvalidName, "name %q", name)
	}
}

func TestNameCodecInjective(t *testing.T) {
	nc := defaultNameCodec()
	names := []string{"a", "a/b", "ab", "b/a", "a/b/c", "abc"}

	seen := map[string]string{}
	for _, name := range names {
		key, err := nc.Encode(name)
		require.NoError(t, err)
		if prev, dup := seen[key]; dup {
			t.Fatalf("names %q and %q both encode to %q", prev, name, key)
		}
		seen[key] = name
	}
}

func TestNameCodecDecodeMalformedKeys(t *testing.T) {
	nc := defaultNameCodec()

	for _, key := range []string{
		"other_prefix/abc.parquet",
		"df_store/abc.csv",
		"df_store/.parquet",
		"abc.parquet",
		"df_store",
	} {
		_, err := nc.Decode(key)
		assert.ErrorIs(t, err, ErrMalformedKey, "key %q", key)
	}
}
