package postgres

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChangesCodec_CompressesAboveThreshold(t *testing.T) {
	codec, err := newChangesCodec(64)
	require.NoError(t, err)

	small := map[string]any{"id_um": "A1"}
	plain, compressed, algo, err := codec.encode(small)
	require.NoError(t, err)
	assert.Equal(t, CompressionNone, algo)
	assert.NotEmpty(t, plain)
	assert.Nil(t, compressed)

	large := map[string]any{"codes": strings.Repeat("CG1234,", 100)}
	plain, compressed, algo, err = codec.encode(large)
	require.NoError(t, err)
	assert.Equal(t, CompressionZstd, algo)
	assert.Nil(t, plain)
	assert.Less(t, len(compressed), 700)

	back, err := codec.decode(plain, compressed, algo)
	require.NoError(t, err)
	assert.Equal(t, large, back)
}

func TestChangesCodec_NilChanges(t *testing.T) {
	codec, err := newChangesCodec(0)
	require.NoError(t, err)
	assert.Equal(t, DefaultCompressThreshold, codec.threshold)

	plain, compressed, algo, err := codec.encode(nil)
	require.NoError(t, err)
	assert.Nil(t, plain)
	assert.Nil(t, compressed)
	assert.Equal(t, CompressionNone, algo)

	back, err := codec.decode(nil, nil, CompressionNone)
	require.NoError(t, err)
	assert.Nil(t, back)
}
