package postgres

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditRecorder_CompressionRoundTrip(t *testing.T) {
	rec, err := NewAuditRecorder(nil)
	require.NoError(t, err)

	small := []byte(`{"number":"VND-2026-00001"}`)
	plain, compressed, algo := rec.encode(small)
	assert.Equal(t, CompressionNone, algo)
	assert.Nil(t, compressed)
	got, err := rec.decode(plain, compressed, algo)
	require.NoError(t, err)
	assert.Equal(t, small, got)

	large := []byte(`{"notes":"` + strings.Repeat("a", DefaultCompressThreshold) + `"}`)
	plain, compressed, algo = rec.encode(large)
	assert.Equal(t, CompressionZstd, algo)
	assert.Nil(t, plain)
	assert.Less(t, len(compressed), len(large))
	got, err = rec.decode(plain, compressed, algo)
	require.NoError(t, err)
	assert.Equal(t, large, got)
}
