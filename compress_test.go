package parquet

import (
	"bytes"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/snappy"
	"github.com/klauspost/compress/zstd"
	"github.com/klauspost/pgzip"
	"github.com/pierrec/lz4/v4"
	"github.com/stretchr/testify/require"
)

func TestDecompressPageUncompressedPassesThrough(t *testing.T) {
	src := []byte{1, 2, 3}
	out, err := decompressPage(nil, CodecUncompressed, src, 3)
	require.NoError(t, err)
	require.Equal(t, src, out)
}

func TestDecompressPageMissingCodecErrors(t *testing.T) {
	_, err := decompressPage(CodecTable{}, CodecSnappy, []byte{1}, 1)
	require.Error(t, err)
	var pErr *Error
	require.ErrorAs(t, err, &pErr)
	require.Equal(t, ErrDecompressorMissing, pErr.Kind)
}

func TestDecompressPageSnappyRoundTrip(t *testing.T) {
	plain := []byte("the quick brown fox jumps over the lazy dog")
	table := DefaultCodecTable()
	compressed := snappy.Encode(nil, plain)

	out, err := decompressPage(table, CodecSnappy, compressed, len(plain))
	require.NoError(t, err)
	require.Equal(t, plain, out)
}

func TestDecompressPageGzipRoundTrip(t *testing.T) {
	plain := []byte("hello parquet world")
	var buf bytes.Buffer
	w := pgzip.NewWriter(&buf)
	_, err := w.Write(plain)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	table := DefaultCodecTable()
	out, err := decompressPage(table, CodecGzip, buf.Bytes(), len(plain))
	require.NoError(t, err)
	require.Equal(t, plain, out)
}

func TestDecompressPageZstdRoundTrip(t *testing.T) {
	plain := []byte("zstandard compressed payload")
	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	compressed := enc.EncodeAll(plain, nil)
	require.NoError(t, enc.Close())

	table := DefaultCodecTable()
	out, err := decompressPage(table, CodecZstd, compressed, len(plain))
	require.NoError(t, err)
	require.Equal(t, plain, out)
}

func TestDecompressPageBrotliRoundTrip(t *testing.T) {
	plain := []byte("brotli compressed payload")
	var buf bytes.Buffer
	w := brotli.NewWriter(&buf)
	_, err := w.Write(plain)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	table := DefaultCodecTable()
	out, err := decompressPage(table, CodecBrotli, buf.Bytes(), len(plain))
	require.NoError(t, err)
	require.Equal(t, plain, out)
}

func TestDecompressPageLZ4RawRoundTrip(t *testing.T) {
	plain := []byte("lz4 raw block payload")
	dst := make([]byte, len(plain)*2)
	n, err := lz4.CompressBlock(plain, dst, nil)
	require.NoError(t, err)
	require.NotZero(t, n)

	table := DefaultCodecTable()
	out, err := decompressPage(table, CodecLZ4Raw, dst[:n], len(plain))
	require.NoError(t, err)
	require.Equal(t, plain, out)
}

func TestDecompressPageCorruptStreamErrors(t *testing.T) {
	table := DefaultCodecTable()
	_, err := decompressPage(table, CodecGzip, []byte{0xde, 0xad, 0xbe, 0xef}, 10)
	require.Error(t, err)
	var pErr *Error
	require.ErrorAs(t, err, &pErr)
	require.Equal(t, ErrDecompressionFailed, pErr.Kind)
}

func TestDecompressPageSizeMismatchErrors(t *testing.T) {
	plain := []byte("size mismatch payload")
	compressed := snappy.Encode(nil, plain)

	table := DefaultCodecTable()
	_, err := decompressPage(table, CodecSnappy, compressed, len(plain)+1)
	require.Error(t, err)
	var pErr *Error
	require.ErrorAs(t, err, &pErr)
	require.Equal(t, ErrDecompressionSizeMismatch, pErr.Kind)
}
