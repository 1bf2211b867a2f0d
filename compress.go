package parquet

import (
	"bytes"
	"io"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/snappy"
	"github.com/klauspost/compress/zstd"
	"github.com/klauspost/pgzip"
	"github.com/pierrec/lz4/v4"
	"github.com/pkg/errors"
)

// Decompressor maps a compressed page body to its uncompressed bytes. The
// core trusts the returned length to equal uncompressedSize; a mismatch
// becomes DecompressionSizeMismatch, per spec.md §6.
type Decompressor func(src []byte, uncompressedSize int) ([]byte, error)

// CodecTable is a pluggable registry from CompressionCodec to
// Decompressor, per spec.md §9 ("the core never bundles codecs; it only
// names them"). UNCOMPRESSED never dispatches through this table.
type CodecTable map[CompressionCodec]Decompressor

// DefaultCodecTable registers the codecs that have a maintained pure-Go
// implementation anywhere in the retrieval pack (see DESIGN.md). LZO has
// none, so it is deliberately absent: a chunk referencing it fails with
// DecompressorMissing rather than being silently unsupported at the type
// level.
func DefaultCodecTable() CodecTable {
	return CodecTable{
		CodecSnappy: decompressSnappy,
		CodecGzip:   decompressGzip,
		CodecZstd:   decompressZstd,
		CodecBrotli: decompressBrotli,
		CodecLZ4:    decompressLZ4,
		CodecLZ4Raw: decompressLZ4Raw,
	}
}

func decompressSnappy(src []byte, uncompressedSize int) ([]byte, error) {
	out, err := snappy.Decode(make([]byte, 0, uncompressedSize), src)
	if err != nil {
		return nil, errors.Wrap(err, "snappy decode")
	}
	return out, nil
}

func decompressGzip(src []byte, uncompressedSize int) ([]byte, error) {
	r, err := pgzip.NewReader(bytes.NewReader(src))
	if err != nil {
		return nil, errors.Wrap(err, "gzip reader")
	}
	defer r.Close()
	out := make([]byte, 0, uncompressedSize)
	buf := bytes.NewBuffer(out)
	if _, err := io.Copy(buf, r); err != nil {
		return nil, errors.Wrap(err, "gzip decode")
	}
	return buf.Bytes(), nil
}

func decompressZstd(src []byte, uncompressedSize int) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, errors.Wrap(err, "zstd reader")
	}
	defer dec.Close()
	out, err := dec.DecodeAll(src, make([]byte, 0, uncompressedSize))
	if err != nil {
		return nil, errors.Wrap(err, "zstd decode")
	}
	return out, nil
}

func decompressBrotli(src []byte, uncompressedSize int) ([]byte, error) {
	r := brotli.NewReader(bytes.NewReader(src))
	out := make([]byte, 0, uncompressedSize)
	buf := bytes.NewBuffer(out)
	if _, err := io.Copy(buf, r); err != nil {
		return nil, errors.Wrap(err, "brotli decode")
	}
	return buf.Bytes(), nil
}

func decompressLZ4(src []byte, uncompressedSize int) ([]byte, error) {
	r := lz4.NewReader(bytes.NewReader(src))
	out := make([]byte, 0, uncompressedSize)
	buf := bytes.NewBuffer(out)
	if _, err := io.Copy(buf, r); err != nil {
		return nil, errors.Wrap(err, "lz4 decode")
	}
	return buf.Bytes(), nil
}

func decompressLZ4Raw(src []byte, uncompressedSize int) ([]byte, error) {
	dst := make([]byte, uncompressedSize)
	n, err := lz4.UncompressBlock(src, dst)
	if err != nil {
		return nil, errors.Wrap(err, "lz4 raw decode")
	}
	return dst[:n], nil
}

// decompressPage runs codec over src, enforcing the declared uncompressed
// size and surfacing DecompressorMissing for an unregistered codec,
// DecompressionFailed for a codec's own decode error (e.g. a corrupt
// stream), and DecompressionSizeMismatch specifically when the codec
// succeeds but returns a byte count other than uncompressedSize, per
// spec.md §6 and §7.
func decompressPage(table CodecTable, codec CompressionCodec, src []byte, uncompressedSize int) ([]byte, error) {
	if codec == CodecUncompressed {
		return src, nil
	}
	fn, ok := table[codec]
	if !ok {
		return nil, newErrf(ErrDecompressorMissing, "no decompressor registered for codec %d", codec)
	}
	out, err := fn(src, uncompressedSize)
	if err != nil {
		return nil, newErr(ErrDecompressionFailed, err)
	}
	if len(out) != uncompressedSize {
		return nil, newErrf(ErrDecompressionSizeMismatch, "codec %d returned %d bytes, expected %d", codec, len(out), uncompressedSize)
	}
	return out, nil
}
