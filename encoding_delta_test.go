package parquet

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

// encodeDeltaBinaryPackedForTest builds a minimal single-block,
// single-miniblock DELTA_BINARY_PACKED stream for the given values,
// mirroring the layout decodeDeltaBinaryPacked expects.
func encodeDeltaBinaryPackedForTest(t *testing.T, values []int64) []byte {
	t.Helper()
	require.NotEmpty(t, values)

	blockSize := uint64(8)
	miniblocksPerBlock := uint64(1)
	valuesPerMiniblock := 8

	deltas := make([]int64, 0, len(values)-1)
	for i := 1; i < len(values); i++ {
		deltas = append(deltas, values[i]-values[i-1])
	}
	minDelta := int64(0)
	if len(deltas) > 0 {
		minDelta = deltas[0]
		for _, d := range deltas[1:] {
			if d < minDelta {
				minDelta = d
			}
		}
	}
	adjusted := make([]uint32, valuesPerMiniblock)
	maxAdjusted := uint32(0)
	for i, d := range deltas {
		adjusted[i] = uint32(d - minDelta)
		if adjusted[i] > maxAdjusted {
			maxAdjusted = adjusted[i]
		}
	}
	width := byte(0)
	for (uint32(1) << width) <= maxAdjusted {
		width++
	}

	var buf []byte
	buf = binary.AppendUvarint(buf, blockSize)
	buf = binary.AppendUvarint(buf, miniblocksPerBlock)
	buf = binary.AppendUvarint(buf, uint64(len(values)))
	buf = appendZigzagVarint(buf, values[0])
	buf = appendZigzagVarint(buf, minDelta)
	buf = append(buf, width)
	buf = append(buf, packBitsForTest(adjusted, uint(width))...)
	return buf
}

func appendZigzagVarint(buf []byte, n int64) []byte {
	return binary.AppendUvarint(buf, zigzagEncode64(n))
}

func TestDecodeDeltaBinaryPackedRoundTrip(t *testing.T) {
	values := []int64{100, 105, 103, 200, 195, 195, 195, 300}
	encoded := encodeDeltaBinaryPackedForTest(t, values)

	decoded, err := decodeDeltaBinaryPacked(encoded, len(values))
	require.NoError(t, err)
	require.Equal(t, values, decoded)
}

func TestDecodeDeltaBinaryPackedNegativeDeltas(t *testing.T) {
	values := []int64{50, 40, 30, 20, 10, 0, -10, -20}
	encoded := encodeDeltaBinaryPackedForTest(t, values)

	decoded, err := decodeDeltaBinaryPacked(encoded, len(values))
	require.NoError(t, err)
	require.Equal(t, values, decoded)
}

func TestDecodeDeltaBinaryPackedSingleValue(t *testing.T) {
	var buf []byte
	buf = binary.AppendUvarint(buf, 8)
	buf = binary.AppendUvarint(buf, 1)
	buf = binary.AppendUvarint(buf, 1)
	buf = appendZigzagVarint(buf, 42)

	decoded, err := decodeDeltaBinaryPacked(buf, 1)
	require.NoError(t, err)
	require.Equal(t, []int64{42}, decoded)
}

// packBits64ForTest packs values LSB-first at bitWidth bits each, like
// packBitsForTest but for widths that don't fit uint32 (INT64 miniblocks
// can need up to 64 bits per spec.md §4.6). Widths above 56 would need
// finer-grained flushing than this test helper bothers with.
func packBits64ForTest(values []uint64, bitWidth uint) []byte {
	var bitBuf uint64
	var bitCount uint
	var out []byte
	for _, v := range values {
		bitBuf |= v << bitCount
		bitCount += bitWidth
		for bitCount >= 8 {
			out = append(out, byte(bitBuf))
			bitBuf >>= 8
			bitCount -= 8
		}
	}
	if bitCount > 0 {
		out = append(out, byte(bitBuf))
	}
	return out
}

func TestDecodeDeltaBinaryPackedWideMiniblockBitWidth(t *testing.T) {
	// A delta of ~6e9 needs 33 bits, past unpackBits' 32-bit output; the
	// miniblock decode must use the 64-bit-safe unpack path or this delta
	// gets silently truncated.
	values := []int64{0, 6000000000, 6000000001}

	const valuesPerMiniblock = 8
	const width = 33
	deltas := []uint64{6000000000 - 1, 0} // adjusted by minDelta=1
	adjusted := make([]uint64, valuesPerMiniblock)
	copy(adjusted, deltas)

	var buf []byte
	buf = binary.AppendUvarint(buf, 8) // blockSize
	buf = binary.AppendUvarint(buf, 1) // miniblocksPerBlock
	buf = binary.AppendUvarint(buf, uint64(len(values)))
	buf = appendZigzagVarint(buf, values[0])
	buf = appendZigzagVarint(buf, 1) // minDelta
	buf = append(buf, byte(width))
	buf = append(buf, packBits64ForTest(adjusted, width)...)

	decoded, err := decodeDeltaBinaryPacked(buf, len(values))
	require.NoError(t, err)
	require.Equal(t, values, decoded)
}

func TestDecodeDeltaBinaryPackedInvalidBlockSize(t *testing.T) {
	var buf []byte
	buf = binary.AppendUvarint(buf, 7) // not divisible by miniblocksPerBlock
	buf = binary.AppendUvarint(buf, 2)
	buf = binary.AppendUvarint(buf, 3)
	buf = appendZigzagVarint(buf, 0)

	_, err := decodeDeltaBinaryPacked(buf, 3)
	require.Error(t, err)
}
