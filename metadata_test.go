package parquet

import (
	"context"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestLe32AndFooterLayout covers spec.md §8 scenario 1: a footer ending in
// a little-endian metadata length followed by the "PAR1" magic.
func TestLe32AndFooterLayout(t *testing.T) {
	footer := []byte{0x10, 0x00, 0x00, 0x00, 0x50, 0x41, 0x52, 0x31}
	require.Equal(t, uint32(16), le32(footer[0:4]))
	require.Equal(t, magic, string(footer[4:8]))
}

func TestReadMetadataRejectsShortFile(t *testing.T) {
	_, err := ReadMetadata([]byte{1, 2, 3})
	require.Error(t, err)
	var pErr *Error
	require.ErrorAs(t, err, &pErr)
	require.Equal(t, ErrInvalidMetadataLength, pErr.Kind)
}

func TestReadMetadataRejectsBadMagic(t *testing.T) {
	data := make([]byte, 12)
	copy(data[len(data)-4:], "XXXX")
	_, err := ReadMetadata(data)
	require.Error(t, err)
	var pErr *Error
	require.ErrorAs(t, err, &pErr)
	require.Equal(t, ErrInvalidMagic, pErr.Kind)
}

func TestReadMetadataRejectsOversizedLength(t *testing.T) {
	data := make([]byte, 12)
	binary.LittleEndian.PutUint32(data[len(data)-8:len(data)-4], 1000)
	copy(data[len(data)-4:], magic)
	_, err := ReadMetadata(data)
	require.Error(t, err)
	var pErr *Error
	require.ErrorAs(t, err, &pErr)
	require.Equal(t, ErrInvalidMetadataLength, pErr.Kind)
}

// buildSchemaElementBytes encodes a minimal Thrift Compact SchemaElement
// struct using the fields decodeSchemaElementStruct reads.
func buildSchemaElementBytes(physType *PhysicalType, rep *FieldRepetitionType, name string, numChildren *int32) []byte {
	var buf []byte
	last := 0
	if physType != nil {
		buf = append(buf, buildFieldHeader(1-last, twI32))
		buf = append(buf, encodeZigzagVarintRaw(int64(*physType))...)
		last = 1
	}
	if rep != nil {
		buf = append(buf, buildFieldHeader(3-last, twI32))
		buf = append(buf, encodeZigzagVarintRaw(int64(*rep))...)
		last = 3
	}
	buf = append(buf, buildFieldHeader(4-last, twBinary))
	buf = binary.AppendUvarint(buf, uint64(len(name)))
	buf = append(buf, []byte(name)...)
	last = 4
	if numChildren != nil {
		buf = append(buf, buildFieldHeader(5-last, twI32))
		buf = append(buf, encodeZigzagVarintRaw(int64(*numChildren))...)
		last = 5
	}
	buf = append(buf, 0x00)
	return buf
}

func buildFileMetadataBytes(version int32, numRows int64, elements [][]byte) []byte {
	var buf []byte
	buf = append(buf, buildFieldHeader(1, twI32))
	buf = append(buf, encodeZigzagVarintRaw(int64(version))...)

	buf = append(buf, buildFieldHeader(1, twList))
	buf = append(buf, byte(len(elements)<<4)|twStruct)
	for _, e := range elements {
		buf = append(buf, e...)
	}

	buf = append(buf, buildFieldHeader(1, twI64))
	buf = append(buf, encodeZigzagVarintRaw(numRows)...)

	buf = append(buf, 0x00)
	return buf
}

func encodeZigzagVarintRaw(n int64) []byte {
	return binary.AppendUvarint(nil, zigzagEncode64(n))
}

func TestReadMetadataDecodesMinimalSchema(t *testing.T) {
	root := buildSchemaElementBytes(nil, nil, "root", int32Ptr(1))
	req := RepetitionRequired
	i32 := TypeInt32
	leaf := buildSchemaElementBytes(&i32, &req, "id", nil)

	thriftBytes := buildFileMetadataBytes(1, 3, [][]byte{root, leaf})

	data := append([]byte("PAR1"), thriftBytes...)
	trailer := make([]byte, 8)
	binary.LittleEndian.PutUint32(trailer[0:4], uint32(len(thriftBytes)))
	copy(trailer[4:8], magic)
	data = append(data, trailer...)

	md, err := ReadMetadata(data)
	require.NoError(t, err)
	require.Equal(t, int32(1), md.Version)
	require.Equal(t, int64(3), md.NumRows)
	require.Len(t, md.Schema, 2)
	require.Equal(t, "root", md.Schema[0].Name)
	require.Equal(t, "id", md.Schema[1].Name)

	tree, err := BuildSchema(md)
	require.NoError(t, err)
	require.Len(t, tree.Leaves, 1)
	require.Equal(t, []string{"root", "id"}, tree.Leaves[0].Path)
}

func TestReadMetadataAsyncSmallFileFetchesWholeTail(t *testing.T) {
	root := buildSchemaElementBytes(nil, nil, "root", int32Ptr(0))
	thriftBytes := buildFileMetadataBytes(1, 0, [][]byte{root})

	data := append([]byte("PAR1"), thriftBytes...)
	trailer := make([]byte, 8)
	binary.LittleEndian.PutUint32(trailer[0:4], uint32(len(thriftBytes)))
	copy(trailer[4:8], magic)
	data = append(data, trailer...)

	src := NewFileByteSource(&readerAtBytes{data}, int64(len(data)))
	md, err := ReadMetadataAsync(context.Background(), src, MetadataOptions{InitialFetchSize: 4})
	require.NoError(t, err)
	require.Equal(t, int32(1), md.Version)
}

func int32Ptr(n int32) *int32 { return &n }

type readerAtBytes struct{ data []byte }

func (r *readerAtBytes) ReadAt(p []byte, off int64) (int, error) {
	n := copy(p, r.data[off:])
	return n, nil
}
