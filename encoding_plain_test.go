package parquet

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodePlainValuesBoolean(t *testing.T) {
	// 5 bits: 1,0,1,1,0 packed LSB-first into one byte, padded with zeros.
	data := []byte{0b00001101}
	values, consumed, err := decodePlainValues(data, TypeBoolean, 0, 5)
	require.NoError(t, err)
	require.Equal(t, 1, consumed)
	require.Equal(t, []interface{}{true, false, true, true, false}, values)
}

func TestDecodePlainValuesInt32(t *testing.T) {
	data := int32LEBytes(-5, 0, 42)
	values, consumed, err := decodePlainValues(data, TypeInt32, 0, 3)
	require.NoError(t, err)
	require.Equal(t, 12, consumed)
	require.Equal(t, []interface{}{int32(-5), int32(0), int32(42)}, values)
}

func TestDecodePlainValuesInt64(t *testing.T) {
	data := make([]byte, 8)
	want := int64(-123456789)
	binary.LittleEndian.PutUint64(data, uint64(want))
	values, _, err := decodePlainValues(data, TypeInt64, 0, 1)
	require.NoError(t, err)
	require.Equal(t, []interface{}{int64(-123456789)}, values)
}

func TestDecodePlainValuesFloatAndDouble(t *testing.T) {
	fdata := make([]byte, 4)
	binary.LittleEndian.PutUint32(fdata, math.Float32bits(3.5))
	values, _, err := decodePlainValues(fdata, TypeFloat, 0, 1)
	require.NoError(t, err)
	require.Equal(t, []interface{}{float32(3.5)}, values)

	ddata := make([]byte, 8)
	binary.LittleEndian.PutUint64(ddata, math.Float64bits(2.25))
	values, _, err = decodePlainValues(ddata, TypeDouble, 0, 1)
	require.NoError(t, err)
	require.Equal(t, []interface{}{2.25}, values)
}

func TestDecodePlainValuesInt96(t *testing.T) {
	data := make([]byte, 12)
	binary.LittleEndian.PutUint64(data[0:8], 0x0102030405060708)
	binary.LittleEndian.PutUint32(data[8:12], 0x090A0B0C)
	values, _, err := decodePlainValues(data, TypeInt96, 0, 1)
	require.NoError(t, err)
	require.Equal(t, []interface{}{Int96{Lo: 0x0102030405060708, Hi: 0x090A0B0C}}, values)
}

func TestDecodePlainValuesByteArrayIsZeroCopy(t *testing.T) {
	var data []byte
	data = binary.LittleEndian.AppendUint32(data, 3)
	data = append(data, 'a', 'b', 'c')

	values, consumed, err := decodePlainValues(data, TypeByteArray, 0, 1)
	require.NoError(t, err)
	require.Equal(t, 7, consumed)
	b := values[0].([]byte)
	require.Equal(t, []byte("abc"), b)
	b[0] = 'z'
	require.Equal(t, byte('z'), data[4])
}

func TestDecodePlainValuesFixedLenByteArray(t *testing.T) {
	data := []byte{1, 2, 3, 4, 5, 6}
	values, _, err := decodePlainValues(data, TypeFixedLenByteArray, 3, 2)
	require.NoError(t, err)
	require.Equal(t, []interface{}{[]byte{1, 2, 3}, []byte{4, 5, 6}}, values)
}

func TestDecodePlainValuesFixedLenByteArrayRequiresTypeLength(t *testing.T) {
	_, _, err := decodePlainValues([]byte{1, 2}, TypeFixedLenByteArray, 0, 1)
	require.Error(t, err)
}

func TestDecodeByteStreamSplitFloat(t *testing.T) {
	// Two float32 values, split into 4 interleaved byte streams.
	v0 := make([]byte, 4)
	v1 := make([]byte, 4)
	binary.LittleEndian.PutUint32(v0, math.Float32bits(1.5))
	binary.LittleEndian.PutUint32(v1, math.Float32bits(-2.5))

	data := make([]byte, 8)
	for j := 0; j < 4; j++ {
		data[j*2+0] = v0[j]
		data[j*2+1] = v1[j]
	}

	values, err := decodeByteStreamSplit(data, TypeFloat, 2)
	require.NoError(t, err)
	require.Equal(t, []interface{}{float32(1.5), float32(-2.5)}, values)
}

func TestDecodeByteStreamSplitUnsupportedType(t *testing.T) {
	_, err := decodeByteStreamSplit([]byte{1, 2, 3, 4}, TypeInt32, 1)
	require.Error(t, err)
}

func TestDecodeByteStreamSplitTruncated(t *testing.T) {
	_, err := decodeByteStreamSplit([]byte{1, 2, 3}, TypeFloat, 1)
	require.Error(t, err)
}
