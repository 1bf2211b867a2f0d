package parquet

import (
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func elemWithConverted(ct ConvertedType) *SchemaElement {
	return &SchemaElement{ConvertedType: &ct}
}

// TestConvertLogicalDate covers spec.md §8 scenario 9.
func TestConvertLogicalDate(t *testing.T) {
	got, err := ConvertLogical(int32(1), elemWithConverted(ConvertedDate), TypeInt32)
	require.NoError(t, err)
	require.Equal(t, time.Date(1970, 1, 2, 0, 0, 0, 0, time.UTC), got)
}

func TestConvertLogicalUTF8(t *testing.T) {
	got, err := ConvertLogical([]byte("hello"), elemWithConverted(ConvertedUTF8), TypeByteArray)
	require.NoError(t, err)
	require.Equal(t, "hello", got)
}

func TestConvertLogicalJSON(t *testing.T) {
	got, err := ConvertLogical([]byte(`{"a":1}`), elemWithConverted(ConvertedJSON), TypeByteArray)
	require.NoError(t, err)
	require.Equal(t, map[string]interface{}{"a": float64(1)}, got)
}

func TestConvertLogicalBSONUnsupported(t *testing.T) {
	_, err := ConvertLogical([]byte("x"), elemWithConverted(ConvertedBSON), TypeByteArray)
	require.Error(t, err)
	var pErr *Error
	require.ErrorAs(t, err, &pErr)
	require.Equal(t, ErrUnsupportedConvertedType, pErr.Kind)
}

func TestConvertLogicalTimestampMicros(t *testing.T) {
	got, err := ConvertLogical(int64(1000), elemWithConverted(ConvertedTimestampMicros), TypeInt64)
	require.NoError(t, err)
	require.Equal(t, time.UnixMicro(1000).UTC(), got)
}

func TestConvertLogicalDecimalFromInt32(t *testing.T) {
	scale := int32(2)
	elem := &SchemaElement{ConvertedType: convertedPtr(ConvertedDecimal), Scale: &scale}
	got, err := ConvertLogical(int32(12345), elem, TypeInt32)
	require.NoError(t, err)
	rat, ok := got.(*big.Rat)
	require.True(t, ok)
	require.Equal(t, "12345/100", rat.RatString())
}

func TestConvertLogicalDecimalFromBytes(t *testing.T) {
	scale := int32(0)
	elem := &SchemaElement{ConvertedType: convertedPtr(ConvertedDecimal), Scale: &scale}
	// -1 as a single big-endian two's complement byte.
	got, err := ConvertLogical([]byte{0xFF}, elem, TypeFixedLenByteArray)
	require.NoError(t, err)
	rat, ok := got.(*big.Rat)
	require.True(t, ok)
	require.Equal(t, big.NewRat(-1, 1), rat)
}

func TestConvertLogicalUint8Reinterpret(t *testing.T) {
	got, err := ConvertLogical(int32(200), elemWithConverted(ConvertedUint8), TypeInt32)
	require.NoError(t, err)
	require.Equal(t, uint8(200), got)
}

func TestConvertLogicalInt96NoConvertedType(t *testing.T) {
	// Julian day for 1970-01-02 is julianEpoch + 1.
	i96 := Int96{Lo: 0, Hi: uint32(julianEpoch + 1)}
	got, err := ConvertLogical(i96, &SchemaElement{}, TypeInt96)
	require.NoError(t, err)
	require.Equal(t, time.Date(1970, 1, 2, 0, 0, 0, 0, time.UTC), got)
}

func TestConvertLogicalPassesThroughUnannotated(t *testing.T) {
	got, err := ConvertLogical(int32(42), &SchemaElement{}, TypeInt32)
	require.NoError(t, err)
	require.Equal(t, int32(42), got)
}

func TestConvertLogicalNilPassesThrough(t *testing.T) {
	got, err := ConvertLogical(nil, elemWithConverted(ConvertedUTF8), TypeByteArray)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestConvertLogicalListElementwise(t *testing.T) {
	list := []interface{}{[]byte("a"), []byte("b")}
	got, err := ConvertLogical(list, elemWithConverted(ConvertedUTF8), TypeByteArray)
	require.NoError(t, err)
	require.Equal(t, []interface{}{"a", "b"}, got)
}

func convertedPtr(ct ConvertedType) *ConvertedType { return &ct }
