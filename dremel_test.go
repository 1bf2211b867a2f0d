package parquet

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func u32s(vs ...uint32) []uint32 { return vs }

// TestAssembleRecordsNoNulls covers spec.md §8 scenario 4.
func TestAssembleRecordsNoNulls(t *testing.T) {
	rep := u32s(0, 1, 1, 0, 1, 1)
	values := []interface{}{1, 2, 3, 4, 5, 6}

	got, err := AssembleRecords(nil, rep, values, false, 3, 1)
	require.NoError(t, err)
	require.Equal(t, []interface{}{
		[]interface{}{1, 2, 3},
		[]interface{}{4, 5, 6},
	}, got)
}

// TestAssembleRecordsWithNulls covers spec.md §8 scenario 5.
func TestAssembleRecordsWithNulls(t *testing.T) {
	def := u32s(3, 0, 3)
	rep := u32s(0, 1, 1)
	values := []interface{}{"a", "c"}

	got, err := AssembleRecords(def, rep, values, true, 3, 1)
	require.NoError(t, err)
	require.Equal(t, []interface{}{
		[]interface{}{"a", nil, "c"},
	}, got)
}

// TestAssembleRecordsNested covers spec.md §8 scenario 6.
func TestAssembleRecordsNested(t *testing.T) {
	rep := u32s(0, 2, 1, 2)
	values := []interface{}{1, 2, 3, 4}

	got, err := AssembleRecords(nil, rep, values, false, 3, 2)
	require.NoError(t, err)
	require.Equal(t, []interface{}{
		[]interface{}{
			[]interface{}{1, 2},
			[]interface{}{3, 4},
		},
	}, got)
}

// TestAssembleRecordsMapLike covers spec.md §8 scenario 7.
func TestAssembleRecordsMapLike(t *testing.T) {
	def := u32s(2, 2, 2, 2, 1, 1, 1, 0, 2, 2)
	rep := u32s(0, 1, 0, 1, 0, 0, 0, 0, 0, 1)
	values := []interface{}{"k1", "k2", "k1", "k2", "k1", "k3"}

	got, err := AssembleRecords(def, rep, values, true, 2, 1)
	require.NoError(t, err)
	require.Equal(t, []interface{}{
		[]interface{}{"k1", "k2"},
		[]interface{}{"k1", "k2"},
		[]interface{}{},
		[]interface{}{},
		[]interface{}{},
		nil,
		[]interface{}{"k1", "k3"},
	}, got)
}

func TestAssembleRecordsFlatRequiredColumn(t *testing.T) {
	values := []interface{}{1, 2, 3}
	got, err := AssembleRecords(nil, nil, values, false, 0, 0)
	require.NoError(t, err)
	require.Equal(t, values, got)
}

func TestAssembleRecordsFlatNullableColumn(t *testing.T) {
	def := u32s(1, 0, 1)
	values := []interface{}{"a", "c"}
	got, err := AssembleRecords(def, nil, values, true, 1, 0)
	require.NoError(t, err)
	require.Equal(t, []interface{}{"a", nil, "c"}, got)
}

func TestAssembleRecordsEmptyColumn(t *testing.T) {
	got, err := AssembleRecords(nil, nil, nil, false, 0, 0)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestAssembleRecordsRequiredColumnBelowMaxDefErrors(t *testing.T) {
	rep := u32s(0, 1)
	def := u32s(1, 1)
	_, err := AssembleRecords(def, rep, []interface{}{1}, false, 2, 1)
	require.Error(t, err)
}
