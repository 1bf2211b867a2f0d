package parquet

import (
	"context"

	"github.com/sirupsen/logrus"
)

// ReadOptions configures Read, mirroring spec.md §6's parquet_read.
type ReadOptions struct {
	// Metadata is reused if provided; otherwise it is fetched via
	// ReadMetadataAsync.
	Metadata *FileMetadata
	// Columns restricts output to these leaf paths, each given as its list
	// of schema names starting at the root; nil means every leaf column.
	Columns [][]string
	// RowStart/RowEnd restrict output to [RowStart, RowEnd) across the
	// whole file; RowEnd <= 0 means through the end of the file.
	RowStart int64
	RowEnd   int64
	// Compressors overrides the default codec table.
	Compressors CodecTable
	// FetchSize overrides ReadMetadataAsync's initial trailing fetch.
	FetchSize int64
}

// Row is one assembled, logically-converted record keyed by leaf
// column path (dot-joined), mirroring how RowIterator delivers data to
// on_chunk callers in spec.md §6.
type Row map[string]interface{}

// RowIterator streams rows assembled from row groups in file order, per
// spec.md §5's ordering guarantees: within a column values are
// delivered row-ascending, and row assembly waits until every
// requested column has produced the corresponding range.
type RowIterator struct {
	src    ByteSource
	md     *FileMetadata
	tree   *SchemaTree
	table  CodecTable
	leaves []*SchemaNode

	rowStart int64
	rowEnd   int64

	rowGroupIdx  int
	rowsBefore   int64
	pending      []Row
	pendingIndex int
}

// Read opens a Parquet file for reading, fetching metadata if not
// already supplied, and returns an iterator over the requested rows and
// columns.
func Read(ctx context.Context, src ByteSource, opts ReadOptions) (*RowIterator, error) {
	md := opts.Metadata
	if md == nil {
		fetched, err := ReadMetadataAsync(ctx, src, MetadataOptions{InitialFetchSize: opts.FetchSize})
		if err != nil {
			return nil, err
		}
		md = fetched
	}

	tree, err := BuildSchema(md)
	if err != nil {
		return nil, err
	}

	leaves := tree.Leaves
	if opts.Columns != nil {
		leaves = nil
		for _, path := range opts.Columns {
			leaf := tree.FindLeaf(path)
			if leaf == nil {
				return nil, newErrf(ErrInternalInvariant, "column %v not found in schema", path)
			}
			leaves = append(leaves, leaf)
		}
	}

	table := opts.Compressors
	if table == nil {
		table = DefaultCodecTable()
	}

	rowEnd := opts.RowEnd
	if rowEnd <= 0 {
		rowEnd = md.NumRows
	}

	return &RowIterator{
		src:      src,
		md:       md,
		tree:     tree,
		table:    table,
		leaves:   leaves,
		rowStart: opts.RowStart,
		rowEnd:   rowEnd,
	}, nil
}

// Next returns the next assembled row, or (nil, false, nil) once every
// requested row has been delivered.
func (it *RowIterator) Next(ctx context.Context) (Row, bool, error) {
	for it.pendingIndex >= len(it.pending) {
		if it.rowGroupIdx >= len(it.md.RowGroups) {
			return nil, false, nil
		}
		if err := it.loadRowGroup(ctx, it.rowGroupIdx); err != nil {
			return nil, false, err
		}
		it.rowsBefore += it.md.RowGroups[it.rowGroupIdx].NumRows
		it.rowGroupIdx++
		it.pendingIndex = 0
	}
	row := it.pending[it.pendingIndex]
	it.pendingIndex++
	return row, true, nil
}

// loadRowGroup decodes every requested column of one row group and
// assembles the rows that fall within [rowStart, rowEnd), per spec.md
// §5's row-assembly ordering guarantee: a row is only emitted once all
// requested columns have contributed their share.
func (it *RowIterator) loadRowGroup(ctx context.Context, idx int) error {
	rg := &it.md.RowGroups[idx]
	groupStart := it.rowsBefore
	groupEnd := groupStart + rg.NumRows
	if groupEnd <= it.rowStart || groupStart >= it.rowEnd {
		it.pending = nil
		return nil
	}
	localStart := maxInt64(0, it.rowStart-groupStart)
	localEnd := minInt64(rg.NumRows, it.rowEnd-groupStart)

	perColumn := make(map[string][]interface{}, len(it.leaves))
	rowCount := 0

	for _, leaf := range it.leaves {
		chunk := findColumnChunk(rg, leaf.Path)
		if chunk == nil {
			return newErrf(ErrInternalInvariant, "row group missing column %v", leaf.Path)
		}
		reader := NewColumnChunkReader(leaf, chunk, it.table)
		data, err := reader.Read(ctx, it.src, localStart, localEnd)
		if err != nil {
			return err
		}
		values, err := AssembleRecords(data.DefinitionLevels, data.RepetitionLevels, data.Values, leaf.IsNullable, leaf.MaxDefinitionLevel, leaf.MaxRepetitionLevel)
		if err != nil {
			return err
		}
		converted := make([]interface{}, len(values))
		for i, v := range values {
			cv, err := ConvertLogical(v, &leaf.Element, safePhysicalType(leaf))
			if err != nil {
				return err
			}
			converted[i] = cv
		}
		key := joinPath(leaf.Path)
		perColumn[key] = converted
		if len(converted) > rowCount {
			rowCount = len(converted)
		}
		logrus.WithFields(logrus.Fields{"column": key, "rows": len(converted)}).Debug("decoded column chunk")
	}

	rows := make([]Row, rowCount)
	for i := 0; i < rowCount; i++ {
		row := make(Row, len(it.leaves))
		for key, values := range perColumn {
			if i < len(values) {
				row[key] = values[i]
			}
		}
		rows[i] = row
	}
	it.pending = rows
	return nil
}

func safePhysicalType(leaf *SchemaNode) PhysicalType {
	if leaf.Element.Type != nil {
		return *leaf.Element.Type
	}
	return TypeByteArray
}

func findColumnChunk(rg *RowGroup, path []string) *ColumnChunk {
	for i := range rg.Columns {
		if pathsEqual(rg.Columns[i].MetaData.PathInSchema, path) {
			return &rg.Columns[i]
		}
	}
	return nil
}

func joinPath(path []string) string {
	out := path[0]
	for _, p := range path[1:] {
		out += "." + p
	}
	return out
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

func minInt64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
