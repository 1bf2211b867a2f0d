package parquet

import (
	"context"

	"github.com/sirupsen/logrus"
)

// ColumnData is the decoded (value, definition-level, repetition-level)
// triple for one column chunk, ready to hand to the record assembler.
type ColumnData struct {
	DefinitionLevels []uint32
	RepetitionLevels []uint32
	Values           []interface{}
}

// ColumnChunkReader walks every page of one column chunk, threading the
// dictionary through data pages and pruning by row range, per spec.md §4.8.
type ColumnChunkReader struct {
	Node  *SchemaNode
	Chunk *ColumnChunk
	Table CodecTable
}

// NewColumnChunkReader builds a reader for one leaf column's chunk.
func NewColumnChunkReader(node *SchemaNode, chunk *ColumnChunk, table CodecTable) *ColumnChunkReader {
	if table == nil {
		table = DefaultCodecTable()
	}
	return &ColumnChunkReader{Node: node, Chunk: chunk, Table: table}
}

// Read decodes the chunk's values restricted to rows [rowStart, rowEnd).
// rowEnd <= 0 means "through the end of the chunk". Pages entirely before
// rowStart are byte-skipped for non-repeated columns; for repeated
// columns every page up to rowEnd must be decoded to maintain correct
// repetition state, per spec.md §4.8 and the row-range Open Question.
// For both kinds, decoded rows outside [rowStart, rowEnd) are trimmed off
// afterward by trimRowRange, so every column of a row group returns the
// same row window.
func (r *ColumnChunkReader) Read(ctx context.Context, src ByteSource, rowStart, rowEnd int64) (*ColumnData, error) {
	md := r.Chunk.MetaData
	if md == nil {
		return nil, newErrf(ErrInternalInvariant, "column chunk has no metadata")
	}

	startOffset := md.DataPageOffset
	if md.DictionaryPageOffset != nil && *md.DictionaryPageOffset < startOffset {
		startOffset = *md.DictionaryPageOffset
	}
	endOffset := startOffset + md.TotalCompressedSize

	buf, err := src.ReadRange(ctx, startOffset, endOffset)
	if err != nil {
		return nil, err
	}

	physType := md.Type
	typeLength := 0
	if r.Node.Element.TypeLength != nil {
		typeLength = int(*r.Node.Element.TypeLength)
	}

	var dictionary []interface{}
	pos := 0
	valuesRead := int64(0)
	rowsRead := int64(0)
	skippedRows := int64(0)

	out := &ColumnData{}
	repeated := r.Node.MaxRepetitionLevel > 0

	for valuesRead < md.NumValues && pos < len(buf) {
		if err := ctxDone(ctx); err != nil {
			return nil, err
		}

		hdr, consumed, err := readPageHeader(buf[pos:])
		if err != nil {
			return nil, err
		}
		headerEnd := pos + consumed
		bodyEnd := headerEnd + int(hdr.CompressedPageSize)
		if bodyEnd > len(buf) {
			return nil, newErrf(ErrTruncatedInput, "page body extends past fetched range")
		}
		body := buf[headerEnd:bodyEnd]
		pos = bodyEnd

		switch hdr.Type {
		case PageTypeDictionary:
			plain, err := decompressPage(r.Table, md.Codec, body, int(hdr.UncompressedPageSize))
			if err != nil {
				return nil, err
			}
			dictionary, err = decodeDictionaryPage(plain, hdr.DictionaryPageHeader, physType, typeLength)
			if err != nil {
				return nil, err
			}

		case PageTypeDataV2:
			dpHdr := hdr.DataPageHeaderV2
			pageRows, shouldSkip := r.planSkip(repeated, rowsRead, rowStart, rowEnd, int64(dpHdr.NumRows))
			if shouldSkip {
				rowsRead += pageRows
				skippedRows += pageRows
				valuesRead += int64(dpHdr.NumValues)
				continue
			}

			levelsLen := int(dpHdr.RepetitionLevelsByteLength) + int(dpHdr.DefinitionLevelsByteLength)
			levels := body[:levelsLen]
			values := body[levelsLen:]
			if dpHdr.IsCompressed {
				uncompressedValuesLen := int(hdr.UncompressedPageSize) - levelsLen
				values, err = decompressPage(r.Table, md.Codec, values, uncompressedValuesLen)
				if err != nil {
					return nil, err
				}
			}
			page, err := decodeDataPageV2(append(append([]byte{}, levels...), values...), dpHdr, r.Node, physType, typeLength)
			if err != nil {
				return nil, err
			}
			if err := r.resolveDictionary(page, dictionary); err != nil {
				return nil, err
			}
			r.appendPage(out, page)
			rowsRead += pageRows
			valuesRead += int64(dpHdr.NumValues)

		case PageTypeData:
			dpHdr := hdr.DataPageHeader
			pageRowsHint := int64(dpHdr.NumValues) // refined after decode for repeated columns
			_, shouldSkip := r.planSkip(repeated, rowsRead, rowStart, rowEnd, pageRowsHint)
			if shouldSkip && !repeated {
				rowsRead += pageRowsHint
				skippedRows += pageRowsHint
				valuesRead += int64(dpHdr.NumValues)
				continue
			}

			plain, err := decompressPage(r.Table, md.Codec, body, int(hdr.UncompressedPageSize))
			if err != nil {
				return nil, err
			}
			page, err := decodeDataPageV1(plain, dpHdr, r.Node, physType, typeLength)
			if err != nil {
				return nil, err
			}
			if err := r.resolveDictionary(page, dictionary); err != nil {
				return nil, err
			}
			pageRows := countTopLevelRows(page.RepetitionLevels, int64(dpHdr.NumValues))
			if !shouldSkip {
				r.appendPage(out, page)
			}
			rowsRead += pageRows
			valuesRead += int64(dpHdr.NumValues)

		default:
			logrus.WithField("page_type", hdr.Type).Debug("skipping unrecognized page type")
		}

		if rowEnd > 0 && rowsRead >= rowEnd {
			break
		}
	}

	if repeated {
		out = trimRowRange(out, r.Node.MaxDefinitionLevel, rowStart, rowEnd)
	} else {
		// A non-repeated column has one level entry per row, so all-zero
		// repetition levels let trimRowRange cut partially covered pages,
		// counting rows from the first page that was not skipped.
		n := len(out.Values)
		if out.DefinitionLevels != nil {
			n = len(out.DefinitionLevels)
		}
		out.RepetitionLevels = make([]uint32, n)
		out = trimRowRange(out, r.Node.MaxDefinitionLevel, rowStart-skippedRows, rowEnd-skippedRows)
		out.RepetitionLevels = nil
	}

	return out, nil
}

// trimRowRange restricts decoded column data to the top-level rows
// [rowStart, rowEnd), counted from its first decoded row. Repeated columns
// cannot byte-skip without corrupting repetition-level state, so Read
// decodes every row up front and this trims the leading and trailing rows
// back off afterward; non-repeated columns pass through it as well, to drop
// the rows of pages that lie only partly inside the range.
func trimRowRange(data *ColumnData, maxDefinitionLevel int, rowStart, rowEnd int64) *ColumnData {
	rep := data.RepetitionLevels
	totalRows := countTopLevelRows(rep, int64(len(rep)))

	lo := rowStart
	if lo < 0 {
		lo = 0
	}
	hi := rowEnd
	if hi <= 0 || hi > totalRows {
		hi = totalRows
	}
	if lo <= 0 && hi >= totalRows {
		return data
	}
	if lo >= hi {
		return &ColumnData{}
	}

	rowItemStart := make([]int, 0, totalRows+1)
	for i, r := range rep {
		if r == 0 {
			rowItemStart = append(rowItemStart, i)
		}
	}
	rowItemStart = append(rowItemStart, len(rep))

	itemLo := rowItemStart[lo]
	itemHi := rowItemStart[hi]

	// valueIndexOf maps an item index to the count of physically-stored
	// values (definition level == max) preceding it, since Values only
	// holds entries for items that aren't null/empty.
	valueIndexOf := func(itemIdx int) int {
		if data.DefinitionLevels == nil {
			return itemIdx
		}
		n := 0
		for _, d := range data.DefinitionLevels[:itemIdx] {
			if int(d) == maxDefinitionLevel {
				n++
			}
		}
		return n
	}

	trimmed := &ColumnData{
		RepetitionLevels: append([]uint32{}, rep[itemLo:itemHi]...),
	}
	if data.DefinitionLevels != nil {
		trimmed.DefinitionLevels = append([]uint32{}, data.DefinitionLevels[itemLo:itemHi]...)
	}
	if data.Values != nil {
		valLo, valHi := valueIndexOf(itemLo), valueIndexOf(itemHi)
		trimmed.Values = append([]interface{}{}, data.Values[valLo:valHi]...)
	}
	return trimmed
}

func ctxDone(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

// planSkip decides whether a page lies entirely before rowStart and can be
// skipped. Non-repeated columns can always byte-skip such pages; repeated
// columns must still be decoded to keep repetition-level state correct,
// per spec.md §4.8.
func (r *ColumnChunkReader) planSkip(repeated bool, rowsSoFar, rowStart, rowEnd int64, pageRows int64) (int64, bool) {
	if rowEnd > 0 && rowsSoFar >= rowEnd {
		return pageRows, true
	}
	if rowStart > 0 && rowsSoFar+pageRows <= rowStart && !repeated {
		return pageRows, true
	}
	return pageRows, false
}

// countTopLevelRows counts repetition-level-0 entries, i.e. top-level
// records, per spec.md §4.8. Non-repeated columns have one row per value.
func countTopLevelRows(repLevels []uint32, numValues int64) int64 {
	if repLevels == nil {
		return numValues
	}
	var rows int64
	for _, r := range repLevels {
		if r == 0 {
			rows++
		}
	}
	return rows
}

// resolveDictionary replaces a page's dictionary-encoded indices with the
// physical values they reference, per spec.md §4.8.
func (r *ColumnChunkReader) resolveDictionary(page *dataPage, dictionary []interface{}) error {
	if page.DictionaryIndices == nil {
		return nil
	}
	if dictionary == nil {
		return newErrf(ErrInternalInvariant, "dictionary-encoded page with no dictionary loaded")
	}
	values := make([]interface{}, len(page.DictionaryIndices))
	for i, idx := range page.DictionaryIndices {
		if int(idx) >= len(dictionary) {
			return newErrf(ErrInternalInvariant, "dictionary index %d out of range (dictionary has %d entries)", idx, len(dictionary))
		}
		values[i] = dictionary[idx]
	}
	page.Values = values
	page.DictionaryIndices = nil
	return nil
}

func (r *ColumnChunkReader) appendPage(out *ColumnData, page *dataPage) {
	out.DefinitionLevels = append(out.DefinitionLevels, page.DefinitionLevels...)
	out.RepetitionLevels = append(out.RepetitionLevels, page.RepetitionLevels...)
	out.Values = append(out.Values, page.Values...)
}
