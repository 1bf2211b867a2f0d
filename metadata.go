package parquet

import (
	"context"

	"github.com/pkg/errors"
)

const (
	magic             = "PAR1"
	defaultFetchBytes = 512 * 1024 // spec.md §4.4 initial_fetch_size default
)

// MetadataOptions configures ReadMetadataAsync.
type MetadataOptions struct {
	// InitialFetchSize is how many trailing bytes to fetch speculatively
	// before deciding whether a second range request is needed. Defaults
	// to 512 KiB per spec.md §4.4.
	InitialFetchSize int64
}

func (o MetadataOptions) fetchSize() int64 {
	if o.InitialFetchSize > 0 {
		return o.InitialFetchSize
	}
	return defaultFetchBytes
}

// ReadMetadata parses FileMetadata synchronously from a full in-memory
// buffer of the entire file, per spec.md §6's parquet_metadata.
func ReadMetadata(data []byte) (*FileMetadata, error) {
	if len(data) < 8 {
		return nil, newErrf(ErrInvalidMetadataLength, "file too short: %d bytes", len(data))
	}
	if string(data[len(data)-4:]) != magic {
		return nil, newErrf(ErrInvalidMagic, "footer magic mismatch")
	}
	metaLen := int64(le32(data[len(data)-8 : len(data)-4]))
	fileLen := int64(len(data))
	if metaLen <= 0 || metaLen >= fileLen-8 {
		return nil, newErrf(ErrInvalidMetadataLength, "metadata length %d invalid for file of size %d", metaLen, fileLen)
	}
	start := fileLen - 8 - metaLen
	end := fileLen - 8
	return decodeFileMetadataBytes(data[start:end])
}

// ReadMetadataAsync parses FileMetadata from a ByteSource, fetching only
// the trailing region that holds the footer. It issues one range request
// for the tail, and a second only when the footer didn't fit inside it,
// per spec.md §4.4.
func ReadMetadataAsync(ctx context.Context, src ByteSource, opts MetadataOptions) (*FileMetadata, error) {
	fileLen := src.Size()
	if fileLen < 8 {
		return nil, newErrf(ErrInvalidMetadataLength, "file too short: %d bytes", fileLen)
	}

	fetchSize := opts.fetchSize()
	if fetchSize < 8 {
		// The tail must at least hold the length word and the magic.
		fetchSize = 8
	}
	if fetchSize > fileLen {
		fetchSize = fileLen
	}
	tailStart := fileLen - fetchSize
	tail, err := src.ReadRange(ctx, tailStart, fileLen)
	if err != nil {
		return nil, errors.Wrap(err, "reading trailing bytes")
	}

	if string(tail[len(tail)-4:]) != magic {
		return nil, newErrf(ErrInvalidMagic, "footer magic mismatch")
	}
	metaLen := int64(le32(tail[len(tail)-8 : len(tail)-4]))
	if metaLen <= 0 || metaLen >= fileLen-8 {
		return nil, newErrf(ErrInvalidMetadataLength, "metadata length %d invalid for file of size %d", metaLen, fileLen)
	}

	metaStart := fileLen - 8 - metaLen

	if metaStart >= tailStart {
		// The whole metadata region is already inside the fetched tail.
		off := metaStart - tailStart
		return decodeFileMetadataBytes(tail[off : off+metaLen])
	}

	// The footer spills before the tail we fetched; issue exactly one more
	// request for the missing prefix and stitch it to what we already have.
	missing, err := src.ReadRange(ctx, metaStart, tailStart)
	if err != nil {
		return nil, errors.Wrap(err, "reading metadata prefix")
	}
	full := make([]byte, 0, len(missing)+int(fileLen-8-tailStart))
	full = append(full, missing...)
	full = append(full, tail[:len(tail)-8]...)
	return decodeFileMetadataBytes(full)
}

func le32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

func decodeFileMetadataBytes(data []byte) (*FileMetadata, error) {
	dec := newThriftDecoder(newCursor(data))
	st, err := dec.decodeStruct()
	if err != nil {
		return nil, newErr(ErrThriftDecode, err)
	}
	md, err := decodeFileMetadataStruct(st)
	if err != nil {
		return nil, err
	}
	md.MetadataByteLen = int64(len(data))
	return md, nil
}

// decodeFileMetadataStruct re-shapes the generic Thrift tree into typed
// FileMetadata, per spec.md §4.4's field-id table.
func decodeFileMetadataStruct(st map[string]*thriftValue) (*FileMetadata, error) {
	md := &FileMetadata{}

	if v, ok := st[fieldKey(1)].asInt32(); ok {
		md.Version = v
	}
	if lst, ok := st[fieldKey(2)].asList(); ok {
		for _, elem := range lst {
			es, ok := elem.asStruct()
			if !ok {
				continue
			}
			se, err := decodeSchemaElementStruct(es)
			if err != nil {
				return nil, err
			}
			md.Schema = append(md.Schema, se)
		}
	}
	if v, ok := st[fieldKey(3)].asInt64(); ok {
		md.NumRows = v
	}
	if lst, ok := st[fieldKey(4)].asList(); ok {
		for _, elem := range lst {
			rs, ok := elem.asStruct()
			if !ok {
				continue
			}
			rg, err := decodeRowGroupStruct(rs)
			if err != nil {
				return nil, err
			}
			md.RowGroups = append(md.RowGroups, rg)
		}
	}
	if lst, ok := st[fieldKey(5)].asList(); ok {
		for _, elem := range lst {
			ks, ok := elem.asStruct()
			if !ok {
				continue
			}
			md.KeyValueMetadata = append(md.KeyValueMetadata, decodeKeyValueStruct(ks))
		}
	}
	if s, ok := st[fieldKey(6)].asString(); ok {
		md.CreatedBy = &s
	}

	return md, nil
}

func decodeSchemaElementStruct(st map[string]*thriftValue) (SchemaElement, error) {
	var out SchemaElement
	if v, ok := st[fieldKey(1)].asInt32(); ok {
		t := PhysicalType(v)
		out.Type = &t
	}
	if v, ok := st[fieldKey(2)].asInt32(); ok {
		out.TypeLength = &v
	}
	if v, ok := st[fieldKey(3)].asInt32(); ok {
		r := FieldRepetitionType(v)
		out.RepetitionType = &r
	}
	if s, ok := st[fieldKey(4)].asString(); ok {
		out.Name = s
	}
	if v, ok := st[fieldKey(5)].asInt32(); ok {
		out.NumChildren = &v
	}
	if v, ok := st[fieldKey(6)].asInt32(); ok {
		c := ConvertedType(v)
		out.ConvertedType = &c
	}
	if v, ok := st[fieldKey(7)].asInt32(); ok {
		out.Scale = &v
	}
	if v, ok := st[fieldKey(8)].asInt32(); ok {
		out.Precision = &v
	}
	if v, ok := st[fieldKey(9)].asInt32(); ok {
		out.FieldID = &v
	}
	return out, nil
}

func decodeRowGroupStruct(st map[string]*thriftValue) (RowGroup, error) {
	var out RowGroup
	if lst, ok := st[fieldKey(1)].asList(); ok {
		for _, elem := range lst {
			cs, ok := elem.asStruct()
			if !ok {
				continue
			}
			cc, err := decodeColumnChunkStruct(cs)
			if err != nil {
				return RowGroup{}, err
			}
			out.Columns = append(out.Columns, cc)
		}
	}
	if v, ok := st[fieldKey(2)].asInt64(); ok {
		out.TotalByteSize = v
	}
	if v, ok := st[fieldKey(3)].asInt64(); ok {
		out.NumRows = v
	}
	if lst, ok := st[fieldKey(4)].asList(); ok {
		for _, elem := range lst {
			ss, ok := elem.asStruct()
			if !ok {
				continue
			}
			out.SortingColumns = append(out.SortingColumns, decodeSortingColumnStruct(ss))
		}
	}
	if v, ok := st[fieldKey(5)].asInt64(); ok {
		out.FileOffset = &v
	}
	if v, ok := st[fieldKey(6)].asInt64(); ok {
		out.TotalCompressedSize = &v
	}
	if v, ok := st[fieldKey(7)].asInt32(); ok {
		out.Ordinal = &v
	}
	return out, nil
}

func decodeColumnChunkStruct(st map[string]*thriftValue) (ColumnChunk, error) {
	var out ColumnChunk
	if s, ok := st[fieldKey(1)].asString(); ok && s != "" {
		out.FilePath = []string{s}
	}
	if v, ok := st[fieldKey(2)].asInt64(); ok {
		out.FileOffset = v
	}
	if sst, ok := st[fieldKey(3)].asStruct(); ok {
		md, err := decodeColumnMetaDataStruct(sst)
		if err != nil {
			return ColumnChunk{}, err
		}
		out.MetaData = md
	}
	if v, ok := st[fieldKey(4)].asInt64(); ok {
		out.OffsetIndexOffset = &v
	}
	if v, ok := st[fieldKey(5)].asInt32(); ok {
		out.OffsetIndexLength = &v
	}
	if v, ok := st[fieldKey(6)].asInt64(); ok {
		out.ColumnIndexOffset = &v
	}
	if v, ok := st[fieldKey(7)].asInt32(); ok {
		out.ColumnIndexLength = &v
	}
	return out, nil
}

func decodeColumnMetaDataStruct(st map[string]*thriftValue) (*ColumnMetaData, error) {
	out := &ColumnMetaData{}
	if v, ok := st[fieldKey(1)].asInt32(); ok {
		out.Type = PhysicalType(v)
	}
	if lst, ok := st[fieldKey(2)].asList(); ok {
		for _, elem := range lst {
			if v, ok := elem.asInt32(); ok {
				out.Encodings = append(out.Encodings, Encoding(v))
			}
		}
	}
	if lst, ok := st[fieldKey(3)].asList(); ok {
		for _, elem := range lst {
			if s, ok := elem.asString(); ok {
				out.PathInSchema = append(out.PathInSchema, s)
			}
		}
	}
	if v, ok := st[fieldKey(4)].asInt32(); ok {
		out.Codec = CompressionCodec(v)
	}
	if v, ok := st[fieldKey(5)].asInt64(); ok {
		out.NumValues = v
	}
	if v, ok := st[fieldKey(6)].asInt64(); ok {
		out.TotalUncompressedSize = v
	}
	if v, ok := st[fieldKey(7)].asInt64(); ok {
		out.TotalCompressedSize = v
	}
	if lst, ok := st[fieldKey(8)].asList(); ok {
		for _, elem := range lst {
			ks, ok := elem.asStruct()
			if !ok {
				continue
			}
			out.KeyValueMetadata = append(out.KeyValueMetadata, decodeKeyValueStruct(ks))
		}
	}
	if v, ok := st[fieldKey(9)].asInt64(); ok {
		out.DataPageOffset = v
	}
	if v, ok := st[fieldKey(10)].asInt64(); ok {
		out.IndexPageOffset = &v
	}
	if v, ok := st[fieldKey(11)].asInt64(); ok {
		out.DictionaryPageOffset = &v
	}
	if sst, ok := st[fieldKey(12)].asStruct(); ok {
		s := decodeStatisticsStruct(sst)
		out.Statistics = &s
	}
	if lst, ok := st[fieldKey(13)].asList(); ok {
		for _, elem := range lst {
			ps, ok := elem.asStruct()
			if !ok {
				continue
			}
			out.EncodingStats = append(out.EncodingStats, decodePageEncodingStatsStruct(ps))
		}
	}
	if v, ok := st[fieldKey(14)].asInt64(); ok {
		out.BloomFilterOffset = &v
	}
	if v, ok := st[fieldKey(15)].asInt32(); ok {
		out.BloomFilterLength = &v
	}
	if sst, ok := st[fieldKey(16)].asStruct(); ok {
		ss := decodeSizeStatisticsStruct(sst)
		out.SizeStatistics = &ss
	}
	return out, nil
}

func decodeStatisticsStruct(st map[string]*thriftValue) Statistics {
	var out Statistics
	if b, ok := st[fieldKey(1)].asBytes(); ok {
		out.Max = b
	}
	if b, ok := st[fieldKey(2)].asBytes(); ok {
		out.Min = b
	}
	if v, ok := st[fieldKey(3)].asInt64(); ok {
		out.NullCount = &v
	}
	if v, ok := st[fieldKey(4)].asInt64(); ok {
		out.DistinctCount = &v
	}
	if b, ok := st[fieldKey(5)].asBytes(); ok {
		out.MaxValue = b
	}
	if b, ok := st[fieldKey(6)].asBytes(); ok {
		out.MinValue = b
	}
	return out
}

func decodeSizeStatisticsStruct(st map[string]*thriftValue) SizeStatistics {
	var out SizeStatistics
	if v, ok := st[fieldKey(1)].asInt64(); ok {
		out.UnencodedByteArrayDataBytes = &v
	}
	if lst, ok := st[fieldKey(2)].asList(); ok {
		for _, elem := range lst {
			if v, ok := elem.asInt64(); ok {
				out.RepetitionLevelHistogram = append(out.RepetitionLevelHistogram, v)
			}
		}
	}
	if lst, ok := st[fieldKey(3)].asList(); ok {
		for _, elem := range lst {
			if v, ok := elem.asInt64(); ok {
				out.DefinitionLevelHistogram = append(out.DefinitionLevelHistogram, v)
			}
		}
	}
	return out
}

func decodePageEncodingStatsStruct(st map[string]*thriftValue) PageEncodingStats {
	var out PageEncodingStats
	if v, ok := st[fieldKey(1)].asInt32(); ok {
		out.PageType = PageType(v)
	}
	if v, ok := st[fieldKey(2)].asInt32(); ok {
		out.Encoding = Encoding(v)
	}
	if v, ok := st[fieldKey(3)].asInt32(); ok {
		out.Count = v
	}
	return out
}

func decodeSortingColumnStruct(st map[string]*thriftValue) SortingColumn {
	var out SortingColumn
	if v, ok := st[fieldKey(1)].asInt32(); ok {
		out.ColumnIdx = v
	}
	if v, ok := st[fieldKey(2)].asBool(); ok {
		out.Descending = v
	}
	if v, ok := st[fieldKey(3)].asBool(); ok {
		out.NullsFirst = v
	}
	return out
}

func decodeKeyValueStruct(st map[string]*thriftValue) KeyValue {
	var out KeyValue
	if s, ok := st[fieldKey(1)].asString(); ok {
		out.Key = s
	}
	if s, ok := st[fieldKey(2)].asString(); ok {
		out.Value = &s
	}
	return out
}

// decodePageHeaderStruct re-shapes the generic Thrift tree for one
// PageHeader, per spec.md §3's four page header variants.
func decodePageHeaderStruct(st map[string]*thriftValue) (*PageHeader, error) {
	out := &PageHeader{}
	if v, ok := st[fieldKey(1)].asInt32(); ok {
		out.Type = PageType(v)
	}
	if v, ok := st[fieldKey(2)].asInt32(); ok {
		out.UncompressedPageSize = v
	}
	if v, ok := st[fieldKey(3)].asInt32(); ok {
		out.CompressedPageSize = v
	}
	if v, ok := st[fieldKey(4)].asInt32(); ok {
		out.CRC = &v
	}
	if sst, ok := st[fieldKey(5)].asStruct(); ok {
		out.DataPageHeader = decodeDataPageHeaderV1Struct(sst)
	}
	if sst, ok := st[fieldKey(7)].asStruct(); ok {
		out.DictionaryPageHeader = decodeDictionaryPageHeaderStruct(sst)
	}
	if sst, ok := st[fieldKey(8)].asStruct(); ok {
		out.DataPageHeaderV2 = decodeDataPageHeaderV2Struct(sst)
	}
	return out, nil
}

func decodeDataPageHeaderV1Struct(st map[string]*thriftValue) *DataPageHeaderV1 {
	out := &DataPageHeaderV1{}
	if v, ok := st[fieldKey(1)].asInt32(); ok {
		out.NumValues = v
	}
	if v, ok := st[fieldKey(2)].asInt32(); ok {
		out.Encoding = Encoding(v)
	}
	if v, ok := st[fieldKey(3)].asInt32(); ok {
		out.DefinitionLevelEncoding = Encoding(v)
	}
	if v, ok := st[fieldKey(4)].asInt32(); ok {
		out.RepetitionLevelEncoding = Encoding(v)
	}
	if sst, ok := st[fieldKey(5)].asStruct(); ok {
		s := decodeStatisticsStruct(sst)
		out.Statistics = &s
	}
	return out
}

func decodeDataPageHeaderV2Struct(st map[string]*thriftValue) *DataPageHeaderV2 {
	out := &DataPageHeaderV2{IsCompressed: true}
	if v, ok := st[fieldKey(1)].asInt32(); ok {
		out.NumValues = v
	}
	if v, ok := st[fieldKey(2)].asInt32(); ok {
		out.NumNulls = v
	}
	if v, ok := st[fieldKey(3)].asInt32(); ok {
		out.NumRows = v
	}
	if v, ok := st[fieldKey(4)].asInt32(); ok {
		out.Encoding = Encoding(v)
	}
	if v, ok := st[fieldKey(5)].asInt32(); ok {
		out.DefinitionLevelsByteLength = v
	}
	if v, ok := st[fieldKey(6)].asInt32(); ok {
		out.RepetitionLevelsByteLength = v
	}
	if v, ok := st[fieldKey(7)].asBool(); ok {
		out.IsCompressed = v
	}
	if sst, ok := st[fieldKey(8)].asStruct(); ok {
		s := decodeStatisticsStruct(sst)
		out.Statistics = &s
	}
	return out
}

func decodeDictionaryPageHeaderStruct(st map[string]*thriftValue) *DictionaryPageHeader {
	out := &DictionaryPageHeader{}
	if v, ok := st[fieldKey(1)].asInt32(); ok {
		out.NumValues = v
	}
	if v, ok := st[fieldKey(2)].asInt32(); ok {
		out.Encoding = Encoding(v)
	}
	if v, ok := st[fieldKey(3)].asBool(); ok {
		out.IsSorted = &v
	}
	return out
}
