package parquet

// Enum types below map the integer Thrift encodings from spec.md §6 to
// named Go constants. The underlying representation stays int32 because
// that is the width Thrift uses on the wire for these fields.

// PhysicalType is a Parquet SchemaElement's physical (on-disk) type.
type PhysicalType int32

const (
	TypeBoolean              PhysicalType = 0
	TypeInt32                PhysicalType = 1
	TypeInt64                PhysicalType = 2
	TypeInt96                PhysicalType = 3
	TypeFloat                PhysicalType = 4
	TypeDouble               PhysicalType = 5
	TypeByteArray            PhysicalType = 6
	TypeFixedLenByteArray    PhysicalType = 7
)

// FieldRepetitionType is a SchemaElement's repetition kind.
type FieldRepetitionType int32

const (
	RepetitionRequired FieldRepetitionType = 0
	RepetitionOptional FieldRepetitionType = 1
	RepetitionRepeated FieldRepetitionType = 2
)

// Encoding names a page's value or level encoding.
type Encoding int32

const (
	EncodingPlain                 Encoding = 0
	EncodingPlainDictionary       Encoding = 2
	EncodingRLE                   Encoding = 3
	EncodingBitPacked             Encoding = 4
	EncodingDeltaBinaryPacked     Encoding = 5
	EncodingDeltaLengthByteArray  Encoding = 6
	EncodingDeltaByteArray        Encoding = 7
	EncodingRLEDictionary         Encoding = 8
	EncodingByteStreamSplit       Encoding = 9
)

// CompressionCodec names a column chunk's compression codec.
type CompressionCodec int32

const (
	CodecUncompressed CompressionCodec = 0
	CodecSnappy       CompressionCodec = 1
	CodecGzip         CompressionCodec = 2
	CodecLZO          CompressionCodec = 3
	CodecBrotli       CompressionCodec = 4
	CodecLZ4          CompressionCodec = 5
	CodecZstd         CompressionCodec = 6
	CodecLZ4Raw       CompressionCodec = 7
)

// PageType names one of the four PageHeader variants.
type PageType int32

const (
	PageTypeData       PageType = 0
	PageTypeIndex      PageType = 1
	PageTypeDictionary PageType = 2
	PageTypeDataV2     PageType = 3
)

// ConvertedType names a SchemaElement's logical annotation.
type ConvertedType int32

const (
	ConvertedUTF8           ConvertedType = 0
	ConvertedMap            ConvertedType = 1
	ConvertedMapKeyValue    ConvertedType = 2
	ConvertedList           ConvertedType = 3
	ConvertedEnum           ConvertedType = 4
	ConvertedDecimal        ConvertedType = 5
	ConvertedDate           ConvertedType = 6
	ConvertedTimeMillis     ConvertedType = 7
	ConvertedTimeMicros     ConvertedType = 8
	ConvertedTimestampMillis ConvertedType = 9
	ConvertedTimestampMicros ConvertedType = 10
	ConvertedUint8          ConvertedType = 11
	ConvertedUint16         ConvertedType = 12
	ConvertedUint32         ConvertedType = 13
	ConvertedUint64         ConvertedType = 14
	ConvertedInt8           ConvertedType = 15
	ConvertedInt16          ConvertedType = 16
	ConvertedInt32          ConvertedType = 17
	ConvertedInt64          ConvertedType = 18
	ConvertedJSON           ConvertedType = 19
	ConvertedBSON           ConvertedType = 20
	ConvertedInterval       ConvertedType = 21
)

// FileMetadata is the typed, fully decoded Parquet footer. It is built once
// per file by MetadataParser and is immutable thereafter.
type FileMetadata struct {
	Version           int32
	Schema            []SchemaElement
	NumRows           int64
	RowGroups         []RowGroup
	KeyValueMetadata  []KeyValue
	CreatedBy         *string
	MetadataByteLen   int64
}

// SchemaElement is one node of the flat, depth-first schema list.
type SchemaElement struct {
	Type           *PhysicalType
	TypeLength     *int32
	RepetitionType *FieldRepetitionType
	Name           string
	NumChildren    *int32
	ConvertedType  *ConvertedType
	Scale          *int32
	Precision      *int32
	FieldID        *int32
}

// RowGroup holds the column chunks written for one horizontal slice of rows.
type RowGroup struct {
	Columns             []ColumnChunk
	TotalByteSize       int64
	NumRows             int64
	SortingColumns      []SortingColumn
	FileOffset          *int64
	TotalCompressedSize *int64
	Ordinal             *int32
}

// ColumnChunk names where one column's data lives within a row group.
type ColumnChunk struct {
	FilePath          []string
	FileOffset        int64
	MetaData          *ColumnMetaData
	OffsetIndexOffset *int64
	OffsetIndexLength *int32
	ColumnIndexOffset *int64
	ColumnIndexLength *int32
}

// ColumnMetaData is field_3 of ColumnChunk; field numbers below are the
// Thrift field ids named in spec.md §4.4.
type ColumnMetaData struct {
	Type                  PhysicalType        // field_1
	Encodings             []Encoding          // field_2
	PathInSchema          []string            // field_3
	Codec                 CompressionCodec    // field_4
	NumValues             int64               // field_5
	TotalUncompressedSize int64               // field_6
	TotalCompressedSize   int64               // field_7
	KeyValueMetadata      []KeyValue          // field_8
	DataPageOffset        int64               // field_9
	IndexPageOffset       *int64              // field_10
	DictionaryPageOffset  *int64              // field_11
	Statistics            *Statistics         // field_12
	EncodingStats         []PageEncodingStats // field_13
	BloomFilterOffset     *int64
	BloomFilterLength     *int32
	SizeStatistics        *SizeStatistics
}

type KeyValue struct {
	Key   string
	Value *string
}

// Statistics carries both the deprecated min/max fields and the modern
// min_value/max_value fields real writers emit alongside them.
type Statistics struct {
	Max           []byte
	Min           []byte
	NullCount     *int64
	DistinctCount *int64
	MaxValue      []byte
	MinValue      []byte
}

type SizeStatistics struct {
	UnencodedByteArrayDataBytes *int64
	RepetitionLevelHistogram    []int64
	DefinitionLevelHistogram    []int64
}

type PageEncodingStats struct {
	PageType PageType
	Encoding Encoding
	Count    int32
}

type SortingColumn struct {
	ColumnIdx  int32
	Descending bool
	NullsFirst bool
}

// DataPageHeaderV1 is the type-specific header for a DATA_PAGE.
type DataPageHeaderV1 struct {
	NumValues               int32
	Encoding                Encoding
	DefinitionLevelEncoding Encoding
	RepetitionLevelEncoding Encoding
	Statistics              *Statistics
}

// DataPageHeaderV2 is the type-specific header for a DATA_PAGE_V2.
type DataPageHeaderV2 struct {
	NumValues                  int32
	NumNulls                   int32
	NumRows                    int32
	Encoding                   Encoding
	DefinitionLevelsByteLength int32
	RepetitionLevelsByteLength int32
	IsCompressed               bool // defaults to true when absent, per the Thrift IDL
	Statistics                 *Statistics
}

// DictionaryPageHeader is the type-specific header for a DICTIONARY_PAGE.
type DictionaryPageHeader struct {
	NumValues int32
	Encoding  Encoding
	IsSorted  *bool
}

// PageHeader is one of the four page header variants named in spec.md §3.
type PageHeader struct {
	Type                 PageType
	UncompressedPageSize int32
	CompressedPageSize   int32
	CRC                  *int32
	DataPageHeader       *DataPageHeaderV1
	DictionaryPageHeader *DictionaryPageHeader
	DataPageHeaderV2     *DataPageHeaderV2
}
