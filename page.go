package parquet

// dataPage is a decoded (values, definition levels, repetition levels)
// triple, per spec.md §3's DataPage. When the page's value encoding is
// PLAIN_DICTIONARY/RLE_DICTIONARY, Values is nil and DictionaryIndices
// holds the codes to resolve against the column chunk's dictionary;
// otherwise DictionaryIndices is nil and Values holds physical values
// directly.
type dataPage struct {
	Values            []interface{}
	DictionaryIndices []uint32
	DefinitionLevels  []uint32
	RepetitionLevels  []uint32
	NumValues         int
	NumNulls          int
}

// readPageHeader decodes one Thrift Compact PageHeader struct starting at
// data's beginning and returns it along with the number of bytes consumed.
func readPageHeader(data []byte) (*PageHeader, int, error) {
	c := newCursor(data)
	dec := newThriftDecoder(c)
	st, err := dec.decodeStruct()
	if err != nil {
		return nil, 0, newErr(ErrThriftDecode, err)
	}
	ph, err := decodePageHeaderStruct(st)
	if err != nil {
		return nil, 0, err
	}
	return ph, c.pos, nil
}

// decodeDataPageV1 reads the uncompressed DATA_PAGE body, per spec.md
// §4.7: repetition levels (if the column is repeated), definition levels
// (if MaxDefinitionLevel > 0), then values per the page's declared encoding.
func decodeDataPageV1(body []byte, hdr *DataPageHeaderV1, node *SchemaNode, physType PhysicalType, typeLength int) (*dataPage, error) {
	numValues := int(hdr.NumValues)
	pos := 0

	var repLevels []uint32
	if node.MaxRepetitionLevel > 0 {
		levels, consumed, err := decodeLevelsWithLengthPrefix(body[pos:], bitWidthFor(node.MaxRepetitionLevel), numValues)
		if err != nil {
			return nil, err
		}
		repLevels = levels
		pos += consumed
	}

	var defLevels []uint32
	if node.MaxDefinitionLevel > 0 {
		levels, consumed, err := decodeLevelsWithLengthPrefix(body[pos:], bitWidthFor(node.MaxDefinitionLevel), numValues)
		if err != nil {
			return nil, err
		}
		defLevels = levels
		pos += consumed
	}

	numNulls := 0
	if defLevels != nil {
		maxDef := uint32(node.MaxDefinitionLevel)
		for _, d := range defLevels {
			if d < maxDef {
				numNulls++
			}
		}
	}
	numNonNull := numValues - numNulls

	page := &dataPage{
		DefinitionLevels: defLevels,
		RepetitionLevels: repLevels,
		NumValues:        numValues,
		NumNulls:         numNulls,
	}

	switch hdr.Encoding {
	case EncodingPlain:
		values, _, err := decodePlainValues(body[pos:], physType, typeLength, numNonNull)
		if err != nil {
			return nil, err
		}
		page.Values = values
	case EncodingPlainDictionary, EncodingRLEDictionary:
		indices, err := decodeDictionaryIndices(body[pos:], numNonNull)
		if err != nil {
			return nil, err
		}
		page.DictionaryIndices = indices
	case EncodingDeltaBinaryPacked:
		if physType != TypeInt32 && physType != TypeInt64 {
			return nil, newErrf(ErrUnsupportedEncoding, "DELTA_BINARY_PACKED does not apply to physical type %d", physType)
		}
		deltas, err := decodeDeltaBinaryPacked(body[pos:], numNonNull)
		if err != nil {
			return nil, err
		}
		values := make([]interface{}, len(deltas))
		for i, v := range deltas {
			if physType == TypeInt32 {
				values[i] = int32(v)
			} else {
				values[i] = v
			}
		}
		page.Values = values
	case EncodingByteStreamSplit:
		values, err := decodeByteStreamSplit(body[pos:], physType, numNonNull)
		if err != nil {
			return nil, err
		}
		page.Values = values
	default:
		return nil, newErrf(ErrUnsupportedEncoding, "page encoding %d not supported", hdr.Encoding)
	}

	return page, nil
}

// decodeDataPageV2 reads a DATA_PAGE_V2 body, per spec.md §4.7: the
// repetition- and definition-level sections are uncompressed and sized
// explicitly by the header (no length prefix). The caller is responsible
// for decompressing the values section first (its compression is
// governed by hdr.IsCompressed and the chunk's codec) since doing so
// requires the chunk's codec table; levelsAndValues here always holds
// levels followed by already-uncompressed values.
func decodeDataPageV2(levelsAndValues []byte, hdr *DataPageHeaderV2, node *SchemaNode, physType PhysicalType, typeLength int) (*dataPage, error) {
	numValues := int(hdr.NumValues)
	numNulls := int(hdr.NumNulls)
	numNonNull := numValues - numNulls

	pos := 0
	var repLevels []uint32
	if node.MaxRepetitionLevel > 0 {
		repByteLen := int(hdr.RepetitionLevelsByteLength)
		if pos+repByteLen > len(levelsAndValues) {
			return nil, newErrf(ErrLevelsByteLengthMismatch, "repetition level section exceeds page body")
		}
		levels, err := decodeLevelsNoPrefix(levelsAndValues[pos:pos+repByteLen], bitWidthFor(node.MaxRepetitionLevel), numValues)
		if err != nil {
			return nil, err
		}
		repLevels = levels
		pos += repByteLen
	}

	var defLevels []uint32
	if node.MaxDefinitionLevel > 0 {
		defByteLen := int(hdr.DefinitionLevelsByteLength)
		if pos+defByteLen > len(levelsAndValues) {
			return nil, newErrf(ErrLevelsByteLengthMismatch, "definition level section exceeds page body")
		}
		levels, err := decodeLevelsNoPrefix(levelsAndValues[pos:pos+defByteLen], bitWidthFor(node.MaxDefinitionLevel), numValues)
		if err != nil {
			return nil, err
		}
		defLevels = levels
		pos += defByteLen
	}

	valuesSection := levelsAndValues[pos:]

	page := &dataPage{
		DefinitionLevels: defLevels,
		RepetitionLevels: repLevels,
		NumValues:        numValues,
		NumNulls:         numNulls,
	}

	switch hdr.Encoding {
	case EncodingPlain:
		values, _, err := decodePlainValues(valuesSection, physType, typeLength, numNonNull)
		if err != nil {
			return nil, err
		}
		page.Values = values
	case EncodingPlainDictionary, EncodingRLEDictionary:
		indices, err := decodeDictionaryIndices(valuesSection, numNonNull)
		if err != nil {
			return nil, err
		}
		page.DictionaryIndices = indices
	case EncodingDeltaBinaryPacked:
		deltas, err := decodeDeltaBinaryPacked(valuesSection, numNonNull)
		if err != nil {
			return nil, err
		}
		values := make([]interface{}, len(deltas))
		for i, v := range deltas {
			if physType == TypeInt32 {
				values[i] = int32(v)
			} else {
				values[i] = v
			}
		}
		page.Values = values
	case EncodingByteStreamSplit:
		values, err := decodeByteStreamSplit(valuesSection, physType, numNonNull)
		if err != nil {
			return nil, err
		}
		page.Values = values
	default:
		return nil, newErrf(ErrUnsupportedEncoding, "page encoding %d not supported", hdr.Encoding)
	}

	return page, nil
}

// decodeDictionaryPage decodes a DICTIONARY_PAGE body: PLAIN-encoded
// values regardless of the page's declared encoding, per spec.md §4.7.
func decodeDictionaryPage(body []byte, hdr *DictionaryPageHeader, physType PhysicalType, typeLength int) ([]interface{}, error) {
	values, _, err := decodePlainValues(body, physType, typeLength, int(hdr.NumValues))
	if err != nil {
		return nil, err
	}
	return values, nil
}
