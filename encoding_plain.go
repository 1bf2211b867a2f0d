package parquet

// Int96 is Parquet's twelve-byte physical type, reassembled per spec.md
// §3 as an unsigned 96-bit integer: the high 32 bits followed by the low
// 64 bits when read as (high << 64) | low.
type Int96 struct {
	Lo uint64
	Hi uint32
}

// decodePlainValues decodes `count` PLAIN-encoded values of the given
// physical type from data, per spec.md §4.6. Returns the decoded values
// and the number of bytes consumed. BYTE_ARRAY and FIXED_LEN_BYTE_ARRAY
// values are zero-copy sub-slices of data, per spec.md §9.
func decodePlainValues(data []byte, physType PhysicalType, typeLength int, count int) ([]interface{}, int, error) {
	c := newCursor(data)
	values := make([]interface{}, 0, count)

	switch physType {
	case TypeBoolean:
		nbytes := (count + 7) / 8
		bits, err := c.readBytes(nbytes)
		if err != nil {
			return nil, 0, err
		}
		for i := 0; i < count; i++ {
			byteIdx := i / 8
			bitIdx := uint(i % 8)
			values = append(values, (bits[byteIdx]>>bitIdx)&1 == 1)
		}
	case TypeInt32:
		for i := 0; i < count; i++ {
			v, err := c.readInt32LE()
			if err != nil {
				return nil, 0, err
			}
			values = append(values, v)
		}
	case TypeInt64:
		for i := 0; i < count; i++ {
			v, err := c.readInt64LE()
			if err != nil {
				return nil, 0, err
			}
			values = append(values, v)
		}
	case TypeInt96:
		for i := 0; i < count; i++ {
			lo, hi, err := c.readInt96()
			if err != nil {
				return nil, 0, err
			}
			values = append(values, Int96{Lo: lo, Hi: hi})
		}
	case TypeFloat:
		for i := 0; i < count; i++ {
			v, err := c.readFloat32LE()
			if err != nil {
				return nil, 0, err
			}
			values = append(values, v)
		}
	case TypeDouble:
		for i := 0; i < count; i++ {
			v, err := c.readFloat64LE()
			if err != nil {
				return nil, 0, err
			}
			values = append(values, v)
		}
	case TypeByteArray:
		for i := 0; i < count; i++ {
			n, err := c.readInt32LE()
			if err != nil {
				return nil, 0, err
			}
			if n < 0 {
				return nil, 0, newErrf(ErrTruncatedInput, "negative byte array length %d", n)
			}
			b, err := c.readBytes(int(n))
			if err != nil {
				return nil, 0, err
			}
			values = append(values, b)
		}
	case TypeFixedLenByteArray:
		if typeLength <= 0 {
			return nil, 0, newErrf(ErrInternalInvariant, "FIXED_LEN_BYTE_ARRAY requires a positive type_length")
		}
		for i := 0; i < count; i++ {
			b, err := c.readBytes(typeLength)
			if err != nil {
				return nil, 0, err
			}
			values = append(values, b)
		}
	default:
		return nil, 0, newErrf(ErrUnsupportedEncoding, "unknown physical type %d", physType)
	}

	return values, c.pos, nil
}

// byteStreamSplitElementWidth returns the element width in bytes for the
// two physical types BYTE_STREAM_SPLIT supports, per spec.md §4.6.
func byteStreamSplitElementWidth(physType PhysicalType) (int, bool) {
	switch physType {
	case TypeFloat:
		return 4, true
	case TypeDouble:
		return 8, true
	default:
		return 0, false
	}
}

// decodeByteStreamSplit reassembles `count` K-byte elements from K
// interleaved streams, per spec.md §4.6: value i's byte j comes from
// stream j at index i.
func decodeByteStreamSplit(data []byte, physType PhysicalType, count int) ([]interface{}, error) {
	width, ok := byteStreamSplitElementWidth(physType)
	if !ok {
		return nil, newErrf(ErrUnsupportedEncoding, "BYTE_STREAM_SPLIT does not support physical type %d", physType)
	}
	need := width * count
	if len(data) < need {
		return nil, newErrf(ErrTruncatedInput, "byte stream split needs %d bytes, have %d", need, len(data))
	}

	values := make([]interface{}, 0, count)
	elem := make([]byte, width)
	for i := 0; i < count; i++ {
		for j := 0; j < width; j++ {
			elem[j] = data[j*count+i]
		}
		switch physType {
		case TypeFloat:
			values = append(values, le32ToFloat32(elem))
		case TypeDouble:
			values = append(values, le64ToFloat64(elem))
		}
	}
	return values, nil
}

func le32ToFloat32(b []byte) float32 {
	c := newCursor(b)
	v, _ := c.readFloat32LE()
	return v
}

func le64ToFloat64(b []byte) float64 {
	c := newCursor(b)
	v, _ := c.readFloat64LE()
	return v
}
