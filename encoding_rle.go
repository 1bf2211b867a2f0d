package parquet

import "encoding/binary"

// decodeRuns decodes RLE/bit-packed hybrid runs from src until maxValues
// values have been produced or src is exhausted, per spec.md §4.6. It
// returns the decoded values and the number of source bytes consumed.
//
// Each run begins with a varint header: bit 0 clear selects an RLE run of
// header>>1 repetitions of one little-endian value; bit 0 set selects a
// bit-packed run of (header>>1)*8 values packed at bitWidth bits each.
func decodeRuns(src []byte, bitWidth uint, maxValues int) ([]uint32, int, error) {
	values := make([]uint32, 0, maxValues)
	pos := 0

	for len(values) < maxValues && pos < len(src) {
		header, n := binary.Uvarint(src[pos:])
		if n <= 0 {
			return values, pos, newErrf(ErrThriftDecode, "invalid RLE/bit-packed run header")
		}
		pos += n

		if header&1 == 0 {
			// RLE run: header>>1 repetitions of one value.
			count := int(header >> 1)
			bytesPerValue := int((bitWidth + 7) / 8)
			var word uint32
			if bytesPerValue > 0 {
				if pos+bytesPerValue > len(src) {
					return values, pos, newErrf(ErrTruncatedInput, "RLE run value truncated")
				}
				word = leUint(src[pos:pos+bytesPerValue], bytesPerValue)
				pos += bytesPerValue
			}
			for k := 0; k < count && len(values) < maxValues; k++ {
				values = append(values, word)
			}
		} else {
			// Bit-packed run: (header>>1)*8 values, bitWidth bits each,
			// possibly crossing byte boundaries.
			groups := int(header >> 1)
			count := groups * 8
			byteCount := (count*int(bitWidth) + 7) / 8

			available := len(src) - pos
			take := byteCount
			if take > available {
				take = available
			}
			unpacked := unpackBits(src[pos:pos+take], count, bitWidth)
			pos += take

			for _, v := range unpacked {
				if len(values) >= maxValues {
					break
				}
				values = append(values, v)
			}
		}
	}

	return values, pos, nil
}

// leUint reads an n-byte (n in {0,1,2,4}) little-endian unsigned integer,
// the widths the RLE/bit-packed hybrid uses for its 0/1-8/9-16/17-32 bit
// width buckets, per spec.md §4.6.
func leUint(b []byte, n int) uint32 {
	switch n {
	case 1:
		return uint32(b[0])
	case 2:
		return uint32(binary.LittleEndian.Uint16(b))
	case 4:
		return binary.LittleEndian.Uint32(b)
	default:
		return 0
	}
}

// unpackBits extracts `count` values of `bitWidth` bits each from src,
// LSB-first, using a sliding 64-bit register that refills from the byte
// stream when fewer than bitWidth bits remain, per spec.md §9. Reading
// past the end of src yields zero bits rather than an error, matching
// bit-packed runs whose declared group size pads beyond the values
// actually present.
func unpackBits(src []byte, count int, bitWidth uint) []uint32 {
	out := make([]uint32, count)
	if bitWidth == 0 {
		return out
	}

	var bitBuf uint64
	var bitCount uint
	srcPos := 0
	mask := uint64(1)<<bitWidth - 1

	for i := 0; i < count; i++ {
		for bitCount < bitWidth {
			var b byte
			if srcPos < len(src) {
				b = src[srcPos]
				srcPos++
			}
			bitBuf |= uint64(b) << bitCount
			bitCount += 8
		}
		out[i] = uint32(bitBuf & mask)
		bitBuf >>= bitWidth
		bitCount -= bitWidth
	}
	return out
}

// unpackBits64 is unpackBits widened to 64-bit output, for callers whose
// bit width can legitimately exceed 32 (DELTA_BINARY_PACKED miniblocks on
// INT64 columns, per spec.md §4.6). Dictionary indices and definition/
// repetition levels are always <=32 bits and keep using unpackBits.
func unpackBits64(src []byte, count int, bitWidth uint) []uint64 {
	out := make([]uint64, count)
	if bitWidth == 0 {
		return out
	}

	var bitBuf uint64
	var bitCount uint
	// spill holds the high bits of a byte that did not fit in bitBuf.
	var spill uint64
	srcPos := 0
	var mask uint64
	if bitWidth >= 64 {
		mask = ^uint64(0)
	} else {
		mask = uint64(1)<<bitWidth - 1
	}

	for i := 0; i < count; i++ {
		for bitCount < bitWidth {
			var b byte
			if srcPos < len(src) {
				b = src[srcPos]
				srcPos++
			}
			bitBuf |= uint64(b) << bitCount
			if bitCount > 56 {
				spill = uint64(b) >> (64 - bitCount)
			}
			bitCount += 8
		}
		out[i] = bitBuf & mask
		bitBuf = bitBuf>>bitWidth | spill<<(64-bitWidth)
		spill = 0
		bitCount -= bitWidth
	}
	return out
}

// decodeLevelsWithLengthPrefix decodes a length-prefixed RLE/bit-packed
// level stream (DATA_PAGE V1 layout): a little-endian int32 byte length,
// then the encoded run bytes. Returns the levels and total bytes consumed
// including the 4-byte prefix.
func decodeLevelsWithLengthPrefix(data []byte, bitWidth uint, numValues int) ([]uint32, int, error) {
	c := newCursor(data)
	length, err := c.readInt32LE()
	if err != nil {
		return nil, 0, err
	}
	if length < 0 {
		return nil, 0, newErrf(ErrTruncatedInput, "negative RLE section length %d", length)
	}
	encoded, err := c.readBytes(int(length))
	if err != nil {
		return nil, 0, err
	}
	if bitWidth == 0 {
		levels := make([]uint32, numValues)
		return levels, 4 + int(length), nil
	}
	values, _, err := decodeRuns(encoded, bitWidth, numValues)
	if err != nil {
		return nil, 0, err
	}
	if len(values) < numValues {
		return nil, 0, newErrf(ErrTruncatedInput, "RLE/bit-packed stream produced %d of %d values", len(values), numValues)
	}
	return values[:numValues], 4 + int(length), nil
}

// decodeLevelsNoPrefix decodes an un-prefixed RLE/bit-packed level stream
// (DATA_PAGE_V2 layout), where the byte length is given by the page
// header instead of a prefix.
func decodeLevelsNoPrefix(data []byte, bitWidth uint, numValues int) ([]uint32, error) {
	if bitWidth == 0 {
		return make([]uint32, numValues), nil
	}
	values, _, err := decodeRuns(data, bitWidth, numValues)
	if err != nil {
		return nil, err
	}
	if len(values) < numValues {
		return nil, newErrf(ErrTruncatedInput, "RLE/bit-packed stream produced %d of %d values", len(values), numValues)
	}
	return values[:numValues], nil
}

// decodeDictionaryIndices decodes RLE_DICTIONARY / PLAIN_DICTIONARY value
// data: a one-byte bit width followed by an RLE/bit-packed hybrid stream
// with no length prefix (length = remaining bytes), per spec.md §4.7.
func decodeDictionaryIndices(data []byte, numValues int) ([]uint32, error) {
	if numValues == 0 {
		return nil, nil
	}
	if len(data) < 1 {
		return nil, newErrf(ErrTruncatedInput, "dictionary index stream missing bit width byte")
	}
	bitWidth := uint(data[0])
	if bitWidth > 32 {
		return nil, newErrf(ErrUnsupportedEncoding, "dictionary index bit width %d exceeds 32", bitWidth)
	}
	if bitWidth == 0 {
		return make([]uint32, numValues), nil
	}
	values, _, err := decodeRuns(data[1:], bitWidth, numValues)
	if err != nil {
		return nil, err
	}
	if len(values) < numValues {
		return nil, newErrf(ErrTruncatedInput, "dictionary index stream produced %d of %d values", len(values), numValues)
	}
	return values[:numValues], nil
}
