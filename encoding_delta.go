package parquet

// decodeDeltaBinaryPacked decodes a DELTA_BINARY_PACKED stream, per
// spec.md §4.6. Layout: blockSize (varint), miniblocksPerBlock (varint),
// totalValueCount (varint), firstValue (zigzag varint); then blocks, each
// a minDelta (zigzag varint), miniblocksPerBlock per-miniblock bit-width
// bytes, and each miniblock's blockSize/miniblocksPerBlock packed deltas
// at that width. Reconstruction: value = firstValue, then for each delta
// d, value += minDelta + d.
func decodeDeltaBinaryPacked(data []byte, numValues int) ([]int64, error) {
	c := newCursor(data)

	blockSize, err := c.readUvarint()
	if err != nil {
		return nil, err
	}
	miniblocksPerBlock, err := c.readUvarint()
	if err != nil {
		return nil, err
	}
	totalValueCount, err := c.readUvarint()
	if err != nil {
		return nil, err
	}
	firstValue, err := c.readVarint()
	if err != nil {
		return nil, err
	}

	if miniblocksPerBlock == 0 || blockSize%miniblocksPerBlock != 0 {
		return nil, newErrf(ErrInternalInvariant, "blockSize %d not divisible by miniblocksPerBlock %d", blockSize, miniblocksPerBlock)
	}
	valuesPerMiniblock := int(blockSize / miniblocksPerBlock)

	values := make([]int64, 0, totalValueCount)
	values = append(values, firstValue)
	currentValue := firstValue

	bitWidths := make([]byte, miniblocksPerBlock)

	for uint64(len(values)) < totalValueCount {
		minDelta, err := c.readVarint()
		if err != nil {
			return nil, err
		}
		for i := range bitWidths {
			b, err := c.readByte()
			if err != nil {
				return nil, err
			}
			bitWidths[i] = b
		}

		for mb := 0; mb < int(miniblocksPerBlock); mb++ {
			width := uint(bitWidths[mb])
			byteCount := (valuesPerMiniblock*int(width) + 7) / 8
			chunk, err := c.readBytes(byteCount)
			if err != nil {
				return nil, err
			}
			// Trailing miniblocks beyond the declared value count are
			// still present in the stream, padded, and must be
			// byte-skipped: decode them but discard values past
			// totalValueCount.
			// Miniblock bit widths aren't capped at 32: an INT64 column's
			// deltas can need up to 64 bits, so this can't reuse
			// unpackBits without truncating the high bits.
			deltas := unpackBits64(chunk, valuesPerMiniblock, width)
			for _, d := range deltas {
				if uint64(len(values)) >= totalValueCount {
					continue
				}
				currentValue += minDelta + int64(d)
				values = append(values, currentValue)
			}
		}
	}

	if len(values) < numValues {
		return nil, newErrf(ErrTruncatedInput, "delta binary packed stream produced %d of %d values", len(values), numValues)
	}
	return values[:numValues], nil
}
