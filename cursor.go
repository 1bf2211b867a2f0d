package parquet

import (
	"encoding/binary"
	"math"
)

// cursor is a stateful reader over an in-memory byte slice. It tracks a
// mutable byte offset and bounds-checks every read against the slice,
// the way the teacher's simpleVarintReader and decodeRLEBytes track an
// index into src. All multi-byte primitives are little-endian, per the
// Parquet wire format.
type cursor struct {
	data []byte
	pos  int
}

func newCursor(data []byte) *cursor {
	return &cursor{data: data}
}

func (c *cursor) remaining() int {
	return len(c.data) - c.pos
}

func (c *cursor) atEnd() bool {
	return c.pos >= len(c.data)
}

func (c *cursor) need(n int) error {
	if n < 0 || c.pos+n > len(c.data) {
		return newErrf(ErrTruncatedInput, "need %d bytes at offset %d, have %d", n, c.pos, len(c.data))
	}
	return nil
}

func (c *cursor) readByte() (byte, error) {
	if err := c.need(1); err != nil {
		return 0, err
	}
	b := c.data[c.pos]
	c.pos++
	return b, nil
}

// readBytes returns a zero-copy sub-slice of the underlying buffer, per
// the zero-copy guidance in spec.md §9.
func (c *cursor) readBytes(n int) ([]byte, error) {
	if err := c.need(n); err != nil {
		return nil, err
	}
	b := c.data[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

func (c *cursor) skip(n int) error {
	if err := c.need(n); err != nil {
		return err
	}
	c.pos += n
	return nil
}

func (c *cursor) readUint8() (uint8, error) {
	return c.readByte()
}

func (c *cursor) readInt8() (int8, error) {
	b, err := c.readByte()
	return int8(b), err
}

func (c *cursor) readUint16LE() (uint16, error) {
	b, err := c.readBytes(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (c *cursor) readInt16LE() (int16, error) {
	v, err := c.readUint16LE()
	return int16(v), err
}

func (c *cursor) readUint32LE() (uint32, error) {
	b, err := c.readBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (c *cursor) readInt32LE() (int32, error) {
	v, err := c.readUint32LE()
	return int32(v), err
}

func (c *cursor) readUint64LE() (uint64, error) {
	b, err := c.readBytes(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (c *cursor) readInt64LE() (int64, error) {
	v, err := c.readUint64LE()
	return int64(v), err
}

func (c *cursor) readFloat32LE() (float32, error) {
	v, err := c.readUint32LE()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

func (c *cursor) readFloat64LE() (float64, error) {
	v, err := c.readUint64LE()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

// readInt96 reads Parquet's twelve-byte INT96: the low 64 bits then the
// high 32 bits, combined per spec.md §3 as (high << 64) | low.
func (c *cursor) readInt96() (lo uint64, hi uint32, err error) {
	b, err := c.readBytes(12)
	if err != nil {
		return 0, 0, err
	}
	lo = binary.LittleEndian.Uint64(b[0:8])
	hi = binary.LittleEndian.Uint32(b[8:12])
	return lo, hi, nil
}

// readUvarint reads an Unsigned LEB128 varint, 1-10 bytes for a 64-bit value.
func (c *cursor) readUvarint() (uint64, error) {
	var result uint64
	var shift uint
	for i := 0; ; i++ {
		if i >= 10 {
			return 0, newErrf(ErrThriftDecode, "varint exceeds 10 bytes")
		}
		b, err := c.readByte()
		if err != nil {
			return 0, err
		}
		result |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return result, nil
		}
		shift += 7
	}
}

// readVarint reads a zigzag-encoded signed varint: (n >> 1) ^ -(n & 1).
func (c *cursor) readVarint() (int64, error) {
	u, err := c.readUvarint()
	if err != nil {
		return 0, err
	}
	return zigzagDecode64(u), nil
}

func zigzagDecode64(u uint64) int64 {
	return int64(u>>1) ^ -int64(u&1)
}

func zigzagEncode64(n int64) uint64 {
	return uint64((n << 1) ^ (n >> 63))
}
