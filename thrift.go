package parquet

import (
	"encoding/hex"
	"fmt"
	"strconv"
)

// Thrift Compact Protocol wire types, per spec.md §4.3.
const (
	twStop   = 0
	twTrue   = 1
	twFalse  = 2
	twByte   = 3
	twI16    = 4
	twI32    = 5
	twI64    = 6
	twDouble = 7
	twBinary = 8
	twList   = 9
	twSet    = 10
	twMap    = 11
	twStruct = 12
	twUUID   = 13
)

// thriftValue is one decoded Thrift Compact field. Only the members that
// match Kind are meaningful, mirroring the tagged-variant tree spec.md §9
// describes as the intermediate representation of a dynamically-typed
// Thrift decode.
type thriftValue struct {
	kind   uint8
	bul    bool
	i64    int64
	f64    float64
	bytes  []byte
	uuid   string
	list   []*thriftValue
	listOf uint8
	mkeys  []*thriftValue
	mvals  []*thriftValue
	strct  map[string]*thriftValue
}

func (v *thriftValue) asInt32() (int32, bool) {
	if v == nil {
		return 0, false
	}
	switch v.kind {
	case twByte, twI16, twI32, twI64:
		return int32(v.i64), true
	default:
		return 0, false
	}
}

func (v *thriftValue) asInt64() (int64, bool) {
	if v == nil {
		return 0, false
	}
	switch v.kind {
	case twByte, twI16, twI32, twI64:
		return v.i64, true
	default:
		return 0, false
	}
}

func (v *thriftValue) asBool() (bool, bool) {
	if v == nil {
		return false, false
	}
	switch v.kind {
	case twTrue:
		return true, true
	case twFalse:
		return false, true
	default:
		return false, false
	}
}

func (v *thriftValue) asBytes() ([]byte, bool) {
	if v == nil || v.kind != twBinary {
		return nil, false
	}
	return v.bytes, true
}

func (v *thriftValue) asString() (string, bool) {
	b, ok := v.asBytes()
	if !ok {
		return "", false
	}
	return string(b), true
}

func (v *thriftValue) asStruct() (map[string]*thriftValue, bool) {
	if v == nil || v.kind != twStruct {
		return nil, false
	}
	return v.strct, true
}

func (v *thriftValue) asList() ([]*thriftValue, bool) {
	if v == nil || (v.kind != twList && v.kind != twSet) {
		return nil, false
	}
	return v.list, true
}

// thriftDecoder decodes the Thrift Compact Protocol into a generic
// field-id-keyed tree, per spec.md §4.3. It is used once, at metadata and
// page-header decode time, never in the per-value hot path.
type thriftDecoder struct {
	c *cursor
}

func newThriftDecoder(c *cursor) *thriftDecoder {
	return &thriftDecoder{c: c}
}

// decodeStruct reads field headers until STOP, producing a map keyed by
// "field_<id>" as spec.md §4.3 specifies.
func (d *thriftDecoder) decodeStruct() (map[string]*thriftValue, error) {
	out := make(map[string]*thriftValue)
	var lastFid int16

	for {
		header, err := d.c.readByte()
		if err != nil {
			return nil, err
		}

		typeNibble := header & 0x0F
		if typeNibble == twStop {
			return out, nil
		}

		deltaNibble := (header >> 4) & 0x0F
		if deltaNibble == 0 {
			id, err := d.c.readVarint()
			if err != nil {
				return nil, err
			}
			lastFid = int16(id)
		} else {
			lastFid += int16(deltaNibble)
		}

		val, err := d.decodeValue(typeNibble)
		if err != nil {
			return nil, err
		}
		out[fmt.Sprintf("field_%d", lastFid)] = val
	}
}

func (d *thriftDecoder) decodeValue(wireType byte) (*thriftValue, error) {
	switch wireType {
	case twTrue:
		return &thriftValue{kind: twTrue, bul: true}, nil
	case twFalse:
		return &thriftValue{kind: twFalse, bul: false}, nil
	case twByte:
		b, err := d.c.readInt8()
		if err != nil {
			return nil, err
		}
		return &thriftValue{kind: twByte, i64: int64(b)}, nil
	case twI16, twI32, twI64:
		n, err := d.c.readVarint()
		if err != nil {
			return nil, err
		}
		return &thriftValue{kind: wireType, i64: n}, nil
	case twDouble:
		f, err := d.c.readFloat64LE()
		if err != nil {
			return nil, err
		}
		return &thriftValue{kind: twDouble, f64: f}, nil
	case twBinary:
		n, err := d.c.readUvarint()
		if err != nil {
			return nil, err
		}
		b, err := d.c.readBytes(int(n))
		if err != nil {
			return nil, err
		}
		return &thriftValue{kind: twBinary, bytes: b}, nil
	case twList, twSet:
		return d.decodeList(wireType)
	case twMap:
		return d.decodeMap()
	case twStruct:
		s, err := d.decodeStruct()
		if err != nil {
			return nil, err
		}
		return &thriftValue{kind: twStruct, strct: s}, nil
	case twUUID:
		b, err := d.c.readBytes(16)
		if err != nil {
			return nil, err
		}
		return &thriftValue{kind: twUUID, uuid: hex.EncodeToString(b)}, nil
	default:
		return nil, newErrf(ErrThriftDecode, "unknown thrift wire type %d", wireType)
	}
}

func (d *thriftDecoder) decodeList(wireType byte) (*thriftValue, error) {
	sizeAndType, err := d.c.readByte()
	if err != nil {
		return nil, err
	}
	elemType := sizeAndType & 0x0F
	size := int(sizeAndType >> 4)
	if size == 0x0F {
		n, err := d.c.readUvarint()
		if err != nil {
			return nil, err
		}
		size = int(n)
	}

	elems := make([]*thriftValue, 0, size)
	for i := 0; i < size; i++ {
		v, err := d.decodeValue(elemType)
		if err != nil {
			return nil, err
		}
		elems = append(elems, v)
	}
	return &thriftValue{kind: wireType, list: elems, listOf: elemType}, nil
}

func (d *thriftDecoder) decodeMap() (*thriftValue, error) {
	size, err := d.c.readUvarint()
	if err != nil {
		return nil, err
	}
	if size == 0 {
		return &thriftValue{kind: twMap}, nil
	}
	kvTypes, err := d.c.readByte()
	if err != nil {
		return nil, err
	}
	keyType := (kvTypes >> 4) & 0x0F
	valType := kvTypes & 0x0F

	keys := make([]*thriftValue, 0, size)
	vals := make([]*thriftValue, 0, size)
	for i := uint64(0); i < size; i++ {
		k, err := d.decodeValue(keyType)
		if err != nil {
			return nil, err
		}
		v, err := d.decodeValue(valType)
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
		vals = append(vals, v)
	}
	return &thriftValue{kind: twMap, mkeys: keys, mvals: vals}, nil
}

// fieldKey formats a Thrift field id the way decodeStruct keys its output map.
func fieldKey(id int) string {
	return "field_" + strconv.Itoa(id)
}
