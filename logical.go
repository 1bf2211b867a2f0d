package parquet

import (
	"encoding/json"
	"math/big"
	"time"
)

// julianEpoch is the Julian day number of the Unix epoch (1970-01-01),
// used to interpret INT96 timestamps per spec.md §4.10.
const julianEpoch = 2440588

// ConvertLogical applies converted_type transformations to a physical
// value decoded for a schema leaf, per spec.md §4.10. Values that are
// []interface{} (assembled repeated fields) or nil (nulls) pass through
// element-wise / unchanged.
func ConvertLogical(v interface{}, elem *SchemaElement, physType PhysicalType) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	if list, ok := v.([]interface{}); ok {
		out := make([]interface{}, len(list))
		for i, item := range list {
			converted, err := ConvertLogical(item, elem, physType)
			if err != nil {
				return nil, err
			}
			out[i] = converted
		}
		return out, nil
	}

	if elem.ConvertedType == nil {
		if physType == TypeInt96 {
			return convertInt96Timestamp(v)
		}
		return v, nil
	}

	switch *elem.ConvertedType {
	case ConvertedUTF8:
		return bytesToString(v)
	case ConvertedJSON:
		s, err := bytesToString(v)
		if err != nil {
			return nil, err
		}
		var parsed interface{}
		if err := json.Unmarshal([]byte(s), &parsed); err != nil {
			return nil, newErr(ErrThriftDecode, err)
		}
		return parsed, nil
	case ConvertedBSON:
		return nil, newErrf(ErrUnsupportedConvertedType, "BSON is not supported")
	case ConvertedInterval:
		return nil, newErrf(ErrUnsupportedConvertedType, "INTERVAL is not supported")
	case ConvertedDate:
		days, ok := v.(int32)
		if !ok {
			return nil, newErrf(ErrInternalInvariant, "DATE requires INT32, got %T", v)
		}
		return time.Unix(int64(days)*86400, 0).UTC(), nil
	case ConvertedTimeMillis:
		millis, ok := v.(int32)
		if !ok {
			return nil, newErrf(ErrInternalInvariant, "TIME_MILLIS requires INT32, got %T", v)
		}
		return time.UnixMilli(int64(millis)).UTC(), nil
	case ConvertedTimeMicros:
		return int64ToInstant(v, time.Microsecond)
	case ConvertedTimestampMillis:
		return int64ToInstant(v, time.Millisecond)
	case ConvertedTimestampMicros:
		return int64ToInstant(v, time.Microsecond)
	case ConvertedDecimal:
		return convertDecimal(v, elem)
	case ConvertedUint8, ConvertedUint16, ConvertedUint32, ConvertedUint64,
		ConvertedInt8, ConvertedInt16, ConvertedInt32, ConvertedInt64:
		return reinterpretWidth(v, *elem.ConvertedType)
	default:
		return v, nil
	}
}

func bytesToString(v interface{}) (string, error) {
	b, ok := v.([]byte)
	if !ok {
		return "", newErrf(ErrInternalInvariant, "UTF8/JSON requires BYTE_ARRAY, got %T", v)
	}
	return string(b), nil
}

func int64ToInstant(v interface{}, unit time.Duration) (time.Time, error) {
	n, ok := v.(int64)
	if !ok {
		return time.Time{}, newErrf(ErrInternalInvariant, "expected INT64, got %T", v)
	}
	switch unit {
	case time.Millisecond:
		return time.UnixMilli(n).UTC(), nil
	case time.Microsecond:
		return time.UnixMicro(n).UTC(), nil
	default:
		return time.Time{}, newErrf(ErrInternalInvariant, "unsupported time unit %v", unit)
	}
}

// convertInt96Timestamp interprets an INT96 physical value with no
// converted_type as Julian-day-plus-nanoseconds-of-day, per spec.md
// §4.10 and §3's numeric semantics note.
func convertInt96Timestamp(v interface{}) (time.Time, error) {
	i96, ok := v.(Int96)
	if !ok {
		return time.Time{}, newErrf(ErrInternalInvariant, "INT96 timestamp requires Int96, got %T", v)
	}
	nanosOfDay := int64(i96.Lo)
	julianDay := int64(i96.Hi)
	days := julianDay - julianEpoch
	return time.Unix(days*86400, nanosOfDay).UTC(), nil
}

// convertDecimal scales a physical value by 10^-scale, per spec.md
// §4.10. Byte-array-backed decimals are big-endian two's complement.
func convertDecimal(v interface{}, elem *SchemaElement) (*big.Rat, error) {
	scale := int32(0)
	if elem.Scale != nil {
		scale = *elem.Scale
	}

	var unscaled *big.Int
	switch x := v.(type) {
	case int32:
		unscaled = big.NewInt(int64(x))
	case int64:
		unscaled = big.NewInt(x)
	case []byte:
		unscaled = bigIntFromTwosComplement(x)
	default:
		return nil, newErrf(ErrInternalInvariant, "DECIMAL requires INT32/INT64/BYTE_ARRAY, got %T", v)
	}

	denom := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(scale)), nil)
	return new(big.Rat).SetFrac(unscaled, denom), nil
}

// bigIntFromTwosComplement interprets a big-endian byte slice as a
// signed two's complement integer.
func bigIntFromTwosComplement(b []byte) *big.Int {
	if len(b) == 0 {
		return big.NewInt(0)
	}
	n := new(big.Int).SetBytes(b)
	if b[0]&0x80 != 0 {
		bound := new(big.Int).Lsh(big.NewInt(1), uint(len(b))*8)
		n.Sub(n, bound)
	}
	return n
}

// reinterpretWidth applies UINT_*/INT_* converted types, which change
// how the physical INT32/INT64 value is interpreted but not its bits.
func reinterpretWidth(v interface{}, ct ConvertedType) (interface{}, error) {
	switch ct {
	case ConvertedUint8:
		n, err := asInt64(v)
		return uint8(n), err
	case ConvertedUint16:
		n, err := asInt64(v)
		return uint16(n), err
	case ConvertedUint32:
		n, err := asInt64(v)
		return uint32(n), err
	case ConvertedUint64:
		n, err := asInt64(v)
		return uint64(n), err
	case ConvertedInt8:
		n, err := asInt64(v)
		return int8(n), err
	case ConvertedInt16:
		n, err := asInt64(v)
		return int16(n), err
	case ConvertedInt32:
		n, err := asInt64(v)
		return int32(n), err
	case ConvertedInt64:
		return asInt64(v)
	default:
		return v, nil
	}
}

func asInt64(v interface{}) (int64, error) {
	switch x := v.(type) {
	case int32:
		return int64(x), nil
	case int64:
		return x, nil
	default:
		return 0, newErrf(ErrInternalInvariant, "expected INT32/INT64, got %T", v)
	}
}
