// Package hexbytes normalizes byte-like values coming from loosely typed
// JSON into canonical lowercase 0x-prefixed hex.
package hexbytes

import (
	"encoding/hex"
	"encoding/json"
	"math"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"

	"github.com/fleshka4/sugar-plan/internal/apperrors"
)

// Empty is the encoding of an empty (or absent) byte string.
const Empty = "0x"

// ToHex encodes data as lowercase 0x-prefixed hex.
//
// Accepted shapes: nil, []byte, hexutil.Bytes, a hex string with or without
// the 0x prefix, and sequences of integers in [0, 255] (as produced by
// encoding/json with or without UseNumber).
func ToHex(data any) (string, error) {
	b, err := ToBytes(data)
	if err != nil {
		return "", err
	}
	return hexutil.Encode(b), nil
}

// ToBytes decodes data into raw bytes using the same rules as ToHex.
func ToBytes(data any) ([]byte, error) {
	switch v := data.(type) {
	case nil:
		return []byte{}, nil
	case []byte:
		return v, nil
	case hexutil.Bytes:
		return v, nil
	case string:
		return fromHexString(v)
	case []int:
		out := make([]byte, len(v))
		for i, n := range v {
			if n < 0 || n > math.MaxUint8 {
				return nil, errors.Wrapf(apperrors.ErrEncoding, "element %d out of byte range: %d", i, n)
			}
			out[i] = byte(n)
		}
		return out, nil
	case []float64:
		items := make([]any, len(v))
		for i, f := range v {
			items[i] = f
		}
		return fromSequence(items)
	case []json.Number:
		items := make([]any, len(v))
		for i, n := range v {
			items[i] = n
		}
		return fromSequence(items)
	case []any:
		return fromSequence(v)
	default:
		return nil, errors.Wrapf(apperrors.ErrEncoding, "unsupported byte value of type %T", data)
	}
}

func fromHexString(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s = s[2:]
	}
	if len(s)%2 != 0 {
		return nil, errors.Wrapf(apperrors.ErrEncoding, "odd length hex string %q", s)
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, errors.Wrapf(apperrors.ErrEncoding, "hex.DecodeString: %v", err)
	}
	return b, nil
}

func fromSequence(items []any) ([]byte, error) {
	out := make([]byte, len(items))
	for i, item := range items {
		n, err := byteValue(item)
		if err != nil {
			return nil, errors.Wrapf(err, "element %d", i)
		}
		out[i] = n
	}
	return out, nil
}

func byteValue(item any) (byte, error) {
	var f float64
	switch v := item.(type) {
	case json.Number:
		i, err := v.Int64()
		if err != nil {
			return 0, errors.Wrapf(apperrors.ErrEncoding, "non-integer byte %q", v.String())
		}
		if i < 0 || i > math.MaxUint8 {
			return 0, errors.Wrapf(apperrors.ErrEncoding, "byte out of range: %d", i)
		}
		return byte(i), nil
	case float64:
		f = v
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case uint8:
		return v, nil
	default:
		return 0, errors.Wrapf(apperrors.ErrEncoding, "unsupported byte element of type %T", item)
	}

	if f != math.Trunc(f) || f < 0 || f > math.MaxUint8 {
		return 0, errors.Wrapf(apperrors.ErrEncoding, "byte out of range: %v", f)
	}
	return byte(f), nil
}
