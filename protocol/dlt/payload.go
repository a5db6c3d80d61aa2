// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package dlt

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"

	"github.com/danjacques/godlt/support/byteslicereader"

	"github.com/pkg/errors"
)

// Type-info bit assignments of a verbose payload item. The low nibble is
// TYLE, the declared value width.
const (
	tyleMask = 0x0000000F

	typeBool         = 0x00000010 // BOOL
	typeSigned       = 0x00000020 // SINT
	typeUnsigned     = 0x00000040 // UINT
	typeFloat        = 0x00000080 // FLOA
	typeArray        = 0x00000100 // ARAY
	typeString       = 0x00000200 // STRG
	typeRaw          = 0x00000400 // RAWD
	typeVariableInfo = 0x00000800 // VARI
	typeFixedPoint   = 0x00001000 // FIXP
	typeTraceInfo    = 0x00002000 // TRAI
	typeStruct       = 0x00004000 // STRU
)

// typeInfoLen is the encoded size of a type-info tag.
const typeInfoLen = 4

// unsupportedTypeBits are tag bits this decoder does not handle. A tag
// carrying any of them aborts the item sequence.
const unsupportedTypeBits = typeArray | typeRaw | typeVariableInfo |
	typeFixedPoint | typeTraceInfo | typeStruct

// Kind enumerates the decodable payload value kinds.
type Kind int

const (
	// KindBool is a boolean value.
	KindBool Kind = iota
	// KindSigned is a signed integer value.
	KindSigned
	// KindUnsigned is an unsigned integer value.
	KindUnsigned
	// KindFloat is a floating-point value.
	KindFloat
	// KindString is a text value. The wire-format NUL terminator is
	// stripped from the decoded value.
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "BOOL"
	case KindSigned:
		return "SINT"
	case KindUnsigned:
		return "UINT"
	case KindFloat:
		return "FLOA"
	case KindString:
		return "STRG"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", k)
	}
}

// Value is a single decoded payload item.
//
// Kind selects which value field is populated; the other value fields are
// zero.
type Value struct {
	Kind Kind

	Bool     bool
	Signed   int64
	Unsigned uint64
	Float    float64
	Str      string
}

func (v *Value) String() string {
	switch v.Kind {
	case KindBool:
		return strconv.FormatBool(v.Bool)
	case KindSigned:
		return strconv.FormatInt(v.Signed, 10)
	case KindUnsigned:
		return strconv.FormatUint(v.Unsigned, 10)
	case KindFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case KindString:
		return v.Str
	default:
		return fmt.Sprintf("UNKNOWN(%d)", v.Kind)
	}
}

// DecodePayload decodes a verbose payload into its ordered item sequence.
//
// order is the payload byte order declared by the record's standard header
// (MSBF flag). Decoded values are independent of pl.
//
// A tag that matches no supported kind fails with *UnsupportedTagError; a
// string item without its NUL terminator fails with *MalformedStringError.
// Either aborts the whole sequence: a partially decoded payload is never
// returned as valid.
func DecodePayload(pl []byte, order binary.ByteOrder) ([]Value, error) {
	r := byteslicereader.R{Buffer: pl}

	var items []Value
	for r.Remaining() > 0 {
		start := r.Offset()

		tag, err := r.Take(typeInfoLen)
		if err != nil {
			return nil, errors.Errorf("payload item at offset %d is truncated", start)
		}
		ti := order.Uint32(tag)

		var v Value
		switch {
		case ti&unsupportedTypeBits != 0:
			return nil, &UnsupportedTagError{Off: start, TypeInfo: ti}

		case exactlyOne(ti, typeBool):
			b, err := r.Take(1)
			if err != nil {
				return nil, errors.Errorf("payload item at offset %d is truncated", start)
			}
			v = Value{Kind: KindBool, Bool: b[0] != 0}

		case exactlyOne(ti, typeSigned):
			u, width, err := readFixed(&r, ti, order)
			if err != nil {
				return nil, itemError(err, start, ti)
			}
			v = Value{Kind: KindSigned, Signed: signExtend(u, width)}

		case exactlyOne(ti, typeUnsigned):
			u, _, err := readFixed(&r, ti, order)
			if err != nil {
				return nil, itemError(err, start, ti)
			}
			v = Value{Kind: KindUnsigned, Unsigned: u}

		case exactlyOne(ti, typeFloat):
			f, err := readFloat(&r, ti, order)
			if err != nil {
				return nil, itemError(err, start, ti)
			}
			v = Value{Kind: KindFloat, Float: f}

		case exactlyOne(ti, typeString):
			s, err := readString(&r, order)
			if err != nil {
				if errors.Cause(err) == errMissingNul {
					return nil, &MalformedStringError{Off: start}
				}
				return nil, itemError(err, start, ti)
			}
			v = Value{Kind: KindString, Str: s}

		default:
			return nil, &UnsupportedTagError{Off: start, TypeInfo: ti}
		}

		items = append(items, v)
	}
	return items, nil
}

// errUnsupportedWidth distinguishes a bad TYLE from plain truncation inside
// the per-kind readers.
var errUnsupportedWidth = errors.New("unsupported type length")

var errMissingNul = errors.New("missing NUL terminator")

func itemError(err error, start int, ti uint32) error {
	if errors.Cause(err) == errUnsupportedWidth {
		return &UnsupportedTagError{Off: start, TypeInfo: ti}
	}
	return errors.Errorf("payload item at offset %d is truncated", start)
}

// exactlyOne reports whether bit is the only kind bit set in ti.
func exactlyOne(ti uint32, bit uint32) bool {
	const kindBits = typeBool | typeSigned | typeUnsigned | typeFloat | typeString
	return ti&kindBits == bit
}

// readFixed reads an integer value of the width declared by the tag's TYLE
// nibble, returning the raw bits and the width in bytes.
func readFixed(r *byteslicereader.R, ti uint32, order binary.ByteOrder) (uint64, int, error) {
	var width int
	switch ti & tyleMask {
	case 1:
		width = 1
	case 2:
		width = 2
	case 3:
		width = 4
	case 4:
		width = 8
	default:
		// 128-bit values and undeclared widths are not decodable.
		return 0, 0, errUnsupportedWidth
	}

	b, err := r.Take(width)
	if err != nil {
		return 0, 0, err
	}

	switch width {
	case 1:
		return uint64(b[0]), width, nil
	case 2:
		return uint64(order.Uint16(b)), width, nil
	case 4:
		return uint64(order.Uint32(b)), width, nil
	default:
		return order.Uint64(b), width, nil
	}
}

// signExtend interprets the low width bytes of u as a two's-complement
// signed value.
func signExtend(u uint64, width int) int64 {
	shift := uint(64 - 8*width)
	return int64(u<<shift) >> shift
}

func readFloat(r *byteslicereader.R, ti uint32, order binary.ByteOrder) (float64, error) {
	switch ti & tyleMask {
	case 3:
		b, err := r.Take(4)
		if err != nil {
			return 0, err
		}
		return float64(math.Float32frombits(order.Uint32(b))), nil
	case 4:
		b, err := r.Take(8)
		if err != nil {
			return 0, err
		}
		return math.Float64frombits(order.Uint64(b)), nil
	default:
		return 0, errUnsupportedWidth
	}
}

// readString reads a length-prefixed, NUL-terminated string item and strips
// the terminator.
func readString(r *byteslicereader.R, order binary.ByteOrder) (string, error) {
	lb, err := r.Take(2)
	if err != nil {
		return "", err
	}
	n := int(order.Uint16(lb))

	data, err := r.Take(n)
	if err != nil {
		return "", err
	}
	if n == 0 || data[n-1] != 0 {
		return "", errMissingNul
	}
	return string(data[:n-1]), nil
}
