// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package metadata

import (
	"fmt"
	"math"
	"math/big"
	"unicode/utf8"

	"github.com/blinklabs-io/airlock/scale"
)

// MaxValueDepth bounds recursion when decoding values against the registry.
const MaxValueDepth = 64

// NamedValue is one field of a decoded composite or variant. Name is empty
// for tuple-like fields.
type NamedValue struct {
	Name  string
	Value any
}

type VariantValue struct {
	Name   string
	Index  uint8
	Fields []NamedValue
}

type BitSequence struct {
	Bits  int
	Bytes []byte
}

// DecodeValue decodes a value of the registry type typeID.
//
// The decoded value is one of: bool, string, uint8, uint16, uint32, uint64,
// int8, int16, int32, int64, *big.Int (128/256-bit and compact integers),
// []byte (u8 sequences and arrays), []any (other sequences, arrays and
// tuples), []NamedValue (composites), VariantValue or BitSequence.
func DecodeValue(
	d *scale.Decoder,
	registry *Registry,
	typeID uint32,
) (scale.DecodeResult[any], error) {
	pos := d.Position()
	r, err := decodeValue(d, registry, typeID, 0)
	if err != nil {
		d.Seek(pos)
		return scale.DecodeResult[any]{}, err
	}
	return r, nil
}

func decodeValue(
	d *scale.Decoder,
	registry *Registry,
	typeID uint32,
	depth int,
) (scale.DecodeResult[any], error) {
	if depth > MaxValueDepth {
		return scale.DecodeResult[any]{}, fmt.Errorf(
			"%w: type %d",
			ErrMaxDepthExceeded,
			typeID,
		)
	}
	t, err := registry.Lookup(typeID)
	if err != nil {
		return scale.DecodeResult[any]{}, err
	}
	switch t.Def.Kind {
	case TypeDefComposite:
		fields, err := decodeFields(d, registry, t.Def.Fields, depth)
		if err != nil {
			return scale.DecodeResult[any]{}, err
		}
		return scale.DecodeResult[any]{
			Decoded:      fields.Decoded,
			BytesDecoded: fields.BytesDecoded,
		}, nil
	case TypeDefVariant:
		pos := d.Position()
		idx, err := d.DecodeNextEnumIndex()
		if err != nil {
			return scale.DecodeResult[any]{}, err
		}
		for _, v := range t.Def.Variants {
			if v.Index != idx.Decoded {
				continue
			}
			fields, err := decodeFields(d, registry, v.Fields, depth)
			if err != nil {
				return scale.DecodeResult[any]{}, fmt.Errorf(
					"decoding variant %s: %w",
					v.Name,
					err,
				)
			}
			return scale.DecodeResult[any]{
				Decoded: VariantValue{
					Name:   v.Name,
					Index:  v.Index,
					Fields: fields.Decoded,
				},
				BytesDecoded: idx.BytesDecoded + fields.BytesDecoded,
			}, nil
		}
		return scale.DecodeResult[any]{}, &scale.UnexpectedDiscriminantError{
			Context:  fmt.Sprintf("variant type %d", typeID),
			Value:    uint64(idx.Decoded),
			Position: pos,
		}
	case TypeDefSequence:
		if registry.isU8(t.Def.ElementType) {
			b, err := d.DecodeNextBytes()
			if err != nil {
				return scale.DecodeResult[any]{}, err
			}
			return scale.DecodeResult[any]{Decoded: b.Decoded, BytesDecoded: b.BytesDecoded}, nil
		}
		r, err := scale.DecodeNextVector(d, elementDecoder(registry, t.Def.ElementType, depth))
		if err != nil {
			return scale.DecodeResult[any]{}, err
		}
		return scale.DecodeResult[any]{Decoded: r.Decoded, BytesDecoded: r.BytesDecoded}, nil
	case TypeDefArray:
		if registry.isU8(t.Def.ElementType) {
			b, err := d.DecodeNextFixedBytes(int(t.Def.Length))
			if err != nil {
				return scale.DecodeResult[any]{}, err
			}
			return scale.DecodeResult[any]{Decoded: b.Decoded, BytesDecoded: b.BytesDecoded}, nil
		}
		if int(t.Def.Length) > d.Remaining() {
			return scale.DecodeResult[any]{}, &scale.UnderflowError{
				Primitive: "array",
				Position:  d.Position(),
				Need:      int(t.Def.Length),
				Have:      d.Remaining(),
			}
		}
		r, err := scale.DecodeNextFixedVector(
			d,
			int(t.Def.Length),
			elementDecoder(registry, t.Def.ElementType, depth),
		)
		if err != nil {
			return scale.DecodeResult[any]{}, err
		}
		return scale.DecodeResult[any]{Decoded: r.Decoded, BytesDecoded: r.BytesDecoded}, nil
	case TypeDefTuple:
		items := make([]any, 0, len(t.Def.TupleTypes))
		n := 0
		for _, id := range t.Def.TupleTypes {
			r, err := decodeValue(d, registry, id, depth+1)
			if err != nil {
				return scale.DecodeResult[any]{}, err
			}
			items = append(items, r.Decoded)
			n += r.BytesDecoded
		}
		return scale.DecodeResult[any]{Decoded: items, BytesDecoded: n}, nil
	case TypeDefPrimitive:
		return decodePrimitive(d, t.Def.Primitive)
	case TypeDefCompact:
		r, err := d.DecodeNextCompactInt()
		if err != nil {
			return scale.DecodeResult[any]{}, err
		}
		return scale.DecodeResult[any]{Decoded: r.Decoded, BytesDecoded: r.BytesDecoded}, nil
	case TypeDefBitSequence:
		return decodeBitSequence(d, registry, t.Def.BitStoreType)
	default:
		return scale.DecodeResult[any]{}, &scale.UnexpectedDiscriminantError{
			Context: "TypeDef",
			Value:   uint64(t.Def.Kind),
		}
	}
}

func elementDecoder(
	registry *Registry,
	typeID uint32,
	depth int,
) func(*scale.Decoder) (scale.DecodeResult[any], error) {
	return func(d *scale.Decoder) (scale.DecodeResult[any], error) {
		return decodeValue(d, registry, typeID, depth+1)
	}
}

func decodeFields(
	d *scale.Decoder,
	registry *Registry,
	fields []Field,
	depth int,
) (scale.DecodeResult[[]NamedValue], error) {
	ret := make([]NamedValue, 0, len(fields))
	n := 0
	for i, f := range fields {
		r, err := decodeValue(d, registry, f.Type, depth+1)
		if err != nil {
			return scale.DecodeResult[[]NamedValue]{}, fmt.Errorf(
				"decoding field %d: %w",
				i,
				err,
			)
		}
		nv := NamedValue{Value: r.Decoded}
		if f.Name != nil {
			nv.Name = *f.Name
		}
		ret = append(ret, nv)
		n += r.BytesDecoded
	}
	return scale.DecodeResult[[]NamedValue]{Decoded: ret, BytesDecoded: n}, nil
}

func decodePrimitive(d *scale.Decoder, p Primitive) (scale.DecodeResult[any], error) {
	switch p {
	case PrimitiveBool:
		return widen(d.DecodeNextBool())
	case PrimitiveChar:
		pos := d.Position()
		r, err := d.DecodeNextUint32()
		if err != nil {
			return scale.DecodeResult[any]{}, err
		}
		if !utf8.ValidRune(rune(r.Decoded)) {
			return scale.DecodeResult[any]{}, &scale.UnexpectedDiscriminantError{
				Context:  "char",
				Value:    uint64(r.Decoded),
				Position: pos,
			}
		}
		return scale.DecodeResult[any]{
			Decoded:      string(rune(r.Decoded)),
			BytesDecoded: r.BytesDecoded,
		}, nil
	case PrimitiveStr:
		return widen(d.DecodeNextString())
	case PrimitiveU8:
		return widen(d.DecodeNextUint8())
	case PrimitiveU16:
		return widen(d.DecodeNextUint16())
	case PrimitiveU32:
		return widen(d.DecodeNextUint32())
	case PrimitiveU64:
		return widen(d.DecodeNextUint64())
	case PrimitiveU128:
		return widen(d.DecodeNextUint128())
	case PrimitiveU256:
		return widen(d.DecodeNextUint256())
	case PrimitiveI8:
		return widen(d.DecodeNextInt8())
	case PrimitiveI16:
		return widen(d.DecodeNextInt16())
	case PrimitiveI32:
		return widen(d.DecodeNextInt32())
	case PrimitiveI64:
		return widen(d.DecodeNextInt64())
	case PrimitiveI128:
		return decodeSignedBig(d, 16)
	case PrimitiveI256:
		return decodeSignedBig(d, 32)
	default:
		return scale.DecodeResult[any]{}, &scale.UnexpectedDiscriminantError{
			Context:  "primitive",
			Value:    uint64(p),
			Position: d.Position(),
		}
	}
}

func decodeSignedBig(d *scale.Decoder, size int) (scale.DecodeResult[any], error) {
	var (
		r   scale.DecodeResult[*big.Int]
		err error
	)
	if size == 16 {
		r, err = d.DecodeNextUint128()
	} else {
		r, err = d.DecodeNextUint256()
	}
	if err != nil {
		return scale.DecodeResult[any]{}, err
	}
	v := r.Decoded
	// Two's complement: values with the top bit set are negative.
	if v.Bit(size*8-1) == 1 {
		v = new(big.Int).Sub(v, new(big.Int).Lsh(big.NewInt(1), uint(size*8)))
	}
	return scale.DecodeResult[any]{Decoded: v, BytesDecoded: r.BytesDecoded}, nil
}

func decodeBitSequence(
	d *scale.Decoder,
	registry *Registry,
	storeType uint32,
) (scale.DecodeResult[any], error) {
	pos := d.Position()
	bits, err := d.DecodeNextCompactUint64()
	if err != nil {
		return scale.DecodeResult[any]{}, err
	}
	storeSize := 1
	if t, err := registry.Lookup(storeType); err == nil &&
		t.Def.Kind == TypeDefPrimitive {
		switch t.Def.Primitive {
		case PrimitiveU16:
			storeSize = 2
		case PrimitiveU32:
			storeSize = 4
		case PrimitiveU64:
			storeSize = 8
		}
	}
	storeBits := uint64(storeSize * 8)
	// Reject counts the remaining bytes cannot hold
	if bits.Decoded > uint64(d.Remaining())*8 {
		return scale.DecodeResult[any]{}, &scale.UnderflowError{
			Primitive: "BitSequence",
			Position:  pos,
			Need:      int(min(bits.Decoded/8, math.MaxInt32)),
			Have:      d.Remaining(),
		}
	}
	words := bits.Decoded / storeBits
	if bits.Decoded%storeBits != 0 {
		words++
	}
	b, err := d.DecodeNextFixedBytes(int(words) * storeSize)
	if err != nil {
		return scale.DecodeResult[any]{}, err
	}
	return scale.DecodeResult[any]{
		Decoded:      BitSequence{Bits: int(bits.Decoded), Bytes: b.Decoded},
		BytesDecoded: bits.BytesDecoded + b.BytesDecoded,
	}, nil
}

func (r *Registry) isU8(typeID uint32) bool {
	t, err := r.Lookup(typeID)
	if err != nil {
		return false
	}
	return t.Def.Kind == TypeDefPrimitive && t.Def.Primitive == PrimitiveU8
}

func widen[T any](r scale.DecodeResult[T], err error) (scale.DecodeResult[any], error) {
	if err != nil {
		return scale.DecodeResult[any]{}, err
	}
	return scale.DecodeResult[any]{Decoded: r.Decoded, BytesDecoded: r.BytesDecoded}, nil
}
