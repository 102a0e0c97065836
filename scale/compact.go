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

package scale

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/big"
)

// Compact integer modes, selected by the two low bits of the first byte.
//
//	0b00: single byte, value in the upper six bits (0 to 63)
//	0b01: two bytes LE, value in the upper 14 bits (64 to 2^14-1)
//	0b10: four bytes LE, value in the upper 30 bits (2^14 to 2^30-1)
//	0b11: big integer, upper six bits + 4 give the byte length of the
//	      LE value that follows (4 to 67 bytes)
const (
	compactModeSingle = 0b00
	compactModeTwo    = 0b01
	compactModeFour   = 0b10
	compactModeBig    = 0b11

	compactMaxSingle = 1<<6 - 1
	compactMaxTwo    = 1<<14 - 1
	compactMaxFour   = 1<<30 - 1

	// compactMaxBigLength is 63 + 4, the largest length the six bit
	// header can express.
	compactMaxBigLength = 67
)

// DecodeNextCompactInt decodes a compact encoded unsigned integer of any
// size.
func (d *Decoder) DecodeNextCompactInt() (DecodeResult[*big.Int], error) {
	first, err := d.peekByte("compact")
	if err != nil {
		return DecodeResult[*big.Int]{}, err
	}
	switch first & 0b11 {
	case compactModeSingle:
		d.pos++
		return DecodeResult[*big.Int]{
			Decoded:      big.NewInt(int64(first >> 2)),
			BytesDecoded: 1,
		}, nil
	case compactModeTwo:
		b, err := d.readBytes("compact (2 byte mode)", 2)
		if err != nil {
			return DecodeResult[*big.Int]{}, err
		}
		v := binary.LittleEndian.Uint16(b) >> 2
		return DecodeResult[*big.Int]{
			Decoded:      new(big.Int).SetUint64(uint64(v)),
			BytesDecoded: 2,
		}, nil
	case compactModeFour:
		b, err := d.readBytes("compact (4 byte mode)", 4)
		if err != nil {
			return DecodeResult[*big.Int]{}, err
		}
		v := binary.LittleEndian.Uint32(b) >> 2
		return DecodeResult[*big.Int]{
			Decoded:      new(big.Int).SetUint64(uint64(v)),
			BytesDecoded: 4,
		}, nil
	default:
		length := int(first>>2) + 4
		b, err := d.readBytes("compact (big integer mode)", 1+length)
		if err != nil {
			return DecodeResult[*big.Int]{}, err
		}
		return DecodeResult[*big.Int]{
			Decoded:      leBytesToBigInt(b[1:]),
			BytesDecoded: 1 + length,
		}, nil
	}
}

// DecodeNextCompactUint64 decodes a compact integer that must fit in a
// uint64.
func (d *Decoder) DecodeNextCompactUint64() (DecodeResult[uint64], error) {
	pos := d.pos
	r, err := d.DecodeNextCompactInt()
	if err != nil {
		return DecodeResult[uint64]{}, err
	}
	if !r.Decoded.IsUint64() {
		d.pos = pos
		return DecodeResult[uint64]{}, fmt.Errorf(
			"scale: compact value %s at pos %d: %w",
			r.Decoded.String(),
			pos,
			ErrOverflow,
		)
	}
	return DecodeResult[uint64]{
		Decoded:      r.Decoded.Uint64(),
		BytesDecoded: r.BytesDecoded,
	}, nil
}

// DecodeNextCompactLength decodes a compact length prefix. The length may
// not exceed the number of bytes left after the prefix, which bounds
// allocations on malformed input.
func (d *Decoder) DecodeNextCompactLength(
	context string,
) (DecodeResult[int], error) {
	pos := d.pos
	r, err := d.DecodeNextCompactUint64()
	if err != nil {
		return DecodeResult[int]{}, err
	}
	if r.Decoded > math.MaxInt32 || int(r.Decoded) > d.Remaining() {
		have := d.Remaining()
		d.pos = pos
		return DecodeResult[int]{}, &UnderflowError{
			Primitive: context + " length",
			Position:  pos,
			Need:      int(min(r.Decoded, math.MaxInt32)),
			Have:      have,
		}
	}
	return DecodeResult[int]{
		Decoded:      int(r.Decoded),
		BytesDecoded: r.BytesDecoded,
	}, nil
}

// CompactLength returns the number of bytes the canonical compact encoding
// of v occupies.
func CompactLength(v *big.Int) int {
	switch {
	case v.Cmp(big.NewInt(compactMaxSingle)) <= 0:
		return 1
	case v.Cmp(big.NewInt(compactMaxTwo)) <= 0:
		return 2
	case v.Cmp(big.NewInt(compactMaxFour)) <= 0:
		return 4
	default:
		return 1 + max(len(v.Bytes()), 4)
	}
}

// EncodeCompact returns the canonical compact encoding of v.
func EncodeCompact(v *big.Int) ([]byte, error) {
	if v == nil || v.Sign() < 0 {
		return nil, ErrNegativeValue
	}
	switch {
	case v.Cmp(big.NewInt(compactMaxSingle)) <= 0:
		return []byte{byte(v.Uint64()<<2) | compactModeSingle}, nil
	case v.Cmp(big.NewInt(compactMaxTwo)) <= 0:
		ret := make([]byte, 2)
		// #nosec G115
		binary.LittleEndian.PutUint16(
			ret,
			uint16(v.Uint64()<<2)|compactModeTwo,
		)
		return ret, nil
	case v.Cmp(big.NewInt(compactMaxFour)) <= 0:
		ret := make([]byte, 4)
		// #nosec G115
		binary.LittleEndian.PutUint32(
			ret,
			uint32(v.Uint64()<<2)|compactModeFour,
		)
		return ret, nil
	}
	be := v.Bytes()
	length := max(len(be), 4)
	if length > compactMaxBigLength {
		return nil, fmt.Errorf(
			"scale: compact value needs %d bytes: %w",
			length,
			ErrOverflow,
		)
	}
	ret := make([]byte, 1+length)
	// #nosec G115
	ret[0] = byte(length-4)<<2 | compactModeBig
	for i, b := range be {
		ret[len(be)-i] = b
	}
	return ret, nil
}

// EncodeCompactUint64 is EncodeCompact for values that fit a uint64.
func EncodeCompactUint64(v uint64) []byte {
	// Cannot fail: a uint64 needs at most 8 bytes
	ret, _ := EncodeCompact(new(big.Int).SetUint64(v))
	return ret
}
