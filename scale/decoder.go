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

// Package scale implements the SCALE codec used by Substrate based chains.
//
// A Decoder is a cursor over a byte buffer. Every DecodeNext* call reads
// from the current position and returns a DecodeResult holding the decoded
// value and the exact number of bytes consumed. The cursor advances by that
// same amount, so composite decoders can sum the BytesDecoded of their
// children to report their own size.
package scale

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
	"unicode/utf8"
)

// DecodeResult pairs a decoded value with the number of bytes it occupied.
type DecodeResult[T any] struct {
	Decoded      T
	BytesDecoded int
}

// Decoder is a cursor over SCALE encoded data. A Decoder is not safe for
// concurrent use; each decode session owns its own instance.
type Decoder struct {
	network        string
	runtimeVersion *uint32
	data           []byte
	pos            int
}

// NewDecoder creates a Decoder over raw. The network name and runtime
// version are carried for decoders whose layout depends on them.
func NewDecoder(
	network string,
	runtimeVersion *uint32,
	raw []byte,
) *Decoder {
	return &Decoder{
		network:        network,
		runtimeVersion: runtimeVersion,
		data:           raw,
	}
}

// NewDecoderFromHex creates a Decoder from a hex string, with or without a
// 0x prefix.
func NewDecoderFromHex(
	network string,
	runtimeVersion *uint32,
	raw string,
) (*Decoder, error) {
	data, err := hex.DecodeString(strings.TrimPrefix(raw, "0x"))
	if err != nil {
		return nil, fmt.Errorf("scale: invalid hex input: %w", err)
	}
	return NewDecoder(network, runtimeVersion, data), nil
}

func (d *Decoder) Network() string {
	return d.network
}

// RuntimeVersion returns the runtime version tag, or nil if none was given.
func (d *Decoder) RuntimeVersion() *uint32 {
	return d.runtimeVersion
}

// Position returns the offset of the next unread byte.
func (d *Decoder) Position() int {
	return d.pos
}

// Remaining returns the number of unread bytes.
func (d *Decoder) Remaining() int {
	return len(d.data) - d.pos
}

// Seek moves the cursor back to an earlier position, so composite decoders
// can undo partial progress after a failure.
func (d *Decoder) Seek(pos int) {
	if pos < 0 {
		pos = 0
	}
	if pos > len(d.data) {
		pos = len(d.data)
	}
	d.pos = pos
}

// Done reports whether the whole buffer has been consumed.
func (d *Decoder) Done() bool {
	return d.pos >= len(d.data)
}

// readBytes consumes exactly n bytes. The returned slice is a copy.
func (d *Decoder) readBytes(primitive string, n int) ([]byte, error) {
	if n < 0 || n > d.Remaining() {
		return nil, &UnderflowError{
			Primitive: primitive,
			Position:  d.pos,
			Need:      n,
			Have:      d.Remaining(),
		}
	}
	b := make([]byte, n)
	copy(b, d.data[d.pos:d.pos+n])
	d.pos += n
	return b, nil
}

// peekByte returns the next byte without consuming it.
func (d *Decoder) peekByte(primitive string) (byte, error) {
	if d.pos >= len(d.data) {
		return 0, &UnderflowError{
			Primitive: primitive,
			Position:  d.pos,
			Need:      1,
			Have:      0,
		}
	}
	return d.data[d.pos], nil
}

func (d *Decoder) DecodeNextUint8() (DecodeResult[uint8], error) {
	b, err := d.readBytes("u8", 1)
	if err != nil {
		return DecodeResult[uint8]{}, err
	}
	return DecodeResult[uint8]{Decoded: b[0], BytesDecoded: 1}, nil
}

func (d *Decoder) DecodeNextUint16() (DecodeResult[uint16], error) {
	b, err := d.readBytes("u16", 2)
	if err != nil {
		return DecodeResult[uint16]{}, err
	}
	return DecodeResult[uint16]{
		Decoded:      binary.LittleEndian.Uint16(b),
		BytesDecoded: 2,
	}, nil
}

func (d *Decoder) DecodeNextUint32() (DecodeResult[uint32], error) {
	b, err := d.readBytes("u32", 4)
	if err != nil {
		return DecodeResult[uint32]{}, err
	}
	return DecodeResult[uint32]{
		Decoded:      binary.LittleEndian.Uint32(b),
		BytesDecoded: 4,
	}, nil
}

func (d *Decoder) DecodeNextUint64() (DecodeResult[uint64], error) {
	b, err := d.readBytes("u64", 8)
	if err != nil {
		return DecodeResult[uint64]{}, err
	}
	return DecodeResult[uint64]{
		Decoded:      binary.LittleEndian.Uint64(b),
		BytesDecoded: 8,
	}, nil
}

// DecodeNextUint128 reads a little-endian u128.
func (d *Decoder) DecodeNextUint128() (DecodeResult[*big.Int], error) {
	return d.decodeNextBigUint("u128", 16)
}

// DecodeNextUint256 reads a little-endian u256.
func (d *Decoder) DecodeNextUint256() (DecodeResult[*big.Int], error) {
	return d.decodeNextBigUint("u256", 32)
}

func (d *Decoder) decodeNextBigUint(
	primitive string,
	size int,
) (DecodeResult[*big.Int], error) {
	b, err := d.readBytes(primitive, size)
	if err != nil {
		return DecodeResult[*big.Int]{}, err
	}
	return DecodeResult[*big.Int]{
		Decoded:      leBytesToBigInt(b),
		BytesDecoded: size,
	}, nil
}

func (d *Decoder) DecodeNextInt8() (DecodeResult[int8], error) {
	r, err := d.DecodeNextUint8()
	if err != nil {
		return DecodeResult[int8]{}, err
	}
	// #nosec G115
	return DecodeResult[int8]{
		Decoded:      int8(r.Decoded),
		BytesDecoded: r.BytesDecoded,
	}, nil
}

func (d *Decoder) DecodeNextInt16() (DecodeResult[int16], error) {
	r, err := d.DecodeNextUint16()
	if err != nil {
		return DecodeResult[int16]{}, err
	}
	// #nosec G115
	return DecodeResult[int16]{
		Decoded:      int16(r.Decoded),
		BytesDecoded: r.BytesDecoded,
	}, nil
}

func (d *Decoder) DecodeNextInt32() (DecodeResult[int32], error) {
	r, err := d.DecodeNextUint32()
	if err != nil {
		return DecodeResult[int32]{}, err
	}
	// #nosec G115
	return DecodeResult[int32]{
		Decoded:      int32(r.Decoded),
		BytesDecoded: r.BytesDecoded,
	}, nil
}

func (d *Decoder) DecodeNextInt64() (DecodeResult[int64], error) {
	r, err := d.DecodeNextUint64()
	if err != nil {
		return DecodeResult[int64]{}, err
	}
	// #nosec G115
	return DecodeResult[int64]{
		Decoded:      int64(r.Decoded),
		BytesDecoded: r.BytesDecoded,
	}, nil
}

// DecodeNextBool reads a single byte boolean. Only 0x00 and 0x01 are valid.
func (d *Decoder) DecodeNextBool() (DecodeResult[bool], error) {
	pos := d.pos
	b, err := d.readBytes("bool", 1)
	if err != nil {
		return DecodeResult[bool]{}, err
	}
	switch b[0] {
	case 0:
		return DecodeResult[bool]{Decoded: false, BytesDecoded: 1}, nil
	case 1:
		return DecodeResult[bool]{Decoded: true, BytesDecoded: 1}, nil
	default:
		d.pos = pos
		return DecodeResult[bool]{}, &UnexpectedDiscriminantError{
			Context:  "bool",
			Value:    uint64(b[0]),
			Position: pos,
		}
	}
}

// DecodeNextFixedBytes reads exactly n raw bytes with no length prefix.
func (d *Decoder) DecodeNextFixedBytes(n int) (DecodeResult[[]byte], error) {
	b, err := d.readBytes(fmt.Sprintf("[u8; %d]", n), n)
	if err != nil {
		return DecodeResult[[]byte]{}, err
	}
	return DecodeResult[[]byte]{Decoded: b, BytesDecoded: n}, nil
}

// DecodeNextBytes reads a compact length prefix followed by that many bytes.
func (d *Decoder) DecodeNextBytes() (DecodeResult[[]byte], error) {
	start := d.pos
	length, err := d.DecodeNextCompactLength("Vec<u8>")
	if err != nil {
		return DecodeResult[[]byte]{}, err
	}
	b, err := d.readBytes("Vec<u8>", length.Decoded)
	if err != nil {
		d.pos = start
		return DecodeResult[[]byte]{}, err
	}
	return DecodeResult[[]byte]{
		Decoded:      b,
		BytesDecoded: length.BytesDecoded + len(b),
	}, nil
}

// DecodeNextString reads a length-prefixed UTF-8 string.
func (d *Decoder) DecodeNextString() (DecodeResult[string], error) {
	start := d.pos
	raw, err := d.DecodeNextBytes()
	if err != nil {
		return DecodeResult[string]{}, err
	}
	if !utf8.Valid(raw.Decoded) {
		d.pos = start
		return DecodeResult[string]{}, fmt.Errorf(
			"scale: invalid UTF-8 string at pos %d",
			start,
		)
	}
	return DecodeResult[string]{
		Decoded:      string(raw.Decoded),
		BytesDecoded: raw.BytesDecoded,
	}, nil
}

// DecodeNextEnumIndex reads the single byte variant index of an enum.
func (d *Decoder) DecodeNextEnumIndex() (DecodeResult[uint8], error) {
	b, err := d.readBytes("enum index", 1)
	if err != nil {
		return DecodeResult[uint8]{}, err
	}
	return DecodeResult[uint8]{Decoded: b[0], BytesDecoded: 1}, nil
}

// DecodeNextOptionalBool decodes Option<bool>, which SCALE packs into one
// byte: 0 = None, 1 = Some(true), 2 = Some(false).
func (d *Decoder) DecodeNextOptionalBool() (DecodeResult[*bool], error) {
	pos := d.pos
	b, err := d.readBytes("Option<bool>", 1)
	if err != nil {
		return DecodeResult[*bool]{}, err
	}
	var ret *bool
	switch b[0] {
	case 0:
	case 1:
		v := true
		ret = &v
	case 2:
		v := false
		ret = &v
	default:
		d.pos = pos
		return DecodeResult[*bool]{}, &UnexpectedDiscriminantError{
			Context:  "Option<bool>",
			Value:    uint64(b[0]),
			Position: pos,
		}
	}
	return DecodeResult[*bool]{Decoded: ret, BytesDecoded: 1}, nil
}

// DecodeNextOption decodes an Option<T>: a 0x00 byte for None, or 0x01
// followed by the value decoded with fn.
func DecodeNextOption[T any](
	d *Decoder,
	fn func(*Decoder) (DecodeResult[T], error),
) (DecodeResult[*T], error) {
	pos := d.pos
	tag, err := d.readBytes("Option tag", 1)
	if err != nil {
		return DecodeResult[*T]{}, err
	}
	switch tag[0] {
	case 0:
		return DecodeResult[*T]{Decoded: nil, BytesDecoded: 1}, nil
	case 1:
		inner, err := fn(d)
		if err != nil {
			d.pos = pos
			return DecodeResult[*T]{}, err
		}
		return DecodeResult[*T]{
			Decoded:      &inner.Decoded,
			BytesDecoded: 1 + inner.BytesDecoded,
		}, nil
	default:
		d.pos = pos
		return DecodeResult[*T]{}, &UnexpectedDiscriminantError{
			Context:  "Option",
			Value:    uint64(tag[0]),
			Position: pos,
		}
	}
}

// DecodeNextVector decodes a Vec<T>: a compact length followed by that many
// items decoded with fn.
func DecodeNextVector[T any](
	d *Decoder,
	fn func(*Decoder) (DecodeResult[T], error),
) (DecodeResult[[]T], error) {
	pos := d.pos
	length, err := d.DecodeNextCompactLength("Vec")
	if err != nil {
		return DecodeResult[[]T]{}, err
	}
	total := length.BytesDecoded
	items := make([]T, 0, length.Decoded)
	for i := range length.Decoded {
		item, err := fn(d)
		if err != nil {
			d.pos = pos
			return DecodeResult[[]T]{}, fmt.Errorf(
				"decoding vector item %d: %w",
				i,
				err,
			)
		}
		items = append(items, item.Decoded)
		total += item.BytesDecoded
	}
	return DecodeResult[[]T]{Decoded: items, BytesDecoded: total}, nil
}

// DecodeNextFixedVector decodes exactly n items with no length prefix, as
// used for SCALE arrays.
func DecodeNextFixedVector[T any](
	d *Decoder,
	n int,
	fn func(*Decoder) (DecodeResult[T], error),
) (DecodeResult[[]T], error) {
	pos := d.pos
	total := 0
	items := make([]T, 0, n)
	for i := range n {
		item, err := fn(d)
		if err != nil {
			d.pos = pos
			return DecodeResult[[]T]{}, fmt.Errorf(
				"decoding array item %d: %w",
				i,
				err,
			)
		}
		items = append(items, item.Decoded)
		total += item.BytesDecoded
	}
	return DecodeResult[[]T]{Decoded: items, BytesDecoded: total}, nil
}

// leBytesToBigInt interprets b as an unsigned little-endian integer.
func leBytesToBigInt(b []byte) *big.Int {
	be := make([]byte, len(b))
	for i := range b {
		be[len(b)-1-i] = b[i]
	}
	return new(big.Int).SetBytes(be)
}
