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
	"bytes"
	"encoding/binary"
	"fmt"
	"math/big"
)

// Encoder writes SCALE encoded values into an in-memory buffer.
type Encoder struct {
	buf bytes.Buffer
}

func NewEncoder() *Encoder {
	return &Encoder{}
}

// Bytes returns the encoded output so far.
func (e *Encoder) Bytes() []byte {
	return bytes.Clone(e.buf.Bytes())
}

func (e *Encoder) Len() int {
	return e.buf.Len()
}

func (e *Encoder) EncodeUint8(v uint8) {
	e.buf.WriteByte(v)
}

func (e *Encoder) EncodeUint16(v uint16) {
	e.buf.Write(binary.LittleEndian.AppendUint16(nil, v))
}

func (e *Encoder) EncodeUint32(v uint32) {
	e.buf.Write(binary.LittleEndian.AppendUint32(nil, v))
}

func (e *Encoder) EncodeUint64(v uint64) {
	e.buf.Write(binary.LittleEndian.AppendUint64(nil, v))
}

// EncodeUint128 writes v as a 16 byte little-endian integer.
func (e *Encoder) EncodeUint128(v *big.Int) error {
	return e.encodeBigUint(v, 16)
}

// EncodeUint256 writes v as a 32 byte little-endian integer.
func (e *Encoder) EncodeUint256(v *big.Int) error {
	return e.encodeBigUint(v, 32)
}

func (e *Encoder) encodeBigUint(v *big.Int, size int) error {
	if v == nil || v.Sign() < 0 {
		return ErrNegativeValue
	}
	be := v.Bytes()
	if len(be) > size {
		return fmt.Errorf(
			"scale: value needs %d bytes, field holds %d: %w",
			len(be),
			size,
			ErrOverflow,
		)
	}
	out := make([]byte, size)
	for i, b := range be {
		out[len(be)-1-i] = b
	}
	e.buf.Write(out)
	return nil
}

func (e *Encoder) EncodeBool(v bool) {
	if v {
		e.buf.WriteByte(1)
	} else {
		e.buf.WriteByte(0)
	}
}

// EncodeCompact writes the canonical compact encoding of v.
func (e *Encoder) EncodeCompact(v *big.Int) error {
	b, err := EncodeCompact(v)
	if err != nil {
		return err
	}
	e.buf.Write(b)
	return nil
}

func (e *Encoder) EncodeCompactUint64(v uint64) {
	e.buf.Write(EncodeCompactUint64(v))
}

// EncodeFixedBytes writes b with no length prefix.
func (e *Encoder) EncodeFixedBytes(b []byte) {
	e.buf.Write(b)
}

// EncodeBytes writes a compact length prefix followed by b.
func (e *Encoder) EncodeBytes(b []byte) {
	e.EncodeCompactUint64(uint64(len(b)))
	e.buf.Write(b)
}

func (e *Encoder) EncodeString(s string) {
	e.EncodeBytes([]byte(s))
}

// EncodeOption writes None when present is false, otherwise Some followed
// by whatever fn writes.
func (e *Encoder) EncodeOption(present bool, fn func(*Encoder) error) error {
	if !present {
		e.buf.WriteByte(0)
		return nil
	}
	e.buf.WriteByte(1)
	return fn(e)
}

// EncodeVector writes a compact item count and then calls fn for each
// index.
func (e *Encoder) EncodeVector(n int, fn func(*Encoder, int) error) error {
	e.EncodeCompactUint64(uint64(n))
	for i := range n {
		if err := fn(e, i); err != nil {
			return fmt.Errorf("encoding vector item %d: %w", i, err)
		}
	}
	return nil
}
