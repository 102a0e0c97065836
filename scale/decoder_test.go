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
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeFixedWidthIntegers(t *testing.T) {
	// u8 0x2a, u16 0x0102, u32 0x01020304, u64 1, i32 -1
	raw := "2a" + "0201" + "04030201" + "0100000000000000" + "ffffffff"
	rv := uint32(9110)
	d, err := NewDecoderFromHex("kusama", &rv, "0x"+raw)
	require.NoError(t, err)
	assert.Equal(t, "kusama", d.Network())
	require.NotNil(t, d.RuntimeVersion())
	assert.Equal(t, uint32(9110), *d.RuntimeVersion())

	u8, err := d.DecodeNextUint8()
	require.NoError(t, err)
	assert.Equal(t, uint8(0x2a), u8.Decoded)
	assert.Equal(t, 1, u8.BytesDecoded)

	u16, err := d.DecodeNextUint16()
	require.NoError(t, err)
	assert.Equal(t, uint16(0x0102), u16.Decoded)
	assert.Equal(t, 2, u16.BytesDecoded)

	u32, err := d.DecodeNextUint32()
	require.NoError(t, err)
	assert.Equal(t, uint32(0x01020304), u32.Decoded)
	assert.Equal(t, 4, u32.BytesDecoded)

	u64, err := d.DecodeNextUint64()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), u64.Decoded)
	assert.Equal(t, 8, u64.BytesDecoded)

	i32, err := d.DecodeNextInt32()
	require.NoError(t, err)
	assert.Equal(t, int32(-1), i32.Decoded)

	assert.True(t, d.Done())
	_, err = d.DecodeNextUint8()
	assert.ErrorIs(t, err, ErrDecodeUnderflow)
}

func TestDecodeBigUints(t *testing.T) {
	enc := NewEncoder()
	v128, _ := new(big.Int).SetString("340282366920938463463374607431768211455", 10)
	require.NoError(t, enc.EncodeUint128(v128))
	v256 := big.NewInt(1_000_000_000_000)
	require.NoError(t, enc.EncodeUint256(v256))

	d := NewDecoder("", nil, enc.Bytes())
	r128, err := d.DecodeNextUint128()
	require.NoError(t, err)
	assert.Equal(t, 0, v128.Cmp(r128.Decoded))
	assert.Equal(t, 16, r128.BytesDecoded)

	r256, err := d.DecodeNextUint256()
	require.NoError(t, err)
	assert.Equal(t, 0, v256.Cmp(r256.Decoded))
	assert.Equal(t, 32, r256.BytesDecoded)

	tooBig := new(big.Int).Lsh(big.NewInt(1), 128)
	assert.ErrorIs(t, NewEncoder().EncodeUint128(tooBig), ErrOverflow)
}

func TestDecodeBool(t *testing.T) {
	d := NewDecoder("", nil, []byte{0x01, 0x00, 0x02})
	r, err := d.DecodeNextBool()
	require.NoError(t, err)
	assert.True(t, r.Decoded)
	r, err = d.DecodeNextBool()
	require.NoError(t, err)
	assert.False(t, r.Decoded)
	_, err = d.DecodeNextBool()
	assert.ErrorIs(t, err, ErrUnexpectedDiscriminant)
	assert.Equal(t, 2, d.Position())
}

func TestDecodeBytesAndString(t *testing.T) {
	enc := NewEncoder()
	enc.EncodeBytes([]byte{0xde, 0xad, 0xbe, 0xef})
	enc.EncodeString("Balances")
	d := NewDecoder("", nil, enc.Bytes())

	b, err := d.DecodeNextBytes()
	require.NoError(t, err)
	assert.Equal(t, "deadbeef", hex.EncodeToString(b.Decoded))
	assert.Equal(t, 5, b.BytesDecoded)

	s, err := d.DecodeNextString()
	require.NoError(t, err)
	assert.Equal(t, "Balances", s.Decoded)
	assert.Equal(t, 9, s.BytesDecoded)
	assert.True(t, d.Done())
}

func TestDecodeBytesLengthBeyondBuffer(t *testing.T) {
	// Length prefix says 16 bytes, only 2 follow
	d := NewDecoder("", nil, []byte{0x40, 0x01, 0x02})
	_, err := d.DecodeNextBytes()
	require.ErrorIs(t, err, ErrDecodeUnderflow)
	assert.Equal(t, 0, d.Position())
}

func TestDecodeInvalidUTF8(t *testing.T) {
	d := NewDecoder("", nil, []byte{0x04, 0xff})
	_, err := d.DecodeNextString()
	require.Error(t, err)
	assert.Equal(t, 0, d.Position())
}

func TestDecodeOption(t *testing.T) {
	enc := NewEncoder()
	require.NoError(t, enc.EncodeOption(false, nil))
	require.NoError(t, enc.EncodeOption(true, func(e *Encoder) error {
		e.EncodeUint32(7)
		return nil
	}))
	d := NewDecoder("", nil, append(enc.Bytes(), 0x05))

	none, err := DecodeNextOption(d, (*Decoder).DecodeNextUint32)
	require.NoError(t, err)
	assert.Nil(t, none.Decoded)
	assert.Equal(t, 1, none.BytesDecoded)

	some, err := DecodeNextOption(d, (*Decoder).DecodeNextUint32)
	require.NoError(t, err)
	require.NotNil(t, some.Decoded)
	assert.Equal(t, uint32(7), *some.Decoded)
	assert.Equal(t, 5, some.BytesDecoded)

	_, err = DecodeNextOption(d, (*Decoder).DecodeNextUint32)
	assert.ErrorIs(t, err, ErrUnexpectedDiscriminant)
}

func TestDecodeOptionalBool(t *testing.T) {
	d := NewDecoder("", nil, []byte{0x00, 0x01, 0x02, 0x03})
	r, err := d.DecodeNextOptionalBool()
	require.NoError(t, err)
	assert.Nil(t, r.Decoded)
	r, err = d.DecodeNextOptionalBool()
	require.NoError(t, err)
	assert.True(t, *r.Decoded)
	r, err = d.DecodeNextOptionalBool()
	require.NoError(t, err)
	assert.False(t, *r.Decoded)
	_, err = d.DecodeNextOptionalBool()
	assert.ErrorIs(t, err, ErrUnexpectedDiscriminant)
}

func TestDecodeVector(t *testing.T) {
	enc := NewEncoder()
	require.NoError(t, enc.EncodeVector(3, func(e *Encoder, i int) error {
		e.EncodeString([]string{"a", "bc", "def"}[i])
		return nil
	}))
	d := NewDecoder("", nil, enc.Bytes())
	r, err := DecodeNextVector(d, (*Decoder).DecodeNextString)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "bc", "def"}, r.Decoded)
	// 1 length byte + (1+1) + (1+2) + (1+3)
	assert.Equal(t, 10, r.BytesDecoded)
	assert.Equal(t, r.BytesDecoded, d.Position())
}

func TestDecodeVectorTruncatedRewinds(t *testing.T) {
	// Two u16 items announced, only one and a half present
	d := NewDecoder("", nil, []byte{0x08, 0x01, 0x00, 0x02})
	_, err := DecodeNextVector(d, (*Decoder).DecodeNextUint16)
	require.ErrorIs(t, err, ErrDecodeUnderflow)
	assert.Equal(t, 0, d.Position())
}

func TestDecodeFixedVector(t *testing.T) {
	d := NewDecoder("", nil, []byte{0x01, 0x02, 0x03})
	r, err := DecodeNextFixedVector(d, 3, (*Decoder).DecodeNextUint8)
	require.NoError(t, err)
	assert.Equal(t, []uint8{1, 2, 3}, r.Decoded)
	assert.Equal(t, 3, r.BytesDecoded)
}

func TestNewDecoderFromHexInvalid(t *testing.T) {
	_, err := NewDecoderFromHex("", nil, "0xzz")
	require.Error(t, err)
}
