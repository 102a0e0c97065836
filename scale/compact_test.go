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
	"encoding/hex"
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pow2(n uint) *big.Int {
	return new(big.Int).Lsh(big.NewInt(1), n)
}

func pow2Minus1(n uint) *big.Int {
	return new(big.Int).Sub(pow2(n), big.NewInt(1))
}

func TestCompactBoundaries(t *testing.T) {
	tests := []struct {
		name   string
		value  *big.Int
		hexStr string
		length int
	}{
		{name: "zero", value: big.NewInt(0), hexStr: "00", length: 1},
		{name: "single byte max", value: big.NewInt(63), hexStr: "fc", length: 1},
		{name: "two byte min", value: big.NewInt(64), hexStr: "0101", length: 2},
		{name: "two byte max", value: big.NewInt(16383), hexStr: "fdff", length: 2},
		{name: "four byte min", value: big.NewInt(16384), hexStr: "02000100", length: 4},
		{name: "four byte max", value: pow2Minus1(30), hexStr: "feffffff", length: 4},
		{name: "big integer min", value: pow2(30), hexStr: "0300000040", length: 5},
		{
			name:   "big integer max",
			value:  pow2Minus1(536),
			hexStr: hex.EncodeToString(bytes.Repeat([]byte{0xff}, 68)),
			length: 68,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			encoded, err := EncodeCompact(tc.value)
			require.NoError(t, err)
			assert.Equal(t, tc.hexStr, hex.EncodeToString(encoded))
			assert.Equal(t, tc.length, CompactLength(tc.value))

			d, err := NewDecoderFromHex("polkadot", nil, tc.hexStr)
			require.NoError(t, err)
			r, err := d.DecodeNextCompactInt()
			require.NoError(t, err)
			assert.Equal(t, 0, tc.value.Cmp(r.Decoded),
				"expected %s, got %s", tc.value, r.Decoded)
			assert.Equal(t, tc.length, r.BytesDecoded)
			assert.Equal(t, tc.length, d.Position())
			assert.True(t, d.Done())
		})
	}
}

func TestCompactTooLarge(t *testing.T) {
	_, err := EncodeCompact(pow2(536))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrOverflow))

	_, err = EncodeCompact(big.NewInt(-1))
	assert.ErrorIs(t, err, ErrNegativeValue)
}

func TestCompactNonCanonicalAccepted(t *testing.T) {
	// 1 encoded in two byte mode: (1 << 2) | 0b01
	d := NewDecoder("", nil, []byte{0x05, 0x00})
	r, err := d.DecodeNextCompactUint64()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), r.Decoded)
	assert.Equal(t, 2, r.BytesDecoded)
}

func TestCompactTruncated(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
	}{
		{name: "empty", input: nil},
		{name: "two byte mode missing byte", input: []byte{0x01}},
		{name: "four byte mode missing bytes", input: []byte{0x02, 0x00}},
		{name: "big mode missing bytes", input: []byte{0x03, 0x00, 0x00, 0x00}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := NewDecoder("", nil, tc.input)
			_, err := d.DecodeNextCompactInt()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrDecodeUnderflow)
			var underflow *UnderflowError
			require.True(t, errors.As(err, &underflow))
			assert.Equal(t, 0, underflow.Position)
			assert.Equal(t, 0, d.Position(), "cursor must not move on failure")
		})
	}
}

func TestCompactUint64Overflow(t *testing.T) {
	encoded, err := EncodeCompact(pow2(64))
	require.NoError(t, err)
	d := NewDecoder("", nil, encoded)
	_, err = d.DecodeNextCompactUint64()
	assert.ErrorIs(t, err, ErrOverflow)
	assert.Equal(t, 0, d.Position())
}

func TestCompactRoundTripSequence(t *testing.T) {
	values := []uint64{0, 1, 63, 64, 255, 16383, 16384, 1 << 29, 1<<30 - 1, 1 << 30, 1 << 40, 1<<64 - 1}
	enc := NewEncoder()
	for _, v := range values {
		enc.EncodeCompactUint64(v)
	}
	d := NewDecoder("", nil, enc.Bytes())
	total := 0
	for _, v := range values {
		r, err := d.DecodeNextCompactUint64()
		require.NoError(t, err)
		assert.Equal(t, v, r.Decoded)
		total += r.BytesDecoded
		assert.Equal(t, total, d.Position())
	}
	assert.True(t, d.Done())
}
