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

package tezos

import (
	"bytes"
	"encoding/hex"
	"math/big"
	"strings"
	"testing"

	"github.com/blinklabs-io/airlock/tezos/micheline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testTz1    = "tz1KqTpEZ7Yob7QbPE4Hy4Wo8fHG8LhKxZSx"
	testTz1Hex = "02298c03ed7d454a101eb7022bc95f7e5f41ac78"
	testTz2    = "tz2Pxws2AjFBWmCi1zmujs1nvMEhvLHkudem"
	testKT1    = "KT18anmnvhqTsgqTwasxpLKYWcLJnGRX3m2D"
	testBranch = "BKiHLREqU3JkXfzEDYAkmmfX48gBDtYhMrpA98s7Aq4SzbUAB6M"
)

func TestBase58Check(t *testing.T) {
	payload, err := DecodeBase58Check(testTz1, PrefixTz1)
	require.NoError(t, err)
	assert.Equal(t, testTz1Hex, hex.EncodeToString(payload))

	s, err := EncodeBase58Check(PrefixTz1, payload)
	require.NoError(t, err)
	assert.Equal(t, testTz1, s)

	zero, err := EncodeBase58Check(PrefixTz1, make([]byte, 20))
	require.NoError(t, err)
	assert.Equal(t, "tz1Ke2h7sDdakHJQh8WX4Z372du1KChsksyU", zero)

	_, err = DecodeBase58Check(testTz1, PrefixKT1)
	assert.ErrorIs(t, err, ErrInvalidPrefix)

	// Last character changed
	_, err = DecodeBase58Check(testTz1[:len(testTz1)-1]+"y", PrefixTz1)
	assert.ErrorIs(t, err, ErrInvalidChecksum)

	_, err = EncodeBase58Check(PrefixTz1, []byte{0x01})
	assert.ErrorIs(t, err, ErrInvalidLength)
}

func TestForgeAddress(t *testing.T) {
	testDefs := []struct {
		address string
		forged  string
	}{
		{testTz1, "0000" + testTz1Hex},
		{testTz2, "0001" + "abababababababababababababababababababab"},
		{testKT1, "01" + "000102030405060708090a0b0c0d0e0f10111213" + "00"},
	}
	for _, testDef := range testDefs {
		forged, err := ForgeAddress(testDef.address)
		require.NoError(t, err, testDef.address)
		assert.Equal(t, testDef.forged, hex.EncodeToString(forged))

		addr, err := UnforgeAddress(forged)
		require.NoError(t, err)
		assert.Equal(t, testDef.address, addr)
	}

	_, err := ForgeAddress("tz9abc")
	assert.ErrorIs(t, err, ErrInvalidAddress)
	_, err = UnforgeAddress(make([]byte, 21))
	assert.ErrorIs(t, err, ErrInvalidLength)
	assert.NoError(t, ValidateAddress(testKT1))
}

func TestExprHash(t *testing.T) {
	packed, err := micheline.Pack(micheline.NewPrim("Pair", micheline.NewInt(1), micheline.NewInt(2)))
	require.NoError(t, err)
	assert.Equal(t, "expruuVqLi9YeXfHPkysBn1aj3TZpQM9PT1vXY6F9ZwVWzEAVw9VEQ", ExprHash(packed))

	packed, err = micheline.Pack(micheline.String{Value: "foo"})
	require.NoError(t, err)
	assert.Equal(t, "expruTFUPVsqkuD5iwLMJuzoyGSFABnxLo7CZrgnS1czt1WbTwpVrJ", ExprHash(packed))
}

func TestOperationRoundTrip(t *testing.T) {
	ops := []*Transaction{
		{
			Source:       testTz1,
			Fee:          big.NewInt(1420),
			Counter:      big.NewInt(5),
			GasLimit:     big.NewInt(10600),
			StorageLimit: big.NewInt(300),
			Amount:       big.NewInt(1_000_000),
			Destination:  testTz2,
		},
		{
			Source:       testTz1,
			Fee:          big.NewInt(3000),
			Counter:      big.NewInt(6),
			GasLimit:     big.NewInt(20000),
			StorageLimit: big.NewInt(0),
			Amount:       big.NewInt(0),
			Destination:  testKT1,
			Parameters: &Parameters{
				Entrypoint: "transfer",
				Value: micheline.NewPrim(
					"Pair",
					micheline.String{Value: testTz1},
					micheline.NewInt(100),
				),
			},
		},
	}
	raw, err := NewRawTransaction(testBranch, ops...)
	require.NoError(t, err)
	forged, err := raw.Bytes()
	require.NoError(t, err)
	assert.Equal(t, make([]byte, 32), forged[:32])
	assert.Equal(t, byte(tagTransaction), forged[32])

	branch, got, err := raw.Operations()
	require.NoError(t, err)
	assert.Equal(t, testBranch, branch)
	require.Len(t, got, 2)
	for i := range ops {
		assert.Equal(t, ops[i].Source, got[i].Source)
		assert.Equal(t, ops[i].Destination, got[i].Destination)
		assert.Equal(t, 0, ops[i].Amount.Cmp(got[i].Amount))
		assert.Equal(t, 0, ops[i].Fee.Cmp(got[i].Fee))
		assert.Equal(t, 0, ops[i].Counter.Cmp(got[i].Counter))
		assert.Equal(t, 0, ops[i].GasLimit.Cmp(got[i].GasLimit))
		assert.Equal(t, 0, ops[i].StorageLimit.Cmp(got[i].StorageLimit))
	}
	assert.Nil(t, got[0].Parameters)
	require.NotNil(t, got[1].Parameters)
	assert.Equal(t, "transfer", got[1].Parameters.Entrypoint)
	assert.True(t, micheline.Equal(ops[1].Parameters.Value, got[1].Parameters.Value))
}

func TestOperationDefaultEntrypoint(t *testing.T) {
	raw, err := NewRawTransaction(testBranch, &Transaction{
		Source:      testTz1,
		Destination: testKT1,
		Parameters:  &Parameters{Value: micheline.NewPrim("Unit")},
	})
	require.NoError(t, err)
	_, got, err := raw.Operations()
	require.NoError(t, err)
	assert.Equal(t, "default", got[0].Parameters.Entrypoint)
}

func TestOperationEntrypoints(t *testing.T) {
	call := func(entrypoint string) *Transaction {
		return &Transaction{
			Source:      testTz1,
			Destination: testKT1,
			Parameters:  &Parameters{Entrypoint: entrypoint, Value: micheline.NewPrim("Unit")},
		}
	}

	// Reserved names forge to a single tag byte
	for _, name := range []string{"stake", "unstake", "finalize_unstake", "set_delegate_parameters"} {
		raw, err := NewRawTransaction(testBranch, call(name))
		require.NoError(t, err, name)
		forged, err := raw.Bytes()
		require.NoError(t, err)
		assert.NotContains(t, string(forged), name)
		_, got, err := raw.Operations()
		require.NoError(t, err)
		assert.Equal(t, name, got[0].Parameters.Entrypoint)
	}

	longest := strings.Repeat("a", 31)
	raw, err := NewRawTransaction(testBranch, call(longest))
	require.NoError(t, err)
	_, got, err := raw.Operations()
	require.NoError(t, err)
	assert.Equal(t, longest, got[0].Parameters.Entrypoint)

	_, err = NewRawTransaction(testBranch, call(longest+"a"))
	require.ErrorIs(t, err, ErrInvalidEntrypoint)
	_, err = NewRawTransaction(testBranch, call(strings.Repeat("a", 256)))
	require.ErrorIs(t, err, ErrInvalidEntrypoint)

	// An over-long length byte is rejected when decoding
	forged, err := raw.Bytes()
	require.NoError(t, err)
	idx := bytes.Index(forged, append([]byte{0xff, 31}, longest...))
	require.Positive(t, idx)
	forged[idx+1] = 32
	_, _, err = UnforgeOperation(forged)
	assert.ErrorIs(t, err, ErrInvalidEntrypoint)
}

func TestUnforgeRejectsOtherKinds(t *testing.T) {
	b := append(make([]byte, 32), tagReveal)
	_, _, err := UnforgeOperation(b)
	assert.ErrorIs(t, err, ErrUnsupportedOperation)
}

func TestSigningAndOperationHash(t *testing.T) {
	raw, err := NewRawTransaction(testBranch, &Transaction{
		Source:      testTz1,
		Destination: testTz2,
		Amount:      big.NewInt(1),
	})
	require.NoError(t, err)
	h1, err := raw.SigningHash()
	require.NoError(t, err)
	assert.Len(t, h1, 32)

	forged, err := raw.Bytes()
	require.NoError(t, err)
	prefixed := &RawTezosTransaction{BinaryTransaction: "0x" + hex.EncodeToString(forged)}
	h2, err := prefixed.SigningHash()
	require.NoError(t, err)
	assert.True(t, bytes.Equal(h1, h2))

	opHash, err := raw.OperationHash(make([]byte, 64))
	require.NoError(t, err)
	assert.Equal(t, "o", opHash[:1])
}
