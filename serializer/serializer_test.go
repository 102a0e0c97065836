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

package serializer

import (
	"bytes"
	"math/big"
	"strings"
	"testing"

	"github.com/blinklabs-io/airlock/cosmos"
	"github.com/blinklabs-io/airlock/ethereum"
	"github.com/blinklabs-io/airlock/substrate"
	"github.com/blinklabs-io/airlock/tezos"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCosmosTransaction() *cosmos.Transaction {
	return &cosmos.Transaction{
		Messages: []cosmos.Message{
			&cosmos.SendMessage{
				FromAddress: "cosmos1abc",
				ToAddress:   "cosmos1xyz",
				Amount:      []cosmos.Coin{cosmos.NewCoin("uatom", 100)},
			},
			&cosmos.DelegateMessage{
				DelegatorAddress: "cosmos1abc",
				ValidatorAddress: "cosmosvaloper1v",
				Amount:           cosmos.NewCoin("uatom", 5),
				Undelegate:       true,
			},
		},
		Fee: cosmos.Fee{
			Amount: []cosmos.Coin{cosmos.NewCoin("uatom", 500)},
			Gas:    decimal.NewFromInt(200000),
		},
		Memo:          "memo",
		ChainID:       "cosmoshub-4",
		AccountNumber: "7",
		Sequence:      "5",
	}
}

func TestToBuffer(t *testing.T) {
	testDefs := []struct {
		input    any
		expected any
	}{
		{"abc", []byte("abc")},
		{true, []byte("1")},
		{false, []byte("0")},
		{uint8(2), []byte("2")},
		{-5, []byte("-5")},
		{uint64(1 << 63), []byte("9223372036854775808")},
		{big.NewInt(42), []byte("42")},
		{decimal.RequireFromString("1.5e3"), []byte("1500")},
		{[]byte{0x01}, []byte{0x01}},
		{[]string{"a", "b"}, []any{[]byte("a"), []byte("b")}},
		{[]any{1, []any{"x"}}, []any{[]byte("1"), []any{[]byte("x")}}},
	}
	for _, testDef := range testDefs {
		got, err := ToBuffer(testDef.input)
		require.NoError(t, err)
		assert.Equal(t, testDef.expected, got, "input %v", testDef.input)
	}
	_, err := ToBuffer(map[string]int{})
	assert.ErrorIs(t, err, ErrUnsupportedValue)
	_, err = ToBuffer([]any{1.5})
	assert.ErrorIs(t, err, ErrUnsupportedValue)
}

func TestDecodeRequiresList(t *testing.T) {
	buf, err := Encode([]any{"a"})
	require.NoError(t, err)
	// Strip the list header
	_, err = Decode(buf[1:])
	assert.ErrorIs(t, err, ErrMalformedEnvelope)
	_, err = Decode([]byte{0xc5, 0x01})
	assert.ErrorIs(t, err, ErrMalformedEnvelope)
}

func TestCosmosRoundTrip(t *testing.T) {
	s := CosmosSerializer{}
	tx := testCosmosTransaction()
	buf, err := s.Serialize(&UnsignedTransaction{Transaction: tx, PublicKey: "02ab"})
	require.NoError(t, err)

	got, err := s.Deserialize(buf)
	require.NoError(t, err)
	assert.Equal(t, "02ab", got.PublicKey)
	assert.Equal(t, DefaultCallback, got.Callback)

	gotTx, ok := got.Transaction.(*cosmos.Transaction)
	require.True(t, ok)
	require.Len(t, gotTx.Messages, 2)
	assert.Equal(t, cosmos.MessageTypeSend, gotTx.Messages[0].Type())
	assert.Equal(t, cosmos.MessageTypeUndelegate, gotTx.Messages[1].Type())

	want, err := tx.SignBytes()
	require.NoError(t, err)
	have, err := gotTx.SignBytes()
	require.NoError(t, err)
	assert.Equal(t, string(want), string(have))

	// Serializing again yields identical bytes
	again, err := s.Serialize(got)
	require.NoError(t, err)
	assert.Equal(t, buf, again)
}

func TestCosmosPayloadLayout(t *testing.T) {
	buf, err := CosmosSerializer{}.Serialize(
		&UnsignedTransaction{Transaction: testCosmosTransaction(), Callback: "cb://"},
	)
	require.NoError(t, err)
	env, err := Decode(buf)
	require.NoError(t, err)
	require.Len(t, env, 3)
	assert.Equal(t, []byte("cb://"), env[CallbackIndex])

	payload := env[UnsignedTransactionIndex].([]any)
	require.Len(t, payload, 6)
	msgs := payload[0].([]any)
	assert.Equal(t, []byte("0"), msgs[0].([]any)[0])
	assert.Equal(t, []byte("2"), msgs[1].([]any)[0])
	assert.Equal(t, []byte("memo"), payload[2])
}

func TestCosmosDiscriminantDispatch(t *testing.T) {
	for _, testDef := range []struct {
		tag        string
		undelegate bool
	}{
		{"1", false},
		{"2", true},
	} {
		buf, err := Encode([]any{
			[]any{
				[]any{[]any{testDef.tag, "cosmos1d", "cosmosvaloper1v", []any{"uatom", "10"}}},
				[]any{[]any{}, "1"},
				"", "c", "0", "0",
			},
			"",
			"",
		})
		require.NoError(t, err)
		tx, err := CosmosSerializer{}.Deserialize(buf)
		require.NoError(t, err)
		msgs := tx.Transaction.(*cosmos.Transaction).Messages
		require.Len(t, msgs, 1)
		msg, ok := msgs[0].(*cosmos.DelegateMessage)
		require.True(t, ok)
		assert.Equal(t, testDef.undelegate, msg.Undelegate)
		assert.Equal(t, "10", msg.Amount.Amount.String())
	}
}

func TestCosmosUnknownDiscriminant(t *testing.T) {
	buf, err := Encode([]any{
		[]any{
			[]any{[]any{"9", "a", "b", []any{}}},
			[]any{[]any{}, "1"},
			"", "c", "0", "0",
		},
		"",
		DefaultCallback,
	})
	require.NoError(t, err)
	_, err = CosmosSerializer{}.Deserialize(buf)
	require.ErrorIs(t, err, ErrUnexpectedDiscriminant)
	var discErr *UnexpectedDiscriminantError
	require.ErrorAs(t, err, &discErr)
	assert.Equal(t, "9", discErr.Value)
	assert.Equal(t, "$[0][0][0][0]", discErr.Path)
}

func TestMalformedEnvelope(t *testing.T) {
	testDefs := []struct {
		tree []any
		path string
	}{
		{[]any{[]any{}, ""}, "$"},
		{[]any{"x", "", ""}, "$[0]"},
		{[]any{[]any{}, []any{}, ""}, "$[1]"},
		{[]any{[]any{"a"}, "", ""}, "$[0]"},
	}
	for _, testDef := range testDefs {
		buf, err := Encode(testDef.tree)
		require.NoError(t, err)
		_, err = CosmosSerializer{}.Deserialize(buf)
		require.ErrorIs(t, err, ErrMalformedEnvelope)
		var envErr *MalformedEnvelopeError
		require.ErrorAs(t, err, &envErr)
		assert.Equal(t, testDef.path, envErr.Path)
	}
}

func TestWrongTransactionType(t *testing.T) {
	_, err := CosmosSerializer{}.Serialize(&UnsignedTransaction{Transaction: "nope"})
	assert.ErrorIs(t, err, ErrTransactionType)
	_, err = EthereumSerializer{}.Serialize(&UnsignedTransaction{Transaction: testCosmosTransaction()})
	assert.ErrorIs(t, err, ErrTransactionType)
}

func TestEthereumRoundTrip(t *testing.T) {
	tx := &ethereum.RawEthereumTransaction{
		Nonce:    "0x9",
		GasPrice: "0x4a817c800",
		GasLimit: "0x5208",
		To:       "0x3535353535353535353535353535353535353535",
		Value:    "0xde0b6b3a7640000",
		ChainID:  1,
		Data:     "0x",
	}
	s := EthereumSerializer{}
	buf, err := s.Serialize(&UnsignedTransaction{Transaction: tx, PublicKey: "04ff", Callback: "cb://?d="})
	require.NoError(t, err)
	got, err := s.Deserialize(buf)
	require.NoError(t, err)
	assert.Equal(t, &UnsignedTransaction{Transaction: tx, PublicKey: "04ff", Callback: "cb://?d="}, got)
}

func TestTezosRoundTrip(t *testing.T) {
	tx := &tezos.RawTezosTransaction{BinaryTransaction: "0a0b0c"}
	s := TezosSerializer{}
	buf, err := s.Serialize(&UnsignedTransaction{Transaction: tx})
	require.NoError(t, err)
	got, err := s.Deserialize(buf)
	require.NoError(t, err)
	assert.Equal(t, tx, got.Transaction)

	bad, err := Encode([]any{[]any{"zz"}, "", ""})
	require.NoError(t, err)
	_, err = s.Deserialize(bad)
	assert.ErrorIs(t, err, ErrMalformedEnvelope)
}

func testSubstrateTransaction(t *testing.T) *substrate.RawSubstrateTransaction {
	t.Helper()
	call, err := substrate.TransferCall(5, 3, bytes.Repeat([]byte{0x22}, 32), big.NewInt(12345))
	require.NoError(t, err)
	raw, err := substrate.NewRawTransaction(
		bytes.Repeat([]byte{0x11}, 32),
		substrate.SignatureSr25519,
		call,
		substrate.PayloadParams{
			GenesisHash: bytes.Repeat([]byte{0xaa}, 32),
			SpecVersion: 1,
			TxVersion:   1,
		},
	)
	require.NoError(t, err)
	return raw
}

func TestSubstrateRoundTrip(t *testing.T) {
	tx := testSubstrateTransaction(t)
	s := SubstrateSerializer{Network: substrate.Kusama}
	assert.Equal(t, "kusama", s.Protocol())
	buf, err := s.Serialize(&UnsignedTransaction{Transaction: tx})
	require.NoError(t, err)
	got, err := s.Deserialize(buf)
	require.NoError(t, err)
	assert.Equal(t, tx, got.Transaction)

	bad, err := Encode([]any{[]any{"00", tx.Payload}, "", ""})
	require.NoError(t, err)
	_, err = s.Deserialize(bad)
	assert.Error(t, err)

	badPayload, err := Encode([]any{[]any{tx.Encoded, "0xzz"}, "", ""})
	require.NoError(t, err)
	_, err = s.Deserialize(badPayload)
	require.ErrorIs(t, err, ErrMalformedEnvelope)
	var malformed *MalformedEnvelopeError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, "$[0][1]", malformed.Path)
}

func TestRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewDefaultRegistry(RegistryConfig{PromRegistry: reg})
	assert.Equal(
		t,
		[]string{"cosmos", "eth", "kusama", "polkadot", "westend", "xtz"},
		r.Protocols(),
	)

	buf, err := r.Serialize(ProtocolCosmos, &UnsignedTransaction{Transaction: testCosmosTransaction()})
	require.NoError(t, err)
	_, err = r.Deserialize(ProtocolCosmos, buf)
	require.NoError(t, err)
	_, err = r.Deserialize(ProtocolEthereum, buf)
	require.ErrorIs(t, err, ErrMalformedEnvelope)
	_, err = r.Deserialize("btc", buf)
	require.ErrorIs(t, err, ErrUnknownProtocol)

	assert.InDelta(t, 1, testutil.ToFloat64(r.metrics.operations.WithLabelValues(ProtocolCosmos, opSerialize)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(r.metrics.operations.WithLabelValues(ProtocolCosmos, opDeserialize)), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(r.metrics.failures.WithLabelValues(ProtocolCosmos, opDeserialize)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(r.metrics.failures.WithLabelValues(ProtocolEthereum, opDeserialize)), 0)
}

func TestRegistryWithoutPrometheus(t *testing.T) {
	r := NewRegistry(RegistryConfig{})
	r.Register(TezosSerializer{})
	_, err := r.Serialize(ProtocolTezos, &UnsignedTransaction{
		Transaction: &tezos.RawTezosTransaction{BinaryTransaction: "00"},
	})
	assert.NoError(t, err)
}

func TestStringTransport(t *testing.T) {
	buf, err := CosmosSerializer{}.Serialize(&UnsignedTransaction{Transaction: testCosmosTransaction()})
	require.NoError(t, err)

	s := EncodeString(buf)
	got, err := DecodeString(s)
	require.NoError(t, err)
	assert.Equal(t, buf, got)

	corrupted := []byte(s)
	if corrupted[5] == '2' {
		corrupted[5] = '3'
	} else {
		corrupted[5] = '2'
	}
	_, err = DecodeString(string(corrupted))
	assert.ErrorIs(t, err, ErrInvalidTransport)

	u := ToURL("", buf)
	assert.True(t, strings.HasPrefix(u, DefaultCallback))
	got, err = FromURL(u)
	require.NoError(t, err)
	assert.Equal(t, buf, got)

	_, err = FromURL("airgap-wallet://?x=1")
	assert.ErrorIs(t, err, ErrInvalidTransport)
}

func TestCBORTransport(t *testing.T) {
	buf, err := EthereumSerializer{}.Serialize(&UnsignedTransaction{
		Transaction: &ethereum.RawEthereumTransaction{Nonce: "0x1", ChainID: 3, Data: "0x"},
	})
	require.NoError(t, err)
	cborData, err := EncodeCBOR(buf)
	require.NoError(t, err)
	got, err := DecodeCBOR(cborData)
	require.NoError(t, err)
	assert.Equal(t, buf, got)

	_, err = DecodeCBOR([]byte{0x01})
	assert.ErrorIs(t, err, ErrMalformedEnvelope)
}
