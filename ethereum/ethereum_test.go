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

package ethereum

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testRecipient = "0x4a1e2ba8a55b7a8b5b0b93f5a3b5cbb1d8a5c1f2"
	testContract  = "0xdac17f958d2ee523a2206206994597c13d831ec7"
)

func TestMethodID(t *testing.T) {
	assert.Equal(t, "0xa9059cbb", MethodID(Transfer{}.MethodSignature()))
	assert.Equal(t, "0x70a08231", MethodID(BalanceOf{}.MethodSignature()))
}

func TestBalanceOfABI(t *testing.T) {
	data := BalanceOf{Address: testRecipient}.ABIEncoded()
	assert.Equal(
		t,
		"0x70a08231"+strings.Repeat("0", 24)+testRecipient[2:],
		data,
	)
}

func TestTransferABIRoundTrip(t *testing.T) {
	transfer := Transfer{Recipient: "0x4A1E2BA8A55B7A8B5B0B93F5A3B5CBB1D8A5C1F2", Amount: "0x2710"}
	data := transfer.ABIEncoded()
	assert.Len(t, data, 2+8+2*ParameterLength)
	assert.Equal(t, strings.ToLower(data), data)

	decoded, err := TransferFromABI(data)
	require.NoError(t, err)
	assert.Equal(t, testRecipient, decoded.Recipient)
	assert.Equal(t, "0x2710", decoded.Amount)

	zero, err := TransferFromABI(Transfer{Recipient: testRecipient, Amount: "0x0"}.ABIEncoded())
	require.NoError(t, err)
	assert.Equal(t, "0x0", zero.Amount)

	// Addresses with leading zero bytes keep their full width
	padded, err := TransferFromABI(Transfer{
		Recipient: "0x0000a8a55b7a8b5b0b93f5a3b5cbb1d8a5c1f200",
		Amount:    "0xffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff",
	}.ABIEncoded())
	require.NoError(t, err)
	assert.Equal(t, "0x0000a8a55b7a8b5b0b93f5a3b5cbb1d8a5c1f200", padded.Recipient)
	assert.Equal(t, "0xffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff", padded.Amount)
}

func TestTransferFromABIWrongMethod(t *testing.T) {
	_, err := TransferFromABI(BalanceOf{Address: testRecipient}.ABIEncoded())
	require.ErrorIs(t, err, ErrUnexpectedMethodID)
	var methodErr *UnexpectedMethodIDError
	require.ErrorAs(t, err, &methodErr)
	assert.Equal(t, "0xa9059cbb", methodErr.Expected)
	assert.Equal(t, "0x70a08231", methodErr.Actual)

	_, err = TransferFromABI("0x12")
	assert.ErrorIs(t, err, ErrUnexpectedMethodID)
}

func TestZeroPadding(t *testing.T) {
	assert.Equal(t, "000abc", AddLeadingZeroPadding("abc", 6))
	assert.Equal(t, "abcdef", AddLeadingZeroPadding("abcdef", 3))
	assert.Equal(t, "abc", RemoveLeadingZeroPadding("000abc"))
	assert.Equal(t, "", RemoveLeadingZeroPadding("0000"))
}

// Example transaction from EIP-155
func eip155Transaction() *RawEthereumTransaction {
	return &RawEthereumTransaction{
		Nonce:    "0x9",
		GasPrice: "0x4a817c800",
		GasLimit: "0x5208",
		To:       "0x3535353535353535353535353535353535353535",
		Value:    "0xde0b6b3a7640000",
		ChainID:  1,
	}
}

func TestSigningHash(t *testing.T) {
	hash, err := eip155Transaction().SigningHash()
	require.NoError(t, err)
	assert.Equal(
		t,
		"daf5a779ae972f972197303d7b574746c7ef83eadac0f2791ad23db92e4c8e53",
		hex.EncodeToString(hash),
	)
}

func TestEncodeSigned(t *testing.T) {
	sig, err := hex.DecodeString(
		"28ef61340bd939bc2195fe537567866003e1a15d3c71ff63e1590620aa636276" +
			"67cbe9d8997f761aecb703304b3800ccf555c9f3dc64214b297fb1966a3b6d83" +
			"00",
	)
	require.NoError(t, err)
	signed, err := eip155Transaction().EncodeSigned(sig)
	require.NoError(t, err)
	assert.Equal(
		t,
		"0xf86c098504a817c800825208943535353535353535353535353535353535353535880de0b6b3a7640000"+
			"8025a028ef61340bd939bc2195fe537567866003e1a15d3c71ff63e1590620aa636276"+
			"a067cbe9d8997f761aecb703304b3800ccf555c9f3dc64214b297fb1966a3b6d83",
		signed,
	)

	_, err = eip155Transaction().EncodeSigned(sig[:64])
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

type fixedSigner struct {
	sig  []byte
	hash []byte
}

func (s *fixedSigner) Sign(hash []byte) ([]byte, error) {
	s.hash = hash
	return s.sig, nil
}

func TestSignWithSigner(t *testing.T) {
	sig, err := hex.DecodeString(
		"28ef61340bd939bc2195fe537567866003e1a15d3c71ff63e1590620aa636276" +
			"67cbe9d8997f761aecb703304b3800ccf555c9f3dc64214b297fb1966a3b6d83" +
			"00",
	)
	require.NoError(t, err)
	signer := &fixedSigner{sig: sig}
	signed, err := eip155Transaction().Sign(signer)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(signed, "0xf86c09"))
	assert.Equal(
		t,
		"daf5a779ae972f972197303d7b574746c7ef83eadac0f2791ad23db92e4c8e53",
		hex.EncodeToString(signer.hash),
	)
}

func TestTransactionValidation(t *testing.T) {
	tx := eip155Transaction()
	tx.To = "0x1234"
	_, err := tx.SigningHash()
	assert.ErrorIs(t, err, ErrInvalidAddress)

	tx = eip155Transaction()
	tx.Nonce = "0xzz"
	_, err = tx.SigningHash()
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	tx = eip155Transaction()
	tx.Data = "0xabc"
	_, err = tx.SigningHash()
	assert.Error(t, err)
}

func TestTransferIntent(t *testing.T) {
	intent, err := NewTransferIntent(testContract, testRecipient, "0x64")
	require.NoError(t, err)
	tx := intent.Transaction("0x1", "0x3b9aca00", "0xea60", 1)
	assert.Equal(t, testContract, tx.To)
	assert.Equal(t, "0x0", tx.Value)

	back, err := tx.TransferIntent()
	require.NoError(t, err)
	assert.Equal(t, intent, back)

	_, err = tx.SigningHash()
	require.NoError(t, err)

	_, err = NewTransferIntent("not-an-address", testRecipient, "0x1")
	assert.ErrorIs(t, err, ErrInvalidAddress)
}
