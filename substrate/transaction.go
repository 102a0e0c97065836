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

package substrate

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"github.com/blinklabs-io/airlock/scale"
	"golang.org/x/crypto/blake2b"
)

const (
	hashLength = 32

	// Payloads longer than this are signed by hash.
	maxUnhashedPayloadLength = 256
)

// PayloadParams are the fields of a signing payload besides the call.
type PayloadParams struct {
	Era         Era
	Nonce       *big.Int
	Tip         *big.Int
	SpecVersion uint32
	TxVersion   uint32
	GenesisHash []byte
	// BlockHash is the era's birth block, or the genesis hash when immortal
	BlockHash []byte
}

// SigningPayload returns the bytes a signer signs for call under params.
func SigningPayload(call Call, params PayloadParams) ([]byte, error) {
	if len(params.GenesisHash) != hashLength {
		return nil, fmt.Errorf("genesis hash must be %d bytes", hashLength)
	}
	blockHash := params.BlockHash
	if blockHash == nil && !params.Era.Mortal {
		blockHash = params.GenesisHash
	}
	if len(blockHash) != hashLength {
		return nil, fmt.Errorf("block hash must be %d bytes", hashLength)
	}
	era, err := params.Era.Encode()
	if err != nil {
		return nil, err
	}
	e := scale.NewEncoder()
	e.EncodeFixedBytes(call.Encode())
	e.EncodeFixedBytes(era)
	if err := e.EncodeCompact(orZero(params.Nonce)); err != nil {
		return nil, fmt.Errorf("encoding nonce: %w", err)
	}
	if err := e.EncodeCompact(orZero(params.Tip)); err != nil {
		return nil, fmt.Errorf("encoding tip: %w", err)
	}
	e.EncodeUint32(params.SpecVersion)
	e.EncodeUint32(params.TxVersion)
	e.EncodeFixedBytes(params.GenesisHash)
	e.EncodeFixedBytes(blockHash)
	payload := e.Bytes()
	if len(payload) > maxUnhashedPayloadLength {
		sum := blake2b.Sum256(payload)
		return sum[:], nil
	}
	return payload, nil
}

// RawSubstrateTransaction is the offline form of a Substrate transaction:
// the extrinsic with a placeholder signature and the payload to sign, both
// hex encoded.
type RawSubstrateTransaction struct {
	Encoded string
	Payload string
}

// NewRawTransaction builds the offline form for signer sending call.
func NewRawTransaction(
	signer []byte,
	sigType SignatureType,
	call Call,
	params PayloadParams,
) (*RawSubstrateTransaction, error) {
	payload, err := SigningPayload(call, params)
	if err != nil {
		return nil, err
	}
	ext := &Extrinsic{
		Signed:    true,
		Version:   ExtrinsicVersion,
		Signer:    signer,
		Signature: Signature{Type: sigType},
		Era:       params.Era,
		Nonce:     params.Nonce,
		Tip:       params.Tip,
		Call:      call,
	}
	encoded, err := ext.Encode()
	if err != nil {
		return nil, err
	}
	return &RawSubstrateTransaction{
		Encoded: hex.EncodeToString(encoded),
		Payload: hex.EncodeToString(payload),
	}, nil
}

// Extrinsic decodes the encoded extrinsic.
func (t *RawSubstrateTransaction) Extrinsic(network string) (*Extrinsic, error) {
	return DecodeExtrinsicHex(network, t.Encoded)
}

// PayloadBytes decodes the hex payload.
func (t *RawSubstrateTransaction) PayloadBytes() ([]byte, error) {
	return hex.DecodeString(strings.TrimPrefix(t.Payload, "0x"))
}

// Sign inserts sig into the extrinsic and returns the hex encoding ready for
// submission.
func (t *RawSubstrateTransaction) Sign(network string, sig Signature) (string, error) {
	ext, err := t.Extrinsic(network)
	if err != nil {
		return "", err
	}
	encoded, err := ext.WithSignature(sig).Encode()
	if err != nil {
		return "", err
	}
	return "0x" + hex.EncodeToString(encoded), nil
}
