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
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/blinklabs-io/airlock/cosmos"
	"github.com/blinklabs-io/airlock/ethereum"
	"github.com/blinklabs-io/airlock/substrate"
	"github.com/blinklabs-io/airlock/tezos"
)

// Protocol identifiers
const (
	ProtocolCosmos   = "cosmos"
	ProtocolEthereum = "eth"
	ProtocolTezos    = "xtz"
)

// Serializer converts one protocol's unsigned transactions to and from an
// envelope buffer.
type Serializer interface {
	Protocol() string
	Serialize(tx *UnsignedTransaction) ([]byte, error)
	Deserialize(buf []byte) (*UnsignedTransaction, error)
}

func transactionAs[T any](tx *UnsignedTransaction) (T, error) {
	var zero T
	if tx == nil {
		return zero, fmt.Errorf("%w: nil transaction", ErrTransactionType)
	}
	t, ok := tx.Transaction.(T)
	if !ok {
		return zero, fmt.Errorf("%w: expected %T, got %T", ErrTransactionType, zero, tx.Transaction)
	}
	return t, nil
}

// Cosmos payload positions
const (
	cosmosMessagesIndex = iota
	cosmosFeeIndex
	cosmosMemoIndex
	cosmosChainIDIndex
	cosmosAccountNumberIndex
	cosmosSequenceIndex
	cosmosPayloadLength
)

// CosmosSerializer handles *cosmos.Transaction.
type CosmosSerializer struct{}

func (CosmosSerializer) Protocol() string { return ProtocolCosmos }

func (CosmosSerializer) Serialize(tx *UnsignedTransaction) ([]byte, error) {
	t, err := transactionAs[*cosmos.Transaction](tx)
	if err != nil {
		return nil, err
	}
	return pack(t.Array(), tx)
}

func (CosmosSerializer) Deserialize(buf []byte) (*UnsignedTransaction, error) {
	payload, ret, err := unpack(buf)
	if err != nil {
		return nil, err
	}
	if len(payload) != cosmosPayloadLength {
		return nil, &MalformedEnvelopeError{
			Path:     "$[0]",
			Expected: fmt.Sprintf("list of %d", cosmosPayloadLength),
			Got:      describe(payload),
		}
	}
	t := &cosmos.Transaction{}
	rawMsgs, err := asList(payload[cosmosMessagesIndex], "$[0][0]", -1)
	if err != nil {
		return nil, err
	}
	for i, rawMsg := range rawMsgs {
		msg, err := cosmosMessage(rawMsg, fmt.Sprintf("$[0][0][%d]", i))
		if err != nil {
			return nil, err
		}
		t.Messages = append(t.Messages, msg)
	}
	if t.Fee, err = cosmosFee(payload[cosmosFeeIndex], "$[0][1]"); err != nil {
		return nil, err
	}
	for _, f := range []struct {
		dst   *string
		index int
	}{
		{&t.Memo, cosmosMemoIndex},
		{&t.ChainID, cosmosChainIDIndex},
		{&t.AccountNumber, cosmosAccountNumberIndex},
		{&t.Sequence, cosmosSequenceIndex},
	} {
		if *f.dst, err = asString(payload[f.index], fmt.Sprintf("$[0][%d]", f.index)); err != nil {
			return nil, err
		}
	}
	ret.Transaction = t
	return ret, nil
}

func cosmosMessage(v any, path string) (cosmos.Message, error) {
	fields, err := asList(v, path, 4)
	if err != nil {
		return nil, err
	}
	tag, err := asString(fields[0], path+"[0]")
	if err != nil {
		return nil, err
	}
	var msgType cosmos.MessageType
	switch tag {
	case "0":
		msgType = cosmos.MessageTypeSend
	case "1":
		msgType = cosmos.MessageTypeDelegate
	case "2":
		msgType = cosmos.MessageTypeUndelegate
	default:
		return nil, &UnexpectedDiscriminantError{Path: path + "[0]", Value: tag}
	}
	first, err := asString(fields[1], path+"[1]")
	if err != nil {
		return nil, err
	}
	second, err := asString(fields[2], path+"[2]")
	if err != nil {
		return nil, err
	}
	if msgType == cosmos.MessageTypeSend {
		coins, err := cosmosCoins(fields[3], path+"[3]")
		if err != nil {
			return nil, err
		}
		return &cosmos.SendMessage{FromAddress: first, ToAddress: second, Amount: coins}, nil
	}
	coin, err := cosmosCoin(fields[3], path+"[3]")
	if err != nil {
		return nil, err
	}
	return &cosmos.DelegateMessage{
		DelegatorAddress: first,
		ValidatorAddress: second,
		Amount:           coin,
		Undelegate:       msgType == cosmos.MessageTypeUndelegate,
	}, nil
}

func cosmosCoin(v any, path string) (cosmos.Coin, error) {
	fields, err := asList(v, path, 2)
	if err != nil {
		return cosmos.Coin{}, err
	}
	denom, err := asString(fields[0], path+"[0]")
	if err != nil {
		return cosmos.Coin{}, err
	}
	amount, err := asDecimal(fields[1], path+"[1]")
	if err != nil {
		return cosmos.Coin{}, err
	}
	return cosmos.Coin{Denom: denom, Amount: amount}, nil
}

func cosmosCoins(v any, path string) ([]cosmos.Coin, error) {
	items, err := asList(v, path, -1)
	if err != nil {
		return nil, err
	}
	coins := make([]cosmos.Coin, len(items))
	for i, item := range items {
		if coins[i], err = cosmosCoin(item, fmt.Sprintf("%s[%d]", path, i)); err != nil {
			return nil, err
		}
	}
	return coins, nil
}

func cosmosFee(v any, path string) (cosmos.Fee, error) {
	fields, err := asList(v, path, 2)
	if err != nil {
		return cosmos.Fee{}, err
	}
	coins, err := cosmosCoins(fields[0], path+"[0]")
	if err != nil {
		return cosmos.Fee{}, err
	}
	gas, err := asDecimal(fields[1], path+"[1]")
	if err != nil {
		return cosmos.Fee{}, err
	}
	return cosmos.Fee{Amount: coins, Gas: gas}, nil
}

// EthereumSerializer handles *ethereum.RawEthereumTransaction as
// [nonce, gasPrice, gasLimit, to, value, chainId, data].
type EthereumSerializer struct{}

func (EthereumSerializer) Protocol() string { return ProtocolEthereum }

func (EthereumSerializer) Serialize(tx *UnsignedTransaction) ([]byte, error) {
	t, err := transactionAs[*ethereum.RawEthereumTransaction](tx)
	if err != nil {
		return nil, err
	}
	return pack([]any{t.Nonce, t.GasPrice, t.GasLimit, t.To, t.Value, t.ChainID, t.Data}, tx)
}

func (EthereumSerializer) Deserialize(buf []byte) (*UnsignedTransaction, error) {
	payload, ret, err := unpack(buf)
	if err != nil {
		return nil, err
	}
	fields, err := asList(payload, "$[0]", 7)
	if err != nil {
		return nil, err
	}
	t := &ethereum.RawEthereumTransaction{}
	for i, dst := range []*string{&t.Nonce, &t.GasPrice, &t.GasLimit, &t.To, &t.Value} {
		if *dst, err = asString(fields[i], fmt.Sprintf("$[0][%d]", i)); err != nil {
			return nil, err
		}
	}
	if t.ChainID, err = asUint64(fields[5], "$[0][5]"); err != nil {
		return nil, err
	}
	if t.Data, err = asString(fields[6], "$[0][6]"); err != nil {
		return nil, err
	}
	ret.Transaction = t
	return ret, nil
}

// TezosSerializer handles *tezos.RawTezosTransaction as
// [binaryTransaction].
type TezosSerializer struct{}

func (TezosSerializer) Protocol() string { return ProtocolTezos }

func (TezosSerializer) Serialize(tx *UnsignedTransaction) ([]byte, error) {
	t, err := transactionAs[*tezos.RawTezosTransaction](tx)
	if err != nil {
		return nil, err
	}
	return pack([]any{t.BinaryTransaction}, tx)
}

func (TezosSerializer) Deserialize(buf []byte) (*UnsignedTransaction, error) {
	payload, ret, err := unpack(buf)
	if err != nil {
		return nil, err
	}
	fields, err := asList(payload, "$[0]", 1)
	if err != nil {
		return nil, err
	}
	binary, err := asString(fields[0], "$[0][0]")
	if err != nil {
		return nil, err
	}
	if _, err := hex.DecodeString(strings.TrimPrefix(binary, "0x")); err != nil {
		return nil, &MalformedEnvelopeError{Path: "$[0][0]", Expected: "hex", Got: describe(fields[0])}
	}
	ret.Transaction = &tezos.RawTezosTransaction{BinaryTransaction: binary}
	return ret, nil
}

// SubstrateSerializer handles *substrate.RawSubstrateTransaction as
// [encoded, payload] for one network.
type SubstrateSerializer struct {
	Network substrate.Network
}

func (s SubstrateSerializer) Protocol() string { return s.Network.Name }

func (s SubstrateSerializer) Serialize(tx *UnsignedTransaction) ([]byte, error) {
	t, err := transactionAs[*substrate.RawSubstrateTransaction](tx)
	if err != nil {
		return nil, err
	}
	return pack([]any{t.Encoded, t.Payload}, tx)
}

// Deserialize also checks that the signing payload is hex and that the
// encoded extrinsic decodes.
func (s SubstrateSerializer) Deserialize(buf []byte) (*UnsignedTransaction, error) {
	payload, ret, err := unpack(buf)
	if err != nil {
		return nil, err
	}
	fields, err := asList(payload, "$[0]", 2)
	if err != nil {
		return nil, err
	}
	t := &substrate.RawSubstrateTransaction{}
	if t.Encoded, err = asString(fields[0], "$[0][0]"); err != nil {
		return nil, err
	}
	if t.Payload, err = asString(fields[1], "$[0][1]"); err != nil {
		return nil, err
	}
	if _, err := t.PayloadBytes(); err != nil {
		return nil, &MalformedEnvelopeError{Path: "$[0][1]", Expected: "hex", Got: describe(fields[1])}
	}
	if _, err := t.Extrinsic(s.Network.Name); err != nil {
		return nil, fmt.Errorf("%s extrinsic: %w", s.Network.Name, err)
	}
	ret.Transaction = t
	return ret, nil
}
