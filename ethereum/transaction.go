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
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
)

// RawEthereumTransaction is an unsigned legacy transaction. Quantities are
// 0x-prefixed hex strings.
type RawEthereumTransaction struct {
	Nonce    string
	GasPrice string
	GasLimit string
	To       string
	Value    string
	ChainID  uint64
	Data     string
}

// ParseQuantity parses a hex quantity. An empty string or a bare "0x" is
// zero, and leading zeros are accepted.
func ParseQuantity(s string) (*big.Int, error) {
	digits := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if digits == "" {
		return new(big.Int), nil
	}
	v, ok := new(big.Int).SetString(digits, 16)
	if !ok || v.Sign() < 0 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidQuantity, s)
	}
	return v, nil
}

// ValidateAddress checks for a 20-byte hex address with 0x prefix.
func ValidateAddress(address string) error {
	if !strings.HasPrefix(address, "0x") || !common.IsHexAddress(address) {
		return fmt.Errorf("%w: %q", ErrInvalidAddress, address)
	}
	return nil
}

// fields returns the first six items of the legacy transaction list.
func (t *RawEthereumTransaction) fields() ([]any, error) {
	ret := make([]any, 0, 9)
	for _, q := range []struct {
		name  string
		value string
	}{
		{"nonce", t.Nonce},
		{"gas price", t.GasPrice},
		{"gas limit", t.GasLimit},
	} {
		v, err := ParseQuantity(q.value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", q.name, err)
		}
		ret = append(ret, v)
	}
	// Empty recipient is contract creation
	var to []byte
	if t.To != "" {
		if err := ValidateAddress(t.To); err != nil {
			return nil, err
		}
		to = common.HexToAddress(t.To).Bytes()
	}
	value, err := ParseQuantity(t.Value)
	if err != nil {
		return nil, fmt.Errorf("value: %w", err)
	}
	var data []byte
	if t.Data != "" {
		if data, err = hexutil.Decode(t.Data); err != nil {
			return nil, fmt.Errorf("data: %w", err)
		}
	}
	return append(ret, to, value, data), nil
}

// SigningHash returns the EIP-155 hash the signer signs: Keccak-256 of the
// RLP list [nonce, gasPrice, gasLimit, to, value, data, chainId, 0, 0].
func (t *RawEthereumTransaction) SigningHash() ([]byte, error) {
	items, err := t.fields()
	if err != nil {
		return nil, err
	}
	items = append(items, new(big.Int).SetUint64(t.ChainID), uint(0), uint(0))
	enc, err := rlp.EncodeToBytes(items)
	if err != nil {
		return nil, err
	}
	return crypto.Keccak256(enc), nil
}

// EncodeSigned attaches a 65-byte [R || S || V] signature, with V as the
// recovery id 0 or 1, and returns the 0x-prefixed raw transaction for
// eth_sendRawTransaction.
func (t *RawEthereumTransaction) EncodeSigned(sig []byte) (string, error) {
	if len(sig) != crypto.SignatureLength {
		return "", fmt.Errorf("%w: %d bytes", ErrInvalidSignature, len(sig))
	}
	recID := sig[crypto.RecoveryIDOffset]
	if recID > 1 {
		return "", fmt.Errorf("%w: recovery id %d", ErrInvalidSignature, recID)
	}
	items, err := t.fields()
	if err != nil {
		return "", err
	}
	v := new(big.Int).SetUint64(t.ChainID)
	v.Mul(v, big.NewInt(2))
	v.Add(v, big.NewInt(35+int64(recID)))
	items = append(
		items,
		v,
		new(big.Int).SetBytes(sig[:32]),
		new(big.Int).SetBytes(sig[32:64]),
	)
	enc, err := rlp.EncodeToBytes(items)
	if err != nil {
		return "", err
	}
	return hexutil.Encode(enc), nil
}

// Signer produces a 65-byte [R || S || V] signature over a 32-byte hash.
// Key handling stays with the implementation.
type Signer interface {
	Sign(hash []byte) ([]byte, error)
}

// Sign asks signer to sign the signing hash and returns the encoded signed
// transaction.
func (t *RawEthereumTransaction) Sign(signer Signer) (string, error) {
	hash, err := t.SigningHash()
	if err != nil {
		return "", err
	}
	sig, err := signer.Sign(hash)
	if err != nil {
		return "", fmt.Errorf("signing transaction: %w", err)
	}
	return t.EncodeSigned(sig)
}

// TransferIntent recovers the token transfer carried by t.
func (t *RawEthereumTransaction) TransferIntent() (*RawEthereumTransferIntent, error) {
	transfer, err := TransferFromABI(t.Data)
	if err != nil {
		return nil, err
	}
	return &RawEthereumTransferIntent{
		Contract:  t.To,
		Recipient: transfer.Recipient,
		Amount:    transfer.Amount,
	}, nil
}

// RawEthereumTransferIntent is an ERC-20 transfer before nonce and gas are
// known.
type RawEthereumTransferIntent struct {
	Contract  string
	Recipient string
	Amount    string
}

func NewTransferIntent(contract, recipient, amount string) (*RawEthereumTransferIntent, error) {
	for _, addr := range []string{contract, recipient} {
		if err := ValidateAddress(addr); err != nil {
			return nil, err
		}
	}
	if _, err := ParseQuantity(amount); err != nil {
		return nil, err
	}
	return &RawEthereumTransferIntent{
		Contract:  contract,
		Recipient: recipient,
		Amount:    amount,
	}, nil
}

// Transaction projects the intent into a raw transaction calling the token
// contract with zero value.
func (i *RawEthereumTransferIntent) Transaction(
	nonce string,
	gasPrice string,
	gasLimit string,
	chainID uint64,
) *RawEthereumTransaction {
	return &RawEthereumTransaction{
		Nonce:    nonce,
		GasPrice: gasPrice,
		GasLimit: gasLimit,
		To:       i.Contract,
		Value:    "0x0",
		ChainID:  chainID,
		Data:     Transfer{Recipient: i.Recipient, Amount: i.Amount}.ABIEncoded(),
	}
}
