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

package cosmos

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/bech32"
)

// Bech32 prefixes of the Cosmos Hub.
const (
	AccountPrefix   = "cosmos"
	ValidatorPrefix = "cosmosvaloper"
)

var ErrInvalidAddress = errors.New("cosmos: invalid address")

// Transaction is an unsigned Cosmos transaction. AccountNumber and Sequence
// are decimal strings.
type Transaction struct {
	Messages      []Message
	Fee           Fee
	Memo          string
	ChainID       string
	AccountNumber string
	Sequence      string
}

// SignDoc is the Amino sign document. Keys are in alphabetical order.
type SignDoc struct {
	AccountNumber string        `json:"account_number"`
	ChainID       string        `json:"chain_id"`
	Fee           SignFee       `json:"fee"`
	Memo          string        `json:"memo"`
	Msgs          []SignMessage `json:"msgs"`
	Sequence      string        `json:"sequence"`
}

func (t *Transaction) SignJSON() SignDoc {
	msgs := make([]SignMessage, len(t.Messages))
	for i, m := range t.Messages {
		msgs[i] = m.SignJSON()
	}
	return SignDoc{
		AccountNumber: t.AccountNumber,
		ChainID:       t.ChainID,
		Fee:           t.Fee.SignJSON(),
		Memo:          t.Memo,
		Msgs:          msgs,
		Sequence:      t.Sequence,
	}
}

// SignBytes returns the compact JSON of the sign document.
func (t *Transaction) SignBytes() ([]byte, error) {
	return json.Marshal(t.SignJSON())
}

// Array returns [messages, fee, memo, chainId, accountNumber, sequence].
func (t *Transaction) Array() []any {
	msgs := make([]any, len(t.Messages))
	for i, m := range t.Messages {
		msgs[i] = m.Array()
	}
	return []any{msgs, t.Fee.Array(), t.Memo, t.ChainID, t.AccountNumber, t.Sequence}
}

// Address encodes a 20-byte key hash with the bech32 prefix hrp.
func Address(hrp string, keyHash []byte) (string, error) {
	if len(keyHash) != 20 {
		return "", fmt.Errorf("%w: key hash is %d bytes", ErrInvalidAddress, len(keyHash))
	}
	convData, err := bech32.ConvertBits(keyHash, 8, 5, true)
	if err != nil {
		return "", err
	}
	return bech32.Encode(hrp, convData)
}

// ValidateAddress checks that address is bech32 with prefix hrp and a
// 20-byte payload.
func ValidateAddress(address, hrp string) error {
	prefix, data, err := bech32.Decode(address)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}
	if prefix != hrp {
		return fmt.Errorf("%w: prefix %q, expected %q", ErrInvalidAddress, prefix, hrp)
	}
	keyHash, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}
	if len(keyHash) != 20 {
		return fmt.Errorf("%w: payload is %d bytes", ErrInvalidAddress, len(keyHash))
	}
	return nil
}

// Validate checks the addresses of every message.
func (t *Transaction) Validate() error {
	for i, m := range t.Messages {
		var err error
		switch msg := m.(type) {
		case *SendMessage:
			err = errors.Join(
				ValidateAddress(msg.FromAddress, AccountPrefix),
				ValidateAddress(msg.ToAddress, AccountPrefix),
			)
		case *DelegateMessage:
			err = errors.Join(
				ValidateAddress(msg.DelegatorAddress, AccountPrefix),
				ValidateAddress(msg.ValidatorAddress, ValidatorPrefix),
			)
		}
		if err != nil {
			return fmt.Errorf("message %d: %w", i, err)
		}
	}
	return nil
}
