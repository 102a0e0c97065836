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
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTransaction(from, to string) *Transaction {
	return &Transaction{
		Messages: []Message{
			&SendMessage{
				FromAddress: from,
				ToAddress:   to,
				Amount:      []Coin{NewCoin("uatom", 100)},
			},
		},
		Fee: Fee{
			Amount: []Coin{NewCoin("uatom", 500)},
			Gas:    decimal.NewFromInt(200000),
		},
		Memo:          "m",
		ChainID:       "cosmoshub-3",
		AccountNumber: "7",
		Sequence:      "3",
	}
}

func TestSignBytes(t *testing.T) {
	b, err := testTransaction("cosmos1a", "cosmos1b").SignBytes()
	require.NoError(t, err)
	assert.Equal(
		t,
		`{"account_number":"7","chain_id":"cosmoshub-3",`+
			`"fee":{"amount":[{"amount":"500","denom":"uatom"}],"gas":"200000"},`+
			`"memo":"m","msgs":[{"type":"cosmos-sdk/MsgSend","value":`+
			`{"amount":[{"amount":"100","denom":"uatom"}],`+
			`"from_address":"cosmos1a","to_address":"cosmos1b"}}],"sequence":"3"}`,
		string(b),
	)
}

func TestDelegateSignJSON(t *testing.T) {
	msg := &DelegateMessage{
		DelegatorAddress: "cosmos1d",
		ValidatorAddress: "cosmosvaloper1v",
		Amount:           NewCoin("uatom", 1),
	}
	assert.Equal(t, MessageTypeDelegate, msg.Type())
	assert.Equal(t, "cosmos-sdk/MsgDelegate", msg.SignJSON().Type)

	msg.Undelegate = true
	assert.Equal(t, MessageTypeUndelegate, msg.Type())
	assert.Equal(t, "cosmos-sdk/MsgUndelegate", msg.SignJSON().Type)
	assert.Equal(t, uint8(2), msg.Array()[0])
}

func TestFixedNotation(t *testing.T) {
	amount, err := decimal.NewFromString("1.5e3")
	require.NoError(t, err)
	coin := Coin{Denom: "uatom", Amount: amount}
	assert.Equal(t, "1500", coin.SignJSON().Amount)
}

func TestArray(t *testing.T) {
	arr := testTransaction("cosmos1a", "cosmos1b").Array()
	require.Len(t, arr, 6)
	msgs, ok := arr[0].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 1)
	send, ok := msgs[0].([]any)
	require.True(t, ok)
	assert.Equal(t, uint8(MessageTypeSend), send[0])
	assert.Equal(t, "cosmos1a", send[1])
	assert.Equal(t, []any{"m", "cosmoshub-3", "7", "3"}, arr[2:])
}

func TestMessageTypeString(t *testing.T) {
	assert.Equal(t, "cosmos-sdk/MsgSend", MessageTypeSend.String())
	assert.False(t, MessageType(7).Valid())
	assert.Equal(t, "MessageType(7)", MessageType(7).String())
}

func TestAddresses(t *testing.T) {
	hash := bytes.Repeat([]byte{0x11}, 20)
	account, err := Address(AccountPrefix, hash)
	require.NoError(t, err)
	validator, err := Address(ValidatorPrefix, hash)
	require.NoError(t, err)

	assert.NoError(t, ValidateAddress(account, AccountPrefix))
	assert.ErrorIs(t, ValidateAddress(account, ValidatorPrefix), ErrInvalidAddress)
	assert.ErrorIs(t, ValidateAddress("cosmos1invalid", AccountPrefix), ErrInvalidAddress)

	_, err = Address(AccountPrefix, hash[:4])
	assert.ErrorIs(t, err, ErrInvalidAddress)

	tx := testTransaction(account, account)
	assert.NoError(t, tx.Validate())
	tx.Messages = append(tx.Messages, &DelegateMessage{
		DelegatorAddress: account,
		ValidatorAddress: validator,
		Amount:           NewCoin("uatom", 1),
	})
	assert.NoError(t, tx.Validate())
	tx.Messages[1].(*DelegateMessage).ValidatorAddress = account
	assert.ErrorIs(t, tx.Validate(), ErrInvalidAddress)
}
