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

import "fmt"

// MessageType is the discriminant of a message in the array form.
type MessageType uint8

const (
	MessageTypeSend MessageType = iota
	MessageTypeDelegate
	MessageTypeUndelegate
)

var messageTypeNames = map[MessageType]string{
	MessageTypeSend:       "cosmos-sdk/MsgSend",
	MessageTypeDelegate:   "cosmos-sdk/MsgDelegate",
	MessageTypeUndelegate: "cosmos-sdk/MsgUndelegate",
}

// Valid reports whether t is a known discriminant.
func (t MessageType) Valid() bool {
	_, ok := messageTypeNames[t]
	return ok
}

// String returns the Amino type name.
func (t MessageType) String() string {
	if name, ok := messageTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("MessageType(%d)", uint8(t))
}

// Message is one of SendMessage or DelegateMessage.
type Message interface {
	Type() MessageType
	SignJSON() SignMessage
	// Array returns [type, ...fields].
	Array() []any
	isMessage()
}

// SignMessage is the sign JSON form of a message.
type SignMessage struct {
	Type  string `json:"type"`
	Value any    `json:"value"`
}

type SendMessage struct {
	FromAddress string
	ToAddress   string
	Amount      []Coin
}

type signSend struct {
	Amount      []SignCoin `json:"amount"`
	FromAddress string     `json:"from_address"`
	ToAddress   string     `json:"to_address"`
}

func (*SendMessage) isMessage() {}

func (*SendMessage) Type() MessageType { return MessageTypeSend }

func (m *SendMessage) SignJSON() SignMessage {
	return SignMessage{
		Type: m.Type().String(),
		Value: signSend{
			Amount:      signCoins(m.Amount),
			FromAddress: m.FromAddress,
			ToAddress:   m.ToAddress,
		},
	}
}

func (m *SendMessage) Array() []any {
	return []any{uint8(m.Type()), m.FromAddress, m.ToAddress, coinArrays(m.Amount)}
}

// DelegateMessage delegates, or with Undelegate set unbonds, Amount.
type DelegateMessage struct {
	DelegatorAddress string
	ValidatorAddress string
	Amount           Coin
	Undelegate       bool
}

type signDelegate struct {
	Amount           SignCoin `json:"amount"`
	DelegatorAddress string   `json:"delegator_address"`
	ValidatorAddress string   `json:"validator_address"`
}

func (*DelegateMessage) isMessage() {}

func (m *DelegateMessage) Type() MessageType {
	if m.Undelegate {
		return MessageTypeUndelegate
	}
	return MessageTypeDelegate
}

func (m *DelegateMessage) SignJSON() SignMessage {
	return SignMessage{
		Type: m.Type().String(),
		Value: signDelegate{
			Amount:           m.Amount.SignJSON(),
			DelegatorAddress: m.DelegatorAddress,
			ValidatorAddress: m.ValidatorAddress,
		},
	}
}

func (m *DelegateMessage) Array() []any {
	return []any{uint8(m.Type()), m.DelegatorAddress, m.ValidatorAddress, m.Amount.Array()}
}
