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

// Package ethereum builds ERC-20 call data and legacy raw transactions.
package ethereum

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
)

// ParameterLength is the hex width of one ABI parameter slot (32 bytes).
const ParameterLength = 64

// addressLength is the hex length of a 20-byte address.
const addressLength = 40

var (
	ErrUnexpectedMethodID = errors.New("ethereum: unexpected method ID")
	ErrInvalidAddress     = errors.New("ethereum: invalid address")
	ErrInvalidQuantity    = errors.New("ethereum: invalid quantity")
	ErrInvalidSignature   = errors.New("ethereum: invalid signature")
)

type UnexpectedMethodIDError struct {
	Expected string
	Actual   string
}

func (e *UnexpectedMethodIDError) Error() string {
	return fmt.Sprintf(
		"ethereum: unexpected method ID: expected %s, got %s",
		e.Expected,
		e.Actual,
	)
}

func (e *UnexpectedMethodIDError) Is(target error) bool {
	return target == ErrUnexpectedMethodID
}

// RPCData is contract call data for one of the supported ERC-20 methods.
type RPCData interface {
	MethodSignature() string
	ABIEncoded() string
	isRPCData()
}

// MethodID returns the 0x-prefixed selector of a method signature: the
// first 4 bytes of its Keccak-256 hash.
func MethodID(signature string) string {
	return "0x" + hex.EncodeToString(crypto.Keccak256([]byte(signature))[:4])
}

// AddLeadingZeroPadding left-pads v with '0' up to n characters.
func AddLeadingZeroPadding(v string, n int) string {
	if len(v) >= n {
		return v
	}
	return strings.Repeat("0", n-len(v)) + v
}

// RemoveLeadingZeroPadding strips every leading '0' from v.
func RemoveLeadingZeroPadding(v string) string {
	return strings.TrimLeft(v, "0")
}

func param(v string) string {
	return AddLeadingZeroPadding(strings.ToLower(strings.TrimPrefix(v, "0x")), ParameterLength)
}

// BalanceOf is balanceOf(address).
type BalanceOf struct {
	Address string
}

func (BalanceOf) isRPCData() {}

func (BalanceOf) MethodSignature() string {
	return "balanceOf(address)"
}

func (b BalanceOf) ABIEncoded() string {
	return MethodID(b.MethodSignature()) + param(b.Address)
}

// Transfer is transfer(address,uint256). Amount is a hex quantity.
type Transfer struct {
	Recipient string
	Amount    string
}

func (Transfer) isRPCData() {}

func (Transfer) MethodSignature() string {
	return "transfer(address,uint256)"
}

func (t Transfer) ABIEncoded() string {
	return MethodID(t.MethodSignature()) + param(t.Recipient) + param(t.Amount)
}

// TransferFromABI decodes transfer call data. The recipient is the low 20
// bytes of its slot. Leading zeros are stripped from the amount without
// checking the slot width, and a zero amount decodes as "0x0".
func TransferFromABI(data string) (*Transfer, error) {
	data = strings.ToLower(data)
	if !strings.HasPrefix(data, "0x") {
		data = "0x" + data
	}
	methodID := MethodID(Transfer{}.MethodSignature())
	if !strings.HasPrefix(data, methodID) {
		actual := data
		if len(actual) > len(methodID) {
			actual = actual[:len(methodID)]
		}
		return nil, &UnexpectedMethodIDError{Expected: methodID, Actual: actual}
	}
	params := data[len(methodID):]
	recipient := params[:min(len(params), ParameterLength)]
	amount := params[len(recipient):]
	ret := &Transfer{
		Recipient: "0x" + RemoveLeadingZeroPadding(recipient),
		Amount:    "0x" + RemoveLeadingZeroPadding(amount),
	}
	if len(recipient) >= addressLength {
		ret.Recipient = "0x" + recipient[len(recipient)-addressLength:]
	}
	if ret.Amount == "0x" {
		ret.Amount = "0x0"
	}
	return ret, nil
}
