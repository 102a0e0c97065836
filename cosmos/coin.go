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

// Package cosmos models unsigned Cosmos SDK (Amino JSON) transactions.
package cosmos

import (
	"github.com/shopspring/decimal"
)

// Coin is an amount of one denomination.
type Coin struct {
	Denom  string
	Amount decimal.Decimal
}

func NewCoin(denom string, amount int64) Coin {
	return Coin{Denom: denom, Amount: decimal.NewFromInt(amount)}
}

// SignCoin is the sign JSON form of a Coin. Field order is the key order of
// the sign document.
type SignCoin struct {
	Amount string `json:"amount"`
	Denom  string `json:"denom"`
}

// SignJSON renders the amount in fixed notation.
func (c Coin) SignJSON() SignCoin {
	return SignCoin{Amount: c.Amount.String(), Denom: c.Denom}
}

// Array returns [denom, amount].
func (c Coin) Array() []any {
	return []any{c.Denom, c.Amount}
}

func signCoins(coins []Coin) []SignCoin {
	ret := make([]SignCoin, len(coins))
	for i, c := range coins {
		ret[i] = c.SignJSON()
	}
	return ret
}

func coinArrays(coins []Coin) []any {
	ret := make([]any, len(coins))
	for i, c := range coins {
		ret[i] = c.Array()
	}
	return ret
}

type Fee struct {
	Amount []Coin
	Gas    decimal.Decimal
}

type SignFee struct {
	Amount []SignCoin `json:"amount"`
	Gas    string     `json:"gas"`
}

func (f Fee) SignJSON() SignFee {
	return SignFee{Amount: signCoins(f.Amount), Gas: f.Gas.String()}
}

// Array returns [[[denom, amount]...], gas].
func (f Fee) Array() []any {
	return []any{coinArrays(f.Amount), f.Gas}
}
