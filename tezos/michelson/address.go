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

package michelson

import (
	"fmt"
	"strings"

	"github.com/blinklabs-io/airlock/tezos"
	"github.com/blinklabs-io/airlock/tezos/micheline"
)

// Address is a tz or KT1 address.
type Address struct {
	Annotated
	Value string
}

// KeyHash is an implicit account public key hash.
type KeyHash struct {
	Annotated
	Value string
}

// Contract is an address with an optional entrypoint.
type Contract struct {
	Annotated
	Address    string
	Entrypoint string
}

func (*Address) TypeName() string  { return "address" }
func (*KeyHash) TypeName() string  { return "key_hash" }
func (*Contract) TypeName() string { return "contract" }

// splitEntrypoint separates "KT1...%entry" into its parts.
func splitEntrypoint(s string) (string, string) {
	addr, entry, _ := strings.Cut(s, "%")
	if entry == "default" {
		entry = ""
	}
	return addr, entry
}

// AddressFrom accepts an address string or its forged form. An entrypoint
// suffix is not allowed here; use ContractFrom.
func AddressFrom(v any, name string) (*Address, error) {
	var s string
	switch x := v.(type) {
	case *Address:
		return x, nil
	case string:
		s = x
	case micheline.String:
		s = x.Value
	case micheline.Bytes:
		if len(x.Value) < tezos.ForgedAddressLength {
			return nil, fmt.Errorf("%w: forged address is %d bytes", ErrInvalidValue, len(x.Value))
		}
		addr, err := tezos.UnforgeAddress(x.Value[:tezos.ForgedAddressLength])
		if err != nil {
			return nil, err
		}
		return &Address{Annotated: Annotated{name}, Value: addr}, nil
	default:
		return nil, mismatch("address", "string or forged address bytes", v)
	}
	if err := tezos.ValidateAddress(s); err != nil {
		return nil, err
	}
	return &Address{Annotated: Annotated{name}, Value: s}, nil
}

func KeyHashFrom(v any, name string) (*KeyHash, error) {
	var s string
	switch x := v.(type) {
	case *KeyHash:
		return x, nil
	case string:
		s = x
	case micheline.String:
		s = x.Value
	case micheline.Bytes:
		kh, err := tezos.UnforgeKeyHash(x.Value)
		if err != nil {
			return nil, err
		}
		return &KeyHash{Annotated: Annotated{name}, Value: kh}, nil
	default:
		return nil, mismatch("key_hash", "string or forged key hash bytes", v)
	}
	if _, err := tezos.ForgeKeyHash(s); err != nil {
		return nil, err
	}
	return &KeyHash{Annotated: Annotated{name}, Value: s}, nil
}

func ContractFrom(v any, name string) (*Contract, error) {
	var s string
	switch x := v.(type) {
	case *Contract:
		return x, nil
	case string:
		s = x
	case micheline.String:
		s = x.Value
	case micheline.Bytes:
		if len(x.Value) < tezos.ForgedAddressLength {
			return nil, fmt.Errorf("%w: forged contract is %d bytes", ErrInvalidValue, len(x.Value))
		}
		addr, err := tezos.UnforgeAddress(x.Value[:tezos.ForgedAddressLength])
		if err != nil {
			return nil, err
		}
		return &Contract{
			Annotated:  Annotated{name},
			Address:    addr,
			Entrypoint: string(x.Value[tezos.ForgedAddressLength:]),
		}, nil
	default:
		return nil, mismatch("contract", "string or forged contract bytes", v)
	}
	addr, entry := splitEntrypoint(s)
	if err := tezos.ValidateAddress(addr); err != nil {
		return nil, err
	}
	return &Contract{Annotated: Annotated{name}, Address: addr, Entrypoint: entry}, nil
}

func (a *Address) ToMicheline() micheline.Node { return micheline.String{Value: a.Value} }
func (k *KeyHash) ToMicheline() micheline.Node { return micheline.String{Value: k.Value} }

func (c *Contract) String() string {
	if c.Entrypoint == "" {
		return c.Address
	}
	return c.Address + "%" + c.Entrypoint
}

func (c *Contract) ToMicheline() micheline.Node {
	return micheline.String{Value: c.String()}
}

func (a *Address) AsRawValue() any  { return named(a.Annot, a.Value) }
func (k *KeyHash) AsRawValue() any  { return named(k.Annot, k.Value) }
func (c *Contract) AsRawValue() any { return named(c.Annot, c.String()) }
