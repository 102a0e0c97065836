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
	"bytes"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil/base58"
	"golang.org/x/crypto/blake2b"
)

const (
	AccountIDLength = 32

	ss58ChecksumLength = 2
)

var ss58Prefix = []byte("SS58PRE")

// Network identifies a Substrate chain by its SS58 address format.
type Network struct {
	Name       string
	SS58Format uint8
	Decimals   int32
}

var (
	Polkadot = Network{Name: "polkadot", SS58Format: 0, Decimals: 10}
	Kusama   = Network{Name: "kusama", SS58Format: 2, Decimals: 12}
	Westend  = Network{Name: "westend", SS58Format: 42, Decimals: 12}
)

var networks = map[string]Network{
	Polkadot.Name: Polkadot,
	Kusama.Name:   Kusama,
	Westend.Name:  Westend,
}

// NetworkByName returns a known network preset, case-insensitively.
func NetworkByName(name string) (Network, error) {
	n, ok := networks[strings.ToLower(name)]
	if !ok {
		return Network{}, fmt.Errorf("%w: %s", ErrUnknownNetwork, name)
	}
	return n, nil
}

// Address encodes a 32-byte account id as an SS58 address for the network.
func (n Network) Address(accountID []byte) (string, error) {
	if len(accountID) != AccountIDLength {
		return "", fmt.Errorf(
			"%w: account id must be %d bytes, got %d",
			ErrInvalidAddress,
			AccountIDLength,
			len(accountID),
		)
	}
	if n.SS58Format >= 64 {
		return "", fmt.Errorf(
			"%w: two-byte SS58 format %d is not supported",
			ErrInvalidAddress,
			n.SS58Format,
		)
	}
	body := make([]byte, 0, 1+AccountIDLength+ss58ChecksumLength)
	body = append(body, n.SS58Format)
	body = append(body, accountID...)
	body = append(body, ss58Checksum(body)...)
	return base58.Encode(body), nil
}

// AccountID decodes an SS58 address, checking that it belongs to the
// network and that its checksum is valid.
func (n Network) AccountID(address string) ([]byte, error) {
	raw := base58.Decode(address)
	if len(raw) != 1+AccountIDLength+ss58ChecksumLength {
		return nil, fmt.Errorf(
			"%w: %q has unexpected length %d",
			ErrInvalidAddress,
			address,
			len(raw),
		)
	}
	if raw[0] != n.SS58Format {
		return nil, fmt.Errorf(
			"%w: %q has format %d, want %d for %s",
			ErrInvalidAddress,
			address,
			raw[0],
			n.SS58Format,
			n.Name,
		)
	}
	body := raw[:1+AccountIDLength]
	if !bytes.Equal(ss58Checksum(body), raw[1+AccountIDLength:]) {
		return nil, fmt.Errorf("%w: %q has a bad checksum", ErrInvalidAddress, address)
	}
	return bytes.Clone(raw[1 : 1+AccountIDLength]), nil
}

func ss58Checksum(body []byte) []byte {
	h, _ := blake2b.New512(nil)
	h.Write(ss58Prefix)
	h.Write(body)
	return h.Sum(nil)[:ss58ChecksumLength]
}
