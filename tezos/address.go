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

package tezos

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/blake2b"
)

const (
	// ForgedAddressLength is the size of a forged contract id.
	ForgedAddressLength = 22
	// ForgedKeyHashLength is the size of a forged public key hash.
	ForgedKeyHashLength = 21

	contractTagImplicit   = 0x00
	contractTagOriginated = 0x01
)

// Implicit account curve tags, indexed by the forged tag byte.
var keyHashPrefixes = []Prefix{PrefixTz1, PrefixTz2, PrefixTz3, PrefixTz4}

// ForgeKeyHash forges a tz1/tz2/tz3/tz4 address to its 21-byte form.
func ForgeKeyHash(address string) ([]byte, error) {
	for tag, prefix := range keyHashPrefixes {
		if !strings.HasPrefix(address, prefix.Name) {
			continue
		}
		hash, err := DecodeBase58Check(address, prefix)
		if err != nil {
			return nil, err
		}
		return append([]byte{byte(tag)}, hash...), nil
	}
	return nil, fmt.Errorf("%w: %q is not an implicit account", ErrInvalidAddress, address)
}

// UnforgeKeyHash reverses ForgeKeyHash.
func UnforgeKeyHash(b []byte) (string, error) {
	if len(b) != ForgedKeyHashLength {
		return "", fmt.Errorf("%w: key hash is %d bytes", ErrInvalidLength, len(b))
	}
	if int(b[0]) >= len(keyHashPrefixes) {
		return "", fmt.Errorf("%w: unknown curve tag %d", ErrInvalidAddress, b[0])
	}
	return EncodeBase58Check(keyHashPrefixes[b[0]], b[1:])
}

// ForgeAddress forges any contract id (implicit or KT1) to 22 bytes.
func ForgeAddress(address string) ([]byte, error) {
	if strings.HasPrefix(address, PrefixKT1.Name) {
		hash, err := DecodeBase58Check(address, PrefixKT1)
		if err != nil {
			return nil, err
		}
		ret := make([]byte, 0, ForgedAddressLength)
		ret = append(ret, contractTagOriginated)
		ret = append(ret, hash...)
		return append(ret, 0x00), nil
	}
	pkh, err := ForgeKeyHash(address)
	if err != nil {
		return nil, err
	}
	return append([]byte{contractTagImplicit}, pkh...), nil
}

// UnforgeAddress reverses ForgeAddress.
func UnforgeAddress(b []byte) (string, error) {
	if len(b) != ForgedAddressLength {
		return "", fmt.Errorf("%w: address is %d bytes", ErrInvalidLength, len(b))
	}
	switch b[0] {
	case contractTagImplicit:
		return UnforgeKeyHash(b[1:])
	case contractTagOriginated:
		if b[21] != 0x00 {
			return "", fmt.Errorf("%w: bad originated padding", ErrInvalidAddress)
		}
		return EncodeBase58Check(PrefixKT1, b[1:21])
	default:
		return "", fmt.Errorf("%w: unknown contract tag %d", ErrInvalidAddress, b[0])
	}
}

// ValidateAddress reports whether address is a well formed tz or KT1
// address.
func ValidateAddress(address string) error {
	_, err := ForgeAddress(address)
	return err
}

// ExprHash returns the script expression hash (expr...) of packed data, as
// used for big map keys.
func ExprHash(packed []byte) string {
	sum := blake2b.Sum256(packed)
	s, _ := EncodeBase58Check(PrefixExpr, sum[:])
	return s
}
