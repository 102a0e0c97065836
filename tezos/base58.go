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

// Package tezos holds Tezos encoding helpers: base58check with the
// protocol's prefixes, address forging and operation forging and hashing.
package tezos

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/base58"
)

var (
	ErrInvalidChecksum = errors.New("tezos: invalid base58 checksum")
	ErrInvalidPrefix   = errors.New("tezos: unexpected base58 prefix")
	ErrInvalidAddress  = errors.New("tezos: invalid address")
	ErrInvalidLength   = errors.New("tezos: invalid payload length")
)

const checksumLength = 4

// Prefix is a base58check prefix together with the payload length it
// applies to.
type Prefix struct {
	Name   string
	Bytes  []byte
	Length int
}

var (
	PrefixTz1   = Prefix{"tz1", []byte{6, 161, 159}, 20}
	PrefixTz2   = Prefix{"tz2", []byte{6, 161, 161}, 20}
	PrefixTz3   = Prefix{"tz3", []byte{6, 161, 164}, 20}
	PrefixTz4   = Prefix{"tz4", []byte{6, 161, 166}, 20}
	PrefixKT1   = Prefix{"KT1", []byte{2, 90, 121}, 20}
	PrefixExpr  = Prefix{"expr", []byte{13, 44, 64, 27}, 32}
	PrefixEdpk  = Prefix{"edpk", []byte{13, 15, 37, 217}, 32}
	PrefixSppk  = Prefix{"sppk", []byte{3, 254, 226, 86}, 33}
	PrefixP2pk  = Prefix{"p2pk", []byte{3, 178, 139, 127}, 33}
	PrefixEdsig = Prefix{"edsig", []byte{9, 245, 205, 134, 18}, 64}
	PrefixSig   = Prefix{"sig", []byte{4, 130, 43}, 64}
	PrefixBlock = Prefix{"B", []byte{1, 52}, 32}
	PrefixOp    = Prefix{"o", []byte{5, 116}, 32}
)

// EncodeBase58Check encodes payload under prefix with a double SHA-256
// checksum.
func EncodeBase58Check(prefix Prefix, payload []byte) (string, error) {
	if prefix.Length > 0 && len(payload) != prefix.Length {
		return "", fmt.Errorf(
			"%w: %s needs %d bytes, got %d",
			ErrInvalidLength,
			prefix.Name,
			prefix.Length,
			len(payload),
		)
	}
	data := make([]byte, 0, len(prefix.Bytes)+len(payload)+checksumLength)
	data = append(data, prefix.Bytes...)
	data = append(data, payload...)
	data = append(data, checksum(data)...)
	return base58.Encode(data), nil
}

// DecodeBase58Check decodes s, verifying the checksum and that it carries
// prefix.
func DecodeBase58Check(s string, prefix Prefix) ([]byte, error) {
	data := base58.Decode(s)
	if len(data) < len(prefix.Bytes)+checksumLength {
		return nil, fmt.Errorf("%w: %q too short", ErrInvalidLength, s)
	}
	body := data[:len(data)-checksumLength]
	if !bytes.Equal(checksum(body), data[len(data)-checksumLength:]) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidChecksum, s)
	}
	if !bytes.HasPrefix(body, prefix.Bytes) {
		return nil, fmt.Errorf("%w: %q is not %s", ErrInvalidPrefix, s, prefix.Name)
	}
	payload := bytes.Clone(body[len(prefix.Bytes):])
	if prefix.Length > 0 && len(payload) != prefix.Length {
		return nil, fmt.Errorf(
			"%w: %s needs %d bytes, got %d",
			ErrInvalidLength,
			prefix.Name,
			prefix.Length,
			len(payload),
		)
	}
	return payload, nil
}

func checksum(data []byte) []byte {
	first := sha256.Sum256(data)
	second := sha256.Sum256(first[:])
	return second[:checksumLength]
}
