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

package serializer

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/blinklabs-io/airlock/tezos"
	"github.com/blinklabs-io/gouroboros/cbor"
)

const urlDataParam = "d"

var ErrInvalidTransport = errors.New("serializer: invalid transport data")

// EncodeString returns the base58check form of an envelope buffer.
func EncodeString(buf []byte) string {
	// An empty prefix never fails the length check
	s, _ := tezos.EncodeBase58Check(tezos.Prefix{}, buf)
	return s
}

func DecodeString(s string) ([]byte, error) {
	buf, err := tezos.DecodeBase58Check(s, tezos.Prefix{})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTransport, err)
	}
	return buf, nil
}

// ToURL appends the string form of buf to callback. An empty callback
// uses DefaultCallback.
func ToURL(callback string, buf []byte) string {
	if callback == "" {
		callback = DefaultCallback
	}
	return callback + url.QueryEscape(EncodeString(buf))
}

// FromURL extracts and decodes the d query parameter of rawURL.
func FromURL(rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTransport, err)
	}
	data := u.Query().Get(urlDataParam)
	if data == "" {
		return nil, fmt.Errorf("%w: missing %q parameter", ErrInvalidTransport, urlDataParam)
	}
	return DecodeString(strings.TrimSpace(data))
}

// EncodeCBOR re-encodes an envelope buffer as CBOR arrays of byte strings.
func EncodeCBOR(buf []byte) ([]byte, error) {
	tree, err := Decode(buf)
	if err != nil {
		return nil, err
	}
	return cbor.Encode(tree)
}

// DecodeCBOR converts the CBOR form produced by EncodeCBOR back into an
// envelope buffer.
func DecodeCBOR(b []byte) ([]byte, error) {
	var tree any
	if _, err := cbor.Decode(b, &tree); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTransport, err)
	}
	normalized, err := normalizeCBOR(tree, "$")
	if err != nil {
		return nil, err
	}
	if _, ok := normalized.([]any); !ok {
		return nil, &MalformedEnvelopeError{Path: "$", Expected: "list", Got: describe(normalized)}
	}
	return Encode(normalized)
}

func normalizeCBOR(v any, path string) (any, error) {
	switch x := v.(type) {
	case []byte:
		return x, nil
	case string:
		return []byte(x), nil
	case []any:
		ret := make([]any, len(x))
		for i, item := range x {
			n, err := normalizeCBOR(item, fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return nil, err
			}
			ret[i] = n
		}
		return ret, nil
	default:
		return nil, &MalformedEnvelopeError{Path: path, Expected: "bytes or list", Got: describe(v)}
	}
}
