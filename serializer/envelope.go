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

// Package serializer packs unsigned transactions of every supported
// protocol into one offline envelope, [payload, publicKey, callback], and
// back.
package serializer

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

// Envelope positions.
const (
	UnsignedTransactionIndex = 0
	PublicKeyIndex           = 1
	CallbackIndex            = 2

	envelopeLength = 3
)

// DefaultCallback is used when a transaction carries no callback.
const DefaultCallback = "airgap-wallet://?d="

var (
	ErrMalformedEnvelope      = errors.New("serializer: malformed envelope")
	ErrUnexpectedDiscriminant = errors.New("serializer: unexpected discriminant")
	ErrUnsupportedValue       = errors.New("serializer: unsupported value")
	ErrTransactionType        = errors.New("serializer: wrong transaction type")
	ErrUnknownProtocol        = errors.New("serializer: unknown protocol")
)

// MalformedEnvelopeError reports a structural mismatch at Path.
type MalformedEnvelopeError struct {
	Path     string
	Expected string
	Got      string
}

func (e *MalformedEnvelopeError) Error() string {
	return fmt.Sprintf(
		"serializer: malformed envelope at %s: expected %s, got %s",
		e.Path,
		e.Expected,
		e.Got,
	)
}

func (e *MalformedEnvelopeError) Is(target error) bool {
	return target == ErrMalformedEnvelope
}

// UnexpectedDiscriminantError reports an unknown variant tag.
type UnexpectedDiscriminantError struct {
	Path  string
	Value string
}

func (e *UnexpectedDiscriminantError) Error() string {
	return fmt.Sprintf(
		"serializer: unexpected discriminant %q at %s",
		e.Value,
		e.Path,
	)
}

func (e *UnexpectedDiscriminantError) Is(target error) bool {
	return target == ErrUnexpectedDiscriminant
}

// UnsignedTransaction is the envelope content. Transaction holds the
// protocol's raw transaction type.
type UnsignedTransaction struct {
	Transaction any
	PublicKey   string
	Callback    string
}

func pack(payload []any, tx *UnsignedTransaction) ([]byte, error) {
	callback := tx.Callback
	if callback == "" {
		callback = DefaultCallback
	}
	return Encode([]any{payload, tx.PublicKey, callback})
}

// unpack opens an envelope and returns its payload list.
func unpack(buf []byte) ([]any, *UnsignedTransaction, error) {
	env, err := Decode(buf)
	if err != nil {
		return nil, nil, err
	}
	if len(env) != envelopeLength {
		return nil, nil, &MalformedEnvelopeError{
			Path:     "$",
			Expected: fmt.Sprintf("list of %d", envelopeLength),
			Got:      describe(env),
		}
	}
	payload, err := asList(env[UnsignedTransactionIndex], "$[0]", -1)
	if err != nil {
		return nil, nil, err
	}
	publicKey, err := asString(env[PublicKeyIndex], "$[1]")
	if err != nil {
		return nil, nil, err
	}
	callback, err := asString(env[CallbackIndex], "$[2]")
	if err != nil {
		return nil, nil, err
	}
	return payload, &UnsignedTransaction{PublicKey: publicKey, Callback: callback}, nil
}

func describe(v any) string {
	switch x := v.(type) {
	case []any:
		return fmt.Sprintf("list of %d", len(x))
	case []byte:
		return fmt.Sprintf("%d bytes", len(x))
	default:
		return fmt.Sprintf("%T", v)
	}
}

// asList checks that v is a list of exactly n items, or any length when n
// is negative.
func asList(v any, path string, n int) ([]any, error) {
	list, ok := v.([]any)
	if !ok || (n >= 0 && len(list) != n) {
		expected := "list"
		if n >= 0 {
			expected = fmt.Sprintf("list of %d", n)
		}
		return nil, &MalformedEnvelopeError{Path: path, Expected: expected, Got: describe(v)}
	}
	return list, nil
}

func asBytes(v any, path string) ([]byte, error) {
	b, ok := v.([]byte)
	if !ok {
		return nil, &MalformedEnvelopeError{Path: path, Expected: "bytes", Got: describe(v)}
	}
	return b, nil
}

func asString(v any, path string) (string, error) {
	b, err := asBytes(v, path)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func asDecimal(v any, path string) (decimal.Decimal, error) {
	s, err := asString(v, path)
	if err != nil {
		return decimal.Decimal{}, err
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, &MalformedEnvelopeError{
			Path:     path,
			Expected: "decimal number",
			Got:      strconv.Quote(s),
		}
	}
	return d, nil
}

func asUint64(v any, path string) (uint64, error) {
	s, err := asString(v, path)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, &MalformedEnvelopeError{
			Path:     path,
			Expected: "unsigned integer",
			Got:      strconv.Quote(s),
		}
	}
	return n, nil
}
