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
	"fmt"
	"math/big"
	"reflect"
	"strconv"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/shopspring/decimal"
)

// ToBuffer coerces a tree of values into nested []any of []byte. Strings
// become their UTF-8 bytes, integers and decimals their decimal ASCII form
// and booleans "1" or "0". Slices are coerced element-wise.
func ToBuffer(v any) (any, error) {
	switch x := v.(type) {
	case []byte:
		return x, nil
	case string:
		return []byte(x), nil
	case bool:
		if x {
			return []byte("1"), nil
		}
		return []byte("0"), nil
	case int:
		return []byte(strconv.FormatInt(int64(x), 10)), nil
	case int8:
		return []byte(strconv.FormatInt(int64(x), 10)), nil
	case int16:
		return []byte(strconv.FormatInt(int64(x), 10)), nil
	case int32:
		return []byte(strconv.FormatInt(int64(x), 10)), nil
	case int64:
		return []byte(strconv.FormatInt(x, 10)), nil
	case uint:
		return []byte(strconv.FormatUint(uint64(x), 10)), nil
	case uint8:
		return []byte(strconv.FormatUint(uint64(x), 10)), nil
	case uint16:
		return []byte(strconv.FormatUint(uint64(x), 10)), nil
	case uint32:
		return []byte(strconv.FormatUint(uint64(x), 10)), nil
	case uint64:
		return []byte(strconv.FormatUint(x, 10)), nil
	case *big.Int:
		if x == nil {
			return nil, fmt.Errorf("%w: nil *big.Int", ErrUnsupportedValue)
		}
		return []byte(x.String()), nil
	case decimal.Decimal:
		return []byte(x.String()), nil
	case []any:
		return toBufferSlice(reflect.ValueOf(x))
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		return toBufferSlice(rv)
	}
	return nil, fmt.Errorf("%w: %T", ErrUnsupportedValue, v)
}

func toBufferSlice(rv reflect.Value) (any, error) {
	ret := make([]any, rv.Len())
	for i := range ret {
		item, err := ToBuffer(rv.Index(i).Interface())
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		ret[i] = item
	}
	return ret, nil
}

// Encode returns the RLP encoding of the coerced tree.
func Encode(tree any) ([]byte, error) {
	coerced, err := ToBuffer(tree)
	if err != nil {
		return nil, err
	}
	return rlp.EncodeToBytes(coerced)
}

// Decode parses an RLP buffer whose top level is a list. Lists decode as
// []any and strings as []byte.
func Decode(b []byte) ([]any, error) {
	var v any
	if err := rlp.DecodeBytes(b, &v); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedEnvelope, err)
	}
	list, ok := v.([]any)
	if !ok {
		return nil, &MalformedEnvelopeError{Path: "$", Expected: "list", Got: describe(v)}
	}
	return list, nil
}
