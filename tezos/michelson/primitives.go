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
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"strings"
	"time"

	"github.com/blinklabs-io/airlock/tezos/micheline"
)

type Int struct {
	Annotated
	Value *big.Int
}

type Nat struct {
	Annotated
	Value *big.Int
}

type Mutez struct {
	Annotated
	Value *big.Int
}

type String struct {
	Annotated
	Value string
}

type Bytes struct {
	Annotated
	Value []byte
}

type Bool struct {
	Annotated
	Value bool
}

type Unit struct {
	Annotated
}

// Timestamp is seconds since the Unix epoch.
type Timestamp struct {
	Annotated
	Value *big.Int
}

func (*Int) TypeName() string       { return "int" }
func (*Nat) TypeName() string       { return "nat" }
func (*Mutez) TypeName() string     { return "mutez" }
func (*String) TypeName() string    { return "string" }
func (*Bytes) TypeName() string     { return "bytes" }
func (*Bool) TypeName() string      { return "bool" }
func (*Unit) TypeName() string      { return "unit" }
func (*Timestamp) TypeName() string { return "timestamp" }

const integerSources = "integer, *big.Int, decimal string or micheline int"

// bigIntFrom converts the plain integer sources shared by int-like types.
func bigIntFrom(v any) (*big.Int, bool) {
	switch x := v.(type) {
	case micheline.Int:
		if x.Value == nil {
			return nil, false
		}
		return new(big.Int).Set(x.Value), true
	case *big.Int:
		if x == nil {
			return nil, false
		}
		return new(big.Int).Set(x), true
	case int:
		return big.NewInt(int64(x)), true
	case int64:
		return big.NewInt(x), true
	case int32:
		return big.NewInt(int64(x)), true
	case uint64:
		return new(big.Int).SetUint64(x), true
	case uint32:
		return new(big.Int).SetUint64(uint64(x)), true
	case string:
		return new(big.Int).SetString(x, 10)
	case json.Number:
		return new(big.Int).SetString(string(x), 10)
	case float64:
		if x != math.Trunc(x) || math.IsInf(x, 0) {
			return nil, false
		}
		i, _ := big.NewFloat(x).Int(nil)
		return i, true
	default:
		return nil, false
	}
}

func NewInt(v int64, name string) *Int {
	return &Int{Annotated: Annotated{name}, Value: big.NewInt(v)}
}

func IntFrom(v any, name string) (*Int, error) {
	if x, ok := v.(*Int); ok {
		return x, nil
	}
	i, ok := bigIntFrom(v)
	if !ok {
		return nil, mismatch("int", integerSources, v)
	}
	return &Int{Annotated: Annotated{name}, Value: i}, nil
}

func natural(typ string, v any) (*big.Int, error) {
	i, ok := bigIntFrom(v)
	if !ok {
		return nil, mismatch(typ, integerSources, v)
	}
	if i.Sign() < 0 {
		return nil, fmt.Errorf("%w: %s must not be negative, got %s", ErrInvalidValue, typ, i)
	}
	return i, nil
}

func NatFrom(v any, name string) (*Nat, error) {
	if x, ok := v.(*Nat); ok {
		return x, nil
	}
	i, err := natural("nat", v)
	if err != nil {
		return nil, err
	}
	return &Nat{Annotated: Annotated{name}, Value: i}, nil
}

func MutezFrom(v any, name string) (*Mutez, error) {
	if x, ok := v.(*Mutez); ok {
		return x, nil
	}
	i, err := natural("mutez", v)
	if err != nil {
		return nil, err
	}
	if i.BitLen() > 63 {
		return nil, fmt.Errorf("%w: mutez %s overflows int64", ErrInvalidValue, i)
	}
	return &Mutez{Annotated: Annotated{name}, Value: i}, nil
}

func StringFrom(v any, name string) (*String, error) {
	switch x := v.(type) {
	case *String:
		return x, nil
	case micheline.String:
		return &String{Annotated: Annotated{name}, Value: x.Value}, nil
	case string:
		return &String{Annotated: Annotated{name}, Value: x}, nil
	default:
		return nil, mismatch("string", "string or micheline string", v)
	}
}

// BytesFrom accepts raw bytes, a hex string with optional 0x prefix or a
// micheline bytes node.
func BytesFrom(v any, name string) (*Bytes, error) {
	switch x := v.(type) {
	case *Bytes:
		return x, nil
	case micheline.Bytes:
		return &Bytes{Annotated: Annotated{name}, Value: bytes.Clone(x.Value)}, nil
	case []byte:
		return &Bytes{Annotated: Annotated{name}, Value: bytes.Clone(x)}, nil
	case string:
		b, err := hex.DecodeString(strings.TrimPrefix(x, "0x"))
		if err != nil {
			return nil, fmt.Errorf("%w: bytes %q: %w", ErrInvalidValue, x, err)
		}
		return &Bytes{Annotated: Annotated{name}, Value: b}, nil
	default:
		return nil, mismatch("bytes", "string or []byte", v)
	}
}

func BoolFrom(v any, name string) (*Bool, error) {
	switch x := v.(type) {
	case *Bool:
		return x, nil
	case bool:
		return &Bool{Annotated: Annotated{name}, Value: x}, nil
	case *micheline.Prim:
		switch {
		case x.Prim == "True" && len(x.Args) == 0:
			return &Bool{Annotated: Annotated{name}, Value: true}, nil
		case x.Prim == "False" && len(x.Args) == 0:
			return &Bool{Annotated: Annotated{name}, Value: false}, nil
		}
	}
	return nil, mismatch("bool", "bool or True/False", v)
}

func UnitFrom(v any, name string) (*Unit, error) {
	switch x := v.(type) {
	case *Unit:
		return x, nil
	case nil:
		return &Unit{Annotated: Annotated{name}}, nil
	case *micheline.Prim:
		if x.Prim == "Unit" && len(x.Args) == 0 {
			return &Unit{Annotated: Annotated{name}}, nil
		}
	}
	return nil, mismatch("unit", "nil or Unit", v)
}

// TimestampFrom accepts seconds since the epoch, a time.Time or an RFC 3339
// string.
func TimestampFrom(v any, name string) (*Timestamp, error) {
	switch x := v.(type) {
	case *Timestamp:
		return x, nil
	case time.Time:
		return &Timestamp{Annotated: Annotated{name}, Value: big.NewInt(x.Unix())}, nil
	case micheline.String:
		return timestampFromString(x.Value, name)
	case string:
		if i, ok := new(big.Int).SetString(x, 10); ok {
			return &Timestamp{Annotated: Annotated{name}, Value: i}, nil
		}
		return timestampFromString(x, name)
	}
	if i, ok := bigIntFrom(v); ok {
		return &Timestamp{Annotated: Annotated{name}, Value: i}, nil
	}
	return nil, mismatch("timestamp", "time.Time, RFC 3339 string or "+integerSources, v)
}

func timestampFromString(s, name string) (*Timestamp, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, fmt.Errorf("%w: timestamp %q: %w", ErrInvalidValue, s, err)
	}
	return &Timestamp{Annotated: Annotated{name}, Value: big.NewInt(t.Unix())}, nil
}

func (i *Int) ToMicheline() micheline.Node       { return micheline.Int{Value: i.Value} }
func (n *Nat) ToMicheline() micheline.Node       { return micheline.Int{Value: n.Value} }
func (m *Mutez) ToMicheline() micheline.Node     { return micheline.Int{Value: m.Value} }
func (s *String) ToMicheline() micheline.Node    { return micheline.String{Value: s.Value} }
func (b *Bytes) ToMicheline() micheline.Node     { return micheline.Bytes{Value: b.Value} }
func (t *Timestamp) ToMicheline() micheline.Node { return micheline.Int{Value: t.Value} }

func (b *Bool) ToMicheline() micheline.Node {
	if b.Value {
		return micheline.NewPrim("True")
	}
	return micheline.NewPrim("False")
}

func (*Unit) ToMicheline() micheline.Node {
	return micheline.NewPrim("Unit")
}

func (i *Int) AsRawValue() any    { return named(i.Annot, i.Value) }
func (n *Nat) AsRawValue() any    { return named(n.Annot, n.Value) }
func (m *Mutez) AsRawValue() any  { return named(m.Annot, m.Value) }
func (s *String) AsRawValue() any { return named(s.Annot, s.Value) }
func (b *Bool) AsRawValue() any   { return named(b.Annot, b.Value) }
func (u *Unit) AsRawValue() any   { return named(u.Annot, "Unit") }

// AsRawValue renders the bytes as lower-case hex.
func (b *Bytes) AsRawValue() any {
	return named(b.Annot, hex.EncodeToString(b.Value))
}

// AsRawValue renders the timestamp in RFC 3339 form when it fits an int64.
func (t *Timestamp) AsRawValue() any {
	if !t.Value.IsInt64() {
		return named(t.Annot, t.Value.String())
	}
	return named(t.Annot, time.Unix(t.Value.Int64(), 0).UTC().Format(time.RFC3339))
}
