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

// Package micheline implements the generic Micheline node tree used by
// Tezos for code and data, in both its JSON and binary forms.
package micheline

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"slices"
)

var (
	ErrInvalidNode      = errors.New("micheline: invalid node")
	ErrUnknownPrim      = errors.New("micheline: unknown primitive")
	ErrUnexpectedTag    = errors.New("micheline: unexpected tag")
	ErrTruncated        = errors.New("micheline: truncated input")
	ErrMissingWatermark = errors.New("micheline: missing pack watermark")
)

// Node is one of Int, String, Bytes, *Prim or Sequence.
type Node interface {
	isNode()
}

type Int struct {
	Value *big.Int
}

type String struct {
	Value string
}

type Bytes struct {
	Value []byte
}

// Prim is a primitive application such as {"prim":"Pair","args":[...]}.
type Prim struct {
	Prim   string
	Args   []Node
	Annots []string
}

type Sequence []Node

func (Int) isNode()      {}
func (String) isNode()   {}
func (Bytes) isNode()    {}
func (*Prim) isNode()    {}
func (Sequence) isNode() {}

func NewInt(v int64) Int {
	return Int{Value: big.NewInt(v)}
}

// NewPrim builds a primitive application without annotations.
func NewPrim(prim string, args ...Node) *Prim {
	return &Prim{Prim: prim, Args: args}
}

// WithAnnots returns a copy of p carrying annots.
func (p *Prim) WithAnnots(annots ...string) *Prim {
	ret := *p
	ret.Annots = annots
	return &ret
}

// FieldAnnot returns the first field (%), type (:) or variable (@)
// annotation of p, in that order of preference, with its prefix removed.
func (p *Prim) FieldAnnot() string {
	for _, prefix := range []byte{'%', ':', '@'} {
		for _, a := range p.Annots {
			if len(a) > 1 && a[0] == prefix {
				return a[1:]
			}
		}
	}
	return ""
}

// Equal reports whether a and b are structurally identical.
func Equal(a, b Node) bool {
	switch x := a.(type) {
	case Int:
		y, ok := b.(Int)
		return ok && x.Value != nil && y.Value != nil && x.Value.Cmp(y.Value) == 0
	case String:
		y, ok := b.(String)
		return ok && x.Value == y.Value
	case Bytes:
		y, ok := b.(Bytes)
		return ok && bytes.Equal(x.Value, y.Value)
	case *Prim:
		y, ok := b.(*Prim)
		if !ok || x.Prim != y.Prim || len(x.Args) != len(y.Args) ||
			!slices.Equal(x.Annots, y.Annots) {
			return false
		}
		for i := range x.Args {
			if !Equal(x.Args[i], y.Args[i]) {
				return false
			}
		}
		return true
	case Sequence:
		y, ok := b.(Sequence)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

type jsonNode struct {
	Int    *string           `json:"int,omitempty"`
	String *string           `json:"string,omitempty"`
	Bytes  *string           `json:"bytes,omitempty"`
	Prim   *string           `json:"prim,omitempty"`
	Args   []json.RawMessage `json:"args,omitempty"`
	Annots []string          `json:"annots,omitempty"`
}

func (n Int) MarshalJSON() ([]byte, error) {
	if n.Value == nil {
		return nil, fmt.Errorf("%w: nil int", ErrInvalidNode)
	}
	return json.Marshal(map[string]string{"int": n.Value.String()})
}

func (n String) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{"string": n.Value})
}

func (n Bytes) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{"bytes": hex.EncodeToString(n.Value)})
}

func (p *Prim) MarshalJSON() ([]byte, error) {
	type primJSON struct {
		Prim   string   `json:"prim"`
		Args   []Node   `json:"args,omitempty"`
		Annots []string `json:"annots,omitempty"`
	}
	return json.Marshal(primJSON{Prim: p.Prim, Args: p.Args, Annots: p.Annots})
}

func (s Sequence) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Node(s))
}

// Marshal returns the JSON form of n.
func Marshal(n Node) ([]byte, error) {
	if n == nil {
		return nil, fmt.Errorf("%w: nil", ErrInvalidNode)
	}
	return json.Marshal(n)
}

// Unmarshal parses the JSON form of a node.
func Unmarshal(data []byte) (Node, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrInvalidNode)
	}
	if data[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidNode, err)
		}
		seq := make(Sequence, 0, len(items))
		for i, item := range items {
			n, err := Unmarshal(item)
			if err != nil {
				return nil, fmt.Errorf("sequence item %d: %w", i, err)
			}
			seq = append(seq, n)
		}
		return seq, nil
	}
	var raw jsonNode
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidNode, err)
	}
	switch {
	case raw.Int != nil:
		v, ok := new(big.Int).SetString(*raw.Int, 10)
		if !ok {
			return nil, fmt.Errorf("%w: bad int %q", ErrInvalidNode, *raw.Int)
		}
		return Int{Value: v}, nil
	case raw.String != nil:
		return String{Value: *raw.String}, nil
	case raw.Bytes != nil:
		b, err := hex.DecodeString(*raw.Bytes)
		if err != nil {
			return nil, fmt.Errorf("%w: bad bytes %q: %w", ErrInvalidNode, *raw.Bytes, err)
		}
		return Bytes{Value: b}, nil
	case raw.Prim != nil:
		p := &Prim{Prim: *raw.Prim, Annots: raw.Annots}
		for i, arg := range raw.Args {
			n, err := Unmarshal(arg)
			if err != nil {
				return nil, fmt.Errorf("%s arg %d: %w", p.Prim, i, err)
			}
			p.Args = append(p.Args, n)
		}
		return p, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidNode, string(data))
	}
}
