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
	"maps"
	"math/big"

	"github.com/blinklabs-io/airlock/tezos/micheline"
)

type Pair struct {
	Annotated
	First  Type
	Second Type
}

// Option holds Some(Value), or None when Value is nil.
type Option struct {
	Annotated
	Value Type
}

type Or struct {
	Annotated
	Left  bool
	Value Type
}

type List struct {
	Annotated
	Elements []Type
}

type Set struct {
	Annotated
	Elements []Type
}

type MapEntry struct {
	Key   Type
	Value Type
}

type Map struct {
	Annotated
	Entries []MapEntry
}

// BigMap is either a literal list of entries or a reference to an existing
// big map by ID.
type BigMap struct {
	Annotated
	ID      *big.Int
	Entries []MapEntry
}

// Lambda keeps its code as untyped Micheline.
type Lambda struct {
	Annotated
	Code micheline.Node
}

func (*Pair) TypeName() string   { return "pair" }
func (*Option) TypeName() string { return "option" }
func (*Or) TypeName() string     { return "or" }
func (*List) TypeName() string   { return "list" }
func (*Set) TypeName() string    { return "set" }
func (*Map) TypeName() string    { return "map" }
func (*BigMap) TypeName() string { return "big_map" }
func (*Lambda) TypeName() string { return "lambda" }

// typesFrom accepts []Type or an []any holding only Type values.
func typesFrom(v any) ([]Type, bool) {
	switch x := v.(type) {
	case []Type:
		return x, true
	case []any:
		ret := make([]Type, len(x))
		for i, item := range x {
			t, ok := item.(Type)
			if !ok {
				return nil, false
			}
			ret[i] = t
		}
		return ret, true
	default:
		return nil, false
	}
}

// NewPair builds a right comb from two or more items.
func NewPair(name string, first, second Type, rest ...Type) *Pair {
	if len(rest) > 0 {
		second = NewPair("", second, rest[0], rest[1:]...)
	}
	return &Pair{Annotated: Annotated{name}, First: first, Second: second}
}

// PairFrom accepts two or more typed items, nesting to the right.
func PairFrom(v any, name string) (*Pair, error) {
	if x, ok := v.(*Pair); ok {
		return x, nil
	}
	items, ok := typesFrom(v)
	if !ok || len(items) < 2 {
		return nil, mismatch("pair", "two or more michelson values", v)
	}
	return NewPair(name, items[0], items[1], items[2:]...), nil
}

// OptionFrom maps nil to None and a typed value to Some.
func OptionFrom(v any, name string) (*Option, error) {
	switch x := v.(type) {
	case *Option:
		return x, nil
	case nil:
		return &Option{Annotated: Annotated{name}}, nil
	case Type:
		return &Option{Annotated: Annotated{name}, Value: x}, nil
	default:
		return nil, mismatch("option", "nil or michelson value", v)
	}
}

// OrFrom accepts a single-key map of "Left" or "Right" to a typed value.
func OrFrom(v any, name string) (*Or, error) {
	switch x := v.(type) {
	case *Or:
		return x, nil
	case map[string]any:
		if len(x) == 1 {
			if t, ok := x["Left"].(Type); ok {
				return &Or{Annotated: Annotated{name}, Left: true, Value: t}, nil
			}
			if t, ok := x["Right"].(Type); ok {
				return &Or{Annotated: Annotated{name}, Value: t}, nil
			}
		}
	}
	return nil, mismatch("or", `{"Left": value} or {"Right": value}`, v)
}

func ListFrom(v any, name string) (*List, error) {
	if x, ok := v.(*List); ok {
		return x, nil
	}
	items, ok := typesFrom(v)
	if !ok {
		return nil, mismatch("list", "[]Type", v)
	}
	return &List{Annotated: Annotated{name}, Elements: items}, nil
}

func SetFrom(v any, name string) (*Set, error) {
	if x, ok := v.(*Set); ok {
		return x, nil
	}
	items, ok := typesFrom(v)
	if !ok {
		return nil, mismatch("set", "[]Type", v)
	}
	return &Set{Annotated: Annotated{name}, Elements: items}, nil
}

func MapFrom(v any, name string) (*Map, error) {
	switch x := v.(type) {
	case *Map:
		return x, nil
	case []MapEntry:
		return &Map{Annotated: Annotated{name}, Entries: x}, nil
	default:
		return nil, mismatch("map", "[]MapEntry", v)
	}
}

// BigMapFrom accepts entries or an integer big map ID.
func BigMapFrom(v any, name string) (*BigMap, error) {
	switch x := v.(type) {
	case *BigMap:
		return x, nil
	case []MapEntry:
		return &BigMap{Annotated: Annotated{name}, Entries: x}, nil
	}
	if id, ok := bigIntFrom(v); ok {
		return &BigMap{Annotated: Annotated{name}, ID: id}, nil
	}
	return nil, mismatch("big_map", "[]MapEntry or big map ID", v)
}

func LambdaFrom(v any, name string) (*Lambda, error) {
	switch x := v.(type) {
	case *Lambda:
		return x, nil
	case micheline.Sequence:
		return &Lambda{Annotated: Annotated{name}, Code: x}, nil
	default:
		return nil, mismatch("lambda", "micheline sequence", v)
	}
}

func (p *Pair) ToMicheline() micheline.Node {
	return micheline.NewPrim("Pair", p.First.ToMicheline(), p.Second.ToMicheline())
}

func (o *Option) ToMicheline() micheline.Node {
	if o.Value == nil {
		return micheline.NewPrim("None")
	}
	return micheline.NewPrim("Some", o.Value.ToMicheline())
}

func (o *Or) ToMicheline() micheline.Node {
	if o.Left {
		return micheline.NewPrim("Left", o.Value.ToMicheline())
	}
	return micheline.NewPrim("Right", o.Value.ToMicheline())
}

func sequence(items []Type) micheline.Node {
	seq := make(micheline.Sequence, len(items))
	for i, item := range items {
		seq[i] = item.ToMicheline()
	}
	return seq
}

func (l *List) ToMicheline() micheline.Node { return sequence(l.Elements) }
func (s *Set) ToMicheline() micheline.Node  { return sequence(s.Elements) }

func entries(items []MapEntry) micheline.Node {
	seq := make(micheline.Sequence, len(items))
	for i, item := range items {
		seq[i] = micheline.NewPrim("Elt", item.Key.ToMicheline(), item.Value.ToMicheline())
	}
	return seq
}

func (m *Map) ToMicheline() micheline.Node { return entries(m.Entries) }

func (b *BigMap) ToMicheline() micheline.Node {
	if b.ID != nil {
		return micheline.Int{Value: b.ID}
	}
	return entries(b.Entries)
}

func (l *Lambda) ToMicheline() micheline.Node { return l.Code }

// AsRawValue merges the fields of both sides into one map when both are
// named, otherwise it returns the two raw values as a slice.
func (p *Pair) AsRawValue() any {
	first := p.First.AsRawValue()
	second := p.Second.AsRawValue()
	fm, fok := first.(map[string]any)
	sm, sok := second.(map[string]any)
	if fok && sok {
		merged := make(map[string]any, len(fm)+len(sm))
		maps.Copy(merged, fm)
		maps.Copy(merged, sm)
		return named(p.Annot, merged)
	}
	return named(p.Annot, []any{first, second})
}

func (o *Option) AsRawValue() any {
	if o.Value == nil {
		return named(o.Annot, nil)
	}
	return named(o.Annot, o.Value.AsRawValue())
}

func (o *Or) AsRawValue() any {
	side := "Right"
	if o.Left {
		side = "Left"
	}
	return named(o.Annot, map[string]any{side: o.Value.AsRawValue()})
}

func rawSlice(items []Type) []any {
	ret := make([]any, len(items))
	for i, item := range items {
		ret[i] = item.AsRawValue()
	}
	return ret
}

func (l *List) AsRawValue() any { return named(l.Annot, rawSlice(l.Elements)) }
func (s *Set) AsRawValue() any  { return named(s.Annot, rawSlice(s.Elements)) }

func rawEntries(items []MapEntry) []any {
	ret := make([]any, len(items))
	for i, item := range items {
		ret[i] = map[string]any{
			"key":   item.Key.AsRawValue(),
			"value": item.Value.AsRawValue(),
		}
	}
	return ret
}

func (m *Map) AsRawValue() any { return named(m.Annot, rawEntries(m.Entries)) }

func (b *BigMap) AsRawValue() any {
	if b.ID != nil {
		return named(b.Annot, b.ID)
	}
	return named(b.Annot, rawEntries(b.Entries))
}

func (l *Lambda) AsRawValue() any { return named(l.Annot, l.Code) }
