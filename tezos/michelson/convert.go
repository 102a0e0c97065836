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
	"maps"
	"slices"

	"github.com/blinklabs-io/airlock/tezos/micheline"
)

// scalar adapts an XFrom constructor so a failure yields a nil Type.
func scalar[T Type](fn func(any, string) (T, error)) func(any, string) (Type, error) {
	return func(v any, name string) (Type, error) {
		t, err := fn(v, name)
		if err != nil {
			return nil, err
		}
		return t, nil
	}
}

// Constructors for types whose values carry no nested types.
var scalars = map[string]func(any, string) (Type, error){
	"int":       scalar(IntFrom),
	"nat":       scalar(NatFrom),
	"mutez":     scalar(MutezFrom),
	"string":    scalar(StringFrom),
	"bytes":     scalar(BytesFrom),
	"bool":      scalar(BoolFrom),
	"unit":      scalar(UnitFrom),
	"timestamp": scalar(TimestampFrom),
	"address":   scalar(AddressFrom),
	"key_hash":  scalar(KeyHashFrom),
	"contract":  scalar(ContractFrom),
}

// typePrim returns typ as a type expression with at least n arguments.
func typePrim(typ micheline.Node, n int) (*micheline.Prim, error) {
	p, ok := typ.(*micheline.Prim)
	if !ok {
		return nil, fmt.Errorf("%w: type expression is %T", ErrUnsupportedType, typ)
	}
	if len(p.Args) < n {
		return nil, fmt.Errorf(
			"%w: %s takes %d type arguments, got %d",
			ErrUnsupportedType,
			p.Prim,
			n,
			len(p.Args),
		)
	}
	return p, nil
}

// combType rewrites pair a b c ... as pair a (pair b c ...).
func combType(p *micheline.Prim) (micheline.Node, micheline.Node) {
	if len(p.Args) == 2 {
		return p.Args[0], p.Args[1]
	}
	return p.Args[0], micheline.NewPrim("pair", p.Args[1:]...)
}

func pairItems(value micheline.Node) ([]micheline.Node, bool) {
	switch x := value.(type) {
	case *micheline.Prim:
		if x.Prim == "Pair" && len(x.Args) >= 2 {
			return x.Args, true
		}
	case micheline.Sequence:
		if len(x) >= 2 {
			return x, true
		}
	}
	return nil, false
}

// FromMicheline types value according to the type expression typ. Field
// and type annotations on typ become the names of the resulting values.
func FromMicheline(value, typ micheline.Node) (Type, error) {
	tp, err := typePrim(typ, 0)
	if err != nil {
		return nil, err
	}
	name := tp.FieldAnnot()
	if fn, ok := scalars[tp.Prim]; ok {
		return fn(value, name)
	}
	switch tp.Prim {
	case "lambda":
		return scalar(LambdaFrom)(value, name)
	case "pair":
		return pairFromMicheline(value, tp, name)
	case "option":
		return optionFromMicheline(value, tp, name)
	case "or":
		return orFromMicheline(value, tp, name)
	case "list", "set":
		return collectionFromMicheline(value, tp, name)
	case "map", "big_map":
		return mapFromMicheline(value, tp, name)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, tp.Prim)
	}
}

func pairFromMicheline(value micheline.Node, tp *micheline.Prim, name string) (Type, error) {
	if len(tp.Args) < 2 {
		return nil, fmt.Errorf("%w: pair takes at least 2 type arguments", ErrUnsupportedType)
	}
	items, ok := pairItems(value)
	if !ok {
		return nil, mismatch("pair", "Pair or sequence of two or more values", value)
	}
	firstType, secondType := combType(tp)
	secondValue := items[1]
	if len(items) > 2 {
		secondValue = micheline.NewPrim("Pair", items[1:]...)
	}
	first, err := FromMicheline(items[0], firstType)
	if err != nil {
		return nil, err
	}
	second, err := FromMicheline(secondValue, secondType)
	if err != nil {
		return nil, err
	}
	return &Pair{Annotated: Annotated{name}, First: first, Second: second}, nil
}

func optionFromMicheline(value micheline.Node, tp *micheline.Prim, name string) (Type, error) {
	if _, err := typePrim(tp, 1); err != nil {
		return nil, err
	}
	p, ok := value.(*micheline.Prim)
	switch {
	case ok && p.Prim == "None" && len(p.Args) == 0:
		return &Option{Annotated: Annotated{name}}, nil
	case ok && p.Prim == "Some" && len(p.Args) == 1:
		inner, err := FromMicheline(p.Args[0], tp.Args[0])
		if err != nil {
			return nil, err
		}
		return &Option{Annotated: Annotated{name}, Value: inner}, nil
	default:
		return nil, mismatch("option", "None or Some", value)
	}
}

func orFromMicheline(value micheline.Node, tp *micheline.Prim, name string) (Type, error) {
	if _, err := typePrim(tp, 2); err != nil {
		return nil, err
	}
	p, ok := value.(*micheline.Prim)
	if !ok || len(p.Args) != 1 || (p.Prim != "Left" && p.Prim != "Right") {
		return nil, mismatch("or", "Left or Right", value)
	}
	left := p.Prim == "Left"
	branch := tp.Args[1]
	if left {
		branch = tp.Args[0]
	}
	inner, err := FromMicheline(p.Args[0], branch)
	if err != nil {
		return nil, err
	}
	return &Or{Annotated: Annotated{name}, Left: left, Value: inner}, nil
}

func collectionFromMicheline(value micheline.Node, tp *micheline.Prim, name string) (Type, error) {
	if _, err := typePrim(tp, 1); err != nil {
		return nil, err
	}
	seq, ok := value.(micheline.Sequence)
	if !ok {
		return nil, mismatch(tp.Prim, "sequence", value)
	}
	items := make([]Type, len(seq))
	for i, n := range seq {
		item, err := FromMicheline(n, tp.Args[0])
		if err != nil {
			return nil, fmt.Errorf("%s element %d: %w", tp.Prim, i, err)
		}
		items[i] = item
	}
	if tp.Prim == "set" {
		return &Set{Annotated: Annotated{name}, Elements: items}, nil
	}
	return &List{Annotated: Annotated{name}, Elements: items}, nil
}

func mapFromMicheline(value micheline.Node, tp *micheline.Prim, name string) (Type, error) {
	if _, err := typePrim(tp, 2); err != nil {
		return nil, err
	}
	if id, ok := value.(micheline.Int); ok && tp.Prim == "big_map" {
		return scalar(BigMapFrom)(id, name)
	}
	seq, ok := value.(micheline.Sequence)
	if !ok {
		return nil, mismatch(tp.Prim, "sequence of Elt", value)
	}
	elts := make([]MapEntry, len(seq))
	for i, n := range seq {
		elt, ok := n.(*micheline.Prim)
		if !ok || elt.Prim != "Elt" || len(elt.Args) != 2 {
			return nil, mismatch(tp.Prim, "Elt", n)
		}
		key, err := FromMicheline(elt.Args[0], tp.Args[0])
		if err != nil {
			return nil, fmt.Errorf("%s key %d: %w", tp.Prim, i, err)
		}
		val, err := FromMicheline(elt.Args[1], tp.Args[1])
		if err != nil {
			return nil, fmt.Errorf("%s value %d: %w", tp.Prim, i, err)
		}
		elts[i] = MapEntry{Key: key, Value: val}
	}
	if tp.Prim == "big_map" {
		return &BigMap{Annotated: Annotated{name}, Entries: elts}, nil
	}
	return &Map{Annotated: Annotated{name}, Entries: elts}, nil
}

// FromValue types a plain Go value according to typ. Scalars accept the
// sources of their XFrom constructor. Pairs take a slice of items or a map
// keyed by field annotation, options take nil or the inner value, ors take
// {"Left": v} or {"Right": v}, lists and sets take slices, and maps take a
// map[string]any or a slice of {"key": k, "value": v}. Micheline nodes are
// handed to FromMicheline. A value that is already typed as the requested
// variant is returned unchanged.
func FromValue(value any, typ micheline.Node) (Type, error) {
	tp, err := typePrim(typ, 0)
	if err != nil {
		return nil, err
	}
	if t, ok := value.(Type); ok {
		if t.TypeName() != tp.Prim {
			return nil, mismatch(tp.Prim, "michelson "+tp.Prim, t)
		}
		return t, nil
	}
	if n, ok := value.(micheline.Node); ok {
		return FromMicheline(n, typ)
	}
	name := tp.FieldAnnot()
	switch tp.Prim {
	case "pair":
		return pairFromValue(value, tp, name)
	case "option":
		if _, err := typePrim(tp, 1); err != nil {
			return nil, err
		}
		if value == nil {
			return &Option{Annotated: Annotated{name}}, nil
		}
		inner, err := FromValue(value, tp.Args[0])
		if err != nil {
			return nil, err
		}
		return &Option{Annotated: Annotated{name}, Value: inner}, nil
	case "or":
		return orFromValue(value, tp, name)
	case "list", "set":
		return collectionFromValue(value, tp, name)
	case "map", "big_map":
		return mapFromValue(value, tp, name)
	case "lambda":
		return scalar(LambdaFrom)(value, name)
	}
	if fn, ok := scalars[tp.Prim]; ok {
		return fn(value, name)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, tp.Prim)
}

func pairFromValue(value any, tp *micheline.Prim, name string) (Type, error) {
	if len(tp.Args) < 2 {
		return nil, fmt.Errorf("%w: pair takes at least 2 type arguments", ErrUnsupportedType)
	}
	firstType, secondType := combType(tp)
	var firstValue, secondValue any
	switch x := value.(type) {
	case []any:
		if len(x) < 2 {
			return nil, mismatch("pair", "two or more items", value)
		}
		firstValue, secondValue = x[0], x[1]
		if len(x) > 2 {
			secondValue = x[1:]
		}
	case map[string]any:
		var err error
		if firstValue, err = fieldValue(x, firstType); err != nil {
			return nil, err
		}
		if secondValue, err = fieldValue(x, secondType); err != nil {
			return nil, err
		}
	default:
		return nil, mismatch("pair", "[]any or map[string]any", value)
	}
	first, err := FromValue(firstValue, firstType)
	if err != nil {
		return nil, err
	}
	second, err := FromValue(secondValue, secondType)
	if err != nil {
		return nil, err
	}
	return &Pair{Annotated: Annotated{name}, First: first, Second: second}, nil
}

// fieldValue selects the entry of m named by the annotation of typ. An
// unannotated nested pair reads its own fields from the same map.
func fieldValue(m map[string]any, typ micheline.Node) (any, error) {
	tp, err := typePrim(typ, 0)
	if err != nil {
		return nil, err
	}
	if field := tp.FieldAnnot(); field != "" {
		v, ok := m[field]
		if !ok {
			return nil, fmt.Errorf("%w: missing field %q", ErrInvalidValue, field)
		}
		return v, nil
	}
	if tp.Prim == "pair" {
		return m, nil
	}
	return nil, fmt.Errorf("%w: unannotated %s field in record", ErrInvalidValue, tp.Prim)
}

func orFromValue(value any, tp *micheline.Prim, name string) (Type, error) {
	if _, err := typePrim(tp, 2); err != nil {
		return nil, err
	}
	m, ok := value.(map[string]any)
	if !ok || len(m) != 1 {
		return nil, mismatch("or", `{"Left": value} or {"Right": value}`, value)
	}
	if v, ok := m["Left"]; ok {
		inner, err := FromValue(v, tp.Args[0])
		if err != nil {
			return nil, err
		}
		return &Or{Annotated: Annotated{name}, Left: true, Value: inner}, nil
	}
	if v, ok := m["Right"]; ok {
		inner, err := FromValue(v, tp.Args[1])
		if err != nil {
			return nil, err
		}
		return &Or{Annotated: Annotated{name}, Value: inner}, nil
	}
	return nil, mismatch("or", `{"Left": value} or {"Right": value}`, value)
}

func collectionFromValue(value any, tp *micheline.Prim, name string) (Type, error) {
	if _, err := typePrim(tp, 1); err != nil {
		return nil, err
	}
	in, ok := value.([]any)
	if !ok {
		return nil, mismatch(tp.Prim, "[]any", value)
	}
	items := make([]Type, len(in))
	for i, v := range in {
		item, err := FromValue(v, tp.Args[0])
		if err != nil {
			return nil, fmt.Errorf("%s element %d: %w", tp.Prim, i, err)
		}
		items[i] = item
	}
	if tp.Prim == "set" {
		return &Set{Annotated: Annotated{name}, Elements: items}, nil
	}
	return &List{Annotated: Annotated{name}, Elements: items}, nil
}

func mapFromValue(value any, tp *micheline.Prim, name string) (Type, error) {
	if _, err := typePrim(tp, 2); err != nil {
		return nil, err
	}
	var pairs [][2]any
	switch x := value.(type) {
	case map[string]any:
		// Sorted for a deterministic encoding
		for _, k := range slices.Sorted(maps.Keys(x)) {
			pairs = append(pairs, [2]any{k, x[k]})
		}
	case []any:
		for _, item := range x {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, mismatch(tp.Prim, `{"key": k, "value": v}`, item)
			}
			pairs = append(pairs, [2]any{m["key"], m["value"]})
		}
	default:
		if tp.Prim == "big_map" {
			return scalar(BigMapFrom)(value, name)
		}
		return nil, mismatch(tp.Prim, "map[string]any or []any", value)
	}
	elts := make([]MapEntry, len(pairs))
	for i, kv := range pairs {
		key, err := FromValue(kv[0], tp.Args[0])
		if err != nil {
			return nil, fmt.Errorf("%s key %d: %w", tp.Prim, i, err)
		}
		val, err := FromValue(kv[1], tp.Args[1])
		if err != nil {
			return nil, fmt.Errorf("%s value %d: %w", tp.Prim, i, err)
		}
		elts[i] = MapEntry{Key: key, Value: val}
	}
	if tp.Prim == "big_map" {
		return &BigMap{Annotated: Annotated{name}, Entries: elts}, nil
	}
	return &Map{Annotated: Annotated{name}, Entries: elts}, nil
}
