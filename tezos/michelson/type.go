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

// Package michelson implements typed Michelson values.
//
// Every value is one of a closed set of variants. Values convert to and
// from Micheline nodes and project to plain Go values for display. Each
// variant has a constructor of the form XFrom(source, name) accepting an
// enumerated set of source shapes: the variant itself (returned unchanged),
// the matching Micheline node, and a few plain Go types. Any other source
// fails with a *TypeMismatchError.
package michelson

import (
	"errors"
	"fmt"

	"github.com/blinklabs-io/airlock/tezos/micheline"
)

var (
	ErrInvalidArgumentType = errors.New("michelson: invalid argument type")
	ErrInvalidValue        = errors.New("michelson: invalid value")
	ErrUnsupportedType     = errors.New("michelson: unsupported type")
)

// TypeMismatchError reports a source that does not fit the target variant.
type TypeMismatchError struct {
	Type     string
	Expected string
	Actual   string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf(
		"michelson: invalid argument type for %s: expected %s, got %s",
		e.Type,
		e.Expected,
		e.Actual,
	)
}

func (e *TypeMismatchError) Is(target error) bool {
	return target == ErrInvalidArgumentType
}

func mismatch(typ, expected string, actual any) error {
	var desc string
	switch v := actual.(type) {
	case Type:
		desc = "michelson " + v.TypeName()
	case micheline.Node:
		desc = fmt.Sprintf("micheline %T", v)
	default:
		desc = fmt.Sprintf("%T: %v", v, v)
	}
	return &TypeMismatchError{Type: typ, Expected: expected, Actual: desc}
}

// Type is a typed Michelson value.
type Type interface {
	// TypeName is the Michelson type keyword, e.g. "nat" or "pair".
	TypeName() string
	// Name is the annotation without its prefix, or "".
	Name() string
	ToMicheline() micheline.Node
	AsRawValue() any
	isType()
}

// Annotated carries the optional annotation name of a value.
type Annotated struct {
	Annot string
}

func (a Annotated) Name() string {
	return a.Annot
}

func (Annotated) isType() {}

// named wraps v as {name: v} when name is set.
func named(name string, v any) any {
	if name == "" {
		return v
	}
	return map[string]any{name: v}
}
