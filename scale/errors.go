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

package scale

import (
	"errors"
	"fmt"
)

var (
	ErrDecodeUnderflow        = errors.New("decode underflow")
	ErrUnexpectedDiscriminant = errors.New("unexpected discriminant")
	ErrOverflow               = errors.New("value overflows target type")
	ErrNegativeValue          = errors.New("negative value cannot be encoded")
)

// UnderflowError is returned when the cursor runs out of bytes before a
// primitive finished decoding.
type UnderflowError struct {
	Primitive string
	Position  int
	Need      int
	Have      int
}

func (e *UnderflowError) Error() string {
	return fmt.Sprintf(
		"scale: decode underflow reading %s at pos %d: need %d bytes, have %d",
		e.Primitive,
		e.Position,
		e.Need,
		e.Have,
	)
}

func (e *UnderflowError) Is(target error) bool {
	return target == ErrDecodeUnderflow
}

// UnexpectedDiscriminantError is returned when a leading tag byte does not
// select any known variant.
type UnexpectedDiscriminantError struct {
	Context  string
	Value    uint64
	Position int
}

func (e *UnexpectedDiscriminantError) Error() string {
	return fmt.Sprintf(
		"scale: unexpected discriminant %d for %s at pos %d",
		e.Value,
		e.Context,
		e.Position,
	)
}

func (e *UnexpectedDiscriminantError) Is(target error) bool {
	return target == ErrUnexpectedDiscriminant
}
