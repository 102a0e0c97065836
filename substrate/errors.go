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

package substrate

import "errors"

var (
	ErrUnknownNetwork              = errors.New("substrate: unknown network")
	ErrInvalidAddress              = errors.New("substrate: invalid address")
	ErrInvalidEra                  = errors.New("substrate: invalid era")
	ErrUnsupportedExtrinsicVersion = errors.New("substrate: unsupported extrinsic version")
	ErrTrailingCallBytes           = errors.New("substrate: call arguments not fully consumed")
	ErrExtrinsicLength             = errors.New("substrate: extrinsic length mismatch")
)
