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

package metadata

import "errors"

var (
	ErrInvalidMagic       = errors.New("metadata: invalid magic number")
	ErrUnsupportedVersion = errors.New("metadata: unsupported version")
	ErrTypeNotFound       = errors.New("metadata: type not found in registry")
	ErrPalletNotFound     = errors.New("metadata: pallet not found")
	ErrCallNotFound       = errors.New("metadata: call not found")
	ErrNotVariantType     = errors.New("metadata: type is not a variant")
	ErrMaxDepthExceeded   = errors.New("metadata: maximum type nesting depth exceeded")
	ErrTrailingBytes      = errors.New("metadata: trailing bytes after metadata")
)
