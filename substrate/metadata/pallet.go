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

import (
	"fmt"

	"github.com/blinklabs-io/airlock/scale"
)

// StorageEntryModifier says whether a storage item returns an Option or a
// default value when empty.
type StorageEntryModifier uint8

const (
	StorageEntryModifierOptional StorageEntryModifier = 0
	StorageEntryModifierDefault  StorageEntryModifier = 1
)

// StorageHasher is the hashing scheme applied to a storage map key.
type StorageHasher uint8

const (
	StorageHasherBlake2_128 StorageHasher = iota
	StorageHasherBlake2_256
	StorageHasherBlake2_128Concat
	StorageHasherTwox128
	StorageHasherTwox256
	StorageHasherTwox64Concat
	StorageHasherIdentity
)

const (
	storageEntryTypePlain = 0
	storageEntryTypeMap   = 1
)

type Pallet struct {
	Name      string
	Storage   *PalletStorage
	Calls     *PalletCalls
	Events    *PalletEvent
	Constants []PalletConstant
	Errors    *PalletErrors
	Index     uint8
}

type PalletStorage struct {
	Prefix  string
	Entries []StorageEntry
}

type StorageEntry struct {
	Name     string
	Modifier StorageEntryModifier
	Type     StorageEntryType
	Default  []byte
	Docs     []string
}

// StorageEntryType is either a plain value (IsMap false, Value set) or a map
// from Key to Value.
type StorageEntryType struct {
	IsMap   bool
	Hashers []StorageHasher
	Key     uint32
	Value   uint32
}

type PalletCalls struct {
	Type uint32
}

type PalletEvent struct {
	Type uint32
}

type PalletConstant struct {
	Name  string
	Type  uint32
	Value []byte
	Docs  []string
}

type PalletErrors struct {
	Type uint32
}

// DecodePallet decodes one pallet entry of V14 metadata.
func DecodePallet(d *scale.Decoder) (scale.DecodeResult[Pallet], error) {
	name, err := d.DecodeNextString()
	if err != nil {
		return scale.DecodeResult[Pallet]{}, fmt.Errorf("decoding pallet name: %w", err)
	}
	storage, err := scale.DecodeNextOption(d, DecodePalletStorage)
	if err != nil {
		return scale.DecodeResult[Pallet]{}, fmt.Errorf(
			"decoding storage of pallet %s: %w",
			name.Decoded,
			err,
		)
	}
	calls, err := scale.DecodeNextOption(d, DecodePalletCalls)
	if err != nil {
		return scale.DecodeResult[Pallet]{}, fmt.Errorf(
			"decoding calls of pallet %s: %w",
			name.Decoded,
			err,
		)
	}
	events, err := scale.DecodeNextOption(d, DecodePalletEvent)
	if err != nil {
		return scale.DecodeResult[Pallet]{}, fmt.Errorf(
			"decoding events of pallet %s: %w",
			name.Decoded,
			err,
		)
	}
	constants, err := scale.DecodeNextVector(d, DecodePalletConstant)
	if err != nil {
		return scale.DecodeResult[Pallet]{}, fmt.Errorf(
			"decoding constants of pallet %s: %w",
			name.Decoded,
			err,
		)
	}
	errs, err := scale.DecodeNextOption(d, DecodePalletErrors)
	if err != nil {
		return scale.DecodeResult[Pallet]{}, fmt.Errorf(
			"decoding errors of pallet %s: %w",
			name.Decoded,
			err,
		)
	}
	index, err := d.DecodeNextUint8()
	if err != nil {
		return scale.DecodeResult[Pallet]{}, fmt.Errorf(
			"decoding index of pallet %s: %w",
			name.Decoded,
			err,
		)
	}
	return scale.DecodeResult[Pallet]{
		Decoded: Pallet{
			Name:      name.Decoded,
			Storage:   storage.Decoded,
			Calls:     calls.Decoded,
			Events:    events.Decoded,
			Constants: constants.Decoded,
			Errors:    errs.Decoded,
			Index:     index.Decoded,
		},
		BytesDecoded: name.BytesDecoded + storage.BytesDecoded +
			calls.BytesDecoded + events.BytesDecoded +
			constants.BytesDecoded + errs.BytesDecoded +
			index.BytesDecoded,
	}, nil
}

func DecodePalletStorage(d *scale.Decoder) (scale.DecodeResult[PalletStorage], error) {
	prefix, err := d.DecodeNextString()
	if err != nil {
		return scale.DecodeResult[PalletStorage]{}, err
	}
	entries, err := scale.DecodeNextVector(d, DecodeStorageEntry)
	if err != nil {
		return scale.DecodeResult[PalletStorage]{}, err
	}
	return scale.DecodeResult[PalletStorage]{
		Decoded: PalletStorage{
			Prefix:  prefix.Decoded,
			Entries: entries.Decoded,
		},
		BytesDecoded: prefix.BytesDecoded + entries.BytesDecoded,
	}, nil
}

func DecodeStorageEntry(d *scale.Decoder) (scale.DecodeResult[StorageEntry], error) {
	name, err := d.DecodeNextString()
	if err != nil {
		return scale.DecodeResult[StorageEntry]{}, err
	}
	modifierPos := d.Position()
	modifier, err := d.DecodeNextEnumIndex()
	if err != nil {
		return scale.DecodeResult[StorageEntry]{}, err
	}
	if modifier.Decoded > uint8(StorageEntryModifierDefault) {
		return scale.DecodeResult[StorageEntry]{}, &scale.UnexpectedDiscriminantError{
			Context:  "StorageEntryModifier",
			Value:    uint64(modifier.Decoded),
			Position: modifierPos,
		}
	}
	typ, err := decodeStorageEntryType(d)
	if err != nil {
		return scale.DecodeResult[StorageEntry]{}, fmt.Errorf(
			"decoding type of storage entry %s: %w",
			name.Decoded,
			err,
		)
	}
	def, err := d.DecodeNextBytes()
	if err != nil {
		return scale.DecodeResult[StorageEntry]{}, err
	}
	docs, err := decodeDocs(d)
	if err != nil {
		return scale.DecodeResult[StorageEntry]{}, err
	}
	return scale.DecodeResult[StorageEntry]{
		Decoded: StorageEntry{
			Name:     name.Decoded,
			Modifier: StorageEntryModifier(modifier.Decoded),
			Type:     typ.Decoded,
			Default:  def.Decoded,
			Docs:     docs.Decoded,
		},
		BytesDecoded: name.BytesDecoded + modifier.BytesDecoded +
			typ.BytesDecoded + def.BytesDecoded + docs.BytesDecoded,
	}, nil
}

func decodeStorageHasher(d *scale.Decoder) (scale.DecodeResult[StorageHasher], error) {
	pos := d.Position()
	r, err := d.DecodeNextEnumIndex()
	if err != nil {
		return scale.DecodeResult[StorageHasher]{}, err
	}
	if r.Decoded > uint8(StorageHasherIdentity) {
		return scale.DecodeResult[StorageHasher]{}, &scale.UnexpectedDiscriminantError{
			Context:  "StorageHasher",
			Value:    uint64(r.Decoded),
			Position: pos,
		}
	}
	return scale.DecodeResult[StorageHasher]{
		Decoded:      StorageHasher(r.Decoded),
		BytesDecoded: r.BytesDecoded,
	}, nil
}

func decodeStorageEntryType(d *scale.Decoder) (scale.DecodeResult[StorageEntryType], error) {
	pos := d.Position()
	kind, err := d.DecodeNextEnumIndex()
	if err != nil {
		return scale.DecodeResult[StorageEntryType]{}, err
	}
	switch kind.Decoded {
	case storageEntryTypePlain:
		value, err := decodeTypeID(d)
		if err != nil {
			return scale.DecodeResult[StorageEntryType]{}, err
		}
		return scale.DecodeResult[StorageEntryType]{
			Decoded:      StorageEntryType{Value: value.Decoded},
			BytesDecoded: kind.BytesDecoded + value.BytesDecoded,
		}, nil
	case storageEntryTypeMap:
		hashers, err := scale.DecodeNextVector(d, decodeStorageHasher)
		if err != nil {
			return scale.DecodeResult[StorageEntryType]{}, err
		}
		key, err := decodeTypeID(d)
		if err != nil {
			return scale.DecodeResult[StorageEntryType]{}, err
		}
		value, err := decodeTypeID(d)
		if err != nil {
			return scale.DecodeResult[StorageEntryType]{}, err
		}
		return scale.DecodeResult[StorageEntryType]{
			Decoded: StorageEntryType{
				IsMap:   true,
				Hashers: hashers.Decoded,
				Key:     key.Decoded,
				Value:   value.Decoded,
			},
			BytesDecoded: kind.BytesDecoded + hashers.BytesDecoded +
				key.BytesDecoded + value.BytesDecoded,
		}, nil
	default:
		return scale.DecodeResult[StorageEntryType]{}, &scale.UnexpectedDiscriminantError{
			Context:  "StorageEntryType",
			Value:    uint64(kind.Decoded),
			Position: pos,
		}
	}
}

func DecodePalletCalls(d *scale.Decoder) (scale.DecodeResult[PalletCalls], error) {
	typ, err := decodeTypeID(d)
	if err != nil {
		return scale.DecodeResult[PalletCalls]{}, err
	}
	return scale.DecodeResult[PalletCalls]{
		Decoded:      PalletCalls{Type: typ.Decoded},
		BytesDecoded: typ.BytesDecoded,
	}, nil
}

// DecodePalletEvent decodes the event type reference of a pallet.
func DecodePalletEvent(d *scale.Decoder) (scale.DecodeResult[PalletEvent], error) {
	typ, err := decodeTypeID(d)
	if err != nil {
		return scale.DecodeResult[PalletEvent]{}, err
	}
	return scale.DecodeResult[PalletEvent]{
		Decoded:      PalletEvent{Type: typ.Decoded},
		BytesDecoded: typ.BytesDecoded,
	}, nil
}

func DecodePalletConstant(d *scale.Decoder) (scale.DecodeResult[PalletConstant], error) {
	name, err := d.DecodeNextString()
	if err != nil {
		return scale.DecodeResult[PalletConstant]{}, err
	}
	typ, err := decodeTypeID(d)
	if err != nil {
		return scale.DecodeResult[PalletConstant]{}, err
	}
	value, err := d.DecodeNextBytes()
	if err != nil {
		return scale.DecodeResult[PalletConstant]{}, fmt.Errorf(
			"decoding value of constant %s: %w",
			name.Decoded,
			err,
		)
	}
	docs, err := decodeDocs(d)
	if err != nil {
		return scale.DecodeResult[PalletConstant]{}, err
	}
	return scale.DecodeResult[PalletConstant]{
		Decoded: PalletConstant{
			Name:  name.Decoded,
			Type:  typ.Decoded,
			Value: value.Decoded,
			Docs:  docs.Decoded,
		},
		BytesDecoded: name.BytesDecoded + typ.BytesDecoded +
			value.BytesDecoded + docs.BytesDecoded,
	}, nil
}

func DecodePalletErrors(d *scale.Decoder) (scale.DecodeResult[PalletErrors], error) {
	typ, err := decodeTypeID(d)
	if err != nil {
		return scale.DecodeResult[PalletErrors]{}, err
	}
	return scale.DecodeResult[PalletErrors]{
		Decoded:      PalletErrors{Type: typ.Decoded},
		BytesDecoded: typ.BytesDecoded,
	}, nil
}
