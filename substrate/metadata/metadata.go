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

// Package metadata decodes Substrate runtime metadata (version 14).
//
// The decoder is a tree of node decoders built on scale.Decoder. Each node
// decodes a fixed sequence of sub-fields from the shared cursor and reports
// the sum of its children's byte counts, so no node ever re-reads bytes
// consumed by another.
package metadata

import (
	"fmt"

	"github.com/blinklabs-io/airlock/scale"
)

const (
	// Magic is "meta" as a little-endian u32.
	Magic   uint32 = 0x6174656d
	Version uint8  = 14
)

type Metadata struct {
	Version     uint8
	Registry    *Registry
	Pallets     []Pallet
	Extrinsic   ExtrinsicMetadata
	RuntimeType uint32
}

type ExtrinsicMetadata struct {
	Type             uint32
	Version          uint8
	SignedExtensions []SignedExtension
}

type SignedExtension struct {
	Identifier       string
	Type             uint32
	AdditionalSigned uint32
}

// Decode decodes V14 metadata starting at the decoder's position.
func Decode(d *scale.Decoder) (scale.DecodeResult[*Metadata], error) {
	start := d.Position()
	magic, err := d.DecodeNextUint32()
	if err != nil {
		return scale.DecodeResult[*Metadata]{}, fmt.Errorf("decoding magic: %w", err)
	}
	if magic.Decoded != Magic {
		return scale.DecodeResult[*Metadata]{}, fmt.Errorf(
			"%w: got 0x%08x at pos %d",
			ErrInvalidMagic,
			magic.Decoded,
			start,
		)
	}
	version, err := d.DecodeNextUint8()
	if err != nil {
		return scale.DecodeResult[*Metadata]{}, fmt.Errorf("decoding version: %w", err)
	}
	if version.Decoded != Version {
		return scale.DecodeResult[*Metadata]{}, fmt.Errorf(
			"%w: %d",
			ErrUnsupportedVersion,
			version.Decoded,
		)
	}
	registry, err := decodeRegistry(d)
	if err != nil {
		return scale.DecodeResult[*Metadata]{}, err
	}
	pallets, err := scale.DecodeNextVector(d, DecodePallet)
	if err != nil {
		return scale.DecodeResult[*Metadata]{}, fmt.Errorf("decoding pallets: %w", err)
	}
	extrinsic, err := DecodeExtrinsicMetadata(d)
	if err != nil {
		return scale.DecodeResult[*Metadata]{}, fmt.Errorf(
			"decoding extrinsic metadata: %w",
			err,
		)
	}
	runtimeType, err := decodeTypeID(d)
	if err != nil {
		return scale.DecodeResult[*Metadata]{}, fmt.Errorf(
			"decoding runtime type: %w",
			err,
		)
	}
	return scale.DecodeResult[*Metadata]{
		Decoded: &Metadata{
			Version:     version.Decoded,
			Registry:    registry.Decoded,
			Pallets:     pallets.Decoded,
			Extrinsic:   extrinsic.Decoded,
			RuntimeType: runtimeType.Decoded,
		},
		BytesDecoded: magic.BytesDecoded + version.BytesDecoded +
			registry.BytesDecoded + pallets.BytesDecoded +
			extrinsic.BytesDecoded + runtimeType.BytesDecoded,
	}, nil
}

// DecodeHex decodes a complete hex encoded metadata blob, as returned by
// the state_getMetadata RPC. Trailing bytes are rejected.
func DecodeHex(
	network string,
	runtimeVersion *uint32,
	raw string,
) (*Metadata, error) {
	d, err := scale.NewDecoderFromHex(network, runtimeVersion, raw)
	if err != nil {
		return nil, err
	}
	res, err := Decode(d)
	if err != nil {
		return nil, err
	}
	if !d.Done() {
		return nil, fmt.Errorf(
			"%w: %d bytes left after %d decoded",
			ErrTrailingBytes,
			d.Remaining(),
			res.BytesDecoded,
		)
	}
	return res.Decoded, nil
}

func DecodeExtrinsicMetadata(d *scale.Decoder) (scale.DecodeResult[ExtrinsicMetadata], error) {
	typ, err := decodeTypeID(d)
	if err != nil {
		return scale.DecodeResult[ExtrinsicMetadata]{}, err
	}
	version, err := d.DecodeNextUint8()
	if err != nil {
		return scale.DecodeResult[ExtrinsicMetadata]{}, err
	}
	extensions, err := scale.DecodeNextVector(d, decodeSignedExtension)
	if err != nil {
		return scale.DecodeResult[ExtrinsicMetadata]{}, err
	}
	return scale.DecodeResult[ExtrinsicMetadata]{
		Decoded: ExtrinsicMetadata{
			Type:             typ.Decoded,
			Version:          version.Decoded,
			SignedExtensions: extensions.Decoded,
		},
		BytesDecoded: typ.BytesDecoded + version.BytesDecoded +
			extensions.BytesDecoded,
	}, nil
}

func decodeSignedExtension(d *scale.Decoder) (scale.DecodeResult[SignedExtension], error) {
	identifier, err := d.DecodeNextString()
	if err != nil {
		return scale.DecodeResult[SignedExtension]{}, err
	}
	typ, err := decodeTypeID(d)
	if err != nil {
		return scale.DecodeResult[SignedExtension]{}, err
	}
	additional, err := decodeTypeID(d)
	if err != nil {
		return scale.DecodeResult[SignedExtension]{}, err
	}
	return scale.DecodeResult[SignedExtension]{
		Decoded: SignedExtension{
			Identifier:       identifier.Decoded,
			Type:             typ.Decoded,
			AdditionalSigned: additional.Decoded,
		},
		BytesDecoded: identifier.BytesDecoded + typ.BytesDecoded +
			additional.BytesDecoded,
	}, nil
}

// Pallet returns the pallet with the given name.
func (m *Metadata) Pallet(name string) (*Pallet, error) {
	for i := range m.Pallets {
		if m.Pallets[i].Name == name {
			return &m.Pallets[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrPalletNotFound, name)
}

// PalletByIndex returns the pallet with the given call/event index.
func (m *Metadata) PalletByIndex(index uint8) (*Pallet, error) {
	for i := range m.Pallets {
		if m.Pallets[i].Index == index {
			return &m.Pallets[i], nil
		}
	}
	return nil, fmt.Errorf("%w: index %d", ErrPalletNotFound, index)
}

// Call resolves a (pallet index, call index) pair to the pallet and the
// call variant describing the arguments.
func (m *Metadata) Call(palletIndex, callIndex uint8) (*Pallet, *Variant, error) {
	pallet, err := m.PalletByIndex(palletIndex)
	if err != nil {
		return nil, nil, err
	}
	if pallet.Calls == nil {
		return nil, nil, fmt.Errorf(
			"%w: pallet %s has no calls",
			ErrCallNotFound,
			pallet.Name,
		)
	}
	variant, err := m.variantByIndex(pallet.Calls.Type, callIndex)
	if err != nil {
		return nil, nil, fmt.Errorf("pallet %s: %w", pallet.Name, err)
	}
	return pallet, variant, nil
}

// CallByName resolves a pallet and call name to their indices.
func (m *Metadata) CallByName(palletName, callName string) (*Pallet, *Variant, error) {
	pallet, err := m.Pallet(palletName)
	if err != nil {
		return nil, nil, err
	}
	if pallet.Calls == nil {
		return nil, nil, fmt.Errorf(
			"%w: pallet %s has no calls",
			ErrCallNotFound,
			pallet.Name,
		)
	}
	t, err := m.Registry.Lookup(pallet.Calls.Type)
	if err != nil {
		return nil, nil, err
	}
	if t.Def.Kind != TypeDefVariant {
		return nil, nil, fmt.Errorf("%w: id %d", ErrNotVariantType, pallet.Calls.Type)
	}
	for i := range t.Def.Variants {
		if t.Def.Variants[i].Name == callName {
			return pallet, &t.Def.Variants[i], nil
		}
	}
	return nil, nil, fmt.Errorf("%w: %s.%s", ErrCallNotFound, palletName, callName)
}

func (m *Metadata) variantByIndex(typeID uint32, index uint8) (*Variant, error) {
	t, err := m.Registry.Lookup(typeID)
	if err != nil {
		return nil, err
	}
	if t.Def.Kind != TypeDefVariant {
		return nil, fmt.Errorf("%w: id %d", ErrNotVariantType, typeID)
	}
	for i := range t.Def.Variants {
		if t.Def.Variants[i].Index == index {
			return &t.Def.Variants[i], nil
		}
	}
	return nil, fmt.Errorf("%w: index %d", ErrCallNotFound, index)
}
