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

import (
	"fmt"
	"math/big"

	"github.com/blinklabs-io/airlock/scale"
)

const (
	ExtrinsicVersion = 4

	extrinsicSignedBit  = 0x80
	extrinsicVersionMask = 0x7f

	// MultiAddress::Id
	multiAddressID = 0
)

// SignatureType is the MultiSignature discriminant.
type SignatureType uint8

const (
	SignatureEd25519 SignatureType = 0
	SignatureSr25519 SignatureType = 1
	SignatureEcdsa   SignatureType = 2
)

func (s SignatureType) size() int {
	if s == SignatureEcdsa {
		return 65
	}
	return 64
}

type Signature struct {
	Type  SignatureType
	Bytes []byte
}

// Extrinsic is a version 4 extrinsic. Signer, Signature, Era, Nonce and Tip
// are only meaningful when Signed is set.
type Extrinsic struct {
	Signed    bool
	Version   uint8
	Signer    []byte
	Signature Signature
	Era       Era
	Nonce     *big.Int
	Tip       *big.Int
	Call      Call
}

// DecodeExtrinsic reads a length-prefixed extrinsic from the cursor.
func DecodeExtrinsic(d *scale.Decoder) (scale.DecodeResult[*Extrinsic], error) {
	start := d.Position()
	res, err := decodeExtrinsic(d)
	if err != nil {
		d.Seek(start)
		return scale.DecodeResult[*Extrinsic]{}, err
	}
	return res, nil
}

// DecodeExtrinsicHex decodes a complete hex encoded extrinsic.
func DecodeExtrinsicHex(network string, raw string) (*Extrinsic, error) {
	d, err := scale.NewDecoderFromHex(network, nil, raw)
	if err != nil {
		return nil, err
	}
	res, err := DecodeExtrinsic(d)
	if err != nil {
		return nil, err
	}
	if !d.Done() {
		return nil, fmt.Errorf(
			"%w: %d trailing bytes",
			ErrExtrinsicLength,
			d.Remaining(),
		)
	}
	return res.Decoded, nil
}

func decodeExtrinsic(d *scale.Decoder) (scale.DecodeResult[*Extrinsic], error) {
	length, err := d.DecodeNextCompactLength("extrinsic")
	if err != nil {
		return scale.DecodeResult[*Extrinsic]{}, err
	}
	bodyStart := d.Position()
	header, err := d.DecodeNextUint8()
	if err != nil {
		return scale.DecodeResult[*Extrinsic]{}, err
	}
	ext := &Extrinsic{
		Signed:  header.Decoded&extrinsicSignedBit != 0,
		Version: header.Decoded & extrinsicVersionMask,
	}
	if ext.Version != ExtrinsicVersion {
		return scale.DecodeResult[*Extrinsic]{}, fmt.Errorf(
			"%w: %d",
			ErrUnsupportedExtrinsicVersion,
			ext.Version,
		)
	}
	if ext.Signed {
		if err := ext.decodeSignature(d); err != nil {
			return scale.DecodeResult[*Extrinsic]{}, err
		}
	}
	consumed := d.Position() - bodyStart
	if consumed+2 > length.Decoded {
		return scale.DecodeResult[*Extrinsic]{}, fmt.Errorf(
			"%w: body of %d bytes too short for a call",
			ErrExtrinsicLength,
			length.Decoded,
		)
	}
	call, err := decodeCall(d, length.Decoded-consumed)
	if err != nil {
		return scale.DecodeResult[*Extrinsic]{}, err
	}
	ext.Call = call.Decoded
	return scale.DecodeResult[*Extrinsic]{
		Decoded:      ext,
		BytesDecoded: length.BytesDecoded + length.Decoded,
	}, nil
}

func (e *Extrinsic) decodeSignature(d *scale.Decoder) error {
	addrPos := d.Position()
	tag, err := d.DecodeNextEnumIndex()
	if err != nil {
		return err
	}
	if tag.Decoded != multiAddressID {
		return &scale.UnexpectedDiscriminantError{
			Context:  "MultiAddress",
			Value:    uint64(tag.Decoded),
			Position: addrPos,
		}
	}
	signer, err := d.DecodeNextFixedBytes(AccountIDLength)
	if err != nil {
		return err
	}
	e.Signer = signer.Decoded
	sigPos := d.Position()
	sigType, err := d.DecodeNextEnumIndex()
	if err != nil {
		return err
	}
	if sigType.Decoded > uint8(SignatureEcdsa) {
		return &scale.UnexpectedDiscriminantError{
			Context:  "MultiSignature",
			Value:    uint64(sigType.Decoded),
			Position: sigPos,
		}
	}
	e.Signature.Type = SignatureType(sigType.Decoded)
	sig, err := d.DecodeNextFixedBytes(e.Signature.Type.size())
	if err != nil {
		return err
	}
	e.Signature.Bytes = sig.Decoded
	era, err := DecodeEra(d)
	if err != nil {
		return err
	}
	e.Era = era.Decoded
	nonce, err := d.DecodeNextCompactInt()
	if err != nil {
		return err
	}
	e.Nonce = nonce.Decoded
	tip, err := d.DecodeNextCompactInt()
	if err != nil {
		return err
	}
	e.Tip = tip.Decoded
	return nil
}

// Encode returns the length-prefixed SCALE encoding of the extrinsic.
func (e *Extrinsic) Encode() ([]byte, error) {
	body := scale.NewEncoder()
	header := uint8(ExtrinsicVersion)
	if e.Signed {
		header |= extrinsicSignedBit
	}
	body.EncodeUint8(header)
	if e.Signed {
		if len(e.Signer) != AccountIDLength {
			return nil, fmt.Errorf(
				"%w: signer must be %d bytes, got %d",
				ErrInvalidAddress,
				AccountIDLength,
				len(e.Signer),
			)
		}
		body.EncodeUint8(multiAddressID)
		body.EncodeFixedBytes(e.Signer)
		sig := e.Signature.Bytes
		if sig == nil {
			sig = make([]byte, e.Signature.Type.size())
		}
		if len(sig) != e.Signature.Type.size() {
			return nil, fmt.Errorf(
				"signature must be %d bytes, got %d",
				e.Signature.Type.size(),
				len(sig),
			)
		}
		body.EncodeUint8(uint8(e.Signature.Type))
		body.EncodeFixedBytes(sig)
		era, err := e.Era.Encode()
		if err != nil {
			return nil, err
		}
		body.EncodeFixedBytes(era)
		if err := body.EncodeCompact(orZero(e.Nonce)); err != nil {
			return nil, fmt.Errorf("encoding nonce: %w", err)
		}
		if err := body.EncodeCompact(orZero(e.Tip)); err != nil {
			return nil, fmt.Errorf("encoding tip: %w", err)
		}
	}
	body.EncodeFixedBytes(e.Call.Encode())
	out := scale.NewEncoder()
	out.EncodeBytes(body.Bytes())
	return out.Bytes(), nil
}

// WithSignature returns a copy of a signed extrinsic carrying sig.
func (e *Extrinsic) WithSignature(sig Signature) *Extrinsic {
	ret := *e
	ret.Signed = true
	ret.Signature = sig
	return &ret
}

func orZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}
