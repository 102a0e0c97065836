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
	"errors"
	"fmt"
	"math/big"

	"github.com/blinklabs-io/airlock/scale"
	"github.com/blinklabs-io/airlock/substrate/metadata"
)

// Call is a runtime call with its arguments left SCALE encoded.
type Call struct {
	PalletIndex uint8
	CallIndex   uint8
	Args        []byte
}

// CallDescription is a call resolved against runtime metadata.
type CallDescription struct {
	Pallet string
	Call   string
	Args   []metadata.NamedValue
}

func decodeCall(d *scale.Decoder, length int) (scale.DecodeResult[Call], error) {
	pallet, err := d.DecodeNextUint8()
	if err != nil {
		return scale.DecodeResult[Call]{}, err
	}
	call, err := d.DecodeNextUint8()
	if err != nil {
		return scale.DecodeResult[Call]{}, err
	}
	args, err := d.DecodeNextFixedBytes(length - 2)
	if err != nil {
		return scale.DecodeResult[Call]{}, err
	}
	return scale.DecodeResult[Call]{
		Decoded: Call{
			PalletIndex: pallet.Decoded,
			CallIndex:   call.Decoded,
			Args:        args.Decoded,
		},
		BytesDecoded: length,
	}, nil
}

// Encode returns the pallet index, call index and arguments.
func (c Call) Encode() []byte {
	ret := make([]byte, 0, 2+len(c.Args))
	ret = append(ret, c.PalletIndex, c.CallIndex)
	return append(ret, c.Args...)
}

// Describe decodes the call arguments using the call's type information in
// md. Every argument byte must be consumed.
func (c Call) Describe(md *metadata.Metadata) (*CallDescription, error) {
	pallet, variant, err := md.Call(c.PalletIndex, c.CallIndex)
	if err != nil {
		return nil, err
	}
	d := scale.NewDecoder("", nil, c.Args)
	args := make([]metadata.NamedValue, 0, len(variant.Fields))
	for i, f := range variant.Fields {
		v, err := metadata.DecodeValue(d, md.Registry, f.Type)
		if err != nil {
			return nil, fmt.Errorf(
				"decoding argument %d of %s.%s: %w",
				i,
				pallet.Name,
				variant.Name,
				err,
			)
		}
		nv := metadata.NamedValue{Value: v.Decoded}
		if f.Name != nil {
			nv.Name = *f.Name
		}
		args = append(args, nv)
	}
	if !d.Done() {
		return nil, fmt.Errorf(
			"%w: %s.%s left %d bytes",
			ErrTrailingCallBytes,
			pallet.Name,
			variant.Name,
			d.Remaining(),
		)
	}
	return &CallDescription{
		Pallet: pallet.Name,
		Call:   variant.Name,
		Args:   args,
	}, nil
}

// TransferCall builds a balances transfer to a MultiAddress::Id destination.
func TransferCall(
	palletIndex, callIndex uint8,
	dest []byte,
	value *big.Int,
) (Call, error) {
	if len(dest) != AccountIDLength {
		return Call{}, fmt.Errorf(
			"%w: destination must be %d bytes, got %d",
			ErrInvalidAddress,
			AccountIDLength,
			len(dest),
		)
	}
	e := scale.NewEncoder()
	e.EncodeUint8(multiAddressID)
	e.EncodeFixedBytes(dest)
	if err := e.EncodeCompact(value); err != nil {
		return Call{}, fmt.Errorf("encoding transfer value: %w", err)
	}
	return Call{
		PalletIndex: palletIndex,
		CallIndex:   callIndex,
		Args:        e.Bytes(),
	}, nil
}

// transferCallNames lists the balances calls tried in order. Newer runtimes
// removed the plain transfer call.
var transferCallNames = []string{
	"transfer_keep_alive",
	"transfer_allow_death",
	"transfer",
}

// TransferCallFromMetadata resolves the Balances transfer call indices from
// md and builds the call.
func TransferCallFromMetadata(
	md *metadata.Metadata,
	dest []byte,
	value *big.Int,
) (Call, error) {
	var lastErr error
	for _, name := range transferCallNames {
		pallet, variant, err := md.CallByName("Balances", name)
		if err != nil {
			if errors.Is(err, metadata.ErrPalletNotFound) {
				return Call{}, err
			}
			lastErr = err
			continue
		}
		return TransferCall(pallet.Index, variant.Index, dest, value)
	}
	return Call{}, lastErr
}
