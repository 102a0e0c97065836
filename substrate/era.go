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
	"encoding/binary"
	"fmt"
	"math/bits"

	"github.com/blinklabs-io/airlock/scale"
)

const (
	minEraPeriod = 4
	maxEraPeriod = 1 << 16
)

// Era is the validity window of a transaction. The zero value is immortal.
type Era struct {
	Mortal bool
	Period uint64
	Phase  uint64
}

// NewMortalEra builds a mortal era starting at block current and lasting
// roughly period blocks. The period is rounded up to a power of two in
// [4, 65536] and the phase is quantized so it fits the two-byte encoding.
func NewMortalEra(current, period uint64) Era {
	if period < minEraPeriod {
		period = minEraPeriod
	}
	if period > maxEraPeriod {
		period = maxEraPeriod
	}
	if period&(period-1) != 0 {
		period = 1 << bits.Len64(period)
		if period > maxEraPeriod {
			period = maxEraPeriod
		}
	}
	phase := current % period
	quantize := max(period>>12, 1)
	return Era{
		Mortal: true,
		Period: period,
		Phase:  phase / quantize * quantize,
	}
}

// Birth returns the first block in which a mortal era is valid, relative to
// block current.
func (e Era) Birth(current uint64) uint64 {
	if !e.Mortal {
		return 0
	}
	return (max(current, e.Phase)-e.Phase)/e.Period*e.Period + e.Phase
}

// Encode returns the SCALE encoding: 0x00 for immortal, two bytes otherwise.
func (e Era) Encode() ([]byte, error) {
	if !e.Mortal {
		return []byte{0x00}, nil
	}
	if e.Period < minEraPeriod || e.Period > maxEraPeriod ||
		e.Period&(e.Period-1) != 0 || e.Phase >= e.Period {
		return nil, fmt.Errorf(
			"%w: period %d phase %d",
			ErrInvalidEra,
			e.Period,
			e.Phase,
		)
	}
	quantize := max(e.Period>>12, 1)
	low := min(max(uint64(bits.TrailingZeros64(e.Period))-1, 1), 15)
	encoded := uint16(low | (e.Phase/quantize)<<4)
	return binary.LittleEndian.AppendUint16(nil, encoded), nil
}

// DecodeEra reads an era from the cursor.
func DecodeEra(d *scale.Decoder) (scale.DecodeResult[Era], error) {
	pos := d.Position()
	first, err := d.DecodeNextUint8()
	if err != nil {
		return scale.DecodeResult[Era]{}, err
	}
	if first.Decoded == 0 {
		return scale.DecodeResult[Era]{Decoded: Era{}, BytesDecoded: 1}, nil
	}
	second, err := d.DecodeNextUint8()
	if err != nil {
		d.Seek(pos)
		return scale.DecodeResult[Era]{}, err
	}
	encoded := uint64(first.Decoded) | uint64(second.Decoded)<<8
	period := uint64(2) << (encoded % (1 << 4))
	quantize := max(period>>12, 1)
	phase := (encoded >> 4) * quantize
	if period < minEraPeriod || phase >= period {
		d.Seek(pos)
		return scale.DecodeResult[Era]{}, fmt.Errorf(
			"%w: encoded 0x%04x at pos %d",
			ErrInvalidEra,
			encoded,
			pos,
		)
	}
	return scale.DecodeResult[Era]{
		Decoded:      Era{Mortal: true, Period: period, Phase: phase},
		BytesDecoded: 2,
	}, nil
}
