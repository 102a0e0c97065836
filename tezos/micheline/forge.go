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

package micheline

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math/big"
	"strings"
)

// Binary node tags
const (
	tagInt         = 0x00
	tagString      = 0x01
	tagSequence    = 0x02
	tagPrim0       = 0x03
	tagPrim0Annots = 0x04
	tagPrim1       = 0x05
	tagPrim1Annots = 0x06
	tagPrim2       = 0x07
	tagPrim2Annots = 0x08
	tagPrimN       = 0x09
	tagBytes       = 0x0a

	maxUnforgeDepth = 1024
)

// PackWatermark prefixes the output of the PACK instruction.
const PackWatermark byte = 0x05

// Forge returns the binary encoding of n.
func Forge(n Node) ([]byte, error) {
	var buf bytes.Buffer
	if err := forge(&buf, n); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Pack returns the PACK serialization of n: the watermark followed by the
// binary encoding.
func Pack(n Node) ([]byte, error) {
	b, err := Forge(n)
	if err != nil {
		return nil, err
	}
	return append([]byte{PackWatermark}, b...), nil
}

// Unpack reverses Pack. The input must be consumed entirely.
func Unpack(b []byte) (Node, error) {
	if len(b) == 0 || b[0] != PackWatermark {
		return nil, ErrMissingWatermark
	}
	n, used, err := Unforge(b[1:])
	if err != nil {
		return nil, err
	}
	if used != len(b)-1 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrInvalidNode, len(b)-1-used)
	}
	return n, nil
}

func forge(buf *bytes.Buffer, n Node) error {
	switch v := n.(type) {
	case Int:
		if v.Value == nil {
			return fmt.Errorf("%w: nil int", ErrInvalidNode)
		}
		buf.WriteByte(tagInt)
		buf.Write(EncodeZarith(v.Value))
	case String:
		buf.WriteByte(tagString)
		writeLengthPrefixed(buf, []byte(v.Value))
	case Bytes:
		buf.WriteByte(tagBytes)
		writeLengthPrefixed(buf, v.Value)
	case Sequence:
		var inner bytes.Buffer
		for _, item := range v {
			if err := forge(&inner, item); err != nil {
				return err
			}
		}
		buf.WriteByte(tagSequence)
		writeLengthPrefixed(buf, inner.Bytes())
	case *Prim:
		return forgePrim(buf, v)
	default:
		return fmt.Errorf("%w: %T", ErrInvalidNode, n)
	}
	return nil
}

func forgePrim(buf *bytes.Buffer, p *Prim) error {
	code, ok := PrimCode(p.Prim)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPrim, p.Prim)
	}
	hasAnnots := len(p.Annots) > 0
	if len(p.Args) <= 2 {
		tag := byte(tagPrim0 + 2*len(p.Args))
		if hasAnnots {
			tag++
		}
		buf.WriteByte(tag)
		buf.WriteByte(code)
		for _, arg := range p.Args {
			if err := forge(buf, arg); err != nil {
				return err
			}
		}
		if hasAnnots {
			writeLengthPrefixed(buf, []byte(strings.Join(p.Annots, " ")))
		}
		return nil
	}
	var args bytes.Buffer
	for _, arg := range p.Args {
		if err := forge(&args, arg); err != nil {
			return err
		}
	}
	buf.WriteByte(tagPrimN)
	buf.WriteByte(code)
	writeLengthPrefixed(buf, args.Bytes())
	// The generic form always carries the annotation length.
	writeLengthPrefixed(buf, []byte(strings.Join(p.Annots, " ")))
	return nil
}

func writeLengthPrefixed(buf *bytes.Buffer, b []byte) {
	var l [4]byte
	binary.BigEndian.PutUint32(l[:], uint32(len(b)))
	buf.Write(l[:])
	buf.Write(b)
}

// Unforge decodes one node from b and returns it with the number of bytes
// consumed.
func Unforge(b []byte) (Node, int, error) {
	r := &reader{data: b}
	n, err := r.node(0)
	if err != nil {
		return nil, 0, err
	}
	return n, r.pos, nil
}

type reader struct {
	data []byte
	pos  int
}

func (r *reader) readByte() (byte, error) {
	if r.pos >= len(r.data) {
		return 0, fmt.Errorf("%w at pos %d", ErrTruncated, r.pos)
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

func (r *reader) readBytes(n int) ([]byte, error) {
	if n < 0 || n > len(r.data)-r.pos {
		return nil, fmt.Errorf(
			"%w at pos %d: need %d bytes, have %d",
			ErrTruncated,
			r.pos,
			n,
			len(r.data)-r.pos,
		)
	}
	b := bytes.Clone(r.data[r.pos : r.pos+n])
	r.pos += n
	return b, nil
}

func (r *reader) readLengthPrefixed() ([]byte, error) {
	l, err := r.readBytes(4)
	if err != nil {
		return nil, err
	}
	return r.readBytes(int(binary.BigEndian.Uint32(l)))
}

func (r *reader) node(depth int) (Node, error) {
	if depth > maxUnforgeDepth {
		return nil, fmt.Errorf("%w: nesting too deep", ErrInvalidNode)
	}
	tagPos := r.pos
	tag, err := r.readByte()
	if err != nil {
		return nil, err
	}
	switch tag {
	case tagInt:
		v, n, err := DecodeZarith(r.data[r.pos:])
		if err != nil {
			return nil, err
		}
		r.pos += n
		return Int{Value: v}, nil
	case tagString:
		b, err := r.readLengthPrefixed()
		if err != nil {
			return nil, err
		}
		return String{Value: string(b)}, nil
	case tagBytes:
		b, err := r.readLengthPrefixed()
		if err != nil {
			return nil, err
		}
		return Bytes{Value: b}, nil
	case tagSequence:
		b, err := r.readLengthPrefixed()
		if err != nil {
			return nil, err
		}
		inner := &reader{data: b}
		seq := Sequence{}
		for inner.pos < len(inner.data) {
			item, err := inner.node(depth + 1)
			if err != nil {
				return nil, err
			}
			seq = append(seq, item)
		}
		return seq, nil
	case tagPrim0, tagPrim0Annots, tagPrim1, tagPrim1Annots, tagPrim2, tagPrim2Annots:
		p, err := r.prim()
		if err != nil {
			return nil, err
		}
		nargs := int(tag-tagPrim0) / 2
		for range nargs {
			arg, err := r.node(depth + 1)
			if err != nil {
				return nil, err
			}
			p.Args = append(p.Args, arg)
		}
		if (tag-tagPrim0)%2 == 1 {
			if err := r.annots(p); err != nil {
				return nil, err
			}
		}
		return p, nil
	case tagPrimN:
		p, err := r.prim()
		if err != nil {
			return nil, err
		}
		b, err := r.readLengthPrefixed()
		if err != nil {
			return nil, err
		}
		inner := &reader{data: b}
		for inner.pos < len(inner.data) {
			arg, err := inner.node(depth + 1)
			if err != nil {
				return nil, err
			}
			p.Args = append(p.Args, arg)
		}
		if err := r.annots(p); err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("%w: 0x%02x at pos %d", ErrUnexpectedTag, tag, tagPos)
	}
}

func (r *reader) prim() (*Prim, error) {
	code, err := r.readByte()
	if err != nil {
		return nil, err
	}
	name, ok := PrimName(code)
	if !ok {
		return nil, fmt.Errorf("%w: code 0x%02x", ErrUnknownPrim, code)
	}
	return &Prim{Prim: name}, nil
}

func (r *reader) annots(p *Prim) error {
	b, err := r.readLengthPrefixed()
	if err != nil {
		return err
	}
	if len(b) > 0 {
		p.Annots = strings.Split(string(b), " ")
	}
	return nil
}

// EncodeZarith encodes a signed integer: the first byte carries the sign in
// bit 6 and six value bits, following bytes carry seven bits each, and bit 7
// marks continuation.
func EncodeZarith(v *big.Int) []byte {
	abs := new(big.Int).Abs(v)
	first := byte(new(big.Int).And(abs, big.NewInt(0x3f)).Uint64())
	if v.Sign() < 0 {
		first |= 0x40
	}
	abs.Rsh(abs, 6)
	out := []byte{first}
	for abs.Sign() > 0 {
		out[len(out)-1] |= 0x80
		out = append(out, byte(new(big.Int).And(abs, big.NewInt(0x7f)).Uint64()))
		abs.Rsh(abs, 7)
	}
	return out
}

// DecodeZarith decodes a signed zarith integer and returns the bytes used.
func DecodeZarith(b []byte) (*big.Int, int, error) {
	if len(b) == 0 {
		return nil, 0, fmt.Errorf("%w: zarith", ErrTruncated)
	}
	v := big.NewInt(int64(b[0] & 0x3f))
	negative := b[0]&0x40 != 0
	shift := uint(6)
	i := 0
	for b[i]&0x80 != 0 {
		i++
		if i >= len(b) {
			return nil, 0, fmt.Errorf("%w: zarith", ErrTruncated)
		}
		chunk := big.NewInt(int64(b[i] & 0x7f))
		v.Or(v, chunk.Lsh(chunk, shift))
		shift += 7
	}
	if negative {
		v.Neg(v)
	}
	return v, i + 1, nil
}

// EncodeNatZarith encodes a non-negative integer with seven bits per byte,
// as used for amounts, fees and counters in operations.
func EncodeNatZarith(v *big.Int) ([]byte, error) {
	if v.Sign() < 0 {
		return nil, fmt.Errorf("%w: negative natural %s", ErrInvalidNode, v)
	}
	n := new(big.Int).Set(v)
	var out []byte
	for {
		b := byte(new(big.Int).And(n, big.NewInt(0x7f)).Uint64())
		n.Rsh(n, 7)
		if n.Sign() == 0 {
			return append(out, b), nil
		}
		out = append(out, b|0x80)
	}
}

// DecodeNatZarith reverses EncodeNatZarith.
func DecodeNatZarith(b []byte) (*big.Int, int, error) {
	v := new(big.Int)
	shift := uint(0)
	for i, c := range b {
		chunk := big.NewInt(int64(c & 0x7f))
		v.Or(v, chunk.Lsh(chunk, shift))
		if c&0x80 == 0 {
			return v, i + 1, nil
		}
		shift += 7
	}
	return nil, 0, fmt.Errorf("%w: natural", ErrTruncated)
}
