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

// TypeDef variant indices in the portable registry.
const (
	TypeDefComposite   = 0
	TypeDefVariant     = 1
	TypeDefSequence    = 2
	TypeDefArray       = 3
	TypeDefTuple       = 4
	TypeDefPrimitive   = 5
	TypeDefCompact     = 6
	TypeDefBitSequence = 7
)

// Primitive identifies a scale-info primitive type.
type Primitive uint8

const (
	PrimitiveBool Primitive = iota
	PrimitiveChar
	PrimitiveStr
	PrimitiveU8
	PrimitiveU16
	PrimitiveU32
	PrimitiveU64
	PrimitiveU128
	PrimitiveU256
	PrimitiveI8
	PrimitiveI16
	PrimitiveI32
	PrimitiveI64
	PrimitiveI128
	PrimitiveI256
)

var primitiveNames = map[Primitive]string{
	PrimitiveBool: "bool",
	PrimitiveChar: "char",
	PrimitiveStr:  "str",
	PrimitiveU8:   "u8",
	PrimitiveU16:  "u16",
	PrimitiveU32:  "u32",
	PrimitiveU64:  "u64",
	PrimitiveU128: "u128",
	PrimitiveU256: "u256",
	PrimitiveI8:   "i8",
	PrimitiveI16:  "i16",
	PrimitiveI32:  "i32",
	PrimitiveI64:  "i64",
	PrimitiveI128: "i128",
	PrimitiveI256: "i256",
}

func (p Primitive) String() string {
	if name, ok := primitiveNames[p]; ok {
		return name
	}
	return fmt.Sprintf("primitive(%d)", uint8(p))
}

// Registry is the portable type registry embedded in V14 metadata.
type Registry struct {
	Types []PortableType
	byID  map[uint32]*Type
}

// NewRegistry builds an indexed registry from a list of types.
func NewRegistry(types []PortableType) *Registry {
	r := &Registry{Types: types}
	r.index()
	return r
}

// Lookup returns the type with the given id.
func (r *Registry) Lookup(id uint32) (*Type, error) {
	if r.byID != nil {
		if t, ok := r.byID[id]; ok {
			return t, nil
		}
		return nil, fmt.Errorf("%w: id %d", ErrTypeNotFound, id)
	}
	for i := range r.Types {
		if r.Types[i].ID == id {
			return &r.Types[i].Type, nil
		}
	}
	return nil, fmt.Errorf("%w: id %d", ErrTypeNotFound, id)
}

func (r *Registry) index() {
	r.byID = make(map[uint32]*Type, len(r.Types))
	for i := range r.Types {
		r.byID[r.Types[i].ID] = &r.Types[i].Type
	}
}

type PortableType struct {
	ID   uint32
	Type Type
}

type Type struct {
	Path   []string
	Params []TypeParameter
	Def    TypeDef
	Docs   []string
}

type TypeParameter struct {
	Name string
	Type *uint32
}

// TypeDef is the definition of a registry type. Kind selects which of the
// remaining fields are populated.
type TypeDef struct {
	Kind uint8
	// Composite
	Fields []Field
	// Variant
	Variants []Variant
	// Sequence, Array, Compact
	ElementType uint32
	// Array
	Length uint32
	// Tuple
	TupleTypes []uint32
	// Primitive
	Primitive Primitive
	// BitSequence
	BitStoreType uint32
	BitOrderType uint32
}

type Field struct {
	Name     *string
	Type     uint32
	TypeName *string
	Docs     []string
}

type Variant struct {
	Name   string
	Fields []Field
	Index  uint8
	Docs   []string
}

func decodeTypeID(d *scale.Decoder) (scale.DecodeResult[uint32], error) {
	r, err := d.DecodeNextCompactUint64()
	if err != nil {
		return scale.DecodeResult[uint32]{}, fmt.Errorf("decoding type id: %w", err)
	}
	if r.Decoded > uint64(^uint32(0)) {
		return scale.DecodeResult[uint32]{}, fmt.Errorf(
			"type id %d: %w",
			r.Decoded,
			scale.ErrOverflow,
		)
	}
	return scale.DecodeResult[uint32]{
		Decoded:      uint32(r.Decoded),
		BytesDecoded: r.BytesDecoded,
	}, nil
}

func decodeDocs(d *scale.Decoder) (scale.DecodeResult[[]string], error) {
	return scale.DecodeNextVector(d, (*scale.Decoder).DecodeNextString)
}

func decodeOptionalString(d *scale.Decoder) (scale.DecodeResult[*string], error) {
	return scale.DecodeNextOption(d, (*scale.Decoder).DecodeNextString)
}

func decodeRegistry(d *scale.Decoder) (scale.DecodeResult[*Registry], error) {
	types, err := scale.DecodeNextVector(d, decodePortableType)
	if err != nil {
		return scale.DecodeResult[*Registry]{}, fmt.Errorf(
			"decoding type registry: %w",
			err,
		)
	}
	return scale.DecodeResult[*Registry]{
		Decoded:      NewRegistry(types.Decoded),
		BytesDecoded: types.BytesDecoded,
	}, nil
}

func decodePortableType(d *scale.Decoder) (scale.DecodeResult[PortableType], error) {
	id, err := decodeTypeID(d)
	if err != nil {
		return scale.DecodeResult[PortableType]{}, err
	}
	t, err := decodeType(d)
	if err != nil {
		return scale.DecodeResult[PortableType]{}, fmt.Errorf(
			"decoding type %d: %w",
			id.Decoded,
			err,
		)
	}
	return scale.DecodeResult[PortableType]{
		Decoded:      PortableType{ID: id.Decoded, Type: t.Decoded},
		BytesDecoded: id.BytesDecoded + t.BytesDecoded,
	}, nil
}

func decodeType(d *scale.Decoder) (scale.DecodeResult[Type], error) {
	path, err := decodeDocs(d)
	if err != nil {
		return scale.DecodeResult[Type]{}, fmt.Errorf("decoding path: %w", err)
	}
	params, err := scale.DecodeNextVector(d, decodeTypeParameter)
	if err != nil {
		return scale.DecodeResult[Type]{}, fmt.Errorf("decoding type params: %w", err)
	}
	def, err := decodeTypeDef(d)
	if err != nil {
		return scale.DecodeResult[Type]{}, err
	}
	docs, err := decodeDocs(d)
	if err != nil {
		return scale.DecodeResult[Type]{}, fmt.Errorf("decoding docs: %w", err)
	}
	return scale.DecodeResult[Type]{
		Decoded: Type{
			Path:   path.Decoded,
			Params: params.Decoded,
			Def:    def.Decoded,
			Docs:   docs.Decoded,
		},
		BytesDecoded: path.BytesDecoded + params.BytesDecoded +
			def.BytesDecoded + docs.BytesDecoded,
	}, nil
}

func decodeTypeParameter(d *scale.Decoder) (scale.DecodeResult[TypeParameter], error) {
	name, err := d.DecodeNextString()
	if err != nil {
		return scale.DecodeResult[TypeParameter]{}, err
	}
	typ, err := scale.DecodeNextOption(d, decodeTypeID)
	if err != nil {
		return scale.DecodeResult[TypeParameter]{}, err
	}
	return scale.DecodeResult[TypeParameter]{
		Decoded:      TypeParameter{Name: name.Decoded, Type: typ.Decoded},
		BytesDecoded: name.BytesDecoded + typ.BytesDecoded,
	}, nil
}

func decodeField(d *scale.Decoder) (scale.DecodeResult[Field], error) {
	name, err := decodeOptionalString(d)
	if err != nil {
		return scale.DecodeResult[Field]{}, err
	}
	typ, err := decodeTypeID(d)
	if err != nil {
		return scale.DecodeResult[Field]{}, err
	}
	typeName, err := decodeOptionalString(d)
	if err != nil {
		return scale.DecodeResult[Field]{}, err
	}
	docs, err := decodeDocs(d)
	if err != nil {
		return scale.DecodeResult[Field]{}, err
	}
	return scale.DecodeResult[Field]{
		Decoded: Field{
			Name:     name.Decoded,
			Type:     typ.Decoded,
			TypeName: typeName.Decoded,
			Docs:     docs.Decoded,
		},
		BytesDecoded: name.BytesDecoded + typ.BytesDecoded +
			typeName.BytesDecoded + docs.BytesDecoded,
	}, nil
}

func decodeVariant(d *scale.Decoder) (scale.DecodeResult[Variant], error) {
	name, err := d.DecodeNextString()
	if err != nil {
		return scale.DecodeResult[Variant]{}, err
	}
	fields, err := scale.DecodeNextVector(d, decodeField)
	if err != nil {
		return scale.DecodeResult[Variant]{}, fmt.Errorf(
			"decoding fields of variant %s: %w",
			name.Decoded,
			err,
		)
	}
	index, err := d.DecodeNextUint8()
	if err != nil {
		return scale.DecodeResult[Variant]{}, err
	}
	docs, err := decodeDocs(d)
	if err != nil {
		return scale.DecodeResult[Variant]{}, err
	}
	return scale.DecodeResult[Variant]{
		Decoded: Variant{
			Name:   name.Decoded,
			Fields: fields.Decoded,
			Index:  index.Decoded,
			Docs:   docs.Decoded,
		},
		BytesDecoded: name.BytesDecoded + fields.BytesDecoded +
			index.BytesDecoded + docs.BytesDecoded,
	}, nil
}

func decodeTypeDef(d *scale.Decoder) (scale.DecodeResult[TypeDef], error) {
	pos := d.Position()
	kind, err := d.DecodeNextEnumIndex()
	if err != nil {
		return scale.DecodeResult[TypeDef]{}, err
	}
	def := TypeDef{Kind: kind.Decoded}
	n := kind.BytesDecoded
	switch kind.Decoded {
	case TypeDefComposite:
		fields, err := scale.DecodeNextVector(d, decodeField)
		if err != nil {
			return scale.DecodeResult[TypeDef]{}, err
		}
		def.Fields = fields.Decoded
		n += fields.BytesDecoded
	case TypeDefVariant:
		variants, err := scale.DecodeNextVector(d, decodeVariant)
		if err != nil {
			return scale.DecodeResult[TypeDef]{}, err
		}
		def.Variants = variants.Decoded
		n += variants.BytesDecoded
	case TypeDefSequence, TypeDefCompact:
		elem, err := decodeTypeID(d)
		if err != nil {
			return scale.DecodeResult[TypeDef]{}, err
		}
		def.ElementType = elem.Decoded
		n += elem.BytesDecoded
	case TypeDefArray:
		length, err := d.DecodeNextUint32()
		if err != nil {
			return scale.DecodeResult[TypeDef]{}, err
		}
		elem, err := decodeTypeID(d)
		if err != nil {
			return scale.DecodeResult[TypeDef]{}, err
		}
		def.Length = length.Decoded
		def.ElementType = elem.Decoded
		n += length.BytesDecoded + elem.BytesDecoded
	case TypeDefTuple:
		types, err := scale.DecodeNextVector(d, decodeTypeID)
		if err != nil {
			return scale.DecodeResult[TypeDef]{}, err
		}
		def.TupleTypes = types.Decoded
		n += types.BytesDecoded
	case TypeDefPrimitive:
		prim, err := d.DecodeNextEnumIndex()
		if err != nil {
			return scale.DecodeResult[TypeDef]{}, err
		}
		if prim.Decoded > uint8(PrimitiveI256) {
			return scale.DecodeResult[TypeDef]{}, &scale.UnexpectedDiscriminantError{
				Context:  "TypeDefPrimitive",
				Value:    uint64(prim.Decoded),
				Position: d.Position() - 1,
			}
		}
		def.Primitive = Primitive(prim.Decoded)
		n += prim.BytesDecoded
	case TypeDefBitSequence:
		store, err := decodeTypeID(d)
		if err != nil {
			return scale.DecodeResult[TypeDef]{}, err
		}
		order, err := decodeTypeID(d)
		if err != nil {
			return scale.DecodeResult[TypeDef]{}, err
		}
		def.BitStoreType = store.Decoded
		def.BitOrderType = order.Decoded
		n += store.BytesDecoded + order.BytesDecoded
	default:
		return scale.DecodeResult[TypeDef]{}, &scale.UnexpectedDiscriminantError{
			Context:  "TypeDef",
			Value:    uint64(kind.Decoded),
			Position: pos,
		}
	}
	return scale.DecodeResult[TypeDef]{Decoded: def, BytesDecoded: n}, nil
}
