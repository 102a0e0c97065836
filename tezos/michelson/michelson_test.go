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

package michelson

import (
	"math/big"
	"testing"
	"time"

	"github.com/blinklabs-io/airlock/tezos/micheline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testTz1 = "tz1KqTpEZ7Yob7QbPE4Hy4Wo8fHG8LhKxZSx"
	testKT1 = "KT18anmnvhqTsgqTwasxpLKYWcLJnGRX3m2D"
)

func prim(name string, args ...micheline.Node) *micheline.Prim {
	return micheline.NewPrim(name, args...)
}

func field(name string, typ *micheline.Prim) *micheline.Prim {
	return typ.WithAnnots("%" + name)
}

func TestBytesFrom(t *testing.T) {
	b, err := BytesFrom("0x0a0b", "")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x0a, 0x0b}, b.Value)

	again, err := BytesFrom(b, "other")
	require.NoError(t, err)
	assert.Same(t, b, again)

	raw, err := BytesFrom([]byte{0xff}, "memo")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"memo": "ff"}, raw.AsRawValue())

	_, err = BytesFrom("abc", "")
	assert.ErrorIs(t, err, ErrInvalidValue)

	_, err = BytesFrom(5, "")
	require.ErrorIs(t, err, ErrInvalidArgumentType)
	var mismatchErr *TypeMismatchError
	require.ErrorAs(t, err, &mismatchErr)
	assert.Equal(t, "bytes", mismatchErr.Type)
	assert.Equal(t, "int: 5", mismatchErr.Actual)
}

func TestFromIdempotent(t *testing.T) {
	i, err := IntFrom(-3, "")
	require.NoError(t, err)
	again, err := IntFrom(i, "")
	require.NoError(t, err)
	assert.Same(t, i, again)

	s, err := StringFrom("x", "")
	require.NoError(t, err)
	sAgain, err := StringFrom(s, "")
	require.NoError(t, err)
	assert.Same(t, s, sAgain)

	o, err := OptionFrom(s, "")
	require.NoError(t, err)
	oAgain, err := OptionFrom(o, "")
	require.NoError(t, err)
	assert.Same(t, o, oAgain)
}

func TestFromRejectsOtherVariant(t *testing.T) {
	nat, err := NatFrom(5, "")
	require.NoError(t, err)
	_, err = IntFrom(nat, "")
	var mismatchErr *TypeMismatchError
	require.ErrorAs(t, err, &mismatchErr)
	assert.Equal(t, "int", mismatchErr.Type)
	assert.Equal(t, "michelson nat", mismatchErr.Actual)

	_, err = NatFrom(-1, "")
	assert.ErrorIs(t, err, ErrInvalidValue)

	_, err = MutezFrom(new(big.Int).Lsh(big.NewInt(1), 63), "")
	assert.ErrorIs(t, err, ErrInvalidValue)

	_, err = BoolFrom(micheline.String{Value: "True"}, "")
	assert.ErrorIs(t, err, ErrInvalidArgumentType)
}

func TestFromMichelineRoundTrip(t *testing.T) {
	testDefs := []struct {
		name  string
		typ   micheline.Node
		value micheline.Node
	}{
		{"int", prim("int"), micheline.NewInt(-5)},
		{"nat", prim("nat"), micheline.NewInt(7)},
		{"mutez", prim("mutez"), micheline.NewInt(1_000_000)},
		{"string", prim("string"), micheline.String{Value: "hello"}},
		{"bytes", prim("bytes"), micheline.Bytes{Value: []byte{0xca, 0xfe}}},
		{"bool", prim("bool"), prim("True")},
		{"unit", prim("unit"), prim("Unit")},
		{"timestamp", prim("timestamp"), micheline.NewInt(1_700_000_000)},
		{"address", prim("address"), micheline.String{Value: testKT1}},
		{"key_hash", prim("key_hash"), micheline.String{Value: testTz1}},
		{
			"contract",
			prim("contract", prim("unit")),
			micheline.String{Value: testKT1 + "%transfer"},
		},
		{
			"pair",
			prim("pair", prim("nat"), prim("string")),
			prim("Pair", micheline.NewInt(1), micheline.String{Value: "a"}),
		},
		{"option none", prim("option", prim("nat")), prim("None")},
		{"option some", prim("option", prim("nat")), prim("Some", micheline.NewInt(3))},
		{
			"or right",
			prim("or", prim("int"), prim("string")),
			prim("Right", micheline.String{Value: "x"}),
		},
		{
			"list",
			prim("list", prim("nat")),
			micheline.Sequence{micheline.NewInt(1), micheline.NewInt(2)},
		},
		{"empty set", prim("set", prim("nat")), micheline.Sequence{}},
		{
			"map",
			prim("map", prim("string"), prim("nat")),
			micheline.Sequence{
				prim("Elt", micheline.String{Value: "a"}, micheline.NewInt(1)),
			},
		},
		{"big_map id", prim("big_map", prim("string"), prim("nat")), micheline.NewInt(42)},
		{
			"lambda",
			prim("lambda", prim("unit"), prim("unit")),
			micheline.Sequence{prim("DROP"), prim("UNIT")},
		},
	}
	for _, testDef := range testDefs {
		v, err := FromMicheline(testDef.value, testDef.typ)
		require.NoError(t, err, testDef.name)
		assert.True(
			t,
			micheline.Equal(testDef.value, v.ToMicheline()),
			testDef.name,
		)
		again, err := FromMicheline(v.ToMicheline(), testDef.typ)
		require.NoError(t, err, testDef.name)
		assert.True(
			t,
			micheline.Equal(v.ToMicheline(), again.ToMicheline()),
			testDef.name,
		)
	}
}

func TestFromMichelineAnnotatedRoundTrip(t *testing.T) {
	typ := prim(
		"pair",
		field("to", prim("address")),
		field("action", prim("or", field("amount", prim("nat")), field("memo", prim("string")))),
		field("fee", prim("option", prim("mutez"))),
	)
	value := prim(
		"Pair",
		micheline.String{Value: testTz1},
		prim("Left", micheline.NewInt(10)),
		prim("Some", micheline.NewInt(5)),
	)
	v, err := FromMicheline(value, typ)
	require.NoError(t, err)
	again, err := FromMicheline(v.ToMicheline(), typ)
	require.NoError(t, err)
	assert.Equal(t, v, again)

	outer, ok := again.(*Pair)
	require.True(t, ok)
	assert.Equal(t, "to", outer.First.Name())
	inner, ok := outer.Second.(*Pair)
	require.True(t, ok)
	action, ok := inner.First.(*Or)
	require.True(t, ok)
	assert.Equal(t, "action", action.Name())
	assert.True(t, action.Left)
	assert.Equal(t, "amount", action.Value.Name())
	fee, ok := inner.Second.(*Option)
	require.True(t, ok)
	assert.Equal(t, "fee", fee.Name())

	raw, ok := again.AsRawValue().(map[string]any)
	require.True(t, ok)
	assert.Equal(t, testTz1, raw["to"])
	assert.Equal(t, map[string]any{"Left": map[string]any{"amount": big.NewInt(10)}}, raw["action"])
	assert.Equal(t, big.NewInt(5), raw["fee"])
	assert.Equal(t, v.AsRawValue(), raw)
}

func TestFromMichelineComb(t *testing.T) {
	typ := prim("pair", prim("nat"), prim("nat"), prim("nat"))
	flat := prim("Pair", micheline.NewInt(1), micheline.NewInt(2), micheline.NewInt(3))
	nested := prim(
		"Pair",
		micheline.NewInt(1),
		prim("Pair", micheline.NewInt(2), micheline.NewInt(3)),
	)
	v, err := FromMicheline(flat, typ)
	require.NoError(t, err)
	assert.True(t, micheline.Equal(nested, v.ToMicheline()))

	seq := micheline.Sequence{micheline.NewInt(1), micheline.NewInt(2), micheline.NewInt(3)}
	v, err = FromMicheline(seq, typ)
	require.NoError(t, err)
	assert.True(t, micheline.Equal(nested, v.ToMicheline()))
}

func TestFromMichelineErrors(t *testing.T) {
	_, err := FromMicheline(micheline.NewInt(1), prim("ticket", prim("nat")))
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = FromMicheline(micheline.NewInt(1), micheline.String{Value: "nat"})
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = FromMicheline(micheline.String{Value: "1"}, prim("nat"))
	assert.ErrorIs(t, err, ErrInvalidArgumentType)

	_, err = FromMicheline(micheline.NewInt(1), prim("option"))
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = FromMicheline(
		micheline.Sequence{micheline.NewInt(1), micheline.String{Value: "x"}},
		prim("list", prim("nat")),
	)
	assert.ErrorIs(t, err, ErrInvalidArgumentType)
}

func TestRawValueRecord(t *testing.T) {
	typ := prim("pair", field("amount", prim("nat")), field("to", prim("address")))
	value := prim("Pair", micheline.NewInt(10), micheline.String{Value: testTz1})
	v, err := FromMicheline(value, typ)
	require.NoError(t, err)

	raw, ok := v.AsRawValue().(map[string]any)
	require.True(t, ok)
	assert.Equal(t, testTz1, raw["to"])
	amount, ok := raw["amount"].(*big.Int)
	require.True(t, ok)
	assert.Equal(t, int64(10), amount.Int64())

	unnamed, err := FromMicheline(value, prim("pair", prim("nat"), prim("address")))
	require.NoError(t, err)
	items, ok := unnamed.AsRawValue().([]any)
	require.True(t, ok)
	assert.Len(t, items, 2)
	assert.Equal(t, testTz1, items[1])
}

func TestFromValue(t *testing.T) {
	typ := prim(
		"pair",
		field("to", prim("address")),
		prim("pair", field("amount", prim("nat")), field("memo", prim("bytes"))),
	)
	want := prim(
		"Pair",
		micheline.String{Value: testTz1},
		prim("Pair", micheline.NewInt(5), micheline.Bytes{Value: []byte{0xff}}),
	)

	v, err := FromValue(map[string]any{"to": testTz1, "amount": 5, "memo": "0xff"}, typ)
	require.NoError(t, err)
	assert.True(t, micheline.Equal(want, v.ToMicheline()))

	v, err = FromValue([]any{testTz1, float64(5), "ff"}, typ)
	require.NoError(t, err)
	assert.True(t, micheline.Equal(want, v.ToMicheline()))

	_, err = FromValue(map[string]any{"to": testTz1, "amount": 5}, typ)
	assert.ErrorIs(t, err, ErrInvalidValue)

	m, err := FromValue(map[string]any{"b": 2, "a": 1}, prim("map", prim("string"), prim("nat")))
	require.NoError(t, err)
	assert.True(t, micheline.Equal(
		micheline.Sequence{
			prim("Elt", micheline.String{Value: "a"}, micheline.NewInt(1)),
			prim("Elt", micheline.String{Value: "b"}, micheline.NewInt(2)),
		},
		m.ToMicheline(),
	))

	o, err := FromValue(nil, prim("option", prim("nat")))
	require.NoError(t, err)
	assert.True(t, micheline.Equal(prim("None"), o.ToMicheline()))

	or, err := FromValue(map[string]any{"Left": 3}, prim("or", prim("int"), prim("string")))
	require.NoError(t, err)
	assert.True(t, micheline.Equal(prim("Left", micheline.NewInt(3)), or.ToMicheline()))

	l, err := FromValue([]any{1, 2}, prim("list", prim("nat")))
	require.NoError(t, err)
	assert.Len(t, l.(*List).Elements, 2)

	nat, err := NatFrom(1, "")
	require.NoError(t, err)
	same, err := FromValue(nat, prim("nat"))
	require.NoError(t, err)
	assert.Same(t, nat, same)
	_, err = FromValue(nat, prim("int"))
	assert.ErrorIs(t, err, ErrInvalidArgumentType)
}

func TestAddressesAndContracts(t *testing.T) {
	c, err := ContractFrom(testKT1+"%transfer", "")
	require.NoError(t, err)
	assert.Equal(t, testKT1, c.Address)
	assert.Equal(t, "transfer", c.Entrypoint)

	def, err := ContractFrom(testKT1+"%default", "")
	require.NoError(t, err)
	assert.Equal(t, testKT1, def.String())

	forged := append([]byte{0x00, 0x00}, make([]byte, 20)...)
	addr, err := AddressFrom(micheline.Bytes{Value: forged}, "")
	require.NoError(t, err)
	assert.Equal(t, "tz1Ke2h7sDdakHJQh8WX4Z372du1KChsksyU", addr.Value)

	_, err = AddressFrom("tz1notanaddress", "")
	assert.Error(t, err)

	kh, err := KeyHashFrom(micheline.Bytes{Value: forged[1:]}, "")
	require.NoError(t, err)
	assert.Equal(t, addr.Value, kh.Value)
}

func TestTimestamp(t *testing.T) {
	ts, err := TimestampFrom("2023-11-14T22:13:20Z", "")
	require.NoError(t, err)
	assert.Equal(t, int64(1_700_000_000), ts.Value.Int64())
	assert.Equal(t, "2023-11-14T22:13:20Z", ts.AsRawValue())

	fromTime, err := TimestampFrom(time.Unix(1_700_000_000, 0), "")
	require.NoError(t, err)
	assert.Equal(t, 0, ts.Value.Cmp(fromTime.Value))

	_, err = TimestampFrom("yesterday", "")
	assert.ErrorIs(t, err, ErrInvalidValue)
}
