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

package tezos

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/blinklabs-io/airlock/tezos/micheline"
	"golang.org/x/crypto/blake2b"
)

var (
	ErrUnsupportedOperation = errors.New("tezos: unsupported operation")
	ErrInvalidEntrypoint    = errors.New("tezos: invalid entrypoint")
)

const (
	tagReveal      = 107
	tagTransaction = 108
	tagDelegation  = 110

	// Generic operation watermark
	operationWatermark = 0x03

	branchLength = 32

	entrypointNamed = 0xff
	// Longest entrypoint name the protocol accepts
	maxEntrypointLength = 31
)

var opKinds = map[byte]string{
	tagReveal:      "reveal",
	tagTransaction: "transaction",
	tagDelegation:  "delegation",
}

// Entrypoints with a reserved one-byte encoding.
var entrypointTags = []string{
	"default",
	"root",
	"do",
	"set_delegate",
	"remove_delegate",
	"deposit",
	"stake",
	"unstake",
	"finalize_unstake",
	"set_delegate_parameters",
}

// Parameters of a contract call.
type Parameters struct {
	Entrypoint string
	Value      micheline.Node
}

// Transaction is a transaction manager operation.
type Transaction struct {
	Source       string
	Fee          *big.Int
	Counter      *big.Int
	GasLimit     *big.Int
	StorageLimit *big.Int
	Amount       *big.Int
	Destination  string
	Parameters   *Parameters
}

// OperationKind returns "transaction".
func (*Transaction) OperationKind() string { return opKinds[tagTransaction] }

// ForgeOperation forges a group of transactions under branch.
func ForgeOperation(branch string, ops []*Transaction) ([]byte, error) {
	branchHash, err := DecodeBase58Check(branch, PrefixBlock)
	if err != nil {
		return nil, fmt.Errorf("decoding branch: %w", err)
	}
	var buf bytes.Buffer
	buf.Write(branchHash)
	for i, op := range ops {
		if err := op.forge(&buf); err != nil {
			return nil, fmt.Errorf("forging operation %d: %w", i, err)
		}
	}
	return buf.Bytes(), nil
}

func (t *Transaction) forge(buf *bytes.Buffer) error {
	source, err := ForgeKeyHash(t.Source)
	if err != nil {
		return fmt.Errorf("source: %w", err)
	}
	dest, err := ForgeAddress(t.Destination)
	if err != nil {
		return fmt.Errorf("destination: %w", err)
	}
	buf.WriteByte(tagTransaction)
	buf.Write(source)
	for _, v := range []*big.Int{t.Fee, t.Counter, t.GasLimit, t.StorageLimit, t.Amount} {
		if v == nil {
			v = new(big.Int)
		}
		z, err := micheline.EncodeNatZarith(v)
		if err != nil {
			return err
		}
		buf.Write(z)
	}
	buf.Write(dest)
	if t.Parameters == nil {
		buf.WriteByte(0x00)
		return nil
	}
	buf.WriteByte(0xff)
	if err := forgeEntrypoint(buf, t.Parameters.Entrypoint); err != nil {
		return err
	}
	value, err := micheline.Forge(t.Parameters.Value)
	if err != nil {
		return fmt.Errorf("parameters: %w", err)
	}
	var l [4]byte
	binary.BigEndian.PutUint32(l[:], uint32(len(value)))
	buf.Write(l[:])
	buf.Write(value)
	return nil
}

func forgeEntrypoint(buf *bytes.Buffer, name string) error {
	if name == "" {
		name = "default"
	}
	for i, reserved := range entrypointTags {
		if reserved == name {
			buf.WriteByte(byte(i))
			return nil
		}
	}
	if len(name) > maxEntrypointLength {
		return fmt.Errorf(
			"%w: %d bytes exceeds %d",
			ErrInvalidEntrypoint,
			len(name),
			maxEntrypointLength,
		)
	}
	buf.WriteByte(entrypointNamed)
	buf.WriteByte(byte(len(name)))
	buf.WriteString(name)
	return nil
}

// UnforgeOperation decodes a forged group of transactions. Other operation
// kinds are rejected.
func UnforgeOperation(b []byte) (string, []*Transaction, error) {
	if len(b) < branchLength {
		return "", nil, fmt.Errorf("%w: operation shorter than branch", ErrInvalidLength)
	}
	branch, err := EncodeBase58Check(PrefixBlock, b[:branchLength])
	if err != nil {
		return "", nil, err
	}
	r := &opReader{data: b, pos: branchLength}
	var ops []*Transaction
	for r.pos < len(r.data) {
		tag, err := r.readByte()
		if err != nil {
			return "", nil, err
		}
		if tag != tagTransaction {
			kind, ok := opKinds[tag]
			if !ok {
				kind = fmt.Sprintf("tag %d", tag)
			}
			return "", nil, fmt.Errorf("%w: %s", ErrUnsupportedOperation, kind)
		}
		op, err := r.transaction()
		if err != nil {
			return "", nil, err
		}
		ops = append(ops, op)
	}
	return branch, ops, nil
}

type opReader struct {
	data []byte
	pos  int
}

func (r *opReader) readByte() (byte, error) {
	b, err := r.readBytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *opReader) readBytes(n int) ([]byte, error) {
	if n < 0 || n > len(r.data)-r.pos {
		return nil, fmt.Errorf("%w: truncated operation at pos %d", ErrInvalidLength, r.pos)
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *opReader) nat() (*big.Int, error) {
	v, n, err := micheline.DecodeNatZarith(r.data[r.pos:])
	if err != nil {
		return nil, err
	}
	r.pos += n
	return v, nil
}

func (r *opReader) transaction() (*Transaction, error) {
	source, err := r.readBytes(ForgedKeyHashLength)
	if err != nil {
		return nil, err
	}
	t := &Transaction{}
	if t.Source, err = UnforgeKeyHash(source); err != nil {
		return nil, err
	}
	for _, dst := range []**big.Int{&t.Fee, &t.Counter, &t.GasLimit, &t.StorageLimit, &t.Amount} {
		if *dst, err = r.nat(); err != nil {
			return nil, err
		}
	}
	dest, err := r.readBytes(ForgedAddressLength)
	if err != nil {
		return nil, err
	}
	if t.Destination, err = UnforgeAddress(dest); err != nil {
		return nil, err
	}
	hasParams, err := r.readByte()
	if err != nil {
		return nil, err
	}
	if hasParams == 0x00 {
		return t, nil
	}
	entrypoint, err := r.entrypoint()
	if err != nil {
		return nil, err
	}
	l, err := r.readBytes(4)
	if err != nil {
		return nil, err
	}
	raw, err := r.readBytes(int(binary.BigEndian.Uint32(l)))
	if err != nil {
		return nil, err
	}
	value, used, err := micheline.Unforge(raw)
	if err != nil {
		return nil, fmt.Errorf("parameters: %w", err)
	}
	if used != len(raw) {
		return nil, fmt.Errorf("%w: parameter value has trailing bytes", ErrInvalidLength)
	}
	t.Parameters = &Parameters{Entrypoint: entrypoint, Value: value}
	return t, nil
}

func (r *opReader) entrypoint() (string, error) {
	tag, err := r.readByte()
	if err != nil {
		return "", err
	}
	if tag != entrypointNamed {
		if int(tag) >= len(entrypointTags) {
			return "", fmt.Errorf("%w: entrypoint tag %d", ErrUnsupportedOperation, tag)
		}
		return entrypointTags[tag], nil
	}
	n, err := r.readByte()
	if err != nil {
		return "", err
	}
	if n > maxEntrypointLength {
		return "", fmt.Errorf("%w: length %d", ErrInvalidEntrypoint, n)
	}
	name, err := r.readBytes(int(n))
	if err != nil {
		return "", err
	}
	return string(name), nil
}

// RawTezosTransaction is the offline form of a Tezos operation: the forged
// operation bytes as hex.
type RawTezosTransaction struct {
	BinaryTransaction string
}

// NewRawTransaction forges ops under branch.
func NewRawTransaction(branch string, ops ...*Transaction) (*RawTezosTransaction, error) {
	forged, err := ForgeOperation(branch, ops)
	if err != nil {
		return nil, err
	}
	return &RawTezosTransaction{BinaryTransaction: hex.EncodeToString(forged)}, nil
}

// Bytes decodes the forged operation.
func (t *RawTezosTransaction) Bytes() ([]byte, error) {
	return hex.DecodeString(strings.TrimPrefix(t.BinaryTransaction, "0x"))
}

// Operations unforges the transactions contained in t.
func (t *RawTezosTransaction) Operations() (string, []*Transaction, error) {
	b, err := t.Bytes()
	if err != nil {
		return "", nil, err
	}
	return UnforgeOperation(b)
}

// SigningBytes returns the watermarked operation.
func (t *RawTezosTransaction) SigningBytes() ([]byte, error) {
	b, err := t.Bytes()
	if err != nil {
		return nil, err
	}
	return append([]byte{operationWatermark}, b...), nil
}

// SigningHash returns the blake2b-256 digest of SigningBytes, which is what
// the signer signs.
func (t *RawTezosTransaction) SigningHash() ([]byte, error) {
	b, err := t.SigningBytes()
	if err != nil {
		return nil, err
	}
	sum := blake2b.Sum256(b)
	return sum[:], nil
}

// OperationHash returns the o... hash of the operation once signed.
func (t *RawTezosTransaction) OperationHash(signature []byte) (string, error) {
	b, err := t.Bytes()
	if err != nil {
		return "", err
	}
	sum := blake2b.Sum256(append(b, signature...))
	return EncodeBase58Check(PrefixOp, sum[:])
}
