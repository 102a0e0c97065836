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

// primNames is indexed by the one-byte primitive code of the binary
// encoding. The order is fixed by the protocol.
var primNames = [...]string{
	"parameter", "storage", "code", "False", "Elt", "Left", "None", "Pair",
	"Right", "Some", "True", "Unit", "PACK", "UNPACK", "BLAKE2B", "SHA256",
	"SHA512", "ABS", "ADD", "AMOUNT", "AND", "BALANCE", "CAR", "CDR",
	"CHECK_SIGNATURE", "COMPARE", "CONCAT", "CONS", "CREATE_ACCOUNT",
	"CREATE_CONTRACT", "IMPLICIT_ACCOUNT", "DIP", "DROP", "DUP", "EDIV",
	"EMPTY_MAP", "EMPTY_SET", "EQ", "EXEC", "FAILWITH", "GE", "GET", "GT",
	"HASH_KEY", "IF", "IF_CONS", "IF_LEFT", "IF_NONE", "INT", "LAMBDA", "LE",
	"LEFT", "LOOP", "LSL", "LSR", "LT", "MAP", "MEM", "MUL", "NEG", "NEQ",
	"NIL", "NONE", "NOT", "NOW", "OR", "PAIR", "PUSH", "RIGHT", "SIZE",
	"SOME", "SOURCE", "SENDER", "SELF", "STEPS_TO_QUOTA", "SUB", "SWAP",
	"TRANSFER_TOKENS", "SET_DELEGATE", "UNIT", "UPDATE", "XOR", "ITER",
	"LOOP_LEFT", "ADDRESS", "CONTRACT", "ISNAT", "CAST", "RENAME", "bool",
	"contract", "int", "key", "key_hash", "lambda", "list", "map", "big_map",
	"nat", "option", "or", "pair", "set", "signature", "string", "bytes",
	"mutez", "timestamp", "unit", "operation", "address", "SLICE", "DIG",
	"DUG", "EMPTY_BIG_MAP", "APPLY", "chain_id", "CHAIN_ID", "LEVEL",
	"SELF_ADDRESS", "never", "NEVER", "UNPAIR", "VOTING_POWER",
	"TOTAL_VOTING_POWER", "KECCAK", "SHA3", "PAIRING_CHECK", "bls12_381_g1",
	"bls12_381_g2", "bls12_381_fr", "sapling_state",
	"sapling_transaction_deprecated", "SAPLING_EMPTY_STATE",
	"SAPLING_VERIFY_UPDATE", "ticket", "TICKET_DEPRECATED", "READ_TICKET",
	"SPLIT_TICKET", "JOIN_TICKETS", "GET_AND_UPDATE", "chest", "chest_key",
	"OPEN_CHEST", "VIEW", "view", "constant", "SUB_MUTEZ",
	"tx_rollup_l2_address", "MIN_BLOCK_TIME", "sapling_transaction", "EMIT",
	"Lambda_rec", "LAMBDA_REC", "TICKET", "BYTES", "NAT",
}

var primCodes = func() map[string]byte {
	ret := make(map[string]byte, len(primNames))
	for i, name := range primNames {
		ret[name] = byte(i)
	}
	return ret
}()

// PrimCode returns the binary code of a primitive name.
func PrimCode(name string) (byte, bool) {
	c, ok := primCodes[name]
	return c, ok
}

// PrimName returns the primitive name for a binary code.
func PrimName(code byte) (string, bool) {
	if int(code) >= len(primNames) {
		return "", false
	}
	return primNames[code], true
}
