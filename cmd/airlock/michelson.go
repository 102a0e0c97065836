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

package main

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/blinklabs-io/airlock/tezos"
	"github.com/blinklabs-io/airlock/tezos/micheline"
	"github.com/blinklabs-io/airlock/tezos/michelson"
	"github.com/spf13/cobra"
)

type packRequest struct {
	Type  json.RawMessage `json:"type"`
	Value json.RawMessage `json:"value"`
}

type packResult struct {
	Packed   string          `json:"packed"`
	ExprHash string          `json:"exprHash"`
	Value    json.RawMessage `json:"value"`
}

// packValue types the value of req, which may be Micheline JSON or a plain
// JSON value, and packs it.
func packValue(data []byte) (*packResult, error) {
	var req packRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("parsing request: %w", err)
	}
	if len(req.Type) == 0 || len(req.Value) == 0 {
		return nil, errors.New("request needs both type and value")
	}
	typ, err := micheline.Unmarshal(req.Type)
	if err != nil {
		return nil, fmt.Errorf("parsing type: %w", err)
	}
	var typed michelson.Type
	if node, err := micheline.Unmarshal(req.Value); err == nil {
		typed, err = michelson.FromMicheline(node, typ)
		if err != nil {
			return nil, err
		}
	} else {
		var raw any
		dec := json.NewDecoder(bytes.NewReader(req.Value))
		dec.UseNumber()
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("parsing value: %w", err)
		}
		typed, err = michelson.FromValue(raw, typ)
		if err != nil {
			return nil, err
		}
	}
	node := typed.ToMicheline()
	packed, err := micheline.Pack(node)
	if err != nil {
		return nil, err
	}
	value, err := micheline.Marshal(node)
	if err != nil {
		return nil, err
	}
	return &packResult{
		Packed:   hex.EncodeToString(packed),
		ExprHash: tezos.ExprHash(packed),
		Value:    value,
	}, nil
}

func michelsonCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "michelson",
		Short: "Michelson value helpers",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "pack <json>",
		Short: `Pack a typed value given as {"type": ..., "value": ...}`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			commonRun()
			res, err := packValue([]byte(args[0]))
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(res, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	})
	return cmd
}
