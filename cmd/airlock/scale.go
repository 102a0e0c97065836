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
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/blinklabs-io/airlock/scale"
	"github.com/blinklabs-io/airlock/substrate/metadata"
	"github.com/spf13/cobra"
)

func scaleCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scale",
		Short: "SCALE decoding helpers",
	}
	cmd.AddCommand(scaleCompactCommand())
	cmd.AddCommand(scaleMetadataCommand())
	return cmd
}

func scaleCompactCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "compact <hex>",
		Short: "Decode a compact encoded integer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configFromCommand(cmd)
			commonRun()
			d, err := scale.NewDecoderFromHex(cfg.SubstrateNetwork, nil, args[0])
			if err != nil {
				return err
			}
			res, err := d.DecodeNextCompactInt()
			if err != nil {
				return err
			}
			fmt.Printf("%s (%d bytes)\n", res.Decoded, res.BytesDecoded)
			return nil
		},
	}
}

// writeMetadataSummary lists the pallets of m with their call variants.
func writeMetadataSummary(w io.Writer, m *metadata.Metadata) error {
	if _, err := fmt.Fprintf(
		w,
		"metadata v%d: %d types, %d pallets, extrinsic v%d\n",
		m.Version,
		len(m.Registry.Types),
		len(m.Pallets),
		m.Extrinsic.Version,
	); err != nil {
		return err
	}
	for _, pallet := range m.Pallets {
		var calls []string
		if pallet.Calls != nil {
			ty, err := m.Registry.Lookup(pallet.Calls.Type)
			if err != nil {
				return err
			}
			for _, v := range ty.Def.Variants {
				calls = append(calls, v.Name)
			}
		}
		if _, err := fmt.Fprintf(
			w,
			"%3d %s [%s]\n",
			pallet.Index,
			pallet.Name,
			strings.Join(calls, ", "),
		); err != nil {
			return err
		}
	}
	return nil
}

func scaleMetadataCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "metadata <hex-file>",
		Short: "Decode a hex encoded V14 metadata blob and list its pallets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configFromCommand(cmd)
			logger := commonRun()
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			m, err := metadata.DecodeHex(
				cfg.SubstrateNetwork,
				nil,
				strings.TrimSpace(string(data)),
			)
			if err != nil {
				return err
			}
			logger.Debug(
				"decoded metadata",
				"component", programName,
				"pallets", len(m.Pallets),
			)
			return writeMetadataSummary(os.Stdout, m)
		},
	}
}
