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
	"context"
	"fmt"
	"net/http"

	"github.com/blinklabs-io/airlock/ethereum"
	"github.com/blinklabs-io/airlock/ethereum/rpc"
	"github.com/spf13/cobra"
)

// ethRun builds an RPC client from the config and runs fn with a context
// bounded by the RPC timeout.
func ethRun(
	cmd *cobra.Command,
	fn func(ctx context.Context, client *rpc.Client) error,
) error {
	cfg := configFromCommand(cmd)
	logger := commonRun()
	timeout, err := cfg.RpcTimeoutDuration()
	if err != nil {
		return err
	}
	if cfg.Tracing {
		shutdown, err := setupTracing(cmd.Context(), cfg.TracingStdout)
		if err != nil {
			return err
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				logger.Warn(
					"failed to flush traces",
					"error", err,
					"component", programName,
				)
			}
		}()
	}
	client := rpc.NewClient(
		cfg.EthereumRpcUrl,
		rpc.WithHTTPClient(&http.Client{Timeout: timeout}),
		rpc.WithLogger(logger),
	)
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()
	return fn(ctx, client)
}

func ethCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eth",
		Short: "Ethereum node queries",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "balance <address>",
			Short: "Show the wei balance of an address",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := ethereum.ValidateAddress(args[0]); err != nil {
					return err
				}
				return ethRun(cmd, func(ctx context.Context, client *rpc.Client) error {
					balance, err := client.FetchBalance(ctx, args[0])
					if err != nil {
						return err
					}
					fmt.Println(balance)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "nonce <address>",
			Short: "Show the next nonce of an address",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := ethereum.ValidateAddress(args[0]); err != nil {
					return err
				}
				return ethRun(cmd, func(ctx context.Context, client *rpc.Client) error {
					nonce, err := client.FetchTransactionCount(ctx, args[0])
					if err != nil {
						return err
					}
					fmt.Println(nonce)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "send <signed-tx>",
			Short: "Broadcast a signed raw transaction",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return ethRun(cmd, func(ctx context.Context, client *rpc.Client) error {
					hash, err := client.SendSignedTransaction(ctx, args[0])
					if err != nil {
						return err
					}
					fmt.Println(hash)
					return nil
				})
			},
		},
	)
	return cmd
}
