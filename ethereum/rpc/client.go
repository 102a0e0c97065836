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

// Package rpc is a minimal Ethereum JSON-RPC client for the few calls a
// wallet needs around an offline transaction.
package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/blinklabs-io/airlock/ethereum"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/blinklabs-io/airlock/ethereum/rpc"

// DefaultURL is the AirGap Ethereum RPC proxy.
const DefaultURL = "https://eth-rpc-proxy.airgap.prod.gke.papers.tech"

// Block tags
const (
	BlockEarliest = "earliest"
	BlockLatest   = "latest"
	BlockPending  = "pending"
)

// maxResponseBytes limits JSON-RPC responses to 1 MiB.
const maxResponseBytes = 1 << 20

// Body is a JSON-RPC 2.0 request.
type Body struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
	ID      int    `json:"id"`
}

func NewBody(method string, params ...any) Body {
	if params == nil {
		params = []any{}
	}
	return Body{JSONRPC: "2.0", Method: method, Params: params, ID: 1}
}

// RPCError is an error object returned by the node.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

type response struct {
	Result json.RawMessage `json:"result"`
	Error  *RPCError       `json:"error"`
}

// callObject is the transaction argument of eth_call and eth_estimateGas.
type callObject struct {
	From string `json:"from,omitempty"`
	To   string `json:"to"`
	Data string `json:"data"`
}

// Client is a JSON-RPC client for an Ethereum node.
type Client struct {
	url        string
	httpClient *http.Client
	logger     *slog.Logger
}

// ClientOption is a functional option for configuring a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom *http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a client for the node at url, or DefaultURL when url
// is empty.
func NewClient(url string, opts ...ClientOption) *Client {
	if url == "" {
		url = DefaultURL
	}
	c := &Client{
		url: strings.TrimRight(url, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: slog.New(slog.NewJSONHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchBalance returns the wei balance of address at the latest block.
func (c *Client) FetchBalance(
	ctx context.Context,
	address string,
) (*big.Int, error) {
	return c.quantity(ctx, NewBody("eth_getBalance", address, BlockLatest))
}

// FetchTransactionCount returns the nonce to use for the next transaction
// from address.
func (c *Client) FetchTransactionCount(
	ctx context.Context,
	address string,
) (uint64, error) {
	count, err := c.quantity(
		ctx,
		NewBody("eth_getTransactionCount", address, BlockLatest),
	)
	if err != nil {
		return 0, err
	}
	if !count.IsUint64() {
		return 0, fmt.Errorf("transaction count %s overflows uint64", count)
	}
	return count.Uint64(), nil
}

// SendSignedTransaction broadcasts a signed raw transaction and returns
// its hash.
func (c *Client) SendSignedTransaction(
	ctx context.Context,
	rawTx string,
) (string, error) {
	var hash string
	if err := c.call(ctx, NewBody("eth_sendRawTransaction", rawTx), &hash); err != nil {
		return "", err
	}
	return hash, nil
}

// CallBalanceOf returns the token balance of address in contract.
func (c *Client) CallBalanceOf(
	ctx context.Context,
	contract string,
	address string,
) (*big.Int, error) {
	data := ethereum.BalanceOf{Address: address}.ABIEncoded()
	return c.quantity(
		ctx,
		NewBody("eth_call", callObject{To: contract, Data: data}, BlockLatest),
	)
}

// EstimateTransferGas estimates the gas of a token transfer of amount (a
// hex quantity) from one address to another.
func (c *Client) EstimateTransferGas(
	ctx context.Context,
	contract string,
	from string,
	to string,
	amount string,
) (uint64, error) {
	data := ethereum.Transfer{Recipient: to, Amount: amount}.ABIEncoded()
	gas, err := c.quantity(
		ctx,
		NewBody(
			"eth_estimateGas",
			callObject{From: from, To: contract, Data: data},
			BlockLatest,
		),
	)
	if err != nil {
		return 0, err
	}
	if !gas.IsUint64() {
		return 0, fmt.Errorf("gas estimate %s overflows uint64", gas)
	}
	return gas.Uint64(), nil
}

func (c *Client) quantity(ctx context.Context, body Body) (*big.Int, error) {
	var result string
	if err := c.call(ctx, body, &result); err != nil {
		return nil, err
	}
	v, err := parseQuantity(result)
	if err != nil {
		return nil, fmt.Errorf("%s: decoding result %q: %w", body.Method, result, err)
	}
	return v, nil
}

// parseQuantity accepts the zero-padded 32-byte words eth_call returns as
// well as canonical quantities.
func parseQuantity(s string) (*big.Int, error) {
	if v, err := hexutil.DecodeBig(s); err == nil {
		return v, nil
	}
	b, err := hexutil.Decode(s)
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(b), nil
}

// call posts body and decodes the result into out, inside a client span.
func (c *Client) call(ctx context.Context, body Body, out any) error {
	ctx, span := otel.Tracer(tracerName).Start(
		ctx,
		"rpc "+body.Method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("rpc.system", "jsonrpc"),
			attribute.String("rpc.method", body.Method),
		),
	)
	defer span.End()
	if err := c.doCall(ctx, body, out); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

func (c *Client) doCall(ctx context.Context, body Body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}
	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.url,
		bytes.NewReader(payload),
	)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	c.logger.Debug(
		"sending rpc request",
		"component", "rpc",
		"method", body.Method,
	)
	resp, err := c.httpClient.Do(req) //nolint:gosec // URL is the configured node endpoint
	if err != nil {
		return fmt.Errorf("%s: executing request: %w", body.Method, err)
	}
	if resp == nil || resp.Body == nil {
		return errors.New("nil response from server")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf(
			"%s: unexpected status %d: %s",
			body.Method,
			resp.StatusCode,
			string(bodyBytes),
		)
	}
	var r response
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&r); err != nil {
		return fmt.Errorf("%s: decoding response: %w", body.Method, err)
	}
	if r.Error != nil {
		return fmt.Errorf("%s: %w", body.Method, r.Error)
	}
	if len(r.Result) == 0 {
		return fmt.Errorf("%s: response has no result", body.Method)
	}
	if err := json.Unmarshal(r.Result, out); err != nil {
		return fmt.Errorf("%s: decoding result: %w", body.Method, err)
	}
	return nil
}
