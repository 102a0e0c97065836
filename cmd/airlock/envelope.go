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
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/blinklabs-io/airlock/cosmos"
	"github.com/blinklabs-io/airlock/ethereum"
	"github.com/blinklabs-io/airlock/internal/config"
	"github.com/blinklabs-io/airlock/serializer"
	"github.com/blinklabs-io/airlock/substrate"
	"github.com/blinklabs-io/airlock/tezos"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// envelopeDoc is the JSON form of an unsigned transaction envelope.
type envelopeDoc struct {
	PublicKey   string          `json:"publicKey"`
	Callback    string          `json:"callback,omitempty"`
	Transaction json.RawMessage `json:"transaction"`
}

type coinDoc struct {
	Denom  string          `json:"denom"`
	Amount decimal.Decimal `json:"amount"`
}

type cosmosMessageDoc struct {
	Type             string    `json:"type"`
	FromAddress      string    `json:"fromAddress,omitempty"`
	ToAddress        string    `json:"toAddress,omitempty"`
	DelegatorAddress string    `json:"delegatorAddress,omitempty"`
	ValidatorAddress string    `json:"validatorAddress,omitempty"`
	Amount           []coinDoc `json:"amount"`
}

type cosmosTransactionDoc struct {
	Messages []cosmosMessageDoc `json:"messages"`
	Fee      struct {
		Amount []coinDoc        `json:"amount"`
		Gas    decimal.Decimal `json:"gas"`
	} `json:"fee"`
	Memo          string `json:"memo"`
	ChainID       string `json:"chainId"`
	AccountNumber string `json:"accountNumber"`
	Sequence      string `json:"sequence"`
}

type ethereumTransactionDoc struct {
	Nonce    string `json:"nonce"`
	GasPrice string `json:"gasPrice"`
	GasLimit string `json:"gasLimit"`
	To       string `json:"to"`
	Value    string `json:"value"`
	ChainID  uint64 `json:"chainId"`
	Data     string `json:"data"`
}

type tezosTransactionDoc struct {
	BinaryTransaction string `json:"binaryTransaction"`
}

type substrateTransactionDoc struct {
	Encoded string `json:"encoded"`
	Payload string `json:"payload"`
}

// Cosmos message type names in JSON documents
const (
	cosmosSend       = "send"
	cosmosDelegate   = "delegate"
	cosmosUndelegate = "undelegate"
)

func coinsFromDoc(docs []coinDoc) []cosmos.Coin {
	coins := make([]cosmos.Coin, len(docs))
	for i, d := range docs {
		coins[i] = cosmos.Coin{Denom: d.Denom, Amount: d.Amount}
	}
	return coins
}

func coinsToDoc(coins []cosmos.Coin) []coinDoc {
	docs := make([]coinDoc, len(coins))
	for i, c := range coins {
		docs[i] = coinDoc{Denom: c.Denom, Amount: c.Amount}
	}
	return docs
}

func (d *cosmosTransactionDoc) transaction() (*cosmos.Transaction, error) {
	tx := &cosmos.Transaction{
		Fee: cosmos.Fee{
			Amount: coinsFromDoc(d.Fee.Amount),
			Gas:    d.Fee.Gas,
		},
		Memo:          d.Memo,
		ChainID:       d.ChainID,
		AccountNumber: d.AccountNumber,
		Sequence:      d.Sequence,
	}
	for i, m := range d.Messages {
		switch m.Type {
		case cosmosSend:
			tx.Messages = append(tx.Messages, &cosmos.SendMessage{
				FromAddress: m.FromAddress,
				ToAddress:   m.ToAddress,
				Amount:      coinsFromDoc(m.Amount),
			})
		case cosmosDelegate, cosmosUndelegate:
			if len(m.Amount) != 1 {
				return nil, fmt.Errorf("message %d: %s needs exactly one coin", i, m.Type)
			}
			tx.Messages = append(tx.Messages, &cosmos.DelegateMessage{
				DelegatorAddress: m.DelegatorAddress,
				ValidatorAddress: m.ValidatorAddress,
				Amount:           coinsFromDoc(m.Amount)[0],
				Undelegate:       m.Type == cosmosUndelegate,
			})
		default:
			return nil, fmt.Errorf("message %d: unknown type %q", i, m.Type)
		}
	}
	return tx, nil
}

func cosmosDoc(tx *cosmos.Transaction) *cosmosTransactionDoc {
	d := &cosmosTransactionDoc{
		Memo:          tx.Memo,
		ChainID:       tx.ChainID,
		AccountNumber: tx.AccountNumber,
		Sequence:      tx.Sequence,
	}
	d.Fee.Amount = coinsToDoc(tx.Fee.Amount)
	d.Fee.Gas = tx.Fee.Gas
	for _, msg := range tx.Messages {
		switch m := msg.(type) {
		case *cosmos.SendMessage:
			d.Messages = append(d.Messages, cosmosMessageDoc{
				Type:        cosmosSend,
				FromAddress: m.FromAddress,
				ToAddress:   m.ToAddress,
				Amount:      coinsToDoc(m.Amount),
			})
		case *cosmos.DelegateMessage:
			msgType := cosmosDelegate
			if m.Undelegate {
				msgType = cosmosUndelegate
			}
			d.Messages = append(d.Messages, cosmosMessageDoc{
				Type:             msgType,
				DelegatorAddress: m.DelegatorAddress,
				ValidatorAddress: m.ValidatorAddress,
				Amount:           coinsToDoc([]cosmos.Coin{m.Amount}),
			})
		}
	}
	return d
}

// parseEnvelope builds the unsigned transaction for s from its JSON form.
func parseEnvelope(s serializer.Serializer, data []byte) (*serializer.UnsignedTransaction, error) {
	var doc envelopeDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing envelope: %w", err)
	}
	ret := &serializer.UnsignedTransaction{
		PublicKey: doc.PublicKey,
		Callback:  doc.Callback,
	}
	var err error
	switch s.(type) {
	case serializer.CosmosSerializer:
		var txDoc cosmosTransactionDoc
		if err = json.Unmarshal(doc.Transaction, &txDoc); err == nil {
			ret.Transaction, err = txDoc.transaction()
		}
	case serializer.EthereumSerializer:
		var txDoc ethereumTransactionDoc
		if err = json.Unmarshal(doc.Transaction, &txDoc); err == nil {
			ret.Transaction = &ethereum.RawEthereumTransaction{
				Nonce:    txDoc.Nonce,
				GasPrice: txDoc.GasPrice,
				GasLimit: txDoc.GasLimit,
				To:       txDoc.To,
				Value:    txDoc.Value,
				ChainID:  txDoc.ChainID,
				Data:     txDoc.Data,
			}
		}
	case serializer.TezosSerializer:
		var txDoc tezosTransactionDoc
		if err = json.Unmarshal(doc.Transaction, &txDoc); err == nil {
			ret.Transaction = &tezos.RawTezosTransaction{BinaryTransaction: txDoc.BinaryTransaction}
		}
	case serializer.SubstrateSerializer:
		var txDoc substrateTransactionDoc
		if err = json.Unmarshal(doc.Transaction, &txDoc); err == nil {
			ret.Transaction = &substrate.RawSubstrateTransaction{
				Encoded: txDoc.Encoded,
				Payload: txDoc.Payload,
			}
		}
	default:
		return nil, fmt.Errorf("%w: %s", serializer.ErrUnknownProtocol, s.Protocol())
	}
	if err != nil {
		return nil, fmt.Errorf("parsing %s transaction: %w", s.Protocol(), err)
	}
	return ret, nil
}

// formatEnvelope returns the JSON form of tx, the inverse of parseEnvelope.
func formatEnvelope(tx *serializer.UnsignedTransaction) ([]byte, error) {
	var txDoc any
	switch t := tx.Transaction.(type) {
	case *cosmos.Transaction:
		txDoc = cosmosDoc(t)
	case *ethereum.RawEthereumTransaction:
		txDoc = ethereumTransactionDoc(*t)
	case *tezos.RawTezosTransaction:
		txDoc = tezosTransactionDoc(*t)
	case *substrate.RawSubstrateTransaction:
		txDoc = substrateTransactionDoc(*t)
	default:
		return nil, fmt.Errorf("%w: %T", serializer.ErrTransactionType, tx.Transaction)
	}
	txData, err := json.Marshal(txDoc)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(
		envelopeDoc{
			PublicKey:   tx.PublicKey,
			Callback:    tx.Callback,
			Transaction: txData,
		},
		"",
		"  ",
	)
}

// newRegistry returns the default registry, with a metrics registry when
// metrics are enabled.
func newRegistry(cfg *config.Config, logger *slog.Logger) (*serializer.Registry, *prometheus.Registry) {
	var promReg *prometheus.Registry
	regCfg := serializer.RegistryConfig{Logger: logger}
	if cfg.MetricsEnabled {
		promReg = prometheus.NewRegistry()
		regCfg.PromRegistry = promReg
	}
	return serializer.NewDefaultRegistry(regCfg), promReg
}

// logMetrics writes every gathered counter to logger.
func logMetrics(logger *slog.Logger, promReg *prometheus.Registry) {
	if promReg == nil {
		return
	}
	families, err := promReg.Gather()
	if err != nil {
		logger.Error(fmt.Sprintf("failed to gather metrics: %s", err))
		return
	}
	for _, family := range families {
		for _, metric := range family.GetMetric() {
			attrs := []any{"component", programName}
			for _, label := range metric.GetLabel() {
				attrs = append(attrs, label.GetName(), label.GetValue())
			}
			attrs = append(attrs, "value", metric.GetCounter().GetValue())
			logger.Info(family.GetName(), attrs...)
		}
	}
}

func encodeCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "encode <protocol> <json-file>",
		Short: "Encode an unsigned transaction into an offline envelope",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configFromCommand(cmd)
			logger := commonRun()
			registry, promReg := newRegistry(cfg, logger)
			defer logMetrics(logger, promReg)

			s, err := registry.Get(args[0])
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}
			tx, err := parseEnvelope(s, data)
			if err != nil {
				return err
			}
			if tx.Callback == "" {
				tx.Callback = cfg.Callback
			}
			buf, err := registry.Serialize(args[0], tx)
			if err != nil {
				return err
			}
			switch output {
			case "string":
				fmt.Println(serializer.EncodeString(buf))
			case "url":
				fmt.Println(serializer.ToURL(tx.Callback, buf))
			case "cbor":
				cborData, err := serializer.EncodeCBOR(buf)
				if err != nil {
					return err
				}
				fmt.Println(hex.EncodeToString(cborData))
			default:
				return fmt.Errorf("unknown output format %q", output)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "string", "output format: string, url or cbor")
	return cmd
}

// envelopeBytes accepts the string, URL or hex CBOR form of an envelope.
func envelopeBytes(input string) ([]byte, error) {
	input = strings.TrimSpace(input)
	if strings.Contains(input, "://") {
		return serializer.FromURL(input)
	}
	if cborData, err := hex.DecodeString(input); err == nil {
		return serializer.DecodeCBOR(cborData)
	}
	return serializer.DecodeString(input)
}

func decodeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "decode <protocol> <string>",
		Short: "Decode an offline envelope from its string, URL or hex CBOR form",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configFromCommand(cmd)
			logger := commonRun()
			registry, promReg := newRegistry(cfg, logger)
			defer logMetrics(logger, promReg)

			buf, err := envelopeBytes(args[1])
			if err != nil {
				return err
			}
			tx, err := registry.Deserialize(args[0], buf)
			if err != nil {
				return err
			}
			out, err := formatEnvelope(tx)
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}
}
