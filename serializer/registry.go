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

package serializer

import (
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/blinklabs-io/airlock/substrate"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	opSerialize   = "serialize"
	opDeserialize = "deserialize"
)

type RegistryConfig struct {
	Logger       *slog.Logger
	PromRegistry prometheus.Registerer
}

// Registry dispatches envelopes to serializers by protocol identifier.
type Registry struct {
	mutex       sync.RWMutex
	serializers map[string]Serializer
	logger      *slog.Logger
	metrics     struct {
		operations *prometheus.CounterVec
		failures   *prometheus.CounterVec
	}
}

func NewRegistry(config RegistryConfig) *Registry {
	r := &Registry{
		serializers: make(map[string]Serializer),
	}
	if config.Logger == nil {
		// Create logger to throw away logs
		r.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	} else {
		r.logger = config.Logger
	}
	promautoFactory := promauto.With(config.PromRegistry)
	r.metrics.operations = promautoFactory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "airlock_serializer_operations_total",
			Help: "total serializer operations",
		},
		[]string{"protocol", "op"},
	)
	r.metrics.failures = promautoFactory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "airlock_serializer_failures_total",
			Help: "total failed serializer operations",
		},
		[]string{"protocol", "op"},
	)
	return r
}

// NewDefaultRegistry returns a registry holding the Cosmos, Ethereum and
// Tezos serializers plus one Substrate serializer per known network.
func NewDefaultRegistry(config RegistryConfig) *Registry {
	r := NewRegistry(config)
	r.Register(CosmosSerializer{})
	r.Register(EthereumSerializer{})
	r.Register(TezosSerializer{})
	for _, network := range []substrate.Network{substrate.Polkadot, substrate.Kusama, substrate.Westend} {
		r.Register(SubstrateSerializer{Network: network})
	}
	return r
}

// Register adds s, replacing any serializer with the same protocol.
func (r *Registry) Register(s Serializer) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.serializers[s.Protocol()] = s
}

func (r *Registry) Get(protocol string) (Serializer, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	s, ok := r.serializers[protocol]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProtocol, protocol)
	}
	return s, nil
}

// Protocols returns the registered protocol identifiers in sorted order.
func (r *Registry) Protocols() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return slices.Sorted(maps.Keys(r.serializers))
}

func (r *Registry) Serialize(protocol string, tx *UnsignedTransaction) ([]byte, error) {
	s, err := r.Get(protocol)
	if err != nil {
		return nil, err
	}
	buf, err := s.Serialize(tx)
	r.record(protocol, opSerialize, err)
	if err != nil {
		return nil, err
	}
	r.logger.Debug(
		"serialized transaction",
		"protocol", protocol,
		"bytes", len(buf),
	)
	return buf, nil
}

func (r *Registry) Deserialize(protocol string, buf []byte) (*UnsignedTransaction, error) {
	s, err := r.Get(protocol)
	if err != nil {
		return nil, err
	}
	tx, err := s.Deserialize(buf)
	r.record(protocol, opDeserialize, err)
	if err != nil {
		return nil, err
	}
	r.logger.Debug(
		"deserialized transaction",
		"protocol", protocol,
		"bytes", len(buf),
	)
	return tx, nil
}

func (r *Registry) record(protocol, op string, err error) {
	r.metrics.operations.WithLabelValues(protocol, op).Inc()
	if err != nil {
		r.metrics.failures.WithLabelValues(protocol, op).Inc()
		r.logger.Warn(
			fmt.Sprintf("%s failed", op),
			"protocol", protocol,
			"error", err,
		)
	}
}
