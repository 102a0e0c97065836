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

package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/blinklabs-io/airlock/ethereum/rpc"
	"github.com/blinklabs-io/airlock/serializer"
	"github.com/blinklabs-io/airlock/substrate"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

type ctxKey string

const configContextKey ctxKey = "airlock.config"

const DefaultRpcTimeout = "30s"

func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configContextKey, cfg)
}

func FromContext(ctx context.Context) *Config {
	cfg, ok := ctx.Value(configContextKey).(*Config)
	if !ok {
		return nil
	}
	return cfg
}

type tempConfig struct {
	Config yaml.Node `yaml:"config,omitempty"`
}

type Config struct {
	Callback         string `yaml:"callback"                                  split_words:"true"`
	SubstrateNetwork string `yaml:"substrateNetwork"                          split_words:"true"`
	EthereumRpcUrl   string `yaml:"ethereumRpcUrl"   envconfig:"ETHEREUM_RPC_URL"`
	RpcTimeout       string `yaml:"rpcTimeout"                                split_words:"true"`
	MetricsEnabled   bool   `yaml:"metricsEnabled"                            split_words:"true"`
	Tracing          bool   `yaml:"tracing"                                   split_words:"true"`
	TracingStdout    bool   `yaml:"tracingStdout"                             split_words:"true"`
}

// RpcTimeoutDuration parses RpcTimeout.
func (c *Config) RpcTimeoutDuration() (time.Duration, error) {
	d, err := time.ParseDuration(c.RpcTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid rpcTimeout %q: %w", c.RpcTimeout, err)
	}
	return d, nil
}

// Network returns the configured Substrate network.
func (c *Config) Network() (substrate.Network, error) {
	return substrate.NetworkByName(c.SubstrateNetwork)
}

func defaultConfig() *Config {
	return &Config{
		Callback:         serializer.DefaultCallback,
		SubstrateNetwork: substrate.Polkadot.Name,
		EthereumRpcUrl:   rpc.DefaultURL,
		RpcTimeout:       DefaultRpcTimeout,
		MetricsEnabled:   false,
	}
}

var globalConfig = defaultConfig()

func LoadConfig(configFile string) (*Config, error) {
	// Load config file as YAML if provided
	if configFile == "" {
		// Check for config file in this path: ~/.airlock/airlock.yaml
		if homeDir, err := os.UserHomeDir(); err == nil {
			userPath := filepath.Join(homeDir, ".airlock", "airlock.yaml")
			if _, err := os.Stat(userPath); err == nil {
				configFile = userPath
			}
		}

		// Try to check for /etc/airlock/airlock.yaml if still not found
		if configFile == "" {
			systemPath := "/etc/airlock/airlock.yaml"
			if _, err := os.Stat(systemPath); err == nil {
				configFile = systemPath
			}
		}
	}

	if configFile != "" {
		buf, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		var tempCfg tempConfig
		if err := yaml.Unmarshal(buf, &tempCfg); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
		if !tempCfg.Config.IsZero() {
			// Overlay the config section onto existing defaults
			if err := tempCfg.Config.Decode(globalConfig); err != nil {
				return nil, fmt.Errorf("error parsing config section: %w", err)
			}
		} else if err := yaml.Unmarshal(buf, globalConfig); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}
	// Process environment variables
	if err := envconfig.Process("airlock", globalConfig); err != nil {
		return nil, fmt.Errorf("error processing environment: %+w", err)
	}

	if globalConfig.Callback == "" {
		globalConfig.Callback = serializer.DefaultCallback
	}
	if _, err := globalConfig.Network(); err != nil {
		return nil, fmt.Errorf("invalid substrateNetwork: %w", err)
	}
	if _, err := globalConfig.RpcTimeoutDuration(); err != nil {
		return nil, err
	}
	return globalConfig, nil
}

func GetConfig() *Config {
	return globalConfig
}
