// Copyright 2025 The Outline Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package rawsocket

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"gopkg.in/yaml.v3"
)

// DefaultBufferSize is the size of the receive buffer when [Config].BufferSize is zero.
const DefaultBufferSize = 4096

// Config describes the raw socket to open. The zero value opens an IPv4 socket for protocol 0 with a
// [DefaultBufferSize] receive buffer.
type Config struct {
	Protocol      Protocol      `yaml:"protocol"`
	AddressFamily AddressFamily `yaml:"addressFamily"`

	// BufferSize is the capacity of the receive buffer. Longer packets are truncated.
	BufferSize int `yaml:"bufferSize"`
}

func (c Config) withDefaults() Config {
	if c.AddressFamily == 0 {
		c.AddressFamily = IPv4
	}
	if c.BufferSize == 0 {
		c.BufferSize = DefaultBufferSize
	}
	return c
}

func (c Config) validate() error {
	if _, ok := AddressFamilies.Name(c.AddressFamily); !ok {
		return &ValidationError{Field: "address family", Err: fmt.Errorf("unsupported value %d", int(c.AddressFamily))}
	}
	if c.Protocol < 0 || c.Protocol > 255 {
		return &ValidationError{Field: "protocol", Err: fmt.Errorf("%d is not an IP protocol number", int(c.Protocol))}
	}
	if c.BufferSize < 0 {
		return &ValidationError{Field: "buffer size", Err: fmt.Errorf("%d must not be negative", c.BufferSize)}
	}
	return nil
}

// LoadConfig parses a YAML config such as:
//
//	protocol: ICMPv6
//	addressFamily: IPv6
//	bufferSize: 8192
//
// Protocols and families may be given by name or number. Unknown fields are rejected. Defaults are not applied.
func LoadConfig(data []byte) (Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// Option configures a [Socket] in [NewSocket].
type Option func(*Socket) error

// WithHandler sets the [Handler] that receives the socket notifications. It must not be nil.
func WithHandler(h Handler) Option {
	return func(s *Socket) error {
		if h == nil {
			return errors.New("handler must not be nil")
		}
		s.handler = h
		return nil
	}
}

// WithTransportOpener replaces [OpenTransport] as the way to open the raw transport.
func WithTransportOpener(open Opener) Option {
	return func(s *Socket) error {
		if open == nil {
			return errors.New("opener must not be nil")
		}
		s.open = open
		return nil
	}
}

// WithLogger sets the logger for debug output. The default is [slog.Default].
func WithLogger(logger *slog.Logger) Option {
	return func(s *Socket) error {
		if logger == nil {
			return errors.New("logger must not be nil")
		}
		s.logger = logger
		return nil
	}
}
