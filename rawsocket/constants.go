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
	"fmt"
	"strconv"
)

// Entry is a named constant.
type Entry[T ~int] struct {
	Name  string
	Value T
}

// Table is an immutable two-way mapping between constant names and values. It is built once, when the package is
// initialized.
//
// Several names may share a value. Name returns the first one in table order.
type Table[T ~int] struct {
	entries []Entry[T]
	byName  map[string]T
	byValue map[T]string
}

func newTable[T ~int](entries ...Entry[T]) *Table[T] {
	t := &Table[T]{
		entries: entries,
		byName:  make(map[string]T, len(entries)),
		byValue: make(map[T]string, len(entries)),
	}
	for _, e := range entries {
		if _, dup := t.byName[e.Name]; dup {
			panic("rawsocket: duplicate constant name " + e.Name)
		}
		t.byName[e.Name] = e.Value
		if _, ok := t.byValue[e.Value]; !ok {
			t.byValue[e.Value] = e.Name
		}
	}
	return t
}

// Value returns the value of the constant called name.
func (t *Table[T]) Value(name string) (T, bool) {
	v, ok := t.byName[name]
	return v, ok
}

// Name returns the name of the constant with value v.
func (t *Table[T]) Name(v T) (string, bool) {
	name, ok := t.byValue[v]
	return name, ok
}

// Parse accepts either a constant name or a decimal number. Numbers do not need to be in the table.
func (t *Table[T]) Parse(s string) (T, error) {
	if v, ok := t.byName[s]; ok {
		return v, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("unknown constant %q", s)
	}
	return T(n), nil
}

// Entries returns a copy of the table in its original order.
func (t *Table[T]) Entries() []Entry[T] {
	return append([]Entry[T](nil), t.entries...)
}

func (t *Table[T]) format(v T) string {
	if name, ok := t.byValue[v]; ok {
		return name
	}
	return strconv.Itoa(int(v))
}

// AddressFamily selects IPv4 or IPv6 for a [Socket].
type AddressFamily int

const (
	IPv4 AddressFamily = 1
	IPv6 AddressFamily = 2
)

// AddressFamilies maps address family names to values.
var AddressFamilies = newTable(
	Entry[AddressFamily]{"IPv4", IPv4},
	Entry[AddressFamily]{"IPv6", IPv6},
)

func (f AddressFamily) String() string {
	return AddressFamilies.format(f)
}

// UnmarshalText accepts a family name or number, so that families can be written either way in a config file.
func (f *AddressFamily) UnmarshalText(text []byte) error {
	v, err := AddressFamilies.Parse(string(text))
	if err != nil {
		return fmt.Errorf("address family: %w", err)
	}
	*f = v
	return nil
}

// Protocol is the IP protocol number a raw socket is opened for.
type Protocol int

const (
	ProtocolNone   Protocol = 0
	ProtocolICMP   Protocol = 1
	ProtocolTCP    Protocol = 6
	ProtocolUDP    Protocol = 17
	ProtocolICMPv6 Protocol = 58
)

// Protocols maps protocol names to numbers.
var Protocols = newTable(
	Entry[Protocol]{"None", ProtocolNone},
	Entry[Protocol]{"ICMP", ProtocolICMP},
	Entry[Protocol]{"TCP", ProtocolTCP},
	Entry[Protocol]{"UDP", ProtocolUDP},
	Entry[Protocol]{"ICMPv6", ProtocolICMPv6},
)

func (p Protocol) String() string {
	return Protocols.format(p)
}

// UnmarshalText accepts a protocol name or number.
func (p *Protocol) UnmarshalText(text []byte) error {
	v, err := Protocols.Parse(string(text))
	if err != nil {
		return fmt.Errorf("protocol: %w", err)
	}
	*p = v
	return nil
}

// SocketLevel is the level argument of getsockopt and setsockopt. Values are the platform's native constants.
type SocketLevel int

func (l SocketLevel) String() string {
	return SocketLevels.format(l)
}

// SocketOption is the option name argument of getsockopt and setsockopt. Values are the platform's native constants.
type SocketOption int

func (o SocketOption) String() string {
	return SocketOptions.format(o)
}
