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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddressFamilies(t *testing.T) {
	require.Equal(t, AddressFamily(1), IPv4)
	require.Equal(t, AddressFamily(2), IPv6)

	v, ok := AddressFamilies.Value("IPv6")
	require.True(t, ok)
	require.Equal(t, IPv6, v)

	name, ok := AddressFamilies.Name(1)
	require.True(t, ok)
	require.Equal(t, "IPv4", name)

	require.Equal(t, "IPv6", IPv6.String())
	require.Equal(t, "7", AddressFamily(7).String())
}

func TestProtocols(t *testing.T) {
	for name, value := range map[string]Protocol{"None": 0, "ICMP": 1, "TCP": 6, "UDP": 17, "ICMPv6": 58} {
		v, ok := Protocols.Value(name)
		require.True(t, ok, name)
		require.Equal(t, value, v)

		n, ok := Protocols.Name(value)
		require.True(t, ok)
		require.Equal(t, name, n)
	}
	_, ok := Protocols.Name(99)
	require.False(t, ok)
	require.Len(t, Protocols.Entries(), 5)
}

func TestTableParse(t *testing.T) {
	v, err := Protocols.Parse("ICMP")
	require.NoError(t, err)
	require.Equal(t, ProtocolICMP, v)

	v, err = Protocols.Parse("132")
	require.NoError(t, err)
	require.Equal(t, Protocol(132), v)

	_, err = Protocols.Parse("SCTP")
	require.Error(t, err)
}

func TestTableFirstNameWins(t *testing.T) {
	type code int
	table := newTable(Entry[code]{"A", 1}, Entry[code]{"B", 1}, Entry[code]{"C", 2})
	name, ok := table.Name(1)
	require.True(t, ok)
	require.Equal(t, "A", name)
	v, ok := table.Value("B")
	require.True(t, ok)
	require.Equal(t, code(1), v)

	require.Panics(t, func() { newTable(Entry[code]{"A", 1}, Entry[code]{"A", 2}) })
}

func TestEntriesIsACopy(t *testing.T) {
	entries := Protocols.Entries()
	entries[0].Name = "changed"
	name, _ := Protocols.Name(ProtocolNone)
	require.Equal(t, "None", name)
}
