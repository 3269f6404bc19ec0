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

//go:build linux || darwin

package rawsocket

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestNativeSocketLevels(t *testing.T) {
	for _, name := range []string{"IPPROTO_IP", "IPPROTO_IPV6", "SOL_SOCKET"} {
		_, ok := SocketLevels.Value(name)
		require.True(t, ok, name)
	}
	v, _ := SocketLevels.Value("SOL_SOCKET")
	require.Equal(t, SocketLevel(unix.SOL_SOCKET), v)
}

func TestNativeSocketOptions(t *testing.T) {
	for _, name := range []string{
		"IP_TTL", "IP_HDRINCL", "IP_TOS", "IP_OPTIONS", "SO_BROADCAST", "SO_RCVBUF", "SO_SNDBUF",
		"SO_RCVTIMEO", "SO_SNDTIMEO", "IPV6_TTL", "IPV6_UNICAST_HOPS", "IPV6_V6ONLY",
	} {
		_, ok := SocketOptions.Value(name)
		require.True(t, ok, name)
	}
	v, _ := SocketOptions.Value("IP_TTL")
	require.Equal(t, SocketOption(unix.IP_TTL), v)

	hops, _ := SocketOptions.Value("IPV6_UNICAST_HOPS")
	ttl, _ := SocketOptions.Value("IPV6_TTL")
	require.Equal(t, hops, ttl)
}
