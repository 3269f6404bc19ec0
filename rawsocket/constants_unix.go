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

import "golang.org/x/sys/unix"

// SocketLevels maps the supported socket levels to their native values.
var SocketLevels = newTable(
	Entry[SocketLevel]{"IPPROTO_IP", unix.IPPROTO_IP},
	Entry[SocketLevel]{"IPPROTO_IPV6", unix.IPPROTO_IPV6},
	Entry[SocketLevel]{"SOL_SOCKET", unix.SOL_SOCKET},
)

// SocketOptions maps the supported socket options to their native values. Options of different levels may share a
// value. There is no IPV6_TTL option at the system level; it is an alias for IPV6_UNICAST_HOPS.
var SocketOptions = newTable(
	Entry[SocketOption]{"IP_TTL", unix.IP_TTL},
	Entry[SocketOption]{"IP_HDRINCL", unix.IP_HDRINCL},
	Entry[SocketOption]{"IP_TOS", unix.IP_TOS},
	Entry[SocketOption]{"IP_OPTIONS", unix.IP_OPTIONS},
	Entry[SocketOption]{"SO_BROADCAST", unix.SO_BROADCAST},
	Entry[SocketOption]{"SO_RCVBUF", unix.SO_RCVBUF},
	Entry[SocketOption]{"SO_SNDBUF", unix.SO_SNDBUF},
	Entry[SocketOption]{"SO_RCVTIMEO", unix.SO_RCVTIMEO},
	Entry[SocketOption]{"SO_SNDTIMEO", unix.SO_SNDTIMEO},
	Entry[SocketOption]{"IPV6_UNICAST_HOPS", unix.IPV6_UNICAST_HOPS},
	Entry[SocketOption]{"IPV6_TTL", unix.IPV6_UNICAST_HOPS},
	Entry[SocketOption]{"IPV6_V6ONLY", unix.IPV6_V6ONLY},
)
