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

import "net/netip"

// Events are the notifications a [Transport] raises. The transport must call them from a single goroutine, one at a
// time.
type Events struct {
	// OutboundReady reports that a packet can be transmitted without blocking. It is only raised while sending is
	// resumed.
	OutboundReady func()
	// InboundReady reports that a packet can be received without blocking. It is only raised while receiving is
	// resumed.
	InboundReady func()
	// Fault reports an error on the socket outside of any operation.
	Fault func(err error)
	// Closed is raised exactly once, after the transport has released its resources. No event follows it.
	Closed func()
}

// Transport is the raw socket a [Socket] drives. It performs the non-blocking I/O and option system calls, and
// reports readiness through [Events].
//
// Only Close may raise an event, Closed, before returning. The other methods are called while the [Socket] holds its
// locks.
type Transport interface {
	// Start begins delivering events. It is called once.
	Start(events Events) error

	// Receive reads one packet into buf, returning its length and source. Packets longer than buf are truncated. It
	// returns ErrWouldBlock if no packet is available.
	Receive(buf []byte) (n int, source netip.Addr, err error)

	// Transmit sends p to destination and returns the number of bytes sent.
	Transmit(p []byte, destination netip.Addr) (int, error)

	// SetReadiness tells the transport which directions are paused. No readiness events are raised for a paused
	// direction.
	SetReadiness(recvPaused, sendPaused bool) error

	// GetSocketOption reads the option into out and returns the number of bytes written.
	GetSocketOption(level, option int, out []byte) (int, error)

	// SetSocketOption sets the option to value.
	SetSocketOption(level, option int, value []byte) error

	// Close releases the socket. The transport then raises Closed. Close may be called from inside an event.
	Close() error
}

// Opener opens a [Transport] for a protocol and address family.
type Opener func(protocol Protocol, family AddressFamily) (Transport, error)

// Compilation guard against the platform opener signature.
var _ Opener = OpenTransport
