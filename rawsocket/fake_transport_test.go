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
	"net/netip"
	"sync"
)

type sentPacket struct {
	payload     []byte
	destination netip.Addr
}

type inboundPacket struct {
	payload []byte
	source  netip.Addr
}

// fakeTransport records what the Socket asks of it. Tests raise events through fire* helpers.
type fakeTransport struct {
	mu sync.Mutex

	protocol Protocol
	family   AddressFamily
	events   Events
	started  bool

	readiness    [][2]bool
	readinessErr error

	sent         []sentPacket
	transmitErrs []error

	inbound     []inboundPacket
	receiveErr  error
	receiveCall int

	options   map[[2]int][]byte
	optionErr error

	closeCalls int
	// holdClosed makes Close return without raising Closed, like a transport whose loop has not stopped yet.
	holdClosed bool
}

var _ Transport = (*fakeTransport)(nil)

func newFakeTransport() *fakeTransport {
	return &fakeTransport{options: make(map[[2]int][]byte)}
}

func (f *fakeTransport) opener() Opener {
	return func(protocol Protocol, family AddressFamily) (Transport, error) {
		f.protocol = protocol
		f.family = family
		return f, nil
	}
}

func (f *fakeTransport) Start(events Events) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = events
	f.started = true
	return nil
}

func (f *fakeTransport) Receive(buf []byte) (int, netip.Addr, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.receiveCall++
	if f.receiveErr != nil {
		return 0, netip.Addr{}, f.receiveErr
	}
	if len(f.inbound) == 0 {
		return 0, netip.Addr{}, ErrWouldBlock
	}
	pkt := f.inbound[0]
	f.inbound = f.inbound[1:]
	return copy(buf, pkt.payload), pkt.source, nil
}

func (f *fakeTransport) Transmit(p []byte, destination netip.Addr) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.transmitErrs) > 0 {
		err := f.transmitErrs[0]
		f.transmitErrs = f.transmitErrs[1:]
		if err != nil {
			return 0, err
		}
	}
	f.sent = append(f.sent, sentPacket{payload: append([]byte(nil), p...), destination: destination})
	return len(p), nil
}

func (f *fakeTransport) SetReadiness(recvPaused, sendPaused bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.readiness = append(f.readiness, [2]bool{recvPaused, sendPaused})
	return f.readinessErr
}

func (f *fakeTransport) GetSocketOption(level, option int, out []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.optionErr != nil {
		return 0, f.optionErr
	}
	return copy(out, f.options[[2]int{level, option}]), nil
}

func (f *fakeTransport) SetSocketOption(level, option int, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.optionErr != nil {
		return f.optionErr
	}
	f.options[[2]int{level, option}] = append([]byte(nil), value...)
	return nil
}

// Close raises Closed before returning, which the Transport contract allows.
func (f *fakeTransport) Close() error {
	f.mu.Lock()
	f.closeCalls++
	first := f.closeCalls == 1
	closed := f.events.Closed
	if f.holdClosed {
		closed = nil
	}
	f.mu.Unlock()
	if !first {
		return ErrClosed
	}
	if closed != nil {
		closed()
	}
	return nil
}

func (f *fakeTransport) fireOutboundReady() { f.events.OutboundReady() }
func (f *fakeTransport) fireInboundReady() { f.events.InboundReady() }
func (f *fakeTransport) fireFault(err error) { f.events.Fault(err) }
func (f *fakeTransport) fireClosed() { f.events.Closed() }

func (f *fakeTransport) lastReadiness() [2]bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.readiness[len(f.readiness)-1]
}

func (f *fakeTransport) readinessCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.readiness)
}

func (f *fakeTransport) sentPackets() []sentPacket {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentPacket(nil), f.sent...)
}

func (f *fakeTransport) pushInbound(payload []byte, source netip.Addr) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inbound = append(f.inbound, inboundPacket{payload: payload, source: source})
}
