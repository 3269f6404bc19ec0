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
	"errors"
	"fmt"
	"log/slog"
	"net/netip"
	"slices"
	"sync"
)

// Socket drives a raw [Transport]: it queues outbound packets until the transport can send them, reads inbound packets
// when they are available, and pauses either direction on request.
//
// Multiple goroutines can simultaneously invoke methods on a Socket.
type Socket struct {
	protocol Protocol
	family   AddressFamily

	open      Opener
	transport Transport
	handler   Handler
	logger    *slog.Logger

	// dispatchMu serializes readiness handling, so at most one packet is in flight, and protects buf.
	dispatchMu sync.Mutex
	buf        []byte

	mu      sync.Mutex // Protects the fields below
	flow    flowControl
	queue   *requestQueue
	closing bool // Close was called or the session failed
	closed  bool // the transport reported Closed
}

// NewSocket opens a raw socket for config. Failures to open the transport are returned as a [*TransportError]; an
// invalid config is a [*ValidationError].
func NewSocket(config Config, options ...Option) (*Socket, error) {
	config = config.withDefaults()
	if err := config.validate(); err != nil {
		return nil, err
	}
	s := &Socket{
		protocol: config.Protocol,
		family:   config.AddressFamily,
		open:     OpenTransport,
		handler:  HandlerFuncs{},
		logger:   slog.Default(),
		buf:      make([]byte, config.BufferSize),
		flow:     newFlowControl(),
		queue:    newRequestQueue(),
	}
	for _, opt := range options {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	t, err := s.open(config.Protocol, config.AddressFamily)
	if err != nil {
		return nil, transportError("open", err)
	}
	s.transport = t
	if err := s.flow.apply(t); err != nil {
		t.Close()
		return nil, transportError("open", err)
	}
	err = t.Start(Events{
		OutboundReady: s.onOutboundReady,
		InboundReady:  s.onInboundReady,
		Fault:         s.onFault,
		Closed:        s.onClosed,
	})
	if err != nil {
		t.Close()
		return nil, transportError("open", err)
	}
	s.logger.Debug("Opened raw socket", "protocol", config.Protocol, "family", config.AddressFamily, "bufferSize", config.BufferSize)
	return s, nil
}

// Protocol returns the protocol the socket was opened for.
func (s *Socket) Protocol() Protocol { return s.protocol }

// AddressFamily returns the address family the socket was opened for.
func (s *Socket) AddressFamily() AddressFamily { return s.family }

// Paused reports whether receiving and sending are paused.
func (s *Socket) Paused() (recv, send bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flow.recvPaused, s.flow.sendPaused
}

// Pending returns the number of queued requests that have not been handed to the transport yet.
func (s *Socket) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.len()
}

// Send queues payload[offset:offset+length] for transmission to destination, an IPv4 or IPv6 literal, and resumes
// sending if it was paused.
//
// before, if not nil, runs right before the packet is handed to the transport. If it returns an error or panics the
// packet is dropped and after receives that error. after runs exactly once with the outcome and the number of bytes
// sent. If the arguments are invalid or the socket is closed, after runs before Send returns and nothing is queued.
//
// payload must not be modified until after has run.
func (s *Socket) Send(payload []byte, offset, length int, destination string, before func() error, after func(err error, n int)) *Socket {
	if after == nil {
		panic("rawsocket: Send requires a completion function")
	}
	if offset < 0 || length < 0 || offset > len(payload) || length > len(payload)-offset {
		after(&ValidationError{Field: "length", Err: fmt.Errorf("%w: buffer length %d for offset %d plus length %d",
			ErrBufferTooSmall, len(payload), offset, length)}, 0)
		return s
	}
	dst, parseErr := netip.ParseAddr(destination)
	if parseErr != nil {
		after(&ValidationError{Field: "destination", Err: fmt.Errorf("%w %q", ErrInvalidAddress, destination)}, 0)
		return s
	}

	s.mu.Lock()
	if s.closing {
		s.mu.Unlock()
		after(ErrClosed, 0)
		return s
	}
	s.queue.push(&request{
		payload:     payload[offset : offset+length],
		destination: dst,
		before:      before,
		after:       after,
	})
	var err error
	if s.flow.sendPaused {
		s.flow.sendPaused = false
		err = s.applyLocked()
	}
	s.mu.Unlock()
	s.reportReadiness(err)
	return s
}

// PauseRecv stops reading packets until ResumeRecv is called.
func (s *Socket) PauseRecv() *Socket {
	return s.setPaused(func(fc *flowControl) { fc.recvPaused = true })
}

// ResumeRecv starts reading packets again.
func (s *Socket) ResumeRecv() *Socket {
	return s.setPaused(func(fc *flowControl) { fc.recvPaused = false })
}

// PauseSend stops handing queued packets to the transport until ResumeSend or Send is called.
func (s *Socket) PauseSend() *Socket {
	return s.setPaused(func(fc *flowControl) { fc.sendPaused = true })
}

// ResumeSend starts handing queued packets to the transport again. Once the queue is empty, sending pauses by itself.
func (s *Socket) ResumeSend() *Socket {
	return s.setPaused(func(fc *flowControl) { fc.sendPaused = false })
}

// setPaused is a no-op once the socket is closing.
func (s *Socket) setPaused(update func(*flowControl)) *Socket {
	s.mu.Lock()
	if s.closing {
		s.mu.Unlock()
		return s
	}
	update(&s.flow)
	err := s.applyLocked()
	s.mu.Unlock()
	s.reportReadiness(err)
	return s
}

// applyLocked pushes the flow-control state to the transport. s.mu must be held. The local state stands even if the
// transport fails to apply it.
func (s *Socket) applyLocked() error {
	s.logger.Debug("Raw socket readiness changed", "recvPaused", s.flow.recvPaused, "sendPaused", s.flow.sendPaused)
	if err := s.flow.apply(s.transport); err != nil {
		return transportError("readiness", err)
	}
	return nil
}

// reportReadiness passes a failure of applyLocked to the handler. It must be called without holding s.mu.
func (s *Socket) reportReadiness(err error) {
	if err != nil {
		s.logger.Debug("Raw socket readiness failed", "error", err)
		s.handler.HandleError(err)
	}
}

// GetOption reads a socket option into buf and returns the number of bytes the transport wrote. The option length
// passed to the system is len(buf).
func (s *Socket) GetOption(level SocketLevel, option SocketOption, buf []byte) (int, error) {
	if s.isClosing() {
		return 0, ErrClosed
	}
	n, err := s.transport.GetSocketOption(int(level), int(option), buf)
	if err != nil {
		return n, transportError("getsockopt", err)
	}
	return n, nil
}

// SetOption sets a socket option to value, as given.
func (s *Socket) SetOption(level SocketLevel, option SocketOption, value []byte) error {
	if s.isClosing() {
		return ErrClosed
	}
	if err := s.transport.SetSocketOption(int(level), int(option), value); err != nil {
		return transportError("setsockopt", err)
	}
	return nil
}

// Close releases the raw socket. Requests still queued complete with [ErrClosed], then [Handler].HandleClose is
// called. Calling Close again returns ErrClosed.
func (s *Socket) Close() error {
	s.mu.Lock()
	if s.closing {
		s.mu.Unlock()
		return ErrClosed
	}
	s.closing = true
	s.mu.Unlock()

	if err := s.transport.Close(); err != nil && !errors.Is(err, ErrClosed) {
		return transportError("close", err)
	}
	return nil
}

func (s *Socket) isClosing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closing
}

// onOutboundReady hands the oldest request to the transport, or pauses sending if there is nothing left to send.
func (s *Socket) onOutboundReady() {
	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()

	s.mu.Lock()
	if s.closing {
		// The Closed event fails whatever is still queued.
		s.mu.Unlock()
		return
	}
	req, ok := s.queue.pop()
	if !ok {
		var err error
		if !s.flow.sendPaused {
			s.flow.sendPaused = true
			err = s.applyLocked()
		}
		s.mu.Unlock()
		s.reportReadiness(err)
		return
	}
	s.mu.Unlock()

	if err := runBefore(req.before); err != nil {
		req.after(transportError("before", err), 0)
		return
	}
	n, err := s.transport.Transmit(req.payload, req.destination)
	if err != nil {
		s.logger.Debug("Raw socket transmit failed", "destination", req.destination, "error", err)
		req.after(transportError("transmit", err), 0)
		return
	}
	req.after(nil, n)
}

// runBefore runs before, if set, turning a panic into an error so it only fails its own request.
func runBefore(before func() error) (err error) {
	if before == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("before callback panicked: %v", r)
		}
	}()
	return before()
}

// onInboundReady reads one packet into the shared buffer and delivers a copy of it.
func (s *Socket) onInboundReady() {
	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()

	s.mu.Lock()
	skip := s.flow.recvPaused || s.closing
	s.mu.Unlock()
	if skip {
		return
	}

	n, source, err := s.transport.Receive(s.buf)
	if errors.Is(err, ErrWouldBlock) {
		return
	}
	if err != nil {
		s.fail(transportError("receive", err))
		return
	}
	s.handler.HandleMessage(slices.Clone(s.buf[:n]), source)
}

func (s *Socket) onFault(err error) {
	s.fail(transportError("fault", err))
}

// fail reports a fatal error and ends the session.
func (s *Socket) fail(err error) {
	s.logger.Debug("Raw socket failed", "error", err)
	s.handler.HandleError(err)
	s.Close()
}

// onClosed fails the requests left in the queue and notifies the handler, once.
func (s *Socket) onClosed() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.closing = true
	pending := s.queue.drain()
	s.mu.Unlock()

	for _, req := range pending {
		req.after(ErrClosed, 0)
	}
	s.logger.Debug("Closed raw socket", "dropped", len(pending))
	s.handler.HandleClose()
}
