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

//go:build linux

package rawsocket

import (
	"errors"
	"fmt"
	"net"
	"net/netip"
	"os"
	"sync"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/unix"
)

// OpenTransport opens a non-blocking raw socket. Readiness is reported by a goroutine polling the socket together with
// a wake-up pipe, which is written whenever the paused directions change or the transport is closed.
func OpenTransport(protocol Protocol, family AddressFamily) (Transport, error) {
	domain := unix.AF_INET
	if family == IPv6 {
		domain = unix.AF_INET6
	}
	fd, err := unix.Socket(domain, unix.SOCK_RAW|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, int(protocol))
	if err != nil {
		return nil, &TransportError{Op: "open", Err: os.NewSyscallError("socket", err)}
	}
	var pipe [2]int
	if err := unix.Pipe2(pipe[:], unix.O_NONBLOCK|unix.O_CLOEXEC); err != nil {
		unix.Close(fd)
		return nil, &TransportError{Op: "open", Err: os.NewSyscallError("pipe2", err)}
	}
	t := &linuxTransport{
		fd:     fd,
		family: family,
		wakeR:  pipe[0],
		wakeW:  pipe[1],
	}
	t.sendPaused.Store(true)
	return t, nil
}

type linuxTransport struct {
	fd     int
	family AddressFamily
	wakeR  int
	wakeW  int

	recvPaused atomic.Bool
	sendPaused atomic.Bool
	closing    atomic.Bool

	mu       sync.Mutex // Protects the fields below and the validity of the descriptors
	started  bool
	closed   bool
	released bool
}

var _ Transport = (*linuxTransport)(nil)

func (t *linuxTransport) Start(events Events) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return ErrClosed
	}
	if t.started {
		return errors.New("transport already started")
	}
	t.started = true
	go t.loop(events)
	return nil
}

func (t *linuxTransport) loop(events Events) {
	defer t.shutdown(events)

	fds := []unix.PollFd{{Fd: int32(t.fd)}, {Fd: int32(t.wakeR), Events: unix.POLLIN}}
	for !t.closing.Load() {
		fds[0].Events = 0
		if !t.recvPaused.Load() {
			fds[0].Events |= unix.POLLIN
		}
		if !t.sendPaused.Load() {
			fds[0].Events |= unix.POLLOUT
		}
		fds[0].Revents, fds[1].Revents = 0, 0

		if _, err := unix.Poll(fds, -1); err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			events.Fault(os.NewSyscallError("poll", err))
			return
		}
		if fds[1].Revents != 0 {
			t.drainWake()
		}
		if t.closing.Load() {
			return
		}

		revents := fds[0].Revents
		if revents&unix.POLLNVAL != 0 {
			events.Fault(os.NewSyscallError("poll", unix.EBADF))
			return
		}
		if revents&unix.POLLERR != 0 {
			if err := t.socketError(); err != nil {
				events.Fault(err)
				return
			}
		}
		if revents&unix.POLLOUT != 0 && !t.sendPaused.Load() {
			events.OutboundReady()
		}
		if revents&unix.POLLIN != 0 && !t.recvPaused.Load() && !t.closing.Load() {
			events.InboundReady()
		}
	}
}

// socketError reads and clears the pending error of the socket.
func (t *linuxTransport) socketError() error {
	errno, err := unix.GetsockoptInt(t.fd, unix.SOL_SOCKET, unix.SO_ERROR)
	if err != nil {
		return os.NewSyscallError("getsockopt", err)
	}
	if errno != 0 {
		return os.NewSyscallError("socket", unix.Errno(errno))
	}
	return nil
}

func (t *linuxTransport) drainWake() {
	var buf [64]byte
	for {
		if _, err := unix.Read(t.wakeR, buf[:]); err != nil {
			return
		}
	}
}

// wake interrupts the poll so the loop picks up new state. t.mu must be held.
func (t *linuxTransport) wake() {
	if t.released {
		return
	}
	// A full pipe already guarantees a wake-up.
	unix.Write(t.wakeW, []byte{0})
}

func (t *linuxTransport) shutdown(events Events) {
	t.mu.Lock()
	t.closing.Store(true)
	t.closed = true
	t.release()
	t.mu.Unlock()
	events.Closed()
}

// release closes the descriptors. t.mu must be held.
func (t *linuxTransport) release() {
	if t.released {
		return
	}
	t.released = true
	unix.Close(t.fd)
	unix.Close(t.wakeR)
	unix.Close(t.wakeW)
}

func (t *linuxTransport) Receive(buf []byte) (int, netip.Addr, error) {
	n, from, err := unix.Recvfrom(t.fd, buf, 0)
	if err != nil {
		if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EINTR) {
			return 0, netip.Addr{}, ErrWouldBlock
		}
		return 0, netip.Addr{}, os.NewSyscallError("recvfrom", err)
	}
	return min(n, len(buf)), sockaddrToAddr(from), nil
}

func (t *linuxTransport) Transmit(p []byte, destination netip.Addr) (int, error) {
	sa, err := t.sockaddr(destination)
	if err != nil {
		return 0, err
	}
	if err := unix.Sendto(t.fd, p, 0, sa); err != nil {
		return 0, os.NewSyscallError("sendto", err)
	}
	return len(p), nil
}

func (t *linuxTransport) sockaddr(addr netip.Addr) (unix.Sockaddr, error) {
	if t.family == IPv6 {
		sa := &unix.SockaddrInet6{Addr: addr.As16()}
		if zone := addr.Zone(); zone != "" {
			ifi, err := net.InterfaceByName(zone)
			if err != nil {
				return nil, fmt.Errorf("invalid zone %q: %w", zone, err)
			}
			sa.ZoneId = uint32(ifi.Index)
		}
		return sa, nil
	}
	addr = addr.Unmap()
	if !addr.Is4() {
		return nil, fmt.Errorf("address %v is not IPv4", addr)
	}
	return &unix.SockaddrInet4{Addr: addr.As4()}, nil
}

func sockaddrToAddr(sa unix.Sockaddr) netip.Addr {
	switch sa := sa.(type) {
	case *unix.SockaddrInet4:
		return netip.AddrFrom4(sa.Addr)
	case *unix.SockaddrInet6:
		addr := netip.AddrFrom16(sa.Addr)
		if sa.ZoneId != 0 {
			if ifi, err := net.InterfaceByIndex(int(sa.ZoneId)); err == nil {
				addr = addr.WithZone(ifi.Name)
			}
		}
		return addr
	}
	return netip.Addr{}
}

func (t *linuxTransport) SetReadiness(recvPaused, sendPaused bool) error {
	t.recvPaused.Store(recvPaused)
	t.sendPaused.Store(sendPaused)
	t.mu.Lock()
	defer t.mu.Unlock()
	t.wake()
	return nil
}

func (t *linuxTransport) GetSocketOption(level, option int, out []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.released {
		return 0, ErrClosed
	}
	// x/sys/unix has no getsockopt into an arbitrary buffer.
	var p unsafe.Pointer
	if len(out) > 0 {
		p = unsafe.Pointer(&out[0])
	}
	length := uint32(len(out))
	_, _, errno := unix.Syscall6(unix.SYS_GETSOCKOPT, uintptr(t.fd), uintptr(level), uintptr(option),
		uintptr(p), uintptr(unsafe.Pointer(&length)), 0)
	if errno != 0 {
		return 0, os.NewSyscallError("getsockopt", errno)
	}
	return int(length), nil
}

func (t *linuxTransport) SetSocketOption(level, option int, value []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.released {
		return ErrClosed
	}
	if err := unix.SetsockoptString(t.fd, level, option, string(value)); err != nil {
		return os.NewSyscallError("setsockopt", err)
	}
	return nil
}

// Close stops the loop, which releases the socket and raises Closed. It never waits for the loop, so it can be
// called from inside an event.
func (t *linuxTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return ErrClosed
	}
	t.closed = true
	t.closing.Store(true)
	if !t.started {
		t.release()
		return nil
	}
	t.wake()
	return nil
}
