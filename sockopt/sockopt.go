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

// Package sockopt provides typed access to the socket options of a raw socket.
package sockopt

import (
	"encoding/binary"
	"fmt"

	"github.com/Jigsaw-Code/outline-rawsocket/rawsocket"
)

// OptionAccessor reads and writes raw socket options. [*rawsocket.Socket] implements it.
type OptionAccessor interface {
	GetOption(level rawsocket.SocketLevel, option rawsocket.SocketOption, buf []byte) (int, error)
	SetOption(level rawsocket.SocketLevel, option rawsocket.SocketOption, value []byte) error
	AddressFamily() rawsocket.AddressFamily
}

var _ OptionAccessor = (*rawsocket.Socket)(nil)

// HasHopLimit enables manipulation of the hop limit option.
type HasHopLimit interface {
	// HopLimit returns the hop limit field value for outgoing packets.
	HopLimit() (int, error)
	// SetHopLimit sets the hop limit field value for future outgoing packets.
	SetHopLimit(hoplim int) error
}

// HasBufferSizes enables manipulation of the kernel socket buffers.
type HasBufferSizes interface {
	ReceiveBufferSize() (int, error)
	SetReceiveBufferSize(size int) error
	SendBufferSize() (int, error)
	SetSendBufferSize(size int) error
}

// RawOptions represents options for raw sockets.
type RawOptions interface {
	HasHopLimit
	HasBufferSizes
	// SetHeaderIncluded tells an IPv4 socket that outgoing packets start with their own IP header.
	SetHeaderIncluded(included bool) error
}

// intOption is an option whose value is a C int.
type intOption struct {
	conn   OptionAccessor
	level  rawsocket.SocketLevel
	option rawsocket.SocketOption
}

func (o intOption) get() (int, error) {
	var buf [4]byte
	n, err := o.conn.GetOption(o.level, o.option, buf[:])
	if err != nil {
		return 0, err
	}
	// Some options, such as IP_TTL on older kernels, may be reported as a single byte.
	if n == 1 {
		return int(buf[0]), nil
	}
	if n != len(buf) {
		return 0, fmt.Errorf("option %v has unexpected length %d", o.option, n)
	}
	return int(int32(binary.NativeEndian.Uint32(buf[:]))), nil
}

func (o intOption) set(v int) error {
	var buf [4]byte
	binary.NativeEndian.PutUint32(buf[:], uint32(int32(v)))
	return o.conn.SetOption(o.level, o.option, buf[:])
}

func lookup(conn OptionAccessor, level, option string) (intOption, error) {
	l, ok := rawsocket.SocketLevels.Value(level)
	if !ok {
		return intOption{}, fmt.Errorf("socket level %s is not supported on this platform", level)
	}
	o, ok := rawsocket.SocketOptions.Value(option)
	if !ok {
		return intOption{}, fmt.Errorf("socket option %s is not supported on this platform", option)
	}
	return intOption{conn: conn, level: l, option: o}, nil
}

// hopLimitOption implements HasHopLimit.
type hopLimitOption struct {
	opt intOption
}

func (o *hopLimitOption) HopLimit() (int, error) {
	return o.opt.get()
}

func (o *hopLimitOption) SetHopLimit(hoplim int) error {
	return o.opt.set(hoplim)
}

var _ HasHopLimit = (*hopLimitOption)(nil)

type rawOptions struct {
	hopLimitOption

	rcvbuf  intOption
	sndbuf  intOption
	hdrincl intOption
	isIPv6  bool
}

var _ RawOptions = (*rawOptions)(nil)

func (o *rawOptions) ReceiveBufferSize() (int, error) { return o.rcvbuf.get() }
func (o *rawOptions) SetReceiveBufferSize(size int) error { return o.rcvbuf.set(size) }
func (o *rawOptions) SendBufferSize() (int, error) { return o.sndbuf.get() }
func (o *rawOptions) SetSendBufferSize(size int) error { return o.sndbuf.set(size) }

func (o *rawOptions) SetHeaderIncluded(included bool) error {
	if o.isIPv6 {
		return fmt.Errorf("header inclusion is only supported on IPv4 sockets")
	}
	v := 0
	if included {
		v = 1
	}
	return o.hdrincl.set(v)
}

// newHopLimit picks the hop limit option that matches the address family of conn.
func newHopLimit(conn OptionAccessor) (*hopLimitOption, error) {
	var (
		opt intOption
		err error
	)
	switch conn.AddressFamily() {
	case rawsocket.IPv4:
		opt, err = lookup(conn, "IPPROTO_IP", "IP_TTL")
	case rawsocket.IPv6:
		opt, err = lookup(conn, "IPPROTO_IPV6", "IPV6_UNICAST_HOPS")
	default:
		return nil, fmt.Errorf("address family is not IPv4 or IPv6 (%v)", conn.AddressFamily())
	}
	if err != nil {
		return nil, err
	}
	return &hopLimitOption{opt: opt}, nil
}

// NewRawOptions creates a [RawOptions] for the given socket.
func NewRawOptions(conn OptionAccessor) (RawOptions, error) {
	hopLimit, err := newHopLimit(conn)
	if err != nil {
		return nil, err
	}
	rcvbuf, err := lookup(conn, "SOL_SOCKET", "SO_RCVBUF")
	if err != nil {
		return nil, err
	}
	sndbuf, err := lookup(conn, "SOL_SOCKET", "SO_SNDBUF")
	if err != nil {
		return nil, err
	}
	hdrincl, err := lookup(conn, "IPPROTO_IP", "IP_HDRINCL")
	if err != nil {
		return nil, err
	}
	return &rawOptions{
		hopLimitOption: *hopLimit,
		rcvbuf:         rcvbuf,
		sndbuf:         sndbuf,
		hdrincl:        hdrincl,
		isIPv6:         conn.AddressFamily() == rawsocket.IPv6,
	}, nil
}
