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
	"os"
)

// Portable analogs of some common errors.
//
// Errors returned from this package can be tested against these errors with [errors.Is].
var (
	// ErrClosed is returned by operations on a [Socket] or [Transport] that has already been closed. Requests still
	// queued when the socket closes complete with this error. It wraps [os.ErrClosed].
	ErrClosed = fmt.Errorf("raw socket is closed: %w", os.ErrClosed)

	// ErrWouldBlock is returned by [Transport].Receive when a readiness notification turned out to be spurious and no
	// packet is available.
	ErrWouldBlock = errors.New("operation would block")

	// ErrBufferTooSmall is wrapped by the [ValidationError] of a send whose offset plus length exceed the payload.
	ErrBufferTooSmall = errors.New("buffer is not large enough")

	// ErrInvalidAddress is wrapped by the [ValidationError] of a send whose destination is not an IP literal.
	ErrInvalidAddress = errors.New("invalid IP address")
)

// ValidationError reports malformed caller input. It is returned synchronously, never closes the socket and is never
// passed to [Handler].HandleError.
type ValidationError struct {
	// Field names the offending input, such as "length" or "destination".
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// TransportError reports a failure of the raw transport, or of a callback run in place of it.
type TransportError struct {
	// Op is the failed operation: open, receive, transmit, before, getsockopt, setsockopt, readiness, close or fault.
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("raw socket %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// transportError wraps err in a [TransportError] for op, unless it already is one or is a sentinel of this package.
func transportError(op string, err error) error {
	var te *TransportError
	if errors.As(err, &te) || errors.Is(err, ErrClosed) {
		return err
	}
	return &TransportError{Op: op, Err: err}
}
