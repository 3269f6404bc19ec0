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

//go:build !linux

package rawsocket

import (
	"errors"
	"fmt"
	"runtime"
)

// OpenTransport is only implemented on Linux. Use [WithTransportOpener] to supply a transport elsewhere.
func OpenTransport(protocol Protocol, family AddressFamily) (Transport, error) {
	return nil, &TransportError{Op: "open", Err: fmt.Errorf("raw sockets on %s: %w", runtime.GOOS, errors.ErrUnsupported)}
}
