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

// Handler receives the notifications of a [Socket]. The methods are called from the transport's event goroutine and
// may call back into the socket.
type Handler interface {
	// HandleMessage is called for every received packet. data is a copy owned by the handler.
	HandleMessage(data []byte, source netip.Addr)
	// HandleError is called for transport faults and receive errors. The socket closes right after.
	HandleError(err error)
	// HandleClose is called once, when the session has ended.
	HandleClose()
}

// HandlerFuncs is a [Handler] built from functions. Nil functions ignore the notification.
type HandlerFuncs struct {
	Message func(data []byte, source netip.Addr)
	Error   func(err error)
	Close   func()
}

var _ Handler = HandlerFuncs{}

func (h HandlerFuncs) HandleMessage(data []byte, source netip.Addr) {
	if h.Message != nil {
		h.Message(data, source)
	}
}

func (h HandlerFuncs) HandleError(err error) {
	if h.Error != nil {
		h.Error(err)
	}
}

func (h HandlerFuncs) HandleClose() {
	if h.Close != nil {
		h.Close()
	}
}
