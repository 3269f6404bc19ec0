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

/*
Package rawsocket provides a non-blocking, readiness-driven [Socket] over a raw network socket.

Outbound packets are queued with [Socket.Send] and handed to the underlying [Transport] one at a time, each time the
transport reports that it can send without blocking. Inbound packets are read into a reusable buffer when the transport
reports they are available, and a copy is delivered to the [Handler]. Receiving and sending can be paused and resumed
independently; while a direction is paused the transport stops reporting readiness for it.

	s, err := rawsocket.NewSocket(rawsocket.Config{Protocol: rawsocket.ProtocolICMP},
		rawsocket.WithHandler(rawsocket.HandlerFuncs{
			Message: func(data []byte, source netip.Addr) { fmt.Println(source, hex.EncodeToString(data)) },
		}))
	if err != nil {
		return err
	}
	defer s.Close()
	s.Send(packet, 0, len(packet), "192.0.2.1", nil, func(err error, n int) { ... })

Opening a raw socket usually requires elevated privileges (CAP_NET_RAW on Linux).
*/
package rawsocket
