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

// flowControl holds the pause state of both directions. Receiving starts resumed; sending starts paused and is resumed
// by the first send.
type flowControl struct {
	recvPaused bool
	sendPaused bool
}

func newFlowControl() flowControl {
	return flowControl{recvPaused: false, sendPaused: true}
}

// apply pushes the state to the transport.
func (fc flowControl) apply(t Transport) error {
	return t.SetReadiness(fc.recvPaused, fc.sendPaused)
}
