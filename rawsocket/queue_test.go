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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRequestQueueFIFO(t *testing.T) {
	q := newRequestQueue()
	_, ok := q.pop()
	require.False(t, ok)

	for i := 0; i < 3; i++ {
		q.push(&request{payload: []byte{byte(i)}, destination: netip.IPv4Unspecified()})
	}
	require.Equal(t, 3, q.len())

	r, ok := q.pop()
	require.True(t, ok)
	require.Equal(t, []byte{0}, r.payload)
	require.Equal(t, 2, q.len())

	drained := q.drain()
	require.Len(t, drained, 2)
	require.Equal(t, []byte{1}, drained[0].payload)
	require.Equal(t, []byte{2}, drained[1].payload)
	require.Equal(t, 0, q.len())
	require.Empty(t, q.drain())
}

func TestFlowControlInitialState(t *testing.T) {
	fc := newFlowControl()
	require.False(t, fc.recvPaused)
	require.True(t, fc.sendPaused)

	ft := newFakeTransport()
	require.NoError(t, fc.apply(ft))
	require.Equal(t, [2]bool{false, true}, ft.lastReadiness())
}
