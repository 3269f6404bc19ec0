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

package byteorder

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoundTrip16(t *testing.T) {
	for x := 0; x <= math.MaxUint16; x++ {
		v := uint16(x)
		require.Equal(t, v, NetworkToHost16(HostToNetwork16(v)))
		require.Equal(t, v, HostToNetwork16(HostToNetwork16(v)))
		require.Equal(t, v, NetworkToHost16(NetworkToHost16(v)))
	}
}

func TestRoundTrip32(t *testing.T) {
	values := []uint32{0, 1, 80, 443, 0x1234, 0x12345678, 0x80000000, 0xdeadbeef, math.MaxUint32}
	// A sparse sweep over the full range.
	for x := uint64(0); x <= math.MaxUint32; x += 0x10001 {
		values = append(values, uint32(x))
	}
	for _, v := range values {
		require.Equal(t, v, NetworkToHost32(HostToNetwork32(v)))
		require.Equal(t, v, HostToNetwork32(HostToNetwork32(v)))
		require.Equal(t, v, NetworkToHost32(NetworkToHost32(v)))
	}
}

// The in-memory layout of a converted value must be big-endian.
func TestNetworkLayout(t *testing.T) {
	var b16 [2]byte
	binary.NativeEndian.PutUint16(b16[:], HostToNetwork16(0x1234))
	require.Equal(t, [2]byte{0x12, 0x34}, b16)

	var b32 [4]byte
	binary.NativeEndian.PutUint32(b32[:], HostToNetwork32(0x12345678))
	require.Equal(t, [4]byte{0x12, 0x34, 0x56, 0x78}, b32)
}

func TestPortNumbers(t *testing.T) {
	for _, port := range []uint16{0, 53, 80, 443, 8080, math.MaxUint16} {
		require.Equal(t, port, NetworkToHost16(HostToNetwork16(port)))
	}
}
