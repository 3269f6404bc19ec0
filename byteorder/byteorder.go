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

// Package byteorder converts multi-byte header fields between host and network (big-endian) byte order.
//
// The conversions are their own inverse for a given width, so HostToNetwork16 and NetworkToHost16 are the same
// operation, and applying either one twice returns the original value.
package byteorder

import (
	"math/bits"

	"golang.org/x/sys/cpu"
)

// swap is decided once for the process. Big-endian hosts already store values in network order.
var swap = !cpu.IsBigEndian

// HostToNetwork16 converts a 16-bit value from host to network byte order.
func HostToNetwork16(x uint16) uint16 {
	if swap {
		return bits.ReverseBytes16(x)
	}
	return x
}

// HostToNetwork32 converts a 32-bit value from host to network byte order.
func HostToNetwork32(x uint32) uint32 {
	if swap {
		return bits.ReverseBytes32(x)
	}
	return x
}

// NetworkToHost16 converts a 16-bit value from network to host byte order.
func NetworkToHost16(x uint16) uint16 {
	return HostToNetwork16(x)
}

// NetworkToHost32 converts a 32-bit value from network to host byte order.
func NetworkToHost32(x uint32) uint32 {
	return HostToNetwork32(x)
}
