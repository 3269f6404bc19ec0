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

// Package checksum implements the Internet checksum defined in RFC 1071, as used by the IPv4, ICMP, UDP and TCP
// headers.
//
// Checksums are built in two steps. An [Accumulator] sums the 16-bit big-endian words of one or more byte ranges,
// which do not need to be contiguous in memory (for example a pseudo-header and a payload). [Accumulator.Sum16] then
// folds the sum to 16 bits and complements it. The fold is applied once, at the end, so the grouping of the ranges does
// not change the result.
//
//	icmp := make([]byte, 40)
//	// ... fill in the ICMP message with a zero checksum field ...
//	checksum.Put(icmp, 2, checksum.Checksum(checksum.Whole(icmp)))
package checksum

import (
	"encoding/binary"
	"fmt"
)

// Segment is a byte range within Buffer, starting at Offset and spanning Length bytes.
type Segment struct {
	Buffer []byte
	Offset int
	Length int
}

// Whole returns a [Segment] covering all of b.
func Whole(b []byte) Segment {
	return Segment{Buffer: b, Offset: 0, Length: len(b)}
}

// Bytes returns the bytes covered by the segment. It panics if the segment is out of range for its buffer.
func (s Segment) Bytes() []byte {
	if s.Offset < 0 || s.Length < 0 || s.Offset+s.Length > len(s.Buffer) {
		panic(fmt.Sprintf("checksum: segment [%d:%d] out of range for buffer of length %d", s.Offset, s.Offset+s.Length, len(s.Buffer)))
	}
	return s.Buffer[s.Offset : s.Offset+s.Length]
}

// Accumulator is a running one's complement sum. The zero value is ready to use.
//
// Accumulator is a value: Add returns the updated sum and leaves the receiver unchanged, so a partial sum can be
// reused as the seed of several computations.
type Accumulator struct {
	sum uint64
	// odd is set when the bytes added so far have an odd length. The next byte is then the low byte of the
	// last word, which was counted as if padded with zero.
	odd bool
}

// Add returns the accumulator with the bytes in b added to the sum.
//
// When the total length is odd, the final byte counts as the high byte of a word whose low byte is zero. Adding more
// bytes afterwards fills in that low byte, so splitting a range at any point gives the same sum as adding it whole.
func (a Accumulator) Add(b []byte) Accumulator {
	if len(b) == 0 {
		return a
	}
	if a.odd {
		a.sum += uint64(b[0])
		b = b[1:]
		a.odd = false
	}
	n := len(b) &^ 1
	for i := 0; i < n; i += 2 {
		a.sum += uint64(binary.BigEndian.Uint16(b[i:]))
	}
	if n < len(b) {
		a.sum += uint64(b[n]) << 8
		a.odd = true
	}
	return a
}

// AddSegment returns the accumulator with the bytes of s added to the sum.
func (a Accumulator) AddSegment(s Segment) Accumulator {
	return a.Add(s.Bytes())
}

// AddUint16 returns the accumulator with a 16-bit word added to the sum. It must only be used on word boundaries, for
// example for the length fields of a pseudo-header.
func (a Accumulator) AddUint16(v uint16) Accumulator {
	a.sum += uint64(v)
	return a
}

// Sum16 folds the running sum to 16 bits with end-around carry and returns its one's complement.
func (a Accumulator) Sum16() uint16 {
	return ^fold(a.sum)
}

func fold(sum uint64) uint16 {
	for sum > 0xffff {
		sum = (sum & 0xffff) + sum>>16
	}
	return uint16(sum)
}

// Checksum returns the Internet checksum of the concatenation of the segments.
func Checksum(segments ...Segment) uint16 {
	var acc Accumulator
	for _, s := range segments {
		acc = acc.AddSegment(s)
	}
	return acc.Sum16()
}

// Verify reports whether the segments, which must include their own checksum field, hold a correct checksum.
func Verify(segments ...Segment) bool {
	return Checksum(segments...) == 0
}

// Put writes value into buf[offset:offset+2] in network byte order and returns buf.
func Put(buf []byte, offset int, value uint16) []byte {
	binary.BigEndian.PutUint16(buf[offset:offset+2], value)
	return buf
}
