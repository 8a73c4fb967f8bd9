// Derived from Go which is licensed as follows:
//
// Copyright (c) 2009 The Go Authors. All rights reserved.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions are
// met:
//
//   * Redistributions of source code must retain the above copyright
// notice, this list of conditions and the following disclaimer.
//   * Redistributions in binary form must reproduce the above
// copyright notice, this list of conditions and the following disclaimer
// in the documentation and/or other materials provided with the
// distribution.
//   * Neither the name of Google Inc. nor the names of its
// contributors may be used to endorse or promote products derived from
// this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS
// "AS IS" AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT
// LIMITED TO, THE IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR
// A PARTICULAR PURPOSE ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT
// OWNER OR CONTRIBUTORS BE LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL,
// SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT
// LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR SERVICES; LOSS OF USE,
// DATA, OR PROFITS; OR BUSINESS INTERRUPTION) HOWEVER CAUSED AND ON ANY
// THEORY OF LIABILITY, WHETHER IN CONTRACT, STRICT LIABILITY, OR TORT
// (INCLUDING NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
// OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH DAMAGE.

package bmp

import "math/bits"

// channel extracts one color channel from a packed pixel and rescales it to 8 bits.
type channel struct {
	mask  uint32
	shift uint
	max   uint32
	def   uint8 // returned when the channel is absent
}

func newChannel(mask uint32, def uint8) channel {
	c := channel{mask: mask, def: def}
	if mask != 0 {
		c.shift = uint(bits.TrailingZeros32(mask))
		c.max = mask >> c.shift
	}
	return c
}

func (c channel) scale(raw uint32) uint8 {
	if c.max == 0 {
		return c.def
	}
	return uint8(255 * uint64((raw&c.mask)>>c.shift) / uint64(c.max))
}

type bitfields struct {
	r, g, b, a channel
}

// newBitfields returns the channel model for m. A missing alpha mask means opaque.
func newBitfields(m BitfieldMask) *bitfields {
	return &bitfields{
		r: newChannel(m.Red, 0),
		g: newChannel(m.Green, 0),
		b: newChannel(m.Blue, 0),
		a: newChannel(m.Alpha, 0xFF),
	}
}

func (f *bitfields) rgba(v uint32) (r, g, b, a uint8) {
	return f.r.scale(v), f.g.scale(v), f.b.scale(v), f.a.scale(v)
}
