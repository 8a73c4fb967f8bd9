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

// RLE escape codes, following a zero count byte.
const (
	rleEndOfLine   = 0
	rleEndOfBitmap = 1
	rleDelta       = 2
)

// rleState is the cursor of an RLE decode. The cursor may leave the image
// (y < 0 or y >= height); pixels drawn there are dropped.
type rleState struct {
	s       pixelSetter
	p       Palette
	width   int64
	height  int64
	x, y    int64
	step    int64
	nibbles bool // RLE4
}

// put draws palette index i at the cursor and advances it.
// A cursor past the end of the row wraps to the start of the next one.
func (st *rleState) put(i byte) error {
	c, err := st.p.lookup(i)
	if err != nil {
		return err
	}
	if st.x >= st.width {
		st.x, st.y = 0, st.y+st.step
	}
	if st.x < st.width && st.y >= 0 && st.y < st.height {
		st.s.SetPixel(uint32(st.x), uint32(st.y), c.R, c.G, c.B, c.A)
	}
	st.x++
	return nil
}

// decodeRLE decodes a complete RLE4 (f == rle4) or RLE8 stream held in buf.
// Decoding stops at an end-of-bitmap escape or at the end of buf, whichever
// comes first; an opcode cut short by the end of buf ends decoding too.
func decodeRLE(s pixelSetter, buf []byte, f pixelFormat, h *Header) error {
	st := &rleState{
		s:       s,
		p:       h.Palette,
		width:   int64(h.Core.Width),
		height:  int64(h.Core.Height),
		y:       int64(h.Core.Height) - 1,
		step:    -1,
		nibbles: f == rle4,
	}
	if h.Core.TopDown {
		st.y, st.step = 0, 1
	}
	i := 0
	for i+1 < len(buf) {
		count, value := buf[i], buf[i+1]
		i += 2
		if count > 0 {
			// Encoded mode.
			hi, lo := value, value
			if st.nibbles {
				hi, lo = value>>4, value&0xF
			}
			for k := 0; k < int(count); k++ {
				c := hi
				if k%2 != 0 {
					c = lo
				}
				if err := st.put(c); err != nil {
					return err
				}
			}
			continue
		}
		switch value {
		case rleEndOfLine:
			st.x, st.y = 0, st.y+st.step
		case rleEndOfBitmap:
			return nil
		case rleDelta:
			if i+1 >= len(buf) {
				return nil
			}
			st.x += int64(buf[i])
			st.y += st.step * int64(buf[i+1])
			i += 2
		default:
			// Absolute mode.
			n := int(value)
			if st.nibbles {
				n = (n + 1) / 2
			}
			lit := buf[i:]
			truncated := len(lit) < n
			if !truncated {
				lit = lit[:n]
			}
			if err := st.putLiterals(lit, int(value)); err != nil {
				return err
			}
			if truncated {
				return nil
			}
			// Runs are padded to a 16-bit boundary.
			i += n + n%2
		}
	}
	return nil
}

// putLiterals draws up to count literal palette indices packed in lit.
func (st *rleState) putLiterals(lit []byte, count int) error {
	for k := 0; k < count; k++ {
		var c byte
		if st.nibbles {
			if k/2 >= len(lit) {
				break
			}
			c = lit[k/2] >> 4
			if k%2 != 0 {
				c = lit[k/2] & 0xF
			}
		} else {
			if k >= len(lit) {
				break
			}
			c = lit[k]
		}
		if err := st.put(c); err != nil {
			return err
		}
	}
	return nil
}
