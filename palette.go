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

import (
	"fmt"
	"image/color"
)

// paletteAlpha selects whether the fourth byte of an Info3 or later palette
// entry is used as alpha. The byte is reserved by the format, and some
// writers leave garbage in it, so it is ignored.
const paletteAlpha = false

// Palette is the color table of a 1, 4 or 8 bit-per-pixel image.
type Palette []color.NRGBA

// newPalette builds a palette of count entries from raw, where each entry
// is entryLen (3 or 4) bytes long.
func newPalette(raw []byte, entryLen, count int, realAlpha bool) Palette {
	p := make(Palette, count)
	for i := range p {
		e := raw[i*entryLen : (i+1)*entryLen]
		// BMP images are stored in BGR order rather than RGB order.
		p[i] = color.NRGBA{R: e[2], G: e[1], B: e[0], A: 0xFF}
		if realAlpha && entryLen == 4 {
			p[i].A = e[3]
		}
	}
	return p
}

func (p Palette) lookup(i byte) (color.NRGBA, error) {
	if int(i) >= len(p) {
		return color.NRGBA{}, fmt.Errorf("%w: index %d, palette has %d colors", ErrPaletteIndexOutOfRange, i, len(p))
	}
	return p[i], nil
}
