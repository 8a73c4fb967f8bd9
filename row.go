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

// pixelSetter is the part of a Builder the pixel decoders write to.
type pixelSetter interface {
	SetPixel(x, y uint32, r, g, b, a uint8)
}

// pixelFormat is the pixel layout of an image, chosen once per decode.
type pixelFormat int

const (
	indexed1 pixelFormat = iota
	indexed4
	indexed8
	bitfield16
	direct24
	bitfield32
	rle4
	rle8
)

func formatOf(h *Header) pixelFormat {
	switch h.Core.BitsPerPixel {
	case 1:
		return indexed1
	case 4:
		if h.Info.Compression == CompressionRLE4 {
			return rle4
		}
		return indexed4
	case 8:
		if h.Info.Compression == CompressionRLE8 {
			return rle8
		}
		return indexed8
	case 16:
		return bitfield16
	case 24:
		return direct24
	}
	return bitfield32
}

func (f pixelFormat) compressed() bool { return f == rle4 || f == rle8 }

// stride returns the length of a row: bpp bits per pixel, 4-byte aligned.
func stride(width uint32, bpp uint16) int {
	return int((uint64(width)*uint64(bpp) + 31) / 32 * 4)
}

// rowDecoder emits the width pixels of one stored row as destination row y.
type rowDecoder func(s pixelSetter, row []byte, y uint32) error

// newRowDecoder returns the decoder of an uncompressed format.
func newRowDecoder(f pixelFormat, width uint32, p Palette, m BitfieldMask) rowDecoder {
	switch f {
	case indexed1:
		return func(s pixelSetter, row []byte, y uint32) error {
			return decodeRow1(s, p, row, width, y)
		}
	case indexed4:
		return func(s pixelSetter, row []byte, y uint32) error {
			return decodeRow4(s, p, row, width, y)
		}
	case indexed8:
		return func(s pixelSetter, row []byte, y uint32) error {
			return decodeRow8(s, p, row, width, y)
		}
	case bitfield16:
		bf := newBitfields(m)
		return func(s pixelSetter, row []byte, y uint32) error {
			decodeRow16(s, bf, row, width, y)
			return nil
		}
	case direct24:
		return func(s pixelSetter, row []byte, y uint32) error {
			decodeRow24(s, row, width, y)
			return nil
		}
	case bitfield32:
		bf := newBitfields(m)
		return func(s pixelSetter, row []byte, y uint32) error {
			decodeRow32(s, bf, row, width, y)
			return nil
		}
	}
	panic("unreachable")
}

// decodeRow1 reads 8 palette indices per byte, most significant bit first.
func decodeRow1(s pixelSetter, p Palette, row []byte, width, y uint32) error {
	for x := uint32(0); x < width; x++ {
		c, err := p.lookup(row[x/8] >> (7 - x%8) & 0x1)
		if err != nil {
			return err
		}
		s.SetPixel(x, y, c.R, c.G, c.B, c.A)
	}
	return nil
}

// decodeRow4 reads 2 palette indices per byte, high nibble first.
func decodeRow4(s pixelSetter, p Palette, row []byte, width, y uint32) error {
	for x := uint32(0); x < width; x++ {
		i := row[x/2]
		if x%2 == 0 {
			i >>= 4
		} else {
			i &= 0xF
		}
		c, err := p.lookup(i)
		if err != nil {
			return err
		}
		s.SetPixel(x, y, c.R, c.G, c.B, c.A)
	}
	return nil
}

func decodeRow8(s pixelSetter, p Palette, row []byte, width, y uint32) error {
	for x := uint32(0); x < width; x++ {
		c, err := p.lookup(row[x])
		if err != nil {
			return err
		}
		s.SetPixel(x, y, c.R, c.G, c.B, c.A)
	}
	return nil
}

func decodeRow16(s pixelSetter, bf *bitfields, row []byte, width, y uint32) {
	for x := uint32(0); x < width; x++ {
		r, g, b, a := bf.rgba(uint32(readUint16(row[2*x:])))
		s.SetPixel(x, y, r, g, b, a)
	}
}

func decodeRow24(s pixelSetter, row []byte, width, y uint32) {
	for x := uint32(0); x < width; x++ {
		// BMP images are stored in BGR order rather than RGB order.
		p := row[3*x : 3*x+3]
		s.SetPixel(x, y, p[2], p[1], p[0], 0xFF)
	}
}

func decodeRow32(s pixelSetter, bf *bitfields, row []byte, width, y uint32) {
	for x := uint32(0); x < width; x++ {
		r, g, b, a := bf.rgba(readUint32(row[4*x:]))
		s.SetPixel(x, y, r, g, b, a)
	}
}
