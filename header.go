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
	"io"
	"math"
	"strconv"
)

const (
	fileHeaderLen   = 14
	coreHeaderLen   = 12
	infoHeaderLen   = 40
	v4InfoHeaderLen = 108
	v5InfoHeaderLen = 124

	bitfieldsLen = 4 * 3
)

// maxPaletteLen is the number of palette entries kept in memory.
// Any extra entries are still consumed from the reader.
const maxPaletteLen = 256

// Version is the DIB header generation, derived from the header size.
type Version int

const (
	Core2 Version = iota + 1 // BITMAPCOREHEADER, OS/2 and Windows 2.x
	Info3                    // BITMAPINFOHEADER, Windows 3.x
	V4                       // BITMAPV4HEADER
	V5                       // BITMAPV5HEADER
)

func versionFromLen(n uint32) (Version, bool) {
	switch n {
	case coreHeaderLen:
		return Core2, true
	case infoHeaderLen:
		return Info3, true
	case v4InfoHeaderLen:
		return V4, true
	case v5InfoHeaderLen:
		return V5, true
	}
	return 0, false
}

func (v Version) String() string {
	switch v {
	case Core2:
		return "BITMAPCOREHEADER"
	case Info3:
		return "BITMAPINFOHEADER"
	case V4:
		return "BITMAPV4HEADER"
	case V5:
		return "BITMAPV5HEADER"
	}
	return "Version(" + strconv.Itoa(int(v)) + ")"
}

// Compression is the biCompression field of an Info3 or later header.
type Compression uint32

const (
	CompressionNone      Compression = 0 // BI_RGB
	CompressionRLE8      Compression = 1 // BI_RLE8
	CompressionRLE4      Compression = 2 // BI_RLE4
	CompressionBitfields Compression = 3 // BI_BITFIELDS
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "BI_RGB"
	case CompressionRLE8:
		return "BI_RLE8"
	case CompressionRLE4:
		return "BI_RLE4"
	case CompressionBitfields:
		return "BI_BITFIELDS"
	}
	return "Compression(" + strconv.FormatUint(uint64(c), 10) + ")"
}

// FileHeader is the BITMAPFILEHEADER that starts every BMP file.
type FileHeader struct {
	Magic      [2]byte
	FileSize   uint32
	Reserved   uint32
	DataOffset uint32
}

// CoreHeader holds the geometry and pixel format common to all header versions.
type CoreHeader struct {
	Width        uint32
	Height       uint32
	BitsPerPixel uint16
	Planes       uint16
	// TopDown is true if the first stored row is the top row of the image.
	TopDown bool
}

// InfoHeader holds the fields introduced by BITMAPINFOHEADER.
// It is zero for Core2 headers.
type InfoHeader struct {
	Compression     Compression
	ImageDataSize   uint32
	XPelsPerMeter   int32
	YPelsPerMeter   int32
	ColorsUsed      uint32
	ColorsImportant uint32
}

// BitfieldMask describes where each channel lives in a 16 or 32 bit pixel.
// A zero mask means the channel is absent.
type BitfieldMask struct {
	Red, Green, Blue, Alpha uint32
}

// Colorimetry is the color space block of V4 and V5 headers.
// It is parsed but never applied to pixels.
type Colorimetry struct {
	ColorSpaceType uint32
	// Endpoints holds the red, green and blue CIEXYZ endpoints
	// as 2.30 fixed-point X, Y, Z triples.
	Endpoints [9]int32
	// Gamma values are 16.16 fixed-point.
	GammaRed, GammaGreen, GammaBlue uint32
}

// ICCProfile is the profile descriptor of a V5 header.
// Data is an offset from the start of the DIB header.
type ICCProfile struct {
	Intent   uint32
	Data     uint32
	Size     uint32
	Reserved uint32
}

// Header is the normalized form of every header generation.
type Header struct {
	File        FileHeader
	Version     Version
	Core        CoreHeader
	Info        InfoHeader
	Mask        BitfieldMask
	Colorimetry *Colorimetry // nil before V4
	Profile     *ICCProfile  // nil before V5
	Palette     Palette
}

// defaultMask returns the implicit masks of an uncompressed image.
func defaultMask(bpp uint16) BitfieldMask {
	switch bpp {
	case 16:
		return BitfieldMask{Red: 0x7C00, Green: 0x03E0, Blue: 0x001F}
	case 32:
		return BitfieldMask{Red: 0xFF0000, Green: 0x00FF00, Blue: 0x0000FF}
	}
	return BitfieldMask{}
}

// abs32 returns |v|, or false if v has no positive counterpart.
func abs32(v int32) (uint32, bool) {
	if v == math.MinInt32 {
		return 0, false
	}
	if v < 0 {
		return uint32(-v), true
	}
	return uint32(v), true
}

// readHeader reads everything up to the pixel data: the file header, the DIB header,
// the optional bitfields block and the palette. It also returns the number of bytes consumed.
func readHeader(r io.Reader) (*Header, int64, error) {
	var b [fileHeaderLen + v5InfoHeaderLen]byte
	if err := readFull(r, b[:fileHeaderLen+4], "read file header"); err != nil {
		return nil, 0, err
	}
	h := &Header{}
	copy(h.File.Magic[:], b[:2])
	if string(b[:2]) != "BM" {
		return nil, 0, &HeaderError{Kind: BadMagic}
	}
	h.File.FileSize = readUint32(b[2:])
	h.File.Reserved = readUint32(b[6:])
	h.File.DataOffset = readUint32(b[10:])

	headerLen := readUint32(b[14:])
	v, ok := versionFromLen(headerLen)
	if !ok {
		return nil, 0, &HeaderError{Kind: UnsupportedVersion, Value: int64(headerLen)}
	}
	h.Version = v
	if err := readFull(r, b[fileHeaderLen+4:fileHeaderLen+headerLen], "read DIB header"); err != nil {
		return nil, 0, err
	}
	n := int64(fileHeaderLen + headerLen)
	d := b[fileHeaderLen : fileHeaderLen+headerLen]

	if err := h.Core.parse(d, v); err != nil {
		return nil, 0, err
	}
	bpp := h.Core.BitsPerPixel
	if v != Core2 {
		if err := h.Info.parse(d, bpp); err != nil {
			return nil, 0, err
		}
	}

	switch {
	case h.Info.Compression == CompressionBitfields && v == Info3:
		var m [bitfieldsLen]byte
		if err := readFull(r, m[:], "read bitfields"); err != nil {
			return nil, 0, err
		}
		n += bitfieldsLen
		h.Mask = BitfieldMask{
			Red:   readUint32(m[0:]),
			Green: readUint32(m[4:]),
			Blue:  readUint32(m[8:]),
		}
	case h.Info.Compression == CompressionBitfields:
		// V4 and V5 carry all four masks in the header itself.
		h.Mask = BitfieldMask{
			Red:   readUint32(d[40:]),
			Green: readUint32(d[44:]),
			Blue:  readUint32(d[48:]),
			Alpha: readUint32(d[52:]),
		}
	case h.Info.Compression == CompressionNone:
		h.Mask = defaultMask(bpp)
	}

	if v == V4 || v == V5 {
		c := &Colorimetry{ColorSpaceType: readUint32(d[56:])}
		for i := range c.Endpoints {
			c.Endpoints[i] = readInt32(d[60+4*i:])
		}
		c.GammaRed = readUint32(d[96:])
		c.GammaGreen = readUint32(d[100:])
		c.GammaBlue = readUint32(d[104:])
		h.Colorimetry = c
	}
	if v == V5 {
		h.Profile = &ICCProfile{
			Intent:   readUint32(d[108:]),
			Data:     readUint32(d[112:]),
			Size:     readUint32(d[116:]),
			Reserved: readUint32(d[120:]),
		}
	}

	count := h.Info.ColorsUsed
	if count == 0 && bpp < 16 {
		count = 1 << bpp
	}
	switch bpp {
	case 1, 4, 8:
		entryLen := 4
		if v == Core2 {
			entryLen = 3
		}
		p, err := readPalette(r, count, entryLen)
		if err != nil {
			return nil, 0, err
		}
		h.Palette = p
		n += int64(count) * int64(entryLen)
	default:
		if count != 0 {
			return nil, 0, &HeaderError{Kind: InvalidPaletteSize, Value: int64(count)}
		}
	}
	return h, n, nil
}

// parse reads the geometry from a DIB header d of version v.
func (c *CoreHeader) parse(d []byte, v Version) error {
	var w, h int32
	if v == Core2 {
		w, h = int32(readInt16(d[4:])), int32(readInt16(d[6:]))
		d = d[8:]
	} else {
		w, h = readInt32(d[4:]), readInt32(d[8:])
		d = d[12:]
	}
	c.TopDown = h < 0
	var ok bool
	if c.Width, ok = abs32(w); !ok {
		return &HeaderError{Kind: InvalidDimension, Value: int64(w)}
	}
	if c.Height, ok = abs32(h); !ok {
		return &HeaderError{Kind: InvalidDimension, Value: int64(h)}
	}
	c.Planes = readUint16(d[0:])
	if c.Planes != 1 {
		return &HeaderError{Kind: InvalidPlanes, Value: int64(c.Planes)}
	}
	c.BitsPerPixel = readUint16(d[2:])
	switch c.BitsPerPixel {
	case 1, 4, 8, 24:
	case 16, 32:
		if v == Core2 {
			return &HeaderError{Kind: InvalidBitDepth, Value: int64(c.BitsPerPixel)}
		}
	default:
		return &HeaderError{Kind: InvalidBitDepth, Value: int64(c.BitsPerPixel)}
	}
	return nil
}

// parse reads the BITMAPINFOHEADER fields from d and validates
// the compression method against the bit depth.
func (i *InfoHeader) parse(d []byte, bpp uint16) error {
	i.Compression = Compression(readUint32(d[16:]))
	switch {
	case i.Compression == CompressionNone:
	case i.Compression == CompressionRLE8 && bpp == 8:
	case i.Compression == CompressionRLE4 && bpp == 4:
	case i.Compression == CompressionBitfields && (bpp == 16 || bpp == 32):
	default:
		return &HeaderError{Kind: InvalidCompression, Value: int64(i.Compression)}
	}
	i.ImageDataSize = readUint32(d[20:])
	i.XPelsPerMeter = readInt32(d[24:])
	i.YPelsPerMeter = readInt32(d[28:])
	i.ColorsUsed = readUint32(d[32:])
	i.ColorsImportant = readUint32(d[36:])
	return nil
}

// readPalette reads count entries of entryLen bytes each. Entries past
// maxPaletteLen can never be indexed, so they are skipped.
func readPalette(r io.Reader, count uint32, entryLen int) (Palette, error) {
	keep := count
	if keep > maxPaletteLen {
		keep = maxPaletteLen
	}
	var b [maxPaletteLen * 4]byte
	raw := b[:int(keep)*entryLen]
	if err := readFull(r, raw, "read palette"); err != nil {
		return nil, err
	}
	if skip := int64(count-keep) * int64(entryLen); skip > 0 {
		if err := discard(r, skip, "read palette"); err != nil {
			return nil, err
		}
	}
	return newPalette(raw, entryLen, int(keep), paletteAlpha), nil
}
