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

// Package bmp implements a BMP image decoder.
//
// Pixels are delivered to a caller-supplied Builder, so an image can be
// decoded into any representation. Decode builds an *image.NRGBA.
//
// The BMP specification is at http://www.digicamsoft.com/bmp/bmp.html.
package bmp

import (
	"image"
	"image/color"
	"io"
)

// Limits on the image a header may declare. maxPixels bounds width*height,
// which is what a builder allocates; maxStride bounds the row buffer of
// uncompressed images.
const (
	maxPixels = 1 << 28
	maxStride = 1 << 24
)

// Builder receives the decoded image.
//
// SetSize is called once, before any pixel. SetPixel is called with
// coordinates inside that size, where (0, 0) is the top-left corner.
// Pixels arrive in the order they are stored, so a bottom-up image
// delivers its bottom row first. Uncompressed images set every pixel
// exactly once; RLE images may leave pixels unset.
// Build is called once all pixels are set, and only if decoding succeeded;
// its result is the result of DecodeInto.
type Builder[T any] interface {
	SetSize(width, height uint32)
	SetPixel(x, y uint32, r, g, b, a uint8)
	Build() (T, error)
}

// canvas is a Builder without the result.
type canvas interface {
	SetSize(width, height uint32)
	pixelSetter
}

func readUint16(b []byte) uint16 {
	return uint16(b[0]) | uint16(b[1])<<8
}

func readUint32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

func readInt16(b []byte) int16 { return int16(readUint16(b)) }

func readInt32(b []byte) int32 { return int32(readUint32(b)) }

// readFull fills b from r. A short read is reported as io.ErrUnexpectedEOF.
func readFull(r io.Reader, b []byte, op string) error {
	if _, err := io.ReadFull(r, b); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return &IOError{Op: op, Err: err}
	}
	return nil
}

// discard skips n bytes of r.
func discard(r io.Reader, n int64, op string) error {
	if _, err := io.CopyN(io.Discard, r, n); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return &IOError{Op: op, Err: err}
	}
	return nil
}

type decoder struct {
	r io.Reader
	h *Header
	n int64 // bytes consumed from r
}

func (d *decoder) readHeader() error {
	h, n, err := readHeader(d.r)
	if err != nil {
		return err
	}
	d.h, d.n = h, n
	return nil
}

func (d *decoder) decode(c canvas) error {
	h := d.h
	width, height := h.Core.Width, h.Core.Height
	if uint64(width)*uint64(height) > maxPixels {
		return UnsupportedError("dimensions too large")
	}
	f := formatOf(h)
	if f.compressed() && h.Info.ImageDataSize == 0 {
		return ErrMissingCompressedLength
	}
	if !f.compressed() && stride(width, h.Core.BitsPerPixel) > maxStride {
		return UnsupportedError("row too large")
	}
	// Some writers leave a gap between the palette and the pixels.
	if off := int64(h.File.DataOffset); off > d.n {
		if err := discard(d.r, off-d.n, "skip to pixel data"); err != nil {
			return err
		}
		d.n = off
	}
	c.SetSize(width, height)
	if f.compressed() {
		return d.readRLE(c, f)
	}

	decodeRow := newRowDecoder(f, width, h.Palette, h.Mask)
	b := make([]byte, stride(width, h.Core.BitsPerPixel))
	for row := uint32(0); row < height; row++ {
		if err := readFull(d.r, b, "read pixel data"); err != nil {
			return err
		}
		y := height - 1 - row
		if h.Core.TopDown {
			y = row
		}
		if err := decodeRow(c, b, y); err != nil {
			return err
		}
	}
	return nil
}

// readRLE reads the whole compressed stream and decodes it. The stream is
// read incrementally, so a bogus ImageDataSize fails on the short read
// instead of allocating up front.
func (d *decoder) readRLE(c canvas, f pixelFormat) error {
	size := int64(d.h.Info.ImageDataSize)
	buf, err := io.ReadAll(io.LimitReader(d.r, size))
	if err != nil {
		return &IOError{Op: "read compressed data", Err: err}
	}
	if int64(len(buf)) < size {
		return &IOError{Op: "read compressed data", Err: io.ErrUnexpectedEOF}
	}
	d.n += size
	return decodeRLE(c, buf, f, d.h)
}

// DecodeInto reads a BMP image from r and passes its pixels to b.
// It returns the result of b.Build.
func DecodeInto[T any](r io.Reader, b Builder[T]) (T, error) {
	var zero T
	d := &decoder{r: r}
	if err := d.readHeader(); err != nil {
		return zero, err
	}
	if err := d.decode(b); err != nil {
		return zero, err
	}
	return b.Build()
}

// Decode reads a BMP image from r and returns it as an image.Image.
func Decode(r io.Reader) (image.Image, error) {
	return DecodeInto[image.Image](r, NewImageBuilder())
}

// DecodeConfig returns the color model and dimensions of a BMP image without
// decoding the entire image.
func DecodeConfig(r io.Reader) (image.Config, error) {
	h, err := ReadHeader(r)
	if err != nil {
		return image.Config{}, err
	}
	return image.Config{
		ColorModel: color.NRGBAModel,
		Width:      int(h.Core.Width),
		Height:     int(h.Core.Height),
	}, nil
}

// ReadHeader reads the headers and the palette of a BMP image from r,
// leaving r at the start of the pixel data or of the gap before it.
func ReadHeader(r io.Reader) (*Header, error) {
	d := &decoder{r: r}
	if err := d.readHeader(); err != nil {
		return nil, err
	}
	return d.h, nil
}

func init() {
	image.RegisterFormat("bmp", "BM????\x00\x00\x00\x00", Decode, DecodeConfig)
}
