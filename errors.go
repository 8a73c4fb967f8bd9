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

import "strconv"

// UnsupportedError reports that the input uses a valid but unimplemented BMP feature.
type UnsupportedError string

func (e UnsupportedError) Error() string { return "bmp: unsupported feature: " + string(e) }

// ConfigError reports that the headers lack information the decoder needs
// to bound the pixel data.
type ConfigError string

func (e ConfigError) Error() string { return "bmp: invalid configuration: " + string(e) }

// PixelDataError reports that the pixel data references something
// the headers did not declare.
type PixelDataError string

func (e PixelDataError) Error() string { return "bmp: invalid pixel data: " + string(e) }

var (
	// ErrMissingCompressedLength is returned for RLE images with a zero image size,
	// as there is no other way to know where the compressed stream ends.
	ErrMissingCompressedLength = ConfigError("missing compressed data length")

	// ErrPaletteIndexOutOfRange is returned when a pixel refers to a color
	// past the end of the palette.
	ErrPaletteIndexOutOfRange = PixelDataError("palette index out of range")
)

// HeaderErrorKind identifies the header check that failed.
type HeaderErrorKind int

const (
	BadMagic HeaderErrorKind = iota + 1
	UnsupportedVersion
	InvalidDimension
	InvalidPlanes
	InvalidBitDepth
	InvalidCompression
	InvalidPaletteSize
)

var headerErrorKindNames = map[HeaderErrorKind]string{
	BadMagic:           "not a BMP file",
	UnsupportedVersion: "unsupported header version",
	InvalidDimension:   "invalid dimension",
	InvalidPlanes:      "invalid number of planes",
	InvalidBitDepth:    "invalid bit depth",
	InvalidCompression: "invalid compression",
	InvalidPaletteSize: "invalid palette size",
}

func (k HeaderErrorKind) String() string {
	if s, ok := headerErrorKindNames[k]; ok {
		return s
	}
	return "HeaderErrorKind(" + strconv.Itoa(int(k)) + ")"
}

// HeaderError reports that the file or DIB header is invalid.
// Value holds the offending field value, if any.
//
// HeaderError values match with errors.Is by Kind:
//
//	errors.Is(err, &bmp.HeaderError{Kind: bmp.UnsupportedVersion})
type HeaderError struct {
	Kind  HeaderErrorKind
	Value int64
}

func (e *HeaderError) Error() string {
	s := "bmp: invalid header: " + e.Kind.String()
	if e.Kind != BadMagic {
		s += " (" + strconv.FormatInt(e.Value, 10) + ")"
	}
	return s
}

func (e *HeaderError) Is(target error) bool {
	t, ok := target.(*HeaderError)
	return ok && t.Kind == e.Kind
}

// IOError reports that the underlying reader failed or ended early.
// Short reads unwrap to io.ErrUnexpectedEOF.
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string { return "bmp: " + e.Op + ": " + e.Err.Error() }

func (e *IOError) Unwrap() error { return e.Err }
