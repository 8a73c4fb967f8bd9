package bmp

import (
	"bytes"
	"encoding/binary"
	"image/color"
)

// fixture describes a BMP file to be assembled by bytes.
type fixture struct {
	version     Version
	headerLen   uint32 // overrides the length implied by version
	width       int32
	height      int32
	planes      uint16 // 0 means 1
	bpp         uint16
	compression Compression
	imageSize   uint32
	colorsUsed  uint32
	masks       [4]uint32 // V4/V5 header masks, or the Info3 bitfields block
	colorimetry Colorimetry
	profile     ICCProfile
	palette     []byte
	gap         int // bytes between the palette and the pixels
	pixels      []byte
}

func (f fixture) dibLen() uint32 {
	if f.headerLen != 0 {
		return f.headerLen
	}
	switch f.version {
	case Core2:
		return coreHeaderLen
	case V4:
		return v4InfoHeaderLen
	case V5:
		return v5InfoHeaderLen
	}
	return infoHeaderLen
}

func (f fixture) bytes() []byte {
	le := binary.LittleEndian
	planes := f.planes
	if planes == 0 {
		planes = 1
	}

	dib := new(bytes.Buffer)
	_ = binary.Write(dib, le, f.dibLen())
	if f.version == Core2 {
		_ = binary.Write(dib, le, int16(f.width))
		_ = binary.Write(dib, le, int16(f.height))
		_ = binary.Write(dib, le, planes)
		_ = binary.Write(dib, le, f.bpp)
	} else {
		_ = binary.Write(dib, le, f.width)
		_ = binary.Write(dib, le, f.height)
		_ = binary.Write(dib, le, planes)
		_ = binary.Write(dib, le, f.bpp)
		_ = binary.Write(dib, le, uint32(f.compression))
		_ = binary.Write(dib, le, f.imageSize)
		_ = binary.Write(dib, le, int32(2835))
		_ = binary.Write(dib, le, int32(2835))
		_ = binary.Write(dib, le, f.colorsUsed)
		_ = binary.Write(dib, le, uint32(0))
	}
	if f.version == V4 || f.version == V5 {
		_ = binary.Write(dib, le, f.masks)
		_ = binary.Write(dib, le, f.colorimetry.ColorSpaceType)
		_ = binary.Write(dib, le, f.colorimetry.Endpoints)
		_ = binary.Write(dib, le, f.colorimetry.GammaRed)
		_ = binary.Write(dib, le, f.colorimetry.GammaGreen)
		_ = binary.Write(dib, le, f.colorimetry.GammaBlue)
	}
	if f.version == V5 {
		_ = binary.Write(dib, le, f.profile)
	}
	if (f.version == 0 || f.version == Info3) && f.compression == CompressionBitfields {
		_ = binary.Write(dib, le, f.masks[:3])
	}
	dib.Write(f.palette)

	offset := uint32(fileHeaderLen+dib.Len()) + uint32(f.gap)
	file := new(bytes.Buffer)
	file.WriteString("BM")
	_ = binary.Write(file, le, offset+uint32(len(f.pixels)))
	_ = binary.Write(file, le, uint32(0))
	_ = binary.Write(file, le, offset)
	file.Write(dib.Bytes())
	file.Write(make([]byte, f.gap))
	file.Write(f.pixels)
	return file.Bytes()
}

// bgrx returns a 4-byte-per-entry palette for colors.
func bgrx(colors ...color.NRGBA) []byte {
	var b []byte
	for _, c := range colors {
		b = append(b, c.B, c.G, c.R, 0)
	}
	return b
}

var (
	black = color.NRGBA{0, 0, 0, 0xFF}
	white = color.NRGBA{0xFF, 0xFF, 0xFF, 0xFF}
	red   = color.NRGBA{0xFF, 0, 0, 0xFF}
	green = color.NRGBA{0, 0xFF, 0, 0xFF}
	blue  = color.NRGBA{0, 0, 0xFF, 0xFF}
)

type point struct{ x, y uint32 }

type setPixelCall struct {
	point
	c color.NRGBA
}

// recorder is a Builder that records every call made to it.
type recorder struct {
	sizes      []point
	pixels     []setPixelCall
	early      bool // SetPixel came before SetSize
	builds     int
	buildErr   error
	outOfRange bool // SetPixel outside the size
}

func (r *recorder) SetSize(width, height uint32) {
	r.sizes = append(r.sizes, point{width, height})
}

func (r *recorder) SetPixel(x, y uint32, cr, cg, cb, ca uint8) {
	if len(r.sizes) == 0 {
		r.early = true
	} else if s := r.sizes[len(r.sizes)-1]; x >= s.x || y >= s.y {
		r.outOfRange = true
	}
	r.pixels = append(r.pixels, setPixelCall{point{x, y}, color.NRGBA{cr, cg, cb, ca}})
}

func (r *recorder) Build() (*recorder, error) {
	r.builds++
	return r, r.buildErr
}

// at returns the last color set at (x, y).
func (r *recorder) at(x, y uint32) (color.NRGBA, bool) {
	for i := len(r.pixels) - 1; i >= 0; i-- {
		if r.pixels[i].x == x && r.pixels[i].y == y {
			return r.pixels[i].c, true
		}
	}
	return color.NRGBA{}, false
}

// counts returns how many times each coordinate was set.
func (r *recorder) counts() map[point]int {
	m := make(map[point]int)
	for _, p := range r.pixels {
		m[p.point]++
	}
	return m
}

func decodeRecorded(data []byte) (*recorder, error) {
	rec := &recorder{}
	_, err := DecodeInto[*recorder](bytes.NewReader(data), rec)
	return rec, err
}
