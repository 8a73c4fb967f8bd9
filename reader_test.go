package bmp

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode24Single(t *testing.T) {
	rec, err := decodeRecorded(fixture{
		width: 1, height: 1, bpp: 24,
		pixels: []byte{0x0A, 0x14, 0x1E, 0x00},
	}.bytes())
	require.NoError(t, err)
	assert.Equal(t, []point{{1, 1}}, rec.sizes)
	assert.Equal(t, []setPixelCall{{point{0, 0}, color.NRGBA{30, 20, 10, 255}}}, rec.pixels)
	assert.Equal(t, 1, rec.builds)
}

func TestDecodeBottomUp(t *testing.T) {
	rec, err := decodeRecorded(fixture{
		width: 2, height: 2, bpp: 1,
		palette: bgrx(black, white),
		pixels: []byte{
			0x80, 0, 0, 0, // file row 0: white, black
			0x40, 0, 0, 0, // file row 1: black, white
		},
	}.bytes())
	require.NoError(t, err)
	assert.Equal(t, []setPixelCall{
		{point{0, 1}, white}, {point{1, 1}, black},
		{point{0, 0}, black}, {point{1, 0}, white},
	}, rec.pixels)
}

func TestDecodeTopDown(t *testing.T) {
	rec, err := decodeRecorded(fixture{
		width: 2, height: -2, bpp: 1,
		palette: bgrx(black, white),
		pixels: []byte{
			0x80, 0, 0, 0,
			0x40, 0, 0, 0,
		},
	}.bytes())
	require.NoError(t, err)
	assert.Equal(t, []point{{2, 2}}, rec.sizes)
	assert.Equal(t, []setPixelCall{
		{point{0, 0}, white}, {point{1, 0}, black},
		{point{0, 1}, black}, {point{1, 1}, white},
	}, rec.pixels)
}

func TestDecodeFormats(t *testing.T) {
	tests := []struct {
		name     string
		f        fixture
		expected [][]color.NRGBA // top row first
	}{
		{
			name: "4 bpp",
			f: fixture{
				width: 3, height: 1, bpp: 4, colorsUsed: 5,
				palette: bgrx(black, white, red, green, blue),
				pixels:  []byte{0x24, 0x30, 0, 0},
			},
			expected: [][]color.NRGBA{{red, blue, green}},
		},
		{
			name: "8 bpp",
			f: fixture{
				width: 2, height: 2, bpp: 8, colorsUsed: 3,
				palette: bgrx(black, white, red),
				pixels:  []byte{0, 1, 0, 0, 2, 2, 0, 0},
			},
			expected: [][]color.NRGBA{{red, red}, {black, white}},
		},
		{
			name: "8 bpp core",
			f: fixture{
				version: Core2,
				width:   2, height: 1, bpp: 8,
				palette: append(append([]byte{0, 0, 0xFF}, make([]byte, 254*3)...), 0xFF, 0, 0),
				pixels:  []byte{0, 255, 0, 0},
			},
			expected: [][]color.NRGBA{{red, blue}},
		},
		{
			name: "16 bpp default mask",
			f: fixture{
				width: 2, height: 1, bpp: 16,
				pixels: []byte{0xFF, 0xFF, 0xE0, 0x03},
			},
			expected: [][]color.NRGBA{{white, green}},
		},
		{
			name: "16 bpp 565 bitfields",
			f: fixture{
				version: Info3,
				width:   2, height: 1, bpp: 16, compression: CompressionBitfields,
				masks:  [4]uint32{0xF800, 0x07E0, 0x001F},
				pixels: []byte{0x00, 0xF8, 0xE0, 0x07},
			},
			expected: [][]color.NRGBA{{red, green}},
		},
		{
			name: "16 bpp bitfields with default header",
			f: fixture{
				width: 1, height: 1, bpp: 16, compression: CompressionBitfields,
				masks:  [4]uint32{0x000F, 0x00F0, 0x0F00},
				pixels: []byte{0x0F, 0x00, 0x00, 0x00},
			},
			expected: [][]color.NRGBA{{red}},
		},
		{
			name: "32 bpp default mask",
			f: fixture{
				width: 1, height: 1, bpp: 32,
				pixels: []byte{0x0A, 0x14, 0x1E, 0x00},
			},
			expected: [][]color.NRGBA{{{30, 20, 10, 0xFF}}},
		},
		{
			name: "32 bpp v5 alpha",
			f: fixture{
				version: V5,
				width:   1, height: 1, bpp: 32, compression: CompressionBitfields,
				masks:  [4]uint32{0x00FF0000, 0x0000FF00, 0x000000FF, 0xFF000000},
				pixels: []byte{0x0A, 0x14, 0x1E, 0x40},
			},
			expected: [][]color.NRGBA{{{30, 20, 10, 0x40}}},
		},
		{
			name: "rle8",
			f: fixture{
				width: 3, height: 2, bpp: 8, compression: CompressionRLE8, colorsUsed: 3,
				palette:   bgrx(black, white, red),
				imageSize: 10,
				pixels:    []byte{0x03, 0x01, 0x00, 0x00, 0x02, 0x02, 0x01, 0x00, 0x00, 0x01},
			},
			expected: [][]color.NRGBA{{red, red, black}, {white, white, white}},
		},
		{
			name: "rle4",
			f: fixture{
				width: 4, height: 1, bpp: 4, compression: CompressionRLE4, colorsUsed: 5,
				palette:   bgrx(black, white, red, green, blue),
				imageSize: 6,
				pixels:    []byte{0x00, 0x04, 0x12, 0x34, 0x00, 0x01},
			},
			expected: [][]color.NRGBA{{white, red, green, blue}},
		},
		{
			name: "gap before pixels",
			f: fixture{
				width: 1, height: 1, bpp: 24, gap: 6,
				pixels: []byte{0xFF, 0x00, 0x00, 0x00},
			},
			expected: [][]color.NRGBA{{blue}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := decodeRecorded(tt.f.bytes())
			require.NoError(t, err)
			require.Len(t, rec.sizes, 1)
			assert.False(t, rec.early)
			assert.False(t, rec.outOfRange)
			for y, row := range tt.expected {
				for x, c := range row {
					got, ok := rec.at(uint32(x), uint32(y))
					if assert.True(t, ok, "pixel (%d, %d) not set", x, y) {
						assert.Equal(t, c, got, "pixel (%d, %d)", x, y)
					}
				}
			}
		})
	}
}

func TestDecodeSetsEveryPixelOnce(t *testing.T) {
	for _, bpp := range []uint16{1, 4, 8, 16, 24, 32} {
		f := fixture{width: 5, height: -3, bpp: bpp}
		if bpp <= 8 {
			f.colorsUsed = 2
			f.palette = bgrx(black, white)
		}
		f.pixels = make([]byte, 3*stride(5, bpp))
		rec, err := decodeRecorded(f.bytes())
		require.NoError(t, err, "%d bpp", bpp)

		counts := rec.counts()
		assert.Len(t, counts, 15, "%d bpp", bpp)
		for p, n := range counts {
			assert.Equal(t, 1, n, "%d bpp: pixel %v", bpp, p)
		}
		assert.False(t, rec.outOfRange)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name  string
		data  []byte
		check func(t *testing.T, err error)
	}{
		{
			name: "unsupported header version",
			data: fixture{headerLen: 200, width: 1, height: 1, bpp: 24, pixels: make([]byte, 4)}.bytes(),
			check: func(t *testing.T, err error) {
				var he *HeaderError
				require.ErrorAs(t, err, &he)
				assert.Equal(t, UnsupportedVersion, he.Kind)
				assert.Equal(t, int64(200), he.Value)
			},
		},
		{
			name: "missing compressed length",
			data: fixture{
				width: 1, height: 1, bpp: 8, compression: CompressionRLE8, colorsUsed: 1,
				palette: bgrx(black), pixels: []byte{0x01, 0x00, 0x00, 0x01},
			}.bytes(),
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrMissingCompressedLength)
				var ce ConfigError
				assert.ErrorAs(t, err, &ce)
			},
		},
		{
			name: "dimensions too large",
			data: fixture{width: 1 << 15, height: 1 << 14, bpp: 24}.bytes(),
			check: func(t *testing.T, err error) {
				assert.Equal(t, UnsupportedError("dimensions too large"), err)
			},
		},
		{
			name: "row too large",
			data: fixture{width: 1 << 24, height: 1, bpp: 32}.bytes(),
			check: func(t *testing.T, err error) {
				assert.Equal(t, UnsupportedError("row too large"), err)
			},
		},
		{
			name: "short pixel data",
			data: fixture{width: 2, height: 2, bpp: 24, pixels: make([]byte, 8)}.bytes(),
			check: func(t *testing.T, err error) {
				var ioe *IOError
				require.ErrorAs(t, err, &ioe)
				assert.Equal(t, "read pixel data", ioe.Op)
				assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
			},
		},
		{
			name: "short compressed data",
			data: fixture{
				width: 2, height: 1, bpp: 8, compression: CompressionRLE8, imageSize: 16, colorsUsed: 1,
				palette: bgrx(black), pixels: []byte{0x02, 0x00, 0x00, 0x01},
			}.bytes(),
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
			},
		},
		{
			name: "palette index out of range",
			data: fixture{
				width: 2, height: 1, bpp: 8, colorsUsed: 2,
				palette: bgrx(black, white), pixels: []byte{1, 2, 0, 0},
			}.bytes(),
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrPaletteIndexOutOfRange)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := decodeRecorded(tt.data)
			require.Error(t, err)
			tt.check(t, err)
			assert.Equal(t, 0, rec.builds)
		})
	}
}

func TestDecodeNoPixelsBeforeFailure(t *testing.T) {
	for _, data := range [][]byte{
		fixture{headerLen: 200, width: 1, height: 1, bpp: 24, pixels: make([]byte, 4)}.bytes(),
		fixture{width: 1, height: 1, bpp: 8, compression: CompressionRLE8, colorsUsed: 1, palette: bgrx(black)}.bytes(),
		fixture{width: 1 << 24, height: 1, bpp: 32}.bytes(),
	} {
		rec, err := decodeRecorded(data)
		require.Error(t, err)
		assert.Empty(t, rec.sizes)
		assert.Empty(t, rec.pixels)
	}
}

func TestDecodeBuildError(t *testing.T) {
	buildErr := errors.New("out of memory")
	rec := &recorder{buildErr: buildErr}
	_, err := DecodeInto[*recorder](bytes.NewReader(fixture{
		width: 1, height: 1, bpp: 24, pixels: make([]byte, 4),
	}.bytes()), rec)
	assert.Equal(t, buildErr, err)
	assert.Equal(t, 1, rec.builds)
}

func TestDecode(t *testing.T) {
	m, err := Decode(bytes.NewReader(fixture{
		width: 2, height: 1, bpp: 24,
		pixels: []byte{0x00, 0x00, 0xFF, 0xFF, 0x00, 0x00, 0, 0},
	}.bytes()))
	require.NoError(t, err)
	img, ok := m.(*image.NRGBA)
	require.True(t, ok)
	assert.Equal(t, image.Rect(0, 0, 2, 1), img.Bounds())
	assert.Equal(t, red, img.NRGBAAt(0, 0))
	assert.Equal(t, blue, img.NRGBAAt(1, 0))
}

func TestDecodeConfig(t *testing.T) {
	cfg, err := DecodeConfig(bytes.NewReader(fixture{
		version: V4, width: 7, height: -3, bpp: 32, compression: CompressionBitfields,
		masks: [4]uint32{0xFF0000, 0xFF00, 0xFF, 0},
	}.bytes()))
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Width)
	assert.Equal(t, 3, cfg.Height)
	assert.Equal(t, color.NRGBAModel, cfg.ColorModel)

	_, err = DecodeConfig(bytes.NewReader([]byte("GIF89a")))
	assert.Error(t, err)
}

func TestImageDecodeRegistered(t *testing.T) {
	m, format, err := image.Decode(bytes.NewReader(fixture{
		width: 3, height: 2, bpp: 24, pixels: make([]byte, 24),
	}.bytes()))
	require.NoError(t, err)
	assert.Equal(t, "bmp", format)
	assert.Equal(t, image.Rect(0, 0, 3, 2), m.Bounds())
}
