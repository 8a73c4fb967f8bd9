package main

import (
	"fmt"
	"io"

	bmp "github.com/sergeymakinen/go-dib"
)

const (
	lcsCalibratedRGB     = 0
	lcsSRGB              = 0x73524742 // 'sRGB'
	lcsWindowsColorSpace = 0x57696E20 // 'Win '
	profileLinked        = 0x4C494E4B // 'LINK'
	profileEmbedded      = 0x4D424544 // 'MBED'
	fixed2dot30          = 1 << 30
	fixed16dot16         = 1 << 16
)

var colorSpaceNames = map[uint32]string{
	lcsCalibratedRGB:     "LCS_CALIBRATED_RGB",
	lcsSRGB:              "LCS_sRGB",
	lcsWindowsColorSpace: "LCS_WINDOWS_COLOR_SPACE",
	profileLinked:        "PROFILE_LINKED",
	profileEmbedded:      "PROFILE_EMBEDDED",
}

var intentNames = map[uint32]string{
	1: "LCS_GM_BUSINESS (Saturation)",
	2: "LCS_GM_GRAPHICS (Relative)",
	4: "LCS_GM_IMAGES (Perceptual)",
	8: "LCS_GM_ABS_COLORIMETRIC",
}

func name(names map[uint32]string, v uint32) string {
	if s, ok := names[v]; ok {
		return s
	}
	return "unknown"
}

// printHeader writes a readable dump of h.
func printHeader(w io.Writer, h *bmp.Header) {
	fmt.Fprintf(w, "File size: %d\n", h.File.FileSize)
	fmt.Fprintf(w, "Pixel data offset: %d\n", h.File.DataOffset)
	fmt.Fprintf(w, "Header: %v\n", h.Version)
	fmt.Fprintf(w, "Width: %d\n", h.Core.Width)
	fmt.Fprintf(w, "Height: %d\n", h.Core.Height)
	fmt.Fprintf(w, "Top-down: %t\n", h.Core.TopDown)
	fmt.Fprintf(w, "Bits per pixel: %d\n", h.Core.BitsPerPixel)
	if h.Version != bmp.Core2 {
		fmt.Fprintf(w, "Compression: %v\n", h.Info.Compression)
		fmt.Fprintf(w, "Image data size: %d\n", h.Info.ImageDataSize)
		fmt.Fprintf(w, "Resolution: %dx%d pixels/meter\n", h.Info.XPelsPerMeter, h.Info.YPelsPerMeter)
		fmt.Fprintf(w, "Colors used: %d\n", h.Info.ColorsUsed)
		fmt.Fprintf(w, "Colors important: %d\n", h.Info.ColorsImportant)
	}
	if h.Core.BitsPerPixel == 16 || h.Core.BitsPerPixel == 32 {
		m := h.Mask
		fmt.Fprintf(w, "Masks: R=0x%08x G=0x%08x B=0x%08x A=0x%08x\n", m.Red, m.Green, m.Blue, m.Alpha)
	}
	if c := h.Colorimetry; c != nil {
		fmt.Fprintf(w, "Color space: 0x%08x (%s)\n", c.ColorSpaceType, name(colorSpaceNames, c.ColorSpaceType))
		if c.ColorSpaceType == lcsCalibratedRGB {
			for i, ch := range []string{"Red", "Green", "Blue"} {
				e := c.Endpoints[3*i : 3*i+3]
				fmt.Fprintf(w, "%s endpoint: X=%.6f Y=%.6f Z=%.6f\n", ch,
					float64(e[0])/fixed2dot30, float64(e[1])/fixed2dot30, float64(e[2])/fixed2dot30)
			}
			fmt.Fprintf(w, "Gamma: R=%.4f G=%.4f B=%.4f\n",
				float64(c.GammaRed)/fixed16dot16, float64(c.GammaGreen)/fixed16dot16, float64(c.GammaBlue)/fixed16dot16)
		}
	}
	if p := h.Profile; p != nil {
		fmt.Fprintf(w, "Intent: %d (%s)\n", p.Intent, name(intentNames, p.Intent))
		fmt.Fprintf(w, "Profile data: offset %d, size %d\n", p.Data, p.Size)
	}
	fmt.Fprintf(w, "Palette entries: %d\n", len(h.Palette))
}
