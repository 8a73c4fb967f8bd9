// Command bmpconv converts BMP images to PNG or TIFF, or prints their headers.
//
// Usage:
//
//	bmpconv -input in.bmp [-output out.png] [-format png|tiff] [-info] [-log-level debug]
//
// Inputs compressed with zstd are decompressed first. BMPCONV_FORMAT,
// BMPCONV_LOG_LEVEL, BMPCONV_MAX_INPUT_SIZE and BMPCONV_ZSTD set the
// defaults of the matching options.
package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
	bmp "github.com/sergeymakinen/go-dib"
	"github.com/sergeymakinen/go-dib/internal/config"
	"github.com/sergeymakinen/go-dib/internal/logging"
	"golang.org/x/image/tiff"
)

// zstdMagic starts every zstd frame.
var zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}

var errInputTooLarge = errors.New("input too large")

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		logging.Error("%v", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("bmpconv", flag.ContinueOnError)
	input := fs.String("input", "", "Input BMP file, optionally zstd-compressed")
	output := fs.String("output", "", "Output file (optional, defaults to input filename with the format extension)")
	format := fs.String("format", "", "Output format: png or tiff (default png)")
	info := fs.Bool("info", false, "Print the BMP headers instead of converting")
	logLevel := fs.String("log-level", "", "Log level: debug, info, warn, error (default info)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.LoadWithOverrides(config.LoadOptions{
		Input:    *input,
		Output:   *output,
		Format:   *format,
		LogLevel: *logLevel,
		InfoOnly: *info,
	})
	if err != nil {
		return err
	}
	logging.SetLevelFromString(cfg.LogLevel)

	data, err := readInput(cfg)
	if err != nil {
		return err
	}
	logging.Debug("Read %d bytes from %s", len(data), cfg.Input)

	if cfg.InfoOnly {
		h, err := bmp.ReadHeader(bytes.NewReader(data))
		if err != nil {
			return fmt.Errorf("failed to read headers: %w", err)
		}
		printHeader(stdout, h)
		return nil
	}
	return convert(cfg, data)
}

// readInput reads the input file, decompressing it if it is a zstd frame.
// Both the file and the decompressed data are limited to cfg.MaxInputSize.
func readInput(cfg *config.Config) ([]byte, error) {
	f, err := os.Open(cfg.Input)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, cfg.MaxInputSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read input file: %w", err)
	}
	if int64(len(data)) > cfg.MaxInputSize {
		return nil, fmt.Errorf("%s: %w: limit is %d bytes", cfg.Input, errInputTooLarge, cfg.MaxInputSize)
	}
	if !bytes.HasPrefix(data, zstdMagic) {
		return data, nil
	}
	if !cfg.Zstd {
		logging.Warn("%s looks zstd-compressed but BMPCONV_ZSTD is off", cfg.Input)
		return data, nil
	}

	logging.Debug("Decompressing zstd input (%d bytes)", len(data))
	dec, err := zstd.NewReader(nil, zstd.WithDecoderMaxMemory(uint64(cfg.MaxInputSize)))
	if err != nil {
		return nil, fmt.Errorf("zstd decode: %w", err)
	}
	defer dec.Close()
	out, err := dec.DecodeAll(data, nil)
	if err != nil {
		if errors.Is(err, zstd.ErrDecoderSizeExceeded) || errors.Is(err, zstd.ErrWindowSizeExceeded) {
			return nil, fmt.Errorf("%s: %w: limit is %d bytes", cfg.Input, errInputTooLarge, cfg.MaxInputSize)
		}
		return nil, fmt.Errorf("zstd decode: %w", err)
	}
	if int64(len(out)) > cfg.MaxInputSize {
		return nil, fmt.Errorf("%s: %w: limit is %d bytes", cfg.Input, errInputTooLarge, cfg.MaxInputSize)
	}
	return out, nil
}

func convert(cfg *config.Config, data []byte) error {
	h, err := bmp.ReadHeader(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to read headers: %w", err)
	}
	logging.Debug("%s, %dx%d, %d bpp, %v, top-down: %t, %d palette entries",
		h.Version, h.Core.Width, h.Core.Height, h.Core.BitsPerPixel, h.Info.Compression, h.Core.TopDown, len(h.Palette))

	img, err := bmp.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to decode BMP: %w", err)
	}

	file, err := os.Create(cfg.Output)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := encode(file, img, cfg.Format); err != nil {
		file.Close()
		return fmt.Errorf("failed to encode %s: %w", cfg.Format, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	logging.Info("Wrote %s (%dx%d)", cfg.Output, img.Bounds().Dx(), img.Bounds().Dy())
	return nil
}

func encode(w io.Writer, img image.Image, format string) error {
	if format == config.FormatTIFF {
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	}
	return png.Encode(w, img)
}
