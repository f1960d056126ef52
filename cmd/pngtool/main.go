package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"

	"github.com/pngcodec/pngcodec"
	"github.com/pngcodec/pngcodec/raster"
)

type commandOptions struct {
	Input  string
	Output string
	Gamma  float64
	Color  string
	Filter string
}

var opts commandOptions

func init() {
	flag.StringVar(&opts.Input, "i", "", "input PNG `file`")
	flag.StringVar(&opts.Output, "o", "", "output PNG `file`")
	flag.Float64Var(&opts.Gamma, "gamma", 0, "gAMA value to write on re-encode (0 = omit)")
	flag.StringVar(&opts.Color, "color", "", "output color type: grayscale|rgb|ga|rgba (default: rgba)")
	flag.StringVar(&opts.Filter, "filter", "adaptive", "scanline filter: none|sub|up|avg|paeth|adaptive")
	flag.Usage = usage
}

func usage() {
	fmt.Fprintf(os.Stderr, `pngtool - decode and re-encode a PNG image

Usage: pngtool -i in.png -o out.png [-gamma g] [-color type] [-filter f]

Options:
`)
	flag.PrintDefaults()
}

func main() {
	flag.Parse()
	if opts.Input == "" || opts.Output == "" {
		flag.Usage()
		os.Exit(2)
	}
	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "pngtool: %v\n", err)
		os.Exit(1)
	}
}

func run(opts commandOptions) error {
	in, err := os.ReadFile(opts.Input)
	if err != nil {
		return err
	}

	rst, err := pngcodec.Decode(bytes.NewReader(in))
	if err != nil {
		return fmt.Errorf("decoding %s: %w", opts.Input, err)
	}

	encOpts := raster.EncodeOptions{
		OutputColorType: raster.ColorTypeTrueColorAlpha,
		BitDepth:        8,
		FilterType:      filterCode(opts.Filter),
		Gamma:           opts.Gamma,
	}
	if opts.Color != "" {
		ct, err := colorCode(opts.Color)
		if err != nil {
			return err
		}
		encOpts.OutputColorType = ct
	}
	if rst.PixelsPerUnit != nil {
		encOpts.PixelsPerUnit = rst.PixelsPerUnit
	}

	out, err := pngcodec.Encode(rst, encOpts)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", opts.Output, err)
	}

	return os.WriteFile(opts.Output, out, 0o644)
}

func colorCode(name string) (byte, error) {
	switch name {
	case "grayscale":
		return raster.ColorTypeGrayscale, nil
	case "rgb":
		return raster.ColorTypeTrueColor, nil
	case "ga":
		return raster.ColorTypeGrayscaleAlpha, nil
	case "rgba":
		return raster.ColorTypeTrueColorAlpha, nil
	default:
		return 0, fmt.Errorf("unknown -color value %q", name)
	}
}

func filterCode(name string) int {
	switch name {
	case "none":
		return 0
	case "sub":
		return 1
	case "up":
		return 2
	case "avg":
		return 3
	case "paeth":
		return 4
	default:
		return -1
	}
}
