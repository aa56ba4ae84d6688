// Copyright 2021 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Binary epdbanner displays a line of text on an IT8951 driven panel.
package main

import (
	"flag"
	"image/color"
	"log"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"github.com/kylephillipsau/IT8951/devices/it8951"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/opentype"
)

var (
	text    = flag.String("text", "Hello, world!", "Text to display.")
	vcom    = flag.Uint("vcom", 0, "Panel VCOM voltage in millivolts, printed on the flex cable.")
	spiPort = flag.String("spi", "", "SPI port name, empty for the first available.")
	rotate  = flag.Float64("rotate", 0.0, "Image rotation in degrees.")
	size    = flag.Float64("size", 92, "Font size in points.")
)

func main() {
	flag.Parse()
	d, err := it8951.New(&it8951.Opts{SPIPort: *spiPort, VCOM: uint16(*vcom)})
	if err != nil {
		log.Fatal(err)
	}
	defer d.Close()

	log.Println("Initializing")
	if err := d.Init(); err != nil {
		log.Fatal(err)
	}
	log.Println("Clearing")
	if err := d.Clear(0xFF); err != nil {
		log.Fatal(err)
	}
	if err := d.Refresh(it8951.ModeInit); err != nil {
		log.Fatal(err)
	}

	b := d.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())
	ctx := gg.NewContextForImage(imaging.New(b.Dx(), b.Dy(), color.White))
	ctx.SetFontFace(fontFace(*size))
	ctx.SetRGB(0, 0, 0)
	ctx.DrawStringWrapped(*text, w/2, h/2, 0.5, 0.5, w-80, 1.0, gg.AlignCenter)

	rot := imaging.Rotate(ctx.Image(), *rotate, color.White)
	fit := imaging.Fit(rot, b.Dx(), b.Dy(), imaging.Lanczos)
	final := imaging.PasteCenter(imaging.New(b.Dx(), b.Dy(), color.White), fit)

	log.Println("Displaying banner")
	if err := d.DrawImage(final, it8951.ModeGC16); err != nil {
		log.Fatal(err)
	}
	if err := d.Sleep(); err != nil {
		log.Fatal(err)
	}
}

func fontFace(size float64) font.Face {
	f, err := opentype.Parse(gomonobold.TTF)
	if err != nil {
		log.Fatal(err)
	}
	ff, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		log.Fatal(err)
	}
	return ff
}
