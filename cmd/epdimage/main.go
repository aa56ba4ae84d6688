// Copyright 2021 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Binary epdimage displays an image file on an IT8951 driven panel.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"log"
	"os"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/kylephillipsau/IT8951/devices/it8951"
	"github.com/makeworld-the-better-one/dither"
)

var (
	file    = flag.String("image", "", "Path of the PNG or JPEG image to display.")
	vcom    = flag.Uint("vcom", 0, "Panel VCOM voltage in millivolts, printed on the flex cable.")
	spiPort = flag.String("spi", "", "SPI port name, empty for the first available.")
	rotate  = flag.Float64("rotate", 0.0, "Image rotation in degrees.")
	mode    = flag.String("mode", "gc16", "Refresh waveform: init, du, gc16, gl16 or a2.")
	dith    = flag.Bool("dither", true, "Dither to the panel's 16 gray levels.")
)

func main() {
	flag.Parse()
	m, err := parseMode(*mode)
	if err != nil {
		log.Fatal(err)
	}
	img, err := loadImage(*file)
	if err != nil {
		log.Fatal(err)
	}

	d, err := it8951.New(&it8951.Opts{SPIPort: *spiPort, VCOM: uint16(*vcom)})
	if err != nil {
		log.Fatal(err)
	}
	defer d.Close()

	log.Println("Initializing")
	if err := d.Init(); err != nil {
		log.Fatal(err)
	}
	log.Printf("Connected to %v", d.Info())
	log.Println("Clearing")
	if err := d.Clear(0xFF); err != nil {
		log.Fatal(err)
	}
	if err := d.Refresh(it8951.ModeInit); err != nil {
		log.Fatal(err)
	}

	b := d.Bounds()
	rot := imaging.Rotate(img, *rotate, color.White)
	fit := imaging.Fit(rot, b.Dx(), b.Dy(), imaging.Lanczos)
	final := imaging.PasteCenter(imaging.New(b.Dx(), b.Dy(), color.White), fit)
	var out image.Image = final
	if *dith {
		dd := dither.NewDitherer(grayPalette(16))
		dd.Matrix = dither.FloydSteinberg
		dd.Serpentine = true
		out = dd.DitherPaletted(final)
	}

	log.Println("Displaying image")
	if err := d.DrawImage(out, m); err != nil {
		log.Fatal(err)
	}
	log.Println("Powering off")
	if err := d.Sleep(); err != nil {
		log.Fatal(err)
	}
}

func parseMode(s string) (it8951.DisplayMode, error) {
	switch strings.ToLower(s) {
	case "init":
		return it8951.ModeInit, nil
	case "du":
		return it8951.ModeDU, nil
	case "gc16":
		return it8951.ModeGC16, nil
	case "gl16":
		return it8951.ModeGL16, nil
	case "a2":
		return it8951.ModeA2, nil
	}
	return 0, fmt.Errorf("unknown refresh mode %q", s)
}

func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	return img, err
}

func grayPalette(levels int) []color.Color {
	p := make([]color.Color, levels)
	for i := range p {
		p[i] = color.Gray{Y: uint8(i * 255 / (levels - 1))}
	}
	return p
}
