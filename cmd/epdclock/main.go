// Copyright 2021 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Binary epdclock displays a minute clock on an IT8951 driven panel. The
// panel sleeps between updates; a full grayscale refresh every few minutes
// clears the ghosting the fast waveform leaves behind.
package main

import (
	"flag"
	"image/color"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"github.com/kylephillipsau/IT8951/devices/it8951"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/opentype"
)

var (
	format  = flag.String("format", time.Kitchen, "time.Time format.")
	vcom    = flag.Uint("vcom", 0, "Panel VCOM voltage in millivolts, printed on the flex cable.")
	spiPort = flag.String("spi", "", "SPI port name, empty for the first available.")
	rotate  = flag.Float64("rotate", 0.0, "Image rotation in degrees.")
)

// fullEvery is how many fast updates happen between full refreshes.
const fullEvery = 10

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
	update(d, time.Now().Format(*format), it8951.ModeGC16)
	if err := d.Sleep(); err != nil {
		log.Fatal(err)
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	n := 0
	for {
		select {
		case s := <-c:
			log.Printf("Got signal %q, quitting", s.String())
			if err := d.Run(); err != nil {
				log.Fatal(err)
			}
			if err := d.Clear(0xFF); err != nil {
				log.Fatal(err)
			}
			if err := d.Refresh(it8951.ModeInit); err != nil {
				log.Fatal(err)
			}
			return
		case t := <-ticker.C:
			if err := d.Run(); err != nil {
				log.Fatal(err)
			}
			n++
			mode := it8951.ModeDU
			if n%fullEvery == 0 {
				mode = it8951.ModeGC16
			}
			update(d, t.Format(*format), mode)
			if err := d.Sleep(); err != nil {
				log.Fatal(err)
			}
		}
	}
}

func update(d *it8951.Display, text string, mode it8951.DisplayMode) {
	b := d.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())
	ctx := gg.NewContextForImage(imaging.New(b.Dx(), b.Dy(), color.White))
	ctx.SetFontFace(fontFace())
	ctx.SetRGB(0, 0, 0)
	ctx.DrawStringWrapped(text, w/2, h/2, 0.5, 0.5, w-80, 1.0, gg.AlignCenter)

	final := ctx.Image()
	if *rotate != 0 {
		rot := imaging.Rotate(final, *rotate, color.White)
		fit := imaging.Fit(rot, b.Dx(), b.Dy(), imaging.Lanczos)
		final = imaging.PasteCenter(imaging.New(b.Dx(), b.Dy(), color.White), fit)
	}
	if err := d.DrawImage(final, mode); err != nil {
		log.Print(err)
	}
}

func fontFace() font.Face {
	f, err := opentype.Parse(gomonobold.TTF)
	if err != nil {
		log.Fatal(err)
	}
	ff, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    128,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		log.Fatal(err)
	}
	return ff
}
