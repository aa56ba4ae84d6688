// Copyright 2021 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package it8951

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPackPixelsLayout(t *testing.T) {
	for _, tc := range []struct {
		name    string
		f       PixelFormat
		samples []byte
		want    []byte
	}{
		{
			// Levels 0, 15, 8, 1 pack high nibble first.
			name:    "4bpp",
			f:       Bpp4,
			samples: []byte{0x00, 0xFF, 0x80, 0x10},
			want:    []byte{0x0F, 0x81},
		},
		{
			// Levels 3, 1, 3, 0.
			name:    "2bpp",
			f:       Bpp2,
			samples: []byte{0xC0, 0x40, 0xFF, 0x00},
			want:    []byte{0xDC},
		},
		{
			// Three pixels leave a partial final byte, padded with zeros.
			name:    "4bpp odd count",
			f:       Bpp4,
			samples: []byte{0xFF, 0xFF, 0xFF},
			want:    []byte{0xFF, 0xF0},
		},
		{
			name:    "8bpp",
			f:       Bpp8,
			samples: []byte{0x12, 0x34},
			want:    []byte{0x12, 0x34},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got := PackPixels(tc.samples, tc.f)
			if !bytes.Equal(got, tc.want) {
				t.Errorf("PackPixels() = %x, want %x", got, tc.want)
			}
		})
	}
}

func TestPackPixelsRoundTrip(t *testing.T) {
	samples := make([]byte, 257)
	for i := range samples {
		samples[i] = byte(i * 37)
	}

	// 8bpp is lossless.
	got := UnpackPixels(PackPixels(samples, Bpp8), len(samples), Bpp8)
	if !bytes.Equal(got, samples) {
		t.Error("8bpp round trip altered samples")
	}

	// Narrower formats keep exactly the top bits of each sample.
	for _, f := range []PixelFormat{Bpp2, Bpp3, Bpp4} {
		got := UnpackPixels(PackPixels(samples, f), len(samples), f)
		for i, s := range samples {
			want := s >> (8 - f.Bits()) << (8 - f.Bits())
			if got[i] != want {
				t.Fatalf("%v round trip: sample %d = %#02x, want %#02x", f, i, got[i], want)
			}
		}
	}
}

func TestImageSetAt(t *testing.T) {
	img := NewImage(image.Rect(2, 3, 6, 7))

	img.Set(2, 3, color.Gray{Y: 0x80})
	img.Set(5, 6, color.White)
	img.Set(100, 100, color.White) // out of bounds, ignored

	if got := img.GrayAt(2, 3); got.Y != 0x80 {
		t.Errorf("GrayAt(2, 3) = %#02x, want 0x80", got.Y)
	}
	if got := img.GrayAt(5, 6); got.Y != 0xFF {
		t.Errorf("GrayAt(5, 6) = %#02x, want 0xff", got.Y)
	}
	if got := img.GrayAt(100, 100); got.Y != 0 {
		t.Errorf("GrayAt(100, 100) = %#02x, want 0", got.Y)
	}
}

func TestImagePack(t *testing.T) {
	img := NewImage(image.Rect(0, 0, 2, 2))
	img.SetGray(0, 0, color.Gray{Y: 0x00})
	img.SetGray(1, 0, color.Gray{Y: 0xFF})
	img.SetGray(0, 1, color.Gray{Y: 0x80})
	img.SetGray(1, 1, color.Gray{Y: 0x10})

	if diff := cmp.Diff([]byte{0x0F, 0x81}, img.Pack(Bpp4)); diff != "" {
		t.Errorf("Pack(Bpp4) mismatch (-want +got):\n%s", diff)
	}
}

func TestImagePackWideStride(t *testing.T) {
	// Rows padded in memory must not leak padding into the packed output.
	img := &Image{
		Pix:    make([]uint8, 8*2),
		Stride: 8,
		Rect:   image.Rect(0, 0, 2, 2),
	}
	img.SetGray(0, 0, color.Gray{Y: 0xFF})
	img.SetGray(1, 1, color.Gray{Y: 0xFF})
	for x := 2; x < 8; x++ {
		img.Pix[x] = 0xAA
		img.Pix[8+x] = 0xAA
	}

	if diff := cmp.Diff([]byte{0xFF, 0x00, 0x00, 0xFF}, img.Pack(Bpp8)); diff != "" {
		t.Errorf("Pack(Bpp8) mismatch (-want +got):\n%s", diff)
	}
}

func TestImageFill(t *testing.T) {
	img := NewImage(image.Rect(0, 0, 3, 3))
	img.Fill(0xF0)
	for _, p := range img.Pix {
		if p != 0xF0 {
			t.Fatalf("Fill left pixel at %#02x", p)
		}
	}
}
