// Copyright 2021 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package it8951

import (
	"image"
	"image/color"
)

// PackPixels packs 8-bit gray samples into the given format, high bits
// first within each byte. Narrower formats keep the most significant bits
// of each sample; Bpp8 is a copy.
func PackPixels(samples []byte, f PixelFormat) []byte {
	bits := f.Bits()
	if bits == 8 {
		out := make([]byte, len(samples))
		copy(out, samples)
		return out
	}
	out := make([]byte, f.PackedLen(len(samples)))
	cursor := 0
	for _, s := range samples {
		level := s >> (8 - bits)
		for i := bits - 1; i >= 0; i-- {
			if level&(1<<i) != 0 {
				out[cursor/8] |= 1 << (7 - cursor%8)
			}
			cursor++
		}
	}
	return out
}

// UnpackPixels expands packed data back to one 8-bit sample per pixel.
// Each level lands in the high bits of its sample, so Bpp8 round-trips
// exactly and narrower formats come back quantized.
func UnpackPixels(packed []byte, pixels int, f PixelFormat) []byte {
	bits := f.Bits()
	if bits == 8 {
		out := make([]byte, pixels)
		copy(out, packed)
		return out
	}
	out := make([]byte, pixels)
	cursor := 0
	for p := 0; p < pixels; p++ {
		var level byte
		for i := 0; i < bits; i++ {
			level <<= 1
			if packed[cursor/8]&(1<<(7-cursor%8)) != 0 {
				level |= 1
			}
			cursor++
		}
		out[p] = level << (8 - bits)
	}
	return out
}

// Image is an 8-bit grayscale frame, one byte per pixel, convertible to
// the packed transfer formats. It implements draw.Image so the x/image
// scalers can write straight into it.
type Image struct {
	// Pix holds the gray samples, Pix[(y-Rect.Min.Y)*Stride + (x-Rect.Min.X)].
	Pix []uint8
	// Stride is the Pix distance between vertically adjacent pixels.
	Stride int
	// Rect is the image's bounds.
	Rect image.Rectangle
}

// NewImage returns an Image covering r, all pixels black.
func NewImage(r image.Rectangle) *Image {
	return &Image{
		Pix:    make([]uint8, r.Dx()*r.Dy()),
		Stride: r.Dx(),
		Rect:   r,
	}
}

func (i *Image) ColorModel() color.Model { return color.GrayModel }

func (i *Image) Bounds() image.Rectangle { return i.Rect }

func (i *Image) At(x, y int) color.Color {
	return i.GrayAt(x, y)
}

func (i *Image) GrayAt(x, y int) color.Gray {
	if !(image.Point{x, y}.In(i.Rect)) {
		return color.Gray{}
	}
	return color.Gray{Y: i.Pix[i.PixOffset(x, y)]}
}

func (i *Image) Set(x, y int, c color.Color) {
	if !(image.Point{x, y}.In(i.Rect)) {
		return
	}
	i.Pix[i.PixOffset(x, y)] = color.GrayModel.Convert(c).(color.Gray).Y
}

func (i *Image) SetGray(x, y int, c color.Gray) {
	if !(image.Point{x, y}.In(i.Rect)) {
		return
	}
	i.Pix[i.PixOffset(x, y)] = c.Y
}

// PixOffset returns the index of the first element of Pix corresponding to
// the pixel at (x, y).
func (i *Image) PixOffset(x, y int) int {
	return (y-i.Rect.Min.Y)*i.Stride + (x - i.Rect.Min.X)
}

// Fill sets every pixel to the given gray level.
func (i *Image) Fill(gray uint8) {
	for p := range i.Pix {
		i.Pix[p] = gray
	}
}

// Pack returns the image packed row-major in the given format, ready for
// LoadImage over the image's bounds.
func (i *Image) Pack(f PixelFormat) []byte {
	w, h := i.Rect.Dx(), i.Rect.Dy()
	if i.Stride == w {
		return PackPixels(i.Pix[:w*h], f)
	}
	samples := make([]byte, w*h)
	for y := 0; y < h; y++ {
		copy(samples[y*w:(y+1)*w], i.Pix[y*i.Stride:y*i.Stride+w])
	}
	return PackPixels(samples, f)
}
