// Copyright 2021 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package it8951

import (
	"fmt"
	"image"
	"log"
	"time"

	"golang.org/x/image/draw"
)

// LoadImage writes packed pixel data for an area of the image buffer. The
// data must be exactly the packed length for the area and format; anything
// else is rejected before a single word goes out. Loading does not change
// the panel, a Refresh call renders the buffer.
func (d *Display) LoadImage(packed []byte, area Area, format PixelFormat, rot Rotation, endian Endian) error {
	if d.state != Active {
		return ErrNotReady
	}
	if !format.valid() {
		return &ParameterError{Name: "format", Reason: format.String()}
	}
	if !area.IsValid(d.info.PanelW, d.info.PanelH) {
		return &AreaError{Area: area, PanelW: d.info.PanelW, PanelH: d.info.PanelH}
	}
	if want := format.PackedLen(area.PixelCount()); len(packed) != want {
		return &ParameterError{
			Name:   "packed",
			Reason: fmt.Sprintf("%d bytes for %s %s, need exactly %d", len(packed), format, area, want),
		}
	}

	info := LoadImageInfo{
		Endian:     endian,
		Format:     format,
		Rotate:     rot,
		TargetAddr: d.info.MemAddr,
	}
	if err := d.loadImageAreaStart(info, area); err != nil {
		return err
	}
	if err := d.tr.writeWords(bytesToWords(packed, endian)); err != nil {
		return err
	}
	return d.tr.writeCommand(cmdLoadImageEnd)
}

// loadImageAreaStart programs the target address and opens an area load
// sequence. Every load reprograms the address registers; sleep wipes them.
func (d *Display) loadImageAreaStart(info LoadImageInfo, area Area) error {
	if err := d.setTargetAddr(info.TargetAddr); err != nil {
		return err
	}
	return d.tr.writeCommandArgs(cmdLoadImageArea, []uint16{
		info.argWord(), area.X, area.Y, area.W, area.H,
	})
}

// bytesToWords packs the byte stream into 16-bit transfer words. A trailing
// odd byte occupies the first-byte position of the final word, the other
// half is zero.
func bytesToWords(b []byte, e Endian) []uint16 {
	words := make([]uint16, (len(b)+1)/2)
	for i := range words {
		b0 := uint16(b[2*i])
		var b1 uint16
		if 2*i+1 < len(b) {
			b1 = uint16(b[2*i+1])
		}
		if e == BigEndian {
			words[i] = b0<<8 | b1
		} else {
			words[i] = b1<<8 | b0
		}
	}
	return words
}

// RefreshArea renders an area of the image buffer onto the panel with the
// given waveform mode. It waits for any previous refresh to finish first,
// then returns as soon as the new one is queued.
func (d *Display) RefreshArea(area Area, mode DisplayMode) error {
	if d.state != Active {
		return ErrNotReady
	}
	if !area.IsValid(d.info.PanelW, d.info.PanelH) {
		return &AreaError{Area: area, PanelW: d.info.PanelW, PanelH: d.info.PanelH}
	}
	if err := d.waitDisplayReady(); err != nil {
		return err
	}
	return d.tr.writeCommandArgs(cmdDisplayArea, []uint16{
		area.X, area.Y, area.W, area.H, uint16(mode),
	})
}

// Refresh renders the whole panel.
func (d *Display) Refresh(mode DisplayMode) error {
	return d.RefreshArea(Area{W: d.info.PanelW, H: d.info.PanelH}, mode)
}

// RefreshAreaAt renders an area from an arbitrary buffer address instead
// of the default image buffer. Useful with multiple frames staged in
// device memory.
func (d *Display) RefreshAreaAt(area Area, mode DisplayMode, addr uint32) error {
	if d.state != Active {
		return ErrNotReady
	}
	if !area.IsValid(d.info.PanelW, d.info.PanelH) {
		return &AreaError{Area: area, PanelW: d.info.PanelW, PanelH: d.info.PanelH}
	}
	if err := d.waitDisplayReady(); err != nil {
		return err
	}
	return d.tr.writeCommandArgs(cmdDisplayBufArea, []uint16{
		area.X, area.Y, area.W, area.H, uint16(mode),
		uint16(addr), uint16(addr >> 16),
	})
}

// RefreshAreaMono renders an area in 1 bit per pixel bitmap mode, mapping
// set and cleared bits to the fg and bg gray levels. The update parameter
// register flag is restored afterwards so later grayscale refreshes are
// unaffected.
func (d *Display) RefreshAreaMono(area Area, mode DisplayMode, fg, bg uint8) error {
	if d.state != Active {
		return ErrNotReady
	}
	if !area.IsValid(d.info.PanelW, d.info.PanelH) {
		return &AreaError{Area: area, PanelW: d.info.PanelW, PanelH: d.info.PanelH}
	}
	if err := d.waitDisplayReady(); err != nil {
		return err
	}

	up, err := d.tr.readRegister(regUP1SR + 2)
	if err != nil {
		return err
	}
	if err := d.tr.writeRegister(regUP1SR+2, up|0x04); err != nil {
		return err
	}
	if err := d.tr.writeRegister(regBGVR, uint16(fg)<<8|uint16(bg)); err != nil {
		return err
	}
	if err := d.tr.writeCommandArgs(cmdDisplayArea, []uint16{
		area.X, area.Y, area.W, area.H, uint16(mode),
	}); err != nil {
		return err
	}
	// The bitmap flag must stay set for the whole refresh.
	if err := d.waitDisplayReady(); err != nil {
		return err
	}
	return d.tr.writeRegister(regUP1SR+2, up&^0x04)
}

// FillArea loads a uniform gray level into an area of the image buffer.
func (d *Display) FillArea(area Area, gray uint8) error {
	if d.state != Active {
		return ErrNotReady
	}
	if !area.IsValid(d.info.PanelW, d.info.PanelH) {
		return &AreaError{Area: area, PanelW: d.info.PanelW, PanelH: d.info.PanelH}
	}
	packed := make([]byte, area.PixelCount())
	for i := range packed {
		packed[i] = gray
	}
	return d.LoadImage(packed, area, Bpp8, Rotate0, LittleEndian)
}

// Clear fills the whole image buffer with a gray level; 0xFF is white. Like
// any load it only changes the buffer, a following Refresh renders it,
// usually with ModeInit for a full wipe.
func (d *Display) Clear(gray uint8) error {
	return d.FillArea(Area{W: d.info.PanelW, H: d.info.PanelH}, gray)
}

// DrawImage converts img to 16 level grayscale, loads the part of it that
// falls on the panel and refreshes that area. The image's own bounds place
// it on the panel.
func (d *Display) DrawImage(img image.Image, mode DisplayMode) error {
	if d.state != Active {
		return ErrNotReady
	}
	b := img.Bounds().Intersect(d.Bounds())
	if b.Empty() {
		return &ParameterError{Name: "img", Reason: fmt.Sprintf("bounds %v outside panel %v", img.Bounds(), d.Bounds())}
	}

	start := time.Now()
	buf := NewImage(b)
	draw.Draw(buf, b, img, b.Min, draw.Src)
	packed := buf.Pack(Bpp4)

	area := Area{X: uint16(b.Min.X), Y: uint16(b.Min.Y), W: uint16(b.Dx()), H: uint16(b.Dy())}
	if err := d.LoadImage(packed, area, Bpp4, Rotate0, LittleEndian); err != nil {
		return err
	}
	if err := d.RefreshArea(area, mode); err != nil {
		return err
	}
	log.Printf("draw of %v took %v", b, time.Since(start))
	return nil
}
