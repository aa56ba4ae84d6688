// Copyright 2021 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package it8951

import (
	"bytes"
	"fmt"
)

// Area is a rectangular region of the panel in pixel units.
type Area struct {
	X, Y uint16
	W, H uint16
}

// IsValid reports whether the area is non-empty and lies entirely within a
// panel of the given dimensions. Out-of-bounds areas are a caller error and
// are never clamped.
func (a Area) IsValid(panelW, panelH uint16) bool {
	return a.W > 0 && a.H > 0 &&
		a.X < panelW && a.Y < panelH &&
		uint32(a.X)+uint32(a.W) <= uint32(panelW) &&
		uint32(a.Y)+uint32(a.H) <= uint32(panelH)
}

// PixelCount returns the number of pixels covered by the area.
func (a Area) PixelCount() int {
	return int(a.W) * int(a.H)
}

// Intersect returns the overlap of two areas. ok is false when they do not
// overlap.
func (a Area) Intersect(b Area) (_ Area, ok bool) {
	x := maxU16(a.X, b.X)
	y := maxU16(a.Y, b.Y)
	x2 := minU16(a.X+a.W, b.X+b.W)
	y2 := minU16(a.Y+a.H, b.Y+b.H)
	if x >= x2 || y >= y2 {
		return Area{}, false
	}
	return Area{X: x, Y: y, W: x2 - x, H: y2 - y}, true
}

// Union returns the bounding box of two areas.
func (a Area) Union(b Area) Area {
	x := minU16(a.X, b.X)
	y := minU16(a.Y, b.Y)
	x2 := maxU16(a.X+a.W, b.X+b.W)
	y2 := maxU16(a.Y+a.H, b.Y+b.H)
	return Area{X: x, Y: y, W: x2 - x, H: y2 - y}
}

func (a Area) String() string {
	return fmt.Sprintf("%dx%d+%d+%d", a.W, a.H, a.X, a.Y)
}

func minU16(a, b uint16) uint16 {
	if a < b {
		return a
	}
	return b
}

func maxU16(a, b uint16) uint16 {
	if a > b {
		return a
	}
	return b
}

// PixelFormat selects the bits-per-pixel packing of transferred image data.
// The values are the codes used in the load image command argument.
type PixelFormat uint16

const (
	Bpp2 PixelFormat = 0
	Bpp3 PixelFormat = 1
	Bpp4 PixelFormat = 2
	Bpp8 PixelFormat = 3
)

// Bits returns the number of bits per pixel.
func (f PixelFormat) Bits() int {
	switch f {
	case Bpp2:
		return 2
	case Bpp3:
		return 3
	case Bpp4:
		return 4
	case Bpp8:
		return 8
	}
	return 0
}

// GrayLevels returns the number of representable gray levels.
func (f PixelFormat) GrayLevels() int {
	return 1 << f.Bits()
}

// PackedLen returns the number of bytes needed to hold the given pixel count
// in this format, pixels packed most-significant first within each byte.
func (f PixelFormat) PackedLen(pixels int) int {
	return (pixels*f.Bits() + 7) / 8
}

func (f PixelFormat) valid() bool {
	return f.Bits() != 0
}

func (f PixelFormat) String() string {
	if !f.valid() {
		return fmt.Sprintf("PixelFormat(%d)", uint16(f))
	}
	return fmt.Sprintf("%dbpp", f.Bits())
}

// Rotation selects how row-major pixel data maps onto panel coordinates
// during a load.
type Rotation uint16

const (
	Rotate0 Rotation = iota
	Rotate90
	Rotate180
	Rotate270
)

// Endian governs the byte order of packed multi-pixel words sent over the
// bus.
type Endian uint16

const (
	LittleEndian Endian = 0
	BigEndian    Endian = 1
)

// DisplayMode names a waveform the refresh engine uses to drive pixel
// voltages. The numeric codes are fixed by the chip and not reorderable.
type DisplayMode uint16

const (
	// ModeInit clears the panel and any ghosting; used at power-up and
	// periodically after fast modes.
	ModeInit DisplayMode = 0
	// ModeDU is a fast monochrome direct update.
	ModeDU DisplayMode = 1
	// ModeGC16 is the high quality 16 level grayscale clear.
	ModeGC16 DisplayMode = 2
	// ModeGL16 is a faster 16 level grayscale update.
	ModeGL16 DisplayMode = 3
	// ModeA2 is the fastest mode, monochrome and prone to ghosting.
	ModeA2 DisplayMode = 4
)

func (m DisplayMode) String() string {
	switch m {
	case ModeInit:
		return "INIT"
	case ModeDU:
		return "DU"
	case ModeGC16:
		return "GC16"
	case ModeGL16:
		return "GL16"
	case ModeA2:
		return "A2"
	}
	return fmt.Sprintf("DisplayMode(%d)", uint16(m))
}

// PowerState is the device-wide power state. It changes only through
// explicit Run, Standby and Sleep calls, never inferred.
type PowerState int

const (
	// Uninitialized is the state before a successful Init.
	Uninitialized PowerState = iota
	// Active permits display and memory operations.
	Active
	// Standby is a low power state; display operations are rejected.
	Standby
	// Sleeping is the lowest power state; some device state is lost.
	Sleeping
)

func (s PowerState) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Active:
		return "active"
	case Standby:
		return "standby"
	case Sleeping:
		return "sleep"
	}
	return fmt.Sprintf("PowerState(%d)", int(s))
}

// LoadImageInfo describes one image load: byte order and packing of the
// source data, the rotation applied by the device, and the target address in
// device memory. It is consumed once per load call.
type LoadImageInfo struct {
	Endian     Endian
	Format     PixelFormat
	Rotate     Rotation
	TargetAddr uint32
}

// argWord builds the first argument of the load image commands.
func (i LoadImageInfo) argWord() uint16 {
	return uint16(i.Endian)<<8 | uint16(i.Format)<<4 | uint16(i.Rotate)
}

// Number of 16-bit words in the system info response: width, height, two
// address words, then two 8-word version strings.
const devInfoWords = 20

// DeviceInfo is the panel metadata reported by the controller. It is
// populated wholesale during Init and never partially mutated.
type DeviceInfo struct {
	// Panel dimensions in pixels.
	PanelW, PanelH uint16
	// Base address of the image buffer in device memory.
	MemAddr uint32
	// Firmware and waveform table versions.
	FWVersion  string
	LUTVersion string
}

// PixelCount returns the total number of panel pixels.
func (i DeviceInfo) PixelCount() int {
	return int(i.PanelW) * int(i.PanelH)
}

func (i DeviceInfo) String() string {
	return fmt.Sprintf("it8951.DeviceInfo{%dx%d, buffer 0x%08x, fw %q, lut %q}",
		i.PanelW, i.PanelH, i.MemAddr, i.FWVersion, i.LUTVersion)
}

// parseDeviceInfo decodes the raw word array returned by the get system info
// command. Short responses and zero panel dimensions are rejected.
func parseDeviceInfo(words []uint16) (DeviceInfo, error) {
	if len(words) < devInfoWords {
		return DeviceInfo{}, &DeviceError{Reason: fmt.Sprintf("system info response truncated: %d of %d words", len(words), devInfoWords)}
	}
	info := DeviceInfo{
		PanelW:     words[0],
		PanelH:     words[1],
		MemAddr:    uint32(words[3])<<16 | uint32(words[2]),
		FWVersion:  wordsToString(words[4:12]),
		LUTVersion: wordsToString(words[12:20]),
	}
	if info.PanelW == 0 || info.PanelH == 0 {
		return DeviceInfo{}, &DeviceError{Reason: fmt.Sprintf("reported panel size %dx%d", info.PanelW, info.PanelH)}
	}
	return info, nil
}

// wordsToString decodes a version field packed two ASCII bytes per word, low
// byte first, stopping at the first NUL.
func wordsToString(words []uint16) string {
	var buf bytes.Buffer
	for _, w := range words {
		for _, b := range []byte{byte(w), byte(w >> 8)} {
			if b == 0 {
				return buf.String()
			}
			buf.WriteByte(b)
		}
	}
	return buf.String()
}
