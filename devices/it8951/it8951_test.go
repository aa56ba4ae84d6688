// Copyright 2021 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package it8951

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func newTestDisplay(bus Bus) *Display {
	d, err := NewFromBus(bus, &Opts{VCOM: 1580, ReadyTimeout: 50 * time.Millisecond})
	if err != nil {
		panic(err)
	}
	return d
}

// newActiveDisplay builds a Display in the post-Init state without going
// through the reset timing, for tests that exercise operations.
func newActiveDisplay(bus Bus, panelW, panelH uint16) *Display {
	d := newTestDisplay(bus)
	d.info = DeviceInfo{PanelW: panelW, PanelH: panelH, MemAddr: 0x001236E0}
	d.state = Active
	return d
}

// zeroReadFrame is the wire image of a read session: preamble, dummy slot
// and n zero payload slots as clocked out by the host.
func zeroReadFrame(n int) []uint16 {
	f := make([]uint16, n+2)
	f[0] = 0x1000
	return f
}

func TestNewFromBusValidatesVCOM(t *testing.T) {
	for _, vcom := range []uint16{0, 5001} {
		bus := &fakeBus{}
		if _, err := NewFromBus(bus, &Opts{VCOM: vcom}); err == nil {
			t.Errorf("NewFromBus(VCOM=%d) = nil error", vcom)
		}
		if len(bus.frames) != 0 {
			t.Errorf("NewFromBus(VCOM=%d) touched the bus", vcom)
		}
	}
}

func TestInit(t *testing.T) {
	bus := &fakeBus{reads: [][]uint16{
		devInfoResponse(1872, 1404, 0x001236E0, "SWv_0.1.", "M841"),
		{1580},
	}}
	d := newTestDisplay(bus)

	if err := d.Init(); err != nil {
		t.Fatalf("Init() = %v", err)
	}
	if d.State() != Active {
		t.Errorf("State() = %v, want %v", d.State(), Active)
	}
	wantInfo := DeviceInfo{
		PanelW:     1872,
		PanelH:     1404,
		MemAddr:    0x001236E0,
		FWVersion:  "SWv_0.1.",
		LUTVersion: "M841",
	}
	if diff := cmp.Diff(wantInfo, d.Info()); diff != "" {
		t.Errorf("Info() mismatch (-want +got):\n%s", diff)
	}
	if got := d.Bounds(); got.Dx() != 1872 || got.Dy() != 1404 {
		t.Errorf("Bounds() = %v, want 1872x1404", got)
	}

	if diff := cmp.Diff([]bool{true, false, true}, bus.resets); diff != "" {
		t.Errorf("reset sequence mismatch (-want +got):\n%s", diff)
	}
	want := [][]uint16{
		{0x6000, 0x0001}, // system run
		{0x6000, 0x0302}, // get system info
		zeroReadFrame(devInfoWords),
		{0x6000, 0x0011}, // target address, high word first
		{0x0000, 0x020A},
		{0x0000, 0x0012},
		{0x6000, 0x0011},
		{0x0000, 0x0208},
		{0x0000, 0x36E0},
		{0x6000, 0x0011}, // packed write mode
		{0x0000, 0x0004},
		{0x0000, 0x0001},
		{0x6000, 0x0039}, // VCOM readback, already matching
		{0x0000, 0x0000},
		zeroReadFrame(1),
	}
	if diff := cmp.Diff(want, bus.words(t)); diff != "" {
		t.Errorf("frames mismatch (-want +got):\n%s", diff)
	}
}

func TestInitReconcilesVCOM(t *testing.T) {
	bus := &fakeBus{reads: [][]uint16{
		devInfoResponse(800, 600, 0x1000, "fw", "lut"),
		{1500}, // programmed value differs from the configured 1580
	}}
	d := newTestDisplay(bus)

	if err := d.Init(); err != nil {
		t.Fatalf("Init() = %v", err)
	}
	frames := bus.words(t)
	want := [][]uint16{
		{0x6000, 0x0039},
		{0x0000, 0x0001},
		{0x0000, 1580},
	}
	if diff := cmp.Diff(want, frames[len(frames)-3:]); diff != "" {
		t.Errorf("VCOM write mismatch (-want +got):\n%s", diff)
	}
}

func TestInitRejectsBadInfo(t *testing.T) {
	bus := &fakeBus{reads: [][]uint16{
		devInfoResponse(0, 0, 0, "", ""),
	}}
	d := newTestDisplay(bus)

	err := d.Init()
	var derr *DeviceError
	if !errors.As(err, &derr) {
		t.Fatalf("Init() = %v, want DeviceError", err)
	}
	if d.State() != Uninitialized {
		t.Errorf("State() = %v, want %v", d.State(), Uninitialized)
	}
}

func TestOperationsRequireInit(t *testing.T) {
	bus := &fakeBus{}
	d := newTestDisplay(bus)

	area := Area{W: 10, H: 10}
	ops := map[string]error{
		"LoadImage":   d.LoadImage(make([]byte, 100), area, Bpp8, Rotate0, LittleEndian),
		"RefreshArea": d.RefreshArea(area, ModeGC16),
		"FillArea":    d.FillArea(area, 0xFF),
		"Standby":     d.Standby(),
		"Sleep":       d.Sleep(),
		"Run":         d.Run(),
		"SetVCOM":     d.SetVCOM(1580),
		"Enhance":     d.EnhanceDriving(),
	}
	for name, err := range ops {
		if !errors.Is(err, ErrNotReady) {
			t.Errorf("%s before Init = %v, want ErrNotReady", name, err)
		}
	}
	if _, err := d.VCOM(); !errors.Is(err, ErrNotReady) {
		t.Errorf("VCOM before Init = %v, want ErrNotReady", err)
	}
	if len(bus.frames) != 0 {
		t.Errorf("recorded %d frames before Init, want 0", len(bus.frames))
	}
}

func TestPowerStateMachine(t *testing.T) {
	bus := &fakeBus{}
	d := newActiveDisplay(bus, 800, 600)

	if err := d.Standby(); err != nil || d.State() != Standby {
		t.Fatalf("Standby() = %v, state %v", err, d.State())
	}
	// Display traffic and deeper transitions are rejected in standby.
	if err := d.Refresh(ModeGC16); !errors.Is(err, ErrNotReady) {
		t.Errorf("Refresh() in standby = %v, want ErrNotReady", err)
	}
	if err := d.Sleep(); !errors.Is(err, ErrNotReady) {
		t.Errorf("Sleep() in standby = %v, want ErrNotReady", err)
	}
	if err := d.Run(); err != nil || d.State() != Active {
		t.Fatalf("Run() = %v, state %v", err, d.State())
	}
	if err := d.Sleep(); err != nil || d.State() != Sleeping {
		t.Fatalf("Sleep() = %v, state %v", err, d.State())
	}
	if err := d.Run(); err != nil || d.State() != Active {
		t.Fatalf("Run() from sleep = %v, state %v", err, d.State())
	}

	want := [][]uint16{
		{0x6000, 0x0002}, // standby
		{0x6000, 0x0001}, // run
		{0x6000, 0x0003}, // sleep
		{0x6000, 0x0001}, // run
	}
	if diff := cmp.Diff(want, bus.words(t)); diff != "" {
		t.Errorf("frames mismatch (-want +got):\n%s", diff)
	}
}

func TestRunWhileActiveIsNoop(t *testing.T) {
	bus := &fakeBus{}
	d := newActiveDisplay(bus, 800, 600)

	if err := d.Run(); err != nil {
		t.Fatalf("Run() = %v", err)
	}
	if len(bus.frames) != 0 {
		t.Errorf("recorded %d frames, want 0", len(bus.frames))
	}
}

func TestSetVCOMRange(t *testing.T) {
	bus := &fakeBus{}
	d := newActiveDisplay(bus, 800, 600)

	for _, mv := range []uint16{0, 5001} {
		err := d.SetVCOM(mv)
		var perr *ParameterError
		if !errors.As(err, &perr) {
			t.Errorf("SetVCOM(%d) = %v, want ParameterError", mv, err)
		}
	}
	if len(bus.frames) != 0 {
		t.Errorf("recorded %d frames for rejected values, want 0", len(bus.frames))
	}

	if err := d.SetVCOM(2100); err != nil {
		t.Fatalf("SetVCOM(2100) = %v", err)
	}
	want := [][]uint16{
		{0x6000, 0x0039},
		{0x0000, 0x0001},
		{0x0000, 2100},
	}
	if diff := cmp.Diff(want, bus.words(t)); diff != "" {
		t.Errorf("frames mismatch (-want +got):\n%s", diff)
	}
}

func TestEnhanceDriving(t *testing.T) {
	bus := &fakeBus{}
	d := newActiveDisplay(bus, 800, 600)

	if err := d.EnhanceDriving(); err != nil {
		t.Fatalf("EnhanceDriving() = %v", err)
	}
	want := [][]uint16{
		{0x6000, 0x0011},
		{0x0000, 0x0038},
		{0x0000, 0x0602},
	}
	if diff := cmp.Diff(want, bus.words(t)); diff != "" {
		t.Errorf("frames mismatch (-want +got):\n%s", diff)
	}
}

func TestClose(t *testing.T) {
	bus := &fakeBus{}
	d := newActiveDisplay(bus, 800, 600)

	if err := d.Close(); err != nil {
		t.Fatalf("Close() = %v", err)
	}
	if !bus.closed {
		t.Error("bus not closed")
	}
	want := [][]uint16{{0x6000, 0x0003}} // sleep before release
	if diff := cmp.Diff(want, bus.words(t)); diff != "" {
		t.Errorf("frames mismatch (-want +got):\n%s", diff)
	}
}
