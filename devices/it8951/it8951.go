// Copyright 2021 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package it8951 drives the ITE IT8951 e-paper timing controller over SPI.
//
// The controller fronts panels such as the Waveshare 6", 7.8", 9.7" and
// 10.3" e-Paper HATs. All exchanges are 16-bit words framed by a fixed
// preamble and gated on a hardware ready line; pixel data is burst-written
// into the controller's image buffer and rendered by a separate refresh
// command with a selectable waveform mode.
//
// A Display is not safe for concurrent use. The protocol is stateful (a
// load sequence must not interleave with a refresh command), so callers
// sharing a Display across goroutines must serialize whole operations with
// their own lock.
package it8951

import (
	"fmt"
	"image"
	"time"

	"periph.io/x/periph/conn/physic"
)

// VCOM values are millivolts of negative bias, e.g. 1580 for -1.58V. The
// usable range is panel specific; values past vcomMax are rejected outright.
const vcomMax = 5000

// DefaultSpeed is the default SPI clock. The controller is specified up to
// 24MHz for write transfers; wire length and health may require less.
const DefaultSpeed = 24 * physic.MegaHertz

// DefaultReadyTimeout bounds every hardware ready wait.
const DefaultReadyTimeout = 5 * time.Second

// defaultTxWords caps one chip select session; the Linux spidev default
// transfer buffer is 4096 bytes, preamble included.
const defaultTxWords = 2047

// Opts configures a Display. The zero value of every optional field selects
// a documented default.
type Opts struct {
	// Pins names the control lines; the zero value selects DefaultPins.
	Pins Pins
	// SPIPort is the spireg port name; "" selects the first available port.
	SPIPort string
	// Speed is the SPI clock; 0 selects DefaultSpeed.
	Speed physic.Frequency
	// VCOM is the panel calibration voltage in millivolts (e.g. 1580 for
	// -1.58V, printed on the panel's flex cable). Required, it must be in
	// (0, 5000].
	VCOM uint16
	// ReadyTimeout bounds every ready wait; 0 selects DefaultReadyTimeout.
	ReadyTimeout time.Duration
}

func (o *Opts) validate() error {
	if o.VCOM == 0 || o.VCOM > vcomMax {
		return &ParameterError{Name: "VCOM", Reason: fmt.Sprintf("%d outside (0, %d] millivolts", o.VCOM, vcomMax)}
	}
	return nil
}

// Display is a handle for one IT8951 controller. All operations on it must
// be strictly sequential.
type Display struct {
	tr  *transport
	bus Bus

	info  DeviceInfo
	state PowerState
	vcom  uint16
}

// New opens the SPI port and control pins and returns a Display ready for
// Init. It fails fast on a missing or out-of-range VCOM before touching any
// hardware.
func New(opts *Opts) (*Display, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	pins := opts.Pins
	if pins == (Pins{}) {
		pins = DefaultPins
	}
	speed := opts.Speed
	if speed == 0 {
		speed = DefaultSpeed
	}
	bus, err := openBus(pins, opts.SPIPort, speed)
	if err != nil {
		return nil, err
	}
	return NewFromBus(bus, opts)
}

// NewFromBus returns a Display on an already open Bus. It is the injection
// point for simulated panels and test fakes.
func NewFromBus(bus Bus, opts *Opts) (*Display, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	timeout := opts.ReadyTimeout
	if timeout == 0 {
		timeout = DefaultReadyTimeout
	}
	return &Display{
		tr: &transport{
			bus:     bus,
			timeout: timeout,
			txWords: defaultTxWords,
		},
		bus:   bus,
		state: Uninitialized,
		vcom:  opts.VCOM,
	}, nil
}

// Init resets the controller and brings it to the Active state: hardware
// reset pulse, system run, device info query, image buffer addressing,
// packed write mode and VCOM reconciliation. It may be called again at any
// time to recover from a timeout or transport failure.
func (d *Display) Init() error {
	d.state = Uninitialized

	if err := resetPulse(d.bus); err != nil {
		return &TransportError{Op: "reset", Err: err}
	}
	if err := d.tr.writeCommand(cmdSysRun); err != nil {
		return err
	}

	if err := d.tr.writeCommand(cmdGetDevInfo); err != nil {
		return err
	}
	words, err := d.tr.readWords(devInfoWords)
	if err != nil {
		return err
	}
	info, err := parseDeviceInfo(words)
	if err != nil {
		return err
	}
	d.info = info

	// Point the load engine at the image buffer, high word first as in the
	// vendor reference code.
	if err := d.setTargetAddr(info.MemAddr); err != nil {
		return err
	}
	// Enable I80 packed write mode.
	if err := d.tr.writeRegister(regI80CPCR, 0x0001); err != nil {
		return err
	}

	cur, err := d.readVCOM()
	if err != nil {
		return err
	}
	if cur != d.vcom {
		if err := d.writeVCOM(d.vcom); err != nil {
			return err
		}
	}

	d.state = Active
	return nil
}

// Info returns the device metadata gathered by Init. It is the zero value
// before the first successful Init.
func (d *Display) Info() DeviceInfo {
	return d.info
}

// State returns the current power state.
func (d *Display) State() PowerState {
	return d.state
}

// Bounds returns the panel bounds, empty before Init.
func (d *Display) Bounds() image.Rectangle {
	return image.Rect(0, 0, int(d.info.PanelW), int(d.info.PanelH))
}

func (d *Display) String() string {
	return fmt.Sprintf("it8951.Display{%dx%d, %s}", d.info.PanelW, d.info.PanelH, d.state)
}

// VCOM reads the calibration voltage currently programmed in the
// controller, in millivolts.
func (d *Display) VCOM() (uint16, error) {
	if d.state != Active {
		return 0, ErrNotReady
	}
	return d.readVCOM()
}

// SetVCOM programs the calibration voltage. Values outside (0, 5000]
// millivolts are rejected before any bus traffic.
func (d *Display) SetVCOM(mv uint16) error {
	if mv == 0 || mv > vcomMax {
		return &ParameterError{Name: "VCOM", Reason: fmt.Sprintf("%d outside (0, %d] millivolts", mv, vcomMax)}
	}
	if d.state != Active {
		return ErrNotReady
	}
	return d.writeVCOM(mv)
}

func (d *Display) readVCOM() (uint16, error) {
	if err := d.tr.writeCommand(cmdVCOM); err != nil {
		return 0, err
	}
	if err := d.tr.writeData(0); err != nil { // 0 selects read
		return 0, err
	}
	words, err := d.tr.readWords(1)
	if err != nil {
		return 0, err
	}
	return words[0], nil
}

func (d *Display) writeVCOM(mv uint16) error {
	if err := d.tr.writeCommand(cmdVCOM); err != nil {
		return err
	}
	if err := d.tr.writeData(1); err != nil { // 1 selects write
		return err
	}
	if err := d.tr.writeData(mv); err != nil {
		return err
	}
	d.vcom = mv
	return nil
}

// Run returns the controller to the Active state from Standby or Sleeping.
// Waking from sleep repeats a ready check since the controller loses state
// there.
func (d *Display) Run() error {
	switch d.state {
	case Uninitialized:
		return ErrNotReady
	case Active:
		return nil
	}
	wasAsleep := d.state == Sleeping
	if err := d.tr.writeCommand(cmdSysRun); err != nil {
		return err
	}
	if wasAsleep {
		if err := d.tr.waitReady(); err != nil {
			return err
		}
	}
	d.state = Active
	return nil
}

// Standby puts the controller in its low power standby state. Display and
// memory operations are rejected until Run.
func (d *Display) Standby() error {
	if d.state != Active {
		return ErrNotReady
	}
	if err := d.tr.writeCommand(cmdStandby); err != nil {
		return err
	}
	d.state = Standby
	return nil
}

// Sleep puts the controller in its lowest power state.
func (d *Display) Sleep() error {
	if d.state != Active {
		return ErrNotReady
	}
	if err := d.tr.writeCommand(cmdSleep); err != nil {
		return err
	}
	d.state = Sleeping
	return nil
}

// EnhanceDriving raises the source driving capability. The vendor documents
// it as a fix for blurry output on long or marginal cabling.
func (d *Display) EnhanceDriving() error {
	if d.state != Active {
		return ErrNotReady
	}
	return d.tr.writeRegister(regDrvCap, 0x0602)
}

// Close puts the panel to sleep and releases the bus. The select line is
// released by the transport on every exit path, so the device is left in a
// known state even after a failed operation.
func (d *Display) Close() error {
	if d.state == Active {
		// Best effort; the bus still has to be released below.
		if err := d.Sleep(); err != nil {
			d.state = Uninitialized
		}
	}
	return d.bus.Close()
}

// setTargetAddr programs the load image start address register pair.
func (d *Display) setTargetAddr(addr uint32) error {
	if err := d.tr.writeRegister(regLISAR+2, uint16(addr>>16)); err != nil {
		return err
	}
	return d.tr.writeRegister(regLISAR, uint16(addr))
}

// waitDisplayReady polls the LUT engine status register until all engines
// are free. Unlike the ready pin this is a register poll, but it is bounded
// by the same timeout.
func (d *Display) waitDisplayReady() error {
	deadline := time.Now().Add(d.tr.timeout)
	for {
		status, err := d.tr.readRegister(regLUTAFSR)
		if err != nil {
			return err
		}
		if status == 0 {
			return nil
		}
		if time.Now().After(deadline) {
			return &TimeoutError{Wait: d.tr.timeout}
		}
		time.Sleep(100 * time.Microsecond)
	}
}
