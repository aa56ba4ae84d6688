// Copyright 2021 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package it8951

import (
	"fmt"
	"sync"
	"time"

	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/gpio/gpioreg"
	"periph.io/x/periph/conn/physic"
	"periph.io/x/periph/conn/spi"
	"periph.io/x/periph/conn/spi/spireg"
	"periph.io/x/periph/host"
)

// Bus is the capability set the driver needs from the board wiring: a
// full-duplex byte transfer, manual chip select, the hardware ready input
// and the reset output. The periph.io binding below implements it for real
// hardware; tests supply an in-memory fake.
type Bus interface {
	// Tx performs one full-duplex transfer. Either w or r may be nil.
	Tx(w, r []byte) error
	// ChipSelect asserts (true) or releases (false) the select line.
	ChipSelect(assert bool) error
	// Ready reports whether the hardware ready line is asserted.
	Ready() bool
	// Reset drives the reset line; true is the inactive (high) level.
	Reset(level bool) error
	// Close releases the underlying bus resources.
	Close() error
}

// Pins names the control lines by their gpioreg name.
//
// Standard locations for the Waveshare IT8951 HAT:
//  HRDY - Ready     - Pin 18 (GPIO 24)
//  CLK  - SPI0 SCLK - Pin 23 (GPIO 11)
//  CS   - SPI0 CE0  - Pin 24 (GPIO 8)
//  DIN  - SPI0 MOSI - Pin 19 (GPIO 10)
//  DOUT - SPI0 MISO - Pin 21 (GPIO 9)
//  RST  - Reset     - Pin 11 (GPIO 17)
type Pins struct {
	// Ready (HRDY) pin name, typically "P1_18".
	Ready string
	// CS pin name, typically "P1_24".
	CS string
	// RST pin name, typically "P1_11".
	RST string
}

var DefaultPins = Pins{
	Ready: "P1_18",
	CS:    "P1_24",
	RST:   "P1_11",
}

// periphBus drives the panel through periph.io GPIO and SPI.
type periphBus struct {
	mut  sync.Mutex
	port spi.PortCloser
	c    spi.Conn

	cs    gpio.PinOut
	rst   gpio.PinOut
	ready gpio.PinIn
}

// openBus initializes periph.io, resolves the control pins and connects the
// SPI port.
func openBus(p Pins, spiPort string, speed physic.Frequency) (*periphBus, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("host.Init() = %w", err)
	}

	cs := gpioreg.ByName(p.CS)
	if cs == nil {
		return nil, fmt.Errorf("invalid cs pin %q", p.CS)
	}
	if err := cs.Out(gpio.High); err != nil {
		return nil, fmt.Errorf("cs.Out(%v) = %w", gpio.High, err)
	}

	rst := gpioreg.ByName(p.RST)
	if rst == nil {
		return nil, fmt.Errorf("invalid rst pin %q", p.RST)
	}
	if err := rst.Out(gpio.High); err != nil {
		return nil, fmt.Errorf("rst.Out(%v) = %w", gpio.High, err)
	}

	ready := gpioreg.ByName(p.Ready)
	if ready == nil {
		return nil, fmt.Errorf("invalid ready pin %q", p.Ready)
	}
	if err := ready.In(gpio.PullDown, gpio.NoEdge); err != nil {
		return nil, fmt.Errorf("ready.In(%v, %v) = %w", gpio.PullDown, gpio.NoEdge, err)
	}

	port, err := spireg.Open(spiPort)
	if err != nil {
		return nil, fmt.Errorf("spireg.Open(%q) = _, %w", spiPort, err)
	}
	c, err := port.Connect(speed, spi.Mode0, 8)
	if err != nil {
		connerr := fmt.Errorf("port.Connect(%v, %v, %v) = %w", speed, spi.Mode0, 8, err)
		if err := port.Close(); err != nil {
			return nil, fmt.Errorf("port.Close() = %w while handling %q", err, connerr)
		}
		return nil, connerr
	}

	return &periphBus{
		port:  port,
		c:     c,
		cs:    cs,
		rst:   rst,
		ready: ready,
	}, nil
}

func (b *periphBus) Tx(w, r []byte) error {
	b.mut.Lock()
	defer b.mut.Unlock()
	return b.c.Tx(w, r)
}

func (b *periphBus) ChipSelect(assert bool) error {
	l := gpio.High
	if assert {
		l = gpio.Low
	}
	if err := b.cs.Out(l); err != nil {
		return fmt.Errorf("%v.Out(%v) = %w", b.cs.String(), l.String(), err)
	}
	return nil
}

func (b *periphBus) Ready() bool {
	return b.ready.Read() == gpio.High
}

func (b *periphBus) Reset(level bool) error {
	l := gpio.Low
	if level {
		l = gpio.High
	}
	if err := b.rst.Out(l); err != nil {
		return fmt.Errorf("%v.Out(%v) = %w", b.rst.String(), l.String(), err)
	}
	return nil
}

func (b *periphBus) Close() error {
	return b.port.Close()
}

// resetPulse toggles the reset line with the settle delays from the vendor
// reference code.
func resetPulse(b Bus) error {
	if err := b.Reset(true); err != nil {
		return err
	}
	time.Sleep(200 * time.Millisecond)
	if err := b.Reset(false); err != nil {
		return err
	}
	time.Sleep(10 * time.Millisecond)
	if err := b.Reset(true); err != nil {
		return err
	}
	time.Sleep(200 * time.Millisecond)
	return nil
}
