// Copyright 2021 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package it8951

import (
	"errors"
	"fmt"
	"time"
)

// ErrNotReady is returned when an operation is attempted in a power state or
// protocol phase that forbids it, for example a refresh while the device is
// in standby. The operation performs no bus traffic in that case.
var ErrNotReady = errors.New("it8951: device not ready")

// TimeoutError is returned when the hardware ready line does not assert
// within the configured poll window. The device protocol state machine may
// be left mid-sequence; the only safe recovery is Init.
type TimeoutError struct {
	Wait time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("it8951: ready signal not asserted after %v", e.Wait)
}

// TransportError wraps a bus-level failure. It is surfaced unchanged to the
// caller; this layer never retries.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("it8951: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ParameterError reports a caller-supplied value outside its contract. It is
// returned before any bus traffic is issued.
type ParameterError struct {
	Name   string
	Reason string
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("it8951: invalid %s: %s", e.Name, e.Reason)
}

// AreaError reports an area that violates the panel bounds.
type AreaError struct {
	Area           Area
	PanelW, PanelH uint16
}

func (e *AreaError) Error() string {
	return fmt.Sprintf("it8951: area %dx%d+%d+%d exceeds panel %dx%d",
		e.Area.W, e.Area.H, e.Area.X, e.Area.Y, e.PanelW, e.PanelH)
}

// DeviceError reports malformed or inconsistent data returned by the device,
// such as a truncated system info response.
type DeviceError struct {
	Reason string
}

func (e *DeviceError) Error() string {
	return "it8951: device error: " + e.Reason
}
