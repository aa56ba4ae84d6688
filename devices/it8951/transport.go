// Copyright 2021 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package it8951

import (
	"time"
)

// transport frames every bus exchange with the correct preamble and
// enforces the hardware ready handshake. It is the only layer touching the
// physical bus; errors are surfaced upward unchanged and never retried
// here.
type transport struct {
	bus Bus

	// timeout bounds every ready poll.
	timeout time.Duration
	// txWords caps the number of data words per chip select session; large
	// bursts are split into sessions, each with its own preamble.
	txWords int
}

const readyPollInterval = 10 * time.Microsecond

// waitReady polls the ready input until it asserts. It never blocks past
// the configured timeout.
func (t *transport) waitReady() error {
	deadline := time.Now().Add(t.timeout)
	for !t.bus.Ready() {
		if time.Now().After(deadline) {
			return &TimeoutError{Wait: t.timeout}
		}
		time.Sleep(readyPollInterval)
	}
	return nil
}

// session runs f with the select line asserted and guarantees the line is
// released on every exit path.
func (t *transport) session(f func() error) (err error) {
	if err := t.bus.ChipSelect(true); err != nil {
		return &TransportError{Op: "chip select", Err: err}
	}
	defer func() {
		if cerr := t.bus.ChipSelect(false); cerr != nil && err == nil {
			err = &TransportError{Op: "chip select release", Err: cerr}
		}
	}()
	return f()
}

// tx performs one transfer inside the current session.
func (t *transport) tx(w, r []byte) error {
	if err := t.bus.Tx(w, r); err != nil {
		return &TransportError{Op: "transfer", Err: err}
	}
	return nil
}

// wordBytes serializes 16-bit words high byte first, the order the chip
// expects on the wire.
func wordBytes(words []uint16) []byte {
	buf := make([]byte, 2*len(words))
	for i, w := range words {
		buf[2*i] = byte(w >> 8)
		buf[2*i+1] = byte(w)
	}
	return buf
}

// writeCommand sends the write-command preamble followed by the 16-bit
// command code.
func (t *transport) writeCommand(c command) error {
	if err := t.waitReady(); err != nil {
		return err
	}
	return t.session(func() error {
		return t.tx(wordBytes([]uint16{preambleCommand, uint16(c)}), nil)
	})
}

// writeData sends the write-data preamble followed by a single word.
func (t *transport) writeData(w uint16) error {
	if err := t.waitReady(); err != nil {
		return err
	}
	return t.session(func() error {
		return t.tx(wordBytes([]uint16{preambleWrite, w}), nil)
	})
}

// writeWords streams words to the device in burst mode. The payload is
// split into select sessions of at most txWords words; each session waits
// for ready and carries its own write-data preamble.
func (t *transport) writeWords(words []uint16) error {
	for len(words) > 0 {
		n := len(words)
		if n > t.txWords {
			n = t.txWords
		}
		chunk := words[:n]
		words = words[n:]

		if err := t.waitReady(); err != nil {
			return err
		}
		err := t.session(func() error {
			buf := make([]byte, 2+2*len(chunk))
			buf[0] = byte(preambleWrite >> 8)
			buf[1] = byte(preambleWrite)
			copy(buf[2:], wordBytes(chunk))
			return t.tx(buf, nil)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// readWords sends the read-data preamble and reads count words. The first
// word the device clocks out after the preamble is invalid and is
// discarded.
func (t *transport) readWords(count int) ([]uint16, error) {
	if err := t.waitReady(); err != nil {
		return nil, err
	}
	words := make([]uint16, count)
	err := t.session(func() error {
		// Preamble, one dummy word, then the payload, in one transfer.
		w := make([]byte, 2+2+2*count)
		w[0] = byte(preambleRead >> 8)
		w[1] = byte(preambleRead & 0xff)
		r := make([]byte, len(w))
		if err := t.tx(w, r); err != nil {
			return err
		}
		for i := 0; i < count; i++ {
			words[i] = uint16(r[4+2*i])<<8 | uint16(r[5+2*i])
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return words, nil
}

// writeCommandArgs sends a command followed by its argument words.
func (t *transport) writeCommandArgs(c command, args []uint16) error {
	if err := t.writeCommand(c); err != nil {
		return err
	}
	if len(args) == 0 {
		return nil
	}
	return t.writeWords(args)
}

// readRegister reads one 16-bit device register.
func (t *transport) readRegister(r register) (uint16, error) {
	if err := t.writeCommand(cmdRegRead); err != nil {
		return 0, err
	}
	if err := t.writeData(uint16(r)); err != nil {
		return 0, err
	}
	words, err := t.readWords(1)
	if err != nil {
		return 0, err
	}
	return words[0], nil
}

// writeRegister writes one 16-bit device register.
func (t *transport) writeRegister(r register, v uint16) error {
	if err := t.writeCommand(cmdRegWrite); err != nil {
		return err
	}
	if err := t.writeData(uint16(r)); err != nil {
		return err
	}
	return t.writeData(v)
}
