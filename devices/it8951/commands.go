// Copyright 2021 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package it8951

// command is a 16-bit IT8951 command code, either a built-in TCON command or
// an I80 user-defined command. Codes are fixed by the chip documentation and
// never derived at runtime.
type command uint16

// TCON commands.
const (
	cmdSysRun  command = 0x0001
	cmdStandby command = 0x0002
	cmdSleep   command = 0x0003

	cmdRegRead  command = 0x0010
	cmdRegWrite command = 0x0011

	cmdMemBurstReadTrigger command = 0x0012
	cmdMemBurstReadStart   command = 0x0013
	cmdMemBurstWrite       command = 0x0014
	cmdMemBurstEnd         command = 0x0015

	cmdLoadImage     command = 0x0020
	cmdLoadImageArea command = 0x0021
	cmdLoadImageEnd  command = 0x0022
)

// I80 user-defined commands.
const (
	cmdDisplayArea    command = 0x0034
	cmdDisplayBufArea command = 0x0037
	cmdVCOM           command = 0x0039
	cmdGetDevInfo     command = 0x0302
)

func (c command) String() string {
	switch c {
	case cmdSysRun:
		return "SysRun"
	case cmdStandby:
		return "Standby"
	case cmdSleep:
		return "Sleep"
	case cmdRegRead:
		return "RegRead"
	case cmdRegWrite:
		return "RegWrite"
	case cmdMemBurstReadTrigger:
		return "MemBurstReadTrigger"
	case cmdMemBurstReadStart:
		return "MemBurstReadStart"
	case cmdMemBurstWrite:
		return "MemBurstWrite"
	case cmdMemBurstEnd:
		return "MemBurstEnd"
	case cmdLoadImage:
		return "LoadImage"
	case cmdLoadImageArea:
		return "LoadImageArea"
	case cmdLoadImageEnd:
		return "LoadImageEnd"
	case cmdDisplayArea:
		return "DisplayArea"
	case cmdDisplayBufArea:
		return "DisplayBufArea"
	case cmdVCOM:
		return "VCOM"
	case cmdGetDevInfo:
		return "GetDevInfo"
	}
	return "command(0x" + hex16(uint16(c)) + ")"
}

// Every bus exchange starts with one of three fixed preamble words telling
// the device how to interpret what follows.
const (
	preambleCommand uint16 = 0x6000
	preambleWrite   uint16 = 0x0000
	preambleRead    uint16 = 0x1000
)

// register is a 16-bit IT8951 register address.
type register uint16

// System registers (base 0x0000).
const (
	regI80CPCR register = 0x0004 // I80 packed mode control
	regDrvCap  register = 0x0038 // source driving capability
)

// Memory converter registers (base 0x0200).
const (
	regMCSR  register = 0x0200
	regLISAR register = 0x0208 // load image start address, low word (+2 high word)
)

// Display engine registers (base 0x1000).
const (
	displayRegBase register = 0x1000

	regLUT0EWHR  = displayRegBase + 0x000 // LUT0 engine width/height
	regLUT0XYR   = displayRegBase + 0x040 // LUT0 XY
	regLUT0BADDR = displayRegBase + 0x080 // LUT0 base address
	regLUT0MFN   = displayRegBase + 0x0C0 // LUT0 mode and frame number
	regLUT01AF   = displayRegBase + 0x114 // LUT0/LUT1 active flag
	regUP0SR     = displayRegBase + 0x134 // update parameter 0
	regUP1SR     = displayRegBase + 0x138 // update parameter 1
	regLUT0ABFRV = displayRegBase + 0x13C // LUT0 alpha blend / fill rect value
	regUPBBADDR  = displayRegBase + 0x17C // update buffer base address
	regLUT0IMXY  = displayRegBase + 0x180 // LUT0 image buffer X/Y offset
	regLUTAFSR   = displayRegBase + 0x224 // all LUT engines free when zero
	regBGVR      = displayRegBase + 0x250 // 1bpp background/foreground gray values
)

const hexDigits = "0123456789abcdef"

func hex16(v uint16) string {
	return string([]byte{
		hexDigits[v>>12&0xF],
		hexDigits[v>>8&0xF],
		hexDigits[v>>4&0xF],
		hexDigits[v&0xF],
	})
}
