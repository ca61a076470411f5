// memio.go - word/byte load/store and RAM/ROM/palette/MMIO routing.
//
// RAM/ROM/palette routing is direct. The MMIO window is a fixed table of
// sixteen word registers that never grows at runtime, so dispatch is a flat
// array of per-register read/write slots; a nil slot gives unconfigured
// devices their required behavior (reads return 0, writes are dropped) for
// free.

package main

import "os"

// Load32 implements a word load at a byte address, dispatching to
// RAM/ROM/palette/MMIO. The ROM's 2048-byte range reaches the very
// top of the 32-bit address space, numerically enclosing the palette and
// MMIO windows, so those carve-outs dispatch first and the ROM is the
// fallback for the remainder.
func (m *Machine) Load32(addr uint32) uint32 {
	switch {
	case addr < m.MemSize:
		return m.RAM[addr>>2]
	case addr >= IOStart:
		return m.ioRead(addr - IOStart)
	case addr >= PaletteStart && addr < PaletteStart+PaletteBytes:
		return m.Palette[(addr-PaletteStart)>>2]
	case addr >= ROMStart:
		return m.ROM[(addr-ROMStart)>>2]
	default:
		return 0
	}
}

// Store32 implements a word store, dispatching the same ranges; ROM is
// read-only and palette/framebuffer stores update damage.
func (m *Machine) Store32(addr uint32, val uint32) {
	switch {
	case addr < m.MemSize:
		m.RAM[addr>>2] = val
		if addr >= m.DisplayStart {
			m.updateDamage(addr)
		}
	case addr >= IOStart:
		m.ioWrite(addr-IOStart, val)
	case addr >= PaletteStart && addr < PaletteStart+PaletteBytes:
		m.Palette[(addr-PaletteStart)>>2] = val
		m.markFullDamage()
	case addr >= ROMStart:
		// read-only
	}
}

// LoadByte extracts one byte from the word containing addr.
func (m *Machine) LoadByte(addr uint32) uint32 {
	word := m.Load32(addr &^ 3)
	shift := (addr & 3) * 8
	return (word >> shift) & 0xFF
}

// StoreByte read-modify-writes the word containing addr.
func (m *Machine) StoreByte(addr uint32, val uint32) {
	base := addr &^ 3
	word := m.Load32(base)
	shift := (addr & 3) * 8
	word = (word &^ (0xFF << shift)) | ((val & 0xFF) << shift)
	m.Store32(base, word)
}

// ioReg is one MMIO register's dispatch slot. A nil read or write
// side leaves that direction unmapped: reads return 0, writes are dropped,
// with no distinction between "not present" and "quiescent".
type ioReg struct {
	read  func() uint32
	write func(val uint32)
}

func (m *Machine) ioRead(off uint32) uint32 {
	i := off >> 2
	if off&3 != 0 || i >= uint32(len(m.ioRegs)) || m.ioRegs[i].read == nil {
		return 0
	}
	return m.ioRegs[i].read()
}

func (m *Machine) ioWrite(off uint32, val uint32) {
	i := off >> 2
	if off&3 != 0 || i >= uint32(len(m.ioRegs)) || m.ioRegs[i].write == nil {
		return
	}
	m.ioRegs[i].write(val)
}

// wireMMIO fills the register table. Handlers close over m, not over the
// current value of a device slot, so a device plugged in after NewMachine
// (main.go wires most of them) still dispatches correctly.
func (m *Machine) wireMMIO() {
	reg := func(off uint32, read func() uint32, write func(uint32)) {
		m.ioRegs[off>>2] = ioReg{read: read, write: write}
	}

	reg(ioTimer,
		func() uint32 { m.decrementProgress(); return m.CurrentTick },
		nil)

	reg(ioSwitchLED,
		func() uint32 { return m.Switches },
		func(val uint32) { m.LED.Write(val) })

	reg(ioSerialData,
		func() uint32 { return m.Serial.ReadData() },
		func(val uint32) { m.Serial.WriteData(val) })

	reg(ioSerialStat,
		func() uint32 { return m.Serial.ReadStatus() },
		nil)

	reg(ioSPIData,
		func() uint32 { return m.currentSPI().ReadData() },
		func(val uint32) { m.currentSPI().WriteData(val) })

	reg(ioSPISelect,
		func() uint32 { return 1 }, // rx-ready
		func(val uint32) {
			m.spiTarget = val & 0x3
			m.spiFast = (val>>2)&1 != 0
			m.spiNet = (val>>3)&1 != 0
		})

	reg(ioMouse,
		func() uint32 {
			if m.keyCnt > 0 {
				return m.Mouse | 0x10000000
			}
			m.decrementProgress()
			return m.Mouse
		},
		nil)

	reg(ioKeyboard,
		func() uint32 { return m.popScancode() },
		nil)

	reg(ioHostFS,
		nil,
		func(val uint32) {
			if m.HostFS != nil {
				m.HostFS.HandleCommand(m.RAM, val)
			}
			if m.HostTransfer != nil {
				m.HostTransfer.HandleCommand(m.RAM, val)
			}
		})

	reg(ioParavirt,
		nil,
		func(val uint32) {
			if pw, ok := m.SPI[1].(ParavirtualWriter); ok {
				pw.ParavirtualWrite(m.RAM, val)
			}
		})

	reg(ioClipCtrl,
		func() uint32 { return m.Clipboard.ReadControl() },
		func(val uint32) { m.Clipboard.WriteControl(val) })

	reg(ioClipData,
		func() uint32 { return m.Clipboard.ReadData() },
		func(val uint32) { m.Clipboard.WriteData(val) })

	reg(ioModeSwitch,
		func() uint32 { return m.modeReadback },
		func(val uint32) { m.SwitchMode(val) })

	reg(ioDebugCon,
		nil,
		func(val uint32) { m.writeDebugConsole(byte(val)) })

	reg(ioHWEnum,
		func() uint32 { return m.ReadHWEnum() },
		func(val uint32) { m.BeginHWQuery(val) })
}

func (m *Machine) currentSPI() SPIDevice {
	return m.SPI[m.spiTarget]
}

func (m *Machine) decrementProgress() {
	if m.progress > 0 {
		m.progress--
	}
}

func (m *Machine) popScancode() uint32 {
	if m.keyCnt == 0 {
		return 0
	}
	v := m.keyBuf[0]
	copy(m.keyBuf[:], m.keyBuf[1:m.keyCnt])
	m.keyCnt--
	return uint32(v)
}

// writeDebugConsole implements the MMIO-52 write side: a zero
// byte or buffer overflow flushes the line to stdout, translating CR to LF.
func (m *Machine) writeDebugConsole(b byte) {
	if b == 0 || m.dbgLen >= len(m.dbgLine) {
		m.flushDebugConsole()
		return
	}
	if b == '\r' {
		b = '\n'
	}
	m.dbgLine[m.dbgLen] = b
	m.dbgLen++
	if b == '\n' {
		m.flushDebugConsole()
	}
}

func (m *Machine) flushDebugConsole() {
	if m.dbgLen > 0 {
		os.Stdout.Write(m.dbgLine[:m.dbgLen])
	}
	m.dbgLen = 0
}
