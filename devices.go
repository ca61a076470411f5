// devices.go - per-device callback interfaces and their no-op stubs. The
// core never names a concrete implementation: each peripheral sits behind a
// narrow interface, and unconfigured slots get a stub instead of a nil
// check at every call site.

package main

// Display is the host video driver's interface to main.go, implemented by
// EbitenDisplay (video_backend_ebiten.go) and HeadlessDisplay
// (video_backend_headless.go) behind their respective build tags.
type Display interface {
	Start() error
	Stop() error
	IsStarted() bool
}

// SerialDevice backs MMIO offsets 8/12.
type SerialDevice interface {
	ReadStatus() uint32
	ReadData() uint32
	WriteData(v uint32)
}

// SPIDevice backs MMIO offsets 16/20 for one of the four SPI target slots.
type SPIDevice interface {
	ReadData() uint32
	WriteData(v uint32)
}

// ParavirtualWriter is an optional capability of an SPIDevice in slot 1;
// when present, MMIO-36 writes bypass the byte-streamed SPI protocol
// entirely.
type ParavirtualWriter interface {
	ParavirtualWrite(ram []uint32, cmdWordIndex uint32)
}

// ClipboardDevice backs MMIO offsets 40/44.
type ClipboardDevice interface {
	ReadControl() uint32
	WriteControl(v uint32)
	ReadData() uint32
	WriteData(v uint32)
}

// LEDDevice backs the write side of MMIO offset 4.
type LEDDevice interface {
	Write(v uint32)
}

// HostFSDevice backs MMIO offset 32; both HostFS and HostTransfer slots
// share this shape.
type HostFSDevice interface {
	HandleCommand(ram []uint32, cmdWordIndex uint32)
}

type nullSerial struct{}

func (nullSerial) ReadStatus() uint32   { return 0 }
func (nullSerial) ReadData() uint32     { return 0 }
func (nullSerial) WriteData(v uint32)   {}

type nullSPI struct{}

func (nullSPI) ReadData() uint32   { return 0 }
func (nullSPI) WriteData(v uint32) {}

type nullClipboard struct{}

func (nullClipboard) ReadControl() uint32 { return 0 }
func (nullClipboard) WriteControl(v uint32) {}
func (nullClipboard) ReadData() uint32    { return 0 }
func (nullClipboard) WriteData(v uint32)  {}

type nullLED struct{}

func (nullLED) Write(v uint32) {}
