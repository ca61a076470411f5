// clipboard_device.go - host clipboard bridge (MMIO offsets 40/44).
//
// Protocol: writing 1 to the control register loads the host clipboard's
// text into the read buffer and resets the cursor; writing 2 flushes the
// accumulated write buffer to the host clipboard and clears it. Reading the
// control register returns the number of bytes left to read. Data is
// streamed one byte per word.

package main

import (
	"sync"

	"golang.design/x/clipboard"
)

const (
	clipCtrlLoad  = 1
	clipCtrlFlush = 2
)

// HostClipboard bridges MMIO-40/44 to the host OS clipboard.
type HostClipboard struct {
	mu        sync.Mutex
	initOnce  sync.Once
	available bool

	readBuf []byte
	readPos int

	writeBuf []byte
}

// NewHostClipboard constructs a clipboard device; the first control-register
// load or flush lazily initializes the platform clipboard backend.
func NewHostClipboard() *HostClipboard {
	return &HostClipboard{}
}

func (c *HostClipboard) ensureInit() {
	c.initOnce.Do(func() {
		c.available = clipboard.Init() == nil
	})
}

func (c *HostClipboard) ReadControl() uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return uint32(len(c.readBuf) - c.readPos)
}

func (c *HostClipboard) WriteControl(v uint32) {
	c.ensureInit()
	c.mu.Lock()
	defer c.mu.Unlock()
	switch v {
	case clipCtrlLoad:
		c.readBuf = nil
		c.readPos = 0
		if c.available {
			c.readBuf = clipboard.Read(clipboard.FmtText)
		}
	case clipCtrlFlush:
		if c.available && len(c.writeBuf) > 0 {
			clipboard.Write(clipboard.FmtText, c.writeBuf)
		}
		c.writeBuf = nil
	}
}

func (c *HostClipboard) ReadData() uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.readPos >= len(c.readBuf) {
		return 0
	}
	b := c.readBuf[c.readPos]
	c.readPos++
	return uint32(b)
}

func (c *HostClipboard) WriteData(v uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writeBuf = append(c.writeBuf, byte(v))
}
