//go:build headless

// video_backend_headless.go - headless display backend for tests/CI: steps
// the machine on a ticker instead of an ebiten frame callback, with no
// rendering at all.

package main

import (
	"sync/atomic"
	"time"
)

// HeadlessDisplay drives the machine without any window or pixel output.
type HeadlessDisplay struct {
	m          *Machine
	running    int32
	frameCount uint64
	stopCh     chan struct{}
}

// NewDisplay constructs the headless driver; fullscreen and scale are
// accepted only so main.go's call site is identical across build tags.
func NewDisplay(m *Machine, _ bool, _ int) Display {
	return &HeadlessDisplay{m: m, stopCh: make(chan struct{})}
}

func (h *HeadlessDisplay) Start() error {
	if !atomic.CompareAndSwapInt32(&h.running, 0, 1) {
		return nil
	}
	epoch := time.Now()
	go func() {
		ticker := time.NewTicker(16 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-h.stopCh:
				return
			case <-ticker.C:
				h.m.SetTime(uint32(time.Since(epoch).Milliseconds()))
				h.m.Run(cyclesPerFrame)
				atomic.AddUint64(&h.frameCount, 1)
			}
		}
	}()
	return nil
}

func (h *HeadlessDisplay) Stop() error {
	if atomic.CompareAndSwapInt32(&h.running, 1, 0) {
		close(h.stopCh)
	}
	return nil
}

func (h *HeadlessDisplay) IsStarted() bool {
	return atomic.LoadInt32(&h.running) == 1
}

func (h *HeadlessDisplay) GetFrameCount() uint64 {
	return atomic.LoadUint64(&h.frameCount)
}

const cyclesPerFrame = 200000
