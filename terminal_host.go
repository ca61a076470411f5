// terminal_host.go - interactive raw-stdin serial host for --boot-from-serial.
//
// The serial line only needs a byte pump, so this host is a single
// cross-platform blocking reader: one goroutine blocks in os.Stdin.Read and
// pushes each batch into the TerminalSerial FIFO. Raw mode swallows Ctrl-C,
// so Ctrl-] (the telnet escape) is the way out; typing it, or stdin closing,
// flags the host as done and the main loop exits.

package main

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"
)

const terminalQuitByte = 0x1D // Ctrl-]

// TerminalHost feeds raw stdin into a TerminalSerial device and drains the
// guest's serial output back to stdout. Only instantiated in main.go for
// interactive use, never in tests.
type TerminalHost struct {
	serial   *TerminalSerial
	oldState *term.State
	quitCh   chan struct{}
	quitOnce sync.Once
}

// NewTerminalHost creates a host adapter that reads stdin into serial.
func NewTerminalHost(serial *TerminalSerial) *TerminalHost {
	return &TerminalHost{
		serial: serial,
		quitCh: make(chan struct{}),
	}
}

// Start puts the terminal into raw mode and spawns the reader goroutine.
// The goroutine spends its life parked in a blocking Read; it ends when the
// user types Ctrl-] or stdin closes, so Stop never waits for it.
func (h *TerminalHost) Start() {
	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "terminal host: raw mode: %v\n", err)
		return
	}
	h.oldState = oldState

	go func() {
		buf := make([]byte, 64)
		for {
			n, err := os.Stdin.Read(buf)
			if n > 0 {
				batch := buf[:n]
				if i := bytes.IndexByte(batch, terminalQuitByte); i >= 0 {
					h.serial.PushBytes(translateRawInput(batch[:i]))
					h.requestQuit()
					return
				}
				h.serial.PushBytes(translateRawInput(batch))
			}
			if err != nil {
				h.requestQuit()
				return
			}
		}
	}()
}

// translateRawInput maps the raw-mode byte stream to the guest's
// conventions: Enter arrives as CR and becomes LF, Backspace arrives as DEL
// and becomes BS.
func translateRawInput(raw []byte) []byte {
	out := make([]byte, len(raw))
	for i, b := range raw {
		switch b {
		case '\r':
			b = '\n'
		case 0x7F:
			b = 0x08
		}
		out[i] = b
	}
	return out
}

func (h *TerminalHost) requestQuit() {
	h.quitOnce.Do(func() { close(h.quitCh) })
}

// QuitRequested reports whether the user typed Ctrl-] or stdin closed.
func (h *TerminalHost) QuitRequested() bool {
	select {
	case <-h.quitCh:
		return true
	default:
		return false
	}
}

// Stop restores the terminal state. The reader goroutine may still be
// parked in a blocking Read; it holds nothing beyond stdin, which the
// process owns, so it is left to die with the process.
func (h *TerminalHost) Stop() {
	if h.oldState != nil {
		_ = term.Restore(int(os.Stdin.Fd()), h.oldState)
		h.oldState = nil
	}
}

// PrintOutput drains the guest's serial output to stdout, expanding LF to
// CRLF because the terminal is still in raw mode.
func (h *TerminalHost) PrintOutput() {
	out := h.serial.DrainOutput()
	if out == "" {
		return
	}
	os.Stdout.WriteString(strings.ReplaceAll(out, "\n", "\r\n"))
}
