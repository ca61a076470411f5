// serial_device.go - host-backed serial line (MMIO offsets 8/12): a byte
// FIFO fed by TerminalHost's raw-stdin reader on one side and drained by
// the guest's ReadData on the other, with WriteData appending to an output
// buffer a host loop drains via DrainOutput. Status bit 0 means "input
// available".

package main

import (
	"fmt"
	"os"
	"sync"
)

// TerminalSerial implements SerialDevice over an in-process byte FIFO; a
// TerminalHost (or a file-backed --serial-in/--serial-out driver in
// main.go) supplies input and drains output.
type TerminalSerial struct {
	mu  sync.Mutex
	in  []byte
	out []byte
}

// NewTerminalSerial constructs an empty serial line.
func NewTerminalSerial() *TerminalSerial {
	return &TerminalSerial{}
}

// PushInput appends one host-side input byte to the FIFO the guest reads.
func (s *TerminalSerial) PushInput(b byte) {
	s.mu.Lock()
	s.in = append(s.in, b)
	s.mu.Unlock()
}

// PushBytes appends a whole batch of host-side input bytes at once.
func (s *TerminalSerial) PushBytes(b []byte) {
	if len(b) == 0 {
		return
	}
	s.mu.Lock()
	s.in = append(s.in, b...)
	s.mu.Unlock()
}

func (s *TerminalSerial) ReadStatus() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.in) > 0 {
		return 1
	}
	return 0
}

func (s *TerminalSerial) ReadData() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.in) == 0 {
		return 0
	}
	b := s.in[0]
	s.in = s.in[1:]
	return uint32(b)
}

func (s *TerminalSerial) WriteData(v uint32) {
	s.mu.Lock()
	s.out = append(s.out, byte(v))
	s.mu.Unlock()
}

// DrainOutput returns and clears everything the guest has written so far.
func (s *TerminalSerial) DrainOutput() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.out) == 0 {
		return ""
	}
	out := string(s.out)
	s.out = nil
	return out
}

// FileSerial backs the serial line with plain files for --serial-in and
// --serial-out: the whole input file is queued up front, each WriteData
// byte is appended to the output file as it arrives.
type FileSerial struct {
	mu  sync.Mutex
	in  []byte
	out *os.File
}

// NewFileSerial opens inPath (may be empty) and outPath (may be empty) for
// a file-backed serial line.
func NewFileSerial(inPath, outPath string) (*FileSerial, error) {
	fs := &FileSerial{}
	if inPath != "" {
		data, err := os.ReadFile(inPath)
		if err != nil {
			return nil, fmt.Errorf("serial: reading %s: %w", inPath, err)
		}
		fs.in = data
	}
	if outPath != "" {
		f, err := os.OpenFile(outPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("serial: opening %s: %w", outPath, err)
		}
		fs.out = f
	}
	return fs, nil
}

func (fs *FileSerial) ReadStatus() uint32 {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if len(fs.in) > 0 {
		return 1
	}
	return 0
}

func (fs *FileSerial) ReadData() uint32 {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if len(fs.in) == 0 {
		return 0
	}
	b := fs.in[0]
	fs.in = fs.in[1:]
	return uint32(b)
}

func (fs *FileSerial) WriteData(v uint32) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.out != nil {
		fs.out.Write([]byte{byte(v)})
	}
}

// Close releases the output file, if any.
func (fs *FileSerial) Close() error {
	if fs.out != nil {
		return fs.out.Close()
	}
	return nil
}
