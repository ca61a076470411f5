// spi_disk.go - paravirtual SPI disk: SD-card-like command framing over a
// byte-oriented bus, backed by a flat file of 512-byte sectors, plus a
// paravirtual fast path that reads the command block straight out of guest
// RAM.

package main

import (
	"encoding/binary"
	"fmt"
	"os"
)

type spiDiskState int

const (
	spiCommand spiDiskState = iota
	spiReading
	spiAwaitToken
	spiWriting
	spiAckPending
)

const sectorWords = 128
const sectorBytes = sectorWords * 4

// SPIDisk implements SPIDevice (and, for slot 1, ParavirtualWriter) backed
// by an os.File of 512-byte sectors.
type SPIDisk struct {
	file   *os.File
	offset uint32 // subtracted from incoming sector numbers

	state  spiDiskState
	status byte

	cmdBuf []byte

	readBuf []uint32 // 130 entries: status, token, 128 data words
	readIdx int

	writeBuf  [sectorWords]uint32
	writeIdx  int
	writeSector uint32
}

// NewSPIDisk opens a disk image, inspecting sector 0 for the filesystem-only
// magic. Open failure is fatal and is reported by the caller.
func NewSPIDisk(path string) (*SPIDisk, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("spi disk: open %q: %w", path, err)
	}
	d := &SPIDisk{file: f}

	var hdr [4]byte
	if _, err := f.ReadAt(hdr[:], 0); err == nil {
		if binary.LittleEndian.Uint32(hdr[:]) == diskOffsetMagic {
			d.offset = diskFilesystemOffset
		}
	}
	return d, nil
}

func (d *SPIDisk) Close() error {
	if d.file == nil {
		return nil
	}
	return d.file.Close()
}

// ReadData implements SPIDevice.
func (d *SPIDisk) ReadData() uint32 {
	switch d.state {
	case spiReading:
		if d.readIdx < len(d.readBuf) {
			return d.readBuf[d.readIdx]
		}
		return 0
	default:
		return uint32(d.status)
	}
}

// WriteData implements SPIDevice: the guest drives the protocol by clocking
// dummy/data bytes through this call; responses are pulled back via
// ReadData. A read transaction consumes 130 clocks (status, token, 128
// words) and a write 132 (token, 128 words, 2 trailers, ack) before the
// state machine returns to Command.
func (d *SPIDisk) WriteData(val uint32) {
	b := byte(val)
	switch d.state {
	case spiCommand:
		if len(d.cmdBuf) == 0 && b == 0xFF {
			return // leading idle byte discarded
		}
		d.cmdBuf = append(d.cmdBuf, b)
		if len(d.cmdBuf) == 6 {
			d.handleCommand(d.cmdBuf)
			d.cmdBuf = d.cmdBuf[:0]
		}

	case spiAwaitToken:
		// The 0xFE write-token byte; value is not otherwise validated.
		d.state = spiWriting
		d.writeIdx = 0

	case spiWriting:
		switch {
		case d.writeIdx < sectorWords:
			d.writeBuf[d.writeIdx] = val
		default:
			// Two trailer bytes, ignored.
		}
		d.writeIdx++
		if d.writeIdx >= sectorWords+2 {
			d.commitWrite()
			d.status = 0x05
			d.state = spiAckPending
			d.writeIdx = 0
		}

	case spiAckPending:
		// One more clock lets the guest pull the 0x05 acknowledgement byte
		// back via ReadData before the state machine returns to Command.
		d.state = spiCommand

	case spiReading:
		d.readIdx++
		if d.readIdx >= len(d.readBuf) {
			d.state = spiCommand
			d.readIdx = 0
			d.readBuf = nil
		}
	}
}

// handleCommand parses a 6-byte command frame: opcode byte, then the sector
// number as 32 big-endian bits, with the final byte left unused as a
// CRC-equivalent placeholder (see DESIGN.md on the truncated sector width).
func (d *SPIDisk) handleCommand(cmd []byte) {
	op := cmd[0]
	sector := uint32(cmd[1])<<24 | uint32(cmd[2])<<16 | uint32(cmd[3])<<8 | uint32(cmd[4])

	switch op {
	case 0x51: // read
		d.status = 0x00
		words := d.loadSector(sector - d.offset)
		buf := make([]uint32, 0, 2+sectorWords)
		buf = append(buf, 0x00, 0xFE)
		buf = append(buf, words[:]...)
		d.readBuf = buf
		d.readIdx = 0
		d.state = spiReading

	case 0x58: // write
		d.status = 0x00
		d.writeSector = sector - d.offset
		d.state = spiAwaitToken

	default:
		d.status = 0x00
	}
}

func (d *SPIDisk) loadSector(sector uint32) [sectorWords]uint32 {
	var words [sectorWords]uint32
	var buf [sectorBytes]byte
	n, _ := d.file.ReadAt(buf[:], int64(sector)*sectorBytes)
	for i := 0; i*4 < n; i++ {
		words[i] = binary.LittleEndian.Uint32(buf[i*4:])
	}
	return words
}

func (d *SPIDisk) commitWrite() {
	var buf [sectorBytes]byte
	for i, w := range d.writeBuf {
		binary.LittleEndian.PutUint32(buf[i*4:], w)
	}
	d.file.WriteAt(buf[:], int64(d.writeSector)*sectorBytes)
}

// ParavirtualWrite implements ParavirtualWriter for slot 1: the
// command block is read directly out of guest RAM, bypassing the
// byte-streamed protocol entirely. The first word of the block is the
// opcode (matching the SPI command bytes 0x51/0x58), the second is the
// sector, the rest mirror the SPI payload via the RAM slice directly.
func (d *SPIDisk) ParavirtualWrite(ram []uint32, cmdWordIndex uint32) {
	if int(cmdWordIndex)+2 > len(ram) {
		return
	}
	op := ram[cmdWordIndex]
	sector := ram[cmdWordIndex+1] - d.offset
	switch op {
	case 0x51:
		words := d.loadSector(sector)
		base := cmdWordIndex + 2
		for i := 0; i < sectorWords && int(base)+i < len(ram); i++ {
			ram[int(base)+i] = words[i]
		}
	case 0x58:
		base := cmdWordIndex + 2
		var words [sectorWords]uint32
		for i := 0; i < sectorWords && int(base)+i < len(ram); i++ {
			words[i] = ram[int(base)+i]
		}
		d.writeSector = sector
		d.writeBuf = words
		d.commitWrite()
	}
}
