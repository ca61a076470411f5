// memio_test.go - word/byte load/store routing across RAM/ROM/palette/MMIO.

package main

import "testing"

func TestWordLoadStoreRAMRoundTrip(t *testing.T) {
	m := newRAMMachine(1)
	m.Store32(128, 0x11223344)
	if got := m.Load32(128); got != 0x11223344 {
		t.Fatalf("Load32(128) = %#x, want 0x11223344", got)
	}
}

func TestByteStoreOnlyTouchesOneByte(t *testing.T) {
	m := newRAMMachine(1)
	m.Store32(128, 0x11223344)
	m.StoreByte(129, 0xFF) // second byte (little-endian byte 1)
	got := m.Load32(128)
	want := uint32(0x1122FF44)
	if got != want {
		t.Fatalf("Load32(128) after byte store = %#x, want %#x", got, want)
	}
}

func TestByteLoadExtractsCorrectByte(t *testing.T) {
	m := newRAMMachine(1)
	m.Store32(128, 0xAABBCCDD)
	if got := m.LoadByte(128); got != 0xDD {
		t.Fatalf("LoadByte(128) = %#x, want 0xDD", got)
	}
	if got := m.LoadByte(129); got != 0xCC {
		t.Fatalf("LoadByte(129) = %#x, want 0xCC", got)
	}
	if got := m.LoadByte(130); got != 0xBB {
		t.Fatalf("LoadByte(130) = %#x, want 0xBB", got)
	}
	if got := m.LoadByte(131); got != 0xAA {
		t.Fatalf("LoadByte(131) = %#x, want 0xAA", got)
	}
}

func TestPaletteRoundTrip(t *testing.T) {
	m := newRAMMachine(1)
	addr := PaletteStart + 4*10
	m.Store32(addr, 0xFF00FF00)
	if got := m.Load32(addr); got != 0xFF00FF00 {
		t.Fatalf("palette[10] = %#x, want 0xFF00FF00", got)
	}
}

func TestPaletteWriteMarksFullDamage(t *testing.T) {
	m := newRAMMachine(1)
	m.GetFramebufferDamage() // clear any startup damage
	m.Store32(PaletteStart, 0x12345678)
	d := m.GetFramebufferDamage()
	if d.isClean() {
		t.Fatal("palette write should mark full damage, got clean")
	}
	if d.X1 != 0 || d.Y1 != 0 || int(d.X2) != int(m.ModeSpan)-1 || d.Y2 != m.CurHeight-1 {
		t.Fatalf("damage = %+v, want full viewport", d)
	}
}

func TestROMIsReadOnly(t *testing.T) {
	m := newRAMMachine(1)
	original := m.ROM[0]
	m.Store32(ROMStart, 0xDEADBEEF)
	if m.ROM[0] != original {
		t.Fatalf("ROM[0] changed to %#x after store, want unchanged %#x", m.ROM[0], original)
	}
	if got := m.Load32(ROMStart); got != original {
		t.Fatalf("Load32(ROMStart) = %#x, want %#x", got, original)
	}
}

func TestMMIOUnconfiguredSerialReadsZero(t *testing.T) {
	m := newRAMMachine(1)
	if got := m.Load32(ioAddr(ioSerialData)); got != 0 {
		t.Fatalf("unconfigured serial read = %#x, want 0", got)
	}
}

func TestMMIOLEDWriteDispatchesToDevice(t *testing.T) {
	m := newRAMMachine(1)
	var got uint32
	m.LED = ledWriterFunc(func(v uint32) { got = v })
	m.Store32(ioAddr(ioSwitchLED), 0x7)
	if got != 0x7 {
		t.Fatalf("LED write callback got %#x, want 0x7", got)
	}
}

type ledWriterFunc func(uint32)

func (f ledWriterFunc) Write(v uint32) { f(v) }

func TestMMIOUnmappedOffsetReadsZero(t *testing.T) {
	m := newRAMMachine(1)
	// Offset 56 (0x38) has no register assigned in the MMIO table.
	m.Store32(IOStart+0x38, 0x1234)
	if got := m.Load32(IOStart + 0x38); got != 0 {
		t.Fatalf("unmapped MMIO offset read = %#x, want 0", got)
	}
}

func TestMMIOWriteToReadOnlyRegisterDropped(t *testing.T) {
	m := newRAMMachine(1)
	m.SetTime(777)
	m.Store32(ioAddr(ioTimer), 0xFFFF)
	if got := m.CurrentTick; got != 777 {
		t.Fatalf("CurrentTick = %d after a write to the read-only timer, want 777", got)
	}
}

func TestMMIOModeSwitchReadbackThroughDispatch(t *testing.T) {
	m := newRAMMachine(1)
	if got := m.Load32(ioAddr(ioModeSwitch)); got != 0 {
		t.Fatalf("mode readback = %#x, want initial mode index 0", got)
	}
}

func TestFramebufferStoreUpdatesMemSizeWindow(t *testing.T) {
	m := newRAMMachine(1)
	addr := m.DisplayStart
	m.Store32(addr, 0xDEADBEEF)
	if m.RAM[addr/4] != 0xDEADBEEF {
		t.Fatalf("framebuffer word not written")
	}
}
