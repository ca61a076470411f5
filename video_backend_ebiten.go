//go:build !headless

// video_backend_ebiten.go - Ebiten video backend: renders the machine's
// framebuffer+palette window and forwards keyboard, mouse and
// clipboard-paste input into it.
//
// License: GPLv3 or later

package main

import (
	"fmt"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"golang.design/x/clipboard"
)

// cyclesPerFrame caps how many instructions Run executes between frames;
// the progress heuristic usually cuts this short on a busy-wait.
const cyclesPerFrame = 200000

// EbitenDisplay renders a Machine's framebuffer and forwards keyboard,
// mouse and clipboard-paste input into it. Update/Draw are called by
// ebiten's own frame loop, so Run and rendering happen on ebiten's single
// goroutine, matching the machine's single-threaded cooperative model.
type EbitenDisplay struct {
	m     *Machine
	epoch time.Time

	running    bool
	fullscreen bool
	scale      int
	windowedW  int
	windowedH  int

	window      *ebiten.Image
	frameBuf    []byte
	bufferMu    sync.RWMutex
	curWidth    int
	curHeight   int
	frameCount  uint64
	vsyncChan   chan struct{}

	clipboardOnce sync.Once
	clipboardOK   bool
}

// NewDisplay constructs a display bound to m. Width/height track the
// machine's current mode and are re-derived each frame (seamless/dynamic
// resize is entirely the machine's call, per SwitchMode).
func NewDisplay(m *Machine, fullscreen bool, scale int) Display {
	if scale < 1 {
		scale = 1
	}
	return &EbitenDisplay{
		m:          m,
		epoch:      time.Now(),
		fullscreen: fullscreen,
		scale:      scale,
		vsyncChan:  make(chan struct{}, 1),
	}
}

func (ed *EbitenDisplay) Start() error {
	if ed.running {
		return nil
	}
	ed.running = true

	w, h, _, _ := ed.m.GetDisplayMode()
	if w <= 0 {
		w = 640
	}
	if h <= 0 {
		h = 480
	}
	ed.windowedW, ed.windowedH = w*ed.scale, h*ed.scale

	ebiten.SetWindowSize(ed.windowedW, ed.windowedH)
	ebiten.SetWindowTitle("Oberon RISC")
	ebiten.SetWindowResizable(true)
	ebiten.SetRunnableOnUnfocused(true)
	ebiten.SetVsyncEnabled(true)
	if ed.fullscreen {
		ebiten.SetFullscreen(true)
	}

	go func() {
		if err := ebiten.RunGame(ed); err != nil {
			fmt.Printf("ebiten: %v\n", err)
		}
	}()

	<-ed.vsyncChan
	return nil
}

func (ed *EbitenDisplay) Stop() error {
	ed.running = false
	return nil
}

func (ed *EbitenDisplay) IsStarted() bool { return ed.running }

func (ed *EbitenDisplay) GetFrameCount() uint64 { return ed.frameCount }

// Update steps the machine, forwards input, and refreshes the changed
// region of frameBuf from the machine's damage rectangle.
func (ed *EbitenDisplay) Update() error {
	if !ed.running {
		return ebiten.Termination
	}
	if ebiten.IsWindowBeingClosed() {
		return ebiten.Termination
	}

	ed.m.SetTime(uint32(time.Since(ed.epoch).Milliseconds()))
	ed.m.Run(cyclesPerFrame)
	ed.m.TriggerInterrupt() // frame-end tick; deferred while E is clear
	ed.handleKeyboardInput()
	ed.handleMouseInput()

	w, h, _, _ := ed.m.GetDisplayMode()
	ed.bufferMu.Lock()
	if w != ed.curWidth || h != ed.curHeight {
		ed.curWidth, ed.curHeight = w, h
		ed.frameBuf = make([]byte, w*h*4)
		ed.m.markFullDamage()
		ed.window = nil
	}
	ed.m.SizeHint(ed.windowedW/ed.scale, ed.windowedH/ed.scale)
	ed.renderDamage()
	ed.bufferMu.Unlock()

	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		ed.fullscreen = !ed.fullscreen
		ebiten.SetFullscreen(ed.fullscreen)
	}
	return nil
}

// renderDamage repaints only the rectangle the machine reports dirty,
// converting RAM+palette bits to RGBA per the current depth. Callers must
// hold bufferMu.
func (ed *EbitenDisplay) renderDamage() {
	rect := ed.m.GetFramebufferDamage()
	if rect.isClean() || ed.curWidth == 0 {
		return
	}
	depth := ed.m.CurDepth
	span := int(ed.m.ModeSpan)
	if span == 0 {
		return
	}
	fb := ed.m.Framebuffer()

	y1, y2 := rect.Y1, rect.Y2
	if y1 < 0 {
		y1 = 0
	}
	if y2 >= ed.curHeight {
		y2 = ed.curHeight - 1
	}
	for row := y1; row <= y2; row++ {
		for col := rect.X1; col <= rect.X2 && col < span; col++ {
			idx := row*span + col
			if idx >= len(fb) {
				return
			}
			ed.paintWord(row, col, depth, fb[idx])
		}
	}
}

func (ed *EbitenDisplay) paintWord(row, col, depth int, word uint32) {
	perWord := 32 / depth
	mask := uint32(1)<<uint(depth) - 1
	for i := 0; i < perWord; i++ {
		x := col*perWord + i
		if x >= ed.curWidth {
			break
		}
		idx := (word >> uint(i*depth)) & mask
		rgba := ed.lookupColor(depth, idx)
		off := (row*ed.curWidth + x) * 4
		copy(ed.frameBuf[off:off+4], rgba[:])
	}
}

func (ed *EbitenDisplay) lookupColor(depth int, idx uint32) [4]byte {
	if depth == 1 {
		if idx != 0 {
			return [4]byte{0, 0, 0, 255}
		}
		return [4]byte{255, 255, 255, 255}
	}
	c := ed.m.Palette[idx&0xFF]
	return [4]byte{byte(c), byte(c >> 8), byte(c >> 16), 255}
}

func (ed *EbitenDisplay) Draw(screen *ebiten.Image) {
	ed.bufferMu.RLock()
	if ed.curWidth > 0 {
		if ed.window == nil {
			ed.window = ebiten.NewImage(ed.curWidth, ed.curHeight)
		}
		ed.window.WritePixels(ed.frameBuf)
		screen.DrawImage(ed.window, nil)
	}
	ed.bufferMu.RUnlock()

	ed.frameCount++
	select {
	case ed.vsyncChan <- struct{}{}:
	default:
	}
}

func (ed *EbitenDisplay) Layout(outsideWidth, outsideHeight int) (int, int) {
	ed.windowedW, ed.windowedH = outsideWidth, outsideHeight
	if ed.curWidth == 0 {
		return 640, 480
	}
	return ed.curWidth, ed.curHeight
}

func (ed *EbitenDisplay) handleMouseInput() {
	x, y := ebiten.CursorPosition()
	ed.m.MouseMoved(x, y)
	buttons := []struct {
		btn ebiten.MouseButton
		id  int
	}{
		{ebiten.MouseButtonLeft, 1},
		{ebiten.MouseButtonMiddle, 2},
		{ebiten.MouseButtonRight, 3},
	}
	for _, b := range buttons {
		if inpututil.IsMouseButtonJustPressed(b.btn) {
			ed.m.MouseButton(b.id, true)
		}
		if inpututil.IsMouseButtonJustReleased(b.btn) {
			ed.m.MouseButton(b.id, false)
		}
	}
}

func (ed *EbitenDisplay) handleKeyboardInput() {
	ctrl := ebiten.IsKeyPressed(ebiten.KeyControlLeft) || ebiten.IsKeyPressed(ebiten.KeyControlRight)
	shift := ebiten.IsKeyPressed(ebiten.KeyShiftLeft) || ebiten.IsKeyPressed(ebiten.KeyShiftRight)

	if ctrl && shift && inpututil.IsKeyJustPressed(ebiten.KeyV) {
		ed.handleClipboardPaste()
	}

	for _, r := range ebiten.AppendInputChars(nil) {
		if b, ok := runeToInputByte(r); ok {
			ed.m.KeyboardInput([]byte{b})
		}
	}

	specialKeys := []ebiten.Key{
		ebiten.KeyEnter, ebiten.KeyNumpadEnter, ebiten.KeyBackspace,
		ebiten.KeyTab, ebiten.KeyEscape,
		ebiten.KeyArrowUp, ebiten.KeyArrowDown, ebiten.KeyArrowRight, ebiten.KeyArrowLeft,
		ebiten.KeyHome, ebiten.KeyEnd, ebiten.KeyDelete,
	}
	for _, key := range specialKeys {
		if inpututil.IsKeyJustPressed(key) {
			if seq, ok := translateSpecialKey(key); ok {
				ed.m.KeyboardInput(seq)
			}
		}
	}
}

func runeToInputByte(r rune) (byte, bool) {
	if r <= 0 || r > 0xFF {
		return 0, false
	}
	return byte(r), true
}

func translateSpecialKey(key ebiten.Key) ([]byte, bool) {
	switch key {
	case ebiten.KeyEnter, ebiten.KeyNumpadEnter:
		return []byte{'\n'}, true
	case ebiten.KeyBackspace:
		return []byte{'\b'}, true
	case ebiten.KeyTab:
		return []byte{'\t'}, true
	case ebiten.KeyEscape:
		return []byte{0x1B}, true
	case ebiten.KeyArrowUp:
		return []byte{0x1B, '[', 'A'}, true
	case ebiten.KeyArrowDown:
		return []byte{0x1B, '[', 'B'}, true
	case ebiten.KeyArrowRight:
		return []byte{0x1B, '[', 'C'}, true
	case ebiten.KeyArrowLeft:
		return []byte{0x1B, '[', 'D'}, true
	case ebiten.KeyHome:
		return []byte{0x1B, '[', 'H'}, true
	case ebiten.KeyEnd:
		return []byte{0x1B, '[', 'F'}, true
	case ebiten.KeyDelete:
		return []byte{0x1B, '[', '3', '~'}, true
	default:
		return nil, false
	}
}

func normalizePasteText(raw []byte) []byte {
	norm := make([]byte, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		if raw[i] == '\r' {
			if i+1 < len(raw) && raw[i+1] == '\n' {
				i++
			}
			norm = append(norm, '\n')
			continue
		}
		norm = append(norm, raw[i])
	}
	return norm
}

func capPasteText(raw []byte, max int) []byte {
	if len(raw) <= max {
		return raw
	}
	return raw[:max]
}

// handleClipboardPaste feeds the host clipboard's text straight into the
// keyboard FIFO, independent of the guest-polled HostClipboard MMIO device.
func (ed *EbitenDisplay) handleClipboardPaste() {
	ed.clipboardOnce.Do(func() {
		ed.clipboardOK = clipboard.Init() == nil
	})
	if !ed.clipboardOK {
		return
	}
	data := clipboard.Read(clipboard.FmtText)
	if len(data) == 0 {
		return
	}
	data = normalizePasteText(data)
	data = capPasteText(data, 4096)
	ed.m.KeyboardInput(data)
}
