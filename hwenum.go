// hwenum.go - hardware enumerator: FourCC-keyed capability descriptors the
// guest queries to discover which devices are present and where their
// registers live. Register addresses are computed via ioAddr (constants.go)
// rather than repeated as negative literal constants; both reduce to the
// identical uint32 bit pattern.

package main

func fourcc(a, b, c, d byte) uint32 {
	return uint32(a)<<24 | uint32(b)<<16 | uint32(c)<<8 | uint32(d)
}

var (
	fccRoot = fourcc('0', '0', '0', '0')
	fccMVid = fourcc('m', 'V', 'i', 'd')
	fccMDyn = fourcc('m', 'D', 'y', 'n')
	fcc16cV = fourcc('1', '6', 'c', 'V')
	fcc16cD = fourcc('1', '6', 'c', 'D')
	fcc8bcV = fourcc('8', 'b', 'c', 'V')
	fcc8bcD = fourcc('8', 'b', 'c', 'D')
	fccTimr = fourcc('T', 'i', 'm', 'r')
	fccSwtc = fourcc('S', 'w', 't', 'c')
	fccLEDs = fourcc('L', 'E', 'D', 's')
	fccSPrt = fourcc('S', 'P', 'r', 't')
	fccSPIf = fourcc('S', 'P', 'I', 'f')
	fccSDCr = fourcc('S', 'D', 'C', 'r')
	fccWNet = fourcc('w', 'N', 'e', 't')
	fccMsKb = fourcc('M', 's', 'K', 'b')
	fccVClp = fourcc('v', 'C', 'l', 'p')
	fccVDsk = fourcc('v', 'D', 's', 'k')
	fccHsFs = fourcc('H', 's', 'F', 's')
	fccVHTx = fourcc('v', 'H', 'T', 'x')
	fccDbgC = fourcc('D', 'b', 'g', 'C')
	fccRset = fourcc('R', 's', 'e', 't')
	fccVRTC = fourcc('v', 'R', 'T', 'C')
)

func (m *Machine) hasMonoStatic() bool {
	for _, mode := range m.Modes {
		if mode.Depth == 1 {
			return true
		}
	}
	return false
}

func (m *Machine) hasDepthStatic(depth int) bool {
	for _, mode := range m.Modes {
		if mode.Depth == depth {
			return true
		}
	}
	return false
}

func (m *Machine) hasHostFS() bool       { return m.HostFS != nil }
func (m *Machine) hasHostTransfer() bool { return m.HostTransfer != nil }

func (m *Machine) hasParavirtualDisk() bool {
	if m.SPI[1] == nil {
		return false
	}
	_, ok := m.SPI[1].(ParavirtualWriter)
	return ok
}

func (m *Machine) spiSlotConfigured(i int) bool {
	if m.SPI[i] == nil {
		return false
	}
	_, isStub := m.SPI[i].(nullSPI)
	return !isStub
}

// BeginHWQuery handles the MMIO-60 write side: it populates the response
// buffer for the given FourCC query.
func (m *Machine) BeginHWQuery(query uint32) {
	m.hwCursor = 0
	m.hwCount = 0
	emit := func(vals ...uint32) {
		for _, v := range vals {
			if m.hwCount < len(m.hwResp) {
				m.hwResp[m.hwCount] = v
				m.hwCount++
			}
		}
	}

	switch query {
	case fccRoot:
		emit(1)
		if m.hasMonoStatic() {
			emit(fccMVid)
		}
		if m.DynamicMode {
			emit(fccMDyn)
			emit(fcc16cD)
			emit(fcc8bcD)
		}
		if m.hasDepthStatic(4) {
			emit(fcc16cV)
		}
		if m.hasDepthStatic(8) {
			emit(fcc8bcV)
		}
		emit(fccTimr, fccSwtc)
		if m.LED != (LEDDevice)(nullLED{}) {
			emit(fccLEDs)
		}
		if m.Serial != (SerialDevice)(nullSerial{}) {
			emit(fccSPrt)
		}
		for i := range m.SPI {
			if m.spiSlotConfigured(i) {
				emit(fccSPIf)
				break
			}
		}
		emit(fccMsKb)
		if m.Clipboard != (ClipboardDevice)(nullClipboard{}) {
			emit(fccVClp)
		}
		if m.hasParavirtualDisk() {
			emit(fccVDsk)
		}
		if m.hasHostFS() {
			emit(fccHsFs)
		}
		if m.hasHostTransfer() {
			emit(fccVHTx)
		}
		emit(fccDbgC, fccRset)
		if m.rtcEnabled {
			emit(fccVRTC)
		}

	case fccMVid:
		if !m.hasMonoStatic() {
			return
		}
		var modes []DisplayMode
		for _, mode := range m.Modes {
			if mode.Depth == 1 {
				modes = append(modes, mode)
			}
		}
		emit(uint32(len(modes)), ioAddr(ioModeSwitch))
		for _, mode := range modes {
			emit(uint32(mode.Width), uint32(mode.Height), uint32(mode.Width/8), m.DisplayStart)
		}

	case fccMDyn:
		if !m.DynamicMode {
			return
		}
		emit(ioAddr(ioModeSwitch), 2048, 2048, 32, 1, 0xFFFFFFFF, m.DisplayStart, 1)

	case fcc16cV:
		if !m.hasDepthStatic(4) {
			return
		}
		emit(ioAddr(ioModeSwitch), PaletteStart)
		for _, mode := range m.Modes {
			if mode.Depth == 4 {
				emit(uint32(mode.Width), uint32(mode.Height), uint32(mode.Width/2), m.DisplayStart)
			}
		}

	case fcc16cD:
		if !m.DynamicMode {
			return
		}
		emit(ioAddr(ioModeSwitch), 2048, 2048, 32, 1, 0xFFFFFFFF, m.DisplayStart, 1, PaletteStart)

	case fcc8bcV:
		if !m.hasDepthStatic(8) {
			return
		}
		emit(ioAddr(ioModeSwitch), PaletteStart)
		for _, mode := range m.Modes {
			if mode.Depth == 8 {
				emit(uint32(mode.Width), uint32(mode.Height), uint32(mode.Width), m.DisplayStart)
			}
		}

	case fcc8bcD:
		if !m.DynamicMode {
			return
		}
		emit(ioAddr(ioModeSwitch), 2048, 2048, 32, 1, 0xFFFFFFFF, m.DisplayStart, 1, PaletteStart)

	case fccTimr:
		emit(ioAddr(ioTimer))

	case fccSwtc:
		emit(1, ioAddr(ioSwitchLED))

	case fccLEDs:
		if m.LED == (LEDDevice)(nullLED{}) {
			return
		}
		emit(8, ioAddr(ioSwitchLED))

	case fccSPrt:
		if m.Serial == (SerialDevice)(nullSerial{}) {
			return
		}
		emit(1, ioAddr(ioSerialStat), ioAddr(ioSerialData))

	case fccSPIf:
		any := false
		for i := range m.SPI {
			if m.spiSlotConfigured(i) {
				any = true
			}
		}
		if !any {
			return
		}
		emit(ioAddr(ioSPISelect), ioAddr(ioSPIData))
		for i := range m.SPI {
			if !m.spiSlotConfigured(i) {
				continue
			}
			if _, ok := m.SPI[i].(*SPIDisk); ok {
				emit(fccSDCr)
			} else {
				emit(fccWNet)
			}
		}

	case fccMsKb:
		emit(ioAddr(ioMouse), ioAddr(ioKeyboard))

	case fccVClp:
		if m.Clipboard == (ClipboardDevice)(nullClipboard{}) {
			return
		}
		emit(ioAddr(ioClipCtrl), ioAddr(ioClipData))

	case fccVDsk:
		if !m.hasParavirtualDisk() {
			return
		}
		emit(ioAddr(ioParavirt))

	case fccHsFs:
		if !m.hasHostFS() {
			return
		}
		emit(ioAddr(ioHostFS))

	case fccVHTx:
		if !m.hasHostTransfer() {
			return
		}
		emit(ioAddr(ioHostFS))

	case fccDbgC:
		emit(ioAddr(ioDebugCon))

	case fccRset:
		emit(ROMStart)

	case fccVRTC:
		if !m.rtcEnabled {
			return
		}
		emit(0, m.InitialClock)
	}
}

// ReadHWEnum handles the MMIO-60 read side: next buffered word, or 0 once
// exhausted.
func (m *Machine) ReadHWEnum() uint32 {
	if m.hwCursor >= m.hwCount {
		return 0
	}
	v := m.hwResp[m.hwCursor]
	m.hwCursor++
	return v
}
