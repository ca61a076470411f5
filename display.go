// display.go - display-mode manager and framebuffer damage tracking: the
// static mode table, dynamic and seamless mode switches, and the damage
// rectangle the host repaint path consumes.

package main

// depthForDynamicMode decodes the 2-bit mode field used by dynamic mode
// switches: 1=>depth 1, 2=>depth 8, 3=>depth 4.
func depthForDynamicMode(mode uint32) int {
	switch mode {
	case 1:
		return 1
	case 2:
		return 8
	case 3:
		return 4
	default:
		return 1
	}
}

// SwitchMode implements the MMIO-48 write side.
func (m *Machine) SwitchMode(val uint32) {
	for _, mode := range m.Modes {
		if uint32(mode.Index) == val {
			m.CurWidth, m.CurHeight, m.CurDepth = mode.Width, mode.Height, mode.Depth
			m.ModeSpan = uint32(mode.Width / (32 / mode.Depth))
			m.Seamless = false
			m.modeReadback = val
			m.markFullDamage()
			return
		}
	}
	if !m.DynamicMode {
		return
	}

	mode := (val >> 30) & 0x3
	width := (val >> 15) & 0x7FFF
	height := val & 0x7FFF

	if width == 0 && height == 0 {
		w := m.sizeHintW - (m.sizeHintW % 32)
		w = clampInt(w, 64, 2048)
		h := clampInt(m.sizeHintH, 64, 2048)
		m.CurWidth, m.CurHeight, m.CurDepth = w, h, depthForDynamicMode(mode)
		m.ModeSpan = uint32(m.CurWidth / (32 / m.CurDepth))
		m.Seamless = true
		m.modeReadback = val
		m.markFullDamage()
		return
	}

	if width%32 == 0 && width <= 2048 && height <= 2045 && (mode == 1 || mode == 2 || mode == 3) {
		m.CurWidth, m.CurHeight, m.CurDepth = int(width), int(height), depthForDynamicMode(mode)
		m.ModeSpan = uint32(m.CurWidth / (32 / m.CurDepth))
		m.Seamless = false
		m.modeReadback = val
		m.markFullDamage()
	}
	// Invalid requests are silently ignored (no switch occurs).
}

// GetDisplayMode returns the current mode and the seamless flag.
func (m *Machine) GetDisplayMode() (width, height, depth int, seamless bool) {
	return m.CurWidth, m.CurHeight, m.CurDepth, m.Seamless
}

// updateDamage expands the damage rectangle for a store at a framebuffer
// word address.
func (m *Machine) updateDamage(addr uint32) {
	if m.ModeSpan == 0 {
		return
	}
	w := (addr / 4) - (m.DisplayStart / 4)
	row := int(w / m.ModeSpan)
	col := int(w % m.ModeSpan)
	if row >= m.CurHeight {
		return
	}
	if m.damage.isClean() {
		m.damage = Rect{X1: col, Y1: row, X2: col, Y2: row}
		return
	}
	if col < m.damage.X1 {
		m.damage.X1 = col
	}
	if col > m.damage.X2 {
		m.damage.X2 = col
	}
	if row < m.damage.Y1 {
		m.damage.Y1 = row
	}
	if row > m.damage.Y2 {
		m.damage.Y2 = row
	}
}

// markFullDamage marks the entire current viewport dirty (palette writes,
// mode switches).
func (m *Machine) markFullDamage() {
	if m.ModeSpan == 0 || m.CurHeight == 0 {
		m.damage = cleanRect()
		return
	}
	m.damage = Rect{X1: 0, Y1: 0, X2: int(m.ModeSpan) - 1, Y2: m.CurHeight - 1}
}

// GetFramebufferDamage returns the damage rectangle and resets it to the
// clean sentinel.
func (m *Machine) GetFramebufferDamage() Rect {
	r := m.damage
	m.damage = cleanRect()
	return r
}
