package openrazer

import (
	"context"

	"github.com/polychromatic/polychromatic-core/internal/backend"
)

// wideMatrixDevices have LEDs wired in pairs: every addressable cell
// drives two physical columns. Their matrix is wrapped in wideMatrix.
var wideMatrixDevices = map[string]bool{
	"Razer DeathStalker Chroma": true,
}

// deviceMatrix is the base per-LED adapter passing frames straight to
// the daemon's custom frame buffer.
type deviceMatrix struct {
	handle  DeviceHandle
	adapter *Adapter
	rows    int
	cols    int
}

func (m *deviceMatrix) Rows() int { return m.rows }
func (m *deviceMatrix) Cols() int { return m.cols }

func (m *deviceMatrix) Set(x, y int, r, g, b uint8) error {
	if x < 0 || x >= m.cols || y < 0 || y >= m.rows {
		return backend.ErrOutOfRange
	}
	if err := m.handle.SetMatrix(x, y, r, g, b); err != nil {
		return m.adapter.translate("staging matrix frame", m.handle, err)
	}
	return nil
}

func (m *deviceMatrix) Draw(_ context.Context) error {
	if err := m.handle.DrawMatrix(); err != nil {
		return m.adapter.translate("drawing matrix frame", m.handle, err)
	}
	return nil
}

func (m *deviceMatrix) Clear() {
	for y := 0; y < m.rows; y++ {
		for x := 0; x < m.cols; x++ {
			_ = m.handle.SetMatrix(x, y, 0, 0, 0)
		}
	}
}

// wideMatrix decorates a base matrix for devices whose physical LEDs
// pair up every second column: a write to virtual column x fans out to
// physical columns 2x and 2x+1. The decorator halves the reported
// width; the base matrix stays unaware of the wiring.
type wideMatrix struct {
	backend.Matrix
}

func (m *wideMatrix) Cols() int {
	return m.Matrix.Cols() / 2
}

func (m *wideMatrix) Set(x, y int, r, g, b uint8) error {
	if x < 0 || x >= m.Cols() {
		return backend.ErrOutOfRange
	}
	if err := m.Matrix.Set(2*x, y, r, g, b); err != nil {
		return err
	}
	return m.Matrix.Set(2*x+1, y, r, g, b)
}

// buildMatrix constructs the matrix sub-entity for handles with a
// custom frame buffer, or nil.
func (a *Adapter) buildMatrix(h DeviceHandle) backend.Matrix {
	rows, cols := h.MatrixDimensions()
	if rows <= 0 || cols <= 0 {
		return nil
	}

	var m backend.Matrix = &deviceMatrix{handle: h, adapter: a, rows: rows, cols: cols}
	if wideMatrixDevices[h.Name()] {
		m = &wideMatrix{Matrix: m}
	}
	return m
}
