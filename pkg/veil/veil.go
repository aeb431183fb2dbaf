// Package veil implements the per-modality distortion functions of the Data
// Veil engine. Every function takes a trusted reading plus a strength scalar
// and an explicit generator, and returns a veiled counterpart of identical
// shape. The functions are pure: no I/O, no globals, no hidden state.
//
// Shared contract:
//   - strength <= 0 returns a copy of the input unchanged
//   - outputs are clamped to the input's value range; NaN/Inf never escape
//   - empty input returns empty output without error
//   - the veiled output has exactly the shape of the trusted input
package veil

import "errors"

// ErrInvalidShape is returned when an input does not have the dimensionality
// the modality expects (e.g. a grid whose backing slice does not match its
// declared rows*cols, or stereo planes of different sizes).
var ErrInvalidShape = errors.New("veil: invalid input shape")

// Grid is a dense row-major 2-D field of scalar samples (depth, thermal,
// radar range-Doppler, stereo luminance).
type Grid struct {
	Rows int
	Cols int
	Data []float64
}

// NewGrid allocates a zeroed rows x cols grid.
func NewGrid(rows, cols int) Grid {
	return Grid{Rows: rows, Cols: cols, Data: make([]float64, rows*cols)}
}

// At returns the sample at row r, column c.
func (g Grid) At(r, c int) float64 { return g.Data[r*g.Cols+c] }

// Set stores v at row r, column c.
func (g Grid) Set(r, c int, v float64) { g.Data[r*g.Cols+c] = v }

// Clone returns a deep copy.
func (g Grid) Clone() Grid {
	out := Grid{Rows: g.Rows, Cols: g.Cols, Data: make([]float64, len(g.Data))}
	copy(out.Data, g.Data)
	return out
}

// Empty reports whether the grid holds no samples.
func (g Grid) Empty() bool { return len(g.Data) == 0 }

func (g Grid) validate() error {
	if g.Rows < 0 || g.Cols < 0 || len(g.Data) != g.Rows*g.Cols {
		return ErrInvalidShape
	}
	return nil
}

// Point3 is a single 3-D lidar return.
type Point3 struct {
	X, Y, Z float64
}

// IMUSeries is a time-aligned bundle of gyro and accelerometer channels.
type IMUSeries struct {
	T  []float64 // seconds
	Gx []float64 // rad/s
	Gy []float64
	Gz []float64
	Ax []float64 // m/s^2
	Ay []float64
	Az []float64
}

// Clone returns a deep copy of every channel.
func (s IMUSeries) Clone() IMUSeries {
	return IMUSeries{
		T:  cloneSlice(s.T),
		Gx: cloneSlice(s.Gx), Gy: cloneSlice(s.Gy), Gz: cloneSlice(s.Gz),
		Ax: cloneSlice(s.Ax), Ay: cloneSlice(s.Ay), Az: cloneSlice(s.Az),
	}
}

func (s IMUSeries) validate() error {
	n := len(s.T)
	for _, ch := range [][]float64{s.Gx, s.Gy, s.Gz, s.Ax, s.Ay, s.Az} {
		if len(ch) != n {
			return ErrInvalidShape
		}
	}
	return nil
}

// Series is a single time-indexed scalar channel (RF power, ultrasonic range,
// barometric pressure).
type Series struct {
	T []float64
	V []float64
}

// Clone returns a deep copy.
func (s Series) Clone() Series {
	return Series{T: cloneSlice(s.T), V: cloneSlice(s.V)}
}

func (s Series) validate() error {
	if len(s.T) != len(s.V) {
		return ErrInvalidShape
	}
	return nil
}

// MagSeries is a time-aligned 3-axis magnetometer series.
type MagSeries struct {
	T  []float64
	Mx []float64
	My []float64
	Mz []float64
}

// Clone returns a deep copy of every axis.
func (s MagSeries) Clone() MagSeries {
	return MagSeries{
		T:  cloneSlice(s.T),
		Mx: cloneSlice(s.Mx), My: cloneSlice(s.My), Mz: cloneSlice(s.Mz),
	}
}

func (s MagSeries) validate() error {
	n := len(s.T)
	if len(s.Mx) != n || len(s.My) != n || len(s.Mz) != n {
		return ErrInvalidShape
	}
	return nil
}

func cloneSlice(v []float64) []float64 {
	if v == nil {
		return nil
	}
	out := make([]float64, len(v))
	copy(out, v)
	return out
}
