package pattern

import "fmt"

// RowsPerMeasure is the internal row resolution: every position in a
// Timeline is measured in 192nd notes.
const RowsPerMeasure = 192

// Snap is one of the nine snap classes a note can be colored by.
type Snap uint8

const (
	Snap4th Snap = iota
	Snap8th
	Snap12th
	Snap16th
	Snap24th
	Snap32nd
	Snap48th
	Snap64th
	Snap192nd
)

// Snaps lists every snap class from coarsest to finest.
var Snaps = [...]Snap{Snap4th, Snap8th, Snap12th, Snap16th, Snap24th, Snap32nd, Snap48th, Snap64th, Snap192nd}

var snapNumbers = [...]int{4, 8, 12, 16, 24, 32, 48, 64, 192}

// Number returns the snap denominator, e.g. 16 for 16ths.
func (s Snap) Number() int { return snapNumbers[s] }

// RowInterval returns the number of 192nd rows between two consecutive notes
// of this snap.
func (s Snap) RowInterval() int { return RowsPerMeasure / snapNumbers[s] }

// TextureIndex returns the index of the noteskin texture used for this snap.
// 64ths and 192nds share the last texture.
func (s Snap) TextureIndex() int {
	if s == Snap192nd {
		return int(Snap64th)
	}
	return int(s)
}

func (s Snap) String() string {
	switch s {
	case Snap32nd:
		return "32nd"
	case Snap192nd:
		return "192nd"
	}
	return fmt.Sprintf("%dth", s.Number())
}

// SnapFromNumber returns the snap class with the given denominator.
func SnapFromNumber(n int) (Snap, bool) {
	for _, s := range Snaps {
		if s.Number() == n {
			return s, true
		}
	}
	return 0, false
}

// SnapFromRow classifies an absolute 192nd row into the coarsest snap class
// it lies on. Rows that are on no finer grid than 192nds are Snap192nd.
func SnapFromRow(row int) Snap {
	row %= RowsPerMeasure
	if row < 0 {
		row += RowsPerMeasure
	}
	for _, s := range Snaps {
		if row%s.RowInterval() == 0 {
			return s
		}
	}
	return Snap192nd
}

// FractionalSnap is a snap denominator that does not need to divide 192,
// e.g. 7 for septuplets. The zero value is invalid; use NewFractionalSnap.
type FractionalSnap struct {
	n int
}

// NewFractionalSnap returns a FractionalSnap for the given denominator, or
// false if the number is not positive.
func NewFractionalSnap(n int) (FractionalSnap, bool) {
	if n <= 0 {
		return FractionalSnap{}, false
	}
	return FractionalSnap{n: n}, true
}

// MustFractionalSnap is like NewFractionalSnap but panics on invalid input.
// Intended for constants.
func MustFractionalSnap(n int) FractionalSnap {
	s, ok := NewFractionalSnap(n)
	if !ok {
		panic(fmt.Sprintf("pattern: invalid snap number %d", n))
	}
	return s
}

// Number returns the snap denominator.
func (s FractionalSnap) Number() int { return s.n }

// Intervals returns a new iterator over the row advances of this snap. Each
// call starts from scratch.
func (s FractionalSnap) Intervals() *Intervals {
	if s.n <= 0 {
		panic("pattern: Intervals called on zero FractionalSnap")
	}
	return &Intervals{n: s.n}
}

// Intervals is an infinite sequence of integer 192nd row advances whose
// average is exactly 192/n. The fractional part of every step is carried over
// to the next, so the sum of k steps is always floor(192*k/n).
type Intervals struct {
	n     int
	carry int // numerator of the carried fraction, in units of 1/n rows
}

// Next returns the next row advance.
func (it *Intervals) Next() int {
	it.carry += RowsPerMeasure
	step := it.carry / it.n
	it.carry -= step * it.n
	return step
}
