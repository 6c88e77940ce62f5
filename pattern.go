package pattern

import "fmt"

type (
	// Lane identifies the column a note is placed in. A lane is either a
	// numeric index (0-based) or one of the four directional symbols that
	// note charts traditionally use. The Empty lane is only a placeholder
	// used while parsing; it never ends up in a parsed Pattern.
	Lane struct {
		Kind  LaneKind
		Index int // only meaningful when Kind == LaneIndex
	}

	// LaneKind tells which variant of Lane is in use.
	LaneKind uint8

	// NoteType is the kind of a note: a tap, a mine or a hold. Length is the
	// number of rows a hold spans and is zero for taps and mines.
	NoteType struct {
		Kind   NoteKind
		Length int
	}

	NoteKind uint8

	// Note is a single note of a given type placed in a lane.
	Note struct {
		Lane Lane
		Type NoteType
	}

	// Row is the set of notes sharing one time instant. The order of the
	// notes carries no meaning and duplicates are tolerated; use Equal to
	// compare two rows.
	Row []Note

	// Pattern is a sequence of rows, one per time step. How long a step is
	// depends on the snap the pattern is played at; see Segment and
	// BuildTimeline.
	Pattern []Row
)

const (
	LaneIndex LaneKind = iota
	LaneLeft
	LaneDown
	LaneUp
	LaneRight
	LaneEmpty
)

const (
	Tap NoteKind = iota
	Mine
	Hold
)

var (
	Left      = Lane{Kind: LaneLeft}
	Down      = Lane{Kind: LaneDown}
	Up        = Lane{Kind: LaneUp}
	Right     = Lane{Kind: LaneRight}
	EmptyLane = Lane{Kind: LaneEmpty}
)

// MinKeymode is the keymode KeymodeGuess never goes below.
const MinKeymode = 4

// IndexLane returns the numeric lane n (0-based).
func IndexLane(n int) Lane { return Lane{Kind: LaneIndex, Index: n} }

// TapNote, MineNote and HoldNote are shorthands for constructing notes.
func TapNote(l Lane) Note              { return Note{Lane: l, Type: NoteType{Kind: Tap}} }
func MineNote(l Lane) Note             { return Note{Lane: l, Type: NoteType{Kind: Mine}} }
func HoldNote(l Lane, length int) Note { return Note{Lane: l, Type: NoteType{Kind: Hold, Length: length}} }

// Column resolves the lane into a numeric column for the given keymode. In
// 3k, the layout is left-down-right so Right lands on column 2; in every
// other keymode the directions map to columns 0..3. Numeric lanes map to
// themselves regardless of keymode. The second return value is false for the
// Empty lane.
func (l Lane) Column(keymode int) (int, bool) {
	switch l.Kind {
	case LaneIndex:
		return l.Index, true
	case LaneLeft:
		return 0, true
	case LaneDown:
		return 1, true
	case LaneUp:
		return 2, true
	case LaneRight:
		if keymode == 3 {
			return 2, true
		}
		return 3, true
	}
	return 0, false
}

func (l Lane) String() string {
	switch l.Kind {
	case LaneIndex:
		return fmt.Sprintf("%d", l.Index+1)
	case LaneLeft:
		return "L"
	case LaneDown:
		return "D"
	case LaneUp:
		return "U"
	case LaneRight:
		return "R"
	}
	return "0"
}

func (k NoteKind) String() string {
	switch k {
	case Tap:
		return "tap"
	case Mine:
		return "mine"
	case Hold:
		return "hold"
	}
	return fmt.Sprintf("NoteKind(%d)", uint8(k))
}

// Equal reports whether both rows contain the same set of notes, ignoring
// order and duplicates. Notes are compared by lane, kind and hold length.
func (r Row) Equal(other Row) bool {
	return r.contains(other) && other.contains(r)
}

func (r Row) contains(other Row) bool {
outer:
	for _, n := range other {
		for _, m := range r {
			if n == m {
				continue outer
			}
		}
		return false
	}
	return true
}

// Equal compares two patterns row by row using Row.Equal.
func (p Pattern) Equal(other Pattern) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if !p[i].Equal(other[i]) {
			return false
		}
	}
	return true
}

// NumNotes returns the total number of notes in the pattern.
func (p Pattern) NumNotes() int {
	ret := 0
	for _, row := range p {
		ret += len(row)
	}
	return ret
}

// KeymodeGuess guesses the keymode from the highest column used, never going
// below MinKeymode. Directional lanes count as columns 0..3.
func (p Pattern) KeymodeGuess() int {
	ret := MinKeymode
	for _, row := range p {
		for _, note := range row {
			if col, ok := note.Lane.Column(MinKeymode); ok && col+1 > ret {
				ret = col + 1
			}
		}
	}
	return ret
}
