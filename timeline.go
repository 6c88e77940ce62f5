package pattern

type (
	// Segment is a pattern played at a given snap. Several segments with
	// different snaps can be concatenated into one Timeline.
	Segment struct {
		Pattern Pattern
		Snap    FractionalSnap
	}

	// TimedNote is a note placed at an absolute row, in 192nd notes from the
	// start of the timeline.
	TimedNote struct {
		Row  int
		Note Note
	}

	// Timeline is the flattened list of notes of one or more segments, in the
	// order they appear. LastRow is the row of the last pattern row, empty
	// rows included, so "1[]x10" reaches further than "1".
	Timeline struct {
		Notes   []TimedNote
		LastRow int
	}
)

// BuildTimeline concatenates the segments onto one absolute row axis. Every
// row of a segment advances the cursor by the next interval of the segment's
// snap, so mixing snaps places every note exactly without drift. Empty rows
// add no notes but still count towards LastRow.
func BuildTimeline(segments []Segment) Timeline {
	ret := Timeline{Notes: make([]TimedNote, 0, NumNotes(segments))}
	cursor := 0
	for _, seg := range segments {
		intervals := seg.Snap.Intervals()
		for _, row := range seg.Pattern {
			for _, note := range row {
				ret.Notes = append(ret.Notes, TimedNote{Row: cursor, Note: note})
			}
			ret.LastRow = cursor
			cursor += intervals.Next()
		}
	}
	return ret
}

// NumRows returns the number of rows in all segments, empty rows included.
func NumRows(segments []Segment) int {
	ret := 0
	for _, seg := range segments {
		ret += len(seg.Pattern)
	}
	return ret
}

// NumNotes returns the number of notes in all segments.
func NumNotes(segments []Segment) int {
	ret := 0
	for _, seg := range segments {
		ret += seg.Pattern.NumNotes()
	}
	return ret
}

// HighestRow returns the largest row number in the timeline, counting empty
// rows, or 0 if the timeline is empty.
func (t Timeline) HighestRow() int {
	ret := t.LastRow
	for _, n := range t.Notes {
		ret = max(ret, n.Row)
	}
	return ret
}

// KeymodeGuess is like Pattern.KeymodeGuess but over every note of the
// segments.
func KeymodeGuess(segments []Segment) int {
	ret := MinKeymode
	for _, seg := range segments {
		ret = max(ret, seg.Pattern.KeymodeGuess())
	}
	return ret
}
