// Package midiexport writes patterns as Standard MIDI Files, so that a
// pattern can be listened to as a drum loop.
package midiexport

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/stepbot/pattern"
)

var ErrEmptyPattern = errors.New("pattern has no playable notes")

const (
	// TicksPerQuarter is the time resolution of the written files.
	TicksPerQuarter = 960
	// TicksPerRow is the length of one 192nd row: a quarter has 48 rows.
	TicksPerRow = TicksPerQuarter * 4 / pattern.RowsPerMeasure

	drumChannel = 9
	// Taps sound for a 32nd note.
	tapRows = pattern.RowsPerMeasure / 32
)

// DrumKeys are the General MIDI percussion keys of the columns: kick, snare,
// closed hihat, open hihat, then toms and cymbals. Columns beyond the list
// wrap around.
var DrumKeys = []uint8{36, 38, 42, 46, 45, 47, 50, 49, 51, 39, 56, 54}

// Options of the written file. Zero values mean 120 BPM, velocity 100 and a
// keymode guessed from the pattern.
type Options struct {
	BPM      float64
	Velocity uint8
	Keymode  int
}

type event struct {
	tick uint32
	on   bool
	key  uint8
}

// Write writes the segments as a MIDI file of two tracks: a tempo track and
// a drum track where every column of the pattern plays its own drum. Mines
// are silent and holds sound for their whole length.
func Write(w io.Writer, segments []pattern.Segment, opts Options) error {
	if opts.BPM <= 0 {
		opts.BPM = 120
	}
	if opts.Velocity == 0 {
		opts.Velocity = 100
	}
	if opts.Keymode <= 0 {
		opts.Keymode = pattern.KeymodeGuess(segments)
	}
	events, end := drumEvents(segments, opts.Keymode)
	if len(events) == 0 {
		return ErrEmptyPattern
	}
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].tick != events[j].tick {
			return events[i].tick < events[j].tick
		}
		return !events[i].on && events[j].on
	})

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(TicksPerQuarter)

	var tempo smf.Track
	tempo.Add(0, smf.MetaMeter(4, 4))
	tempo.Add(0, smf.MetaTempo(opts.BPM))
	tempo.Close(0)
	if err := s.Add(tempo); err != nil {
		return fmt.Errorf("could not add tempo track: %w", err)
	}

	var drums smf.Track
	drums.Add(0, smf.MetaTrackSequenceName("pattern"))
	var prev uint32
	for _, e := range events {
		if e.on {
			drums.Add(e.tick-prev, midi.NoteOn(drumChannel, e.key, opts.Velocity))
		} else {
			drums.Add(e.tick-prev, midi.NoteOff(drumChannel, e.key))
		}
		prev = e.tick
	}
	drums.Close(max(end, prev) - prev)
	if err := s.Add(drums); err != nil {
		return fmt.Errorf("could not add drum track: %w", err)
	}
	if _, err := s.WriteTo(w); err != nil {
		return fmt.Errorf("could not write MIDI file: %w", err)
	}
	return nil
}

// drumEvents returns the note on and off events of the segments, unsorted,
// and the tick where the last row ends.
func drumEvents(segments []pattern.Segment, keymode int) ([]event, uint32) {
	var ret []event
	cursor := 0
	for _, seg := range segments {
		positions := rowPositions{intervals: seg.Snap.Intervals(), cursor: cursor}
		for i, row := range seg.Pattern {
			start := positions.at(i)
			for _, note := range row {
				col, ok := note.Lane.Column(keymode)
				if !ok || note.Type.Kind == pattern.Mine {
					continue
				}
				end := start + tapRows
				if note.Type.Kind == pattern.Hold {
					end = positions.at(i + max(note.Type.Length, 1))
				}
				key := DrumKeys[col%len(DrumKeys)]
				ret = append(ret,
					event{tick: uint32(start * TicksPerRow), on: true, key: key},
					event{tick: uint32(end * TicksPerRow), key: key},
				)
			}
		}
		cursor = positions.at(len(seg.Pattern))
	}
	return ret, uint32(cursor * TicksPerRow)
}

// rowPositions maps row indices of one segment to absolute 192nd rows,
// including rows past the end of the segment that holds reach into.
type rowPositions struct {
	intervals *pattern.Intervals
	cursor    int
	rows      []int
}

func (p *rowPositions) at(i int) int {
	for len(p.rows) <= i {
		p.rows = append(p.rows, p.cursor)
		p.cursor += p.intervals.Next()
	}
	return p.rows[i]
}
