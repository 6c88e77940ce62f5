package pattern_test

import (
	"reflect"
	"testing"

	"github.com/stepbot/pattern"
)

func TestLaneColumn(t *testing.T) {
	cases := []struct {
		lane     pattern.Lane
		keymode  int
		expected int
	}{
		{pattern.Left, 4, 0},
		{pattern.Down, 4, 1},
		{pattern.Up, 4, 2},
		{pattern.Right, 4, 3},
		{pattern.Right, 3, 2},
		{pattern.Right, 6, 3},
		{pattern.IndexLane(2), 3, 2},
		{pattern.IndexLane(7), 4, 7},
	}
	for _, c := range cases {
		got, ok := c.lane.Column(c.keymode)
		if !ok || got != c.expected {
			t.Fatalf("%v in %vk got column %v (%v), expected %v", c.lane, c.keymode, got, ok, c.expected)
		}
	}
	if _, ok := pattern.EmptyLane.Column(4); ok {
		t.Fatal("the empty lane should have no column")
	}
}

func TestKeymodeGuess(t *testing.T) {
	cases := map[string]int{
		"":           4,
		"1":          4,
		"[13]4[32]1": 4,
		"12345":      5,
		"[16]":       6,
		"(12)":       12,
		"ldur":       4,
		"m7":         7,
		"[]x10":      4,
	}
	for input, expected := range cases {
		if got := pattern.MustParse(input).KeymodeGuess(); got != expected {
			t.Fatalf("KeymodeGuess of %q got %v expected %v", input, got, expected)
		}
	}
}

func TestBuildTimeline(t *testing.T) {
	segments := []pattern.Segment{
		{Pattern: pattern.MustParse("1234"), Snap: pattern.MustFractionalSnap(16)},
		{Pattern: pattern.MustParse("[12]03"), Snap: pattern.MustFractionalSnap(12)},
	}
	timeline := pattern.BuildTimeline(segments)
	expectedRows := []int{0, 12, 24, 36, 48, 48, 80}
	if len(timeline.Notes) != len(expectedRows) {
		t.Fatalf("got %v notes, expected %v", len(timeline.Notes), len(expectedRows))
	}
	for i, n := range timeline.Notes {
		if n.Row != expectedRows[i] {
			t.Fatalf("note %v got row %v expected %v", i, n.Row, expectedRows[i])
		}
	}
	if got := timeline.HighestRow(); got != 80 {
		t.Fatalf("HighestRow got %v expected 80", got)
	}
	if got := pattern.KeymodeGuess(segments); got != 4 {
		t.Fatalf("KeymodeGuess got %v expected 4", got)
	}
	if got := pattern.BuildTimeline(nil).HighestRow(); got != 0 {
		t.Fatalf("empty timeline HighestRow got %v", got)
	}
}

func TestHighestRowCountsEmptyRows(t *testing.T) {
	cases := map[string]int{
		"1":      0,
		"1000":   36,
		"1[]x10": 120,
		"0001":   36,
		"1x4":    36,
		"[]x2":   12,
	}
	for input, expected := range cases {
		segments := []pattern.Segment{{Pattern: pattern.MustParse(input), Snap: pattern.MustFractionalSnap(16)}}
		if got := pattern.BuildTimeline(segments).HighestRow(); got != expected {
			t.Fatalf("HighestRow of %q got %v expected %v", input, got, expected)
		}
	}
	segments := []pattern.Segment{
		{Pattern: pattern.MustParse("1"), Snap: pattern.MustFractionalSnap(16)},
		{Pattern: pattern.MustParse("[]x3"), Snap: pattern.MustFractionalSnap(12)},
	}
	if got := pattern.NumRows(segments); got != 4 {
		t.Fatalf("NumRows got %v expected 4", got)
	}
	if got := pattern.BuildTimeline(segments).HighestRow(); got != 44 {
		t.Fatalf("HighestRow of mixed segments got %v expected 44", got)
	}
}

func TestNoteTypeIsUntagged(t *testing.T) {
	typ := reflect.TypeOf(pattern.NoteType{})
	for i := 0; i < typ.NumField(); i++ {
		if tag := typ.Field(i).Tag; tag != "" {
			t.Fatalf("field %v has tag %q", typ.Field(i).Name, tag)
		}
	}
}
