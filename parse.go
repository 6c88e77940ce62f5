package pattern

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

var (
	ErrUnclosedBracket     = errors.New("unclosed bracket")
	ErrUnclosedParenthesis = errors.New("unclosed parenthesis")
	ErrPatternTooLong      = errors.New("pattern too long")
)

// MaxHoldLength caps the length given in a hold suffix. Without it "[]x"
// followed by a huge number would reserve an arbitrary amount of empty rows.
const MaxHoldLength = 1 << 16

// DefaultMaxRows is the number of rows Parse accepts, empty rows included.
const DefaultMaxRows = 1 << 17

// Parse parses a pattern string into a Pattern.
//
// A row is either a chord in brackets, e.g. "[13]", or a single note. A note
// is an optional mine marker "m", a lane and an optional hold suffix "x4".
// Lanes are written as digits 1-9, as "(12)" for lanes 10 and above, or as
// one of the letters L, D, U, R. The digit 0 is an empty slot: it adds a row
// without a note. A hold suffix after a chord turns every note of the chord
// into a hold; after an empty chord, "[]x4", it adds four empty rows.
//
// The parser is lenient: characters that don't form a note are skipped. Only
// a bracket or a parenthesis without a closing counterpart is an error.
//
// Patterns longer than DefaultMaxRows rows fail with ErrPatternTooLong.
func Parse(text string) (Pattern, error) {
	return ParseLimit(text, DefaultMaxRows)
}

// ParseLimit is like Parse but accepts at most maxRows rows. The limit is
// checked before rows are added, so a pattern like "[]x65536" repeated many
// times fails without allocating its rows.
func ParseLimit(text string, maxRows int) (Pattern, error) {
	ret := Pattern{}
	tooLong := func(n int) error {
		if len(ret)+n > maxRows {
			return fmt.Errorf("%w: more than %d rows", ErrPatternTooLong, max(maxRows, 0))
		}
		return nil
	}
	s := text
	for len(s) > 0 {
		offset := len(text) - len(s)
		if s[0] == '[' {
			content, rest, ok := popDelimited(s, '[', ']')
			if !ok {
				return nil, fmt.Errorf("%w at position %d", ErrUnclosedBracket, offset)
			}
			row, err := parseChord(content)
			if err != nil {
				return nil, fmt.Errorf("%w in chord at position %d", err, offset)
			}
			length, rest := popHoldSuffix(rest)
			s = rest
			if length > 0 && len(row) == 0 {
				if err := tooLong(length); err != nil {
					return nil, err
				}
				ret = appendEmptyRows(ret, length)
				continue
			}
			if err := tooLong(1); err != nil {
				return nil, err
			}
			if length > 0 {
				for i := range row {
					row[i].Type = NoteType{Kind: Hold, Length: length}
				}
			}
			ret = append(ret, row)
			continue
		}
		note, rest, ok, err := popNote(s)
		if err != nil {
			return nil, fmt.Errorf("%w at position %d", err, offset)
		}
		if !ok {
			s = s[1:]
			continue
		}
		s = rest
		if note.Lane.Kind == LaneEmpty {
			if err := tooLong(max(note.Type.Length, 1)); err != nil {
				return nil, err
			}
			ret = appendEmptyRows(ret, max(note.Type.Length, 1))
			continue
		}
		if err := tooLong(max(note.Type.Length, 1)); err != nil {
			return nil, err
		}
		ret = append(ret, Row{note})
		if note.Type.Kind == Hold {
			ret = appendEmptyRows(ret, note.Type.Length-1)
		}
	}
	return ret, nil
}

// MustParse is like Parse but panics if the pattern cannot be parsed.
func MustParse(text string) Pattern {
	p, err := Parse(text)
	if err != nil {
		panic(fmt.Sprintf("pattern: MustParse(%q): %v", text, err))
	}
	return p
}

func appendEmptyRows(p Pattern, n int) Pattern {
	p = slices.Grow(p, n)
	for i := 0; i < n; i++ {
		p = append(p, Row{})
	}
	return p
}

func parseChord(s string) (Row, error) {
	row := Row{}
	for len(s) > 0 {
		note, rest, ok, err := popNote(s)
		if err != nil {
			return nil, err
		}
		if !ok {
			s = s[1:]
			continue
		}
		s = rest
		if note.Lane.Kind != LaneEmpty {
			row = append(row, note)
		}
	}
	return row, nil
}

var letterLanes = map[byte]Lane{'l': Left, 'd': Down, 'u': Up, 'r': Right}

// popNote parses one note from the start of s. ok is false if s does not
// start with a note, in which case the caller should skip a character.
func popNote(s string) (note Note, rest string, ok bool, err error) {
	rest = s
	if rest[0] == 'm' || rest[0] == 'M' {
		note.Type.Kind = Mine
		rest = rest[1:]
	}
	if len(rest) == 0 {
		return Note{}, s, false, nil
	}
	switch c := rest[0]; {
	case c == '0':
		note.Lane = EmptyLane
		rest = rest[1:]
	case c >= '1' && c <= '9':
		note.Lane = IndexLane(int(c - '1'))
		rest = rest[1:]
	case c == '(':
		content, after, closed := popDelimited(rest, '(', ')')
		if !closed {
			return Note{}, s, false, ErrUnclosedParenthesis
		}
		note.Lane = EmptyLane
		if n, err := strconv.Atoi(strings.TrimSpace(content)); err == nil && n >= 1 {
			note.Lane = IndexLane(n - 1)
		}
		rest = after
	default:
		lane, known := letterLanes[toLower(c)]
		if !known {
			return Note{}, s, false, nil
		}
		note.Lane = lane
		rest = rest[1:]
	}
	length, rest := popHoldSuffix(rest)
	if length > 0 {
		note.Type = NoteType{Kind: Hold, Length: length}
	}
	return note, rest, true, nil
}

// popHoldSuffix consumes "x<number>" from the start of s. A missing suffix or
// a zero length gives length 0.
func popHoldSuffix(s string) (length int, rest string) {
	if len(s) < 2 || toLower(s[0]) != 'x' || !isDigit(s[1]) {
		return 0, s
	}
	end := 1
	for end < len(s) && isDigit(s[end]) {
		end++
	}
	for _, c := range []byte(s[1:end]) {
		length = min(length*10+int(c-'0'), MaxHoldLength)
	}
	return length, s[end:]
}

// popDelimited splits s, which must start with the open delimiter, into the
// delimited content and the rest after the closing delimiter. The format has
// no nesting: if another opening delimiter comes before the first closing
// one, the content ends there and the rest starts at that second opener. ok
// is false if there is no closing delimiter at all.
func popDelimited(s string, open, close byte) (content, rest string, ok bool) {
	end := strings.IndexByte(s[1:], close)
	if end == -1 {
		return "", s, false
	}
	end++
	if next := strings.IndexByte(s[1:end], open); next != -1 {
		next++
		return s[1:next], s[next:], true
	}
	return s[1:end], s[end+1:], true
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func toLower(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + 'a' - 'A'
	}
	return c
}
