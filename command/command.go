// Package command turns the text of a chat command into a render recipe.
//
// The text is a list of words. Words that are modifiers change how the
// pattern is drawn; every other word is pattern text. Modifiers are
// recognized case-insensitively:
//
//	16ths, 12th, 192nd         snap of the following pattern text
//	2x, 1.5x                   zoom
//	up, down, reverse, ...     scroll direction
//	6k                         keymode
//	<noteskin name>            noteskin
//
// Modifiers are matched in that order, so a noteskin can't be named like
// another modifier. Nor can it be named with pattern notation only, like
// "ldur", or the pattern would be taken for the noteskin; see Reserved.
//
// A snap modifier starts a new segment, so "16ths 1234 12ths 1234" draws a
// 16th stream followed by a 12th one. A bare number is pattern text, since
// "24" is a perfectly fine pattern; snaps need an ordinal suffix.
package command

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/width"

	"github.com/stepbot/pattern"
	"github.com/stepbot/pattern/noteskin"
	"github.com/stepbot/pattern/render"
)

var (
	ErrInvalidSnap          = errors.New("invalid snap")
	ErrInvalidZoom          = errors.New("invalid zoom")
	ErrInvalidKeymode       = errors.New("invalid keymode")
	ErrUnknownNoteskin      = errors.New("unknown noteskin")
	ErrNoNoteskinForKeymode = errors.New("no noteskin for keymode")
)

// DefaultSnap is the snap of pattern text before any snap modifier.
const DefaultSnap = 16

// MaxKeymode is the largest keymode a command may ask for.
const MaxKeymode = 32

type (
	// Request is a parsed command. Keymode is 0 when the command didn't name
	// one, and Noteskin is empty when it didn't name a skin.
	Request struct {
		Segments []Segment
		Zoom     float64
		Scroll   render.ScrollDirection
		Keymode  int
		Noteskin string
	}

	// Segment is unparsed pattern text with its snap.
	Segment struct {
		Snap int
		Text string
	}
)

var (
	snapRe    = regexp.MustCompile(`^(\d+)(?:st|nd|rd|th)s?$`)
	zoomRe    = regexp.MustCompile(`^(\d+(?:\.\d+)?|\.\d+)x$`)
	keymodeRe = regexp.MustCompile(`^(\d+)k$`)
)

var scrollWords = map[string]render.ScrollDirection{
	"up":         render.Upscroll,
	"upscroll":   render.Upscroll,
	"down":       render.Downscroll,
	"downscroll": render.Downscroll,
	"reverse":    render.Downscroll,
}

// notation holds the characters that pattern text is written with.
const notation = "0123456789ldurmx[]() "

// Reserved reports whether word is read as a modifier other than a noteskin,
// or is written with pattern notation only. Such words don't make usable
// noteskin names.
func Reserved(word string) bool {
	lower := strings.ToLower(width.Narrow.String(word))
	if snapRe.MatchString(lower) || zoomRe.MatchString(lower) || keymodeRe.MatchString(lower) {
		return true
	}
	if _, ok := scrollWords[lower]; ok {
		return true
	}
	return strings.Trim(lower, notation) == ""
}

// Parse splits the command text into modifiers and pattern segments.
// noteskins are the names that are recognized as noteskin modifiers.
// Full-width characters, as typed by some input methods, are folded to
// their ASCII counterparts first.
func Parse(text string, noteskins []string) (*Request, error) {
	ret := &Request{
		Segments: []Segment{{Snap: DefaultSnap}},
		Zoom:     1,
	}
	skins := make(map[string]bool, len(noteskins))
	for _, name := range noteskins {
		skins[strings.ToLower(name)] = true
	}
	for _, word := range strings.Fields(width.Narrow.String(text)) {
		lower := strings.ToLower(word)
		if m := snapRe.FindStringSubmatch(lower); m != nil {
			n, err := strconv.Atoi(m[1])
			if err != nil || n <= 0 {
				return nil, fmt.Errorf("%w: %q", ErrInvalidSnap, word)
			}
			ret.startSegment(n)
			continue
		}
		if m := zoomRe.FindStringSubmatch(lower); m != nil {
			zoom, err := strconv.ParseFloat(m[1], 64)
			if err != nil || zoom <= 0 {
				return nil, fmt.Errorf("%w: %q", ErrInvalidZoom, word)
			}
			ret.Zoom = zoom
			continue
		}
		if m := keymodeRe.FindStringSubmatch(lower); m != nil {
			k, err := strconv.Atoi(m[1])
			if err != nil || k < 1 || k > MaxKeymode {
				return nil, fmt.Errorf("%w: %q", ErrInvalidKeymode, word)
			}
			ret.Keymode = k
			continue
		}
		if dir, ok := scrollWords[lower]; ok {
			ret.Scroll = dir
			continue
		}
		if skins[lower] {
			ret.Noteskin = lower
			continue
		}
		last := &ret.Segments[len(ret.Segments)-1]
		if last.Text != "" {
			last.Text += " "
		}
		last.Text += word
	}
	return ret, nil
}

// startSegment begins a new segment with the given snap. A snap given before
// any pattern text replaces the snap of the empty segment instead.
func (r *Request) startSegment(snap int) {
	if last := &r.Segments[len(r.Segments)-1]; last.Text == "" {
		last.Snap = snap
		return
	}
	r.Segments = append(r.Segments, Segment{Snap: snap})
}

// Patterns parses the text of every segment. All segments together may have
// at most maxRows rows; zero means render.DefaultLimits.MaxRows.
func (r *Request) Patterns(maxRows int) ([]pattern.Segment, error) {
	if maxRows == 0 {
		maxRows = render.DefaultLimits.MaxRows
	}
	ret := make([]pattern.Segment, 0, len(r.Segments))
	rows := 0
	for i, seg := range r.Segments {
		snap, ok := pattern.NewFractionalSnap(seg.Snap)
		if !ok {
			return nil, fmt.Errorf("%w: %d", ErrInvalidSnap, seg.Snap)
		}
		p, err := pattern.ParseLimit(seg.Text, maxRows-rows)
		if errors.Is(err, pattern.ErrPatternTooLong) {
			err = fmt.Errorf("%w: more than %d rows", pattern.ErrPatternTooLong, maxRows)
		}
		if err != nil {
			if len(r.Segments) > 1 {
				return nil, fmt.Errorf("segment %d: %w", i+1, err)
			}
			return nil, err
		}
		rows += len(p)
		ret = append(ret, pattern.Segment{Pattern: p, Snap: snap})
	}
	return ret, nil
}

// Recipe builds a render recipe for the request. The keymode is guessed from
// the pattern when the command didn't give one, and the noteskin defaults to
// the first one of the registry that can draw the keymode.
func (r *Request) Recipe(skins *noteskin.Registry, limits render.Limits) (render.Recipe, error) {
	segments, err := r.Patterns(limits.MaxRows)
	if err != nil {
		return render.Recipe{}, err
	}
	keymode := r.Keymode
	if keymode == 0 {
		keymode = pattern.KeymodeGuess(segments)
	}
	var skin *noteskin.Noteskin
	if r.Noteskin != "" {
		var ok bool
		if skin, ok = skins.Get(r.Noteskin); !ok {
			return render.Recipe{}, fmt.Errorf("%w: %q", ErrUnknownNoteskin, r.Noteskin)
		}
	} else {
		var ok bool
		if _, skin, ok = skins.DefaultFor(keymode); !ok {
			return render.Recipe{}, fmt.Errorf("%w: %dk", ErrNoNoteskinForKeymode, keymode)
		}
	}
	return render.Recipe{
		Noteskin: skin,
		Scroll:   r.Scroll,
		Keymode:  keymode,
		Zoom:     r.Zoom,
		Segments: segments,
		Limits:   limits,
	}, nil
}
