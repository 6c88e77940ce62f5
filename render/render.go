// Package render lays out and draws patterns with a noteskin.
package render

import (
	"errors"
	"fmt"
	"image"
	"math"

	"golang.org/x/image/draw"

	"github.com/stepbot/pattern"
	"github.com/stepbot/pattern/noteskin"
)

var (
	ErrEmptyPattern     = errors.New("pattern has no notes")
	ErrTooManySprites   = errors.New("too many sprites")
	ErrImageTooLarge    = errors.New("image too large")
	ErrHoldsUnsupported = errors.New("holds are not supported")
	ErrInvalidZoom      = errors.New("invalid zoom")
	ErrNoNoteskin       = errors.New("no noteskin")
	ErrInvalidSnap      = errors.New("invalid snap")
)

type (
	// ScrollDirection tells whether notes travel up towards receptors at the
	// top, or down towards receptors at the bottom.
	ScrollDirection int

	// Limits caps the resources a single render may use. Zero fields mean
	// the corresponding DefaultLimits value, never "unlimited".
	Limits struct {
		MaxWidth   int `yaml:"max_width,omitempty" json:"max_width,omitempty" validate:"gte=0"`
		MaxHeight  int `yaml:"max_height,omitempty" json:"max_height,omitempty" validate:"gte=0"`
		MaxSprites int `yaml:"max_sprites,omitempty" json:"max_sprites,omitempty" validate:"gte=0"`
		MaxRows    int `yaml:"max_rows,omitempty" json:"max_rows,omitempty" validate:"gte=0"`
	}

	// Recipe is everything needed to draw one image. Zoom scales the
	// vertical distance between rows; at zoom 1, consecutive rows of the
	// finest snap used are one sprite apart.
	Recipe struct {
		Noteskin *noteskin.Noteskin
		Scroll   ScrollDirection
		Keymode  int
		Zoom     float64
		Segments []pattern.Segment
		Limits   Limits
	}

	// Placement is one sprite placed on the canvas. Column is the lane and
	// Row the vertical position in 192nd rows, after mirroring for
	// downscroll. Point is the top left pixel of the sprite.
	Placement struct {
		Column int
		Row    int
		Point  image.Point
		Sprite *image.RGBA
	}

	// Layout is the result of placing every receptor and note of a Recipe,
	// before anything is drawn. Receptors come first, so notes are drawn on
	// top of them.
	Layout struct {
		Width, Height int
		Placements    []Placement
	}
)

const (
	Upscroll ScrollDirection = iota
	Downscroll
)

var DefaultLimits = Limits{MaxWidth: 5000, MaxHeight: 5000, MaxSprites: 1000, MaxRows: pattern.DefaultMaxRows}

func (s ScrollDirection) String() string {
	if s == Downscroll {
		return "downscroll"
	}
	return "upscroll"
}

// WithDefaults returns l with its zero fields set from DefaultLimits.
func (l Limits) WithDefaults() Limits {
	if l.MaxWidth == 0 {
		l.MaxWidth = DefaultLimits.MaxWidth
	}
	if l.MaxHeight == 0 {
		l.MaxHeight = DefaultLimits.MaxHeight
	}
	if l.MaxSprites == 0 {
		l.MaxSprites = DefaultLimits.MaxSprites
	}
	if l.MaxRows == 0 {
		l.MaxRows = DefaultLimits.MaxRows
	}
	return l
}

// Draw renders the recipe into a new image.
func Draw(r Recipe) (*image.RGBA, error) {
	l, err := NewLayout(r)
	if err != nil {
		return nil, err
	}
	canvas := image.NewRGBA(image.Rect(0, 0, l.Width, l.Height))
	for _, p := range l.Placements {
		src := p.Sprite.Bounds()
		rect := image.Rectangle{Min: p.Point, Max: p.Point.Add(src.Size())}
		if !rect.In(canvas.Bounds()) {
			return nil, fmt.Errorf("internal error: sprite at %v is outside of the canvas %v", rect, canvas.Bounds())
		}
		draw.Draw(canvas, rect, p.Sprite, src.Min, draw.Over)
	}
	return canvas, nil
}

// NewLayout places the receptors and notes of the recipe and computes the
// canvas size. Resource limits are checked here, before the caller allocates
// anything large: the row and sprite counts before the notes are even looked
// at, the canvas size before it is returned. The canvas reaches down to the
// last row of the pattern, even when that row is empty.
func NewLayout(r Recipe) (*Layout, error) {
	if r.Noteskin == nil {
		return nil, ErrNoNoteskin
	}
	if !(r.Zoom > 0) || math.IsInf(r.Zoom, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidZoom, r.Zoom)
	}
	if r.Keymode < 1 {
		return nil, fmt.Errorf("%w: %dk", noteskin.ErrUnsupportedKeymode, r.Keymode)
	}
	for i, seg := range r.Segments {
		if seg.Snap.Number() <= 0 {
			return nil, fmt.Errorf("%w in segment %d", ErrInvalidSnap, i+1)
		}
	}
	limits := r.Limits.WithDefaults()
	if rows := pattern.NumRows(r.Segments); rows > limits.MaxRows {
		return nil, fmt.Errorf("%w: %d rows, at most %d allowed", pattern.ErrPatternTooLong, rows, limits.MaxRows)
	}
	numNotes := pattern.NumNotes(r.Segments)
	if numNotes == 0 {
		return nil, ErrEmptyPattern
	}
	if numSprites := numNotes + r.Keymode; numSprites > limits.MaxSprites {
		return nil, fmt.Errorf("%w: %d sprites, at most %d allowed", ErrTooManySprites, numSprites, limits.MaxSprites)
	}
	timeline := pattern.BuildTimeline(r.Segments)
	highest := timeline.HighestRow()
	yPos := func(row int) int {
		if r.Scroll == Downscroll {
			return highest - row
		}
		return row
	}
	skin := r.Noteskin
	placements := make([]Placement, 0, numNotes+r.Keymode)
	for lane := 0; lane < r.Keymode; lane++ {
		sprite, err := skin.Receptor(lane, r.Keymode)
		if err != nil {
			return nil, err
		}
		placements = append(placements, Placement{Column: lane, Row: yPos(0), Sprite: sprite})
	}
	for _, n := range timeline.Notes {
		col, ok := n.Note.Lane.Column(r.Keymode)
		if !ok {
			continue
		}
		var sprite *image.RGBA
		var err error
		switch n.Note.Type.Kind {
		case pattern.Tap:
			sprite, err = skin.Note(col, r.Keymode, pattern.SnapFromRow(n.Row))
		case pattern.Mine:
			if col >= r.Keymode {
				err = fmt.Errorf("%w: lane %d in %dk", noteskin.ErrInvalidLane, col+1, r.Keymode)
			}
			sprite = skin.Mine()
		case pattern.Hold:
			err = ErrHoldsUnsupported
		}
		if err != nil {
			return nil, err
		}
		placements = append(placements, Placement{Column: col, Row: yPos(n.Row), Sprite: sprite})
	}
	res := skin.SpriteResolution()
	finest := finestSnap(r.Segments)
	// Rows of the finest snap are zoom sprites apart. Divide last so that
	// whole zooms stay exact.
	pixels := func(row int) float64 {
		return float64(row) * float64(res) * float64(finest) * r.Zoom / pattern.RowsPerMeasure
	}
	// Trailing empty rows are part of the pattern and get room on the canvas.
	maxColumn, maxRow := 0, highest
	for _, p := range placements {
		maxColumn = max(maxColumn, p.Column)
		maxRow = max(maxRow, p.Row)
	}
	width := res * (maxColumn + 1)
	height := pixels(maxRow) + float64(res)
	if width > limits.MaxWidth || height > float64(limits.MaxHeight) {
		return nil, fmt.Errorf("%w: %dx%.0f, at most %dx%d allowed", ErrImageTooLarge, width, height, limits.MaxWidth, limits.MaxHeight)
	}
	for i := range placements {
		placements[i].Point = image.Pt(placements[i].Column*res, int(pixels(placements[i].Row)))
	}
	return &Layout{Width: width, Height: int(pixels(maxRow)) + res, Placements: placements}, nil
}

func finestSnap(segments []pattern.Segment) int {
	ret := 1
	for _, seg := range segments {
		if len(seg.Pattern) > 0 {
			ret = max(ret, seg.Snap.Number())
		}
	}
	return ret
}
