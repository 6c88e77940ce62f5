package reply_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stepbot/pattern"
	"github.com/stepbot/pattern/command"
	"github.com/stepbot/pattern/noteskin"
	"github.com/stepbot/pattern/render"
	"github.com/stepbot/pattern/reply"
)

func TestErrorMessages(t *testing.T) {
	cases := []struct {
		err      error
		contains string
	}{
		{fmt.Errorf("%w at position 3", pattern.ErrUnclosedBracket), "closing bracket"},
		{fmt.Errorf("%w at position 0", pattern.ErrUnclosedParenthesis), "closing parenthesis"},
		{fmt.Errorf("%w: pump noteskin can't draw 4k", noteskin.ErrUnsupportedKeymode), "can't draw that keymode"},
		{fmt.Errorf("%w: lane 5 in 4k", noteskin.ErrInvalidLane), "lane 5 in 4k"},
		{fmt.Errorf("%w: more than 131072 rows", pattern.ErrPatternTooLong), "too long"},
		{render.ErrEmptyPattern, "no notes"},
		{fmt.Errorf("%w: 2000 sprites", render.ErrTooManySprites), "too many notes"},
		{render.ErrImageTooLarge, "too large"},
		{render.ErrHoldsUnsupported, "Holds"},
		{command.ErrInvalidKeymode, "between 1k and 32k"},
		{fmt.Errorf("%w: 0", command.ErrInvalidZoom), "`2x`"},
		{fmt.Errorf("%w: 0", render.ErrInvalidZoom), "`2x`"},
		{fmt.Errorf("segment 2: %w", fmt.Errorf("%w at position 1", pattern.ErrUnclosedBracket)), "segment 2"},
	}
	for _, c := range cases {
		assert.Contains(t, reply.ErrorMessage(c.err), c.contains, "error %v", c.err)
	}
}

func TestUnknownError(t *testing.T) {
	assert.Equal(t, "Something went wrong: disk on fire.", reply.ErrorMessage(errors.New("disk on fire.")))
	assert.Empty(t, reply.ErrorMessage(nil))
}

func TestUnknownNoteskinListsNoteskins(t *testing.T) {
	m := reply.Messages{Noteskins: []string{"arrows", "bars"}}
	msg := m.Error(fmt.Errorf("%w: %q", command.ErrUnknownNoteskin, "nope"))
	assert.Equal(t, `Unknown noteskin "nope". Available noteskins: arrows, bars.`, msg)
}

func TestUsage(t *testing.T) {
	msg := reply.Usage([]string{"arrows", "pump"})
	assert.Contains(t, msg, "default 16ths")
	assert.Contains(t, msg, "up to 32k")
	assert.Contains(t, msg, "arrows, pump")
	assert.NotContains(t, reply.Usage(nil), "noteskin")
}

func TestKnown(t *testing.T) {
	assert.True(t, reply.Known(fmt.Errorf("segment 1: %w", pattern.ErrUnclosedBracket)))
	assert.True(t, reply.Known(render.ErrTooManySprites))
	assert.False(t, reply.Known(errors.New("disk on fire")))
	assert.False(t, reply.Known(nil))
}
