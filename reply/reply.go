// Package reply turns errors and help requests into text for chat users.
package reply

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig"

	"github.com/stepbot/pattern"
	"github.com/stepbot/pattern/command"
	"github.com/stepbot/pattern/midiexport"
	"github.com/stepbot/pattern/noteskin"
	"github.com/stepbot/pattern/render"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.New("base").Funcs(sprig.TxtFuncMap()).ParseFS(templateFS, "templates/*.tmpl"))

// The first matching error decides the message.
var errorTemplates = []struct {
	err  error
	name string
}{
	{pattern.ErrUnclosedBracket, "unclosed_bracket"},
	{pattern.ErrUnclosedParenthesis, "unclosed_parenthesis"},
	{pattern.ErrPatternTooLong, "pattern_too_long"},
	{command.ErrInvalidSnap, "invalid_snap"},
	{command.ErrInvalidZoom, "invalid_zoom"},
	{command.ErrInvalidKeymode, "invalid_keymode"},
	{command.ErrUnknownNoteskin, "unknown_noteskin"},
	{command.ErrNoNoteskinForKeymode, "no_noteskin_for_keymode"},
	{noteskin.ErrUnsupportedKeymode, "unsupported_keymode"},
	{noteskin.ErrInvalidLane, "invalid_lane"},
	{render.ErrEmptyPattern, "empty_pattern"},
	{midiexport.ErrEmptyPattern, "empty_pattern"},
	{render.ErrTooManySprites, "too_many_sprites"},
	{render.ErrImageTooLarge, "image_too_large"},
	{render.ErrHoldsUnsupported, "holds_unsupported"},
	{render.ErrInvalidZoom, "invalid_zoom"},
	{render.ErrInvalidSnap, "invalid_snap"},
}

// Messages renders replies. Noteskins, if set, are listed where a message
// can point the user to them.
type Messages struct {
	Noteskins []string
}

type data struct {
	Error       string
	Noteskins   []string
	DefaultSnap int
	MaxKeymode  int
}

// ErrorMessage is Messages{}.Error.
func ErrorMessage(err error) string {
	return Messages{}.Error(err)
}

// Usage is Messages{Noteskins: noteskins}.Usage.
func Usage(noteskins []string) string {
	return Messages{Noteskins: noteskins}.Usage()
}

// Known reports whether err is caused by the user's input, as opposed to a
// failure of the bot itself.
func Known(err error) bool {
	for _, t := range errorTemplates {
		if errors.Is(err, t.err) {
			return true
		}
	}
	return false
}

// Error explains err to the user. Errors the engine doesn't know about get a
// generic message with the error text.
func (m Messages) Error(err error) string {
	if err == nil {
		return ""
	}
	name := "unknown"
	for _, t := range errorTemplates {
		if errors.Is(err, t.err) {
			name = t.name
			break
		}
	}
	return m.execute(name, err.Error())
}

// Usage returns the help text of the draw command.
func (m Messages) Usage() string {
	return m.execute("usage", "")
}

func (m Messages) execute(name, errText string) string {
	var buf bytes.Buffer
	d := data{
		Error:       errText,
		Noteskins:   m.Noteskins,
		DefaultSnap: command.DefaultSnap,
		MaxKeymode:  command.MaxKeymode,
	}
	if err := templates.ExecuteTemplate(&buf, name, d); err != nil {
		return fmt.Sprintf("Something went wrong: %v.", errText)
	}
	return strings.TrimSpace(buf.String())
}
