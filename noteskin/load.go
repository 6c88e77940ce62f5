package noteskin

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// Definition describes where the textures of a noteskin come from. It is
// usually read from the configuration file.
//
// Textures maps texture roles to image paths; relative paths are relative to
// Dir. The roles depend on the family:
//
//	ldur:      notes, receptor, mine
//	mono-ldur: left, down, up, right, left-receptor, down-receptor,
//	           up-receptor, right-receptor, mine
//	pump:      center, corner, center-receptor, corner-receptor, mine
//	bar:       notes, receptor, mine
//
// A builtin definition ignores Textures and draws the sprites itself.
type Definition struct {
	Name       string            `yaml:"name" validate:"required"`
	Family     Family            `yaml:"family" validate:"required,oneof=ldur mono-ldur pump bar"`
	Builtin    bool              `yaml:"builtin,omitempty"`
	Dir        string            `yaml:"dir,omitempty"`
	Textures   map[string]string `yaml:"textures,omitempty" validate:"required_without=Builtin"`
	Resolution int               `yaml:"resolution,omitempty" validate:"gte=0,lte=1024"`
	UpsideDown bool              `yaml:"upside_down,omitempty"`
}

// ReadImage decodes a PNG, JPEG, GIF, BMP or WebP image from disk.
func ReadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open image: %w", err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("could not decode image %v: %w", path, err)
	}
	return img, nil
}

// Load builds the noteskin of a definition, then applies the resize and
// flip it asks for.
func Load(def Definition) (*Noteskin, error) {
	skin, err := build(def)
	if err != nil {
		return nil, fmt.Errorf("noteskin %v: %w", def.Name, err)
	}
	if def.Resolution > 0 {
		if err := skin.Resize(def.Resolution); err != nil {
			return nil, fmt.Errorf("noteskin %v: %w", def.Name, err)
		}
	}
	if def.UpsideDown {
		skin.TurnUpsideDown()
	}
	return skin, nil
}

func build(def Definition) (*Noteskin, error) {
	if def.Builtin {
		res := def.Resolution
		if res == 0 {
			res = DefaultResolution
		}
		return Builtin(def.Family, res)
	}
	var firstErr error
	read := func(role string) image.Image {
		if firstErr != nil {
			return nil
		}
		path, ok := def.Textures[role]
		if !ok {
			firstErr = fmt.Errorf("%w: no %q texture for a %v noteskin", ErrMissingTexture, role, def.Family)
			return nil
		}
		if !filepath.IsAbs(path) && def.Dir != "" {
			path = filepath.Join(def.Dir, path)
		}
		img, err := ReadImage(path)
		if err != nil {
			firstErr = err
		}
		return img
	}
	switch def.Family {
	case FamilyLDUR:
		notes, receptor, mine := read("notes"), read("receptor"), read("mine")
		if firstErr != nil {
			return nil, firstErr
		}
		return NewLDUR(notes, receptor, mine)
	case FamilyMonoLDUR:
		var notes, receptors [4]image.Image
		for i, dir := range []string{"left", "down", "up", "right"} {
			notes[i] = read(dir)
			receptors[i] = read(dir + "-receptor")
		}
		mine := read("mine")
		if firstErr != nil {
			return nil, firstErr
		}
		return NewMonoLDUR(notes, receptors, mine)
	case FamilyPump:
		center, corner := read("center"), read("corner")
		centerReceptor, cornerReceptor := read("center-receptor"), read("corner-receptor")
		mine := read("mine")
		if firstErr != nil {
			return nil, firstErr
		}
		return NewPump(center, corner, centerReceptor, cornerReceptor, mine)
	case FamilyBar:
		notes, receptor, mine := read("notes"), read("receptor"), read("mine")
		if firstErr != nil {
			return nil, firstErr
		}
		return NewBar(notes, receptor, mine)
	}
	return nil, fmt.Errorf("unknown noteskin family %q", def.Family)
}
