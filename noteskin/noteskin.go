// Package noteskin holds the sprites used to draw patterns. A Noteskin is
// built once from a handful of source images and then only read; every
// lookup returns a sprite owned by the skin, which callers must not modify.
package noteskin

import (
	"errors"
	"fmt"
	"image"

	"github.com/stepbot/pattern"
)

// Family is the layout of a noteskin's textures, which decides the keymodes
// the skin can draw.
type Family string

const (
	// FamilyLDUR has arrows for every snap, derived from one down-facing
	// arrow per snap: left, down, up, right and the two diagonals of 6k.
	FamilyLDUR Family = "ldur"
	// FamilyMonoLDUR has one explicit image per direction and no snap
	// coloring.
	FamilyMonoLDUR Family = "mono-ldur"
	// FamilyPump has the five panels of a dance pad in the style of Pump It
	// Up: four corners and a center.
	FamilyPump Family = "pump"
	// FamilyBar draws the same bar in every column and works in any
	// keymode.
	FamilyBar Family = "bar"
)

// Families lists every supported family.
var Families = [...]Family{FamilyLDUR, FamilyMonoLDUR, FamilyPump, FamilyBar}

// NumSnapTextures is the number of snap colors a texture map holds.
const NumSnapTextures = 8

var (
	ErrUnsupportedKeymode = errors.New("noteskin doesn't support keymode")
	ErrInvalidLane        = errors.New("invalid lane for keymode")
	ErrTextureMapTooSmall = errors.New("noteskin texture map too small")
	ErrMissingTexture     = errors.New("missing noteskin texture")
	ErrInvalidResolution  = errors.New("invalid sprite resolution")
)

type (
	// Noteskin is a set of square sprites of equal size: receptors, notes
	// for every snap and a mine.
	Noteskin struct {
		textures   textures
		mine       *image.RGBA
		resolution int
	}

	// textures is one of the family specific texture tables below.
	textures interface {
		family() Family
	}

	// ldurTextures is indexed by [snap texture][orientation], with the
	// orientations L, D, U, R, UL, UR.
	ldurTextures struct {
		notes     [NumSnapTextures][6]*image.RGBA
		receptors [6]*image.RGBA
	}

	// monoLDURTextures is indexed by orientation L, D, U, R.
	monoLDURTextures struct {
		notes     [4]*image.RGBA
		receptors [4]*image.RGBA
	}

	// pumpTextures is indexed by [snap texture][panel], with the panels
	// DL, UL, C, UR, DR.
	pumpTextures struct {
		notes     [NumSnapTextures][5]*image.RGBA
		receptors [5]*image.RGBA
	}

	barTextures struct {
		notes    [NumSnapTextures]*image.RGBA
		receptor *image.RGBA
	}
)

func (*ldurTextures) family() Family     { return FamilyLDUR }
func (*monoLDURTextures) family() Family { return FamilyMonoLDUR }
func (*pumpTextures) family() Family     { return FamilyPump }
func (*barTextures) family() Family      { return FamilyBar }

// Orientation of the 6k columns: left, up-left, down, up, up-right, right.
var sixKeyOrientations = [6]int{0, 4, 1, 2, 5, 3}

// 3k has no up arrow.
var threeKeyOrientations = [3]int{0, 1, 3}

func ldurOrientation(lane, keymode int) int {
	switch keymode {
	case 6:
		return sixKeyOrientations[lane]
	case 3:
		return threeKeyOrientations[lane]
	}
	return lane % 4
}

// Family returns the texture family of the skin.
func (n *Noteskin) Family() Family { return n.textures.family() }

// SpriteResolution returns the side length of every sprite in the skin.
func (n *Noteskin) SpriteResolution() int { return n.resolution }

// SupportsKeymode reports whether the skin can draw the keymode.
func (n *Noteskin) SupportsKeymode(keymode int) bool {
	switch n.textures.(type) {
	case *ldurTextures:
		return keymode == 3 || keymode == 4 || keymode == 6 || keymode == 8
	case *monoLDURTextures:
		return keymode == 3 || keymode == 4 || keymode == 8
	case *pumpTextures:
		return keymode == 5 || keymode == 10
	case *barTextures:
		return keymode >= 1
	}
	panic(unknownTextures(n.textures))
}

func (n *Noteskin) check(lane, keymode int) error {
	if !n.SupportsKeymode(keymode) {
		return fmt.Errorf("%w: %v noteskin can't draw %dk", ErrUnsupportedKeymode, n.Family(), keymode)
	}
	if lane < 0 || lane >= keymode {
		return fmt.Errorf("%w: lane %d in %dk", ErrInvalidLane, lane+1, keymode)
	}
	return nil
}

// Note returns the sprite of a note in the given lane (0-based) and snap.
func (n *Noteskin) Note(lane, keymode int, snap pattern.Snap) (*image.RGBA, error) {
	if err := n.check(lane, keymode); err != nil {
		return nil, err
	}
	switch t := n.textures.(type) {
	case *ldurTextures:
		return t.notes[snap.TextureIndex()][ldurOrientation(lane, keymode)], nil
	case *monoLDURTextures:
		return t.notes[ldurOrientation(lane, keymode)], nil
	case *pumpTextures:
		return t.notes[snap.TextureIndex()][lane%5], nil
	case *barTextures:
		return t.notes[snap.TextureIndex()], nil
	}
	panic(unknownTextures(n.textures))
}

// Receptor returns the receptor sprite of the given lane (0-based).
func (n *Noteskin) Receptor(lane, keymode int) (*image.RGBA, error) {
	if err := n.check(lane, keymode); err != nil {
		return nil, err
	}
	switch t := n.textures.(type) {
	case *ldurTextures:
		return t.receptors[ldurOrientation(lane, keymode)], nil
	case *monoLDURTextures:
		return t.receptors[ldurOrientation(lane, keymode)], nil
	case *pumpTextures:
		return t.receptors[lane%5], nil
	case *barTextures:
		return t.receptor, nil
	}
	panic(unknownTextures(n.textures))
}

// Mine returns the mine sprite, which is the same for every lane and snap.
func (n *Noteskin) Mine() *image.RGBA { return n.mine }

// Resize scales every sprite of the skin to the given resolution. Resizing to
// the current resolution does nothing.
func (n *Noteskin) Resize(resolution int) error {
	if resolution < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidResolution, resolution)
	}
	if resolution == n.resolution {
		return nil
	}
	n.eachSprite(func(img *image.RGBA) *image.RGBA { return scale(img, resolution) })
	n.resolution = resolution
	return nil
}

// TurnUpsideDown flips every sprite of the skin vertically, for skins that
// are designed for the other scroll direction.
func (n *Noteskin) TurnUpsideDown() {
	n.eachSprite(func(img *image.RGBA) *image.RGBA {
		flipVertical(img)
		return img
	})
}

// eachSprite replaces every sprite of the skin with the result of fn. Any
// new family must be added here, or Resize and TurnUpsideDown skip it.
func (n *Noteskin) eachSprite(fn func(*image.RGBA) *image.RGBA) {
	each := func(imgs []*image.RGBA) {
		for i := range imgs {
			imgs[i] = fn(imgs[i])
		}
	}
	switch t := n.textures.(type) {
	case *ldurTextures:
		for i := range t.notes {
			each(t.notes[i][:])
		}
		each(t.receptors[:])
	case *monoLDURTextures:
		each(t.notes[:])
		each(t.receptors[:])
	case *pumpTextures:
		for i := range t.notes {
			each(t.notes[i][:])
		}
		each(t.receptors[:])
	case *barTextures:
		each(t.notes[:])
		t.receptor = fn(t.receptor)
	default:
		panic(unknownTextures(n.textures))
	}
	n.mine = fn(n.mine)
}

func unknownTextures(t textures) string {
	return fmt.Sprintf("noteskin: unknown texture family %T", t)
}
