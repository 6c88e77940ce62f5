package noteskin

import (
	"fmt"
	"image"
)

// NewLDUR builds an arrow noteskin for 3k, 4k, 6k and 8k. notes is a texture
// map of down-facing arrows, one tile per snap from 4ths to 64ths; receptor
// is a down-facing receptor. The other directions are rotations of these.
func NewLDUR(notes, receptor, mine image.Image) (*Noteskin, error) {
	if err := required(map[string]image.Image{"notes": notes, "receptor": receptor, "mine": mine}); err != nil {
		return nil, err
	}
	tiles, err := splitTextureMap(notes, NumSnapTextures)
	if err != nil {
		return nil, err
	}
	res := tiles[0].Bounds().Dx()
	t := &ldurTextures{}
	for i, tile := range tiles {
		t.notes[i] = ldurOrientations(tile)
	}
	t.receptors = ldurOrientations(fit(receptor, res))
	return &Noteskin{textures: t, mine: fit(mine, res), resolution: res}, nil
}

func ldurOrientations(down *image.RGBA) [6]*image.RGBA {
	return [6]*image.RGBA{
		rotateQuarters(down, 1),
		down,
		rotateQuarters(down, 2),
		rotateQuarters(down, 3),
		rotate(down, 135),
		rotate(down, -135),
	}
}

// NewMonoLDUR builds an arrow noteskin without snap colors from one image
// per direction, in the order left, down, up, right.
func NewMonoLDUR(notes, receptors [4]image.Image, mine image.Image) (*Noteskin, error) {
	imgs := map[string]image.Image{"mine": mine}
	for i, dir := range []string{"left", "down", "up", "right"} {
		imgs[dir+" note"] = notes[i]
		imgs[dir+" receptor"] = receptors[i]
	}
	if err := required(imgs); err != nil {
		return nil, err
	}
	res := notes[0].Bounds().Dx()
	if res == 0 {
		return nil, fmt.Errorf("%w: empty left note image", ErrTextureMapTooSmall)
	}
	t := &monoLDURTextures{}
	for i := range notes {
		t.notes[i] = fit(notes[i], res)
		t.receptors[i] = fit(receptors[i], res)
	}
	return &Noteskin{textures: t, mine: fit(mine, res), resolution: res}, nil
}

// NewPump builds a 5k/10k noteskin. center and corner are texture maps with
// one tile per snap; corners face down-left, and the other corners are
// rotations of it.
func NewPump(center, corner, centerReceptor, cornerReceptor, mine image.Image) (*Noteskin, error) {
	if err := required(map[string]image.Image{
		"center": center, "corner": corner,
		"center receptor": centerReceptor, "corner receptor": cornerReceptor,
		"mine": mine,
	}); err != nil {
		return nil, err
	}
	centers, err := splitTextureMap(center, NumSnapTextures)
	if err != nil {
		return nil, fmt.Errorf("center: %w", err)
	}
	res := centers[0].Bounds().Dx()
	corners, err := splitTextureMap(corner, NumSnapTextures)
	if err != nil {
		return nil, fmt.Errorf("corner: %w", err)
	}
	t := &pumpTextures{}
	for i := range t.notes {
		t.notes[i] = pumpPanels(fit(centers[i], res), fit(corners[i], res))
	}
	t.receptors = pumpPanels(fit(centerReceptor, res), fit(cornerReceptor, res))
	return &Noteskin{textures: t, mine: fit(mine, res), resolution: res}, nil
}

func pumpPanels(center, downLeft *image.RGBA) [5]*image.RGBA {
	return [5]*image.RGBA{
		downLeft,
		rotateQuarters(downLeft, 1),
		center,
		rotateQuarters(downLeft, 2),
		rotateQuarters(downLeft, 3),
	}
}

// NewBar builds a noteskin that draws the same bar in every column. notes is
// a texture map with one tile per snap.
func NewBar(notes, receptor, mine image.Image) (*Noteskin, error) {
	if err := required(map[string]image.Image{"notes": notes, "receptor": receptor, "mine": mine}); err != nil {
		return nil, err
	}
	tiles, err := splitTextureMap(notes, NumSnapTextures)
	if err != nil {
		return nil, err
	}
	res := tiles[0].Bounds().Dx()
	t := &barTextures{receptor: fit(receptor, res)}
	copy(t.notes[:], tiles)
	return &Noteskin{textures: t, mine: fit(mine, res), resolution: res}, nil
}

func required(imgs map[string]image.Image) error {
	for name, img := range imgs {
		if img == nil {
			return fmt.Errorf("%w: %v", ErrMissingTexture, name)
		}
	}
	return nil
}
