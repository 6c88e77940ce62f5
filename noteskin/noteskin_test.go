package noteskin

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stepbot/pattern"
)

func allSprites(n *Noteskin) []*image.RGBA {
	var ret []*image.RGBA
	n.eachSprite(func(img *image.RGBA) *image.RGBA {
		ret = append(ret, img)
		return img
	})
	return ret
}

func builtinSkins(t *testing.T, resolution int) map[Family]*Noteskin {
	t.Helper()
	ret := map[Family]*Noteskin{}
	for _, f := range Families {
		skin, err := Builtin(f, resolution)
		require.NoError(t, err, "family %v", f)
		ret[f] = skin
	}
	return ret
}

func TestSpriteCounts(t *testing.T) {
	expected := map[Family]int{
		FamilyLDUR:     NumSnapTextures*6 + 6 + 1,
		FamilyMonoLDUR: 4 + 4 + 1,
		FamilyPump:     NumSnapTextures*5 + 5 + 1,
		FamilyBar:      NumSnapTextures + 1 + 1,
	}
	for f, skin := range builtinSkins(t, 16) {
		assert.Len(t, allSprites(skin), expected[f], "family %v", f)
		assert.Equal(t, f, skin.Family())
	}
}

func TestResizeReachesEverySprite(t *testing.T) {
	for f, skin := range builtinSkins(t, 16) {
		for _, res := range []int{16, 40, 7} {
			require.NoError(t, skin.Resize(res))
			assert.Equal(t, res, skin.SpriteResolution())
			for i, img := range allSprites(skin) {
				b := img.Bounds()
				assert.Equal(t, image.Rect(0, 0, res, res), b, "family %v sprite %v", f, i)
			}
		}
		assert.ErrorIs(t, skin.Resize(0), ErrInvalidResolution)
	}
}

func TestResizeSameResolutionKeepsSprites(t *testing.T) {
	skin, err := Builtin(FamilyBar, 16)
	require.NoError(t, err)
	before := allSprites(skin)
	require.NoError(t, skin.Resize(16))
	after := allSprites(skin)
	for i := range before {
		assert.Same(t, before[i], after[i])
	}
}

func TestSupportsKeymode(t *testing.T) {
	skins := builtinSkins(t, 8)
	for k := 1; k <= 12; k++ {
		assert.Equal(t, k == 3 || k == 4 || k == 6 || k == 8, skins[FamilyLDUR].SupportsKeymode(k), "ldur %vk", k)
		assert.Equal(t, k == 3 || k == 4 || k == 8, skins[FamilyMonoLDUR].SupportsKeymode(k), "mono %vk", k)
		assert.Equal(t, k == 5 || k == 10, skins[FamilyPump].SupportsKeymode(k), "pump %vk", k)
		assert.True(t, skins[FamilyBar].SupportsKeymode(k), "bar %vk", k)
	}
	assert.False(t, skins[FamilyBar].SupportsKeymode(0))
}

func TestLDURLaneMapping(t *testing.T) {
	skin, err := Builtin(FamilyLDUR, 8)
	require.NoError(t, err)
	tex := skin.textures.(*ldurTextures)
	cases := map[int][]int{
		3: {0, 1, 3},
		4: {0, 1, 2, 3},
		6: {0, 4, 1, 2, 5, 3},
		8: {0, 1, 2, 3, 0, 1, 2, 3},
	}
	for keymode, orientations := range cases {
		for lane, o := range orientations {
			note, err := skin.Note(lane, keymode, pattern.Snap12th)
			require.NoError(t, err)
			assert.Same(t, tex.notes[2][o], note, "%vk lane %v", keymode, lane)
			rec, err := skin.Receptor(lane, keymode)
			require.NoError(t, err)
			assert.Same(t, tex.receptors[o], rec, "%vk lane %v", keymode, lane)
		}
	}
	note, err := skin.Note(0, 4, pattern.Snap192nd)
	require.NoError(t, err)
	assert.Same(t, tex.notes[7][0], note)
}

func TestPumpAndBarLaneMapping(t *testing.T) {
	pump, err := Builtin(FamilyPump, 8)
	require.NoError(t, err)
	pt := pump.textures.(*pumpTextures)
	for lane := 0; lane < 10; lane++ {
		note, err := pump.Note(lane, 10, pattern.Snap4th)
		require.NoError(t, err)
		assert.Same(t, pt.notes[0][lane%5], note)
	}
	bar, err := Builtin(FamilyBar, 8)
	require.NoError(t, err)
	bt := bar.textures.(*barTextures)
	for lane := 0; lane < 7; lane++ {
		rec, err := bar.Receptor(lane, 7)
		require.NoError(t, err)
		assert.Same(t, bt.receptor, rec)
		note, err := bar.Note(lane, 7, pattern.Snap24th)
		require.NoError(t, err)
		assert.Same(t, bt.notes[4], note)
	}
	assert.Same(t, bar.mine, bar.Mine())
}

func TestLookupErrors(t *testing.T) {
	skins := builtinSkins(t, 8)
	_, err := skins[FamilyLDUR].Note(0, 5, pattern.Snap4th)
	assert.ErrorIs(t, err, ErrUnsupportedKeymode)
	_, err = skins[FamilyPump].Receptor(0, 4)
	assert.ErrorIs(t, err, ErrUnsupportedKeymode)
	_, err = skins[FamilyLDUR].Note(4, 4, pattern.Snap4th)
	assert.ErrorIs(t, err, ErrInvalidLane)
	_, err = skins[FamilyBar].Receptor(-1, 4)
	assert.ErrorIs(t, err, ErrInvalidLane)
}

// A single opaque pixel at the bottom center of the down arrow must end up at
// the left, top and right edges of the other orientations.
func TestLDUROrientations(t *testing.T) {
	const side = 8
	notes := image.NewRGBA(image.Rect(0, 0, side, side*NumSnapTextures))
	for i := 0; i < NumSnapTextures; i++ {
		notes.Set(4, i*side+7, color.White)
	}
	single := image.NewRGBA(image.Rect(0, 0, side, side))
	single.Set(4, 7, color.White)
	skin, err := NewLDUR(notes, single, single)
	require.NoError(t, err)
	expected := []image.Point{{0, 4}, {4, 7}, {3, 0}, {7, 3}}
	for lane, p := range expected {
		note, err := skin.Note(lane, 4, pattern.Snap4th)
		require.NoError(t, err)
		assert.Equal(t, uint8(255), note.RGBAAt(p.X, p.Y).A, "lane %v at %v", lane, p)
		assert.Equal(t, 1, countOpaque(note), "lane %v", lane)
	}
}

func countOpaque(img *image.RGBA) int {
	ret := 0
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] > 0 {
			ret++
		}
	}
	return ret
}

func TestDiagonalsAreRotated(t *testing.T) {
	skin, err := Builtin(FamilyLDUR, 32)
	require.NoError(t, err)
	upLeft, err := skin.Note(1, 6, pattern.Snap4th)
	require.NoError(t, err)
	upRight, err := skin.Note(4, 6, pattern.Snap4th)
	require.NoError(t, err)
	// the arrow heads point to the top left and top right corners
	assert.Greater(t, quadrantCoverage(upLeft, 0, 0), quadrantCoverage(upLeft, 1, 1))
	assert.Greater(t, quadrantCoverage(upRight, 1, 0), quadrantCoverage(upRight, 0, 1))
	assert.Equal(t, 0, int(upLeft.RGBAAt(0, 31).A), "corners outside the rotated arrow stay transparent")
}

func quadrantCoverage(img *image.RGBA, qx, qy int) int {
	half := img.Bounds().Dx() / 2
	ret := 0
	for y := qy * half; y < (qy+1)*half; y++ {
		for x := qx * half; x < (qx+1)*half; x++ {
			ret += int(img.RGBAAt(x, y).A)
		}
	}
	return ret
}

func TestTextureMapTooSmall(t *testing.T) {
	small := image.NewRGBA(image.Rect(0, 0, 16, 16*NumSnapTextures-1))
	sprite := image.NewRGBA(image.Rect(0, 0, 16, 16))
	_, err := NewLDUR(small, sprite, sprite)
	assert.ErrorIs(t, err, ErrTextureMapTooSmall)
	_, err = NewBar(small, sprite, sprite)
	assert.ErrorIs(t, err, ErrTextureMapTooSmall)
	_, err = NewPump(small, small, sprite, sprite, sprite)
	assert.ErrorIs(t, err, ErrTextureMapTooSmall)
	_, err = NewLDUR(image.NewRGBA(image.Rect(0, 0, 0, 10)), sprite, sprite)
	assert.ErrorIs(t, err, ErrTextureMapTooSmall)
	_, err = NewBar(nil, sprite, sprite)
	assert.ErrorIs(t, err, ErrMissingTexture)
}

func TestMismatchedSpritesAreScaled(t *testing.T) {
	notes := image.NewRGBA(image.Rect(0, 0, 16, 16*NumSnapTextures))
	skin, err := NewBar(notes, image.NewRGBA(image.Rect(0, 0, 50, 30)), image.NewRGBA(image.Rect(0, 0, 4, 4)))
	require.NoError(t, err)
	for _, img := range allSprites(skin) {
		assert.Equal(t, image.Rect(0, 0, 16, 16), img.Bounds())
	}
}

func TestTurnUpsideDown(t *testing.T) {
	single := image.NewRGBA(image.Rect(0, 0, 4, 4))
	single.Set(1, 0, color.White)
	var four [4]image.Image
	for i := range four {
		four[i] = single
	}
	skin, err := NewMonoLDUR(four, four, single)
	require.NoError(t, err)
	skin.TurnUpsideDown()
	for _, img := range allSprites(skin) {
		assert.Equal(t, uint8(255), img.RGBAAt(1, 3).A)
		assert.Equal(t, uint8(0), img.RGBAAt(1, 0).A)
	}
}

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "notes.png"), textureMap(16, downArrow))
	writePNG(t, filepath.Join(dir, "receptor.png"), receptor(16, downArrow))
	writePNG(t, filepath.Join(dir, "mine.png"), mine(16))
	def := Definition{
		Name:   "arrows",
		Family: FamilyLDUR,
		Dir:    dir,
		Textures: map[string]string{
			"notes":    "notes.png",
			"receptor": "receptor.png",
			"mine":     filepath.Join(dir, "mine.png"),
		},
		Resolution: 24,
		UpsideDown: true,
	}
	skin, err := Load(def)
	require.NoError(t, err)
	assert.Equal(t, 24, skin.SpriteResolution())
	assert.Equal(t, FamilyLDUR, skin.Family())

	delete(def.Textures, "mine")
	_, err = Load(def)
	assert.ErrorIs(t, err, ErrMissingTexture)

	def.Textures["mine"] = "does-not-exist.png"
	_, err = Load(def)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRegistry(t *testing.T) {
	defs := []Definition{
		{Name: "Arrows", Family: FamilyLDUR, Builtin: true, Resolution: 8},
		{Name: "bars", Family: FamilyBar, Builtin: true, Resolution: 8},
		{Name: "pump", Family: FamilyPump, Builtin: true, Resolution: 8},
	}
	r, err := NewRegistry(defs, "arrows")
	require.NoError(t, err)
	assert.Equal(t, []string{"arrows", "bars", "pump"}, r.Names())

	_, ok := r.Get("ARROWS")
	assert.True(t, ok)
	_, ok = r.Get("nope")
	assert.False(t, ok)

	name, _, ok := r.DefaultFor(4)
	assert.True(t, ok)
	assert.Equal(t, "arrows", name)
	name, _, ok = r.DefaultFor(5)
	assert.True(t, ok)
	assert.Equal(t, "bars", name)
	name, _, ok = r.DefaultFor(7)
	assert.True(t, ok)
	assert.Equal(t, "bars", name)

	_, err = NewRegistry(append(defs, Definition{Name: "bars", Family: FamilyBar, Builtin: true}), "")
	assert.Error(t, err)
	_, err = NewRegistry(defs, "missing")
	assert.Error(t, err)
}
