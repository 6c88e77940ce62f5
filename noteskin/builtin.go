package noteskin

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/draw"
)

// DefaultResolution is the sprite size of builtin noteskins unless another
// is asked for.
const DefaultResolution = 64

// Hues of the snap colors, 4ths to 64ths: red, blue, purple, yellow, pink,
// orange, cyan, green.
var snapHues = [NumSnapTextures]float64{0, 220, 280, 55, 320, 30, 185, 120}

var (
	black        = colorful.Color{}
	receptorGray = colorful.Hsv(0, 0, 0.55)
	mineRed      = colorful.Hsv(355, 0.85, 0.8)
)

func snapColor(i int) colorful.Color {
	return colorful.Hsv(snapHues[i], 0.85, 0.95)
}

// shape reports whether a point, in coordinates where the sprite spans
// [0,1]x[0,1], is covered.
type shape func(x, y float64) bool

func polygon(pts ...[2]float64) shape {
	return func(x, y float64) bool {
		inside := false
		for i, j := 0, len(pts)-1; i < len(pts); j, i = i, i+1 {
			a, b := pts[i], pts[j]
			if (a[1] > y) != (b[1] > y) && x < (b[0]-a[0])*(y-a[1])/(b[1]-a[1])+a[0] {
				inside = !inside
			}
		}
		return inside
	}
}

func circle(r float64) shape {
	return func(x, y float64) bool {
		return math.Hypot(x-0.5, y-0.5) <= r
	}
}

// shrunk returns s scaled around the center of the sprite by k < 1.
func shrunk(s shape, k float64) shape {
	return func(x, y float64) bool {
		return s(0.5+(x-0.5)/k, 0.5+(y-0.5)/k)
	}
}

func outline(s shape, k float64) shape {
	inner := shrunk(s, k)
	return func(x, y float64) bool { return s(x, y) && !inner(x, y) }
}

var (
	downArrow = polygon(
		[2]float64{0.35, 0.08}, [2]float64{0.65, 0.08}, [2]float64{0.65, 0.45},
		[2]float64{0.9, 0.45}, [2]float64{0.5, 0.92}, [2]float64{0.1, 0.45},
		[2]float64{0.35, 0.45},
	)
	downLeftArrow = polygon(
		[2]float64{0.1, 0.45}, [2]float64{0.1, 0.9}, [2]float64{0.55, 0.9},
		[2]float64{0.42, 0.77}, [2]float64{0.85, 0.34}, [2]float64{0.66, 0.15},
		[2]float64{0.23, 0.58},
	)
	centerPanel = polygon(
		[2]float64{0.2, 0.2}, [2]float64{0.8, 0.2}, [2]float64{0.8, 0.8}, [2]float64{0.2, 0.8},
	)
	bar = polygon(
		[2]float64{0.04, 0.36}, [2]float64{0.96, 0.36}, [2]float64{0.96, 0.64}, [2]float64{0.04, 0.64},
	)
)

// paint draws a shape onto img at the given sprite offset, anti-aliased
// with 4x4 supersampling.
func paint(img *image.RGBA, at image.Point, side int, s shape, c color.Color) {
	const samples = 4
	mask := image.NewAlpha(image.Rect(0, 0, side, side))
	for y := 0; y < side; y++ {
		for x := 0; x < side; x++ {
			covered := 0
			for sy := 0; sy < samples; sy++ {
				for sx := 0; sx < samples; sx++ {
					fx := (float64(x) + (float64(sx)+0.5)/samples) / float64(side)
					fy := (float64(y) + (float64(sy)+0.5)/samples) / float64(side)
					if s(fx, fy) {
						covered++
					}
				}
			}
			mask.Pix[mask.PixOffset(x, y)] = uint8(covered * 255 / (samples * samples))
		}
	}
	r := image.Rectangle{Min: at, Max: at.Add(image.Pt(side, side))}
	draw.DrawMask(img, r, image.NewUniform(c), image.Point{}, mask, image.Point{}, draw.Over)
}

// sprite draws a filled shape with a dark outline.
func sprite(img *image.RGBA, at image.Point, side int, s shape, fill colorful.Color) {
	paint(img, at, side, s, fill.Clamped())
	paint(img, at, side, outline(s, 0.85), fill.BlendRgb(black, 0.6).Clamped())
}

// textureMap draws one tile per snap color into a vertical strip.
func textureMap(side int, s shape) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, side, side*NumSnapTextures))
	for i := 0; i < NumSnapTextures; i++ {
		sprite(img, image.Pt(0, i*side), side, s, snapColor(i))
	}
	return img
}

func single(side int, s shape, c colorful.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, side, side))
	sprite(img, image.Point{}, side, s, c)
	return img
}

func receptor(side int, s shape) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, side, side))
	paint(img, image.Point{}, side, outline(s, 0.75), receptorGray.Clamped())
	return img
}

func mine(side int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, side, side))
	paint(img, image.Point{}, side, circle(0.32), mineRed.Clamped())
	paint(img, image.Point{}, side, outline(circle(0.32), 0.7), black.Clamped())
	paint(img, image.Point{}, side, circle(0.1), colorful.Hsv(0, 0, 1).Clamped())
	return img
}

// Builtin draws a simple noteskin of the given family, so that patterns can
// be rendered without any texture files.
func Builtin(family Family, resolution int) (*Noteskin, error) {
	if resolution < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidResolution, resolution)
	}
	switch family {
	case FamilyLDUR:
		return NewLDUR(textureMap(resolution, downArrow), receptor(resolution, downArrow), mine(resolution))
	case FamilyMonoLDUR:
		down := single(resolution, downArrow, snapColor(1))
		downReceptor := receptor(resolution, downArrow)
		var notes, receptors [4]image.Image
		for i, turns := range []int{1, 0, 2, 3} {
			notes[i] = rotateQuarters(down, turns)
			receptors[i] = rotateQuarters(downReceptor, turns)
		}
		return NewMonoLDUR(notes, receptors, mine(resolution))
	case FamilyPump:
		return NewPump(
			textureMap(resolution, centerPanel), textureMap(resolution, downLeftArrow),
			receptor(resolution, centerPanel), receptor(resolution, downLeftArrow),
			mine(resolution),
		)
	case FamilyBar:
		return NewBar(textureMap(resolution, bar), receptor(resolution, bar), mine(resolution))
	}
	return nil, fmt.Errorf("unknown noteskin family %q", family)
}
