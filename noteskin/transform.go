package noteskin

import (
	"fmt"
	"image"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// toRGBA copies img into a new RGBA image with its origin at (0, 0).
func toRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	ret := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(ret, ret.Bounds(), img, b.Min, draw.Src)
	return ret
}

// fit returns img as a square sprite of the given side, scaling it if
// needed.
func fit(img image.Image, side int) *image.RGBA {
	b := img.Bounds()
	if b.Dx() == side && b.Dy() == side {
		return toRGBA(img)
	}
	dst := image.NewRGBA(image.Rect(0, 0, side, side))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

func scale(src *image.RGBA, side int) *image.RGBA {
	return fit(src, side)
}

// splitTextureMap cuts a vertical strip of square tiles into n sprites. The
// side of a tile is the width of the strip.
func splitTextureMap(img image.Image, n int) ([]*image.RGBA, error) {
	b := img.Bounds()
	side := b.Dx()
	if side == 0 || b.Dy() < side*n {
		return nil, fmt.Errorf("%w: need %d tiles of %dx%d but the image is %dx%d", ErrTextureMapTooSmall, n, side, side, b.Dx(), b.Dy())
	}
	ret := make([]*image.RGBA, n)
	for i := range ret {
		tile := image.NewRGBA(image.Rect(0, 0, side, side))
		draw.Draw(tile, tile.Bounds(), img, image.Pt(b.Min.X, b.Min.Y+i*side), draw.Src)
		ret[i] = tile
	}
	return ret, nil
}

// rotateQuarters rotates a square sprite clockwise by the given number of
// quarter turns. Quarter turns move pixels exactly, without resampling.
func rotateQuarters(src *image.RGBA, turns int) *image.RGBA {
	side := src.Bounds().Dx()
	dst := image.NewRGBA(image.Rect(0, 0, side, side))
	turns = ((turns % 4) + 4) % 4
	for y := 0; y < side; y++ {
		for x := 0; x < side; x++ {
			var dx, dy int
			switch turns {
			case 0:
				dx, dy = x, y
			case 1:
				dx, dy = side-1-y, x
			case 2:
				dx, dy = side-1-x, side-1-y
			case 3:
				dx, dy = y, side-1-x
			}
			s := src.PixOffset(x, y)
			d := dst.PixOffset(dx, dy)
			copy(dst.Pix[d:d+4], src.Pix[s:s+4])
		}
	}
	return dst
}

// rotate rotates a square sprite clockwise around its center by an arbitrary
// angle. Corners that fall outside the sprite are cut off and uncovered
// pixels stay transparent.
func rotate(src *image.RGBA, degrees float64) *image.RGBA {
	side := src.Bounds().Dx()
	dst := image.NewRGBA(image.Rect(0, 0, side, side))
	sin, cos := math.Sincos(degrees * math.Pi / 180)
	c := float64(side) / 2
	m := f64.Aff3{
		cos, -sin, c - cos*c + sin*c,
		sin, cos, c - sin*c - cos*c,
	}
	draw.BiLinear.Transform(dst, m, src, src.Bounds(), draw.Src, nil)
	return dst
}

// flipVertical mirrors img upside down in place.
func flipVertical(img *image.RGBA) {
	b := img.Bounds()
	rowLen := b.Dx() * 4
	tmp := make([]byte, rowLen)
	for top, bottom := b.Min.Y, b.Max.Y-1; top < bottom; top, bottom = top+1, bottom-1 {
		t := img.PixOffset(b.Min.X, top)
		u := img.PixOffset(b.Min.X, bottom)
		copy(tmp, img.Pix[t:t+rowLen])
		copy(img.Pix[t:t+rowLen], img.Pix[u:u+rowLen])
		copy(img.Pix[u:u+rowLen], tmp)
	}
}
