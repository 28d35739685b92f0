package sdlhost

import (
	"math"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/BrandonKowalski/gabanav/pkg/gabanav/transition"
)

// Destination returns where a layer drawn at width x height lands on screen.
// Offsets are fractions of the screen size; scaling is about the centre.
func Destination(v transition.Visual, width, height int32) sdl.Rect {
	w := int32(math.Round(float64(width) * v.Scale))
	h := int32(math.Round(float64(height) * v.Scale))
	return sdl.Rect{
		X: (width-w)/2 + int32(math.Round(v.OffsetX*float64(width))),
		Y: (height-h)/2 + int32(math.Round(v.OffsetY*float64(height))),
		W: w,
		H: h,
	}
}

// AlphaMod converts a visual's alpha to an SDL alpha modulation.
func AlphaMod(v transition.Visual) uint8 {
	a := math.Round(v.Alpha * 255)
	switch {
	case a <= 0:
		return 0
	case a >= 255:
		return 255
	}
	return uint8(a)
}

// Visible reports whether a layer would put any pixel on screen.
func Visible(v transition.Visual, width, height int32) bool {
	if AlphaMod(v) == 0 {
		return false
	}
	r := Destination(v, width, height)
	if r.W <= 0 || r.H <= 0 {
		return false
	}
	return r.X < width && r.Y < height && r.X+r.W > 0 && r.Y+r.H > 0
}
