package imaging

import (
	"image"
	"image/color"
	"math"
)

// Placeholder returns the bundled image shown before anything is fetched: a
// diagonal dusk gradient with a pulse line across the middle.
func Placeholder() *Entry {
	const w, h = 96, 64
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			t := float64(x+y) / float64(w+h)
			img.SetRGBA(x, y, color.RGBA{
				R: uint8(40 + 150*t),
				G: uint8(20 + 40*t),
				B: uint8(90 + 100*(1-t)),
				A: 255,
			})
		}
	}

	pulse := color.RGBA{R: 80, G: 255, B: 200, A: 255}
	for x := 0; x < w; x++ {
		y := h/2 + int(10*math.Sin(float64(x)/6)*math.Exp(-math.Abs(float64(x-w/2))/20))
		for dy := -1; dy <= 1; dy++ {
			if yy := y + dy; yy >= 0 && yy < h {
				img.SetRGBA(x, yy, pulse)
			}
		}
	}

	return &Entry{
		Image:  img,
		Title:  "prompt pulse",
		Tags:   []string{"placeholder"},
		Origin: Bundled,
		Width:  w,
		Height: h,
	}
}
