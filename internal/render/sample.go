package render

import (
	"image"
	"image/color"
	"math"
)

// Sampler reduces the pixels of r to one color, visiting every gridSize-th
// pixel in each direction.
type Sampler func(img *image.RGBA, r image.Rectangle, gridSize int) color.RGBA

// SamplerByName maps the configuration names to samplers.
func SamplerByName(name string) (Sampler, bool) {
	switch name {
	case "AVERAGE":
		return AverageColor, true
	case "SQUARED_AVERAGE":
		return SquaredAverageColor, true
	}
	return nil, false
}

func AverageColor(img *image.RGBA, r image.Rectangle, gridSize int) color.RGBA {
	var sumR, sumG, sumB, sumA, totalPixels uint64
	r = r.Intersect(img.Bounds())
	if gridSize < 1 {
		gridSize = 1
	}

	for y := r.Min.Y; y < r.Max.Y; y += gridSize {
		for x := r.Min.X; x < r.Max.X; x += gridSize {
			totalPixels++
			c := img.RGBAAt(x, y)
			sumR += uint64(c.R)
			sumG += uint64(c.G)
			sumB += uint64(c.B)
			sumA += uint64(c.A)
		}
	}
	if totalPixels == 0 {
		return color.RGBA{}
	}

	return color.RGBA{
		R: uint8(sumR / totalPixels),
		G: uint8(sumG / totalPixels),
		B: uint8(sumB / totalPixels),
		A: uint8(sumA / totalPixels),
	}
}

// SquaredAverageColor averages in squared space, which keeps small bright
// details like the iris glint from washing out.
func SquaredAverageColor(img *image.RGBA, r image.Rectangle, gridSize int) color.RGBA {
	var sumR, sumG, sumB, sumA, totalPixels uint64
	r = r.Intersect(img.Bounds())
	if gridSize < 1 {
		gridSize = 1
	}

	for y := r.Min.Y; y < r.Max.Y; y += gridSize {
		for x := r.Min.X; x < r.Max.X; x += gridSize {
			totalPixels++
			c := img.RGBAAt(x, y)
			sumR += uint64(c.R) * uint64(c.R)
			sumG += uint64(c.G) * uint64(c.G)
			sumB += uint64(c.B) * uint64(c.B)
			sumA += uint64(c.A) * uint64(c.A)
		}
	}
	if totalPixels == 0 {
		return color.RGBA{}
	}

	return color.RGBA{
		R: uint8(math.Sqrt(float64(sumR / totalPixels))),
		G: uint8(math.Sqrt(float64(sumG / totalPixels))),
		B: uint8(math.Sqrt(float64(sumB / totalPixels))),
		A: uint8(math.Sqrt(float64(sumA / totalPixels))),
	}
}
