package export

import (
	"image"
	"math"

	"golang.org/x/image/draw"

	"github.com/jonathan/resume-builder/internal/layout"
)

// SlicePages cuts a full-document capture into count A4-proportioned pages. The slice height
// follows the capture's width, so device pixel ratio does not matter. A short last slice is
// padded with white.
func SlicePages(img image.Image, count int) []image.Image {
	if img == nil || count <= 0 {
		return nil
	}
	b := img.Bounds()
	w := b.Dx()
	sliceH := int(math.Round(float64(w) * layout.A4HeightPx / layout.A4WidthPx))
	if w == 0 || sliceH == 0 {
		return nil
	}

	pages := make([]image.Image, 0, count)
	for i := 0; i < count; i++ {
		dst := image.NewRGBA(image.Rect(0, 0, w, sliceH))
		draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)

		top := b.Min.Y + i*sliceH
		bottom := min(top+sliceH, b.Max.Y)
		if top < bottom {
			src := image.Rect(b.Min.X, top, b.Max.X, bottom)
			draw.Draw(dst, image.Rect(0, 0, w, src.Dy()), img, src.Min, draw.Over)
		}
		pages = append(pages, dst)
	}
	return pages
}

// ScaleToWidth downscales img to width pixels, keeping its aspect ratio. Narrower images are returned as is.
func ScaleToWidth(img image.Image, width int) image.Image {
	b := img.Bounds()
	if width <= 0 || b.Dx() <= width {
		return img
	}
	height := max(1, int(math.Round(float64(b.Dy())*float64(width)/float64(b.Dx()))))
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}
