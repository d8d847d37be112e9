package export

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"runtime"

	"codeberg.org/go-pdf/fpdf"
	"golang.org/x/sync/errgroup"
)

// MaxImageWidthPx caps embedded page images at roughly 150 DPI across an A4 page.
const MaxImageWidthPx = 1240

// DecodePages decodes PNG page captures concurrently, preserving order.
func DecodePages(ctx context.Context, pngs [][]byte) ([]image.Image, error) {
	images := make([]image.Image, len(pngs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for i, data := range pngs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if len(data) == 0 {
				return fmt.Errorf("page %d: empty capture", i+1)
			}
			img, err := png.Decode(bytes.NewReader(data))
			if err != nil {
				return fmt.Errorf("page %d: %w", i+1, err)
			}
			images[i] = img
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return images, nil
}

// ComposePDF places each image on its own A4 page, scaled to the page width. Images are downscaled
// and encoded concurrently; pages are added in input order.
func ComposePDF(ctx context.Context, images []image.Image) ([]byte, error) {
	if len(images) == 0 {
		return nil, fmt.Errorf("no page images to compose")
	}

	encoded := make([][]byte, len(images))
	bounds := make([]image.Rectangle, len(images))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for i, img := range images {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			scaled := ScaleToWidth(img, MaxImageWidthPx)
			var buf bytes.Buffer
			if err := png.Encode(&buf, scaled); err != nil {
				return fmt.Errorf("page %d: %w", i+1, err)
			}
			encoded[i] = buf.Bytes()
			bounds[i] = scaled.Bounds()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	opts := fpdf.ImageOptions{ImageType: "PNG"}

	for i, data := range encoded {
		name := fmt.Sprintf("page-%d", i+1)
		pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(data))

		pdf.AddPage()
		pageW, pageH := pdf.GetPageSize()
		w, h := float64(bounds[i].Dx()), float64(bounds[i].Dy())
		drawH := pageH
		if w > 0 {
			drawH = min(pageH, pageW*h/w)
		}
		pdf.ImageOptions(name, 0, 0, pageW, drawH, false, opts, 0, "")
	}

	if err := pdf.Error(); err != nil {
		return nil, err
	}

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
