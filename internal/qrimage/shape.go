package qrimage

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	"github.com/skip2/go-qrcode"
)

// ShapeRenderer renders the QR matrix for one visual variant. Variants are
// registered by name and selected per render request.
type ShapeRenderer interface {
	Name() string
	Render(content string, size int, fg, bg color.Color) ([]byte, error)
}

// DefaultShapes returns the built-in shape variants keyed by name.
func DefaultShapes() map[string]ShapeRenderer {
	shapes := map[string]ShapeRenderer{}
	for _, s := range []ShapeRenderer{&StandardShape{}, &RoundedShape{}} {
		shapes[s.Name()] = s
	}
	return shapes
}

// StandardShape renders square modules, the native go-qrcode output.
type StandardShape struct{}

func (s *StandardShape) Name() string { return "standard" }

func (s *StandardShape) Render(content string, size int, fg, bg color.Color) ([]byte, error) {
	q, err := qrcode.New(content, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("failed to build QR matrix: %w", err)
	}
	q.ForegroundColor = fg
	q.BackgroundColor = bg

	data, err := q.PNG(size)
	if err != nil {
		return nil, fmt.Errorf("failed to encode QR PNG: %w", err)
	}
	return data, nil
}

// RoundedShape draws each dark module as a filled circle. The finder
// patterns stay scannable because circles keep module centers intact.
type RoundedShape struct{}

func (s *RoundedShape) Name() string { return "rounded" }

func (s *RoundedShape) Render(content string, size int, fg, bg color.Color) ([]byte, error) {
	q, err := qrcode.New(content, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("failed to build QR matrix: %w", err)
	}

	bitmap := q.Bitmap() // includes the quiet-zone border
	modules := len(bitmap)
	if modules == 0 {
		return nil, fmt.Errorf("empty QR matrix")
	}

	modulePx := size / modules
	if modulePx < 1 {
		modulePx = 1
	}
	realSize := modulePx * modules

	img := image.NewRGBA(image.Rect(0, 0, realSize, realSize))
	draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	radius := float64(modulePx) / 2
	for y, row := range bitmap {
		for x, dark := range row {
			if !dark {
				continue
			}
			drawCircle(img, x*modulePx, y*modulePx, modulePx, radius, fg)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode QR PNG: %w", err)
	}
	return buf.Bytes(), nil
}

func drawCircle(img *image.RGBA, x0, y0, modulePx int, radius float64, c color.Color) {
	cx := float64(x0) + radius
	cy := float64(y0) + radius
	for py := y0; py < y0+modulePx; py++ {
		for px := x0; px < x0+modulePx; px++ {
			dx := float64(px) + 0.5 - cx
			dy := float64(py) + 0.5 - cy
			if dx*dx+dy*dy <= radius*radius {
				img.Set(px, py, c)
			}
		}
	}
}

// ParseHexColor parses "#rrggbb" into a color. Short "#rgb" form is
// accepted too.
func ParseHexColor(s string) (color.RGBA, error) {
	c := color.RGBA{A: 0xff}
	var err error
	switch len(s) {
	case 7:
		_, err = fmt.Sscanf(s, "#%02x%02x%02x", &c.R, &c.G, &c.B)
	case 4:
		_, err = fmt.Sscanf(s, "#%1x%1x%1x", &c.R, &c.G, &c.B)
		c.R *= 17
		c.G *= 17
		c.B *= 17
	default:
		err = fmt.Errorf("invalid length")
	}
	if err != nil {
		return c, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	return c, nil
}
