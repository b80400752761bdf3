package qrimage

import (
	"bytes"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	black = color.RGBA{A: 0xff}
	white = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
)

func TestStandardShapeProducesPNG(t *testing.T) {
	data, err := (&StandardShape{}).Render("https://qr.example.com/abc", 256, black, white)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 256, img.Bounds().Dx())
	assert.Equal(t, 256, img.Bounds().Dy())
}

func TestRoundedShapeProducesPNG(t *testing.T) {
	data, err := (&RoundedShape{}).Render("https://qr.example.com/abc", 256, black, white)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	// Rounded output snaps to a whole number of pixels per module.
	assert.Greater(t, img.Bounds().Dx(), 0)
	assert.LessOrEqual(t, img.Bounds().Dx(), 256)
	assert.Equal(t, img.Bounds().Dx(), img.Bounds().Dy())
}

func TestShapeOutputsDiffer(t *testing.T) {
	standard, err := (&StandardShape{}).Render("same content", 256, black, white)
	require.NoError(t, err)
	rounded, err := (&RoundedShape{}).Render("same content", 256, black, white)
	require.NoError(t, err)

	assert.NotEqual(t, standard, rounded)
}

func TestDefaultShapes(t *testing.T) {
	shapes := DefaultShapes()
	assert.Contains(t, shapes, "standard")
	assert.Contains(t, shapes, "rounded")
}

func TestParseHexColor(t *testing.T) {
	c, err := ParseHexColor("#1a2b3c")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 0x1a, G: 0x2b, B: 0x3c, A: 0xff}, c)

	c, err = ParseHexColor("#fff")
	require.NoError(t, err)
	assert.Equal(t, white, c)

	_, err = ParseHexColor("red")
	assert.Error(t, err)
}
