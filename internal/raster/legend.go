package raster

import (
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	legendMargin    = 10
	legendBandsTop  = 50
	legendSwatchW   = 30
	legendLabelX    = 50
	legendBandInset = 5
)

// Legend draws the discrete signal bands with their labels on a
// semi-transparent white card.
func Legend(width, height int) (*image.RGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.NRGBA{R: 255, G: 255, B: 255, A: 200}), image.Point{}, draw.Src)

	text := &font.Drawer{Dst: img, Src: image.Black, Face: basicfont.Face7x13}
	drawText(text, legendMargin, 20, "Signal Strength")
	drawText(text, legendMargin, 35, "(dBm)")

	bands := SignalBands()
	bandHeight := max((height-legendBandsTop-20)/len(bands), legendBandInset+1)
	for i, band := range bands {
		y := legendBandsTop + i*bandHeight
		swatch := image.Rect(legendMargin, y, legendMargin+legendSwatchW, y+bandHeight-legendBandInset)
		draw.Draw(img, swatch, image.NewUniform(band.Color), image.Point{}, draw.Over)
		drawText(text, legendLabelX, y+15, band.Label)
		drawText(text, legendLabelX, y+30, band.String())
	}
	return img, nil
}

func drawText(d *font.Drawer, x, y int, s string) {
	d.Dot = fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)}
	d.DrawString(s)
}
