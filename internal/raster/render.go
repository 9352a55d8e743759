package raster

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"

	"github.com/RMahshie/wlansurvey/pkg/models"
)

const (
	interferenceRings     = 8
	interferencePeakLevel = 60.0
	interferenceMinLevel  = 2.0
)

// SourceFunc is called before each interference source is drawn
type SourceFunc func(done, total int)

// Transparent returns a fully transparent raster of the floor size
func Transparent(floor models.FloorSpec) (*image.NRGBA, error) {
	if floor.Width <= 0 || floor.Height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, floor.Width, floor.Height)
	}
	return image.NewNRGBA(image.Rect(0, 0, floor.Width, floor.Height)), nil
}

// RenderSignal colours every cell that carries data with the signal gradient.
// Cells without data stay transparent.
func RenderSignal(grid *Grid) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, grid.Width, grid.Height))
	cs := grid.CellSize
	for row := 0; row < grid.Rows; row++ {
		for col := 0; col < grid.Cols; col++ {
			if !grid.HasData(col, row) {
				continue
			}
			c := SignalColor(grid.At(col, row))
			c.A = SignalOverlayAlpha
			cell := image.Rect(col*cs, row*cs, (col+1)*cs, (row+1)*cs)
			draw.Draw(img, cell, image.NewUniform(c), image.Point{}, draw.Src)
		}
	}
	return img
}

// RingLevel returns the interference percentage of ring (1 innermost,
// 8 outermost) for a source with the given falloff.
func RingLevel(ring int, falloff float64) float64 {
	distanceFactor := 1 - float64(ring)/interferenceRings
	return interferencePeakLevel * distanceFactor * math.Pow(falloff, float64(ring-1))
}

// RenderInterference composites the concentric footprints of every source,
// outermost ring first. Sources may lie off the floor; drawing is clipped to
// the raster.
func RenderInterference(ctx context.Context, floor models.FloorSpec, sources []models.InterferenceSource, onSource SourceFunc) (*image.RGBA, error) {
	if floor.Width <= 0 || floor.Height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, floor.Width, floor.Height)
	}

	img := image.NewRGBA(image.Rect(0, 0, floor.Width, floor.Height))
	for i, src := range sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if onSource != nil {
			onSource(i, len(sources))
		}

		for ring := interferenceRings; ring > 0; ring-- {
			level := RingLevel(ring, src.FalloffRate)
			if level < interferenceMinLevel {
				continue
			}
			radius := src.MaxRadius * float64(ring) / interferenceRings
			mask := &disc{cx: src.X, cy: src.Y, r: radius}
			r := mask.Bounds().Intersect(img.Bounds())
			if r.Empty() {
				continue
			}
			draw.DrawMask(img, r, image.NewUniform(InterferenceColor(level)), image.Point{}, mask, r.Min, draw.Over)
		}
	}
	return img, nil
}

// disc is an alpha mask that is opaque inside a circle. Pixels are sampled
// at their centres.
type disc struct {
	cx, cy, r float64
}

func (d *disc) ColorModel() color.Model {
	return color.AlphaModel
}

func (d *disc) Bounds() image.Rectangle {
	return image.Rect(
		int(math.Floor(d.cx-d.r)),
		int(math.Floor(d.cy-d.r)),
		int(math.Ceil(d.cx+d.r))+1,
		int(math.Ceil(d.cy+d.r))+1,
	)
}

func (d *disc) At(x, y int) color.Color {
	dx := float64(x) + 0.5 - d.cx
	dy := float64(y) + 0.5 - d.cy
	if dx*dx+dy*dy <= d.r*d.r {
		return color.Alpha{A: 255}
	}
	return color.Alpha{}
}
