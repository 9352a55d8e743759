// Package raster turns emitter estimates into floor-sized pixel buffers.
//
// The grid builder evaluates the path-loss model for every cell and keeps the
// strongest predicted signal. Renderers colour the grid or the interference
// footprints into fresh images that are returned once complete.
package raster

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/RMahshie/wlansurvey/internal/pathloss"
	"github.com/RMahshie/wlansurvey/pkg/models"
)

var (
	// ErrInvalidDimensions is returned for a floor with zero or negative size
	ErrInvalidDimensions = errors.New("floor dimensions must be positive")
	// ErrCellSizeMisaligned is returned when the cell size does not divide the floor evenly
	ErrCellSizeMisaligned = errors.New("cell size must evenly divide floor width and height")
)

// Source is an emitter contributing to the signal grid
type Source struct {
	X     float64
	Y     float64
	Power float64
	Band  models.Band
}

// SourcesFrom converts emitter estimates to grid sources
func SourcesFrom(estimates []models.EstimatedEmitterLocation) []Source {
	sources := make([]Source, len(estimates))
	for i, e := range estimates {
		sources[i] = Source{X: e.X, Y: e.Y, Power: e.RepresentativePower, Band: e.Band}
	}
	return sources
}

// RowFunc is called after each grid row completes with the number of rows
// done and the total row count.
type RowFunc func(done, total int)

// Grid holds the strongest predicted signal per cell. Cells without a usable
// signal hold NaN.
type Grid struct {
	Width    int
	Height   int
	CellSize int
	Cols     int
	Rows     int
	cells    []float64
}

// At returns the signal of a cell, NaN when the cell has no data
func (g *Grid) At(col, row int) float64 {
	return g.cells[row*g.Cols+col]
}

// HasData reports whether a cell carries a signal value
func (g *Grid) HasData(col, row int) bool {
	return !math.IsNaN(g.At(col, row))
}

// Builder rasterises sources into a Grid
type Builder struct {
	settings pathloss.Settings
	cellSize int
}

// NewBuilder creates a grid builder for a path-loss calibration and cell size
func NewBuilder(settings pathloss.Settings, cellSize int) *Builder {
	return &Builder{settings: settings, cellSize: cellSize}
}

// Build evaluates every cell against every source. The context is checked
// between rows; onRow, when set, is invoked after each row.
func (b *Builder) Build(ctx context.Context, floor models.FloorSpec, sources []Source, onRow RowFunc) (*Grid, error) {
	if floor.Width <= 0 || floor.Height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, floor.Width, floor.Height)
	}
	if b.cellSize <= 0 || floor.Width%b.cellSize != 0 || floor.Height%b.cellSize != 0 {
		return nil, fmt.Errorf("%w: %d for %dx%d", ErrCellSizeMisaligned, b.cellSize, floor.Width, floor.Height)
	}

	model, err := pathloss.NewModel(b.settings, floor.Width)
	if err != nil {
		return nil, fmt.Errorf("failed to calibrate path-loss model: %w", err)
	}

	cs := b.cellSize
	grid := &Grid{
		Width:    floor.Width,
		Height:   floor.Height,
		CellSize: cs,
		Cols:     floor.Width / cs,
		Rows:     floor.Height / cs,
	}
	grid.cells = make([]float64, grid.Cols*grid.Rows)

	minSignal := b.settings.MinDBm
	for row := 0; row < grid.Rows; row++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		y := float64(row*cs + cs/2)
		for col := 0; col < grid.Cols; col++ {
			cell := orb.Point{float64(col*cs + cs/2), y}
			strongest := math.Inf(-1)
			for _, src := range sources {
				d := planar.Distance(cell, orb.Point{src.X, src.Y})
				if s := model.Predict(d, src.Band, src.Power); s > strongest {
					strongest = s
				}
			}
			if strongest > minSignal {
				grid.cells[row*grid.Cols+col] = strongest
			} else {
				grid.cells[row*grid.Cols+col] = math.NaN()
			}
		}

		if onRow != nil {
			onRow(row+1, grid.Rows)
		}
	}

	return grid, nil
}

// AlignedCellSize returns the largest cell size not above preferred that
// divides both dimensions evenly.
func AlignedCellSize(width, height, preferred int) int {
	if width <= 0 || height <= 0 || preferred <= 1 {
		return 1
	}
	g := gcd(width, height)
	for cs := min(preferred, g); cs > 1; cs-- {
		if g%cs == 0 {
			return cs
		}
	}
	return 1
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
