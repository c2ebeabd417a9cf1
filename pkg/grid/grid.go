// Package grid stores the fixed-size tile map of a city.
package grid

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfBounds is returned for coordinates outside the grid.
	ErrOutOfBounds = errors.New("coordinate out of bounds")
	// ErrInvalidSize is returned when a grid would have no cells or more
	// than MaxCells.
	ErrInvalidSize = errors.New("grid dimensions must be positive")
	// ErrUnknownCategory is returned when a category name or value is not recognised.
	ErrUnknownCategory = errors.New("unknown tile category")
)

// MaxCells bounds the number of cells a grid may hold.
const MaxCells = 1 << 22

// Grid is a width×height array of tiles stored row-major in a flat buffer.
type Grid struct {
	width  int
	height int
	tiles  []Tile
}

// New creates a grid with every cell set to EmptyTile.
func New(width, height int) (*Grid, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	if width > MaxCells/height {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d cells", ErrInvalidSize, width, height, MaxCells)
	}
	tiles := make([]Tile, width*height)
	for i := range tiles {
		tiles[i] = EmptyTile
	}
	return &Grid{width: width, height: height, tiles: tiles}, nil
}

func (g *Grid) Width() int  { return g.width }
func (g *Grid) Height() int { return g.height }

// Len returns the number of cells.
func (g *Grid) Len() int { return len(g.tiles) }

// InBounds reports whether (x, y) addresses a cell.
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && x < g.width && y >= 0 && y < g.height
}

func (g *Grid) index(x, y int) (int, error) {
	if !g.InBounds(x, y) {
		return 0, fmt.Errorf("%w: (%d,%d) not in %dx%d", ErrOutOfBounds, x, y, g.width, g.height)
	}
	return y*g.width + x, nil
}

// Get returns a copy of the tile at (x, y).
func (g *Grid) Get(x, y int) (Tile, error) {
	i, err := g.index(x, y)
	if err != nil {
		return Tile{}, err
	}
	return g.tiles[i], nil
}

// Cell returns a pointer to the tile at (x, y) for in-place mutation.
func (g *Grid) Cell(x, y int) (*Tile, error) {
	i, err := g.index(x, y)
	if err != nil {
		return nil, err
	}
	return &g.tiles[i], nil
}

// Set overwrites the tile at (x, y).
func (g *Grid) Set(x, y int, t Tile) error {
	i, err := g.index(x, y)
	if err != nil {
		return err
	}
	g.tiles[i] = t
	return nil
}

// Reset clears the tile at (x, y) back to EmptyTile.
func (g *Grid) Reset(x, y int) error {
	return g.Set(x, y, EmptyTile)
}

// Each calls fn for every cell, row by row.
func (g *Grid) Each(fn func(x, y int, t Tile)) {
	for i, t := range g.tiles {
		fn(i%g.width, i/g.width, t)
	}
}

// Rect is an inclusive range of cells.
type Rect struct {
	MinX, MinY int
	MaxX, MaxY int
}

// Square returns the Chebyshev neighborhood of radius r around (cx, cy),
// clamped to the grid.
func (g *Grid) Square(cx, cy, r int) Rect {
	return Rect{
		MinX: max(0, cx-r),
		MinY: max(0, cy-r),
		MaxX: min(g.width-1, cx+r),
		MaxY: min(g.height-1, cy+r),
	}
}

// Count returns how many cells hold each category.
func (g *Grid) Count() map[Category]int {
	counts := make(map[Category]int, len(Categories))
	for _, t := range g.tiles {
		counts[t.Category]++
	}
	return counts
}

// Clone returns a deep copy.
func (g *Grid) Clone() *Grid {
	tiles := make([]Tile, len(g.tiles))
	copy(tiles, g.tiles)
	return &Grid{width: g.width, height: g.height, tiles: tiles}
}

// Equal reports whether both grids have the same size and tiles.
func (g *Grid) Equal(other *Grid) bool {
	if g == nil || other == nil {
		return g == other
	}
	if g.width != other.width || g.height != other.height {
		return false
	}
	for i := range g.tiles {
		if g.tiles[i] != other.tiles[i] {
			return false
		}
	}
	return true
}
