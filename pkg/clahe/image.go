// Package clahe implements tile-based contrast-limited adaptive histogram
// equalization for single-channel 8-bit images.
//
// The transform runs as four stages with a hard barrier between each:
//
//	hists, mode, err := clahe.BuildHistograms(img)         // 1. tile histograms
//	limited := clahe.LimitHistograms(hists)                // 2. contrast limiting
//	tables, err := clahe.TablesFromLimited(hists, limited) // 3. prefix sums and remap tables
//	out, err := clahe.Interpolate(img, tables)             // 4. interpolation
//
// Every stage is a pure function over its inputs, so each can be run or
// replaced independently. Engine wires the stages together and can spread
// them over a worker pool. Its Timings report stages 2 and 3 together as
// Stage2 and interpolation as Stage3.
package clahe

import "fmt"

// Image is a single-channel, row-major 8-bit image with no row padding.
type Image struct {
	Pix    []uint8
	Width  int
	Height int
}

// NewImage allocates a zeroed image.
func NewImage(width, height int) *Image {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Image{
		Pix:    make([]uint8, width*height),
		Width:  width,
		Height: height,
	}
}

// TilesX returns the number of tile columns.
func (m *Image) TilesX() int { return m.Width / TileSize }

// TilesY returns the number of tile rows.
func (m *Image) TilesY() int { return m.Height / TileSize }

// Tiles returns the total number of tiles in the grid.
func (m *Image) Tiles() int { return m.TilesX() * m.TilesY() }

// Clone returns a deep copy of the image.
func (m *Image) Clone() *Image {
	if m == nil {
		return nil
	}
	out := &Image{Pix: make([]uint8, len(m.Pix)), Width: m.Width, Height: m.Height}
	copy(out.Pix, m.Pix)
	return out
}

// Validate checks the preconditions every stage relies on.
func (m *Image) Validate() error {
	if m == nil || m.Width <= 0 || m.Height <= 0 {
		return ErrEmptyImage
	}
	if len(m.Pix) != m.Width*m.Height {
		return fmt.Errorf("%w: have %d bytes, want %dx%d", ErrBufferSize, len(m.Pix), m.Width, m.Height)
	}
	if m.Width%TileSize != 0 || m.Height%TileSize != 0 {
		return fmt.Errorf("%w: %dx%d with tile size %d", ErrTileAlignment, m.Width, m.Height, TileSize)
	}
	return nil
}

// tileOffset is the index of the top-left pixel of tile (tx, ty).
func (m *Image) tileOffset(tx, ty int) int {
	return ty*TileSize*m.Width + tx*TileSize
}
