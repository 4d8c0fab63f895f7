package clahe

import "fmt"

// Region says how many neighbouring tables contribute to a pixel.
type Region uint8

const (
	// NoInterp uses only the pixel's own tile (image corners).
	NoInterp Region = iota
	// EdgeLerpY blends with the tile above or below (left and right borders).
	EdgeLerpY
	// EdgeLerpX blends with the tile left or right (top and bottom borders).
	EdgeLerpX
	// Bilinear blends the four surrounding tiles.
	Bilinear
)

func (r Region) String() string {
	switch r {
	case NoInterp:
		return "none"
	case EdgeLerpY:
		return "edge-y"
	case EdgeLerpX:
		return "edge-x"
	case Bilinear:
		return "bilinear"
	}
	return fmt.Sprintf("Region(%d)", uint8(r))
}

// Classify selects the interpolation region for pixel (px, py) inside tile
// (tx, ty) of a tilesX by tilesY grid. Pixels in the outer half of a border
// tile never reach across the image edge.
func Classify(tx, ty, px, py, tilesX, tilesY int) Region {
	borderX := (tx == 0 && px < HalfTileSize) || (tx == tilesX-1 && px >= HalfTileSize)
	borderY := (ty == 0 && py < HalfTileSize) || (ty == tilesY-1 && py >= HalfTileSize)
	switch {
	case borderX && borderY:
		return NoInterp
	case borderX:
		return EdgeLerpY
	case borderY:
		return EdgeLerpX
	}
	return Bilinear
}

// lerpDirection is the tile offset of the neighbour along one axis.
func lerpDirection(i int) int {
	if i < HalfTileSize {
		return -1
	}
	return 1
}

// lerpWeight is the weight of the home tile along one axis: 1.0 at the tile
// centre, falling to 0.5 at the boundary shared with the neighbour.
func lerpWeight(i int) float32 {
	if i < HalfTileSize {
		return (halfTileSizeF + float32(i)) / tileSizeF
	}
	return (1.5*tileSizeF - float32(i)) / tileSizeF
}

// mixF returns x*a + y*(1-a). The conversions forbid a fused multiply-add.
func mixF(x, y, a float32) float32 {
	return float32(x*a) + float32(y*(1-a))
}

func mixU8(x, y uint8, a float32) uint8 {
	return uint8(mixF(float32(x), float32(y), a))
}

// Interpolate remaps every pixel of img through the tables of its
// neighbouring tiles and returns a new image.
func Interpolate(img *Image, tables []Table) (*Image, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}
	if len(tables) != img.Tiles() {
		return nil, fmt.Errorf("%w: have %d, want %d", ErrTableCount, len(tables), img.Tiles())
	}
	out := NewImage(img.Width, img.Height)
	interpolateRows(img, tables, out, 0, img.Height)
	return out, nil
}

// interpolateRows fills output rows [y0, y1).
func interpolateRows(img *Image, tables []Table, out *Image, y0, y1 int) {
	tilesX, tilesY := img.TilesX(), img.TilesY()
	for y := y0; y < y1; y++ {
		ty, py := y/TileSize, y%TileSize
		row := y * img.Width
		for x := 0; x < img.Width; x++ {
			tx, px := x/TileSize, x%TileSize
			out.Pix[row+x] = interpolatePixel(tables, img.Pix[row+x], tx, ty, px, py, tilesX, tilesY)
		}
	}
}

func interpolatePixel(tables []Table, pixel uint8, tx, ty, px, py, tilesX, tilesY int) uint8 {
	home := ty*tilesX + tx
	switch Classify(tx, ty, px, py, tilesX, tilesY) {
	case NoInterp:
		return tables[home][pixel]
	case EdgeLerpY:
		away := (ty+lerpDirection(py))*tilesX + tx
		return mixU8(tables[home][pixel], tables[away][pixel], lerpWeight(py))
	case EdgeLerpX:
		away := ty*tilesX + tx + lerpDirection(px)
		return mixU8(tables[home][pixel], tables[away][pixel], lerpWeight(px))
	}
	dx, dy := lerpDirection(px), lerpDirection(py)
	wx := lerpWeight(px)
	homeRow := mixU8(tables[home][pixel], tables[home+dx][pixel], wx)
	awayHome := home + dy*tilesX
	awayRow := mixU8(tables[awayHome][pixel], tables[awayHome+dx][pixel], wx)
	return uint8(mixF(float32(homeRow), float32(awayRow), lerpWeight(py)))
}
