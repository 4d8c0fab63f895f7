package clahe

// Tile geometry and intensity range. These are fixed at compile time; the
// histogram code assumes 256 bins throughout.
const (
	TileSize     = 32
	HalfTileSize = TileSize / 2
	TilePixels   = TileSize * TileSize

	PixelRange = 256
	PixelMax   = 255

	// AbsoluteContrastLimit is the per-bin clip ceiling, 90% of a tile.
	AbsoluteContrastLimit = TilePixels * 9 / 10
)

const (
	tileSizeF     float32 = TileSize
	halfTileSizeF float32 = HalfTileSize
)
