package clahe

import "errors"

var (
	ErrEmptyImage     = errors.New("clahe: empty image")
	ErrTileAlignment  = errors.New("clahe: image dimensions are not a multiple of the tile size")
	ErrBufferSize     = errors.New("clahe: pixel buffer does not match image dimensions")
	ErrDegenerateTile = errors.New("clahe: tile too small for contrast limit")
	ErrHistogramCount = errors.New("clahe: histogram count does not match tile grid")
	ErrTableCount     = errors.New("clahe: table count does not match tile grid")
)
