// Package surface provides the pixel views handed to block encoders and the
// block-pad buffer that rounds a slice up to whole 4×4 blocks.
package surface

import (
	"errors"
	"fmt"
)

// BlockDim is the edge length of a compression block.
const BlockDim = 4

var (
	// ErrDegenerate is returned when a padded buffer is smaller than one block.
	ErrDegenerate = errors.New("surface: buffer smaller than a 4x4 block")
	// ErrPixelSize is returned for zero or mismatched bytes-per-pixel.
	ErrPixelSize = errors.New("surface: invalid bytes per pixel")
)

// Descriptor is a non-owning view over pixel rows. Encoders expect Width and
// Height to be multiples of BlockDim.
type Descriptor struct {
	Pix    []byte
	Width  int
	Height int
	Stride int
}

// Aligned reports whether both dimensions are whole blocks.
func (d Descriptor) Aligned() bool {
	return IsAligned(d.Width, d.Height)
}

// IsAligned reports whether width and height are multiples of BlockDim.
func IsAligned(width, height int) bool {
	return width%BlockDim == 0 && height%BlockDim == 0
}

// AlignUp rounds v up to the next multiple of BlockDim.
func AlignUp(v int) int {
	return (v + BlockDim - 1) &^ (BlockDim - 1)
}

// BlockCount returns the number of blocks needed to cover v pixels.
func BlockCount(v int) int {
	return (v + BlockDim - 1) / BlockDim
}

func viewLen(width, height, stride, bpp int) int {
	if height <= 0 {
		return 0
	}
	return stride*(height-1) + width*bpp
}

func checkView(pix []byte, width, height, stride, bpp int) error {
	if bpp <= 0 {
		return ErrPixelSize
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("surface: invalid dimensions %dx%d", width, height)
	}
	if stride < width*bpp {
		return fmt.Errorf("surface: stride %d shorter than %d pixels of %d bytes", stride, width, bpp)
	}
	if need := viewLen(width, height, stride, bpp); len(pix) < need {
		return fmt.Errorf("surface: buffer holds %d bytes, view needs %d", len(pix), need)
	}
	return nil
}
