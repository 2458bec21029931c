package encoder

import (
	"github.com/kikuuuty/ddsconv/internal/surface"
)

// BlockEncoder compresses a block-aligned surface.
type BlockEncoder interface {
	// Target returns the compressed format the encoder writes.
	Target() Target

	// Encode compresses every 4×4 block of src into dst, one row of blocks
	// after another. src width and height must be multiples of 4 and dst
	// must hold BlocksSize(src.Width, src.Height, Target().BlockBytes())
	// bytes. Encoding cannot fail.
	Encode(src surface.Descriptor, dst []byte)
}
