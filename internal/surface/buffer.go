package surface

import "fmt"

type storage int

const (
	storageNone storage = iota
	storageOwned
	storageBorrowed
)

// Buffer is a pixel buffer that either owns its memory or borrows a caller's.
// Adopting new storage always drops the previous one, so a Buffer is never
// both at once.
type Buffer struct {
	kind   storage
	pix    []byte
	width  int
	height int
	stride int
	bpp    int
}

// Wrap returns a Buffer borrowing pix.
func Wrap(pix []byte, width, height, stride, bytesPerPixel int) (*Buffer, error) {
	b := &Buffer{}
	if err := b.Wrap(pix, width, height, stride, bytesPerPixel); err != nil {
		return nil, err
	}
	return b, nil
}

// Allocate returns a Buffer owning stride*height bytes.
func Allocate(width, height, stride, bitsPerPixel int) (*Buffer, error) {
	b := &Buffer{}
	if err := b.Allocate(width, height, stride, bitsPerPixel); err != nil {
		return nil, err
	}
	return b, nil
}

// Wrap releases any owned memory and borrows pix. Nothing is allocated.
func (b *Buffer) Wrap(pix []byte, width, height, stride, bytesPerPixel int) error {
	if err := checkView(pix, width, height, stride, bytesPerPixel); err != nil {
		return err
	}
	b.Reset()
	b.kind = storageBorrowed
	b.pix = pix
	b.width = width
	b.height = height
	b.stride = stride
	b.bpp = bytesPerPixel
	return nil
}

// Allocate releases any previous storage and takes ownership of a fresh
// zeroed buffer of stride*height bytes.
func (b *Buffer) Allocate(width, height, stride, bitsPerPixel int) error {
	bpp := bitsPerPixel >> 3
	if bpp <= 0 {
		return ErrPixelSize
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("surface: invalid dimensions %dx%d", width, height)
	}
	if stride < width*bpp {
		return fmt.Errorf("surface: stride %d shorter than %d pixels of %d bytes", stride, width, bpp)
	}
	size := stride * height
	if size/height != stride {
		return fmt.Errorf("surface: %dx%d buffer overflows", stride, height)
	}
	b.Reset()
	b.kind = storageOwned
	b.pix = make([]byte, size)
	b.width = width
	b.height = height
	b.stride = stride
	b.bpp = bpp
	return nil
}

// Reset drops any storage and zeroes every field.
func (b *Buffer) Reset() {
	*b = Buffer{}
}

// CopyFrom copies the region shared with src, then fills the columns right of
// src and the rows below it from the last 4×4 block of b itself. Whole rows
// are replicated after the columns, so corners carry both passes.
func (b *Buffer) CopyFrom(src *Buffer) error {
	if b.width < BlockDim || b.height < BlockDim {
		return fmt.Errorf("%w: %dx%d", ErrDegenerate, b.width, b.height)
	}
	if !src.Valid() {
		return fmt.Errorf("%w: source has no storage", ErrPixelSize)
	}
	if src.bpp != b.bpp {
		return fmt.Errorf("%w: copy %d-byte pixels into %d-byte buffer", ErrPixelSize, src.bpp, b.bpp)
	}

	width := min(b.width, src.width)
	height := min(b.height, src.height)
	rowBytes := width * b.bpp

	if b.stride == src.stride && b.width == src.width {
		n := viewLen(width, height, b.stride, b.bpp)
		copy(b.pix[:n], src.pix[:n])
	} else {
		for y := 0; y < height; y++ {
			d := y * b.stride
			s := y * src.stride
			copy(b.pix[d:d+rowBytes], src.pix[s:s+rowBytes])
		}
	}

	if width < b.width {
		base := b.width - BlockDim
		for y := 0; y < height; y++ {
			for x := width; x < b.width; x++ {
				sx := base + replicateOffset[x&3]
				d := b.PixelOffset(x, y)
				s := b.PixelOffset(sx, y)
				copy(b.pix[d:d+b.bpp], b.pix[s:s+b.bpp])
			}
		}
	}

	base := b.height - BlockDim
	for y := height; y < b.height; y++ {
		sy := base + replicateOffset[y&3]
		d := y * b.stride
		s := sy * b.stride
		copy(b.pix[d:d+b.stride], b.pix[s:s+b.stride])
	}
	return nil
}

// replicateOffset picks, per position inside the last block, which of that
// block's first two columns (or rows) supplies the padding.
var replicateOffset = [4]int{0, 0, 0, 1}

// Width returns the width in pixels.
func (b *Buffer) Width() int { return b.width }

// Height returns the height in pixels.
func (b *Buffer) Height() int { return b.height }

// BytesPerRow returns the row pitch.
func (b *Buffer) BytesPerRow() int { return b.stride }

// BytesPerPixel returns the pixel size.
func (b *Buffer) BytesPerPixel() int { return b.bpp }

// Pix returns the underlying bytes, owned or borrowed.
func (b *Buffer) Pix() []byte { return b.pix }

// Owned reports whether b owns its memory.
func (b *Buffer) Owned() bool { return b.kind == storageOwned }

// Valid reports whether b holds any storage.
func (b *Buffer) Valid() bool { return b.kind != storageNone }

// PixelOffset returns the byte offset of pixel (x, y). It does not check
// bounds; callers stay inside Width and Height.
func (b *Buffer) PixelOffset(x, y int) int {
	return y*b.stride + x*b.bpp
}

// Descriptor returns a view of b for an encoder.
func (b *Buffer) Descriptor() Descriptor {
	return Descriptor{Pix: b.pix, Width: b.width, Height: b.height, Stride: b.stride}
}
