package tex

import (
	"errors"
	"fmt"
)

// Dimension is a DDS resource dimension.
type Dimension uint32

const (
	Texture1D Dimension = 2
	Texture2D Dimension = 3
	Texture3D Dimension = 4
)

func (d Dimension) String() string {
	switch d {
	case Texture1D:
		return "1D"
	case Texture2D:
		return "2D"
	case Texture3D:
		return "3D"
	}
	return fmt.Sprintf("Dimension(%d)", uint32(d))
}

// MiscTextureCube marks a 2D array whose items are cube faces.
const MiscTextureCube = 0x4

const (
	// maxImageBytes caps a single allocation.
	maxImageBytes = 1 << 34
	// maxExtent bounds every dimension and the array size.
	maxExtent = 1 << 16
)

var (
	ErrInvalidMetadata = errors.New("tex: invalid metadata")
	ErrTooLarge        = errors.New("tex: image too large")
)

// Metadata describes the shape and format of an Image.
type Metadata struct {
	Width     int
	Height    int
	Depth     int
	ArraySize int
	MipLevels int
	MiscFlags uint32
	Format    Format
	Dimension Dimension
}

// IsCube reports whether the items are cube faces.
func (m Metadata) IsCube() bool {
	return m.Dimension == Texture2D && m.MiscFlags&MiscTextureCube != 0
}

// IsVolume reports whether the image is a 3D texture.
func (m Metadata) IsVolume() bool { return m.Dimension == Texture3D }

// MipSize returns the width, height and depth of level mip.
func (m Metadata) MipSize(mip int) (w, h, d int) {
	return mipDim(m.Width, mip), mipDim(m.Height, mip), mipDim(m.Depth, mip)
}

// Validate checks the shape invariants of m.
func (m Metadata) Validate() error {
	bad := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalidMetadata, fmt.Sprintf(format, args...))
	}
	if !m.Format.Known() {
		return bad("unsupported format %s", m.Format)
	}
	if m.Width <= 0 || m.Height <= 0 || m.Depth <= 0 || m.ArraySize <= 0 {
		return bad("dimensions %dx%dx%d, array %d", m.Width, m.Height, m.Depth, m.ArraySize)
	}
	if max(m.Width, m.Height, m.Depth, m.ArraySize) > maxExtent {
		return bad("dimensions %dx%dx%d, array %d exceed %d", m.Width, m.Height, m.Depth, m.ArraySize, maxExtent)
	}
	if m.MipLevels <= 0 || m.MipLevels > CountMips(m.Width, m.Height, m.Depth) {
		return bad("%d mip levels for %dx%dx%d", m.MipLevels, m.Width, m.Height, m.Depth)
	}
	switch m.Dimension {
	case Texture1D:
		if m.Height != 1 || m.Depth != 1 {
			return bad("1D texture with height %d, depth %d", m.Height, m.Depth)
		}
	case Texture2D:
		if m.Depth != 1 {
			return bad("2D texture with depth %d", m.Depth)
		}
		if m.IsCube() && m.ArraySize%6 != 0 {
			return bad("cube map with %d faces", m.ArraySize)
		}
	case Texture3D:
		if m.ArraySize != 1 {
			return bad("volume texture with array size %d", m.ArraySize)
		}
	default:
		return bad("dimension %s", m.Dimension)
	}
	return nil
}

// Slice is one 2D surface of an Image.
type Slice struct {
	Width      int
	Height     int
	Format     Format
	RowPitch   int
	SlicePitch int
	Pix        []byte
}

// Image is a set of slices indexed by mip level, array item and depth slice,
// backed by one contiguous buffer in DDS order.
type Image struct {
	Metadata
	slices []Slice
	pix    []byte
}

// ByteSize returns the number of pixel bytes an image of this shape holds.
func (m Metadata) ByteSize() int64 {
	var total int64
	m.eachSlice(func(w, h int) {
		_, sp := ComputePitch(m.Format, w, h)
		total += int64(sp)
	})
	return total
}

// eachSlice calls fn with the extent of every slice in DDS order.
func (m Metadata) eachSlice(fn func(w, h int)) {
	if m.IsVolume() {
		for mip := 0; mip < m.MipLevels; mip++ {
			w, h, d := m.MipSize(mip)
			for z := 0; z < d; z++ {
				fn(w, h)
			}
		}
		return
	}
	for item := 0; item < m.ArraySize; item++ {
		for mip := 0; mip < m.MipLevels; mip++ {
			w, h, _ := m.MipSize(mip)
			fn(w, h)
		}
	}
}

// New allocates a zeroed image of the given shape.
func New(meta Metadata) (*Image, error) {
	if err := meta.Validate(); err != nil {
		return nil, err
	}

	var total int64
	var shapes []Slice
	meta.eachSlice(func(w, h int) {
		rp, sp := ComputePitch(meta.Format, w, h)
		shapes = append(shapes, Slice{Width: w, Height: h, Format: meta.Format, RowPitch: rp, SlicePitch: sp})
		total += int64(sp)
	})
	if total > maxImageBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, total)
	}

	img := &Image{Metadata: meta, slices: shapes, pix: make([]byte, total)}
	off := 0
	for i := range img.slices {
		sp := img.slices[i].SlicePitch
		img.slices[i].Pix = img.pix[off : off+sp : off+sp]
		off += sp
	}
	return img, nil
}

// Slice returns the surface at (mip, item, z), or nil when out of range.
// For volumes item must be 0; otherwise z must be 0.
func (img *Image) Slice(mip, item, z int) *Slice {
	if mip < 0 || mip >= img.MipLevels {
		return nil
	}
	if img.IsVolume() {
		if item != 0 {
			return nil
		}
		_, _, d := img.MipSize(mip)
		if z < 0 || z >= d {
			return nil
		}
		idx := 0
		for m := 0; m < mip; m++ {
			_, _, dm := img.MipSize(m)
			idx += dm
		}
		return &img.slices[idx+z]
	}
	if z != 0 || item < 0 || item >= img.ArraySize {
		return nil
	}
	return &img.slices[item*img.MipLevels+mip]
}

// Slices returns every slice in DDS order.
func (img *Image) Slices() []Slice { return img.slices }

// Pixels returns the backing buffer in DDS order.
func (img *Image) Pixels() []byte { return img.pix }

// Items returns the number of array items (1 for volumes).
func (img *Image) Items() int {
	if img.IsVolume() {
		return 1
	}
	return img.ArraySize
}

// DepthAt returns the number of depth slices at level mip.
func (img *Image) DepthAt(mip int) int {
	if !img.IsVolume() {
		return 1
	}
	_, _, d := img.MipSize(mip)
	return d
}
