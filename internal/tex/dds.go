package tex

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const (
	ddsMagic      = 0x20534444 // "DDS "
	ddsHeaderSize = 124
	ddsPFSize     = 32

	ddsdCaps        = 0x1
	ddsdHeight      = 0x2
	ddsdWidth       = 0x4
	ddsdPitch       = 0x8
	ddsdPixelFormat = 0x1000
	ddsdMipMapCount = 0x20000
	ddsdLinearSize  = 0x80000
	ddsdDepth       = 0x800000

	ddpfAlphaPixels = 0x1
	ddpfFourCC      = 0x4
	ddpfRGB         = 0x40

	ddscapsComplex = 0x8
	ddscapsTexture = 0x1000
	ddscapsMipMap  = 0x400000

	ddscaps2Cubemap  = 0x200
	ddscaps2AllFaces = 0xFC00
	ddscaps2Volume   = 0x200000
)

func fourCC(s string) uint32 {
	return uint32(s[0]) | uint32(s[1])<<8 | uint32(s[2])<<16 | uint32(s[3])<<24
}

var (
	fourCCDX10 = fourCC("DX10")

	// legacyFourCC maps the FourCC codes older writers use. D3DFMT values
	// stored in the FourCC field are listed by number.
	legacyFourCC = map[uint32]Format{
		fourCC("DXT1"): FormatBC1UNorm,
		fourCC("DXT2"): FormatBC2UNorm,
		fourCC("DXT3"): FormatBC2UNorm,
		fourCC("DXT4"): FormatBC3UNorm,
		fourCC("DXT5"): FormatBC3UNorm,
		fourCC("ATI1"): FormatBC4UNorm,
		fourCC("BC4U"): FormatBC4UNorm,
		fourCC("ATI2"): FormatBC5UNorm,
		fourCC("BC5U"): FormatBC5UNorm,
		36:             FormatR16G16B16A16UNorm,
		113:            FormatR16G16B16A16Float,
		116:            FormatR32G32B32A32Float,
	}

	ErrNotDDS         = errors.New("tex: not a DDS file")
	ErrUnsupportedDDS = errors.New("tex: unsupported DDS pixel format")
	ErrTruncatedDDS   = errors.New("tex: truncated DDS pixel data")
)

// DDSPixelFormat is the 32-byte DDS_PIXELFORMAT structure.
type DDSPixelFormat struct {
	Size        uint32
	Flags       uint32
	FourCC      uint32
	RGBBitCount uint32
	RBitMask    uint32
	GBitMask    uint32
	BBitMask    uint32
	ABitMask    uint32
}

// DDSHeader is the 124-byte DDS_HEADER that follows the magic.
type DDSHeader struct {
	Size              uint32
	Flags             uint32
	Height            uint32
	Width             uint32
	PitchOrLinearSize uint32
	Depth             uint32
	MipMapCount       uint32
	Reserved1         [11]uint32
	PixelFormat       DDSPixelFormat
	Caps              uint32
	Caps2             uint32
	Caps3             uint32
	Caps4             uint32
	Reserved2         uint32
}

// DDSHeaderDX10 is the extension present when the FourCC is "DX10".
type DDSHeaderDX10 struct {
	DXGIFormat        uint32
	ResourceDimension uint32
	MiscFlag          uint32
	ArraySize         uint32
	MiscFlags2        uint32
}

// ReadDDSHeader parses the magic and headers and returns the image shape.
// The DX10 extension is nil for legacy files.
func ReadDDSHeader(r io.Reader) (Metadata, *DDSHeader, *DDSHeaderDX10, error) {
	var magic uint32
	if err := binary.Read(r, binary.LittleEndian, &magic); err != nil {
		return Metadata{}, nil, nil, fmt.Errorf("read magic: %w", err)
	}
	if magic != ddsMagic {
		return Metadata{}, nil, nil, ErrNotDDS
	}
	var h DDSHeader
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return Metadata{}, nil, nil, fmt.Errorf("read header: %w", err)
	}
	if h.Size != ddsHeaderSize || h.PixelFormat.Size != ddsPFSize {
		return Metadata{}, nil, nil, fmt.Errorf("%w: header size %d", ErrNotDDS, h.Size)
	}

	meta := Metadata{
		Width:     int(h.Width),
		Height:    max(1, int(h.Height)),
		Depth:     1,
		ArraySize: 1,
		MipLevels: max(1, int(h.MipMapCount)),
		Dimension: Texture2D,
	}

	if h.PixelFormat.Flags&ddpfFourCC != 0 && h.PixelFormat.FourCC == fourCCDX10 {
		var ext DDSHeaderDX10
		if err := binary.Read(r, binary.LittleEndian, &ext); err != nil {
			return Metadata{}, nil, nil, fmt.Errorf("read dx10 header: %w", err)
		}
		meta.Format = Format(ext.DXGIFormat)
		meta.Dimension = Dimension(ext.ResourceDimension)
		meta.ArraySize = max(1, int(ext.ArraySize))
		meta.MiscFlags = ext.MiscFlag & MiscTextureCube
		switch meta.Dimension {
		case Texture1D:
			meta.Height = 1
		case Texture2D:
			if meta.IsCube() {
				meta.ArraySize *= 6
			}
		case Texture3D:
			meta.Depth = max(1, int(h.Depth))
		}
		if err := meta.Validate(); err != nil {
			return Metadata{}, nil, nil, err
		}
		return meta, &h, &ext, nil
	}

	f, err := legacyFormat(&h.PixelFormat)
	if err != nil {
		return Metadata{}, nil, nil, err
	}
	meta.Format = f
	switch {
	case h.Caps2&ddscaps2Volume != 0:
		meta.Dimension = Texture3D
		meta.Depth = max(1, int(h.Depth))
	case h.Caps2&ddscaps2Cubemap != 0:
		if h.Caps2&ddscaps2AllFaces != ddscaps2AllFaces {
			return Metadata{}, nil, nil, fmt.Errorf("%w: partial cube map", ErrUnsupportedDDS)
		}
		meta.ArraySize = 6
		meta.MiscFlags = MiscTextureCube
	}
	if err := meta.Validate(); err != nil {
		return Metadata{}, nil, nil, err
	}
	return meta, &h, nil, nil
}

func legacyFormat(pf *DDSPixelFormat) (Format, error) {
	if pf.Flags&ddpfFourCC != 0 {
		if f, ok := legacyFourCC[pf.FourCC]; ok {
			return f, nil
		}
		return 0, fmt.Errorf("%w: fourcc %#08x", ErrUnsupportedDDS, pf.FourCC)
	}
	if pf.Flags&ddpfRGB != 0 && pf.RGBBitCount == 32 {
		switch {
		case pf.RBitMask == 0xFF && pf.GBitMask == 0xFF00 && pf.BBitMask == 0xFF0000:
			return FormatR8G8B8A8UNorm, nil
		case pf.RBitMask == 0xFF0000 && pf.GBitMask == 0xFF00 && pf.BBitMask == 0xFF:
			return FormatB8G8R8A8UNorm, nil
		}
	}
	return 0, fmt.Errorf("%w: flags %#x, %d bits", ErrUnsupportedDDS, pf.Flags, pf.RGBBitCount)
}

// ReadDDS decodes a whole DDS stream. Readers that report their remaining
// length (bytes.Reader, strings.Reader) are checked against the declared
// size before the pixel buffer is allocated.
func ReadDDS(r io.Reader) (*Image, error) {
	meta, _, _, err := ReadDDSHeader(r)
	if err != nil {
		return nil, err
	}
	if lr, ok := r.(interface{ Len() int }); ok {
		if need := meta.ByteSize(); int64(lr.Len()) < need {
			return nil, fmt.Errorf("%w: %d bytes left, header declares %d", ErrTruncatedDDS, lr.Len(), need)
		}
	}
	img, err := New(meta)
	if err != nil {
		return nil, err
	}
	if _, err := io.ReadFull(r, img.pix); err != nil {
		return nil, fmt.Errorf("read pixel data: %w", err)
	}
	return img, nil
}

// needsDX10 reports whether img can only be described by the DX10 header.
func needsDX10(img *Image) bool {
	switch img.Format {
	case FormatBC1UNorm, FormatBC2UNorm, FormatBC3UNorm, FormatBC4UNorm, FormatBC5UNorm,
		FormatR8G8B8A8UNorm, FormatB8G8R8A8UNorm:
	default:
		return true
	}
	if img.Dimension == Texture1D {
		return true
	}
	if img.IsCube() {
		return img.ArraySize != 6
	}
	return img.ArraySize != 1
}

// legacyPixelFormat returns the pre-DX10 description of f.
func legacyPixelFormat(f Format) DDSPixelFormat {
	pf := DDSPixelFormat{Size: ddsPFSize}
	switch f {
	case FormatR8G8B8A8UNorm:
		pf.Flags = ddpfRGB | ddpfAlphaPixels
		pf.RGBBitCount = 32
		pf.RBitMask, pf.GBitMask, pf.BBitMask, pf.ABitMask = 0xFF, 0xFF00, 0xFF0000, 0xFF000000
	case FormatB8G8R8A8UNorm:
		pf.Flags = ddpfRGB | ddpfAlphaPixels
		pf.RGBBitCount = 32
		pf.RBitMask, pf.GBitMask, pf.BBitMask, pf.ABitMask = 0xFF0000, 0xFF00, 0xFF, 0xFF000000
	case FormatBC1UNorm:
		pf.Flags, pf.FourCC = ddpfFourCC, fourCC("DXT1")
	case FormatBC2UNorm:
		pf.Flags, pf.FourCC = ddpfFourCC, fourCC("DXT3")
	case FormatBC3UNorm:
		pf.Flags, pf.FourCC = ddpfFourCC, fourCC("DXT5")
	case FormatBC4UNorm:
		pf.Flags, pf.FourCC = ddpfFourCC, fourCC("BC4U")
	case FormatBC5UNorm:
		pf.Flags, pf.FourCC = ddpfFourCC, fourCC("BC5U")
	}
	return pf
}

// WriteDDS serializes img with a legacy header when one can describe it and
// a DX10 header otherwise.
func WriteDDS(w io.Writer, img *Image) error {
	top := img.Slice(0, 0, 0)
	h := DDSHeader{
		Size:        ddsHeaderSize,
		Flags:       ddsdCaps | ddsdHeight | ddsdWidth | ddsdPixelFormat,
		Height:      uint32(img.Height),
		Width:       uint32(img.Width),
		MipMapCount: uint32(img.MipLevels),
		Caps:        ddscapsTexture,
	}
	if img.Format.Compressed() {
		h.Flags |= ddsdLinearSize
		h.PitchOrLinearSize = uint32(top.SlicePitch)
	} else {
		h.Flags |= ddsdPitch
		h.PitchOrLinearSize = uint32(top.RowPitch)
	}
	if img.MipLevels > 1 {
		h.Flags |= ddsdMipMapCount
		h.Caps |= ddscapsComplex | ddscapsMipMap
	}
	switch {
	case img.IsVolume():
		h.Flags |= ddsdDepth
		h.Depth = uint32(img.Depth)
		h.Caps |= ddscapsComplex
		h.Caps2 |= ddscaps2Volume
	case img.IsCube():
		h.Caps |= ddscapsComplex
		h.Caps2 |= ddscaps2Cubemap | ddscaps2AllFaces
	}

	var ext *DDSHeaderDX10
	if needsDX10(img) {
		h.PixelFormat = DDSPixelFormat{Size: ddsPFSize, Flags: ddpfFourCC, FourCC: fourCCDX10}
		ext = &DDSHeaderDX10{
			DXGIFormat:        uint32(img.Format),
			ResourceDimension: uint32(img.Dimension),
			ArraySize:         uint32(img.ArraySize),
		}
		if img.IsCube() {
			ext.MiscFlag = MiscTextureCube
			ext.ArraySize = uint32(img.ArraySize / 6)
		}
	} else {
		h.PixelFormat = legacyPixelFormat(img.Format)
	}

	bw := bufio.NewWriter(w)
	if err := binary.Write(bw, binary.LittleEndian, uint32(ddsMagic)); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, &h); err != nil {
		return err
	}
	if ext != nil {
		if err := binary.Write(bw, binary.LittleEndian, ext); err != nil {
			return err
		}
	}
	if _, err := bw.Write(img.pix); err != nil {
		return err
	}
	return bw.Flush()
}
