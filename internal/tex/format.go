// Package tex holds multi-slice texture images and the stages around block
// compression: loading, pixel format conversion, mipmap generation, the
// generic BC1/BC3/BC5 compressor and DDS serialization.
package tex

import (
	"fmt"
	"math/bits"
)

// Format is a DXGI_FORMAT value.
type Format uint32

const (
	FormatUnknown           Format = 0
	FormatR32G32B32A32Float Format = 2
	FormatR16G16B16A16Float Format = 10
	FormatR16G16B16A16UNorm Format = 11
	FormatR8G8B8A8UNorm     Format = 28
	FormatR8G8B8A8UNormSRGB Format = 29
	FormatBC1UNorm          Format = 71
	FormatBC1UNormSRGB      Format = 72
	FormatBC2UNorm          Format = 74
	FormatBC3UNorm          Format = 77
	FormatBC3UNormSRGB      Format = 78
	FormatBC4UNorm          Format = 80
	FormatBC5UNorm          Format = 83
	FormatB8G8R8A8UNorm     Format = 87
	FormatBC6HUF16          Format = 95
	FormatBC7UNorm          Format = 98
	FormatBC7UNormSRGB      Format = 99
)

type formatInfo struct {
	name       string
	bits       int // bits per pixel, 0 for block formats
	blockBytes int
	srgb       bool
}

var formats = map[Format]formatInfo{
	FormatR32G32B32A32Float: {name: "R32G32B32A32_FLOAT", bits: 128},
	FormatR16G16B16A16Float: {name: "R16G16B16A16_FLOAT", bits: 64},
	FormatR16G16B16A16UNorm: {name: "R16G16B16A16_UNORM", bits: 64},
	FormatR8G8B8A8UNorm:     {name: "R8G8B8A8_UNORM", bits: 32},
	FormatR8G8B8A8UNormSRGB: {name: "R8G8B8A8_UNORM_SRGB", bits: 32, srgb: true},
	FormatB8G8R8A8UNorm:     {name: "B8G8R8A8_UNORM", bits: 32},
	FormatBC1UNorm:          {name: "BC1_UNORM", blockBytes: 8},
	FormatBC1UNormSRGB:      {name: "BC1_UNORM_SRGB", blockBytes: 8, srgb: true},
	FormatBC2UNorm:          {name: "BC2_UNORM", blockBytes: 16},
	FormatBC3UNorm:          {name: "BC3_UNORM", blockBytes: 16},
	FormatBC3UNormSRGB:      {name: "BC3_UNORM_SRGB", blockBytes: 16, srgb: true},
	FormatBC4UNorm:          {name: "BC4_UNORM", blockBytes: 8},
	FormatBC5UNorm:          {name: "BC5_UNORM", blockBytes: 16},
	FormatBC6HUF16:          {name: "BC6H_UF16", blockBytes: 16},
	FormatBC7UNorm:          {name: "BC7_UNORM", blockBytes: 16},
	FormatBC7UNormSRGB:      {name: "BC7_UNORM_SRGB", blockBytes: 16, srgb: true},
}

func (f Format) String() string {
	if fi, ok := formats[f]; ok {
		return fi.name
	}
	return fmt.Sprintf("UNKNOWN(%d)", uint32(f))
}

// Known reports whether f is in the supported format table.
func (f Format) Known() bool {
	_, ok := formats[f]
	return ok
}

// Compressed reports whether f is a 4×4 block format.
func (f Format) Compressed() bool { return formats[f].blockBytes > 0 }

// BitsPerPixel returns the pixel size of an uncompressed format, 0 otherwise.
func (f Format) BitsPerPixel() int { return formats[f].bits }

// BytesPerPixel returns BitsPerPixel/8.
func (f Format) BytesPerPixel() int { return formats[f].bits / 8 }

// BlockBytes returns the compressed size of one 4×4 block, 0 otherwise.
func (f Format) BlockBytes() int { return formats[f].blockBytes }

// SRGB reports whether f stores sRGB-encoded color.
func (f Format) SRGB() bool { return formats[f].srgb }

// ComputePitch returns the row and slice pitch of one width×height slice.
// Block formats count rows of blocks.
func ComputePitch(f Format, width, height int) (rowPitch, slicePitch int) {
	if bb := f.BlockBytes(); bb > 0 {
		bw := max(1, (width+3)/4)
		bh := max(1, (height+3)/4)
		return bw * bb, bw * bh * bb
	}
	rowPitch = (width*f.BitsPerPixel() + 7) / 8
	return rowPitch, rowPitch * height
}

// CountMips returns the length of a full chain down to 1×1(×1).
func CountMips(width, height, depth int) int {
	m := max(width, height, depth, 1)
	return bits.Len(uint(m))
}

// mipDim returns the size of dimension v at level mip.
func mipDim(v, mip int) int {
	return max(1, v>>mip)
}
