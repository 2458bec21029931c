package tex

import (
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

var (
	ErrMipLevels = errors.New("tex: invalid mip level count")
	ErrVolume    = errors.New("tex: wrong entry point for volume textures")
)

// GenerateMips builds a chain of levels mips from the top level of each item
// of a 1D, 2D, array or cube image. levels 0 means a full chain to 1×1.
func GenerateMips(src *Image, levels int) (*Image, error) {
	if src.IsVolume() {
		return nil, fmt.Errorf("generate mips: %w: use GenerateMips3D", ErrVolume)
	}
	return generateMips(src, levels)
}

// GenerateMips3D builds a mip chain for a volume texture, halving depth as
// well as width and height.
func GenerateMips3D(src *Image, levels int) (*Image, error) {
	if !src.IsVolume() {
		return nil, fmt.Errorf("generate mips: %w: %s texture", ErrVolume, src.Dimension)
	}
	return generateMips(src, levels)
}

func generateMips(src *Image, levels int) (*Image, error) {
	if src.Format.Compressed() {
		return nil, fmt.Errorf("generate mips: %w", ErrCompressedFormat)
	}
	full := CountMips(src.Width, src.Height, src.Depth)
	if levels == 0 {
		levels = full
	}
	if levels < 0 || levels > full {
		return nil, fmt.Errorf("%w: %d (max %d for %dx%dx%d)", ErrMipLevels, levels, full, src.Width, src.Height, src.Depth)
	}

	meta := src.Metadata
	meta.MipLevels = levels
	dst, err := New(meta)
	if err != nil {
		return nil, fmt.Errorf("generate mips: %w", err)
	}

	for item := 0; item < dst.Items(); item++ {
		for z := 0; z < dst.DepthAt(0); z++ {
			copySlice(dst.Slice(0, item, z), src.Slice(0, item, z))
		}
		for mip := 1; mip < levels; mip++ {
			if dst.IsVolume() {
				downsampleVolume(dst, mip)
				continue
			}
			downsample2D(dst.Slice(mip, item, 0), dst.Slice(mip-1, item, 0))
		}
	}
	return dst, nil
}

func copySlice(dst, src *Slice) {
	n := min(dst.RowPitch, src.RowPitch)
	for y := 0; y < dst.Height; y++ {
		copy(dst.Pix[y*dst.RowPitch:y*dst.RowPitch+n], src.Pix[y*src.RowPitch:])
	}
}

// downsample2D fills dst from the level above. 8-bit formats go through
// imaging's box filter; wider formats are averaged in float.
func downsample2D(dst, src *Slice) {
	if src.Format.BitsPerPixel() == 32 {
		in := &image.NRGBA{
			Pix:    src.Pix,
			Stride: src.RowPitch,
			Rect:   image.Rect(0, 0, src.Width, src.Height),
		}
		out := imaging.Resize(in, dst.Width, dst.Height, imaging.Box)
		for y := 0; y < dst.Height; y++ {
			copy(dst.Pix[y*dst.RowPitch:(y+1)*dst.RowPitch], out.Pix[y*out.Stride:])
		}
		return
	}

	bpp := src.Format.BytesPerPixel()
	for y := 0; y < dst.Height; y++ {
		y0, y1 := min(2*y, src.Height-1), min(2*y+1, src.Height-1)
		for x := 0; x < dst.Width; x++ {
			x0, x1 := min(2*x, src.Width-1), min(2*x+1, src.Width-1)
			var sum [4]float32
			for _, p := range [4][2]int{{x0, y0}, {x1, y0}, {x0, y1}, {x1, y1}} {
				v := loadPixel(src.Format, src.Pix[p[1]*src.RowPitch+p[0]*bpp:])
				for c := range sum {
					sum[c] += v[c]
				}
			}
			for c := range sum {
				sum[c] /= 4
			}
			storePixel(dst.Format, dst.Pix[y*dst.RowPitch+x*bpp:], sum)
		}
	}
}

// downsampleVolume fills every depth slice of level mip with a 2×2×2 box
// filter over level mip-1.
func downsampleVolume(img *Image, mip int) {
	bpp := img.Format.BytesPerPixel()
	_, _, sd := img.MipSize(mip - 1)
	w, h, d := img.MipSize(mip)
	for z := 0; z < d; z++ {
		z0, z1 := min(2*z, sd-1), min(2*z+1, sd-1)
		s0, s1 := img.Slice(mip-1, 0, z0), img.Slice(mip-1, 0, z1)
		dst := img.Slice(mip, 0, z)
		for y := 0; y < h; y++ {
			y0, y1 := min(2*y, s0.Height-1), min(2*y+1, s0.Height-1)
			for x := 0; x < w; x++ {
				x0, x1 := min(2*x, s0.Width-1), min(2*x+1, s0.Width-1)
				var sum [4]float32
				for _, s := range []*Slice{s0, s1} {
					for _, p := range [4][2]int{{x0, y0}, {x1, y0}, {x0, y1}, {x1, y1}} {
						v := loadPixel(img.Format, s.Pix[p[1]*s.RowPitch+p[0]*bpp:])
						for c := range sum {
							sum[c] += v[c]
						}
					}
				}
				for c := range sum {
					sum[c] /= 8
				}
				storePixel(img.Format, dst.Pix[y*dst.RowPitch+x*bpp:], sum)
			}
		}
	}
}
