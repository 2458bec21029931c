package pipeline

import (
	"fmt"
	"os"

	"github.com/kikuuuty/ddsconv/internal/encoder"
	"github.com/kikuuuty/ddsconv/internal/hasher"
	"github.com/kikuuuty/ddsconv/internal/report"
	"github.com/kikuuuty/ddsconv/internal/tex"
)

// processResult holds the result of converting a single source image.
type processResult struct {
	key  string
	file report.File
	err  error
}

// conversionStep is one tex.Convert call.
type conversionStep struct {
	format tex.Format
	filter tex.Filter
}

// workingFormat is the pixel format the block encoders for t read.
func workingFormat(t encoder.Target) tex.Format {
	if t.HDR() {
		return tex.FormatR16G16B16A16Float
	}
	return tex.FormatR8G8B8A8UNorm
}

// planConversion returns the conversions that bring a loaded image to the
// working format of t. Convert refuses identical formats, so an sRGB
// request on an image already in the working format goes through
// R32G32B32A32_FLOAT.
func planConversion(loaded tex.Format, t encoder.Target, srgb bool) []conversionStep {
	work := workingFormat(t)
	filter := tex.FilterDefault
	if srgb {
		filter = tex.FilterSRGBIn
	}
	switch {
	case loaded != work:
		return []conversionStep{{work, filter}}
	case srgb:
		return []conversionStep{
			{tex.FormatR32G32B32A32Float, tex.FilterSRGBIn},
			{work, tex.FilterDefault},
		}
	}
	return nil
}

// processFile runs load, convert, mipmap, compress and save for one input.
// A failure in any stage stops the file and is returned as a *StageError.
func (p *Pipeline) processFile(key, in, out string, slicePool int) processResult {
	result := processResult{key: key}
	fail := func(kind error, path string, err error) processResult {
		result.err = stageError(kind, path, err)
		return result
	}
	f := report.File{Input: in, Output: out}

	// Load.
	info, err := os.Stat(in)
	if err != nil {
		return fail(ErrLoad, in, err)
	}
	img, err := tex.Load(in)
	if err != nil {
		return fail(ErrLoad, in, err)
	}
	f.Source = shapeOf(img, info.Size())
	f.Stages = append(f.Stages, "load")
	p.logf("loaded %s: %dx%d %s %s, %d mips, %d items",
		key, img.Width, img.Height, img.Dimension, img.Format, img.MipLevels, img.ArraySize)

	// Convert.
	if steps := planConversion(img.Format, p.cfg.Target, p.cfg.SRGB); len(steps) > 0 {
		for _, step := range steps {
			if img, err = tex.Convert(img, step.format, step.filter); err != nil {
				return fail(ErrConvert, in, err)
			}
		}
		f.Stages = append(f.Stages, "convert")
		p.logf("converted %s to %s", key, img.Format)
	}

	// Mipmaps.
	if p.cfg.GenerateMips {
		generate := tex.GenerateMips
		if img.IsVolume() {
			generate = tex.GenerateMips3D
		}
		if img, err = generate(img, p.cfg.MipLevels); err != nil {
			return fail(ErrMipmap, in, err)
		}
		f.Stages = append(f.Stages, "mipmap")
		p.logf("generated %d mip levels for %s", img.MipLevels, key)
	}

	// Compress.
	dst, slices, err := p.compress(img, slicePool)
	if err != nil {
		return fail(ErrCompress, in, err)
	}
	f.Slices = slices
	f.Stages = append(f.Stages, "compress")

	// Save.
	if err := tex.Save(dst, out); err != nil {
		return fail(ErrSave, out, err)
	}
	written, err := os.Stat(out)
	if err != nil {
		return fail(ErrSave, out, err)
	}
	if f.Checksum, err = hasher.FileChecksum(out); err != nil {
		return fail(ErrSave, out, err)
	}
	f.Result = shapeOf(dst, written.Size())
	f.Stages = append(f.Stages, "save")
	p.logf("wrote %s (%d bytes)", out, written.Size())

	result.file = f
	return result
}

// compress produces the block-compressed image. BC5, and BC1/BC3 with
// dithering, go through the generic compressor; every other target is
// encoded slice by slice into a freshly allocated destination.
func (p *Pipeline) compress(img *tex.Image, slicePool int) (*tex.Image, []report.Slice, error) {
	t := p.cfg.Target
	format := tex.Format(t.DXGIFormat())

	dither := p.cfg.Dither && (t == encoder.BC1 || t == encoder.BC3)
	if t.Delegated() || dither {
		flags := tex.CompressDefault
		if dither {
			flags |= tex.CompressDither
		}
		dst, err := tex.Compress(img, format, flags)
		if err != nil {
			return nil, nil, err
		}
		return dst, nil, nil
	}

	enc, err := p.registry.Get(t)
	if err != nil {
		return nil, nil, err
	}
	meta := img.Metadata
	meta.Format = format
	dst, err := tex.New(meta)
	if err != nil {
		return nil, nil, stageError(ErrAllocation, "", err)
	}
	slices, err := compressSlices(img, dst, enc, slicePool)
	if err != nil {
		return nil, nil, err
	}
	return dst, slices, nil
}

func shapeOf(img *tex.Image, size int64) report.Shape {
	return report.Shape{
		Width:     img.Width,
		Height:    img.Height,
		Depth:     img.Depth,
		ArraySize: img.ArraySize,
		MipLevels: img.MipLevels,
		Format:    img.Format.String(),
		Dimension: img.Dimension.String(),
		Cube:      img.IsCube(),
		Size:      size,
	}
}

// checkOutput rejects an output path that would overwrite its own input.
func checkOutput(in, out string) error {
	a, errA := os.Stat(in)
	b, errB := os.Stat(out)
	if errA == nil && errB == nil && os.SameFile(a, b) {
		return fmt.Errorf("output %s would overwrite the input", out)
	}
	return nil
}
