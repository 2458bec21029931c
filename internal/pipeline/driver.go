package pipeline

import (
	"errors"
	"fmt"
	"sync"

	"github.com/kikuuuty/ddsconv/internal/encoder"
	"github.com/kikuuuty/ddsconv/internal/report"
	"github.com/kikuuuty/ddsconv/internal/surface"
	"github.com/kikuuuty/ddsconv/internal/tex"
)

var errShape = errors.New("destination does not match source")

// sliceJob is one (mip, item, depth) surface to encode.
type sliceJob struct {
	mip, item, z int
	src, dst     *tex.Slice
}

// compressSlices encodes every slice of src into the matching slice of dst.
// Slices are visited mip by mip, then item, then depth. With workers > 1
// slices are encoded concurrently; the output is the same either way.
func compressSlices(src, dst *tex.Image, enc encoder.BlockEncoder, workers int) ([]report.Slice, error) {
	if err := checkShapes(src, dst, enc.Target()); err != nil {
		return nil, err
	}

	var jobs []sliceJob
	for mip := 0; mip < src.MipLevels; mip++ {
		for item := 0; item < src.Items(); item++ {
			for z := 0; z < src.DepthAt(mip); z++ {
				jobs = append(jobs, sliceJob{
					mip: mip, item: item, z: z,
					src: src.Slice(mip, item, z),
					dst: dst.Slice(mip, item, z),
				})
			}
		}
	}

	infos := make([]report.Slice, len(jobs))
	errs := make([]error, len(jobs))
	if workers <= 1 {
		for i, j := range jobs {
			infos[i], errs[i] = compressSlice(j, enc)
			if errs[i] != nil {
				return nil, errs[i]
			}
		}
		return infos, nil
	}

	var wg sync.WaitGroup
	sem := make(chan struct{}, workers)
	for i, j := range jobs {
		wg.Add(1)
		go func(idx int, j sliceJob) {
			defer wg.Done()
			sem <- struct{}{}        // acquire
			defer func() { <-sem }() // release
			infos[idx], errs[idx] = compressSlice(j, enc)
		}(i, j)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return infos, nil
}

func checkShapes(src, dst *tex.Image, t encoder.Target) error {
	switch {
	case src.Dimension != dst.Dimension || src.IsCube() != dst.IsCube():
		return fmt.Errorf("%w: %s vs %s", errShape, src.Dimension, dst.Dimension)
	case src.Width != dst.Width || src.Height != dst.Height || src.Depth != dst.Depth || src.ArraySize != dst.ArraySize:
		return fmt.Errorf("%w: %dx%dx%d[%d] vs %dx%dx%d[%d]", errShape,
			src.Width, src.Height, src.Depth, src.ArraySize, dst.Width, dst.Height, dst.Depth, dst.ArraySize)
	case src.MipLevels != dst.MipLevels:
		return fmt.Errorf("%w: %d vs %d mip levels", errShape, src.MipLevels, dst.MipLevels)
	case !dst.Format.Compressed():
		return fmt.Errorf("%w: %s is not block-compressed", errShape, dst.Format)
	case src.Format.BytesPerPixel() == 0:
		return fmt.Errorf("source format %s has no pixel size", src.Format)
	case src.Format.BytesPerPixel() != t.SourceBytesPerPixel():
		return fmt.Errorf("%s encoder reads %d-byte pixels, source %s has %d",
			t, t.SourceBytesPerPixel(), src.Format, src.Format.BytesPerPixel())
	}
	return nil
}

// compressSlice encodes one surface, padding it to whole blocks first when
// its size is not a multiple of 4.
func compressSlice(j sliceJob, enc encoder.BlockEncoder) (report.Slice, error) {
	s, d := j.src, j.dst
	info := report.Slice{Mip: j.mip, Item: j.item, Depth: j.z, Width: s.Width, Height: s.Height}

	want := encoder.BlocksSize(s.Width, s.Height, enc.Target().BlockBytes())
	if len(d.Pix) != want {
		return info, stageError(ErrAllocation, "", fmt.Errorf("mip %d item %d z %d: destination holds %d bytes, need %d",
			j.mip, j.item, j.z, len(d.Pix), want))
	}

	desc := surface.Descriptor{Pix: s.Pix, Width: s.Width, Height: s.Height, Stride: s.RowPitch}
	if !desc.Aligned() {
		bpp := s.Format.BytesPerPixel()
		view, err := surface.Wrap(s.Pix, s.Width, s.Height, s.RowPitch, bpp)
		if err != nil {
			return info, stageError(ErrAllocation, "", fmt.Errorf("wrap source: %w", err))
		}
		w, h := surface.AlignUp(s.Width), surface.AlignUp(s.Height)
		padded, err := surface.Allocate(w, h, w*bpp, s.Format.BitsPerPixel())
		if err != nil {
			return info, stageError(ErrAllocation, "", fmt.Errorf("pad %dx%d: %w", w, h, err))
		}
		if err := padded.CopyFrom(view); err != nil {
			return info, stageError(ErrAllocation, "", fmt.Errorf("pad %dx%d: %w", w, h, err))
		}
		desc = padded.Descriptor()
		info.Padded = true
	}

	enc.Encode(desc, d.Pix)
	info.Bytes = len(d.Pix)
	return info, nil
}
