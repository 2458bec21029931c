package tex

import (
	"errors"
	"math"
	"testing"
)

func TestConvertSameFormat(t *testing.T) {
	img := rgbaImage(t, 4, 4, func(x, y int) [4]uint8 { return [4]uint8{1, 2, 3, 4} })
	if _, err := Convert(img, FormatR8G8B8A8UNorm, FilterSRGBIn); !errors.Is(err, ErrSameFormat) {
		t.Fatalf("got %v, want ErrSameFormat", err)
	}
	if _, err := Convert(img, FormatBC1UNorm, FilterDefault); !errors.Is(err, ErrCompressedFormat) {
		t.Fatalf("got %v, want ErrCompressedFormat", err)
	}
}

func TestConvertToHalf(t *testing.T) {
	img := rgbaImage(t, 5, 3, func(x, y int) [4]uint8 { return [4]uint8{uint8(x * 50), 0, 255, 128} })
	out, err := Convert(img, FormatR16G16B16A16Float, FilterDefault)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if out.Width != 5 || out.Height != 3 || out.Format != FormatR16G16B16A16Float {
		t.Fatalf("shape: %dx%d %s", out.Width, out.Height, out.Format)
	}
	s := out.Slice(0, 0, 0)
	v := loadPixel(s.Format, s.Pix[1*s.RowPitch+4*8:])
	want := [4]float32{200.0 / 255, 0, 1, 128.0 / 255}
	for c := range v {
		if math.Abs(float64(v[c]-want[c])) > 1e-3 {
			t.Errorf("channel %d: got %f, want %f", c, v[c], want[c])
		}
	}
}

func TestConvertSRGBIn(t *testing.T) {
	img := rgbaImage(t, 4, 4, func(x, y int) [4]uint8 { return [4]uint8{188, 188, 188, 200} })
	out, err := Convert(img, FormatR32G32B32A32Float, FilterSRGBIn)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	v := loadPixel(out.Format, out.Slice(0, 0, 0).Pix)
	if math.Abs(float64(v[0])-0.5) > 0.01 {
		t.Errorf("linearized red: got %f, want ~0.5", v[0])
	}
	// Alpha is never transformed.
	if math.Abs(float64(v[3])-200.0/255) > 1e-6 {
		t.Errorf("alpha: got %f", v[3])
	}

	back, err := Convert(out, FormatR8G8B8A8UNorm, FilterSRGBOut)
	if err != nil {
		t.Fatalf("convert back: %v", err)
	}
	if got := back.Slice(0, 0, 0).Pix[0]; got != 188 {
		t.Errorf("round trip: got %d, want 188", got)
	}
}
