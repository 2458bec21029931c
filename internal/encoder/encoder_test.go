package encoder

import (
	"bytes"
	"errors"
	"image"
	"testing"

	"github.com/kikuuuty/ddsconv/internal/profile"
	"github.com/mauserzjeh/dxt"
	"github.com/x448/float16"
)

// rampRGBA fills every 4×4 block with the same 16 colors on one line in
// color space.
func rampRGBA(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			k := (x % 4) + (y%4)*4
			o := img.PixOffset(x, y)
			img.Pix[o+0] = uint8(20 + 8*k)
			img.Pix[o+1] = uint8(30 + 6*k)
			img.Pix[o+2] = uint8(200 - 10*k)
			img.Pix[o+3] = uint8(250 - 12*k)
		}
	}
	return img
}

func solidRGBA(w, h int, c [4]uint8) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		copy(img.Pix[i:i+4], c[:])
	}
	return img
}

func encode(t *testing.T, r *Registry, target Target, img *image.RGBA) []byte {
	t.Helper()
	enc, err := r.Get(target)
	if err != nil {
		t.Fatalf("get %s: %v", target, err)
	}
	b := img.Bounds()
	dst := make([]byte, BlocksSize(b.Dx(), b.Dy(), target.BlockBytes()))
	enc.Encode(describe(img), dst)
	return dst
}

func maxChannelError(a, b []byte, channels int) int {
	worst := 0
	for i := 0; i < len(a); i += 4 {
		for c := 0; c < channels; c++ {
			worst = max(worst, absDiff(int(a[i+c]), int(b[i+c])))
		}
	}
	return worst
}

func TestParseTarget(t *testing.T) {
	tests := []struct {
		name       string
		want       Target
		blockBytes int
		dxgi       uint32
	}{
		{"bc1", BC1, 8, 71},
		{"BC3", BC3, 16, 77},
		{"bc5", BC5, 16, 83},
		{"bc6h", BC6H, 16, 95},
		{" bc7", BC7, 16, 98},
	}
	for _, tt := range tests {
		got, err := ParseTarget(tt.name)
		if err != nil {
			t.Fatalf("ParseTarget(%q): %v", tt.name, err)
		}
		if got != tt.want {
			t.Errorf("ParseTarget(%q) = %s, want %s", tt.name, got, tt.want)
		}
		if got.BlockBytes() != tt.blockBytes {
			t.Errorf("%s block bytes = %d, want %d", got, got.BlockBytes(), tt.blockBytes)
		}
		if got.DXGIFormat() != tt.dxgi {
			t.Errorf("%s dxgi = %d, want %d", got, got.DXGIFormat(), tt.dxgi)
		}
	}
	if _, err := ParseTarget("bc2"); err == nil {
		t.Error("bc2 accepted")
	}
}

func TestBlocksSize(t *testing.T) {
	tests := []struct{ w, h, bytes, want int }{
		{6, 6, 8, 32},
		{4, 4, 16, 16},
		{5, 4, 8, 16},
		{1, 1, 16, 16},
		{1024, 512, 16, 256 * 128 * 16},
	}
	for _, tt := range tests {
		if got := BlocksSize(tt.w, tt.h, tt.bytes); got != tt.want {
			t.Errorf("BlocksSize(%d, %d, %d) = %d, want %d", tt.w, tt.h, tt.bytes, got, tt.want)
		}
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry(profile.Basic, false)
	if _, err := r.Get(BC5); !errors.Is(err, ErrDelegated) {
		t.Fatalf("BC5: got %v, want ErrDelegated", err)
	}
	want := []string{"bc1", "bc3", "bc6h", "bc7"}
	got := r.Available()
	if len(got) != len(want) {
		t.Fatalf("available = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("available[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestBC1SolidColor(t *testing.T) {
	img := solidRGBA(8, 4, [4]uint8{200, 100, 50, 255})
	data := encode(t, NewRegistry(profile.UltraFast, false), BC1, img)
	out, err := dxt.DecodeDXT1(data, 8, 4)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if e := maxChannelError(img.Pix, out, 3); e > 4 {
		t.Errorf("max error %d, want <= 4", e)
	}
}

func TestBC1Ramp(t *testing.T) {
	img := rampRGBA(8, 8)
	data := encode(t, NewRegistry(profile.UltraFast, false), BC1, img)
	out, err := dxt.DecodeDXT1(data, 8, 8)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if e := maxChannelError(img.Pix, out, 3); e > 32 {
		t.Errorf("max error %d, want <= 32", e)
	}
	// Four-color mode needs c0 > c1.
	for off := 0; off < len(data); off += 8 {
		c0 := uint16(data[off]) | uint16(data[off+1])<<8
		c1 := uint16(data[off+2]) | uint16(data[off+3])<<8
		if c0 <= c1 {
			t.Errorf("block at %d: c0 %#04x <= c1 %#04x", off, c0, c1)
		}
	}
}

func TestBC3Alpha(t *testing.T) {
	img := rampRGBA(8, 8)
	data := encode(t, NewRegistry(profile.UltraFast, false), BC3, img)

	colors, err := dxt.DecodeDXT5(data, 8, 8)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if e := maxChannelError(img.Pix, colors, 3); e > 32 {
		t.Errorf("color max error %d, want <= 32", e)
	}

	// Alpha range per block is 180, so the 8-value palette is within 13.
	var alpha [16]uint8
	for by := 0; by < 2; by++ {
		for bx := 0; bx < 2; bx++ {
			DecodeBC4Block(data[(by*2+bx)*16:], &alpha)
			for i, a := range alpha {
				x, y := bx*4+i%4, by*4+i/4
				want := img.Pix[img.PixOffset(x, y)+3]
				if d := absDiff(int(a), int(want)); d > 13 {
					t.Errorf("alpha (%d,%d) = %d, want %d", x, y, a, want)
				}
			}
		}
	}
}

func TestBC4Flat(t *testing.T) {
	var vals [16]uint8
	for i := range vals {
		vals[i] = 77
	}
	var out [8]byte
	EncodeBC4Block(&vals, out[:])
	var got [16]uint8
	DecodeBC4Block(out[:], &got)
	if got != vals {
		t.Errorf("got %v, want %v", got, vals)
	}
}

func TestBC5Channels(t *testing.T) {
	img := gradientRGBA(4, 4)
	var blk RGBABlock
	LoadRGBA(describe(img), 0, 0, &blk)
	var out [16]byte
	EncodeBC5Block(&blk, out[:])

	var r, g [16]uint8
	DecodeBC4Block(out[:8], &r)
	DecodeBC4Block(out[8:], &g)
	for i := range blk {
		if d := absDiff(int(r[i]), int(blk[i][0])); d > 3 {
			t.Errorf("red %d: got %d, want %d", i, r[i], blk[i][0])
		}
		if d := absDiff(int(g[i]), int(blk[i][1])); d > 3 {
			t.Errorf("green %d: got %d, want %d", i, g[i], blk[i][1])
		}
	}
}

func decodeBC7(t *testing.T, data []byte, w, h int) []byte {
	t.Helper()
	out := make([]byte, w*h*4)
	bw := w / 4
	for b := 0; b*16 < len(data); b++ {
		px := decodeMode6(t, data[b*16:b*16+16])
		for i, p := range px {
			x, y := (b%bw)*4+i%4, (b/bw)*4+i/4
			copy(out[(y*w+x)*4:], p[:])
		}
	}
	return out
}

func TestBC7SolidIsExact(t *testing.T) {
	img := solidRGBA(4, 4, [4]uint8{10, 20, 30, 128})
	for l := profile.UltraFast; l <= profile.VerySlow; l++ {
		data := encode(t, NewRegistry(l, false), BC7, img)
		if len(data) != 16 {
			t.Fatalf("%s: %d bytes, want 16", l, len(data))
		}
		if got := decodeBC7(t, data, 4, 4); !bytes.Equal(got, img.Pix) {
			t.Errorf("%s: got %v, want %v", l, got[:4], img.Pix[:4])
		}
	}
}

func TestBC7Ramp(t *testing.T) {
	img := rampRGBA(8, 8)
	for _, l := range []profile.Level{profile.UltraFast, profile.Basic, profile.VerySlow} {
		data := encode(t, NewRegistry(l, false), BC7, img)
		got := decodeBC7(t, data, 8, 8)
		if e := maxChannelError(img.Pix, got, 4); e > 10 {
			t.Errorf("%s: max error %d, want <= 10", l, e)
		}
	}
}

func TestBC7OpaqueFamilyDropsAlpha(t *testing.T) {
	img := rampRGBA(4, 4)
	data := encode(t, NewRegistry(profile.Fast, true), BC7, img)
	got := decodeBC7(t, data, 4, 4)
	for i := 3; i < len(got); i += 4 {
		if got[i] != 255 {
			t.Fatalf("pixel %d alpha = %d, want 255", i/4, got[i])
		}
	}
	if e := maxChannelError(img.Pix, got, 3); e > 10 {
		t.Errorf("max error %d, want <= 10", e)
	}
}

func TestEncodeIsDeterministic(t *testing.T) {
	img := gradientRGBA(12, 8)
	for _, target := range []Target{BC1, BC3, BC7} {
		r := NewRegistry(profile.Slow, false)
		a := encode(t, r, target, img)
		b := encode(t, r, target, img)
		if !bytes.Equal(a, b) {
			t.Errorf("%s: output differs between runs", target)
		}
	}
}

func TestBC6HRamp(t *testing.T) {
	base := [3]float32{1, 0.5, 2}
	step := [3]float32{0.0625, 0.03, 0.1}
	src := halfSurface(4, 4, func(x, y, c int) float32 {
		if c == 3 {
			return 1
		}
		return base[c] + step[c]*float32(x+y*4)
	})

	for _, l := range []profile.Level{profile.VeryFast, profile.Basic, profile.VerySlow} {
		enc, err := NewRegistry(l, false).Get(BC6H)
		if err != nil {
			t.Fatal(err)
		}
		dst := make([]byte, 16)
		enc.Encode(src, dst)

		px := decodeMode11(t, dst)
		for i, p := range px {
			for c := 0; c < 3; c++ {
				want := float16.Fromfloat32(base[c] + step[c]*float32(i)).Bits()
				if d := absDiff(int(p[c]), int(want)); d > 80 {
					t.Errorf("%s: pixel %d channel %d = %#04x, want %#04x", l, i, c, p[c], want)
				}
			}
		}
	}
}

func TestBC6HClampsToUnsigned(t *testing.T) {
	src := halfSurface(4, 4, func(x, y, c int) float32 {
		if c == 0 {
			return -3
		}
		return 1
	})
	enc, err := NewRegistry(profile.Basic, false).Get(BC6H)
	if err != nil {
		t.Fatal(err)
	}
	dst := make([]byte, 16)
	enc.Encode(src, dst)
	one := float16.Fromfloat32(1).Bits()
	for i, p := range decodeMode11(t, dst) {
		if p[0] != 0 || p[1] != one || p[2] != one {
			t.Errorf("pixel %d = %#04x, want [0 %#04x %#04x]", i, p, one, one)
		}
	}
}
