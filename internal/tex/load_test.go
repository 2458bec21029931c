package tex

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/ftrvxmtrx/tga"
	"github.com/klauspost/compress/zstd"
	"github.com/xfmoulet/qoi"
)

func testPattern(w, h int) *image.NRGBA {
	m := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			m.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 40), G: uint8(y * 40), B: 90, A: 255})
		}
	}
	return m
}

func checkPattern(t *testing.T, img *Image, w, h int) {
	t.Helper()
	if img.Width != w || img.Height != h || img.Format != FormatR8G8B8A8UNorm || img.MipLevels != 1 {
		t.Fatalf("shape: %dx%d %s, %d mips", img.Width, img.Height, img.Format, img.MipLevels)
	}
	s := img.Slice(0, 0, 0)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			p := s.Pix[y*s.RowPitch+x*4:]
			if p[0] != uint8(x*40) || p[1] != uint8(y*40) || p[2] != 90 || p[3] != 255 {
				t.Fatalf("pixel (%d,%d): got %v", x, y, p[:4])
			}
		}
	}
}

func TestDecodeContainers(t *testing.T) {
	src := testPattern(5, 3)
	encoders := map[string]func(*bytes.Buffer) error{
		"in.png": func(b *bytes.Buffer) error { return png.Encode(b, src) },
		"in.qoi": func(b *bytes.Buffer) error { return qoi.Encode(b, src) },
		"in.tga": func(b *bytes.Buffer) error { return tga.Encode(b, src) },
	}
	for name, enc := range encoders {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := enc(&buf); err != nil {
				t.Fatalf("encode: %v", err)
			}
			img, err := Decode(buf.Bytes(), name)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			checkPattern(t, img, 5, 3)
		})
	}
}

func TestDecodeUnknown(t *testing.T) {
	if _, err := Decode([]byte("not an image at all"), "x.bin"); !errors.Is(err, ErrUnknownContainer) {
		t.Errorf("got %v, want ErrUnknownContainer", err)
	}
}

func TestLoadZstdWrappedPNG(t *testing.T) {
	var raw bytes.Buffer
	if err := png.Encode(&raw, testPattern(4, 4)); err != nil {
		t.Fatal(err)
	}
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		t.Fatal(err)
	}
	packed := enc.EncodeAll(raw.Bytes(), nil)
	enc.Close()

	path := filepath.Join(t.TempDir(), "in.png.zst")
	if err := os.WriteFile(path, packed, 0o644); err != nil {
		t.Fatal(err)
	}
	img, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	checkPattern(t, img, 4, 4)
}

func TestSaveAndLoad(t *testing.T) {
	img, err := New(Metadata{Width: 8, Height: 4, Depth: 1, ArraySize: 1, MipLevels: 1, Format: FormatBC7UNorm, Dimension: Texture2D})
	if err != nil {
		t.Fatal(err)
	}
	for i := range img.Pixels() {
		img.Pixels()[i] = byte(i * 7)
	}

	dir := t.TempDir()
	for _, name := range []string{"out.dds", "out.dds.zst"} {
		path := filepath.Join(dir, name)
		if err := Save(img, path); err != nil {
			t.Fatalf("save %s: %v", name, err)
		}
		back, err := Load(path)
		if err != nil {
			t.Fatalf("load %s: %v", name, err)
		}
		if back.Metadata != img.Metadata {
			t.Errorf("%s metadata: got %+v", name, back.Metadata)
		}
		if !bytes.Equal(back.Pixels(), img.Pixels()) {
			t.Errorf("%s: pixel data differs", name)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Errorf("directory has %d entries, want 2 (no temp files)", len(entries))
	}
}

func TestSaveMissingDirectory(t *testing.T) {
	img := rgbaImage(t, 4, 4, func(x, y int) [4]uint8 { return [4]uint8{} })
	path := filepath.Join(t.TempDir(), "missing", "out.dds")
	if err := Save(img, path); err == nil {
		t.Fatal("expected error")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("output exists after failed save: %v", err)
	}
}
