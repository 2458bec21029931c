package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kikuuuty/ddsconv/internal/hasher"
)

func sampleReport(t *testing.T, dir string) *Report {
	t.Helper()
	data := []byte("DDS fake payload")
	out := filepath.Join(dir, "wall.dds")
	if err := os.WriteFile(out, data, 0o644); err != nil {
		t.Fatal(err)
	}
	sum, err := hasher.FileChecksum(out)
	if err != nil {
		t.Fatal(err)
	}
	r := New(Settings{Target: "bc1", Level: "ultrafast", Workers: 2})
	r.Files["wall"] = File{
		Input:  "wall.png",
		Output: "wall.dds",
		Source: Shape{Width: 6, Height: 6, Depth: 1, ArraySize: 1, MipLevels: 1, Format: "R8G8B8A8_UNORM", Dimension: "2D", Size: 300},
		Result: Shape{Width: 6, Height: 6, Depth: 1, ArraySize: 1, MipLevels: 1, Format: "BC1_UNORM", Dimension: "2D", Size: int64(len(data))},
		Stages: []string{"load", "compress", "save"},
		Slices: []Slice{
			{Width: 6, Height: 6, Padded: true, Bytes: 32},
		},
		Checksum: sum,
	}
	return r
}

func TestReportRoundtrip(t *testing.T) {
	dir := t.TempDir()
	r := sampleReport(t, dir)
	path := filepath.Join(dir, "report.json")
	if err := WriteJSON(r, path); err != nil {
		t.Fatalf("write: %v", err)
	}

	r2, err := ReadJSON(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if r2.Version != SupportedVersion {
		t.Errorf("version: got %d, want %d", r2.Version, SupportedVersion)
	}
	if r2.Settings.Target != "bc1" || r2.Settings.Workers != 2 {
		t.Errorf("settings: got %+v", r2.Settings)
	}
	f, ok := r2.Files["wall"]
	if !ok {
		t.Fatal("file wall missing")
	}
	if len(f.Slices) != 1 || !f.Slices[0].Padded || f.Slices[0].Bytes != 32 {
		t.Errorf("slices: got %+v", f.Slices)
	}

	// Stats.
	if r2.Stats.TotalFiles != 1 {
		t.Errorf("total_files: got %d", r2.Stats.TotalFiles)
	}
	if r2.Stats.PaddedSlices != 1 {
		t.Errorf("padded_slices: got %d", r2.Stats.PaddedSlices)
	}
	if r2.Stats.TotalInputBytes != 300 {
		t.Errorf("total_input_bytes: got %d", r2.Stats.TotalInputBytes)
	}

	if errs := Validate(r2, dir); len(errs) != 0 {
		t.Errorf("validate: %v", errs)
	}
}

func TestValidateDetectsTampering(t *testing.T) {
	dir := t.TempDir()
	r := sampleReport(t, dir)
	r.ComputeStats()

	if err := os.WriteFile(filepath.Join(dir, "wall.dds"), []byte("DDS fake payloaX"), 0o644); err != nil {
		t.Fatal(err)
	}
	errs := Validate(r, dir)
	if len(errs) != 1 || !strings.Contains(errs[0], "checksum mismatch") {
		t.Errorf("got %v, want one checksum mismatch", errs)
	}

	os.Remove(filepath.Join(dir, "wall.dds"))
	errs = Validate(r, dir)
	if len(errs) != 1 || !strings.Contains(errs[0], "not found") {
		t.Errorf("got %v, want one missing file", errs)
	}
}

func TestReportIgnoresUnknownFields(t *testing.T) {
	raw := `{
		"version": 1,
		"generated_at": "2026-01-01T00:00:00Z",
		"settings": { "target": "bc7", "level": "slow", "workers": 1, "new_flag": true },
		"future_field": "should be ignored",
		"files": {},
		"stats": { "total_files": 0, "total_slices": 0, "padded_slices": 0, "new_stat": 42 }
	}`

	var r Report
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		t.Fatalf("unmarshal with unknown fields: %v", err)
	}
	if r.Settings.Level != "slow" {
		t.Errorf("level: got %q", r.Settings.Level)
	}
	if errs := Validate(&r, t.TempDir()); len(errs) != 0 {
		t.Errorf("empty report: %v", errs)
	}
}
