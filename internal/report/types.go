package report

// Report is the JSON summary of a ddsconv run.
type Report struct {
	Version     int             `json:"version"`
	GeneratedAt string          `json:"generated_at"`
	Settings    Settings        `json:"settings"`
	Files       map[string]File `json:"files"`
	Stats       Stats           `json:"stats"`
}

// Settings captures the options every file in the run was converted with.
type Settings struct {
	Target       string `json:"target"`
	Level        string `json:"level"`
	GenerateMips bool   `json:"generate_mips"`
	MipLevels    int    `json:"mip_levels,omitempty"` // 0 = full chain
	SRGB         bool   `json:"srgb,omitempty"`
	ForceRGB     bool   `json:"force_rgb,omitempty"`
	Dither       bool   `json:"dither,omitempty"`
	Workers      int    `json:"workers"`
}

// File describes one converted input.
type File struct {
	Input    string   `json:"input"`
	Output   string   `json:"output"`
	Source   Shape    `json:"source"`
	Result   Shape    `json:"result"`
	Stages   []string `json:"stages"`
	Slices   []Slice  `json:"slices,omitempty"`
	Checksum string   `json:"checksum"` // first 16 hex chars of xxhash64
}

// Shape is the layout of an image before or after conversion.
type Shape struct {
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Depth     int    `json:"depth"`
	ArraySize int    `json:"array_size"`
	MipLevels int    `json:"mip_levels"`
	Format    string `json:"format"`
	Dimension string `json:"dimension"`
	Cube      bool   `json:"cube,omitempty"`
	Size      int64  `json:"size"` // bytes on disk
}

// Slice records one block-encoded surface. Slices compressed by the
// generic compressor are not listed.
type Slice struct {
	Mip    int  `json:"mip"`
	Item   int  `json:"item"`
	Depth  int  `json:"depth"`
	Width  int  `json:"width"`
	Height int  `json:"height"`
	Padded bool `json:"padded,omitempty"`
	Bytes  int  `json:"bytes"`
}

// Stats aggregates run metrics.
type Stats struct {
	TotalFiles       int   `json:"total_files"`
	TotalSlices      int   `json:"total_slices"`
	PaddedSlices     int   `json:"padded_slices"`
	TotalInputBytes  int64 `json:"total_input_bytes"`
	TotalOutputBytes int64 `json:"total_output_bytes"`
	Failed           int   `json:"failed,omitempty"`
}

// SupportedVersion is the current schema version.
const SupportedVersion = 1
