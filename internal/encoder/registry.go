package encoder

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kikuuuty/ddsconv/internal/profile"
)

// Target is a block-compressed output format.
type Target int

const (
	BC1 Target = iota + 1
	BC3
	BC5
	BC6H
	BC7
)

// ErrDelegated is returned for targets compressed by the generic compressor
// instead of a block encoder.
var ErrDelegated = errors.New("encoder: target is handled by the generic compressor")

type targetInfo struct {
	name       string
	blockBytes int
	dxgi       uint32
	srcBytes   int // bytes per pixel of the working format
}

// targets is ordered by Target.
var targets = []targetInfo{
	BC1:  {"bc1", 8, 71, 4},
	BC3:  {"bc3", 16, 77, 4},
	BC5:  {"bc5", 16, 83, 4},
	BC6H: {"bc6h", 16, 95, 8},
	BC7:  {"bc7", 16, 98, 4},
}

// Targets returns every target name in table order.
func Targets() []string {
	var names []string
	for _, t := range targets[1:] {
		names = append(names, t.name)
	}
	return names
}

// ParseTarget returns the target with the given name (case-insensitive).
func ParseTarget(name string) (Target, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for i, t := range targets {
		if i > 0 && t.name == n {
			return Target(i), nil
		}
	}
	return 0, fmt.Errorf("unknown format %q (want one of %s)", name, strings.Join(Targets(), ", "))
}

func (t Target) valid() bool { return t >= BC1 && t <= BC7 }

func (t Target) String() string {
	if !t.valid() {
		return fmt.Sprintf("Target(%d)", int(t))
	}
	return targets[t].name
}

// BlockBytes returns the size of one compressed 4×4 block.
func (t Target) BlockBytes() int {
	if !t.valid() {
		return 0
	}
	return targets[t].blockBytes
}

// DXGIFormat returns the DXGI_FORMAT value stored in a DDS header.
func (t Target) DXGIFormat() uint32 {
	if !t.valid() {
		return 0
	}
	return targets[t].dxgi
}

// HDR reports whether the target takes half-float input.
func (t Target) HDR() bool { return t == BC6H }

// Delegated reports whether the target skips the block encoders and the
// quality profile.
func (t Target) Delegated() bool { return t == BC5 }

// SourceBytesPerPixel returns the pixel size the target's encoder reads.
func (t Target) SourceBytesPerPixel() int {
	if !t.valid() {
		return 0
	}
	return targets[t].srcBytes
}

// Registry holds the block encoders of one run. Quality profiles are chosen
// once when the registry is built and shared by every slice.
type Registry struct {
	encoders map[Target]BlockEncoder
	level    profile.Level
}

// NewRegistry builds the encoders for level. ignoreAlpha selects the opaque
// BC7 family.
func NewRegistry(level profile.Level, ignoreAlpha bool) *Registry {
	r := &Registry{
		encoders: make(map[Target]BlockEncoder),
		level:    level,
	}
	all := []BlockEncoder{
		bc1Encoder{},
		bc3Encoder{},
		&bc6hEncoder{p: profile.SelectBC6H(level)},
		&bc7Encoder{p: profile.SelectBC7(level, ignoreAlpha)},
	}
	for _, enc := range all {
		r.encoders[enc.Target()] = enc
	}
	return r
}

// Get returns the encoder for t. Delegated targets return ErrDelegated.
func (r *Registry) Get(t Target) (BlockEncoder, error) {
	if t.Delegated() {
		return nil, fmt.Errorf("%s: %w", t, ErrDelegated)
	}
	enc, ok := r.encoders[t]
	if !ok {
		return nil, fmt.Errorf("no block encoder for %s", t)
	}
	return enc, nil
}

// Available returns the targets with a block encoder, in table order.
func (r *Registry) Available() []string {
	var result []string
	for i := range targets {
		if _, ok := r.encoders[Target(i)]; ok {
			result = append(result, Target(i).String())
		}
	}
	return result
}

// String returns a summary of available encoders.
func (r *Registry) String() string {
	return fmt.Sprintf("encoders: %s (quality %s)", strings.Join(r.Available(), ", "), r.level)
}
