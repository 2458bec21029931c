// Package profile maps a quality level to encoder tuning parameters.
package profile

import (
	"fmt"
	"strings"
)

// Level is an ordinal compression quality, fastest first.
type Level int

const (
	UltraFast Level = iota
	VeryFast
	Fast
	Basic
	Slow
	VerySlow
)

// levelNames is ordered by Level.
var levelNames = []string{"ultrafast", "veryfast", "fast", "basic", "slow", "veryslow"}

// Levels returns every level name, fastest first.
func Levels() []string {
	return append([]string(nil), levelNames...)
}

// ParseLevel returns the level with the given name (case-insensitive).
func ParseLevel(name string) (Level, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for i, s := range levelNames {
		if s == n {
			return Level(i), nil
		}
	}
	return 0, fmt.Errorf("unknown quality level %q (want one of %s)", name, strings.Join(levelNames, ", "))
}

func (l Level) String() string {
	if l < 0 || int(l) >= len(levelNames) {
		return fmt.Sprintf("Level(%d)", int(l))
	}
	return levelNames[l]
}

// BC6H tunes the HDR encoder.
type BC6H struct {
	SlowMode          bool // search both endpoint orders for every block
	FastMode          bool // skip refinement when the first fit is exact
	FastSkipThreshold int  // candidate endpoint pairs tried per block
	RefineIterations  int
}

// BC7 tunes the 7-mode encoder.
type BC7 struct {
	Channels         int // 3 treats alpha as opaque, 4 keeps it
	RefineIterations int
	PBitSearch       bool // try every p-bit pair instead of rounding
}

var (
	bc6hVeryFast = BC6H{FastMode: true, FastSkipThreshold: 1}
	bc6hFast     = BC6H{FastMode: true, FastSkipThreshold: 2, RefineIterations: 1}
	bc6hBasic    = BC6H{FastSkipThreshold: 4, RefineIterations: 2}
	bc6hSlow     = BC6H{SlowMode: true, FastSkipThreshold: 10, RefineIterations: 2}
	bc6hVerySlow = BC6H{SlowMode: true, FastSkipThreshold: 32, RefineIterations: 2}
)

// SelectBC6H returns the HDR preset for l. UltraFast and VeryFast share a
// preset.
func SelectBC6H(l Level) BC6H {
	switch l {
	case UltraFast, VeryFast:
		return bc6hVeryFast
	case Fast:
		return bc6hFast
	case Basic:
		return bc6hBasic
	case Slow:
		return bc6hSlow
	default:
		return bc6hVerySlow
	}
}

// SelectBC7 returns the 7-mode preset for l. With ignoreAlpha the opaque
// family is used. Slow and VerySlow share a preset in both families.
func SelectBC7(l Level, ignoreAlpha bool) BC7 {
	p := BC7{Channels: 4}
	if ignoreAlpha {
		p.Channels = 3
	}
	switch l {
	case UltraFast:
		p.RefineIterations = 1
	case VeryFast:
		p.RefineIterations = 2
	case Fast:
		p.RefineIterations = 2
		p.PBitSearch = true
	case Basic:
		p.RefineIterations = 3
		p.PBitSearch = true
	default:
		p.RefineIterations = 4
		p.PBitSearch = true
	}
	return p
}
