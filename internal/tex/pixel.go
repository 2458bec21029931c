package tex

import (
	"encoding/binary"
	"math"

	"github.com/x448/float16"
)

// loadPixel decodes one pixel of an uncompressed format into RGBA floats.
// UNORM channels land in [0, 1].
func loadPixel(f Format, p []byte) [4]float32 {
	var v [4]float32
	switch f {
	case FormatR8G8B8A8UNorm, FormatR8G8B8A8UNormSRGB:
		for c := 0; c < 4; c++ {
			v[c] = float32(p[c]) / 255
		}
	case FormatB8G8R8A8UNorm:
		v = [4]float32{float32(p[2]) / 255, float32(p[1]) / 255, float32(p[0]) / 255, float32(p[3]) / 255}
	case FormatR16G16B16A16UNorm:
		for c := 0; c < 4; c++ {
			v[c] = float32(binary.LittleEndian.Uint16(p[c*2:])) / 65535
		}
	case FormatR16G16B16A16Float:
		for c := 0; c < 4; c++ {
			v[c] = float16.Frombits(binary.LittleEndian.Uint16(p[c*2:])).Float32()
		}
	case FormatR32G32B32A32Float:
		for c := 0; c < 4; c++ {
			v[c] = math.Float32frombits(binary.LittleEndian.Uint32(p[c*4:]))
		}
	}
	return v
}

// storePixel encodes v into one pixel of an uncompressed format, clamping
// UNORM channels.
func storePixel(f Format, p []byte, v [4]float32) {
	switch f {
	case FormatR8G8B8A8UNorm, FormatR8G8B8A8UNormSRGB:
		for c := 0; c < 4; c++ {
			p[c] = unorm8(v[c])
		}
	case FormatB8G8R8A8UNorm:
		p[0], p[1], p[2], p[3] = unorm8(v[2]), unorm8(v[1]), unorm8(v[0]), unorm8(v[3])
	case FormatR16G16B16A16UNorm:
		for c := 0; c < 4; c++ {
			binary.LittleEndian.PutUint16(p[c*2:], uint16(clamp01(v[c])*65535+0.5))
		}
	case FormatR16G16B16A16Float:
		for c := 0; c < 4; c++ {
			binary.LittleEndian.PutUint16(p[c*2:], float16.Fromfloat32(v[c]).Bits())
		}
	case FormatR32G32B32A32Float:
		for c := 0; c < 4; c++ {
			binary.LittleEndian.PutUint32(p[c*4:], math.Float32bits(v[c]))
		}
	}
}

func clamp01(v float32) float32 {
	if v < 0 || v != v {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func unorm8(v float32) uint8 {
	return uint8(clamp01(v)*255 + 0.5)
}

// srgbToLinear applies the sRGB EOTF to one color channel.
func srgbToLinear(v float32) float32 {
	if v <= 0.04045 {
		return v / 12.92
	}
	return float32(math.Pow((float64(v)+0.055)/1.055, 2.4))
}

func linearToSRGB(v float32) float32 {
	if v <= 0.0031308 {
		return v * 12.92
	}
	return float32(1.055*math.Pow(float64(v), 1/2.4) - 0.055)
}
