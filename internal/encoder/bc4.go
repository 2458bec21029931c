package encoder

import "github.com/kikuuuty/ddsconv/internal/surface"

type bc3Encoder struct{}

func (bc3Encoder) Target() Target { return BC3 }

func (bc3Encoder) Encode(src surface.Descriptor, dst []byte) {
	var blk RGBABlock
	forEachBlock(src, dst, 16, func(x, y int, out []byte) {
		LoadRGBA(src, x, y, &blk)
		EncodeBC3Block(&blk, out)
	})
}

// EncodeBC3Block writes an 8-byte alpha block followed by an 8-byte BC1
// color block.
func EncodeBC3Block(blk *RGBABlock, out []byte) {
	var alpha [16]uint8
	for i, p := range blk {
		alpha[i] = p[3]
	}
	EncodeBC4Block(&alpha, out[:8])
	EncodeBC1Block(blk, out[8:16])
}

// EncodeBC5Block writes the red and green channels of blk as two BC4 blocks.
func EncodeBC5Block(blk *RGBABlock, out []byte) {
	var r, g [16]uint8
	for i, p := range blk {
		r[i] = p[0]
		g[i] = p[1]
	}
	EncodeBC4Block(&r, out[:8])
	EncodeBC4Block(&g, out[8:16])
}

// EncodeBC4Block writes one unsigned channel using the eight-value palette
// between the block's maximum and minimum.
func EncodeBC4Block(vals *[16]uint8, out []byte) {
	lo, hi := vals[0], vals[0]
	for _, v := range vals {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	out[0], out[1] = hi, lo

	var bits uint64
	if hi > lo {
		pal := bc4Palette(hi, lo)
		for i, v := range vals {
			best, bestErr := 0, 1<<30
			for j, p := range pal {
				d := int(v) - int(p)
				if d*d < bestErr {
					best, bestErr = j, d*d
				}
			}
			bits |= uint64(best) << (3 * i)
		}
	}
	for i := 0; i < 6; i++ {
		out[2+i] = byte(bits >> (8 * i))
	}
}

// DecodeBC4Block expands one BC4 block into 16 values.
func DecodeBC4Block(in []byte, vals *[16]uint8) {
	pal := bc4Palette(in[0], in[1])
	var bits uint64
	for i := 0; i < 6; i++ {
		bits |= uint64(in[2+i]) << (8 * i)
	}
	for i := range vals {
		vals[i] = pal[bits>>(3*i)&7]
	}
}

func bc4Palette(a0, a1 uint8) [8]uint8 {
	pal := [8]uint8{a0, a1}
	x, y := uint32(a0), uint32(a1)
	if a0 > a1 {
		for i := uint32(1); i <= 6; i++ {
			pal[1+i] = uint8(((7-i)*x + i*y) / 7)
		}
		return pal
	}
	for i := uint32(1); i <= 4; i++ {
		pal[1+i] = uint8(((5-i)*x + i*y) / 5)
	}
	pal[6], pal[7] = 0, 255
	return pal
}
