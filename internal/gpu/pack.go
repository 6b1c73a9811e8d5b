//go:build !nogpu

package gpu

import (
	"encoding/binary"
	"math"
)

// paramsSize is the size of the Params uniform in difference.wgsl.
const paramsSize = 16

// packParams serializes the Params uniform.
func packParams(resolution uint32, difficulty float32) []byte {
	out := make([]byte, paramsSize)
	binary.LittleEndian.PutUint32(out[0:], resolution)
	binary.LittleEndian.PutUint32(out[4:], math.Float32bits(difficulty))
	return out
}

// packColor returns RGBA bytes as little-endian u32 words
// (r | g<<8 | b<<16 | a<<24). dst is reused when large enough.
func packColor(dst []byte, data []uint8, pixelCount int) []byte {
	dst = grow(dst, pixelCount*4)
	for i := 0; i < pixelCount; i++ {
		j := i * 4
		packed := uint32(data[j]) | uint32(data[j+1])<<8 | uint32(data[j+2])<<16 | uint32(data[j+3])<<24
		binary.LittleEndian.PutUint32(dst[j:], packed)
	}
	return dst
}

// packFloats serializes values as little-endian f32. dst is reused when
// large enough.
func packFloats(dst []byte, values []float32) []byte {
	dst = grow(dst, len(values)*4)
	for i, v := range values {
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(v))
	}
	return dst
}

// unpackFloats decodes little-endian f32 values from src into dst.
func unpackFloats(dst []float32, src []byte) {
	for i := range dst {
		dst[i] = math.Float32frombits(binary.LittleEndian.Uint32(src[i*4:]))
	}
}

func grow(b []byte, n int) []byte {
	if cap(b) < n {
		return make([]byte, n)
	}
	return b[:n]
}
