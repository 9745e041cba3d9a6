package marquee

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// CorrectionCurve is a 1D color-correction lookup table. Each sample is the
// output intensity for an input intensity of i/(size-1), applied to the red,
// green, and blue channels independently at draw time. Samples outside [0, 1]
// are clamped when the curve is baked into a lookup texture.
//
// A curve is read-only once constructed; to change a billboard's correction,
// build a new curve and call [Node.SetCorrection].
type CorrectionCurve struct {
	samples []float64
}

// NewCorrectionCurve creates a curve from raw samples. The slice is copied.
// Panics if fewer than 2 samples are given.
func NewCorrectionCurve(samples []float64) *CorrectionCurve {
	if len(samples) < 2 {
		panic("marquee: correction curve needs at least 2 samples")
	}
	c := &CorrectionCurve{samples: make([]float64, len(samples))}
	copy(c.samples, samples)
	return c
}

// IdentityCurve creates a curve that leaves colors unchanged.
func IdentityCurve(size int) *CorrectionCurve {
	return buildCurve(size, func(v float64) float64 { return v })
}

// GammaCurve creates a gamma-correction curve: out = in^(1/gamma).
// gamma > 1 brightens midtones, gamma < 1 darkens them.
func GammaCurve(size int, gamma float64) *CorrectionCurve {
	inv := 1.0 / gamma
	return buildCurve(size, func(v float64) float64 {
		return math.Pow(v, inv)
	})
}

// ContrastCurve creates a contrast curve pivoting around middle gray:
// out = (in - 0.5)*contrast + 0.5. contrast = 1 is a no-op.
func ContrastCurve(size int, contrast float64) *CorrectionCurve {
	return buildCurve(size, func(v float64) float64 {
		return (v-0.5)*contrast + 0.5
	})
}

// ExposureCurve creates an exposure curve: out = in * 2^stops.
// Positive stops brighten, negative stops darken.
func ExposureCurve(size int, stops float64) *CorrectionCurve {
	factor := math.Pow(2, stops)
	return buildCurve(size, func(v float64) float64 {
		return v * factor
	})
}

// buildCurve samples fn at size evenly spaced inputs over [0, 1].
func buildCurve(size int, fn func(float64) float64) *CorrectionCurve {
	if size < 2 {
		panic("marquee: correction curve needs at least 2 samples")
	}
	c := &CorrectionCurve{samples: make([]float64, size)}
	for i := range c.samples {
		c.samples[i] = fn(float64(i) / float64(size-1))
	}
	return c
}

// Size returns the number of samples in the curve.
func (c *CorrectionCurve) Size() int {
	return len(c.samples)
}

// At returns the raw sample at index i.
func (c *CorrectionCurve) At(i int) float64 {
	return c.samples[i]
}

// Lookup returns the clamped curve output for an input intensity in [0, 1],
// using nearest-sample lookup. This is the CPU reference for what the grade
// shader computes per channel.
func (c *CorrectionCurve) Lookup(v float64) float64 {
	if v < 0 {
		v = 0
	} else if v > 1 {
		v = 1
	}
	i := int(v*float64(len(c.samples)-1) + 0.5)
	return clamp01(c.samples[i])
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// bakeLookupTexture writes the curve into a grayscale lookup texture of the
// given dimensions, samples spread across the full width and repeated per row.
// Ebitengine requires every source image of a shader draw to share dimensions,
// so the lookup texture is sized to match the billboard's color texture.
// Reuses prev when its size matches; pixBuf is grown as needed and returned.
func bakeLookupTexture(c *CorrectionCurve, w, h int, prev *ebiten.Image, pixBuf []byte) (*ebiten.Image, []byte) {
	tex := prev
	if tex == nil || tex.Bounds().Dx() != w || tex.Bounds().Dy() != h {
		if tex != nil {
			tex.Deallocate()
		}
		tex = ebiten.NewImage(w, h)
	}

	needed := w * h * 4
	if cap(pixBuf) < needed {
		pixBuf = make([]byte, needed)
	} else {
		pixBuf = pixBuf[:needed]
	}

	size := len(c.samples)
	for x := 0; x < w; x++ {
		idx := int((float64(x) + 0.5) * float64(size) / float64(w))
		if idx > size-1 {
			idx = size - 1
		}
		v := byte(clamp01(c.samples[idx])*255 + 0.5)
		off := x * 4
		pixBuf[off+0] = v
		pixBuf[off+1] = v
		pixBuf[off+2] = v
		pixBuf[off+3] = 255
	}
	rowBytes := w * 4
	for row := 1; row < h; row++ {
		copy(pixBuf[row*rowBytes:(row+1)*rowBytes], pixBuf[:rowBytes])
	}

	tex.WritePixels(pixBuf)
	return tex, pixBuf
}
