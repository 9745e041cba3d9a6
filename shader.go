package marquee

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// The grade shader uses //kage:unit pixels as required by Ebitengine.
// Ebitengine uses premultiplied alpha; the shader un-premultiplies before the
// lookup and re-premultiplies the output.
//
// Images[0] is the billboard's color texture, Images[1] the baked correction
// lookup (curve samples spread across the texture width, see
// bakeLookupTexture). Both must share dimensions.
const gradeShaderSrc = `//kage:unit pixels
package main

var LutSize float
var TexWidth float

// sampleBilinear taps four texels and blends them. Out-of-region taps read
// transparent, so sampling past the quad edge fades to the border instead of
// smearing the outermost pixels.
func sampleBilinear(p vec2) vec4 {
	base := floor(p - 0.5) + 0.5
	f := p - base
	c00 := imageSrc0At(base)
	c10 := imageSrc0At(base + vec2(1, 0))
	c01 := imageSrc0At(base + vec2(0, 1))
	c11 := imageSrc0At(base + vec2(1, 1))
	return mix(mix(c00, c10, f.x), mix(c01, c11, f.x), f.y)
}

// correct maps one channel intensity through the lookup texture.
func correct(v float) float {
	u := (v*(LutSize-1.0) + 0.5) / LutSize * TexWidth
	return imageSrc1At(vec2(u, 0.5)).r
}

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	c := sampleBilinear(src)
	if c.a == 0 {
		return vec4(0)
	}
	// Un-premultiply alpha.
	c.rgb /= c.a
	r := correct(c.r)
	g := correct(c.g)
	b := correct(c.b)
	// Re-premultiply and apply the vertex tint.
	return vec4(r*c.a, g*c.a, b*c.a, c.a) * color
}
`

// --- Lazy shader compilation (no sync.Once; marquee is single-threaded) ---

var gradeShader *ebiten.Shader

func ensureGradeShader() *ebiten.Shader {
	if gradeShader == nil {
		s, err := ebiten.NewShader([]byte(gradeShaderSrc))
		if err != nil {
			panic("marquee: failed to compile grade shader: " + err.Error())
		}
		gradeShader = s
	}
	return gradeShader
}
