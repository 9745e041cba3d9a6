package marquee

import (
	"image"

	"github.com/hajimehoshi/ebiten/v2"
	xdraw "golang.org/x/image/draw"
)

// maxBillboardDim caps billboard texture dimensions. Images larger than this
// on either axis are downscaled at construction, preserving aspect ratio.
// Stays well under common GPU texture size limits.
const maxBillboardDim = 4096

// NewBillboard creates a billboard node: a quad textured with the given image
// and graded through an optional color-correction curve at draw time.
//
// The pixel data is consumed once, here; later changes to src have no effect.
// The quad is one world unit wide, centered on the node's origin, and the
// node's vertical scale is set to the image's height/width ratio, so the
// displayed aspect always matches the image. Size billboards on screen with
// the camera zoom or by scaling an ancestor node.
//
// Pass a nil curve to display the image unchanged.
// Panics if src is nil or has no pixels.
func NewBillboard(name string, src image.Image, curve *CorrectionCurve) *Node {
	if src == nil {
		panic("marquee: billboard image is nil")
	}
	rgba := prepareRGBA(src, maxBillboardDim)
	w := rgba.Bounds().Dx()
	h := rgba.Bounds().Dy()
	if w == 0 || h == 0 {
		panic("marquee: billboard image is empty")
	}

	tex := ebiten.NewImage(w, h)
	tex.WritePixels(rgba.Pix)

	verts, indices := QuadMesh(1, 1, float64(w), float64(h))
	n := &Node{
		Name:          name,
		Type:          NodeTypeBillboard,
		Vertices:      verts,
		Indices:       indices,
		texture:       tex,
		curve:         curve,
		lookupDirty:   curve != nil,
		imageW:        w,
		imageH:        h,
		meshAABBDirty: true,
	}
	nodeDefaults(n)

	// The quad is unit-width; height follows the image aspect ratio.
	n.ScaleY = float64(h) / float64(w)

	return n
}

// SetCorrection replaces the billboard's color-correction curve. Pass nil to
// disable grading. The quad and color texture are untouched; the lookup
// texture is re-baked lazily before the next draw.
// Panics if the node is not a billboard.
func (n *Node) SetCorrection(curve *CorrectionCurve) {
	if n.Type != NodeTypeBillboard {
		panic("marquee: SetCorrection on non-billboard node")
	}
	n.curve = curve
	n.lookupDirty = curve != nil
	if curve == nil && n.lookupTex != nil {
		n.lookupTex.Deallocate()
		n.lookupTex = nil
	}
}

// Correction returns the billboard's current correction curve, or nil.
func (n *Node) Correction() *CorrectionCurve {
	return n.curve
}

// ensureLookupTex re-bakes the lookup texture if the curve changed.
// Called from the render path; no-op when clean.
func (n *Node) ensureLookupTex(pixBuf []byte) []byte {
	if !n.lookupDirty || n.curve == nil {
		return pixBuf
	}
	n.lookupTex, pixBuf = bakeLookupTexture(n.curve, n.imageW, n.imageH, n.lookupTex, pixBuf)
	n.lookupDirty = false
	return pixBuf
}

// prepareRGBA converts src to a tightly-packed RGBA image, downscaling with a
// Catmull-Rom kernel if either dimension exceeds maxDim.
func prepareRGBA(src image.Image, maxDim int) *image.RGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()

	if w > maxDim || h > maxDim {
		scale := float64(maxDim) / float64(w)
		if s := float64(maxDim) / float64(h); s < scale {
			scale = s
		}
		nw := int(float64(w) * scale)
		nh := int(float64(h) * scale)
		if nw < 1 {
			nw = 1
		}
		if nh < 1 {
			nh = 1
		}
		dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
		xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, b, xdraw.Src, nil)
		return dst
	}

	if rgba, ok := src.(*image.RGBA); ok && rgba.Stride == 4*w && b.Min == (image.Point{}) {
		return rgba
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.Draw(dst, dst.Bounds(), src, b.Min, xdraw.Src)
	return dst
}
