package marquee

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// Mesh builders produce interleaved vertex data (position, texture coordinate,
// color in a single ebiten.Vertex) plus a uint16 index buffer. Texture
// coordinates span the source rect (srcW x srcH) in pixels, per Ebitengine's
// DrawTriangles convention.

// QuadMesh builds a quad of the given local size centered at the origin, as
// 4 vertices and 6 indices in triangle-strip vertex order.
func QuadMesh(width, height, srcW, srcH float64) ([]ebiten.Vertex, []uint16) {
	hw := float32(width / 2)
	hh := float32(height / 2)
	sw := float32(srcW)
	sh := float32(srcH)

	verts := []ebiten.Vertex{
		{DstX: -hw, DstY: -hh, SrcX: 0, SrcY: 0, ColorR: 1, ColorG: 1, ColorB: 1, ColorA: 1},
		{DstX: hw, DstY: -hh, SrcX: sw, SrcY: 0, ColorR: 1, ColorG: 1, ColorB: 1, ColorA: 1},
		{DstX: -hw, DstY: hh, SrcX: 0, SrcY: sh, ColorR: 1, ColorG: 1, ColorB: 1, ColorA: 1},
		{DstX: hw, DstY: hh, SrcX: sw, SrcY: sh, ColorR: 1, ColorG: 1, ColorB: 1, ColorA: 1},
	}
	indices := []uint16{0, 1, 2, 2, 1, 3}
	return verts, indices
}

// CircleMesh builds a filled circle of the given radius centered at the origin
// as a triangle fan: one center vertex, segments rim vertices, and 3*segments
// indices. Texture coordinates map the circle's bounding square onto the
// source rect. Panics if segments < 3.
func CircleMesh(radius float64, segments int, srcW, srcH float64) ([]ebiten.Vertex, []uint16) {
	if segments < 3 {
		panic("marquee: circle mesh needs at least 3 segments")
	}

	verts := make([]ebiten.Vertex, 0, segments+1)
	verts = append(verts, ebiten.Vertex{
		SrcX: float32(srcW / 2), SrcY: float32(srcH / 2),
		ColorR: 1, ColorG: 1, ColorB: 1, ColorA: 1,
	})
	for i := 0; i < segments; i++ {
		angle := 2 * math.Pi * float64(i) / float64(segments)
		sin, cos := math.Sincos(angle)
		verts = append(verts, ebiten.Vertex{
			DstX:   float32(radius * cos),
			DstY:   float32(radius * sin),
			SrcX:   float32((cos + 1) / 2 * srcW),
			SrcY:   float32((sin + 1) / 2 * srcH),
			ColorR: 1, ColorG: 1, ColorB: 1, ColorA: 1,
		})
	}

	indices := make([]uint16, 0, segments*3)
	for i := 0; i < segments; i++ {
		next := i + 1
		if next == segments {
			next = 0
		}
		indices = append(indices, 0, uint16(i+1), uint16(next+1))
	}
	return verts, indices
}

// GridMesh builds a cols x rows grid of quads with shared vertices:
// (cols+1)*(rows+1) vertices and cols*rows*6 indices. The grid's top-left
// corner is at the origin. Interior vertices are shared by up to four quads,
// which is what the index buffer buys over emitting each quad separately.
// Panics if cols or rows < 1, or if the vertex count would overflow uint16.
func GridMesh(cols, rows int, cellW, cellH, srcW, srcH float64) ([]ebiten.Vertex, []uint16) {
	if cols < 1 || rows < 1 {
		panic("marquee: grid mesh needs at least 1x1 cells")
	}
	vertCount := (cols + 1) * (rows + 1)
	if vertCount > math.MaxUint16+1 {
		panic("marquee: grid mesh vertex count exceeds uint16 index range")
	}

	totalW := float64(cols) * cellW
	totalH := float64(rows) * cellH

	verts := make([]ebiten.Vertex, 0, vertCount)
	for row := 0; row <= rows; row++ {
		for col := 0; col <= cols; col++ {
			x := float64(col) * cellW
			y := float64(row) * cellH
			verts = append(verts, ebiten.Vertex{
				DstX:   float32(x),
				DstY:   float32(y),
				SrcX:   float32(x / totalW * srcW),
				SrcY:   float32(y / totalH * srcH),
				ColorR: 1, ColorG: 1, ColorB: 1, ColorA: 1,
			})
		}
	}

	stride := cols + 1
	indices := make([]uint16, 0, cols*rows*6)
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			tl := uint16(row*stride + col)
			tr := tl + 1
			bl := tl + uint16(stride)
			br := bl + 1
			indices = append(indices, tl, tr, bl, bl, tr, br)
		}
	}
	return verts, indices
}

// WeldVertices deduplicates identical vertices and remaps the index buffer to
// point at the surviving unique set. Vertices compare by exact field equality.
// The inputs are not modified; welded copies are returned.
func WeldVertices(verts []ebiten.Vertex, indices []uint16) ([]ebiten.Vertex, []uint16) {
	if len(verts) == 0 {
		return nil, nil
	}

	welded := make([]ebiten.Vertex, 0, len(verts))
	remap := make([]uint16, len(verts))
	seen := make(map[ebiten.Vertex]uint16, len(verts))

	for i, v := range verts {
		if idx, ok := seen[v]; ok {
			remap[i] = idx
			continue
		}
		idx := uint16(len(welded))
		seen[v] = idx
		welded = append(welded, v)
		remap[i] = idx
	}

	newIndices := make([]uint16, len(indices))
	for i, idx := range indices {
		newIndices[i] = remap[idx]
	}
	return welded, newIndices
}
