package marquee

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

func TestQuadMesh(t *testing.T) {
	verts, indices := QuadMesh(2, 4, 32, 64)

	if len(verts) != 4 {
		t.Fatalf("quad has %d vertices, want 4", len(verts))
	}
	if len(indices) != 6 {
		t.Fatalf("quad has %d indices, want 6", len(indices))
	}

	// Centered at the origin.
	if verts[0].DstX != -1 || verts[0].DstY != -2 {
		t.Errorf("top-left = (%v, %v), want (-1, -2)", verts[0].DstX, verts[0].DstY)
	}
	if verts[3].DstX != 1 || verts[3].DstY != 2 {
		t.Errorf("bottom-right = (%v, %v), want (1, 2)", verts[3].DstX, verts[3].DstY)
	}

	// Texture coordinates span the full source rect.
	if verts[0].SrcX != 0 || verts[0].SrcY != 0 {
		t.Errorf("top-left src = (%v, %v), want (0, 0)", verts[0].SrcX, verts[0].SrcY)
	}
	if verts[3].SrcX != 32 || verts[3].SrcY != 64 {
		t.Errorf("bottom-right src = (%v, %v), want (32, 64)", verts[3].SrcX, verts[3].SrcY)
	}

	want := []uint16{0, 1, 2, 2, 1, 3}
	for i, idx := range indices {
		if idx != want[i] {
			t.Errorf("indices[%d] = %d, want %d", i, idx, want[i])
		}
	}
}

func TestCircleMesh(t *testing.T) {
	tests := []struct {
		name     string
		segments int
	}{
		{"triangle", 3},
		{"hexagon", 6},
		{"smooth", 48},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verts, indices := CircleMesh(10, tt.segments, 1, 1)
			if len(verts) != tt.segments+1 {
				t.Errorf("%d vertices, want %d", len(verts), tt.segments+1)
			}
			if len(indices) != tt.segments*3 {
				t.Errorf("%d indices, want %d", len(indices), tt.segments*3)
			}
			// Every triangle fans from the center vertex.
			for i := 0; i < len(indices); i += 3 {
				if indices[i] != 0 {
					t.Errorf("triangle %d does not start at center", i/3)
				}
			}
			// The last triangle wraps back to the first rim vertex.
			if indices[len(indices)-1] != 1 {
				t.Errorf("last index = %d, want 1", indices[len(indices)-1])
			}
		})
	}
}

func TestCircleMeshPanicsOnTooFewSegments(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("CircleMesh with 2 segments did not panic")
		}
	}()
	CircleMesh(10, 2, 1, 1)
}

func TestGridMesh(t *testing.T) {
	cols, rows := 3, 2
	verts, indices := GridMesh(cols, rows, 10, 10, 1, 1)

	if len(verts) != (cols+1)*(rows+1) {
		t.Errorf("%d vertices, want %d", len(verts), (cols+1)*(rows+1))
	}
	if len(indices) != cols*rows*6 {
		t.Errorf("%d indices, want %d", len(indices), cols*rows*6)
	}

	// Top-left vertex sits at the origin; bottom-right at the grid extent.
	if verts[0].DstX != 0 || verts[0].DstY != 0 {
		t.Errorf("first vertex = (%v, %v), want (0, 0)", verts[0].DstX, verts[0].DstY)
	}
	last := verts[len(verts)-1]
	if last.DstX != 30 || last.DstY != 20 {
		t.Errorf("last vertex = (%v, %v), want (30, 20)", last.DstX, last.DstY)
	}

	// All indices must be in range.
	for i, idx := range indices {
		if int(idx) >= len(verts) {
			t.Fatalf("indices[%d] = %d out of range (%d vertices)", i, idx, len(verts))
		}
	}
}

func TestGridMeshSharesInteriorVertices(t *testing.T) {
	// In a 2x1 grid the middle edge vertices are shared by both quads, so the
	// index buffer references them more than once.
	_, indices := GridMesh(2, 1, 10, 10, 1, 1)
	counts := map[uint16]int{}
	for _, idx := range indices {
		counts[idx]++
	}
	if counts[1] < 2 || counts[4] < 2 {
		t.Errorf("interior vertices not shared: counts = %v", counts)
	}
}

func TestGridMeshPanics(t *testing.T) {
	tests := []struct {
		name       string
		cols, rows int
	}{
		{"zero cols", 0, 2},
		{"zero rows", 2, 0},
		{"index overflow", 256, 256},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("GridMesh did not panic")
				}
			}()
			GridMesh(tt.cols, tt.rows, 1, 1, 1, 1)
		})
	}
}

func TestWeldVertices(t *testing.T) {
	v := func(x, y float32) ebiten.Vertex {
		return ebiten.Vertex{DstX: x, DstY: y, ColorR: 1, ColorG: 1, ColorB: 1, ColorA: 1}
	}
	// Two triangles sharing an edge, emitted with duplicated vertices.
	verts := []ebiten.Vertex{
		v(0, 0), v(1, 0), v(0, 1),
		v(1, 0), v(1, 1), v(0, 1),
	}
	indices := []uint16{0, 1, 2, 3, 4, 5}

	welded, remapped := WeldVertices(verts, indices)

	if len(welded) != 4 {
		t.Errorf("%d welded vertices, want 4", len(welded))
	}
	if len(remapped) != 6 {
		t.Fatalf("%d indices, want 6", len(remapped))
	}
	// Same geometry: every remapped index resolves to the original vertex.
	for i, idx := range remapped {
		if welded[idx] != verts[indices[i]] {
			t.Errorf("index %d resolves to wrong vertex", i)
		}
	}
}

func TestWeldVerticesEmpty(t *testing.T) {
	verts, indices := WeldVertices(nil, nil)
	if verts != nil || indices != nil {
		t.Error("welding empty input should return nil")
	}
}

func TestWeldVerticesNoDuplicates(t *testing.T) {
	verts, indices := QuadMesh(1, 1, 1, 1)
	welded, remapped := WeldVertices(verts, indices)
	if len(welded) != len(verts) {
		t.Errorf("welding unique vertices changed count: %d -> %d", len(verts), len(welded))
	}
	for i := range indices {
		if remapped[i] != indices[i] {
			t.Errorf("indices[%d] changed: %d -> %d", i, indices[i], remapped[i])
		}
	}
}
