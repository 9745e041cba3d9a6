package marquee

import (
	"math"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

func TestTransformVertices(t *testing.T) {
	src := []ebiten.Vertex{
		{DstX: 1, DstY: 0, ColorR: 1, ColorG: 1, ColorB: 1, ColorA: 1},
		{DstX: 0, DstY: 1, ColorR: 1, ColorG: 1, ColorB: 1, ColorA: 1},
	}
	dst := make([]ebiten.Vertex, 2)

	// Scale by 2, translate by (10, 20).
	m := [6]float64{2, 0, 0, 2, 10, 20}
	transformVertices(src, dst, m, Color{1, 1, 1, 1})

	assertNear(t, "v0 x", float64(dst[0].DstX), 12)
	assertNear(t, "v0 y", float64(dst[0].DstY), 20)
	assertNear(t, "v1 x", float64(dst[1].DstX), 10)
	assertNear(t, "v1 y", float64(dst[1].DstY), 22)
}

func TestTransformVerticesTint(t *testing.T) {
	src := []ebiten.Vertex{
		{ColorR: 1, ColorG: 0.5, ColorB: 1, ColorA: 1},
	}
	dst := make([]ebiten.Vertex, 1)

	transformVertices(src, dst, identityTransform, Color{1, 1, 0.5, 0.5})

	// Tint multiplies per channel; alpha premultiplies into RGB.
	assertNear(t, "red", float64(dst[0].ColorR), 0.5)
	assertNear(t, "green", float64(dst[0].ColorG), 0.25)
	assertNear(t, "blue", float64(dst[0].ColorB), 0.25)
	assertNear(t, "alpha", float64(dst[0].ColorA), 0.5)
}

func TestComputeMeshAABB(t *testing.T) {
	verts := []ebiten.Vertex{
		{DstX: -3, DstY: 2},
		{DstX: 5, DstY: -1},
		{DstX: 0, DstY: 7},
	}
	aabb := computeMeshAABB(verts)
	assertNear(t, "x", aabb.X, -3)
	assertNear(t, "y", aabb.Y, -1)
	assertNear(t, "width", aabb.Width, 8)
	assertNear(t, "height", aabb.Height, 8)
}

func TestComputeMeshAABBEmpty(t *testing.T) {
	if aabb := computeMeshAABB(nil); aabb != (Rect{}) {
		t.Errorf("empty AABB = %+v, want zero rect", aabb)
	}
}

func TestEnsureTransformedVertsHighWater(t *testing.T) {
	verts, indices := QuadMesh(10, 10, 1, 1)
	n := NewMesh("quad", nil, verts, indices)

	buf := ensureTransformedVerts(n)
	if len(buf) != 4 {
		t.Fatalf("buffer length = %d, want 4", len(buf))
	}

	// Shrinking the mesh keeps the larger backing array.
	bigCap := cap(n.transformedVerts)
	n.Vertices = verts[:2]
	buf = ensureTransformedVerts(n)
	if len(buf) != 2 {
		t.Errorf("buffer length = %d, want 2", len(buf))
	}
	if cap(n.transformedVerts) != bigCap {
		t.Error("buffer capacity shrank")
	}
}

func TestInvalidateMeshAABB(t *testing.T) {
	verts, indices := QuadMesh(10, 10, 1, 1)
	n := NewMesh("quad", nil, verts, indices)
	n.recomputeMeshAABB()

	// Mutate the vertices; the cached AABB is stale until invalidated.
	for i := range n.Vertices {
		n.Vertices[i].DstX *= 10
	}
	n.recomputeMeshAABB()
	assertNear(t, "stale width", n.meshAABB.Width, 10)

	n.InvalidateMeshAABB()
	n.recomputeMeshAABB()
	assertNear(t, "fresh width", n.meshAABB.Width, 100)
}

func TestMeshScreenAABBRotation(t *testing.T) {
	verts, indices := QuadMesh(10, 10, 1, 1)
	n := NewMesh("quad", nil, verts, indices)

	// 45 degree rotation widens the AABB to the quad's diagonal.
	cos := math.Cos(math.Pi / 4)
	sin := math.Sin(math.Pi / 4)
	m := [6]float64{cos, sin, -sin, cos, 0, 0}

	aabb := meshScreenAABB(n, m)
	want := 10 * math.Sqrt2
	if math.Abs(aabb.Width-want) > 1e-9 || math.Abs(aabb.Height-want) > 1e-9 {
		t.Errorf("rotated AABB = %vx%v, want %vx%v", aabb.Width, aabb.Height, want, want)
	}
}

func TestShouldCull(t *testing.T) {
	verts, indices := QuadMesh(10, 10, 1, 1)
	bounds := Rect{Width: 100, Height: 100}

	tests := []struct {
		name string
		x, y float64
		want bool
	}{
		{"center", 50, 50, false},
		{"straddles edge", 100, 50, false},
		{"fully right", 200, 50, true},
		{"fully above", 50, -200, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := NewMesh("quad", nil, verts, indices)
			m := [6]float64{1, 0, 0, 1, tt.x, tt.y}
			if got := shouldCull(n, m, bounds); got != tt.want {
				t.Errorf("shouldCull at (%v, %v) = %v, want %v", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestShouldCullNeverCullsContainers(t *testing.T) {
	n := NewContainer("group")
	m := [6]float64{1, 0, 0, 1, 1e6, 1e6}
	if shouldCull(n, m, Rect{Width: 10, Height: 10}) {
		t.Error("container was culled")
	}
}
