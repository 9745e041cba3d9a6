package marquee

import (
	"image/color"
	"math/rand"
	"sort"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

func testMeshNode(name string) *Node {
	verts, indices := QuadMesh(10, 10, 1, 1)
	return NewMesh(name, nil, verts, indices)
}

// runTraverse drives a bare traversal with an identity view, as Draw would.
func runTraverse(s *Scene) {
	s.commands = s.commands[:0]
	s.cullActive = false
	treeOrder := 0
	s.traverse(s.Root(), identityTransform, 1.0, &treeOrder)
}

func TestTraverseEmitsMeshCommand(t *testing.T) {
	s := NewScene()
	n := testMeshNode("quad")
	n.SetPosition(5, 7)
	s.Root().AddChild(n)

	runTraverse(s)

	if len(s.commands) != 1 {
		t.Fatalf("emitted %d commands, want 1", len(s.commands))
	}
	cmd := s.commands[0]
	if cmd.Type != CommandMesh {
		t.Errorf("command type = %v, want CommandMesh", cmd.Type)
	}
	// Vertices are pre-transformed into screen space.
	assertNear(t, "first vertex x", float64(cmd.meshVerts[0].DstX), 0)
	assertNear(t, "first vertex y", float64(cmd.meshVerts[0].DstY), 2)
	// Untextured meshes draw over the shared white pixel.
	if cmd.meshImage != ensureWhitePixel() {
		t.Error("untextured mesh not backed by white pixel image")
	}
}

func TestTraverseSkipsInvisible(t *testing.T) {
	s := NewScene()
	hidden := testMeshNode("hidden")
	hidden.Visible = false
	child := testMeshNode("child of hidden")
	hidden.AddChild(child)
	s.Root().AddChild(hidden)

	runTraverse(s)

	if len(s.commands) != 0 {
		t.Errorf("emitted %d commands from an invisible subtree, want 0", len(s.commands))
	}
}

func TestTraverseSkipsNonRenderable(t *testing.T) {
	s := NewScene()
	n := testMeshNode("proxy")
	n.Renderable = false
	child := testMeshNode("child")
	n.AddChild(child)
	s.Root().AddChild(n)

	runTraverse(s)

	// The node itself emits nothing, but its children still render.
	if len(s.commands) != 1 {
		t.Fatalf("emitted %d commands, want 1 (child only)", len(s.commands))
	}
}

func TestTraverseBillboardWithCurve(t *testing.T) {
	s := NewScene()
	img := ebiten.NewImage(8, 4)
	b := NewBillboard("pic", img, GammaCurve(256, 2.2))
	s.Root().AddChild(b)

	runTraverse(s)

	if len(s.commands) != 1 {
		t.Fatalf("emitted %d commands, want 1", len(s.commands))
	}
	cmd := s.commands[0]
	if cmd.Type != CommandBillboard {
		t.Fatalf("command type = %v, want CommandBillboard", cmd.Type)
	}
	if cmd.lookupTex == nil {
		t.Error("billboard command has no lookup texture")
	}
	if cmd.lutSize != 256 {
		t.Errorf("lutSize = %v, want 256", cmd.lutSize)
	}
	if cmd.texWidth != 8 {
		t.Errorf("texWidth = %v, want 8", cmd.texWidth)
	}
}

func TestTraverseBillboardWithoutCurveDegrades(t *testing.T) {
	s := NewScene()
	img := ebiten.NewImage(8, 4)
	b := NewBillboard("pic", img, nil)
	s.Root().AddChild(b)

	runTraverse(s)

	if len(s.commands) != 1 {
		t.Fatalf("emitted %d commands, want 1", len(s.commands))
	}
	cmd := s.commands[0]
	if cmd.Type != CommandMesh {
		t.Errorf("uncorrected billboard emitted %v, want CommandMesh", cmd.Type)
	}
	if cmd.meshImage != b.Texture() {
		t.Error("uncorrected billboard not drawn with its color texture")
	}
	if b.lookupTex != nil {
		t.Error("uncorrected billboard baked a lookup texture")
	}
}

func TestTraverseAlphaTint(t *testing.T) {
	s := NewScene()
	parent := NewContainer("parent")
	parent.Alpha = 0.5
	n := testMeshNode("quad")
	n.Alpha = 0.5
	parent.AddChild(n)
	s.Root().AddChild(parent)

	runTraverse(s)

	if len(s.commands) != 1 {
		t.Fatal("no command emitted")
	}
	// Vertex alpha carries the inherited world alpha, premultiplied into RGB.
	v := s.commands[0].meshVerts[0]
	assertNear(t, "vertex alpha", float64(v.ColorA), 0.25)
	assertNear(t, "vertex red", float64(v.ColorR), 0.25)
}

func TestTraverseZIndexOrder(t *testing.T) {
	s := NewScene()
	a := testMeshNode("a")
	b := testMeshNode("b")
	c := testMeshNode("c")
	a.SetZIndex(2)
	b.SetZIndex(0)
	c.SetZIndex(1)
	s.Root().AddChild(a)
	s.Root().AddChild(b)
	s.Root().AddChild(c)

	runTraverse(s)

	if len(s.commands) != 3 {
		t.Fatalf("emitted %d commands, want 3", len(s.commands))
	}
	// treeOrder follows ZIndex-sorted traversal: b, c, a.
	if !(s.commands[0].treeOrder < s.commands[1].treeOrder && s.commands[1].treeOrder < s.commands[2].treeOrder) {
		t.Error("treeOrder not monotonic in traversal order")
	}
}

func TestRebuildSortedChildrenStable(t *testing.T) {
	parent := NewContainer("parent")
	a := NewContainer("a")
	b := NewContainer("b")
	c := NewContainer("c")
	// a and c share a ZIndex; insertion order must hold between them.
	a.ZIndex = 1
	b.ZIndex = 0
	c.ZIndex = 1
	parent.AddChild(a)
	parent.AddChild(b)
	parent.AddChild(c)

	rebuildSortedChildren(parent)

	got := parent.sortedChildren
	if got[0] != b || got[1] != a || got[2] != c {
		t.Errorf("sorted order = [%s %s %s], want [b a c]", got[0].Name, got[1].Name, got[2].Name)
	}
}

func TestCommandSortOrdering(t *testing.T) {
	s := NewScene()
	mk := func(layer uint8, global, tree int) RenderCommand {
		return RenderCommand{RenderLayer: layer, GlobalOrder: global, treeOrder: tree}
	}
	s.commands = []RenderCommand{
		mk(1, 0, 1),
		mk(0, 5, 2),
		mk(0, 0, 3),
		mk(0, 5, 4),
		mk(0, 0, 5),
	}

	s.mergeSort()

	for i := 1; i < len(s.commands); i++ {
		if !commandLessOrEqual(s.commands[i-1], s.commands[i]) {
			t.Fatalf("commands[%d] sorts after commands[%d]", i-1, i)
		}
	}
	// Stability: equal (layer, global) keys keep traversal order.
	if s.commands[0].treeOrder != 3 || s.commands[1].treeOrder != 5 {
		t.Errorf("equal-key commands reordered: got treeOrders %d, %d at front",
			s.commands[0].treeOrder, s.commands[1].treeOrder)
	}
	if s.commands[len(s.commands)-1].RenderLayer != 1 {
		t.Error("higher render layer did not sort last")
	}
}

func TestMergeSortMatchesStdSort(t *testing.T) {
	s := NewScene()
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 257; i++ {
		s.commands = append(s.commands, RenderCommand{
			RenderLayer: uint8(rng.Intn(3)),
			GlobalOrder: rng.Intn(4),
			treeOrder:   i + 1,
		})
	}
	want := make([]RenderCommand, len(s.commands))
	copy(want, s.commands)
	sort.SliceStable(want, func(i, j int) bool {
		a, b := want[i], want[j]
		if a.RenderLayer != b.RenderLayer {
			return a.RenderLayer < b.RenderLayer
		}
		return a.GlobalOrder < b.GlobalOrder
	})

	s.mergeSort()

	for i := range want {
		if s.commands[i].treeOrder != want[i].treeOrder {
			t.Fatalf("commands[%d].treeOrder = %d, want %d", i, s.commands[i].treeOrder, want[i].treeOrder)
		}
	}
}

func TestCullingSkipsOffscreenNodes(t *testing.T) {
	s := NewScene()
	onscreen := testMeshNode("onscreen")
	offscreen := testMeshNode("offscreen")
	offscreen.SetPosition(10000, 0)
	s.Root().AddChild(onscreen)
	s.Root().AddChild(offscreen)

	s.commands = s.commands[:0]
	s.cullActive = true
	s.cullBounds = Rect{Width: 100, Height: 100}
	treeOrder := 0
	s.traverse(s.Root(), identityTransform, 1.0, &treeOrder)

	if len(s.commands) != 1 {
		t.Fatalf("emitted %d commands, want 1 (offscreen node culled)", len(s.commands))
	}
}

func TestCulledParentStillRendersChildren(t *testing.T) {
	s := NewScene()
	parent := testMeshNode("parent")
	parent.SetPosition(10000, 0)
	child := testMeshNode("child")
	child.SetPosition(-9950, 0) // back on screen in world space
	parent.AddChild(child)
	s.Root().AddChild(parent)

	s.commands = s.commands[:0]
	s.cullActive = true
	s.cullBounds = Rect{Width: 100, Height: 100}
	treeOrder := 0
	s.traverse(s.Root(), identityTransform, 1.0, &treeOrder)

	if len(s.commands) != 1 {
		t.Fatalf("emitted %d commands, want 1 (child of culled parent)", len(s.commands))
	}
}

func TestSceneDrawSmoke(t *testing.T) {
	s := NewScene()
	s.ClearColor = Color{0.1, 0.1, 0.1, 1}

	quad := testMeshNode("quad")
	quad.SetPosition(100, 100)
	s.Root().AddChild(quad)

	img := ebiten.NewImage(8, 8)
	img.Fill(color.RGBA{R: 200, G: 100, B: 50, A: 255})
	b := NewBillboard("pic", img, nil)
	b.SetPosition(50, 50)
	s.Root().AddChild(b)

	cam := s.NewCamera(Rect{Width: 320, Height: 240})
	cam.Zoom = 2

	screen := ebiten.NewImage(320, 240)
	s.Update()
	s.Draw(screen)

	// Drawing again with a moved camera exercises the cached-matrix path.
	cam.X = 10
	cam.MarkDirty()
	s.Draw(screen)
}
