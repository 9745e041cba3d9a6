package marquee

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// CommandType identifies the kind of render command.
type CommandType uint8

const (
	CommandBillboard CommandType = iota // DrawTrianglesShader with grade lookup
	CommandMesh                         // DrawTriangles
)

// RenderCommand is a single draw instruction emitted during scene traversal.
type RenderCommand struct {
	Type        CommandType
	BlendMode   BlendMode
	RenderLayer uint8
	GlobalOrder int
	treeOrder   int // assigned during traversal for stable sort

	// Vertex data (slice headers, not copies).
	meshVerts []ebiten.Vertex
	meshInds  []uint16
	meshImage *ebiten.Image

	// Billboard-only fields.
	lookupTex *ebiten.Image
	lutSize   float32
	texWidth  float32
}

// traverse walks the node tree depth-first, updating view-inclusive transforms
// and emitting render commands for visible, renderable leaf nodes.
// parentTransform is view * ancestorWorld, so emitted vertices land in screen
// space; Scene.Update restores pure world transforms next frame.
func (s *Scene) traverse(n *Node, parentTransform [6]float64, parentAlpha float64, treeOrder *int) {
	if !n.Visible {
		return
	}

	local := computeLocalTransform(n)
	n.worldTransform = multiplyAffine(parentTransform, local)
	n.worldAlpha = parentAlpha * n.Alpha
	n.transformDirty = false

	// Culling only suppresses this node's command emission; children are
	// ALWAYS traversed because any node type may have children whose
	// positions differ from the parent's AABB.
	culled := s.cullActive && n.Renderable && shouldCull(n, n.worldTransform, s.cullBounds)

	if n.Renderable && !culled && len(n.Vertices) > 0 && len(n.Indices) > 0 {
		switch n.Type {
		case NodeTypeBillboard:
			s.lutPixBuf = n.ensureLookupTex(s.lutPixBuf)
			tint := Color{n.Color.R, n.Color.G, n.Color.B, n.Color.A * n.worldAlpha}
			dst := ensureTransformedVerts(n)
			transformVertices(n.Vertices, dst, n.worldTransform, tint)
			*treeOrder++
			cmd := RenderCommand{
				BlendMode:   n.BlendMode,
				RenderLayer: n.RenderLayer,
				GlobalOrder: n.GlobalOrder,
				treeOrder:   *treeOrder,
				meshVerts:   dst,
				meshInds:    n.Indices,
				meshImage:   n.texture,
			}
			if n.curve != nil {
				cmd.Type = CommandBillboard
				cmd.lookupTex = n.lookupTex
				cmd.lutSize = float32(n.curve.Size())
				cmd.texWidth = float32(n.imageW)
			} else {
				// No correction: a billboard degrades to a plain textured mesh.
				cmd.Type = CommandMesh
			}
			s.commands = append(s.commands, cmd)
		case NodeTypeMesh:
			tint := Color{n.Color.R, n.Color.G, n.Color.B, n.Color.A * n.worldAlpha}
			dst := ensureTransformedVerts(n)
			transformVertices(n.Vertices, dst, n.worldTransform, tint)
			*treeOrder++
			img := n.MeshImage
			if img == nil {
				img = ensureWhitePixel()
			}
			s.commands = append(s.commands, RenderCommand{
				Type:        CommandMesh,
				BlendMode:   n.BlendMode,
				RenderLayer: n.RenderLayer,
				GlobalOrder: n.GlobalOrder,
				treeOrder:   *treeOrder,
				meshVerts:   dst,
				meshInds:    n.Indices,
				meshImage:   img,
			})
		}
	}

	// Recurse in ZIndex order.
	if len(n.children) > 0 {
		if !n.childrenSorted {
			rebuildSortedChildren(n)
		}
		for _, child := range n.sortedChildren {
			s.traverse(child, n.worldTransform, n.worldAlpha, treeOrder)
		}
	}
}

// rebuildSortedChildren refreshes n.sortedChildren with a stable insertion
// sort by ZIndex. Children mostly stay sorted frame to frame, so insertion
// sort beats the general-purpose sorts here.
func rebuildSortedChildren(n *Node) {
	nc := len(n.children)
	if cap(n.sortedChildren) < nc {
		n.sortedChildren = make([]*Node, nc)
	}
	n.sortedChildren = n.sortedChildren[:nc]
	copy(n.sortedChildren, n.children)
	for i := 1; i < nc; i++ {
		key := n.sortedChildren[i]
		j := i - 1
		for j >= 0 && n.sortedChildren[j].ZIndex > key.ZIndex {
			n.sortedChildren[j+1] = n.sortedChildren[j]
			j--
		}
		n.sortedChildren[j+1] = key
	}
	n.childrenSorted = true
}

// --- Merge sort ---

// commandLessOrEqual returns true if a should sort before or at the same position as b.
// Using <= for treeOrder ensures stability.
func commandLessOrEqual(a, b RenderCommand) bool {
	if a.RenderLayer != b.RenderLayer {
		return a.RenderLayer < b.RenderLayer
	}
	if a.GlobalOrder != b.GlobalOrder {
		return a.GlobalOrder < b.GlobalOrder
	}
	return a.treeOrder <= b.treeOrder
}

// mergeSort sorts s.commands in-place using s.sortBuf as scratch space.
// Bottom-up merge sort: zero allocations after the sort buffer reaches high-water mark.
func (s *Scene) mergeSort() {
	n := len(s.commands)
	if n <= 1 {
		return
	}
	if cap(s.sortBuf) < n {
		s.sortBuf = make([]RenderCommand, n)
	}
	s.sortBuf = s.sortBuf[:n]

	a := s.commands
	b := s.sortBuf
	swapped := false

	for width := 1; width < n; width *= 2 {
		for i := 0; i < n; i += 2 * width {
			lo := i
			mid := lo + width
			if mid > n {
				mid = n
			}
			hi := lo + 2*width
			if hi > n {
				hi = n
			}
			mergeRun(a, b, lo, mid, hi)
		}
		a, b = b, a
		swapped = !swapped
	}

	if swapped {
		copy(s.commands, s.sortBuf)
	}
}

// mergeRun merges two sorted runs [lo, mid) and [mid, hi) from src into dst.
func mergeRun(src, dst []RenderCommand, lo, mid, hi int) {
	i, j, k := lo, mid, lo
	for i < mid && j < hi {
		if commandLessOrEqual(src[i], src[j]) {
			dst[k] = src[i]
			i++
		} else {
			dst[k] = src[j]
			j++
		}
		k++
	}
	for i < mid {
		dst[k] = src[i]
		i++
		k++
	}
	for j < hi {
		dst[k] = src[j]
		j++
		k++
	}
}

// --- Submission ---

// submit issues one draw call per command. Vertices are already in screen
// space, so only the blend mode and source images vary per call.
func (s *Scene) submit(target *ebiten.Image) {
	for i := range s.commands {
		cmd := &s.commands[i]
		switch cmd.Type {
		case CommandBillboard:
			shader := ensureGradeShader()
			// Scalar float32 boxing is unavoidable with Ebitengine's uniform
			// API; the map itself is reused across draws.
			s.gradeUniforms["LutSize"] = cmd.lutSize
			s.gradeUniforms["TexWidth"] = cmd.texWidth
			s.shaderOp.Images[0] = cmd.meshImage
			s.shaderOp.Images[1] = cmd.lookupTex
			s.shaderOp.Uniforms = s.gradeUniforms
			s.shaderOp.Blend = cmd.BlendMode.EbitenBlend()
			target.DrawTrianglesShader(cmd.meshVerts, cmd.meshInds, shader, &s.shaderOp)
		case CommandMesh:
			s.trianglesOp.Blend = cmd.BlendMode.EbitenBlend()
			s.trianglesOp.Filter = ebiten.FilterLinear
			target.DrawTriangles(cmd.meshVerts, cmd.meshInds, cmd.meshImage, &s.trianglesOp)
		}
	}
}
