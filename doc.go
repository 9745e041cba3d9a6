// Package marquee is a retained-mode 2D image display library for [Ebitengine],
// built around color-corrected billboards.
//
// A billboard is a flat textured quad displayed at a fixed aspect ratio with an
// optional 1D color-correction lookup applied per channel at draw time. Marquee
// provides the scene graph, transform hierarchy, cameras, indexed mesh
// primitives, and mouse interaction needed to present images this way.
//
// # Quick start
//
// Implement [ebiten.Game] and call [Scene.Update] and [Scene.Draw]:
//
//	type Game struct{ scene *marquee.Scene }
//
//	func (g *Game) Update() error              { g.scene.Update(); return nil }
//	func (g *Game) Draw(s *ebiten.Image)       { g.scene.Draw(s) }
//	func (g *Game) Layout(w, h int) (int, int) { return w, h }
//
// # Scene graph
//
// Every visual element is a [Node]. Nodes form a tree rooted at [Scene.Root].
// Children inherit their parent's transform and alpha.
//
//	scene := marquee.NewScene()
//	photo := marquee.NewBillboard("photo", img, marquee.GammaCurve(256, 2.2))
//	scene.Root().AddChild(photo)
//
// A billboard occupies one world unit of width; its height follows the image
// aspect ratio. Use a [Camera] zoom (or the node's scale) to size it on screen.
//
// [Ebitengine]: https://ebitengine.org
package marquee
