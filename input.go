package marquee

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

const defaultDragDeadZone = 4.0 // pixels

// WheelContext carries scroll wheel event data.
type WheelContext struct {
	ScreenX float64
	ScreenY float64
	DeltaY  float64
}

// --- Per-pointer state (mouse only; marquee targets desktop image display) ---

type pointerState struct {
	down     bool
	startX   float64 // world coordinates at press
	startY   float64
	lastX    float64
	lastY    float64
	hitNode  *Node
	dragging bool
	button   MouseButton
}

// --- Handler registry ---

type pointerHandler struct {
	id uint32
	fn func(PointerContext)
}

type dragHandler struct {
	id uint32
	fn func(DragContext)
}

type wheelHandler struct {
	id uint32
	fn func(WheelContext)
}

type handlerRegistry struct {
	pointerDown []pointerHandler
	pointerUp   []pointerHandler
	pointerMove []pointerHandler
	click       []pointerHandler
	drag        []dragHandler
	wheel       []wheelHandler
	nextID      uint32
}

// CallbackHandle allows removing a registered scene-level callback.
type CallbackHandle struct {
	scene *Scene
	kind  uint8
	id    uint32
}

const (
	handlePointerDown uint8 = iota
	handlePointerUp
	handlePointerMove
	handleClick
	handleDrag
	handleWheel
)

// Remove unregisters the callback. Safe to call more than once.
func (h CallbackHandle) Remove() {
	if h.scene == nil {
		return
	}
	r := &h.scene.handlers
	switch h.kind {
	case handlePointerDown:
		r.pointerDown = removePointerHandler(r.pointerDown, h.id)
	case handlePointerUp:
		r.pointerUp = removePointerHandler(r.pointerUp, h.id)
	case handlePointerMove:
		r.pointerMove = removePointerHandler(r.pointerMove, h.id)
	case handleClick:
		r.click = removePointerHandler(r.click, h.id)
	case handleDrag:
		for i, e := range r.drag {
			if e.id == h.id {
				r.drag = append(r.drag[:i], r.drag[i+1:]...)
				return
			}
		}
	case handleWheel:
		for i, e := range r.wheel {
			if e.id == h.id {
				r.wheel = append(r.wheel[:i], r.wheel[i+1:]...)
				return
			}
		}
	}
}

func removePointerHandler(s []pointerHandler, id uint32) []pointerHandler {
	for i, e := range s {
		if e.id == id {
			return append(s[:i], s[i+1:]...)
		}
	}
	return s
}

// --- Scene-level callback registration ---

// OnPointerDown registers a callback fired on every pointer press.
// The context's Node is the hit node, or nil for presses over empty space.
func (s *Scene) OnPointerDown(fn func(PointerContext)) CallbackHandle {
	s.handlers.nextID++
	s.handlers.pointerDown = append(s.handlers.pointerDown, pointerHandler{s.handlers.nextID, fn})
	return CallbackHandle{s, handlePointerDown, s.handlers.nextID}
}

// OnPointerUp registers a callback fired on every pointer release.
func (s *Scene) OnPointerUp(fn func(PointerContext)) CallbackHandle {
	s.handlers.nextID++
	s.handlers.pointerUp = append(s.handlers.pointerUp, pointerHandler{s.handlers.nextID, fn})
	return CallbackHandle{s, handlePointerUp, s.handlers.nextID}
}

// OnPointerMove registers a callback fired when the pointer moves with no
// button held.
func (s *Scene) OnPointerMove(fn func(PointerContext)) CallbackHandle {
	s.handlers.nextID++
	s.handlers.pointerMove = append(s.handlers.pointerMove, pointerHandler{s.handlers.nextID, fn})
	return CallbackHandle{s, handlePointerMove, s.handlers.nextID}
}

// OnClick registers a callback fired on press then release within the drag
// dead zone.
func (s *Scene) OnClick(fn func(PointerContext)) CallbackHandle {
	s.handlers.nextID++
	s.handlers.click = append(s.handlers.click, pointerHandler{s.handlers.nextID, fn})
	return CallbackHandle{s, handleClick, s.handlers.nextID}
}

// OnDrag registers a callback fired each frame while dragging, including
// drags that start over empty space (Node is nil then).
func (s *Scene) OnDrag(fn func(DragContext)) CallbackHandle {
	s.handlers.nextID++
	s.handlers.drag = append(s.handlers.drag, dragHandler{s.handlers.nextID, fn})
	return CallbackHandle{s, handleDrag, s.handlers.nextID}
}

// OnWheel registers a callback fired when the scroll wheel moves.
func (s *Scene) OnWheel(fn func(WheelContext)) CallbackHandle {
	s.handlers.nextID++
	s.handlers.wheel = append(s.handlers.wheel, wheelHandler{s.handlers.nextID, fn})
	return CallbackHandle{s, handleWheel, s.handlers.nextID}
}

// SetDragDeadZone sets the movement threshold (in world units) below which a
// press-release pair counts as a click rather than a drag.
func (s *Scene) SetDragDeadZone(units float64) {
	s.dragDeadZone = units
}

// --- Input processing ---

// primaryCamera returns the first camera, or nil when the scene has none.
func (s *Scene) primaryCamera() *Camera {
	if len(s.cameras) == 0 {
		return nil
	}
	return s.cameras[0]
}

// screenToWorld converts screen coordinates through cam, or passes them
// through unchanged when cam is nil.
func screenToWorld(cam *Camera, sx, sy float64) (float64, float64) {
	if cam == nil {
		return sx, sy
	}
	return cam.ScreenToWorld(sx, sy)
}

func readModifiers() KeyModifiers {
	var mods KeyModifiers
	if ebiten.IsKeyPressed(ebiten.KeyShift) {
		mods |= ModShift
	}
	if ebiten.IsKeyPressed(ebiten.KeyControl) {
		mods |= ModCtrl
	}
	if ebiten.IsKeyPressed(ebiten.KeyAlt) {
		mods |= ModAlt
	}
	if ebiten.IsKeyPressed(ebiten.KeyMeta) {
		mods |= ModMeta
	}
	return mods
}

// processInput reads injected or real mouse state and dispatches events.
// Called from Scene.Update after world transforms are refreshed.
func (s *Scene) processInput() {
	cam := s.primaryCamera()
	mods := readModifiers()

	if !s.processInjectedInput(cam, mods) {
		sx, sy := cursorPosition()
		pressed := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
		wx, wy := screenToWorld(cam, sx, sy)
		s.processPointer(wx, wy, sx, sy, pressed, MouseButtonLeft, mods)
	}

	if _, dy := ebiten.Wheel(); dy != 0 {
		sx, sy := cursorPosition()
		ctx := WheelContext{ScreenX: sx, ScreenY: sy, DeltaY: dy}
		for _, h := range s.handlers.wheel {
			h.fn(ctx)
		}
	}
}

func cursorPosition() (float64, float64) {
	x, y := ebiten.CursorPosition()
	return float64(x), float64(y)
}

// processPointer advances the pointer state machine and fires node and
// scene-level callbacks. Coordinates are world-space; sx/sy screen-space.
func (s *Scene) processPointer(wx, wy, sx, sy float64, pressed bool, button MouseButton, mods KeyModifiers) {
	p := &s.pointer

	switch {
	case pressed && !p.down:
		// Press.
		hit := s.hitTest(wx, wy)
		p.down = true
		p.startX = wx
		p.startY = wy
		p.lastX = wx
		p.lastY = wy
		p.hitNode = hit
		p.dragging = false
		p.button = button

		ctx := s.makePointerContext(hit, wx, wy, button, mods)
		if hit != nil && hit.OnPointerDown != nil {
			hit.OnPointerDown(ctx)
		}
		for _, h := range s.handlers.pointerDown {
			h.fn(ctx)
		}

	case pressed && p.down:
		// Held: maybe a drag.
		if !p.dragging {
			dx := wx - p.startX
			dy := wy - p.startY
			if math.Hypot(dx, dy) > s.dragDeadZone {
				p.dragging = true
			}
		}
		if p.dragging && (wx != p.lastX || wy != p.lastY) {
			ctx := DragContext{
				Node:    p.hitNode,
				GlobalX: wx,
				GlobalY: wy,
				StartX:  p.startX,
				StartY:  p.startY,
				DeltaX:  wx - p.lastX,
				DeltaY:  wy - p.lastY,
				Button:  p.button,
			}
			if p.hitNode != nil && !p.hitNode.IsDisposed() && p.hitNode.OnDrag != nil {
				p.hitNode.OnDrag(ctx)
			}
			for _, h := range s.handlers.drag {
				h.fn(ctx)
			}
		}
		p.lastX = wx
		p.lastY = wy

	case !pressed && p.down:
		// Release.
		hit := p.hitNode
		ctx := s.makePointerContext(hit, wx, wy, p.button, mods)
		if hit != nil && !hit.IsDisposed() && hit.OnPointerUp != nil {
			hit.OnPointerUp(ctx)
		}
		for _, h := range s.handlers.pointerUp {
			h.fn(ctx)
		}
		if !p.dragging {
			if hit != nil && !hit.IsDisposed() && hit.OnClick != nil {
				hit.OnClick(ctx)
			}
			for _, h := range s.handlers.click {
				h.fn(ctx)
			}
		}
		*p = pointerState{}

	default:
		// Hover.
		if len(s.handlers.pointerMove) > 0 && (wx != p.lastX || wy != p.lastY) {
			hit := s.hitTest(wx, wy)
			ctx := s.makePointerContext(hit, wx, wy, button, mods)
			for _, h := range s.handlers.pointerMove {
				h.fn(ctx)
			}
		}
		p.lastX = wx
		p.lastY = wy
	}
}

func (s *Scene) makePointerContext(hit *Node, wx, wy float64, button MouseButton, mods KeyModifiers) PointerContext {
	ctx := PointerContext{
		Node:      hit,
		GlobalX:   wx,
		GlobalY:   wy,
		Button:    button,
		Modifiers: mods,
	}
	if hit != nil {
		ctx.LocalX, ctx.LocalY = hit.WorldToLocal(wx, wy)
	}
	return ctx
}

// --- Hit testing ---

// hitTest returns the topmost interactable node containing the world point,
// or nil. Draw order decides "topmost": the node drawn last wins.
func (s *Scene) hitTest(wx, wy float64) *Node {
	s.hitBuf = s.hitBuf[:0]
	s.hitBuf = collectInteractable(s.root, s.hitBuf)
	for i := len(s.hitBuf) - 1; i >= 0; i-- {
		n := s.hitBuf[i]
		lx, ly := n.WorldToLocal(wx, wy)
		if nodeContainsLocal(n, lx, ly) {
			return n
		}
	}
	return nil
}

// collectInteractable appends interactable leaf nodes in draw order.
func collectInteractable(n *Node, buf []*Node) []*Node {
	if !n.Visible {
		return buf
	}
	if n.Interactable && n.Type != NodeTypeContainer {
		buf = append(buf, n)
	}
	if len(n.children) > 0 {
		if !n.childrenSorted {
			rebuildSortedChildren(n)
		}
		for _, child := range n.sortedChildren {
			buf = collectInteractable(child, buf)
		}
	}
	return buf
}

// nodeContainsLocal reports whether a node-local point lies inside the node's
// visual bounds.
func nodeContainsLocal(n *Node, lx, ly float64) bool {
	switch n.Type {
	case NodeTypeBillboard:
		// The billboard quad spans a unit square centered on the origin in
		// vertex space; the aspect scale lives in the node transform.
		return lx >= -0.5 && lx <= 0.5 && ly >= -0.5 && ly <= 0.5
	case NodeTypeMesh:
		n.recomputeMeshAABB()
		return n.meshAABB.Contains(lx, ly)
	}
	return false
}

// --- Orbit controller ---

// OrbitController wires the walkthrough-style mouse interaction to a camera:
// dragging rotates the view and the scroll wheel zooms. Detach with Remove.
type OrbitController struct {
	Camera *Camera

	// RotateSpeed is radians of camera rotation per world unit of horizontal drag.
	RotateSpeed float64
	// ZoomStep is the multiplicative zoom change per wheel notch.
	ZoomStep float64
	// MinZoom and MaxZoom clamp the wheel zoom range.
	MinZoom, MaxZoom float64

	dragHandle  CallbackHandle
	wheelHandle CallbackHandle
}

// NewOrbitController attaches drag-rotate and wheel-zoom behavior to cam.
func NewOrbitController(s *Scene, cam *Camera) *OrbitController {
	oc := &OrbitController{
		Camera:      cam,
		RotateSpeed: 0.01,
		ZoomStep:    1.1,
		MinZoom:     0.1,
		MaxZoom:     10,
	}
	oc.dragHandle = s.OnDrag(func(ctx DragContext) {
		oc.Camera.Rotation += ctx.DeltaX * oc.RotateSpeed
		oc.Camera.MarkDirty()
	})
	oc.wheelHandle = s.OnWheel(func(ctx WheelContext) {
		zoom := oc.Camera.Zoom * math.Pow(oc.ZoomStep, ctx.DeltaY)
		if zoom < oc.MinZoom {
			zoom = oc.MinZoom
		}
		if zoom > oc.MaxZoom {
			zoom = oc.MaxZoom
		}
		oc.Camera.Zoom = zoom
		oc.Camera.MarkDirty()
	})
	return oc
}

// Remove detaches the controller's callbacks from the scene.
func (oc *OrbitController) Remove() {
	oc.dragHandle.Remove()
	oc.wheelHandle.Remove()
}
