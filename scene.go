package marquee

import (
	"image"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

const defaultCommandCap = 256

// Scene is the top-level object that owns the node tree, cameras, input state,
// and render buffers.
type Scene struct {
	root  *Node
	debug bool

	// ClearColor fills the target before each draw. Transparent black (the
	// zero value) skips the fill.
	ClearColor Color

	// Cameras
	cameras []*Camera

	// Render state
	commands   []RenderCommand
	sortBuf    []RenderCommand
	cullBounds Rect // current viewport in screen space (set per-camera during Draw)
	cullActive bool // whether culling is active for the current camera

	// Reused draw state (single-threaded, one draw in flight at a time).
	gradeUniforms map[string]any
	shaderOp      ebiten.DrawTrianglesShaderOptions
	trianglesOp   ebiten.DrawTrianglesOptions
	lutPixBuf     []byte

	// Input state
	handlers     handlerRegistry
	pointer      pointerState
	hitBuf       []*Node
	dragDeadZone float64
	injectQueue  []syntheticPointerEvent
}

// NewScene creates a new scene with a pre-created root container.
func NewScene() *Scene {
	root := NewContainer("root")
	root.Interactable = true
	return &Scene{
		root:          root,
		commands:      make([]RenderCommand, 0, defaultCommandCap),
		sortBuf:       make([]RenderCommand, 0, defaultCommandCap),
		gradeUniforms: make(map[string]any, 2),
		dragDeadZone:  defaultDragDeadZone,
	}
}

// Root returns the scene's root container node.
func (s *Scene) Root() *Node {
	return s.root
}

// Update processes input and advances camera animations. World transforms are
// refreshed first so hit testing sees accurate positions this frame.
func (s *Scene) Update() {
	dt := float32(1.0 / float64(ebiten.TPS()))

	updateWorldTransform(s.root, identityTransform, 1.0, true)

	for _, cam := range s.cameras {
		cam.update(dt)
	}
	s.processInput()
}

// Draw traverses the scene tree, emits render commands, sorts them, and
// submits draw calls to the given screen image.
func (s *Scene) Draw(screen *ebiten.Image) {
	if s.ClearColor != (Color{}) {
		screen.Fill(s.ClearColor.toRGBA())
	}

	if len(s.cameras) == 0 {
		// No explicit cameras: use implicit identity camera, full screen.
		s.drawWithCamera(screen, nil)
		return
	}

	for _, cam := range s.cameras {
		cam.computeViewMatrix()
		vp := cam.Viewport
		viewportImg := screen.SubImage(image.Rect(
			int(vp.X), int(vp.Y),
			int(vp.X+vp.Width), int(vp.Y+vp.Height),
		)).(*ebiten.Image)
		s.drawWithCamera(viewportImg, cam)
	}
}

// drawWithCamera renders the scene from a camera's perspective.
// If cam is nil, uses identity view (no camera).
func (s *Scene) drawWithCamera(target *ebiten.Image, cam *Camera) {
	s.commands = s.commands[:0]

	var viewTransform [6]float64
	if cam != nil {
		viewTransform = cam.computeViewMatrix()
		s.cullActive = cam.CullEnabled
	} else {
		viewTransform = identityTransform
		s.cullActive = false
	}
	if s.cullActive {
		b := target.Bounds()
		s.cullBounds = Rect{
			X: float64(b.Min.X), Y: float64(b.Min.Y),
			Width: float64(b.Dx()), Height: float64(b.Dy()),
		}
	}

	var stats debugStats
	var t0 time.Time

	if s.debug {
		t0 = time.Now()
	}

	treeOrder := 0
	s.traverse(s.root, viewTransform, 1.0, &treeOrder)

	if s.debug {
		stats.traverseTime = time.Since(t0)
		t0 = time.Now()
	}

	s.mergeSort()

	if s.debug {
		stats.sortTime = time.Since(t0)
		stats.commandCount = len(s.commands)
		t0 = time.Now()
	}

	s.submit(target)

	if s.debug {
		stats.submitTime = time.Since(t0)
		s.debugLog(stats)
	}
}

// NewCamera creates a camera with the given viewport and adds it to the scene.
func (s *Scene) NewCamera(viewport Rect) *Camera {
	cam := newCamera(viewport)
	s.cameras = append(s.cameras, cam)
	return cam
}

// RemoveCamera removes a camera from the scene.
func (s *Scene) RemoveCamera(cam *Camera) {
	for i, c := range s.cameras {
		if c == cam {
			s.cameras = append(s.cameras[:i], s.cameras[i+1:]...)
			return
		}
	}
}

// Cameras returns the scene's camera list. The returned slice MUST NOT be mutated.
func (s *Scene) Cameras() []*Camera {
	return s.cameras
}

// SetDebugMode enables or disables debug mode. When enabled, disposed-node
// access panics, tree depth warnings are printed, and per-frame timing stats
// are logged to stderr.
func (s *Scene) SetDebugMode(enabled bool) {
	s.debug = enabled
	globalDebug = enabled
}

// globalDebug mirrors the most recently set Scene debug flag so that node
// operations (which lack a Scene pointer) can check it cheaply. Only valid
// with a single Scene; multiple Scenes with differing debug modes will
// reflect whichever called SetDebugMode last.
var globalDebug bool
