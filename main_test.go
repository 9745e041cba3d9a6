package marquee

import (
	"errors"
	"os"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

// testMainGame keeps an ebiten run loop alive while the test suite executes,
// so tests may read pixels from ebiten images. Update returns
// ebiten.Termination once the suite finishes.
type testMainGame struct {
	done chan struct{}
}

func (g *testMainGame) Update() error {
	select {
	case <-g.done:
		return ebiten.Termination
	default:
		return nil
	}
}

func (g *testMainGame) Draw(*ebiten.Image) {}

func (g *testMainGame) Layout(w, h int) (int, int) { return w, h }

func TestMain(m *testing.M) {
	game := &testMainGame{done: make(chan struct{})}
	code := 0
	go func() {
		code = m.Run()
		close(game.done)
	}()
	ebiten.SetWindowSize(64, 64)
	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		panic(err)
	}
	os.Exit(code)
}
