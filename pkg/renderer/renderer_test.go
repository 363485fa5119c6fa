// pkg/renderer/renderer_test.go
// Copyright(c) 2024-2026 cocos2d-x-lite contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package renderer

import (
	"slices"
	"testing"

	"github.com/chenfeng345/cocos2d-x-lite/pkg/gfx"
	"github.com/chenfeng345/cocos2d-x-lite/pkg/math"

	"github.com/go-gl/mathgl/mgl32"
)

func newTestRenderer(t *testing.T) (*Renderer, *testDevice) {
	t.Helper()
	dev := newTestDevice()
	r, err := New(dev, nil)
	if err != nil {
		t.Fatalf("unexpected error creating renderer: %v", err)
	}
	return r, dev
}

// bogusCommand reports a kind the renderer has no dispatch case for.
type bogusCommand struct{}

func (bogusCommand) Kind() CommandKind    { return CommandKind(42) }
func (bogusCommand) GlobalOrder() float32 { return 0 }

// unknownCommand reports the zero kind, which submission rejects.
type unknownCommand struct{}

func (unknownCommand) Kind() CommandKind    { return CommandUnknown }
func (unknownCommand) GlobalOrder() float32 { return 0 }

func TestRendererDrawsTiersInOrder(t *testing.T) {
	r, dev := newTestRenderer(t)

	var bound []string
	mark := func(name string) func() {
		return func() { bound = append(bound, name) }
	}

	neg := tricmd(-1, 1)
	neg.UseMaterial = mark("neg")
	pos := tricmd(2, 1)
	pos.UseMaterial = mark("pos")
	zero := tricmd(0, 2)
	zero.UseMaterial = mark("zero")

	// Submission order differs from draw order.
	r.AddCommand(pos)
	r.AddCommand(zero)
	r.AddCommand(neg)
	r.Render()

	if n := len(dev.draws); n != 3 {
		t.Fatalf("draw calls: got %d, expected 3", n)
	}
	if want := []string{"neg", "zero", "pos"}; !slices.Equal(bound, want) {
		t.Errorf("draw order: got %v, expected %v", bound, want)
	}
	// Each tier gets its own state application even when the states are
	// identical, and each flush restarts at the front of the buffers.
	for i, d := range dev.draws {
		if d.byteOffset != 0 {
			t.Errorf("draw %d byte offset: got %d, expected 0", i, d.byteOffset)
		}
		if want := (gfx.RasterState{Blend: true}); d.state != want {
			t.Errorf("draw %d state: got %+v, expected %+v", i, d.state, want)
		}
	}
	if n := len(dev.stateSets); n != 4 {
		t.Errorf("state applications: got %d, expected 3 tiers plus the restore", n)
	}
}

func TestRenderer3DTierState(t *testing.T) {
	r, dev := newTestRenderer(t)

	r.AddCommandToGroup(tricmd(0, 1), GroupOpaque3D)
	r.AddCommandToGroup(tricmd(0, 1), GroupTransparent3D)
	r.Render()

	if n := len(dev.draws); n != 2 {
		t.Fatalf("draw calls: got %d, expected 2", n)
	}
	if want := (gfx.RasterState{DepthTest: true, DepthWrite: true, CullFace: true}); dev.draws[0].state != want {
		t.Errorf("opaque state: got %+v, expected %+v", dev.draws[0].state, want)
	}
	if want := (gfx.RasterState{DepthTest: true, CullFace: true, Blend: true}); dev.draws[1].state != want {
		t.Errorf("transparent state: got %+v, expected %+v", dev.draws[1].state, want)
	}
}

func TestRendererRestoresState(t *testing.T) {
	r, dev := newTestRenderer(t)
	initial := gfx.RasterState{DepthTest: true, DepthWrite: true}
	dev.state = initial

	r.AddCommand(tricmd(0, 1))
	r.Render()

	if dev.state != initial {
		t.Errorf("state after render: got %+v, expected %+v", dev.state, initial)
	}
}

func TestRendererCleansUpOnPanic(t *testing.T) {
	r, dev := newTestRenderer(t)
	initial := gfx.RasterState{CullFace: true}
	dev.state = initial

	r.AddCommand(&CustomCommand{Execute: func() { panic("texture deleted") }})

	func() {
		defer func() {
			if recover() == nil {
				t.Fatalf("expected the command's panic to propagate")
			}
		}()
		r.Render()
	}()

	if dev.state != initial {
		t.Errorf("state after panic: got %+v, expected %+v", dev.state, initial)
	}
	if n := r.queues[0].Len(); n != 0 {
		t.Errorf("default queue length after panic: got %d, expected 0", n)
	}

	// The renderer must accept commands and render again.
	r.AddCommand(tricmd(0, 1))
	r.Render()
	if n := len(dev.draws); n != 1 {
		t.Errorf("draw calls after recovery: got %d, expected 1", n)
	}
}

func TestRendererGroupCommand(t *testing.T) {
	r, dev := newTestRenderer(t)

	qid := r.CreateRenderQueue()
	r.AddCommand(&GroupCommand{QueueID: qid})
	r.PushGroup(qid)
	r.AddCommand(tricmd(0, 1))
	r.PopGroup()
	r.Render()

	// The nested queue's command is drawn exactly once, where the group
	// command sits, not again afterwards.
	if n := len(dev.draws); n != 1 {
		t.Errorf("draw calls: got %d, expected 1", n)
	}
}

func TestRendererGroupCommandUnknownQueue(t *testing.T) {
	r, dev := newTestRenderer(t)

	r.AddCommand(&GroupCommand{QueueID: 99})
	r.AddCommand(tricmd(0, 1))
	r.Render()

	// The bad group command is skipped; the rest of the frame draws.
	if n := len(dev.draws); n != 1 {
		t.Errorf("draw calls: got %d, expected 1", n)
	}
}

func TestRendererCustomCommandSplitsBatch(t *testing.T) {
	r, dev := newTestRenderer(t)

	var order []string
	bind := func() { order = append(order, "draw") }
	a := tricmd(0, 1)
	a.UseMaterial = bind
	b := tricmd(0, 1)
	b.UseMaterial = bind

	r.AddCommand(a)
	r.AddCommand(&CustomCommand{Execute: func() { order = append(order, "custom") }})
	r.AddCommand(b)
	r.Render()

	// Without the custom command in between the two triangles would
	// merge into one draw.
	if n := len(dev.draws); n != 2 {
		t.Errorf("draw calls: got %d, expected 2", n)
	}
	if want := []string{"draw", "custom", "draw"}; !slices.Equal(order, want) {
		t.Errorf("execution order: got %v, expected %v", order, want)
	}
}

func TestRendererPanicsOnSubmitDuringRender(t *testing.T) {
	r, _ := newTestRenderer(t)

	r.AddCommand(&CustomCommand{Execute: func() { r.AddCommand(tricmd(0, 1)) }})

	defer func() {
		if recover() == nil {
			t.Errorf("expected panic for submission during render")
		}
	}()
	r.Render()
}

func TestRendererPanicsOnBadSubmission(t *testing.T) {
	r, _ := newTestRenderer(t)

	for _, tc := range []struct {
		name   string
		submit func()
	}{
		{"negative queue", func() { r.AddCommandToQueue(tricmd(0, 1), -1) }},
		{"unknown queue", func() { r.AddCommandToQueue(tricmd(0, 1), 5) }},
		{"unknown kind", func() { r.AddCommand(unknownCommand{}) }},
		{"group stack underflow", func() { r.PopGroup() }},
	} {
		t.Run(tc.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Errorf("expected panic")
				}
			}()
			tc.submit()
		})
	}
}

func TestRendererSkipsUnhandledKind(t *testing.T) {
	r, dev := newTestRenderer(t)

	r.AddCommand(bogusCommand{})
	r.AddCommand(tricmd(0, 1))
	r.Render()

	if n := len(dev.draws); n != 1 {
		t.Errorf("draw calls: got %d, expected 1", n)
	}
}

func TestRendererClear(t *testing.T) {
	r, dev := newTestRenderer(t)

	r.Clear()
	r.SetClearColor(RGBA{R: 0.25, G: 0.5, B: 0.75, A: 1})
	r.Clear()

	if n := len(dev.clears); n != 2 {
		t.Fatalf("clears: got %d, expected 2", n)
	}
	if want := [4]float32{0, 0, 0, 1}; dev.clears[0] != want {
		t.Errorf("default clear color: got %v, expected %v", dev.clears[0], want)
	}
	if want := [4]float32{0.25, 0.5, 0.75, 1}; dev.clears[1] != want {
		t.Errorf("clear color: got %v, expected %v", dev.clears[1], want)
	}
}

func TestRendererDepthTestFor2D(t *testing.T) {
	r, dev := newTestRenderer(t)

	r.SetDepthTestFor2D(true)
	if !dev.lequalSet {
		t.Errorf("expected depth func to be configured on enable")
	}
	r.AddCommand(tricmd(0, 1))
	r.Render()
	want := gfx.RasterState{DepthTest: true, DepthWrite: true, Blend: true}
	if got := dev.draws[0].state; got != want {
		t.Errorf("2D state with depth test: got %+v, expected %+v", got, want)
	}

	r.SetDepthTestFor2D(false)
	r.AddCommand(tricmd(0, 1))
	r.Render()
	want = gfx.RasterState{Blend: true}
	if got := dev.draws[1].state; got != want {
		t.Errorf("2D state without depth test: got %+v, expected %+v", got, want)
	}
}

func TestRendererStatsResetPerFrame(t *testing.T) {
	r, _ := newTestRenderer(t)

	r.AddCommand(tricmd(0, 1))
	r.AddCommand(tricmd(0, 1))
	r.Render()

	stats := r.Stats()
	if stats.DrawnBatches != 1 || stats.DrawnVertices != 6 || stats.DrawnIndexes != 6 || stats.FlushCount != 1 {
		t.Errorf("frame stats: got %+v", stats)
	}

	r.Render()
	if stats := r.Stats(); stats != (Stats{}) {
		t.Errorf("stats after empty frame: got %+v, expected zero", stats)
	}
}

func TestCheckVisibility(t *testing.T) {
	r, _ := newTestRenderer(t)

	// With no visible rect set everything is visible.
	if !r.CheckVisibility(mgl32.Ident4(), [2]float32{10, 10}) {
		t.Errorf("expected visibility with no visible rect")
	}

	r.SetVisibleRect(math.Extent2D{P0: [2]float32{0, 0}, P1: [2]float32{100, 100}})

	for _, tc := range []struct {
		name      string
		transform mgl32.Mat4
		size      [2]float32
		visible   bool
	}{
		{"inside", mgl32.Ident4(), [2]float32{10, 10}, true},
		{"far right", mgl32.Translate3D(200, 50, 0), [2]float32{10, 10}, false},
		{"above", mgl32.Translate3D(50, 160, 0), [2]float32{10, 10}, false},
		// The midpoint test is conservative: content mostly past the
		// right edge still reports visible.
		{"straddling edge", mgl32.Translate3D(99, 0, 0), [2]float32{10, 10}, true},
		// A wide strip misses the rect unrotated but crosses it when
		// rotated a quarter turn.
		{"wide strip", mgl32.Translate3D(100, 0, 0), [2]float32{300, 2}, false},
		{"rotated strip", mgl32.Translate3D(100, 0, 0).Mul4(mgl32.HomogRotate3DZ(math.Radians(90))), [2]float32{300, 2}, true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if got := r.CheckVisibility(tc.transform, tc.size); got != tc.visible {
				t.Errorf("visibility: got %v, expected %v", got, tc.visible)
			}
		})
	}
}

func TestRendererDispose(t *testing.T) {
	r, dev := newTestRenderer(t)

	r.Dispose()
	if n := len(dev.uploads); n != 0 {
		t.Errorf("buffers after dispose: got %d, expected 0", n)
	}
}
