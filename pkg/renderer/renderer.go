// pkg/renderer/renderer.go
// Copyright(c) 2024-2026 cocos2d-x-lite contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package renderer

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/chenfeng345/cocos2d-x-lite/pkg/gfx"
	"github.com/chenfeng345/cocos2d-x-lite/pkg/log"
	"github.com/chenfeng345/cocos2d-x-lite/pkg/math"

	"github.com/go-gl/mathgl/mgl32"
)

// Renderer collects render commands over the course of a frame and draws
// them when Render is called: commands are sorted by global order,
// visited tier by tier under per-tier raster state, and triangle
// geometry is coalesced into batched draw calls along the way. A frame
// is strictly two phases; submitting while Render runs is a programming
// error and panics.
type Renderer struct {
	dev gfx.Device
	lg  *log.Logger

	// queues[0] is the default queue; the rest come from
	// CreateRenderQueue and are drawn when a GroupCommand names them.
	queues []*RenderQueue

	// groupStack tracks which queue AddCommand currently targets; the
	// bottom entry is always queue 0.
	groupStack []int

	batcher *TriangleBatcher

	clearColor     RGBA
	depthTestFor2D bool
	visibleRect    math.Extent2D

	rendering atomic.Bool
}

// New creates a Renderer drawing through the given device.
func New(dev gfx.Device, lg *log.Logger) (*Renderer, error) {
	r := &Renderer{
		dev:        dev,
		lg:         lg,
		queues:     []*RenderQueue{{}},
		groupStack: []int{0},
		clearColor: RGBA{A: 1},
	}

	var err error
	if r.batcher, err = NewTriangleBatcher(dev, lg); err != nil {
		return nil, err
	}
	return r, nil
}

// AddCommand submits a command to the queue currently targeted by the
// group stack.
func (r *Renderer) AddCommand(cmd RenderCommand) {
	r.AddCommandToQueue(cmd, r.groupStack[len(r.groupStack)-1])
}

// AddCommandToQueue submits a command to a specific queue. It panics if
// called while Render is in progress, if the queue id is invalid, or if
// the command reports the unknown kind.
func (r *Renderer) AddCommandToQueue(cmd RenderCommand, queue int) {
	if r.rendering.Load() {
		panic("cannot add command while rendering")
	}
	if queue < 0 || queue >= len(r.queues) {
		panic(fmt.Sprintf("invalid render queue id %d", queue))
	}
	if cmd.Kind() == CommandUnknown {
		panic("render command has unknown kind")
	}
	r.queues[queue].Push(cmd)
}

// AddCommandToGroup submits a command directly to one of the default
// queue's tiers, bypassing global-order routing; 3D passes use it to
// feed the Opaque3D and Transparent3D tiers.
func (r *Renderer) AddCommandToGroup(cmd RenderCommand, group QueueGroup) {
	if r.rendering.Load() {
		panic("cannot add command while rendering")
	}
	if cmd.Kind() == CommandUnknown {
		panic("render command has unknown kind")
	}
	r.queues[r.groupStack[len(r.groupStack)-1]].PushToGroup(group, cmd)
}

// CreateRenderQueue adds an empty queue and returns its id, for use with
// GroupCommand and PushGroup. Queues live for the life of the Renderer.
func (r *Renderer) CreateRenderQueue() int {
	r.queues = append(r.queues, &RenderQueue{})
	return len(r.queues) - 1
}

// PushGroup makes the given queue the target of subsequent AddCommand
// calls until the matching PopGroup.
func (r *Renderer) PushGroup(queue int) {
	if r.rendering.Load() {
		panic("cannot change render group while rendering")
	}
	r.groupStack = append(r.groupStack, queue)
}

func (r *Renderer) PopGroup() {
	if r.rendering.Load() {
		panic("cannot change render group while rendering")
	}
	if len(r.groupStack) <= 1 {
		panic("render group stack underflow")
	}
	r.groupStack = r.groupStack[:len(r.groupStack)-1]
}

// Render draws the frame: every queue is sorted, the default queue is
// visited through the tier state machine, and nested queues are visited
// where a GroupCommand names them. All queues and the batcher are
// cleared afterwards, on panic exits too, so a failing command cannot
// leave the renderer rejecting submissions.
func (r *Renderer) Render() {
	r.rendering.Store(true)
	defer func() {
		r.clean()
		r.rendering.Store(false)
	}()

	r.batcher.ResetStats()

	for _, q := range r.queues {
		q.Sort()
	}
	r.visitQueue(r.queues[0])
}

func (r *Renderer) clean() {
	for _, q := range r.queues {
		q.Clear()
	}
	r.batcher.Reset()
}

// visitQueue draws one queue: raster state is saved, each non-empty tier
// is drawn in traversal order under its policy state, and the batcher is
// flushed at every tier boundary so batches never span tiers.
func (r *Renderer) visitQueue(q *RenderQueue) {
	q.SaveState(r.dev)
	defer q.RestoreState(r.dev)

	for group := QueueGroup(0); group < numQueueGroups; group++ {
		cmds := q.groups[group]
		if len(cmds) == 0 {
			continue
		}
		r.dev.SetRasterState(r.tierState(group))
		for _, cmd := range cmds {
			r.processCommand(cmd)
		}
		r.batcher.Flush()
	}
}

// tierState returns the raster policy for a tier: the 2D global-order
// tiers track the depth-test-for-2D flag and blend with culling off, 3D
// opaque writes depth without blending, 3D transparent blends without
// writing depth.
func (r *Renderer) tierState(group QueueGroup) gfx.RasterState {
	switch group {
	case GroupOpaque3D:
		return gfx.RasterState{DepthTest: true, DepthWrite: true, CullFace: true}
	case GroupTransparent3D:
		return gfx.RasterState{DepthTest: true, CullFace: true, Blend: true}
	default:
		return gfx.RasterState{DepthTest: r.depthTestFor2D, DepthWrite: r.depthTestFor2D, Blend: true}
	}
}

func (r *Renderer) processCommand(cmd RenderCommand) {
	switch cmd := cmd.(type) {
	case *TrianglesCommand:
		r.batcher.Queue(cmd)

	case *GroupCommand:
		r.batcher.Flush()
		if cmd.QueueID < 0 || cmd.QueueID >= len(r.queues) {
			r.lg.Errorf("group command names unknown queue %d", cmd.QueueID)
			return
		}
		r.visitQueue(r.queues[cmd.QueueID])

	case *CustomCommand:
		r.batcher.Flush()
		if cmd.Execute != nil {
			cmd.Execute()
		}

	case *BatchCommand:
		r.batcher.Flush()
		if cmd.Execute != nil {
			cmd.Execute()
		}

	case *PrimitiveCommand:
		r.batcher.Flush()
		if cmd.Execute != nil {
			cmd.Execute()
		}

	default:
		r.lg.Errorf("unknown command kind %d in render queue", cmd.Kind())
	}
}

// Clear clears the framebuffer to the configured clear color.
func (r *Renderer) Clear() {
	c := r.clearColor
	r.dev.Clear(c.R, c.G, c.B, c.A)
}

func (r *Renderer) SetClearColor(c RGBA) { r.clearColor = c }

// SetDepthTestFor2D controls whether the global-order tiers draw with
// depth testing. Enabling it also sets the clear depth to 1 and the
// depth comparison to less-or-equal on the device.
func (r *Renderer) SetDepthTestFor2D(enable bool) {
	r.depthTestFor2D = enable
	if enable {
		r.dev.SetDepthFuncLEqual()
	}
}

// SetVisibleRect sets the world-space rectangle CheckVisibility tests
// against, typically the on-screen region of the layer being drawn.
func (r *Renderer) SetVisibleRect(e math.Extent2D) { r.visibleRect = e }

// CheckVisibility reports whether content of the given size, drawn under
// the given transform, can intersect the visible rect. The test is
// conservative: it uses the transformed content midpoint and the rotated
// half extents, so content just outside may still report true. With no
// visible rect set everything is visible.
func (r *Renderer) CheckVisibility(transform mgl32.Mat4, size [2]float32) bool {
	if r.visibleRect.Width() <= 0 || r.visibleRect.Height() <= 0 {
		return true
	}

	hw, hh := size[0]/2, size[1]/2
	center := mgl32.TransformCoordinate(mgl32.Vec3{hw, hh, 0}, transform)

	c := r.visibleRect.Center()
	x, y := center.X()-c[0], center.Y()-c[1]

	// Half extents of the transformed content rectangle, projected onto
	// the screen axes.
	wshw := math.Max(math.Abs(hw*transform[0]+hh*transform[4]), math.Abs(hw*transform[0]-hh*transform[4]))
	wshh := math.Max(math.Abs(hw*transform[1]+hh*transform[5]), math.Abs(hw*transform[1]-hh*transform[5]))

	halfW, halfH := r.visibleRect.Width()/2, r.visibleRect.Height()/2
	return math.Abs(x)-wshw < halfW && math.Abs(y)-wshh < halfH
}

// Stats returns the draw statistics of the frame rendered by the most
// recent Render call.
func (r *Renderer) Stats() Stats { return r.batcher.Stats() }

// Dispose frees the GPU buffers the renderer created. The device itself
// is owned by the caller.
func (r *Renderer) Dispose() {
	r.batcher.Dispose()
}

///////////////////////////////////////////////////////////////////////////
// Stats

// Stats encapsulates assorted statistics from rendering a frame.
type Stats struct {
	DrawnBatches  int
	DrawnVertices int
	DrawnIndexes  int
	FlushCount    int
}

func (s *Stats) String() string {
	return fmt.Sprintf("%d batches in %d flushes: %d vertices, %d indices",
		s.DrawnBatches, s.FlushCount, s.DrawnVertices, s.DrawnIndexes)
}

func (s *Stats) Merge(o Stats) {
	s.DrawnBatches += o.DrawnBatches
	s.DrawnVertices += o.DrawnVertices
	s.DrawnIndexes += o.DrawnIndexes
	s.FlushCount += o.FlushCount
}

func (s Stats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("batches", s.DrawnBatches),
		slog.Int("flushes", s.FlushCount),
		slog.Int("vertices", s.DrawnVertices),
		slog.Int("indices", s.DrawnIndexes),
	)
}
