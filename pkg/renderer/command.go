// pkg/renderer/command.go
// Copyright(c) 2024-2026 cocos2d-x-lite contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package renderer

import (
	"github.com/chenfeng345/cocos2d-x-lite/pkg/gfx"

	"github.com/go-gl/mathgl/mgl32"
)

// CommandKind identifies the concrete type behind a RenderCommand. The
// zero value is not a valid kind; AddCommand rejects it.
type CommandKind int

const (
	CommandUnknown CommandKind = iota
	CommandTriangles
	CommandGroup
	CommandCustom
	CommandBatch
	CommandPrimitive
)

// RenderCommand is a unit of work submitted to the Renderer. Commands are
// borrowed: the renderer keeps references for the duration of one Render
// call and never mutates or frees the caller's payloads, so a command and
// its geometry may be reused across frames.
type RenderCommand interface {
	Kind() CommandKind

	// GlobalOrder is the sort key: commands with negative order draw
	// before order zero, positive after, and within the negative and
	// positive tiers commands draw in ascending order. Equal keys keep
	// their submission order.
	GlobalOrder() float32
}

// Triangles is the geometry payload of a TrianglesCommand: vertices in
// model space plus uint16 indices into them.
type Triangles struct {
	Verts   []gfx.Vertex
	Indices []uint16
}

// TrianglesCommand submits triangle geometry for batched drawing.
// Consecutive commands in a tier that share a MaterialID and do not set
// SkipBatching are drawn with a single draw call.
type TrianglesCommand struct {
	// Order is the global sort key (see RenderCommand.GlobalOrder).
	Order     float32
	Triangles Triangles

	// MaterialID is an opaque equality key: commands with equal ids must
	// be drawable under the same GPU state.
	MaterialID uint32

	// ModelView transforms the vertices to world space during staging.
	// The zero matrix collapses all geometry; use mgl32.Ident4() for
	// pre-transformed vertices.
	ModelView mgl32.Mat4

	// SkipBatching keeps this command in its own draw call.
	SkipBatching bool

	// UseMaterial, when non-nil, is invoked once per draw call before the
	// call issues, to bind whatever state the material needs.
	UseMaterial func()
}

func (c *TrianglesCommand) Kind() CommandKind    { return CommandTriangles }
func (c *TrianglesCommand) GlobalOrder() float32 { return c.Order }

// GroupCommand redirects the dispatcher into another render queue: when
// it is reached, pending batched geometry is flushed and the named queue
// is visited in full, with its own raster state save/restore.
type GroupCommand struct {
	Order   float32
	QueueID int
}

func (c *GroupCommand) Kind() CommandKind    { return CommandGroup }
func (c *GroupCommand) GlobalOrder() float32 { return c.Order }

// CustomCommand runs an arbitrary callback at its position in the draw
// order. The batcher is flushed first, so the callback may issue its own
// device work; any raster state it changes through the device is
// restored at the enclosing queue boundary.
type CustomCommand struct {
	Order   float32
	Execute func()
}

func (c *CustomCommand) Kind() CommandKind    { return CommandCustom }
func (c *CustomCommand) GlobalOrder() float32 { return c.Order }

// BatchCommand is a callback command for externally pre-batched geometry
// (an atlas that issues its own draw). It dispatches like CustomCommand
// but keeps its own kind.
type BatchCommand struct {
	Order   float32
	Execute func()
}

func (c *BatchCommand) Kind() CommandKind    { return CommandBatch }
func (c *BatchCommand) GlobalOrder() float32 { return c.Order }

// PrimitiveCommand is a callback command for non-triangle primitives
// drawn outside the batcher.
type PrimitiveCommand struct {
	Order   float32
	Execute func()
}

func (c *PrimitiveCommand) Kind() CommandKind    { return CommandPrimitive }
func (c *PrimitiveCommand) GlobalOrder() float32 { return c.Order }
