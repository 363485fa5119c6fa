// pkg/renderer/batch.go
// Copyright(c) 2024-2026 cocos2d-x-lite contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package renderer

import (
	"fmt"

	"github.com/chenfeng345/cocos2d-x-lite/pkg/gfx"
	"github.com/chenfeng345/cocos2d-x-lite/pkg/log"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	// VBOSize is the number of vertices the batcher can stage for one
	// flush; IndexVBOSize is the corresponding index capacity, sized for
	// quad-heavy scenes (6 indices per 4 vertices).
	VBOSize      = 65536
	IndexVBOSize = VBOSize * 6 / 4

	// initialBatchCapacity is the starting size of the batch descriptor
	// array; it grows by 1.4x when full and never shrinks.
	initialBatchCapacity = 500
)

// batchDescriptor is one pending draw call: a contiguous run of staged
// indices that share a material.
type batchDescriptor struct {
	offset int // first staged index of the run
	count  int // indices to draw
	cmd    *TrianglesCommand
}

// TriangleBatcher coalesces queued TrianglesCommands into as few draw
// calls as possible. Geometry is staged into fixed-size CPU arrays,
// uploaded in bulk to one vertex and one index buffer, and drawn as one
// call per run of consecutive commands sharing a material.
type TriangleBatcher struct {
	dev gfx.Device
	lg  *log.Logger

	verts   []gfx.Vertex
	indices []uint16

	// Between flushes filledVerts/filledIndices track the totals of the
	// queued commands; during a flush they are rebuilt as staging fills.
	filledVerts   int
	filledIndices int

	queued  []*TrianglesCommand
	batches []batchDescriptor

	vbo, ibo gfx.BufferHandle

	stats Stats
}

// NewTriangleBatcher creates the staging arrays and the GPU buffer pair
// they upload into.
func NewTriangleBatcher(dev gfx.Device, lg *log.Logger) (*TriangleBatcher, error) {
	b := &TriangleBatcher{
		dev:     dev,
		lg:      lg,
		verts:   make([]gfx.Vertex, VBOSize),
		indices: make([]uint16, IndexVBOSize),
		queued:  make([]*TrianglesCommand, 0, 64),
		batches: make([]batchDescriptor, 0, initialBatchCapacity),
	}

	var err error
	if b.vbo, err = dev.CreateBuffer(gfx.VertexBuffer, VBOSize*gfx.VertexStride, gfx.DynamicDraw); err != nil {
		return nil, fmt.Errorf("batch vertex buffer: %w", err)
	}
	if b.ibo, err = dev.CreateBuffer(gfx.IndexBuffer, 2*IndexVBOSize, gfx.DynamicDraw); err != nil {
		return nil, fmt.Errorf("batch index buffer: %w", err)
	}
	return b, nil
}

// Queue adds a command to the pending batch, flushing first if its
// geometry would overflow the staging arrays. A single command larger
// than the staging arrays cannot be drawn at all and panics; such
// geometry must be split into multiple commands or drawn through a
// custom command.
func (b *TriangleBatcher) Queue(cmd *TrianglesCommand) {
	vcount, icount := len(cmd.Triangles.Verts), len(cmd.Triangles.Indices)
	if vcount >= VBOSize || icount >= IndexVBOSize {
		panic(fmt.Sprintf("triangles command too large to batch (%d verts, %d indices); break it into smaller commands",
			vcount, icount))
	}

	if b.filledVerts+vcount > VBOSize || b.filledIndices+icount > IndexVBOSize {
		b.Flush()
	}

	b.queued = append(b.queued, cmd)
	b.filledVerts += vcount
	b.filledIndices += icount
}

// Flush stages, uploads, and draws everything queued since the last
// flush. With nothing queued it is a no-op: no upload, no draw call, no
// stats.
func (b *TriangleBatcher) Flush() {
	if len(b.queued) == 0 {
		return
	}

	b.filledVerts, b.filledIndices = 0, 0
	b.batches = append(b.batches[:0], batchDescriptor{})

	// prevMaterial is widened so -1 can mark "matches nothing": material
	// ids occupy the full uint32 range.
	prevMaterial := int64(-1)
	firstCommand := true

	for _, cmd := range b.queued {
		material := int64(cmd.MaterialID)
		batchable := !cmd.SkipBatching

		b.fill(cmd)

		cur := &b.batches[len(b.batches)-1]
		if batchable && (material == prevMaterial || firstCommand) {
			// Same batch: extend the run. The newest command becomes the
			// run's material representative.
			cur.count += len(cmd.Triangles.Indices)
			cur.cmd = cmd
		} else {
			if !firstCommand {
				next := batchDescriptor{offset: cur.offset + cur.count}
				b.ensureBatchCapacity()
				b.batches = append(b.batches, next)
				cur = &b.batches[len(b.batches)-1]
			}
			cur.cmd = cmd
			cur.count = len(cmd.Triangles.Indices)

			if !batchable {
				// Nothing may join a skip-batching command's run.
				material = -1
			}
		}

		prevMaterial = material
		firstCommand = false
	}

	b.dev.UploadBuffer(b.vbo, gfx.VertexBytes(b.verts[:b.filledVerts]))
	b.dev.UploadBuffer(b.ibo, gfx.IndexBytes(b.indices[:b.filledIndices]))
	b.dev.BindBuffers(b.vbo, b.ibo)

	for i := range b.batches {
		d := &b.batches[i]
		if d.cmd.UseMaterial != nil {
			d.cmd.UseMaterial()
		}
		b.dev.DrawIndexed(gfx.Triangles, d.count, 2*d.offset)
		b.stats.DrawnBatches++
		b.stats.DrawnIndexes += d.count
	}
	b.stats.DrawnVertices += b.filledVerts
	b.stats.FlushCount++

	b.queued = b.queued[:0]
	b.filledVerts, b.filledIndices = 0, 0
}

// fill copies the command's geometry into the staging arrays: vertices
// transformed to world space by the command's model-view matrix, indices
// rebased past the vertices staged so far.
func (b *TriangleBatcher) fill(cmd *TrianglesCommand) {
	base := b.filledVerts
	for i, v := range cmd.Triangles.Verts {
		p := mgl32.TransformCoordinate(mgl32.Vec3(v.Position), cmd.ModelView)
		v.Position = [3]float32(p)
		b.verts[base+i] = v
	}
	for i, idx := range cmd.Triangles.Indices {
		b.indices[b.filledIndices+i] = uint16(base) + idx
	}
	b.filledVerts += len(cmd.Triangles.Verts)
	b.filledIndices += len(cmd.Triangles.Indices)
}

func (b *TriangleBatcher) ensureBatchCapacity() {
	if len(b.batches)+1 < cap(b.batches) {
		return
	}
	grown := make([]batchDescriptor, len(b.batches), cap(b.batches)*7/5)
	copy(grown, b.batches)
	b.batches = grown
	b.lg.Debugf("batch descriptor array grown to %d", cap(b.batches))
}

// Reset drops any queued commands without drawing them; the frame-end
// clean path uses it after the final flush.
func (b *TriangleBatcher) Reset() {
	b.queued = b.queued[:0]
	b.filledVerts, b.filledIndices = 0, 0
}

// Stats returns the counters accumulated since the last ResetStats.
func (b *TriangleBatcher) Stats() Stats { return b.stats }

func (b *TriangleBatcher) ResetStats() { b.stats = Stats{} }

// Dispose frees the batcher's GPU buffers.
func (b *TriangleBatcher) Dispose() {
	b.dev.DestroyBuffer(b.vbo)
	b.dev.DestroyBuffer(b.ibo)
}
