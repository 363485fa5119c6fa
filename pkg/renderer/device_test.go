// pkg/renderer/device_test.go
// Copyright(c) 2024-2026 cocos2d-x-lite contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package renderer

import (
	"image"
	"unsafe"

	"github.com/chenfeng345/cocos2d-x-lite/pkg/gfx"

	"github.com/go-gl/mathgl/mgl32"
)

// testDevice implements gfx.Device by recording uploads, draws, and
// state changes instead of talking to a GPU.
type testDevice struct {
	state      gfx.RasterState
	stateSets  []gfx.RasterState
	stateReads int

	nextBuffer  gfx.BufferHandle
	uploads     map[gfx.BufferHandle][]byte
	nextTexture uint32

	boundVB, boundIB gfx.BufferHandle

	draws  []testDraw
	clears [][4]float32

	lequalSet bool
	disposed  bool
}

// testDraw is one recorded draw call, with the decoded contents of the
// buffers bound at the time it was issued.
type testDraw struct {
	prim       gfx.PrimitiveKind
	count      int
	byteOffset int
	state      gfx.RasterState
	verts      []gfx.Vertex
	indices    []uint16
}

func newTestDevice() *testDevice {
	return &testDevice{uploads: make(map[gfx.BufferHandle][]byte)}
}

func (d *testDevice) CreateBuffer(kind gfx.BufferKind, sizeBytes int, usage gfx.BufferUsage) (gfx.BufferHandle, error) {
	d.nextBuffer++
	d.uploads[d.nextBuffer] = nil
	return d.nextBuffer, nil
}

func (d *testDevice) UploadBuffer(buf gfx.BufferHandle, data []byte) {
	d.uploads[buf] = append([]byte(nil), data...)
}

func (d *testDevice) DestroyBuffer(buf gfx.BufferHandle) {
	delete(d.uploads, buf)
}

func (d *testDevice) BindBuffers(vb, ib gfx.BufferHandle) {
	d.boundVB, d.boundIB = vb, ib
}

func (d *testDevice) DrawIndexed(prim gfx.PrimitiveKind, count, byteOffset int) {
	d.draws = append(d.draws, testDraw{
		prim:       prim,
		count:      count,
		byteOffset: byteOffset,
		state:      d.state,
		verts:      decodeVerts(d.uploads[d.boundVB]),
		indices:    decodeIndices(d.uploads[d.boundIB]),
	})
}

func (d *testDevice) RasterState() gfx.RasterState {
	d.stateReads++
	return d.state
}

func (d *testDevice) SetRasterState(state gfx.RasterState) {
	d.state = state
	d.stateSets = append(d.stateSets, state)
}

func (d *testDevice) Clear(r, g, b, a float32) {
	d.clears = append(d.clears, [4]float32{r, g, b, a})
}

func (d *testDevice) SetDepthFuncLEqual() { d.lequalSet = true }

func (d *testDevice) Viewport(x, y, w, h int)           {}
func (d *testDevice) LoadProjectionMatrix(m mgl32.Mat4) {}
func (d *testDevice) LoadModelViewMatrix(m mgl32.Mat4)  {}

func (d *testDevice) CreateTextureFromImage(img image.Image, magNearest bool) uint32 {
	return d.CreateTextureFromImages([]image.Image{img}, magNearest)
}

func (d *testDevice) CreateTextureFromImages(pyramid []image.Image, magNearest bool) uint32 {
	d.nextTexture++
	return d.nextTexture
}

func (d *testDevice) UpdateTextureFromImage(id uint32, img image.Image, magNearest bool)        {}
func (d *testDevice) UpdateTextureFromImages(id uint32, pyramid []image.Image, magNearest bool) {}
func (d *testDevice) DestroyTexture(id uint32)                                                  {}
func (d *testDevice) EnableTexture(id uint32)                                                   {}
func (d *testDevice) DisableTexture()                                                           {}

func (d *testDevice) Dispose() { d.disposed = true }

func decodeVerts(b []byte) []gfx.Vertex {
	if len(b) == 0 {
		return nil
	}
	verts := unsafe.Slice((*gfx.Vertex)(unsafe.Pointer(&b[0])), len(b)/gfx.VertexStride)
	return append([]gfx.Vertex(nil), verts...)
}

func decodeIndices(b []byte) []uint16 {
	if len(b) == 0 {
		return nil
	}
	indices := unsafe.Slice((*uint16)(unsafe.Pointer(&b[0])), len(b)/2)
	return append([]uint16(nil), indices...)
}

// tricmd returns a one-triangle command with the given order and
// material, for tests that only care about routing and batching.
func tricmd(order float32, material uint32) *TrianglesCommand {
	return &TrianglesCommand{
		Order: order,
		Triangles: Triangles{
			Verts: []gfx.Vertex{
				{Position: [3]float32{0, 0, 0}},
				{Position: [3]float32{1, 0, 0}},
				{Position: [3]float32{0, 1, 0}},
			},
			Indices: []uint16{0, 1, 2},
		},
		MaterialID: material,
		ModelView:  mgl32.Ident4(),
	}
}
