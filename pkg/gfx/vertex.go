// pkg/gfx/vertex.go
// Copyright(c) 2024-2026 cocos2d-x-lite contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package gfx

import (
	"unsafe"
)

// Vertex is the single interleaved vertex layout used for all batched
// geometry: a 3D position, a normalized 8-bit RGBA color, and a texture
// coordinate. The batcher's staging arrays, the GPU buffer contents, and
// the device's attribute bindings all assume this exact 24-byte packing,
// so the field order and types here are part of the device contract.
type Vertex struct {
	Position [3]float32
	Color    [4]uint8
	TexCoord [2]float32
}

// VertexStride is the size of a Vertex in bytes; vertex_test.go pins the
// struct layout to it.
const VertexStride = 24

// VertexBytes returns the raw bytes of the given vertex slice, suitable
// for handing to Device.UploadBuffer. No copy is made; the result aliases
// the slice's backing store.
func VertexBytes(verts []Vertex) []byte {
	if len(verts) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&verts[0])), VertexStride*len(verts))
}

// IndexBytes returns the raw bytes of the given index slice, as with
// VertexBytes.
func IndexBytes(indices []uint16) []byte {
	if len(indices) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&indices[0])), 2*len(indices))
}
