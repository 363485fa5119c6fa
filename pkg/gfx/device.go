// pkg/gfx/device.go
// Copyright(c) 2024-2026 cocos2d-x-lite contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package gfx

import (
	"image"

	"github.com/go-gl/mathgl/mgl32"
)

// BufferKind selects which of the two GPU buffer roles a buffer serves.
type BufferKind int

const (
	VertexBuffer BufferKind = iota
	IndexBuffer
)

// BufferUsage is the expected update frequency of a buffer's contents,
// passed through to the driver as an allocation hint.
type BufferUsage int

const (
	StaticDraw BufferUsage = iota
	DynamicDraw
)

// BufferHandle identifies a GPU buffer created through a Device. Zero is
// never a valid handle.
type BufferHandle uint32

// PrimitiveKind selects how DrawIndexed interprets the bound index buffer.
type PrimitiveKind int

const (
	Triangles PrimitiveKind = iota
	Lines
)

// RasterState is the fixed-function raster state the render queues save,
// set per tier, and restore. DepthWrite is only meaningful while DepthTest
// is on, but both are tracked so a snapshot round-trips exactly.
type RasterState struct {
	DepthTest  bool
	DepthWrite bool
	CullFace   bool
	Blend      bool
}

// Device defines the interface to the graphics hardware that the engine
// draws through. There is currently a single real implementation of
// it--GLDevice--though having all of the GL calls behind Device is what
// lets the renderer's tests run against a recording fake and would make it
// relatively easy to write a Vulkan, Metal, or DirectX backend.
type Device interface {
	// CreateBuffer allocates a GPU buffer of the given kind and size. The
	// contents are undefined until the first UploadBuffer.
	CreateBuffer(kind BufferKind, sizeBytes int, usage BufferUsage) (BufferHandle, error)

	// UploadBuffer replaces the buffer's contents with the given bytes.
	// The upload is by value: data may be reused by the caller as soon as
	// the call returns, whatever strategy the device uses internally.
	UploadBuffer(buf BufferHandle, data []byte)

	// DestroyBuffer frees the resources associated with the given buffer.
	DestroyBuffer(buf BufferHandle)

	// BindBuffers makes the given vertex/index buffer pair current for
	// subsequent DrawIndexed calls and binds the Vertex attribute layout
	// to the vertex buffer.
	BindBuffers(vb, ib BufferHandle)

	// DrawIndexed draws count indices from the bound index buffer
	// starting byteOffset bytes into it. Indices are uint16.
	DrawIndexed(prim PrimitiveKind, count int, byteOffset int)

	// RasterState reports the raster state currently in effect.
	RasterState() RasterState

	// SetRasterState makes the given raster state current. Redundant sets
	// may be elided, so raster state must only be changed through the
	// Device.
	SetRasterState(state RasterState)

	// Clear clears the color and depth buffers to the given color and a
	// depth of 1. The depth write mask is forced on for the clear and left
	// off afterwards.
	Clear(r, g, b, a float32)

	// SetDepthFuncLEqual sets the less-or-equal depth comparison used
	// when depth testing of 2D commands is enabled.
	SetDepthFuncLEqual()

	Viewport(x, y, w, h int)
	LoadProjectionMatrix(m mgl32.Mat4)
	LoadModelViewMatrix(m mgl32.Mat4)

	// CreateTextureFromImage returns an identifier for a texture map
	// defined by the specified image.
	CreateTextureFromImage(img image.Image, magNearest bool) uint32

	// CreateTextureFromImages returns an identifier for a texture map
	// defined by the specified image pyramid.
	CreateTextureFromImages(pyramid []image.Image, magNearest bool) uint32

	// UpdateTextureFromImage updates the contents of an existing texture
	// with the provided image.
	UpdateTextureFromImage(id uint32, img image.Image, magNearest bool)

	// UpdateTextureFromImages updates the contents of an existing texture
	// with the provided image pyramid.
	UpdateTextureFromImages(id uint32, pyramid []image.Image, magNearest bool)

	// DestroyTexture frees the resources associated with the given
	// texture id.
	DestroyTexture(id uint32)

	// EnableTexture enables texturing with the given texture for
	// subsequent draws; DisableTexture turns texturing back off.
	EnableTexture(id uint32)
	DisableTexture()

	// Dispose releases all resources allocated through the device.
	Dispose()
}
