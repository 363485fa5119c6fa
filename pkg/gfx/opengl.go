// pkg/gfx/opengl.go
// Copyright(c) 2024-2026 cocos2d-x-lite contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package gfx

import (
	"C"
	"fmt"
	"image"
	"image/draw"
	"unsafe"

	"github.com/chenfeng345/cocos2d-x-lite/pkg/log"
	"github.com/chenfeng345/cocos2d-x-lite/pkg/util"

	"github.com/go-gl/gl/v2.1/gl"
	"github.com/go-gl/mathgl/mgl32"
)

type glBuffer struct {
	target uint32
	usage  uint32
	bytes  int
}

type GLDevice struct {
	lg              *log.Logger
	createdTextures map[uint32]int
	createdBuffers  map[BufferHandle]glBuffer
	raster          RasterState
	rasterValid     bool
}

// NewGLDevice initializes OpenGL on the current context and returns a
// Device backed by it. A GL context must be current on the calling thread.
func NewGLDevice(lg *log.Logger) (Device, error) {
	lg.Info("Starting GLDevice initialization")
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	vendor, renderer := gl.GetString(gl.VENDOR), gl.GetString(gl.RENDERER)
	v, r := (*C.char)(unsafe.Pointer(vendor)), (*C.char)(unsafe.Pointer(renderer))
	lg.Infof("OpenGL vendor %s renderer %s", C.GoString(v), C.GoString(r))

	lg.Info("Finished GLDevice initialization")
	return &GLDevice{
		lg:              lg,
		createdTextures: make(map[uint32]int),
		createdBuffers:  make(map[BufferHandle]glBuffer),
	}, nil
}

func (d *GLDevice) Dispose() {
	for texid := range d.createdTextures {
		gl.DeleteTextures(1, &texid)
	}
	for handle := range d.createdBuffers {
		buf := uint32(handle)
		gl.DeleteBuffers(1, &buf)
	}
}

///////////////////////////////////////////////////////////////////////////
// Buffers

func (d *GLDevice) CreateBuffer(kind BufferKind, sizeBytes int, usage BufferUsage) (BufferHandle, error) {
	var buf uint32
	gl.GenBuffers(1, &buf)
	if buf == 0 {
		return 0, fmt.Errorf("glGenBuffers failed: GL error %d", gl.GetError())
	}

	b := glBuffer{
		target: uint32(util.Select(kind == IndexBuffer, gl.ELEMENT_ARRAY_BUFFER, gl.ARRAY_BUFFER)),
		usage:  uint32(util.Select(usage == DynamicDraw, gl.DYNAMIC_DRAW, gl.STATIC_DRAW)),
		bytes:  sizeBytes,
	}
	gl.BindBuffer(b.target, buf)
	gl.BufferData(b.target, sizeBytes, nil, b.usage)

	d.createdBuffers[BufferHandle(buf)] = b

	reduce := func(h BufferHandle, b glBuffer, total int) int { return total + b.bytes }
	total := util.ReduceMap(d.createdBuffers, reduce, 0)
	d.lg.Infof("Created buffer %d: %d bytes -> %.2f MiB of buffers total", buf, sizeBytes,
		float32(total)/(1024*1024))

	return BufferHandle(buf), nil
}

func (d *GLDevice) UploadBuffer(buf BufferHandle, data []byte) {
	b, ok := d.createdBuffers[buf]
	if !ok {
		d.lg.Errorf("upload to unknown buffer %d", buf)
		return
	}
	if len(data) == 0 {
		return
	}

	gl.BindBuffer(b.target, uint32(buf))
	// Respecify the whole store rather than writing into the old one so
	// the driver can orphan storage an in-flight draw still reads.
	gl.BufferData(b.target, len(data), gl.Ptr(data), b.usage)
	if len(data) > b.bytes {
		b.bytes = len(data)
		d.createdBuffers[buf] = b
	}
}

func (d *GLDevice) DestroyBuffer(buf BufferHandle) {
	b := uint32(buf)
	gl.DeleteBuffers(1, &b)
	delete(d.createdBuffers, buf)
}

func (d *GLDevice) BindBuffers(vb, ib BufferHandle) {
	gl.BindBuffer(gl.ARRAY_BUFFER, uint32(vb))
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, uint32(ib))

	// Attribute pointers are offsets into the bound vertex buffer, laid
	// out per the Vertex packing.
	gl.EnableClientState(gl.VERTEX_ARRAY)
	gl.VertexPointer(3, gl.FLOAT, VertexStride, gl.PtrOffset(0))
	gl.EnableClientState(gl.COLOR_ARRAY)
	gl.ColorPointer(4, gl.UNSIGNED_BYTE, VertexStride, gl.PtrOffset(3*4))
	gl.EnableClientState(gl.TEXTURE_COORD_ARRAY)
	gl.TexCoordPointer(2, gl.FLOAT, VertexStride, gl.PtrOffset(3*4+4))
}

func (d *GLDevice) DrawIndexed(prim PrimitiveKind, count int, byteOffset int) {
	mode := uint32(util.Select(prim == Lines, gl.LINES, gl.TRIANGLES))
	gl.DrawElements(mode, int32(count), gl.UNSIGNED_SHORT, gl.PtrOffset(byteOffset))
}

///////////////////////////////////////////////////////////////////////////
// Raster state

func (d *GLDevice) RasterState() RasterState {
	var depthWrite bool
	gl.GetBooleanv(gl.DEPTH_WRITEMASK, &depthWrite)

	// Query GL rather than trusting the cache; a custom command may have
	// run arbitrary device calls since the last set.
	state := RasterState{
		DepthTest:  gl.IsEnabled(gl.DEPTH_TEST),
		DepthWrite: depthWrite,
		CullFace:   gl.IsEnabled(gl.CULL_FACE),
		Blend:      gl.IsEnabled(gl.BLEND),
	}
	d.raster, d.rasterValid = state, true
	return state
}

func (d *GLDevice) SetRasterState(state RasterState) {
	if d.rasterValid && state == d.raster {
		return
	}

	set := func(cap uint32, enable bool) {
		if enable {
			gl.Enable(cap)
		} else {
			gl.Disable(cap)
		}
	}
	set(gl.DEPTH_TEST, state.DepthTest)
	gl.DepthMask(state.DepthWrite)
	set(gl.CULL_FACE, state.CullFace)
	set(gl.BLEND, state.Blend)
	if state.Blend {
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	}

	d.raster, d.rasterValid = state, true
}

func (d *GLDevice) Clear(r, g, b, a float32) {
	// glClear only writes the depth buffer while the depth mask is on.
	gl.DepthMask(true)
	gl.ClearColor(r, g, b, a)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	gl.DepthMask(false)
	if d.rasterValid {
		d.raster.DepthWrite = false
	}
}

func (d *GLDevice) SetDepthFuncLEqual() {
	gl.ClearDepth(1)
	gl.DepthFunc(gl.LEQUAL)
}

func (d *GLDevice) Viewport(x, y, w, h int) {
	gl.Viewport(int32(x), int32(y), int32(w), int32(h))
}

func (d *GLDevice) LoadProjectionMatrix(m mgl32.Mat4) {
	gl.MatrixMode(gl.PROJECTION)
	gl.LoadMatrixf(&m[0])
}

func (d *GLDevice) LoadModelViewMatrix(m mgl32.Mat4) {
	gl.MatrixMode(gl.MODELVIEW)
	gl.LoadMatrixf(&m[0])
}

///////////////////////////////////////////////////////////////////////////
// Textures

func (d *GLDevice) createdTexture(texid uint32, bytes int) {
	_, exists := d.createdTextures[texid]

	d.createdTextures[texid] = bytes

	reduce := func(id uint32, bytes int, total int) int { return total + bytes }
	total := util.ReduceMap(d.createdTextures, reduce, 0)
	mb := float32(total) / (1024 * 1024)

	if exists {
		d.lg.Infof("Updated tex id %d: %d bytes -> %.2f MiB of textures total", texid, bytes, mb)
	} else {
		d.lg.Infof("Created tex id %d: %d bytes -> %.2f MiB of textures total", texid, bytes, mb)
	}
}

func (d *GLDevice) CreateTextureFromImage(img image.Image, magNearest bool) uint32 {
	return d.CreateTextureFromImages([]image.Image{img}, magNearest)
}

func (d *GLDevice) CreateTextureFromImages(pyramid []image.Image, magNearest bool) uint32 {
	var texid uint32
	gl.GenTextures(1, &texid)
	d.UpdateTextureFromImages(texid, pyramid, magNearest)
	return texid
}

func (d *GLDevice) UpdateTextureFromImage(texid uint32, img image.Image, magNearest bool) {
	d.UpdateTextureFromImages(texid, []image.Image{img}, magNearest)
}

func (d *GLDevice) UpdateTextureFromImages(texid uint32, pyramid []image.Image, magNearest bool) {
	var lastTexture int32
	gl.GetIntegerv(gl.TEXTURE_BINDING_2D, &lastTexture)

	gl.BindTexture(gl.TEXTURE_2D, texid)
	if len(pyramid) == 1 {
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	} else {
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	}
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, int32(util.Select(magNearest, gl.NEAREST, gl.LINEAR)))
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, 0)

	bytes := 0
	for level, img := range pyramid {
		ny, nx := img.Bounds().Dy(), img.Bounds().Dx()
		bytes += 4 * nx * ny

		rgba, ok := img.(*image.RGBA)
		if !ok {
			rgba = image.NewRGBA(image.Rect(0, 0, nx, ny))
			draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)
		}
		gl.TexImage2D(gl.TEXTURE_2D, int32(level), gl.RGBA, int32(nx), int32(ny), 0, gl.RGBA,
			gl.UNSIGNED_BYTE, unsafe.Pointer(&rgba.Pix[0]))
	}

	gl.BindTexture(gl.TEXTURE_2D, uint32(lastTexture))

	d.createdTexture(texid, bytes)
}

func (d *GLDevice) DestroyTexture(texid uint32) {
	gl.DeleteTextures(1, &texid)
	delete(d.createdTextures, texid)
}

func (d *GLDevice) EnableTexture(id uint32) {
	gl.Enable(gl.TEXTURE_2D)
	gl.BindTexture(gl.TEXTURE_2D, id)
}

func (d *GLDevice) DisableTexture() {
	gl.Disable(gl.TEXTURE_2D)
}
