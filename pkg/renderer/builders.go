// pkg/renderer/builders.go
// Copyright(c) 2024-2026 cocos2d-x-lite contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package renderer

import (
	"sync"

	"github.com/chenfeng345/cocos2d-x-lite/pkg/gfx"
	"github.com/chenfeng345/cocos2d-x-lite/pkg/math"
	"github.com/chenfeng345/cocos2d-x-lite/pkg/util"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/mmp/earcut-go"
)

///////////////////////////////////////////////////////////////////////////
// DrawBuilders

// The various *DrawBuilder classes provide capabilities for specifying a
// number of independent things of the same type to draw and then
// generating a single TrianglesCommand for all of them. This allows
// batching up many things into one command (and usually one draw call),
// with corresponding GPU performance benefits.

// TrianglesDrawBuilder collects triangles to be drawn together with a
// single uniform color; the color is supplied when the command is
// generated. If per-vertex colors are required, the
// ColoredTrianglesDrawBuilder should be used instead.
type TrianglesDrawBuilder struct {
	p       [][2]float32
	indices []uint16
}

// Reset resets the internal arrays used for accumulating triangles,
// maintaining the initial allocations.
func (t *TrianglesDrawBuilder) Reset() {
	t.p = t.p[:0]
	t.indices = t.indices[:0]
}

// AddTriangle adds a triangle with the specified three vertices to be
// drawn.
func (t *TrianglesDrawBuilder) AddTriangle(p0, p1, p2 [2]float32) {
	idx := uint16(len(t.p))
	t.p = append(t.p, p0, p1, p2)
	t.indices = append(t.indices, idx, idx+1, idx+2)
}

// AddQuad adds a quadrilateral with the specified four vertices to be
// drawn; the quad is split into two triangles for drawing.
func (t *TrianglesDrawBuilder) AddQuad(p0, p1, p2, p3 [2]float32) {
	idx := uint16(len(t.p))
	t.p = append(t.p, p0, p1, p2, p3)
	t.indices = append(t.indices, idx, idx+1, idx+2, idx, idx+2, idx+3)
}

// AddCircle adds a filled circle with specified radius around the
// specified position to be drawn using triangles. The specified number of
// segments, nsegs, sets the tessellation rate for the circle.
func (t *TrianglesDrawBuilder) AddCircle(p [2]float32, radius float32, nsegs int) {
	circle := math.CirclePoints(nsegs)

	idx := uint16(len(t.p))
	t.p = append(t.p, p) // center point
	for i := 0; i < nsegs; i++ {
		pi := [2]float32{p[0] + radius*circle[i][0], p[1] + radius*circle[i][1]}
		t.p = append(t.p, pi)
	}
	for i := 0; i < nsegs; i++ {
		t.indices = append(t.indices, idx, idx+1+uint16(i), idx+1+uint16((i+1)%nsegs))
	}
}

// Bounds returns the 2D bounding box of the accumulated triangles.
func (t *TrianglesDrawBuilder) Bounds() math.Extent2D {
	return math.Extent2DFromPoints(t.p)
}

// GenerateCommand snapshots the accumulated triangles into a command
// with the given uniform color. The command owns copies of the geometry,
// so the builder may be reset and reused immediately.
func (t *TrianglesDrawBuilder) GenerateCommand(order float32, color RGBA, materialID uint32, modelView mgl32.Mat4) *TrianglesCommand {
	return &TrianglesCommand{
		Order: order,
		Triangles: Triangles{
			Verts:   assembleVerts(t.p, nil, color.Bytes()),
			Indices: util.DuplicateSlice(t.indices),
		},
		MaterialID: materialID,
		ModelView:  modelView,
	}
}

// assembleVerts builds the interleaved vertex array for the given 2D
// positions at z=0: uniform color, uvs taken from uv when it is non-nil.
func assembleVerts(p [][2]float32, uv [][2]float32, color [4]uint8) []gfx.Vertex {
	verts := make([]gfx.Vertex, len(p))
	for i, pt := range p {
		verts[i] = gfx.Vertex{Position: [3]float32{pt[0], pt[1], 0}, Color: color}
		if uv != nil {
			verts[i].TexCoord = uv[i]
		}
	}
	return verts
}

// TrianglesDrawBuilders are managed using a sync.Pool so that their slice
// allocations persist across multiple uses.
var trianglesDrawBuilderPool = sync.Pool{New: func() any { return &TrianglesDrawBuilder{} }}

func GetTrianglesDrawBuilder() *TrianglesDrawBuilder {
	return trianglesDrawBuilderPool.Get().(*TrianglesDrawBuilder)
}

func ReturnTrianglesDrawBuilder(td *TrianglesDrawBuilder) {
	td.Reset()
	trianglesDrawBuilderPool.Put(td)
}

// ColoredTrianglesDrawBuilder is similar to the TrianglesDrawBuilder
// though it allows specifying the color of each triangle individually.
// Its methods otherwise parallel those of TrianglesDrawBuilder; see the
// documentation there.
type ColoredTrianglesDrawBuilder struct {
	TrianglesDrawBuilder
	color []RGBA
}

func (t *ColoredTrianglesDrawBuilder) Reset() {
	t.TrianglesDrawBuilder.Reset()
	t.color = t.color[:0]
}

func (t *ColoredTrianglesDrawBuilder) AddTriangle(p0, p1, p2 [2]float32, rgba RGBA) {
	t.TrianglesDrawBuilder.AddTriangle(p0, p1, p2)
	t.color = append(t.color, rgba, rgba, rgba)
}

func (t *ColoredTrianglesDrawBuilder) AddQuad(p0, p1, p2, p3 [2]float32, rgba RGBA) {
	t.TrianglesDrawBuilder.AddQuad(p0, p1, p2, p3)
	t.color = append(t.color, rgba, rgba, rgba, rgba)
}

// AddCircle adds a filled circle with specified radius and color around
// the specified position; see TrianglesDrawBuilder.AddCircle.
func (t *ColoredTrianglesDrawBuilder) AddCircle(p [2]float32, radius float32, nsegs int, rgba RGBA) {
	t.TrianglesDrawBuilder.AddCircle(p, radius, nsegs)
	for i := 0; i <= nsegs; i++ {
		t.color = append(t.color, rgba)
	}
}

func (t *ColoredTrianglesDrawBuilder) GenerateCommand(order float32, materialID uint32, modelView mgl32.Mat4) *TrianglesCommand {
	verts := make([]gfx.Vertex, len(t.p))
	for i, pt := range t.p {
		verts[i] = gfx.Vertex{Position: [3]float32{pt[0], pt[1], 0}, Color: t.color[i].Bytes()}
	}
	return &TrianglesCommand{
		Order:      order,
		Triangles:  Triangles{Verts: verts, Indices: util.DuplicateSlice(t.indices)},
		MaterialID: materialID,
		ModelView:  modelView,
	}
}

// ColoredTrianglesDrawBuilders are managed using a sync.Pool so that
// their slice allocations persist across multiple uses.
var coloredTrianglesDrawBuilderPool = sync.Pool{New: func() any { return &ColoredTrianglesDrawBuilder{} }}

func GetColoredTrianglesDrawBuilder() *ColoredTrianglesDrawBuilder {
	return coloredTrianglesDrawBuilderPool.Get().(*ColoredTrianglesDrawBuilder)
}

func ReturnColoredTrianglesDrawBuilder(td *ColoredTrianglesDrawBuilder) {
	td.Reset()
	coloredTrianglesDrawBuilderPool.Put(td)
}

// TexturedTrianglesDrawBuilder generates commands for drawing a set of
// triangles with associated uv texture coordinates using a specified
// single texture map.
type TexturedTrianglesDrawBuilder struct {
	TrianglesDrawBuilder
	uv [][2]float32
}

func (t *TexturedTrianglesDrawBuilder) Reset() {
	t.TrianglesDrawBuilder.Reset()
	t.uv = t.uv[:0]
}

// AddTriangle adds a triangle with the specified three vertices and uv
// coordinates to be drawn.
func (t *TexturedTrianglesDrawBuilder) AddTriangle(p0, p1, p2 [2]float32, uv0, uv1, uv2 [2]float32) {
	t.TrianglesDrawBuilder.AddTriangle(p0, p1, p2)
	t.uv = append(t.uv, uv0, uv1, uv2)
}

// AddQuad adds a quadrilateral with the specified four vertices and
// associated texture coordinates to the list to be drawn; the quad is
// split into two triangles for drawing.
func (t *TexturedTrianglesDrawBuilder) AddQuad(p0, p1, p2, p3 [2]float32, uv0, uv1, uv2, uv3 [2]float32) {
	t.TrianglesDrawBuilder.AddQuad(p0, p1, p2, p3)
	t.uv = append(t.uv, uv0, uv1, uv2, uv3)
}

func (t *TexturedTrianglesDrawBuilder) GenerateCommand(order float32, color RGBA, materialID uint32, modelView mgl32.Mat4) *TrianglesCommand {
	return &TrianglesCommand{
		Order: order,
		Triangles: Triangles{
			Verts:   assembleVerts(t.p, t.uv, color.Bytes()),
			Indices: util.DuplicateSlice(t.indices),
		},
		MaterialID: materialID,
		ModelView:  modelView,
	}
}

// And as above, these are also managed in a pool.
var texturedTrianglesDrawBuilderPool = sync.Pool{New: func() any { return &TexturedTrianglesDrawBuilder{} }}

func GetTexturedTrianglesDrawBuilder() *TexturedTrianglesDrawBuilder {
	return texturedTrianglesDrawBuilderPool.Get().(*TexturedTrianglesDrawBuilder)
}

func ReturnTexturedTrianglesDrawBuilder(td *TexturedTrianglesDrawBuilder) {
	td.Reset()
	texturedTrianglesDrawBuilderPool.Put(td)
}

// PolygonDrawBuilder accumulates filled polygons, triangulating each one
// as it is added. The first ring of a polygon is its exterior; any
// subsequent rings are holes.
type PolygonDrawBuilder struct {
	p       [][2]float32
	indices []uint16
}

func (pb *PolygonDrawBuilder) Reset() {
	pb.p = pb.p[:0]
	pb.indices = pb.indices[:0]
}

// AddPolygon triangulates the polygon given by the rings and adds the
// resulting triangles to be drawn. Rings with fewer than three vertices
// are ignored.
func (pb *PolygonDrawBuilder) AddPolygon(rings ...[][2]float32) {
	var poly earcut.Polygon
	for _, ring := range rings {
		if len(ring) < 3 {
			continue
		}
		vertices := make([]earcut.Vertex, len(ring))
		for i, v := range ring {
			vertices[i].P = [2]float64{float64(v[0]), float64(v[1])}
		}
		poly.Rings = append(poly.Rings, vertices)
	}
	if len(poly.Rings) == 0 {
		return
	}

	for _, tri := range earcut.Triangulate(poly) {
		idx := uint16(len(pb.p))
		for _, v := range tri.Vertices {
			pb.p = append(pb.p, [2]float32{float32(v.P[0]), float32(v.P[1])})
		}
		pb.indices = append(pb.indices, idx, idx+1, idx+2)
	}
}

func (pb *PolygonDrawBuilder) Bounds() math.Extent2D {
	return math.Extent2DFromPoints(pb.p)
}

func (pb *PolygonDrawBuilder) GenerateCommand(order float32, color RGBA, materialID uint32, modelView mgl32.Mat4) *TrianglesCommand {
	return &TrianglesCommand{
		Order: order,
		Triangles: Triangles{
			Verts:   assembleVerts(pb.p, nil, color.Bytes()),
			Indices: util.DuplicateSlice(pb.indices),
		},
		MaterialID: materialID,
		ModelView:  modelView,
	}
}

// PolygonDrawBuilders are managed using a sync.Pool so that their slice
// allocations persist across multiple uses.
var polygonDrawBuilderPool = sync.Pool{New: func() any { return &PolygonDrawBuilder{} }}

func GetPolygonDrawBuilder() *PolygonDrawBuilder {
	return polygonDrawBuilderPool.Get().(*PolygonDrawBuilder)
}

func ReturnPolygonDrawBuilder(pb *PolygonDrawBuilder) {
	pb.Reset()
	polygonDrawBuilderPool.Put(pb)
}
