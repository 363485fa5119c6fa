// cmd/renderdemo/main.go
// Copyright(c) 2024-2026 cocos2d-x-lite contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// renderdemo opens a window and drives the render command queue through
// its paces: a field of textured sprites batched across two materials, a
// triangulated polygon with a hole spinning in the middle, an overlay
// drawn through a nested render queue, and a line outline issued by a
// primitive command with its own GPU buffers. Run with -frames to exit
// after a fixed number of frames.

package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"math/rand"
	"os"
	"runtime"
	"time"

	"github.com/chenfeng345/cocos2d-x-lite/pkg/gfx"
	"github.com/chenfeng345/cocos2d-x-lite/pkg/log"
	"github.com/chenfeng345/cocos2d-x-lite/pkg/math"
	"github.com/chenfeng345/cocos2d-x-lite/pkg/renderer"
	"github.com/chenfeng345/cocos2d-x-lite/pkg/util"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/sync/errgroup"
)

var (
	logLevel   = flag.String("loglevel", "info", "logging level: debug, info, warn, error")
	logDir     = flag.String("logdir", "", "log file directory")
	numFrames  = flag.Int("frames", 0, "exit after rendering this many frames (0 runs until the window closes)")
	width      = flag.Int("width", 1024, "window width")
	height     = flag.Int("height", 768, "window height")
	numSprites = flag.Int("sprites", 128, "number of bouncing sprites")
)

func init() {
	// main must stay on the thread that owns the GL context.
	runtime.LockOSThread()
}

func main() {
	flag.Parse()
	lg := log.New(*logLevel, *logDir)

	if err := run(lg); err != nil {
		lg.Errorf("%v", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(lg *log.Logger) error {
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("initializing glfw: %w", err)
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.ContextVersionMajor, 2)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	window, err := glfw.CreateWindow(*width, *height, "renderdemo", nil, nil)
	if err != nil {
		return fmt.Errorf("creating window: %w", err)
	}
	window.MakeContextCurrent()
	glfw.SwapInterval(1)

	dev, err := gfx.NewGLDevice(lg)
	if err != nil {
		return err
	}
	defer dev.Dispose()

	rend, err := renderer.New(dev, lg)
	if err != nil {
		return err
	}
	defer rend.Dispose()

	fbw, fbh := window.GetFramebufferSize()
	scene, err := makeScene(dev, rend, lg, float32(fbw), float32(fbh))
	if err != nil {
		return err
	}
	defer scene.dispose()

	rend.SetClearColor(renderer.RGBFromHex(0x101820).RGBA(1))

	var totalStats renderer.Stats
	lastStatsLog := time.Now()
	lastFrame := glfw.GetTime()

	frame := 0
	for !window.ShouldClose() && (*numFrames == 0 || frame < *numFrames) {
		glfw.PollEvents()

		now := glfw.GetTime()
		dt := float32(now - lastFrame)
		lastFrame = now

		fbw, fbh := window.GetFramebufferSize()
		dev.Viewport(0, 0, fbw, fbh)
		dev.LoadProjectionMatrix(mgl32.Ortho2D(0, float32(fbw), 0, float32(fbh)))
		dev.LoadModelViewMatrix(mgl32.Ident4())
		rend.SetVisibleRect(math.Extent2D{P1: [2]float32{float32(fbw), float32(fbh)}})

		scene.update(dt, float32(fbw), float32(fbh))
		scene.submit(frame, float32(now), float32(fbw), float32(fbh))

		rend.Clear()
		rend.Render()
		window.SwapBuffers()

		stats := rend.Stats()
		totalStats.Merge(stats)
		if time.Since(lastStatsLog) > time.Second {
			lg.Info("render stats", "stats", stats)
			lastStatsLog = time.Now()
		}
		frame++
	}

	lg.Infof("rendered %d frames; %s", frame, totalStats.String())
	return nil
}

///////////////////////////////////////////////////////////////////////////
// scene

type material struct {
	id   uint32
	bind func()
}

type sprite struct {
	pos, vel [2]float32
	size     float32
	material string
}

type scene struct {
	dev  gfx.Device
	rend *renderer.Renderer
	lg   *log.Logger

	materials map[string]material
	sprites   []sprite

	// Both phases of the animated checker texture, kept so a custom
	// command can swap them on the GPU mid-run.
	checkerPhases [2][]image.Image

	overlayQueue int

	outlineVB, outlineIB gfx.BufferHandle
	outlineIndexCount    int
}

func makeScene(dev gfx.Device, rend *renderer.Renderer, lg *log.Logger, w, h float32) (*scene, error) {
	s := &scene{dev: dev, rend: rend, lg: lg}

	// Texture pyramids are pure CPU work, so build them concurrently;
	// the GL uploads below stay on this thread.
	fg := color.RGBA{R: 235, G: 219, B: 178, A: 255}
	bg := color.RGBA{R: 60, G: 56, B: 54, A: 255}
	accent := color.RGBA{R: 214, G: 93, B: 14, A: 255}
	var rings []image.Image
	var g errgroup.Group
	g.Go(func() error { s.checkerPhases[0] = gfx.MipPyramid(checkerImage(256, 32, fg, bg)); return nil })
	g.Go(func() error { s.checkerPhases[1] = gfx.MipPyramid(checkerImage(256, 32, bg, fg)); return nil })
	g.Go(func() error { rings = gfx.MipPyramid(ringImage(256, 16, accent, bg)); return nil })
	if err := g.Wait(); err != nil {
		return nil, err
	}

	checkerTex := dev.CreateTextureFromImages(s.checkerPhases[0], false)
	ringTex := dev.CreateTextureFromImages(rings, false)
	s.materials = map[string]material{
		"checker": {id: checkerTex, bind: func() { dev.EnableTexture(checkerTex) }},
		"rings":   {id: ringTex, bind: func() { dev.EnableTexture(ringTex) }},
	}
	for _, name := range util.SortedMapKeys(s.materials) {
		lg.Infof("material %q bound to texture %d", name, s.materials[name].id)
	}

	names := util.SortedMapKeys(s.materials)
	for i := 0; i < *numSprites; i++ {
		s.sprites = append(s.sprites, sprite{
			pos:      [2]float32{rand.Float32() * w, rand.Float32() * h},
			vel:      [2]float32{(rand.Float32() - 0.5) * 200, (rand.Float32() - 0.5) * 200},
			size:     24 + rand.Float32()*40,
			material: names[i%len(names)],
		})
	}

	s.overlayQueue = rend.CreateRenderQueue()

	if err := s.makeOutlineBuffers(w, h); err != nil {
		return nil, err
	}
	return s, nil
}

// makeOutlineBuffers creates the static line geometry the outline
// primitive command draws: a rectangle inset from the window edges.
func (s *scene) makeOutlineBuffers(w, h float32) error {
	const inset = 8
	corners := [][2]float32{{inset, inset}, {w - inset, inset}, {w - inset, h - inset}, {inset, h - inset}}
	outline := renderer.RGBFromHex(0x83a598).RGBA(1).Bytes()
	verts := util.MapSlice(corners, func(p [2]float32) gfx.Vertex {
		return gfx.Vertex{Position: [3]float32{p[0], p[1], 0}, Color: outline}
	})
	indices := []uint16{0, 1, 1, 2, 2, 3, 3, 0}
	s.outlineIndexCount = len(indices)

	var err error
	if s.outlineVB, err = s.dev.CreateBuffer(gfx.VertexBuffer, gfx.VertexStride*len(verts), gfx.StaticDraw); err != nil {
		return fmt.Errorf("outline vertex buffer: %w", err)
	}
	s.dev.UploadBuffer(s.outlineVB, gfx.VertexBytes(verts))
	if s.outlineIB, err = s.dev.CreateBuffer(gfx.IndexBuffer, 2*len(indices), gfx.StaticDraw); err != nil {
		return fmt.Errorf("outline index buffer: %w", err)
	}
	s.dev.UploadBuffer(s.outlineIB, gfx.IndexBytes(indices))
	return nil
}

func (s *scene) dispose() {
	s.dev.DestroyBuffer(s.outlineVB)
	s.dev.DestroyBuffer(s.outlineIB)
	for _, m := range s.materials {
		s.dev.DestroyTexture(m.id)
	}
}

func (s *scene) update(dt, w, h float32) {
	for i := range s.sprites {
		sp := &s.sprites[i]
		sp.pos = math.Add2f(sp.pos, math.Scale2f(sp.vel, dt))
		for d := 0; d < 2; d++ {
			limit := util.Select(d == 0, w, h)
			if sp.pos[d] < 0 {
				sp.pos[d], sp.vel[d] = 0, -sp.vel[d]
			} else if sp.pos[d] > limit {
				sp.pos[d], sp.vel[d] = limit, -sp.vel[d]
			}
		}
	}
}

// submit queues one frame's worth of render commands.
func (s *scene) submit(frame int, now, w, h float32) {
	s.submitBackdrop(w, h)
	s.submitSprites()
	s.submitPolygon(now, w, h)
	s.submitOverlay(now, w, h)
	s.submitOutline()

	// Every few seconds swap the checker texture's phase on the GPU, at
	// its slot in the draw order.
	if frame%240 == 0 {
		phase := s.checkerPhases[frame/240%2]
		checker := s.materials["checker"]
		s.rend.AddCommand(&renderer.CustomCommand{
			Order:   -10,
			Execute: func() { s.dev.UpdateTextureFromImages(checker.id, phase, false) },
		})
	}
}

// submitBackdrop draws a full-screen quad through the opaque 3D tier,
// which is visited before any of the global-order tiers' 2D content.
func (s *scene) submitBackdrop(w, h float32) {
	td := renderer.GetTrianglesDrawBuilder()
	defer renderer.ReturnTrianglesDrawBuilder(td)

	td.AddQuad([2]float32{0, 0}, [2]float32{w, 0}, [2]float32{w, h}, [2]float32{0, h})
	cmd := td.GenerateCommand(0, renderer.RGBFromHex(0x1d2021).RGBA(1), 0, mgl32.Ident4())
	cmd.UseMaterial = s.dev.DisableTexture
	s.rend.AddCommandToGroup(cmd, renderer.GroupOpaque3D)
}

func (s *scene) submitSprites() {
	// Skip sprites that cannot intersect the screen; with everything
	// bouncing inside it this is usually all of them, but resizes
	// shrink the visible rect under the live sprite field.
	visible := util.FilterSlice(s.sprites, func(sp sprite) bool {
		hs := sp.size / 2
		transform := mgl32.Translate3D(sp.pos[0]-hs, sp.pos[1]-hs, 0)
		return s.rend.CheckVisibility(transform, [2]float32{sp.size, sp.size})
	})

	builders := make(map[string]*renderer.TexturedTrianglesDrawBuilder)
	for name := range s.materials {
		builders[name] = renderer.GetTexturedTrianglesDrawBuilder()
	}
	for _, sp := range visible {
		hs := sp.size / 2
		builders[sp.material].AddQuad(
			[2]float32{sp.pos[0] - hs, sp.pos[1] - hs}, [2]float32{sp.pos[0] + hs, sp.pos[1] - hs},
			[2]float32{sp.pos[0] + hs, sp.pos[1] + hs}, [2]float32{sp.pos[0] - hs, sp.pos[1] + hs},
			[2]float32{0, 0}, [2]float32{1, 0}, [2]float32{1, 1}, [2]float32{0, 1})
	}

	white := renderer.RGBA{R: 1, G: 1, B: 1, A: 1}
	for _, name := range util.SortedMapKeys(builders) {
		td := builders[name]
		mat := s.materials[name]
		cmd := td.GenerateCommand(0, white, mat.id, mgl32.Ident4())
		cmd.UseMaterial = mat.bind
		s.rend.AddCommand(cmd)
		renderer.ReturnTexturedTrianglesDrawBuilder(td)
	}
}

// submitPolygon draws a spinning five-pointed star with a pentagonal
// hole, triangulated on the fly and color-cycled over time.
func (s *scene) submitPolygon(now, w, h float32) {
	pb := renderer.GetPolygonDrawBuilder()
	defer renderer.ReturnPolygonDrawBuilder(pb)

	star := make([][2]float32, 10)
	for i := range star {
		r := util.Select(i%2 == 0, float32(140), float32(60))
		a := math.Radians(float32(i) * 36)
		star[i] = [2]float32{r * math.Sin(a), r * math.Cos(a)}
	}
	hole := make([][2]float32, 5)
	for i := range hole {
		a := math.Radians(float32(i) * 72)
		hole[i] = [2]float32{30 * math.Sin(a), 30 * math.Cos(a)}
	}
	pb.AddPolygon(star, hole)

	t := 0.5 + 0.5*math.Sin(now)
	c := renderer.LerpRGB(t, renderer.RGBFromHex(0xfabd2f), renderer.RGBFromHex(0xb16286))
	transform := mgl32.Translate3D(w/2, h/2, 0).Mul4(mgl32.HomogRotate3DZ(now / 3))
	cmd := pb.GenerateCommand(1, c.RGBA(0.9), 0, transform)
	cmd.UseMaterial = s.dev.DisableTexture
	s.rend.AddCommand(cmd)
}

// submitOverlay draws a corner gradient badge through a nested render
// queue so it always lands on top of the main queue's content.
func (s *scene) submitOverlay(now, w, h float32) {
	s.rend.AddCommand(&renderer.GroupCommand{Order: 10, QueueID: s.overlayQueue})

	ctd := renderer.GetColoredTrianglesDrawBuilder()
	defer renderer.ReturnColoredTrianglesDrawBuilder(ctd)

	pulse := renderer.RGBFromHex(0x458588).Scale(0.75 + 0.25*math.Sin(2*now)).RGBA(0.85)
	dim := renderer.RGBFromHex(0x076678).RGBA(0.85)
	ctd.AddQuad([2]float32{w - 180, h - 60}, [2]float32{w - 20, h - 60},
		[2]float32{w - 20, h - 20}, [2]float32{w - 180, h - 20}, pulse)
	ctd.AddCircle([2]float32{w - 200, h - 40}, 16, 24, dim)

	cmd := ctd.GenerateCommand(0, 0, mgl32.Ident4())
	cmd.UseMaterial = s.dev.DisableTexture
	s.rend.PushGroup(s.overlayQueue)
	s.rend.AddCommand(cmd)
	s.rend.PopGroup()
}

// submitOutline draws the static window outline; lines do not go through
// the triangle batcher, so a primitive command issues the draw directly.
func (s *scene) submitOutline() {
	s.rend.AddCommand(&renderer.PrimitiveCommand{
		Order: 5,
		Execute: func() {
			s.dev.DisableTexture()
			s.dev.BindBuffers(s.outlineVB, s.outlineIB)
			s.dev.DrawIndexed(gfx.Lines, s.outlineIndexCount, 0)
		},
	})
}

///////////////////////////////////////////////////////////////////////////
// texture synthesis

func checkerImage(n, block int, a, b color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, n, n))
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			if (x/block+y/block)%2 == 0 {
				img.SetRGBA(x, y, a)
			} else {
				img.SetRGBA(x, y, b)
			}
		}
	}
	return img
}

func ringImage(n, band int, a, b color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, n, n))
	c := float32(n) / 2
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			r := math.Sqrt(math.Sqr(float32(x)-c) + math.Sqr(float32(y)-c))
			if int(r)/band%2 == 0 {
				img.SetRGBA(x, y, a)
			} else {
				img.SetRGBA(x, y, b)
			}
		}
	}
	return img
}
