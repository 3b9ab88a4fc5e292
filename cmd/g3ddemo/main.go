// Command g3ddemo renders a lit test scene: ten textured cubes, a ground
// plane, an optional glTF model and a 2D overlay, with a fly camera.
//
// Usage:
//
//	g3ddemo -texture container2.png -specular container2_specular.png
//	g3ddemo -headless -frames 3 -out frame.png
//
// Keys: WASD/space/shift move, mouse looks, F toggles wireframe, Escape quits.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/g3d"
	"github.com/gogpu/g3d/gpu"
	"github.com/gogpu/g3d/window"
)

var cubePositions = []mgl32.Vec3{
	{0, 0, 0},
	{2, 5, -15},
	{-1.5, -2.2, -2.5},
	{-3.8, -2, -12.3},
	{2.4, -0.4, -3.5},
	{-1.7, 3, -7.5},
	{1.3, -2, -2.5},
	{1.5, 2, -2.5},
	{1.5, 0.2, -1.5},
	{-1.3, 1, -1.5},
}

type options struct {
	width, height int
	headless      bool
	frames        uint64
	out           string
	texture       string
	specular      string
	model         string
	wireframe     bool
	verbose       bool
}

func main() {
	var o options
	flag.IntVar(&o.width, "width", 1280, "window width")
	flag.IntVar(&o.height, "height", 720, "window height")
	flag.BoolVar(&o.headless, "headless", false, "render offscreen and save a PNG")
	flag.Uint64Var(&o.frames, "frames", 0, "stop after n frames (headless defaults to 1)")
	flag.StringVar(&o.out, "out", "frame.png", "PNG written in headless mode")
	flag.StringVar(&o.texture, "texture", "", "diffuse map for the cubes and plane")
	flag.StringVar(&o.specular, "specular", "", "specular map for the cubes")
	flag.StringVar(&o.model, "model", "", "glTF/GLB model placed at (0, 0, 2)")
	flag.BoolVar(&o.wireframe, "wireframe", false, "start in wireframe mode")
	flag.BoolVar(&o.verbose, "v", false, "verbose logging")
	flag.Parse()

	if o.verbose {
		g3d.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var err error
	if o.headless {
		err = runHeadless(ctx, o)
	} else {
		err = runWindowed(ctx, o)
	}
	if err != nil {
		log.Fatal(err)
	}
}

func runWindowed(ctx context.Context, o options) error {
	var (
		loop *g3d.FrameLoop
		sc   = &scene{}
	)
	platform := window.New(
		window.WithOnReady(func(dev *gpu.Device) error {
			return sc.build(dev, loop, o)
		}),
		window.WithOnClose(sc.destroy),
	)
	loop = newLoop(platform, sc, o)
	defer loop.Terminate()

	if err := loop.Initialize(); err != nil {
		return err
	}
	if err := loop.CreateWindow(o.width, o.height, "g3d demo"); err != nil {
		return err
	}
	return loop.Run(ctx)
}

func runHeadless(ctx context.Context, o options) error {
	if o.frames == 0 {
		o.frames = 1
	}
	sc := &scene{}
	platform := gpu.NewOffscreenPlatform()
	loop := newLoop(platform, sc, o)
	defer func() {
		loop.Registry().Destroy()
		sc.destroy()
		loop.Terminate()
	}()

	if err := loop.Initialize(); err != nil {
		return err
	}
	if err := loop.CreateWindow(o.width, o.height, "g3d demo"); err != nil {
		return err
	}
	if err := sc.build(platform.Device(), loop, o); err != nil {
		return err
	}
	if err := loop.Run(ctx); err != nil {
		return err
	}

	w, ok := loop.Window().(*gpu.OffscreenWindow)
	if !ok {
		return errors.New("g3ddemo: offscreen platform returned an unexpected window")
	}
	if err := w.Target().SavePNG(o.out); err != nil {
		return err
	}
	log.Printf("rendered %d frame(s) to %s (%dx%d)", loop.Frames(), o.out, o.width, o.height)
	return nil
}

func newLoop(p g3d.Platform, sc *scene, o options) *g3d.FrameLoop {
	fly := g3d.NewFlyCamera()
	var loop *g3d.FrameLoop
	opts := []g3d.LoopOption{
		g3d.WithPlatform(p),
		g3d.WithClearColor(g3d.Hex("#1e1e2e")),
		g3d.WithAutoAspect(true),
		g3d.WithMaxFrames(o.frames),
		g3d.WithUpdate(func(in g3d.InputState, _ time.Duration, cam *g3d.Camera) {
			if in.KeyPressed(g3d.KeyEscape) {
				if c, ok := loop.Window().(interface{ Close() }); ok {
					c.Close()
				}
			}
			if in.KeyPressed(g3d.KeyF) {
				loop.SetWireframe(!loop.Wireframe())
			}
			fly.Update(in, cam)
			if sc.phong != nil {
				gpu.SetViewPos(sc.phong, cam.Position)
			}
		}),
	}
	loop = g3d.NewFrameLoop(opts...)
	loop.SetWireframe(o.wireframe)
	cam := loop.Camera()
	cam.FovY = mgl32.DegToRad(70)
	return loop
}

// scene owns the textures shared between drawables; the drawables
// themselves live in the loop's registry.
type scene struct {
	phong    *gpu.Program
	textures []*gpu.Texture
}

func (s *scene) build(dev *gpu.Device, loop *g3d.FrameLoop, o options) error {
	phong, err := dev.Program(gpu.ProgramPhong)
	if err != nil {
		return err
	}
	s.phong = phong
	err = gpu.SetLights(phong, gpu.Lights{
		ViewPos:   loop.Camera().Position,
		Shininess: 32,
		Dir: gpu.DirLight{
			Direction: mgl32.Vec3{-0.2, -1, -0.3},
		},
		Points: []gpu.PointLight{
			gpu.NewPointLight(mgl32.Vec3{0, 1.5, 5}, g3d.RGB(0.2, 0.2, 0.2), g3d.RGB(0.4, 0, 1), g3d.RGB(0.4, 0, 1)),
			gpu.NewPointLight(mgl32.Vec3{0, 1.5, -10}, g3d.RGB(0.2, 0.2, 0.2), g3d.RGB(1, 0, 0), g3d.RGB(1, 0, 0)),
			gpu.NewPointLight(mgl32.Vec3{0, 0, -10}, g3d.RGB(0.2, 0.2, 0.2), g3d.White, g3d.White),
		},
	})
	if err != nil {
		return err
	}

	diffuse := s.load(dev, o.texture)
	specular := s.load(dev, o.specular)

	reg := loop.Registry()
	for i, pos := range cubePositions {
		t := g3d.At(pos)
		angle := 20 * float32(i+1)
		t.Rotation = mgl32.Vec3{angle, angle, angle}
		cube, err := gpu.NewLitCube(dev, diffuse, specular, gpu.WithTransform(t))
		if err != nil {
			return err
		}
		reg.MustAdd(cube)
	}

	plane, err := gpu.NewPlane(dev, 16, 40, 40, diffuse, gpu.WithTransform(g3d.At(mgl32.Vec3{0, -4, -6})))
	if err != nil {
		return err
	}
	reg.MustAdd(plane)

	if o.model != "" {
		m, err := gpu.LoadModel(dev, phong, o.model)
		if err != nil {
			return err
		}
		m.Transform = g3d.At(mgl32.Vec3{0, 0, 2})
		reg.MustAdd(m)
	}

	return s.overlay(dev, reg, o)
}

// overlay adds the HUD: overlay coordinates span [-aspect, aspect] x [-1, 1].
func (s *scene) overlay(dev *gpu.Device, reg *g3d.Registry, o options) error {
	aspect := float32(o.width) / float32(o.height)

	tri, err := gpu.NewTriangle2D(dev, [2]float32{-0.05, -0.05}, [2]float32{0.05, -0.05}, [2]float32{0, 0.05},
		gpu.WithColor(g3d.Hex("#f38ba8")),
		gpu.WithTransform(g3d.At(mgl32.Vec3{aspect - 0.4, -0.85, 0})))
	if err != nil {
		return err
	}
	rect, err := gpu.NewRect2D(dev, 0.1, 0.1,
		gpu.WithColor(g3d.Hex("#a6e3a1")),
		gpu.WithTransform(g3d.At(mgl32.Vec3{aspect - 0.25, -0.85, 0})))
	if err != nil {
		return err
	}
	circle, err := gpu.NewCircle2D(dev, 32, 0.05,
		gpu.WithColor(g3d.Hex("#89b4fa")),
		gpu.WithTransform(g3d.At(mgl32.Vec3{aspect - 0.1, -0.85, 0})))
	if err != nil {
		return err
	}
	label, err := gpu.NewLabel(dev, "g3d", 24, g3d.White, o.height,
		gpu.WithTransform(g3d.At(mgl32.Vec3{-aspect + 0.05, 0.88, 0})))
	if err != nil {
		return err
	}
	for _, d := range []g3d.Drawable{tri, rect, circle, label} {
		reg.MustAdd(d)
	}
	return nil
}

// load returns nil (white) for an empty path or a texture that fails to load.
func (s *scene) load(dev *gpu.Device, path string) *gpu.Texture {
	if path == "" {
		return nil
	}
	tex, err := gpu.LoadTexture(dev, path)
	if err != nil {
		log.Printf("texture %s: %v", path, err)
		return nil
	}
	s.textures = append(s.textures, tex)
	return tex
}

func (s *scene) destroy() {
	for _, t := range s.textures {
		t.Destroy()
	}
	s.textures = nil
}
