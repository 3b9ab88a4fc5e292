// Package g3d provides a small real-time 3D rendering engine for Go.
//
// # Overview
//
// g3d renders a registry of drawables (2D primitives, 3D primitives,
// textured meshes and imported models) once per frame through a frame loop
// that polls input, clears the surface, draws every registered drawable in
// insertion order and presents. GPU work goes through gogpu/wgpu; windows
// and input come from gogpu/gogpu.
//
// # Quick Start
//
//	var loop *g3d.FrameLoop
//	platform := window.New(window.WithOnReady(func(dev *gpu.Device) error {
//	    cube, err := gpu.NewCube(dev, gpu.WithColor(g3d.Hex("#fab387")))
//	    if err != nil {
//	        return err
//	    }
//	    loop.Registry().MustAdd(cube)
//	    return nil
//	}))
//	loop = g3d.NewFrameLoop(g3d.WithPlatform(platform))
//	if err := loop.Initialize(); err != nil {
//	    log.Fatal(err)
//	}
//	if err := loop.CreateWindow(1280, 720, "g3d"); err != nil {
//	    log.Fatal(err)
//	}
//	defer loop.Terminate()
//
//	cam := g3d.NewCamera(mgl32.Vec3{0, 0, 2}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0})
//	loop.SetCamera(&cam)
//	_ = loop.Run(context.Background())
//
// # Architecture
//
// The library is organized into:
//   - g3d: Transform, Camera, Input, Registry, FrameLoop, FrameContext
//   - geom: CPU-side vertex data and primitive generators
//   - gpu: device, shader programs, geometry buffers, textures, drawables
//   - importer: glTF model import
//   - window: gogpu window and input adapter
//
// # Coordinate System
//
// Right-handed world space with Y up. Camera matrices follow the OpenGL
// clip-space convention; the gpu package remaps depth for WebGPU.
// Rotations are Euler angles in degrees applied X, then Y, then Z.
//
// # Frame Context
//
// Drawables never read global state. Each tick the loop builds a
// [FrameContext] holding a snapshot of the active camera, the input state
// and the open render pass, and passes it to every drawable.
package g3d

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"
)
