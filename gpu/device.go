// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpu

import (
	"fmt"
	"strings"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// DepthFormat is the depth/stencil format of every render target and
// pipeline created by this package.
const DepthFormat = gputypes.TextureFormatDepth24PlusStencil8

// Device wraps a HAL device and queue together with the shared resources
// every drawable needs: the color target format, a default sampler and a
// 1x1 white texture used for unbound texture slots.
type Device struct {
	mu sync.Mutex

	device   hal.Device
	queue    hal.Queue
	instance hal.Instance

	// externalDevice is true when device and queue belong to a provider.
	externalDevice bool

	format  gputypes.TextureFormat
	backend gputypes.Backend

	white    *Texture
	programs map[BuiltinProgram]*Program
	closed   bool
}

// DeviceOption configures a Device.
type DeviceOption func(*deviceOptions)

type deviceOptions struct {
	format      gputypes.TextureFormat
	backend     gputypes.Backend
	adapterName string
}

func defaultDeviceOptions() deviceOptions {
	return deviceOptions{
		format:  gputypes.TextureFormatBGRA8Unorm,
		backend: gputypes.BackendVulkan,
	}
}

// WithSurfaceFormat sets the color target format pipelines are built for.
// Default: BGRA8Unorm.
func WithSurfaceFormat(f gputypes.TextureFormat) DeviceOption {
	return func(o *deviceOptions) {
		o.format = f
	}
}

// WithBackend selects the HAL backend Open uses. Default: Vulkan.
func WithBackend(b gputypes.Backend) DeviceOption {
	return func(o *deviceOptions) {
		o.backend = b
	}
}

// WithAdapterName makes Open prefer the first adapter whose name contains
// name, case-insensitively.
func WithAdapterName(name string) DeviceOption {
	return func(o *deviceOptions) {
		o.adapterName = name
	}
}

// Open creates a standalone device, preferring a discrete or integrated
// GPU over software adapters.
func Open(opts ...DeviceOption) (*Device, error) {
	o := defaultDeviceOptions()
	for _, opt := range opts {
		opt(&o)
	}

	backend, ok := hal.GetBackend(o.backend)
	if !ok {
		return nil, fmt.Errorf("%w: backend %v not available", ErrNoAdapter, o.backend)
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("create instance: %w", err)
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, ErrNoAdapter
	}

	var selected *hal.ExposedAdapter
	if o.adapterName != "" {
		want := strings.ToLower(o.adapterName)
		for i := range adapters {
			if strings.Contains(strings.ToLower(adapters[i].Info.Name), want) {
				selected = &adapters[i]
				break
			}
		}
		if selected == nil {
			slogger().Warn("gpu: requested adapter not found", "name", o.adapterName)
		}
	}
	for i := range adapters {
		if selected != nil {
			break
		}
		switch adapters[i].Info.DeviceType {
		case gputypes.DeviceTypeDiscreteGPU, gputypes.DeviceTypeIntegratedGPU:
			selected = &adapters[i]
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("%w: open %s: %w", ErrNoAdapter, selected.Info.Name, err)
	}
	slogger().Info("gpu: adapter selected", "name", selected.Info.Name, "type", selected.Info.DeviceType)

	d, err := newDevice(openDev.Device, openDev.Queue, o)
	if err != nil {
		openDev.Device.Destroy()
		instance.Destroy()
		return nil, err
	}
	d.instance = instance
	return d, nil
}

// FromProvider wraps a device shared by a windowing library. The provider
// must implement HalDevice() any and HalQueue() any returning hal.Device
// and hal.Queue. If it also reports SurfaceFormat, that format is used.
// Close does not destroy a shared device.
func FromProvider(provider any, opts ...DeviceOption) (*Device, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, fmt.Errorf("gpu: provider does not expose HAL types")
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("gpu: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("gpu: provider HalQueue is not hal.Queue")
	}

	o := defaultDeviceOptions()
	var undefined gputypes.TextureFormat
	if fp, ok := provider.(interface {
		SurfaceFormat() gputypes.TextureFormat
	}); ok && fp.SurfaceFormat() != undefined {
		o.format = fp.SurfaceFormat()
	}
	for _, opt := range opts {
		opt(&o)
	}

	d, err := newDevice(device, queue, o)
	if err != nil {
		return nil, err
	}
	d.externalDevice = true
	return d, nil
}

// NewDevice wraps an already opened device and queue. The caller keeps
// ownership of both.
func NewDevice(device hal.Device, queue hal.Queue, opts ...DeviceOption) (*Device, error) {
	o := defaultDeviceOptions()
	for _, opt := range opts {
		opt(&o)
	}
	d, err := newDevice(device, queue, o)
	if err != nil {
		return nil, err
	}
	d.externalDevice = true
	return d, nil
}

func newDevice(device hal.Device, queue hal.Queue, o deviceOptions) (*Device, error) {
	d := &Device{
		device:   device,
		queue:    queue,
		format:   o.format,
		backend:  o.backend,
		programs: make(map[BuiltinProgram]*Program),
	}

	white, err := newSolidTexture(d, "white", 255, 255, 255, 255)
	if err != nil {
		return nil, fmt.Errorf("create default texture: %w", err)
	}
	d.white = white
	return d, nil
}

// HAL returns the underlying HAL device.
func (d *Device) HAL() hal.Device { return d.device }

// Queue returns the underlying HAL queue.
func (d *Device) Queue() hal.Queue { return d.queue }

// SurfaceFormat returns the color target format pipelines are built for.
func (d *Device) SurfaceFormat() gputypes.TextureFormat { return d.format }

// White returns the shared 1x1 white texture.
func (d *Device) White() *Texture { return d.white }

// Close releases the shared resources and, unless the device came from a
// provider, the device itself. Close is idempotent.
func (d *Device) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.closed = true

	for k, p := range d.programs {
		p.Destroy()
		delete(d.programs, k)
	}
	if d.white != nil {
		d.white.Destroy()
		d.white = nil
	}

	if !d.externalDevice {
		if d.device != nil {
			d.device.Destroy()
		}
		if d.instance != nil {
			d.instance.Destroy()
		}
	}
	d.device = nil
	d.queue = nil
	d.instance = nil
}

// warnClosed reports a destroy that arrived after Close. The handles went
// with the device, so the caller only drops them.
func warnClosed(resource string) {
	slogger().Warn("gpu: destroy after device close", "resource", resource)
}

// submit ends encoding, submits and waits for the GPU to finish.
func (d *Device) submit(encoder hal.CommandEncoder) error {
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer d.device.FreeCommandBuffer(cmdBuf)

	fence, err := d.device.CreateFence()
	if err != nil {
		return fmt.Errorf("create fence: %w", err)
	}
	defer d.device.DestroyFence(fence)

	if err := d.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	ok, err := d.device.Wait(fence, 1, submitTimeout)
	if err != nil || !ok {
		return fmt.Errorf("wait for GPU: ok=%v err=%w", ok, err)
	}
	return nil
}

// createBuffer allocates a buffer and uploads data into it.
func (d *Device) createBuffer(label string, data []byte, usage gputypes.BufferUsage) (hal.Buffer, error) {
	buf, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  uint64(len(data)),
		Usage: usage | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", label, err)
	}
	d.queue.WriteBuffer(buf, 0, data)
	return buf, nil
}
