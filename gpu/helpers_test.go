package gpu

import (
	"errors"
	"testing"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
)

// createNoopDevice creates a noop device and queue for tests.
func createNoopDevice(t *testing.T) (hal.Device, hal.Queue, func()) {
	t.Helper()
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	cleanup := func() {
		openDev.Device.Destroy()
		instance.Destroy()
	}
	return openDev.Device, openDev.Queue, cleanup
}

// newInitPipeline returns an initialized pipeline on a noop device.
func newInitPipeline(t *testing.T, cfg Config) (*Pipeline, hal.Device) {
	t.Helper()
	device, queue, cleanup := createNoopDevice(t)
	t.Cleanup(cleanup)
	p, err := NewPipeline(device, queue, cfg)
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}
	if err := p.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(p.Close)
	return p, device
}

// readBuffer maps a noop buffer and copies n bytes out of it.
func readBuffer(t *testing.T, device hal.Device, buf hal.Buffer, n int) []byte {
	t.Helper()
	m, err := device.MapBuffer(buf, 0, uint64(n))
	if err != nil {
		t.Fatalf("MapBuffer: %v", err)
	}
	out := make([]byte, n)
	copy(out, unsafe.Slice((*byte)(m.Ptr), n))
	return out
}

var errInjected = errors.New("injected failure")

// trackingDevice wraps a device, counts destroy calls and fails the
// creation step named by failOn.
type trackingDevice struct {
	hal.Device
	failOn    string
	destroyed map[string]int
}

func newTrackingDevice(d hal.Device, failOn string) *trackingDevice {
	return &trackingDevice{Device: d, failOn: failOn, destroyed: map[string]int{}}
}

func (d *trackingDevice) CreateShaderModule(desc *hal.ShaderModuleDescriptor) (hal.ShaderModule, error) {
	if d.failOn == "shader" {
		return nil, errInjected
	}
	return d.Device.CreateShaderModule(desc)
}

func (d *trackingDevice) CreateBindGroupLayout(desc *hal.BindGroupLayoutDescriptor) (hal.BindGroupLayout, error) {
	if d.failOn == desc.Label {
		return nil, errInjected
	}
	return d.Device.CreateBindGroupLayout(desc)
}

func (d *trackingDevice) CreateRenderPipeline(desc *hal.RenderPipelineDescriptor) (hal.RenderPipeline, error) {
	if d.failOn == "pipeline" {
		return nil, errInjected
	}
	return d.Device.CreateRenderPipeline(desc)
}

func (d *trackingDevice) CreateBindGroup(desc *hal.BindGroupDescriptor) (hal.BindGroup, error) {
	if d.failOn == desc.Label {
		return nil, errInjected
	}
	return d.Device.CreateBindGroup(desc)
}

func (d *trackingDevice) DestroyShaderModule(m hal.ShaderModule) {
	d.destroyed["shader"]++
	d.Device.DestroyShaderModule(m)
}

func (d *trackingDevice) DestroyBindGroupLayout(l hal.BindGroupLayout) {
	d.destroyed["group_layout"]++
	d.Device.DestroyBindGroupLayout(l)
}

func (d *trackingDevice) DestroyPipelineLayout(l hal.PipelineLayout) {
	d.destroyed["pipe_layout"]++
	d.Device.DestroyPipelineLayout(l)
}

func (d *trackingDevice) DestroyRenderPipeline(p hal.RenderPipeline) {
	d.destroyed["pipeline"]++
	d.Device.DestroyRenderPipeline(p)
}

func (d *trackingDevice) DestroyBindGroup(g hal.BindGroup) {
	d.destroyed["group"]++
	d.Device.DestroyBindGroup(g)
}

func (d *trackingDevice) DestroyBuffer(b hal.Buffer) {
	d.destroyed["buffer"]++
	d.Device.DestroyBuffer(b)
}

// recordingPass records the draw calls made on a render pass.
type recordingPass struct {
	hal.RenderPassEncoder
	calls       []string
	pipeline    hal.RenderPipeline
	groups      map[uint32]hal.BindGroup
	indexFormat gputypes.IndexFormat
	indexCount  uint32
	ended       bool
}

func newRecordingPass() *recordingPass {
	return &recordingPass{groups: map[uint32]hal.BindGroup{}}
}

func (r *recordingPass) SetPipeline(p hal.RenderPipeline) {
	r.calls = append(r.calls, "pipeline")
	r.pipeline = p
}

func (r *recordingPass) SetBindGroup(index uint32, g hal.BindGroup, _ []uint32) {
	r.calls = append(r.calls, "group"+string(rune('0'+index)))
	r.groups[index] = g
}

func (r *recordingPass) SetVertexBuffer(slot uint32, _ hal.Buffer, _ uint64) {
	r.calls = append(r.calls, "vertex"+string(rune('0'+slot)))
}

func (r *recordingPass) SetIndexBuffer(_ hal.Buffer, f gputypes.IndexFormat, _ uint64) {
	r.calls = append(r.calls, "index")
	r.indexFormat = f
}

func (r *recordingPass) DrawIndexed(indexCount, _, _ uint32, _ int32, _ uint32) {
	r.calls = append(r.calls, "draw")
	r.indexCount = indexCount
}

func (r *recordingPass) End() { r.ended = true }

// capturingDevice hands out encoders whose render passes are recorded.
type capturingDevice struct {
	hal.Device
	pass *recordingPass
	desc *hal.RenderPassDescriptor
}

func (d *capturingDevice) CreateCommandEncoder(desc *hal.CommandEncoderDescriptor) (hal.CommandEncoder, error) {
	enc, err := d.Device.CreateCommandEncoder(desc)
	if err != nil {
		return nil, err
	}
	return &capturingEncoder{CommandEncoder: enc, dev: d}, nil
}

type capturingEncoder struct {
	hal.CommandEncoder
	dev *capturingDevice
}

func (e *capturingEncoder) BeginRenderPass(desc *hal.RenderPassDescriptor) hal.RenderPassEncoder {
	e.dev.desc = desc
	e.dev.pass = newRecordingPass()
	return e.dev.pass
}
