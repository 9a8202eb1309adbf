package engine

import (
	"fmt"
	"math"
	"time"

	"github.com/swatinair123/OSprayLoadObj/log"
	"github.com/swatinair123/OSprayLoadObj/tracer"
	"github.com/swatinair123/OSprayLoadObj/types"
)

const (
	// Offset applied to secondary ray origins to avoid self intersection.
	rayEpsilon float32 = 1e-4

	defaultAODistance float32 = 1e20
)

// A scientific visualization renderer: albedo lit by ambient lights and
// attenuated by ambient occlusion. Parameters:
//
//	model       *Model  scene to render (required)
//	camera      *Camera viewpoint (required)
//	lights      *Data   LightRef list of ambient lights (optional)
//	aoSamples   int     occlusion rays per hit (default 1, 0 disables)
//	aoDistance  float   maximum occluder distance (default 1e20)
//	bgColor     float, vec3 or vec4 background for rays that miss (default 0)
//	spp         int     primary samples per pixel and pass (default 1)
type Renderer struct {
	object
	logger log.Logger
	dev    *Device

	// Committed state.
	model      *Model
	camera     *Camera
	ambient    types.Vec3
	aoSamples  int32
	aoDistance float32
	bgColor    types.Vec4
	spp        int32

	stats FrameStats
}

// Create a new renderer. Only the "scivis" type is supported.
func (d *Device) NewRenderer(typeName string) (*Renderer, error) {
	if typeName != "scivis" {
		return nil, fmt.Errorf("%w: renderer %q", ErrUnknownType, typeName)
	}
	return &Renderer{
		object: newObject("renderer", typeName),
		logger: log.New("renderer"),
		dev:    d,
	}, nil
}

// Commit pending parameters. Referenced objects must already be committed.
func (r *Renderer) Commit() error {
	p := r.staged()

	model, ok := p["model"].(*Model)
	if !ok || model == nil {
		return fmt.Errorf("%w: renderer needs a model", ErrMissingParameter)
	}
	if !model.Committed() {
		return fmt.Errorf("%w: model bound to renderer", ErrNotCommitted)
	}

	camera, ok := p["camera"].(*Camera)
	if !ok || camera == nil {
		return fmt.Errorf("%w: renderer needs a camera", ErrMissingParameter)
	}
	if !camera.Committed() {
		return fmt.Errorf("%w: camera bound to renderer", ErrNotCommitted)
	}

	lightData, err := p.getData("lights")
	if err != nil {
		return err
	}
	var ambient types.Vec3
	if lightData != nil {
		if lightData.format != LightRef {
			return fmt.Errorf("%w: lights must be light data; got %s", ErrDataMismatch, lightData.format)
		}
		for _, light := range lightData.lights {
			ambient = ambient.Add(light.Radiance())
		}
	}

	aoSamples, err := p.getInt("aoSamples", 1)
	if err != nil {
		return err
	}
	aoDistance, err := p.getFloat("aoDistance", defaultAODistance)
	if err != nil {
		return err
	}
	spp, err := p.getInt("spp", 1)
	if err != nil {
		return err
	}
	if aoSamples < 0 || aoDistance <= 0 || spp < 1 {
		return fmt.Errorf("%w: aoSamples %d / aoDistance %f / spp %d", ErrInvalidParameter, aoSamples, aoDistance, spp)
	}

	bgColor, err := backgroundColor(p)
	if err != nil {
		return err
	}

	r.model = model
	r.camera = camera
	r.ambient = ambient
	r.aoSamples = aoSamples
	r.aoDistance = aoDistance
	r.spp = spp
	r.bgColor = bgColor
	r.apply(p)
	return nil
}

// A scalar background is a grey with zero alpha; a vec3 gets zero alpha.
func backgroundColor(p params) (types.Vec4, error) {
	v, ok := p["bgColor"]
	if !ok {
		return types.Vec4{}, nil
	}
	switch t := v.(type) {
	case types.Vec4:
		return t, nil
	case [4]float32:
		return types.Vec4(t), nil
	case []float32:
		if len(t) == 4 {
			return types.Vec4{t[0], t[1], t[2], t[3]}, nil
		}
	}
	rgb, err := p.getVec3("bgColor", types.Vec3{})
	if err != nil {
		return types.Vec4{}, err
	}
	return rgb.Vec4(0), nil
}

// Render a single pass into fb and block until it completes. When channels
// include Accum the pass is averaged with previous passes; otherwise it
// replaces them.
func (r *Renderer) RenderFrame(fb *FrameBuffer, channels Channel) error {
	if !r.Committed() {
		return fmt.Errorf("%w: renderer", ErrNotCommitted)
	}
	if fb.mapped != nil {
		return ErrMapped
	}
	tracers := r.dev.Tracers()
	if len(tracers) == 0 {
		return ErrDeviceClosed
	}

	replace := channels&Accum == 0 || fb.channels&Accum == 0
	frameIndex := fb.frames
	frames := fb.frames + 1
	if replace {
		frameIndex, frames = 0, 1
	}

	start := time.Now()
	blockAssignment, err := tracer.Dispatch(tracers, r.dev.scheduler, tracer.BlockRequest{
		FrameW:          fb.width,
		FrameH:          fb.height,
		SamplesPerPixel: uint32(r.spp),
		FrameCount:      frameIndex,
		Trace: func(blockReq *tracer.BlockRequest) error {
			r.traceBlock(fb, blockReq, replace, frames)
			return nil
		},
	})
	if err != nil {
		return err
	}
	fb.frames = frames

	r.stats = FrameStats{
		Tracers:    make([]TracerStat, len(tracers)),
		Frame:      frameIndex,
		RenderTime: time.Since(start),
	}
	for idx, tr := range tracers {
		r.stats.Tracers[idx] = TracerStat{
			Id:           tr.Id(),
			BlockH:       blockAssignment[idx],
			FramePercent: 100 * float32(blockAssignment[idx]) / float32(fb.height),
		}
		if blockAssignment[idx] != 0 {
			r.stats.Tracers[idx].RenderTime = tr.Stats().RenderTime
		}
	}
	r.logger.Debugf("rendered frame %d (%dx%d) in %d ms", frameIndex, fb.width, fb.height, r.stats.RenderTime.Nanoseconds()/1e6)
	return nil
}

// Get the statistics of the last rendered pass.
func (r *Renderer) Stats() FrameStats {
	return r.stats
}

func (r *Renderer) traceBlock(fb *FrameBuffer, blockReq *tracer.BlockRequest, replace bool, frames uint32) {
	frameW, frameH := float32(blockReq.FrameW), float32(blockReq.FrameH)
	origin := r.camera.Position()
	sampleScale := 1.0 / float32(blockReq.SamplesPerPixel)

	for y := blockReq.BlockY; y < blockReq.BlockY+blockReq.BlockH; y++ {
		for x := uint32(0); x < blockReq.FrameW; x++ {
			rng := newSampler(x, y, blockReq.FrameCount)
			var sum [4]float32
			depth := float32(math.Inf(1))
			for s := uint32(0); s < blockReq.SamplesPerPixel; s++ {
				jx, jy := float32(0.5), float32(0.5)
				if blockReq.FrameCount != 0 || s != 0 {
					jx, jy = rng.next(), rng.next()
				}
				dir := r.camera.rayDir((float32(x)+jx)/frameW, (float32(y)+jy)/frameH)
				rgba, t := r.shade(origin, dir, &rng)
				for c := 0; c < 4; c++ {
					sum[c] += rgba[c] * sampleScale
				}
				if t < depth {
					depth = t
				}
			}
			fb.accumulate(x, y, sum, depth, replace, frames)
		}
	}
}

// Shade a primary ray. Returns the sample color and the hit distance.
func (r *Renderer) shade(origin, dir types.Vec3, rng *sampler) (types.Vec4, float32) {
	var rec hitRecord
	if !r.model.intersect(origin, dir, float32(math.MaxFloat32), &rec) {
		return r.bgColor, float32(math.Inf(1))
	}

	albedo := rec.tri.color(rec.u, rec.v)
	normal := rec.tri.normal
	if normal.Dot(dir) > 0 {
		normal = normal.Mul(-1)
	}

	visibility := float32(1)
	if r.aoSamples > 0 {
		hitPoint := origin.Add(dir.Mul(rec.t)).Add(normal.Mul(rayEpsilon))
		unoccluded := 0
		for s := int32(0); s < r.aoSamples; s++ {
			if !r.model.occluded(hitPoint, rng.cosineHemisphere(normal), r.aoDistance) {
				unoccluded++
			}
		}
		visibility = float32(unoccluded) / float32(r.aoSamples)
	}

	shaded := albedo.Vec3().MulVec(r.ambient).Mul(visibility)
	return shaded.Vec4(1), rec.t
}
