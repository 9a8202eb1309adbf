package engine

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/swatinair123/OSprayLoadObj/log"
	"github.com/swatinair123/OSprayLoadObj/types"
)

func TestFrameBufferMapExclusivity(t *testing.T) {
	dev := &Device{}
	fb, err := dev.NewFrameBuffer(4, 2, SRGBA, Color|Accum)
	if err != nil {
		t.Fatal(err)
	}

	view, err := fb.Map(Color)
	if err != nil {
		t.Fatal(err)
	}
	if len(view) != 4*2*4 {
		t.Fatalf("expected color view with %d bytes; got %d", 4*2*4, len(view))
	}

	if _, err = fb.Map(Color); !errors.Is(err, ErrAlreadyMapped) {
		t.Fatalf("expected ErrAlreadyMapped; got %v", err)
	}
	if err = fb.Clear(Color | Accum); !errors.Is(err, ErrMapped) {
		t.Fatalf("expected ErrMapped while clearing a mapped framebuffer; got %v", err)
	}
	if err = fb.Unmap(make([]byte, len(view))); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("expected foreign view to be rejected; got %v", err)
	}
	if err = fb.Unmap(view); err != nil {
		t.Fatal(err)
	}
	if err = fb.Unmap(view); !errors.Is(err, ErrNotMapped) {
		t.Fatalf("expected ErrNotMapped; got %v", err)
	}
	if _, err = fb.Map(Depth); !errors.Is(err, ErrInvalidChannel) {
		t.Fatalf("expected ErrInvalidChannel for missing depth channel; got %v", err)
	}
}

func TestFrameBufferColorViewIsDetached(t *testing.T) {
	dev := &Device{}
	fb, err := dev.NewFrameBuffer(2, 1, RGBA8, Color|Accum)
	if err != nil {
		t.Fatal(err)
	}
	fb.accumulate(0, 0, [4]float32{1, 0, 0, 1}, 1, true, 1)

	view, err := fb.Map(Color)
	if err != nil {
		t.Fatal(err)
	}
	for idx := range view {
		view[idx] = 7
	}
	if err = fb.Unmap(view); err != nil {
		t.Fatal(err)
	}

	view, err = fb.Map(Color)
	if err != nil {
		t.Fatal(err)
	}
	defer fb.Unmap(view)
	if exp := []byte{255, 0, 0, 255, 0, 0, 0, 0}; !bytes.Equal(view, exp) {
		t.Fatalf("expected writes to a released view to be discarded; got %v", view)
	}
}

func TestFrameBufferInvalidSize(t *testing.T) {
	dev := &Device{}
	if _, err := dev.NewFrameBuffer(0, 10, SRGBA, Color); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter; got %v", err)
	}
}

func TestSRGBEncoding(t *testing.T) {
	specs := []struct {
		in  float32
		exp byte
	}{
		{0, 0},
		{1, 255},
		{2, 255},
		{-1, 0},
		{0.5, 188},
	}

	for specIndex, spec := range specs {
		if got := srgbByte(spec.in); got != spec.exp {
			t.Errorf("[spec %d] expected srgb(%f) = %d; got %d", specIndex, spec.in, spec.exp, got)
		}
	}
}

func TestSamplerDeterminism(t *testing.T) {
	s1 := newSampler(3, 7, 2)
	s2 := newSampler(3, 7, 2)
	for i := 0; i < 16; i++ {
		v1, v2 := s1.next(), s2.next()
		if v1 != v2 {
			t.Fatalf("expected identical sequences; got %f and %f at %d", v1, v2, i)
		}
		if v1 < 0 || v1 >= 1 {
			t.Fatalf("expected value in [0, 1); got %f", v1)
		}
	}

	n := types.XYZ(0, 0, 1)
	for i := 0; i < 16; i++ {
		dir := s1.cosineHemisphere(n)
		if dir.Dot(n) < 0 {
			t.Fatalf("expected hemisphere direction around %v; got %v", n, dir)
		}
	}
}

func TestRenderSolidTriangle(t *testing.T) {
	dev, r := setupTestScene(t, 0, types.XYZW(1, 0, 0, 1))
	defer dev.Close()

	fb, err := dev.NewFrameBuffer(8, 6, RGBA8, Color|Depth|Accum)
	if err != nil {
		t.Fatal(err)
	}
	if err = r.RenderFrame(fb, Color|Depth|Accum); err != nil {
		t.Fatal(err)
	}
	if fb.Frames() != 1 {
		t.Fatalf("expected 1 accumulated frame; got %d", fb.Frames())
	}

	view, err := fb.Map(Color)
	if err != nil {
		t.Fatal(err)
	}
	for pixel := 0; pixel < len(view)/4; pixel++ {
		if got := view[pixel*4 : pixel*4+4]; !bytes.Equal(got, []byte{255, 0, 0, 255}) {
			t.Fatalf("expected pixel %d to be opaque red; got %v", pixel, got)
		}
	}
	fb.Unmap(view)

	depthView, err := fb.Map(Depth)
	if err != nil {
		t.Fatal(err)
	}
	defer fb.Unmap(depthView)
	for pixel := 0; pixel < len(depthView)/4; pixel++ {
		depth := math.Float32frombits(binary.LittleEndian.Uint32(depthView[pixel*4:]))
		if depth < 2 || depth > 4 {
			t.Fatalf("expected pixel %d depth in [2, 4]; got %f", pixel, depth)
		}
	}

	stats := r.Stats()
	var rows uint32
	for _, trStat := range stats.Tracers {
		rows += trStat.BlockH
	}
	if rows != 6 {
		t.Fatalf("expected tracer blocks to cover 6 rows; got %d", rows)
	}
}

func TestRenderBackground(t *testing.T) {
	defer log.SetLevel(log.Notice)
	dev, _, err := Init([]string{"test", "--osp:numthreads=2"})
	if err != nil {
		t.Fatal(err)
	}
	defer dev.Close()

	model := dev.NewModel()
	model.Commit()
	cam, _ := dev.NewCamera("perspective")
	cam.Commit()
	r, _ := dev.NewRenderer("scivis")
	r.SetObject("model", model)
	r.SetObject("camera", cam)
	r.SetFloat("bgColor", 1)
	if err = r.Commit(); err != nil {
		t.Fatal(err)
	}

	fb, _ := dev.NewFrameBuffer(3, 3, SRGBA, Color|Accum)
	if err = r.RenderFrame(fb, Color|Accum); err != nil {
		t.Fatal(err)
	}
	view, _ := fb.Map(Color)
	defer fb.Unmap(view)
	for pixel := 0; pixel < 9; pixel++ {
		if got := view[pixel*4 : pixel*4+4]; !bytes.Equal(got, []byte{255, 255, 255, 0}) {
			t.Fatalf("expected pixel %d to be transparent white; got %v", pixel, got)
		}
	}
}

func TestRenderAccumulationAndClear(t *testing.T) {
	dev, r := setupTestScene(t, 1, types.XYZW(0.5, 0.5, 0.5, 1))
	defer dev.Close()

	fb, _ := dev.NewFrameBuffer(8, 6, SRGBA, Color|Accum)
	if err := r.RenderFrame(fb, Color|Accum); err != nil {
		t.Fatal(err)
	}
	first, _ := fb.Map(Color)
	firstCopy := append([]byte(nil), first...)
	fb.Unmap(first)

	if err := fb.Clear(Color | Accum); err != nil {
		t.Fatal(err)
	}
	if fb.Frames() != 0 {
		t.Fatalf("expected clear to reset the frame count; got %d", fb.Frames())
	}

	// Nothing occludes a single plane so every pass yields the same colors
	for i := 0; i < 3; i++ {
		if err := r.RenderFrame(fb, Color|Accum); err != nil {
			t.Fatal(err)
		}
	}
	if fb.Frames() != 3 {
		t.Fatalf("expected 3 accumulated frames; got %d", fb.Frames())
	}

	view, _ := fb.Map(Color)
	if !bytes.Equal(view, firstCopy) {
		t.Fatal("expected accumulated frames of a deterministic scene to match the first frame")
	}

	if err := r.RenderFrame(fb, Color|Accum); !errors.Is(err, ErrMapped) {
		t.Fatalf("expected ErrMapped while rendering into a mapped framebuffer; got %v", err)
	}
	fb.Unmap(view)

	// Rendering without the accum channel replaces the history
	if err := r.RenderFrame(fb, Color); err != nil {
		t.Fatal(err)
	}
	if fb.Frames() != 1 {
		t.Fatalf("expected non accumulating render to reset the frame count to 1; got %d", fb.Frames())
	}
}

func TestRenderRequiresCommit(t *testing.T) {
	dev := &Device{}
	r, _ := dev.NewRenderer("scivis")
	fb, _ := dev.NewFrameBuffer(1, 1, SRGBA, Color)
	if err := r.RenderFrame(fb, Color); !errors.Is(err, ErrNotCommitted) {
		t.Fatalf("expected ErrNotCommitted; got %v", err)
	}
}

// Build a renderer for a large triangle at z = 2 that fills the view of a
// camera at the origin looking down +z.
func setupTestScene(t *testing.T, aoSamples int32, color types.Vec4) (*Device, *Renderer) {
	defer log.SetLevel(log.Notice)
	dev, _, err := Init([]string{"test", "--osp:numthreads=3"})
	if err != nil {
		t.Fatal(err)
	}

	mustCommit := func(obj Object) {
		if err := obj.Commit(); err != nil {
			t.Fatal(err)
		}
	}

	vertices, _ := dev.NewData(3, Float3A, []float32{
		-100, -100, 2, 0,
		100, -100, 2, 0,
		0, 100, 2, 0,
	})
	mustCommit(vertices)
	colors, _ := dev.NewData(3, Float4, []float32{
		color[0], color[1], color[2], color[3],
		color[0], color[1], color[2], color[3],
		color[0], color[1], color[2], color[3],
	})
	mustCommit(colors)
	indices, _ := dev.NewData(1, Int3, []int32{0, 1, 2})
	mustCommit(indices)

	geom, _ := dev.NewGeometry("triangles")
	geom.SetData("vertex", vertices)
	geom.SetData("vertex.color", colors)
	geom.SetData("index", indices)
	mustCommit(geom)

	model := dev.NewModel()
	model.AddGeometry(geom)
	mustCommit(model)

	cam, _ := dev.NewCamera("perspective")
	cam.SetFloat("aspect", 8.0/6.0)
	mustCommit(cam)

	light, _ := dev.NewLight("ambient")
	mustCommit(light)
	lights, _ := dev.NewData(1, LightRef, []*Light{light})
	mustCommit(lights)

	r, _ := dev.NewRenderer("scivis")
	r.SetObject("model", model)
	r.SetObject("camera", cam)
	r.SetData("lights", lights)
	r.SetInt("aoSamples", aoSamples)
	mustCommit(r)

	return dev, r
}
