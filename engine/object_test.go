package engine

import (
	"errors"
	"testing"

	"github.com/swatinair123/OSprayLoadObj/types"
)

func TestPendingParamsApplyOnCommit(t *testing.T) {
	dev := &Device{}
	cam, err := dev.NewCamera("perspective")
	if err != nil {
		t.Fatal(err)
	}
	if cam.Committed() {
		t.Fatal("expected new camera to be uncommitted")
	}
	if err = cam.Commit(); err != nil {
		t.Fatal(err)
	}

	cam.SetVec3("pos", types.XYZ(1, 2, 3))
	if cam.Position() != (types.Vec3{}) {
		t.Fatalf("expected pending pos to stay invisible before commit; got %v", cam.Position())
	}
	if err = cam.Commit(); err != nil {
		t.Fatal(err)
	}
	if exp := types.XYZ(1, 2, 3); cam.Position() != exp {
		t.Fatalf("expected pos %v; got %v", exp, cam.Position())
	}

	// A failed commit keeps the previous state
	cam.SetFloat("fovy", 200)
	if err = cam.Commit(); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter; got %v", err)
	}
	if exp := types.XYZ(1, 2, 3); cam.Position() != exp {
		t.Fatalf("expected pos %v after failed commit; got %v", exp, cam.Position())
	}
}

func TestUnknownObjectTypes(t *testing.T) {
	dev := &Device{}
	if _, err := dev.NewCamera("orthographic"); !errors.Is(err, ErrUnknownType) {
		t.Fatalf("expected ErrUnknownType for camera; got %v", err)
	}
	if _, err := dev.NewGeometry("spheres"); !errors.Is(err, ErrUnknownType) {
		t.Fatalf("expected ErrUnknownType for geometry; got %v", err)
	}
	if _, err := dev.NewLight("distant"); !errors.Is(err, ErrUnknownType) {
		t.Fatalf("expected ErrUnknownType for light; got %v", err)
	}
	if _, err := dev.NewRenderer("pathtracer"); !errors.Is(err, ErrUnknownType) {
		t.Fatalf("expected ErrUnknownType for renderer; got %v", err)
	}
}

func TestCameraFrustrum(t *testing.T) {
	dev := &Device{}
	cam, _ := dev.NewCamera("perspective")
	cam.SetFloat("aspect", 2)
	cam.SetFloat("fovy", 90)
	if err := cam.Commit(); err != nil {
		t.Fatal(err)
	}

	// tan(45) = 1 so the corners sit at (+-2, +-1, 1). Screen right is
	// dir x up which points along -x.
	exp := Frustrum{
		{2, 1, 1},
		{-2, 1, 1},
		{2, -1, 1},
		{-2, -1, 1},
	}
	for corner := range exp {
		for axis := 0; axis < 3; axis++ {
			if diff := cam.Frustrum()[corner][axis] - exp[corner][axis]; diff > 1e-5 || diff < -1e-5 {
				t.Fatalf("expected frustrum\n%v\ngot\n%v", exp, cam.Frustrum())
			}
		}
	}

	center := cam.rayDir(0.5, 0.5)
	if center[2] < 0.9999 {
		t.Fatalf("expected center ray to point along +z; got %v", center)
	}
}

func TestDataPayloadValidation(t *testing.T) {
	dev := &Device{}

	type spec struct {
		count   int
		format  DataFormat
		payload interface{}
	}
	specs := []spec{
		{2, Float3, []float32{1, 2, 3}},
		{1, Float3A, []float32{1, 2, 3}},
		{1, Int3, []float32{0, 1, 2}},
		{1, Float4, []int32{0, 1, 2, 3}},
		{1, LightRef, []float32{1}},
	}
	for specIndex, s := range specs {
		if _, err := dev.NewData(s.count, s.format, s.payload); !errors.Is(err, ErrDataMismatch) {
			t.Errorf("[spec %d] expected ErrDataMismatch; got %v", specIndex, err)
		}
	}

	src := []float32{1, 2, 3, 0}
	data, err := dev.NewData(1, Float3A, src)
	if err != nil {
		t.Fatal(err)
	}
	src[0] = 42
	if data.floats[0] != 1 {
		t.Fatal("expected data payload to be copied")
	}
	if data.Len() != 1 || data.Format() != Float3A {
		t.Fatalf("expected 1 x float3a; got %d x %s", data.Len(), data.Format())
	}
}

func TestGeometryCommitValidation(t *testing.T) {
	dev := &Device{}

	vertices, _ := dev.NewData(3, Float3, []float32{0, 0, 0, 1, 0, 0, 0, 1, 0})
	indices, _ := dev.NewData(1, Int3, []int32{0, 1, 3})
	geom, _ := dev.NewGeometry("triangles")

	geom.SetData("vertex", vertices)
	if err := geom.Commit(); !errors.Is(err, ErrNotCommitted) {
		t.Fatalf("expected ErrNotCommitted for uncommitted vertex data; got %v", err)
	}

	vertices.Commit()
	if err := geom.Commit(); !errors.Is(err, ErrMissingParameter) {
		t.Fatalf("expected ErrMissingParameter without index data; got %v", err)
	}

	indices.Commit()
	geom.SetData("index", indices)
	if err := geom.Commit(); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter for out of range index; got %v", err)
	}

	geom.SetData("index", vertices)
	if err := geom.Commit(); !errors.Is(err, ErrDataMismatch) {
		t.Fatalf("expected ErrDataMismatch for float index data; got %v", err)
	}

	goodIndices, _ := dev.NewData(1, Int3, []int32{0, 1, 2})
	goodIndices.Commit()
	geom.SetData("index", goodIndices)
	if err := geom.Commit(); err != nil {
		t.Fatal(err)
	}
	if geom.NumTriangles() != 1 || len(geom.BvhNodes()) != 1 {
		t.Fatalf("expected 1 triangle in a single leaf; got %d triangles and %d nodes", geom.NumTriangles(), len(geom.BvhNodes()))
	}
}

func TestModelAndRendererRequireCommittedObjects(t *testing.T) {
	dev := &Device{}

	geom, _ := dev.NewGeometry("triangles")
	model := dev.NewModel()
	model.AddGeometry(geom)
	if err := model.Commit(); !errors.Is(err, ErrNotCommitted) {
		t.Fatalf("expected ErrNotCommitted for uncommitted geometry; got %v", err)
	}

	emptyModel := dev.NewModel()
	cam, _ := dev.NewCamera("perspective")
	r, _ := dev.NewRenderer("scivis")
	r.SetObject("model", emptyModel)
	r.SetObject("camera", cam)
	if err := r.Commit(); !errors.Is(err, ErrNotCommitted) {
		t.Fatalf("expected ErrNotCommitted for uncommitted model; got %v", err)
	}

	emptyModel.Commit()
	if err := r.Commit(); !errors.Is(err, ErrNotCommitted) {
		t.Fatalf("expected ErrNotCommitted for uncommitted camera; got %v", err)
	}

	cam.Commit()
	light, _ := dev.NewLight("ambient")
	lights, _ := dev.NewData(1, LightRef, []*Light{light})
	if err := lights.Commit(); !errors.Is(err, ErrNotCommitted) {
		t.Fatalf("expected ErrNotCommitted for light data with uncommitted light; got %v", err)
	}

	light.Commit()
	lights.Commit()
	r.SetData("lights", lights)
	if err := r.Commit(); err != nil {
		t.Fatal(err)
	}
}

func TestBackgroundColorForms(t *testing.T) {
	specs := []struct {
		value interface{}
		exp   types.Vec4
	}{
		{float32(1), types.XYZW(1, 1, 1, 0)},
		{types.XYZ(0.2, 0.4, 0.6), types.XYZW(0.2, 0.4, 0.6, 0)},
		{types.XYZW(0.1, 0.2, 0.3, 0.5), types.XYZW(0.1, 0.2, 0.3, 0.5)},
	}

	for specIndex, s := range specs {
		got, err := backgroundColor(params{"bgColor": s.value})
		if err != nil {
			t.Errorf("[spec %d] unexpected error: %v", specIndex, err)
			continue
		}
		if got != s.exp {
			t.Errorf("[spec %d] expected %v; got %v", specIndex, s.exp, got)
		}
	}

	if _, err := backgroundColor(params{"bgColor": "white"}); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter; got %v", err)
	}
}
