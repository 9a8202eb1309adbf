package scene

import (
	"fmt"

	"github.com/swatinair123/OSprayLoadObj/engine"
	"github.com/swatinair123/OSprayLoadObj/types"
)

// A committed scene ready to be rendered.
type Scene struct {
	Renderer *engine.Renderer
	Model    *engine.Model
	Camera   *engine.Camera
	Geometry *engine.Geometry

	// Target image size.
	Width  uint32
	Height uint32
}

// Build and commit the engine objects for a scene description. Objects are
// committed in dependency order: camera, geometry with its data buffers,
// model and finally the renderer with its lights.
func Assemble(dev *engine.Device, desc *Description) (*Scene, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}

	camera, err := assembleCamera(dev, desc)
	if err != nil {
		return nil, err
	}

	geometry, err := assembleGeometry(dev, &desc.Mesh)
	if err != nil {
		return nil, err
	}

	model := dev.NewModel()
	model.AddGeometry(geometry)
	if err = model.Commit(); err != nil {
		return nil, fmt.Errorf("scene: model: %w", err)
	}

	renderer, err := assembleRenderer(dev, desc, model, camera)
	if err != nil {
		return nil, err
	}

	logger.Infof("assembled scene with %d triangle(s) for a %dx%d image", geometry.NumTriangles(), desc.Width, desc.Height)
	return &Scene{
		Renderer: renderer,
		Model:    model,
		Camera:   camera,
		Geometry: geometry,
		Width:    uint32(desc.Width),
		Height:   uint32(desc.Height),
	}, nil
}

func assembleCamera(dev *engine.Device, desc *Description) (*engine.Camera, error) {
	camType := desc.Camera.Type
	if camType == "" {
		camType = "perspective"
	}
	camera, err := dev.NewCamera(camType)
	if err != nil {
		return nil, fmt.Errorf("scene: camera: %w", err)
	}

	camera.SetFloat("aspect", desc.Aspect())
	camera.SetVec3("pos", desc.Camera.Pos)
	camera.SetVec3("dir", desc.Camera.Dir)
	camera.SetVec3("up", desc.Camera.Up)
	if desc.Camera.Fovy != nil {
		camera.SetFloat("fovy", *desc.Camera.Fovy)
	}
	if err = camera.Commit(); err != nil {
		return nil, fmt.Errorf("scene: camera: %w", err)
	}
	return camera, nil
}

func assembleGeometry(dev *engine.Device, mesh *MeshDesc) (*engine.Geometry, error) {
	// Positions are padded to 4 floats
	positions := make([]float32, 0, 4*len(mesh.Vertices))
	for _, v := range mesh.Vertices {
		positions = append(positions, v[0], v[1], v[2], 0)
	}
	indices := make([]int32, 0, 3*len(mesh.Indices))
	for _, tri := range mesh.Indices {
		indices = append(indices, tri[0], tri[1], tri[2])
	}

	vertexData, err := newCommittedData(dev, len(mesh.Vertices), engine.Float3A, positions)
	if err != nil {
		return nil, fmt.Errorf("scene: vertex data: %w", err)
	}
	indexData, err := newCommittedData(dev, len(mesh.Indices), engine.Int3, indices)
	if err != nil {
		return nil, fmt.Errorf("scene: index data: %w", err)
	}

	geometry, err := dev.NewGeometry("triangles")
	if err != nil {
		return nil, fmt.Errorf("scene: geometry: %w", err)
	}
	geometry.SetData("vertex", vertexData)
	geometry.SetData("index", indexData)

	if len(mesh.Colors) != 0 {
		colors := make([]float32, 0, 4*len(mesh.Colors))
		for _, c := range mesh.Colors {
			colors = append(colors, c[0], c[1], c[2], c[3])
		}
		colorData, err := newCommittedData(dev, len(mesh.Colors), engine.Float4, colors)
		if err != nil {
			return nil, fmt.Errorf("scene: color data: %w", err)
		}
		geometry.SetData("vertex.color", colorData)
	}

	if err = geometry.Commit(); err != nil {
		return nil, fmt.Errorf("scene: geometry: %w", err)
	}
	return geometry, nil
}

func assembleRenderer(dev *engine.Device, desc *Description, model *engine.Model, camera *engine.Camera) (*engine.Renderer, error) {
	rendererType := desc.Renderer.Type
	if rendererType == "" {
		rendererType = "scivis"
	}
	renderer, err := dev.NewRenderer(rendererType)
	if err != nil {
		return nil, fmt.Errorf("scene: renderer: %w", err)
	}

	lights := make([]*engine.Light, 0, len(desc.Lights))
	for idx, lightDesc := range desc.Lights {
		lightType := lightDesc.Type
		if lightType == "" {
			lightType = "ambient"
		}
		light, err := dev.NewLight(lightType)
		if err != nil {
			return nil, fmt.Errorf("scene: light %d: %w", idx, err)
		}
		if lightDesc.Color != nil {
			light.SetVec3("color", *lightDesc.Color)
		}
		if lightDesc.Intensity != nil {
			light.SetFloat("intensity", *lightDesc.Intensity)
		}
		if err = light.Commit(); err != nil {
			return nil, fmt.Errorf("scene: light %d: %w", idx, err)
		}
		lights = append(lights, light)
	}
	lightData, err := newCommittedData(dev, len(lights), engine.LightRef, lights)
	if err != nil {
		return nil, fmt.Errorf("scene: light data: %w", err)
	}

	renderer.SetInt("aoSamples", desc.Renderer.AOSamples)
	if desc.Renderer.AODistance != nil {
		renderer.SetFloat("aoDistance", *desc.Renderer.AODistance)
	}
	if desc.Renderer.SPP != nil {
		renderer.SetInt("spp", *desc.Renderer.SPP)
	}
	switch bg := desc.Renderer.BgColor; len(bg) {
	case 1:
		renderer.SetFloat("bgColor", bg[0])
	case 3:
		renderer.SetVec3("bgColor", types.XYZ(bg[0], bg[1], bg[2]))
	case 4:
		renderer.SetVec4("bgColor", types.XYZW(bg[0], bg[1], bg[2], bg[3]))
	}
	renderer.SetObject("model", model)
	renderer.SetObject("camera", camera)
	renderer.SetData("lights", lightData)

	if err = renderer.Commit(); err != nil {
		return nil, fmt.Errorf("scene: renderer: %w", err)
	}
	return renderer, nil
}

func newCommittedData(dev *engine.Device, count int, format engine.DataFormat, payload interface{}) (*engine.Data, error) {
	data, err := dev.NewData(count, format, payload)
	if err != nil {
		return nil, err
	}
	if err = data.Commit(); err != nil {
		return nil, err
	}
	return data, nil
}
