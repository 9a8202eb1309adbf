package scene

import (
	"errors"
	"fmt"
	"io"

	"github.com/swatinair123/OSprayLoadObj/log"
	"github.com/swatinair123/OSprayLoadObj/resource"
	"github.com/swatinair123/OSprayLoadObj/types"
	"gopkg.in/yaml.v3"
)

var (
	ErrInvalidConfig = errors.New("scene: invalid scene description")
)

var logger = log.New("scene")

// Upper bound for either image dimension.
const maxImageSide = 16384

// A scene description. Optional engine parameters are pointers; a nil value
// leaves the engine default in place.
type Description struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`

	Camera   CameraDesc   `yaml:"camera"`
	Mesh     MeshDesc     `yaml:"mesh"`
	Renderer RendererDesc `yaml:"renderer"`
	Lights   []LightDesc  `yaml:"lights"`
}

type CameraDesc struct {
	Type string     `yaml:"type"`
	Pos  types.Vec3 `yaml:"pos"`
	Dir  types.Vec3 `yaml:"dir"`
	Up   types.Vec3 `yaml:"up"`
	Fovy *float32   `yaml:"fovy,omitempty"`
}

// A triangle mesh. When Obj is set the mesh is read from that wavefront
// file (resolved relative to the description) and replaces the inline data.
type MeshDesc struct {
	Obj      string       `yaml:"obj,omitempty"`
	Vertices []types.Vec3 `yaml:"vertices"`
	Colors   []types.Vec4 `yaml:"colors"`
	Indices  [][3]int32   `yaml:"indices"`
}

// A mesh node replaces the whole mesh. Fields it omits are left empty
// instead of inheriting the built-in mesh data.
func (mesh *MeshDesc) UnmarshalYAML(value *yaml.Node) error {
	type plainMesh MeshDesc
	var decoded plainMesh
	if err := value.Decode(&decoded); err != nil {
		return err
	}
	*mesh = MeshDesc(decoded)
	return nil
}

type RendererDesc struct {
	Type       string    `yaml:"type"`
	AOSamples  int32     `yaml:"aoSamples"`
	AODistance *float32  `yaml:"aoDistance,omitempty"`
	BgColor    []float32 `yaml:"bgColor"`
	SPP        *int32    `yaml:"spp,omitempty"`
}

type LightDesc struct {
	Type      string      `yaml:"type"`
	Color     *types.Vec3 `yaml:"color,omitempty"`
	Intensity *float32    `yaml:"intensity,omitempty"`
}

// Get the built-in scene: two vertex colored triangles in front of a camera
// at the origin, lit by a single ambient light.
func Default() *Description {
	return &Description{
		Width:  1024,
		Height: 768,
		Camera: CameraDesc{
			Type: "perspective",
			Pos:  types.XYZ(0, 0, 0),
			Dir:  types.XYZ(0.1, 0, 1),
			Up:   types.XYZ(0, 1, 0),
		},
		Mesh: MeshDesc{
			Vertices: []types.Vec3{
				{-1.0, -1.0, 3.0},
				{-1.0, 1.0, 3.0},
				{1.0, -1.0, 3.0},
				{0.1, 0.1, 0.3},
			},
			Colors: []types.Vec4{
				{0.9, 0.5, 0.5, 1.0},
				{0.8, 0.8, 0.8, 1.0},
				{0.8, 0.8, 0.8, 1.0},
				{0.5, 0.9, 0.5, 1.0},
			},
			Indices: [][3]int32{
				{0, 1, 2},
				{1, 2, 3},
			},
		},
		Renderer: RendererDesc{
			Type:      "scivis",
			AOSamples: 1,
			BgColor:   []float32{1.0},
		},
		Lights: []LightDesc{
			{Type: "ambient"},
		},
	}
}

// Load a YAML scene description from a local path or http/https URL. Fields
// missing from the document keep their Default() values, except for the
// mesh which is replaced as a whole when present.
func Load(location string) (*Description, error) {
	res, err := resource.Open(location, nil)
	if err != nil {
		return nil, err
	}
	defer res.Close()

	return Read(res)
}

// Read a YAML scene description from a resource. Wavefront meshes are
// resolved relative to the resource location.
func Read(res *resource.Resource) (*Description, error) {
	data, err := io.ReadAll(res)
	if err != nil {
		return nil, fmt.Errorf("scene: reading %s: %w", res.Path(), err)
	}

	desc := Default()
	if err = yaml.Unmarshal(data, desc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, res.Path(), err)
	}

	if desc.Mesh.Obj != "" {
		objRes, err := resource.Open(desc.Mesh.Obj, res)
		if err != nil {
			return nil, err
		}
		defer objRes.Close()

		mesh, err := ReadWavefront(objRes)
		if err != nil {
			return nil, err
		}
		desc.Mesh = *mesh
		logger.Infof("loaded %d vertices and %d triangles from %s", len(mesh.Vertices), len(mesh.Indices), objRes.Path())
	}

	if err = desc.Validate(); err != nil {
		return nil, err
	}
	return desc, nil
}

// Check the description for values the assembler cannot express.
func (desc *Description) Validate() error {
	if desc.Width <= 0 || desc.Height <= 0 {
		return fmt.Errorf("%w: image size must be positive; got %dx%d", ErrInvalidConfig, desc.Width, desc.Height)
	}
	if desc.Width > maxImageSide || desc.Height > maxImageSide {
		return fmt.Errorf("%w: image size %dx%d exceeds %dx%d", ErrInvalidConfig, desc.Width, desc.Height, maxImageSide, maxImageSide)
	}
	if len(desc.Mesh.Vertices) == 0 || len(desc.Mesh.Indices) == 0 {
		return fmt.Errorf("%w: mesh needs at least one vertex and one triangle", ErrInvalidConfig)
	}
	if len(desc.Mesh.Colors) != 0 && len(desc.Mesh.Colors) != len(desc.Mesh.Vertices) {
		return fmt.Errorf("%w: mesh has %d colors for %d vertices", ErrInvalidConfig, len(desc.Mesh.Colors), len(desc.Mesh.Vertices))
	}
	switch len(desc.Renderer.BgColor) {
	case 0, 1, 3, 4:
	default:
		return fmt.Errorf("%w: bgColor needs 1, 3 or 4 components; got %d", ErrInvalidConfig, len(desc.Renderer.BgColor))
	}
	return nil
}

// Get the image aspect ratio.
func (desc *Description) Aspect() float32 {
	return float32(desc.Width) / float32(desc.Height)
}
