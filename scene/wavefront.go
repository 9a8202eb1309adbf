package scene

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/swatinair123/OSprayLoadObj/resource"
	"github.com/swatinair123/OSprayLoadObj/types"
)

type wavefrontReader struct {
	mesh MeshDesc

	// True if at least one vertex specified a color.
	hasColors bool

	// Include chain used to annotate errors.
	errStack []string
}

// Read a triangle mesh from a wavefront object file. Supported statements are
// "v x y z [r g b]", "f" with any number of vertices (fan triangulated) and
// "call" for including other object files. Normals, texture coordinates and
// materials are ignored.
func ReadWavefront(res *resource.Resource) (*MeshDesc, error) {
	r := &wavefrontReader{}
	if err := r.parse(res); err != nil {
		return nil, err
	}

	if !r.hasColors {
		r.mesh.Colors = nil
	}
	if len(r.mesh.Indices) == 0 {
		return nil, r.emitError(res.Path(), 0, "no faces defined")
	}
	return &r.mesh, nil
}

// Generate an error message that also includes any data in the error stack.
func (r *wavefrontReader) emitError(file string, line int, msgFormat string, args ...interface{}) error {
	msg := fmt.Sprintf(msgFormat, args...)
	return fmt.Errorf("%w: %s",
		ErrInvalidConfig,
		strings.Trim(
			fmt.Sprintf("[%s: %d] error: %s\n%s", file, line, msg, strings.Join(r.errStack, "\n")),
			"\n",
		),
	)
}

// Push a frame to the error stack.
func (r *wavefrontReader) pushFrame(msg string) {
	r.errStack = append([]string{msg}, r.errStack...)
}

// Pop a frame from the error stack.
func (r *wavefrontReader) popFrame() {
	r.errStack = r.errStack[1:]
}

func (r *wavefrontReader) parse(res *resource.Resource) error {
	lineNum := 0

	// Positive indices in an included file are relative to the vertices
	// that file defines.
	relVertexOffset := len(r.mesh.Vertices)

	scanner := bufio.NewScanner(res)
	for scanner.Scan() {
		lineNum++
		lineTokens := strings.Fields(scanner.Text())
		if len(lineTokens) == 0 || strings.HasPrefix(lineTokens[0], "#") {
			continue
		}

		switch lineTokens[0] {
		case "call":
			if len(lineTokens) != 2 {
				return r.emitError(res.Path(), lineNum, `unsupported syntax for "call"; expected 1 argument; got %d`, len(lineTokens)-1)
			}

			r.pushFrame(fmt.Sprintf("referenced from %s:%d [call]", res.Path(), lineNum))
			incRes, err := resource.Open(lineTokens[1], res)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%v", err)
			}
			err = r.parse(incRes)
			incRes.Close()
			if err != nil {
				return err
			}
			r.popFrame()
		case "v":
			v, err := parseVec3(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%v", err)
			}
			color := types.Vec4{0.8, 0.8, 0.8, 1}
			if len(lineTokens) >= 7 {
				rgb, err := parseVec3(lineTokens[3:])
				if err != nil {
					return r.emitError(res.Path(), lineNum, "%v", err)
				}
				color = rgb.Vec4(1)
				r.hasColors = true
			}
			r.mesh.Vertices = append(r.mesh.Vertices, v)
			r.mesh.Colors = append(r.mesh.Colors, color)
		case "f":
			if err := r.parseFace(lineTokens, relVertexOffset); err != nil {
				return r.emitError(res.Path(), lineNum, "%v", err)
			}
		case "vn", "vt", "g", "o", "s", "usemtl", "mtllib":
		default:
			logger.Debugf("[%s: %d] ignoring unsupported statement %q", res.Path(), lineNum, lineTokens[0])
		}
	}

	return scanner.Err()
}

// Parse a face and triangulate it as a fan around its first vertex.
func (r *wavefrontReader) parseFace(lineTokens []string, relVertexOffset int) error {
	if len(lineTokens) < 4 {
		return fmt.Errorf(`unsupported syntax for "f"; expected at least 3 arguments; got %d`, len(lineTokens)-1)
	}

	indices := make([]int32, len(lineTokens)-1)
	for arg := range indices {
		vTokens := strings.Split(lineTokens[arg+1], "/")
		if vTokens[0] == "" {
			return fmt.Errorf("face argument %d does not include a vertex index", arg)
		}

		vOffset, err := selectFaceCoordIndex(vTokens[0], len(r.mesh.Vertices), relVertexOffset)
		if err != nil {
			return fmt.Errorf("could not parse vertex coord for face argument %d: %v", arg, err)
		}
		indices[arg] = int32(vOffset)
	}

	for i := 1; i+1 < len(indices); i++ {
		r.mesh.Indices = append(r.mesh.Indices, [3]int32{indices[0], indices[i], indices[i+1]})
	}
	return nil
}

// Given an index for a face coord calculate the proper offset into the coord
// list. Negative indices reference elements from the end of the coord list.
func selectFaceCoordIndex(indexToken string, coordListLen int, relOffset int) (int, error) {
	index, err := strconv.ParseInt(indexToken, 10, 32)
	if err != nil {
		return -1, err
	}

	var vOffset int
	if index < 0 {
		vOffset = coordListLen + int(index)
	} else {
		vOffset = relOffset + int(index-1)
	}
	if vOffset < 0 || vOffset >= coordListLen {
		return -1, fmt.Errorf("index out of bounds")
	}
	return vOffset, nil
}

// Parse a Vec3 row.
func parseVec3(lineTokens []string) (types.Vec3, error) {
	if len(lineTokens) < 4 {
		return types.Vec3{}, fmt.Errorf(`unsupported syntax for "%s"; expected 3 arguments; got %d`, lineTokens[0], len(lineTokens)-1)
	}

	v := types.Vec3{}
	for tokIdx := 1; tokIdx <= 3; tokIdx++ {
		coord, err := strconv.ParseFloat(lineTokens[tokIdx], 32)
		if err != nil {
			return v, err
		}
		v[tokIdx-1] = float32(coord)
	}
	return v, nil
}
