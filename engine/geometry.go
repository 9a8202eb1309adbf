package engine

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/swatinair123/OSprayLoadObj/bvh"
	"github.com/swatinair123/OSprayLoadObj/types"
)

const (
	// Leafs hold at most this many triangles.
	minLeafTriangles = 4

	// Rays closer to parallel than this do not hit a triangle.
	parallelEpsilon float32 = 1e-8
)

// Albedo for triangles without per-vertex colors.
var defaultAlbedo = types.Vec4{0.8, 0.8, 0.8, 1}

type triangle struct {
	v      [3]types.Vec3
	c      [3]types.Vec4
	normal types.Vec3
}

// Implements bvh.BoundedVolume.
func (tri *triangle) BBox() [2]types.Vec3 {
	return [2]types.Vec3{
		types.MinVec3(types.MinVec3(tri.v[0], tri.v[1]), tri.v[2]),
		types.MaxVec3(types.MaxVec3(tri.v[0], tri.v[1]), tri.v[2]),
	}
}

// Implements bvh.BoundedVolume.
func (tri *triangle) Center() types.Vec3 {
	return tri.v[0].Add(tri.v[1]).Add(tri.v[2]).Mul(1.0 / 3.0)
}

// Intersect a ray with the triangle using the Möller-Trumbore algorithm.
// Returns the hit distance and the barycentric coordinates of v1 and v2.
func (tri *triangle) intersect(origin, dir types.Vec3, tMax float32) (t, u, v float32, hit bool) {
	e1 := tri.v[1].Sub(tri.v[0])
	e2 := tri.v[2].Sub(tri.v[0])
	pvec := dir.Cross(e2)
	det := e1.Dot(pvec)
	if math32.Abs(det) < parallelEpsilon {
		return 0, 0, 0, false
	}
	invDet := 1.0 / det

	tvec := origin.Sub(tri.v[0])
	u = tvec.Dot(pvec) * invDet
	if u < 0 || u > 1 {
		return 0, 0, 0, false
	}

	qvec := tvec.Cross(e1)
	v = dir.Dot(qvec) * invDet
	if v < 0 || u+v > 1 {
		return 0, 0, 0, false
	}

	t = e2.Dot(qvec) * invDet
	if t <= 0 || t >= tMax {
		return 0, 0, 0, false
	}
	return t, u, v, true
}

// Interpolate the vertex colors at barycentric coordinates (u, v).
func (tri *triangle) color(u, v float32) types.Vec4 {
	w := 1 - u - v
	return tri.c[0].Mul(w).Add(tri.c[1].Mul(u)).Add(tri.c[2].Mul(v))
}

// A triangle mesh. Data slots:
//
//	vertex        Float3 or Float3A positions (required)
//	vertex.color  Float4 per-vertex RGBA colors (optional)
//	index         Int3 or Int4 triangle indices (required)
type Geometry struct {
	object

	// Committed state; triangles are ordered by BVH leaf.
	triangles []triangle
	nodes     []bvh.Node
}

// Create a new geometry. Only the "triangles" type is supported.
func (d *Device) NewGeometry(typeName string) (*Geometry, error) {
	if typeName != "triangles" {
		return nil, fmt.Errorf("%w: geometry %q", ErrUnknownType, typeName)
	}
	return &Geometry{object: newObject("geometry", typeName)}, nil
}

// Commit pending data bindings, assemble the triangle list and build its BVH.
func (g *Geometry) Commit() error {
	p := g.staged()

	vertexData, err := p.getData("vertex")
	if err != nil {
		return err
	}
	colorData, err := p.getData("vertex.color")
	if err != nil {
		return err
	}
	indexData, err := p.getData("index")
	if err != nil {
		return err
	}

	if vertexData == nil || indexData == nil {
		return fmt.Errorf("%w: triangles geometry needs vertex and index data", ErrMissingParameter)
	}
	if vertexData.format != Float3 && vertexData.format != Float3A {
		return fmt.Errorf("%w: vertex data must be float3 or float3a; got %s", ErrDataMismatch, vertexData.format)
	}
	if indexData.format != Int3 && indexData.format != Int4 {
		return fmt.Errorf("%w: index data must be int3 or int4; got %s", ErrDataMismatch, indexData.format)
	}
	if colorData != nil && (colorData.format != Float4 || colorData.count != vertexData.count) {
		return fmt.Errorf("%w: vertex.color must hold %d float4 values; got %d %s", ErrDataMismatch, vertexData.count, colorData.count, colorData.format)
	}

	vertexStride := vertexData.format.Components()
	vertex := func(index int32) types.Vec3 {
		offset := int(index) * vertexStride
		return types.Vec3{vertexData.floats[offset], vertexData.floats[offset+1], vertexData.floats[offset+2]}
	}
	color := func(index int32) types.Vec4 {
		if colorData == nil {
			return defaultAlbedo
		}
		offset := int(index) * 4
		return types.Vec4{colorData.floats[offset], colorData.floats[offset+1], colorData.floats[offset+2], colorData.floats[offset+3]}
	}

	indexStride := indexData.format.Components()
	workList := make([]bvh.BoundedVolume, 0, indexData.count)
	for triIndex := 0; triIndex < indexData.count; triIndex++ {
		tri := &triangle{}
		for k := 0; k < 3; k++ {
			vIndex := indexData.ints[triIndex*indexStride+k]
			if vIndex < 0 || int(vIndex) >= vertexData.count {
				return fmt.Errorf("%w: triangle %d references vertex %d; have %d vertices", ErrInvalidParameter, triIndex, vIndex, vertexData.count)
			}
			tri.v[k] = vertex(vIndex)
			tri.c[k] = color(vIndex)
		}
		tri.normal = tri.v[1].Sub(tri.v[0]).Cross(tri.v[2].Sub(tri.v[0])).Normalize()
		workList = append(workList, tri)
	}

	triangles := make([]triangle, 0, len(workList))
	var nodes []bvh.Node
	if len(workList) != 0 {
		nodes = bvh.Build(workList, minLeafTriangles, func(leaf *bvh.Node, itemList []bvh.BoundedVolume) {
			leaf.SetPrimitives(uint32(len(triangles)), uint32(len(itemList)))
			for _, item := range itemList {
				triangles = append(triangles, *(item.(*triangle)))
			}
		}, bvh.SurfaceAreaHeuristic)
	}

	g.triangles = triangles
	g.nodes = nodes
	g.apply(p)
	return nil
}

// Get the number of committed triangles.
func (g *Geometry) NumTriangles() int {
	return len(g.triangles)
}

// Get the committed BVH nodes.
func (g *Geometry) BvhNodes() []bvh.Node {
	return g.nodes
}

// A ray hit record.
type hitRecord struct {
	t    float32
	u, v float32
	tri  *triangle
}

// Find the closest triangle hit closer than tMax. When anyHit is set the
// traversal stops at the first hit found.
func (g *Geometry) intersect(origin, dir, invDir types.Vec3, tMax float32, anyHit bool, rec *hitRecord) bool {
	if len(g.nodes) == 0 {
		return false
	}

	found := false
	var stackBuf [64]uint32
	stack := append(stackBuf[:0], 0)
	for len(stack) > 0 {
		node := &g.nodes[stack[len(stack)-1]]
		stack = stack[:len(stack)-1]
		if !node.IntersectRay(origin, invDir, tMax) {
			continue
		}

		if !node.IsLeaf() {
			left, right := node.GetChildNodes()
			stack = append(stack, left, right)
			continue
		}

		first, count := node.GetPrimitives()
		for triIndex := first; triIndex < first+count; triIndex++ {
			tri := &g.triangles[triIndex]
			t, u, v, hit := tri.intersect(origin, dir, tMax)
			if !hit {
				continue
			}
			found = true
			tMax = t
			rec.t, rec.u, rec.v, rec.tri = t, u, v, tri
			if anyHit {
				return true
			}
		}
	}
	return found
}
