package input

import (
	"github.com/achilleasa/lightbvh/bounds"
	"github.com/achilleasa/lightbvh/types"
)

// Rec. 601 luma weights used to convert RGB emission to a scalar weight.
var lumaWeights = types.XYZ(0.299, 0.587, 0.114)

// Get the luminance of a linear RGB color.
func Luminance(rgb types.Vec3) float32 {
	return rgb.Dot(lumaWeights)
}

type Material struct {
	Name string

	// Emissive color and scaler.
	Ke       types.Vec3
	KeScaler float32

	// True if material is referenced by scene geometry.
	Used bool
}

// Get the scalar emission weight of this material. A zero KeScaler is
// treated as 1.
func (m *Material) Emission() float32 {
	scaler := m.KeScaler
	if scaler == 0 {
		scaler = 1
	}
	return Luminance(m.Ke) * scaler
}

// Check whether surfaces using this material emit light.
func (m *Material) IsEmissive() bool {
	return m.Emission() > 0
}

// A triangle primitive
type Primitive struct {
	Vertices      [3]types.Vec3
	Normals       [3]types.Vec3
	MaterialIndex int

	bbox   bounds.AABB
	center types.Vec3
}

// Create a primitive and calculate its bounding box and center.
func NewPrimitive(vertices, normals [3]types.Vec3, materialIndex int) *Primitive {
	return &Primitive{
		Vertices:      vertices,
		Normals:       normals,
		MaterialIndex: materialIndex,
		bbox:          bounds.AABBFromPoints(vertices[:]...),
		center:        vertices[0].Add(vertices[1]).Add(vertices[2]).Mul(1.0 / 3.0),
	}
}

// Get the primitive AABB.
func (prim *Primitive) BBox() bounds.AABB {
	return prim.bbox
}

// Get primitive centroid.
func (prim *Primitive) Center() types.Vec3 {
	return prim.center
}

// Get the face normal. This is the normalized average of the vertex normals
// or the geometric normal if the vertex normals cancel out.
func (prim *Primitive) FaceNormal() types.Vec3 {
	n := prim.Normals[0].Add(prim.Normals[1]).Add(prim.Normals[2]).Normalize()
	if n.IsZero() {
		n = prim.GeometricNormal()
	}
	return n
}

// Get the normal defined by the triangle winding.
func (prim *Primitive) GeometricNormal() types.Vec3 {
	e01 := prim.Vertices[1].Sub(prim.Vertices[0])
	e02 := prim.Vertices[2].Sub(prim.Vertices[0])
	return e01.Cross(e02).Normalize()
}

// A mesh is constructed by a list of primitive.
type Mesh struct {
	Name       string
	Primitives []*Primitive

	bbox            bounds.AABB
	bboxNeedsUpdate bool
}

// Create a new mesh.
func NewMesh(name string) *Mesh {
	return &Mesh{
		Name:            name,
		Primitives:      make([]*Primitive, 0),
		bboxNeedsUpdate: true,
	}
}

// Append primitives to the mesh.
func (m *Mesh) Append(prims ...*Primitive) {
	m.Primitives = append(m.Primitives, prims...)
	m.bboxNeedsUpdate = true
}

// Get mesh bounding box.
func (m *Mesh) BBox() bounds.AABB {
	if m.bboxNeedsUpdate {
		m.bbox = bounds.EmptyAABB()
		for _, prim := range m.Primitives {
			m.bbox = m.bbox.Extend(prim.BBox())
		}
		m.bboxNeedsUpdate = false
	}

	return m.bbox
}

// A mesh instance applies a transformation to a particular Mesh.
type MeshInstance struct {
	MeshIndex uint32
	Transform types.Mat4
}

// The scene contains all elements that are processed by the scene compiler.
type Scene struct {
	Meshes        []*Mesh
	MeshInstances []*MeshInstance
	Materials     []*Material

	// True if the mesh instances were explicitly defined rather than
	// generated with an identity transform for each mesh.
	ExplicitInstances bool
}

// Create a new scene.
func NewScene() *Scene {
	return &Scene{
		Meshes:        make([]*Mesh, 0),
		MeshInstances: make([]*MeshInstance, 0),
		Materials:     make([]*Material, 0),
	}
}

// Generate a mesh instance with an identity transformation for each mesh.
func (sc *Scene) CreateDefaultInstances() {
	for meshIndex := range sc.Meshes {
		sc.MeshInstances = append(sc.MeshInstances, &MeshInstance{
			MeshIndex: uint32(meshIndex),
			Transform: types.Ident4(),
		})
	}
}

// Get the world space bounding box of a mesh instance.
func (sc *Scene) InstanceBBox(mi *MeshInstance) bounds.AABB {
	return sc.Meshes[mi.MeshIndex].BBox().Transform(mi.Transform)
}
