package mesh

import "github.com/go-gl/mathgl/mgl32"

// NoParent marks a root bone.
const NoParent = -1

// DummyRootName names the synthetic root added when a skeleton has
// several roots.
const DummyRootName = "dummy_root"

// Bone is one skeleton joint.
type Bone struct {
	Name   string
	Parent int32 // NoParent for the root
	// Bind is the rest-pose matrix. The file stores it row-major; Bind.At(r, c)
	// returns row r, column c of that stored matrix.
	Bind mgl32.Mat4
}

// Submesh describes one contiguous slice of the flat vertex and face arrays.
type Submesh struct {
	VertexCount   uint32
	FaceCount     uint32
	UVLayers      uint8
	ColorChannels uint8
}

// Face is a triangle of indices into Mesh.Positions.
type Face [3]uint16

// Mesh is a decoded mesh. All per-vertex slices are index-aligned.
type Mesh struct {
	HasBones  bool
	Bones     []Bone
	Submeshes []Submesh

	Positions []mgl32.Vec3
	Normals   []mgl32.Vec3
	Faces     []Face
	UVs       []mgl32.Vec2 // first UV layer only; zero for submeshes without UVs

	// Present only when HasBones.
	Joints  [][4]uint8
	Weights []mgl32.Vec4

	// Warnings holds advisory problems found while decoding, such as
	// ErrCountMismatch when not decoding strictly.
	Warnings []error
}

// Range is a half-open index interval [Start, End).
type Range struct {
	Start, End int
}

// Len returns End - Start.
func (r Range) Len() int { return r.End - r.Start }

// SubmeshRange locates one submesh inside the flat arrays.
type SubmeshRange struct {
	Vertices Range
	Faces    Range
}
