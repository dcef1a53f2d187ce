// Package p3m reads and writes P3M files, the GrandChase binary format for
// character geometry: bone hierarchy, skinning and the polygon mesh.
// The format is little-endian and uses the left-handed Y-up convention.
package p3m

// The typo is intentional and follows the string used in the official assets.
const VersionHeader = "Perfact 3D Model (Ver 0.5)"

// InvalidBoneIndex fills unused child slots and marks skin vertices without
// an influencing bone.
const InvalidBoneIndex = 255

// MaxChildBones is the number of child slots in a bone record.
const MaxChildBones = 10

const (
	versionHeaderLen = len(VersionHeader) + 1
	textureNameLen   = 260
)

// Document is an in-memory P3M file.
type Document struct {
	VersionHeader string
	// PositionBones holds the translation half of the bone encoding.
	PositionBones []*PositionBone
	// AngleBones holds the rotation half. Together with the position bones
	// they encode one logical joint tree; skin vertices and keyframe bone
	// indices refer to angle bones.
	AngleBones []*AngleBone
	// TextureName is unused by the game but round-tripped.
	TextureName string
	// Faces is the index buffer, clockwise wound triangles.
	Faces [][3]uint16
	// SkinVertices is the vertex buffer with skinning data.
	SkinVertices []*SkinVertex
	// MeshVertices is the unskinned vertex buffer. In practice it is unused.
	MeshVertices []*MeshVertex
}

// NewDocument returns an empty document with the default version header.
func NewDocument() *Document {
	return &Document{VersionHeader: VersionHeader}
}

// PositionBone is a translation that applies to a set of child angle bones.
type PositionBone struct {
	Position [3]float32
	// Children lists angle-bone indices, at most MaxChildBones of them.
	Children []uint8
}

// AngleBone is a rotation that applies to a set of child position bones.
// The position and scale fields are unused and always zero.
type AngleBone struct {
	Position [3]float32
	Scale    float32
	// Children lists position-bone indices, at most MaxChildBones of them.
	Children []uint8
}

// SkinVertex is a mesh vertex whose position is stored relative to its
// influencing bone.
type SkinVertex struct {
	Position [3]float32
	// Weight is unused in practice and always one.
	Weight float32
	// BoneIndex is the index of the influencing angle bone plus the number
	// of position bones, or InvalidBoneIndex.
	BoneIndex uint8
	Normal    [3]float32
	UV        [2]float32
}

// NewSkinVertex returns a vertex with the default weight and no bone.
func NewSkinVertex() *SkinVertex {
	return &SkinVertex{Weight: 1, BoneIndex: InvalidBoneIndex}
}

// MeshVertex is an unskinned mesh vertex.
type MeshVertex struct {
	Position [3]float32
	Normal   [3]float32
	UV       [2]float32
}
