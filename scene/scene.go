// Package scene defines the intermediate representation shared by every
// format converter: meshes, a flat joint hierarchy and keyframe animations.
// Geometry uses the left-handed Y-up coordinate system.
package scene

import (
	"github.com/go-gl/mathgl/mgl32"
)

// FPS is the implicit sampling rate of every animation. Frames carry no
// timestamps; time is derived from frame position.
const FPS = 55

// MaxJointChildren is the maximum number of children a joint may have.
// It is a hard limit of the proprietary bone encoding.
const MaxJointChildren = 10

// NoJoint marks a vertex without an influencing joint, or a joint without
// a parent.
const NoJoint = -1

// Scene is the intermediary document between conversions. Joint indices
// referenced by meshes, joints and animations are indices into Skeleton.
type Scene struct {
	Meshes     []*Mesh
	Skeleton   []*Joint
	Animations []*Animation
}

// Mesh is the geometry of a single polygon mesh.
type Mesh struct {
	Name string
	// Vertices is the vertex buffer of the geometry.
	Vertices []*Vertex
	// Indices is the index buffer. Each group of three indices forms a
	// triangle, wound clockwise in the scene's coordinate system.
	Indices []int
}

// Vertex is a skinned mesh vertex. At most one joint influences a vertex,
// always with full weight.
type Vertex struct {
	// Position relative to the scene origin.
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	UV       mgl32.Vec2
	// Joint is the index of the influencing joint, or NoJoint.
	Joint int
}

// Joint is a node of the skeleton tree. Proprietary joints encode their pose
// entirely as translations, so no rotation or scale is stored.
type Joint struct {
	// Translation relative to the parent joint.
	Translation mgl32.Vec3
	// Parent is the index of the parent joint, or NoJoint for roots.
	Parent int
	// Children holds the indices of the child joints, at most
	// MaxJointChildren of them.
	Children []int
}

// NewJoint returns a parentless joint with no children.
func NewJoint() *Joint {
	return &Joint{Parent: NoJoint}
}

// Animation is a keyframe sequence sampled at FPS frames per second.
type Animation struct {
	Name   string
	Frames []*Keyframe
}

// Keyframe holds the pose of the whole skeleton for one frame.
type Keyframe struct {
	// Translation applied to the whole skeleton.
	Translation mgl32.Vec3
	// Transforms holds one matrix per joint, indexed like Skeleton.
	Transforms []mgl32.Mat4
}

// JointWorldTranslation returns the translation of the joint with the given
// index relative to the scene origin, accumulated along the parent chain.
// Joints carry no rotations, so the accumulation is a plain vector sum.
func (s *Scene) JointWorldTranslation(index int) mgl32.Vec3 {
	translation := mgl32.Vec3{}
	for index != NoJoint {
		joint := s.Skeleton[index]
		translation = translation.Add(joint.Translation)
		index = joint.Parent
	}
	return translation
}

// Merge combines another scene into this one. The first non-empty skeleton
// wins; meshes and animations are concatenated in order. Joint indices are
// not reconciled across skeletons, so mixing sources with different
// skeletons is the caller's responsibility.
func (s *Scene) Merge(other *Scene) *Scene {
	if len(s.Skeleton) == 0 {
		s.Skeleton = other.Skeleton
	}
	s.Meshes = append(s.Meshes, other.Meshes...)
	s.Animations = append(s.Animations, other.Animations...)
	return s
}
