package converter

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/gbrlfaria/chaseconv/p3m"
	"github.com/gbrlfaria/chaseconv/scene"
)

// P3MImporter imports .p3m mesh and skeleton assets.
type P3MImporter struct{}

func (*P3MImporter) Extensions() []string {
	return []string{"p3m"}
}

func (*P3MImporter) Import(asset *Asset, s *scene.Scene) error {
	doc, err := p3m.Parse(asset.Bytes)
	if err != nil {
		return errors.WithStack(&DeserializationError{Format: "P3M", Err: err})
	}

	if len(s.Skeleton) == 0 {
		s.Skeleton = p3mJoints(doc.PositionBones, doc.AngleBones)
	}
	s.Meshes = append(s.Meshes, p3mMesh(doc, asset.Name(), s))

	return nil
}

// p3mJoints squashes the two-level bone hierarchy into a flat joint list.
// Each angle bone becomes one joint; the position bones only contribute
// translations and parent/child links.
func p3mJoints(positionBones []*p3m.PositionBone, angleBones []*p3m.AngleBone) []*scene.Joint {
	joints := make([]*scene.Joint, len(angleBones))
	for i := range joints {
		joints[i] = scene.NewJoint()
	}

	for _, pBone := range positionBones {
		for _, child := range pBone.Children {
			joints[child].Translation = mgl32.Vec3(pBone.Position)
		}
	}

	// A joint's children are the angle bones reachable through its child
	// position bones.
	for i, aBone := range angleBones {
		for _, pChild := range aBone.Children {
			for _, child := range positionBones[pChild].Children {
				joints[i].Children = append(joints[i].Children, int(child))
			}
		}
	}

	for parent, joint := range joints {
		for _, child := range joint.Children {
			joints[child].Parent = parent
		}
	}

	return joints
}

func p3mMesh(doc *p3m.Document, name string, s *scene.Scene) *scene.Mesh {
	indices := make([]int, 0, len(doc.Faces)*3)
	for _, face := range doc.Faces {
		for _, index := range face {
			indices = append(indices, int(index))
		}
	}
	return &scene.Mesh{
		Name:     name,
		Vertices: p3mVertices(doc.SkinVertices, len(doc.PositionBones), s),
		Indices:  indices,
	}
}

func p3mVertices(skinVertices []*p3m.SkinVertex, numPositionBones int, s *scene.Scene) []*scene.Vertex {
	vertices := make([]*scene.Vertex, 0, len(skinVertices))
	for _, vertex := range skinVertices {
		joint := scene.NoJoint
		position := mgl32.Vec3(vertex.Position)
		if vertex.BoneIndex != p3m.InvalidBoneIndex {
			// Bone indices of skin vertices are biased by the number of
			// position bones, unlike every other angle bone reference.
			joint = int(vertex.BoneIndex) - numPositionBones
			position = position.Add(s.JointWorldTranslation(joint))
		}

		normal := mgl32.Vec3(vertex.Normal)
		if normal.Len() > 0 {
			normal = normal.Normalize()
		}

		vertices = append(vertices, &scene.Vertex{
			Position: position,
			Normal:   normal,
			UV:       mgl32.Vec2(vertex.UV),
			Joint:    joint,
		})
	}
	return vertices
}
