package converter

import (
	"bytes"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/gbrlfaria/chaseconv/p3m"
	"github.com/gbrlfaria/chaseconv/scene"
)

// maxExportBones is the number of joints a single P3M file can address.
const maxExportBones = 255

// P3MExporter exports each scene mesh as a standalone .p3m asset.
type P3MExporter struct{}

func (*P3MExporter) Export(s *scene.Scene) ([]*Asset, error) {
	var result []*Asset
	for _, mesh := range s.Meshes {
		doc := p3m.NewDocument()
		doc.PositionBones, doc.AngleBones = sceneJoints(s.Skeleton)
		doc.SkinVertices, doc.MeshVertices = sceneVertices(mesh, len(doc.PositionBones), s)
		doc.Faces = sceneFaces(mesh)

		var buf bytes.Buffer
		if err := p3m.Write(doc, &buf); err != nil {
			return nil, errors.Wrapf(err, "failed to serialize mesh %q", mesh.Name)
		}

		name := mesh.Name
		if name == "" {
			name = "mesh"
		}
		result = append(result, NewAsset(buf.Bytes(), fmt.Sprintf("%s.p3m", name)))
	}
	return result, nil
}

// sceneJoints expands the flat joint list back into the two-level bone
// hierarchy. Each joint yields one position bone holding its translation and
// one angle bone holding its children.
func sceneJoints(joints []*scene.Joint) ([]*p3m.PositionBone, []*p3m.AngleBone) {
	numBones := len(joints)
	if numBones > maxExportBones {
		numBones = maxExportBones
	}
	joints = joints[:numBones]

	positionBones := make([]*p3m.PositionBone, 0, numBones)
	angleBones := make([]*p3m.AngleBone, 0, numBones)
	for index, joint := range joints {
		positionBones = append(positionBones, &p3m.PositionBone{
			Position: [3]float32(joint.Translation),
			Children: []uint8{uint8(index)},
		})

		aBone := &p3m.AngleBone{}
		for _, child := range joint.Children {
			if child < maxExportBones {
				aBone.Children = append(aBone.Children, uint8(child))
			}
		}
		angleBones = append(angleBones, aBone)
	}

	// The format allows a single root, so the roots after the first are
	// reparented under the first root's position bone.
	count := 0
	for index, joint := range joints {
		if joint.Parent == scene.NoJoint {
			if count > 0 {
				positionBones[0].Children = append(positionBones[0].Children, uint8(index))
				positionBones = append(positionBones[:index], positionBones[index+1:]...)
				for _, aBone := range angleBones {
					for i, child := range aBone.Children {
						if child > uint8(index) {
							aBone.Children[i] = child - 1
						}
					}
				}
			}
			count++
		}
	}

	return positionBones, angleBones
}

func sceneVertices(mesh *scene.Mesh, numPositionBones int, s *scene.Scene) ([]*p3m.SkinVertex, []*p3m.MeshVertex) {
	skinVertices := make([]*p3m.SkinVertex, 0, len(mesh.Vertices))
	meshVertices := make([]*p3m.MeshVertex, 0, len(mesh.Vertices))

	for _, vertex := range mesh.Vertices {
		jointTranslation := mgl32.Vec3{}
		boneIndex := uint8(p3m.InvalidBoneIndex)
		if vertex.Joint != scene.NoJoint {
			jointTranslation = s.JointWorldTranslation(vertex.Joint)
			boneIndex = uint8(vertex.Joint + numPositionBones)
		}

		skinVertex := p3m.NewSkinVertex()
		skinVertex.Position = [3]float32(vertex.Position.Sub(jointTranslation))
		skinVertex.BoneIndex = boneIndex
		skinVertex.Normal = [3]float32(vertex.Normal)
		skinVertex.UV = [2]float32(vertex.UV)
		skinVertices = append(skinVertices, skinVertex)

		meshVertices = append(meshVertices, &p3m.MeshVertex{
			Position: [3]float32(vertex.Position),
			Normal:   [3]float32(vertex.Normal),
			UV:       [2]float32(vertex.UV),
		})
	}

	return skinVertices, meshVertices
}

func sceneFaces(mesh *scene.Mesh) [][3]uint16 {
	faces := make([][3]uint16, 0, len(mesh.Indices)/3)
	for i := 0; i+2 < len(mesh.Indices); i += 3 {
		faces = append(faces, [3]uint16{
			uint16(mesh.Indices[i]),
			uint16(mesh.Indices[i+1]),
			uint16(mesh.Indices[i+2]),
		})
	}
	return faces
}
