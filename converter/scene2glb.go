package converter

import (
	"bytes"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/gbrlfaria/chaseconv/scene"
)

// GLTFExporter exports the whole scene as a single binary glTF asset.
//
// Node layout is fixed so that glTF files produced here can be imported back
// without losing bone identity: node 0 is named "root" and parents the
// skeleton roots, node 1+i is named "bone_i" and carries joint i.
type GLTFExporter struct{}

func (*GLTFExporter) Export(s *scene.Scene) ([]*Asset, error) {
	s = toGLTFSpace(s)

	doc := gltf.NewDocument()
	doc.Asset.Generator = "chaseconv"

	g := &glbBuilder{Document: doc}
	g.addSkeleton(s)
	g.addMeshes(s)
	g.addAnimations(s)

	var buf bytes.Buffer
	enc := gltf.NewEncoder(&buf)
	enc.AsBinary = true
	if err := enc.Encode(doc); err != nil {
		return nil, errors.Wrap(err, "failed to encode the glTF document")
	}

	name := "scene"
	if len(s.Meshes) > 0 && s.Meshes[0].Name != "" {
		name = s.Meshes[0].Name
	}
	return []*Asset{NewAsset(buf.Bytes(), fmt.Sprintf("%s.glb", name))}, nil
}

type glbBuilder struct {
	*gltf.Document
	// skin is the index of the skeleton skin, or nil when the scene has no
	// skeleton.
	skin *uint32
}

func (g *glbBuilder) addSkeleton(s *scene.Scene) {
	root := &gltf.Node{Name: "root"}
	g.Nodes = append(g.Nodes, root)
	g.Scenes[0].Nodes = append(g.Scenes[0].Nodes, 0)

	if len(s.Skeleton) == 0 {
		return
	}

	for i, joint := range s.Skeleton {
		g.Nodes = append(g.Nodes, &gltf.Node{
			Name:        fmt.Sprintf("bone_%d", i),
			Translation: [3]float32(joint.Translation),
			Rotation:    [4]float32{0, 0, 0, 1},
		})
	}
	for i, joint := range s.Skeleton {
		node := g.Nodes[1+i]
		for _, child := range joint.Children {
			node.Children = append(node.Children, uint32(1+child))
		}
		if joint.Parent == scene.NoJoint {
			root.Children = append(root.Children, uint32(1+i))
		}
	}

	// Joints carry no bind rotation, so the inverse bind matrix is a plain
	// negated world translation.
	joints := make([]uint32, len(s.Skeleton))
	invmats := make([][4][4]float32, len(s.Skeleton))
	for i := range s.Skeleton {
		joints[i] = uint32(1 + i)
		world := s.JointWorldTranslation(i)
		invmats[i] = [4][4]float32{
			{1, 0, 0, 0},
			{0, 1, 0, 0},
			{0, 0, 1, 0},
			{-world.X(), -world.Y(), -world.Z(), 1},
		}
	}
	g.Skins = append(g.Skins, &gltf.Skin{
		Joints:              joints,
		InverseBindMatrices: gltf.Index(g.addMatrices(invmats)),
	})
	g.skin = gltf.Index(uint32(len(g.Skins) - 1))
}

// addMatrices writes MAT4 data through the VEC4 helper and fixes up the
// accessor afterwards.
func (g *glbBuilder) addMatrices(mat [][4][4]float32) uint32 {
	a := make([][4]float32, len(mat)*4)
	for i, m := range mat {
		a[i*4+0] = m[0]
		a[i*4+1] = m[1]
		a[i*4+2] = m[2]
		a[i*4+3] = m[3]
	}
	acc := modeler.WriteTangent(g.Document, a)
	g.Accessors[acc].Type = gltf.AccessorMat4
	g.Accessors[acc].Count /= 4
	g.BufferViews[*g.Accessors[acc].BufferView].ByteStride *= 4
	return acc
}

func (g *glbBuilder) addMeshes(s *scene.Scene) {
	for _, mesh := range s.Meshes {
		positions := make([][3]float32, 0, len(mesh.Vertices))
		normals := make([][3]float32, 0, len(mesh.Vertices))
		texcoords := make([][2]float32, 0, len(mesh.Vertices))
		joints0 := make([][4]uint16, 0, len(mesh.Vertices))
		weights0 := make([][4]float32, 0, len(mesh.Vertices))
		for _, vertex := range mesh.Vertices {
			positions = append(positions, [3]float32(vertex.Position))
			normals = append(normals, [3]float32(vertex.Normal))
			texcoords = append(texcoords, [2]float32(vertex.UV))

			joint := [4]uint16{}
			weight := [4]float32{}
			if vertex.Joint != scene.NoJoint {
				joint[0] = uint16(vertex.Joint)
				weight[0] = 1
			}
			joints0 = append(joints0, joint)
			weights0 = append(weights0, weight)
		}

		attributes := map[string]uint32{
			"POSITION":   modeler.WritePosition(g.Document, positions),
			"NORMAL":     modeler.WriteNormal(g.Document, normals),
			"TEXCOORD_0": modeler.WriteTextureCoord(g.Document, texcoords),
		}
		if g.skin != nil {
			attributes["JOINTS_0"] = modeler.WriteJoints(g.Document, joints0)
			attributes["WEIGHTS_0"] = modeler.WriteWeights(g.Document, weights0)
		}

		indices := make([]uint32, 0, len(mesh.Indices))
		for _, index := range mesh.Indices {
			indices = append(indices, uint32(index))
		}

		g.Meshes = append(g.Meshes, &gltf.Mesh{
			Name: mesh.Name,
			Primitives: []*gltf.Primitive{{
				Indices:    gltf.Index(modeler.WriteIndices(g.Document, indices)),
				Attributes: attributes,
			}},
		})

		node := &gltf.Node{
			Name: mesh.Name,
			Mesh: gltf.Index(uint32(len(g.Meshes) - 1)),
			Skin: g.skin,
		}
		g.Nodes = append(g.Nodes, node)
		g.Scenes[0].Nodes = append(g.Scenes[0].Nodes, uint32(len(g.Nodes)-1))
	}
}

// addAnimations writes one channel for the whole-skeleton translation on the
// root node and one rotation channel per joint. All channels of an animation
// share the same input accessor, sampled at the scene frame rate.
func (g *glbBuilder) addAnimations(s *scene.Scene) {
	for _, animation := range s.Animations {
		if len(animation.Frames) == 0 {
			continue
		}

		keys := make([]float32, len(animation.Frames))
		for i := range keys {
			keys[i] = float32(i) / scene.FPS
		}
		keysAcc := modeler.WriteAccessor(g.Document, gltf.TargetArrayBuffer, keys)

		a := &gltf.Animation{Name: animation.Name}

		translations := make([][3]float32, 0, len(animation.Frames))
		for _, frame := range animation.Frames {
			translations = append(translations, [3]float32(frame.Translation))
		}
		a.Samplers = append(a.Samplers, &gltf.AnimationSampler{
			Input:         gltf.Index(keysAcc),
			Output:        gltf.Index(modeler.WritePosition(g.Document, translations)),
			Interpolation: gltf.InterpolationLinear,
		})
		a.Channels = append(a.Channels, &gltf.Channel{
			Sampler: gltf.Index(uint32(len(a.Samplers) - 1)),
			Target: gltf.ChannelTarget{
				Node: gltf.Index(0),
				Path: gltf.TRSTranslation,
			},
		})

		numJoints := len(s.Skeleton)
		for joint := 0; joint < numJoints; joint++ {
			rotations := make([][4]float32, 0, len(animation.Frames))
			for _, frame := range animation.Frames {
				rotation := [4]float32{0, 0, 0, 1}
				if joint < len(frame.Transforms) {
					q := mgl32.Mat4ToQuat(frame.Transforms[joint])
					rotation = [4]float32{q.V.X(), q.V.Y(), q.V.Z(), q.W}
				}
				rotations = append(rotations, rotation)
			}

			a.Samplers = append(a.Samplers, &gltf.AnimationSampler{
				Input:         gltf.Index(keysAcc),
				Output:        gltf.Index(modeler.WriteTangent(g.Document, rotations)),
				Interpolation: gltf.InterpolationLinear,
			})
			a.Channels = append(a.Channels, &gltf.Channel{
				Sampler: gltf.Index(uint32(len(a.Samplers) - 1)),
				Target: gltf.ChannelTarget{
					Node: gltf.Index(uint32(1 + joint)),
					Path: gltf.TRSRotation,
				},
			})
		}

		g.Animations = append(g.Animations, a)
	}
}
