package converter

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/gbrlfaria/chaseconv/scene"
)

// GLTFImporter imports glTF assets previously produced by the exporter.
//
// Joint identity is recovered from the node naming contract: nodes named
// "bone_N" map to joint N and the node named "root" carries the whole
// skeleton translation. Animations are reconstructed from rotation channels
// only; joint translation and scale channels are ignored because the
// intermediate representation cannot express them.
type GLTFImporter struct{}

func (*GLTFImporter) Extensions() []string {
	return []string{"gltf", "glb"}
}

func (*GLTFImporter) Import(asset *Asset, s *scene.Scene) error {
	doc := new(gltf.Document)
	// External buffer URIs of .gltf files resolve relative to the asset.
	dec := gltf.NewDecoderFS(bytes.NewReader(asset.Bytes), os.DirFS(filepath.Dir(asset.Path)))
	if err := dec.Decode(doc); err != nil {
		return errors.WithStack(&DeserializationError{Format: "glTF", Err: err})
	}

	skinMap := makeSkinMap(doc)
	jointMap := makeJointMap(doc)
	rootIndex := skeletonRootIndex(doc)

	imported := &scene.Scene{}
	imported.Skeleton = gltfJoints(doc, jointMap)

	meshes, err := gltfMeshes(doc, jointMap, skinMap)
	if err != nil {
		return errors.WithStack(&DeserializationError{Format: "glTF", Err: err})
	}
	imported.Meshes = meshes

	animations, err := gltfAnimations(doc, jointMap, rootIndex)
	if err != nil {
		return errors.WithStack(&DeserializationError{Format: "glTF", Err: err})
	}
	imported.Animations = animations

	s.Merge(toGLTFSpace(imported))
	return nil
}

// makeSkinMap maps skinned vertex joint indices to node indices, using the
// first skin of the document.
func makeSkinMap(doc *gltf.Document) map[int]int {
	skinMap := map[int]int{}
	if len(doc.Skins) > 0 {
		for index, node := range doc.Skins[0].Joints {
			skinMap[index] = int(node)
		}
	}
	return skinMap
}

// makeJointMap maps node indices to joint indices. Only nodes named
// "bone_N" are considered.
func makeJointMap(doc *gltf.Document) map[int]int {
	jointMap := map[int]int{}
	for index, node := range doc.Nodes {
		if stripped, ok := strings.CutPrefix(node.Name, "bone_"); ok {
			if joint, err := strconv.Atoi(stripped); err == nil {
				jointMap[index] = joint
			}
		}
	}
	return jointMap
}

// skeletonRootIndex returns the index of the first node named "root", or -1.
// Translations of the whole skeleton are animated on this node.
func skeletonRootIndex(doc *gltf.Document) int {
	for index, node := range doc.Nodes {
		if node.Name == "root" {
			return index
		}
	}
	return -1
}

func nodeLocalMatrix(node *gltf.Node) mgl32.Mat4 {
	if m := node.MatrixOrDefault(); m != gltf.DefaultMatrix {
		return mgl32.Mat4(m)
	}
	t := node.TranslationOrDefault()
	r := node.RotationOrDefault()
	sc := node.ScaleOrDefault()
	rotation := mgl32.Quat{W: r[3], V: mgl32.Vec3{r[0], r[1], r[2]}}
	return mgl32.Translate3D(t[0], t[1], t[2]).
		Mul4(rotation.Mat4()).
		Mul4(mgl32.Scale3D(sc[0], sc[1], sc[2]))
}

// gltfJoints rebuilds the skeleton from the node tree. Joints only support
// translations, so each node's world position is reduced to an offset from
// its parent and the rotation parts are discarded.
func gltfJoints(doc *gltf.Document, jointMap map[int]int) []*scene.Joint {
	childParent := map[int]int{}
	for index, node := range doc.Nodes {
		for _, child := range node.Children {
			childParent[int(child)] = index
		}
	}

	worldPositions := make([]mgl32.Vec3, len(doc.Nodes))
	for index, node := range doc.Nodes {
		transform := nodeLocalMatrix(node)
		current := index
		for {
			parent, ok := childParent[current]
			if !ok {
				break
			}
			transform = nodeLocalMatrix(doc.Nodes[parent]).Mul4(transform)
			current = parent
		}
		worldPositions[index] = mgl32.TransformCoordinate(mgl32.Vec3{}, transform)
	}

	maxIndex := -1
	for _, joint := range jointMap {
		if joint > maxIndex {
			maxIndex = joint
		}
	}
	joints := make([]*scene.Joint, maxIndex+1)
	for i := range joints {
		joints[i] = scene.NewJoint()
	}

	for index, node := range doc.Nodes {
		jointIndex, ok := jointMap[index]
		if !ok {
			continue
		}

		parentPosition := mgl32.Vec3{}
		parent := scene.NoJoint
		if parentIndex, ok := childParent[index]; ok {
			parentPosition = worldPositions[parentIndex]
			if p, ok := jointMap[parentIndex]; ok {
				parent = p
			}
		}

		joint := joints[jointIndex]
		joint.Translation = worldPositions[index].Sub(parentPosition)
		joint.Parent = parent
		for _, child := range node.Children {
			if childJoint, ok := jointMap[int(child)]; ok {
				joint.Children = append(joint.Children, childJoint)
			}
		}
	}

	return joints
}

func gltfMeshes(doc *gltf.Document, jointMap, skinMap map[int]int) ([]*scene.Mesh, error) {
	var meshes []*scene.Mesh
	for _, mesh := range doc.Meshes {
		for _, primitive := range mesh.Primitives {
			converted, err := gltfPrimitive(doc, mesh.Name, primitive, jointMap, skinMap)
			if err != nil {
				return nil, errors.Wrapf(err, "failed to read mesh %q", mesh.Name)
			}
			meshes = append(meshes, converted)
		}
	}
	return meshes, nil
}

func gltfPrimitive(doc *gltf.Document, name string, primitive *gltf.Primitive,
	jointMap, skinMap map[int]int) (*scene.Mesh, error) {

	var positions, normals [][3]float32
	var texcoords [][2]float32
	var joints0 [][4]uint16
	var weights0 [][4]float32
	var err error

	if a, ok := primitive.Attributes["POSITION"]; ok {
		if positions, err = modeler.ReadPosition(doc, doc.Accessors[a], [][3]float32{}); err != nil {
			return nil, err
		}
	}
	if a, ok := primitive.Attributes["NORMAL"]; ok {
		if normals, err = modeler.ReadNormal(doc, doc.Accessors[a], [][3]float32{}); err != nil {
			return nil, err
		}
	}
	if a, ok := primitive.Attributes["TEXCOORD_0"]; ok {
		if texcoords, err = modeler.ReadTextureCoord(doc, doc.Accessors[a], [][2]float32{}); err != nil {
			return nil, err
		}
	}
	if a, ok := primitive.Attributes["JOINTS_0"]; ok {
		if joints0, err = modeler.ReadJoints(doc, doc.Accessors[a], [][4]uint16{}); err != nil {
			return nil, err
		}
	}
	if a, ok := primitive.Attributes["WEIGHTS_0"]; ok {
		if weights0, err = modeler.ReadWeights(doc, doc.Accessors[a], [][4]float32{}); err != nil {
			return nil, err
		}
	}

	var indices []uint32
	if primitive.Indices != nil {
		if indices, err = modeler.ReadIndices(doc, doc.Accessors[*primitive.Indices], []uint32{}); err != nil {
			return nil, err
		}
	}

	mesh := &scene.Mesh{Name: name}
	for i := range positions {
		vertex := &scene.Vertex{
			Position: mgl32.Vec3(positions[i]),
			Joint:    scene.NoJoint,
		}
		if i < len(normals) {
			vertex.Normal = mgl32.Vec3(normals[i])
		}
		if i < len(texcoords) {
			vertex.UV = mgl32.Vec2(texcoords[i])
		}
		if i < len(joints0) && i < len(weights0) {
			vertex.Joint = dominantJoint(joints0[i], weights0[i], jointMap, skinMap)
		}
		mesh.Vertices = append(mesh.Vertices, vertex)
	}
	for _, index := range indices {
		mesh.Indices = append(mesh.Indices, int(index))
	}

	return mesh, nil
}

// dominantJoint picks the joint with the maximum influence over the vertex.
// The remaining influences are dropped.
func dominantJoint(joints [4]uint16, weights [4]float32, jointMap, skinMap map[int]int) int {
	best := 0
	for i := 1; i < 4; i++ {
		if weights[i] > weights[best] {
			best = i
		}
	}
	if weights[best] <= 0 {
		return scene.NoJoint
	}

	node, ok := skinMap[int(joints[best])]
	if !ok {
		return scene.NoJoint
	}
	joint, ok := jointMap[node]
	if !ok {
		return scene.NoJoint
	}
	return joint
}

// gltfAnimations rebuilds keyframes from the animation channels. All
// channels are expected to be sampled at the scene frame rate with one
// output per frame.
func gltfAnimations(doc *gltf.Document, jointMap map[int]int, rootIndex int) ([]*scene.Animation, error) {
	var result []*scene.Animation
	for _, animation := range doc.Animations {
		numJoints := 0
		for _, joint := range jointMap {
			if joint+1 > numJoints {
				numJoints = joint + 1
			}
		}

		var rootTranslations [][3]float32
		rotations := make([][][4]float32, numJoints)

		numFrames := 0
		for _, channel := range animation.Channels {
			if channel.Target.Node == nil || channel.Sampler == nil {
				continue
			}
			node := int(*channel.Target.Node)
			sampler := animation.Samplers[*channel.Sampler]
			if sampler.Output == nil {
				continue
			}
			output := doc.Accessors[*sampler.Output]

			switch {
			case node == rootIndex && channel.Target.Path == gltf.TRSTranslation:
				translations, err := modeler.ReadPosition(doc, output, [][3]float32{})
				if err != nil {
					return nil, errors.Wrapf(err, "failed to read animation %q", animation.Name)
				}
				rootTranslations = translations
				if len(translations) > numFrames {
					numFrames = len(translations)
				}
			case channel.Target.Path == gltf.TRSRotation:
				joint, ok := jointMap[node]
				if !ok {
					continue
				}
				quats, err := modeler.ReadTangent(doc, output, [][4]float32{})
				if err != nil {
					return nil, errors.Wrapf(err, "failed to read animation %q", animation.Name)
				}
				rotations[joint] = quats
				if len(quats) > numFrames {
					numFrames = len(quats)
				}
			}
		}

		frames := make([]*scene.Keyframe, 0, numFrames)
		for i := 0; i < numFrames; i++ {
			translation := mgl32.Vec3{}
			if i < len(rootTranslations) {
				translation = mgl32.Vec3(rootTranslations[i])
			}

			// Joint translations and scales are ignored. Applying them
			// would require undoing the bind pose transforms first.
			transforms := make([]mgl32.Mat4, numJoints)
			for j := 0; j < numJoints; j++ {
				rotation := mgl32.QuatIdent()
				if i < len(rotations[j]) {
					q := rotations[j][i]
					rotation = mgl32.Quat{W: q[3], V: mgl32.Vec3{q[0], q[1], q[2]}}
				}
				transforms[j] = rotation.Mat4()
			}

			frames = append(frames, &scene.Keyframe{
				Translation: translation,
				Transforms:  transforms,
			})
		}

		result = append(result, &scene.Animation{
			Name:   animation.Name,
			Frames: frames,
		})
	}
	return result, nil
}
