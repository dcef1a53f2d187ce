package converter

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gbrlfaria/chaseconv/p3m"
	"github.com/gbrlfaria/chaseconv/scene"
)

func TestSceneJoints(t *testing.T) {
	joints := []*scene.Joint{
		{Translation: mgl32.Vec3{1, 1, 1}, Parent: scene.NoJoint, Children: []int{1}},
		{Translation: mgl32.Vec3{2, 2, 2}, Parent: 0},
	}

	positionBones, angleBones := sceneJoints(joints)

	expectedPosition := []*p3m.PositionBone{
		{Position: [3]float32{1, 1, 1}, Children: []uint8{0}},
		{Position: [3]float32{2, 2, 2}, Children: []uint8{1}},
	}
	expectedAngle := []*p3m.AngleBone{
		{Children: []uint8{1}},
		{},
	}

	if !reflect.DeepEqual(expectedPosition, positionBones) {
		t.Errorf("position bones mismatch:\ngot  %+v\nwant %+v", positionBones, expectedPosition)
	}
	if !reflect.DeepEqual(expectedAngle, angleBones) {
		t.Errorf("angle bones mismatch:\ngot  %+v\nwant %+v", angleBones, expectedAngle)
	}
}

func TestSceneJointsMergesRoots(t *testing.T) {
	joints := []*scene.Joint{
		{Translation: mgl32.Vec3{1, 1, 1}, Parent: scene.NoJoint},
		{Translation: mgl32.Vec3{2, 2, 2}, Parent: scene.NoJoint},
	}

	positionBones, angleBones := sceneJoints(joints)

	if len(positionBones) != 1 {
		t.Fatalf("got %d position bones, want 1", len(positionBones))
	}
	if !reflect.DeepEqual([]uint8{0, 1}, positionBones[0].Children) {
		t.Errorf("root children = %v, want [0 1]", positionBones[0].Children)
	}
	if len(angleBones) != 2 {
		t.Errorf("got %d angle bones, want 2", len(angleBones))
	}
}

// Exporting joints and importing them again must yield the original skeleton
// when it has a single root.
func TestSceneJointsRoundTrip(t *testing.T) {
	joints := []*scene.Joint{
		{Translation: mgl32.Vec3{1, 1, 1}, Parent: scene.NoJoint, Children: []int{1, 2}},
		{Translation: mgl32.Vec3{2, 2, 2}, Parent: 0},
		{Translation: mgl32.Vec3{3, 3, 3}, Parent: 0, Children: []int{3}},
		{Translation: mgl32.Vec3{4, 4, 4}, Parent: 2},
	}

	positionBones, angleBones := sceneJoints(joints)
	again := p3mJoints(positionBones, angleBones)

	if !reflect.DeepEqual(joints, again) {
		t.Errorf("skeleton mismatch after round trip:\ngot  %+v\nwant %+v", again, joints)
	}
}

func TestSceneVertices(t *testing.T) {
	s := &scene.Scene{
		Skeleton: []*scene.Joint{
			{Translation: mgl32.Vec3{1, 1, 1}, Parent: scene.NoJoint},
		},
	}
	mesh := &scene.Mesh{
		Vertices: []*scene.Vertex{
			{Position: mgl32.Vec3{2, 1, 1}, Normal: mgl32.Vec3{1, 0, 0}, UV: mgl32.Vec2{0.5, 0.5}, Joint: 0},
			{Position: mgl32.Vec3{5, 5, 5}, Normal: mgl32.Vec3{0, 1, 0}, Joint: scene.NoJoint},
		},
	}

	skinVertices, meshVertices := sceneVertices(mesh, 1, s)

	if got := skinVertices[0].Position; got != [3]float32{1, 0, 0} {
		t.Errorf("skin position = %v, want {1 0 0}", got)
	}
	if got := skinVertices[0].BoneIndex; got != 1 {
		t.Errorf("bone index = %d, want 1", got)
	}
	if got := skinVertices[1].Position; got != [3]float32{5, 5, 5} {
		t.Errorf("unskinned position = %v, want {5 5 5}", got)
	}
	if got := skinVertices[1].BoneIndex; got != p3m.InvalidBoneIndex {
		t.Errorf("unskinned bone index = %d, want the sentinel", got)
	}
	if got := meshVertices[0].Position; got != [3]float32{2, 1, 1} {
		t.Errorf("mesh position = %v, want {2 1 1}", got)
	}
}

// A skinned scene must survive a full export and import cycle: the skeleton
// and vertices come back identical, and re-exporting the imported scene
// reproduces the exact same bytes.
func TestP3MSceneRoundTrip(t *testing.T) {
	s := &scene.Scene{
		Skeleton: []*scene.Joint{
			{Translation: mgl32.Vec3{0, 1, 0}, Parent: scene.NoJoint, Children: []int{1}},
			{Translation: mgl32.Vec3{0, 2, 0}, Parent: 0, Children: []int{2}},
			{Translation: mgl32.Vec3{0, 3, 0}, Parent: 1},
		},
		Meshes: []*scene.Mesh{{
			Name: "hero",
			Vertices: []*scene.Vertex{
				{Position: mgl32.Vec3{1, 1, 0}, Normal: mgl32.Vec3{1, 0, 0}, UV: mgl32.Vec2{0, 0}, Joint: 0},
				{Position: mgl32.Vec3{2, 3, 0}, Normal: mgl32.Vec3{0, 1, 0}, UV: mgl32.Vec2{1, 0}, Joint: 1},
				{Position: mgl32.Vec3{3, 6, 0}, Normal: mgl32.Vec3{0, 0, 1}, UV: mgl32.Vec2{0, 1}, Joint: 2},
			},
			Indices: []int{0, 1, 2},
		}},
	}

	assets, err := (&P3MExporter{}).Export(s)
	if err != nil {
		t.Fatal(err)
	}
	if len(assets) != 1 {
		t.Fatalf("got %d assets, want 1", len(assets))
	}

	imported := &scene.Scene{}
	if err := (&P3MImporter{}).Import(assets[0], imported); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(s.Skeleton, imported.Skeleton) {
		t.Errorf("skeleton mismatch after round trip:\ngot  %+v\nwant %+v", imported.Skeleton, s.Skeleton)
	}
	if !reflect.DeepEqual(s.Meshes, imported.Meshes) {
		t.Errorf("mesh mismatch after round trip:\ngot  %+v\nwant %+v", imported.Meshes, s.Meshes)
	}

	again, err := (&P3MExporter{}).Export(imported)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(assets[0].Bytes, again[0].Bytes) {
		t.Error("re-exported bytes differ from the first export")
	}
}

func TestP3MExportDefaultName(t *testing.T) {
	s := &scene.Scene{Meshes: []*scene.Mesh{{}}}

	assets, err := (&P3MExporter{}).Export(s)
	if err != nil {
		t.Fatal(err)
	}
	if len(assets) != 1 {
		t.Fatalf("got %d assets, want 1", len(assets))
	}
	if assets[0].Path != "mesh.p3m" {
		t.Errorf("path = %q, want %q", assets[0].Path, "mesh.p3m")
	}
	if _, err := p3m.Parse(assets[0].Bytes); err != nil {
		t.Errorf("exported bytes do not parse: %v", err)
	}
}
