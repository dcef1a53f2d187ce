package scene

import (
	"reflect"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestJointWorldTranslation(t *testing.T) {
	s := &Scene{
		Skeleton: []*Joint{
			{Translation: mgl32.Vec3{1, 1, 1}, Parent: NoJoint, Children: []int{1, 2}},
			{Translation: mgl32.Vec3{2, 2, 2}, Parent: 0, Children: []int{3}},
			{Translation: mgl32.Vec3{4, 4, 4}, Parent: 0},
			{Translation: mgl32.Vec3{0, 0, 0}, Parent: 1},
		},
	}

	expected := []mgl32.Vec3{
		{1, 1, 1},
		{3, 3, 3},
		{5, 5, 5},
		{3, 3, 3},
	}
	for i, want := range expected {
		if got := s.JointWorldTranslation(i); got != want {
			t.Errorf("joint %d: world translation = %v, want %v", i, got, want)
		}
	}
}

func TestMergeKeepsFirstSkeleton(t *testing.T) {
	skeleton := []*Joint{{Translation: mgl32.Vec3{1, 2, 3}, Parent: NoJoint}}
	a := &Scene{
		Meshes:   []*Mesh{{Name: "a"}},
		Skeleton: skeleton,
	}
	b := &Scene{
		Meshes:     []*Mesh{{Name: "b"}},
		Skeleton:   []*Joint{{Parent: NoJoint}, {Parent: 0}},
		Animations: []*Animation{{Name: "walk"}},
	}

	merged := a.Merge(b)
	if !reflect.DeepEqual(merged.Skeleton, skeleton) {
		t.Errorf("merge replaced the first non-empty skeleton")
	}
	if len(merged.Meshes) != 2 || merged.Meshes[0].Name != "a" || merged.Meshes[1].Name != "b" {
		t.Errorf("meshes not concatenated in input order: %v", merged.Meshes)
	}
	if len(merged.Animations) != 1 {
		t.Errorf("animations not concatenated")
	}
}

func TestMergeAdoptsSkeletonWhenEmpty(t *testing.T) {
	a := &Scene{}
	b := &Scene{Skeleton: []*Joint{{Parent: NoJoint}}}

	merged := a.Merge(b)
	if len(merged.Skeleton) != 1 {
		t.Errorf("empty skeleton should adopt the other scene's skeleton")
	}
}
