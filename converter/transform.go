package converter

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gbrlfaria/chaseconv/scene"
)

// toGLTFSpace returns a copy of the scene converted between the proprietary
// left-handed space and the right-handed glTF space by negating the Z axis.
// The transform is its own inverse, so the same function maps both ways.
func toGLTFSpace(s *scene.Scene) *scene.Scene {
	matrix := mgl32.Diag4(mgl32.Vec4{1, 1, -1, 1})
	inverse := matrix.Inv()

	out := &scene.Scene{
		Meshes:     make([]*scene.Mesh, 0, len(s.Meshes)),
		Skeleton:   make([]*scene.Joint, 0, len(s.Skeleton)),
		Animations: make([]*scene.Animation, 0, len(s.Animations)),
	}

	for _, mesh := range s.Meshes {
		vertices := make([]*scene.Vertex, 0, len(mesh.Vertices))
		for _, vertex := range mesh.Vertices {
			vertices = append(vertices, &scene.Vertex{
				Position: mgl32.TransformCoordinate(vertex.Position, matrix),
				Normal:   mgl32.TransformCoordinate(vertex.Normal, matrix),
				UV:       vertex.UV,
				Joint:    vertex.Joint,
			})
		}

		// Mirroring flips the winding order, so every triangle is rewound.
		indices := append([]int(nil), mesh.Indices...)
		for i := 0; i+2 < len(indices); i += 3 {
			indices[i+1], indices[i+2] = indices[i+2], indices[i+1]
		}

		out.Meshes = append(out.Meshes, &scene.Mesh{
			Name:     mesh.Name,
			Vertices: vertices,
			Indices:  indices,
		})
	}

	for _, joint := range s.Skeleton {
		out.Skeleton = append(out.Skeleton, &scene.Joint{
			Translation: mgl32.TransformCoordinate(joint.Translation, matrix),
			Parent:      joint.Parent,
			Children:    append([]int(nil), joint.Children...),
		})
	}

	for _, animation := range s.Animations {
		frames := make([]*scene.Keyframe, 0, len(animation.Frames))
		for _, frame := range animation.Frames {
			translation := frame.Translation
			translation[2] *= -1

			transforms := append([]mgl32.Mat4(nil), frame.Transforms...)
			for i, transform := range transforms {
				transforms[i] = matrix.Mul4(transform).Mul4(inverse)
			}

			frames = append(frames, &scene.Keyframe{
				Translation: translation,
				Transforms:  transforms,
			})
		}
		out.Animations = append(out.Animations, &scene.Animation{
			Name:   animation.Name,
			Frames: frames,
		})
	}

	return out
}
