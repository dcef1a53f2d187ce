package converter

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/gbrlfaria/chaseconv/frm"
	"github.com/gbrlfaria/chaseconv/scene"
)

// FRMImporter imports .frm keyframe animation assets.
type FRMImporter struct{}

func (*FRMImporter) Extensions() []string {
	return []string{"frm"}
}

func (*FRMImporter) Import(asset *Asset, s *scene.Scene) error {
	doc, err := frm.Parse(asset.Bytes)
	if err != nil {
		return errors.WithStack(&DeserializationError{Format: "FRM", Err: err})
	}

	s.Animations = append(s.Animations, &scene.Animation{
		Name:   asset.Name(),
		Frames: frmKeyframes(doc),
	})

	return nil
}

func frmKeyframes(doc *frm.Document) []*scene.Keyframe {
	keyframes := make([]*scene.Keyframe, 0, len(doc.Frames))

	// The X offset is stored relative to the previous frame; Y and Z are
	// absolute. Files older than version 1.1 carry no Z at all.
	prevX := float32(0)
	for i, frame := range doc.Frames {
		posZ := float32(0)
		if i < len(doc.PosZ) {
			posZ = doc.PosZ[i]
		}

		transforms := append([]mgl32.Mat4(nil), frame.Bones...)

		keyframe := &scene.Keyframe{
			Translation: mgl32.Vec3{prevX + frame.PlusX, frame.PosY, posZ},
			Transforms:  transforms,
		}
		prevX = keyframe.Translation.X()
		keyframes = append(keyframes, keyframe)
	}

	return keyframes
}
