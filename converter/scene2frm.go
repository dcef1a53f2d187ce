package converter

import (
	"bytes"
	"fmt"

	"github.com/pkg/errors"

	"github.com/gbrlfaria/chaseconv/frm"
	"github.com/gbrlfaria/chaseconv/scene"
)

// FRMExporter exports each scene animation as a standalone .frm asset.
// Keyframes are assumed to be sampled at the scene frame rate already.
type FRMExporter struct {
	// Version selects the output sub-format. The zero value exports
	// version 1.1.
	Version frm.Version
}

func (e *FRMExporter) Export(s *scene.Scene) ([]*Asset, error) {
	var result []*Asset
	for _, animation := range s.Animations {
		doc := frm.NewDocument(e.Version)
		doc.Frames, doc.PosZ = sceneFrames(animation)
		if e.Version != frm.Version11 {
			doc.PosZ = nil
		}

		var buf bytes.Buffer
		if err := frm.Write(doc, &buf); err != nil {
			return nil, errors.Wrapf(err, "failed to serialize animation %q", animation.Name)
		}

		name := animation.Name
		if name == "" {
			name = "animation"
		}
		result = append(result, NewAsset(buf.Bytes(), fmt.Sprintf("%s.frm", name)))
	}

	return result, nil
}

func sceneFrames(animation *scene.Animation) ([]*frm.Frame, []float32) {
	frames := make([]*frm.Frame, 0, len(animation.Frames))
	posZ := make([]float32, 0, len(animation.Frames))

	prevX := float32(0)
	for _, keyframe := range animation.Frames {
		frames = append(frames, &frm.Frame{
			PlusX: keyframe.Translation.X() - prevX,
			PosY:  keyframe.Translation.Y(),
			Bones: keyframe.Transforms,
		})
		posZ = append(posZ, keyframe.Translation.Z())
		prevX = keyframe.Translation.X()
	}

	return frames, posZ
}
