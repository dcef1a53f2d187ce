// Package frm reads and writes FRM files, the GrandChase binary format for
// keyframe animation. Two on-disk sub-formats exist; decoding selects one by
// probing for the v1.1 marker, encoding requires an explicit version.
package frm

import (
	"github.com/go-gl/mathgl/mgl32"
)

// versionMarker prefixes v1.1 files. v1.0 files start directly with their
// one-byte counts.
const versionMarker = "Frm Ver 1.1\x00"

// Version selects the on-disk sub-format.
type Version byte

const (
	// Version11 stores a marker, 16-bit counts and a trailing per-frame
	// Z-offset array. It is the zero value and the default for encoding.
	Version11 Version = iota
	// Version10 stores one-byte counts and no Z offsets.
	Version10
)

// Document is an in-memory FRM file. Frames play at 55 frames per second.
type Document struct {
	Version Version
	Frames  []*Frame
	// PosZ holds the per-frame Z translation of the whole skeleton. It is
	// only present in v1.1 and has one entry per frame.
	PosZ []float32
}

// NewDocument returns an empty document of the given version.
func NewDocument(version Version) *Document {
	return &Document{Version: version}
}

// NumBones returns the number of bone matrices per frame.
func (d *Document) NumBones() int {
	if len(d.Frames) == 0 {
		return 0
	}
	return len(d.Frames[0].Bones)
}

// Frame is a single animation keyframe.
type Frame struct {
	// Option is unused and defaults to zero.
	Option uint8
	// PlusX is the skeleton X translation for this frame, relative to the
	// previous frame.
	PlusX float32
	// PosY is the absolute skeleton Y translation for this frame.
	PosY float32
	// Bones holds one rotation matrix per bone, stored column by column.
	Bones []mgl32.Mat4
}
