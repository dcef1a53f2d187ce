package p3m

import (
	"encoding/binary"
	"io"
)

type writer struct {
	w io.Writer
}

func (p *writer) write(v interface{}) {
	binary.Write(p.w, binary.LittleEndian, v)
}

func (p *writer) writeUint8(v uint8) {
	p.write(&v)
}

func (p *writer) writeUint16(v uint16) {
	p.write(&v)
}

// writeString writes a string field of exactly n bytes, zero-padded or
// truncated to fit.
func (p *writer) writeString(s string, n int) {
	buf := make([]byte, n)
	copy(buf, s)
	p.write(buf)
}

// writeChildren writes the fixed child-slot array of a bone record, padding
// unused slots with the sentinel.
func (p *writer) writeChildren(children []uint8) {
	for i := 0; i < MaxChildBones; i++ {
		if i < len(children) {
			p.writeUint8(children[i])
		} else {
			p.writeUint8(InvalidBoneIndex)
		}
	}
	// 2 bytes of struct alignment padding.
	p.writeUint16(0xffff)
}

func (p *writer) writePositionBone(b *PositionBone) {
	p.write(&b.Position)
	p.writeChildren(b.Children)
}

func (p *writer) writeAngleBone(b *AngleBone) {
	p.write(&b.Position)
	p.write(&b.Scale)
	p.writeChildren(b.Children)
}

func (p *writer) writeSkinVertex(v *SkinVertex) {
	p.write(&v.Position)
	p.write(&v.Weight)
	// The two duplicate index bytes and two sentinels mirror the layout
	// written by the official tooling.
	p.writeUint8(v.BoneIndex)
	p.writeUint8(v.BoneIndex)
	p.writeUint8(InvalidBoneIndex)
	p.writeUint8(InvalidBoneIndex)
	p.write(&v.Normal)
	p.write(&v.UV)
}

func (p *writer) writeMeshVertex(v *MeshVertex) {
	p.write(&v.Position)
	p.write(&v.Normal)
	p.write(&v.UV)
}

// Write encodes a document as P3M bytes, the exact inverse of Parse.
func Write(doc *Document, w io.Writer) error {
	p := &writer{w: w}

	p.writeString(doc.VersionHeader, versionHeaderLen)
	p.writeUint8(uint8(len(doc.PositionBones)))
	p.writeUint8(uint8(len(doc.AngleBones)))

	for _, b := range doc.PositionBones {
		p.writePositionBone(b)
	}
	for _, b := range doc.AngleBones {
		p.writeAngleBone(b)
	}

	p.writeUint16(uint16(len(doc.SkinVertices)))
	p.writeUint16(uint16(len(doc.Faces)))

	p.writeString(doc.TextureName, textureNameLen)

	for _, face := range doc.Faces {
		p.write(&face)
	}
	for _, v := range doc.SkinVertices {
		p.writeSkinVertex(v)
	}
	for _, v := range doc.MeshVertices {
		p.writeMeshVertex(v)
	}

	return nil
}
