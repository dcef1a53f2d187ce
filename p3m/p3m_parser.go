package p3m

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"unicode/utf8"
)

type parser struct {
	r   *bytes.Reader
	err error
}

func (p *parser) read(v interface{}) {
	if p.err != nil {
		return
	}
	if err := binary.Read(p.r, binary.LittleEndian, v); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		p.err = err
	}
}

func (p *parser) readUint8() uint8 {
	var v uint8
	p.read(&v)
	return v
}

func (p *parser) readUint16() uint16 {
	var v uint16
	p.read(&v)
	return v
}

// readString reads a fixed-size null-padded string field and truncates it at
// the first null byte.
func (p *parser) readString(n int) string {
	buf := make([]byte, n)
	p.read(buf)
	if p.err != nil {
		return ""
	}
	if i := bytes.IndexByte(buf, 0); i >= 0 {
		buf = buf[:i]
	}
	if !utf8.Valid(buf) {
		p.err = fmt.Errorf("invalid text in string field: %q", buf)
		return ""
	}
	return string(buf)
}

// readChildren reads the fixed child-slot array of a bone record, dropping
// sentinel slots.
func (p *parser) readChildren() []uint8 {
	var children []uint8
	for i := 0; i < MaxChildBones; i++ {
		if child := p.readUint8(); child != InvalidBoneIndex {
			children = append(children, child)
		}
	}
	// 2 bytes of struct alignment padding.
	p.readUint16()
	return children
}

func (p *parser) readPositionBone() *PositionBone {
	var b PositionBone
	p.read(&b.Position)
	b.Children = p.readChildren()
	return &b
}

func (p *parser) readAngleBone() *AngleBone {
	var b AngleBone
	p.read(&b.Position)
	p.read(&b.Scale)
	b.Children = p.readChildren()
	return &b
}

func (p *parser) readSkinVertex() *SkinVertex {
	v := NewSkinVertex()
	p.read(&v.Position)
	p.read(&v.Weight)
	v.BoneIndex = p.readUint8()
	// Skip the three unused bone-index bytes.
	var unused [3]uint8
	p.read(&unused)
	p.read(&v.Normal)
	p.read(&v.UV)
	return v
}

func (p *parser) readMeshVertex() *MeshVertex {
	var v MeshVertex
	p.read(&v.Position)
	p.read(&v.Normal)
	p.read(&v.UV)
	return &v
}

// Parse decodes a P3M file. It fails if the byte stream is shorter than the
// header-derived length or a string field contains invalid text.
func Parse(data []byte) (*Document, error) {
	p := &parser{r: bytes.NewReader(data)}
	doc := NewDocument()

	doc.VersionHeader = p.readString(versionHeaderLen)
	numPositionBones := int(p.readUint8())
	numAngleBones := int(p.readUint8())

	for i := 0; i < numPositionBones && p.err == nil; i++ {
		doc.PositionBones = append(doc.PositionBones, p.readPositionBone())
	}
	for i := 0; i < numAngleBones && p.err == nil; i++ {
		doc.AngleBones = append(doc.AngleBones, p.readAngleBone())
	}

	numVertices := int(p.readUint16())
	numFaces := int(p.readUint16())

	doc.TextureName = p.readString(textureNameLen)

	for i := 0; i < numFaces && p.err == nil; i++ {
		var face [3]uint16
		p.read(&face)
		doc.Faces = append(doc.Faces, face)
	}
	for i := 0; i < numVertices && p.err == nil; i++ {
		doc.SkinVertices = append(doc.SkinVertices, p.readSkinVertex())
	}
	for i := 0; i < numVertices && p.err == nil; i++ {
		doc.MeshVertices = append(doc.MeshVertices, p.readMeshVertex())
	}

	if p.err != nil {
		return nil, p.err
	}
	return doc, nil
}
