package frm

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/go-gl/mathgl/mgl32"
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

func (p *parser) readFrame(numBones int) *Frame {
	var f Frame
	f.Option = p.readUint8()
	p.read(&f.PlusX)
	p.read(&f.PosY)
	for i := 0; i < numBones && p.err == nil; i++ {
		var m mgl32.Mat4
		p.read(&m)
		f.Bones = append(f.Bones, m)
	}
	return &f
}

// Parse decodes an FRM file, selecting the sub-format automatically.
func Parse(data []byte) (*Document, error) {
	if len(data) >= len(versionMarker) && string(data[:len(versionMarker)]) == versionMarker {
		return parseV11(data[len(versionMarker):])
	}
	return parseV10(data)
}

func parseV10(data []byte) (*Document, error) {
	p := &parser{r: bytes.NewReader(data)}
	doc := NewDocument(Version10)

	numFrames := int(p.readUint8())
	numBones := int(p.readUint8())
	for i := 0; i < numFrames && p.err == nil; i++ {
		doc.Frames = append(doc.Frames, p.readFrame(numBones))
	}

	if p.err != nil {
		return nil, p.err
	}
	return doc, nil
}

func parseV11(data []byte) (*Document, error) {
	p := &parser{r: bytes.NewReader(data)}
	doc := NewDocument(Version11)

	numFrames := int(p.readUint16())
	numBones := int(p.readUint16())
	for i := 0; i < numFrames && p.err == nil; i++ {
		doc.Frames = append(doc.Frames, p.readFrame(numBones))
	}
	for i := 0; i < numFrames && p.err == nil; i++ {
		var z float32
		p.read(&z)
		doc.PosZ = append(doc.PosZ, z)
	}

	if p.err != nil {
		return nil, p.err
	}
	return doc, nil
}
