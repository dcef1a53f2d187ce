package frm

import (
	"encoding/binary"
	"fmt"
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

func (p *writer) writeFrame(f *Frame) {
	p.writeUint8(f.Option)
	p.write(&f.PlusX)
	p.write(&f.PosY)
	for _, m := range f.Bones {
		p.write(&m)
	}
}

// Write encodes a document in the sub-format selected by doc.Version.
func Write(doc *Document, w io.Writer) error {
	p := &writer{w: w}

	switch doc.Version {
	case Version10:
		p.writeUint8(uint8(len(doc.Frames)))
		p.writeUint8(uint8(doc.NumBones()))
		for _, f := range doc.Frames {
			p.writeFrame(f)
		}
	case Version11:
		p.write([]byte(versionMarker))
		p.writeUint16(uint16(len(doc.Frames)))
		p.writeUint16(uint16(doc.NumBones()))
		for _, f := range doc.Frames {
			p.writeFrame(f)
		}
		for _, z := range doc.PosZ {
			p.write(&z)
		}
	default:
		return fmt.Errorf("unknown FRM version %d", doc.Version)
	}

	return nil
}
