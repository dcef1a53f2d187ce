package frm

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func constMat4(v float32) mgl32.Mat4 {
	var m mgl32.Mat4
	for i := range m {
		m[i] = v
	}
	return m
}

func sampleFrames() []*Frame {
	return []*Frame{
		{PlusX: 1, PosY: 2, Bones: []mgl32.Mat4{constMat4(1), constMat4(2)}},
		{PlusX: 3, PosY: 4, Bones: []mgl32.Mat4{constMat4(3), constMat4(4)}},
	}
}

func TestRoundTripV10(t *testing.T) {
	doc := NewDocument(Version10)
	doc.Frames = sampleFrames()

	var buf bytes.Buffer
	if err := Write(doc, &buf); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if buf.Bytes()[0] != 2 || buf.Bytes()[1] != 2 {
		t.Errorf("v1.0 counts = %v, want one-byte frame and bone counts", buf.Bytes()[:2])
	}

	again, err := Parse(buf.Bytes())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if again.Version != Version10 {
		t.Errorf("probe selected version %d, want v1.0", again.Version)
	}
	if !reflect.DeepEqual(doc, again) {
		t.Errorf("round trip changed the document")
	}
}

func TestRoundTripV11(t *testing.T) {
	doc := NewDocument(Version11)
	doc.Frames = sampleFrames()
	doc.PosZ = []float32{5, 6}

	var buf bytes.Buffer
	if err := Write(doc, &buf); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte(versionMarker)) {
		t.Errorf("v1.1 stream does not start with the version marker")
	}

	again, err := Parse(buf.Bytes())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if again.Version != Version11 {
		t.Errorf("probe selected version %d, want v1.1", again.Version)
	}
	if !reflect.DeepEqual(doc, again) {
		t.Errorf("round trip changed the document")
	}
}

func TestParseTruncated(t *testing.T) {
	doc := NewDocument(Version11)
	doc.Frames = sampleFrames()
	doc.PosZ = []float32{5, 6}

	var buf bytes.Buffer
	if err := Write(doc, &buf); err != nil {
		t.Fatalf("Write: %v", err)
	}
	for _, n := range []int{13, 20, buf.Len() - 1} {
		if _, err := Parse(buf.Bytes()[:n]); err == nil {
			t.Errorf("Parse accepted a stream truncated to %d bytes", n)
		}
	}
}

func TestWriteUnknownVersion(t *testing.T) {
	doc := &Document{Version: Version(9)}
	if err := Write(doc, &bytes.Buffer{}); err == nil {
		t.Errorf("Write accepted an unknown version")
	}
}
