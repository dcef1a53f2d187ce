package converter

import (
	"strings"
	"testing"

	"github.com/gbrlfaria/chaseconv/frm"
)

func TestParseConfig(t *testing.T) {
	config, err := ParseConfig(strings.NewReader("format: gc\nfrm_version: \"1.0\"\nout: converted\n"))
	if err != nil {
		t.Fatal(err)
	}
	if config.Format != "gc" || config.FrmVersion != "1.0" || config.OutDir != "converted" {
		t.Errorf("config = %+v", config)
	}
}

func TestParseConfigDefaults(t *testing.T) {
	config, err := ParseConfig(strings.NewReader(""))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.EqualFold(config.Format, "glb") || config.OutDir != "." {
		t.Errorf("config = %+v, want defaults", config)
	}
}

func TestConfigConverter(t *testing.T) {
	conv, err := (&Config{Format: "gc", FrmVersion: "1.0"}).Converter()
	if err != nil {
		t.Fatal(err)
	}
	if len(conv.Exporters) != 2 {
		t.Fatalf("got %d exporters, want 2", len(conv.Exporters))
	}
	frmExporter, ok := conv.Exporters[1].(*FRMExporter)
	if !ok {
		t.Fatalf("exporter 1 is %T, want *FRMExporter", conv.Exporters[1])
	}
	if frmExporter.Version != frm.Version10 {
		t.Errorf("version = %d, want v1.0", frmExporter.Version)
	}
}

func TestConfigConverterDefaultsToGLB(t *testing.T) {
	conv, err := (&Config{}).Converter()
	if err != nil {
		t.Fatal(err)
	}
	if len(conv.Exporters) != 1 {
		t.Fatalf("got %d exporters, want 1", len(conv.Exporters))
	}
	if _, ok := conv.Exporters[0].(*GLTFExporter); !ok {
		t.Errorf("exporter 0 is %T, want *GLTFExporter", conv.Exporters[0])
	}
}

func TestConfigConverterUnknownFormat(t *testing.T) {
	if _, err := (&Config{Format: "obj"}).Converter(); err == nil {
		t.Error("expected an error for an unknown format")
	}
}

func TestConfigConverterUnknownFrmVersion(t *testing.T) {
	if _, err := (&Config{Format: "gc", FrmVersion: "2.0"}).Converter(); err == nil {
		t.Error("expected an error for an unknown FRM version")
	}
}
