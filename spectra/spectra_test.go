package spectra_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/osel/golightfield/lightfield"
	"github.com/osel/golightfield/lightfield/sim"
	"github.com/osel/golightfield/spectra"
)

const sample = `Frame,ROI,Wavelength,Row,Column,Intensity
1,1,500.000,1,1,100.0
1,1,500.100,1,2,350.5
1,1,500.200,1,3,100.0

`

func TestLoadColumnSemantics(t *testing.T) {
	s, err := spectra.Load(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("load failed, %v", err)
	}
	if len(s.Wavelength) != 3 || len(s.Counts) != 3 {
		t.Fatalf("expected 3 data rows, got %d/%d", len(s.Wavelength), len(s.Counts))
	}
	if s.Wavelength[0] != 500.0 || s.Wavelength[2] != 500.2 {
		t.Errorf("wavelength axis wrong, got %v", s.Wavelength)
	}
	// the intensity comes from the column's data, never its header name
	if s.Counts[1] != 350.5 {
		t.Errorf("expected 350.5 counts at row 1, got %v", s.Counts[1])
	}
	if s.XLabel != "Wavelength" || s.YLabel != "Intensity" {
		t.Errorf("expected header names as labels, got %q/%q", s.XLabel, s.YLabel)
	}
}

func TestLoadRejectsEmpty(t *testing.T) {
	_, err := spectra.Load(strings.NewReader(""))
	if err == nil {
		t.Error("expected empty input to fail")
	}
	_, err = spectra.Load(strings.NewReader("Frame,ROI,Wavelength,Row,Column,Intensity\n"))
	if err == nil {
		t.Error("expected header-only input to fail")
	}
}

func TestLoadRejectsGarbageRow(t *testing.T) {
	bad := "Frame,ROI,Wavelength,Row,Column,Intensity\n1,1,500.0,1,1,100.0\n1,1,oops,1,2,100.0\n"
	_, err := spectra.Load(strings.NewReader(bad))
	if err == nil {
		t.Error("expected a non-numeric data row to fail")
	}
}

func TestWriteFITS(t *testing.T) {
	s := spectra.Spectrum{
		Wavelength: []float64{500, 501, 502, 503},
		Counts:     []float64{100, 400, 400, 100},
	}
	buf := bytes.Buffer{}
	err := spectra.WriteFITS(&buf, s)
	if err != nil {
		t.Fatalf("fits export failed, %v", err)
	}
	if buf.Len() == 0 {
		t.Error("expected fits bytes, got none")
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("SIMPLE")) {
		t.Error("expected a fits primary header")
	}
}

// the simulator writes the same layout this package reads
func TestSimulatorRoundTrip(t *testing.T) {
	dir := t.TempDir()
	auto := sim.New()
	ctl := lightfield.New(auto)
	err := ctl.Open("")
	if err != nil {
		t.Fatalf("open failed, %v", err)
	}
	err = ctl.SetSaveDirectory(dir)
	if err != nil {
		t.Fatalf("set directory failed, %v", err)
	}
	err = ctl.SetExposureTime(time.Millisecond)
	if err != nil {
		t.Fatalf("set exposure failed, %v", err)
	}
	err = ctl.Acquire("roundtrip")
	if err != nil {
		t.Fatalf("acquire failed, %v", err)
	}
	s, err := spectra.LoadFile(dir + "/roundtrip.csv")
	if err != nil {
		t.Fatalf("load failed, %v", err)
	}
	if len(s.Wavelength) == 0 || len(s.Wavelength) != len(s.Counts) {
		t.Errorf("expected matched axes, got %d/%d", len(s.Wavelength), len(s.Counts))
	}
}
