package sim_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/osel/golightfield/lightfield"
	"github.com/osel/golightfield/lightfield/sim"
)

func attach(t *testing.T) lightfield.Experiment {
	t.Helper()
	exp, err := sim.New().Experiment()
	if err != nil {
		t.Fatalf("attach failed, %v", err)
	}
	return exp
}

func TestStartupDelayGatesAttachment(t *testing.T) {
	a := sim.New(sim.WithStartupDelay(50 * time.Millisecond))
	_, err := a.Experiment()
	if err == nil {
		t.Fatal("expected attachment to fail during startup")
	}
	time.Sleep(60 * time.Millisecond)
	_, err = a.Experiment()
	if err != nil {
		t.Fatalf("expected attachment after startup, got %v", err)
	}
}

func TestExistsAndSetValue(t *testing.T) {
	exp := attach(t)
	if exp.Exists(lightfield.Setting("CameraSettings.DoesNotExist")) {
		t.Error("expected unknown setting to not exist")
	}
	if !exp.Exists(lightfield.ExposureTime) {
		t.Error("expected exposure time to exist")
	}
	err := exp.SetValue(lightfield.Setting("CameraSettings.DoesNotExist"), 1.)
	if err == nil {
		t.Error("expected writing an unknown setting to fail")
	}
	err = exp.SetValue(lightfield.ExposureTime, 42.)
	if err != nil {
		t.Fatalf("write failed, %v", err)
	}
	v, err := exp.GetValue(lightfield.ExposureTime)
	if err != nil || v != 42. {
		t.Errorf("expected 42 back, got %v, %v", v, err)
	}
}

func TestSaveAsLoadRoundTrip(t *testing.T) {
	exp := attach(t)
	err := exp.SetValue(lightfield.GratingCenterWavelength, 632.8)
	if err != nil {
		t.Fatalf("write failed, %v", err)
	}
	err = exp.SaveAs("hene")
	if err != nil {
		t.Fatalf("save failed, %v", err)
	}
	err = exp.SetValue(lightfield.GratingCenterWavelength, 500.)
	if err != nil {
		t.Fatalf("write failed, %v", err)
	}
	err = exp.Load("hene")
	if err != nil {
		t.Fatalf("load failed, %v", err)
	}
	v, _ := exp.GetValue(lightfield.GratingCenterWavelength)
	if v != 632.8 {
		t.Errorf("expected the stored wavelength back, got %v", v)
	}
	if exp.Name() != "hene" {
		t.Errorf("expected name hene, got %q", exp.Name())
	}
	err = exp.Load("missing")
	if err == nil {
		t.Error("expected loading a missing experiment to fail")
	}
}

func TestCustomRegionsValidated(t *testing.T) {
	exp := attach(t)
	full := exp.FullSensorRegion()
	err := exp.SetCustomRegions(lightfield.ROI{X: full.Width, Y: 0, Width: 10, Height: 10, XBinning: 10, YBinning: 10})
	if err == nil {
		t.Error("expected a region off the sensor to be rejected")
	}
	err = exp.SetCustomRegions(lightfield.ROI{Width: 100, Height: 100, XBinning: 100, YBinning: 100})
	if err != nil {
		t.Errorf("expected an on-sensor region to be accepted, got %v", err)
	}
}

func TestAcquireWritesOutput(t *testing.T) {
	dir := t.TempDir()
	exp := attach(t)
	for s, v := range map[lightfield.Setting]interface{}{
		lightfield.SaveDirectory: dir,
		lightfield.BaseFilename:  "run1",
		lightfield.ExposureTime:  1., // ms, keeps the test fast
	} {
		if err := exp.SetValue(s, v); err != nil {
			t.Fatalf("write failed, %v", err)
		}
	}
	err := exp.Acquire()
	if err != nil {
		t.Fatalf("acquire failed, %v", err)
	}
	_, err = os.Stat(filepath.Join(dir, "run1.csv"))
	if err != nil {
		t.Errorf("expected run1.csv to exist, %v", err)
	}
}

func TestAcquireOnePixelSensor(t *testing.T) {
	dir := t.TempDir()
	exp, err := sim.New(sim.WithSensor(1, 100)).Experiment()
	if err != nil {
		t.Fatalf("attach failed, %v", err)
	}
	for s, v := range map[lightfield.Setting]interface{}{
		lightfield.SaveDirectory: dir,
		lightfield.BaseFilename:  "point",
		lightfield.ExposureTime:  1.,
	} {
		if err := exp.SetValue(s, v); err != nil {
			t.Fatalf("write failed, %v", err)
		}
	}
	err = exp.Acquire()
	if err != nil {
		t.Fatalf("acquire failed, %v", err)
	}
	b, err := os.ReadFile(filepath.Join(dir, "point.csv"))
	if err != nil {
		t.Fatalf("expected point.csv to exist, %v", err)
	}
	out := string(b)
	if strings.Contains(out, "NaN") || strings.Contains(out, "Inf") {
		t.Errorf("expected finite wavelengths, got %q", out)
	}
	// the single pixel sits at the center wavelength
	if !strings.Contains(out, "500.000") {
		t.Errorf("expected the center wavelength in the export, got %q", out)
	}
}

func TestAcquireIncrementsFilename(t *testing.T) {
	dir := t.TempDir()
	exp := attach(t)
	for s, v := range map[lightfield.Setting]interface{}{
		lightfield.SaveDirectory:   dir,
		lightfield.BaseFilename:    "run",
		lightfield.AttachIncrement: true,
		lightfield.ExposureTime:    1.,
	} {
		if err := exp.SetValue(s, v); err != nil {
			t.Fatalf("write failed, %v", err)
		}
	}
	for i := 0; i < 2; i++ {
		if err := exp.Acquire(); err != nil {
			t.Fatalf("acquire failed, %v", err)
		}
	}
	for _, fn := range []string{"run-001.csv", "run-002.csv"} {
		_, err := os.Stat(filepath.Join(dir, fn))
		if err != nil {
			t.Errorf("expected %s to exist, %v", fn, err)
		}
	}
}
