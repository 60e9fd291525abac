/*Package sim provides an in-memory stand-in for the LightField automation
runtime.  It implements the lightfield.Automation and lightfield.Experiment
interfaces with full semantics: a settings store with existence checks, a
named experiment store, readout region bookkeeping, and an Acquire that
synthesizes a Gaussian spectrum and writes it to disk in the same delimited
layout LightField exports, honoring the filename generation flags.

It exists so servers can run with Mock: true and so tests do not need a
Windows host with the vendor stack installed.
*/
package sim

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/osel/golightfield/lightfield"
)

// sensible defaults for a PIXIS 400 class sensor
const (
	defaultSensorWidth  = 1340
	defaultSensorHeight = 400
)

// Automation is a simulated LightField session.
type Automation struct {
	// ready is when the simulated application finishes "starting"
	ready time.Time

	exp *Experiment
}

// Option customizes the simulator.
type Option func(*Automation)

// WithStartupDelay makes the session refuse to hand out an experiment for
// d after New, imitating LightField's slow start.  Controller.Open rides
// through it with its backoff.
func WithStartupDelay(d time.Duration) Option {
	return func(a *Automation) {
		a.ready = time.Now().Add(d)
	}
}

// WithSensor overrides the simulated sensor dimensions.
func WithSensor(width, height int) Option {
	return func(a *Automation) {
		a.exp.sensor = lightfield.ROI{Width: width, Height: height, XBinning: 1, YBinning: 1}
	}
}

// New returns a simulated session holding one experiment with factory
// defaults loaded.
func New(opts ...Option) *Automation {
	a := &Automation{exp: newExperiment()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Experiment hands out the experiment handle once the simulated startup
// delay has passed.
func (a *Automation) Experiment() (lightfield.Experiment, error) {
	if time.Now().Before(a.ready) {
		return nil, fmt.Errorf("sim: application is still starting")
	}
	return a.exp, nil
}

// Close tears the session down.  The simulator has no worker process to
// kill; it discards the experiment handle.
func (a *Automation) Close() error {
	a.exp = newExperiment()
	return nil
}

// Experiment is the simulated settings context.
type Experiment struct {
	sync.Mutex

	name     string
	settings map[lightfield.Setting]interface{}
	sensor   lightfield.ROI
	regions  []lightfield.ROI

	// store holds experiments persisted with SaveAs, keyed by name
	store map[string]map[lightfield.Setting]interface{}

	// counter backs the filename increment flag
	counter int
}

func defaults() map[lightfield.Setting]interface{} {
	return map[lightfield.Setting]interface{}{
		lightfield.GratingCenterWavelength:    500.,
		lightfield.GratingSelected:            "[750nm,300][2][0]",
		lightfield.ExposureTime:               100., // ms
		lightfield.RegionsOfInterestSelection: float64(lightfield.FullSensor),
		lightfield.BaseFilename:               "untitled",
		lightfield.AttachIncrement:            false,
		lightfield.AttachDate:                 false,
		lightfield.AttachTime:                 false,
		lightfield.SaveDirectory:              ".",
	}
}

func newExperiment() *Experiment {
	return &Experiment{
		settings: defaults(),
		sensor:   lightfield.ROI{Width: defaultSensorWidth, Height: defaultSensorHeight, XBinning: 1, YBinning: 1},
		store:    map[string]map[lightfield.Setting]interface{}{},
	}
}

// Load replaces the current settings with a stored experiment
func (e *Experiment) Load(name string) error {
	e.Lock()
	defer e.Unlock()
	stored, ok := e.store[name]
	if !ok {
		return fmt.Errorf("sim: no experiment named %q", name)
	}
	m := make(map[lightfield.Setting]interface{}, len(stored))
	for k, v := range stored {
		m[k] = v
	}
	e.settings = m
	e.name = name
	return nil
}

// Name returns the name of the loaded experiment
func (e *Experiment) Name() string {
	e.Lock()
	defer e.Unlock()
	return e.name
}

// Exists reports whether the setting is present in the loaded context
func (e *Experiment) Exists(s lightfield.Setting) bool {
	e.Lock()
	defer e.Unlock()
	_, ok := e.settings[s]
	return ok
}

// GetValue reads a setting
func (e *Experiment) GetValue(s lightfield.Setting) (interface{}, error) {
	e.Lock()
	defer e.Unlock()
	v, ok := e.settings[s]
	if !ok {
		return nil, lightfield.ErrSettingNotFound{Setting: s}
	}
	return v, nil
}

// SetValue writes a setting
func (e *Experiment) SetValue(s lightfield.Setting, v interface{}) error {
	e.Lock()
	defer e.Unlock()
	if _, ok := e.settings[s]; !ok {
		return lightfield.ErrSettingNotFound{Setting: s}
	}
	e.settings[s] = v
	return nil
}

// FullSensorRegion is the native addressable region of the sensor
func (e *Experiment) FullSensorRegion() lightfield.ROI {
	e.Lock()
	defer e.Unlock()
	return e.sensor
}

// SetCustomRegions programs the regions read out in CustomROI mode
func (e *Experiment) SetCustomRegions(regions ...lightfield.ROI) error {
	e.Lock()
	defer e.Unlock()
	for _, roi := range regions {
		if roi.Width <= 0 || roi.Height <= 0 {
			return fmt.Errorf("sim: region %+v has a degenerate extent", roi)
		}
		if roi.X+roi.Width > e.sensor.Width || roi.Y+roi.Height > e.sensor.Height {
			return fmt.Errorf("sim: region %+v exceeds the %dx%d sensor", roi, e.sensor.Width, e.sensor.Height)
		}
	}
	e.regions = regions
	return nil
}

// SaveAs persists the current settings under name
func (e *Experiment) SaveAs(name string) error {
	e.Lock()
	defer e.Unlock()
	if name == "" {
		return fmt.Errorf("sim: cannot save an experiment without a name")
	}
	m := make(map[lightfield.Setting]interface{}, len(e.settings))
	for k, v := range e.settings {
		m[k] = v
	}
	e.store[name] = m
	e.name = name
	return nil
}

// Acquire sleeps for the programmed exposure time, then writes a
// synthetic Gaussian spectrum to the configured directory and filename in
// the delimited layout LightField exports.  It blocks like the real thing.
func (e *Experiment) Acquire() error {
	e.Lock()
	ms, _ := e.settings[lightfield.ExposureTime].(float64)
	center, _ := e.settings[lightfield.GratingCenterWavelength].(float64)
	grating, _ := e.settings[lightfield.GratingSelected].(string)
	fn := e.outputName()
	width := e.sensor.Width
	e.Unlock()

	time.Sleep(time.Duration(ms * float64(time.Millisecond)))

	f, err := os.Create(fn)
	if err != nil {
		return err
	}
	defer f.Close()

	// dispersion across the sensor depends on the groove density; the
	// mirror disperses nothing and produces a flat axis
	span := 0.
	switch {
	case strings.Contains(grating, "900"):
		span = 35.
	case strings.Contains(grating, "300"):
		span = 105.
	}

	var sb strings.Builder
	sb.WriteString("Frame,ROI,Wavelength,Row,Column,Intensity\n")
	sigma := span / 20
	if sigma == 0 {
		sigma = 1
	}
	for px := 0; px < width; px++ {
		wvl := center
		// a one pixel sensor has no dispersion axis to spread over
		if span != 0 && width > 1 {
			wvl = center - span/2 + span*float64(px)/float64(width-1)
		}
		arg := (wvl - center) / sigma
		intensity := 1000*math.Exp(-arg*arg/2) + 100 // 100 counts of bias
		fmt.Fprintf(&sb, "1,1,%.3f,1,%d,%.1f\n", wvl, px+1, intensity)
	}
	// LightField exports end with a footer line readers must skip
	sb.WriteString("\n")
	_, err = f.WriteString(sb.String())
	return err
}

// outputName assembles the output path from the base filename, the
// generation flags, and the save directory.  Callers hold the lock.
func (e *Experiment) outputName() string {
	base, _ := e.settings[lightfield.BaseFilename].(string)
	dir, _ := e.settings[lightfield.SaveDirectory].(string)
	increment, _ := e.settings[lightfield.AttachIncrement].(bool)
	date, _ := e.settings[lightfield.AttachDate].(bool)
	tod, _ := e.settings[lightfield.AttachTime].(bool)

	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	if ext == "" {
		ext = ".csv"
	}
	now := time.Now()
	if date {
		stem += now.Format(" 2006 January 02")
	}
	if tod {
		stem += now.Format(" 15_04_05")
	}
	if increment {
		e.counter++
		stem += fmt.Sprintf("-%03d", e.counter)
	}
	return filepath.Join(dir, stem+ext)
}
