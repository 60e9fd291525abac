/*Package lightfield provides control of Princeton Instruments spectrographs
and cameras through the LightField automation runtime.

LightField owns the hardware completely while it runs; this package does not
talk to the instruments, it talks to LightField.  The automation surface is
consumed through the Automation and Experiment interfaces so that servers
and tests can substitute the simulator in package sim for the real thing.

Every write funnels through Controller.Apply, which checks that the setting
exists in the loaded experiment before touching it and logs each attempt.
*/
package lightfield

import (
	"log"
	"strings"
	"time"

	"github.com/cenkalti/backoff"
)

// Experiment is the handle to the experiment currently loaded in
// LightField.  It represents the vendor's persisted bundle of acquisition
// settings and is mutated in place by every setter.
type Experiment interface {
	// Load replaces the current settings with the named stored experiment
	Load(name string) error

	// Name returns the name of the loaded experiment
	Name() string

	// Exists reports whether the setting is present in the loaded context
	Exists(s Setting) bool

	// GetValue reads a setting
	GetValue(s Setting) (interface{}, error)

	// SetValue writes a setting
	SetValue(s Setting, v interface{}) error

	// FullSensorRegion is the native addressable region of the sensor
	FullSensorRegion() ROI

	// SetCustomRegions programs the regions read out in CustomROI mode
	SetCustomRegions(regions ...ROI) error

	// Acquire triggers acquisition and blocks until readout completes
	Acquire() error

	// SaveAs persists the current settings under name in LightField's store
	SaveAs(name string) error
}

// Automation is the root of a LightField automation session.  At most one
// exists per process; it is owned exclusively by the Controller.
type Automation interface {
	// Experiment returns the experiment handle, or an error if the
	// application is not yet ready to be automated
	Experiment() (Experiment, error)

	// Close tears the session down.  LightField is documented to corrupt
	// state for the next session if this is skipped.
	Close() error
}

// Controller is the facade over a LightField session.  It is not safe for
// concurrent use; the vendor session handle assumes a single caller at a
// time.  Servers should guard it at the HTTP boundary.
type Controller struct {
	auto Automation

	exp Experiment

	// experimentName is the name of the active experiment, set by Open
	// when a preset is loaded and updated by SaveExperimentAs
	experimentName string
}

// New returns a Controller over the given automation session.  Call Open
// before using any setter.
func New(auto Automation) *Controller {
	return &Controller{auto: auto}
}

// Open attaches to the session's experiment and, if experiment is
// non-empty, loads that stored experiment and records its name.
//
// LightField takes several seconds after process start before it will
// hand out an experiment handle, so attachment is retried with an
// exponential backoff for up to 30 seconds.
func (c *Controller) Open(experiment string) error {
	op := func() error {
		exp, err := c.auto.Experiment()
		if err != nil {
			return err
		}
		c.exp = exp
		return nil
	}
	err := backoff.Retry(op, &backoff.ExponentialBackOff{
		InitialInterval:     250 * time.Millisecond,
		RandomizationFactor: 0.,
		Multiplier:          2.,
		MaxInterval:         5 * time.Second,
		MaxElapsedTime:      30 * time.Second,
		Clock:               backoff.SystemClock})
	if err != nil {
		return err
	}
	if experiment != "" {
		err = c.exp.Load(experiment)
		if err != nil {
			return err
		}
		c.experimentName = c.exp.Name()
	}
	log.Printf("attached to LightField, experiment %q", c.experimentName)
	return nil
}

// ExperimentName returns the name of the active experiment, or the empty
// string if none was loaded or saved yet.
func (c *Controller) ExperimentName() string {
	return c.experimentName
}

// Apply is the single guarded write path to the experiment context.  The
// setting must exist in the loaded context; if it does not, nothing is
// written and ErrSettingNotFound is returned.  Every attempted write is
// logged, making this the one chokepoint for observing configuration
// changes.  All setters in this package route through Apply.
func (c *Controller) Apply(s Setting, v interface{}) error {
	if c.exp == nil {
		return ErrNotOpen
	}
	if !c.exp.Exists(s) {
		log.Printf("%s absent from experiment, %v not written", s, v)
		return ErrSettingNotFound{Setting: s}
	}
	err := c.exp.SetValue(s, v)
	if err != nil {
		return err
	}
	log.Printf("%s set to %v", s, v)
	return nil
}

// Get reads a setting from the experiment context.
func (c *Controller) Get(s Setting) (interface{}, error) {
	if c.exp == nil {
		return nil, ErrNotOpen
	}
	return c.exp.GetValue(s)
}

// SetCenterWavelength sets the spectrometer center wavelength in nm.
func (c *Controller) SetCenterWavelength(nm float64) error {
	return c.Apply(GratingCenterWavelength, nm)
}

// GetCenterWavelength gets the spectrometer center wavelength in nm.
func (c *Controller) GetCenterWavelength() (float64, error) {
	v, err := c.Get(GratingCenterWavelength)
	if err != nil {
		return 0, err
	}
	f, _ := v.(float64)
	return f, nil
}

// SetGrating moves the turret to the given grating.
func (c *Controller) SetGrating(g Grating) error {
	desc, err := g.Descriptor()
	if err != nil {
		return err
	}
	return c.Apply(GratingSelected, desc)
}

// GetGrating returns the descriptor string of the active grating.
func (c *Controller) GetGrating() (string, error) {
	v, err := c.Get(GratingSelected)
	if err != nil {
		return "", err
	}
	s, _ := v.(string)
	return s, nil
}

// SetExposureTime sets the camera exposure time.  The vendor key takes
// milliseconds as a float.
func (c *Controller) SetExposureTime(d time.Duration) error {
	return c.Apply(ExposureTime, float64(d)/float64(time.Millisecond))
}

// GetExposureTime gets the camera exposure time.
func (c *Controller) GetExposureTime() (time.Duration, error) {
	v, err := c.Get(ExposureTime)
	if err != nil {
		return 0, err
	}
	ms, _ := v.(float64)
	return time.Duration(ms * float64(time.Millisecond)), nil
}

// FilenameOptions are the vendor's filename generation switches.  The
// zero value produces bare filenames.
type FilenameOptions struct {
	// Increment appends an incrementing counter to each new file
	Increment bool `json:"increment"`

	// AttachDate appends the current date
	AttachDate bool `json:"attachDate"`

	// AttachTime appends the current time of day
	AttachTime bool `json:"attachTime"`
}

// SetSavedFilename configures the name acquisition output is saved under.
// Any path component of name is stripped first.  The base name and the
// three generation switches are four independent guarded writes; they are
// not atomic, and a failure partway leaves a mixed configuration (the
// vendor context has no transactional apply).  The first error is
// returned.
func (c *Controller) SetSavedFilename(name string, opts FilenameOptions) error {
	err := c.Apply(BaseFilename, basename(name))
	if err != nil {
		return err
	}
	err = c.Apply(AttachIncrement, opts.Increment)
	if err != nil {
		return err
	}
	err = c.Apply(AttachDate, opts.AttachDate)
	if err != nil {
		return err
	}
	return c.Apply(AttachTime, opts.AttachTime)
}

// SetSaveDirectory sets the folder acquisition output is written to.
func (c *Controller) SetSaveDirectory(dir string) error {
	return c.Apply(SaveDirectory, dir)
}

// basename strips any path component from name.  The acquisition host is
// a Windows machine but this server may not be, so both separator
// conventions are handled, unlike filepath.Base.
func basename(name string) string {
	if idx := strings.LastIndexAny(name, `/\`); idx >= 0 {
		return name[idx+1:]
	}
	return name
}

// GetFullSensorSize returns the sensor's native addressable region.
func (c *Controller) GetFullSensorSize() (ROI, error) {
	if c.exp == nil {
		return ROI{}, ErrNotOpen
	}
	return c.exp.FullSensorRegion(), nil
}

// SetCustomROI programs a single custom readout region.  If either
// binning factor is zero it defaults to the region's full extent on that
// axis, i.e. one bin covering the whole region.  The region as applied is
// returned for inspection.
func (c *Controller) SetCustomROI(roi ROI) (ROI, error) {
	if c.exp == nil {
		return ROI{}, ErrNotOpen
	}
	if roi.XBinning == 0 {
		roi.XBinning = roi.Width
	}
	if roi.YBinning == 0 {
		roi.YBinning = roi.Height
	}
	err := c.exp.SetCustomRegions(roi)
	if err != nil {
		return ROI{}, err
	}
	log.Printf("custom ROI set to %+v", roi)
	return roi, nil
}

// SetSensorMode selects the sensor readout mode.
func (c *Controller) SetSensorMode(m SensorMode) error {
	err := m.Valid()
	if err != nil {
		return err
	}
	// the vendor expects the enum code as a float
	return c.Apply(RegionsOfInterestSelection, float64(m))
}

// GetSensorMode reads back the sensor readout mode's enum code.
func (c *Controller) GetSensorMode() (int, error) {
	v, err := c.Get(RegionsOfInterestSelection)
	if err != nil {
		return 0, err
	}
	f, _ := v.(float64)
	return int(f), nil
}

// Acquire sets the output filename with default generation options, then
// triggers acquisition.  The call blocks for the full exposure and
// readout duration; there is no progress reporting or cancellation, the
// vendor owns the timing entirely.
func (c *Controller) Acquire(filename string) error {
	if c.exp == nil {
		return ErrNotOpen
	}
	err := c.SetSavedFilename(filename, FilenameOptions{})
	if err != nil {
		return err
	}
	return c.exp.Acquire()
}

// SaveExperimentAs persists the current settings in LightField's own
// store.  If name is non-empty it becomes the active experiment name,
// otherwise the active name is reused.
func (c *Controller) SaveExperimentAs(name string) error {
	if c.exp == nil {
		return ErrNotOpen
	}
	if name != "" {
		c.experimentName = name
	}
	return c.exp.SaveAs(c.experimentName)
}

// Close tears the session down.  Always call it: skipping teardown is
// documented by the vendor to destabilize the next LightField session.
func (c *Controller) Close() error {
	if c.auto == nil {
		return nil
	}
	log.Println("LightField disconnected")
	return c.auto.Close()
}
