// Package spectrometer provides a generic HTTP interface to a
// LightField-controlled spectrograph and camera
package spectrometer

import (
	"encoding/json"
	"go/types"
	"net/http"
	"time"

	"github.com/osel/golightfield/generichttp"
	"github.com/osel/golightfield/lightfield"
	"github.com/osel/golightfield/server"
	"github.com/osel/golightfield/util"

	"goji.io/pat"
)

// WavelengthTuner describes a device whose center wavelength can be moved
type WavelengthTuner interface {
	// SetCenterWavelength sets the center wavelength in nm
	SetCenterWavelength(float64) error

	// GetCenterWavelength gets the center wavelength in nm
	GetCenterWavelength() (float64, error)
}

// GratingSelector describes a device with a grating turret
type GratingSelector interface {
	// SetGrating moves the turret to the given grating
	SetGrating(lightfield.Grating) error

	// GetGrating returns the descriptor of the active grating
	GetGrating() (string, error)
}

// ExposureController describes a device with a programmable exposure time
type ExposureController interface {
	// SetExposureTime sets the exposure time
	SetExposureTime(time.Duration) error

	// GetExposureTime gets the exposure time
	GetExposureTime() (time.Duration, error)
}

// ROIControl describes a device with a configurable readout region
type ROIControl interface {
	// GetFullSensorSize is the native addressable region of the sensor
	GetFullSensorSize() (lightfield.ROI, error)

	// SetCustomROI programs a custom readout region, returning it as applied
	SetCustomROI(lightfield.ROI) (lightfield.ROI, error)

	// SetSensorMode selects the readout mode
	SetSensorMode(lightfield.SensorMode) error

	// GetSensorMode reads back the readout mode's enum code
	GetSensorMode() (int, error)
}

// OutputConfigurer describes a device whose acquisition output naming can
// be configured
type OutputConfigurer interface {
	// SetSavedFilename configures the output file stem and generation flags
	SetSavedFilename(string, lightfield.FilenameOptions) error

	// SetSaveDirectory sets the folder output is written to
	SetSaveDirectory(string) error
}

// Acquirer describes a device that can capture data to a file
type Acquirer interface {
	// Acquire blocks until the exposure and readout complete
	Acquire(string) error
}

// ExperimentStore describes a device with named persisted configurations
type ExperimentStore interface {
	// SaveExperimentAs persists the configuration under the given or active name
	SaveExperimentAs(string) error

	// ExperimentName is the active configuration name
	ExperimentName() string
}

// SettingApplier describes the guarded raw setting access path
type SettingApplier interface {
	// Apply writes a setting if it exists in the loaded context
	Apply(lightfield.Setting, interface{}) error

	// Get reads a setting
	Get(lightfield.Setting) (interface{}, error)
}

// Spectrometer is the full capability surface this wrapper exposes.
// lightfield.Controller satisfies it.
type Spectrometer interface {
	WavelengthTuner
	GratingSelector
	ExposureController
	ROIControl
	OutputConfigurer
	Acquirer
	ExperimentStore
	SettingApplier
}

// filenameT is the json shape for POST /filename
type filenameT struct {
	Name string `json:"name"`

	lightfield.FilenameOptions
}

// HTTPWrapper wraps a Spectrometer with an HTTP route table
type HTTPWrapper struct {
	// S is the device being wrapped
	S Spectrometer

	RouteTable server.RouteTable
}

// NewHTTPWrapper returns a new wrapper with the route table populated
func NewHTTPWrapper(s Spectrometer) HTTPWrapper {
	w := HTTPWrapper{S: s}
	w.RouteTable = server.RouteTable{
		// spectrometer
		pat.Get("/wavelength"):  generichttp.GetFloat(s.GetCenterWavelength),
		pat.Post("/wavelength"): generichttp.SetFloat(s.SetCenterWavelength),
		pat.Get("/grating"):     generichttp.GetString(s.GetGrating),
		pat.Post("/grating"):    w.SetGrating,

		// camera
		pat.Get("/exposure-time"):  w.GetExposureTime,
		pat.Post("/exposure-time"): w.SetExposureTime,
		pat.Get("/sensor-size"):    w.GetSensorSize,
		pat.Post("/roi"):           w.SetROI,
		pat.Get("/sensor-mode"):    generichttp.GetInt(s.GetSensorMode),
		pat.Post("/sensor-mode"):   generichttp.SetInt(func(i int) error { return s.SetSensorMode(lightfield.SensorMode(i)) }),

		// output and persistence
		pat.Post("/filename"):        w.SetFilename,
		pat.Post("/save-directory"):  generichttp.SetString(s.SetSaveDirectory),
		pat.Post("/acquire"):         w.Acquire,
		pat.Post("/save-experiment"): w.SaveExperiment,
		pat.Get("/experiment-name"):  w.GetExperimentName,

		// generic guarded setting access
		pat.Get("/setting"):           w.ListSettings,
		pat.Get("/setting/:setting"):  w.GetSetting,
		pat.Post("/setting/:setting"): w.SetSetting,
	}
	return w
}

// RT satisfies server.HTTPer
func (h HTTPWrapper) RT() server.RouteTable {
	return h.RouteTable
}

// SetGrating moves the grating turret on a POST request with json
// {'int': code}, code in 0..2
func (h HTTPWrapper) SetGrating(w http.ResponseWriter, r *http.Request) {
	i := server.IntT{}
	err := json.NewDecoder(r.Body).Decode(&i)
	defer r.Body.Close()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	err = h.S.SetGrating(lightfield.Grating(i.Int))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// SetExposureTime sets the exposure time on a POST request.  It can be
// provided either as a query parameter exposureTime, formatted in a way
// that is parseable by golang/time.ParseDuration, or a json payload with
// key f64, holding the exposure time in seconds.
func (h HTTPWrapper) SetExposureTime(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	texp := q.Get("exposureTime")
	var d time.Duration
	var err error
	if texp == "" {
		f := server.FloatT{}
		err = json.NewDecoder(r.Body).Decode(&f)
		defer r.Body.Close()
		d = util.SecsToDuration(f.F64)
	} else {
		if util.AllElementsNumbers(texp) {
			texp = texp + "s"
		}
		d, err = time.ParseDuration(texp)
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	err = h.S.SetExposureTime(d)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// GetExposureTime gets the exposure time in seconds on a GET request
func (h HTTPWrapper) GetExposureTime(w http.ResponseWriter, r *http.Request) {
	d, err := h.S.GetExposureTime()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	hp := server.HumanPayload{T: types.Float64, Float: d.Seconds()}
	hp.EncodeAndRespond(w, r)
}

// GetSensorSize returns the full sensor region as json on a GET request
func (h HTTPWrapper) GetSensorSize(w http.ResponseWriter, r *http.Request) {
	roi, err := h.S.GetFullSensorSize()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	err = json.NewEncoder(w).Encode(roi)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// SetROI programs a custom readout region from a json body and echoes the
// region as applied, with defaulted binning factors filled in
func (h HTTPWrapper) SetROI(w http.ResponseWriter, r *http.Request) {
	roi := lightfield.ROI{}
	err := json.NewDecoder(r.Body).Decode(&roi)
	defer r.Body.Close()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	applied, err := h.S.SetCustomROI(roi)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	err = json.NewEncoder(w).Encode(applied)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// SetFilename configures output naming on a POST request with json
// {'name': ..., 'increment': ..., 'attachDate': ..., 'attachTime': ...}
func (h HTTPWrapper) SetFilename(w http.ResponseWriter, r *http.Request) {
	f := filenameT{}
	err := json.NewDecoder(r.Body).Decode(&f)
	defer r.Body.Close()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	err = h.S.SetSavedFilename(f.Name, f.FilenameOptions)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// Acquire triggers acquisition on a POST request.  The output name comes
// from the filename query parameter.  The request blocks for the full
// exposure and readout duration.
func (h HTTPWrapper) Acquire(w http.ResponseWriter, r *http.Request) {
	filename := r.URL.Query().Get("filename")
	if filename == "" {
		http.Error(w, "filename query parameter is required", http.StatusBadRequest)
		return
	}
	err := h.S.Acquire(filename)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// SaveExperiment persists the configuration on a POST request with json
// {'str': name}.  An empty name reuses the active experiment name.
func (h HTTPWrapper) SaveExperiment(w http.ResponseWriter, r *http.Request) {
	s := server.StrT{}
	err := json.NewDecoder(r.Body).Decode(&s)
	defer r.Body.Close()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	err = h.S.SaveExperimentAs(s.Str)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// GetExperimentName returns the active experiment name on a GET request
func (h HTTPWrapper) GetExperimentName(w http.ResponseWriter, r *http.Request) {
	hp := server.HumanPayload{T: types.String, String: h.S.ExperimentName()}
	hp.EncodeAndRespond(w, r)
}

// ListSettings returns the known setting keys and their types as json
func (h HTTPWrapper) ListSettings(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(lightfield.Settings)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// GetSetting reads a setting by key on a GET request, responding with the
// json envelope matching the setting's type
func (h HTTPWrapper) GetSetting(w http.ResponseWriter, r *http.Request) {
	setting := lightfield.Setting(pat.Param(r, "setting"))
	typ, known := lightfield.Settings[setting]
	if !known {
		http.Error(w, "setting not known to this server, see /setting", http.StatusNotFound)
		return
	}
	v, err := h.S.Get(setting)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	hp := server.HumanPayload{}
	switch typ {
	case "float":
		hp.T = types.Float64
		hp.Float, _ = v.(float64)
	case "string":
		hp.T = types.String
		hp.String, _ = v.(string)
	case "bool":
		hp.T = types.Bool
		hp.Bool, _ = v.(bool)
	}
	hp.EncodeAndRespond(w, r)
}

// SetSetting writes a setting by key on a POST request through the
// guarded apply path.  The body is the json envelope matching the
// setting's type.
func (h HTTPWrapper) SetSetting(w http.ResponseWriter, r *http.Request) {
	setting := lightfield.Setting(pat.Param(r, "setting"))
	typ, known := lightfield.Settings[setting]
	if !known {
		http.Error(w, "setting not known to this server, see /setting", http.StatusNotFound)
		return
	}
	var (
		value interface{}
		err   error
	)
	defer r.Body.Close()
	switch typ {
	case "float":
		f := server.FloatT{}
		err = json.NewDecoder(r.Body).Decode(&f)
		value = f.F64
	case "string":
		s := server.StrT{}
		err = json.NewDecoder(r.Body).Decode(&s)
		value = s.Str
	case "bool":
		b := server.BoolT{}
		err = json.NewDecoder(r.Body).Decode(&b)
		value = b.Bool
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	err = h.S.Apply(setting, value)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}
