package lightfield

// Setting is an opaque key naming one configurable parameter in the
// LightField experiment context.  The values mirror the names used by the
// vendor's AddIns object model, so a log line here can be compared 1:1
// against the automation documentation.
type Setting string

// settings known to this package.  LightField has hundreds more; these are
// the ones the facade fronts.  Anything else can still be reached through
// Controller.Apply with an ad-hoc key.
const (
	// GratingCenterWavelength is the spectrometer center wavelength in nm
	GratingCenterWavelength Setting = "SpectrometerSettings.GratingCenterWavelength"

	// GratingSelected is the active grating, encoded as a descriptor string,
	// see Grating.Descriptor
	GratingSelected Setting = "SpectrometerSettings.Grating"

	// ExposureTime is the camera shutter exposure time in milliseconds
	ExposureTime Setting = "CameraSettings.ShutterTimingExposureTime"

	// RegionsOfInterestSelection is the sensor readout mode, see SensorMode
	RegionsOfInterestSelection Setting = "CameraSettings.ReadoutControlRegionsOfInterestSelection"

	// BaseFilename is the stem of files written by acquisition
	BaseFilename Setting = "ExperimentSettings.FileNameGenerationBaseFileName"

	// AttachIncrement appends an incrementing counter to saved filenames
	AttachIncrement Setting = "ExperimentSettings.FileNameGenerationAttachIncrement"

	// AttachDate appends the current date to saved filenames
	AttachDate Setting = "ExperimentSettings.FileNameGenerationAttachDate"

	// AttachTime appends the current time of day to saved filenames
	AttachTime Setting = "ExperimentSettings.FileNameGenerationAttachTime"

	// SaveDirectory is the folder acquisition output is written to
	SaveDirectory Setting = "ExperimentSettings.FileNameGenerationDirectory"
)

// Settings maps settings to "types" without using the types pkg, in the
// same manner the vendor's enum metadata does.  It drives the generic
// /setting HTTP routes.
var Settings = map[Setting]string{
	// floats
	GratingCenterWavelength:    "float",
	ExposureTime:               "float",
	RegionsOfInterestSelection: "float", // an enum, but the vendor wants a float

	// strings
	GratingSelected: "string",
	BaseFilename:    "string",
	SaveDirectory:   "string",

	// bools
	AttachIncrement: "bool",
	AttachDate:      "bool",
	AttachTime:      "bool",
}

// Grating identifies one of the three turret positions on the SP-500i.
// The integer values are the turret position codes.
type Grating int

const (
	// GratingMirror is the flat mirror, turret position 0
	GratingMirror Grating = iota

	// Grating900 is the 900 g/mm grating blazed at 550 nm, turret position 1
	Grating900

	// Grating300 is the 300 g/mm grating blazed at 750 nm, turret position 2
	Grating300
)

// Descriptor returns the string LightField uses to identify g, formatted
// as [<blaze>,<density>][<turret position>][0].  Unknown gratings return
// ErrUnknownGrating; there is no silent fallthrough.
func (g Grating) Descriptor() (string, error) {
	switch g {
	case GratingMirror:
		return "[Mirror,1200][0][0]", nil
	case Grating900:
		return "[550nm,900][1][0]", nil
	case Grating300:
		return "[750nm,300][2][0]", nil
	}
	return "", ErrUnknownGrating{Grating: g}
}

// SensorMode selects how the sensor is read out during acquisition.
// The integer values are the vendor's enum codes.
type SensorMode int

const (
	// FullSensor reads the entire sensor area
	FullSensor SensorMode = iota + 1

	// BinnedRows bins all rows into one spectrum
	BinnedRows

	// SingleRow reads a single sensor row
	SingleRow

	// CustomROI reads the regions programmed with SetCustomROI
	CustomROI
)

// Valid returns an error if m is not one of the four readout modes.
func (m SensorMode) Valid() error {
	if m < FullSensor || m > CustomROI {
		return ErrUnknownSensorMode{Mode: m}
	}
	return nil
}

// ROI describes a rectangular readout region on the sensor with
// independent binning on each axis.  It is a value object; the facade
// does not retain it.
type ROI struct {
	// X is the pixel index of the left border
	X int `json:"x"`

	// Y is the pixel index of the top border
	Y int `json:"y"`

	// Width is the width of the region in pixels
	Width int `json:"width"`

	// Height is the height of the region in pixels
	Height int `json:"height"`

	// XBinning is the number of columns combined per readout element
	XBinning int `json:"xBinning"`

	// YBinning is the number of rows combined per readout element
	YBinning int `json:"yBinning"`
}
