/*Package spectra reads the delimited spectrum files LightField exports and
converts them for client consumption (json, FITS, or the raw file).

The export layout is positional: column index 2 holds the wavelength axis
and column index 5 the intensity.  The file ends with a footer line which
is dropped.  The column headers are retained only as axis labels; the
labels never substitute for the data.
*/
package spectra

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
)

// column indices in the LightField export
const (
	colWavelength = 2
	colIntensity  = 5
)

// Spectrum is one acquired spectrum: a wavelength axis, the counts on it,
// and the axis labels from the file header.
type Spectrum struct {
	// Wavelength is the wavelength axis, nominally in nm
	Wavelength []float64 `json:"wavelength"`

	// Counts is the intensity at each wavelength
	Counts []float64 `json:"counts"`

	// XLabel is the header name of the wavelength column
	XLabel string `json:"xLabel"`

	// YLabel is the header name of the intensity column
	YLabel string `json:"yLabel"`
}

// Load parses a LightField export from r.
func Load(r io.Reader) (Spectrum, error) {
	spec := Spectrum{}
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // the footer line is ragged
	records, err := cr.ReadAll()
	if err != nil {
		return spec, err
	}
	if len(records) == 0 {
		return spec, fmt.Errorf("spectra: file is empty")
	}
	for i, rec := range records {
		if len(rec) <= colIntensity {
			continue // footer or blank line
		}
		wvl, errX := strconv.ParseFloat(rec[colWavelength], 64)
		cts, errY := strconv.ParseFloat(rec[colIntensity], 64)
		if errX != nil || errY != nil {
			if i == 0 {
				// header row, keep the names as labels
				spec.XLabel = rec[colWavelength]
				spec.YLabel = rec[colIntensity]
				continue
			}
			return spec, fmt.Errorf("spectra: row %d is not numeric: %v", i, rec)
		}
		spec.Wavelength = append(spec.Wavelength, wvl)
		spec.Counts = append(spec.Counts, cts)
	}
	if len(spec.Wavelength) == 0 {
		return spec, fmt.Errorf("spectra: no data rows in file")
	}
	return spec, nil
}

// LoadFile parses a LightField export at path.
func LoadFile(path string) (Spectrum, error) {
	f, err := os.Open(path)
	if err != nil {
		return Spectrum{}, err
	}
	defer f.Close()
	return Load(f)
}
