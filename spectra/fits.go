package spectra

import (
	"io"

	"github.com/astrogo/fitsio"
)

// WriteFITS streams the spectrum to w as a 1D FITS image with a linear
// wavelength WCS in the header.  Extra cards are appended after the WCS.
func WriteFITS(w io.Writer, s Spectrum, extra ...fitsio.Card) error {
	fits, err := fitsio.Create(w)
	if err != nil {
		return err
	}
	defer fits.Close()
	im := fitsio.NewImage(-64, []int{len(s.Counts)})
	defer im.Close()

	cards := []fitsio.Card{
		{Name: "CTYPE1", Value: "WAVE", Comment: "wavelength axis"},
		{Name: "CUNIT1", Value: "nm", Comment: "nanometers"},
	}
	if len(s.Wavelength) > 1 {
		step := (s.Wavelength[len(s.Wavelength)-1] - s.Wavelength[0]) / float64(len(s.Wavelength)-1)
		cards = append(cards,
			fitsio.Card{Name: "CRPIX1", Value: 1.0, Comment: "reference pixel"},
			fitsio.Card{Name: "CRVAL1", Value: s.Wavelength[0], Comment: "wavelength at reference pixel"},
			fitsio.Card{Name: "CDELT1", Value: step, Comment: "wavelength step per pixel"})
	}
	cards = append(cards, extra...)
	err = im.Header().Append(cards...)
	if err != nil {
		return err
	}
	err = im.Write(s.Counts)
	if err != nil {
		return err
	}
	return fits.Write(im)
}
