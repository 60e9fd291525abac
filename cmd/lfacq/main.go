// Command lfacq runs one or more acquisitions against a LightField
// session from the command line.  Acquisition blocks for the full
// exposure and readout; a spinner shows that the program is not hung.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/osel/golightfield/lightfield"
	"github.com/osel/golightfield/lightfield/sim"
	"github.com/osel/golightfield/util"

	"github.com/go-yaml/yaml"
	"github.com/theckman/yacspin"
)

// Step is one acquisition in a plan file.
type Step struct {
	// Filename is the output file stem
	Filename string `yaml:"Filename"`

	// Exposure is a duration string; bare numbers are seconds
	Exposure string `yaml:"Exposure"`

	// Wavelength is the center wavelength in nm; zero leaves it alone
	Wavelength float64 `yaml:"Wavelength"`

	// Grating is the turret position 0..2; nil leaves it alone
	Grating *int `yaml:"Grating"`

	// Mode is the sensor readout mode 1..4; zero leaves it alone
	Mode int `yaml:"Mode"`
}

// Plan is a yaml file describing a sequence of acquisitions.
type Plan struct {
	// Experiment is a stored experiment to load first
	Experiment string `yaml:"Experiment"`

	// DataFolder is where output lands
	DataFolder string `yaml:"DataFolder"`

	Steps []Step `yaml:"Steps"`
}

func loadPlan(path string) (Plan, error) {
	p := Plan{}
	f, err := os.Open(path)
	if err != nil {
		return p, err
	}
	defer f.Close()
	err = yaml.NewDecoder(f).Decode(&p)
	return p, err
}

func parseExposure(s string) (time.Duration, error) {
	if util.AllElementsNumbers(s) {
		s = s + "s"
	}
	return time.ParseDuration(s)
}

func newSpinner() (*yacspin.Spinner, error) {
	cfg := yacspin.Config{
		Frequency:       100 * time.Millisecond,
		CharSet:         yacspin.CharSets[59],
		Suffix:          " acquiring",
		SuffixAutoColon: true,
		StopCharacter:   "done",
		StopColors:      []string{"fgGreen"},
	}
	return yacspin.New(cfg)
}

func runStep(ctl *lightfield.Controller, spinner *yacspin.Spinner, s Step) error {
	if s.Wavelength != 0 {
		err := ctl.SetCenterWavelength(s.Wavelength)
		if err != nil {
			return err
		}
	}
	if s.Grating != nil {
		err := ctl.SetGrating(lightfield.Grating(*s.Grating))
		if err != nil {
			return err
		}
	}
	if s.Exposure != "" {
		d, err := parseExposure(s.Exposure)
		if err != nil {
			return err
		}
		err = ctl.SetExposureTime(d)
		if err != nil {
			return err
		}
	}
	if s.Mode != 0 {
		err := ctl.SetSensorMode(lightfield.SensorMode(s.Mode))
		if err != nil {
			return err
		}
	}
	spinner.Message(s.Filename)
	err := spinner.Start()
	if err != nil {
		return err
	}
	err = ctl.Acquire(s.Filename)
	if err != nil {
		spinner.StopFailMessage(err.Error())
		spinner.StopFail()
		return err
	}
	return spinner.Stop()
}

func main() {
	var (
		planPath   = flag.String("plan", "", "yaml acquisition plan; overrides the single-shot flags")
		filename   = flag.String("filename", "", "output file stem for a single acquisition")
		exposure   = flag.String("exposure", "", "exposure time, e.g. 250ms; bare numbers are seconds")
		wavelength = flag.Float64("wavelength", 0, "center wavelength in nm; 0 leaves it alone")
		grating    = flag.Int("grating", -1, "grating turret position 0..2; -1 leaves it alone")
		mode       = flag.Int("mode", 0, "sensor readout mode 1..4; 0 leaves it alone")
		experiment = flag.String("experiment", "", "stored experiment to load")
		folder     = flag.String("folder", ".", "folder output lands in")
		mock       = flag.Bool("mock", false, "run against the built-in simulator")
	)
	flag.Parse()

	plan := Plan{Experiment: *experiment, DataFolder: *folder}
	if *planPath != "" {
		var err error
		plan, err = loadPlan(*planPath)
		if err != nil {
			log.Fatalf("error loading plan: %v", err)
		}
	} else {
		if *filename == "" {
			fmt.Println("lfacq: provide -plan or at least -filename, see -help")
			return
		}
		step := Step{Filename: *filename, Exposure: *exposure, Wavelength: *wavelength, Mode: *mode}
		if *grating >= 0 {
			g := *grating
			step.Grating = &g
		}
		plan.Steps = []Step{step}
	}

	if !*mock {
		log.Fatal("lfacq: only -mock sessions run on this host; the native binding requires the automation shim beside LightField")
	}
	ctl := lightfield.New(sim.New())
	err := ctl.Open(plan.Experiment)
	if err != nil {
		log.Fatalf("error attaching to session: %v", err)
	}
	defer ctl.Close()
	if plan.DataFolder != "" {
		err = ctl.SetSaveDirectory(plan.DataFolder)
		if err != nil {
			log.Fatalf("error setting data folder: %v", err)
		}
	}

	spinner, err := newSpinner()
	if err != nil {
		log.Fatal(err)
	}
	for _, step := range plan.Steps {
		err = runStep(ctl, spinner, step)
		if err != nil {
			log.Fatalf("error on %s: %v", step.Filename, err)
		}
	}
}
