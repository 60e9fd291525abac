package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/osel/golightfield/generichttp/spectrometer"
	"github.com/osel/golightfield/lightfield"
	"github.com/osel/golightfield/lightfield/sim"
	"github.com/osel/golightfield/server"
	"github.com/osel/golightfield/server/middleware/locker"
	"github.com/osel/golightfield/server/middleware/throttle"
	"github.com/osel/golightfield/spectra"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
)

// Config holds the initialization parameters for the server.  It is
// populated from lightfield.yml by koanf.
type Config struct {
	// Addr is the address to listen at
	Addr string `yaml:"Addr"`

	// Mock runs against the simulator instead of a LightField install
	Mock bool `yaml:"Mock"`

	// ShowUI displays the LightField interface when launching it
	ShowUI bool `yaml:"ShowUI"`

	// AppPath is the LightField executable; empty uses the stock location
	AppPath string `yaml:"AppPath"`

	// Experiment is a stored experiment to load at startup
	Experiment string `yaml:"Experiment"`

	// DataFolder is where acquisition output lands and is served from
	DataFolder string `yaml:"DataFolder"`

	// Endpoint is the URL prefix control routes are served under
	Endpoint string `yaml:"Endpoint"`

	// RateLimit is the sustained requests/sec allowed to the instrument;
	// zero disables the limiter
	RateLimit float64 `yaml:"RateLimit"`
}

// BuildMux assembles the root router from the config.  It returns the
// router and a closer which must run at shutdown: LightField corrupts
// state for the next session if it is not torn down.
//
// With Mock true the full control surface runs against the simulator.
// Without it, this host only launches the application and serves the
// data folder; the settings routes need an automation binding (the CLR
// shim), which plugs in through the lightfield.Automation seam.
func BuildMux(c Config) (chi.Router, func() error, error) {
	root := chi.NewRouter()
	root.Use(middleware.Logger)

	lk := locker.New()
	closer := func() error { return nil }

	if c.Mock {
		auto := sim.New(sim.WithStartupDelay(2 * time.Second))
		ctl := lightfield.New(auto)
		err := ctl.Open(c.Experiment)
		if err != nil {
			return nil, nil, err
		}
		err = ctl.SetSaveDirectory(c.DataFolder)
		if err != nil {
			return nil, nil, err
		}
		wrap := spectrometer.NewHTTPWrapper(ctl)
		locker.Inject(wrap, lk)
		mux := server.Mux(wrap)
		handler := lk.Check(mux)
		if c.RateLimit > 0 {
			th := throttle.New(c.RateLimit, 5)
			handler = th.Check(handler)
		}
		// chi's Mount does not rewrite r.URL.Path for foreign handlers and
		// goji routes on the URL path, so the prefix must be stripped here
		root.Mount(c.Endpoint, http.StripPrefix(c.Endpoint, handler))
		closer = ctl.Close
	} else {
		cmd, err := lightfield.StartApp(c.AppPath, lightfield.LaunchOptions{
			ShowUI:     c.ShowUI,
			Experiment: c.Experiment})
		if err != nil {
			return nil, nil, fmt.Errorf("unable to launch LightField: %v", err)
		}
		log.Printf("LightField started, pid %d; control routes need the automation shim, serving data only", cmd.Process.Pid)
		closer = lightfield.KillWorker
	}

	files := spectra.NewHTTPWrapper(c.DataFolder)
	root.Mount("/data", http.StripPrefix("/data", server.Mux(files)))
	return root, closer, nil
}
