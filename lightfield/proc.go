package lightfield

import (
	"os/exec"
)

const (
	// WorkerProcess is the executable name of the add-in host worker
	// LightField spawns to run automation code.  It outlives crashes of
	// the main application and must be killed by name at teardown.
	WorkerProcess = "AddInProcess.exe"

	// DefaultAppPath is where a stock LightField install puts the
	// application binary.
	DefaultAppPath = `C:\Program Files\Princeton Instruments\LightField\LightField.exe`
)

// LaunchOptions controls how the LightField application is started.
type LaunchOptions struct {
	// ShowUI displays the full application interface; automation works
	// either way
	ShowUI bool

	// Experiment, if non-empty, is a stored experiment to load at startup
	Experiment string
}

// LaunchArgs builds the argument vector for the LightField executable.
// It is split from StartApp so the vector can be inspected or handed to a
// remote process manager.
func LaunchArgs(opts LaunchOptions) []string {
	args := []string{"/automation"}
	if opts.ShowUI {
		args = append(args, "/showui")
	}
	if opts.Experiment != "" {
		args = append(args, "/experiment:"+opts.Experiment)
	}
	return args
}

// StartApp launches the LightField application at path with the given
// options and returns without waiting for it to exit.  Readiness is not
// signalled by the process; Controller.Open polls for it.
func StartApp(path string, opts LaunchOptions) (*exec.Cmd, error) {
	if path == "" {
		path = DefaultAppPath
	}
	cmd := exec.Command(path, LaunchArgs(opts)...)
	err := cmd.Start()
	if err != nil {
		return nil, err
	}
	return cmd, nil
}

// KillWorker forcibly terminates the add-in worker process by executable
// name.  There is no graceful shutdown handshake; this blunt kill is the
// vendor-sanctioned teardown, and skipping it can corrupt state for the
// next session.
func KillWorker() error {
	return exec.Command("taskkill", "/IM", WorkerProcess, "/F").Run()
}
