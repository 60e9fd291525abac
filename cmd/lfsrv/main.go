package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"

	yml "gopkg.in/yaml.v2"
)

var (
	// Version is the version number.  Typically injected via ldflags with git build
	Version = "1"

	// ConfigFileName is what it sounds like
	ConfigFileName = "lightfield.yml"
	k              = koanf.New(".")
)

func setupconfig() {
	k.Load(structs.Provider(Config{
		Addr:       ":8001",
		ShowUI:     true,
		Endpoint:   "/spectrometer",
		DataFolder: ".",
		RateLimit:  20}, "koanf"), nil)
	if err := k.Load(file.Provider(ConfigFileName), yaml.Parser()); err != nil {
		errtxt := err.Error()
		if !strings.Contains(errtxt, "no such") { // file missing, who cares
			log.Fatalf("error loading config: %v", err)
		}
	}
}

func root() {
	str := `lfsrv controls a LightField-driven spectrometer and camera and exposes
an HTTP interface to it.  This enables a server-client architecture, and
the clients can leverage the excellent HTTP libraries for any programming
language.

Usage:
	lfsrv <command>

Commands:
	run
	help
	mkconf
	conf
	version`
	fmt.Println(str)
}

func help() {
	str := `lfsrv is amenable to configuration via its .yaml file.  For a primer on
YAML, see https://yaml.org/start.html

With Mock: true the server runs against a built-in simulator and the full
control surface is live.  Otherwise the server launches LightField on this
host and serves the acquisition data folder; the control routes require
the automation shim to be installed alongside LightField.

Always stop the server with an interrupt rather than killing it: teardown
must kill LightField's add-in worker process, or the next session on this
host can be corrupted.

Routes are served under Endpoint (control) and /data (acquired files).
Every route tree serves route-list for discovery.`
	fmt.Println(str)
}

func mkconf() {
	c := Config{}
	err := k.Unmarshal("", &c)
	if err != nil {
		log.Fatal(err)
	}
	f, err := os.Create(ConfigFileName)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()
	err = yml.NewEncoder(f).Encode(c)
	if err != nil {
		log.Fatal(err)
	}
}

func printconf() {
	c := Config{}
	k.Unmarshal("", &c)
	err := yml.NewEncoder(os.Stdout).Encode(c)
	if err != nil {
		log.Fatal(err)
	}
}

func pversion() {
	fmt.Printf("lfsrv version %v\n", Version)
}

func run() {
	c := Config{}
	err := k.Unmarshal("", &c)
	if err != nil {
		log.Fatal(err)
	}
	mux, closer, err := BuildMux(c)
	if err != nil {
		log.Fatal(err)
	}

	// teardown is mandatory, not best-effort; trap interrupts to get it
	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt)
	go func() {
		<-interrupts
		err := closer()
		if err != nil {
			log.Printf("error during teardown, %v", err)
		}
		os.Exit(0)
	}()

	log.Println("now listening for requests at ", c.Addr)
	log.Fatal(http.ListenAndServe(c.Addr, mux))
}

func main() {
	var cmd string
	args := os.Args
	if len(args) == 1 {
		root()
		return
	}
	setupconfig()
	cmd = args[1]
	cmd = strings.ToLower(cmd)
	switch cmd {
	case "help":
		help()
		return
	case "mkconf":
		mkconf()
		return
	case "conf":
		printconf()
		return
	case "run":
		run()
		return
	case "version":
		pversion()
		return
	default:
		log.Fatal("unknown command")
	}
}
