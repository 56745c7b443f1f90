package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/theckman/yacspin"

	"github.com/nasa-jpl/steplab/anaheim"

	yml "gopkg.in/yaml.v2"
)

var (
	// Version is the version number.  Typically injected via ldflags with git build
	Version = "1"

	// ConfigFileName is what it sounds like
	ConfigFileName = "steppersrv.yml"
	k              = koanf.New(".")
)

func setupconfig() {
	k.Load(structs.Provider(Config{
		Addr:  ":8000",
		Nodes: []ObjSetup{}}, "koanf"), nil)
	if err := k.Load(file.Provider(ConfigFileName), yaml.Parser()); err != nil {
		errtxt := err.Error()
		if !strings.Contains(errtxt, "no such") { // file missing, who cares
			log.Fatalf("error loading config: %v", err)
		}
	}
}

func root() {
	str := `steppersrv communicates with Anaheim Automation stepper motor controllers
and exposes an HTTP interface to them.  This enables a server-client
architecture, and the clients can leverage the excellent HTTP libraries
for any programming language.

Usage:
	steppersrv <command>

Commands:
	run
	scan
	help
	mkconf
	conf
	version`
	fmt.Println(str)
}

func help() {
	str := `steppersrv is amenable to configuration via its .yaml file.  For a primer on
YAML, see https://yaml.org/start.html

Without a configuration, the server will close immediately and display an error
that there are no endpoints.

No two endpoints can have the same URL.

URLs may look like any variation between "omc/stepper" or "/omc/stepper/*",
the leading and trailing slashes, as well as the *, are added by the server
if missing.

Each node is one serial line or terminal server port.  A line with a single
controller uses the node's IDN and Endpoint; a multi-drop line lists each
controller under DaisyChain and the per-controller values are used instead.

The scan command probes every address on each configured line and prints the
ones that answered.  Unpopulated addresses have to time out, so a full scan
takes a minute or two per line.`
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
	fmt.Printf("steppersrv version %v\n", Version)
}

func scan() {
	c := Config{}
	err := k.Unmarshal("", &c)
	if err != nil {
		log.Fatal(err)
	}
	if len(c.Nodes) == 0 {
		log.Fatal("no nodes configured, nothing to scan")
	}
	for _, node := range c.Nodes {
		spinner, err := yacspin.New(yacspin.Config{
			Frequency: 100 * time.Millisecond,
			CharSet:   yacspin.CharSets[59],
			Suffix:    fmt.Sprintf(" scanning %s", node.Addr),
		})
		if err != nil {
			log.Fatal(err)
		}
		network := anaheim.NewNetwork(node.Addr, node.Serial)
		spinner.Start()
		live := network.Scan(100)
		spinner.Stop()
		fmt.Printf("%s: %d controllers found %v\n", node.Addr, len(live), live)
	}
}

func run() {
	c := Config{}
	err := k.Unmarshal("", &c)
	if err != nil {
		log.Fatal(err)
	}
	mux := BuildMux(c)
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
	case "scan":
		scan()
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
