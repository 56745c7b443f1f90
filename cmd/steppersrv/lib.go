package main

import (
	"encoding/json"
	"net/http"
	"os"

	"github.com/nasa-jpl/steplab/anaheim"
	"github.com/nasa-jpl/steplab/generichttp"
	"github.com/nasa-jpl/steplab/server/middleware/locker"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-yaml/yaml"
)

// Daisy holds a controller address on the line and the endpoint its routes
// are served from
type Daisy struct {
	IDN int `yaml:"IDN"`

	Endpoint string `yaml:"Endpoint"`
}

// ObjSetup holds the parameters for one line of controllers.
type ObjSetup struct {
	// Addr holds the network or filesystem address of the line,
	// e.g. 192.168.100.123:2006 for a device connected to port 6
	// on a digi portserver, or /dev/ttyS4 for an RS232 device on a serial cable
	Addr string `yaml:"Addr"`

	// Endpoint is the final "directory" the routes from this controller are
	// served under, ex. Endpoint="/omc/stepper" produces routes of
	// /omc/stepper/pos, etc.  Ignored when DaisyChain is populated.
	Endpoint string `yaml:"Endpoint"`

	// Serial determines if the connection is serial/RS232 (True) or TCP (False)
	Serial bool `yaml:"Serial"`

	// IDN is the address of the controller on the line, 0-99
	IDN int `yaml:"IDN"`

	// DaisyChain lists further controllers sharing this line.  When populated,
	// IDN and Endpoint above are ignored in favor of the per-controller ones.
	DaisyChain []Daisy `yaml:"DaisyChain"`
}

// Config is a struct that holds the initialization parameters for each line of
// controllers.  It is to be populated by a yaml/unmarshal call.
type Config struct {
	// Addr is the address to listen at
	Addr string `yaml:"Addr"`

	Mock bool `yaml:"Mock"`

	// Nodes is the list of lines to set up
	Nodes []ObjSetup `yaml:"Nodes"`
}

// LoadYaml converts a (path to a) yaml file into a Config struct
func LoadYaml(path string) (Config, error) {
	cfg := Config{}
	f, err := os.Open(path)
	if err != nil {
		return cfg, err
	}
	defer f.Close()

	err = yaml.NewDecoder(f).Decode(&cfg)
	return cfg, err
}

// BuildMux constructs a chi router with one submux per controller and a
// special route, /endpoints, which returns the full route graph as JSON.
func BuildMux(c Config) chi.Router {
	root := chi.NewRouter()
	root.Use(middleware.Logger)
	supergraph := map[string][]string{}

	bind := func(ctl anaheim.MotorController, endpoint string) {
		httper := anaheim.NewHTTPWrapper(ctl)

		// prepare the URL, "omc/stepper" => "/omc/stepper/*"
		hndlS := generichttp.SubMuxSanitize(endpoint)

		// add a lock interface for this node
		lock := locker.New()
		locker.Inject(httper, lock)

		// add the endpoints to the graph, lock routes included
		supergraph[hndlS] = httper.RT().Endpoints()

		r := chi.NewRouter()
		r.Use(lock.Check)
		httper.RT().Bind(r)
		root.Mount(hndlS, r)
	}

	for _, node := range c.Nodes {
		// a single pool is used for every controller on the line
		network := anaheim.NewNetwork(node.Addr, node.Serial)
		chain := node.DaisyChain
		if len(chain) == 0 {
			chain = []Daisy{{IDN: node.IDN, Endpoint: node.Endpoint}}
		}
		for _, daisy := range chain {
			var ctl anaheim.MotorController
			if c.Mock {
				ctl = anaheim.NewMock()
			} else {
				ctl = network.Add(daisy.IDN)
			}
			bind(ctl, daisy.Endpoint)
		}
	}
	root.Get("/endpoints", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		err := json.NewEncoder(w).Encode(supergraph)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
	return root
}
