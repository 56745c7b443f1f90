package anaheim

import (
	"encoding/json"
	"net/http"

	"github.com/nasa-jpl/steplab/generichttp"
	"github.com/nasa-jpl/steplab/generichttp/ascii"
)

// StepT is the json body of a step command
type StepT struct {
	Steps     int    `json:"steps"`
	Direction string `json:"direction"`
}

// HTTPWrapper provides HTTP bindings on top of the underlying Go interface
type HTTPWrapper struct {
	// Controller is the underlying device
	Controller MotorController

	// RouteTable maps methods and paths to handlers
	RouteTable generichttp.RouteTable
}

// NewHTTPWrapper returns a new HTTP wrapper with the route table pre-configured
func NewHTTPWrapper(c MotorController) HTTPWrapper {
	w := HTTPWrapper{Controller: c}
	rt := generichttp.RouteTable{
		{Method: http.MethodGet, Path: "/basespeed"}:      generichttp.GetInt(c.BaseSpeed),
		{Method: http.MethodPost, Path: "/basespeed"}:     generichttp.SetInt(c.SetBaseSpeed),
		{Method: http.MethodGet, Path: "/maxspeed"}:       generichttp.GetInt(c.MaxSpeed),
		{Method: http.MethodPost, Path: "/maxspeed"}:      generichttp.SetInt(c.SetMaxSpeed),
		{Method: http.MethodGet, Path: "/direction"}:      generichttp.GetString(w.direction),
		{Method: http.MethodPost, Path: "/direction"}:     directionHandler(c.SetDirection),
		{Method: http.MethodGet, Path: "/steps"}:          generichttp.GetInt(c.Steps),
		{Method: http.MethodPost, Path: "/steps"}:         generichttp.SetInt(c.SetSteps),
		{Method: http.MethodGet, Path: "/pos"}:            generichttp.GetInt(c.Position),
		{Method: http.MethodPost, Path: "/pos"}:           generichttp.SetInt(c.SetPosition),
		{Method: http.MethodGet, Path: "/error-register"}: generichttp.GetInt(c.ErrorRegister),
		{Method: http.MethodPost, Path: "/stop"}:          command(c.Stop),
		{Method: http.MethodPost, Path: "/go"}:            command(c.Go),
		{Method: http.MethodPost, Path: "/step"}:          w.httpStep,
		{Method: http.MethodPost, Path: "/slew"}:          directionHandler(c.Slew),
	}
	// the interface{}().(foo); ok syntax is an awful go-ism to test if c implements foo
	if rawer, ok := interface{}(c).(ascii.RawCommunicator); ok {
		ascii.InjectRawComm(rt, rawer)
	}
	w.RouteTable = rt
	return w
}

// RT satisfies the HTTPer interface
func (h HTTPWrapper) RT() generichttp.RouteTable {
	return h.RouteTable
}

func (h HTTPWrapper) direction() (string, error) {
	d, err := h.Controller.Direction()
	return string(d), err
}

// directionHandler parses a json {"str": direction} body and feeds it to fcn.
// A direction that is not CW or CCW is the client's mistake, 400, not a
// device failure
func directionHandler(fcn func(Direction) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := generichttp.StrT{}
		err := json.NewDecoder(r.Body).Decode(&s)
		defer r.Body.Close()
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		err = fcn(Direction(s.Str))
		if err != nil {
			if _, ok := err.(ErrInvalidDirection); ok {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

// httpStep parses a StepT body and triggers the move
func (h HTTPWrapper) httpStep(w http.ResponseWriter, r *http.Request) {
	s := StepT{}
	err := json.NewDecoder(r.Body).Decode(&s)
	defer r.Body.Close()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	err = h.Controller.Step(s.Steps, Direction(s.Direction))
	if err != nil {
		if _, ok := err.(ErrInvalidDirection); ok {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// command wraps an argument-free controller method in an HTTP handler
func command(fcn func() error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := fcn()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}
