// Package generichttp defines interfaces for generic devices
// and an extensible type that wraps them in an HTTP interface
package generichttp

import (
	"encoding/json"
	"go/types"
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi"
)

// MethodPath is a route on an HTTP mux; the HTTP method and the URL path
type MethodPath struct {
	Method string
	Path   string
}

// RouteTable maps MethodPaths to handler funcs
type RouteTable map[MethodPath]http.HandlerFunc

// Bind attaches every route in the table to r
func (rt RouteTable) Bind(r chi.Router) {
	for mp, handler := range rt {
		r.Method(mp.Method, mp.Path, handler)
	}
}

// Endpoints returns the sorted list of routes in the table,
// formatted as "METHOD path"
func (rt RouteTable) Endpoints() []string {
	endpts := make([]string, 0, len(rt))
	for mp := range rt {
		endpts = append(endpts, mp.Method+" "+mp.Path)
	}
	sort.Strings(endpts)
	return endpts
}

// HTTPer is an object which can return its route table
type HTTPer interface {
	RT() RouteTable
}

// SubMuxSanitize prepares a user-provided URL stem for mounting as a submux,
// "omc/nkt" => "/omc/nkt/*"
func SubMuxSanitize(s string) string {
	if !strings.HasPrefix(s, "/") {
		s = "/" + s
	}
	s = strings.TrimSuffix(s, "/")
	if !strings.HasSuffix(s, "/*") {
		s = s + "/*"
	}
	return s
}

// FloatT is a struct with a single float64 field, for json in/out
type FloatT struct {
	F64 float64 `json:"f64"`
}

// IntT is a struct with a single int field, for json in/out
type IntT struct {
	Int int `json:"int"`
}

// StrT is a struct with a single string field, for json in/out
type StrT struct {
	Str string `json:"str"`
}

// BoolT is a struct with a single bool field, for json in/out
type BoolT struct {
	Bool bool `json:"bool"`
}

// HumanPayload is a struct containing the basic types cmd/response hardware
// can reply with; use the T field to determine which holds the value
type HumanPayload struct {
	// T holds the type of data actually contained in the payload
	T types.BasicKind

	// Bool holds a binary value
	Bool bool

	// Int holds an int
	Int int

	// Float holds a float64
	Float float64

	// String holds a string
	String string
}

// EncodeAndRespond writes the payload to w as JSON with a
// single-keyed object, e.g. {"f64": 3.14}
func (hp *HumanPayload) EncodeAndRespond(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	var err error
	enc := json.NewEncoder(w)
	switch hp.T {
	case types.Bool:
		err = enc.Encode(BoolT{Bool: hp.Bool})
	case types.Int:
		err = enc.Encode(IntT{Int: hp.Int})
	case types.Float64:
		err = enc.Encode(FloatT{F64: hp.Float})
	case types.String:
		err = enc.Encode(StrT{Str: hp.String})
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// GetFloat calls a float-getting function and returns the response
// as json {'f64': value}
func GetFloat(fcn func() (float64, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := fcn()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		hp := HumanPayload{T: types.Float64, Float: f}
		hp.EncodeAndRespond(w, r)
		return
	}
}

// SetFloat parses a JSON input of {'f64': value} and
// calls fcn with it
func SetFloat(fcn func(float64) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f := FloatT{}
		err := json.NewDecoder(r.Body).Decode(&f)
		defer r.Body.Close()
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		err = fcn(f.F64)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

// GetInt calls an int-getting function and returns the response
// as json {'int': value}
func GetInt(fcn func() (int, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		i, err := fcn()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		hp := HumanPayload{T: types.Int, Int: i}
		hp.EncodeAndRespond(w, r)
		return
	}
}

// SetInt parses a JSON input of {'int': value} and
// calls fcn with it
func SetInt(fcn func(int) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f := IntT{}
		err := json.NewDecoder(r.Body).Decode(&f)
		defer r.Body.Close()
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		err = fcn(f.Int)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

// GetString calls a string-getting function and returns the response
// as json {'str': value}
func GetString(fcn func() (string, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := fcn()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		hp := HumanPayload{T: types.String, String: s}
		hp.EncodeAndRespond(w, r)
		return
	}
}

// SetString parses a JSON input of {'str': value} and
// calls fcn with it
func SetString(fcn func(string) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := StrT{}
		err := json.NewDecoder(r.Body).Decode(&s)
		defer r.Body.Close()
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		err = fcn(s.Str)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

// GetBool calls a bool-getting function and returns the response
// as json {'bool': value}
func GetBool(fcn func() (bool, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := fcn()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		hp := HumanPayload{T: types.Bool, Bool: b}
		hp.EncodeAndRespond(w, r)
		return
	}
}

// SetBool parses a JSON input of {'bool': value} and
// calls fcn with it
func SetBool(fcn func(bool) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b := BoolT{}
		err := json.NewDecoder(r.Body).Decode(&b)
		defer r.Body.Close()
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		err = fcn(b.Bool)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}
