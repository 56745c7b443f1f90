package anaheim_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi"

	"github.com/nasa-jpl/steplab/anaheim"
	"github.com/nasa-jpl/steplab/generichttp"
)

func mockRouter() (*anaheim.Mock, chi.Router) {
	m := anaheim.NewMock()
	w := anaheim.NewHTTPWrapper(m)
	r := chi.NewRouter()
	w.RT().Bind(r)
	return m, r
}

func TestHTTPGetBaseSpeed(t *testing.T) {
	_, r := mockRouter()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/basespeed", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	payload := generichttp.IntT{}
	if err := json.NewDecoder(w.Body).Decode(&payload); err != nil {
		t.Fatal(err)
	}
	if payload.Int != 200 {
		t.Errorf("expected factory default 200, got %d", payload.Int)
	}
}

func TestHTTPSetDirection(t *testing.T) {
	m, r := mockRouter()
	w := httptest.NewRecorder()
	body := bytes.NewBufferString(`{"str": "CCW"}`)
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/direction", body))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	d, _ := m.Direction()
	if d != anaheim.CCW {
		t.Errorf("expected CCW, got %s", d)
	}
}

func TestHTTPStepMovesMock(t *testing.T) {
	m, r := mockRouter()
	w := httptest.NewRecorder()
	body := bytes.NewBufferString(`{"steps": 50, "direction": "CW"}`)
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/step", body))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	waitForIdle(t, m)
	pos, _ := m.Position()
	if pos != 50 {
		t.Errorf("expected position 50, got %d", pos)
	}
}

func TestHTTPBadDirectionIsBadRequestEverywhere(t *testing.T) {
	// /direction, /slew, and /step agree that a bad enum is the client's fault
	cases := []struct {
		path, body string
	}{
		{"/direction", `{"str": "up"}`},
		{"/direction", `{"str": "ccw"}`},
		{"/slew", `{"str": "sideways"}`},
	}
	for _, tc := range cases {
		_, r := mockRouter()
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, tc.path, bytes.NewBufferString(tc.body)))
		if w.Code != http.StatusBadRequest {
			t.Errorf("POST %s %s: expected 400, got %d", tc.path, tc.body, w.Code)
		}
	}
}

func TestHTTPStepBadDirectionIsBadRequest(t *testing.T) {
	_, r := mockRouter()
	w := httptest.NewRecorder()
	body := bytes.NewBufferString(`{"steps": 50, "direction": "up"}`)
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/step", body))
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for a bad direction, got %d", w.Code)
	}
}

func TestHTTPSlewAndStop(t *testing.T) {
	m, r := mockRouter()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/slew", bytes.NewBufferString(`{"str": "CW"}`)))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 starting slew, got %d", w.Code)
	}
	time.Sleep(10 * time.Millisecond)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/stop", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 stopping, got %d", w.Code)
	}
	if m.Moving() {
		t.Error("expected motion to stop")
	}
}

func TestHTTPErrorRegister(t *testing.T) {
	_, r := mockRouter()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/error-register", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	payload := generichttp.IntT{}
	if err := json.NewDecoder(w.Body).Decode(&payload); err != nil {
		t.Fatal(err)
	}
	if payload.Int != 0 {
		t.Errorf("expected clean error register, got %d", payload.Int)
	}
}

func TestHTTPRawRouteOnlyForRawers(t *testing.T) {
	// the mock does not implement Raw, so the route must not exist
	_, r := mockRouter()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/raw", bytes.NewBufferString(`{"str": "VB"}`)))
	if w.Code == http.StatusOK {
		t.Error("mock should not serve /raw")
	}
}
