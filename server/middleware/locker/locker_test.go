package locker_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nasa-jpl/steplab/server/middleware/locker"
)

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestCheckPassesWhenUnlocked(t *testing.T) {
	l := locker.New()
	h := l.Check(http.HandlerFunc(okHandler))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/go", nil))
	if w.Code != http.StatusOK {
		t.Errorf("expected 200 when unlocked, got %d", w.Code)
	}
}

func TestCheckBouncesWhenLocked(t *testing.T) {
	l := locker.New()
	l.Lock()
	h := l.Check(http.HandlerFunc(okHandler))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/go", nil))
	if w.Code != http.StatusLocked {
		t.Errorf("expected 423 when locked, got %d", w.Code)
	}
}

func TestLockRouteIsNotProtected(t *testing.T) {
	l := locker.New()
	l.Lock()
	h := l.Check(http.HandlerFunc(okHandler))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/lock", nil))
	if w.Code != http.StatusOK {
		t.Errorf("the lock route must stay reachable, got %d", w.Code)
	}
}

func TestHTTPSetTogglesLock(t *testing.T) {
	l := locker.New()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/lock", bytes.NewBufferString(`{"bool": true}`))
	l.HTTPSet(w, req)
	if !l.Locked() {
		t.Error("expected locker to lock via HTTP")
	}
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/lock", bytes.NewBufferString(`{"bool": false}`))
	l.HTTPSet(w, req)
	if l.Locked() {
		t.Error("expected locker to unlock via HTTP")
	}
}
