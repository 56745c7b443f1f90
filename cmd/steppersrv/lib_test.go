package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestBuildMuxReportsLockRoutes(t *testing.T) {
	c := Config{
		Addr: ":8000",
		Mock: true,
		Nodes: []ObjSetup{
			{Endpoint: "omc/stepper", IDN: 1}}}
	mux := BuildMux(c)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/endpoints", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 from /endpoints, got %d", w.Code)
	}
	graph := map[string][]string{}
	if err := json.NewDecoder(w.Body).Decode(&graph); err != nil {
		t.Fatal(err)
	}
	endpts, ok := graph["/omc/stepper/*"]
	if !ok {
		t.Fatalf("expected /omc/stepper/* in the graph, got %v", graph)
	}
	found := false
	for _, e := range endpts {
		if e == "GET /lock" {
			found = true
		}
	}
	if !found {
		t.Errorf("the endpoint list must include the lock routes, got %v", endpts)
	}
}

func TestBuildMuxServesMockNodes(t *testing.T) {
	c := Config{
		Addr: ":8000",
		Mock: true,
		Nodes: []ObjSetup{
			{Endpoint: "omc/stepper", IDN: 1}}}
	mux := BuildMux(c)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/omc/stepper/basespeed", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}
