package testutil

import (
	"errors"
	"net/http"
	"testing"
)

// The assert helpers report through the passed *testing.T, so only the
// passing paths are exercised directly; the failing paths are covered by
// every suite that uses them against real handlers.

func TestAssertStatusCode(t *testing.T) {
	AssertStatusCode(t, http.StatusOK, http.StatusOK)
	AssertStatusCode(t, http.StatusNotFound, http.StatusNotFound)
}

func TestAssertNoError(t *testing.T) {
	AssertNoError(t, nil)
}

func TestAssertError(t *testing.T) {
	AssertError(t, errors.New("expected"))
}

func TestRequestAndRecorderFixtures(t *testing.T) {
	req := NewTestRequest(http.MethodGet, "/api/stats")
	if req.Method != http.MethodGet || req.URL.Path != "/api/stats" {
		t.Errorf("request = %s %s", req.Method, req.URL.Path)
	}
	if NewTestRecorder() == nil {
		t.Fatal("recorder is nil")
	}
}
