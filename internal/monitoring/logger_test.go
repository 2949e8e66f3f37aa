package monitoring

import "testing"

func TestSetLoggerRedirects(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	var got string
	SetLogger(func(format string, v ...interface{}) { got = format })
	Logf("watchdog tick")

	if got != "watchdog tick" {
		t.Errorf("redirected logger saw %q", got)
	}
}

func TestSetLoggerNilMutes(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	called := false
	SetLogger(func(string, ...interface{}) { called = true })
	SetLogger(nil)
	Logf("should be dropped")

	if called {
		t.Error("nil logger must install a no-op, not keep the previous hook")
	}
}

func TestLogfDefaultUsable(t *testing.T) {
	if Logf == nil {
		t.Fatal("Logf must have a default")
	}
}
