// Package monitoring carries the service-wide diagnostic log hook. The
// watchdog, notifier and maintenance loops all log through Logf so a
// deployment can redirect the stream and tests can silence it.
package monitoring

import "log"

// Logf is the shared log function. It starts as log.Printf; replace it
// via SetLogger.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger swaps the log function. nil installs a no-op, which is what
// test setups use to keep detector chatter out of test output.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}
