// Package monitoring holds the package-level diagnostic logger used by the
// command and pipeline layers. Library packages return errors instead of
// logging.
package monitoring

import "log"

// Logf is the package-level diagnostic logger. It defaults to log.Printf but
// may be replaced by SetLogger. Tests and the -quiet flag mute it.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// Warnf logs through Logf with a "warning: " prefix.
func Warnf(format string, v ...interface{}) {
	Logf("warning: "+format, v...)
}
