package monitoring

import "log"

// Logf is the package-level diagnostic logger. It defaults to log.Printf but may
// be replaced by SetLogger. Tests or production code can redirect or mute it.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// Infof logs progress messages (run discovery, stage completion).
func Infof(format string, v ...interface{}) {
	Logf("INFO: "+format, v...)
}

// Warnf logs recoverable conditions: a missing band file, an unparseable
// folder name. The affected unit of work is skipped, siblings continue.
func Warnf(format string, v ...interface{}) {
	Logf("WARN: "+format, v...)
}

// Errorf logs unexpected per-unit failures (I/O errors, malformed CSV).
func Errorf(format string, v ...interface{}) {
	Logf("ERROR: "+format, v...)
}
