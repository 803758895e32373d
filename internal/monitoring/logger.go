// Package monitoring holds the process-wide diagnostic log hooks. Library
// packages log through Logf and Warnf; binaries decide where the output goes.
package monitoring

import (
	"log"

	"go.uber.org/zap"
)

// Logf is the package-level diagnostic logger. It defaults to log.Printf but may
// be replaced by SetLogger. Tests or production code can redirect or mute it.
var Logf func(format string, v ...interface{}) = log.Printf

// warnf receives warnings. It follows Logf unless SetWarnLogger overrides it.
var warnf func(format string, v ...interface{})

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// SetWarnLogger routes warnings to f. Passing nil sends them back to Logf.
func SetWarnLogger(f func(format string, v ...interface{})) {
	warnf = f
}

// Warnf logs a recoverable condition, such as a request the caller asked for
// that was ignored.
func Warnf(format string, v ...interface{}) {
	if warnf != nil {
		warnf(format, v...)
		return
	}
	Logf("WARNING: "+format, v...)
}

// UseZap routes Logf to l at info level and Warnf at warn level. It returns
// a function that restores the previous hooks.
func UseZap(l *zap.Logger) (restore func()) {
	prevLog, prevWarn := Logf, warnf
	sugar := l.WithOptions(zap.AddCallerSkip(1)).Sugar()
	Logf = sugar.Infof
	warnf = sugar.Warnf
	return func() {
		Logf, warnf = prevLog, prevWarn
	}
}
