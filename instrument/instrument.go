// Package instrument exposes the process-wide logging and metrics providers
// used by the stream runtime. Both default to no-op implementations, so
// instrumentation costs nothing until a real provider is installed.
package instrument

var (
	activeMeasurer Measurer = &NilMeasurer{}
	activeLogger   Logger   = &NilLogger{}
)

// SetMeasurer installs the metrics provider the runtime reports to. Call it
// once at startup, before any signal or producer is created.
func SetMeasurer(provider Measurer) {
	if provider == nil {
		panic("instrument: nil Measurer")
	}
	activeMeasurer = provider
}

// SetLogger installs the logging provider the runtime writes to. Call it
// once at startup, before any signal or producer is created.
func SetLogger(provider Logger) {
	if provider == nil {
		panic("instrument: nil Logger")
	}
	activeLogger = provider
}

// Metrics returns the installed metrics provider.
func Metrics() Measurer {
	return activeMeasurer
}

// Logging returns the installed logging provider.
func Logging() Logger {
	return activeLogger
}
