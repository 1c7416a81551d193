package report

import (
	"os"
	"sync"

	"github.com/pterm/pterm"
	"golang.org/x/term"
)

// Reporter is responsible for reporting errors, warnings, and other kinds of
// messages to the user during compilation.  The reporter respects the set log
// level and is synchronized: its methods can be safely called from multiple
// goroutines.
type Reporter struct {
	// The mutex used to synchonize different report calls.
	m *sync.Mutex

	// The selected log level of the reporter.  This must be one of the
	// enumerated log levels below.
	logLevel int

	// The number of errors reported so far.
	errorCount int

	// Warnings are buffered and displayed at the end of compilation.
	warnings []string
}

// Enumeration of the different possible log levels.
const (
	LogLevelSilent  = iota // Displays no output.
	LogLevelError          // Displays only errors to the user.
	LogLevelWarn           // Displays only warnings and errors to the user.
	LogLevelVerbose        // Displays all compilation messages to the user (default).
)

// rep is the global reporter instance.
var rep = &Reporter{m: &sync.Mutex{}, logLevel: LogLevelVerbose}

// InitReporter initializes the global reporter to the given log level.  Any
// previously recorded errors and warnings are discarded.  Styling is turned
// off when standard output is not a terminal.
func InitReporter(logLevel int) {
	rep.m.Lock()
	defer rep.m.Unlock()

	rep.logLevel = logLevel
	rep.errorCount = 0
	rep.warnings = nil

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		pterm.DisableColor()
	}
}

// ParseLogLevel converts a log level name into its enumerated value.  The
// second return value is false if the name is not a valid log level.
func ParseLogLevel(name string) (int, bool) {
	switch name {
	case "silent":
		return LogLevelSilent, true
	case "error":
		return LogLevelError, true
	case "warn":
		return LogLevelWarn, true
	case "verbose":
		return LogLevelVerbose, true
	}

	return LogLevelVerbose, false
}

// LogLevel returns the current log level of the global reporter.
func LogLevel() int {
	return rep.logLevel
}

// Warnings returns the warnings buffered so far.
func Warnings() []string {
	rep.m.Lock()
	defer rep.m.Unlock()

	return append([]string(nil), rep.warnings...)
}

// AnyErrors returns whether or not any errors have been reported.
func AnyErrors() bool {
	rep.m.Lock()
	defer rep.m.Unlock()

	return rep.errorCount > 0
}
