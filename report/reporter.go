// Package report displays diagnostics and progress to the user. Nothing in
// the analysis packages prints: the driver routes everything through here.
package report

import (
	"sync"

	"cool-semant/semant"
)

// Enumeration of the different log levels.
const (
	LogLevelSilent  = iota // no output at all
	LogLevelError          // only errors and the closing message
	LogLevelWarn           // errors, warnings and the closing message
	LogLevelVerbose        // everything, including phase progress (default)
)

// reporter counts and displays the messages of one run.
type reporter struct {
	LogLevel   int
	errorCount int
	warnings   []warning
	m          *sync.Mutex
}

type warning struct {
	tag, msg string
}

// rep is the global reporter.
var rep = reporter{LogLevel: LogLevelVerbose, m: &sync.Mutex{}}

// LevelFromName converts a log level name. Unknown names give verbose.
func LevelFromName(name string) int {
	switch name {
	case "silent":
		return LogLevelSilent
	case "error":
		return LogLevelError
	case "warn":
		return LogLevelWarn
	default:
		return LogLevelVerbose
	}
}

// InitReporter resets the global reporter to the given log level.
func InitReporter(logLevel int) {
	rep = reporter{LogLevel: logLevel, m: &sync.Mutex{}}
}

// ShouldProceed reports whether no error has been reported so far.
func ShouldProceed() bool {
	return rep.errorCount == 0
}

func ErrorCount() int {
	return rep.errorCount
}

func WarningCount() int {
	rep.m.Lock()
	defer rep.m.Unlock()
	return len(rep.warnings)
}

// ReportError reports a driver error such as a missing file.
func ReportError(tag string, err error) {
	rep.m.Lock()
	defer rep.m.Unlock()

	rep.errorCount++
	if rep.LogLevel > LogLevelSilent {
		displayEndPhase(false)
		PrintErrorMessage(tag, err)
	}
}

// ReportDiagnostics reports the semantic errors of an analysis.
func ReportDiagnostics(diags []semant.Diagnostic) {
	rep.m.Lock()
	defer rep.m.Unlock()

	rep.errorCount += len(diags)
	if rep.LogLevel == LogLevelSilent || len(diags) == 0 {
		return
	}
	displayEndPhase(false)
	for _, d := range diags {
		displayDiagnostic(d)
	}
}

// ReportHalt displays the message that ends a failed analysis. The errors
// behind it have already been counted.
func ReportHalt(err error) {
	if rep.LogLevel > LogLevelSilent {
		ErrorColorFG.Println(err.Error())
	}
}

// ReportSyntaxErrors reports parser errors, already rendered with their
// location.
func ReportSyntaxErrors(errs []string) {
	rep.m.Lock()
	defer rep.m.Unlock()

	rep.errorCount += len(errs)
	if rep.LogLevel == LogLevelSilent || len(errs) == 0 {
		return
	}
	displayEndPhase(false)
	for _, msg := range errs {
		displaySyntaxError(msg)
	}
}

// ReportWarning records a warning. Warnings are displayed when the run
// finishes.
func ReportWarning(tag, msg string) {
	rep.m.Lock()
	defer rep.m.Unlock()
	rep.warnings = append(rep.warnings, warning{tag, msg})
}

// -----------------------------------------------------------------------------
// The functions below only display at the verbose log level.

// ReportHeader displays the input file and the active checking rules.
func ReportHeader(version, input string, opts semant.Options) {
	if rep.LogLevel == LogLevelVerbose {
		displayHeader(version, input, opts)
	}
}

// BeginPhase starts the progress spinner for phase.
func BeginPhase(phase string) {
	if rep.LogLevel == LogLevelVerbose {
		displayBeginPhase(phase)
	}
}

// EndPhase stops the progress spinner. Failure is decided by the errors
// reported since the phase began.
func EndPhase() {
	if rep.LogLevel == LogLevelVerbose {
		displayEndPhase(ShouldProceed())
	}
}

// ReportOutput tells the user where an output file was written.
func ReportOutput(kind, path string) {
	if rep.LogLevel == LogLevelVerbose {
		PrintInfoMessage(kind, path)
	}
}

// ReportFinished displays pending warnings and the closing summary.
func ReportFinished() {
	if rep.LogLevel >= LogLevelWarn {
		for _, w := range rep.warnings {
			PrintWarningMessage(w.tag, w.msg)
		}
	}
	if rep.LogLevel > LogLevelSilent {
		displayFinished(ShouldProceed(), rep.errorCount, len(rep.warnings))
	}
}
