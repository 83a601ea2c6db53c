package report

import (
	"errors"
	"testing"

	"cool-semant/semant"

	"github.com/nalgeon/be"
)

func TestLevelFromName(t *testing.T) {
	tests := []struct {
		name string
		want int
	}{
		{"silent", LogLevelSilent},
		{"error", LogLevelError},
		{"warn", LogLevelWarn},
		{"verbose", LogLevelVerbose},
		{"", LogLevelVerbose},
		{"loud", LogLevelVerbose},
	}

	for _, tt := range tests {
		be.Equal(t, LevelFromName(tt.name), tt.want)
	}
}

func TestErrorCounting(t *testing.T) {
	InitReporter(LogLevelSilent)
	be.True(t, ShouldProceed())

	ReportDiagnostics(nil)
	be.True(t, ShouldProceed())

	ReportDiagnostics([]semant.Diagnostic{
		{Filename: "a.cl", Line: 3, Message: "Undefined variable x."},
		{Message: "Class Main is not defined."},
	})
	be.Equal(t, ErrorCount(), 2)
	be.True(t, !ShouldProceed())

	ReportSyntaxErrors([]string{"a.cl:1: unexpected ;"})
	ReportError("Config", errors.New("bad file"))
	be.Equal(t, ErrorCount(), 4)

	ReportWarning("Config", "no settings file")
	be.Equal(t, ErrorCount(), 4)
	be.Equal(t, WarningCount(), 1)

	ReportFinished()

	InitReporter(LogLevelSilent)
	be.Equal(t, ErrorCount(), 0)
	be.Equal(t, WarningCount(), 0)
}

func TestEnabledRules(t *testing.T) {
	be.Equal(t, len(enabledRules(semant.Options{})), 0)
	be.Equal(t, enabledRules(semant.Options{StrictNames: true, CheckMethodReturns: true}),
		[]string{"strict-names", "check-method-returns"})
}

func TestPhasePadding(t *testing.T) {
	be.Equal(t, len(phasePadding(semant.PhaseHierarchy)), 2)
	be.Equal(t, len(phasePadding(semant.PhaseTypeCheck)), maxPhaseLength-len(semant.PhaseTypeCheck)+2)
	be.Equal(t, phasePadding("a phase name longer than any other"), "  ")
}

func TestEndPhaseWithoutBegin(t *testing.T) {
	InitReporter(LogLevelVerbose)
	phaseSpinner = nil
	displayEndPhase(true)
	be.True(t, phaseSpinner == nil)
	InitReporter(LogLevelSilent)
}
