// Package semant performs the static semantic analysis of a Cool program:
// it builds and validates the class hierarchy, then type checks every
// feature and records an inferred type on every expression.
package semant

import "cool-semant/ast"

// Phases reported in a HaltError.
const (
	PhaseHierarchy = "class hierarchy"
	PhaseTypeCheck = "type checking"
)

type SemanticAnalyzer struct {
	opts    Options
	diags   Diagnostics
	classes *ClassTable
}

func NewSemanticAnalyzer(opts Options) *SemanticAnalyzer {
	return &SemanticAnalyzer{opts: opts}
}

// Analyze runs both phases. Type checking is skipped when the hierarchy has
// errors.
func (sa *SemanticAnalyzer) Analyze(program *ast.Program) error {
	if err := sa.BuildHierarchy(program); err != nil {
		return err
	}
	return sa.TypeCheck()
}

// BuildHierarchy builds the class table of program. It returns a
// *HaltError if any hierarchy error was found.
func (sa *SemanticAnalyzer) BuildHierarchy(program *ast.Program) error {
	sa.diags = Diagnostics{}
	sa.classes = NewClassTable(program.Classes, &sa.diags)
	return sa.checkpoint(PhaseHierarchy)
}

// TypeCheck annotates every expression of the classes installed by
// BuildHierarchy. It returns a *HaltError if any error was found.
func (sa *SemanticAnalyzer) TypeCheck() error {
	if sa.classes == nil {
		panic("semant: TypeCheck called before BuildHierarchy")
	}
	if sa.diags.Count() > 0 {
		return sa.checkpoint(PhaseHierarchy)
	}
	newChecker(sa.classes, sa.opts, &sa.diags).check()
	return sa.checkpoint(PhaseTypeCheck)
}

func (sa *SemanticAnalyzer) checkpoint(phase string) error {
	if n := sa.diags.Count(); n > 0 {
		return &HaltError{Phase: phase, Count: n}
	}
	return nil
}

// Errors returns every diagnostic rendered as `file:line: message`.
func (sa *SemanticAnalyzer) Errors() []string {
	return sa.diags.Strings()
}

func (sa *SemanticAnalyzer) Diagnostics() []Diagnostic {
	return sa.diags.All()
}

// Warnings returns the names the default rules typed Object without an
// error. They are empty under StrictNames, which reports them as errors.
func (sa *SemanticAnalyzer) Warnings() []Diagnostic {
	return sa.diags.Warnings()
}

func (sa *SemanticAnalyzer) ErrorCount() int {
	return sa.diags.Count()
}

// Classes returns the class table of the last analysed program, or nil.
func (sa *SemanticAnalyzer) Classes() *ClassTable {
	return sa.classes
}
