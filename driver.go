package main

import (
	"os"
	"path/filepath"
	"strings"

	"cool-semant/ast"
	"cool-semant/astdump"
	"cool-semant/codegen"
	"cool-semant/config"
	"cool-semant/parser"
	"cool-semant/report"
	"cool-semant/semant"

	"github.com/pkg/errors"
)

const (
	phaseParse  = "parsing"
	phaseLayout = "class layouts"
)

// setup loads the settings for input and initializes the reporter. A log
// level given on the command line wins over the settings file.
func setup(input, configPath, logLevel string) (*config.Config, bool) {
	cfg, err := loadConfig(input, configPath)
	if err != nil {
		report.InitReporter(report.LevelFromName(logLevel))
		report.ReportError("Config", err)
		return nil, false
	}

	if logLevel == "" {
		logLevel = cfg.Output.LogLevel
	}
	report.InitReporter(report.LevelFromName(logLevel))
	report.ReportHeader(Version, input, cfg.AnalyzerOptions())
	return cfg, true
}

// loadConfig loads the settings file at path, or the one next to input when
// path is empty. No settings file gives the defaults.
func loadConfig(input, path string) (*config.Config, error) {
	if path == "" {
		found, ok := config.Find(input)
		if !ok {
			return config.Default(), nil
		}
		path = found
	}
	return config.Load(path)
}

// run checks input and writes the outputs selected in cfg. Every failure has
// been reported by the time it returns.
func run(input string, cfg *config.Config) error {
	program, sa, err := checkFile(input, cfg.AnalyzerOptions())
	if err != nil {
		return err
	}

	if path := cfg.Output.DumpAST; path != "" {
		if err := astdump.WriteFile(path, program); err != nil {
			report.ReportError("Output", err)
			return err
		}
		report.ReportOutput("annotated AST", path)
	}

	if path := cfg.Output.EmitLayout; path != "" {
		report.BeginPhase(phaseLayout)
		if err := writeLayout(path, sa.Classes(), cfg.Output.TargetTriple); err != nil {
			report.ReportError("Layout", err)
			return err
		}
		report.EndPhase()
		report.ReportOutput("class layouts", path)
	}
	return nil
}

// checkFile parses input with its imports and runs both analysis phases.
// Analysis failures are returned as a *semant.HaltError.
func checkFile(input string, opts semant.Options) (*ast.Program, *semant.SemanticAnalyzer, error) {
	report.BeginPhase(phaseParse)
	sources, err := parser.ResolveImports(input)
	if err != nil {
		report.ReportError("Import", err)
		return nil, nil, err
	}
	program, syntaxErrs := parser.ParseSources(sources)
	if len(syntaxErrs) > 0 {
		report.ReportSyntaxErrors(syntaxErrs)
		return nil, nil, errors.Errorf("%d syntax errors in %s", len(syntaxErrs), input)
	}
	report.EndPhase()

	sa := semant.NewSemanticAnalyzer(opts)

	report.BeginPhase(semant.PhaseHierarchy)
	if err := sa.BuildHierarchy(program); err != nil {
		return program, sa, halt(sa, err)
	}
	report.EndPhase()

	report.BeginPhase(semant.PhaseTypeCheck)
	err = sa.TypeCheck()
	for _, w := range sa.Warnings() {
		report.ReportWarning("Semantic", w.String())
	}
	if err != nil {
		return program, sa, halt(sa, err)
	}
	report.EndPhase()

	return program, sa, nil
}

func halt(sa *semant.SemanticAnalyzer, err error) error {
	report.ReportDiagnostics(sa.Diagnostics())
	report.ReportHalt(err)
	return err
}

// writeLayout generates the class layouts of a checked program and writes
// them to path as textual LLVM IR.
func writeLayout(path string, classes *semant.ClassTable, triple string) error {
	gen := codegen.NewCodeGenerator(classes)
	gen.TargetTriple = triple

	mod, err := gen.Generate()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(mod.String()), 0o644); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return nil
}

// layoutPath is the default output of the layout command.
func layoutPath(input string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + ".ll"
}
