package main

import (
	"os"

	"cool-semant/report"

	"github.com/ComedicChimera/olive"
)

// Version is the coolsemant release.
const Version = "0.3.0"

func main() {
	os.Exit(execute(os.Args))
}

// execute runs the command line in args and returns the exit status.
func execute(args []string) int {
	cli := olive.NewCLI("coolsemant", "coolsemant checks the static semantics of Cool programs", true)
	cli.AddSelectorArg("loglevel", "ll", "the log level", false, []string{"silent", "error", "warn", "verbose"})

	checkCmd := cli.AddSubcommand("check", "type check a program", true)
	checkCmd.AddPrimaryArg("file", "the Cool file to check", true)
	checkCmd.AddStringArg("config", "c", "the settings file to use", false)
	checkCmd.AddStringArg("dump-ast", "d", "write the annotated AST to this YAML file", false)
	checkCmd.AddFlag("strict", "s", "enable every strict checking rule")

	layoutCmd := cli.AddSubcommand("layout", "check a program and emit its class layouts as LLVM IR", true)
	layoutCmd.AddPrimaryArg("file", "the Cool file to lay out", true)
	layoutCmd.AddStringArg("config", "c", "the settings file to use", false)
	layoutCmd.AddStringArg("output", "o", "the output file, defaults to the input with a .ll extension", false)

	cli.AddSubcommand("version", "print the coolsemant version", false)

	result, err := olive.ParseArgs(cli, args)
	if err != nil {
		report.PrintErrorMessage("CLI Usage", err)
		return 1
	}

	logLevel := ""
	if v, ok := result.Arguments["loglevel"]; ok {
		logLevel = v.(string)
	}

	subcmdName, subResult, _ := result.Subcommand()
	switch subcmdName {
	case "check":
		return execCheckCommand(subResult, logLevel)
	case "layout":
		return execLayoutCommand(subResult, logLevel)
	case "version":
		report.PrintInfoMessage("coolsemant version", Version)
	}
	return 0
}

// execCheckCommand runs the check subcommand.
func execCheckCommand(result *olive.ArgParseResult, logLevel string) int {
	input, _ := result.PrimaryArg()

	cfg, ok := setup(input, stringArg(result, "config"), logLevel)
	if !ok {
		return 1
	}
	if result.HasFlag("strict") {
		cfg.Semant.StrictDispatch = true
		cfg.Semant.StrictNames = true
		cfg.Semant.CheckMethodReturns = true
	}
	if path := stringArg(result, "dump-ast"); path != "" {
		cfg.Output.DumpAST = path
	}

	return finish(run(input, cfg))
}

// execLayoutCommand runs the layout subcommand.
func execLayoutCommand(result *olive.ArgParseResult, logLevel string) int {
	input, _ := result.PrimaryArg()

	cfg, ok := setup(input, stringArg(result, "config"), logLevel)
	if !ok {
		return 1
	}
	if path := stringArg(result, "output"); path != "" {
		cfg.Output.EmitLayout = path
	} else if cfg.Output.EmitLayout == "" {
		cfg.Output.EmitLayout = layoutPath(input)
	}

	return finish(run(input, cfg))
}

func stringArg(result *olive.ArgParseResult, name string) string {
	if v, ok := result.Arguments[name]; ok {
		return v.(string)
	}
	return ""
}

// finish prints the closing summary and converts the outcome of run into an
// exit status.
func finish(err error) int {
	report.ReportFinished()
	if err != nil {
		return 1
	}
	return 0
}
