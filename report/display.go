package report

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"cool-semant/semant"

	"github.com/pterm/pterm"
)

// Styles and colors used for output.
var (
	SuccessColorFG = pterm.FgLightGreen
	SuccessStyleBG = pterm.NewStyle(pterm.BgLightGreen, pterm.FgBlack)
	WarnColorFG    = pterm.FgYellow
	WarnStyleBG    = pterm.NewStyle(pterm.BgYellow, pterm.FgBlack)
	ErrorColorFG   = pterm.FgRed
	ErrorStyleBG   = pterm.NewStyle(pterm.BgRed, pterm.FgWhite)
	InfoColorFG    = pterm.FgLightBlue
	InfoStyleBG    = pterm.NewStyle(pterm.BgLightBlue, pterm.FgBlack)
)

// PrintErrorMessage prints a tagged error that has no source location.
func PrintErrorMessage(tag string, err error) {
	ErrorColorFG.Print(tag + " Error: ")
	fmt.Println(err)
}

func PrintWarningMessage(tag, msg string) {
	WarnColorFG.Print(tag + " Warning: ")
	fmt.Println(msg)
}

func PrintInfoMessage(tag, msg string) {
	InfoColorFG.Print(tag + ": ")
	fmt.Println(msg)
}

// -----------------------------------------------------------------------------

func displayHeader(version, input string, opts semant.Options) {
	fmt.Print("coolsemant ")
	InfoColorFG.Println(version)

	fmt.Print("checking ")
	InfoColorFG.Println(input)

	if rules := enabledRules(opts); len(rules) > 0 {
		fmt.Print("rules: ")
		InfoColorFG.Println(strings.Join(rules, ", "))
	}
	fmt.Println()
}

func enabledRules(opts semant.Options) []string {
	var rules []string
	if opts.StrictDispatch {
		rules = append(rules, "strict-dispatch")
	}
	if opts.StrictNames {
		rules = append(rules, "strict-names")
	}
	if opts.JoinBranches {
		rules = append(rules, "join-branches")
	}
	if opts.CheckMethodReturns {
		rules = append(rules, "check-method-returns")
	}
	return rules
}

func displayDiagnostic(d semant.Diagnostic) {
	if d.Filename == "" {
		ErrorColorFG.Print("error: ")
		fmt.Println(d.Message)
		return
	}

	InfoColorFG.Printf("%s:%d: ", d.Filename, d.Line)
	ErrorColorFG.Print("error: ")
	fmt.Println(d.Message)
	displaySourceLine(d.Filename, d.Line)
}

func displaySyntaxError(msg string) {
	ErrorColorFG.Print("syntax error: ")
	fmt.Println(msg)
}

// displaySourceLine prints line of filename under its diagnostic. Files that
// cannot be read, such as the built-in classes, print nothing.
func displaySourceLine(filename string, line int) {
	if line < 1 {
		return
	}

	file, err := os.Open(filename)
	if err != nil {
		return
	}
	defer file.Close()

	sc := bufio.NewScanner(file)
	for n := 1; sc.Scan(); n++ {
		if n == line {
			InfoColorFG.Printf("%5d | ", n)
			fmt.Println(strings.ReplaceAll(sc.Text(), "\t", "    "))
			return
		}
	}
}

// -----------------------------------------------------------------------------

// maxPhaseLength is the length of the longest phase name, used for padding.
const maxPhaseLength = len(semant.PhaseHierarchy)

var (
	phaseSpinner   *pterm.SpinnerPrinter
	phaseStartTime time.Time
	currentPhase   string
)

func displayBeginPhase(phase string) {
	currentPhase = phase
	phaseText := phase + "..." + phasePadding(phase)

	phaseSpinner = pterm.DefaultSpinner.WithStyle(pterm.NewStyle(InfoColorFG))
	phaseSpinner.SuccessPrinter = &pterm.PrefixPrinter{
		MessageStyle: pterm.NewStyle(pterm.FgDefault),
		Prefix: pterm.Prefix{
			Style: SuccessStyleBG,
			Text:  "Done",
		},
	}
	phaseSpinner.FailPrinter = &pterm.PrefixPrinter{
		MessageStyle: pterm.NewStyle(pterm.FgDefault),
		Prefix: pterm.Prefix{
			Style: ErrorStyleBG,
			Text:  "Fail",
		},
	}

	phaseSpinner, _ = phaseSpinner.Start(phaseText)
	phaseStartTime = time.Now()
}

func phasePadding(phase string) string {
	if len(phase) > maxPhaseLength {
		return "  "
	}
	return strings.Repeat(" ", maxPhaseLength-len(phase)+2)
}

// displayEndPhase stops the running spinner. It does nothing when no phase
// is running.
func displayEndPhase(success bool) {
	if phaseSpinner == nil {
		return
	}

	padding := phasePadding(currentPhase)
	elapsed := fmt.Sprintf("(%.3fs)", time.Since(phaseStartTime).Seconds())
	if success {
		phaseSpinner.Success(currentPhase + padding + elapsed)
	} else {
		phaseSpinner.Fail(currentPhase + padding + elapsed)
	}
	phaseSpinner = nil
}

func displayFinished(success bool, errorCount, warningCount int) {
	fmt.Println()
	if success {
		SuccessColorFG.Print("All done! ")
	} else {
		ErrorColorFG.Print("Oh no! ")
	}

	fmt.Print("(")
	if errorCount == 1 {
		ErrorColorFG.Print("1 error")
	} else {
		ErrorColorFG.Printf("%d errors", errorCount)
	}
	fmt.Print(", ")
	if warningCount == 1 {
		WarnColorFG.Print("1 warning")
	} else {
		WarnColorFG.Printf("%d warnings", warningCount)
	}
	fmt.Println(")")
}
