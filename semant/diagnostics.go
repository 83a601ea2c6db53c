package semant

import "fmt"

// Diagnostic is one semantic error or warning, rendered as `file:line: message`.
type Diagnostic struct {
	Filename string
	Line     int
	Message  string
}

func (d Diagnostic) String() string {
	if d.Filename == "" {
		return d.Message
	}
	return fmt.Sprintf("%s:%d: %s", d.Filename, d.Line, d.Message)
}

// Diagnostics accumulates errors for a whole analysis. Recording an error
// never stops the pass that reports it. Warnings are kept apart and never
// halt the analysis.
type Diagnostics struct {
	list     []Diagnostic
	warnings []Diagnostic
}

func (d *Diagnostics) Errorf(filename string, line int, format string, args ...any) {
	d.list = append(d.list, Diagnostic{
		Filename: filename,
		Line:     line,
		Message:  fmt.Sprintf(format, args...),
	})
}

func (d *Diagnostics) Warnf(filename string, line int, format string, args ...any) {
	d.warnings = append(d.warnings, Diagnostic{
		Filename: filename,
		Line:     line,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Warnings returns the recorded warnings in report order.
func (d *Diagnostics) Warnings() []Diagnostic {
	return d.warnings
}

func (d *Diagnostics) Count() int {
	return len(d.list)
}

func (d *Diagnostics) All() []Diagnostic {
	return d.list
}

func (d *Diagnostics) Strings() []string {
	out := make([]string, len(d.list))
	for i, diag := range d.list {
		out[i] = diag.String()
	}
	return out
}

// HaltError is returned when errors are present at one of the analysis
// checkpoints.
type HaltError struct {
	Phase string
	Count int
}

func (e *HaltError) Error() string {
	return "Compilation halted due to static semantic errors."
}
