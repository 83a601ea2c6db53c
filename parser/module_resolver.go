package parser

import (
	"os"
	"path/filepath"
	"strings"

	"cool-semant/ast"
	"cool-semant/lexer"

	"github.com/pkg/errors"
)

// Source is one Cool compilation unit.
type Source struct {
	Filename string
	Code     string
}

// ResolveImports loads path and, transitively, every file it names in an
// `import "name";` line. Imported files come before their importers and each
// file appears once. Import and `module` lines are blanked rather than
// removed so that line numbers in diagnostics still match the files.
func ResolveImports(path string) ([]Source, error) {
	r := &resolver{state: map[string]int{}}
	if err := r.load(path); err != nil {
		return nil, err
	}
	return r.sources, nil
}

const (
	loading = iota + 1
	loaded
)

type resolver struct {
	state   map[string]int
	sources []Source
}

func (r *resolver) load(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrapf(err, "resolving %s", path)
	}
	switch r.state[abs] {
	case loading:
		return errors.Errorf("import cycle through %s", path)
	case loaded:
		return nil
	}
	r.state[abs] = loading

	content, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "failed to import %s", path)
	}

	code, imports := PreprocessImports(string(content))
	for _, name := range imports {
		if err := r.load(filepath.Join(filepath.Dir(path), name)); err != nil {
			return err
		}
	}

	r.state[abs] = loaded
	r.sources = append(r.sources, Source{Filename: path, Code: code})
	return nil
}

// PreprocessImports blanks import lines and a leading `module` line of code
// and returns the imported file names, each with a .cool extension.
func PreprocessImports(code string) (string, []string) {
	lines := strings.Split(code, "\n")
	var imports []string
	seenCode := false

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "" || strings.HasPrefix(trimmed, "--"):
		case strings.HasPrefix(trimmed, "import "):
			name := strings.Trim(strings.TrimPrefix(trimmed, "import"), " \";")
			if !strings.HasSuffix(name, ".cool") {
				name += ".cool"
			}
			imports = append(imports, name)
			lines[i] = ""
		case !seenCode && strings.HasPrefix(trimmed, "module "):
			lines[i] = ""
		default:
			seenCode = true
		}
	}

	return strings.Join(lines, "\n"), imports
}

// ParseSources parses every source and merges their classes into one
// program, in source order.
func ParseSources(sources []Source) (*ast.Program, []string) {
	prog := &ast.Program{Classes: []*ast.Class{}}
	var errs []string
	for _, src := range sources {
		p := New(lexer.NewLexer(strings.NewReader(src.Code)), src.Filename)
		unit := p.ParseProgram()
		prog.Classes = append(prog.Classes, unit.Classes...)
		errs = append(errs, p.Errors()...)
	}
	if len(prog.Classes) == 0 && len(errs) == 0 {
		errs = append(errs, "program has no classes")
	}
	return prog, errs
}
