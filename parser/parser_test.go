package parser

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cool-semant/ast"
	"cool-semant/lexer"

	"github.com/kr/pretty"
)

func newParser(input string) *Parser {
	l := lexer.NewLexer(strings.NewReader(input))
	return New(l, "test.cl")
}

func checkParserErrors(t *testing.T, p *Parser) {
	t.Helper()
	errors := p.Errors()
	if len(errors) == 0 {
		return
	}

	t.Errorf("parser has %d errors", len(errors))
	for _, msg := range errors {
		t.Errorf("parser error: %q", msg)
	}
	t.FailNow()
}

func assertClassCount(t *testing.T, program *ast.Program, expected int) {
	t.Helper()
	if len(program.Classes) != expected {
		t.Fatalf("program.Classes does not contain %d classes. got=%d",
			expected, len(program.Classes))
	}
}

func assertClassName(t *testing.T, class *ast.Class, expected string) {
	t.Helper()
	if class.Name.Value.String() != expected {
		t.Errorf("class.Name.Value not '%s'. got=%s", expected, class.Name.Value)
	}
}

func assertParentClass(t *testing.T, class *ast.Class, expected string) {
	t.Helper()
	if class.Parent.Value.String() != expected {
		t.Errorf("class.Parent.Value not '%s'. got=%s", expected, class.Parent.Value)
	}
}

// parseBody parses `class T { m() : Object { body }; };` and returns body.
func parseBody(t *testing.T, body string) ast.Expression {
	t.Helper()
	p := newParser("class T { m() : Object { " + body + " }; };")
	program := p.ParseProgram()
	checkParserErrors(t, p)
	return program.Classes[0].Features[0].(*ast.Method).Body
}

// render prints an expression as a parenthesized tree.
func render(e ast.Expression) string {
	switch n := e.(type) {
	case *ast.IntegerLiteral:
		return fmt.Sprint(n.Value)
	case *ast.StringLiteral:
		return fmt.Sprintf("%q", n.Value)
	case *ast.BooleanLiteral:
		return fmt.Sprint(n.Value)
	case *ast.ObjectIdentifier:
		return n.Value.String()
	case *ast.Assignment:
		return fmt.Sprintf("(<- %s %s)", n.Name.Value, render(n.Expression))
	case *ast.BinaryExpression:
		return fmt.Sprintf("(%s %s %s)", n.Operator, render(n.Left), render(n.Right))
	case *ast.NotExpression:
		return fmt.Sprintf("(not %s)", render(n.Expression))
	case *ast.NegExpression:
		return fmt.Sprintf("(~ %s)", render(n.Expression))
	case *ast.IsVoidExpression:
		return fmt.Sprintf("(isvoid %s)", render(n.Expression))
	case *ast.NewExpression:
		return fmt.Sprintf("(new %s)", n.Type.Value)
	case *ast.MethodCall:
		var args []string
		for _, a := range n.Arguments {
			args = append(args, render(a))
		}
		recv := render(n.Object)
		if n.Type != nil {
			recv += "@" + n.Type.Value.String()
		}
		return fmt.Sprintf("(%s.%s %s)", recv, n.Method.Value, strings.Join(args, " "))
	case *ast.BlockExpression:
		var parts []string
		for _, x := range n.Expressions {
			parts = append(parts, render(x))
		}
		return "{" + strings.Join(parts, "; ") + "}"
	case *ast.IfExpression:
		return fmt.Sprintf("(if %s %s %s)", render(n.Condition), render(n.Consequence), render(n.Alternative))
	case *ast.WhileExpression:
		return fmt.Sprintf("(while %s %s)", render(n.Condition), render(n.Body))
	case *ast.LetExpression:
		init := "_"
		if n.Init != nil {
			init = render(n.Init)
		}
		return fmt.Sprintf("(let %s:%s %s %s)", n.Name.Value, n.Type.Value, init, render(n.Body))
	case *ast.CaseExpression:
		var parts []string
		for _, c := range n.Cases {
			parts = append(parts, fmt.Sprintf("[%s:%s %s]", c.Name.Value, c.Type.Value, render(c.Expression)))
		}
		return fmt.Sprintf("(case %s %s)", render(n.Expression), strings.Join(parts, " "))
	}
	return fmt.Sprintf("<%T>", e)
}

func TestBasicClassParsing(t *testing.T) {
	tests := []struct {
		input          string
		expectedClass  string
		expectedParent string
	}{
		{"class A {};", "A", "Object"},
		{"class B inherits A {};", "B", "A"},
		{"CLASS C INHERITS IO { };", "C", "IO"},
	}

	for _, tt := range tests {
		p := newParser(tt.input)
		program := p.ParseProgram()
		checkParserErrors(t, p)

		assertClassCount(t, program, 1)
		class := program.Classes[0]
		assertClassName(t, class, tt.expectedClass)
		assertParentClass(t, class, tt.expectedParent)
		if class.Filename != "test.cl" {
			t.Errorf("class.Filename not test.cl. got=%s", class.Filename)
		}
	}
}

func TestClassFeatureParsing(t *testing.T) {
	input := `
		class Test {
			x: Int;
			y: String <- "hello";
			method(): Int { 42 };
		};
	`

	p := newParser(input)
	program := p.ParseProgram()
	checkParserErrors(t, p)

	assertClassCount(t, program, 1)
	class := program.Classes[0]

	if len(class.Features) != 3 {
		t.Fatalf("class.Features does not contain 3 features. got=%d", len(class.Features))
	}

	attr1, ok := class.Features[0].(*ast.Attribute)
	if !ok {
		t.Fatalf("class.Features[0] is not ast.Attribute. got=%T", class.Features[0])
	}
	if attr1.Name.Value.String() != "x" || attr1.Type.Value.String() != "Int" || attr1.Init != nil {
		t.Errorf("attribute x incorrect. got name=%s, type=%s", attr1.Name.Value, attr1.Type.Value)
	}
	if attr1.Line() != 3 {
		t.Errorf("attribute x on line %d, want 3", attr1.Line())
	}

	attr2, ok := class.Features[1].(*ast.Attribute)
	if !ok {
		t.Fatalf("class.Features[1] is not ast.Attribute. got=%T", class.Features[1])
	}
	if attr2.Name.Value.String() != "y" || render(attr2.Init) != `"hello"` {
		t.Errorf("attribute y incorrect. got name=%s, init=%s", attr2.Name.Value, render(attr2.Init))
	}

	method, ok := class.Features[2].(*ast.Method)
	if !ok {
		t.Fatalf("class.Features[2] is not ast.Method. got=%T", class.Features[2])
	}
	if method.Name.Value.String() != "method" || method.ReturnType.Value.String() != "Int" {
		t.Errorf("method incorrect. got name=%s, return type=%s", method.Name.Value, method.ReturnType.Value)
	}
}

func TestMethodParameterParsing(t *testing.T) {
	input := `
		class Test {
			method(x: Int, y: String, z: Bool): SELF_TYPE { self };
		};
	`

	p := newParser(input)
	program := p.ParseProgram()
	checkParserErrors(t, p)

	method := program.Classes[0].Features[0].(*ast.Method)
	expectedParams := []struct {
		name string
		typ  string
	}{
		{"x", "Int"},
		{"y", "String"},
		{"z", "Bool"},
	}
	if len(method.Parameters) != len(expectedParams) {
		t.Fatalf("method.Parameters does not contain 3 parameters. got=%d", len(method.Parameters))
	}
	for i, expected := range expectedParams {
		param := method.Parameters[i]
		if param.Name.Value.String() != expected.name || param.Type.Value.String() != expected.typ {
			t.Errorf("parameter %d incorrect. expected %s:%s, got %s:%s",
				i, expected.name, expected.typ, param.Name.Value, param.Type.Value)
		}
	}
	if method.ReturnType.Value.String() != "SELF_TYPE" {
		t.Errorf("return type not SELF_TYPE. got=%s", method.ReturnType.Value)
	}
}

func TestExpressionParsing(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"42", "42"},
		{`"hi"`, `"hi"`},
		{"true", "true"},
		{"1 + 2 * 3", "(+ 1 (* 2 3))"},
		{"(1 + 2) * 3", "(* (+ 1 2) 3)"},
		{"1 - 2 - 3", "(- (- 1 2) 3)"},
		{"a < b + 1", "(< a (+ b 1))"},
		{"not a = b", "(not (= a b))"},
		{"~a * b", "(* (~ a) b)"},
		{"~a.f()", "(~ (a.f ))"},
		{"isvoid a.f()", "(isvoid (a.f ))"},
		{"a <- b <- 3", "(<- a (<- b 3))"},
		{"a <- 1 + 2", "(<- a (+ 1 2))"},
		{"x.f(1, y).g()", "((x.f 1 y).g )"},
		{"x@Parent.f(1)", "(x@Parent.f 1)"},
		{"f(1, 2)", "(self.f 1 2)"},
		{"(new A).init()", "((new A).init )"},
		{"{ a; b; }", "{a; b}"},
		{"{ a; b }", "{a; b}"},
		{"if a then b else c fi", "(if a b c)"},
		{"while a loop { b; } pool", "(while a {b})"},
		{"let x : Int in x + 1", "(let x:Int _ (+ x 1))"},
		{"let x : Int <- 1, y : Int in x + y", "(let x:Int 1 (let y:Int _ (+ x y)))"},
		{"case x of a : A => 1; b : B => 2; esac", "(case x [a:A 1] [b:B 2])"},
		{"{ out_int(fact).out_string(\"\\n\"); }", `{((self.out_int fact).out_string "\n")}`},
	}

	for _, tt := range tests {
		got := render(parseBody(t, tt.input))
		if got != tt.expected {
			t.Errorf("%q: expected %s, got %s", tt.input, tt.expected, got)
		}
	}
}

func TestImplicitSelfCall(t *testing.T) {
	call, ok := parseBody(t, "print(1)").(*ast.MethodCall)
	if !ok {
		t.Fatalf("expected *ast.MethodCall")
	}
	recv, ok := call.Object.(*ast.ObjectIdentifier)
	if !ok || recv.Value.String() != "self" || recv.Token.Literal != "self" {
		t.Fatalf("expected implicit self receiver, got %s", render(call.Object))
	}
	if call.Type != nil {
		t.Errorf("implicit call should be dynamic dispatch")
	}
}

func TestParserErrors(t *testing.T) {
	tests := []struct {
		input       string
		wantClasses int
		wantError   string
	}{
		{"class A { x : Int }; class B {};", 1, "test.cl:1: expected next token to be SEMI"},
		{"class a {};", 0, "expected next token to be TYPEID"},
		{"class A { f() : Int { }; };", 0, "syntax error at or near RBRACE"},
		{"class A { f() : Int { 1 + }; };\nclass B {};", 1, "syntax error"},
		{"class A { x : Int <- \"abc\n\"; };", 0, "Unterminated string"},
		{"class A { f() : Int { case x of esac }; };", 0, "no branches"},
		{"class A { f() : Int { 1 <- 2 }; };", 0, "left side of assignment"},
	}

	for _, tt := range tests {
		p := newParser(tt.input)
		program := p.ParseProgram()
		if len(program.Classes) != tt.wantClasses {
			t.Errorf("%q: expected %d classes, got %d", tt.input, tt.wantClasses, len(program.Classes))
		}
		found := false
		for _, e := range p.Errors() {
			if strings.Contains(e, tt.wantError) {
				found = true
			}
		}
		if !found {
			t.Errorf("%q: expected error containing %q, got %v", tt.input, tt.wantError, p.Errors())
		}
	}
}

func TestPreprocessImports(t *testing.T) {
	code := "module Main\nimport \"list\";\nimport utils.cool\n\nclass Main {};\n"
	out, imports := PreprocessImports(code)

	if diff := pretty.Diff(imports, []string{"list.cool", "utils.cool"}); len(diff) > 0 {
		t.Errorf("imports differ: %v", diff)
	}
	if got := strings.Count(out, "\n"); got != strings.Count(code, "\n") {
		t.Errorf("line count changed: %d", got)
	}
	if strings.Contains(out, "import") || strings.Contains(out, "module") {
		t.Errorf("import lines not blanked: %q", out)
	}
}

func TestResolveImports(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		return path
	}

	write("list.cool", "import \"node\";\nclass List { head : Node; };\n")
	write("node.cool", "module Node\nclass Node {};\n")
	main := write("main.cl", "import \"list\";\nimport \"node\";\nclass Main { main() : Object { 0 }; };\n")

	t.Run("dependencies first, once each", func(t *testing.T) {
		sources, err := ResolveImports(main)
		if err != nil {
			t.Fatal(err)
		}
		var names []string
		for _, s := range sources {
			names = append(names, filepath.Base(s.Filename))
		}
		if diff := pretty.Diff(names, []string{"node.cool", "list.cool", "main.cl"}); len(diff) > 0 {
			t.Errorf("source order differs: %v", diff)
		}

		program, errs := ParseSources(sources)
		if len(errs) > 0 {
			t.Fatalf("parse errors: %v", errs)
		}
		assertClassCount(t, program, 3)
		assertClassName(t, program.Classes[0], "Node")
		if program.Classes[0].Line() != 2 || filepath.Base(program.Classes[0].Filename) != "node.cool" {
			t.Errorf("Node position lost: %s:%d", program.Classes[0].Filename, program.Classes[0].Line())
		}
	})

	t.Run("cycle", func(t *testing.T) {
		a := write("a.cool", "import \"b\";\nclass A {};\n")
		write("b.cool", "import \"a\";\nclass B {};\n")
		if _, err := ResolveImports(a); err == nil || !strings.Contains(err.Error(), "import cycle") {
			t.Fatalf("expected import cycle error, got %v", err)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		bad := write("bad.cl", "import \"nope\";\n")
		if _, err := ResolveImports(bad); err == nil || !strings.Contains(err.Error(), "failed to import") {
			t.Fatalf("expected import error, got %v", err)
		}
	})
}
