// Package astdump renders a program, with the static types recorded by the
// checker, as a YAML document.
package astdump

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"

	"cool-semant/ast"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Node is the YAML form of one AST node. Type holds the inferred type of an
// expression, or the declared type of an attribute, method or formal.
type Node struct {
	Kind     string  `yaml:"kind"`
	Name     string  `yaml:"name,omitempty"`
	Type     string  `yaml:"type,omitempty"`
	Line     int     `yaml:"line,omitempty"`
	Value    string  `yaml:"value,omitempty"`
	Children []*Node `yaml:"children,omitempty"`
}

// Build converts program into its dump tree.
func Build(program *ast.Program) *Node {
	root := &Node{Kind: "program"}
	for _, c := range program.Classes {
		root.Children = append(root.Children, class(c))
	}
	return root
}

func class(c *ast.Class) *Node {
	n := &Node{Kind: "class", Name: c.Name.Value.String(), Line: c.Line(), Value: c.ParentName().String()}
	for _, f := range c.Features {
		switch f := f.(type) {
		case *ast.Attribute:
			attr := &Node{Kind: "attribute", Name: f.Name.Value.String(), Type: f.Type.Value.String(), Line: f.Line()}
			if f.Init != nil {
				attr.Children = []*Node{expr(f.Init)}
			}
			n.Children = append(n.Children, attr)
		case *ast.Method:
			m := &Node{Kind: "method", Name: f.Name.Value.String(), Type: f.ReturnType.Value.String(), Line: f.Line()}
			for _, formal := range f.Parameters {
				m.Children = append(m.Children, &Node{
					Kind: "formal",
					Name: formal.Name.Value.String(),
					Type: formal.Type.Value.String(),
					Line: formal.Line(),
				})
			}
			if f.Body != nil {
				m.Children = append(m.Children, expr(f.Body))
			}
			n.Children = append(n.Children, m)
		}
	}
	return n
}

func expr(e ast.Expression) *Node {
	n := &Node{Type: e.StaticType().String(), Line: e.Line()}
	add := func(children ...ast.Expression) {
		for _, c := range children {
			if c != nil {
				n.Children = append(n.Children, expr(c))
			}
		}
	}

	switch e := e.(type) {
	case *ast.IntegerLiteral:
		n.Kind, n.Value = "int", strconv.Itoa(e.Value)
	case *ast.StringLiteral:
		n.Kind, n.Value = "string", e.Value
	case *ast.BooleanLiteral:
		n.Kind, n.Value = "bool", strconv.FormatBool(e.Value)
	case *ast.ObjectIdentifier:
		n.Kind, n.Name = "object", e.Value.String()
	case *ast.Assignment:
		n.Kind, n.Name = "assign", e.Name.Value.String()
		add(e.Expression)
	case *ast.MethodCall:
		n.Kind, n.Name = "dispatch", e.Method.Value.String()
		if e.Type != nil {
			n.Kind, n.Value = "static_dispatch", e.Type.Value.String()
		}
		add(e.Object)
		add(e.Arguments...)
	case *ast.IfExpression:
		n.Kind = "if"
		add(e.Condition, e.Consequence, e.Alternative)
	case *ast.WhileExpression:
		n.Kind = "while"
		add(e.Condition, e.Body)
	case *ast.BlockExpression:
		n.Kind = "block"
		add(e.Expressions...)
	case *ast.LetExpression:
		n.Kind, n.Name, n.Value = "let", e.Name.Value.String(), e.Type.Value.String()
		add(e.Init, e.Body)
	case *ast.CaseExpression:
		n.Kind = "case"
		add(e.Expression)
		for _, br := range e.Cases {
			branch := &Node{Kind: "branch", Name: br.Name.Value.String(), Value: br.Type.Value.String(), Line: br.Line()}
			branch.Children = []*Node{expr(br.Expression)}
			n.Children = append(n.Children, branch)
		}
	case *ast.NewExpression:
		n.Kind, n.Value = "new", e.Type.Value.String()
	case *ast.IsVoidExpression:
		n.Kind = "isvoid"
		add(e.Expression)
	case *ast.NegExpression:
		n.Kind = "neg"
		add(e.Expression)
	case *ast.NotExpression:
		n.Kind = "not"
		add(e.Expression)
	case *ast.BinaryExpression:
		n.Kind, n.Value = "binary", e.Operator
		add(e.Left, e.Right)
	default:
		panic(fmt.Sprintf("astdump: unexpected expression %T", e))
	}
	return n
}

// Encode writes the dump of program to w.
func Encode(w io.Writer, program *ast.Program) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(Build(program)); err != nil {
		return errors.Wrap(err, "astdump: encode")
	}
	return errors.Wrap(enc.Close(), "astdump: encoder close")
}

// WriteFile writes the dump of program to path.
func WriteFile(path string, program *ast.Program) error {
	var buf bytes.Buffer
	if err := Encode(&buf, program); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return errors.Wrapf(err, "astdump: write %s", path)
	}
	return nil
}
