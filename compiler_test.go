package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cool-semant/astdump"
	"cool-semant/config"
	"cool-semant/intern"
	"cool-semant/report"
	"cool-semant/semant"

	"github.com/nalgeon/be"
	"gopkg.in/yaml.v3"
)

const factorialProgram = `class Main inherits IO {
    main(): Object {
        let n: Int <- 5, fact: Int <- 1 in {
            while 0 < n loop {
                fact <- fact * n;
                n <- n - 1;
            } pool;
            out_int(fact).out_string("\n");
        }
    };
};`

const gcdProgram = `class Main inherits IO {
        gcd_iterative(a: Int, b: Int): Int {
            let temp: Int <- 0, x: Int <- a, y: Int <- b in {
                while 0 < y loop {
                    temp <- y;
                    y <- x - (x/y)*y;
                    x <- temp;
                } pool;
                x;
            }
        };

    gcd_recursive(a: Int, b: Int): Int {
        {
            if b = 0 then
                a
            else
                gcd_recursive(b, a - (a/b)*b)
            fi;
        }
    };

    main(): Object {
        {
            out_string("Recursive GCD(48,18) = ");
            out_int(gcd_recursive(48,18));
            -- and the iterative one
            out_int(gcd_iterative(54,14));
            out_string("\n");
        }
    };
};`

const animalProgram = `class Animal {
    name : String <- "Unknown";

    init(n : String) : Animal {
        {
            name <- n;
            self;
        }
    };

    getName() : String {
        name
    };

    print() : Object {
        (new IO).out_string("This is an animal\n")
    };
};

class Dog inherits Animal {
    breed : String <- "Mixed";

    init(n : String) : Dog {
        {
            name <- n;
            self;
        }
    };

    getBreed() : String {
        breed
    };

    print() : Object {
        (new IO).out_string("This is a dog\n")
    };
};

class Main inherits IO {
    main() : Object {
        {
            let myDog : Dog <- (new Dog).init("Buddy") in {
                out_string(myDog.getName());
                out_string(myDog.getBreed());
                myDog.print();
                myDog@Animal.print();
                let dogCopy : Dog <- myDog.copy() in {
                    out_string(dogCopy.getName());
                };
            };
        }
    };
};`

func writeProgram(t *testing.T, dir, name, code string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(code), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCheckFile(t *testing.T) {
	report.InitReporter(report.LogLevelSilent)

	strict := semant.Options{StrictDispatch: true, StrictNames: true, CheckMethodReturns: true}

	testCases := []struct {
		name     string
		code     string
		opts     semant.Options
		errCount int
	}{
		{"Factorial Program", factorialProgram, semant.Options{}, 0},
		{"Factorial Program strict", factorialProgram, strict, 0},
		{"GCD Implementation", gcdProgram, semant.Options{}, 0},
		{"GCD Implementation strict", gcdProgram, strict, 0},
		// the flat method table binds init to the first class that declares it
		{"Inheritance flat dispatch", animalProgram, semant.Options{}, 1},
		{"Inheritance strict dispatch", animalProgram, strict, 0},
		{"Hello World Program", `class Main inherits IO {
    main(): Object {
        out_string("Hello, World!\n")
    };
};`, semant.Options{}, 0},
		{"Conditional with Class Attribute", `class Main inherits IO {
    a : Int;
    main(): Object {
        {
        a <- 3;
        if ( a = 3) then
            out_string("a is 3\n")
        else
            out_string("a is not 3\n")
        fi;
        }
    };
};`, semant.Options{}, 0},
		{"Type errors", `class Main inherits IO {
    main(): Object {
        {
            out_int(1 + "two");
            undefined_name;
        }
    };
};`, semant.Options{StrictNames: true}, 2},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			report.InitReporter(report.LogLevelSilent)
			path := writeProgram(t, t.TempDir(), "main.cool", tc.code)

			program, sa, err := checkFile(path, tc.opts)
			if tc.errCount == 0 {
				if err != nil {
					t.Fatalf("unexpected errors: %v", sa.Errors())
				}
				be.True(t, program != nil)
				be.True(t, report.ShouldProceed())
				return
			}

			var halt *semant.HaltError
			be.True(t, errors.As(err, &halt))
			be.Equal(t, halt.Phase, semant.PhaseTypeCheck)
			be.Equal(t, halt.Count, tc.errCount)
			be.Equal(t, report.ErrorCount(), tc.errCount)
			for _, msg := range sa.Errors() {
				be.True(t, strings.HasPrefix(msg, path+":"))
			}
		})
	}
}

func TestCheckFileHierarchyHalt(t *testing.T) {
	report.InitReporter(report.LogLevelSilent)
	path := writeProgram(t, t.TempDir(), "cycle.cool", `class A inherits B {};
class B inherits A {};
class Main { main() : Object { 0 }; };`)

	_, sa, err := checkFile(path, semant.Options{})
	var halt *semant.HaltError
	be.True(t, errors.As(err, &halt))
	be.Equal(t, halt.Phase, semant.PhaseHierarchy)
	be.Equal(t, err.Error(), "Compilation halted due to static semantic errors.")
	be.Equal(t, sa.ErrorCount(), 2)
}

func TestCheckFileWarnings(t *testing.T) {
	report.InitReporter(report.LogLevelSilent)
	path := writeProgram(t, t.TempDir(), "loose.cool", `class Main {
    main() : Object { undefined_name };
};`)

	_, sa, err := checkFile(path, semant.Options{})
	be.Err(t, err, nil)
	be.Equal(t, len(sa.Warnings()), 1)
	be.Equal(t, report.WarningCount(), 1)
	be.True(t, report.ShouldProceed())
}

func TestCheckFileSyntaxError(t *testing.T) {
	report.InitReporter(report.LogLevelSilent)
	path := writeProgram(t, t.TempDir(), "bad.cool", "class Main { main() : Object { 1 + }; };")

	_, sa, err := checkFile(path, semant.Options{})
	be.Err(t, err, "syntax errors")
	be.True(t, sa == nil)
	be.True(t, !report.ShouldProceed())
}

func TestCheckFileImports(t *testing.T) {
	report.InitReporter(report.LogLevelSilent)
	dir := t.TempDir()
	writeProgram(t, dir, "animal.cool", `class Animal {
    speak() : String { "..." };
};`)
	path := writeProgram(t, dir, "main.cool", `import "animal";
class Main inherits IO {
    main() : Object { out_string((new Animal).speak()) };
};`)

	_, sa, err := checkFile(path, semant.Options{StrictDispatch: true})
	be.Err(t, err, nil)
	_, ok := sa.Classes().Lookup(intern.Of("Animal"))
	be.True(t, ok)

	_, _, err = checkFile(filepath.Join(dir, "missing.cool"), semant.Options{})
	be.Err(t, err, "failed to import")
}

func TestRunOutputs(t *testing.T) {
	report.InitReporter(report.LogLevelSilent)
	dir := t.TempDir()
	path := writeProgram(t, dir, "animal.cool", animalProgram)

	cfg := config.Default()
	cfg.Semant.StrictDispatch = true
	cfg.Output.DumpAST = filepath.Join(dir, "ast.yaml")
	cfg.Output.EmitLayout = layoutPath(path)
	cfg.Output.TargetTriple = "x86_64-pc-linux-gnu"

	be.Err(t, run(path, cfg), nil)

	f, err := os.Open(cfg.Output.DumpAST)
	be.Err(t, err, nil)
	defer f.Close()
	var root astdump.Node
	be.Err(t, yaml.NewDecoder(f).Decode(&root), nil)
	be.Equal(t, len(root.Children), 3)
	be.Equal(t, root.Children[1].Name, "Dog")
	be.Equal(t, root.Children[1].Value, "Animal")

	ir, err := os.ReadFile(filepath.Join(dir, "animal.ll"))
	be.Err(t, err, nil)
	be.True(t, strings.Contains(string(ir), "x86_64-pc-linux-gnu"))
	be.True(t, strings.Contains(string(ir), "%Dog = type"))
	be.True(t, strings.Contains(string(ir), "@Dog_vtable"))
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "main.cool")

	cfg, err := loadConfig(input, "")
	be.Err(t, err, nil)
	be.Equal(t, cfg.AnalyzerOptions(), semant.Options{})

	writeProgram(t, dir, config.FileName, "[semant]\nstrict-names = true\n")
	cfg, err = loadConfig(input, "")
	be.Err(t, err, nil)
	be.True(t, cfg.Semant.StrictNames)

	_, err = loadConfig(input, filepath.Join(dir, "other.toml"))
	be.Err(t, err, "failed to read config")
}

func TestExecute(t *testing.T) {
	dir := t.TempDir()
	writeProgram(t, dir, config.FileName, "[output]\nlog-level = \"silent\"\n")
	good := writeProgram(t, dir, "good.cool", factorialProgram)
	bad := writeProgram(t, dir, "bad.cool", `class Main { main() : Object { 1 + true }; };`)

	be.Equal(t, execute([]string{"coolsemant", "check", good}), 0)
	be.Equal(t, execute([]string{"coolsemant", "check", bad}), 1)

	be.Equal(t, execute([]string{"coolsemant", "layout", good}), 0)
	_, err := os.Stat(filepath.Join(dir, "good.ll"))
	be.Err(t, err, nil)
}

func TestLayoutPath(t *testing.T) {
	be.Equal(t, layoutPath("dir/main.cool"), "dir/main.ll")
	be.Equal(t, layoutPath("main.cl"), "main.ll")
	be.Equal(t, layoutPath("main"), "main.ll")
}
