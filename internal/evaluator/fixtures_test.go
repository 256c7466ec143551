package evaluator

import (
	"bytes"
	"lox/internal/lexer"
	"lox/internal/object"
	"lox/internal/parser"
	"lox/internal/resolver"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

// Script scenarios live in testdata as YAML, one file per theme. Each case
// gives a source program plus either the expected stdout or an expected
// runtime error kind.
type fixtureFile struct {
	Description string        `yaml:"description"`
	Cases       []fixtureCase `yaml:"cases"`
}

type fixtureCase struct {
	Name   string   `yaml:"name"`
	Source string   `yaml:"source"`
	Stdout []string `yaml:"stdout"`
	Error  string   `yaml:"error"`
}

func TestScriptFixtures(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "*.yaml"))
	if err != nil {
		t.Fatalf("globbing testdata: %v", err)
	}
	if len(paths) == 0 {
		t.Fatalf("no fixture files found")
	}

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("read fixture %s: %v", path, err)
		}

		var file fixtureFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			t.Fatalf("parse fixture %s: %v", path, err)
		}

		for _, tc := range file.Cases {
			name := strings.TrimSuffix(filepath.Base(path), ".yaml") + "/" + tc.Name
			t.Run(name, func(t *testing.T) {
				runFixtureCase(t, tc)
			})
		}
	}
}

func runFixtureCase(t *testing.T, tc fixtureCase) {
	t.Helper()

	l := lexer.New(tc.Source)
	p := parser.New(l)
	program := p.ParseProgram()
	if len(p.Errors()) != 0 {
		t.Fatalf("parser errors: %v", p.Errors())
	}

	bindings, err := resolver.Resolve(program)
	if err != nil {
		t.Fatalf("resolve error: %v", err)
	}

	var out bytes.Buffer
	e := New(&WriterPrinter{Out: &out}).WithResolutions(bindings)
	result := e.Eval(program, NewRootEnvironment())

	if tc.Error != "" {
		errObj, ok := result.(*object.Error)
		if !ok {
			t.Fatalf("expected %q error, got %T (stdout %q)", tc.Error, result, out.String())
		}
		if string(errObj.Kind) != tc.Error {
			t.Fatalf("error kind = %q, want %q (message %q)", errObj.Kind, tc.Error, errObj.Message)
		}
		return
	}

	if errObj, ok := result.(*object.Error); ok {
		t.Fatalf("unexpected runtime error: %s", errObj.Inspect())
	}

	expected := ""
	if len(tc.Stdout) > 0 {
		expected = strings.Join(tc.Stdout, "\n") + "\n"
	}
	if out.String() != expected {
		t.Fatalf("stdout = %q, want %q", out.String(), expected)
	}
}
