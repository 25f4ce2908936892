package main

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"golang.org/x/tools/txtar"
)

//go:embed testdata
var testCases embed.FS

// TestCadlint runs the command over archives of testdata. An archive holds C sources,
// optional configuration files, and the expectations: exit status in "exit", the whole
// output in "stdout" or lines the output must contain in "contains". Flags are taken
// from "args".
func TestCadlint(t *testing.T) {
	names, err := fs.Glob(testCases, "testdata/*.txtar")
	if err != nil {
		t.Fatal(fmt.Errorf("list test cases: %w", err))
	}

	for _, name := range names {
		t.Run(strings.TrimSuffix(filepath.Base(name), ".txtar"), func(t *testing.T) {
			data, err := testCases.ReadFile(name)
			if err != nil {
				t.Fatalf("read file %s: %s", name, err)
			}

			dir := t.TempDir()
			var args, sources, contains []string
			var stdout *string
			exit := exitOK
			for _, f := range txtar.Parse(data).Files {
				switch f.Name {
				case "args":
					args = strings.Fields(string(f.Data))
				case "exit":
					if exit, err = strconv.Atoi(strings.TrimSpace(string(f.Data))); err != nil {
						t.Fatal(fmt.Errorf("parse exit status: %w", err))
					}
				case "stdout":
					s := string(f.Data)
					stdout = &s
				case "contains":
					contains = strings.Split(strings.TrimSpace(string(f.Data)), "\n")
				default:
					if err := os.WriteFile(filepath.Join(dir, f.Name), f.Data, 0o644); err != nil {
						t.Fatal(err)
					}
					if strings.HasSuffix(f.Name, ".c") {
						sources = append(sources, f.Name)
					}
				}
			}

			t.Chdir(dir)
			var out, errOut bytes.Buffer
			args = append(append(args, "-j", "2"), sources...)
			if got := run(context.Background(), args, &out, &errOut); got != exit {
				t.Errorf("exit status %d expected, got %d\nstderr:\n%s", exit, got, errOut.String())
			}

			if stdout != nil && out.String() != *stdout {
				t.Errorf("unexpected output\nexpected:\n%s\ngot:\n%s", *stdout, out.String())
			}
			for _, line := range contains {
				if !strings.Contains(out.String(), line) {
					t.Errorf("output must contain %q, got:\n%s", line, out.String())
				}
			}
		})
	}
}

func TestUsageErrors(t *testing.T) {
	dir := t.TempDir()
	broken := filepath.Join(dir, "broken.yaml")
	if err := os.WriteFile(broken, []byte("traits:\n  int_size: 8\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	source := filepath.Join(dir, "a.c")
	if err := os.WriteFile(source, []byte("int f(void) { return 0; }\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		args []string
	}{
		{
			name: "no files",
			args: nil,
		},
		{
			name: "unknown flag",
			args: []string{"-unknown", source},
		},
		{
			name: "unknown format",
			args: []string{"-format", "sarif", source},
		},
		{
			name: "invalid config",
			args: []string{"-config", broken, source},
		},
		{
			name: "missing source",
			args: []string{filepath.Join(dir, "missing.c")},
		},
		{
			name: "unwritable trace file",
			args: []string{"-trace", filepath.Join(dir, "missing", "spans.json"), source},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out, errOut bytes.Buffer
			if got := run(context.Background(), tt.args, &out, &errOut); got != exitFailure {
				t.Errorf("exit status %d expected, got %d", exitFailure, got)
			}
		})
	}
}

func TestTracing(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "a.c")
	if err := os.WriteFile(source, []byte("int f(int x) {\n\tif (x > 0)\n\t\treturn 1;\n\treturn 0;\n}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	spans := filepath.Join(dir, "spans.json")

	var out, errOut bytes.Buffer
	if got := run(context.Background(), []string{"-trace", spans, source}, &out, &errOut); got != exitOK {
		t.Fatalf("exit status %d expected, got %d\nstderr:\n%s", exitOK, got, errOut.String())
	}

	data, err := os.ReadFile(spans)
	if err != nil {
		t.Fatal(fmt.Errorf("read spans: %w", err))
	}
	for _, want := range []string{`"Name": "analyze file"`, `"Name": "analyze files"`, source} {
		if !bytes.Contains(data, []byte(want)) {
			t.Errorf("spans must contain %s, got:\n%s", want, data)
		}
	}
}

func TestOutputFormat(t *testing.T) {
	var f OutputFormat
	if err := f.UnmarshalText([]byte("json")); err != nil || f != OutputFormatJSON {
		t.Errorf("json format expected, got %s (%v)", f, err)
	}
	if err := f.UnmarshalText([]byte("xml")); err == nil {
		t.Error("error expected for an unknown format")
	}
	if got := OutputFormat(10).String(); got != "invalid(10)" {
		t.Errorf("invalid(10) expected, got %s", got)
	}
}

func TestKnownLibcFuncs(t *testing.T) {
	libc := newKnownLibcFuncs([]string{"die", "free"})

	noreturn := libc.noReturn()
	for _, name := range []string{"_Exit", "abort", "die", "exit", "free"} {
		found := false
		for _, n := range noreturn {
			found = found || n == name
		}
		if !found {
			t.Errorf("%s must never return, got %v", name, noreturn)
		}
	}

	prelude := string(libc.prelude())
	if !strings.Contains(prelude, "/* <stdlib.h> */\nvoid _Exit(int status);\n") {
		t.Errorf("unexpected prelude:\n%s", prelude)
	}
	if strings.Contains(prelude, "die") {
		t.Errorf("functions without prototypes must not be declared:\n%s", prelude)
	}
}
