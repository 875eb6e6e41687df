package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/landokit/landokit/pkg/manifest"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("%v: %v", args, err)
	}
	return buf.String()
}

func TestVersionCommand(t *testing.T) {
	out := execute(t, "version")
	if !strings.Contains(out, "landokit") {
		t.Errorf("unexpected version output: %q", out)
	}
}

func TestInitCommand(t *testing.T) {
	output := filepath.Join(t.TempDir(), manifest.Filename)
	execute(t, "init", "lamp", "--name", "demo", "--output", output)

	m, err := manifest.Load(output)
	if err != nil {
		t.Fatal(err)
	}
	if m.Name != "demo" || m.Recipe != "lamp" {
		t.Errorf("generated manifest: %+v", m)
	}
}

func TestInitUnknownRecipe(t *testing.T) {
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"init", "rails", "--output", filepath.Join(t.TempDir(), "x.yml")})
	if err := rootCmd.Execute(); err == nil {
		t.Error("expected error for unknown recipe")
	}
}

func TestScanCommand(t *testing.T) {
	root := t.TempDir()
	project := filepath.Join(root, "site")
	if err := os.MkdirAll(project, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(project, manifest.Filename), []byte("name: site\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	out := execute(t, "scan", root)
	if !strings.Contains(out, project) {
		t.Errorf("scan output missing project: %q", out)
	}
}
