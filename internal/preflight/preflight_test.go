package preflight

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"fitcsv/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_Creatable(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope", "deeper"))
	if !result.Passed {
		t.Fatalf("expected pass for creatable dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
	if result := CheckDirectoryAccess("test", filepath.Join(f, "child")); result.Passed {
		t.Fatal("expected failure below a regular file")
	}
}

func TestCheckRootSys(t *testing.T) {
	if result := CheckRootSys(""); result.Passed {
		t.Fatal("expected failure for empty ROOTSYS")
	}
	if result := CheckRootSys(filepath.Join(t.TempDir(), "missing")); result.Passed {
		t.Fatal("expected failure for missing ROOTSYS")
	}
	if result := CheckRootSys(t.TempDir()); !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
}

func TestCheckBinary(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("executable bit semantics differ on windows")
	}
	dir := t.TempDir()
	bin := filepath.Join(dir, "root")
	if err := os.WriteFile(bin, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	if result := CheckBinary("engine", bin); !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
	if result := CheckBinary("engine", filepath.Join(dir, "absent")); result.Passed {
		t.Fatal("expected failure for missing binary")
	}
	if result := CheckBinary("engine", " "); result.Passed {
		t.Fatal("expected failure for unset command")
	}
}

func TestCheckReadableFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "extract_fit_results.cc")
	if err := os.WriteFile(file, []byte("void extract_fit_results() {}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if result := CheckReadableFile("macro", file); !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
	if result := CheckReadableFile("macro", dir); result.Passed {
		t.Fatal("expected failure for directory")
	}
	if result := CheckReadableFile("macro", "${FSROOT}/rootlogon.FSROOT.C"); result.Passed {
		t.Fatal("expected failure for unresolved variable")
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	if results := RunAll(nil); results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAll_ReadyEnvironment(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell stub requires a POSIX shell")
	}
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedEngine("exit 0"))
	for _, name := range []string{cfg.Engine.FitMacro, cfg.Engine.AmpToolsLoader, cfg.Engine.BinMacro, cfg.Engine.FSRootMacro} {
		testsupport.WriteInputs(t, cfg.Engine.MacroDir, name)
	}

	results := RunAll(cfg)
	if Failed(results) {
		for _, r := range results {
			t.Logf("%s: passed=%v %s", r.Name, r.Passed, r.Detail)
		}
		t.Fatal("expected required checks to pass")
	}
	var logon *Result
	for i := range results {
		if results[i].Name == "FSRoot logon" {
			logon = &results[i]
		}
	}
	if logon == nil || logon.Passed || !logon.Optional {
		t.Fatalf("expected optional failing FSRoot logon check, got %#v", logon)
	}
	if results[len(results)-1].Name != "History directory" {
		t.Fatalf("expected history check last, got %q", results[len(results)-1].Name)
	}
}

func TestRunAll_MissingRootSys(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithoutRootSys(), testsupport.WithHistoryDisabled())
	results := RunAll(cfg)
	if !Failed(results) {
		t.Fatal("expected failure without ROOTSYS")
	}
	if results[0].Name != "ROOTSYS" || results[0].Passed {
		t.Fatalf("expected failing ROOTSYS check first, got %#v", results[0])
	}
	for _, r := range results {
		if r.Name == "History directory" {
			t.Fatal("history check should be skipped when disabled")
		}
	}
}
