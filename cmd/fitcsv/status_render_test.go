package main

import (
	"fmt"
	"strings"
	"testing"

	"fitcsv/internal/convert"
	"fitcsv/internal/macro"
	"fitcsv/internal/services"
)

func TestRenderStatusLineNoColor(t *testing.T) {
	got := renderStatusLine("Data", statusError, "missing input", false)
	want := fmt.Sprintf("%-*s %s", statusLabelWidth, "Data:", "[ERROR] missing input")
	if got != want {
		t.Fatalf("renderStatusLine mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderStatusLineWithColor(t *testing.T) {
	got := renderStatusLine("Fits", statusOK, "done", true)
	if !strings.HasPrefix(got, ansiGreen) || !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected green line, got %q", got)
	}
}

func TestRenderOutcomeUsesFirstErrorLine(t *testing.T) {
	err := &services.EngineExecutionError{ExitCode: 2, Stderr: "line one\nline two"}
	got := renderOutcome("Fits", convert.Outcome{Err: err}, false)
	if strings.Contains(got, "line one") {
		t.Fatalf("expected stderr trimmed from status line, got %q", got)
	}
	requireContains(t, got, "[ERROR] engine execution failed: exit status 2")

	ok := convert.Outcome{Result: convert.Result{Plan: macro.Plan{
		Files:      []string{"a.root", "b.root"},
		Output:     "data.csv",
		Invocation: &macro.Invocation{},
	}}}
	requireContains(t, renderOutcome("Data", ok, false), "[OK] 2 file(s) -> data.csv")
}

func TestRenderPlanKeepsFooterCase(t *testing.T) {
	plan := macro.Plan{Files: []string{"/d/Run_1.root"}, Kind: "root", Format: "fsroot", Output: "Data.csv"}
	got := renderPlan(plan)
	requireContains(t, got, "Output: Data.csv")
	requireContains(t, got, "/d/Run_1.root")
	requireContains(t, got, "root/fsroot")
}
