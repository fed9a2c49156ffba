package convert_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fitcsv/internal/convert"
	"fitcsv/internal/csvcheck"
	"fitcsv/internal/macro"
	"fitcsv/internal/services"
	"fitcsv/internal/testsupport"
)

func writeOutputs(t *testing.T, dir string, dataRows, fitRows int) {
	t.Helper()
	data := []string{"m_low,m_high,m_center,events,events_err,"}
	for i := 0; i < dataRows; i++ {
		data = append(data, "1.0,1.1,1.05,100,10,")
	}
	fits := []string{"file,detected_events,detected_events_err,1p,1p_err,"}
	for i := 0; i < fitRows; i++ {
		fits = append(fits, "bin.fit,90,9,0.4,0.1,")
	}
	for name, lines := range map[string][]string{"data.csv": data, "best_fits.csv": fits} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
}

func TestBatchConvertsBothAndChecksAlignment(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	in := t.TempDir()
	out := t.TempDir()
	data := testsupport.WriteInputs(t, in, "mass_1.root", "mass_2.root")
	fits := testsupport.WriteInputs(t, in, "mass_1.fit", "mass_2.fit")
	writeOutputs(t, out, 2, 2)
	exec := &stubExecutor{}
	conv := newConverter(t, cfg, exec)

	result, err := conv.Batch(context.Background(), convert.BatchRequest{
		Data: data, Fits: fits, Dir: out, Options: macro.DefaultOptions(cfg),
	})
	if err != nil {
		t.Fatalf("Batch returned error: %v", err)
	}
	if len(exec.commands) != 2 {
		t.Fatalf("expected two engine runs, got %d", len(exec.commands))
	}
	if result.Data.Result.Plan.Output != filepath.Join(out, "data.csv") {
		t.Fatalf("unexpected data output %q", result.Data.Result.Plan.Output)
	}
	if result.Fits.Result.Plan.Output != filepath.Join(out, "best_fits.csv") {
		t.Fatalf("unexpected fit output %q", result.Fits.Result.Plan.Output)
	}
	if result.Check == nil || !result.Check.OK() {
		t.Fatalf("expected clean alignment check, got %#v", result.Check)
	}
}

func TestBatchReportsBothFailures(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	in := t.TempDir()
	fits := testsupport.WriteInputs(t, in, "mass_1.fit")
	exec := &stubExecutor{exitCode: 2}
	conv := newConverter(t, cfg, exec)

	result, err := conv.Batch(context.Background(), convert.BatchRequest{
		Data:    []string{filepath.Join(in, "missing.root")},
		Fits:    fits,
		Dir:     t.TempDir(),
		Options: macro.DefaultOptions(cfg),
	})
	if err == nil {
		t.Fatal("expected batch error")
	}
	if !errors.Is(result.Data.Err, services.ErrMissingInput) {
		t.Fatalf("expected data missing input, got %v", result.Data.Err)
	}
	if !errors.Is(result.Fits.Err, services.ErrEngineExecution) {
		t.Fatalf("expected fit engine failure, got %v", result.Fits.Err)
	}
	if len(exec.commands) != 1 {
		t.Fatalf("fit conversion should still run, got %d engine calls", len(exec.commands))
	}
	if result.Check != nil {
		t.Fatal("alignment check should be skipped after failures")
	}
	if !strings.Contains(err.Error(), "data conversion") || !strings.Contains(err.Error(), "fit conversion") {
		t.Fatalf("expected both failures in error, got %q", err.Error())
	}
	if services.ExitCode(err) != 2 {
		t.Fatalf("expected engine exit code 2, got %d", services.ExitCode(err))
	}
}

func TestBatchDetectsRowMismatch(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	in := t.TempDir()
	out := t.TempDir()
	data := testsupport.WriteInputs(t, in, "mass_1.root", "mass_2.root", "mass_3.root")
	fits := testsupport.WriteInputs(t, in, "mass_1.fit", "mass_2.fit")
	writeOutputs(t, out, 3, 2)
	conv := newConverter(t, cfg, &stubExecutor{})

	result, err := conv.Batch(context.Background(), convert.BatchRequest{
		Data: data, Fits: fits, Dir: out, Options: macro.DefaultOptions(cfg),
	})
	if !errors.Is(err, csvcheck.ErrMisaligned) {
		t.Fatalf("expected misalignment error, got %v", err)
	}
	if result.Check == nil || result.Check.OK() {
		t.Fatal("expected failed alignment report")
	}
}

func TestBatchRejectsSwappedInputs(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	in := t.TempDir()
	fits := testsupport.WriteInputs(t, in, "mass_1.fit")
	exec := &stubExecutor{}
	conv := newConverter(t, cfg, exec)

	result, _ := conv.Batch(context.Background(), convert.BatchRequest{
		Data: fits, Fits: fits, Dir: t.TempDir(), Options: macro.DefaultOptions(cfg),
	})
	if !errors.Is(result.Data.Err, services.ErrInvalidKind) {
		t.Fatalf("expected invalid kind for fit files as data, got %v", result.Data.Err)
	}
	if len(exec.commands) != 1 {
		t.Fatalf("expected only the fit conversion to run, got %d", len(exec.commands))
	}
}
