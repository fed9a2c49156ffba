package convert

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"fitcsv/internal/csvcheck"
	"fitcsv/internal/fileset"
	"fitcsv/internal/logging"
	"fitcsv/internal/macro"
)

// BatchRequest pairs the ROOT data inputs with the fit inputs of one analysis.
type BatchRequest struct {
	Data []string
	Fits []string
	// Dir receives data.csv and best_fits.csv. Empty means the working directory.
	Dir     string
	Options macro.Options
}

// Outcome is the result of one half of a batch.
type Outcome struct {
	Result Result
	Err    error
}

// BatchResult reports both conversions and the alignment check.
type BatchResult struct {
	Data  Outcome
	Fits  Outcome
	Check *csvcheck.Report
}

// Err joins every failure in the batch. The data failure comes first.
func (b BatchResult) Err() error {
	var errs []error
	if b.Data.Err != nil {
		errs = append(errs, fmt.Errorf("data conversion: %w", b.Data.Err))
	}
	if b.Fits.Err != nil {
		errs = append(errs, fmt.Errorf("fit conversion: %w", b.Fits.Err))
	}
	if b.Check != nil {
		if err := b.Check.Err(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Batch converts the data files and then the fit files. The second conversion
// runs even when the first fails. The alignment check runs only when both
// produced output.
func (c *Converter) Batch(ctx context.Context, req BatchRequest) (BatchResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	var out BatchResult

	dataOpts := req.Options
	dataOpts.Output = filepath.Join(req.Dir, c.cfg.Conversion.DataOutput)
	out.Data.Result, out.Data.Err = c.run(ctx, req.Data, dataOpts, fileset.KindRoot)
	if out.Data.Err != nil {
		c.logger.Warn("data conversion failed; continuing with fits", logging.Error(out.Data.Err))
	}

	fitOpts := req.Options
	fitOpts.FSRoot = false
	fitOpts.Output = filepath.Join(req.Dir, c.cfg.Conversion.BatchFitOutput)
	out.Fits.Result, out.Fits.Err = c.run(ctx, req.Fits, fitOpts, fileset.KindFit)
	if out.Fits.Err != nil {
		c.logger.Warn("fit conversion failed", logging.Error(out.Fits.Err))
	}

	if out.Data.Err == nil && out.Fits.Err == nil && !req.Options.Preview {
		report, err := csvcheck.Check(out.Data.Result.Plan.Output, out.Fits.Result.Plan.Output)
		if err != nil {
			return out, errors.Join(out.Err(), fmt.Errorf("alignment check: %w", err))
		}
		out.Check = &report
		if report.OK() {
			c.logger.Info("batch outputs aligned",
				logging.Int("rows", report.Data.Rows),
				logging.Int("amplitudes", len(report.Pairs)),
			)
		}
	}
	return out, out.Err()
}
