// Package results extracts the error-rate series an adaptation run prints
// epoch by epoch and summarizes it.
package results

import (
	"bufio"
	"io"
	"regexp"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// The scripts print one line per epoch:
//
//	Epoch 0/500:            31.25
//	Epoch 3/500 (42s):      24.61           0.2461
//
// and a termination line when the early-stop window fires:
//
//	Termination: 23.44
var (
	epochLine       = regexp.MustCompile(`Epoch (\d+)/(\d+)(?: \((\d+)s\))?:\s+([0-9.]+)(?:\s+([0-9.]+))?`)
	terminationLine = regexp.MustCompile(`Termination: ([0-9.]+)`)
)

type EpochRecord struct {
	Epoch     int     `json:"epoch" msgpack:"epoch"`
	MaxEpoch  int     `json:"maxEpoch" msgpack:"max_epoch"`
	Seconds   float64 `json:"seconds" msgpack:"seconds"`
	TestError float64 `json:"testError" msgpack:"test_error"` // percent
	Loss      float64 `json:"loss,omitempty" msgpack:"loss"`
}

type RunResult struct {
	Records          []EpochRecord `json:"records" msgpack:"records"`
	Terminated       bool          `json:"terminated" msgpack:"terminated"`
	TerminationError float64       `json:"terminationError,omitempty" msgpack:"termination_error"`
}

// Parse scans the captured run output for epoch and termination lines.
// Unrecognized lines are skipped, so the timestamped lifecycle entries in
// progress.log do not disturb the series.
func Parse(r io.Reader) (*RunResult, error) {
	result := &RunResult{}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()

		if m := epochLine.FindStringSubmatch(line); m != nil {
			rec := EpochRecord{}
			rec.Epoch, _ = strconv.Atoi(m[1])
			rec.MaxEpoch, _ = strconv.Atoi(m[2])
			if m[3] != "" {
				rec.Seconds, _ = strconv.ParseFloat(m[3], 64)
			}
			rec.TestError, _ = strconv.ParseFloat(m[4], 64)
			if m[5] != "" {
				rec.Loss, _ = strconv.ParseFloat(m[5], 64)
			}
			result.Records = append(result.Records, rec)
			continue
		}

		if m := terminationLine.FindStringSubmatch(line); m != nil {
			result.Terminated = true
			result.TerminationError, _ = strconv.ParseFloat(m[1], 64)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// ParseString is Parse over an in-memory log.
func ParseString(content string) (*RunResult, error) {
	return Parse(strings.NewReader(content))
}

// Errors returns the per-epoch test error series in percent.
func (r *RunResult) Errors() []float64 {
	errs := make([]float64, len(r.Records))
	for i, rec := range r.Records {
		errs[i] = rec.TestError
	}
	return errs
}

// AdaptationErrors returns the error series the early-stop check runs
// over: every epoch after the baseline evaluation at epoch 0.
func (r *RunResult) AdaptationErrors() []float64 {
	errs := make([]float64, 0, len(r.Records))
	for _, rec := range r.Records {
		if rec.Epoch == 0 {
			continue
		}
		errs = append(errs, rec.TestError)
	}
	return errs
}

type Stats struct {
	Epochs     int     `json:"epochs"`
	FinalError float64 `json:"finalError"`
	BestError  float64 `json:"bestError"`
	BestEpoch  int     `json:"bestEpoch"`
	MeanError  float64 `json:"meanError"`
	StdDev     float64 `json:"stdDev"`
}

func (r *RunResult) Stats() Stats {
	errs := r.Errors()
	if len(errs) == 0 {
		return Stats{}
	}

	best := floats.MinIdx(errs)
	return Stats{
		Epochs:     len(errs),
		FinalError: errs[len(errs)-1],
		BestError:  errs[best],
		BestEpoch:  r.Records[best].Epoch,
		MeanError:  stat.Mean(errs, nil),
		StdDev:     stat.StdDev(errs, nil),
	}
}

// ShouldStop reports whether the early-termination window fires after the
// given series: the error rate stopEpoch epochs back must be below the
// minimum of everything since.
func ShouldStop(errs []float64, epoch, stopEpoch int) bool {
	if epoch <= stopEpoch+1 || len(errs) < stopEpoch {
		return false
	}

	window := errs[len(errs)-stopEpoch+1:]
	if len(window) == 0 {
		return false
	}

	return errs[len(errs)-stopEpoch] < floats.Min(window)
}
