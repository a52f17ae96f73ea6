package validate

import (
	"context"
	"errors"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/cwbudde/algo-iir/dsp/core"
	"github.com/cwbudde/algo-iir/dsp/filter/sos"
)

// SensitivityReport summarizes a Monte-Carlo perturbation run.
//
// Trials that fail numerically (non-finite coefficients, unrealizable a0)
// are skipped and contribute to neither StabilityFlips nor the deviation
// statistics. Robustness is computed over all attempted trials.
type SensitivityReport struct {
	TrialsAttempted          int     `json:"trials_attempted" yaml:"trials_attempted"`
	TrialsValid              int     `json:"trials_valid" yaml:"trials_valid"`
	PerturbationRatio        float64 `json:"perturbation_ratio" yaml:"perturbation_ratio"`
	BaselineStable           bool    `json:"baseline_stable" yaml:"baseline_stable"`
	StabilityFlips           int     `json:"stability_flips" yaml:"stability_flips"`
	MeanMagnitudeDeviationDB float64 `json:"mean_magnitude_deviation_db" yaml:"mean_magnitude_deviation_db"`
	MaxMagnitudeDeviationDB  float64 `json:"max_magnitude_deviation_db" yaml:"max_magnitude_deviation_db"`
	// Robustness is 1 - flips/attempted, clamped to [0, 1].
	Robustness float64 `json:"robustness" yaml:"robustness"`
}

// Summary returns the "N trials attempted, M valid" line.
func (r SensitivityReport) Summary() string {
	return fmt.Sprintf("%d trials attempted, %d valid", r.TrialsAttempted, r.TrialsValid)
}

type trialResult struct {
	valid     bool
	flipped   bool
	deviation float64
}

// Sensitivity perturbs every coefficient as c*(1+N(0, ratio)) for the given
// number of trials and measures stability flips and the mean absolute
// magnitude deviation on a 100-point grid.
func (v *Validator) Sensitivity(trials int, ratio float64) (SensitivityReport, error) {
	return v.sensitivity(context.Background(), trials, ratio)
}

func (v *Validator) sensitivity(ctx context.Context, trials int, ratio float64) (SensitivityReport, error) {
	if trials <= 0 {
		return SensitivityReport{}, fmt.Errorf("%w: trials must be > 0: %d", sos.ErrInvalidParameter, trials)
	}

	if ratio < 0 || math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		return SensitivityReport{}, fmt.Errorf("%w: perturbation ratio must be finite and >= 0: %v", sos.ErrInvalidParameter, ratio)
	}

	baseStable, err := v.cascade.IsStable()
	if err != nil {
		return SensitivityReport{}, err
	}

	_, baseH, err := v.cascade.FrequencyResponse(sensitivityGridPoints, sos.Linear)
	if err != nil {
		return SensitivityReport{}, err
	}

	baseDB := magnitudeDB(baseH)

	// Draws are taken sequentially so the outcome does not depend on the
	// worker count.
	perTrial := 6 * v.cascade.NumSections()
	draws := make([][]float64, trials)
	for t := range draws {
		d := make([]float64, perTrial)
		for k := range d {
			d[k] = v.cfg.rng.NormFloat64() * ratio
		}
		draws[t] = d
	}

	results := make([]trialResult, trials)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(v.cfg.workers)

	for t := range draws {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			res, err := v.trial(draws[t], baseStable, baseDB)
			if err != nil {
				if v.cfg.logger != nil {
					v.cfg.logger.Printf("sensitivity trial %d skipped: %v", t+1, err)
				}

				return nil
			}

			results[t] = res

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return SensitivityReport{}, err
	}

	rep := SensitivityReport{
		TrialsAttempted:   trials,
		PerturbationRatio: ratio,
		BaselineStable:    baseStable,
	}

	devs := make([]float64, 0, trials)
	for _, r := range results {
		if !r.valid {
			continue
		}

		rep.TrialsValid++
		if r.flipped {
			rep.StabilityFlips++
		}

		devs = append(devs, r.deviation)
	}

	if len(devs) > 0 {
		rep.MeanMagnitudeDeviationDB = stat.Mean(devs, nil)
		rep.MaxMagnitudeDeviationDB = floats.Max(devs)
	}

	rep.Robustness = core.Clamp(1-float64(rep.StabilityFlips)/float64(trials), 0, 1)

	return rep, nil
}

// trial evaluates one perturbed cascade. Draws are consumed in section
// order, b0..a2 within a section.
func (v *Validator) trial(draw []float64, baseStable bool, baseDB []float64) (trialResult, error) {
	k := 0
	perturbed := v.cascade.Map(func(c float64) float64 {
		p := c * (1 + draw[k])
		k++

		return p
	})

	for i, s := range perturbed.Sections() {
		if !s.Finite() {
			return trialResult{}, fmt.Errorf("section %d: non-finite coefficient", i+1)
		}
	}

	stable, err := perturbed.IsStable()
	if err != nil {
		return trialResult{}, err
	}

	_, h, err := perturbed.FrequencyResponse(sensitivityGridPoints, sos.Linear)
	if err != nil {
		return trialResult{}, err
	}

	db := magnitudeDB(h)
	diff := make([]float64, len(db))
	for i := range db {
		diff[i] = math.Abs(db[i] - baseDB[i])
	}

	dev := stat.Mean(diff, nil)
	if math.IsNaN(dev) || math.IsInf(dev, 0) {
		return trialResult{}, errors.New("non-finite magnitude deviation")
	}

	return trialResult{valid: true, flipped: stable != baseStable, deviation: dev}, nil
}
