package validate

import (
	"log"
	"math/rand/v2"
)

const (
	defaultFrequencyPoints   = 1024
	defaultSensitivityTrials = 100
	defaultPerturbationRatio = 0.001
	defaultSeed              = 1

	// sensitivityGridPoints is the coarse grid used per sensitivity trial.
	sensitivityGridPoints = 100
)

type config struct {
	rng               *rand.Rand
	workers           int
	frequencyPoints   int
	sensitivityTrials int
	perturbationRatio float64
	logger            *log.Logger
}

// Option configures a Validator.
type Option func(*config)

func defaultConfig() config {
	return config{
		workers:           1,
		frequencyPoints:   defaultFrequencyPoints,
		sensitivityTrials: defaultSensitivityTrials,
		perturbationRatio: defaultPerturbationRatio,
	}
}

// WithRand sets the random source used for sensitivity perturbations.
func WithRand(rng *rand.Rand) Option {
	return func(cfg *config) {
		if rng != nil {
			cfg.rng = rng
		}
	}
}

// WithSeed seeds a PCG source for sensitivity perturbations.
func WithSeed(seed uint64) Option {
	return func(cfg *config) {
		cfg.rng = rand.New(rand.NewPCG(seed, seed))
	}
}

// WithWorkers sets how many goroutines evaluate sensitivity trials.
func WithWorkers(n int) Option {
	return func(cfg *config) {
		if n > 0 {
			cfg.workers = n
		}
	}
}

// WithFrequencyPoints sets the grid size used by Validate for the frequency
// analysis.
func WithFrequencyPoints(n int) Option {
	return func(cfg *config) {
		if n >= 2 {
			cfg.frequencyPoints = n
		}
	}
}

// WithSensitivityTrials sets the trial count used by Validate.
func WithSensitivityTrials(n int) Option {
	return func(cfg *config) {
		if n > 0 {
			cfg.sensitivityTrials = n
		}
	}
}

// WithPerturbationRatio sets the relative standard deviation used by
// Validate for coefficient perturbations.
func WithPerturbationRatio(r float64) Option {
	return func(cfg *config) {
		if r >= 0 {
			cfg.perturbationRatio = r
		}
	}
}

// WithLogger enables notes about skipped sensitivity trials.
func WithLogger(l *log.Logger) Option {
	return func(cfg *config) {
		cfg.logger = l
	}
}
