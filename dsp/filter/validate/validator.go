package validate

import (
	"context"
	"math/rand/v2"

	"github.com/cwbudde/algo-iir/dsp/filter/sos"
)

// Validator runs diagnostics on one cascade. It holds no state besides its
// configuration and the random source consumed by [Validator.Sensitivity].
// A Validator is not safe for concurrent use because of that source; the
// cascade itself may be shared freely.
type Validator struct {
	cascade *sos.Cascade
	cfg     config
}

// New creates a Validator for c.
func New(c *sos.Cascade, opts ...Option) *Validator {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	if cfg.rng == nil {
		cfg.rng = rand.New(rand.NewPCG(defaultSeed, defaultSeed))
	}

	return &Validator{cascade: c, cfg: cfg}
}

// Cascade returns the cascade under validation.
func (v *Validator) Cascade() *sos.Cascade {
	return v.cascade
}

// Validate runs every analysis with the configured defaults and checks
// compliance against the cascade's own design metadata.
func (v *Validator) Validate(ctx context.Context) (Report, error) {
	if v.cascade == nil || v.cascade.Empty() {
		return Report{}, sos.ErrNotDesigned
	}

	stab, err := v.Stability()
	if err != nil {
		return Report{}, err
	}

	freq, err := v.Frequency(v.cfg.frequencyPoints)
	if err != nil {
		return Report{}, err
	}

	sens, err := v.sensitivity(ctx, v.cfg.sensitivityTrials, v.cfg.perturbationRatio)
	if err != nil {
		return Report{}, err
	}

	comp, err := v.Compliance(v.cascade.Design())
	if err != nil {
		return Report{}, err
	}

	return Report{
		Design:      v.cascade.Design(),
		Sections:    v.cascade.NumSections(),
		Stability:   stab,
		Causality:   v.Causality(),
		Frequency:   freq,
		Sensitivity: sens,
		Compliance:  &comp,
	}, nil
}
