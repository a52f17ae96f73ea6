package signal

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/cwbudde/algo-iir/dsp/core"
)

// ErrInvalidParameter is returned for out-of-range generator arguments.
var ErrInvalidParameter = errors.New("signal: invalid parameter")

// ChirpMethod selects how the instantaneous frequency moves from f0 to f1.
type ChirpMethod int

const (
	Linear ChirpMethod = iota
	Quadratic
	Logarithmic
)

func (m ChirpMethod) String() string {
	switch m {
	case Linear:
		return "linear"
	case Quadratic:
		return "quadratic"
	case Logarithmic:
		return "logarithmic"
	default:
		return fmt.Sprintf("ChirpMethod(%d)", int(m))
	}
}

// Generator creates deterministic test signals from a shared configuration.
type Generator struct {
	cfg  core.ProcessorConfig
	seed int64
}

// Option configures a Generator.
type Option func(*Generator)

// WithSeed sets deterministic random seed for noise generation.
func WithSeed(seed int64) Option {
	return func(g *Generator) {
		g.seed = seed
	}
}

// NewGenerator creates a configured signal generator.
func NewGenerator(opts ...core.ProcessorOption) *Generator {
	return NewGeneratorWithOptions(opts)
}

// NewGeneratorWithOptions creates a configured signal generator with signal-specific options.
func NewGeneratorWithOptions(coreOpts []core.ProcessorOption, opts ...Option) *Generator {
	g := &Generator{
		cfg:  core.ApplyProcessorOptions(coreOpts...),
		seed: 1,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}

	return g
}

// Config returns the generator processor configuration.
func (g *Generator) Config() core.ProcessorConfig {
	return g.cfg
}

// Seed returns the noise seed.
func (g *Generator) Seed() int64 { return g.seed }

// SetSeed replaces the noise seed. Each noise call restarts from the seed.
func (g *Generator) SetSeed(seed int64) { g.seed = seed }

func checkLength(kind string, samples int) error {
	if samples <= 0 {
		return fmt.Errorf("%w: %s samples must be > 0: %d", ErrInvalidParameter, kind, samples)
	}

	return nil
}

func (g *Generator) checkFrequency(kind string, freqHz float64) error {
	nyq := g.cfg.SampleRate / 2
	if freqHz < 0 || freqHz > nyq || math.IsNaN(freqHz) {
		return fmt.Errorf("%w: %s frequency must be in [0, %g]: %g", ErrInvalidParameter, kind, nyq, freqHz)
	}

	return nil
}

// Impulse generates a unit-sample impulse of the given amplitude at index 0.
func (g *Generator) Impulse(amplitude float64, samples int) ([]float64, error) {
	if err := checkLength("impulse", samples); err != nil {
		return nil, err
	}

	out := make([]float64, samples)
	out[0] = amplitude

	return out, nil
}

// Step generates a constant signal starting at index 0.
func (g *Generator) Step(amplitude float64, samples int) ([]float64, error) {
	if err := checkLength("step", samples); err != nil {
		return nil, err
	}

	out := make([]float64, samples)
	for i := range out {
		out[i] = amplitude
	}

	return out, nil
}

// Sine generates a sine wave.
func (g *Generator) Sine(freqHz, amplitude float64, samples int) ([]float64, error) {
	if err := checkLength("sine", samples); err != nil {
		return nil, err
	}

	if err := g.checkFrequency("sine", freqHz); err != nil {
		return nil, err
	}

	out := make([]float64, samples)
	step := 2 * math.Pi * freqHz / g.cfg.SampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}

	return out, nil
}

// Multitone sums equal-amplitude sines. The peak never exceeds amplitude.
func (g *Generator) Multitone(freqsHz []float64, amplitude float64, samples int) ([]float64, error) {
	if len(freqsHz) == 0 {
		return nil, fmt.Errorf("%w: multitone needs at least one frequency", ErrInvalidParameter)
	}

	out := make([]float64, samples)
	each := amplitude / float64(len(freqsHz))
	for _, f := range freqsHz {
		tone, err := g.Sine(f, each, samples)
		if err != nil {
			return nil, err
		}

		for i, v := range tone {
			out[i] += v
		}
	}

	return out, nil
}

// Chirp generates a swept sine whose instantaneous frequency moves from f0
// at the first sample to f1 at the last one.
func (g *Generator) Chirp(f0, f1, amplitude float64, samples int, method ChirpMethod) ([]float64, error) {
	if samples < 2 {
		return nil, fmt.Errorf("%w: chirp samples must be >= 2: %d", ErrInvalidParameter, samples)
	}

	for _, f := range []float64{f0, f1} {
		if err := g.checkFrequency("chirp", f); err != nil {
			return nil, err
		}
	}

	fs := g.cfg.SampleRate
	dur := float64(samples-1) / fs

	var phase func(t float64) float64

	switch method {
	case Linear:
		k := (f1 - f0) / dur
		phase = func(t float64) float64 { return f0*t + k*t*t/2 }
	case Quadratic:
		k := (f1 - f0) / (dur * dur)
		phase = func(t float64) float64 { return f0*t + k*t*t*t/3 }
	case Logarithmic:
		if f0 <= 0 || f1 <= 0 {
			return nil, fmt.Errorf("%w: logarithmic chirp needs f0, f1 > 0", ErrInvalidParameter)
		}

		if f0 == f1 {
			phase = func(t float64) float64 { return f0 * t }
			break
		}

		ratio := f1 / f0
		lr := math.Log(ratio)
		phase = func(t float64) float64 {
			return f0 * dur / lr * (math.Pow(ratio, t/dur) - 1)
		}
	default:
		return nil, fmt.Errorf("%w: unknown chirp method %v", ErrInvalidParameter, method)
	}

	out := make([]float64, samples)
	for i := range out {
		out[i] = amplitude * math.Sin(2*math.Pi*phase(float64(i)/fs))
	}

	return out, nil
}

// PulseTrain generates rectangular pulses of width samples every period
// samples, starting at index 0.
func (g *Generator) PulseTrain(period, width int, amplitude float64, samples int) ([]float64, error) {
	if err := checkLength("pulse", samples); err != nil {
		return nil, err
	}

	if period <= 0 || width <= 0 || width > period {
		return nil, fmt.Errorf("%w: pulse period %d / width %d", ErrInvalidParameter, period, width)
	}

	out := make([]float64, samples)
	for i := range out {
		if i%period < width {
			out[i] = amplitude
		}
	}

	return out, nil
}

// WhiteNoise generates deterministic uniform noise in [-amplitude, amplitude].
func (g *Generator) WhiteNoise(amplitude float64, samples int) ([]float64, error) {
	if err := checkLength("noise", samples); err != nil {
		return nil, err
	}

	if amplitude < 0 {
		return nil, fmt.Errorf("%w: noise amplitude must be >= 0: %f", ErrInvalidParameter, amplitude)
	}

	out := make([]float64, samples)
	rng := rand.New(rand.NewSource(g.seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}

	return out, nil
}

// GaussianNoise generates deterministic zero-mean normal noise.
func (g *Generator) GaussianNoise(stddev float64, samples int) ([]float64, error) {
	if err := checkLength("noise", samples); err != nil {
		return nil, err
	}

	if stddev < 0 {
		return nil, fmt.Errorf("%w: noise stddev must be >= 0: %f", ErrInvalidParameter, stddev)
	}

	out := make([]float64, samples)
	rng := rand.New(rand.NewSource(g.seed))
	for i := range out {
		out[i] = rng.NormFloat64() * stddev
	}

	return out, nil
}

// Normalize scales data to target peak amplitude and returns a new slice.
func Normalize(data []float64, targetPeak float64) ([]float64, error) {
	if targetPeak < 0 {
		return nil, fmt.Errorf("%w: normalize target peak must be >= 0: %f", ErrInvalidParameter, targetPeak)
	}

	if len(data) == 0 {
		return nil, fmt.Errorf("%w: normalize input must not be empty", ErrInvalidParameter)
	}

	maxAbs := 0.0
	for _, v := range data {
		maxAbs = math.Max(maxAbs, math.Abs(v))
	}

	out := make([]float64, len(data))
	if maxAbs == 0 || targetPeak == 0 {
		return out, nil
	}

	scale := targetPeak / maxAbs
	for i, v := range data {
		out[i] = v * scale
	}

	return out, nil
}
