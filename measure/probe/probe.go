package probe

import (
	"errors"
	"fmt"
	"io"
	"math"
	"math/bits"
	"math/cmplx"

	algofft "github.com/cwbudde/algo-fft"
	"github.com/cwbudde/algo-vecmath"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"gonum.org/v1/gonum/floats"

	"github.com/cwbudde/algo-iir/dsp/core"
	"github.com/cwbudde/algo-iir/dsp/filter/sos"
	"github.com/cwbudde/algo-iir/dsp/signal"
)

// ErrInvalidParameter is returned for out-of-range probe arguments.
var ErrInvalidParameter = errors.New("probe: invalid parameter")

// dbFloor bounds linear values before dB conversion.
const dbFloor = 1e-12

// Tester applies a cascade offline to generated signals.
type Tester struct {
	cascade   *sos.Cascade
	cfg       core.ProcessorConfig
	structure sos.Structure
	gen       *signal.Generator
}

// Option configures a Tester.
type Option func(*Tester)

// WithLength sets the number of samples every probe signal has.
func WithLength(n int) Option {
	return func(t *Tester) {
		core.WithLength(n)(&t.cfg)
	}
}

// WithStructure selects the realization used to run the cascade.
func WithStructure(st sos.Structure) Option {
	return func(t *Tester) {
		t.structure = st
	}
}

// WithSeed sets the noise seed.
func WithSeed(seed int64) Option {
	return func(t *Tester) {
		t.gen.SetSeed(seed)
	}
}

// New returns a Tester for c. The sample rate is taken from the design.
func New(c *sos.Cascade, opts ...Option) (*Tester, error) {
	if c == nil || c.Empty() {
		return nil, sos.ErrNotDesigned
	}

	if _, err := c.Normalized(); err != nil {
		return nil, err
	}

	cfg := core.ApplyProcessorOptions(core.WithSampleRate(c.SampleRate()))
	t := &Tester{
		cascade:   c,
		cfg:       cfg,
		structure: sos.DirectForm2Transposed,
		gen:       signal.NewGenerator(core.WithSampleRate(cfg.SampleRate)),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(t)
		}
	}

	return t, nil
}

// Length returns the probe signal length.
func (t *Tester) Length() int { return t.cfg.Length }

func (t *Tester) run(x []float64) ([]float64, error) {
	return t.cascade.Filter(x, t.structure)
}

// ImpulseResponse filters a unit impulse.
func (t *Tester) ImpulseResponse() ([]float64, error) {
	x, err := t.gen.Impulse(1, t.cfg.Length)
	if err != nil {
		return nil, err
	}

	return t.run(x)
}

// StepResponse filters a unit step.
func (t *Tester) StepResponse() ([]float64, error) {
	x, err := t.gen.Step(1, t.cfg.Length)
	if err != nil {
		return nil, err
	}

	return t.run(x)
}

// ToneGain is the measured and analytic gain of the cascade at one tone.
type ToneGain struct {
	FrequencyHz float64 `json:"frequency_hz" yaml:"frequency_hz"`
	// RMSGainDB compares output and input RMS over the settled half.
	RMSGainDB float64 `json:"rms_gain_db" yaml:"rms_gain_db"`
	// BinGainDB compares the tone's DFT bin power in output and input.
	BinGainDB  float64 `json:"bin_gain_db" yaml:"bin_gain_db"`
	AnalyticDB float64 `json:"analytic_db" yaml:"analytic_db"`
}

// ToneGains measures the steady-state gain at each frequency. Only the
// second half of every filtered tone is measured so the transient is
// excluded.
func (t *Tester) ToneGains(freqsHz []float64) ([]ToneGain, error) {
	if len(freqsHz) == 0 {
		return nil, fmt.Errorf("%w: no tone frequencies", ErrInvalidParameter)
	}

	n := t.cfg.Length
	settled := n / 2

	out := make([]ToneGain, 0, len(freqsHz))
	for _, f := range freqsHz {
		// DC and Nyquist tones are degenerate for a sine probe.
		if f <= 0 || f >= t.cfg.SampleRate/2 {
			return nil, fmt.Errorf("%w: tone frequency must be in (0, %g): %g", ErrInvalidParameter, t.cfg.SampleRate/2, f)
		}

		x, err := t.gen.Sine(f, 1, n)
		if err != nil {
			return nil, err
		}

		y, err := t.run(x)
		if err != nil {
			return nil, err
		}

		pin, err := tonePower(x[settled:], f, t.cfg.SampleRate)
		if err != nil {
			return nil, err
		}

		pout, err := tonePower(y[settled:], f, t.cfg.SampleRate)
		if err != nil {
			return nil, err
		}

		h, err := t.cascade.Response(f)
		if err != nil {
			return nil, err
		}

		out = append(out, ToneGain{
			FrequencyHz: f,
			RMSGainDB:   core.PowerToDB(meanSquare(y[settled:])/meanSquare(x[settled:]), dbFloor),
			BinGainDB:   core.PowerToDB(pout/math.Max(pin, dbFloor), dbFloor),
			AnalyticDB:  core.LinearToDB(cmplx.Abs(h), dbFloor),
		})
	}

	return out, nil
}

// NoiseReport describes how a tone buried in Gaussian noise comes out of
// the cascade.
type NoiseReport struct {
	SignalHz      float64 `json:"signal_hz" yaml:"signal_hz"`
	NoiseStdDev   float64 `json:"noise_stddev" yaml:"noise_stddev"`
	InputSNRDB    float64 `json:"input_snr_db" yaml:"input_snr_db"`
	OutputSNRDB   float64 `json:"output_snr_db" yaml:"output_snr_db"`
	ImprovementDB float64 `json:"improvement_db" yaml:"improvement_db"`
}

// NoiseRejection adds Gaussian noise to a unit sine at signalHz, filters
// both the clean and the noisy signal, and compares signal-to-noise ratios.
// The output noise is the difference of the two filtered signals.
func (t *Tester) NoiseRejection(signalHz, noiseStdDev float64) (NoiseReport, error) {
	if noiseStdDev <= 0 {
		return NoiseReport{}, fmt.Errorf("%w: noise stddev must be > 0: %g", ErrInvalidParameter, noiseStdDev)
	}

	n := t.cfg.Length

	clean, err := t.gen.Sine(signalHz, 1, n)
	if err != nil {
		return NoiseReport{}, err
	}

	noise, err := t.gen.GaussianNoise(noiseStdDev, n)
	if err != nil {
		return NoiseReport{}, err
	}

	noisy := make([]float64, n)
	copy(noisy, clean)
	vecmath.AddBlockInPlace(noisy, noise)

	yClean, err := t.run(clean)
	if err != nil {
		return NoiseReport{}, err
	}

	yNoisy, err := t.run(noisy)
	if err != nil {
		return NoiseReport{}, err
	}

	residual := make([]float64, n)
	floats.SubTo(residual, yNoisy, yClean)

	settled := n / 2
	in := snrDB(clean[settled:], noise[settled:])
	out := snrDB(yClean[settled:], residual[settled:])

	return NoiseReport{
		SignalHz:      signalHz,
		NoiseStdDev:   noiseStdDev,
		InputSNRDB:    in,
		OutputSNRDB:   out,
		ImprovementDB: out - in,
	}, nil
}

// SpectrumReport compares the FFT of the impulse response with the
// analytic frequency response on the FFT bin grid.
type SpectrumReport struct {
	FFTSize        int       `json:"fft_size" yaml:"fft_size"`
	Frequencies    []float64 `json:"frequencies_hz" yaml:"frequencies_hz"`
	MeasuredDB     []float64 `json:"measured_db" yaml:"measured_db"`
	AnalyticDB     []float64 `json:"analytic_db" yaml:"analytic_db"`
	MaxDeviationDB float64   `json:"max_deviation_db" yaml:"max_deviation_db"`
}

// SpectrumCheck transforms an n-point impulse response (n rounded up to a
// power of two) and reports the largest dB deviation from the analytic
// response over bins 0..n/2. Bins where the analytic response is below
// floorDB are ignored in the deviation since the truncated impulse response
// cannot resolve them.
func (t *Tester) SpectrumCheck(n int, floorDB float64) (SpectrumReport, error) {
	if n < 2 {
		return SpectrumReport{}, fmt.Errorf("%w: fft size must be >= 2: %d", ErrInvalidParameter, n)
	}

	size := 1 << bits.Len(uint(n-1))

	x, err := t.gen.Impulse(1, size)
	if err != nil {
		return SpectrumReport{}, err
	}

	ir, err := t.run(x)
	if err != nil {
		return SpectrumReport{}, err
	}

	in := make([]complex128, size)
	for i, v := range ir {
		in[i] = complex(v, 0)
	}

	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return SpectrumReport{}, fmt.Errorf("probe: fft plan: %w", err)
	}

	spec := make([]complex128, size)
	if err := plan.Forward(spec, in); err != nil {
		return SpectrumReport{}, fmt.Errorf("probe: fft: %w", err)
	}

	bins := size/2 + 1
	re := make([]float64, bins)
	im := make([]float64, bins)
	for k := range bins {
		re[k] = real(spec[k])
		im[k] = imag(spec[k])
	}

	mag := make([]float64, bins)
	vecmath.Magnitude(mag, re, im)

	rep := SpectrumReport{
		FFTSize:     size,
		Frequencies: make([]float64, bins),
		MeasuredDB:  make([]float64, bins),
		AnalyticDB:  make([]float64, bins),
	}

	fs := t.cfg.SampleRate
	for k := range bins {
		f := float64(k) * fs / float64(size)

		h, err := t.cascade.Response(f)
		if err != nil {
			return SpectrumReport{}, err
		}

		rep.Frequencies[k] = f
		rep.MeasuredDB[k] = core.LinearToDB(mag[k], dbFloor)
		rep.AnalyticDB[k] = core.LinearToDB(cmplx.Abs(h), dbFloor)

		if rep.AnalyticDB[k] < floorDB {
			continue
		}

		rep.MaxDeviationDB = math.Max(rep.MaxDeviationDB, math.Abs(rep.MeasuredDB[k]-rep.AnalyticDB[k]))
	}

	return rep, nil
}

// WriteWAV writes samples as mono 16-bit PCM at the design sample rate.
// Samples are clipped to [-1, 1].
func (t *Tester) WriteWAV(w io.WriteSeeker, samples []float64) error {
	if len(samples) == 0 {
		return fmt.Errorf("%w: no samples to write", ErrInvalidParameter)
	}

	sr := int(math.Round(t.cfg.SampleRate))

	data := make([]int, len(samples))
	for i, v := range samples {
		data[i] = int(math.Round(core.Clamp(v, -1, 1) * math.MaxInt16))
	}

	enc := wav.NewEncoder(w, sr, 16, 1, 1)

	buf := &audio.IntBuffer{
		Format: &audio.Format{
			SampleRate:  sr,
			NumChannels: 1,
		},
		Data:           data,
		SourceBitDepth: 16,
	}

	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("probe: wav write: %w", err)
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("probe: wav close: %w", err)
	}

	return nil
}

func meanSquare(x []float64) float64 {
	sq := make([]float64, len(x))
	vecmath.MulBlock(sq, x, x)

	return floats.Sum(sq) / float64(len(x))
}

func snrDB(sig, noise []float64) float64 {
	return core.PowerToDB(meanSquare(sig)/math.Max(meanSquare(noise), dbFloor), dbFloor)
}
