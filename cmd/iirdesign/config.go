package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cwbudde/algo-iir/dsp/filter/cmsis"
	"github.com/cwbudde/algo-iir/dsp/filter/sos"
)

// freqList is a comma-separated list of edge frequencies in Hz.
type freqList []float64

func (f *freqList) String() string {
	if f == nil {
		return ""
	}

	parts := make([]string, len(*f))
	for i, v := range *f {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}

	return strings.Join(parts, ",")
}

func (f *freqList) Set(s string) error {
	var out freqList

	for _, p := range strings.Split(s, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return fmt.Errorf("invalid frequency %q: %w", p, err)
		}

		out = append(out, v)
	}

	*f = out

	return nil
}

// UnmarshalYAML accepts a single number as well as a list.
func (f *freqList) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		var v float64
		if err := n.Decode(&v); err != nil {
			return err
		}

		*f = freqList{v}

		return nil
	}

	var vs []float64
	if err := n.Decode(&vs); err != nil {
		return err
	}

	*f = vs

	return nil
}

// config holds every CLI setting. YAML keys match the flag names.
type config struct {
	Type        string   `yaml:"type"`
	Freq        freqList `yaml:"freq"`
	Order       int      `yaml:"order"`
	SampleRate  float64  `yaml:"sample-rate"`
	FilterType  string   `yaml:"filter-type"`
	Ripple      float64  `yaml:"ripple"`
	Attenuation float64  `yaml:"attenuation"`
	Format      string   `yaml:"format"`
	DataType    string   `yaml:"data-type"`
	DF1Layout   string   `yaml:"df1-layout"`
	Negate      bool     `yaml:"negate-feedback"`
	Output      string   `yaml:"output"`
	SOSFormat   string   `yaml:"sos-format"`
	SOSOutput   string   `yaml:"sos-output"`
	Report      string   `yaml:"report"`
	WAV         string   `yaml:"wav"`
	Seed        uint64   `yaml:"seed"`
	Trials      int      `yaml:"trials"`
	Workers     int      `yaml:"workers"`
	Quiet       bool     `yaml:"quiet"`
	Config      string   `yaml:"-"`
}

func defaultConfig() config {
	return config{
		Type:        "lowpass",
		Freq:        freqList{1000},
		Order:       4,
		SampleRate:  48000,
		FilterType:  "butterworth",
		Ripple:      1,
		Attenuation: 40,
		Format:      "both",
		DataType:    "float32",
		DF1Layout:   "full6",
		Output:      "iir_filter_coeffs.h",
		Seed:        1,
		Trials:      100,
		Workers:     1,
	}
}

func newFlagSet(cfg *config, output io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("iirdesign", flag.ContinueOnError)
	fs.SetOutput(output)

	fs.StringVar(&cfg.Type, "type", cfg.Type, "band: lowpass, highpass, bandpass or bandstop")
	fs.Var(&cfg.Freq, "freq", "edge frequency in Hz; two comma-separated values for bandpass/bandstop")
	fs.IntVar(&cfg.Order, "order", cfg.Order, "filter order")
	fs.Float64Var(&cfg.SampleRate, "sample-rate", cfg.SampleRate, "sample rate in Hz")
	fs.StringVar(&cfg.FilterType, "filter-type", cfg.FilterType, "family: butterworth, chebyshev1, chebyshev2, elliptic or bessel")
	fs.Float64Var(&cfg.Ripple, "ripple", cfg.Ripple, "passband ripple in dB (chebyshev1, elliptic)")
	fs.Float64Var(&cfg.Attenuation, "attenuation", cfg.Attenuation, "stopband attenuation in dB (chebyshev2, elliptic)")
	fs.StringVar(&cfg.Format, "format", cfg.Format, "CMSIS structure: DF1, DF2T or both")
	fs.StringVar(&cfg.DataType, "data-type", cfg.DataType, "coefficient type: float32, q31 or q15")
	fs.StringVar(&cfg.DF1Layout, "df1-layout", cfg.DF1Layout, "DF1 values per section: full6 or compact5")
	fs.BoolVar(&cfg.Negate, "negate-feedback", cfg.Negate, "flip the sign of a1 and a2 for the stock CMSIS-DSP kernels")
	fs.StringVar(&cfg.Output, "output", cfg.Output, "C header path")
	fs.StringVar(&cfg.SOSFormat, "sos-format", cfg.SOSFormat, "also export SOS rows: csv, matlab, python, json, yaml or text")
	fs.StringVar(&cfg.SOSOutput, "sos-output", cfg.SOSOutput, "SOS export path (default derived from -sos-format)")
	fs.StringVar(&cfg.Report, "report", cfg.Report, "write the validation report to this path (.json, .yaml or text)")
	fs.StringVar(&cfg.WAV, "wav", cfg.WAV, "write the impulse response as 16-bit WAV")
	fs.Uint64Var(&cfg.Seed, "seed", cfg.Seed, "seed for the sensitivity analysis")
	fs.IntVar(&cfg.Trials, "trials", cfg.Trials, "number of sensitivity trials")
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "goroutines used for sensitivity trials")
	fs.BoolVar(&cfg.Quiet, "quiet", cfg.Quiet, "do not print the report to stdout")
	fs.StringVar(&cfg.Config, "config", "", "YAML file with the same keys as the flags")

	fs.Usage = func() {
		fmt.Fprintf(output, "Usage: iirdesign [flags]\n\n")
		fmt.Fprintf(output, "Designs an IIR biquad cascade, validates it and exports CMSIS-DSP coefficients.\n\n")
		fmt.Fprintf(output, "Flags:\n")
		fs.PrintDefaults()
		fmt.Fprintf(output, "\nExamples:\n")
		fmt.Fprintf(output, "  iirdesign -type lowpass -freq 1000 -order 4\n")
		fmt.Fprintf(output, "  iirdesign -type bandpass -freq 500,2000 -order 4 -filter-type chebyshev1 -data-type q15\n")
		fmt.Fprintf(output, "  iirdesign -format DF1 -df1-layout compact5 -negate-feedback -data-type q31\n")
		fmt.Fprintf(output, "  iirdesign -config filter.yaml -report report.json\n")
	}

	return fs
}

// parseConfig resolves the configuration from args. When -config is given
// the file is applied over the defaults first and the flags are parsed a
// second time, so explicit flags override the file.
func parseConfig(args []string, output io.Writer) (config, error) {
	cfg := defaultConfig()
	if err := newFlagSet(&cfg, output).Parse(args); err != nil {
		return config{}, err
	}

	if cfg.Config == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(cfg.Config)
	if err != nil {
		return config{}, fmt.Errorf("read config: %w", err)
	}

	fileCfg := defaultConfig()
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return config{}, fmt.Errorf("parse config %s: %w", cfg.Config, err)
	}

	if err := newFlagSet(&fileCfg, output).Parse(args); err != nil {
		return config{}, err
	}

	return fileCfg, nil
}

// exportOptions converts the CMSIS layout settings.
func (c config) exportOptions() ([]cmsis.ExportOption, error) {
	layout, err := cmsis.ParseLayout(c.DF1Layout)
	if err != nil {
		return nil, err
	}

	opts := []cmsis.ExportOption{cmsis.WithLayout(layout)}
	if c.Negate {
		opts = append(opts, cmsis.WithNegatedFeedback())
	}

	return opts, nil
}

// design converts the CLI settings to a filter design.
func (c config) design() (sos.Design, error) {
	band, err := sos.ParseBand(c.Type)
	if err != nil {
		return sos.Design{}, err
	}

	family, err := sos.ParseFamily(c.FilterType)
	if err != nil {
		return sos.Design{}, err
	}

	return sos.Design{
		SampleRate: c.SampleRate,
		Band:       band,
		Family:     family,
		Cutoff:     append([]float64(nil), c.Freq...),
		Order:      c.Order,
		RippleDB:   c.Ripple,
		StopbandDB: c.Attenuation,
	}, nil
}
