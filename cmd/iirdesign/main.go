// Command iirdesign designs an IIR biquad cascade, validates it and writes
// CMSIS-DSP coefficient headers.
//
// Usage:
//
//	iirdesign [flags]
//
// Examples:
//
//	iirdesign -type lowpass -freq 1000 -order 4
//	iirdesign -type highpass -freq 200 -filter-type elliptic -ripple 0.5 -attenuation 60
//	iirdesign -type bandpass -freq 500,2000 -order 4 -data-type q15 -format DF1
//	iirdesign -config filter.yaml -sos-format csv -report report.yaml
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/cwbudde/algo-iir/dsp/filter/cmsis"
	"github.com/cwbudde/algo-iir/dsp/filter/sos"
	"github.com/cwbudde/algo-iir/dsp/filter/sosexport"
	"github.com/cwbudde/algo-iir/dsp/filter/synth"
	"github.com/cwbudde/algo-iir/dsp/filter/validate"
	"github.com/cwbudde/algo-iir/measure/probe"
)

// wavLength is the number of impulse response samples written by -wav.
const wavLength = 4096

func main() {
	log.SetFlags(0)
	log.SetPrefix("iirdesign: ")

	cfg, err := parseConfig(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}

		log.Fatal(err)
	}

	if err := run(context.Background(), cfg, os.Stdout, log.Default()); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, cfg config, stdout io.Writer, logger *log.Logger) error {
	d, err := cfg.design()
	if err != nil {
		return err
	}

	forms, err := parseForms(cfg.Format)
	if err != nil {
		return err
	}

	enc, err := sos.ParseEncoding(cfg.DataType)
	if err != nil {
		return err
	}

	opts, err := cfg.exportOptions()
	if err != nil {
		return err
	}

	c, err := synth.Design(d)
	if err != nil {
		return fmt.Errorf("design: %w", err)
	}

	v := validate.New(c,
		validate.WithSeed(cfg.Seed),
		validate.WithSensitivityTrials(cfg.Trials),
		validate.WithWorkers(cfg.Workers),
		validate.WithLogger(logger),
	)

	rep, err := v.Validate(ctx)
	if err != nil {
		return fmt.Errorf("validate: %w", err)
	}

	if !cfg.Quiet {
		if err := rep.WriteText(stdout); err != nil {
			return err
		}
	}

	if !rep.Stability.Stable {
		logger.Printf("warning: filter is unstable (max |p| = %.6f); coefficients are exported anyway",
			rep.Stability.MaxPoleMagnitude)
	}

	if cfg.Report != "" {
		if err := writeFile(cfg.Report, func(w io.Writer) error { return writeReport(w, cfg.Report, rep) }); err != nil {
			return fmt.Errorf("report: %w", err)
		}

		logger.Printf("report written to %s", cfg.Report)
	}

	for _, form := range forms {
		path := headerPath(cfg.Output, form, len(forms) > 1)

		blob, err := cmsis.RenderHeader(c, form, enc, cmsis.HeaderTarget{FileName: filepath.Base(path)}, opts...)
		if err != nil {
			return fmt.Errorf("header %s: %w", form, err)
		}

		if err := os.WriteFile(path, blob, 0o644); err != nil {
			return fmt.Errorf("header %s: %w", form, err)
		}

		logger.Printf("%s %s coefficients written to %s", form, enc.CType(), path)
	}

	if cfg.SOSFormat != "" {
		if err := exportSOS(c, cfg); err != nil {
			return fmt.Errorf("sos export: %w", err)
		}
	}

	if cfg.WAV != "" {
		if err := writeImpulseWAV(c, cfg.WAV); err != nil {
			return fmt.Errorf("wav: %w", err)
		}

		logger.Printf("impulse response written to %s", cfg.WAV)
	}

	return nil
}

func parseForms(name string) ([]cmsis.Form, error) {
	if strings.EqualFold(strings.TrimSpace(name), "both") {
		return []cmsis.Form{cmsis.DF1, cmsis.DF2T}, nil
	}

	f, err := cmsis.ParseForm(name)
	if err != nil {
		return nil, err
	}

	return []cmsis.Form{f}, nil
}

// headerPath inserts the form name before the extension when more than one
// header is written.
func headerPath(output string, form cmsis.Form, multiple bool) string {
	if !multiple {
		return output
	}

	ext := filepath.Ext(output)

	return strings.TrimSuffix(output, ext) + "_" + strings.ToLower(form.String()) + ext
}

func writeReport(w io.Writer, path string, rep validate.Report) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return rep.WriteJSON(w)
	case ".yaml", ".yml":
		return rep.WriteYAML(w)
	default:
		return rep.WriteText(w)
	}
}

func exportSOS(c *sos.Cascade, cfg config) error {
	format, err := sosexport.ParseFormat(cfg.SOSFormat)
	if err != nil {
		return err
	}

	path := cfg.SOSOutput
	if path == "" {
		path = "iir_filter_sos" + format.Extension()
	}

	return writeFile(path, func(w io.Writer) error {
		return sosexport.Write(w, c, format, sosexport.DefaultPrecision)
	})
}

func writeImpulseWAV(c *sos.Cascade, path string) error {
	p, err := probe.New(c, probe.WithLength(wavLength))
	if err != nil {
		return err
	}

	ir, err := p.ImpulseResponse()
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := p.WriteWAV(f, ir); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}

func writeFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := fn(f); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}
