package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-iir/dsp/filter/cmsis"
	"github.com/cwbudde/algo-iir/dsp/filter/sos"
)

func TestParseConfigDefaults(t *testing.T) {
	cfg, err := parseConfig(nil, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, defaultConfig(), cfg)
}

func TestParseConfigFlags(t *testing.T) {
	cfg, err := parseConfig([]string{"-type", "bandpass", "-freq", "500, 2000", "-order", "6", "-data-type", "q15"}, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, "bandpass", cfg.Type)
	assert.Equal(t, freqList{500, 2000}, cfg.Freq)
	assert.Equal(t, 6, cfg.Order)
	assert.Equal(t, "q15", cfg.DataType)

	_, err = parseConfig([]string{"-freq", "abc"}, io.Discard)
	require.Error(t, err)
}

func TestParseConfigFileWithOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "filter.yaml")
	require.NoError(t, os.WriteFile(path, []byte("type: highpass\nfreq: 250\norder: 6\nfilter-type: chebyshev1\nripple: 0.5\n"), 0o644))

	cfg, err := parseConfig([]string{"-config", path, "-order", "2"}, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, "highpass", cfg.Type)
	assert.Equal(t, freqList{250}, cfg.Freq)
	assert.Equal(t, 2, cfg.Order)
	assert.Equal(t, "chebyshev1", cfg.FilterType)
	assert.InDelta(t, 0.5, cfg.Ripple, 0)
	assert.InDelta(t, 48000, cfg.SampleRate, 0)

	_, err = parseConfig([]string{"-config", filepath.Join(t.TempDir(), "missing.yaml")}, io.Discard)
	require.Error(t, err)
}

func TestConfigDesign(t *testing.T) {
	cfg := defaultConfig()
	cfg.Type = "hp"
	cfg.FilterType = "elliptic"

	d, err := cfg.design()
	require.NoError(t, err)
	assert.Equal(t, sos.Highpass, d.Band)
	assert.Equal(t, sos.Elliptic, d.Family)

	cfg.Type = "allpass"
	_, err = cfg.design()
	require.ErrorIs(t, err, sos.ErrInvalidParameter)
}

func TestHeaderPath(t *testing.T) {
	assert.Equal(t, "out/coeffs.h", headerPath("out/coeffs.h", cmsis.DF1, false))
	assert.Equal(t, "out/coeffs_df1.h", headerPath("out/coeffs.h", cmsis.DF1, true))
	assert.Equal(t, "out/coeffs_df2t.h", headerPath("out/coeffs.h", cmsis.DF2T, true))
}

func TestRunWritesArtifacts(t *testing.T) {
	dir := t.TempDir()

	cfg := defaultConfig()
	cfg.Output = filepath.Join(dir, "coeffs.h")
	cfg.SOSFormat = "csv"
	cfg.SOSOutput = filepath.Join(dir, "sos.csv")
	cfg.Report = filepath.Join(dir, "report.json")
	cfg.WAV = filepath.Join(dir, "ir.wav")
	cfg.Trials = 10

	var stdout, logs bytes.Buffer
	require.NoError(t, run(context.Background(), cfg, &stdout, log.New(&logs, "", 0)))

	assert.Contains(t, stdout.String(), "Stability")

	for _, name := range []string{"coeffs_df1.h", "coeffs_df2t.h", "sos.csv", "report.json", "ir.wav"} {
		info, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.Positive(t, info.Size(), name)
	}

	hdr, err := os.ReadFile(filepath.Join(dir, "coeffs_df2t.h"))
	require.NoError(t, err)
	assert.Contains(t, string(hdr), "IIR_NUM_SECTIONS")

	raw, err := os.ReadFile(cfg.Report)
	require.NoError(t, err)

	var rep map[string]any
	require.NoError(t, json.Unmarshal(raw, &rep))
	assert.Contains(t, rep, "stability")
}

func TestRunStockKernelLayout(t *testing.T) {
	dir := t.TempDir()
	logger := log.New(io.Discard, "", 0)

	cfg, err := parseConfig([]string{
		"-format", "DF1", "-df1-layout", "compact5", "-negate-feedback",
		"-output", filepath.Join(dir, "stock.h"), "-trials", "5", "-quiet",
	}, io.Discard)
	require.NoError(t, err)
	require.NoError(t, run(context.Background(), cfg, io.Discard, logger))

	stock, err := os.ReadFile(filepath.Join(dir, "stock.h"))
	require.NoError(t, err)
	assert.Contains(t, string(stock), "{b0, b1, b2, a1, a2} per section")
	assert.Contains(t, string(stock), "IIR_NUM_COEFFS      10")
	assert.NotContains(t, string(stock), "stock kernel expects")

	cfg = defaultConfig()
	cfg.Format = "DF1"
	cfg.Output = filepath.Join(dir, "full.h")
	cfg.Trials = 5
	require.NoError(t, run(context.Background(), cfg, io.Discard, logger))

	full, err := os.ReadFile(cfg.Output)
	require.NoError(t, err)
	assert.Contains(t, string(full), "{b0, b1, b2, a0, a1, a2} per section")
	assert.Contains(t, string(full), "-df1-layout compact5")
}

func TestRunRejectsBadSettings(t *testing.T) {
	logger := log.New(io.Discard, "", 0)

	cfg := defaultConfig()
	cfg.Format = "DF3"
	require.ErrorIs(t, run(context.Background(), cfg, io.Discard, logger), cmsis.ErrUnsupportedForm)

	cfg = defaultConfig()
	cfg.DataType = "q7"
	require.ErrorIs(t, run(context.Background(), cfg, io.Discard, logger), sos.ErrUnsupportedEncoding)

	cfg = defaultConfig()
	cfg.DF1Layout = "full7"
	require.ErrorIs(t, run(context.Background(), cfg, io.Discard, logger), cmsis.ErrUnsupportedForm)

	cfg = defaultConfig()
	cfg.Freq = freqList{30000}
	require.ErrorIs(t, run(context.Background(), cfg, io.Discard, logger), sos.ErrInvalidParameter)
}
