// Package sosexport writes the unnormalized six-coefficient rows of a
// cascade for use in numeric tools.
package sosexport

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cwbudde/algo-iir/dsp/filter/sos"
)

// ErrUnsupportedFormat is returned for unknown export formats.
var ErrUnsupportedFormat = errors.New("sosexport: unsupported format")

// DefaultPrecision is the decimal count used by the text-based formats.
const DefaultPrecision = 10

// Format selects an output syntax.
type Format int

const (
	CSV Format = iota
	MATLAB
	Python
	JSON
	YAML
	Text
)

var formatNames = map[Format]string{
	CSV:    "csv",
	MATLAB: "matlab",
	Python: "python",
	JSON:   "json",
	YAML:   "yaml",
	Text:   "text",
}

func (f Format) String() string {
	if n, ok := formatNames[f]; ok {
		return n
	}

	return fmt.Sprintf("Format(%d)", int(f))
}

// Extension returns the conventional file extension including the dot.
func (f Format) Extension() string {
	switch f {
	case CSV:
		return ".csv"
	case MATLAB:
		return ".m"
	case Python:
		return ".py"
	case JSON:
		return ".json"
	case YAML:
		return ".yaml"
	default:
		return ".txt"
	}
}

// ParseFormat maps a format name (or "m", "py", "yml", "txt") to a Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "csv":
		return CSV, nil
	case "matlab", "m":
		return MATLAB, nil
	case "python", "py":
		return Python, nil
	case "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	case "text", "txt":
		return Text, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}
}

// Write renders c in the given format. precision applies to CSV, MATLAB,
// Python and Text; a negative value selects DefaultPrecision.
func Write(w io.Writer, c *sos.Cascade, format Format, precision int) error {
	if c == nil || c.Empty() {
		return sos.ErrNotDesigned
	}

	if precision < 0 {
		precision = DefaultPrecision
	}

	switch format {
	case CSV:
		return writeCSV(w, c, precision)
	case MATLAB:
		return writeMATLAB(w, c, precision)
	case Python:
		return writePython(w, c, precision)
	case JSON:
		return writeJSON(w, c)
	case YAML:
		return writeYAML(w, c)
	case Text:
		return writeText(w, c, precision)
	default:
		return fmt.Errorf("%w: %v", ErrUnsupportedFormat, format)
	}
}

func formatRow(row [6]float64, precision int, sep string) string {
	parts := make([]string, len(row))
	for i, v := range row {
		parts[i] = strconv.FormatFloat(v, 'f', precision, 64)
	}

	return strings.Join(parts, sep)
}

func writeCSV(w io.Writer, c *sos.Cascade, precision int) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Section", "b0", "b1", "b2", "a0", "a1", "a2"}); err != nil {
		return err
	}

	for i, row := range c.Rows() {
		rec := make([]string, 0, 7)
		rec = append(rec, strconv.Itoa(i+1))
		for _, v := range row {
			rec = append(rec, strconv.FormatFloat(v, 'f', precision, 64))
		}

		if err := cw.Write(rec); err != nil {
			return err
		}
	}

	cw.Flush()

	return cw.Error()
}

func writeMATLAB(w io.Writer, c *sos.Cascade, precision int) error {
	d := c.Design()

	var b strings.Builder
	fmt.Fprintf(&b, "%% IIR filter coefficients (%s %s, order %d)\n", d.Family, d.Band, d.Order)
	fmt.Fprintf(&b, "%% Sections: %d\n%% Sample rate: %g Hz\n\n", c.NumSections(), d.SampleRate)
	b.WriteString("sos = [\n")
	for _, row := range c.Rows() {
		fmt.Fprintf(&b, "    %s;\n", formatRow(row, precision, " "))
	}
	b.WriteString("];\n\n")
	b.WriteString("% Convert to transfer function form\n")
	b.WriteString("[b, a] = sos2tf(sos);\n")
	fmt.Fprintf(&b, "freqz(b, a, 1024, %g);\n", d.SampleRate)

	_, err := io.WriteString(w, b.String())

	return err
}

func writePython(w io.Writer, c *sos.Cascade, precision int) error {
	d := c.Design()

	var b strings.Builder
	fmt.Fprintf(&b, "\"\"\"IIR filter coefficients (%s %s, order %d).\n", d.Family, d.Band, d.Order)
	fmt.Fprintf(&b, "Sections: %d\n\"\"\"\n\n", c.NumSections())
	b.WriteString("import numpy as np\n\n")
	b.WriteString("sos_coeffs = np.array([\n")
	for _, row := range c.Rows() {
		fmt.Fprintf(&b, "    [%s],\n", formatRow(row, precision, ", "))
	}
	b.WriteString("])\n\n")
	b.WriteString("# Example:\n")
	fmt.Fprintf(&b, "# w, h = scipy.signal.sosfreqz(sos_coeffs, fs=%g)\n", d.SampleRate)

	_, err := io.WriteString(w, b.String())

	return err
}

// Document is the JSON/YAML representation of a cascade.
type Document struct {
	Design   sos.Design   `json:"design" yaml:"design"`
	Sections [][6]float64 `json:"sections" yaml:"sections,flow"`
}

// NewDocument captures c for serialization.
func NewDocument(c *sos.Cascade) Document {
	return Document{Design: c.Design(), Sections: c.Rows()}
}

// Cascade rebuilds the cascade from a decoded document.
func (d Document) Cascade() (*sos.Cascade, error) {
	sections := make([]sos.Section, len(d.Sections))
	for i, row := range d.Sections {
		sections[i] = sos.Section{B0: row[0], B1: row[1], B2: row[2], A0: row[3], A1: row[4], A2: row[5]}
	}

	return sos.NewCascade(sections, d.Design)
}

func writeJSON(w io.Writer, c *sos.Cascade) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(NewDocument(c))
}

func writeYAML(w io.Writer, c *sos.Cascade) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)

	if err := enc.Encode(NewDocument(c)); err != nil {
		return err
	}

	return enc.Close()
}

func writeText(w io.Writer, c *sos.Cascade, precision int) error {
	var b strings.Builder
	fmt.Fprintf(&b, "IIR filter coefficients (%d sections)\n", c.NumSections())
	b.WriteString(strings.Repeat("=", 50) + "\n")

	p := strconv.Itoa(precision)
	for i, s := range c.Sections() {
		fmt.Fprintf(&b, "Section %d:\n", i+1)
		fmt.Fprintf(&b, "  Numerator:   [%."+p+"f, %."+p+"f, %."+p+"f]\n", s.B0, s.B1, s.B2)
		fmt.Fprintf(&b, "  Denominator: [%."+p+"f, %."+p+"f, %."+p+"f]\n", s.A0, s.A1, s.A2)

		n, err := s.Normalize()
		if err != nil {
			fmt.Fprintf(&b, "  DF2T:        not realizable (%v)\n\n", err)
			continue
		}

		fmt.Fprintf(&b, "  DF2T:        [%."+p+"f, %."+p+"f, %."+p+"f, %."+p+"f, %."+p+"f]\n\n",
			n.B0, n.B1, n.B2, n.A1, n.A2)
	}

	_, err := io.WriteString(w, b.String())

	return err
}
