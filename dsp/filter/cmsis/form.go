package cmsis

import (
	"fmt"
	"strings"
)

// Form is the CMSIS biquad realization.
type Form int

const (
	DF2T Form = iota
	DF1
)

func (f Form) String() string {
	switch f {
	case DF2T:
		return "DF2T"
	case DF1:
		return "DF1"
	default:
		return fmt.Sprintf("Form(%d)", int(f))
	}
}

// symbol returns the spelling used in CMSIS function names.
func (f Form) symbol() string {
	if f == DF2T {
		return "df2T"
	}

	return "df1"
}

// StatePerSection returns the state words one section needs.
func (f Form) StatePerSection() int {
	if f == DF1 {
		return 4
	}

	return 2
}

func (f Form) valid() bool {
	return f == DF1 || f == DF2T
}

// ParseForm maps "DF1" or "DF2T" (case-insensitive) to a Form.
func ParseForm(name string) (Form, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DF1":
		return DF1, nil
	case "DF2T", "DF2_T", "DF2-T":
		return DF2T, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedForm, name)
	}
}

// Layout selects how many values a DF1 section occupies.
type Layout int

const (
	// Compact5 emits [b0, b1, b2, a1, a2].
	Compact5 Layout = iota
	// Full6 emits [b0, b1, b2, 1, a1, a2].
	Full6
)

func (l Layout) String() string {
	switch l {
	case Compact5:
		return "compact5"
	case Full6:
		return "full6"
	default:
		return fmt.Sprintf("Layout(%d)", int(l))
	}
}

// ParseLayout maps "compact5" or "full6" (also "5" and "6") to a Layout.
func ParseLayout(name string) (Layout, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "compact5", "compact", "5":
		return Compact5, nil
	case "full6", "full", "6":
		return Full6, nil
	default:
		return 0, fmt.Errorf("%w: unknown DF1 layout %q", ErrUnsupportedForm, name)
	}
}

// PerSection returns the number of values per section.
func (l Layout) PerSection() int {
	if l == Full6 {
		return 6
	}

	return 5
}
