package sos

import (
	"fmt"
)

// Cascade is an ordered sequence of sections processed in series, together
// with the design metadata that produced it.
//
// A Cascade is immutable: constructors copy their inputs and accessors
// return copies, so a single value can be shared by concurrent analyses
// without locking. A cascade without sections is valid and represents a
// filter that has not been designed yet; analyses on it fail with
// [ErrNotDesigned].
type Cascade struct {
	sections []Section
	design   Design
}

// NewCascade validates the design metadata and returns a cascade owning a
// copy of sections.
func NewCascade(sections []Section, design Design) (*Cascade, error) {
	if err := design.Validate(); err != nil {
		return nil, err
	}

	return &Cascade{
		sections: append([]Section(nil), sections...),
		design:   design.clone(),
	}, nil
}

// FromRows builds a cascade from SOS rows [b0, b1, b2, a0, a1, a2].
func FromRows(rows [][]float64, design Design) (*Cascade, error) {
	sections := make([]Section, len(rows))
	for i, row := range rows {
		s, err := NewSection(row)
		if err != nil {
			return nil, fmt.Errorf("section %d: %w", i+1, err)
		}

		sections[i] = s
	}

	return NewCascade(sections, design)
}

// Design returns a copy of the design metadata.
func (c *Cascade) Design() Design {
	return c.design.clone()
}

// SampleRate returns the design sample rate in Hz.
func (c *Cascade) SampleRate() float64 {
	return c.design.SampleRate
}

// NumSections returns the number of sections. A nil cascade has none.
func (c *Cascade) NumSections() int {
	if c == nil {
		return 0
	}

	return len(c.sections)
}

// Empty reports whether the cascade has no sections.
func (c *Cascade) Empty() bool {
	return c.NumSections() == 0
}

// Section returns the i-th section.
func (c *Cascade) Section(i int) Section {
	return c.sections[i]
}

// Sections returns a copy of all sections in cascade order.
func (c *Cascade) Sections() []Section {
	if c == nil {
		return nil
	}

	return append([]Section(nil), c.sections...)
}

// Rows returns the sections as SOS rows.
func (c *Cascade) Rows() [][6]float64 {
	rows := make([][6]float64, len(c.sections))
	for i, s := range c.sections {
		rows[i] = s.Row()
	}

	return rows
}

// Order returns the realized filter order: 2 per section, 1 for first-order
// sections.
func (c *Cascade) Order() int {
	n := 0
	for _, s := range c.sections {
		if s.IsFirstOrder() {
			n++
		} else {
			n += 2
		}
	}

	return n
}

// Normalized returns every section divided by its a0.
func (c *Cascade) Normalized() ([]Section, error) {
	if c.Empty() {
		return nil, ErrNotDesigned
	}

	out := make([]Section, len(c.sections))
	for i, s := range c.sections {
		n, err := s.Normalize()
		if err != nil {
			return nil, fmt.Errorf("section %d: %w", i+1, err)
		}

		out[i] = n
	}

	return out, nil
}

// Map returns a new cascade with fn applied to every coefficient of every
// section, in section order and b0..a2 order within a section. The design
// metadata is copied unchanged.
func (c *Cascade) Map(fn func(float64) float64) *Cascade {
	out := &Cascade{
		sections: make([]Section, len(c.sections)),
		design:   c.design.clone(),
	}
	for i, s := range c.sections {
		out.sections[i] = s.Map(fn)
	}

	return out
}

// AggregatePoleZeros returns the union of all section poles and zeros (not
// deduplicated) and the product of the section gains.
func (c *Cascade) AggregatePoleZeros() (PoleZeroSet, error) {
	if c.Empty() {
		return PoleZeroSet{}, ErrNotDesigned
	}

	pz := PoleZeroSet{
		Zeros: make([]complex128, 0, 2*len(c.sections)),
		Poles: make([]complex128, 0, 2*len(c.sections)),
		Gain:  1,
	}

	for i, s := range c.sections {
		spz, err := s.PoleZeros()
		if err != nil {
			return PoleZeroSet{}, fmt.Errorf("section %d: %w", i+1, err)
		}

		pz.Zeros = append(pz.Zeros, spz.Zeros...)
		pz.Poles = append(pz.Poles, spz.Poles...)
		pz.Gain *= spz.Gain
	}

	return pz, nil
}

// IsStable reports whether all cascade poles lie strictly inside the unit
// circle.
func (c *Cascade) IsStable() (bool, error) {
	pz, err := c.AggregatePoleZeros()
	if err != nil {
		return false, err
	}

	return IsStable(pz.Poles), nil
}
