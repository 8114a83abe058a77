package decision

import (
	"errors"
	"fmt"
)

// Context carries the optional business metrics that accompany a question.
// A nil metric is absent and every rule comparing against it is skipped.
type Context struct {
	Stage          Stage          `json:"company_stage,omitempty"`
	Category       Category       `json:"decision_type,omitempty"`
	RevenueMonthly *float64       `json:"revenue_monthly,omitempty"`
	ChurnRate      *float64       `json:"churn_rate,omitempty"`
	CAC            *float64       `json:"cac,omitempty"`
	LTV            *float64       `json:"ltv,omitempty"`
	GrossMargin    *float64       `json:"gross_margin,omitempty"`
	BurnRate       *float64       `json:"burn_rate,omitempty"`
	Additional     map[string]any `json:"additional_data,omitempty"`
}

// Float returns a pointer to v, for building contexts literally.
func Float(v float64) *float64 {
	return &v
}

// LTVCAC returns the LTV/CAC ratio when both metrics are present and CAC is
// positive.
func (c Context) LTVCAC() (float64, bool) {
	if c.LTV == nil || c.CAC == nil || *c.CAC <= 0 {
		return 0, false
	}
	return *c.LTV / *c.CAC, true
}

// HasUnitEconomics reports whether both CAC and LTV were supplied.
func (c Context) HasUnitEconomics() bool {
	return c.CAC != nil && c.LTV != nil
}

// Metrics returns the supplied numeric metrics keyed by their wire names.
func (c Context) Metrics() map[string]float64 {
	out := make(map[string]float64, 6)
	add := func(key string, v *float64) {
		if v != nil {
			out[key] = *v
		}
	}
	add("revenue_monthly", c.RevenueMonthly)
	add("churn_rate", c.ChurnRate)
	add("cac", c.CAC)
	add("ltv", c.LTV)
	add("gross_margin", c.GrossMargin)
	add("burn_rate", c.BurnRate)
	return out
}

// Validate rejects values that are well-typed but malformed. It is meant for
// the caller layer; the engine itself never validates.
func (c Context) Validate() error {
	var errs []error
	nonNegative := func(name string, v *float64) {
		if v != nil && *v < 0 {
			errs = append(errs, fmt.Errorf("%s must not be negative", name))
		}
	}
	fraction := func(name string, v *float64) {
		if v != nil && (*v < 0 || *v > 1) {
			errs = append(errs, fmt.Errorf("%s must be between 0 and 1", name))
		}
	}
	nonNegative("revenue_monthly", c.RevenueMonthly)
	nonNegative("cac", c.CAC)
	nonNegative("ltv", c.LTV)
	nonNegative("burn_rate", c.BurnRate)
	fraction("churn_rate", c.ChurnRate)
	fraction("gross_margin", c.GrossMargin)
	return errors.Join(errs...)
}
