package ai

import (
	"context"
	"strings"
)

type diagnoserChain struct {
	primary  Diagnoser
	fallback Diagnoser
}

// WithFallback returns a diagnoser that first tries the primary implementation
// and falls back to the provided one when the primary is unavailable or
// produces an empty diagnosis.
func WithFallback(primary, fallback Diagnoser) Diagnoser {
	if primary == nil {
		return fallback
	}
	if fallback == nil {
		return primary
	}
	return &diagnoserChain{primary: primary, fallback: fallback}
}

func (c *diagnoserChain) Enabled() bool {
	if c == nil {
		return false
	}
	if c.primary != nil && c.primary.Enabled() {
		return true
	}
	if c.fallback != nil && c.fallback.Enabled() {
		return true
	}
	return false
}

func (c *diagnoserChain) Diagnose(ctx context.Context, input DiagnosisInput) (string, error) {
	if c == nil {
		return "", ErrDisabled
	}
	if c.primary != nil && c.primary.Enabled() {
		if text, err := c.primary.Diagnose(ctx, input); err == nil && strings.TrimSpace(text) != "" {
			return text, nil
		}
	}
	if c.fallback != nil && c.fallback.Enabled() {
		return c.fallback.Diagnose(ctx, input)
	}
	return "", ErrDisabled
}
