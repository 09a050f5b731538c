package payroll

import (
	"context"
)

// OptionsProvider resolves the effective payroll configuration: the latest
// store row merged field-by-field over a static fallback, so a partially
// configured row never zeroes out the rest.
type OptionsProvider struct {
	Store    OptionsStore
	Fallback Options
}

func NewOptionsProvider(store OptionsStore) *OptionsProvider {
	return &OptionsProvider{Store: store, Fallback: DefaultOptions()}
}

// Get returns the effective options. Store errors fall back to defaults
// rather than failing the caller; configuration reads must never block a
// payroll run outright.
func (p *OptionsProvider) Get(ctx context.Context) Options {
	opts := p.Fallback
	if p.Store == nil {
		return opts
	}
	stored, err := p.Store.LatestOptions(ctx)
	if err != nil || stored == nil {
		return opts
	}
	if stored.PayFrequency != nil && *stored.PayFrequency != "" {
		opts.PayFrequency = *stored.PayFrequency
	}
	if stored.PeriodDays != nil && *stored.PeriodDays > 0 {
		opts.PeriodDays = *stored.PeriodDays
	}
	if stored.CasualOvertimeThresholdHours != nil && *stored.CasualOvertimeThresholdHours > 0 {
		opts.CasualOvertimeThresholdHours = *stored.CasualOvertimeThresholdHours
	}
	if stored.PaidBreakMinutes != nil && *stored.PaidBreakMinutes >= 0 {
		opts.PaidBreakMinutes = *stored.PaidBreakMinutes
	}
	return opts
}
