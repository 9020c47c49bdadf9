package validation

import (
	"fmt"
	"time"

	"github.com/JCrossman/dats-booking-sub000/models"
	"github.com/JCrossman/dats-booking-sub000/utils"
)

// Policy holds the paratransit booking rules. Zero values are replaced by the
// service defaults.
type Policy struct {
	// MaxAdvanceDays is how far ahead a trip may be booked.
	MaxAdvanceDays int
	// NoticeHours is the minimum notice for bookings and cancellations.
	NoticeHours int
	// CutoffHour is the daily hour after which next-day bookings are no
	// longer guaranteed.
	CutoffHour int
}

// DefaultPolicy mirrors the service's published rules: 3 days ahead, 2 hours
// notice, noon cutoff.
func DefaultPolicy() Policy {
	return Policy{MaxAdvanceDays: 3, NoticeHours: 2, CutoffHour: 12}
}

// Validator evaluates booking and cancellation requests against the policy in
// one fixed named zone. It is stateless; every call is judged against "now".
// All remote times are already expressed in Loc and are never converted.
type Validator struct {
	Loc    *time.Location
	Policy Policy
	// Now is overridable for tests; nil means time.Now.
	Now func() time.Time
}

// New builds a validator for the named zone.
func New(timezone string, policy Policy) (*Validator, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", timezone, err)
	}
	if policy.MaxAdvanceDays == 0 {
		policy.MaxAdvanceDays = 3
	}
	if policy.NoticeHours == 0 {
		policy.NoticeHours = 2
	}
	if policy.CutoffHour == 0 {
		policy.CutoffHour = 12
	}
	return &Validator{Loc: loc, Policy: policy}, nil
}

func (v *Validator) now() time.Time {
	if v.Now != nil {
		return v.Now().In(v.Loc)
	}
	return time.Now().In(v.Loc)
}

// parsePickup resolves a date expression plus clock time into an instant in
// the validator's zone.
func (v *Validator) parsePickup(date, clock string, now time.Time) (time.Time, error) {
	canonical := utils.ParseFlexibleAt(date, now)
	day, err := time.ParseInLocation(utils.CanonicalDateLayout, canonical, v.Loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognized date %q", date)
	}
	t, err := utils.ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(),
		t.Hour(), t.Minute(), t.Second(), 0, v.Loc), nil
}

// sameCalendarDay compares dates in the validator's zone.
func sameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// ValidateBooking applies the booking rules in order; the first failure wins.
// Durations are computed between zone-aware instants, so daylight-saving
// transitions between now and the pickup are handled by the time library, not
// by naive clock arithmetic.
func (v *Validator) ValidateBooking(date, clock string) models.ValidationResult {
	now := v.now()
	notice := time.Duration(v.Policy.NoticeHours) * time.Hour

	pickup, err := v.parsePickup(date, clock, now)
	if err != nil {
		return models.ValidationResult{
			Valid: false,
			Error: fmt.Sprintf("could not understand the pickup date and time: %v", err),
		}
	}

	until := pickup.Sub(now)
	minutes := int(until.Minutes())

	if until <= 0 {
		return models.ValidationResult{
			Valid:             false,
			Error:             "that pickup time has already passed",
			MinutesUntilEvent: minutes,
		}
	}

	maxAhead := time.Duration(v.Policy.MaxAdvanceDays) * 24 * time.Hour
	if until > maxAhead {
		days := int(until.Hours() / 24)
		if until > time.Duration(days)*24*time.Hour {
			days++
		}
		return models.ValidationResult{
			Valid: false,
			Error: fmt.Sprintf("that pickup is %d days ahead; trips can be booked at most %d days in advance",
				days, v.Policy.MaxAdvanceDays),
			MinutesUntilEvent: minutes,
		}
	}

	if sameCalendarDay(pickup, now) {
		if until < notice {
			return models.ValidationResult{
				Valid: false,
				Error: fmt.Sprintf("same-day trips need at least %d hours notice; this pickup is only %d minutes away",
					v.Policy.NoticeHours, minutes),
				MinutesUntilEvent: minutes,
			}
		}
		return models.ValidationResult{
			Valid:             true,
			Warning:           "same-day bookings are accepted but not guaranteed",
			MinutesUntilEvent: minutes,
		}
	}

	if sameCalendarDay(pickup, now.AddDate(0, 0, 1)) && now.Hour() >= v.Policy.CutoffHour {
		if until < notice {
			return models.ValidationResult{
				Valid: false,
				Error: fmt.Sprintf("next-day trips after the %d:00 cutoff need at least %d hours notice",
					v.Policy.CutoffHour, v.Policy.NoticeHours),
				MinutesUntilEvent: minutes,
			}
		}
		return models.ValidationResult{
			Valid:             true,
			Warning:           fmt.Sprintf("the %d:00 booking cutoff has passed; next-day trips are not guaranteed", v.Policy.CutoffHour),
			MinutesUntilEvent: minutes,
		}
	}

	return models.ValidationResult{Valid: true, MinutesUntilEvent: minutes}
}

// ValidateCancellation checks whether a trip may still be cancelled. Parsing
// is advisory here: the remote service is the final authority, so unreadable
// input passes with a warning instead of blocking the cancellation.
func (v *Validator) ValidateCancellation(date, clock string) models.ValidationResult {
	now := v.now()
	notice := time.Duration(v.Policy.NoticeHours) * time.Hour

	pickup, err := v.parsePickup(date, clock, now)
	if err != nil {
		return models.ValidationResult{
			Valid:   true,
			Warning: "could not verify the trip's pickup time; the booking service will make the final decision",
		}
	}

	until := pickup.Sub(now)
	minutes := int(until.Minutes())

	if until <= 0 {
		return models.ValidationResult{
			Valid:             false,
			Error:             "that trip's pickup time has already passed and can no longer be cancelled",
			MinutesUntilEvent: minutes,
		}
	}
	if until <= notice {
		return models.ValidationResult{
			Valid: false,
			Error: fmt.Sprintf("trips need at least %d hours notice to cancel; this pickup is only %d minutes away",
				v.Policy.NoticeHours, minutes),
			MinutesUntilEvent: minutes,
		}
	}
	return models.ValidationResult{Valid: true, MinutesUntilEvent: minutes}
}
