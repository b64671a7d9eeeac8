package billing

import (
	"errors"
	"strings"
)

// Domain errors
var (
	ErrEmptyTrainerEmail = errors.New("trainer email cannot be empty")
	ErrEmptySessionType  = errors.New("session type cannot be empty")
	ErrNegativeRate      = errors.New("rate cannot be negative")
)

// Rate is a trainer's price for one session type. Rates are unique per
// (TrainerEmail, SessionType).
type Rate struct {
	ID           string
	TrainerEmail string
	SessionType  string
	Currency     string
	Rate         float64
}

// Validate checks if the Rate has valid data.
// PRE: Rate struct is populated
// POST: Returns nil if valid, error otherwise
func (r *Rate) Validate() error {
	if strings.TrimSpace(r.TrainerEmail) == "" {
		return ErrEmptyTrainerEmail
	}
	if strings.TrimSpace(r.SessionType) == "" {
		return ErrEmptySessionType
	}
	if r.Rate < 0 {
		return ErrNegativeRate
	}
	return nil
}

// RateSheet is one trainer's full set of rates.
type RateSheet struct {
	TrainerEmail string
	Rates        []Rate
}

// Lookup returns the rate for a session type, if present.
func (s RateSheet) Lookup(sessionType string) (Rate, bool) {
	for _, r := range s.Rates {
		if r.SessionType == sessionType {
			return r, true
		}
	}
	return Rate{}, false
}

// CostFor sums the trainer's rate amounts for each selected service. A
// service with no matching rate contributes 0, so the sum is never negative
// for valid rates and is order-independent over services.
//
// The currency label is taken from the first rate record on the sheet, not
// per matched service. With mixed-currency rates this mislabels the total;
// that behavior is inherited from the upstream product and kept until the
// pricing model is clarified.
//
// POST: total >= 0 for sheets of valid rates
func (s RateSheet) CostFor(services []string) (total float64, currency string) {
	if len(s.Rates) > 0 {
		currency = s.Rates[0].Currency
	}
	for _, svc := range services {
		if r, ok := s.Lookup(svc); ok {
			total += r.Rate
		}
	}
	return total, currency
}
