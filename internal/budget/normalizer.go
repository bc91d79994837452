// Package budget converts a (amount, frequency) category budget into an
// amount comparable over an arbitrary report period.
package budget

import (
	"finbook/internal/core"
	"finbook/internal/period"
)

// frequency -> days the budget amount is denominated over. Fixed
// approximations, matching the period day counts: the pairing is a contract,
// not a calendar.
var frequencyDays = map[core.Frequency]int64{
	core.Daily:   1,
	core.Weekly:  7,
	core.Monthly: 30,
	core.Yearly:  365,
}

// Adjust scales a budget amount denominated at freq onto the target period:
// per-day rate (amount / frequency days) times the period's fixed day count,
// truncated to whole cents. For fixed amount and frequency the result is
// monotonically non-decreasing in the period length.
func Adjust(amount core.Money, freq core.Frequency, p period.Period) (core.Money, error) {
	fd, ok := frequencyDays[freq]
	if !ok {
		return core.Money{}, core.ErrInvalidFrequency
	}
	pd, err := period.Days(p)
	if err != nil {
		return core.Money{}, err
	}
	// Multiply before dividing so cents are not lost to an intermediate
	// truncated rate.
	return core.Money{Cents: amount.Cents * int64(pd) / fd}, nil
}
