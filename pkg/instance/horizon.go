package instance

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"
)

// maxHorizonDays caps rules without COUNT or UNTIL
const maxHorizonDays = 366

// HorizonDays expands an RFC 5545 recurrence rule into day identifiers (YYYY-MM-DD).
//
// The rule may carry its own DTSTART; otherwise dtstart is used. Rules without
// COUNT or UNTIL are cut at one year of occurrences.
func HorizonDays(rule string, dtstart time.Time) ([]string, error) {
	opt, err := rrule.StrToROption(rule)
	if err != nil {
		return nil, fmt.Errorf("invalid horizon rule: %w", err)
	}
	if opt.Dtstart.IsZero() {
		opt.Dtstart = dtstart
	}
	if opt.Count == 0 && opt.Until.IsZero() {
		opt.Count = maxHorizonDays
	}

	r, err := rrule.NewRRule(*opt)
	if err != nil {
		return nil, fmt.Errorf("invalid horizon rule: %w", err)
	}

	occurrences := r.All()
	days := make([]string, 0, len(occurrences))
	seen := make(map[string]bool, len(occurrences))
	for _, t := range occurrences {
		day := t.Format("2006-01-02")
		if seen[day] {
			continue
		}
		seen[day] = true
		days = append(days, day)
	}

	return days, nil
}
