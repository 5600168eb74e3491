package marketdata

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/wonny/varlytics/internal/contracts"
)

// PeriodStart returns the first calendar day covered by a Yahoo-style
// period ("5d", "3mo", "2y") ending at now
func PeriodStart(now time.Time, period string) (time.Time, error) {
	p := strings.ToLower(strings.TrimSpace(period))

	var unit string
	switch {
	case strings.HasSuffix(p, "mo"):
		unit = "mo"
	case strings.HasSuffix(p, "d"), strings.HasSuffix(p, "y"):
		unit = p[len(p)-1:]
	default:
		return time.Time{}, fmt.Errorf("%w: unsupported period %q", contracts.ErrValidation, period)
	}

	n, err := strconv.Atoi(strings.TrimSuffix(p, unit))
	if err != nil || n < 1 {
		return time.Time{}, fmt.Errorf("%w: unsupported period %q", contracts.ErrValidation, period)
	}

	switch unit {
	case "d":
		return now.AddDate(0, 0, -n), nil
	case "mo":
		return now.AddDate(0, -n, 0), nil
	default:
		return now.AddDate(-n, 0, 0), nil
	}
}
