package history

import (
	"fmt"
	"time"
)

// Thresholds for relative time buckets, in seconds. Month and year use
// the mean Gregorian lengths so "12 months ago" rolls over to "1 year
// ago" without drift.
const (
	minuteSecs = 60
	hourSecs   = 60 * minuteSecs
	daySecs    = 24 * hourSecs
	weekSecs   = 7 * daySecs
	monthSecs  = 2629746
	yearSecs   = 31556952
)

// RelativeTime renders a Unix timestamp as a human-readable offset from
// now: "just now", "2 minutes ago", "3 weeks ago" and so on. Timestamps
// in the future (clock skew between machines) render as "just now".
func RelativeTime(timestamp int64, now time.Time) string {
	diff := now.Unix() - timestamp

	switch {
	case diff < minuteSecs:
		return "just now"
	case diff < hourSecs:
		return ago(diff/minuteSecs, "minute")
	case diff < daySecs:
		return ago(diff/hourSecs, "hour")
	case diff < weekSecs:
		return ago(diff/daySecs, "day")
	case diff < monthSecs:
		return ago(diff/weekSecs, "week")
	case diff < yearSecs:
		return ago(diff/monthSecs, "month")
	default:
		return ago(diff/yearSecs, "year")
	}
}

func ago(n int64, unit string) string {
	if n == 1 {
		return "1 " + unit + " ago"
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}
